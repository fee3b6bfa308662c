package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nao1215/burrow/internal/config"
	"github.com/nao1215/burrow/internal/render"
)

// NewGetCmd creates the get command.
func NewGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <location>...",
		Short: "Fetch gopher locations and print them",
		Long: `Get fetches each location in turn and prints the formatted response.

A location is a host with an optional port and selector, with or without
the gopher:// scheme. Bookmark names from the configuration file are
accepted as well.

Menu lines are shown with their item type marked:
  <file> for text files (type 0)
  <dir>  for menus (type 1)
Informational lines are indented, everything else is printed unchanged.

Examples:
  # Fetch the root menu of a server
  burrow get gopher.floodgap.com

  # Fetch a selector on a non-standard port
  burrow get gopher://example.org:7070/1/phlog

  # Fetch an onion gopher hole through a running Tor daemon
  burrow get --socks 127.0.0.1:9050 <address>.onion

  # Write the page as JSON to a file
  burrow get --json -o page.json sdf.org`,
		Args: cobra.ArbitraryArgs,
		RunE: runGetCmd,
	}

	addConnectionFlags(cmd)

	cmd.Flags().BoolP("json", "j", false,
		"Output JSON (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write output to the specified file (creates directories if needed)")

	return cmd
}

// runGetCmd executes the get command.
func runGetCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.ValidateFetch(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd, cfg.Verbose)
	ctx, cancel := signalContext(logger)
	defer cancel()

	c, err := newClient(ctx, cfg, logger, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() {
		if err := c.Close(); err != nil {
			logger.Error("failed to close client", "error", err)
		}
	}()

	output, closeOutput, err := openOutput(cmd, cfg)
	if err != nil {
		return err
	}
	defer closeOutput()

	w, err := render.New(outputFormat(cfg), output)
	if err != nil {
		return err
	}

	// Keep going after a failed location so one dead server does not hide
	// the others; every failure is reported at the end.
	var errs []error
	for _, loc := range cfg.ResolveLocations() {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		page, err := c.fetch(ctx, loc)
		if err != nil {
			logger.Error("fetch failed", "location", loc, "error", err)
			errs = append(errs, err)
			continue
		}

		if _, err := w.Write(page); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}

	return errors.Join(errs...)
}

// outputFormat maps the output flags to a render format.
func outputFormat(cfg *config.Config) render.Format {
	switch {
	case cfg.JSONOutput:
		return render.FormatJSON
	case cfg.MarkdownOutput:
		return render.FormatMarkdown
	default:
		return render.FormatText
	}
}

// openOutput returns the configured output file, or the command's stdout.
// The returned function closes the file.
func openOutput(cmd *cobra.Command, cfg *config.Config) (io.Writer, func(), error) {
	if cfg.OutputFile == "" {
		return cmd.OutOrStdout(), func() {}, nil
	}

	dir := filepath.Dir(cfg.OutputFile)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.OpenFile(cfg.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}

	return f, func() { _ = f.Close() }, nil
}
