package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/burrow/internal/config"
	"github.com/nao1215/burrow/internal/render"
)

// browsePrompt is printed before each location is read.
const browsePrompt = "gopher> "

// NewBrowseCmd creates the browse command.
func NewBrowseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "browse [location]",
		Short: "Browse Gopher-space interactively",
		Long: `Browse starts a line-oriented shell. Type a location (or a bookmark name)
and press Enter to fetch it; type "q" or "quit", or press Ctrl-D, to leave.

All requests share one session, so text files reached through a link seen
on an earlier menu are shown exactly as the server sent them.

Ctrl-C aborts the request in progress.

Examples:
  # Start with an empty prompt
  burrow browse

  # Open a server straight away
  burrow browse gopher.floodgap.com`,
		Args: cobra.MaximumNArgs(1),
		RunE: runBrowseCmd,
	}

	addConnectionFlags(cmd)

	return cmd
}

// runBrowseCmd executes the browse command.
func runBrowseCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd, cfg.Verbose)
	ctx, cancel := context.WithCancel(context.Background())
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

	return browse(ctx, cfg, c, cmd.InOrStdin(), cmd.OutOrStdout())
}

// browse runs the shell until quit or end of input. Request errors are
// printed and the shell keeps going.
func browse(ctx context.Context, cfg *config.Config, c *client, in io.Reader, out io.Writer) error {
	w := render.NewTextWriter(out)

	show := func(loc string) error {
		// Ctrl-C cancels this request only.
		reqCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
		defer stop()

		page, err := c.fetch(reqCtx, cfg.File.Resolve(loc))
		if err != nil {
			_, werr := fmt.Fprintf(out, "Something went wrong: %v\n", err)
			return werr
		}
		_, err = w.Write(page)
		return err
	}

	fmt.Fprintln(out, "Welcome to burrow: a Gopher-space browser")
	fmt.Fprintln(out, `Enter a location to fetch it, "q" to quit.`)

	for _, loc := range cfg.Locations {
		if err := show(loc); err != nil {
			return err
		}
	}

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, browsePrompt)
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "q", "quit", "exit":
			return nil
		}

		if err := show(line); err != nil {
			return err
		}
	}

	// End of input: finish the prompt line.
	fmt.Fprintln(out)
	return scanner.Err()
}
