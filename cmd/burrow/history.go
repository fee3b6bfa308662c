package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nao1215/burrow/internal/config"
	"github.com/nao1215/burrow/internal/history"
	"github.com/nao1215/burrow/internal/render"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recently visited locations",
		Long: `History lists the most recent visits recorded by get and browse,
newest first, with the response size and how many file links, directory
links and informational lines each page had.

Visits are stored in burrow.db under the XDG data directory
(~/.local/share/burrow on Linux), or under $BURROW_HISTORY_DIR.

Examples:
  # Show the last 20 visits
  burrow history

  # Show the last 5 visits to one server
  burrow history -n 5 --host gopher.floodgap.com

  # Export as JSON
  burrow history --json`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", config.DefaultHistoryLimit,
		"Number of visits to show")
	cmd.Flags().String("host", "",
		"Only show visits to this host")
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown (mutually exclusive with --json)")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	host, err := cmd.Flags().GetString("host")
	if err != nil {
		return err
	}

	cfg := config.NewConfig()
	if cfg.JSONOutput, err = cmd.Flags().GetBool("json"); err != nil {
		return err
	}
	if cfg.MarkdownOutput, err = cmd.Flags().GetBool("markdown"); err != nil {
		return err
	}

	if limit < 0 {
		return fmt.Errorf("configuration error: %w", config.ErrInvalidHistoryLimit)
	}
	if limit == 0 {
		limit = config.DefaultHistoryLimit
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	if err := config.LoadEnvFiles(); err != nil {
		return err
	}
	if err := config.ApplyEnv(cfg); err != nil {
		return err
	}

	w, err := render.New(outputFormat(cfg), cmd.OutOrStdout())
	if err != nil {
		return err
	}

	store, err := history.Open(cfg.HistoryDir, history.Options{CreateIfNotExists: false, EnableWAL: true})
	if errors.Is(err, history.ErrNotFound) {
		// Nothing fetched yet.
		_, err = w.WriteVisits(nil)
		return err
	}
	if err != nil {
		return err
	}
	defer store.Close()

	visits, err := store.Recent(cmd.Context(), limit, host)
	if err != nil {
		return err
	}

	_, err = w.WriteVisits(visits)
	return err
}
