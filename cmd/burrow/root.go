package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for burrow.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "burrow",
		Short: "A client for Gopher-space",
		Long: `burrow is a client for the Gopher protocol (RFC 1436).

It fetches gopher menus and text files and renders them for the terminal,
marking file links with <file> and directory links with <dir>.

Use "burrow get" for one-shot fetches and "burrow browse" for an
interactive shell. Onion gopher holes are reachable with --tor or --socks.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	cmd.AddCommand(NewGetCmd())
	cmd.AddCommand(NewBrowseCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
