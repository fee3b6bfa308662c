package main

import (
	"errors"
	"testing"

	"github.com/nao1215/burrow/internal/config"
)

func TestNewHistoryCmd(t *testing.T) {
	t.Parallel()

	cmd := NewHistoryCmd()
	if cmd.Use != "history" {
		t.Errorf("expected Use 'history', got %q", cmd.Use)
	}

	flags := []struct {
		name      string
		shorthand string
	}{
		{"limit", "n"},
		{"host", ""},
		{"json", "j"},
		{"markdown", "m"},
	}

	for _, f := range flags {
		t.Run(f.name, func(t *testing.T) {
			t.Parallel()

			flag := cmd.Flags().Lookup(f.name)
			if flag == nil {
				t.Fatalf("expected flag %q", f.name)
			}
			if flag.Shorthand != f.shorthand {
				t.Errorf("expected shorthand %q, got %q", f.shorthand, flag.Shorthand)
			}
		})
	}

	if got := cmd.Flags().Lookup("limit").DefValue; got != "20" {
		t.Errorf("expected default limit 20, got %s", got)
	}
}

func TestRunHistoryCmd_ConfigErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{
			name:    "negative limit",
			args:    []string{"history", "--limit=-1"},
			wantErr: config.ErrInvalidHistoryLimit,
		},
		{
			name:    "json and markdown together",
			args:    []string{"history", "--json", "--markdown"},
			wantErr: config.ErrConflictingFormats,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := runRoot(t, "", tt.args...)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	if _, err := runRoot(t, "", "history", "extra"); err == nil {
		t.Error("expected error for positional argument")
	}
}
