// Package cli implements showroom-seed, the development tool that writes and
// inspects vehicle documents in the configured store.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/syntrixbase/showroom/internal/config"
	"github.com/syntrixbase/showroom/internal/storage"
)

// StoreOpener opens the document store named by the loaded configuration.
type StoreOpener func(ctx context.Context, opts *RootOptions) (storage.DocumentStore, *config.Config, error)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigDir string
	Format    string // "json" | "text"

	open StoreOpener
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command backed by the configured store.
func NewRootCommand() *cobra.Command {
	return NewRootCommandWithOpener(openConfiguredStore)
}

// NewRootCommandWithOpener creates the root command with a custom store opener.
func NewRootCommandWithOpener(open StoreOpener) *cobra.Command {
	opts := &RootOptions{open: open}

	cmd := &cobra.Command{
		Use:   "showroom-seed",
		Short: "Seed and inspect the showroom vehicle catalog",
		Long: `showroom-seed writes vehicle documents into the store the showroom
service reads from, and lists or checks what is already there.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigDir, "config", "config", "config directory")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewLoadCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewCheckCommand(opts))

	return cmd
}

func openConfiguredStore(ctx context.Context, opts *RootOptions) (storage.DocumentStore, *config.Config, error) {
	cfg, err := config.LoadConfig(opts.ConfigDir)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	store, err := storage.NewDocumentStore(ctx, cfg.Storage)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "failed to open store", err)
	}
	return store, cfg, nil
}

// withStore opens the store, runs fn and closes the store again.
func withStore(ctx context.Context, opts *RootOptions, fn func(storage.DocumentStore, *config.Config) error) error {
	store, cfg, err := opts.open(ctx, opts)
	if err != nil {
		return err
	}
	defer store.Close(context.Background())
	return fn(store, cfg)
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
