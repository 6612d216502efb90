package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/syntrixbase/showroom/internal/catalog"
	"github.com/syntrixbase/showroom/internal/config"
	"github.com/syntrixbase/showroom/internal/storage"
)

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list [prefix]",
		Short: "List vehicles the way the catalog sees them",
		Long: `List vehicles the way the catalog sees them.

Without a prefix every vehicle is listed newest first. With a prefix the
catalog's name-prefix search runs and the store decides the order.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			prefix := ""
			if len(args) == 1 {
				prefix = args[0]
			}
			return runList(cmd.Context(), rootOpts, prefix, cmd.OutOrStdout())
		},
	}
}

func runList(ctx context.Context, opts *RootOptions, prefix string, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	var vehicles []catalog.Vehicle
	err := withStore(ctx, opts, func(store storage.DocumentStore, cfg *config.Config) error {
		var err error
		vehicles, err = catalog.NewLoader(store, cfg.Catalog, nil).SearchByNamePrefix(ctx, prefix)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read catalog", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	if vehicles == nil {
		vehicles = []catalog.Vehicle{}
	}

	return writeOutput(out, opts.Format, vehicles, func(w io.Writer) {
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tYEAR\tPRICE\tCITY\tIMAGES")
		for _, v := range vehicles {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%v\t%s\t%d\n", v.ID, v.Name, v.Year, v.Price, v.City, len(v.Images))
		}
		tw.Flush()
	})
}
