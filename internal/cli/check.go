package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/syntrixbase/showroom/internal/catalog"
	"github.com/syntrixbase/showroom/internal/config"
	"github.com/syntrixbase/showroom/internal/storage"
	"github.com/syntrixbase/showroom/pkg/model"
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	*RootOptions
	Rule string
}

// Finding is one document that failed the record rule.
type Finding struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// CheckResult summarizes a check run.
type CheckResult struct {
	Rule     string    `json:"rule"`
	Checked  int       `json:"checked"`
	Findings []Finding `json:"findings"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Report vehicle documents that fail the record rule",
		Long: `Report vehicle documents that fail the record rule.

The rule defaults to catalog.record_rule from the config. The command exits
with status 1 when any document fails.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.Rule, "rule", "", "CEL rule over doc, overriding the configured one")

	return cmd
}

func runCheck(ctx context.Context, opts *CheckOptions, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	result := CheckResult{Findings: []Finding{}}
	err := withStore(ctx, opts.RootOptions, func(store storage.DocumentStore, cfg *config.Config) error {
		result.Rule = cfg.Catalog.RecordRule
		if opts.Rule != "" {
			result.Rule = opts.Rule
		}
		checker, err := catalog.NewRecordChecker(result.Rule)
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid record rule", err)
		}
		docs, err := store.Query(ctx, model.Query{Collection: cfg.Catalog.Collection})
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read catalog", err)
		}
		for _, doc := range docs {
			result.Checked++
			if err := checker.Check(doc.Data); err != nil {
				result.Findings = append(result.Findings, Finding{ID: doc.DocID(), Reason: err.Error()})
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := writeOutput(out, opts.Format, result, func(w io.Writer) {
		for _, f := range result.Findings {
			fmt.Fprintf(w, "%s: %s\n", f.ID, f.Reason)
		}
		fmt.Fprintf(w, "%d checked, %d malformed\n", result.Checked, len(result.Findings))
	}); err != nil {
		return err
	}
	if len(result.Findings) > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d malformed vehicle documents", len(result.Findings)))
	}
	return nil
}
