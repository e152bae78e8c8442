// Package commands implements the records command tree.
package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// options are the flags shared by the subcommands.
type options struct {
	dataDir string
	offline string
}

// NewRootCmd builds the records command and its subcommands.
func NewRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "records",
		Short:         "records scrapes the athletics world records tables and reports on them.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.dataDir, "data-dir", "", "directory holding the record CSVs and reference files (overrides DATA_DIR)")
	root.AddCommand(
		newScrapeCmd(opts),
		newReportCmd(opts),
		newRunCmd(opts),
		newValidateCmd(opts),
	)
	return root
}

// ExecuteContext runs the command tree and exits non-zero on error.
func ExecuteContext(ctx context.Context) {
	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
