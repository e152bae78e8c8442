package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/athletics-records-etl/internal/pipeline"
)

func newScrapeCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape [--offline <page.html>]",
		Short: "Fetches the records page and writes the men's and women's tables to every sink.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withJob(cmd, opts, func(ctx context.Context, p *pipeline.Pipeline) error {
				_, err := p.Scrape(ctx)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&opts.offline, "offline", "", "parse a saved copy of the page instead of fetching it")
	return cmd
}

func newReportCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Enriches the stored record tables and renders the charts and summary tables.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withJob(cmd, opts, func(ctx context.Context, p *pipeline.Pipeline) error {
				return p.Report(ctx)
			})
		},
	}
}

func newRunCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [--offline <page.html>]",
		Short: "Runs scrape then report.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withJob(cmd, opts, func(ctx context.Context, p *pipeline.Pipeline) error {
				return p.Run(ctx)
			})
		},
	}
	cmd.Flags().StringVar(&opts.offline, "offline", "", "parse a saved copy of the page instead of fetching it")
	return cmd
}
