package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/younsl/jj/internal/config"
	"github.com/younsl/jj/internal/models"
	"github.com/younsl/jj/pkg/catalog"
	"github.com/younsl/jj/pkg/fetch"
	"github.com/younsl/jj/pkg/formatter"
)

func newScrapeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Fetch the live instance document and write one region's table",
		Args:  cobra.NoArgs,
		RunE:  runScrape,
	}

	cmd.Flags().String("url", config.DefaultInstancesURL, "instances.json document to fetch")
	cmd.Flags().StringP("region", "r", config.DefaultRegion, "Region to list instance types for")
	cmd.Flags().StringP("output", "o", config.DefaultOutput, "Table file to write")
	return cmd
}

func runScrape(cmd *cobra.Command, _ []string) error {
	var opts config.ScrapeOptions
	if err := loadOptions(cmd, &opts); err != nil {
		return err
	}
	if err := opts.Validate(); err != nil {
		return err
	}

	env, err := newRunEnv(cmd, opts.GlobalOptions)
	if err != nil {
		return err
	}
	defer env.cancel()

	start := time.Now()
	fetcher := fetch.New(http.DefaultClient, env.logger)

	s := env.startSpinner("Downloading instance document")
	records, err := fetcher.Instances(env.ctx, opts.URL)
	if err != nil {
		stopSpinner(s, "")
		return err
	}
	stopSpinner(s, fmt.Sprintf("✓ [%d instance types] downloaded in %.2f seconds", len(records), time.Since(start).Seconds()))

	rows, err := catalog.BuildRows(records, opts.Region)
	if err != nil {
		return err
	}

	n, err := formatter.WriteTableFile(opts.Output, rows)
	if err != nil {
		return err
	}
	env.logger.Info().Str("region", opts.Region).Int("rows", len(rows)).Str("path", opts.Output).Msg("Wrote table")

	if !env.quiet {
		results := []models.TableResult{{Region: opts.Region, Rows: len(rows), Path: opts.Output, Bytes: n}}
		formatter.PrintRenderSummary(cmd.OutOrStdout(), results, start, time.Since(start))
	}
	return nil
}
