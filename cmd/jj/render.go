package main

import (
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/younsl/jj/internal/config"
	"github.com/younsl/jj/internal/models"
	"github.com/younsl/jj/pkg/catalog"
	"github.com/younsl/jj/pkg/fetch"
	"github.com/younsl/jj/pkg/formatter"
	"github.com/younsl/jj/pkg/utils"
)

func newRenderCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Write per-region tables from the cached instances.json",
		Long: `Reads <data-dir>/instances.json (see build-json) and writes
<data-dir>/<region>-instances-table.txt for every region.`,
		Args: cobra.NoArgs,
		RunE: runRender,
	}

	cmd.Flags().String("data-dir", config.DefaultDataDir, "Directory holding instances.json and the tables")
	cmd.Flags().String("input", "", "Cached document to read (default <data-dir>/instances.json)")
	cmd.Flags().StringSliceP("regions", "r", utils.TableRegions, "Regions to render tables for (comma separated)")
	return cmd
}

// tablePath is where the table for region is written
func tablePath(dataDir, region string) string {
	return filepath.Join(dataDir, region+"-instances-table.txt")
}

func runRender(cmd *cobra.Command, _ []string) error {
	var opts config.RenderOptions
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

	input := opts.Input
	if input == "" {
		input = filepath.Join(opts.DataDir, config.DefaultCachedJSON)
	}

	start := time.Now()
	records, err := fetch.LoadInstancesFile(input)
	if err != nil {
		return err
	}
	env.logger.Info().Str("path", input).Int("instance_types", len(records)).Msg("Loaded instance document")

	results, err := renderRegions(records, opts.DataDir, opts.Regions)
	for _, r := range results {
		env.logger.Info().Str("region", r.Region).Int("rows", r.Rows).Str("path", r.Path).Msg("Wrote table")
	}
	if err != nil {
		return err
	}

	if !env.quiet {
		formatter.PrintRenderSummary(cmd.OutOrStdout(), results, start, time.Since(start))
	}
	return nil
}

// renderRegions writes one table per region, stopping at the first failure
func renderRegions(records []models.InstanceRecord, dataDir string, regions []string) ([]models.TableResult, error) {
	results := make([]models.TableResult, 0, len(regions))
	for _, region := range regions {
		rows, err := catalog.BuildRows(records, region)
		if err != nil {
			return results, err
		}

		path := tablePath(dataDir, region)
		n, err := formatter.WriteTableFile(path, rows)
		if err != nil {
			return results, err
		}
		results = append(results, models.TableResult{Region: region, Rows: len(rows), Path: path, Bytes: n})
	}
	return results, nil
}
