package main

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/younsl/jj/internal/config"
	"github.com/younsl/jj/internal/errs"
	"github.com/younsl/jj/pkg/catalog"
	"github.com/younsl/jj/pkg/fetch"
	"github.com/younsl/jj/pkg/formatter"
	"github.com/younsl/jj/pkg/pricing"
	"github.com/younsl/jj/pkg/utils"
)

func newPriceCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "price",
		Short: "Compare an instance type's cached price with the AWS Pricing API",
		Args:  cobra.NoArgs,
		RunE:  runPrice,
	}

	cmd.Flags().StringP("instance-type", "t", "", "Instance type to look up, e.g. m5.large")
	cmd.Flags().StringP("region", "r", config.DefaultRegion, "Region to compare prices in")
	cmd.Flags().String("input", filepath.Join(config.DefaultDataDir, config.DefaultCachedJSON), "Cached instances.json to read")
	cmd.Flags().String("profile", "", "AWS shared config profile")
	return cmd
}

func runPrice(cmd *cobra.Command, _ []string) error {
	const op = "cmd.price"

	var opts config.PriceOptions
	if err := loadOptions(cmd, &opts); err != nil {
		return err
	}
	if err := opts.Validate(); err != nil {
		return err
	}
	if !utils.IsValidRegion(opts.Region) {
		return errs.Errorf(errs.KindConfig, op, "region %s has no AWS Pricing API location", opts.Region)
	}

	env, err := newRunEnv(cmd, opts.GlobalOptions)
	if err != nil {
		return err
	}
	defer env.cancel()

	records, err := fetch.LoadInstancesFile(opts.Input)
	if err != nil {
		return err
	}

	var docPrice float64
	found := false
	for _, record := range records {
		if record.InstanceType != opts.InstanceType {
			continue
		}
		if docPrice, err = catalog.OnDemandPrice(record, opts.Region); err != nil {
			return err
		}
		found = true
		break
	}
	if !found {
		return errs.Errorf(errs.KindMissingKey, op, "instance type %s is not in %s", opts.InstanceType, opts.Input)
	}

	client, err := pricing.NewClient(env.ctx, opts.Profile, env.logger)
	if err != nil {
		return err
	}

	s := env.startSpinner("Retrieving EC2 pricing information")
	apiPrice, err := client.OnDemandHourly(env.ctx, opts.InstanceType, opts.Region)
	stopSpinner(s, "")
	if err != nil {
		return err
	}

	formatter.PrintPriceComparison(cmd.OutOrStdout(), pricing.Comparison{
		InstanceType:  opts.InstanceType,
		Region:        opts.Region,
		DocumentPrice: docPrice,
		APIPrice:      apiPrice,
	})
	return nil
}
