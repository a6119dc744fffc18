package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/younsl/jj/internal/config"
	"github.com/younsl/jj/pkg/aws"
	"github.com/younsl/jj/pkg/session"
)

func newResizeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resize",
		Short: "Pick an instance type, resize and start the dev box, then ssh in",
		Long: `Connects to a development instance over ssh. A stopped instance is first
resized to a type picked from the rendered table and started. If the instance
stops while ssh is waiting, press ENTER to pick a new type once it has stopped.

The instance and host usually come from JJ_INSTANCE_ID and JJ_HOSTNAME.`,
		Args: cobra.NoArgs,
		RunE: runResize,
	}

	cmd.Flags().String("instance-id", "", "Instance to resize and connect to (env JJ_INSTANCE_ID)")
	cmd.Flags().String("hostname", "", "ssh destination for the instance (env JJ_HOSTNAME)")
	cmd.Flags().StringP("region", "r", config.DefaultResizeRegion, "Region the instance lives in")
	cmd.Flags().String("profile", "", "AWS shared config profile")
	cmd.Flags().String("table", config.DefaultOutput, "Rendered table to pick instance types from")
	cmd.Flags().String("type", "", "Instance type to use instead of prompting; must be listed in the table")
	cmd.Flags().Duration("poll-interval", config.DefaultPollInterval, "How often to check the instance state")
	return cmd
}

func runResize(cmd *cobra.Command, _ []string) error {
	var opts config.ResizeOptions
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

	types, err := session.LoadTableTypes(opts.Table)
	if err != nil {
		return err
	}

	var selector session.Selector = session.PromptSelector{}
	if opts.Type != "" {
		fixed := session.FixedSelector{Type: opts.Type}
		// Fail before touching the instance
		if _, err := fixed.Select(env.ctx, types); err != nil {
			return err
		}
		selector = fixed
	}

	client, err := aws.NewEC2Client(env.ctx, opts.Region, opts.Profile)
	if err != nil {
		return err
	}
	env.logger.Debug().Str("region", client.Region()).Int("table_types", len(types)).Msg("EC2 client ready")

	runner := session.NewRunner(session.Config{
		Instances:    client,
		Selector:     selector,
		Commands:     session.ExecRunner{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr},
		Types:        types,
		InstanceID:   opts.InstanceID,
		Hostname:     opts.Hostname,
		PollInterval: opts.PollInterval,
		Confirm:      os.Stdin,
		Logger:       env.logger,
	})
	return runner.Run(env.ctx)
}
