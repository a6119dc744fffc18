package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/younsl/jj/internal/config"
	"github.com/younsl/jj/internal/errs"
	"github.com/younsl/jj/internal/logging"
)

const longHelp = `jj renders EC2 instance-type pricing tables from the ec2instances.info
document and resizes a development instance to one of the listed types.

Each flag has a corresponding environment variable: the flag name upper-cased,
dashes replaced by underscores and prefixed with JJ. Flags take precedence over
the environment, which takes precedence over the --config file.

Examples
  --region        JJ_REGION
  --data-dir      JJ_DATA_DIR
  --instance-id   JJ_INSTANCE_ID
  --hostname      JJ_HOSTNAME
`

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "jj",
		Short:         "Render EC2 instance pricing tables and resize a dev box",
		Long:          longHelp,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.String("config", "", "Path to a YAML config file (env JJ_CONFIG)")
	pf.String("log-level", "info", "Log level: debug, info, warn, error")
	pf.String("log-format", logging.FormatConsole, "Log format: console or json")
	pf.BoolP("quiet", "q", false, "Disable spinners and the summary table")
	pf.Duration("timeout", 0, "Abort the command after this long (0 means no deadline)")

	root.AddCommand(
		newScrapeCommand(),
		newBuildJSONCommand(),
		newRenderCommand(),
		newResizeCommand(),
		newPriceCommand(),
		newVersionCommand(),
	)
	return root
}

// loadOptions fills out from flags, JJ_* variables and the config file
func loadOptions(cmd *cobra.Command, out interface{}) error {
	file, err := cmd.Flags().GetString("config")
	if err != nil {
		return errs.E(errs.KindConfig, "cmd.loadOptions", err)
	}
	if file == "" {
		file = os.Getenv(config.EnvNamePrefix + "_CONFIG")
	}
	return config.Load(cmd.Flags(), file, out)
}

// runEnv is what every command body needs once options are loaded
type runEnv struct {
	ctx    context.Context
	cancel context.CancelFunc
	logger zerolog.Logger
	quiet  bool
}

func newRunEnv(cmd *cobra.Command, opts config.GlobalOptions) (*runEnv, error) {
	logger, err := logging.New(cmd.ErrOrStderr(), opts.LogLevel, opts.LogFormat)
	if err != nil {
		return nil, errs.E(errs.KindConfig, "cmd.newRunEnv", err)
	}

	ctx, cancel := cmd.Context(), context.CancelFunc(func() {})
	if opts.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
	}

	logger.Debug().Str("command", cmd.Name()).Dur("timeout", opts.Timeout).Msg("Starting")
	return &runEnv{ctx: ctx, cancel: cancel, logger: logger, quiet: opts.Quiet}, nil
}

// startSpinner starts a progress spinner on stderr unless quiet.
// The spinner library stays silent when stderr is not a terminal.
func (e *runEnv) startSpinner(message string) *spinner.Spinner {
	if e.quiet {
		return nil
	}
	s := spinner.New(spinner.CharSets[9], 200*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = fmt.Sprintf(" %s ...", message)
	s.Start()
	return s
}

func stopSpinner(s *spinner.Spinner, final string) {
	if s == nil {
		return
	}
	if final != "" {
		s.FinalMSG = final + "\n"
	}
	s.Stop()
}
