package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/younsl/jj/internal/config"
	"github.com/younsl/jj/internal/errs"
	"github.com/younsl/jj/internal/logging"
)

func main() {
	// Interrupts cancel in-flight downloads, builds and ssh sessions
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cmd, err := newRootCommand().ExecuteContextC(ctx); err != nil {
		reportFailure(cmd, os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// reportFailure logs err in the log format the failed command was given,
// falling back to console output when the options themselves are broken.
func reportFailure(cmd *cobra.Command, w io.Writer, err error) {
	format := logging.FormatConsole
	if cmd != nil {
		var opts config.GlobalOptions
		if loadOptions(cmd, &opts) == nil && opts.LogFormat != "" {
			format = opts.LogFormat
		}
	}

	logger, lerr := logging.New(w, "error", format)
	if lerr != nil {
		logger, _ = logging.New(w, "error", logging.FormatConsole)
	}
	logger.Error().Err(err).Str("kind", string(errs.KindOf(err))).Msg("jj failed")
}
