package main

import (
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/younsl/jj/internal/config"
	"github.com/younsl/jj/pkg/fetch"
)

func newBuildJSONCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build-json",
		Short: "Rebuild instances.json from the upstream source tarball",
		Long: `Downloads the ec2instances.info source tarball, runs its build inside the
extracted tree and copies the generated www/instances.json into the data
directory. The build runs as: <build-shell> <build-recipe> --run "<build-task>".`,
		Args: cobra.NoArgs,
		RunE: runBuildJSON,
	}

	cmd.Flags().String("tarball-url", config.DefaultTarballURL, "Source tarball to download")
	cmd.Flags().String("data-dir", config.DefaultDataDir, "Directory instances.json is written to")
	cmd.Flags().String("build-shell", config.DefaultBuildShell, "Program that runs the build")
	cmd.Flags().String("build-recipe", config.DefaultBuildRecipe, "Environment file passed to the build shell, empty to omit")
	cmd.Flags().String("build-task", config.DefaultBuildTask, "Command run inside the build environment")
	cmd.Flags().String("artifact", config.DefaultBuildArtifact, "Generated document, relative to the extracted tree")
	return cmd
}

func runBuildJSON(cmd *cobra.Command, _ []string) error {
	var opts config.BuildOptions
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

	dest := filepath.Join(opts.DataDir, config.DefaultCachedJSON)
	fetcher := fetch.New(http.DefaultClient, env.logger)

	// Build output streams straight to the terminal, so no spinner here
	n, err := fetcher.BuildInstances(env.ctx, fetch.BuildOptions{
		TarballURL:  opts.TarballURL,
		Shell:       opts.Shell,
		Recipe:      opts.Recipe,
		Task:        opts.Task,
		Artifact:    opts.Artifact,
		Destination: dest,
		Stdout:      cmd.OutOrStdout(),
		Stderr:      cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}

	if !env.quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s (%s)\n", dest, humanize.Bytes(uint64(n)))
	}
	return nil
}
