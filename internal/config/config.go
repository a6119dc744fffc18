package config

import (
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/younsl/jj/internal/errs"
	"github.com/younsl/jj/pkg/utils"
)

// EnvNamePrefix is the prefix of every environment variable jj reads.
// --data-dir maps to JJ_DATA_DIR.
const EnvNamePrefix = "JJ"

// Upstream sources and the paths the tables have always been written to
const (
	DefaultInstancesURL = "https://raw.githubusercontent.com/vantage-sh/ec2instances.info/master/www/instances.json"
	DefaultTarballURL   = "https://api.github.com/repos/vantage-sh/ec2instances.info/tarball"
	DefaultRegion       = "us-west-2"
	DefaultOutput       = "instances.txt"
	DefaultDataDir      = "scraping/data"
	DefaultCachedJSON   = "instances.json"

	DefaultBuildShell    = "nix-shell"
	DefaultBuildRecipe   = "scraping/ec2instances-shell.nix"
	DefaultBuildTask     = "invoke build"
	DefaultBuildArtifact = "www/instances.json"

	DefaultResizeRegion = "us-west-1"
	DefaultPollInterval = 5 * time.Second
)

// GlobalOptions apply to every command
type GlobalOptions struct {
	ConfigFile string        `mapstructure:"config"`
	LogLevel   string        `mapstructure:"log-level"`
	LogFormat  string        `mapstructure:"log-format"`
	Quiet      bool          `mapstructure:"quiet"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// ScrapeOptions configure a single-region table built from the live document
type ScrapeOptions struct {
	GlobalOptions `mapstructure:",squash"`

	URL    string `mapstructure:"url"`
	Region string `mapstructure:"region"`
	Output string `mapstructure:"output"`
}

// BuildOptions configure regenerating the cached document from source
type BuildOptions struct {
	GlobalOptions `mapstructure:",squash"`

	TarballURL string `mapstructure:"tarball-url"`
	DataDir    string `mapstructure:"data-dir"`
	Shell      string `mapstructure:"build-shell"`
	Recipe     string `mapstructure:"build-recipe"`
	Task       string `mapstructure:"build-task"`
	Artifact   string `mapstructure:"artifact"`
}

// RenderOptions configure per-region tables built from the cached document
type RenderOptions struct {
	GlobalOptions `mapstructure:",squash"`

	DataDir string   `mapstructure:"data-dir"`
	Input   string   `mapstructure:"input"`
	Regions []string `mapstructure:"regions"`
}

// ResizeOptions configure the resize-and-connect session
type ResizeOptions struct {
	GlobalOptions `mapstructure:",squash"`

	InstanceID   string        `mapstructure:"instance-id"`
	Hostname     string        `mapstructure:"hostname"`
	Region       string        `mapstructure:"region"`
	Profile      string        `mapstructure:"profile"`
	Table        string        `mapstructure:"table"`
	Type         string        `mapstructure:"type"`
	PollInterval time.Duration `mapstructure:"poll-interval"`
}

// PriceOptions configure the Pricing API cross-check
type PriceOptions struct {
	GlobalOptions `mapstructure:",squash"`

	InstanceType string `mapstructure:"instance-type"`
	Region       string `mapstructure:"region"`
	Input        string `mapstructure:"input"`
	Profile      string `mapstructure:"profile"`
}

// Load decodes flags, JJ_* environment variables and the optional config
// file into out. Explicit flags win over the environment, the environment
// over the file and the file over flag defaults.
func Load(flags *pflag.FlagSet, configFile string, out interface{}) error {
	const op = "config.Load"

	// Keys with "-" need "_" in env names or viper won't match them
	vpr := viper.NewWithOptions(viper.EnvKeyReplacer(strings.NewReplacer("-", "_")))
	vpr.SetEnvPrefix(EnvNamePrefix)

	if err := vpr.BindPFlags(flags); err != nil {
		return errs.E(errs.KindConfig, op, err)
	}

	var bindErr error
	flags.VisitAll(func(f *pflag.Flag) {
		if bindErr != nil {
			return
		}
		bindErr = vpr.BindEnv(f.Name)
	})
	if bindErr != nil {
		return errs.E(errs.KindConfig, op, bindErr)
	}

	if configFile != "" {
		vpr.SetConfigFile(configFile)
		if err := vpr.ReadInConfig(); err != nil {
			return errs.Errorf(errs.KindConfig, op, "read %s: %w", configFile, err)
		}
	}

	if err := vpr.Unmarshal(out); err != nil {
		return errs.E(errs.KindConfig, op, err)
	}
	return nil
}

// Validate checks the scrape options
func (o ScrapeOptions) Validate() error {
	const op = "config.ScrapeOptions"
	switch {
	case o.URL == "":
		return errs.Errorf(errs.KindConfig, op, "url must not be empty")
	case o.Output == "":
		return errs.Errorf(errs.KindConfig, op, "output must not be empty")
	}
	return validateRegion(op, o.Region)
}

// Validate checks the build options
func (o BuildOptions) Validate() error {
	const op = "config.BuildOptions"
	switch {
	case o.TarballURL == "":
		return errs.Errorf(errs.KindConfig, op, "tarball-url must not be empty")
	case o.DataDir == "":
		return errs.Errorf(errs.KindConfig, op, "data-dir must not be empty")
	case o.Shell == "":
		return errs.Errorf(errs.KindConfig, op, "build-shell must not be empty")
	case o.Artifact == "":
		return errs.Errorf(errs.KindConfig, op, "artifact must not be empty")
	}
	return nil
}

// Validate checks the render options
func (o RenderOptions) Validate() error {
	const op = "config.RenderOptions"
	if o.DataDir == "" && o.Input == "" {
		return errs.Errorf(errs.KindConfig, op, "data-dir or input must be set")
	}
	if len(o.Regions) == 0 {
		return errs.Errorf(errs.KindConfig, op, "at least one region is required")
	}
	for _, region := range o.Regions {
		if err := validateRegion(op, region); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks the resize options
func (o ResizeOptions) Validate() error {
	const op = "config.ResizeOptions"
	switch {
	case o.InstanceID == "":
		return errs.Errorf(errs.KindConfig, op, "instance-id is required (flag --instance-id or %s_INSTANCE_ID)", EnvNamePrefix)
	case o.Hostname == "":
		return errs.Errorf(errs.KindConfig, op, "hostname is required (flag --hostname or %s_HOSTNAME)", EnvNamePrefix)
	case o.Table == "":
		return errs.Errorf(errs.KindConfig, op, "table must not be empty")
	case o.PollInterval <= 0:
		return errs.Errorf(errs.KindConfig, op, "poll-interval must be positive, got %s", o.PollInterval)
	}
	return validateRegion(op, o.Region)
}

// Validate checks the price options
func (o PriceOptions) Validate() error {
	const op = "config.PriceOptions"
	if o.InstanceType == "" {
		return errs.Errorf(errs.KindConfig, op, "instance-type is required")
	}
	return validateRegion(op, o.Region)
}

func validateRegion(op, region string) error {
	region = strings.TrimSpace(region)
	if region == "" {
		return errs.Errorf(errs.KindConfig, op, "region must not be empty")
	}
	if !utils.IsRegionCode(region) {
		return errs.Errorf(errs.KindConfig, op, "malformed region code %q", region)
	}
	return nil
}
