package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/enesozyaramiss/Genetic-app-en/internal/clingen"
	"github.com/enesozyaramiss/Genetic-app-en/internal/gnomad"
	"github.com/enesozyaramiss/Genetic-app-en/internal/llm"
	"github.com/enesozyaramiss/Genetic-app-en/internal/pipeline"
	"github.com/enesozyaramiss/Genetic-app-en/internal/pubmed"
	"github.com/enesozyaramiss/Genetic-app-en/internal/session"
)

const (
	configName = ".genetic-app"
	envPrefix  = "GENETIC_APP"
)

// app holds state shared by all commands of one invocation.
type app struct {
	v       *viper.Viper
	cfgFile string
	verbose bool
	logger  *zap.Logger
	now     func() time.Time
	runs    *session.Store
}

func newApp() *app {
	return &app{
		v:      viper.New(),
		logger: zap.NewNop(),
		now:    time.Now,
		runs:   session.NewStore(),
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "genetic-app",
		Short: "Genetic variant enrichment and interpretation",
		Long: `genetic-app matches uploaded variants against a ClinVar reference table,
adds ClinGen gene-disease validity, gnomAD frequencies and PubMed citations,
and asks a language model for a clinical interpretation of each variant.`,
		Version:       fmt.Sprintf("%s (%s) built %s", version, commit, date),
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}
	root.SetVersionTemplate("genetic-app version {{.Version}}\n")

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default ~/.genetic-app.yaml)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &usageError{err: err, usage: cmd.UsageString()}
	})

	root.AddCommand(newAnalyzeCmd(a))
	root.AddCommand(newMatchCmd(a))
	root.AddCommand(newConvertCmd(a))
	root.AddCommand(newDownloadCmd(a))
	root.AddCommand(newConfigCmd(a))

	return root
}

// exactArgs is cobra.ExactArgs reported as a usage error.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return &usageError{err: err, usage: cmd.UsageString()}
		}
		return nil
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("reference.clinvar", "sampled_100.parquet")
	v.SetDefault("reference.clingen", "Clingen-Gene-Disease-Summary-2025-07-01.csv")
	v.SetDefault("reference.genome_build", gnomad.GRCh38)

	v.SetDefault("llm.base_url", llm.DefaultBaseURL)
	v.SetDefault("llm.model", llm.DefaultModel)
	v.SetDefault("llm.timeout", llm.DefaultTimeout)
	v.SetDefault("llm.rate_interval", pipeline.DefaultRateInterval)

	v.SetDefault("gnomad.endpoint", gnomad.DefaultEndpoint)
	v.SetDefault("pubmed.endpoint", pubmed.DefaultEndpoint)

	v.SetDefault("pipeline.workers", 1)
	v.SetDefault("lookup.timeout", gnomad.DefaultTimeout)
	v.SetDefault("lookup.max_retries", 2)
	v.SetDefault("lookup.cache_ttl", 24*time.Hour)
}

// init reads the config file and environment and builds the logger.
func (a *app) init() error {
	setDefaults(a.v)

	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
	} else if home, err := os.UserHomeDir(); err == nil {
		a.v.AddConfigPath(home)
		a.v.SetConfigName(configName)
		a.v.SetConfigType("yaml")
	}

	a.v.SetEnvPrefix(envPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	a.v.AutomaticEnv()
	if err := a.v.BindEnv("llm.api_key", envPrefix+"_LLM_API_KEY", "GEMINI_API_KEY"); err != nil {
		return err
	}

	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("reading config: %w", err)
		}
	}

	logger, err := newLogger(a.verbose)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	a.logger = logger
	return nil
}

// configPath returns the config file in use, or the default location.
func (a *app) configPath() (string, error) {
	if a.cfgFile != "" {
		return a.cfgFile, nil
	}
	if used := a.v.ConfigFileUsed(); used != "" {
		return used, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, configName+".yaml"), nil
}

// bindFlags binds command flags to config keys. Binding happens when the
// command runs so that commands sharing a key do not override each other.
func (a *app) bindFlags(flags *pflag.FlagSet, keys map[string]string) error {
	for flag, key := range keys {
		if err := a.v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			return fmt.Errorf("binding --%s: %w", flag, err)
		}
	}
	return nil
}

// newLogger builds a console logger on stderr: debug level when verbose,
// info otherwise.
func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopmentConfig().Build()
	}
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.DisableStacktrace = true
	return cfg.Build()
}

// validityTable loads the ClinGen summary named by reference.clingen.
func (a *app) validityTable() *clingen.Table {
	return clingen.LoadOrEmpty(a.v.GetString("reference.clingen"), a.logger)
}
