package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// secretKeys are masked by config show and config get.
var secretKeys = []string{"llm.api_key", "pubmed.api_key"}

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage genetic-app configuration",
		Long:  "Show, get, or set configuration values. Config is stored in ~/.genetic-app.yaml.",
		Example: `  genetic-app config                                        # show all config
  genetic-app config set reference.clinvar clinvar.parquet  # use another reference table
  genetic-app config get llm.model                          # get a value`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runConfigShow(cmd.OutOrStdout())
		},
	}

	cmd.AddCommand(newConfigSetCmd(a))
	cmd.AddCommand(newConfigGetCmd(a))

	return cmd
}

func newConfigSetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  exactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runConfigSet(cmd.OutOrStdout(), args[0], args[1])
		},
	}
}

func newConfigGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runConfigGet(cmd.OutOrStdout(), args[0])
		},
	}
}

// runConfigShow prints the effective configuration, defaults included.
func (a *app) runConfigShow(w io.Writer) error {
	settings := a.v.AllSettings()
	for _, key := range secretKeys {
		maskSetting(settings, key)
	}

	out, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if path := a.v.ConfigFileUsed(); path != "" {
		fmt.Fprintf(w, "# Config file: %s\n", path)
	} else {
		fmt.Fprintln(w, "# No config file found; showing defaults. Config file: ~/.genetic-app.yaml")
	}
	fmt.Fprint(w, string(out))
	return nil
}

// runConfigSet writes key to the config file only; defaults, flags and
// environment values are not persisted.
func (a *app) runConfigSet(w io.Writer, key, value string) error {
	cfgFile, err := a.configPath()
	if err != nil {
		return err
	}

	file := viper.New()
	file.SetConfigFile(cfgFile)
	file.SetConfigType("yaml")
	if err := file.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("reading config: %w", err)
	}

	// Parse boolean-like values
	switch value {
	case "true", "yes", "on":
		file.Set(key, true)
	case "false", "no", "off":
		file.Set(key, false)
	default:
		file.Set(key, value)
	}

	if err := file.WriteConfigAs(cfgFile); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	if isSecret(key) {
		value = mask(value)
	}
	fmt.Fprintf(w, "Set %s = %s in %s\n", key, value, cfgFile)
	return nil
}

func (a *app) runConfigGet(w io.Writer, key string) error {
	if !a.v.IsSet(key) {
		return fmt.Errorf("key %q is not set", key)
	}
	val := a.v.Get(key)
	if isSecret(key) {
		val = mask(fmt.Sprint(val))
	}
	fmt.Fprintln(w, val)
	return nil
}

func isSecret(key string) bool {
	return slices.Contains(secretKeys, strings.ToLower(key))
}

// maskSetting masks a dotted key inside a nested settings map.
func maskSetting(settings map[string]any, key string) {
	parts := strings.Split(key, ".")
	m := settings
	for _, p := range parts[:len(parts)-1] {
		next, ok := m[p].(map[string]any)
		if !ok {
			return
		}
		m = next
	}
	last := parts[len(parts)-1]
	if v, ok := m[last]; ok {
		m[last] = mask(fmt.Sprint(v))
	}
}

func mask(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return s[:4] + "****"
}
