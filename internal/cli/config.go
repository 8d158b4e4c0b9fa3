package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/avendel/chunkscribe/internal/config"
)

// ConfigCmd creates the config command with subcommands.
// The env parameter provides injectable dependencies for testing.
func ConfigCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration settings",
		Long: `Manage persistent configuration settings.

Configuration is stored in ~/.config/chunkscribe/config.
Settings can also be overridden via environment variables.

Supported settings:
  output-dir    Default directory for result files (env: CHUNKSCRIBE_OUTPUT_DIR)
  language      Default audio language, ISO 639-1 (env: CHUNKSCRIBE_LANGUAGE)`,
		Example: `  chunkscribe config set output-dir ~/Documents/transcripts
  chunkscribe config get output-dir
  chunkscribe config list`,
	}

	cmd.AddCommand(configSetCmd(env))
	cmd.AddCommand(configGetCmd(env))
	cmd.AddCommand(configListCmd(env))

	return cmd
}

func configSetCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Example: `  chunkscribe config set output-dir ~/Documents/transcripts
  chunkscribe config set language en`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(env, args[0], args[1])
		},
	}
}

func configGetCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Long: `Get a configuration value.

Prints the value to stdout, or nothing if not set.`,
		Example: `  chunkscribe config get output-dir`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigGet(env, args[0])
		},
	}
}

func configListCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all configuration values",
		Long: `List all configuration values.

Shows both values from the config file and environment variable overrides.`,
		Example: `  chunkscribe config list`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigList(env)
		},
	}
}

func runConfigSet(env *Env, key, value string) error {
	if !config.KnownKey(key) {
		return fmt.Errorf("unknown config key %q (valid keys: %v)", key, config.Keys)
	}

	switch key {
	case config.KeyOutputDir:
		// Store the expanded path for consistency.
		expanded := config.ExpandPath(value)
		if err := config.ValidOutputDir(expanded); err != nil {
			return fmt.Errorf("invalid output-dir: %w", err)
		}
		value = expanded
	case config.KeyLanguage:
		if len(value) != 2 {
			return fmt.Errorf("invalid language %q: want an ISO 639-1 code like en or fr", value)
		}
	}

	if err := config.Save(key, value); err != nil {
		return err
	}

	fmt.Fprintf(env.Stderr, "Set %s = %s\n", key, value)
	return nil
}

func runConfigGet(env *Env, key string) error {
	if !config.KnownKey(key) {
		return fmt.Errorf("unknown config key %q (valid keys: %v)", key, config.Keys)
	}

	value, err := config.Get(key)
	if err != nil {
		return err
	}

	// Environment variable fallback.
	if value == "" {
		switch key {
		case config.KeyOutputDir:
			value = env.Getenv(config.EnvOutputDir)
		case config.KeyLanguage:
			value = env.Getenv(config.EnvLanguage)
		}
	}

	if value != "" {
		fmt.Fprintln(env.Stdout, value)
	}
	return nil
}

func runConfigList(env *Env) error {
	data, err := config.List()
	if err != nil {
		return err
	}

	// Surface environment fallbacks for keys the file does not set.
	envFallbacks := map[string]string{
		config.KeyOutputDir: config.EnvOutputDir,
		config.KeyLanguage:  config.EnvLanguage,
	}
	for key, envKey := range envFallbacks {
		if _, ok := data[key]; !ok {
			if envVal := env.Getenv(envKey); envVal != "" {
				data[key] = envVal + " (from env)"
			}
		}
	}

	if len(data) == 0 {
		fmt.Fprintln(env.Stdout, "No configuration set.")
		fmt.Fprintln(env.Stdout, "\nAvailable settings:")
		for _, key := range config.Keys {
			fmt.Fprintf(env.Stdout, "  %s\n", key)
		}
		return nil
	}

	for _, key := range config.Keys {
		if value, ok := data[key]; ok {
			fmt.Fprintf(env.Stdout, "%s=%s\n", key, value)
		}
	}
	return nil
}
