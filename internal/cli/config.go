package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/docker/go-units"
	"github.com/jakenelson/ampbox/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configInitCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage ampbox configuration",
	Long: `Manage ampbox configuration settings.

Commands:
  list    List all configuration settings
  get     Get a configuration value
  set     Set a configuration value
  path    Show configuration file path
  init    Create default configuration file

Examples:
  ampbox config list
  ampbox config get image.name
  ampbox config set runtime podman
  ampbox config set container.memory_limit 4g`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all configuration settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, key := range config.Keys() {
			fmt.Printf("%s: %v\n", key, viper.Get(key))
		}
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := args[0]
		if !config.IsKey(key) {
			return fmt.Errorf("unknown key: %s (see 'ampbox config list')", key)
		}
		fmt.Println(viper.Get(key))
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		if !config.IsKey(key) {
			return fmt.Errorf("unknown key: %s (see 'ampbox config list')", key)
		}
		if err := validateConfigKey(key, value); err != nil {
			return err
		}

		configPath := viper.ConfigFileUsed()
		if configPath == "" {
			configPath = getConfigPath()
		}
		if err := setConfigValue(configPath, key, parseValue(value)); err != nil {
			return err
		}

		fmt.Printf("Set %s = %s in %s\n", key, value, configPath)
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show configuration file path",
	Run: func(cmd *cobra.Command, args []string) {
		if cfgFile := viper.ConfigFileUsed(); cfgFile != "" {
			fmt.Println(cfgFile)
		} else {
			fmt.Println(getConfigPath())
		}
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create default configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath := getConfigPath()
		configDir := filepath.Dir(configPath)

		if err := os.MkdirAll(configDir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}

		if _, err := os.Stat(configPath); err == nil {
			return fmt.Errorf("config file already exists at %s", configPath)
		}

		defaultConfig := `# ampbox configuration

# Image settings
image:
  name: amplifier-claude:latest
  dockerfile: Dockerfile
  # build_context: ""    # Directory holding the Dockerfile (default: next to ampbox, then ./)

# Container runtime
runtime: auto             # auto | docker | podman

# Persisted tool state, mounted at /app/amplifier-data
mounts:
  data_dir: ./amplifier-data

# Credential lookup
credentials:
  settings_file: .claude/settings.local.json   # Relative to the project directory
  aws_profile_region: true                     # Use the AWS profile region for Bedrock

# Container settings
container:
  # memory_limit: 4g
  # network: bridge       # bridge | none | host
`

		if err := os.WriteFile(configPath, []byte(defaultConfig), 0644); err != nil {
			return fmt.Errorf("failed to write config file: %w", err)
		}

		fmt.Printf("Created config file at %s\n", configPath)
		return nil
	},
}

// setConfigValue writes key into the YAML file at path, keeping every other
// setting in the file as it was. Missing files and sections are created.
func setConfigValue(path, key string, value any) error {
	doc := map[string]any{}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
		if doc == nil {
			doc = map[string]any{}
		}
	case !os.IsNotExist(err):
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	parts := strings.Split(key, ".")
	section := doc
	for _, part := range parts[:len(parts)-1] {
		next, ok := section[part].(map[string]any)
		if !ok {
			next = map[string]any{}
			section[part] = next
		}
		section = next
	}
	section[parts[len(parts)-1]] = value

	out, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, out, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// parseValue keeps booleans typed in the written file
func parseValue(value string) any {
	switch value {
	case "true", "false":
		b, _ := strconv.ParseBool(value)
		return b
	}
	return value
}

// getConfigPath returns the default config file path
func getConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "ampbox", "config.yaml")
}

// validateConfigKey validates key/value pairs for known configuration keys
func validateConfigKey(key, value string) error {
	validations := map[string][]string{
		"runtime":                        {config.RuntimeAuto, config.RuntimeDocker, config.RuntimePodman},
		"container.network":              {config.NetworkBridge, config.NetworkNone, config.NetworkHost},
		"credentials.aws_profile_region": {"true", "false"},
	}

	if key == "container.memory_limit" {
		if _, err := units.RAMInBytes(value); err != nil {
			return fmt.Errorf("invalid value for %s: %s (e.g. 512m, 4g)", key, value)
		}
		return nil
	}

	if allowed, exists := validations[key]; exists {
		for _, v := range allowed {
			if value == v {
				return nil
			}
		}
		return fmt.Errorf("invalid value for %s: %s (allowed: %s)", key, value, strings.Join(allowed, ", "))
	}
	return nil // Unknown keys pass through
}
