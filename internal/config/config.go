package config

import (
	"github.com/spf13/viper"
)

// Config represents the full configuration structure
type Config struct {
	Image       ImageConfig       `mapstructure:"image"`
	Runtime     string            `mapstructure:"runtime"` // auto, docker, podman
	Mounts      MountsConfig      `mapstructure:"mounts"`
	Credentials CredentialsConfig `mapstructure:"credentials"`
	Container   ContainerConfig   `mapstructure:"container"`
}

// ImageConfig configures the container image
type ImageConfig struct {
	Name         string `mapstructure:"name"`
	Dockerfile   string `mapstructure:"dockerfile"`
	BuildContext string `mapstructure:"build_context"`
}

// MountsConfig configures the persisted data directory
type MountsConfig struct {
	DataDir string `mapstructure:"data_dir"`
}

// CredentialsConfig configures where credentials are looked up
type CredentialsConfig struct {
	SettingsFile     string `mapstructure:"settings_file"` // relative to the project directory
	AWSProfileRegion bool   `mapstructure:"aws_profile_region"`
}

// ContainerConfig configures container runtime settings
type ContainerConfig struct {
	MemoryLimit string `mapstructure:"memory_limit"` // e.g., "4g"
	Network     string `mapstructure:"network"`      // bridge, none, host
}

// LoadConfig loads configuration from viper with defaults
func LoadConfig() *Config {
	setDefaults()

	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		// Return defaults on error
		return defaultConfig()
	}

	if cfg.Runtime == "" {
		cfg.Runtime = RuntimeAuto
	}

	return cfg
}

// ForcedRuntime returns the runtime name to force, or "" for auto-detection.
func (c *Config) ForcedRuntime() string {
	if c.Runtime == RuntimeAuto {
		return ""
	}
	return c.Runtime
}

// keys lists every configuration key in display order.
var keys = []string{
	"image.name",
	"image.dockerfile",
	"image.build_context",
	"runtime",
	"mounts.data_dir",
	"credentials.settings_file",
	"credentials.aws_profile_region",
	"container.memory_limit",
	"container.network",
}

// Keys returns every configuration key.
func Keys() []string {
	return append([]string(nil), keys...)
}

// IsKey reports whether key is a configuration key.
func IsKey(key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}

func setDefaults() {
	viper.SetDefault("image.name", DefaultImageName)
	viper.SetDefault("image.dockerfile", DefaultDockerfile)
	viper.SetDefault("image.build_context", "")

	viper.SetDefault("runtime", RuntimeAuto)

	viper.SetDefault("mounts.data_dir", DefaultDataDir)

	viper.SetDefault("credentials.settings_file", DefaultSettingsFile)
	viper.SetDefault("credentials.aws_profile_region", true)

	viper.SetDefault("container.memory_limit", "")
	viper.SetDefault("container.network", NetworkDefault)
}

func defaultConfig() *Config {
	return &Config{
		Image: ImageConfig{
			Name:       DefaultImageName,
			Dockerfile: DefaultDockerfile,
		},
		Runtime: RuntimeAuto,
		Mounts: MountsConfig{
			DataDir: DefaultDataDir,
		},
		Credentials: CredentialsConfig{
			SettingsFile:     DefaultSettingsFile,
			AWSProfileRegion: true,
		},
		Container: ContainerConfig{
			Network: NetworkDefault,
		},
	}
}
