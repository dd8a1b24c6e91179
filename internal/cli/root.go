package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/jakenelson/ampbox/internal/config"
	"github.com/jakenelson/ampbox/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "ampbox [project-dir] [flags] [-- claude-args...]",
	Short: "Run Claude Code with Amplifier in an isolated container",
	Long: `ampbox runs Claude Code inside a Docker or Podman container against a
project directory. The project is mounted at /workspace, tool state persists in
the amplifier data directory, and your Anthropic or AWS Bedrock credentials are
forwarded from the environment or .claude/settings.local.json.

Examples:
  ampbox                                # Run against the current directory
  ampbox ~/projects/myapp               # Run against another project
  ampbox --runtime podman               # Skip detection and use Podman
  ampbox --dry-run                      # Show what would be run
  ampbox -- --continue                  # Pass args to Claude Code`,
	Args:          cobra.ArbitraryArgs,
	RunE:          runSession,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the command line.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/ampbox/config.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	addRunFlags(rootCmd.Flags())
}

// addRunFlags registers the session flags shared by the root and run commands.
func addRunFlags(flags *pflag.FlagSet) {
	flags.StringP("workdir", "w", "", "project directory to mount (default: current directory)")
	flags.String("data-dir", "", "amplifier data directory (default: ./amplifier-data)")
	flags.String("build-context", "", "directory holding the Dockerfile used when the image is missing")
	flags.String("runtime", "", "container runtime: docker, podman (default: auto-detect)")
	flags.String("image", "", "image to run (default: amplifier-claude:latest)")
	flags.Bool("dry-run", false, "print the container configuration without running it")
}

// bindRunFlags binds the invoked command's flags to their config keys. It runs
// at execution time because root and run each own a copy of the flags.
func bindRunFlags(cmd *cobra.Command) {
	viper.BindPFlag("image.name", cmd.Flags().Lookup("image"))
	viper.BindPFlag("image.build_context", cmd.Flags().Lookup("build-context"))
	viper.BindPFlag("runtime", cmd.Flags().Lookup("runtime"))
	viper.BindPFlag("mounts.data_dir", cmd.Flags().Lookup("data-dir"))
	cfg = config.LoadConfig()
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, "Warning: could not find home directory:", err)
			return
		}

		// Search for config in standard locations
		viper.AddConfigPath(filepath.Join(home, ".config", "ampbox"))
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	// Environment variables, e.g. AMPBOX_IMAGE_NAME
	viper.SetEnvPrefix("AMPBOX")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Read config file (ignore if not found)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintln(os.Stderr, "Warning: error reading config file:", err)
		}
	}

	// Load into config struct
	cfg = config.LoadConfig()
}

func newLogger() *log.Logger {
	return logging.New(os.Stderr, "ampbox", viper.GetBool("verbose"))
}
