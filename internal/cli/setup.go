package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/docker/go-units"
	"github.com/jakenelson/ampbox/internal/config"
	"github.com/jakenelson/ampbox/internal/container"
	"github.com/jakenelson/ampbox/internal/credentials"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(setupCmd)
}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive setup wizard for ampbox configuration",
	Long: `Interactive setup wizard that checks this machine for what ampbox needs
and writes a configuration file.

This command will:
- Detect Anthropic or AWS Bedrock credentials (environment and settings file)
- Detect the available container runtime
- Guide you through runtime and container preferences
- Create or update your configuration file

Run this command when first installing ampbox or to reconfigure settings.`,
	RunE: runSetup,
}

func runSetup(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("ampbox Setup Wizard")
	fmt.Println("===================")

	// Step 1: Detect credentials
	fmt.Println("\nStep 1: Detecting Credentials")
	fmt.Println("-----------------------------")
	displayCredentials(detectCredentials(ctx, os.LookupEnv, cfg.Credentials.SettingsFile))

	// Step 2: Detect container runtime
	fmt.Println("\nStep 2: Detecting Container Runtime")
	fmt.Println("-----------------------------------")
	detected := ""
	if engine, err := container.Detect(ctx, ""); err != nil {
		fmt.Printf("Warning: %v\n", err)
	} else {
		detected = engine.Name()
		fmt.Printf("Found %s (running)\n", detected)
		if c, ok := engine.(interface{ Close() error }); ok {
			c.Close()
		}
	}
	runtime := selectRuntime(reader, detected)

	// Step 3: Container preferences
	fmt.Println("\nStep 3: Container Preferences")
	fmt.Println("-----------------------------")
	memoryLimit := configureMemory(reader)
	network := configureNetwork(reader)

	// Step 4: Create config file
	fmt.Println("\nStep 4: Creating Configuration")
	fmt.Println("------------------------------")
	configPath := getConfigPath()

	// Check if config exists
	configExists := false
	if _, err := os.Stat(configPath); err == nil {
		configExists = true
		fmt.Printf("Configuration file already exists at: %s\n", configPath)
		if !confirm(reader, "Do you want to overwrite it?") {
			fmt.Println("\nSetup cancelled. No changes were made.")
			return nil
		}
	}

	// Create config directory
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configContent := generateConfig(runtime, memoryLimit, network)
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	if configExists {
		fmt.Printf("\nConfiguration updated at: %s\n", configPath)
	} else {
		fmt.Printf("\nConfiguration created at: %s\n", configPath)
	}

	fmt.Println("\nThe amplifier-claude image is built automatically on first run.")
	fmt.Println("   To build it now: ampbox build")
	fmt.Println("\nSetup complete! Run 'ampbox <project-dir>' to start a session.")
	fmt.Println("   Use 'ampbox config list' to view your configuration.")

	return nil
}

// detectCredentials resolves credentials the way a session in the current
// directory would.
func detectCredentials(ctx context.Context, lookup credentials.LookupFunc, settingsFile string) (credentials.Decision, error) {
	opts := []credentials.Option{credentials.WithLookup(lookup)}
	if settingsFile != "" {
		opts = append(opts, credentials.WithSettingsFile(settingsFile))
	}
	return credentials.NewResolver(opts...).Resolve(ctx)
}

// displayCredentials shows the detected credential kind with masked values
func displayCredentials(d credentials.Decision, err error) {
	if err != nil {
		fmt.Println("Warning: no credentials detected.")
		fmt.Println("   Set ANTHROPIC_API_KEY, or AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY")
		fmt.Println("   for Bedrock, before starting a session.")
		return
	}

	fmt.Printf("Detected %s credentials:\n", d.Kind)
	redacted := d.Redacted()
	keys := make([]string, 0, len(redacted))
	for k := range redacted {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("   %s=%s\n", k, redacted[k])
	}
}

// selectRuntime prompts for the runtime preference
func selectRuntime(reader *bufio.Reader, detected string) string {
	fmt.Println("\nSelect container runtime:")
	fmt.Println("  1) auto   - Prefer Docker, fall back to Podman (recommended)")
	fmt.Println("  2) docker - Always use Docker")
	fmt.Println("  3) podman - Always use Podman")

	for {
		fmt.Printf("\nChoice [1-3] (default: auto): ")
		input, err := reader.ReadString('\n')
		if err != nil {
			fmt.Printf("\nError reading input: %v\n", err)
			return config.RuntimeAuto
		}

		choice := parseChoice(input, config.RuntimeAuto, config.RuntimeDocker, config.RuntimePodman)
		if choice == "" {
			fmt.Println("Invalid choice. Please enter 1, 2, or 3.")
			continue
		}
		if choice != config.RuntimeAuto && detected != "" && choice != detected {
			fmt.Printf("Warning: %s was not detected. You can still select this option.\n", choice)
		}
		return choice
	}
}

// configureMemory prompts for memory limit
func configureMemory(reader *bufio.Reader) string {
	fmt.Println("\nContainer memory limit:")
	fmt.Println("  Set the maximum memory for the container (e.g., 2g, 4g, 8g), or leave empty for no limit")

	for {
		fmt.Printf("Memory limit (default: none): ")
		input, err := reader.ReadString('\n')
		if err != nil {
			fmt.Printf("\nError reading input: %v\n", err)
			return ""
		}
		input = strings.TrimSpace(input)

		if input == "" {
			return ""
		}
		if _, err := units.RAMInBytes(input); err == nil {
			return input
		}

		fmt.Println("Invalid format. Use format like '4g' or '512m'.")
	}
}

// configureNetwork prompts for network mode
func configureNetwork(reader *bufio.Reader) string {
	fmt.Println("\nContainer network mode:")
	fmt.Println("  1) bridge - Standard bridge network (recommended)")
	fmt.Println("  2) host   - Use host network (less isolated)")
	fmt.Println("  3) none   - No network access (claude cannot reach the API)")

	for {
		fmt.Printf("\nChoice [1-3] (default: bridge): ")
		input, err := reader.ReadString('\n')
		if err != nil {
			fmt.Printf("\nError reading input: %v\n", err)
			return config.NetworkBridge
		}

		if choice := parseChoice(input, config.NetworkBridge, config.NetworkHost, config.NetworkNone); choice != "" {
			return choice
		}
		fmt.Println("Invalid choice. Please enter 1, 2, or 3.")
	}
}

// parseChoice maps "1".."n" or an option name to the option. Empty input
// selects the first option; anything else returns "".
func parseChoice(input string, options ...string) string {
	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" {
		return options[0]
	}
	for i, opt := range options {
		if input == opt || input == fmt.Sprint(i+1) {
			return opt
		}
	}
	return ""
}

// confirm prompts for yes/no confirmation
func confirm(reader *bufio.Reader, prompt string) bool {
	for {
		fmt.Printf("%s [y/N]: ", prompt)
		input, err := reader.ReadString('\n')
		if err != nil {
			fmt.Printf("\nError reading input: %v\n", err)
			return false
		}
		input = strings.ToLower(strings.TrimSpace(input))

		if input == "" || input == "n" || input == "no" {
			return false
		}
		if input == "y" || input == "yes" {
			return true
		}

		fmt.Println("Please enter 'y' or 'n'.")
	}
}

// generateConfig creates the configuration file content
func generateConfig(runtime, memory, network string) string {
	memoryLine := "  # memory_limit: 4g"
	if memory != "" {
		memoryLine = "  memory_limit: " + memory
	}

	return fmt.Sprintf(`# ampbox configuration
# Generated by 'ampbox setup'

# Image settings
image:
  name: %s
  dockerfile: %s

# Container runtime
runtime: %s             # auto | docker | podman

# Persisted tool state, mounted at /app/amplifier-data
mounts:
  data_dir: %s

# Credential lookup
credentials:
  settings_file: %s
  aws_profile_region: true

# Container settings
container:
%s
  network: %s     # bridge | none | host
`, config.DefaultImageName, config.DefaultDockerfile, runtime, config.DefaultDataDir,
		config.DefaultSettingsFile, memoryLine, network)
}
