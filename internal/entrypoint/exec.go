package entrypoint

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/jakenelson/ampbox/internal/credentials"
)

// ClaudeBinary is the assistant CLI executable.
const ClaudeBinary = "claude"

// ErrTargetMissing is returned when the project mount is absent in the container.
var ErrTargetMissing = errors.New("target directory not found")

// ValidateTarget checks that dir exists and is a directory.
func ValidateTarget(dir string) error {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%w: %s (mount the project with -v <project>:%s)", ErrTargetMissing, dir, dir)
	}
	return nil
}

// ExecArgs returns the argv the assistant CLI is started with.
func ExecArgs(targetDir string, extra ...string) []string {
	args := []string{ClaudeBinary, "--add-dir", targetDir, "--permission-mode", "acceptEdits"}
	return append(args, extra...)
}

// ExecEnv returns environ adjusted for d: the API key for Anthropic, the
// Bedrock switch for Bedrock.
func ExecEnv(environ []string, d credentials.Decision) []string {
	switch d.Kind {
	case credentials.AnthropicDirect:
		return setEnv(environ, credentials.KeyAnthropicAPIKey, d.APIKey)
	case credentials.AWSBedrock:
		return setEnv(environ, credentials.KeyUseBedrock, "1")
	}
	return environ
}

func setEnv(environ []string, key, value string) []string {
	out := make([]string, 0, len(environ)+1)
	for _, kv := range environ {
		if strings.HasPrefix(kv, key+"=") {
			continue
		}
		out = append(out, kv)
	}
	return append(out, key+"="+value)
}

// CommandRunner runs a command with env to completion and returns its
// combined output.
type CommandRunner func(ctx context.Context, env []string, name string, args ...string) ([]byte, error)

func runCommand(ctx context.Context, env []string, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = env
	return cmd.CombinedOutput()
}

// smokeChecks are run before handing over to the assistant CLI.
var smokeChecks = [][]string{
	{"--version"},
	{"config", "list"},
}

// SmokeTest runs quick sanity checks against the assistant CLI. Failures are
// logged and returned joined; they never stop the session.
func SmokeTest(ctx context.Context, run CommandRunner, binary string, env []string, logger *log.Logger) error {
	var errs []error
	for _, args := range smokeChecks {
		out, err := run(ctx, env, binary, args...)
		cmd := strings.Join(append([]string{binary}, args...), " ")
		if err != nil {
			logger.Warn("smoke test failed", "cmd", cmd, "err", err)
			errs = append(errs, fmt.Errorf("%s: %w", cmd, err))
			continue
		}
		logger.Debug("smoke test passed", "cmd", cmd, "output", strings.TrimSpace(string(out)))
	}
	return errors.Join(errs...)
}
