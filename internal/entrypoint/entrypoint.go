// Package entrypoint is the bootstrap that runs inside the session container.
// It checks the project mount, writes the assistant CLI configuration for the
// forwarded credentials and replaces itself with the CLI.
package entrypoint

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/jakenelson/ampbox/internal/container"
	"github.com/jakenelson/ampbox/internal/credentials"
	"github.com/jakenelson/ampbox/internal/logging"
)

const (
	// EnvSkipSmokeTest disables the pre-exec checks when set to "1".
	EnvSkipSmokeTest = "AMPBOX_SKIP_SMOKE_TEST"

	configFileName = ".claude.json"
)

// ExecFunc replaces the current process.
type ExecFunc func(path string, argv, env []string) error

// Entrypoint holds the container-side dependencies.
type Entrypoint struct {
	environ    []string
	lookPath   func(file string) (string, error)
	run        CommandRunner
	exec       ExecFunc
	mounted    func(dir string) (bool, error)
	configPath string
	logger     *log.Logger
}

// Option configures an Entrypoint.
type Option func(*Entrypoint)

// WithEnviron sets the environment. Defaults to os.Environ().
func WithEnviron(environ []string) Option {
	return func(e *Entrypoint) {
		e.environ = environ
	}
}

// WithLookPath sets the executable lookup.
func WithLookPath(fn func(file string) (string, error)) Option {
	return func(e *Entrypoint) {
		e.lookPath = fn
	}
}

// WithCommandRunner sets the runner used for the smoke test.
func WithCommandRunner(fn CommandRunner) Option {
	return func(e *Entrypoint) {
		e.run = fn
	}
}

// WithExec sets the process replacement. Defaults to execve.
func WithExec(fn ExecFunc) Option {
	return func(e *Entrypoint) {
		e.exec = fn
	}
}

// WithMountCheck sets how the target is confirmed to be a mount point.
func WithMountCheck(fn func(dir string) (bool, error)) Option {
	return func(e *Entrypoint) {
		e.mounted = fn
	}
}

// WithConfigPath overrides $HOME/.claude.json.
func WithConfigPath(path string) Option {
	return func(e *Entrypoint) {
		e.configPath = path
	}
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(e *Entrypoint) {
		e.logger = logger
	}
}

// New creates an entrypoint for the current process.
func New(opts ...Option) *Entrypoint {
	e := &Entrypoint{
		environ:  os.Environ(),
		lookPath: exec.LookPath,
		run:      runCommand,
		exec:     execProcess,
		mounted:  isMountPoint,
		logger:   logging.Discard(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run bootstraps the session and execs the assistant CLI with extra appended
// to its arguments. It only returns on failure.
func (e *Entrypoint) Run(ctx context.Context, extra []string) error {
	target := e.getenv(container.EnvTargetDir)
	if target == "" {
		target = container.WorkspacePath
	}
	if err := ValidateTarget(target); err != nil {
		return err
	}
	// The image creates the directory, so only a mount proves the project is there
	mounted, err := e.mounted(target)
	switch {
	case err != nil:
		e.logger.Warn("cannot tell whether the target is mounted", "path", target, "err", err)
	case !mounted:
		return fmt.Errorf("%w: %s is not a mount point (mount the project with -v <project>:%s)", ErrTargetMissing, target, target)
	}
	e.logger.Debug("target directory", "path", target)

	decision, err := credentials.Classify(credentials.FromEnviron(e.environ))
	if err != nil {
		return err
	}
	e.logger.Info("configuring claude", "credentials", decision.Kind)

	cfg, err := NewClaudeConfig(decision)
	if err != nil {
		return err
	}
	path, err := e.resolveConfigPath()
	if err != nil {
		return err
	}
	if err := WriteConfig(path, cfg); err != nil {
		return err
	}
	if err := VerifyConfig(path, decision.Kind); err != nil {
		return err
	}
	e.logger.Debug("wrote claude configuration", "path", path)

	env := ExecEnv(e.environ, decision)

	binary, err := e.lookPath(ClaudeBinary)
	if err != nil {
		return fmt.Errorf("%s not found in PATH: %w", ClaudeBinary, err)
	}

	if e.getenv(EnvSkipSmokeTest) != "1" {
		_ = SmokeTest(ctx, e.run, binary, env, e.logger)
	}

	argv := ExecArgs(target, extra...)
	e.logger.Debug("starting claude", "args", strings.Join(argv[1:], " "))
	if err := e.exec(binary, argv, env); err != nil {
		return fmt.Errorf("failed to exec %s: %w", binary, err)
	}
	return nil
}

func (e *Entrypoint) getenv(key string) string {
	for _, kv := range e.environ {
		if k, v, ok := strings.Cut(kv, "="); ok && k == key {
			return v
		}
	}
	return ""
}

func (e *Entrypoint) resolveConfigPath() (string, error) {
	if e.configPath != "" {
		return e.configPath, nil
	}
	home := e.getenv("HOME")
	if home == "" {
		var err error
		if home, err = os.UserHomeDir(); err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
	}
	return filepath.Join(home, configFileName), nil
}
