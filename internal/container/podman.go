package container

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/docker/go-units"
	"github.com/moby/term"
)

// PodmanEngine implements Engine using the podman CLI. Podman is daemonless,
// so liveness only requires `podman version` to answer.
type PodmanEngine struct {
	*cliEngine
	tty bool
}

// PodmanOption configures a PodmanEngine.
type PodmanOption func(*PodmanEngine)

// WithPodmanExecCommand sets the command factory, for tests.
func WithPodmanExecCommand(fn ExecCommandFunc) PodmanOption {
	return func(e *PodmanEngine) {
		e.execCommand = fn
	}
}

// WithPodmanStdio sets the streams attached to the session and builds.
func WithPodmanStdio(stdin io.Reader, stdout, stderr io.Writer) PodmanOption {
	return func(e *PodmanEngine) {
		e.stdin = stdin
		e.stdout = stdout
		e.stderr = stderr
	}
}

// NewPodmanEngine creates a Podman engine for the given executable.
func NewPodmanEngine(binaryPath string, opts ...PodmanOption) *PodmanEngine {
	e := &PodmanEngine{cliEngine: newCLIEngine(binaryPath, nil)}
	for _, opt := range opts {
		opt(e)
	}
	if f, ok := e.stdin.(interface{ Fd() uintptr }); ok {
		e.tty = term.IsTerminal(f.Fd())
	}
	return e
}

// Name returns the engine name.
func (e *PodmanEngine) Name() string {
	return string(EngineTypePodman)
}

// Ping checks that podman answers a version call.
func (e *PodmanEngine) Ping(ctx context.Context) error {
	if _, err := e.output(ctx, "version", "--format", "{{.Version}}"); err != nil {
		return fmt.Errorf("%w: %v", ErrRuntimeNotAccessible, err)
	}
	return nil
}

// ImageExists checks if an image exists locally.
func (e *PodmanEngine) ImageExists(ctx context.Context, image string) (bool, error) {
	_, err := e.output(ctx, "image", "exists", image)
	if err == nil {
		return true, nil
	}
	// podman image exists exits 1 when the image is absent
	if exitCode(err) == 1 {
		return false, nil
	}
	return false, fmt.Errorf("failed to inspect image %s: %w", image, err)
}

// Build builds an image with podman build.
func (e *PodmanEngine) Build(ctx context.Context, opts BuildOptions) error {
	cmd := e.command(ctx, BuildArgs(opts)...)
	cmd.Stdout = e.stdout
	cmd.Stderr = e.stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%w: podman build %s: %v", ErrBuildFailed, opts.Tag, err)
	}
	return nil
}

// Run runs the session container with podman run --rm and returns its exit code.
func (e *PodmanEngine) Run(ctx context.Context, cfg ContainerConfig) (int, error) {
	args, err := RunArgs(cfg, e.tty)
	if err != nil {
		return 1, err
	}
	// Values travel in podman's environment so they never appear in argv
	return e.interactive(ctx, cfg.EnvList(), args...)
}

// BuildArgs constructs arguments for a CLI build command.
//
// Generated command: <binary> build -t <tag> -f <context>/<dockerfile> [options] <context>
func BuildArgs(opts BuildOptions) []string {
	args := []string{"build", "-t", opts.Tag}

	if opts.Dockerfile != "" {
		dockerfile := opts.Dockerfile
		if !filepath.IsAbs(dockerfile) {
			dockerfile = filepath.Join(opts.ContextDir, dockerfile)
		}
		args = append(args, "-f", dockerfile)
	}

	if opts.NoCache {
		args = append(args, "--no-cache")
	}

	if opts.Platform != "" {
		args = append(args, "--platform", opts.Platform)
	}

	return append(args, opts.ContextDir)
}

// RunArgs constructs arguments for an interactive, auto-removing CLI run.
// Environment variables are passed by name only; podman copies their values
// from its own environment, which Run populates. Names are sorted so the
// command line is deterministic.
//
// Generated command: <binary> run --rm -i [-t] --name <name> [-e K...] [-v src:dst...] [options] <image> [args...]
func RunArgs(cfg ContainerConfig, tty bool) ([]string, error) {
	args := []string{"run", "--rm", "-i"}
	if tty {
		args = append(args, "-t")
	}

	if cfg.Name != "" {
		args = append(args, "--name", cfg.Name)
	}

	for _, name := range cfg.EnvNames() {
		args = append(args, "-e", name)
	}

	for _, m := range cfg.Mounts {
		args = append(args, "-v", m.String())
	}

	if cfg.MemoryLimit != "" {
		limit, err := units.RAMInBytes(cfg.MemoryLimit)
		if err != nil {
			return nil, fmt.Errorf("invalid memory limit %q: %w", cfg.MemoryLimit, err)
		}
		args = append(args, "--memory", fmt.Sprintf("%d", limit))
	}

	if cfg.Network != "" {
		args = append(args, "--network", cfg.Network)
	}

	args = append(args, cfg.Image)
	return append(args, cfg.Args...), nil
}
