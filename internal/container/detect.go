package container

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/charmbracelet/log"
	"github.com/jakenelson/ampbox/internal/logging"
)

// detectOrder is the auto-detection order; Docker is preferred when both exist.
var detectOrder = []EngineType{EngineTypeDocker, EngineTypePodman}

type detector struct {
	lookPath    func(file string) (string, error)
	execCommand ExecCommandFunc
	newDocker   func(binaryPath string) (Engine, error)
	newPodman   func(binaryPath string, execCommand ExecCommandFunc) Engine
	logger      *log.Logger
}

// DetectOption configures Detect.
type DetectOption func(*detector)

// WithLookPath sets the executable lookup. Defaults to exec.LookPath.
func WithLookPath(fn func(file string) (string, error)) DetectOption {
	return func(d *detector) {
		d.lookPath = fn
	}
}

// WithExecCommand sets the command factory used for version checks and the Podman engine.
func WithExecCommand(fn ExecCommandFunc) DetectOption {
	return func(d *detector) {
		d.execCommand = fn
	}
}

// WithDockerFactory sets the Docker engine constructor.
func WithDockerFactory(fn func(binaryPath string) (Engine, error)) DetectOption {
	return func(d *detector) {
		d.newDocker = fn
	}
}

// WithDetectLogger sets the logger for detection results.
func WithDetectLogger(logger *log.Logger) DetectOption {
	return func(d *detector) {
		d.logger = logger
	}
}

// Detect selects and validates a container runtime. A forced runtime skips
// auto-detection; otherwise docker then podman are asked for a version
// string and the first to answer wins. The selected runtime must then pass
// its liveness check.
func Detect(ctx context.Context, forced EngineType, opts ...DetectOption) (Engine, error) {
	d := &detector{
		lookPath:    exec.LookPath,
		execCommand: exec.CommandContext,
		newDocker: func(binaryPath string) (Engine, error) {
			return NewDockerEngine(binaryPath)
		},
		newPodman: func(binaryPath string, execCommand ExecCommandFunc) Engine {
			return NewPodmanEngine(binaryPath, WithPodmanExecCommand(execCommand))
		},
		logger: logging.Discard(),
	}
	for _, opt := range opts {
		opt(d)
	}

	var (
		typ  EngineType
		path string
	)
	if forced != "" {
		if forced != EngineTypeDocker && forced != EngineTypePodman {
			return nil, fmt.Errorf("unknown container runtime %q (valid: docker, podman)", forced)
		}
		p, err := d.lookPath(string(forced))
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrRuntimeNotAccessible, forced, err)
		}
		typ, path = forced, p
	} else {
		var ok bool
		typ, path, ok = d.firstAvailable(ctx)
		if !ok {
			return nil, ErrNoRuntimeFound
		}
	}

	engine, err := d.construct(typ, path)
	if err != nil {
		return nil, err
	}

	if err := engine.Ping(ctx); err != nil {
		return nil, err
	}

	d.logger.Debug("container runtime ready", "runtime", engine.Name(), "path", path)
	return engine, nil
}

// firstAvailable returns the first runtime that reports a version string.
func (d *detector) firstAvailable(ctx context.Context) (EngineType, string, bool) {
	for _, typ := range detectOrder {
		path, err := d.lookPath(string(typ))
		if err != nil {
			d.logger.Debug("runtime not on PATH", "runtime", typ)
			continue
		}

		cli := newCLIEngine(path, d.execCommand)
		version, err := cli.output(ctx, "--version")
		if err != nil || version == "" {
			d.logger.Debug("runtime did not report a version", "runtime", typ, "err", err)
			continue
		}

		d.logger.Debug("found runtime", "runtime", typ, "version", version)
		return typ, path, true
	}
	return "", "", false
}

func (d *detector) construct(typ EngineType, path string) (Engine, error) {
	switch typ {
	case EngineTypeDocker:
		return d.newDocker(path)
	default:
		return d.newPodman(path, d.execCommand), nil
	}
}
