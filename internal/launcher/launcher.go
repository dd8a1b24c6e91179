// Package launcher runs one container session for a project directory on the
// host: it checks the mounts, picks a runtime, resolves credentials, makes
// sure the image exists and blocks on the container.
package launcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/jakenelson/ampbox/internal/container"
	"github.com/jakenelson/ampbox/internal/credentials"
	"github.com/jakenelson/ampbox/internal/hostenv"
	"github.com/jakenelson/ampbox/internal/logging"
	"github.com/jakenelson/ampbox/internal/security"
)

var (
	ErrProjectMissing    = errors.New("project directory does not exist")
	ErrMountInaccessible = errors.New("mount source is not accessible")
)

// Options are the per-invocation launch settings.
type Options struct {
	ProjectDir       string
	DataDir          string
	Image            string
	Runtime          string // docker, podman or "" for auto-detection
	BuildContext     string
	Dockerfile       string
	SettingsFile     string // relative paths resolve against ProjectDir
	AWSProfileRegion bool
	MemoryLimit      string
	Network          string
	DryRun           bool
	Args             []string // extra arguments for the assistant CLI
}

// DetectFunc selects a validated runtime.
type DetectFunc func(ctx context.Context, forced container.EngineType) (container.Engine, error)

// EnsureImageFunc makes sure image exists, building it if needed.
type EnsureImageFunc func(ctx context.Context, engine container.Engine, image string, src container.BuildSource, logger *log.Logger) (bool, error)

// Launcher drives a single session.
type Launcher struct {
	detect      DetectFunc
	ensureImage EnsureImageFunc
	lookup      credentials.LookupFunc
	region      credentials.RegionFunc
	host        hostenv.Kind
	launcherDir string
	getwd       func() (string, error)
	pid         int
	out         io.Writer
	logger      *log.Logger
}

// Option configures a Launcher.
type Option func(*Launcher)

// WithDetect sets the runtime detector.
func WithDetect(fn DetectFunc) Option {
	return func(l *Launcher) {
		l.detect = fn
	}
}

// WithEnsureImage replaces the image check and build step.
func WithEnsureImage(fn EnsureImageFunc) Option {
	return func(l *Launcher) {
		l.ensureImage = fn
	}
}

// WithLookup sets the environment lookup used for credentials.
func WithLookup(fn credentials.LookupFunc) Option {
	return func(l *Launcher) {
		l.lookup = fn
	}
}

// WithRegion sets the Bedrock region fallback.
func WithRegion(fn credentials.RegionFunc) Option {
	return func(l *Launcher) {
		l.region = fn
	}
}

// WithHost sets the host kind instead of detecting it.
func WithHost(kind hostenv.Kind) Option {
	return func(l *Launcher) {
		l.host = kind
	}
}

// WithLauncherDir sets the directory searched for a build context after an
// explicit one.
func WithLauncherDir(dir string) Option {
	return func(l *Launcher) {
		l.launcherDir = dir
	}
}

// WithGetwd sets how the working directory is found for the build context
// search. Defaults to os.Getwd.
func WithGetwd(fn func() (string, error)) Option {
	return func(l *Launcher) {
		l.getwd = fn
	}
}

// WithPID sets the process id used in the container name.
func WithPID(pid int) Option {
	return func(l *Launcher) {
		l.pid = pid
	}
}

// WithOutput sets where the dry-run plan is written.
func WithOutput(w io.Writer) Option {
	return func(l *Launcher) {
		l.out = w
	}
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(l *Launcher) {
		l.logger = logger
	}
}

// New creates a launcher wired to the real host.
func New(opts ...Option) *Launcher {
	l := &Launcher{
		ensureImage: container.EnsureImage,
		lookup:      os.LookupEnv,
		region:      credentials.ProfileRegion,
		getwd:       os.Getwd,
		host:        hostenv.Detect(hostenv.CurrentSignals()),
		pid:         os.Getpid(),
		out:         os.Stdout,
		logger:      logging.Discard(),
	}
	if exe, err := os.Executable(); err == nil {
		l.launcherDir = filepath.Dir(exe)
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.detect == nil {
		logger := l.logger
		l.detect = func(ctx context.Context, forced container.EngineType) (container.Engine, error) {
			return container.Detect(ctx, forced, container.WithDetectLogger(logger))
		}
	}
	return l
}

// Run launches the session and returns the container's exit code.
func (l *Launcher) Run(ctx context.Context, opts Options) (int, error) {
	projectDir, err := l.hostPath(opts.ProjectDir, ".")
	if err != nil {
		return 1, err
	}
	if !security.DirExists(projectDir) {
		return 1, fmt.Errorf("%w: %s", ErrProjectMissing, projectDir)
	}
	if err := security.ValidateMountPath(projectDir); err != nil {
		return 1, fmt.Errorf("refusing to mount project %s: %w", projectDir, err)
	}

	dataDir, err := l.hostPath(opts.DataDir, "amplifier-data")
	if err != nil {
		return 1, err
	}
	if err := security.ValidateMountPath(dataDir); err != nil {
		return 1, fmt.Errorf("refusing to mount data directory %s: %w", dataDir, err)
	}
	if !opts.DryRun {
		if err := security.EnsureDir(dataDir); err != nil {
			return 1, err
		}
	}
	l.logger.Debug("resolved mounts", "project", projectDir, "data", dataDir)

	var engine container.Engine
	if !opts.DryRun {
		engine, err = l.detect(ctx, container.EngineType(opts.Runtime))
		if err != nil {
			return 1, err
		}
		if c, ok := engine.(io.Closer); ok {
			defer c.Close()
		}
		l.logger.Info("using container runtime", "runtime", engine.Name())
	}

	decision, err := l.resolver(projectDir, opts).Resolve(ctx)
	if err != nil {
		return 1, err
	}
	l.logger.Info("using credentials", "kind", decision.Kind)

	mounts := []container.Mount{
		container.ProjectMount(hostenv.Translate(projectDir, l.host)),
		container.DataMount(hostenv.Translate(dataDir, l.host)),
	}
	if !opts.DryRun {
		for _, dir := range []string{projectDir, dataDir} {
			if err := checkMount(dir); err != nil {
				l.logger.Warn("mount may fail", "err", err)
			}
		}
	}

	name := container.ContainerName(filepath.Base(projectDir), l.pid)
	cfg := container.NewContainerConfig(opts.Image, name, credentials.Passthrough(decision), mounts).
		WithResources(opts.MemoryLimit, opts.Network).
		WithArgs(opts.Args)

	if opts.DryRun {
		return 0, writePlan(l.out, l.host, opts.Runtime, decision, cfg)
	}

	cwd, err := l.getwd()
	if err != nil {
		// The explicit and launcher locations still apply
		l.logger.Debug("working directory unavailable for build context search", "err", err)
		cwd = ""
	}
	_, err = l.ensureImage(ctx, engine, opts.Image, container.BuildSource{
		Explicit:    opts.BuildContext,
		LauncherDir: l.launcherDir,
		WorkDir:     cwd,
		Dockerfile:  opts.Dockerfile,
	}, l.logger)
	if err != nil {
		return 1, err
	}

	l.logger.Debug("starting container", "name", cfg.Name, "image", cfg.Image)
	code, err := engine.Run(ctx, cfg)
	if err != nil {
		return code, err
	}
	if code != 0 {
		l.logger.Warn("container exited with non-zero status", "code", code)
	}
	return code, nil
}

// hostPath resolves a user supplied path. Under WSL a Windows drive path is
// translated first so the existence check sees the Linux view of it.
func (l *Launcher) hostPath(path, fallback string) (string, error) {
	if path == "" {
		path = fallback
	}
	return security.ExpandPath(hostenv.Translate(path, l.host))
}

func (l *Launcher) resolver(projectDir string, opts Options) *credentials.Resolver {
	ropts := []credentials.Option{
		credentials.WithLookup(l.lookup),
		credentials.WithLogger(l.logger),
	}
	if opts.SettingsFile != "" {
		path := opts.SettingsFile
		if !filepath.IsAbs(path) {
			path = filepath.Join(projectDir, path)
		}
		ropts = append(ropts, credentials.WithSettingsFile(path))
	}
	if opts.AWSProfileRegion && l.region != nil {
		ropts = append(ropts, credentials.WithRegionFallback(l.region))
	}
	return credentials.NewResolver(ropts...)
}

// checkMount verifies the host can list dir before it is handed to the runtime.
func checkMount(dir string) error {
	if _, err := os.ReadDir(dir); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMountInaccessible, dir, err)
	}
	return nil
}
