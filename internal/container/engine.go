// Package container drives the host container runtime (Docker or Podman):
// detection, image builds and the interactive session run.
package container

import (
	"context"
	"errors"
)

// EngineType identifies the container runtime.
type EngineType string

const (
	EngineTypeDocker EngineType = "docker"
	EngineTypePodman EngineType = "podman"
)

var (
	ErrNoRuntimeFound       = errors.New("no container runtime found: install Docker or Podman")
	ErrRuntimeNotAccessible = errors.New("container runtime is not accessible")
	ErrRuntimeNotRunning    = errors.New("docker daemon is not running")
	ErrBuildContextNotFound = errors.New("build context not found")
	ErrBuildFailed          = errors.New("image build failed")
)

// Engine is a validated container runtime.
type Engine interface {
	// Name returns the runtime executable name (docker or podman)
	Name() string
	// Ping verifies the runtime is operational
	Ping(ctx context.Context) error
	// ImageExists checks if an image exists locally
	ImageExists(ctx context.Context, image string) (bool, error)
	// Build builds an image; failures wrap ErrBuildFailed
	Build(ctx context.Context, opts BuildOptions) error
	// Run runs the session container and returns its exit code
	Run(ctx context.Context, cfg ContainerConfig) (int, error)
}
