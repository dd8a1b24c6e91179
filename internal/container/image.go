package container

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
)

// BuildSource describes where EnsureImage may find a build context.
type BuildSource struct {
	Explicit    string // --build-context override
	LauncherDir string // directory containing the ampbox executable
	WorkDir     string // current working directory
	Dockerfile  string // build descriptor name, default "Dockerfile"
	NoCache     bool
}

func (s BuildSource) descriptor() string {
	if s.Dockerfile == "" {
		return "Dockerfile"
	}
	return s.Dockerfile
}

// BuildContext is a located build: the directory sent to the runtime and the
// descriptor path relative to it.
type BuildContext struct {
	Dir        string
	Dockerfile string
}

// Path returns the descriptor's full path.
func (c BuildContext) Path() string {
	return filepath.Join(c.Dir, c.Dockerfile)
}

// LocateBuildContext picks the build context by priority: the explicit
// directory, then the launcher's directory, then the working directory. Each
// candidate qualifies when it (or its docker/ subdirectory) holds the
// descriptor. A descriptor under docker/ still builds from the candidate
// itself, so the image can copy the whole source tree.
func LocateBuildContext(src BuildSource) (BuildContext, error) {
	desc := src.descriptor()

	if src.Explicit != "" {
		if bc, ok := contextAt(src.Explicit, desc); ok {
			return bc, nil
		}
		return BuildContext{}, fmt.Errorf("%w: %s has no %s", ErrBuildContextNotFound, src.Explicit, desc)
	}

	for _, candidate := range []string{src.LauncherDir, src.WorkDir} {
		if candidate == "" {
			continue
		}
		if bc, ok := contextAt(candidate, desc); ok {
			return bc, nil
		}
	}

	return BuildContext{}, fmt.Errorf("%w: no %s next to the launcher or in the current directory; use --build-context", ErrBuildContextNotFound, desc)
}

func contextAt(dir, descriptor string) (BuildContext, bool) {
	for _, rel := range []string{descriptor, filepath.Join("docker", descriptor)} {
		info, err := os.Stat(filepath.Join(dir, rel))
		if err == nil && info.Mode().IsRegular() {
			return BuildContext{Dir: dir, Dockerfile: rel}, true
		}
	}
	return BuildContext{}, false
}

// SplitDockerfilePath turns a descriptor path into a context directory and a
// descriptor relative to it. A descriptor inside a docker/ directory builds
// from that directory's parent.
func SplitDockerfilePath(path string) (contextDir, dockerfile string) {
	dir, name := filepath.Split(filepath.Clean(path))
	dir = filepath.Clean(dir)
	if filepath.Base(dir) == "docker" {
		return filepath.Dir(dir), filepath.Join("docker", name)
	}
	return dir, name
}

// EnsureImage builds image unless it already exists. It reports whether a
// build ran. Repeated calls after a successful build are no-ops.
func EnsureImage(ctx context.Context, engine Engine, image string, src BuildSource, logger *log.Logger) (bool, error) {
	exists, err := engine.ImageExists(ctx, image)
	if err != nil {
		return false, fmt.Errorf("failed to check image %s: %w", image, err)
	}
	if exists {
		logger.Debug("image present", "image", image)
		return false, nil
	}

	bc, err := LocateBuildContext(src)
	if err != nil {
		return false, err
	}

	logger.Info("building image", "image", image, "context", bc.Dir, "dockerfile", bc.Dockerfile, "runtime", engine.Name())
	err = engine.Build(ctx, BuildOptions{
		ContextDir: bc.Dir,
		Dockerfile: bc.Dockerfile,
		Tag:        image,
		NoCache:    src.NoCache,
	})
	if err != nil {
		return false, err
	}

	logger.Info("image built", "image", image)
	return true, nil
}
