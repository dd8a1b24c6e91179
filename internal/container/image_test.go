package container

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/jakenelson/ampbox/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dirWithDockerfile(t *testing.T, sub string) string {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, sub)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Dockerfile"), []byte("FROM debian:stable-slim\n"), 0o644))
	return root
}

func TestLocateBuildContext(t *testing.T) {
	explicit := dirWithDockerfile(t, "")
	launcher := dirWithDockerfile(t, "docker")
	cwd := dirWithDockerfile(t, "")
	empty := t.TempDir()

	tests := []struct {
		name    string
		src     BuildSource
		want    BuildContext
		wantErr bool
	}{
		{name: "explicit wins", src: BuildSource{Explicit: explicit, LauncherDir: launcher, WorkDir: cwd}, want: BuildContext{Dir: explicit, Dockerfile: "Dockerfile"}},
		{name: "explicit without descriptor fails", src: BuildSource{Explicit: empty, WorkDir: cwd}, wantErr: true},
		{name: "launcher docker subdir builds from launcher dir", src: BuildSource{LauncherDir: launcher, WorkDir: cwd}, want: BuildContext{Dir: launcher, Dockerfile: filepath.Join("docker", "Dockerfile")}},
		{name: "cwd when launcher has none", src: BuildSource{LauncherDir: empty, WorkDir: cwd}, want: BuildContext{Dir: cwd, Dockerfile: "Dockerfile"}},
		{name: "nothing qualifies", src: BuildSource{LauncherDir: empty, WorkDir: empty}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LocateBuildContext(tt.src)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrBuildContextNotFound)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLocateBuildContextCustomDescriptor(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Containerfile"), []byte("FROM x\n"), 0o644))

	got, err := LocateBuildContext(BuildSource{WorkDir: dir, Dockerfile: "Containerfile"})
	require.NoError(t, err)
	assert.Equal(t, BuildContext{Dir: dir, Dockerfile: "Containerfile"}, got)

	_, err = LocateBuildContext(BuildSource{WorkDir: dir})
	assert.ErrorIs(t, err, ErrBuildContextNotFound)
}

func TestSplitDockerfilePath(t *testing.T) {
	tests := []struct {
		path       string
		wantDir    string
		wantDocker string
	}{
		{path: "/src/ampbox/docker/Dockerfile", wantDir: "/src/ampbox", wantDocker: "docker/Dockerfile"},
		{path: "docker/Dockerfile", wantDir: ".", wantDocker: "docker/Dockerfile"},
		{path: "./build/Containerfile", wantDir: "build", wantDocker: "Containerfile"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			dir, dockerfile := SplitDockerfilePath(tt.path)
			assert.Equal(t, tt.wantDir, dir)
			assert.Equal(t, filepath.FromSlash(tt.wantDocker), dockerfile)
		})
	}
}

func TestEnsureImageBuildsFromSourceRoot(t *testing.T) {
	engine := newFakeEngine()
	root := dirWithDockerfile(t, "docker")

	_, err := EnsureImage(context.Background(), engine, "img", BuildSource{LauncherDir: root}, logging.Discard())
	require.NoError(t, err)

	require.Len(t, engine.builds, 1)
	assert.Equal(t, root, engine.builds[0].ContextDir, "the source tree must be inside the build context")
	assert.Equal(t, filepath.Join("docker", "Dockerfile"), engine.builds[0].Dockerfile)
}

func TestEnsureImageIdempotent(t *testing.T) {
	engine := newFakeEngine()
	src := BuildSource{WorkDir: dirWithDockerfile(t, "")}
	ctx := context.Background()

	built, err := EnsureImage(ctx, engine, "amplifier-claude:latest", src, logging.Discard())
	require.NoError(t, err)
	assert.True(t, built)

	built, err = EnsureImage(ctx, engine, "amplifier-claude:latest", src, logging.Discard())
	require.NoError(t, err)
	assert.False(t, built)

	assert.Len(t, engine.builds, 1, "second call must be a no-op")
	assert.Equal(t, "amplifier-claude:latest", engine.builds[0].Tag)
	assert.Equal(t, "Dockerfile", engine.builds[0].Dockerfile)
}

func TestEnsureImageExisting(t *testing.T) {
	engine := newFakeEngine()
	engine.images["amplifier-claude:latest"] = true

	built, err := EnsureImage(context.Background(), engine, "amplifier-claude:latest", BuildSource{}, logging.Discard())
	require.NoError(t, err)
	assert.False(t, built)
	assert.Empty(t, engine.builds, "no build context is needed when the image exists")
}

func TestEnsureImageNoContext(t *testing.T) {
	engine := newFakeEngine()

	_, err := EnsureImage(context.Background(), engine, "img", BuildSource{WorkDir: t.TempDir()}, logging.Discard())
	assert.ErrorIs(t, err, ErrBuildContextNotFound)
	assert.Empty(t, engine.builds)
}

func TestEnsureImageBuildFailure(t *testing.T) {
	engine := newFakeEngine()
	engine.buildErr = fmt.Errorf("%w: step 3 failed", ErrBuildFailed)

	_, err := EnsureImage(context.Background(), engine, "img", BuildSource{WorkDir: dirWithDockerfile(t, "")}, logging.Discard())
	assert.True(t, errors.Is(err, ErrBuildFailed))

	exists, _ := engine.ImageExists(context.Background(), "img")
	assert.False(t, exists)
}
