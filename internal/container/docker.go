package container

import (
	"archive/tar"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/docker/docker/api/types"
	containerTypes "github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/mount"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/jsonmessage"
	"github.com/docker/docker/pkg/stdcopy"
	"github.com/docker/go-units"
	"github.com/moby/term"
)

// DockerEngine implements Engine through the Docker API. The daemon must be
// reachable: Ping is the equivalent of `docker info`.
type DockerEngine struct {
	api        client.APIClient
	binaryPath string
	in         io.Reader
	out        io.Writer
	errOut     io.Writer
}

// NewDockerEngine creates a Docker engine using the environment's daemon
// settings (DOCKER_HOST etc.). binaryPath is the detected CLI, kept for display.
func NewDockerEngine(binaryPath string) (*DockerEngine, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Docker client: %v", ErrRuntimeNotAccessible, err)
	}
	return newDockerEngine(cli, binaryPath), nil
}

func newDockerEngine(api client.APIClient, binaryPath string) *DockerEngine {
	return &DockerEngine{
		api:        api,
		binaryPath: binaryPath,
		in:         os.Stdin,
		out:        os.Stdout,
		errOut:     os.Stderr,
	}
}

// Name returns the engine name.
func (e *DockerEngine) Name() string {
	return string(EngineTypeDocker)
}

// Close closes the Docker client
func (e *DockerEngine) Close() error {
	return e.api.Close()
}

// Ping checks that the daemon answers an info request.
func (e *DockerEngine) Ping(ctx context.Context) error {
	if _, err := e.api.Info(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrRuntimeNotRunning, err)
	}
	return nil
}

// ImageExists checks if an image exists locally
func (e *DockerEngine) ImageExists(ctx context.Context, image string) (bool, error) {
	_, _, err := e.api.ImageInspectWithRaw(ctx, image)
	if err != nil {
		if client.IsErrNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Build builds an image from the build context, streaming progress to the
// engine's output. Errors reported inside the build stream fail the build.
func (e *DockerEngine) Build(ctx context.Context, opts BuildOptions) error {
	buildCtx, err := tarBuildContext(opts)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBuildFailed, err)
	}

	buildOptions := types.ImageBuildOptions{
		Dockerfile: "Dockerfile",
		Tags:       []string{opts.Tag},
		NoCache:    opts.NoCache,
		Remove:     true,
	}

	if opts.Platform != "" {
		buildOptions.Platform = opts.Platform
	}

	resp, err := e.api.ImageBuild(ctx, buildCtx, buildOptions)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBuildFailed, err)
	}
	defer resp.Body.Close()

	fd, isTerm := term.GetFdInfo(e.out)
	if err := jsonmessage.DisplayJSONMessagesStream(resp.Body, e.out, fd, isTerm, nil); err != nil {
		return fmt.Errorf("%w: %v", ErrBuildFailed, err)
	}

	return nil
}

// tarBuildContext archives the context directory, storing the Dockerfile
// under its canonical name.
func tarBuildContext(opts BuildOptions) (io.Reader, error) {
	dockerfile := opts.Dockerfile
	if dockerfile == "" {
		dockerfile = "Dockerfile"
	}
	if !filepath.IsAbs(dockerfile) {
		dockerfile = filepath.Join(opts.ContextDir, dockerfile)
	}

	dockerfileContent, err := os.ReadFile(dockerfile)
	if err != nil {
		return nil, fmt.Errorf("failed to read Dockerfile: %w", err)
	}

	buf := new(bytes.Buffer)
	tw := tar.NewWriter(buf)

	dockerfileHeader := &tar.Header{
		Name: "Dockerfile",
		Mode: 0644,
		Size: int64(len(dockerfileContent)),
	}
	if err := tw.WriteHeader(dockerfileHeader); err != nil {
		return nil, fmt.Errorf("failed to write Dockerfile header: %w", err)
	}
	if _, err := tw.Write(dockerfileContent); err != nil {
		return nil, fmt.Errorf("failed to write Dockerfile: %w", err)
	}

	if err := filepath.Walk(opts.ContextDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if path == opts.ContextDir || path == dockerfile {
			return nil
		}

		relPath, err := filepath.Rel(opts.ContextDir, path)
		if err != nil {
			return err
		}
		// Already stored from the selected descriptor
		if relPath == "Dockerfile" {
			return nil
		}

		// Skip hidden files/dirs except .dockerignore
		if strings.HasPrefix(info.Name(), ".") && info.Name() != ".dockerignore" {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		// Sockets, devices and the like cannot be archived
		if !info.IsDir() && !info.Mode().IsRegular() {
			return nil
		}

		header, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		header.Name = filepath.ToSlash(relPath)

		if err := tw.WriteHeader(header); err != nil {
			return err
		}

		if !info.IsDir() {
			content, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			if _, err := tw.Write(content); err != nil {
				return err
			}
		}

		return nil
	}); err != nil {
		return nil, fmt.Errorf("failed to create build context: %w", err)
	}

	if err := tw.Close(); err != nil {
		return nil, fmt.Errorf("failed to close tar writer: %w", err)
	}

	return buf, nil
}

// Run creates, attaches to and starts the session container, then waits for
// it to exit. The container is removed afterwards and its exit code returned.
func (e *DockerEngine) Run(ctx context.Context, cfg ContainerConfig) (int, error) {
	var mounts []mount.Mount
	for _, m := range cfg.Mounts {
		mounts = append(mounts, mount.Mount{
			Type:     mount.TypeBind,
			Source:   m.Source,
			Target:   m.Target,
			ReadOnly: m.ReadOnly,
		})
	}

	var memoryLimit int64
	if cfg.MemoryLimit != "" {
		limit, err := units.RAMInBytes(cfg.MemoryLimit)
		if err != nil {
			return 1, fmt.Errorf("invalid memory limit %q: %w", cfg.MemoryLimit, err)
		}
		memoryLimit = limit
	}

	inFd, isTTY := term.GetFdInfo(e.in)

	// For non-TTY mode, don't attach stdout/stderr - use ContainerLogs instead
	containerConfig := &containerTypes.Config{
		Image:        cfg.Image,
		Cmd:          cfg.Args,
		Env:          cfg.EnvList(),
		WorkingDir:   WorkspacePath,
		Tty:          isTTY,
		OpenStdin:    true,
		StdinOnce:    true,
		AttachStdin:  true,
		AttachStdout: isTTY,
		AttachStderr: isTTY,
	}

	hostConfig := &containerTypes.HostConfig{
		Mounts:      mounts,
		NetworkMode: containerTypes.NetworkMode(cfg.Network),
		AutoRemove:  false, // removed in defer so the exit code can still be read
		Resources: containerTypes.Resources{
			Memory: memoryLimit,
		},
	}

	resp, err := e.api.ContainerCreate(ctx, containerConfig, hostConfig, nil, nil, cfg.Name)
	if err != nil {
		if client.IsErrNotFound(err) {
			return 1, fmt.Errorf("image %q not found; run 'ampbox build' first", cfg.Image)
		}
		return 1, fmt.Errorf("failed to create container: %w", err)
	}
	containerID := resp.ID

	defer func() {
		_ = e.api.ContainerRemove(context.Background(), containerID, containerTypes.RemoveOptions{
			Force: true,
		})
	}()

	attachResp, err := e.api.ContainerAttach(ctx, containerID, containerTypes.AttachOptions{
		Stream: true,
		Stdin:  true,
		Stdout: isTTY,
		Stderr: isTTY,
	})
	if err != nil {
		return 1, fmt.Errorf("failed to attach to container: %w", err)
	}
	defer attachResp.Close()

	outputDone := make(chan error, 1)
	if isTTY {
		go func() {
			_, err := io.Copy(e.out, attachResp.Reader)
			outputDone <- err
		}()
	}

	if err := e.api.ContainerStart(ctx, containerID, containerTypes.StartOptions{}); err != nil {
		return 1, fmt.Errorf("failed to start container: %w", err)
	}

	if !isTTY {
		go func() {
			logs, err := e.api.ContainerLogs(ctx, containerID, containerTypes.LogsOptions{
				ShowStdout: true,
				ShowStderr: true,
				Follow:     true,
			})
			if err != nil {
				outputDone <- err
				return
			}
			defer logs.Close()
			_, err = stdcopy.StdCopy(e.out, e.errOut, logs)
			outputDone <- err
		}()
	}

	if isTTY {
		e.resizeTty(ctx, containerID)

		oldState, err := term.SetRawTerminal(inFd)
		if err != nil {
			return 1, fmt.Errorf("failed to set raw terminal: %w", err)
		}
		defer term.RestoreTerminal(inFd, oldState)

		resizeCtx, stopResize := context.WithCancel(ctx)
		defer stopResize()
		go e.monitorTtySize(resizeCtx, containerID)
	}

	go func() {
		_, _ = io.Copy(attachResp.Conn, e.in)
		_ = attachResp.CloseWrite()
	}()

	statusCh, errCh := e.api.ContainerWait(ctx, containerID, containerTypes.WaitConditionNotRunning)
	select {
	case err := <-errCh:
		if ctx.Err() != nil {
			e.stop(containerID)
			return exitInterrupted, nil
		}
		return 1, fmt.Errorf("error waiting for container: %w", err)
	case status := <-statusCh:
		<-outputDone
		if status.Error != nil && status.Error.Message != "" {
			return int(status.StatusCode), fmt.Errorf("container wait: %s", status.Error.Message)
		}
		return int(status.StatusCode), nil
	case <-ctx.Done():
		e.stop(containerID)
		return exitInterrupted, nil
	}
}

// exitInterrupted is the shell convention for a process ended by SIGINT.
const exitInterrupted = 130

// stop gives an interrupted container a few seconds to exit before it is removed.
func (e *DockerEngine) stop(containerID string) {
	timeout := 5
	_ = e.api.ContainerStop(context.Background(), containerID, containerTypes.StopOptions{Timeout: &timeout})
}

// resizeTty resizes the container TTY to match the current terminal size
func (e *DockerEngine) resizeTty(ctx context.Context, containerID string) {
	fd, isTerm := term.GetFdInfo(e.out)
	if !isTerm {
		return
	}
	winsize, err := term.GetWinsize(fd)
	if err != nil {
		return
	}
	_ = e.api.ContainerResize(ctx, containerID, containerTypes.ResizeOptions{
		Height: uint(winsize.Height),
		Width:  uint(winsize.Width),
	})
}
