//go:build !windows

package container

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// monitorTtySize resizes the container TTY on SIGWINCH
func (e *DockerEngine) monitorTtySize(ctx context.Context, containerID string) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGWINCH)
	defer signal.Stop(sigCh)

	for {
		select {
		case <-sigCh:
			e.resizeTty(ctx, containerID)
		case <-ctx.Done():
			return
		}
	}
}
