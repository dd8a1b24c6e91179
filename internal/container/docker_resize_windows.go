//go:build windows

package container

import "context"

// monitorTtySize is a no-op on Windows, which has no SIGWINCH. The initial
// resize still applies.
func (e *DockerEngine) monitorTtySize(ctx context.Context, containerID string) {}
