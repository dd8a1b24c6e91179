//go:build unix

package entrypoint

import (
	"github.com/moby/sys/mountinfo"
	"golang.org/x/sys/unix"
)

func execProcess(path string, argv, env []string) error {
	return unix.Exec(path, argv, env)
}

func isMountPoint(dir string) (bool, error) {
	return mountinfo.Mounted(dir)
}
