//go:build !unix

package entrypoint

import (
	"errors"
	"fmt"
)

func execProcess(path string, _, _ []string) error {
	return fmt.Errorf("cannot exec %s: the entrypoint only runs inside a Linux container", path)
}

func isMountPoint(string) (bool, error) {
	return false, errors.New("mount points are not visible on this platform")
}
