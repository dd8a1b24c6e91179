// Package security validates host paths before they are mounted into the
// session container.
package security

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DeniedPaths are never mounted: they hold host credentials the container
// must not see. Credentials reach the container only as resolved env values.
var DeniedPaths = []string{
	"~/.ssh",
	"~/.gnupg",
	"~/.netrc",
	"~/.aws",
	"~/.docker",
	"~/.kube",
	"~/.config/gcloud",
}

// ExpandPath expands ~ to the user's home directory and cleans the path
func ExpandPath(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("empty path")
	}

	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = expandTilde(path, home)
	}

	// Clean and make absolute
	path = filepath.Clean(path)
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	// Resolve symlinks
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		// Path may not exist yet, which is okay
		if os.IsNotExist(err) {
			return path, nil
		}
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}

	return resolved, nil
}

// ValidateMountPath checks if a path is allowed to be mounted
func ValidateMountPath(path string) error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	return validateMountPath(path, home)
}

func validateMountPath(path, home string) error {
	for _, denied := range DeniedPaths {
		if pathMatches(path, expandTilde(denied, home)) {
			return fmt.Errorf("path is in denied list: %s", denied)
		}
	}
	return nil
}

// pathMatches checks if path is equal to or a child of target
func pathMatches(path, target string) bool {
	if path == target {
		return true
	}

	rel, err := filepath.Rel(target, path)
	if err != nil {
		return false
	}
	// If relative path starts with "..", path is not under target
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func expandTilde(path, home string) string {
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	if path == "~" {
		return home
	}
	return path
}

// DirExists checks if a path exists and is a directory.
func DirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// EnsureDir creates path as a directory if it does not exist yet.
func EnsureDir(path string) error {
	info, err := os.Stat(path)
	switch {
	case err == nil && info.IsDir():
		return nil
	case err == nil:
		return fmt.Errorf("%s exists and is not a directory", path)
	case !os.IsNotExist(err):
		return err
	}
	if err := os.MkdirAll(path, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	return nil
}
