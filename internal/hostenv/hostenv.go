// Package hostenv classifies the host operating environment and translates
// host paths into the form the container runtime expects as a mount source.
package hostenv

import (
	"os"
	"runtime"
	"strings"
)

// Kind identifies the host environment.
type Kind int

const (
	// Unix is Linux or macOS running the runtime natively.
	Unix Kind = iota
	// WSL is Linux running under the Windows Subsystem for Linux.
	WSL
	// NativeWindows is a Windows host, typically with Docker Desktop.
	NativeWindows
)

// String returns the name of the host kind.
func (k Kind) String() string {
	switch k {
	case WSL:
		return "wsl"
	case NativeWindows:
		return "windows"
	default:
		return "unix"
	}
}

// Signals are the environment observations host classification is based on.
type Signals struct {
	GOOS        string
	WSLDistro   string // WSL_DISTRO_NAME
	WSLInterop  string // WSL_INTEROP
	ProcVersion string // contents of /proc/version
}

// CurrentSignals gathers signals from the running process.
func CurrentSignals() Signals {
	s := Signals{
		GOOS:       runtime.GOOS,
		WSLDistro:  os.Getenv("WSL_DISTRO_NAME"),
		WSLInterop: os.Getenv("WSL_INTEROP"),
	}
	if runtime.GOOS == "linux" {
		if data, err := os.ReadFile("/proc/version"); err == nil {
			s.ProcVersion = string(data)
		}
	}
	return s
}

// Detect resolves signals into a host kind.
func Detect(s Signals) Kind {
	switch s.GOOS {
	case "windows":
		return NativeWindows
	case "linux":
		if s.WSLDistro != "" || s.WSLInterop != "" {
			return WSL
		}
		if strings.Contains(strings.ToLower(s.ProcVersion), "microsoft") {
			return WSL
		}
	}
	return Unix
}

// Translate maps a resolved host path to the mount source string for kind.
// Under WSL, "C:\a\b" becomes "/mnt/c/a/b". Paths without a drive prefix,
// and paths on every other kind, are returned unchanged.
func Translate(path string, kind Kind) string {
	if kind != WSL {
		return path
	}

	drive, rest, ok := splitDrive(path)
	if !ok {
		return path
	}

	rest = strings.ReplaceAll(rest, `\`, "/")
	rest = strings.TrimLeft(rest, "/")

	out := "/mnt/" + strings.ToLower(drive)
	if rest != "" {
		out += "/" + rest
	}
	return out
}

// splitDrive splits "X:..." into the drive letter and the remainder.
func splitDrive(path string) (drive, rest string, ok bool) {
	if len(path) < 2 || path[1] != ':' {
		return "", "", false
	}
	c := path[0]
	if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z') {
		return "", "", false
	}
	return path[:1], path[2:], true
}
