package credentials

import (
	"strings"
)

// Passthrough returns the environment forwarded into the container for d:
// every recognized key that was resolved, verbatim.
func Passthrough(d Decision) map[string]string {
	env := make(map[string]string, len(d.Env))
	for _, key := range RecognizedKeys {
		if v, ok := d.Env[key]; ok {
			env[key] = v
		}
	}
	return env
}

// FromEnviron extracts the recognized keys from a KEY=VALUE environment list,
// such as os.Environ() inside the container. Explicitly empty values are kept
// so that Classify can apply the same presence rules as the host.
func FromEnviron(environ []string) map[string]string {
	recognized := make(map[string]bool, len(RecognizedKeys))
	for _, key := range RecognizedKeys {
		recognized[key] = true
	}

	env := make(map[string]string)
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || !recognized[k] {
			continue
		}
		env[k] = v
	}
	return env
}
