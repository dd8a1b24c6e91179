package container

import (
	"fmt"
	"regexp"
	"strings"
)

// Fixed container paths
const (
	WorkspacePath = "/workspace"
	DataPath      = "/app/amplifier-data"
)

// Fixed container environment
const (
	EnvTargetDir = "TARGET_DIR"
	EnvDataDir   = "AMPLIFIER_DATA_DIR"
)

// Mount purposes
const (
	PurposeProject = "project"
	PurposeData    = "data"
)

const namePrefix = "ampbox"

var invalidNameChars = regexp.MustCompile(`[^a-z0-9_.-]+`)

// ContainerName derives a per-invocation container name from the project
// name and process id, so a still-running earlier session never collides.
func ContainerName(project string, pid int) string {
	name := invalidNameChars.ReplaceAllString(strings.ToLower(project), "-")
	name = strings.Trim(name, "-._")
	if name == "" {
		return fmt.Sprintf("%s-%d", namePrefix, pid)
	}
	return fmt.Sprintf("%s-%s-%d", namePrefix, name, pid)
}

// ProjectMount mounts the project directory at /workspace.
func ProjectMount(source string) Mount {
	return Mount{Source: source, Target: WorkspacePath, Purpose: PurposeProject}
}

// DataMount mounts the persisted data directory at /app/amplifier-data.
func DataMount(source string) Mount {
	return Mount{Source: source, Target: DataPath, Purpose: PurposeData}
}

// NewContainerConfig assembles the run configuration. credEnv is forwarded
// verbatim; the target and data directory variables are always set.
func NewContainerConfig(image, name string, credEnv map[string]string, mounts []Mount) ContainerConfig {
	env := make(map[string]string, len(credEnv)+2)
	for k, v := range credEnv {
		env[k] = v
	}
	env[EnvTargetDir] = WorkspacePath
	env[EnvDataDir] = DataPath

	return ContainerConfig{
		Image:  image,
		Name:   name,
		Env:    env,
		Mounts: append([]Mount(nil), mounts...),
	}
}

// WithResources returns a copy of c with the memory limit and network set.
func (c ContainerConfig) WithResources(memoryLimit, network string) ContainerConfig {
	c.MemoryLimit = memoryLimit
	c.Network = network
	return c
}

// WithArgs returns a copy of c that passes args to the image entrypoint.
func (c ContainerConfig) WithArgs(args []string) ContainerConfig {
	c.Args = append([]string(nil), args...)
	return c
}
