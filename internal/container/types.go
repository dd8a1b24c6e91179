package container

import (
	"sort"
)

// Mount represents a bind mount configuration
type Mount struct {
	Source   string `yaml:"source"` // Host path, already translated for the runtime
	Target   string `yaml:"target"` // Container path
	Purpose  string `yaml:"purpose"`
	ReadOnly bool   `yaml:"readonly,omitempty"`
}

// String returns the mount in "source:target[:ro]" form.
func (m Mount) String() string {
	s := m.Source + ":" + m.Target
	if m.ReadOnly {
		s += ":ro"
	}
	return s
}

// ContainerConfig is everything a single session run needs. It is built once
// by NewContainerConfig and not modified afterwards.
type ContainerConfig struct {
	Image       string            `yaml:"image"`
	Name        string            `yaml:"name"`
	Env         map[string]string `yaml:"env"`
	Mounts      []Mount           `yaml:"mounts"`
	MemoryLimit string            `yaml:"memory_limit,omitempty"`
	Network     string            `yaml:"network,omitempty"`
	Args        []string          `yaml:"args,omitempty"` // Passed to the entrypoint after the image
}

// EnvNames returns the sorted environment variable names.
func (c ContainerConfig) EnvNames() []string {
	keys := make([]string, 0, len(c.Env))
	for k := range c.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// EnvList returns the environment as sorted KEY=VALUE pairs.
func (c ContainerConfig) EnvList() []string {
	keys := c.EnvNames()
	env := make([]string, 0, len(keys))
	for _, k := range keys {
		env = append(env, k+"="+c.Env[k])
	}
	return env
}

// BuildOptions configures image building
type BuildOptions struct {
	ContextDir string
	Dockerfile string // relative to ContextDir
	Tag        string
	NoCache    bool
	Platform   string
}
