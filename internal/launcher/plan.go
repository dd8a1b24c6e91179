package launcher

import (
	"fmt"
	"io"

	"github.com/jakenelson/ampbox/internal/container"
	"github.com/jakenelson/ampbox/internal/credentials"
	"github.com/jakenelson/ampbox/internal/hostenv"
	"gopkg.in/yaml.v3"
)

// Plan is the dry-run description of a launch.
type Plan struct {
	Host        string                    `yaml:"host"`
	Runtime     string                    `yaml:"runtime"`
	Credentials string                    `yaml:"credentials"`
	Container   container.ContainerConfig `yaml:"container"`
}

// writePlan prints cfg as YAML with secret values masked.
func writePlan(w io.Writer, host hostenv.Kind, runtime string, d credentials.Decision, cfg container.ContainerConfig) error {
	if runtime == "" {
		runtime = "auto"
	}

	redacted := d.Redacted()
	env := make(map[string]string, len(cfg.Env))
	for k, v := range cfg.Env {
		if masked, ok := redacted[k]; ok {
			v = masked
		}
		env[k] = v
	}
	cfg.Env = env

	plan := Plan{
		Host:        host.String(),
		Runtime:     runtime,
		Credentials: d.Kind.String(),
		Container:   cfg,
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(plan); err != nil {
		return fmt.Errorf("failed to write plan: %w", err)
	}
	return enc.Close()
}
