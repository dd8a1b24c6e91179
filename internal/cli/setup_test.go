package cli

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jakenelson/ampbox/internal/config"
	"github.com/jakenelson/ampbox/internal/credentials"
	"gopkg.in/yaml.v3"
)

func TestDetectCredentials(t *testing.T) {
	dir := t.TempDir()
	settings := filepath.Join(dir, "settings.local.json")
	if err := os.WriteFile(settings, []byte(`{"env":{"AWS_ACCESS_KEY_ID":"AKIAFILE"}}`), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		env      map[string]string
		settings string
		wantKind credentials.Kind
		wantErr  error
	}{
		{
			name:    "nothing set",
			env:     map[string]string{},
			wantErr: credentials.ErrNoCredentials,
		},
		{
			name:     "api key in env",
			env:      map[string]string{"ANTHROPIC_API_KEY": "test-key"},
			wantKind: credentials.AnthropicDirect,
		},
		{
			name:     "bedrock from settings file",
			env:      map[string]string{},
			settings: settings,
			wantKind: credentials.AWSBedrock,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lookup := func(key string) (string, bool) {
				v, ok := tt.env[key]
				return v, ok
			}

			d, err := detectCredentials(context.Background(), lookup, tt.settings)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("detectCredentials() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("detectCredentials() error = %v", err)
			}
			if d.Kind != tt.wantKind {
				t.Errorf("detectCredentials() kind = %v, want %v", d.Kind, tt.wantKind)
			}
		})
	}
}

func TestParseChoice(t *testing.T) {
	options := []string{config.RuntimeAuto, config.RuntimeDocker, config.RuntimePodman}

	tests := []struct {
		input string
		want  string
	}{
		{input: "\n", want: config.RuntimeAuto},
		{input: "2\n", want: config.RuntimeDocker},
		{input: " Podman \n", want: config.RuntimePodman},
		{input: "4\n", want: ""},
		{input: "kubernetes\n", want: ""},
	}

	for _, tt := range tests {
		if got := parseChoice(tt.input, options...); got != tt.want {
			t.Errorf("parseChoice(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestGenerateConfig(t *testing.T) {
	content := generateConfig(config.RuntimePodman, "4g", config.NetworkBridge)

	var parsed struct {
		Image struct {
			Name string `yaml:"name"`
		} `yaml:"image"`
		Runtime   string `yaml:"runtime"`
		Container struct {
			MemoryLimit string `yaml:"memory_limit"`
			Network     string `yaml:"network"`
		} `yaml:"container"`
	}
	if err := yaml.Unmarshal([]byte(content), &parsed); err != nil {
		t.Fatalf("generated config is not valid YAML: %v", err)
	}

	if parsed.Image.Name != config.DefaultImageName {
		t.Errorf("image.name = %q, want %q", parsed.Image.Name, config.DefaultImageName)
	}
	if parsed.Runtime != config.RuntimePodman {
		t.Errorf("runtime = %q, want %q", parsed.Runtime, config.RuntimePodman)
	}
	if parsed.Container.MemoryLimit != "4g" {
		t.Errorf("container.memory_limit = %q, want 4g", parsed.Container.MemoryLimit)
	}
	if parsed.Container.Network != config.NetworkBridge {
		t.Errorf("container.network = %q, want %q", parsed.Container.Network, config.NetworkBridge)
	}
}

func TestGenerateConfigNoMemoryLimit(t *testing.T) {
	content := generateConfig(config.RuntimeAuto, "", config.NetworkNone)

	if !strings.Contains(content, "# memory_limit: 4g") {
		t.Error("generateConfig() should leave memory_limit commented out")
	}
	if !strings.Contains(content, "network: none") {
		t.Error("generateConfig() missing network: none")
	}
}
