package container

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContainerName(t *testing.T) {
	tests := []struct {
		project string
		pid     int
		want    string
	}{
		{project: "proj", pid: 4242, want: "ampbox-proj-4242"},
		{project: "My Project", pid: 7, want: "ampbox-my-project-7"},
		{project: "_hidden.", pid: 9, want: "ampbox-hidden-9"},
		{project: "///", pid: 12, want: "ampbox-12"},
	}

	for _, tt := range tests {
		t.Run(tt.project, func(t *testing.T) {
			assert.Equal(t, tt.want, ContainerName(tt.project, tt.pid))
		})
	}

	assert.NotEqual(t, ContainerName("proj", 1), ContainerName("proj", 2), "names must differ per process")
}

func TestNewContainerConfig(t *testing.T) {
	cred := map[string]string{"ANTHROPIC_API_KEY": "sk-ant-abc123"}
	mounts := []Mount{ProjectMount("/home/u/proj"), DataMount("/home/u/amplifier-data")}

	cfg := NewContainerConfig("amplifier-claude:latest", "ampbox-proj-1", cred, mounts)

	assert.Equal(t, map[string]string{
		"ANTHROPIC_API_KEY":  "sk-ant-abc123",
		"TARGET_DIR":         "/workspace",
		"AMPLIFIER_DATA_DIR": "/app/amplifier-data",
	}, cfg.Env)
	assert.Equal(t, "/workspace", cfg.Mounts[0].Target)
	assert.Equal(t, PurposeProject, cfg.Mounts[0].Purpose)
	assert.Equal(t, "/app/amplifier-data", cfg.Mounts[1].Target)
	assert.Equal(t, PurposeData, cfg.Mounts[1].Purpose)

	// Inputs are copied, not aliased
	cred["ANTHROPIC_API_KEY"] = "changed"
	mounts[0].Source = "/elsewhere"
	assert.Equal(t, "sk-ant-abc123", cfg.Env["ANTHROPIC_API_KEY"])
	assert.Equal(t, "/home/u/proj", cfg.Mounts[0].Source)
}

func TestEnvListSorted(t *testing.T) {
	cfg := ContainerConfig{Env: map[string]string{"B": "2", "A": "1", "C": ""}}
	assert.Equal(t, []string{"A=1", "B=2", "C="}, cfg.EnvList())
}

func TestMountString(t *testing.T) {
	assert.Equal(t, "/src:/workspace", ProjectMount("/src").String())
	assert.Equal(t, "/src:/dst:ro", Mount{Source: "/src", Target: "/dst", ReadOnly: true}.String())
}
