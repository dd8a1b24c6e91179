package entrypoint

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/jakenelson/ampbox/internal/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "sk-ant-REDACTED"

func anthropicDecision() credentials.Decision {
	return credentials.Decision{
		Kind:   credentials.AnthropicDirect,
		APIKey: testKey,
		Env:    map[string]string{credentials.KeyAnthropicAPIKey: testKey},
	}
}

func bedrockDecision() credentials.Decision {
	return credentials.Decision{
		Kind: credentials.AWSBedrock,
		AWS:  credentials.AWSCredentials{AccessKeyID: "AKIAEXAMPLE"},
		Env:  map[string]string{credentials.KeyAWSAccessKeyID: "AKIAEXAMPLE"},
	}
}

func TestNewClaudeConfigAnthropic(t *testing.T) {
	cfg, err := NewClaudeConfig(anthropicDecision())
	require.NoError(t, err)

	assert.Equal(t, testKey, cfg.APIKey)
	assert.False(t, cfg.UseBedrock)
	assert.True(t, cfg.HasCompletedOnboarding)
	assert.Equal(t, []string{"qrstuvwxyz0123456789"}, cfg.CustomAPIKeyResponses.Approved)
	assert.Empty(t, cfg.CustomAPIKeyResponses.Rejected)
}

func TestNewClaudeConfigBedrock(t *testing.T) {
	cfg, err := NewClaudeConfig(bedrockDecision())
	require.NoError(t, err)

	assert.Empty(t, cfg.APIKey)
	assert.True(t, cfg.UseBedrock)
	assert.True(t, cfg.HasCompletedOnboarding)
	assert.Empty(t, cfg.CustomAPIKeyResponses.Approved)
}

func TestNewClaudeConfigNoCredentials(t *testing.T) {
	_, err := NewClaudeConfig(credentials.Decision{Kind: credentials.None})
	assert.ErrorIs(t, err, credentials.ErrNoCredentials)
}

func TestClaudeConfigJSON(t *testing.T) {
	tests := []struct {
		name     string
		decision credentials.Decision
		want     map[string]any
	}{
		{
			name:     "anthropic",
			decision: anthropicDecision(),
			want: map[string]any{
				"apiKey":                 testKey,
				"hasCompletedOnboarding": true,
				"projects":               map[string]any{},
				"customApiKeyResponses": map[string]any{
					"approved": []any{"qrstuvwxyz0123456789"},
					"rejected": []any{},
				},
				"mcpServers": map[string]any{},
			},
		},
		{
			name:     "bedrock",
			decision: bedrockDecision(),
			want: map[string]any{
				"useBedrock":             true,
				"hasCompletedOnboarding": true,
				"projects":               map[string]any{},
				"customApiKeyResponses": map[string]any{
					"approved": []any{},
					"rejected": []any{},
				},
				"mcpServers": map[string]any{},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := NewClaudeConfig(tt.decision)
			require.NoError(t, err)

			data, err := json.Marshal(cfg)
			require.NoError(t, err)

			var got map[string]any
			require.NoError(t, json.Unmarshal(data, &got))
			assert.Equal(t, tt.want, got)

			var back ClaudeConfig
			require.NoError(t, json.Unmarshal(data, &back))
			assert.Equal(t, cfg, back)
		})
	}
}

func TestWriteAndVerifyConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "home", ".claude.json")

	cfg, err := NewClaudeConfig(anthropicDecision())
	require.NoError(t, err)
	require.NoError(t, WriteConfig(path, cfg))
	require.NoError(t, VerifyConfig(path, credentials.AnthropicDirect))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	// An Anthropic config does not satisfy a Bedrock check
	assert.ErrorIs(t, VerifyConfig(path, credentials.AWSBedrock), ErrConfigInvalid)
}

func TestVerifyConfigInvalid(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
		kind    credentials.Kind
	}{
		{name: "not json", content: "{apiKey:", kind: credentials.AnthropicDirect},
		{name: "empty key", content: `{"apiKey":"","hasCompletedOnboarding":true}`, kind: credentials.AnthropicDirect},
		{name: "onboarding unset", content: `{"apiKey":"sk-ant-x"}`, kind: credentials.AnthropicDirect},
		{name: "bedrock unset", content: `{"hasCompletedOnboarding":true}`, kind: credentials.AWSBedrock},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".json")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0600))
			assert.ErrorIs(t, VerifyConfig(path, tt.kind), ErrConfigInvalid)
		})
	}

	assert.ErrorIs(t, VerifyConfig(filepath.Join(dir, "missing.json"), credentials.AnthropicDirect), ErrConfigInvalid)
}
