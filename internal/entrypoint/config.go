package entrypoint

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jakenelson/ampbox/internal/credentials"
)

// ErrConfigInvalid is returned when the written configuration does not read
// back with the fields the assistant CLI needs to skip onboarding.
var ErrConfigInvalid = errors.New("claude configuration is invalid")

// approvedKeyLen is how much of the key tail the CLI stores as approved.
const approvedKeyLen = 20

// ClaudeConfig is the assistant CLI's user configuration file.
type ClaudeConfig struct {
	APIKey                 string          `json:"apiKey,omitempty"`
	UseBedrock             bool            `json:"useBedrock,omitempty"`
	HasCompletedOnboarding bool            `json:"hasCompletedOnboarding"`
	Projects               map[string]any  `json:"projects"`
	CustomAPIKeyResponses  APIKeyResponses `json:"customApiKeyResponses"`
	MCPServers             map[string]any  `json:"mcpServers"`
}

// APIKeyResponses records which API keys the user approved or rejected.
type APIKeyResponses struct {
	Approved []string `json:"approved"`
	Rejected []string `json:"rejected"`
}

// NewClaudeConfig renders the configuration for d.
func NewClaudeConfig(d credentials.Decision) (ClaudeConfig, error) {
	cfg := ClaudeConfig{
		HasCompletedOnboarding: true,
		Projects:               map[string]any{},
		MCPServers:             map[string]any{},
		CustomAPIKeyResponses: APIKeyResponses{
			Approved: []string{},
			Rejected: []string{},
		},
	}

	switch d.Kind {
	case credentials.AnthropicDirect:
		cfg.APIKey = d.APIKey
		cfg.CustomAPIKeyResponses.Approved = []string{keySuffix(d.APIKey)}
	case credentials.AWSBedrock:
		cfg.UseBedrock = true
	default:
		return ClaudeConfig{}, credentials.ErrNoCredentials
	}
	return cfg, nil
}

func keySuffix(key string) string {
	if len(key) <= approvedKeyLen {
		return key
	}
	return key[len(key)-approvedKeyLen:]
}

// WriteConfig writes cfg to path, readable only by the owner.
func WriteConfig(path string, cfg ClaudeConfig) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode claude configuration: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// VerifyConfig reads path back and checks the fields required for kind.
func VerifyConfig(path string, kind credentials.Kind) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConfigInvalid, err)
	}

	var cfg ClaudeConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("%w: %s is not valid JSON: %v", ErrConfigInvalid, path, err)
	}

	switch kind {
	case credentials.AnthropicDirect:
		if cfg.APIKey == "" {
			return fmt.Errorf("%w: apiKey is empty", ErrConfigInvalid)
		}
		if !cfg.HasCompletedOnboarding {
			return fmt.Errorf("%w: hasCompletedOnboarding is not set", ErrConfigInvalid)
		}
	case credentials.AWSBedrock:
		if !cfg.UseBedrock {
			return fmt.Errorf("%w: useBedrock is not set", ErrConfigInvalid)
		}
	default:
		return fmt.Errorf("%w: unknown credential kind %s", ErrConfigInvalid, kind)
	}
	return nil
}
