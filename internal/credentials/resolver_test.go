package credentials

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mapLookup(m map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func writeSettings(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".claude", "settings.local.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestMergePrecedence(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		file    map[string]string
		wantVal string
		wantSet bool
	}{
		{name: "env only", env: map[string]string{KeyAnthropicAPIKey: "env"}, wantVal: "env", wantSet: true},
		{name: "file only", file: map[string]string{KeyAnthropicAPIKey: "file"}, wantVal: "file", wantSet: true},
		{
			name:    "env wins over file",
			env:     map[string]string{KeyAnthropicAPIKey: "env"},
			file:    map[string]string{KeyAnthropicAPIKey: "file"},
			wantVal: "env",
			wantSet: true,
		},
		{
			name:    "empty env value falls back to file",
			env:     map[string]string{KeyAnthropicAPIKey: ""},
			file:    map[string]string{KeyAnthropicAPIKey: "file"},
			wantVal: "file",
			wantSet: true,
		},
		{name: "absent everywhere", wantSet: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			merged := Merge(mapLookup(tt.env), tt.file)
			v, ok := merged[KeyAnthropicAPIKey]
			assert.Equal(t, tt.wantSet, ok)
			assert.Equal(t, tt.wantVal, v)
		})
	}
}

func TestMergeEveryKeyPrefersEnvironment(t *testing.T) {
	for _, key := range RecognizedKeys {
		t.Run(key, func(t *testing.T) {
			both := Merge(mapLookup(map[string]string{key: "from-env"}), map[string]string{key: "from-file"})
			assert.Equal(t, "from-env", both[key])

			fileOnly := Merge(mapLookup(nil), map[string]string{key: "from-file"})
			assert.Equal(t, "from-file", fileOnly[key])
		})
	}
}

func TestMergeBedrockFlagEmptyIsPresent(t *testing.T) {
	merged := Merge(mapLookup(map[string]string{KeyUseBedrock: ""}), map[string]string{KeyUseBedrock: "1"})

	v, ok := merged[KeyUseBedrock]
	assert.True(t, ok, "explicitly empty flag in the environment should count as set")
	assert.Equal(t, "", v)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		env      map[string]string
		wantKind Kind
		wantErr  error
	}{
		{name: "anthropic", env: map[string]string{KeyAnthropicAPIKey: "sk-ant-1"}, wantKind: AnthropicDirect},
		{
			name:     "bedrock",
			env:      map[string]string{KeyAWSAccessKeyID: "AKIA", KeyAWSSecretAccessKey: "s"},
			wantKind: AWSBedrock,
		},
		{
			name:     "anthropic wins when both present",
			env:      map[string]string{KeyAnthropicAPIKey: "sk-ant-1", KeyAWSAccessKeyID: "AKIA"},
			wantKind: AnthropicDirect,
		},
		{name: "bedrock flag alone is not a credential", env: map[string]string{KeyUseBedrock: "1"}, wantKind: None, wantErr: ErrNoCredentials},
		{name: "nothing", env: map[string]string{}, wantKind: None, wantErr: ErrNoCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Classify(tt.env)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantKind, d.Kind)
		})
	}
}

func TestResolveUsesSettingsFile(t *testing.T) {
	path := writeSettings(t, `{
	"env": {
		"AWS_ACCESS_KEY_ID": "AKIAFILE",
		"AWS_SECRET_ACCESS_KEY": "file-secret",
		"AWS_REGION": "eu-west-1",
		"CLAUDE_CODE_USE_BEDROCK": 1
	}
}`)

	r := NewResolver(
		WithLookup(mapLookup(map[string]string{KeyAWSRegion: "us-east-1"})),
		WithSettingsFile(path),
	)

	d, err := r.Resolve(context.Background())
	require.NoError(t, err)

	assert.Equal(t, AWSBedrock, d.Kind)
	assert.Equal(t, "AKIAFILE", d.AWS.AccessKeyID)
	assert.Equal(t, "us-east-1", d.AWS.Region, "environment region should win over file region")
	assert.Equal(t, "1", d.Env[KeyUseBedrock])
}

func TestResolveIgnoresBrokenSettingsFile(t *testing.T) {
	path := writeSettings(t, `{"env": {`)

	r := NewResolver(
		WithLookup(mapLookup(map[string]string{KeyAnthropicAPIKey: "sk-ant-env"})),
		WithSettingsFile(path),
	)

	d, err := r.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, AnthropicDirect, d.Kind)
	assert.Equal(t, "sk-ant-env", d.APIKey)
}

func TestResolveSettingsFileWithUnrelatedKeys(t *testing.T) {
	path := writeSettings(t, `{
	"env": {
		"ANTHROPIC_API_KEY": "sk-ant-file",
		"OTHER": {"a": 1},
		"LIST": [1, 2]
	},
	"permissions": {"allow": []}
}`)

	r := NewResolver(
		WithLookup(mapLookup(nil)),
		WithSettingsFile(path),
	)

	d, err := r.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, AnthropicDirect, d.Kind)
	assert.Equal(t, "sk-ant-file", d.APIKey)
	assert.NotContains(t, d.Env, "OTHER")
}

func TestLoadSettingsEnvNonScalarRecognizedKey(t *testing.T) {
	path := writeSettings(t, `{"env": {"ANTHROPIC_API_KEY": {"nested": true}}}`)

	_, err := LoadSettingsEnv(path)
	assert.Error(t, err)
}

func TestResolveMissingSettingsFile(t *testing.T) {
	r := NewResolver(
		WithLookup(mapLookup(nil)),
		WithSettingsFile(filepath.Join(t.TempDir(), "missing.json")),
	)

	_, err := r.Resolve(context.Background())
	assert.ErrorIs(t, err, ErrNoCredentials)
}

func TestResolveRegionFallback(t *testing.T) {
	calls := 0
	fallback := func(context.Context) (string, error) {
		calls++
		return "ap-southeast-2", nil
	}

	r := NewResolver(
		WithLookup(mapLookup(map[string]string{KeyAWSAccessKeyID: "AKIA", KeyAWSSecretAccessKey: "s"})),
		WithRegionFallback(fallback),
	)

	d, err := r.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, "ap-southeast-2", d.Env[KeyAWSRegion])

	// A resolved region skips the fallback.
	r = NewResolver(
		WithLookup(mapLookup(map[string]string{KeyAWSAccessKeyID: "AKIA", KeyAWSDefaultRegion: "us-east-2"})),
		WithRegionFallback(fallback),
	)
	d, err = r.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	_, hasRegion := d.Env[KeyAWSRegion]
	assert.False(t, hasRegion)
}

func TestResolveRegionFallbackError(t *testing.T) {
	r := NewResolver(
		WithLookup(mapLookup(map[string]string{KeyAWSAccessKeyID: "AKIA"})),
		WithRegionFallback(func(context.Context) (string, error) { return "", errors.New("no profile") }),
	)

	d, err := r.Resolve(context.Background())
	require.NoError(t, err)
	assert.False(t, d.HasRegion())
}

func TestRedacted(t *testing.T) {
	d, err := Classify(map[string]string{KeyAnthropicAPIKey: "sk-ant-abcdefghijkl", KeyAWSRegion: "us-east-1"})
	require.NoError(t, err)

	red := d.Redacted()
	assert.Equal(t, "sk-a***********ijkl", red[KeyAnthropicAPIKey])
	assert.Equal(t, "us-east-1", red[KeyAWSRegion])
	assert.Equal(t, "sk-ant-abcdefghijkl", d.Env[KeyAnthropicAPIKey], "Redacted must not modify the decision")
}
