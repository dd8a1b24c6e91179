package credentials

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPassthrough(t *testing.T) {
	d, err := Classify(map[string]string{
		KeyAWSAccessKeyID:     "AKIAEXAMPLE",
		KeyAWSSecretAccessKey: "secret",
		KeyAWSRegion:          "us-west-2",
		KeyUseBedrock:         "",
		"UNRELATED":           "x",
	})
	require.NoError(t, err)

	env := Passthrough(d)

	assert.Equal(t, map[string]string{
		KeyAWSAccessKeyID:     "AKIAEXAMPLE",
		KeyAWSSecretAccessKey: "secret",
		KeyAWSRegion:          "us-west-2",
		KeyUseBedrock:         "",
	}, env)
}

func TestFromEnviron(t *testing.T) {
	env := FromEnviron([]string{
		"PATH=/usr/bin",
		"ANTHROPIC_API_KEY=sk-ant-abc=def",
		"CLAUDE_CODE_USE_BEDROCK=",
		"MALFORMED",
	})

	assert.Equal(t, map[string]string{
		KeyAnthropicAPIKey: "sk-ant-abc=def",
		KeyUseBedrock:      "",
	}, env)
}
