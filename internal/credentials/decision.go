package credentials

import (
	"errors"
	"strings"
)

// ErrNoCredentials is returned when neither an Anthropic API key nor AWS
// credentials could be resolved.
var ErrNoCredentials = errors.New("no credentials found: set ANTHROPIC_API_KEY or AWS_ACCESS_KEY_ID/AWS_SECRET_ACCESS_KEY")

// Kind identifies which credential drives the session.
type Kind int

const (
	None Kind = iota
	AnthropicDirect
	AWSBedrock
)

// String returns the name of the credential kind.
func (k Kind) String() string {
	switch k {
	case AnthropicDirect:
		return "anthropic"
	case AWSBedrock:
		return "bedrock"
	default:
		return "none"
	}
}

// AWSCredentials holds the Bedrock credential values.
type AWSCredentials struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	DefaultRegion   string
}

// Decision is the resolved credential choice. Exactly one Kind is active and
// Env carries every recognized key that was resolved, verbatim.
type Decision struct {
	Kind   Kind
	APIKey string
	AWS    AWSCredentials
	Env    map[string]string
}

// Classify turns merged key values into a Decision. The Anthropic key wins
// when both an API key and AWS credentials are present.
func Classify(env map[string]string) (Decision, error) {
	d := Decision{Env: make(map[string]string)}
	for _, key := range RecognizedKeys {
		if v, ok := env[key]; present(key, v, ok) {
			d.Env[key] = v
		}
	}

	switch {
	case d.Env[KeyAnthropicAPIKey] != "":
		d.Kind = AnthropicDirect
		d.APIKey = d.Env[KeyAnthropicAPIKey]
	case d.Env[KeyAWSAccessKeyID] != "":
		d.Kind = AWSBedrock
		d.AWS = AWSCredentials{
			AccessKeyID:     d.Env[KeyAWSAccessKeyID],
			SecretAccessKey: d.Env[KeyAWSSecretAccessKey],
			Region:          d.Env[KeyAWSRegion],
			DefaultRegion:   d.Env[KeyAWSDefaultRegion],
		}
	default:
		return Decision{Kind: None}, ErrNoCredentials
	}

	return d, nil
}

// HasRegion reports whether either AWS region key was resolved.
func (d Decision) HasRegion() bool {
	return d.Env[KeyAWSRegion] != "" || d.Env[KeyAWSDefaultRegion] != ""
}

// Redacted returns Env with secret values masked, for display.
func (d Decision) Redacted() map[string]string {
	out := make(map[string]string, len(d.Env))
	for k, v := range d.Env {
		if secretKeys[k] {
			out[k] = mask(v)
		} else {
			out[k] = v
		}
	}
	return out
}

func mask(v string) string {
	if len(v) <= 8 {
		return strings.Repeat("*", len(v))
	}
	return v[:4] + strings.Repeat("*", len(v)-8) + v[len(v)-4:]
}
