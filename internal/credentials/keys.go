package credentials

// Recognized credential keys
const (
	KeyAnthropicAPIKey    = "ANTHROPIC_API_KEY"
	KeyAWSAccessKeyID     = "AWS_ACCESS_KEY_ID"
	KeyAWSSecretAccessKey = "AWS_SECRET_ACCESS_KEY"
	KeyAWSDefaultRegion   = "AWS_DEFAULT_REGION"
	KeyAWSRegion          = "AWS_REGION"
	KeyUseBedrock         = "CLAUDE_CODE_USE_BEDROCK"
)

// RecognizedKeys lists every key the resolver merges, in forwarding order.
var RecognizedKeys = []string{
	KeyAnthropicAPIKey,
	KeyAWSAccessKeyID,
	KeyAWSSecretAccessKey,
	KeyAWSDefaultRegion,
	KeyAWSRegion,
	KeyUseBedrock,
}

// secretKeys are masked by Decision.Redacted.
var secretKeys = map[string]bool{
	KeyAnthropicAPIKey:    true,
	KeyAWSAccessKeyID:     true,
	KeyAWSSecretAccessKey: true,
}

// present reports whether a value counts as set for key. The Bedrock flag is
// present even when explicitly empty; every other key needs a value.
func present(key, value string, ok bool) bool {
	if !ok {
		return false
	}
	if key == KeyUseBedrock {
		return true
	}
	return value != ""
}
