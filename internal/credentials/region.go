package credentials

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
)

// RegionFunc looks up a fallback AWS region.
type RegionFunc func(ctx context.Context) (string, error)

// ProfileRegion returns the region of the shared AWS profile
// (~/.aws/config, AWS_PROFILE).
func ProfileRegion(ctx context.Context) (string, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to load AWS config: %w", err)
	}
	return cfg.Region, nil
}
