// Package credentials resolves which credential the container session runs
// with, merging the process environment with the project's local settings file.
package credentials

import (
	"context"
	"os"

	"github.com/charmbracelet/log"
	"github.com/jakenelson/ampbox/internal/logging"
)

// LookupFunc looks up an environment variable.
type LookupFunc func(key string) (string, bool)

// Resolver merges credential sources into a Decision.
type Resolver struct {
	lookup       LookupFunc
	settingsPath string
	region       RegionFunc
	logger       *log.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLookup sets the environment lookup. Defaults to os.LookupEnv.
func WithLookup(fn LookupFunc) Option {
	return func(r *Resolver) {
		r.lookup = fn
	}
}

// WithSettingsFile sets the settings file consulted for keys absent from the environment.
func WithSettingsFile(path string) Option {
	return func(r *Resolver) {
		r.settingsPath = path
	}
}

// WithRegionFallback sets the lookup used when a Bedrock decision has no region.
func WithRegionFallback(fn RegionFunc) Option {
	return func(r *Resolver) {
		r.region = fn
	}
}

// WithLogger sets the logger for warnings.
func WithLogger(logger *log.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// NewResolver creates a resolver.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		lookup: os.LookupEnv,
		logger: logging.Discard(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve merges the sources and classifies the result.
func (r *Resolver) Resolve(ctx context.Context) (Decision, error) {
	var fileEnv map[string]string
	if r.settingsPath != "" {
		env, err := LoadSettingsEnv(r.settingsPath)
		if err != nil {
			r.logger.Warn("ignoring settings file", "path", r.settingsPath, "err", err)
		} else {
			fileEnv = env
		}
	}

	merged := Merge(r.lookup, fileEnv)
	d, err := Classify(merged)
	if err != nil {
		return d, err
	}
	r.logger.Debug("resolved credentials", "kind", d.Kind)

	if d.Kind == AWSBedrock && !d.HasRegion() && r.region != nil {
		region, err := r.region(ctx)
		switch {
		case err != nil:
			r.logger.Debug("no AWS profile region", "err", err)
		case region != "":
			r.logger.Debug("using AWS profile region", "region", region)
			d.Env[KeyAWSRegion] = region
			d.AWS.Region = region
		}
	}

	return d, nil
}

// Merge combines environment and file values per recognized key. The
// environment always wins; a file value is used only when the key is absent
// from the environment.
func Merge(lookup LookupFunc, fileEnv map[string]string) map[string]string {
	merged := make(map[string]string)
	for _, key := range RecognizedKeys {
		if v, ok := lookup(key); present(key, v, ok) {
			merged[key] = v
			continue
		}
		if v, ok := fileEnv[key]; present(key, v, ok) {
			merged[key] = v
		}
	}
	return merged
}
