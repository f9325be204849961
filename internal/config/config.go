package config

import (
	"fmt"
	"os"
	"time"
)

const (
	defaultAddr       = ":8080"
	defaultCacheTTL   = time.Hour
	defaultSampleSize = 10
)

// Config holds all runtime configuration for ghwrap.
type Config struct {
	Addr        string
	GitHubToken string
	CacheTTL    time.Duration
	SampleSize  int
	Verbose     bool
}

// Validate checks that all fields are set and consistent. An empty
// GitHubToken passes: the service runs unauthenticated with estimated
// stats, which is a supported mode rather than a misconfiguration.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("listen address is required")
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("cache TTL must not be negative")
	}
	if c.SampleSize < 1 {
		return fmt.Errorf("--sample must be at least 1")
	}
	return nil
}

// LoadFromEnv populates environment-dependent fields, keeping any value
// already set by a flag.
func (c *Config) LoadFromEnv() error {
	c.GitHubToken = os.Getenv("GITHUB_TOKEN")
	if c.Addr == "" {
		c.Addr = os.Getenv("GHWRAP_ADDR")
	}
	if c.Addr == "" {
		c.Addr = defaultAddr
	}
	// A negative TTL means the flag was not given; zero is an explicit
	// "cache disabled" and must survive defaulting.
	if c.CacheTTL < 0 {
		c.CacheTTL = defaultCacheTTL
		if ttl := os.Getenv("GHWRAP_CACHE_TTL"); ttl != "" {
			d, err := time.ParseDuration(ttl)
			if err != nil {
				return fmt.Errorf("invalid GHWRAP_CACHE_TTL %q: %w", ttl, err)
			}
			c.CacheTTL = d
		}
	}
	if c.SampleSize == 0 {
		c.SampleSize = defaultSampleSize
	}
	return nil
}
