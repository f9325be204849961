package config

import (
	"testing"
	"time"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "valid with token",
			cfg: Config{
				Addr:        ":8080",
				GitHubToken: "ghp_fake",
				CacheTTL:    time.Hour,
				SampleSize:  10,
			},
		},
		{
			name: "valid without token",
			cfg: Config{
				Addr:       ":8080",
				CacheTTL:   time.Hour,
				SampleSize: 10,
			},
		},
		{
			name: "cache disabled",
			cfg: Config{
				Addr:       ":8080",
				SampleSize: 10,
			},
		},
		{
			name: "missing addr",
			cfg: Config{
				SampleSize: 10,
			},
			wantErr: true,
		},
		{
			name: "negative cache ttl",
			cfg: Config{
				Addr:       ":8080",
				CacheTTL:   -time.Minute,
				SampleSize: 10,
			},
			wantErr: true,
		},
		{
			name: "sample size zero",
			cfg: Config{
				Addr:     ":8080",
				CacheTTL: time.Hour,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("GITHUB_TOKEN", "")
		t.Setenv("GHWRAP_ADDR", "")
		t.Setenv("GHWRAP_CACHE_TTL", "")

		cfg := Config{CacheTTL: -1}
		if err := cfg.LoadFromEnv(); err != nil {
			t.Fatal(err)
		}
		if cfg.Addr != ":8080" {
			t.Errorf("Addr = %q, want :8080", cfg.Addr)
		}
		if cfg.CacheTTL != time.Hour {
			t.Errorf("CacheTTL = %v, want 1h", cfg.CacheTTL)
		}
		if cfg.SampleSize != 10 {
			t.Errorf("SampleSize = %d, want 10", cfg.SampleSize)
		}
		if cfg.GitHubToken != "" {
			t.Errorf("GitHubToken = %q, want empty", cfg.GitHubToken)
		}
	})

	t.Run("env values", func(t *testing.T) {
		t.Setenv("GITHUB_TOKEN", "ghp_fake")
		t.Setenv("GHWRAP_ADDR", ":9999")
		t.Setenv("GHWRAP_CACHE_TTL", "30m")

		cfg := Config{CacheTTL: -1}
		if err := cfg.LoadFromEnv(); err != nil {
			t.Fatal(err)
		}
		if cfg.GitHubToken != "ghp_fake" {
			t.Errorf("GitHubToken = %q", cfg.GitHubToken)
		}
		if cfg.Addr != ":9999" {
			t.Errorf("Addr = %q, want :9999", cfg.Addr)
		}
		if cfg.CacheTTL != 30*time.Minute {
			t.Errorf("CacheTTL = %v, want 30m", cfg.CacheTTL)
		}
	})

	t.Run("flags win over env", func(t *testing.T) {
		t.Setenv("GHWRAP_ADDR", ":9999")
		t.Setenv("GHWRAP_CACHE_TTL", "30m")

		cfg := Config{Addr: ":7777", CacheTTL: 5 * time.Minute}
		if err := cfg.LoadFromEnv(); err != nil {
			t.Fatal(err)
		}
		if cfg.Addr != ":7777" {
			t.Errorf("Addr = %q, want flag value :7777", cfg.Addr)
		}
		if cfg.CacheTTL != 5*time.Minute {
			t.Errorf("CacheTTL = %v, want flag value 5m", cfg.CacheTTL)
		}
	})

	t.Run("explicit zero ttl disables the cache", func(t *testing.T) {
		t.Setenv("GHWRAP_CACHE_TTL", "30m")

		cfg := Config{CacheTTL: 0}
		if err := cfg.LoadFromEnv(); err != nil {
			t.Fatal(err)
		}
		if cfg.CacheTTL != 0 {
			t.Errorf("CacheTTL = %v, want 0 (explicitly disabled)", cfg.CacheTTL)
		}
	})

	t.Run("bad ttl", func(t *testing.T) {
		t.Setenv("GHWRAP_CACHE_TTL", "soon")

		cfg := Config{CacheTTL: -1}
		if err := cfg.LoadFromEnv(); err == nil {
			t.Error("expected error for unparsable GHWRAP_CACHE_TTL")
		}
	})
}
