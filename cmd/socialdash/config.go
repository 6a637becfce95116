package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/gangwarsomya/social"
	"github.com/gangwarsomya/social/dashboard"
)

// defaultConfigPath is read when --config is not given. A missing file is fine.
const defaultConfigPath = "socialdash.toml"

// fileConfig mirrors socialdash.toml.
type fileConfig struct {
	BaseURL           string                 `toml:"base_url"`
	Proxy             string                 `toml:"proxy"`
	RequestsPerSecond float64                `toml:"requests_per_second"`
	Burst             int                    `toml:"burst"`
	ExpiryBuffer      string                 `toml:"expiry_buffer"`
	ObservedAtSpread  string                 `toml:"observed_at_spread"`
	PollInterval      string                 `toml:"poll_interval"`
	TopN              int                    `toml:"top_n"`
	CommentWorkers    int                    `toml:"comment_workers"`
	Credentials       social.AuthCredentials `toml:"credentials"`
}

// appConfig is the resolved runtime configuration.
type appConfig struct {
	Client       social.ClientConfig
	Dashboard    dashboard.Config
	PollInterval time.Duration
}

// loadConfig reads path (or the default path) and applies SOCIAL_* env overrides.
func loadConfig(path string) (*appConfig, error) {
	explicit := path != ""
	if !explicit {
		path = defaultConfigPath
	}

	var fc fileConfig
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	applyEnv(&fc)

	cfg := &appConfig{
		Client: social.ClientConfig{
			BaseURL:           fc.BaseURL,
			Credentials:       fc.Credentials,
			Proxy:             fc.Proxy,
			RequestsPerSecond: fc.RequestsPerSecond,
			Burst:             fc.Burst,
		},
		Dashboard: dashboard.Config{
			TopN:               fc.TopN,
			CommentConcurrency: fc.CommentWorkers,
		},
	}
	if cfg.Client.ExpiryBuffer, err = parseDuration("expiry_buffer", fc.ExpiryBuffer); err != nil {
		return nil, err
	}
	if cfg.Client.ObservedAtSpread, err = parseDuration("observed_at_spread", fc.ObservedAtSpread); err != nil {
		return nil, err
	}
	if cfg.PollInterval, err = parseDuration("poll_interval", fc.PollInterval); err != nil {
		return nil, err
	}
	if cfg.PollInterval == 0 {
		cfg.PollInterval = dashboard.DefaultPollInterval
	}
	return cfg, nil
}

// applyEnv overrides file values with SOCIAL_* environment variables.
func applyEnv(fc *fileConfig) {
	if v := os.Getenv("SOCIAL_BASE_URL"); v != "" {
		fc.BaseURL = v
	}
	if v := os.Getenv("SOCIAL_CLIENT_ID"); v != "" {
		fc.Credentials.ClientID = v
	}
	if v := os.Getenv("SOCIAL_CLIENT_SECRET"); v != "" {
		fc.Credentials.ClientSecret = v
	}
	if v := os.Getenv("SOCIAL_PROXY"); v != "" {
		fc.Proxy = v
	}
}

func parseDuration(key, v string) (time.Duration, error) {
	if v == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config %s: %w", key, err)
	}
	return d, nil
}
