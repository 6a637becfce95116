package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gangwarsomya/social/dashboard"
)

const sampleConfig = `
base_url = "http://upstream.local/test"
requests_per_second = 2.5
burst = 3
expiry_buffer = "90s"
observed_at_spread = "10m"
poll_interval = "15s"
top_n = 10
comment_workers = 4

[credentials]
company_name = "goMart"
client_id = "file-id"
client_secret = "file-secret"
owner_name = "Rahul"
owner_email = "rahul@abc.edu"
roll_no = "1"
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "socialdash.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_File(t *testing.T) {
	cfg, err := loadConfig(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "http://upstream.local/test", cfg.Client.BaseURL)
	assert.Equal(t, 2.5, cfg.Client.RequestsPerSecond)
	assert.Equal(t, 3, cfg.Client.Burst)
	assert.Equal(t, 90*time.Second, cfg.Client.ExpiryBuffer)
	assert.Equal(t, 10*time.Minute, cfg.Client.ObservedAtSpread)
	assert.Equal(t, 15*time.Second, cfg.PollInterval)
	assert.Equal(t, dashboard.Config{TopN: 10, CommentConcurrency: 4}, cfg.Dashboard)
	assert.Equal(t, "file-id", cfg.Client.Credentials.ClientID)
	assert.Equal(t, "rahul@abc.edu", cfg.Client.Credentials.OwnerEmail)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("SOCIAL_BASE_URL", "http://env.local")
	t.Setenv("SOCIAL_CLIENT_ID", "env-id")
	t.Setenv("SOCIAL_CLIENT_SECRET", "env-secret")
	t.Setenv("SOCIAL_PROXY", "socks5://127.0.0.1:1080")

	cfg, err := loadConfig(writeConfig(t, sampleConfig))
	require.NoError(t, err)
	assert.Equal(t, "http://env.local", cfg.Client.BaseURL)
	assert.Equal(t, "env-id", cfg.Client.Credentials.ClientID)
	assert.Equal(t, "env-secret", cfg.Client.Credentials.ClientSecret)
	assert.Equal(t, "socks5://127.0.0.1:1080", cfg.Client.Proxy)
	assert.Equal(t, "goMart", cfg.Client.Credentials.CompanyName)
}

func TestLoadConfig_MissingDefaultIsFine(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := loadConfig("")
	require.NoError(t, err)
	assert.Equal(t, dashboard.DefaultPollInterval, cfg.PollInterval)
	assert.Empty(t, cfg.Client.BaseURL)
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := loadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err, "explicit path must exist")

	_, err = loadConfig(writeConfig(t, "base_url = ["))
	require.Error(t, err)

	_, err = loadConfig(writeConfig(t, `poll_interval = "soon"`))
	require.ErrorContains(t, err, "poll_interval")
}
