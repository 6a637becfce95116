package social

import (
	"io"
	"time"

	"github.com/anatolykoptev/go-stealth/ratelimit"
)

// DefaultBaseURL is the upstream test server the dashboard was built against.
const DefaultBaseURL = "http://20.244.56.144/test"

// AuthCredentials is the static identity descriptor posted to /auth.
type AuthCredentials struct {
	CompanyName  string `json:"companyName" toml:"company_name"`
	ClientID     string `json:"clientID" toml:"client_id"`
	ClientSecret string `json:"clientSecret" toml:"client_secret"`
	OwnerName    string `json:"ownerName" toml:"owner_name"`
	OwnerEmail   string `json:"ownerEmail" toml:"owner_email"`
	RollNo       string `json:"rollNo" toml:"roll_no"`

	// TOTPSecret, when set, adds a time-based accessCode to the auth body.
	TOTPSecret string `json:"-" toml:"totp_secret"`
}

// Doer executes a single HTTP exchange. *stealth.BrowserClient satisfies it.
type Doer interface {
	DoWithHeaderOrder(method, url string, headers map[string]string, body io.Reader, order []string) ([]byte, map[string]string, int, error)
}

// ClientConfig holds all configuration for the upstream client.
type ClientConfig struct {
	// BaseURL is the upstream API root, without trailing slash.
	BaseURL string

	// Credentials is posted as JSON to BaseURL+"/auth".
	Credentials AuthCredentials

	// Proxy is an optional proxy URL for the default transport.
	Proxy string

	// RequestsPerSecond and Burst throttle every outbound request, auth included.
	RequestsPerSecond float64
	Burst             int

	// RateLimit configures per-endpoint bookkeeping of upstream 429s.
	RateLimit ratelimit.Config

	// ExpiryBuffer is how long before expiry a cached credential stops being used.
	ExpiryBuffer time.Duration

	// ObservedAtSpread backdates each fetched post's ObservedAt by a random
	// amount in [0, ObservedAtSpread). Zero stamps the fetch time exactly.
	ObservedAtSpread time.Duration

	// MetricsHook is called once per upstream call.
	// endpoint is the operation name, success and rateLimited indicate the outcome.
	MetricsHook func(endpoint string, success, rateLimited bool)

	// Doer replaces the default go-stealth transport. Used by tests.
	Doer Doer

	// Now replaces time.Now. Used by tests.
	Now func() time.Time
}

// defaults fills in zero-value config fields with sensible defaults.
func (cfg *ClientConfig) defaults() {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.RequestsPerSecond == 0 {
		cfg.RequestsPerSecond = 5
	}
	if cfg.Burst == 0 {
		cfg.Burst = 1
	}
	if cfg.RateLimit.RequestsPerWindow == 0 {
		cfg.RateLimit = ratelimit.DefaultConfig
	}
	if cfg.ExpiryBuffer == 0 {
		cfg.ExpiryBuffer = 60 * time.Second
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
}
