package social

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	stealth "github.com/anatolykoptev/go-stealth"
	"github.com/anatolykoptev/go-stealth/ratelimit"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

// Client talks to the upstream social-data API on behalf of the dashboard.
type Client struct {
	doer      Doer
	store     *TokenStore
	auth      *Authenticator
	limiter   *rate.Limiter
	endpoints *ratelimit.Limiter
	cfg       ClientConfig
}

// NewClient creates a fully-wired upstream client.
// It fails with ErrMissingCredentials when ClientID or ClientSecret is empty.
func NewClient(cfg ClientConfig) (*Client, error) {
	cfg.defaults()
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Credentials.ClientID == "" || cfg.Credentials.ClientSecret == "" {
		return nil, ErrMissingCredentials
	}

	doer := cfg.Doer
	if doer == nil {
		opts := []stealth.ClientOption{
			stealth.WithHeaderOrder(headerOrder),
		}
		if cfg.Proxy != "" {
			opts = append(opts, stealth.WithProxy(cfg.Proxy))
		}
		bc, err := stealth.NewClient(opts...)
		if err != nil {
			return nil, fmt.Errorf("stealth client: %w", err)
		}
		doer = bc
	}

	limit := rate.Limit(cfg.RequestsPerSecond)
	if cfg.RequestsPerSecond < 0 || math.IsInf(cfg.RequestsPerSecond, 1) {
		limit = rate.Inf
	}
	limiter := rate.NewLimiter(limit, cfg.Burst)

	store := NewTokenStore()
	c := &Client{
		doer:      doer,
		store:     store,
		limiter:   limiter,
		endpoints: ratelimit.NewLimiter(cfg.RateLimit),
		cfg:       cfg,
		auth: &Authenticator{
			doer:    doer,
			store:   store,
			limiter: limiter,
			creds:   cfg.Credentials,
			authURL: cfg.BaseURL + "/auth",
			buffer:  cfg.ExpiryBuffer,
			now:     cfg.Now,
		},
	}
	return c, nil
}

// Store returns the credential cache shared by all requests of this client.
func (c *Client) Store() *TokenStore {
	return c.store
}

// Authenticator returns the client's credential source.
func (c *Client) Authenticator() *Authenticator {
	return c.auth
}

// BaseURL returns the upstream API root.
func (c *Client) BaseURL() string {
	return c.cfg.BaseURL
}

// Authenticate ensures a valid credential is cached, acquiring one if needed.
func (c *Client) Authenticate(ctx context.Context) error {
	_, err := c.auth.ValidToken(ctx)
	return err
}

// TokenSource exposes the cached credential to oauth2-aware HTTP clients.
func (c *Client) TokenSource(ctx context.Context) oauth2.TokenSource {
	return &tokenSource{ctx: ctx, auth: c.auth}
}

type tokenSource struct {
	ctx  context.Context
	auth *Authenticator
}

// Token implements oauth2.TokenSource.
func (t *tokenSource) Token() (*oauth2.Token, error) {
	cred, err := t.auth.Credential(t.ctx)
	if err != nil {
		return nil, err
	}
	return &oauth2.Token{
		AccessToken: cred.AccessToken,
		TokenType:   cred.TokenType,
		Expiry:      time.Unix(cred.ExpiresAt, 0),
	}, nil
}

// recordAPICall calls the metrics hook if configured.
func (c *Client) recordAPICall(endpoint string, success, rateLimited bool) {
	if c.cfg.MetricsHook != nil {
		c.cfg.MetricsHook(endpoint, success, rateLimited)
	}
}
