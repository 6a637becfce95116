package social

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pquerna/otp/totp"
	"golang.org/x/time/rate"
)

// Authenticator obtains bearer credentials from the upstream /auth endpoint
// and caches them in a TokenStore.
//
// Concurrent callers that find the store empty may each refresh; the last
// response wins. No call ever blocks on another caller's refresh.
type Authenticator struct {
	doer    Doer
	store   *TokenStore
	limiter *rate.Limiter
	creds   AuthCredentials
	authURL string
	buffer  time.Duration
	now     func() time.Time
}

// authRequest is the JSON body posted to /auth.
type authRequest struct {
	AuthCredentials
	AccessCode string `json:"accessCode,omitempty"`
}

// authResponse is the upstream /auth success body.
type authResponse struct {
	TokenType   string `json:"token_type"`
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

// ValidToken returns an Authorization header value, refreshing the cached
// credential when it is missing or inside the expiry buffer.
func (a *Authenticator) ValidToken(ctx context.Context) (string, error) {
	if cred, ok := a.store.Get(); ok && cred.ValidAt(a.now(), a.buffer) {
		return cred.Header(), nil
	}
	cred, err := a.refresh(ctx)
	if err != nil {
		return "", err
	}
	return cred.Header(), nil
}

// Credential returns the credential ValidToken would use, refreshing if needed.
func (a *Authenticator) Credential(ctx context.Context) (Credential, error) {
	if cred, ok := a.store.Get(); ok && cred.ValidAt(a.now(), a.buffer) {
		return cred, nil
	}
	return a.refresh(ctx)
}

// Invalidate drops the cached credential so the next ValidToken refreshes.
func (a *Authenticator) Invalidate() {
	a.store.Clear()
}

// refresh posts the credential descriptor and stores the issued token.
func (a *Authenticator) refresh(ctx context.Context) (Credential, error) {
	now := a.now()

	payload, err := a.payload(now)
	if err != nil {
		return Credential{}, &AuthenticationError{Err: err}
	}

	if a.limiter != nil {
		if err := a.limiter.Wait(ctx); err != nil {
			return Credential{}, &AuthenticationError{Err: err}
		}
	} else if err := ctx.Err(); err != nil {
		return Credential{}, &AuthenticationError{Err: err}
	}

	headers := baseHeaders()
	headers["content-type"] = "application/json"
	body, _, status, err := a.doer.DoWithHeaderOrder("POST", a.authURL, headers, bytes.NewReader(payload), headerOrder)
	if err != nil {
		authErr := &AuthenticationError{Err: &TransportError{Op: "POST", URL: a.authURL, Err: err}}
		slog.Warn("auth request failed", slog.String("client_id", a.creds.ClientID), slog.Any("error", err))
		return Credential{}, authErr
	}
	if status < 200 || status > 299 {
		authErr := &AuthenticationError{StatusCode: status}
		if msg := upstreamMessage(body); msg != "" {
			authErr.Err = errors.New(msg)
		}
		slog.Warn("auth rejected",
			slog.String("client_id", a.creds.ClientID),
			slog.Int("status", status),
			slog.String("body", truncateBytes(body, 200)))
		return Credential{}, authErr
	}

	var resp authResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return Credential{}, &AuthenticationError{Err: fmt.Errorf("decode auth response: %w", err)}
	}
	if resp.AccessToken == "" {
		return Credential{}, &AuthenticationError{Err: fmt.Errorf("empty access_token in response")}
	}

	cred := Credential{
		TokenType:   resp.TokenType,
		AccessToken: resp.AccessToken,
		ExpiresAt:   resp.ExpiresIn,
		ObtainedAt:  now.Unix(),
	}
	a.store.Set(cred)
	slog.Debug("auth token acquired",
		slog.String("token_type", cred.TokenType),
		slog.Int64("expires_at", cred.ExpiresAt))
	return cred, nil
}

func (a *Authenticator) payload(now time.Time) ([]byte, error) {
	req := authRequest{AuthCredentials: a.creds}
	if a.creds.TOTPSecret != "" {
		code, err := totp.GenerateCode(a.creds.TOTPSecret, now)
		if err != nil {
			return nil, fmt.Errorf("access code generation: %w", err)
		}
		req.AccessCode = code
	}
	return json.Marshal(req)
}
