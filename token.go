package social

import (
	"sync"
	"time"
)

// Credential is a bearer credential issued by the upstream auth endpoint.
type Credential struct {
	TokenType   string
	AccessToken string

	// ExpiresAt holds the upstream expires_in value verbatim. The upstream
	// reports it as an absolute epoch second, not a duration.
	ExpiresAt  int64
	ObtainedAt int64 // epoch seconds
}

// Header returns the Authorization header value, "<type> <token>".
func (c Credential) Header() string {
	return c.TokenType + " " + c.AccessToken
}

// ValidAt reports whether the credential is still usable at now, keeping
// buffer in reserve before expiry.
func (c Credential) ValidAt(now time.Time, buffer time.Duration) bool {
	return now.Unix()+int64(buffer/time.Second) < c.ExpiresAt
}

// TokenStore holds at most one cached Credential.
// The zero value is an empty store ready for use.
type TokenStore struct {
	mu   sync.Mutex
	cred *Credential
}

// NewTokenStore returns an empty store.
func NewTokenStore() *TokenStore {
	return &TokenStore{}
}

// Get returns the cached credential, if any.
func (s *TokenStore) Get() (Credential, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cred == nil {
		return Credential{}, false
	}
	return *s.cred, true
}

// Set replaces the cached credential wholesale.
func (s *TokenStore) Set(c Credential) {
	s.mu.Lock()
	s.cred = &c
	s.mu.Unlock()
}

// Clear drops the cached credential.
func (s *TokenStore) Clear() {
	s.mu.Lock()
	s.cred = nil
	s.mu.Unlock()
}
