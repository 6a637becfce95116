package social

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidToken_CacheStates(t *testing.T) {
	now := testNow.Unix()
	tests := []struct {
		name        string
		cached      *Credential
		wantNetwork int
		wantToken   string
	}{
		{"empty store", nil, 1, "Bearer fresh"},
		{"expired", &Credential{TokenType: "Bearer", AccessToken: "old", ExpiresAt: now - 10}, 1, "Bearer fresh"},
		{"inside buffer", &Credential{TokenType: "Bearer", AccessToken: "old", ExpiresAt: now + 30}, 1, "Bearer fresh"},
		{"exactly at buffer", &Credential{TokenType: "Bearer", AccessToken: "old", ExpiresAt: now + 60}, 1, "Bearer fresh"},
		{"just past buffer", &Credential{TokenType: "Bearer", AccessToken: "old", ExpiresAt: now + 61}, 0, "Bearer old"},
		{"far future", &Credential{TokenType: "Bearer", AccessToken: "old", ExpiresAt: now + 86400}, 0, "Bearer old"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doer := &fakeDoer{handle: func(doerCall) doerReply { return tokenReply("fresh") }}
			c := newTestClient(t, doer)
			if tt.cached != nil {
				c.Store().Set(*tt.cached)
			}

			tok, err := c.Authenticator().ValidToken(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.wantToken, tok)
			assert.Len(t, doer.authCalls(), tt.wantNetwork)

			stored, ok := c.Store().Get()
			require.True(t, ok)
			assert.Equal(t, tok, stored.Header())
			if tt.wantNetwork == 1 {
				assert.Equal(t, testNow.Unix(), stored.ObtainedAt)
				assert.Equal(t, testNow.Unix()+3600, stored.ExpiresAt)
			}
		})
	}
}

func TestValidToken_PostsCredentialDescriptor(t *testing.T) {
	doer := &fakeDoer{handle: func(doerCall) doerReply { return tokenReply("abc") }}
	c := newTestClient(t, doer)

	_, err := c.Authenticator().ValidToken(context.Background())
	require.NoError(t, err)

	calls := doer.authCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, "POST", calls[0].Method)
	assert.Equal(t, testBaseURL+"/auth", calls[0].URL)
	assert.Equal(t, "application/json", calls[0].Headers["content-type"])

	var body map[string]string
	require.NoError(t, json.Unmarshal([]byte(calls[0].Body), &body))
	assert.Equal(t, map[string]string{
		"companyName":  "goMart",
		"clientID":     "client-1",
		"clientSecret": "secret",
		"ownerName":    "Rahul",
		"ownerEmail":   "rahul@abc.edu",
		"rollNo":       "1",
	}, body)
}

func TestValidToken_AccessCodeWithTOTPSecret(t *testing.T) {
	doer := &fakeDoer{handle: func(doerCall) doerReply { return tokenReply("abc") }}
	c := newTestClient(t, doer, func(cfg *ClientConfig) {
		cfg.Credentials.TOTPSecret = "JBSWY3DPEHPK3PXP"
	})

	_, err := c.Authenticator().ValidToken(context.Background())
	require.NoError(t, err)

	var body map[string]string
	require.NoError(t, json.Unmarshal([]byte(doer.authCalls()[0].Body), &body))
	assert.Len(t, body["accessCode"], 6)
	assert.NotContains(t, body, "TOTPSecret")
}

func TestValidToken_NonSuccessStatus(t *testing.T) {
	doer := &fakeDoer{handle: func(doerCall) doerReply {
		return doerReply{Status: 403, Body: `{"message":"invalid client secret"}`}
	}}
	c := newTestClient(t, doer)

	_, err := c.Authenticator().ValidToken(context.Background())
	require.Error(t, err)

	var authErr *AuthenticationError
	require.True(t, errors.As(err, &authErr))
	assert.Equal(t, 403, authErr.StatusCode)
	assert.Contains(t, err.Error(), "invalid client secret")
	assert.Len(t, doer.authCalls(), 1, "no retry at the auth layer")

	_, ok := c.Store().Get()
	assert.False(t, ok)
}

func TestValidToken_TransportFailure(t *testing.T) {
	doer := &fakeDoer{handle: func(doerCall) doerReply { return doerReply{Err: errNetwork} }}
	c := newTestClient(t, doer)

	_, err := c.Authenticator().ValidToken(context.Background())

	var authErr *AuthenticationError
	require.True(t, errors.As(err, &authErr))
	assert.Zero(t, authErr.StatusCode)

	var tErr *TransportError
	require.True(t, errors.As(err, &tErr))
	assert.Equal(t, "POST", tErr.Op)
	assert.ErrorIs(t, err, errNetwork)
}

func TestValidToken_BadBody(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `<html>`},
		{"missing token", `{"token_type":"Bearer","expires_in":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doer := &fakeDoer{handle: func(doerCall) doerReply { return doerReply{Status: 200, Body: tt.body} }}
			c := newTestClient(t, doer)

			_, err := c.Authenticator().ValidToken(context.Background())
			var authErr *AuthenticationError
			require.True(t, errors.As(err, &authErr))
			_, ok := c.Store().Get()
			assert.False(t, ok)
		})
	}
}

func TestValidToken_CancelledContext(t *testing.T) {
	doer := &fakeDoer{handle: func(doerCall) doerReply { return tokenReply("abc") }}
	c := newTestClient(t, doer)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Authenticator().ValidToken(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, doer.authCalls())
}

func TestInvalidate(t *testing.T) {
	doer := &fakeDoer{handle: func(doerCall) doerReply { return tokenReply("abc") }}
	c := newTestClient(t, doer)

	require.NoError(t, c.Authenticate(context.Background()))
	require.NoError(t, c.Authenticate(context.Background()))
	assert.Len(t, doer.authCalls(), 1)

	c.Authenticator().Invalidate()
	require.NoError(t, c.Authenticate(context.Background()))
	assert.Len(t, doer.authCalls(), 2)
}
