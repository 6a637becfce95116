package social

import (
	"errors"
	"io"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testBaseURL = "http://upstream.test/api"

var testNow = time.Unix(1_700_000_000, 0)

type doerCall struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    string
}

type doerReply struct {
	Status  int
	Body    string
	Headers map[string]string
	Err     error
}

// fakeDoer records every exchange and answers through handle.
type fakeDoer struct {
	mu     sync.Mutex
	calls  []doerCall
	handle func(call doerCall) doerReply
}

func (f *fakeDoer) DoWithHeaderOrder(method, url string, headers map[string]string, body io.Reader, _ []string) ([]byte, map[string]string, int, error) {
	call := doerCall{Method: method, URL: url, Headers: make(map[string]string, len(headers))}
	for k, v := range headers {
		call.Headers[k] = v
	}
	if body != nil {
		b, err := io.ReadAll(body)
		if err != nil {
			return nil, nil, 0, err
		}
		call.Body = string(b)
	}

	f.mu.Lock()
	f.calls = append(f.calls, call)
	handle := f.handle
	f.mu.Unlock()

	r := handle(call)
	if r.Err != nil {
		return nil, nil, 0, r.Err
	}
	return []byte(r.Body), r.Headers, r.Status, nil
}

// callsTo returns the recorded calls whose URL ends with suffix.
func (f *fakeDoer) callsTo(suffix string) []doerCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []doerCall
	for _, c := range f.calls {
		if strings.HasSuffix(c.URL, suffix) {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeDoer) authCalls() []doerCall {
	return f.callsTo("/auth")
}

// tokenReply issues access token tok that expires an hour after testNow.
func tokenReply(tok string) doerReply {
	return doerReply{
		Status: 200,
		Body:   `{"token_type":"Bearer","access_token":"` + tok + `","expires_in":` + strconv.FormatInt(testNow.Unix()+3600, 10) + `}`,
	}
}

var errNetwork = errors.New("dial tcp: connection refused")

var testCredentials = AuthCredentials{
	CompanyName:  "goMart",
	ClientID:     "client-1",
	ClientSecret: "secret",
	OwnerName:    "Rahul",
	OwnerEmail:   "rahul@abc.edu",
	RollNo:       "1",
}

// newTestClient builds a Client over doer with throttling disabled and the
// clock pinned to testNow.
func newTestClient(t *testing.T, doer Doer, mutate ...func(*ClientConfig)) *Client {
	t.Helper()
	cfg := ClientConfig{
		BaseURL:           testBaseURL,
		Credentials:       testCredentials,
		RequestsPerSecond: -1,
		Doer:              doer,
		Now:               func() time.Time { return testNow },
	}
	for _, m := range mutate {
		m(&cfg)
	}
	c, err := NewClient(cfg)
	require.NoError(t, err)
	return c
}
