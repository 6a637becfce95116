package social

import "strings"

// defaultUserAgent identifies the dashboard to the upstream API.
const defaultUserAgent = "socialdash/1.0 (+https://github.com/gangwarsomya/social)"

// baseHeaders returns the headers sent on every upstream request.
func baseHeaders() map[string]string {
	return map[string]string{
		"accept":          "application/json",
		"accept-encoding": "gzip, deflate, br",
		"user-agent":      defaultUserAgent,
		"cache-control":   "no-store",
	}
}

// mergeHeaders layers caller headers over base and then sets authorization,
// which always wins regardless of the caller's casing.
func mergeHeaders(base, caller map[string]string, authorization string) map[string]string {
	h := make(map[string]string, len(base)+len(caller)+1)
	for k, v := range base {
		h[k] = v
	}
	for k, v := range caller {
		h[strings.ToLower(k)] = v
	}
	if authorization != "" {
		h["authorization"] = authorization
	}
	return h
}

// headerOrder keeps header emission stable across requests.
var headerOrder = []string{
	"authorization",
	"content-type",
	"accept",
	"accept-encoding",
	"cache-control",
	"user-agent",
}
