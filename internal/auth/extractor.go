// Package auth extracts and verifies the credentials HTTP requests carry:
// bearer access tokens for users and resource identifiers for applications.
package auth

import (
	"net/http"
	"regexp"
)

// bearerPattern matches a bearer token value. The scheme must open the
// header; tokens are alphanumeric, so a word-character run captures the
// whole token and rejects anything else.
var bearerPattern = regexp.MustCompile(`^Bearer (\w+)`)

// tokenHeaders are checked in order for a bearer token. Some clients send the
// token under Authentication instead of Authorization; both are accepted.
var tokenHeaders = []string{"Authentication", "Authorization"}

// resourceIDHeader carries the caller's application resource identifier.
const resourceIDHeader = "Resource-Id"

// BearerToken extracts the bearer token from the request headers. A missing
// or malformed header is not an error, just an absent token.
func BearerToken(r *http.Request) (string, bool) {
	for _, name := range tokenHeaders {
		value := r.Header.Get(name)
		if value == "" {
			continue
		}
		if m := bearerPattern.FindStringSubmatch(value); m != nil {
			return m[1], true
		}
	}
	return "", false
}

// ResourceID returns the application resource identifier from the request
// headers, or the empty string when absent.
func ResourceID(r *http.Request) string {
	return r.Header.Get(resourceIDHeader)
}
