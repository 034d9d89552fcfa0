// Package resourceid encodes and decodes the composite credential string
// transmitted by client applications in the Resource-Id header.
package resourceid

import (
	"errors"
	"fmt"
	"regexp"
)

// DefaultPattern matches resource identifiers of the form
// rid:<client_id>:<client_secret> where both segments are word characters.
const DefaultPattern = `rid:(?P<client_id>\w+):(?P<client_secret>\w+)`

// ErrMalformedResourceID indicates a resource identifier that does not match
// the configured pattern.
var ErrMalformedResourceID = errors.New("malformed resource id")

// Credentials is the decoded client_id/client_secret pair. Both segments are
// opaque tokens; the codec does not validate their shape further.
type Credentials struct {
	ClientID     string
	ClientSecret string
}

// Codec decodes resource identifiers against a configurable pattern.
type Codec struct {
	re        *regexp.Regexp
	idIdx     int
	secretIdx int
}

// NewCodec compiles the given pattern. The pattern must define client_id and
// client_secret named capture groups.
func NewCodec(pattern string) (*Codec, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compile resource pattern: %w", err)
	}

	idIdx, secretIdx := -1, -1
	for i, name := range re.SubexpNames() {
		switch name {
		case "client_id":
			idIdx = i
		case "client_secret":
			secretIdx = i
		}
	}
	if idIdx < 0 || secretIdx < 0 {
		return nil, fmt.Errorf("resource pattern %q must define client_id and client_secret groups", pattern)
	}

	return &Codec{re: re, idIdx: idIdx, secretIdx: secretIdx}, nil
}

// NewDefaultCodec returns a codec for the default pattern.
func NewDefaultCodec() *Codec {
	c, err := NewCodec(DefaultPattern)
	if err != nil {
		panic(err) // the default pattern always compiles
	}
	return c
}

// Encode produces the wire form "rid:<client_id>:<client_secret>".
func Encode(clientID, clientSecret string) string {
	return fmt.Sprintf("rid:%s:%s", clientID, clientSecret)
}

// Decode parses a resource identifier into its credential pair. The whole
// string must match the pattern; partial matches are rejected.
func (c *Codec) Decode(resourceID string) (Credentials, error) {
	m := c.re.FindStringSubmatch(resourceID)
	if m == nil || m[0] != resourceID {
		return Credentials{}, ErrMalformedResourceID
	}
	return Credentials{
		ClientID:     m[c.idIdx],
		ClientSecret: m[c.secretIdx],
	}, nil
}
