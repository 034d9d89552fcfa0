package resourceid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	assert.Equal(t, "rid:abc:def", Encode("abc", "def"))
}

func TestDecode_RoundTrip(t *testing.T) {
	c := NewDefaultCodec()

	creds, err := c.Decode(Encode("client123", "secret456"))
	require.NoError(t, err)
	assert.Equal(t, "client123", creds.ClientID)
	assert.Equal(t, "secret456", creds.ClientSecret)
}

func TestDecode_HexCredentials(t *testing.T) {
	c := NewDefaultCodec()

	creds, err := c.Decode("rid:9f86d081884c7d65:6a204bd89f3c8348")
	require.NoError(t, err)
	assert.Equal(t, "9f86d081884c7d65", creds.ClientID)
	assert.Equal(t, "6a204bd89f3c8348", creds.ClientSecret)
}

func TestDecode_Malformed(t *testing.T) {
	c := NewDefaultCodec()

	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"missing prefix", "abc:def"},
		{"wrong prefix", "uid:abc:def"},
		{"missing secret", "rid:abc"},
		{"empty segments", "rid::"},
		{"dash in id", "rid:ab-cd:ef"},
		{"trailing garbage", "rid:abc:def:extra"},
		{"leading garbage", "xrid:abc:def"},
		{"whitespace", "rid:abc :def"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Decode(tt.input)
			assert.ErrorIs(t, err, ErrMalformedResourceID)
		})
	}
}

func TestNewCodec_InvalidPattern(t *testing.T) {
	_, err := NewCodec(`rid:[broken`)
	require.Error(t, err)
}

func TestNewCodec_MissingGroups(t *testing.T) {
	_, err := NewCodec(`rid:(\w+):(\w+)`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "client_id and client_secret")
}

func TestNewCodec_CustomPattern(t *testing.T) {
	c, err := NewCodec(`app\|(?P<client_id>[a-z0-9]+)\|(?P<client_secret>[a-z0-9]+)`)
	require.NoError(t, err)

	creds, err := c.Decode("app|abc123|def456")
	require.NoError(t, err)
	assert.Equal(t, "abc123", creds.ClientID)
	assert.Equal(t, "def456", creds.ClientSecret)

	// The default wire format no longer matches.
	_, err = c.Decode("rid:abc123:def456")
	assert.ErrorIs(t, err, ErrMalformedResourceID)
}
