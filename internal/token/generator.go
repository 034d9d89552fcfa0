// Package token produces the opaque random strings used as bearer tokens.
package token

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// DefaultLength is the default character length of generated tokens.
const DefaultLength = 200

// charset is alphanumeric only, so tokens are URL-safe and match the \w+
// patterns used for header and resource-id parsing.
const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// Generate returns a cryptographically random token of the requested length.
func Generate(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("token length must be positive, got %d", length)
	}

	b := make([]byte, length)
	max := big.NewInt(int64(len(charset)))
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("read random source: %w", err)
		}
		b[i] = charset[n.Int64()]
	}
	return string(b), nil
}

// Generator produces tokens of a fixed configured length.
type Generator struct {
	length int
}

// NewGenerator creates a generator. A non-positive length falls back to
// DefaultLength.
func NewGenerator(length int) *Generator {
	if length <= 0 {
		length = DefaultLength
	}
	return &Generator{length: length}
}

// Generate returns a new random token.
func (g *Generator) Generate() (string, error) {
	return Generate(g.length)
}
