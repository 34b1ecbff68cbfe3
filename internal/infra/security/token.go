package security

import (
	"crypto/rand"
	"encoding/base64"
)

// RandomTokenGenerator produces opaque bearer tokens from crypto/rand.
type RandomTokenGenerator struct {
	// Bytes of entropy per token. Zero means 32.
	Bytes int
}

func (g RandomTokenGenerator) NewToken() (string, error) {
	n := g.Bytes
	if n <= 0 {
		n = 32
	}
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
