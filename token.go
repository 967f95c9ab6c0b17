package account

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/google/uuid"
)

// DefaultTokenBytes is the entropy of tokens produced by RandomTokenGenerator
const DefaultTokenBytes = 32

// RandomTokenGenerator reads from crypto/rand and encodes the bytes
// as unpadded base64url so tokens are safe to embed in links.
type RandomTokenGenerator struct {
	Bytes int
}

func (g RandomTokenGenerator) Generate() (string, error) {
	size := g.Bytes
	if size <= 0 {
		size = DefaultTokenBytes
	}

	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read token entropy: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// UUIDTokenGenerator produces random (v4) UUID strings
type UUIDTokenGenerator struct{}

func (UUIDTokenGenerator) Generate() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// TokenGeneratorFunc adapts a function to the TokenGenerator interface.
type TokenGeneratorFunc func() (string, error)

func (f TokenGeneratorFunc) Generate() (string, error) {
	return f()
}
