package statetoken

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
)

// tokenByteCount gives 64 hex characters: enough entropy that a token
// doubles as a CSRF-binding oauth state parameter and a session key.
const tokenByteCount = 32

type RandomGenerator struct{}

func (g RandomGenerator) Create() (string, error) {
	buf := make([]byte, tokenByteCount)

	_, err := io.ReadFull(rand.Reader, buf)
	if err != nil {
		return "", fmt.Errorf("could not generate %d token bytes: %v", tokenByteCount, err)
	}

	return hex.EncodeToString(buf), nil
}
