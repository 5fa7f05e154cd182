package statetoken

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRandomGenerator(t *testing.T) {
	g := RandomGenerator{}

	t.Run("Token is 32 hex-encoded bytes", func(t *testing.T) {
		token, err := g.Create()
		assert.NoError(t, err)
		assert.Len(t, token, 64)

		decoded, err := hex.DecodeString(token)
		assert.NoError(t, err)
		assert.Len(t, decoded, 32)
	})

	t.Run("Tokens do not repeat", func(t *testing.T) {
		seen := map[string]bool{}
		for i := 0; i < 1000; i++ {
			token, err := g.Create()
			assert.NoError(t, err)
			assert.False(t, seen[token])
			seen[token] = true
		}
	})
}
