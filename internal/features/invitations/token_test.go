package invitations

import (
	"encoding/base64"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_GenerateToken_HasExpectedShape(t *testing.T) {
	token, err := generateToken()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(token, "inv_"))

	// The random component's base64url alphabet includes "_", so only
	// the first two separators are structural.
	parts := strings.SplitN(token, "_", 3)
	require.Len(t, parts, 3)

	_, err = strconv.ParseInt(parts[1], 36, 64)
	assert.NoError(t, err, "time component should be base36")

	randomBytes, err := base64.RawURLEncoding.DecodeString(parts[2])
	require.NoError(t, err)
	assert.Len(t, randomBytes, tokenRandomBytes)
}

func Test_GenerateToken_ProducesUniqueTokens(t *testing.T) {
	seen := make(map[string]bool)

	for i := 0; i < 100; i++ {
		_ = i
		token, err := generateToken()
		require.NoError(t, err)

		assert.False(t, seen[token], "duplicate token generated")
		seen[token] = true
	}
}
