package invitations

import (
	"crypto/rand"
	"encoding/base64"
	"strconv"
	"time"
)

const (
	tokenPrefix      = "inv_"
	tokenRandomBytes = 32 // 256 bits of entropy
)

// generateToken builds an invitation token: "inv_" + a millisecond
// timestamp in base36 + "_" + 32 random bytes, URL-safe base64. The
// time component only helps humans sort and debug tokens; it carries
// no security value and expiry never reads it.
func generateToken() (string, error) {
	randomBytes := make([]byte, tokenRandomBytes)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", err
	}

	timeComponent := strconv.FormatInt(time.Now().UnixMilli(), 36)
	randomComponent := base64.RawURLEncoding.EncodeToString(randomBytes)

	return tokenPrefix + timeComponent + "_" + randomComponent, nil
}
