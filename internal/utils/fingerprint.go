package utils

import (
	"crypto/sha256"
	"encoding/hex"
)

// fingerprintBytes is the number of digest bytes kept, rendered as twice as many hex characters.
const fingerprintBytes = 4

// Fingerprint returns a short sha256 prefix of a secret or API key that is safe to log.
// Blank values have no fingerprint so logs do not suggest a key was configured.
func Fingerprint(secret string) string {
	if IsBlank(secret) {
		return ""
	}
	digest := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(digest[:fingerprintBytes])
}
