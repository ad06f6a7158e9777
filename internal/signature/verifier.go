// Package signature verifies provider webhook signatures.
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"
)

const (
	// Header carries the provider signature of the raw request body.
	Header = "X-Hub-Signature-256"

	prefix = "sha256="
)

// Verify reports whether signatureHeader is the HMAC-SHA256 of the exact rawBody
// bytes under secret. It fails closed on any missing or malformed input.
func Verify(rawBody []byte, signatureHeader, secret string) bool {
	if secret == "" || signatureHeader == "" {
		return false
	}
	if !strings.HasPrefix(signatureHeader, prefix) {
		return false
	}

	theirs, err := hex.DecodeString(signatureHeader[len(prefix):])
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(rawBody)
	ours := mac.Sum(nil)

	if len(theirs) != len(ours) {
		return false
	}
	return subtle.ConstantTimeCompare(theirs, ours) == 1
}

// Sign returns the header value the provider would send for rawBody.
func Sign(rawBody []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(rawBody)
	return prefix + hex.EncodeToString(mac.Sum(nil))
}
