package auth

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// MagicTokenBytes is the entropy of a login token. Encoded tokens are 43 characters
// of unpadded URL-safe base64.
const MagicTokenBytes = 32

// GenerateMagicToken draws a fresh login token from crypto/rand.
func GenerateMagicToken() (string, error) {
	buf := make([]byte, MagicTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate magic token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// DigestToken is the form a login token is stored and looked up in.
func DigestToken(token string) string {
	sum := blake2b.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// LoginURL embeds the token as the last path segment under baseURL.
func LoginURL(baseURL, token string) string {
	return strings.TrimRight(baseURL, "/") + "/auth/magic/" + url.PathEscape(token)
}

// UnsubscribeURL is the per-recipient link carried in every broadcast.
func UnsubscribeURL(baseURL, email string) string {
	return strings.TrimRight(baseURL, "/") + "/unsubscribe/" + url.PathEscape(email)
}
