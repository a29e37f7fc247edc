package report

import (
	"crypto/rand"
	"fmt"
)

// tokenAlphabet keeps share tokens URL-safe without escaping.
const tokenAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// TokenLen is the share token length.
const TokenLen = 16

// maxUnbiased is the largest multiple of len(tokenAlphabet) that fits in a
// byte; values at or above it are redrawn so every character is equally
// likely.
const maxUnbiased = 256 - 256%len(tokenAlphabet)

// NewShareToken draws a 16-character alphanumeric token from crypto/rand.
// The token is generated locally so a report URL can be shown to the user
// even before the service acknowledges the submission.
func NewShareToken() (string, error) {
	out := make([]byte, 0, TokenLen)
	var buf [32]byte
	for len(out) < TokenLen {
		if _, err := rand.Read(buf[:]); err != nil {
			return "", fmt.Errorf("failed to read random bytes: %w", err)
		}
		for _, b := range buf {
			if int(b) >= maxUnbiased {
				continue
			}
			out = append(out, tokenAlphabet[int(b)%len(tokenAlphabet)])
			if len(out) == TokenLen {
				break
			}
		}
	}
	return string(out), nil
}
