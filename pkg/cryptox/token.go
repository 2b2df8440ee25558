package cryptox

import (
	"crypto/rand"
	"fmt"
)

// codeAlphabet is the character set for human-shareable access codes. It
// avoids lowercase so codes survive being read over the phone or retyped
// from a printed link.
const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateCode returns a random uppercase alphanumeric code of n characters,
// drawn from a cryptographically secure source.
func GenerateCode(n int) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("code length must be positive, got %d", n)
	}

	// Reject bytes at or above the largest multiple of the alphabet size so
	// every character is equally likely.
	const limit = 256 - 256%len(codeAlphabet)

	out := make([]byte, 0, n)
	buf := make([]byte, n)
	for len(out) < n {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("failed to read random bytes: %w", err)
		}
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			out = append(out, codeAlphabet[int(b)%len(codeAlphabet)])
			if len(out) == n {
				break
			}
		}
	}
	return string(out), nil
}

// MustGenerateCode is like GenerateCode but panics on error. Use only where
// failure of the system randomness source is unrecoverable anyway.
func MustGenerateCode(n int) string {
	code, err := GenerateCode(n)
	if err != nil {
		panic(fmt.Sprintf("cryptox: %v", err))
	}
	return code
}
