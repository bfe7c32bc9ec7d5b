package schema

import (
	"crypto/rand"
	"io"
)

const (
	PasswordLength   = 8
	PasswordAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

// GeneratePassword draws PasswordLength characters uniformly from
// PasswordAlphabet. A nil source uses crypto/rand.
func GeneratePassword(src io.Reader) (string, error) {
	if src == nil {
		src = rand.Reader
	}
	// Bytes at or above the largest multiple of the alphabet size are
	// rejected so that every character is equally likely.
	limit := byte(256 - 256%len(PasswordAlphabet))
	out := make([]byte, 0, PasswordLength)
	buf := make([]byte, PasswordLength*2)
	for len(out) < PasswordLength {
		if _, err := io.ReadFull(src, buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if b >= limit {
				continue
			}
			out = append(out, PasswordAlphabet[int(b)%len(PasswordAlphabet)])
			if len(out) == PasswordLength {
				break
			}
		}
	}
	return string(out), nil
}
