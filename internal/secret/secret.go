// Package secret generates random passwords and tokens from crypto/rand.
package secret

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

const (
	// PasswordLen is the length of generated passwords, about 98 bits of entropy.
	PasswordLen = 16

	// TokenBytes is the number of random bytes in a session token.
	TokenBytes = 32
)

// PasswordChars are the characters of generated passwords.
// Lookalikes (0/O, 1/l/I) are left out so passwords survive being read aloud.
var PasswordChars = []byte("ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz23456789!#$%*+-=?@")

// Password returns a random password of PasswordLen characters.
func Password() (string, error) {
	return FromChars(PasswordLen, PasswordChars)
}

// FromChars returns a random string of length characters taken from chars.
// Bytes that would bias the modulo are rejected and redrawn.
func FromChars(length int, chars []byte) (string, error) {
	n := len(chars)
	if n < 2 || n > 256 { //nolint:mnd
		return "", fmt.Errorf("charset of %d characters is not supported", n)
	}

	limit := 256 - 256%n
	out := make([]byte, 0, length)
	buf := make([]byte, length+length/2+1) //nolint:mnd

	for len(out) < length {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("failed to read random bytes: %w", err)
		}

		for _, b := range buf {
			if int(b) >= limit {
				continue
			}

			out = append(out, chars[int(b)%n])
			if len(out) == length {
				break
			}
		}
	}

	return string(out), nil
}

// Token returns TokenBytes random bytes, hex encoded.
func Token() (string, error) {
	b := make([]byte, TokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}

	return hex.EncodeToString(b), nil
}
