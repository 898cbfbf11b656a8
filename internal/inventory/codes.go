package inventory

import (
	"context"
	"crypto/rand"
	"fmt"
)

// ReservationCodePrefix starts every reservation code.
const ReservationCodePrefix = "RES"

const (
	codeAlphabet      = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeSuffixLength  = 6
	maxCodeAttempts   = 16
	unbiasedByteLimit = 256 - 256%len(codeAlphabet)
)

// CodeSource draws n characters from [A-Z0-9].
type CodeSource func(n int) (string, error)

// RandomCode is the default CodeSource, backed by crypto/rand.
func RandomCode(n int) (string, error) {
	out := make([]byte, 0, n)
	buf := make([]byte, n)
	for len(out) < n {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("reading random bytes: %w", err)
		}
		for _, b := range buf {
			if int(b) >= unbiasedByteLimit {
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

// issueCode draws reservation codes until one has not been issued before.
func issueCode(ctx context.Context, src CodeSource, store ItemStore) (string, error) {
	for range maxCodeAttempts {
		suffix, err := src(codeSuffixLength)
		if err != nil {
			return "", fmt.Errorf("drawing reservation code: %w", err)
		}
		code := ReservationCodePrefix + suffix
		exists, err := store.ReservationCodeExists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("checking reservation code: %w", err)
		}
		if !exists {
			return code, nil
		}
	}
	return "", fmt.Errorf("no unused reservation code after %d attempts", maxCodeAttempts)
}
