package pnr

import (
	"crypto/rand"
	"fmt"
)

const (
	// Length is the reference code length presented to passengers.
	Length = 6

	alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// Generate draws a reference code uniformly from [A-Z0-9]^6. Uniqueness is
// not checked here: the unique index on bookings.pnr is the backstop, and the
// caller retries the insert with a fresh code on a collision.
func Generate() (string, error) {
	// 36 symbols do not divide 256 evenly; reject bytes past the largest
	// multiple to keep the draw uniform.
	const max = byte(252) // 7 * 36

	code := make([]byte, 0, Length)
	buf := make([]byte, Length)
	for len(code) < Length {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("read random bytes: %w", err)
		}
		for _, b := range buf {
			if b >= max {
				continue
			}
			code = append(code, alphabet[int(b)%len(alphabet)])
			if len(code) == Length {
				break
			}
		}
	}
	return string(code), nil
}
