// Package sessionid generates wager session identifiers: UUIDv7 values
// rendered as 26-character Crockford base32 strings, so that ids sort by
// creation time and are short enough to type into a chat command.
package sessionid

import (
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
)

const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

// Length of an encoded id.
const Length = 26

// Generator creates ids. The zero value draws randomness from crypto/rand.
type Generator struct {
	// Rand overrides the randomness source; tests pass a seeded reader.
	Rand io.Reader
}

// New returns a fresh id using crypto randomness.
func New() string {
	return Generator{}.New()
}

// New returns a fresh id.
func (g Generator) New() string {
	var (
		id  uuid.UUID
		err error
	)
	if g.Rand != nil {
		id, err = uuid.NewV7FromReader(g.Rand)
	} else {
		id, err = uuid.NewV7()
	}
	if err != nil {
		panic("sessionid: generate uuid: " + err.Error())
	}
	return Encode(id)
}

// Encode renders a UUID as 26 base32 characters. The 128 bits are treated as
// a 130-bit big-endian number with two leading zero bits, so the first
// character is always in 0-7.
func Encode(id uuid.UUID) string {
	hi := uint64(0)
	lo := uint64(0)
	for i := 0; i < 8; i++ {
		hi = hi<<8 | uint64(id[i])
		lo = lo<<8 | uint64(id[i+8])
	}

	out := make([]byte, Length)
	for i := Length - 1; i >= 0; i-- {
		out[i] = alphabet[lo&0x1f]
		lo = lo>>5 | hi<<59
		hi >>= 5
	}
	return string(out)
}

// Parse decodes an encoded id back into its UUID.
func Parse(s string) (uuid.UUID, error) {
	var id uuid.UUID
	if err := Validate(s); err != nil {
		return id, err
	}

	var hi, lo uint64
	for i := 0; i < Length; i++ {
		v := uint64(strings.IndexByte(alphabet, s[i]))
		hi = hi<<5 | lo>>59
		lo = lo<<5 | v
	}
	for i := 7; i >= 0; i-- {
		id[i] = byte(hi)
		id[i+8] = byte(lo)
		hi >>= 8
		lo >>= 8
	}
	return id, nil
}

// Validate reports whether s is a well-formed encoded id.
func Validate(s string) error {
	if len(s) != Length {
		return fmt.Errorf("session id must be %d characters, got %d", Length, len(s))
	}
	if s[0] > '7' {
		return fmt.Errorf("session id first character must be 0-7, got %c", s[0])
	}
	for i := 0; i < len(s); i++ {
		if strings.IndexByte(alphabet, s[i]) < 0 {
			return fmt.Errorf("invalid character %q at position %d", s[i], i)
		}
	}
	return nil
}
