// Package roomid generates sortable room identifiers: a UUIDv7 encoded
// as 26 characters of Crockford base32. Identifiers created later sort
// lexicographically after earlier ones.
package roomid

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"
)

const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

// RandSource supplies the random tail bytes. Satisfied by
// math/rand/v2's *Rand for deterministic tests.
type RandSource interface {
	Uint64() uint64
}

// Generator produces room identifiers. The zero value is not usable;
// construct with NewGenerator.
type Generator struct {
	now func() time.Time
	rng RandSource
}

// NewGenerator returns a generator. A nil now falls back to time.Now; a
// nil rng falls back to crypto/rand.
func NewGenerator(now func() time.Time, rng RandSource) *Generator {
	if now == nil {
		now = time.Now
	}
	return &Generator{now: now, rng: rng}
}

// New generates an identifier using the wall clock and crypto/rand.
func New() string {
	return NewGenerator(nil, nil).Generate()
}

// Generate creates one identifier.
func (g *Generator) Generate() string {
	var id [16]byte

	ms := g.now().UnixMilli()
	for i := 0; i < 6; i++ {
		id[i] = byte(ms >> (40 - 8*i))
	}

	if g.rng != nil {
		fillFromSource(id[6:], g.rng)
	} else if _, err := rand.Read(id[6:]); err != nil {
		panic("roomid: reading random bytes: " + err.Error())
	}

	// Version 7, variant 10.
	id[6] = (id[6] & 0x0f) | 0x70
	id[8] = (id[8] & 0x3f) | 0x80

	return encode(id)
}

func fillFromSource(dst []byte, rng RandSource) {
	for len(dst) > 0 {
		v := rng.Uint64()
		n := min(len(dst), 8)
		for i := 0; i < n; i++ {
			dst[i] = byte(v >> (8 * i))
		}
		dst = dst[n:]
	}
}

// encode writes the 128 bits as 26 base32 characters, 5 bits at a
// time, padding the final character with two zero bits.
func encode(id [16]byte) string {
	var out [26]byte
	var acc uint
	bits, pos := 0, 0
	for _, b := range id {
		acc = acc<<8 | uint(b)
		bits += 8
		for bits >= 5 {
			out[pos] = alphabet[(acc>>(bits-5))&0x1f]
			pos++
			bits -= 5
			acc &= 1<<bits - 1
		}
	}
	out[pos] = alphabet[(acc<<(5-bits))&0x1f]
	return string(out[:])
}

// Validate reports whether id is a well-formed room identifier.
func Validate(id string) error {
	if len(id) != 26 {
		return fmt.Errorf("room ID must be 26 characters, got %d", len(id))
	}
	// The leading character encodes the top of the millisecond
	// timestamp, which stays below 8 until well past year 4000.
	if id[0] > '7' {
		return fmt.Errorf("room ID first character out of range: %c", id[0])
	}
	for i := 0; i < len(id); i++ {
		if strings.IndexByte(alphabet, id[i]) < 0 {
			return fmt.Errorf("invalid character %c at position %d", id[i], i)
		}
	}
	return nil
}
