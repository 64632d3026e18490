// Package randutil builds the random sources used by game sessions.
//
// Every session gets its own *rand.Rand so that replaying a session from its
// seed reproduces the exact same shuffle, wheel, reels, mine field or crash
// point.
package randutil

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	rand "math/rand/v2"
	"sync"
)

const (
	goldenRatio64 = 0x9e3779b97f4a7c15
)

// New returns a *rand.Rand seeded deterministically from the provided int64.
func New(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(mix(u), mix(u+goldenRatio64)))
}

// NewSeed reads a seed from crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// Seeder hands out per-session seeds. A Seeder built from a fixed root seed
// yields the same sequence of session seeds on every run.
type Seeder struct {
	mu   sync.Mutex
	root *rand.Rand
}

// NewSeeder creates a Seeder from a root seed.
func NewSeeder(root int64) *Seeder {
	return &Seeder{root: New(root)}
}

// Next returns the next session seed.
func (s *Seeder) Next() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.root.Int64()
}

// NextRand returns a generator seeded with the next session seed, along with
// the seed itself so callers can log it.
func (s *Seeder) NextRand() (*rand.Rand, int64) {
	seed := s.Next()
	return New(seed), seed
}

func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
