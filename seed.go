package main

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
)

const (
	seedSeparator = "|"
	seedHexDigits = 16
)

// Seed maps an ordered list of parts to a stable 64-bit integer.
// The parts are joined with "|", hashed with SHA-256 and the first
// 16 hex digits of the digest are read as a base-16 number.
func Seed(parts ...string) uint64 {
	digest := sha256.Sum256([]byte(strings.Join(parts, seedSeparator)))
	prefix := hex.EncodeToString(digest[:])[:seedHexDigits]
	// 16 hex digits always fit in 64 bits
	value, _ := strconv.ParseUint(prefix, 16, 64)
	return value
}

// newRand returns a generator for one content facet
func newRand(parts ...string) *rand.Rand {
	s := Seed(parts...)
	return rand.New(rand.NewPCG(s, s^0x9e3779b97f4a7c15))
}

// intInRange draws an integer in [r.Min, r.Max]
func intInRange(rng *rand.Rand, r Range) int {
	if r.Max <= r.Min {
		return r.Min
	}
	return r.Min + rng.IntN(r.Max-r.Min+1)
}

// pickOne returns a uniformly chosen element of a non-empty pool
func pickOne(rng *rand.Rand, pool []string) string {
	return pool[rng.IntN(len(pool))]
}

// shuffledCopy returns the pool in a deterministic random order without
// touching the original slice
func shuffledCopy(rng *rand.Rand, pool []string) []string {
	out := append([]string(nil), pool...)
	rng.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}

// sampleStrings draws k distinct entries of pool without replacement
func sampleStrings(rng *rand.Rand, pool []string, k int, name string) ([]string, error) {
	if k < 0 || k > len(pool) {
		return nil, &ConfigError{Field: name, Message: fmt.Sprintf("sample size %d exceeds pool size %d", k, len(pool))}
	}
	perm := rng.Perm(len(pool))
	out := make([]string, k)
	for i := 0; i < k; i++ {
		out[i] = pool[perm[i]]
	}
	return out, nil
}
