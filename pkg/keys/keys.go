// Package keys generates staging object keys whose leading characters are
// spread across the hex alphabet. Object stores map key prefixes onto
// storage partitions, so keys sharing a prefix land on the same partition
// and throttle each other; a random or hashed prefix spreads the writes.
package keys

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/zeebo/xxh3"
)

// DefaultPrefixLength is the number of hex characters placed before the suffix
const DefaultPrefixLength = 6

// Namer produces count distinct keys of the form <hex-prefix><suffix><extension>.
type Namer interface {
	Generate(count int, suffix, extension string) []string
}

// RandomNamer draws every prefix from a fresh version 4 UUID.
type RandomNamer struct {
	// PrefixLength is the number of hex characters kept (1-32). Zero means DefaultPrefixLength.
	PrefixLength int
}

// NewRandomNamer returns a RandomNamer with the given prefix length
func NewRandomNamer(prefixLength int) *RandomNamer {
	return &RandomNamer{PrefixLength: prefixLength}
}

// Generate implements Namer
func (n *RandomNamer) Generate(count int, suffix, extension string) []string {
	length := fitLength(clampLength(n.PrefixLength, 32), count, 32)
	return generate(count, suffix, extension, func(int, int) string {
		return strings.ReplaceAll(uuid.NewString(), "-", "")[:length]
	})
}

// HashNamer derives prefixes from an xxh3 hash of the seed, suffix and key
// index. The same seed always yields the same keys, which makes staged
// locations reproducible for a given run ID.
type HashNamer struct {
	Seed string
	// PrefixLength is the number of hex characters kept (1-16). Zero means DefaultPrefixLength.
	PrefixLength int
}

// NewHashNamer returns a HashNamer for seed
func NewHashNamer(seed string, prefixLength int) *HashNamer {
	return &HashNamer{Seed: seed, PrefixLength: prefixLength}
}

// Generate implements Namer
func (n *HashNamer) Generate(count int, suffix, extension string) []string {
	length := fitLength(clampLength(n.PrefixLength, 16), count, 16)
	return generate(count, suffix, extension, func(i, attempt int) string {
		h := xxh3.HashString(fmt.Sprintf("%s/%s/%d/%d", n.Seed, suffix, i, attempt))
		return fmt.Sprintf("%016x", h)[:length]
	})
}

// generate draws prefixes until count distinct ones exist. Collisions only
// cost a redraw; at expected scale they are rare.
func generate(count int, suffix, extension string, prefix func(i, attempt int) string) []string {
	if count <= 0 {
		return nil
	}

	out := make([]string, 0, count)
	seen := make(map[string]struct{}, count)
	for i := 0; i < count; i++ {
		for attempt := 0; ; attempt++ {
			key := prefix(i, attempt) + suffix + extension
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, key)
			break
		}
	}
	return out
}

func clampLength(n, max int) int {
	if n <= 0 {
		return DefaultPrefixLength
	}
	if n > max {
		return max
	}
	return n
}

// fitLength widens length until 16^length distinct prefixes can hold count keys.
func fitLength(length, count, max int) int {
	for length < max && length < 15 && 1<<(4*uint(length)) < count {
		length++
	}
	return length
}
