// Package determinism provides primitives for deterministic, reproducible rating:
// money rounding, content hashes and stable ordering.
package determinism

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/gowebpki/jcs"
	"github.com/shopspring/decimal"
)

// MoneyPlaces is the number of decimal places money is rounded to.
const MoneyPlaces = 2

// Round2 rounds an amount to cents, half away from zero.
// NEVER use float64 for money calculations.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

// MinDecimal returns the smaller of a and b.
func MinDecimal(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}

// ParseMoney parses a non-negative decimal amount such as "1250.00".
func ParseMoney(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("amount %s is negative", s)
	}
	return d, nil
}

// ContentHash is a SHA-256 hash for content integrity
type ContentHash [32]byte

// ComputeHash computes a content hash from bytes
func ComputeHash(data []byte) ContentHash {
	return sha256.Sum256(data)
}

// HashCanonical marshals v to JSON, canonicalizes it with RFC 8785 (JCS)
// and hashes the result, so logically equal documents hash identically
// regardless of key order or number formatting.
func HashCanonical(v any) (ContentHash, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return ContentHash{}, err
	}
	canonical, err := jcs.Transform(raw)
	if err != nil {
		return ContentHash{}, err
	}
	return ComputeHash(canonical), nil
}

// ParseContentHash parses a hex encoded hash.
func ParseContentHash(s string) (ContentHash, error) {
	var h ContentHash
	b, err := hex.DecodeString(s)
	if err != nil {
		return h, err
	}
	if len(b) != len(h) {
		return h, fmt.Errorf("content hash must be %d bytes, got %d", len(h), len(b))
	}
	copy(h[:], b)
	return h, nil
}

// Hex returns the hash as a hex string
func (h ContentHash) Hex() string {
	return hex.EncodeToString(h[:])
}

// IsZero reports whether the hash was never computed.
func (h ContentHash) IsZero() bool {
	return h == ContentHash{}
}

// String implements Stringer
func (h ContentHash) String() string {
	return h.Hex()[:16] + "..."
}

// SortedKeys returns the keys of m ordered by less.
func SortedKeys[K comparable, V any](m map[K]V, less func(a, b K) bool) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return less(keys[i], keys[j])
	})
	return keys
}
