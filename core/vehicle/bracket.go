package vehicle

import (
	"fmt"
	"strings"
)

// MaxRatedMileage is the highest odometer reading that can be rated.
const MaxRatedMileage = 150_000

// Bracket is one of the six fixed odometer ranges that form a rate-table
// axis, or the over-150k sentinel which is never rated.
type Bracket int

const (
	Bracket0To15k Bracket = iota
	Bracket15kTo50k
	Bracket50kTo75k
	Bracket75kTo100k
	Bracket100kTo125k
	Bracket125kTo150k
	BracketOver150k
)

// bracketUpper holds the inclusive upper bound of each rated bracket.
var bracketUpper = [...]int{15_000, 50_000, 75_000, 100_000, 125_000, 150_000}

var bracketNames = [...]string{
	"0-15000",
	"15001-50000",
	"50001-75000",
	"75001-100000",
	"100001-125000",
	"125001-150000",
	"over-150000",
}

// RatedBrackets returns the six rated brackets in ascending order.
func RatedBrackets() []Bracket {
	return []Bracket{
		Bracket0To15k, Bracket15kTo50k, Bracket50kTo75k,
		Bracket75kTo100k, Bracket100kTo125k, Bracket125kTo150k,
	}
}

// BracketFor resolves an odometer reading to its bracket. Negative
// readings are rejected earlier by Descriptor.Validate and land in the
// first bracket here so the function stays total.
func BracketFor(miles int) Bracket {
	for i, upper := range bracketUpper {
		if miles <= upper {
			return Bracket(i)
		}
	}
	return BracketOver150k
}

// IsRated reports whether the bracket can carry a price.
func (b Bracket) IsRated() bool {
	return b >= Bracket0To15k && b < BracketOver150k
}

// UpperBound returns the inclusive upper bound in miles, or -1 for the sentinel.
func (b Bracket) UpperBound() int {
	if !b.IsRated() {
		return -1
	}
	return bracketUpper[b]
}

// String returns the rate-card key of the bracket.
func (b Bracket) String() string {
	if b < 0 || int(b) >= len(bracketNames) {
		return fmt.Sprintf("bracket(%d)", int(b))
	}
	return bracketNames[b]
}

// MarshalText implements encoding.TextMarshaler.
func (b Bracket) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (b *Bracket) UnmarshalText(text []byte) error {
	parsed, err := ParseBracket(string(text))
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

// ParseBracket parses a rate-card bracket key such as "15001-50000".
// Thousands separators are tolerated.
func ParseBracket(s string) (Bracket, error) {
	key := strings.ToLower(strings.TrimSpace(strings.ReplaceAll(s, ",", "")))
	for i, name := range bracketNames {
		if key == name {
			return Bracket(i), nil
		}
	}
	return 0, fmt.Errorf("unknown mileage bracket %q", s)
}
