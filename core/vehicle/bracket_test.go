package vehicle

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBracketFor(t *testing.T) {
	tests := []struct {
		miles int
		want  string
	}{
		{0, "0-15000"},
		{15000, "0-15000"},
		{15001, "15001-50000"},
		{50000, "15001-50000"},
		{50001, "50001-75000"},
		{75000, "50001-75000"},
		{99999, "75001-100000"},
		{125000, "100001-125000"},
		{150000, "125001-150000"},
		{150001, "over-150000"},
		{1_000_000, "over-150000"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, BracketFor(tt.miles).String())
		})
	}
}

func TestParseBracket(t *testing.T) {
	b, err := ParseBracket("15,001-50,000")
	require.NoError(t, err)
	assert.Equal(t, Bracket15kTo50k, b)

	b, err = ParseBracket(" OVER-150000 ")
	require.NoError(t, err)
	assert.Equal(t, BracketOver150k, b)
	assert.False(t, b.IsRated())
	assert.Equal(t, -1, b.UpperBound())

	_, err = ParseBracket("0-20000")
	assert.Error(t, err)
}

func TestBracketTextRoundTrip(t *testing.T) {
	for _, b := range RatedBrackets() {
		text, err := b.MarshalText()
		require.NoError(t, err)
		var got Bracket
		require.NoError(t, got.UnmarshalText(text))
		assert.Equal(t, b, got)
	}
}

func TestBracketProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("reading is within its bracket bounds", prop.ForAll(
		func(miles int) bool {
			b := BracketFor(miles)
			if miles > MaxRatedMileage {
				return b == BracketOver150k
			}
			if !b.IsRated() || miles > b.UpperBound() {
				return false
			}
			return b == Bracket0To15k || miles > (b-1).UpperBound()
		},
		gen.IntRange(0, 400_000),
	))

	properties.Property("brackets are monotonic in mileage", prop.ForAll(
		func(a, b int) bool {
			if a > b {
				a, b = b, a
			}
			return BracketFor(a) <= BracketFor(b)
		},
		gen.IntRange(0, 400_000),
		gen.IntRange(0, 400_000),
	))

	properties.TestingRun(t)
}
