package vehicle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vsc-rating/internal/errors"
)

func TestDescriptorValidate(t *testing.T) {
	tests := []struct {
		name    string
		d       Descriptor
		wantErr bool
	}{
		{"valid", Descriptor{Make: "Honda", ModelYear: "2020", Mileage: 10}, false},
		{"blank make", Descriptor{Make: "  ", ModelYear: "2020"}, true},
		{"negative mileage", Descriptor{Make: "Honda", Mileage: -1}, true},
		{"bad year is not a validation error", Descriptor{Make: "Honda", ModelYear: "abc"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.d.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsType(err, errors.TypeInput))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestDescriptorDerived(t *testing.T) {
	d := Descriptor{Make: "Ford", Model: "Escape", ModelYear: " 2019 ", Mileage: 60_000}

	year, err := d.Year()
	require.NoError(t, err)
	assert.Equal(t, 2019, year)
	assert.Equal(t, ClassB, d.Class())
	assert.Equal(t, Bracket50kTo75k, d.Bracket())
}

func TestParseClass(t *testing.T) {
	c, ok := ParseClass(" c ")
	assert.True(t, ok)
	assert.Equal(t, ClassC, c)

	_, ok = ParseClass("INELIGIBLE")
	assert.False(t, ok)
}
