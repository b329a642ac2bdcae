package vehicle

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		make  string
		model string
		want  Class
	}{
		{"economy make", "Toyota", "Camry", ClassA},
		{"economy make no model", "Honda", "", ClassA},
		{"case and whitespace", "  tOyOtA ", "  corolla  ", ClassA},
		{"class A promoted", "Toyota", "Land Cruiser", ClassC},
		{"class A promoted with trim", "Toyota", "Sequoia Platinum", ClassB},
		{"longest exception wins", "Subaru", "WRX STI Limited", ClassB},
		{"mainstream make", "Ford", "F-150", ClassB},
		{"alias chevy", "Chevy", "Silverado", ClassB},
		{"alias vw", "VW", "Jetta", ClassB},
		{"luxury make", "BMW", "X5", ClassC},
		{"luxury demoted", "BMW", "3 Series", ClassB},
		{"alias mercedes", "Mercedes", "CLA 250", ClassB},
		{"hyphenated make", "mercedes benz", "S-Class", ClassC},
		{"excluded supercar", "Ferrari", "Roma", ClassIneligible},
		{"excluded discontinued", "Pontiac", "G6", ClassIneligible},
		{"excluded hyphenated", "ROLLS ROYCE", "Ghost", ClassIneligible},
		{"performance trim", "Chevrolet", "Corvette Z06", ClassIneligible},
		{"performance trim via alias", "chevy", "corvette zr1", ClassIneligible},
		{"performance trim hyphen folded", "Nissan", "GT-R Nismo", ClassIneligible},
		{"prefix is word based", "Ford", "GTX", ClassB},
		{"non performance sibling", "Chevrolet", "Corvette Stingray", ClassB},
		{"unknown make", "Yugo", "GV", ClassIneligible},
		{"empty make", "", "Civic", ClassIneligible},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.make, tt.model))
		})
	}
}

func TestIsExcludedMake(t *testing.T) {
	assert.True(t, IsExcludedMake("lamborghini"))
	assert.True(t, IsExcludedMake("Aston-Martin"))
	assert.False(t, IsExcludedMake("Toyota"))
	// Performance trims are model level, the make itself stays eligible.
	assert.False(t, IsExcludedMake("Dodge"))
}

func TestModelMatches(t *testing.T) {
	assert.True(t, modelMatches("corvette z06", "corvette z06"))
	assert.True(t, modelMatches("corvette z06 3lz", "corvette z06"))
	assert.False(t, modelMatches("corvette z066", "corvette z06"))
	assert.False(t, modelMatches("", "gt"))
}
