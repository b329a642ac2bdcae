package vehicle

import (
	"strings"
)

// Class is the coarse vehicle grouping that drives the base pricing tier.
type Class string

const (
	ClassA          Class = "A" // economy / mass market
	ClassB          Class = "B" // mainstream domestic and European
	ClassC          Class = "C" // luxury / performance
	ClassIneligible Class = "INELIGIBLE"
)

// RatedClasses returns the classes that can carry a price.
func RatedClasses() []Class {
	return []Class{ClassA, ClassB, ClassC}
}

// IsRated reports whether the class can carry a price.
func (c Class) IsRated() bool {
	switch c {
	case ClassA, ClassB, ClassC:
		return true
	}
	return false
}

// String returns the string representation of the class.
func (c Class) String() string {
	return string(c)
}

// ParseClass parses a rated class, case-insensitively.
func ParseClass(s string) (Class, bool) {
	c := Class(strings.ToUpper(strings.TrimSpace(s)))
	if !c.IsRated() {
		return "", false
	}
	return c, true
}
