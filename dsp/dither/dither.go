package dither

import "fmt"

// Type selects the dither noise distribution.
type Type int

const (
	// TypeNone rounds without added noise.
	TypeNone Type = iota
	// TypeRectangular adds uniform noise of ±0.5 LSB.
	TypeRectangular
	// TypeTriangular adds triangular (TPDF) noise of ±1 LSB.
	TypeTriangular
)

var typeNames = [...]string{"none", "rectangular", "triangular"}

func (t Type) String() string {
	if !t.Valid() {
		return fmt.Sprintf("Type(%d)", int(t))
	}
	return typeNames[t]
}

// Valid reports whether t is a known type.
func (t Type) Valid() bool {
	return t >= TypeNone && t <= TypeTriangular
}

// ParseType maps a name from String back to its Type.
func ParseType(s string) (Type, error) {
	for i, name := range typeNames {
		if name == s {
			return Type(i), nil
		}
	}
	return TypeNone, fmt.Errorf("dither: unknown type %q", s)
}
