package debate

import "strings"

// Side is one of the two debate stances.
type Side string

const (
	SideFor     Side = "for"
	SideAgainst Side = "against"
)

// ParseSide accepts "for" or "against", case-insensitively.
func ParseSide(s string) (Side, error) {
	switch Side(strings.ToLower(strings.TrimSpace(s))) {
	case SideFor:
		return SideFor, nil
	case SideAgainst:
		return SideAgainst, nil
	default:
		return "", ErrInvalidSide
	}
}

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == SideFor {
		return SideAgainst
	}
	return SideFor
}

// Valid reports whether s is for or against.
func (s Side) Valid() bool {
	return s == SideFor || s == SideAgainst
}
