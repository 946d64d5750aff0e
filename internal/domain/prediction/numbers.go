package prediction

import (
	"strconv"
	"strings"
)

// Numbers is the closed set of payload shapes an upstream scheme can carry.
// Shapes are resolved at the parsing boundary and canonicalized right away.
type Numbers interface {
	// Canonical renders digits comma-joined, groups pipe-joined.
	Canonical() string
	sealed()
}

// NestedGroups is one digit group per position.
type NestedGroups [][]int

// FlatDigits is a single digit list.
type FlatDigits []int

// OpaqueString is passed through unchanged.
type OpaqueString string

func (g NestedGroups) Canonical() string {
	parts := make([]string, 0, len(g))
	for _, group := range g {
		parts = append(parts, joinInts(group))
	}
	return strings.Join(parts, "|")
}

func (f FlatDigits) Canonical() string {
	return joinInts(f)
}

func (s OpaqueString) Canonical() string {
	return string(s)
}

func (NestedGroups) sealed() {}
func (FlatDigits) sealed()   {}
func (OpaqueString) sealed() {}

func joinInts(values []int) string {
	var b strings.Builder
	for i, v := range values {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(v))
	}
	return b.String()
}

// Canonical renders n, treating nil as the empty string.
func Canonical(n Numbers) string {
	if n == nil {
		return ""
	}
	return n.Canonical()
}
