package playtype

import "strings"

// Category is the hit-evaluation family of a play-type.
type Category int

const (
	CategoryUnknown Category = iota
	// CategoryKill hits when none of the predicted digits are drawn.
	CategoryKill
	// CategoryPositionPick hits when the digit at Position is predicted.
	CategoryPositionPick
	// CategoryPositionKill hits when the digit at Position is not predicted.
	CategoryPositionKill
	// CategorySingleDan hits with at least one overlapping digit.
	CategorySingleDan
	// CategoryDoubleDan hits with at least two overlapping digits.
	CategoryDoubleDan
	// CategoryGroup hits depending on how many distinct digits were drawn.
	CategoryGroup
)

func (c Category) String() string {
	switch c {
	case CategoryKill:
		return "kill"
	case CategoryPositionPick:
		return "position_pick"
	case CategoryPositionKill:
		return "position_kill"
	case CategorySingleDan:
		return "single_dan"
	case CategoryDoubleDan:
		return "double_dan"
	case CategoryGroup:
		return "group"
	default:
		return "unknown"
	}
}

// Draw positions, left to right.
const (
	PositionHundreds = 0
	PositionTens     = 1
	PositionUnits    = 2
)

const (
	killMarker = "杀"
	pickMarker = "定"
)

// positionMarkers are checked in this order; the first marker that resolves
// to a pick or kill rule wins.
var positionMarkers = []struct {
	marker   string
	position int
}{
	{"百位", PositionHundreds},
	{"十位", PositionTens},
	{"个位", PositionUnits},
}

var groupMarkers = []string{"三胆", "五码", "六码", "七码"}

// Rule is the resolved evaluation rule for one play-type. Position is only
// meaningful for the position categories.
type Rule struct {
	Category Category
	Position int
}

// Classify resolves a play-type name to its rule. Names that fit no known
// family resolve to CategoryUnknown.
func Classify(name string) Rule {
	name = strings.TrimSpace(name)
	if name == "" {
		return Rule{}
	}
	if strings.HasPrefix(name, killMarker) {
		return Rule{Category: CategoryKill}
	}

	for _, pm := range positionMarkers {
		if !strings.Contains(name, pm.marker) {
			continue
		}
		if strings.Contains(name, killMarker) {
			return Rule{Category: CategoryPositionKill, Position: pm.position}
		}
		if strings.Contains(name, pickMarker) {
			return Rule{Category: CategoryPositionPick, Position: pm.position}
		}
	}

	switch {
	case strings.Contains(name, "独胆"):
		return Rule{Category: CategorySingleDan}
	case strings.Contains(name, "双胆"):
		return Rule{Category: CategoryDoubleDan}
	}
	for _, marker := range groupMarkers {
		if strings.Contains(name, marker) {
			return Rule{Category: CategoryGroup}
		}
	}
	return Rule{}
}
