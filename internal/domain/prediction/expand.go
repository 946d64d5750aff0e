package prediction

import (
	"strings"

	"github.com/suwei8/lotto-ai4/internal/domain/playtype"
)

// Scheme is one normalized play-type record ready for persistence.
type Scheme struct {
	PlaytypeID   int64
	PlaytypeName string
	Numbers      string
}

// Expand canonicalizes numbers and splits composite play-types into their
// three position children. A composite payload is split only when it holds
// exactly three groups; otherwise it is kept whole under the parent id.
func Expand(playtypeID int64, playtypeName string, numbers Numbers) []Scheme {
	canonical := Canonical(numbers)
	if playtype.IsComposite(playtypeID) && strings.Count(canonical, "|") == len(playtype.PositionSuffixes)-1 {
		parts := strings.Split(canonical, "|")
		out := make([]Scheme, 0, len(parts))
		for i, part := range parts {
			idx := i + 1
			out = append(out, Scheme{
				PlaytypeID:   playtype.ChildID(playtypeID, idx),
				PlaytypeName: playtype.ChildName(playtypeName, idx),
				Numbers:      part,
			})
		}
		return out
	}
	return []Scheme{{
		PlaytypeID:   playtypeID,
		PlaytypeName: playtypeName,
		Numbers:      canonical,
	}}
}
