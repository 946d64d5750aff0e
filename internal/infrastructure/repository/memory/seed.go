package memory

import "github.com/suwei8/lotto-ai4/internal/domain/playtype"

// SeedPlaytypes returns the dictionary rows of every polled play-type,
// composite children included.
func SeedPlaytypes() []playtype.Entry {
	specs := playtype.DefaultSpecs()
	out := make([]playtype.Entry, 0, len(specs)*2)
	for _, s := range specs {
		out = append(out, playtype.Entry{ID: s.ID, Name: s.Name})
		if !playtype.IsComposite(s.ID) {
			continue
		}
		for idx := 1; idx <= len(playtype.PositionSuffixes); idx++ {
			out = append(out, playtype.Entry{ID: playtype.ChildID(s.ID, idx), Name: playtype.ChildName(s.Name, idx)})
		}
	}
	return out
}
