package upsert

import "testing"

func TestStats(t *testing.T) {
	var s Stats
	s.Record(Inserted)
	s.Record(Skipped)
	s.Record(Skipped)
	s.Record(Outcome("bogus"))

	if s.Inserted != 1 || s.Skipped != 2 || s.Updated != 0 {
		t.Fatalf("unexpected stats: %+v", s)
	}
	if !s.Changed() {
		t.Fatalf("expected changed after insert")
	}

	var total Stats
	total.Add(s)
	total.Add(Stats{Updated: 2})
	if total.Total() != 5 {
		t.Fatalf("unexpected total: %d", total.Total())
	}

	if (Stats{Skipped: 4}).Changed() {
		t.Fatalf("skips alone must not count as a change")
	}
}
