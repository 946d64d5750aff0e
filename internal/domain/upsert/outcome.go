package upsert

// Outcome classifies a single idempotent write.
type Outcome string

const (
	Inserted Outcome = "inserted"
	Updated  Outcome = "updated"
	Skipped  Outcome = "skipped"
)

// Stats aggregates per-row outcomes of a run.
type Stats struct {
	Inserted int `json:"inserted"`
	Updated  int `json:"updated"`
	Skipped  int `json:"skipped"`
}

func (s *Stats) Record(o Outcome) {
	switch o {
	case Inserted:
		s.Inserted++
	case Updated:
		s.Updated++
	case Skipped:
		s.Skipped++
	}
}

func (s *Stats) Add(other Stats) {
	s.Inserted += other.Inserted
	s.Updated += other.Updated
	s.Skipped += other.Skipped
}

// Changed reports whether any row was inserted or updated.
func (s Stats) Changed() bool {
	return s.Inserted+s.Updated > 0
}

func (s Stats) Total() int {
	return s.Inserted + s.Updated + s.Skipped
}
