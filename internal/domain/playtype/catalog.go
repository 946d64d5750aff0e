package playtype

import (
	"fmt"
	"strings"
	"sync"
)

const (
	// LotteryFC3D is the upstream lottery id of 福彩3D.
	LotteryFC3D       int64 = 6
	DefaultLimit            = 1000
	DefaultIssueCount       = 5
)

// Leaderboard sort orders: 2 红连, 4 综合, 5 黑连.
var DefaultSortTypes = []int{2, 4, 5}

// Entry is one row of the play-type dictionary.
type Entry struct {
	ID   int64
	Name string
}

func (e Entry) Validate() error {
	if e.ID <= 0 {
		return fmt.Errorf("playtype id must be > 0")
	}
	if strings.TrimSpace(e.Name) == "" {
		return fmt.Errorf("playtype name is required")
	}
	return nil
}

// Spec is a play-type polled on every expert collection run.
type Spec struct {
	ID        int64
	Name      string
	SortTypes []int
}

var defaultSpecs = []Spec{
	{ID: 1001, Name: "独胆"},
	{ID: 1002, Name: "双胆"},
	{ID: 1003, Name: "三胆"},
	{ID: 1005, Name: "五码组选"},
	{ID: 1006, Name: "六码组选"},
	{ID: 1007, Name: "七码组选"},
	{ID: 2001, Name: "杀一"},
	{ID: 2002, Name: "杀二"},
	{ID: 3013, Name: "百位定3"},
	{ID: 3014, Name: "十位定3"},
	{ID: 3015, Name: "个位定3"},
	{ID: 3016, Name: "百位定1"},
	{ID: 3017, Name: "十位定1"},
	{ID: 3018, Name: "个位定1"},
	{ID: 3003, Name: "定位3*3*3"},
	{ID: 3004, Name: "定位4*4*4"},
	{ID: 3005, Name: "定位5*5*5"},
}

// DefaultSpecs returns a copy of the polled play-types with the default sort
// orders filled in.
func DefaultSpecs() []Spec {
	out := make([]Spec, 0, len(defaultSpecs))
	for _, s := range defaultSpecs {
		s.SortTypes = append([]int(nil), DefaultSortTypes...)
		out = append(out, s)
	}
	return out
}

var compositeIDs = map[int64]struct{}{3003: {}, 3004: {}, 3005: {}}

// PositionSuffixes name the children of a composite play-type, in order.
var PositionSuffixes = [3]string{"百位", "十位", "个位"}

// IsComposite reports whether id is a joint three-position play-type whose
// schemes are split into per-position children.
func IsComposite(id int64) bool {
	_, ok := compositeIDs[id]
	return ok
}

// ChildID derives the id of the idx-th (1-based) position child.
func ChildID(parent int64, idx int) int64 {
	return parent*10 + int64(idx)
}

// ChildName derives the name of the idx-th (1-based) position child.
func ChildName(parent string, idx int) string {
	return parent + "-" + PositionSuffixes[idx-1]
}

// Catalog maps play-type ids to rules resolved once from their names.
type Catalog struct {
	mu    sync.RWMutex
	rules map[int64]Rule
	names map[int64]string
}

func NewCatalog(entries ...Entry) *Catalog {
	c := &Catalog{
		rules: make(map[int64]Rule, len(entries)),
		names: make(map[int64]string, len(entries)),
	}
	for _, e := range entries {
		c.Register(e)
	}
	return c
}

// DefaultCatalog covers every polled play-type plus composite children.
func DefaultCatalog() *Catalog {
	c := NewCatalog()
	for _, s := range defaultSpecs {
		c.Register(Entry{ID: s.ID, Name: s.Name})
		if !IsComposite(s.ID) {
			continue
		}
		for idx := 1; idx <= len(PositionSuffixes); idx++ {
			c.Register(Entry{ID: ChildID(s.ID, idx), Name: ChildName(s.Name, idx)})
		}
	}
	return c
}

func (c *Catalog) Register(e Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rules[e.ID] = Classify(e.Name)
	c.names[e.ID] = e.Name
}

// Rule returns the rule for id. Unknown ids fall back to classifying name and
// the result is remembered.
func (c *Catalog) Rule(id int64, name string) Rule {
	c.mu.RLock()
	rule, ok := c.rules[id]
	c.mu.RUnlock()
	if ok {
		return rule
	}
	if strings.TrimSpace(name) == "" {
		return Rule{}
	}
	c.Register(Entry{ID: id, Name: name})
	return Classify(name)
}

func (c *Catalog) Name(id int64) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	name, ok := c.names[id]
	return name, ok
}
