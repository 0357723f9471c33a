package gen

// Relationship is a directed edge of the graph, stored on the field
// that carries it.
type Relationship struct {
	// Source is the entity holding the field.
	Source string
	// Field is the field name on the source entity.
	Field string
	// Target is the related entity, or "" for polymorphic relationships
	// without a single target.
	Target string
	// Targets holds every possible target in order. It has one element
	// unless the relationship is polymorphic.
	Targets []string
	// Rel is the relationship category.
	Rel Rel
	// Many indicates that the field holds a list.
	Many bool
	// Junction is the entity linking both sides of a M2M or M2A relationship.
	Junction string
	// Origin tells which pass established the edge.
	Origin Origin
	// Rule names the classifier rule or resolver strategy that decided
	// the edge.
	Rule string
}

// Unique reports whether the field holds a single reference.
func (r Relationship) Unique() bool { return !r.Many }

// Polymorphic reports whether the relationship has no single target.
func (r Relationship) Polymorphic() bool { return len(r.Targets) != 1 }

// Rel is a relation type of an edge.
type Rel int

// Relation types.
const (
	Unk Rel = iota // Unknown.
	M2O            // Many to one.
	O2M            // One to many (inverse perspective for M2O).
	M2M            // Many to many.
	M2A            // Many to any (polymorphic).
)

// String returns the relation name.
func (r Rel) String() string {
	s := "Unknown"
	switch r {
	case M2O:
		s = "M2O"
	case O2M:
		s = "O2M"
	case M2M:
		s = "M2M"
	case M2A:
		s = "M2A"
	}
	return s
}

// Origin is the pass that established a relationship.
type Origin int

// Relationship origins, from the most to the least authoritative.
const (
	OriginSnapshot Origin = iota // Explicit relation of the snapshot.
	OriginSystem                 // Built-in relation of the catalog.
	OriginResolved               // Heuristic resolution of an alias field.
)

// String returns the origin name.
func (o Origin) String() string {
	switch o {
	case OriginSnapshot:
		return "snapshot"
	case OriginSystem:
		return "system"
	case OriginResolved:
		return "resolved"
	}
	return "unknown"
}

type edgeKey struct{ entity, field string }

// relTable holds at most one relationship per (entity, field) pair,
// in insertion order.
type relTable struct {
	order []*Relationship
	index map[edgeKey]*Relationship
}

func newRelTable() *relTable {
	return &relTable{index: make(map[edgeKey]*Relationship)}
}

// add stores r unless its (entity, field) pair already has an edge.
// It reports whether r was stored.
func (t *relTable) add(r *Relationship) bool {
	k := edgeKey{r.Source, r.Field}
	if _, ok := t.index[k]; ok {
		return false
	}
	t.index[k] = r
	t.order = append(t.order, r)
	return true
}

func (t *relTable) get(entity, field string) (*Relationship, bool) {
	r, ok := t.index[edgeKey{entity, field}]
	return r, ok
}

func (t *relTable) has(entity, field string) bool {
	_, ok := t.index[edgeKey{entity, field}]
	return ok
}
