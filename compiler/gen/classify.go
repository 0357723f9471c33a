package gen

import (
	"slices"
	"strings"

	"github.com/syssam/veloxts/schema"
)

// Classifier rules, in decision order.
const (
	RuleJunctionSource = "junction-source"
	RuleJunctionMarker = "junction-marker"
	RulePolymorphic    = "polymorphic-item"
	RuleSelfReference  = "self-reference"
	RuleOneSide        = "one-side"
	RuleDefault        = "default"
)

// relView is one side of an explicit relation, as seen from the field
// that exposes it.
type relView struct {
	Source string
	Field  string
	// Target is the related collection, "" for polymorphic links.
	Target string
	// Allowed lists the possible targets of a polymorphic link.
	Allowed []string
	// Item is the field holding the reference: Field itself on the many
	// side, the partner field of the junction on the one side.
	Item string
	// JunctionField is set when the view reaches Target through a junction.
	JunctionField string
	Junction      string
	// OneSide indicates the view was derived from meta.one_field.
	OneSide bool

	rel *schema.Relation
}

// views expands the snapshot relations into field views. Every relation
// yields its many side, and its one side when meta.one_field is set.
// Column-level foreign keys without a relation record yield a many side.
func (g *Graph) views() []*relView {
	partners := make(map[edgeKey]*schema.Relation)
	for _, r := range g.snapshot.Relations {
		if r == nil {
			continue
		}
		if k := (edgeKey{r.Collection, r.Field}); partners[k] == nil {
			partners[k] = r
		}
	}
	var views []*relView
	for _, r := range g.snapshot.Relations {
		if r == nil || r.Collection == "" || r.Field == "" {
			continue
		}
		views = append(views, &relView{
			Source:  r.Collection,
			Field:   r.Field,
			Target:  r.Related(),
			Allowed: r.AllowedCollections(),
			Item:    r.Field,
			rel:     r,
		})
		one := r.OneField()
		if one == "" || r.Related() == "" {
			continue
		}
		v := &relView{
			Source:  r.Related(),
			Field:   one,
			Target:  r.Collection,
			Item:    r.Field,
			OneSide: true,
			rel:     r,
		}
		if jf := r.JunctionField(); jf != "" {
			v.Junction, v.Item = r.Collection, jf
			v.JunctionField = jf
			if p, ok := partners[edgeKey{r.Collection, jf}]; ok {
				v.Target, v.Allowed = p.Related(), p.AllowedCollections()
				if v.Target == "" {
					v.JunctionField = ""
				}
			}
		}
		views = append(views, v)
	}
	for _, f := range g.snapshot.Fields {
		if f == nil || f.Schema == nil || f.Schema.ForeignKeyTable == nil || *f.Schema.ForeignKeyTable == "" {
			continue
		}
		if _, ok := partners[edgeKey{f.Collection, f.Field}]; ok {
			continue
		}
		views = append(views, &relView{
			Source: f.Collection,
			Field:  f.Field,
			Target: *f.Schema.ForeignKeyTable,
			Item:   f.Field,
		})
	}
	return views
}

// classify decides the category of a relation view. The first matching
// rule wins, and the name of that rule is returned along with it.
func (g *Graph) classify(v *relView) (Rel, string) {
	switch {
	case g.junctions[v.Source]:
		return M2O, RuleJunctionSource
	case v.JunctionField != "":
		return M2M, RuleJunctionMarker
	case v.Target == "" && v.Item == g.Conventions.ItemField:
		return M2A, RulePolymorphic
	case v.Source == v.Target:
		return g.selfReference(v), RuleSelfReference
	case v.OneSide || (v.rel != nil && v.rel.OneCollection() == v.Source && v.rel.OneField() == v.Field):
		return O2M, RuleOneSide
	}
	return M2O, RuleDefault
}

// selfReference classifies a relation between an entity and itself.
// Explicit cardinality metadata wins over field-name roles.
func (g *Graph) selfReference(v *relView) Rel {
	if r := v.rel; r != nil && r.Meta != nil {
		switch v.Field {
		case r.OneField():
			return O2M
		case r.ManyField():
			return M2O
		}
	}
	name := strings.ToLower(v.Field)
	switch {
	case slices.Contains(g.Conventions.ParentRoles, name):
		return M2O
	case slices.Contains(g.Conventions.ChildRoles, name):
		return O2M
	case v.Allowed != nil:
		return O2M
	}
	return M2O
}

// many reports whether a relationship of category rel found on the view
// holds a list.
func (v *relView) many(rel Rel) bool {
	switch rel {
	case O2M, M2M:
		return true
	case M2A:
		return v.OneSide
	}
	return false
}
