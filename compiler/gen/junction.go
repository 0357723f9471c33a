package gen

import (
	"slices"
	"strings"

	"github.com/syssam/veloxts/schema"
)

// detectJunctions computes the junction set from the full relation set.
// It runs once; later passes only read the result.
func (g *Graph) detectJunctions() map[string]bool {
	set := make(map[string]bool)
	for _, r := range g.snapshot.Relations {
		if r != nil && r.JunctionField() != "" {
			set[r.Collection] = true
		}
	}
	fks := g.foreignKeys()
	for _, e := range g.Entities {
		switch {
		case set[e.Name]:
		case g.junctionByName(e.Name), linksTwo(fks[e.Name]):
			set[e.Name] = true
		default:
			if se, ok := g.Catalog.Lookup(e.Name); ok && se.Junction {
				set[e.Name] = true
			}
		}
	}
	return set
}

// foreignKeys returns, per collection, the fields pointing to another
// collection along with their target. Both explicit relations and
// column-level foreign keys count.
func (g *Graph) foreignKeys() map[string]map[string]string {
	fks := make(map[string]map[string]string)
	add := func(collection, field, target string) {
		if collection == "" || field == "" || target == "" {
			return
		}
		m, ok := fks[collection]
		if !ok {
			m = make(map[string]string)
			fks[collection] = m
		}
		if _, ok := m[field]; !ok {
			m[field] = target
		}
	}
	for _, r := range g.snapshot.Relations {
		if r != nil {
			add(r.Collection, r.Field, r.Related())
		}
	}
	for _, f := range g.snapshot.Fields {
		if f != nil && f.Schema != nil && f.Schema.ForeignKeyTable != nil {
			add(f.Collection, f.Field, *f.Schema.ForeignKeyTable)
		}
	}
	return fks
}

// linksTwo reports whether the foreign keys are exactly two fields
// pointing to two different collections.
func linksTwo(fks map[string]string) bool {
	if len(fks) != 2 {
		return false
	}
	targets := make([]string, 0, 2)
	for _, t := range fks {
		targets = append(targets, t)
	}
	return targets[0] != targets[1]
}

// junctionByName reports whether a user collection name follows one of
// the junction naming conventions.
func (g *Graph) junctionByName(name string) bool {
	if schema.IsSystem(name) {
		return false
	}
	conv := g.Conventions
	lower := strings.ToLower(name)
	if slices.ContainsFunc(conv.JunctionInfixes, func(s string) bool {
		return s != "" && strings.Contains(lower, s)
	}) {
		return true
	}
	if slices.ContainsFunc(conv.JunctionSuffixes, func(s string) bool {
		return s != "" && strings.HasSuffix(lower, s)
	}) {
		return true
	}
	if !conv.PluralPairJunctions {
		return false
	}
	parts := strings.Split(lower, "_")
	return len(parts) == 2 && g.plural(parts[0]) && g.plural(parts[1])
}

// plural reports whether w is a plural word.
func (g *Graph) plural(w string) bool {
	return w != "" && g.names.Singular(w) != w
}

// IsJunction reports whether the named entity is a junction.
func (g *Graph) IsJunction(name string) bool {
	return g.junctions[name]
}

// junctionBetween returns the junction linking a and b with a many-to-one
// edge to each, or "" if there is none.
func (g *Graph) junctionBetween(a, b string) string {
	for _, e := range g.Entities {
		if !g.junctions[e.Name] {
			continue
		}
		var toA, toB bool
		for _, r := range g.relations.order {
			if r.Source != e.Name || r.Rel != M2O {
				continue
			}
			toA = toA || r.Target == a
			toB = toB || r.Target == b
		}
		if toA && toB {
			return e.Name
		}
	}
	return ""
}
