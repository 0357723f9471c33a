package gen

import (
	"strings"
)

// Resolver strategies, in precedence order.
const (
	StrategyExplicit    = "explicit-reference"
	StrategyNamePattern = "name-pattern"
	StrategyCrossRel    = "cross-relationship"
	StrategySimilarity  = "similarity"
)

// aliasQuery is an alias field waiting for a target.
type aliasQuery struct {
	Owner *Entity
	Field string
	Rel   Rel
}

// strategy guesses the target of an alias field. It returns "" when it
// has no answer.
type strategy struct {
	name    string
	resolve func(*Graph, aliasQuery) string
}

// strategies is the resolver chain. The first non-empty answer wins, so
// lower-precision strategies come last.
var strategies = []strategy{
	{StrategyExplicit, (*Graph).resolveExplicit},
	{StrategyNamePattern, (*Graph).resolveNamePattern},
	{StrategyCrossRel, (*Graph).resolveCrossRelationship},
	{StrategySimilarity, (*Graph).resolveSimilarity},
}

// resolve runs the strategy chain for q and returns the target along with
// the name of the strategy that found it.
func (g *Graph) resolve(q aliasQuery) (target, by string) {
	for _, s := range strategies {
		if t := s.resolve(g, q); t != "" {
			return t, s.name
		}
	}
	return "", ""
}

// resolveExplicit looks for a relation exposing the field on its one side.
func (g *Graph) resolveExplicit(q aliasQuery) string {
	for _, r := range g.snapshot.Relations {
		if r != nil && r.OneField() == q.Field && r.Related() == q.Owner.Name {
			return r.Collection
		}
	}
	return ""
}

// resolveNamePattern matches the field name against entity names.
// Ambiguous prefix and suffix matches are no match.
func (g *Graph) resolveNamePattern(q aliasQuery) string {
	owner := g.names.SingularName(q.Owner.Name)
	for _, name := range []string{
		q.Field,
		g.names.Singular(q.Field),
		g.names.Plural(q.Field),
		owner + "_" + q.Field,
		q.Field + "_" + owner,
	} {
		if _, ok := g.entities[name]; ok {
			return name
		}
	}
	if name, ok := g.unique(func(e string) bool { return strings.HasSuffix(e, "_"+q.Field) }); ok {
		return name
	}
	if name, ok := g.unique(func(e string) bool { return strings.HasPrefix(e, q.Field+"_") }); ok {
		return name
	}
	return ""
}

// unique returns the only entity name matching fn.
func (g *Graph) unique(fn func(string) bool) (string, bool) {
	var match string
	for _, e := range g.Entities {
		if !fn(e.Name) {
			continue
		}
		if match != "" {
			return "", false
		}
		match = e.Name
	}
	return match, match != ""
}

// resolveCrossRelationship infers the target from edges already known to
// point at the owner.
func (g *Graph) resolveCrossRelationship(q aliasQuery) string {
	var candidates []string
	add := func(name string) {
		for _, c := range candidates {
			if c == name {
				return
			}
		}
		candidates = append(candidates, name)
	}
	owner := q.Owner.Name
	switch q.Rel {
	case O2M:
		for _, r := range g.relations.order {
			if r.Rel == M2O && r.Target == owner && r.Source != owner {
				add(r.Source)
			}
		}
	case M2O:
		for _, r := range g.relations.order {
			if r.Rel == O2M && r.Target == owner && r.Source != owner {
				add(r.Source)
			}
		}
	case M2M:
		for _, r := range g.relations.order {
			if r.Rel != M2O || r.Target != owner || !g.junctions[r.Source] {
				continue
			}
			for _, o := range g.relations.order {
				if o.Source == r.Source && o.Rel == M2O && o.Target != "" && o.Target != owner {
					add(o.Target)
				}
			}
		}
	}
	switch len(candidates) {
	case 0:
		return ""
	case 1:
		return candidates[0]
	}
	field := g.names.Normalize(q.Field)
	for _, c := range candidates {
		if n := g.names.Normalize(c); strings.Contains(n, field) || strings.Contains(field, n) {
			return c
		}
	}
	return candidates[0]
}

// resolveSimilarity picks the best scoring entity, if good enough.
func (g *Graph) resolveSimilarity(q aliasQuery) string {
	names := make([]string, 0, len(g.Entities))
	for _, e := range g.Entities {
		names = append(names, e.Name)
	}
	c, ok := g.names.bestCandidate(q.Field, q.Owner.Name, names)
	if !ok {
		return ""
	}
	return c.Entity
}
