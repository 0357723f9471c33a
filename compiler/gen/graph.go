package gen

import (
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/syssam/veloxts/schema"
)

// Graph holds the entities and relationships of one snapshot along with
// the configuration used to synthesize them. A Graph owns all of its
// state; concurrent runs must each build their own.
type Graph struct {
	*Config
	// Entities holds the entities in registration order.
	Entities []*Entity
	// Diagnostics holds the non-fatal findings of the run.
	Diagnostics Diagnostics

	snapshot  *schema.Snapshot
	entities  map[string]*Entity
	relations *relTable
	junctions map[string]bool
	names     *Namer
	log       *zap.Logger
	// complete is set once snapshot fields are registered; entities added
	// later are completed on creation.
	complete bool
}

// NewGraph runs the pipeline over the snapshot. It never fails: missing
// sections are treated as empty and unresolved fields are reported in
// Diagnostics. A nil config uses the defaults.
func NewGraph(c *Config, snap *schema.Snapshot) *Graph {
	if c == nil {
		c = MustNewConfig()
	}
	cfg := *c
	if c.Conventions != nil {
		conv := *c.Conventions
		cfg.Conventions = &conv
	}
	cfg.defaults()
	if snap == nil {
		snap = &schema.Snapshot{}
	}
	g := &Graph{
		Config:    &cfg,
		snapshot:  snap,
		entities:  make(map[string]*Entity),
		relations: newRelTable(),
		names:     NewNamer(cfg.Catalog, cfg.Conventions),
		log:       cfg.Logger,
	}
	g.names.Reserve(cfg.RootTypeName)
	g.registerCollections()
	g.registerFields()
	g.junctions = g.detectJunctions()
	g.explicitRelations()
	if g.ResolveSystemFallbackRelations {
		g.systemFallback()
	}
	g.resolveAliases()
	for _, e := range g.Entities {
		e.Junction = g.junctions[e.Name]
	}
	g.log.Debug("graph built",
		zap.Int("entities", len(g.Entities)),
		zap.Int("relationships", len(g.relations.order)),
		zap.Int("junctions", len(g.junctions)),
	)
	return g
}

// Entity returns the entity with the given raw name.
func (g *Graph) Entity(name string) (*Entity, bool) {
	e, ok := g.entities[name]
	return e, ok
}

// Relationship returns the edge carried by the given entity field.
func (g *Graph) Relationship(entity, field string) (*Relationship, bool) {
	return g.relations.get(entity, field)
}

// Relationships returns all edges in the order they were established.
func (g *Graph) Relationships() []*Relationship {
	return slices.Clone(g.relations.order)
}

// Namer returns the naming authority of the graph.
func (g *Graph) Namer() *Namer {
	return g.names
}

// addEntity registers a new entity. The first entity to claim a type name
// owns it; a later one with the same synthesized name reuses it and is
// reported as a collision.
func (g *Graph) addEntity(name string, singleton bool) *Entity {
	e := newEntity(name)
	if se, ok := g.Catalog.Lookup(name); ok {
		singleton = singleton || se.Singleton
		e.IDKind = se.IDKind
	}
	e.Singleton = singleton
	if singleton {
		g.names.MarkSingleton(name)
	}
	e.TypeName = g.names.TypeName(name)
	if reserved, ok := g.names.Renamed(name); ok {
		msg := fmt.Sprintf("type name %s is reserved, using %s", reserved, e.TypeName)
		g.Diagnostics.AddWarning(CodeNameCollision, name, "", msg)
		g.log.Warn("reserved type name",
			zap.String("entity", e.Label()),
			zap.String("reserved", reserved),
		)
	}
	if owner, _ := g.names.Owner(e.TypeName); owner != name {
		msg := fmt.Sprintf("type name %s is already used by %s", e.TypeName, owner)
		g.Diagnostics.AddWarning(CodeNameCollision, name, "", msg)
		g.log.Warn("naming collision",
			zap.String("entity", e.Label()),
			zap.String("owner", owner),
		)
	}
	g.entities[name] = e
	g.Entities = append(g.Entities, e)
	if g.complete {
		g.completeEntity(e)
	}
	return e
}

// ensureEntity returns the named entity, adding a stub for it if it is
// only known as a relationship target.
func (g *Graph) ensureEntity(name string) *Entity {
	if e, ok := g.entities[name]; ok {
		return e
	}
	e := g.addEntity(name, false)
	e.Stub = true
	g.log.Debug("stub entity added", zap.String("collection", name))
	return e
}

// registerCollections is the first pass: one entity per collection.
func (g *Graph) registerCollections() {
	for _, c := range g.snapshot.Collections {
		if c == nil || c.Collection == "" {
			continue
		}
		if _, ok := g.entities[c.Collection]; ok {
			continue
		}
		e := g.addEntity(c.Collection, c.Singleton())
		e.Note = c.Note()
	}
}

// registerFields is the second pass: fields in declared order, then the
// primary key and the built-in fields of each entity.
func (g *Graph) registerFields() {
	for _, f := range g.snapshot.Fields {
		if f == nil || f.Collection == "" || f.Field == "" {
			continue
		}
		e, ok := g.entities[f.Collection]
		if !ok {
			e = g.addEntity(f.Collection, false)
		}
		fd := e.addField(newField(f))
		if f.PrimaryKey() && e.ID == nil {
			e.setID(fd)
		}
	}
	for _, e := range g.Entities {
		g.completeEntity(e)
	}
	g.complete = true
}

// completeEntity merges built-in fields and makes sure the entity has a
// primary key field.
func (g *Graph) completeEntity(e *Entity) {
	se, known := g.Catalog.Lookup(e.Name)
	if known && g.IncludeSystemFields {
		for _, sf := range se.Fields {
			if !e.HasField(sf.Name) {
				e.addField(newSystemField(sf))
			}
		}
	}
	if e.ID != nil {
		return
	}
	idName := "id"
	if known && se.IDField != "" {
		idName = se.IDField
	}
	if f, ok := e.Field(idName); ok {
		e.setID(f)
		if known {
			e.IDKind = se.IDKind
		}
		return
	}
	f := &Field{Name: idName, Kind: schema.KindString}
	if e.IDKind == IDNumber {
		f.Kind = schema.KindInteger
	}
	e.addField(f)
	e.setID(f)
}

// explicitRelations is the pass over the snapshot relations. The first
// edge of an (entity, field) pair wins.
func (g *Graph) explicitRelations() {
	for _, v := range g.views() {
		if g.relations.has(v.Source, v.Field) {
			continue
		}
		rel, rule := g.classify(v)
		r := &Relationship{
			Source:   v.Source,
			Field:    v.Field,
			Target:   v.Target,
			Rel:      rel,
			Many:     v.many(rel),
			Junction: v.Junction,
			Origin:   OriginSnapshot,
			Rule:     rule,
		}
		if v.Target != "" {
			r.Targets = []string{v.Target}
		} else {
			r.Targets = slices.Clone(v.Allowed)
		}
		g.link(r, !v.OneSide)
	}
}

// systemFallback applies the catalog relations that the snapshot did not
// declare, and links user-created and user-updated fields to the users
// collection. Entities added on the way are visited too.
func (g *Graph) systemFallback() {
	users := g.Conventions.UsersCollection
	for i := 0; i < len(g.Entities); i++ {
		e := g.Entities[i]
		if se, ok := g.Catalog.Lookup(e.Name); ok {
			for _, sr := range se.Relations {
				if !e.HasField(sr.Field) || g.relations.has(e.Name, sr.Field) {
					continue
				}
				g.link(&Relationship{
					Source:  e.Name,
					Field:   sr.Field,
					Target:  sr.Target,
					Targets: []string{sr.Target},
					Rel:     sr.Rel,
					Many:    sr.Rel == O2M || sr.Rel == M2M,
					Origin:  OriginSystem,
					Rule:    "system-catalog",
				}, false)
			}
		}
		if users == "" {
			continue
		}
		for _, f := range e.Fields {
			if !f.HasSpecial(schema.SpecialUserCreated, schema.SpecialUserUpdated) || g.relations.has(e.Name, f.Name) {
				continue
			}
			g.link(&Relationship{
				Source:  e.Name,
				Field:   f.Name,
				Target:  users,
				Targets: []string{users},
				Rel:     M2O,
				Origin:  OriginSystem,
				Rule:    "user-stamp",
			}, false)
		}
	}
}

// resolveAliases is the last pass: alias fields still without an edge
// are resolved heuristically, or dropped.
func (g *Graph) resolveAliases() {
	for i := 0; i < len(g.Entities); i++ {
		e := g.Entities[i]
		for _, f := range slices.Clone(e.Fields) {
			if !f.IsAlias() || g.relations.has(e.Name, f.Name) {
				continue
			}
			if !f.IsRelational() {
				e.removeField(f.Name)
				continue
			}
			rel := f.declaredRel()
			target, by := g.resolve(aliasQuery{Owner: e, Field: f.Name, Rel: rel})
			if target == "" {
				e.removeField(f.Name)
				g.Diagnostics.AddWarning(CodeUnresolvedAlias, e.Name, f.Name,
					fmt.Sprintf("no target found for %s alias; field omitted", rel))
				g.log.Warn("unresolved alias field",
					zap.String("collection", e.Name),
					zap.String("field", f.Name),
					zap.Stringer("rel", rel),
				)
				continue
			}
			r := &Relationship{
				Source:  e.Name,
				Field:   f.Name,
				Target:  target,
				Targets: []string{target},
				Rel:     rel,
				Many:    rel != M2O,
				Origin:  OriginResolved,
				Rule:    by,
			}
			if rel == M2M || rel == M2A {
				r.Junction = g.junctionBetween(e.Name, target)
			}
			g.link(r, false)
			g.Diagnostics.AddInfo(CodeHeuristicRelation, e.Name, f.Name,
				fmt.Sprintf("resolved %s to %s by %s", rel, target, by))
			g.log.Debug("alias field resolved",
				zap.String("collection", e.Name),
				zap.String("field", f.Name),
				zap.String("target", target),
				zap.String("strategy", by),
			)
		}
	}
}

// link stores the edge, making sure both ends exist. A field missing on
// the source is added; column is set for edges stored on a column, as
// opposed to alias fields.
func (g *Graph) link(r *Relationship, column bool) {
	if !g.relations.add(r) {
		return
	}
	g.log.Debug("relationship linked",
		zap.String("collection", r.Source),
		zap.String("field", r.Field),
		zap.Stringer("rel", r.Rel),
		zap.Stringer("origin", r.Origin),
		zap.Bool("unique", r.Unique()),
		zap.Bool("polymorphic", r.Polymorphic()),
	)
	src := g.ensureEntity(r.Source)
	if !src.HasField(r.Field) {
		f := &Field{Name: r.Field, Kind: schema.KindAlias, Nullable: true}
		if column {
			f.Kind = schema.KindUnknown
		}
		src.addField(f)
	}
	for _, t := range r.Targets {
		g.ensureEntity(t)
	}
}
