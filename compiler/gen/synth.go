package gen

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// DefaultHeader is emitted at the top of the output when no header is set.
const DefaultHeader = "Code generated by veloxts. DO NOT EDIT."

type (
	// Declaration is the output unit of one entity.
	Declaration struct {
		// Entity is the entity the declaration was built from.
		Entity *Entity
		// Name is the declared type name.
		Name string
		// Banner states the entity's primary key.
		Banner string
		// Properties are the ID property followed by the other fields
		// in declared order.
		Properties []Property
	}

	// Property is one line of a declaration.
	Property struct {
		Name     string
		Type     string
		Optional bool
		// Doc is the field note, emitted when notes are enabled.
		Doc string
	}
)

// Declarations returns the declarations of all entities: user entities
// first, then system entities. Entities that lost a naming collision
// share the declaration of the first one and get none of their own.
func (g *Graph) Declarations() []*Declaration {
	var user, system []*Declaration
	for _, e := range g.ordered() {
		if owner, _ := g.names.Owner(e.TypeName); owner != e.Name {
			continue
		}
		d := g.declaration(e)
		if e.System {
			system = append(system, d)
		} else {
			user = append(user, d)
		}
	}
	return append(user, system...)
}

// ordered returns the entities with user entities first.
func (g *Graph) ordered() []*Entity {
	es := make([]*Entity, 0, len(g.Entities))
	for _, system := range []bool{false, true} {
		for _, e := range g.Entities {
			if e.System == system {
				es = append(es, e)
			}
		}
	}
	return es
}

func (g *Graph) declaration(e *Entity) *Declaration {
	d := &Declaration{
		Entity: e,
		Name:   e.TypeName,
		Banner: fmt.Sprintf("%s: primary key %q (%s)", e.Name, e.IDName(), e.IDKind),
	}
	if e.ID != nil {
		d.Properties = append(d.Properties, Property{Name: e.ID.Name, Type: string(e.IDKind)})
	}
	for _, f := range e.Fields {
		if f.PrimaryKey {
			continue
		}
		p := Property{
			Name:     f.Name,
			Type:     g.propertyType(e, f),
			Optional: f.Optional(g.Config),
		}
		if g.AnnotateWithNotes {
			p.Doc = f.Note
		}
		d.Properties = append(d.Properties, p)
	}
	return d
}

// propertyType maps a field to its output type. An established
// relationship wins over special literals, which win over scalar kinds.
func (g *Graph) propertyType(e *Entity, f *Field) string {
	if r, ok := g.relations.get(e.Name, f.Name); ok {
		return g.relationType(r)
	}
	if lit, ok := f.Literal(); ok {
		return lit
	}
	return f.Scalar()
}

// relationType renders a relationship. The ID part uses the kind of the
// target's primary key, not the source's.
func (g *Graph) relationType(r *Relationship) string {
	var kinds, names []string
	for _, t := range r.Targets {
		e, ok := g.entities[t]
		if !ok {
			continue
		}
		kinds = appendUnique(kinds, string(e.IDKind))
		names = appendUnique(names, e.TypeName)
	}
	if len(names) == 0 {
		return "unknown"
	}
	objects := strings.Join(names, " | ")
	ids := strings.Join(kinds, " | ")
	if !r.Unique() {
		objects, ids = list(objects, len(names)), list(ids, len(kinds))
	}
	if !g.UseReferenceUnions {
		return objects
	}
	return ids + " | " + objects
}

// list renders an array of the union u of n members.
func list(u string, n int) string {
	if n > 1 {
		return "(" + u + ")[]"
	}
	return u + "[]"
}

func appendUnique(s []string, v string) []string {
	for _, x := range s {
		if x == v {
			return s
		}
	}
	return append(s, v)
}

// Gen returns the complete output: header, declarations and the root
// aggregate type.
func (g *Graph) Gen() []byte {
	var b bytes.Buffer
	g.writeHeader(&b)
	for _, d := range g.Declarations() {
		b.WriteByte('\n')
		d.write(&b)
	}
	b.WriteByte('\n')
	g.writeRoot(&b)
	return b.Bytes()
}

func (g *Graph) writeHeader(b *bytes.Buffer) {
	header := g.Header
	if header == "" {
		header = DefaultHeader
	}
	for _, line := range strings.Split(strings.TrimRight(header, "\n"), "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "//") {
			b.WriteString(line)
		} else {
			b.WriteString(strings.TrimRight("// "+line, " "))
		}
		b.WriteByte('\n')
	}
}

func (d *Declaration) write(b *bytes.Buffer) {
	fmt.Fprintf(b, "// %s\n", d.Banner)
	fmt.Fprintf(b, "export interface %s {\n", d.Name)
	for _, p := range d.Properties {
		if p.Doc != "" {
			fmt.Fprintf(b, "  /** %s */\n", strings.ReplaceAll(p.Doc, "*/", "*\\/"))
		}
		b.WriteString("  ")
		b.WriteString(propertyKey(p.Name))
		if p.Optional {
			b.WriteByte('?')
		}
		fmt.Fprintf(b, ": %s;\n", p.Type)
	}
	b.WriteString("}\n")
}

// writeRoot emits the aggregate type: singletons as a bare reference,
// other entities as a list.
func (g *Graph) writeRoot(b *bytes.Buffer) {
	fmt.Fprintf(b, "export interface %s {\n", g.RootTypeName)
	for _, e := range g.ordered() {
		if e.System && !g.ExportSystemEntities {
			continue
		}
		t := e.TypeName
		if !e.Singleton {
			t += "[]"
		}
		fmt.Fprintf(b, "  %s: %s;\n", propertyKey(e.Name), t)
	}
	b.WriteString("}\n")
}

// propertyKey quotes names that are not valid identifiers.
func propertyKey(name string) string {
	if isIdent(name) {
		return name
	}
	return strconv.Quote(name)
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || r == '$' || unicode.IsLetter(r):
		case i > 0 && unicode.IsDigit(r):
		default:
			return false
		}
	}
	return true
}
