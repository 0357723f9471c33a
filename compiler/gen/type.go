package gen

import (
	"github.com/syssam/veloxts/schema"
)

// IDKind is the scalar kind of a primary key in the output.
type IDKind string

// Primary key kinds.
const (
	IDString IDKind = "string"
	IDNumber IDKind = "number"
)

// The following types and their exported methods are used by the
// synthesizer to emit declarations.
type (
	// Entity represents one collection in the graph and the fields it holds.
	Entity struct {
		// Name holds the raw collection name.
		Name string
		// TypeName holds the synthesized output type name.
		TypeName string
		// ID holds the primary key field of this entity, if known.
		ID *Field
		// IDKind is the scalar kind of the primary key.
		IDKind IDKind
		// Singleton entities render as a single value in the root type.
		Singleton bool
		// System indicates a built-in platform collection.
		System bool
		// Junction indicates the entity only links two other entities.
		Junction bool
		// Stub indicates that the entity was not part of the snapshot and
		// was added because a relationship refers to it.
		Stub bool
		// Note holds the collection note.
		Note string
		// Fields holds all the fields of this entity in declared order,
		// including the primary key.
		Fields []*Field
		fields map[string]*Field
	}
)

func newEntity(name string) *Entity {
	return &Entity{
		Name:   name,
		IDKind: IDString,
		System: schema.IsSystem(name),
		fields: make(map[string]*Field),
	}
}

// Field returns the entity field with the given name.
func (e *Entity) Field(name string) (*Field, bool) {
	f, ok := e.fields[name]
	return f, ok
}

// HasField reports whether the entity has a field with the given name.
func (e *Entity) HasField(name string) bool {
	_, ok := e.fields[name]
	return ok
}

// addField appends f unless a field with the same name already exists,
// in which case the existing field is returned.
func (e *Entity) addField(f *Field) *Field {
	if prev, ok := e.fields[f.Name]; ok {
		return prev
	}
	f.Owner = e
	e.fields[f.Name] = f
	e.Fields = append(e.Fields, f)
	return f
}

// removeField drops the named field from the entity.
func (e *Entity) removeField(name string) {
	if _, ok := e.fields[name]; !ok {
		return
	}
	delete(e.fields, name)
	for i, f := range e.Fields {
		if f.Name == name {
			e.Fields = append(e.Fields[:i], e.Fields[i+1:]...)
			break
		}
	}
}

// setID marks f as the primary key. The ID kind is refined from the field
// kind and never reverted to the default once set to a number.
func (e *Entity) setID(f *Field) {
	f.PrimaryKey = true
	e.ID = f
	if f.numeric() {
		e.IDKind = IDNumber
	}
}

// IDName returns the primary key field name.
func (e *Entity) IDName() string {
	if e.ID == nil {
		return "id"
	}
	return e.ID.Name
}

// Label returns the name used in log lines and diagnostics.
func (e *Entity) Label() string {
	if e.TypeName == "" {
		return e.Name
	}
	return e.Name + " (" + e.TypeName + ")"
}
