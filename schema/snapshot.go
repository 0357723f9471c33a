package schema

import (
	"encoding/json"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// SystemPrefix is the name prefix of built-in platform collections.
const SystemPrefix = "directus_"

// Declared field kinds used by the snapshot format.
const (
	KindAlias      = "alias"
	KindBigInteger = "bigInteger"
	KindBinary     = "binary"
	KindBoolean    = "boolean"
	KindCSV        = "csv"
	KindDate       = "date"
	KindDateTime   = "dateTime"
	KindDecimal    = "decimal"
	KindFloat      = "float"
	KindGeometry   = "geometry"
	KindHash       = "hash"
	KindInteger    = "integer"
	KindJSON       = "json"
	KindString     = "string"
	KindText       = "text"
	KindTime       = "time"
	KindTimestamp  = "timestamp"
	KindUnknown    = "unknown"
	KindUUID       = "uuid"
)

// Special tags attached to fields.
const (
	SpecialAlias         = "alias"
	SpecialCastBoolean   = "cast-boolean"
	SpecialCastCSV       = "cast-csv"
	SpecialCastDatetime  = "cast-datetime"
	SpecialCastJSON      = "cast-json"
	SpecialCastTimestamp = "cast-timestamp"
	SpecialDateCreated   = "date-created"
	SpecialDateUpdated   = "date-updated"
	SpecialFiles         = "files"
	SpecialGroup         = "group"
	SpecialM2A           = "m2a"
	SpecialM2M           = "m2m"
	SpecialM2O           = "m2o"
	SpecialNoData        = "no-data"
	SpecialO2M           = "o2m"
	SpecialTranslations  = "translations"
	SpecialUserCreated   = "user-created"
	SpecialUserUpdated   = "user-updated"
	SpecialUUID          = "uuid"
)

type (
	// Snapshot is a full schema export.
	Snapshot struct {
		Version     int           `json:"version,omitempty" yaml:"version,omitempty"`
		Directus    string        `json:"directus,omitempty" yaml:"directus,omitempty"`
		Vendor      string        `json:"vendor,omitempty" yaml:"vendor,omitempty"`
		Collections []*Collection `json:"collections" yaml:"collections"`
		Fields      []*Field      `json:"fields" yaml:"fields"`
		Relations   []*Relation   `json:"relations" yaml:"relations"`
	}

	// Collection is one schema collection.
	Collection struct {
		Collection string            `json:"collection" yaml:"collection"`
		Meta       *CollectionMeta   `json:"meta,omitempty" yaml:"meta,omitempty"`
		Schema     *CollectionSchema `json:"schema,omitempty" yaml:"schema,omitempty"`
	}

	// CollectionMeta holds the platform metadata of a collection.
	CollectionMeta struct {
		Collection string  `json:"collection,omitempty" yaml:"collection,omitempty"`
		Singleton  bool    `json:"singleton,omitempty" yaml:"singleton,omitempty"`
		Hidden     bool    `json:"hidden,omitempty" yaml:"hidden,omitempty"`
		System     bool    `json:"system,omitempty" yaml:"system,omitempty"`
		Note       *string `json:"note,omitempty" yaml:"note,omitempty"`
		Icon       *string `json:"icon,omitempty" yaml:"icon,omitempty"`
		Group      *string `json:"group,omitempty" yaml:"group,omitempty"`
		SortField  *string `json:"sort_field,omitempty" yaml:"sort_field,omitempty"`
	}

	// CollectionSchema is the database side of a collection. It is nil
	// for folder-like collections without a table.
	CollectionSchema struct {
		Name    string `json:"name,omitempty" yaml:"name,omitempty"`
		Comment string `json:"comment,omitempty" yaml:"comment,omitempty"`
	}

	// Field is one property of a collection.
	Field struct {
		Collection string       `json:"collection" yaml:"collection"`
		Field      string       `json:"field" yaml:"field"`
		Type       string       `json:"type" yaml:"type"`
		Meta       *FieldMeta   `json:"meta,omitempty" yaml:"meta,omitempty"`
		Schema     *FieldSchema `json:"schema,omitempty" yaml:"schema,omitempty"`
	}

	// FieldMeta holds the platform metadata of a field.
	FieldMeta struct {
		Special   Specials       `json:"special,omitempty" yaml:"special,omitempty"`
		Interface *string        `json:"interface,omitempty" yaml:"interface,omitempty"`
		Hidden    bool           `json:"hidden,omitempty" yaml:"hidden,omitempty"`
		System    bool           `json:"system,omitempty" yaml:"system,omitempty"`
		Readonly  bool           `json:"readonly,omitempty" yaml:"readonly,omitempty"`
		Required  bool           `json:"required,omitempty" yaml:"required,omitempty"`
		Note      *string        `json:"note,omitempty" yaml:"note,omitempty"`
		Sort      *int           `json:"sort,omitempty" yaml:"sort,omitempty"`
		Options   map[string]any `json:"options,omitempty" yaml:"options,omitempty"`
	}

	// FieldSchema is the column side of a field. It is nil for alias fields.
	FieldSchema struct {
		Name             string  `json:"name,omitempty" yaml:"name,omitempty"`
		Table            string  `json:"table,omitempty" yaml:"table,omitempty"`
		DataType         string  `json:"data_type,omitempty" yaml:"data_type,omitempty"`
		DefaultValue     any     `json:"default_value,omitempty" yaml:"default_value,omitempty"`
		MaxLength        *int    `json:"max_length,omitempty" yaml:"max_length,omitempty"`
		IsNullable       bool    `json:"is_nullable" yaml:"is_nullable"`
		IsUnique         bool    `json:"is_unique,omitempty" yaml:"is_unique,omitempty"`
		IsPrimaryKey     bool    `json:"is_primary_key,omitempty" yaml:"is_primary_key,omitempty"`
		HasAutoIncrement bool    `json:"has_auto_increment,omitempty" yaml:"has_auto_increment,omitempty"`
		ForeignKeyTable  *string `json:"foreign_key_table,omitempty" yaml:"foreign_key_table,omitempty"`
		ForeignKeyColumn *string `json:"foreign_key_column,omitempty" yaml:"foreign_key_column,omitempty"`
	}

	// Relation links Collection.Field to RelatedCollection.
	Relation struct {
		Collection        string          `json:"collection" yaml:"collection"`
		Field             string          `json:"field" yaml:"field"`
		RelatedCollection *string         `json:"related_collection" yaml:"related_collection"`
		Meta              *RelationMeta   `json:"meta,omitempty" yaml:"meta,omitempty"`
		Schema            *RelationSchema `json:"schema,omitempty" yaml:"schema,omitempty"`
	}

	// RelationMeta holds the cardinality metadata of a relation.
	RelationMeta struct {
		ManyCollection        string   `json:"many_collection,omitempty" yaml:"many_collection,omitempty"`
		ManyField             string   `json:"many_field,omitempty" yaml:"many_field,omitempty"`
		OneCollection         *string  `json:"one_collection,omitempty" yaml:"one_collection,omitempty"`
		OneField              *string  `json:"one_field,omitempty" yaml:"one_field,omitempty"`
		OneCollectionField    *string  `json:"one_collection_field,omitempty" yaml:"one_collection_field,omitempty"`
		OneAllowedCollections []string `json:"one_allowed_collections,omitempty" yaml:"one_allowed_collections,omitempty"`
		JunctionField         *string  `json:"junction_field,omitempty" yaml:"junction_field,omitempty"`
		SortField             *string  `json:"sort_field,omitempty" yaml:"sort_field,omitempty"`
		OneDeselectAction     string   `json:"one_deselect_action,omitempty" yaml:"one_deselect_action,omitempty"`
		System                bool     `json:"system,omitempty" yaml:"system,omitempty"`
	}

	// RelationSchema is the foreign-key constraint backing a relation.
	RelationSchema struct {
		Table            string `json:"table,omitempty" yaml:"table,omitempty"`
		Column           string `json:"column,omitempty" yaml:"column,omitempty"`
		ForeignKeyTable  string `json:"foreign_key_table,omitempty" yaml:"foreign_key_table,omitempty"`
		ForeignKeyColumn string `json:"foreign_key_column,omitempty" yaml:"foreign_key_column,omitempty"`
		OnDelete         string `json:"on_delete,omitempty" yaml:"on_delete,omitempty"`
	}
)

// Specials is the special-tag list of a field. The export format writes
// it either as an array or, in older versions, as a comma-separated string.
type Specials []string

// UnmarshalJSON accepts null, an array of strings or a CSV string.
func (s *Specials) UnmarshalJSON(b []byte) error {
	var list []string
	if err := json.Unmarshal(b, &list); err == nil {
		*s = list
		return nil
	}
	var csv string
	if err := json.Unmarshal(b, &csv); err != nil {
		return err
	}
	*s = SplitCSV(csv)
	return nil
}

// UnmarshalYAML accepts null, a sequence of strings or a CSV string.
func (s *Specials) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode {
		if n.Tag == "!!null" {
			*s = nil
			return nil
		}
		*s = SplitCSV(n.Value)
		return nil
	}
	var list []string
	if err := n.Decode(&list); err != nil {
		return err
	}
	*s = list
	return nil
}

// SplitCSV splits a comma-separated list, dropping empty items.
func SplitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// IsSystem reports if the collection name denotes a built-in collection.
func IsSystem(name string) bool {
	return strings.HasPrefix(name, SystemPrefix)
}

// Singleton reports if the collection holds exactly one record.
func (c *Collection) Singleton() bool {
	return c.Meta != nil && c.Meta.Singleton
}

// Note returns the collection note, if any.
func (c *Collection) Note() string {
	if c.Meta == nil || c.Meta.Note == nil {
		return ""
	}
	return *c.Meta.Note
}

// Builtin reports if the field is one of the platform's own fields. Fields
// added to a system collection by users have metadata not marked system.
func (f *Field) Builtin() bool {
	return IsSystem(f.Collection) && (f.Meta == nil || f.Meta.System)
}

// Nullable reports if the field may hold null. Fields without a column
// (aliases) are nullable.
func (f *Field) Nullable() bool {
	return f.Schema == nil || f.Schema.IsNullable
}

// PrimaryKey reports if the field is the collection's primary key.
func (f *Field) PrimaryKey() bool {
	return f.Schema != nil && f.Schema.IsPrimaryKey
}

// Specials returns the special tags of the field.
func (f *Field) Specials() []string {
	if f.Meta == nil {
		return nil
	}
	return f.Meta.Special
}

// HasSpecial reports if the field carries any of the given special tags.
func (f *Field) HasSpecial(tags ...string) bool {
	for _, s := range f.Specials() {
		if slices.Contains(tags, s) {
			return true
		}
	}
	return false
}

// Hidden reports if the field is hidden in the platform's editor.
func (f *Field) Hidden() bool {
	return f.Meta != nil && f.Meta.Hidden
}

// Note returns the field note, if any.
func (f *Field) Note() string {
	if f.Meta == nil || f.Meta.Note == nil {
		return ""
	}
	return *f.Meta.Note
}

// Builtin reports if the relation is one of the platform's own relations.
func (r *Relation) Builtin() bool {
	return IsSystem(r.Collection) && (r.Meta == nil || r.Meta.System)
}

// Related returns the related collection, or "" for polymorphic relations.
func (r *Relation) Related() string {
	if r.RelatedCollection == nil {
		return ""
	}
	return *r.RelatedCollection
}

// OneField returns the field exposing the relation on its "one" side.
func (r *Relation) OneField() string {
	if r.Meta == nil || r.Meta.OneField == nil {
		return ""
	}
	return *r.Meta.OneField
}

// OneCollection returns the collection on the "one" side of the relation.
func (r *Relation) OneCollection() string {
	if r.Meta == nil || r.Meta.OneCollection == nil {
		return ""
	}
	return *r.Meta.OneCollection
}

// ManyField returns the field on the "many" side of the relation.
func (r *Relation) ManyField() string {
	if r.Meta == nil {
		return ""
	}
	return r.Meta.ManyField
}

// JunctionField returns the partner field in a junction collection.
func (r *Relation) JunctionField() string {
	if r.Meta == nil || r.Meta.JunctionField == nil {
		return ""
	}
	return *r.Meta.JunctionField
}

// AllowedCollections returns the allowed targets of a polymorphic relation.
// A nil result means the list is absent.
func (r *Relation) AllowedCollections() []string {
	if r.Meta == nil {
		return nil
	}
	return r.Meta.OneAllowedCollections
}

// Ref returns a pointer to s, for building snapshots in code.
func Ref(s string) *string { return &s }
