package gen

import (
	"slices"
	"strings"

	"github.com/syssam/veloxts/schema"
)

// Field holds the information of an entity field used by the synthesizer.
type Field struct {
	// Owner is the entity holding the field.
	Owner *Entity
	// Name is the raw field name.
	Name string
	// Kind is the declared storage kind, e.g. "string" or "alias".
	Kind string
	// Nullable indicates the field may hold null.
	Nullable bool
	// Special holds the field's special tags.
	Special []string
	// Hidden indicates the field is hidden in the platform's UI.
	Hidden bool
	// Note holds the field note.
	Note string
	// PrimaryKey indicates the field is the entity's primary key.
	PrimaryKey bool
	// System indicates the field was merged from the catalog.
	System bool
}

func newField(f *schema.Field) *Field {
	return &Field{
		Name:     f.Field,
		Kind:     f.Type,
		Nullable: f.Nullable(),
		Special:  f.Specials(),
		Hidden:   f.Hidden(),
		Note:     f.Note(),
	}
}

func newSystemField(f SystemField) *Field {
	return &Field{
		Name:     f.Name,
		Kind:     f.Kind,
		Nullable: f.Nullable,
		Special:  f.Special,
		System:   true,
	}
}

// =============================================================================
// Field methods
// =============================================================================

// HasSpecial reports whether the field carries any of the given tags.
func (f Field) HasSpecial(tags ...string) bool {
	for _, t := range tags {
		if slices.Contains(f.Special, t) {
			return true
		}
	}
	return false
}

// IsAlias reports whether the field has no storage of its own.
func (f Field) IsAlias() bool {
	return f.Kind == schema.KindAlias || f.HasSpecial(schema.SpecialAlias, schema.SpecialNoData)
}

// IsRelational reports whether the field is tagged as a relationship.
func (f Field) IsRelational() bool {
	return f.declaredRel() != Unk
}

// declaredRel returns the relationship category declared by the
// field's special tags.
func (f Field) declaredRel() Rel {
	switch {
	case f.HasSpecial(schema.SpecialM2A):
		return M2A
	case f.HasSpecial(schema.SpecialM2M, schema.SpecialFiles):
		return M2M
	case f.HasSpecial(schema.SpecialO2M, schema.SpecialTranslations):
		return O2M
	case f.HasSpecial(schema.SpecialM2O):
		return M2O
	}
	return Unk
}

// numeric reports whether the field kind maps to a number.
func (f Field) numeric() bool {
	switch f.Kind {
	case schema.KindInteger, schema.KindBigInteger, schema.KindFloat, schema.KindDecimal:
		return true
	}
	return false
}

// Literal returns the literal type of special fields, e.g. 'datetime'.
// Special tags win over the declared kind.
func (f Field) Literal() (string, bool) {
	switch {
	case f.HasSpecial(schema.SpecialCastCSV):
		return "'csv'", true
	case f.HasSpecial(schema.SpecialCastJSON):
		return "'json'", true
	case f.HasSpecial(schema.SpecialCastTimestamp, schema.SpecialCastDatetime, schema.SpecialDateCreated, schema.SpecialDateUpdated):
		return "'datetime'", true
	}
	switch {
	case f.Kind == schema.KindCSV:
		return "'csv'", true
	case f.Kind == schema.KindJSON, strings.HasPrefix(f.Kind, schema.KindGeometry):
		return "'json'", true
	case f.Kind == schema.KindDate, f.Kind == schema.KindDateTime, f.Kind == schema.KindTime, f.Kind == schema.KindTimestamp:
		return "'datetime'", true
	}
	return "", false
}

// Scalar returns the output scalar type of the field kind. Unknown kinds
// map to "unknown".
func (f Field) Scalar() string {
	switch f.Kind {
	case schema.KindString, schema.KindText, schema.KindUUID, schema.KindHash, schema.KindBinary:
		return "string"
	case schema.KindInteger, schema.KindBigInteger, schema.KindFloat, schema.KindDecimal:
		return "number"
	case schema.KindBoolean:
		return "boolean"
	}
	return "unknown"
}

// Optional reports whether the property gets the optional marker.
func (f Field) Optional(c *Config) bool {
	return f.Nullable && !f.PrimaryKey && !c.MakeFieldsRequired
}
