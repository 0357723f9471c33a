// Package schema describes the schema snapshot exported by the content
// platform: the collections, the fields of each collection and the
// relations between them.
//
// The types mirror the snapshot export format field by field, so a
// snapshot decodes directly from JSON or YAML:
//
//	var snap schema.Snapshot
//	if err := json.Unmarshal(buf, &snap); err != nil {
//	    return err
//	}
//
// Optional sections are represented by nil pointers and nil slices. The
// accessor methods (Field.Nullable, Field.HasSpecial, Relation.OneField,
// ...) make those sections safe to read without nil checks.
//
// # Collections
//
// A collection whose name starts with [SystemPrefix] is a built-in
// platform collection. Snapshots usually omit them, but fields added by
// users to built-in collections and relations pointing at them do appear.
//
// # Relations
//
// A relation record is stored on its "many" side: Collection.Field holds
// the foreign key and RelatedCollection names the referenced collection.
// The "one" side, if it exposes a field, is named by Meta.OneField.
// Junction collections carry two relations whose Meta.JunctionField names
// each other's field.
package schema
