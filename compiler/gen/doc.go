// Package gen builds type declarations from a platform schema snapshot.
//
// # Architecture
//
// NewGraph runs a fixed sequence of passes over a snapshot:
//
//	collections      register one Entity per collection
//	        ↓
//	fields           declared fields, primary key, built-in fields
//	        ↓
//	junctions        detect link-only collections (computed once)
//	        ↓
//	relations        classify every explicit relation view
//	        ↓
//	system fallback  catalog relations the snapshot omits
//	        ↓
//	aliases          resolve relational alias fields heuristically
//
// Each pass reads the complete result of the previous one. Graph.Gen
// renders the declarations: user entities, then system entities, then
// the root aggregate type.
//
// # Key Types
//
//   - Graph: owns the entity and relationship tables of one run
//   - Entity: a collection with its fields and primary key
//   - Field: a field with its storage kind and special tags
//   - Relationship: an edge stored on the field that carries it
//   - Namer: raw names to type names, singular and plural forms
//   - Catalog: built-in collections of the platform
//   - Config: global configuration, set with Options or a YAML file
//
// # Relationship Resolution
//
// Alias fields with no explicit relation run through the resolver chain:
//
//	explicit-reference   a relation exposing the field on its one side
//	name-pattern         field name against entity names
//	cross-relationship   edges already pointing at the owner
//	similarity           scored fuzzy match, accepted from MinSimilarity
//
// The first strategy with an answer wins. Unresolved fields are omitted
// and reported in Graph.Diagnostics.
//
// # Error Handling
//
// The pipeline itself never fails. Configuration and output errors use
// structured types:
//
//   - ConfigError: invalid options or configuration files
//   - SourceError: snapshot sources that cannot be read
//   - GenerationError: output that cannot be written
//
// Example error handling:
//
//	if err := g.WriteFile(path); err != nil {
//	    if gen.IsGenerationError(err) {
//	        // handle write failure
//	    }
//	}
package gen
