package gen

import (
	"strings"
)

var (
	// FeatureReferenceUnions renders relationship fields as "id | Type" unions.
	FeatureReferenceUnions = Feature{
		Name:        "reference-unions",
		Default:     true,
		Description: "Renders relationship fields as a union of the target's primary key and object type",
		set:         func(c *Config, on bool) { c.UseReferenceUnions = on },
	}

	// FeatureRequiredFields emits nullable fields without the optional marker.
	FeatureRequiredFields = Feature{
		Name:        "required-fields",
		Default:     false,
		Description: "Emits every field as required, including nullable ones",
		set:         func(c *Config, on bool) { c.MakeFieldsRequired = on },
	}

	// FeatureSystemFields merges the built-in fields of system collections.
	FeatureSystemFields = Feature{
		Name:        "system-fields",
		Default:     false,
		Description: "Merges the built-in fields of system collections missing from the snapshot",
		set:         func(c *Config, on bool) { c.IncludeSystemFields = on },
	}

	// FeatureSystemEntities lists system collections in the root type.
	FeatureSystemEntities = Feature{
		Name:        "system-entities",
		Default:     true,
		Description: "Lists referenced system collections in the root aggregate type",
		set:         func(c *Config, on bool) { c.ExportSystemEntities = on },
	}

	// FeatureSystemFallback applies the catalog's built-in relations.
	FeatureSystemFallback = Feature{
		Name:        "system-fallback",
		Default:     true,
		Description: "Applies built-in relations of system collections the snapshot does not declare",
		set:         func(c *Config, on bool) { c.ResolveSystemFallbackRelations = on },
	}

	// FeatureNotes emits field notes as doc comments.
	FeatureNotes = Feature{
		Name:        "notes",
		Default:     false,
		Description: "Emits field notes as doc comments",
		set:         func(c *Config, on bool) { c.AnnotateWithNotes = on },
	}

	// AllFeatures holds a list of all feature-flags.
	AllFeatures = []Feature{
		FeatureReferenceUnions,
		FeatureRequiredFields,
		FeatureSystemFields,
		FeatureSystemEntities,
		FeatureSystemFallback,
		FeatureNotes,
	}
)

// A Feature is a named boolean switch of the generator.
type Feature struct {
	// Name of the feature.
	Name string

	// Default values indicates if this feature is enabled by default.
	Default bool

	// A Description of this feature.
	Description string

	// set toggles the feature on the config.
	set func(*Config, bool)
}

// FeatureByName returns the feature with the given name.
func FeatureByName(name string) (Feature, bool) {
	for _, f := range AllFeatures {
		if f.Name == name {
			return f, true
		}
	}
	return Feature{}, false
}

// WithFeatures toggles features by name. A "no-" prefix disables the
// feature instead of enabling it, e.g. "no-reference-unions".
func WithFeatures(names ...string) Option {
	return func(c *Config) error {
		for _, name := range names {
			on := true
			if n, ok := strings.CutPrefix(name, "no-"); ok {
				name, on = n, false
			}
			f, ok := FeatureByName(name)
			if !ok {
				return NewConfigError("Features", name, "unknown feature")
			}
			f.set(c, on)
		}
		return nil
	}
}
