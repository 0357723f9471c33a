package gen

import (
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type (
	// Config holds the global codegen configuration shared by all
	// generated declarations.
	Config struct {
		// RootTypeName is the name of the aggregate type listing every
		// collection. Defaults to "Schema".
		RootTypeName string `yaml:"root_type_name,omitempty"`

		// UseReferenceUnions renders relationships as "id | Type" unions
		// instead of bare object types.
		UseReferenceUnions bool `yaml:"use_reference_unions"`

		// MakeFieldsRequired drops the optional marker from nullable fields.
		MakeFieldsRequired bool `yaml:"make_fields_required"`

		// IncludeSystemFields merges the catalog's built-in fields into
		// system entities.
		IncludeSystemFields bool `yaml:"include_system_fields"`

		// ExportSystemEntities lists system entities in the root type.
		ExportSystemEntities bool `yaml:"export_system_entities"`

		// ResolveSystemFallbackRelations applies catalog relations the
		// snapshot does not declare.
		ResolveSystemFallbackRelations bool `yaml:"resolve_system_fallback_relations"`

		// AnnotateWithNotes emits field notes as doc comments.
		AnnotateWithNotes bool `yaml:"annotate_with_notes"`

		// Header is an optional comment block emitted at the top of the output.
		Header string `yaml:"header,omitempty"`

		// Target is the default output path used by the CLI.
		Target string `yaml:"target,omitempty"`

		// Conventions tunes the naming heuristics.
		Conventions *Conventions `yaml:"conventions,omitempty"`

		// Catalog describes the built-in collections. Defaults to DefaultCatalog.
		Catalog *Catalog `yaml:"-"`

		// Logger receives warnings about unresolved relationships.
		// Defaults to a no-op logger.
		Logger *zap.Logger `yaml:"-"`
	}

	// Conventions are the naming patterns used by the junction detector and
	// the relationship resolver.
	Conventions struct {
		// JunctionInfixes mark a name as a junction when found inside it.
		JunctionInfixes []string `yaml:"junction_infixes,omitempty"`
		// JunctionSuffixes mark a name as a junction when it ends with one.
		JunctionSuffixes []string `yaml:"junction_suffixes,omitempty"`
		// PluralPairJunctions treats "a_b" as a junction when both words are plural.
		PluralPairJunctions bool `yaml:"plural_pair_junctions"`
		// ParentRoles and ChildRoles name the two ends of self references.
		ParentRoles []string `yaml:"parent_roles,omitempty"`
		ChildRoles  []string `yaml:"child_roles,omitempty"`
		// ItemField is the junction field holding a polymorphic reference.
		ItemField string `yaml:"item_field,omitempty"`
		// OrgPrefixes are stripped from names before fuzzy comparison.
		OrgPrefixes []string `yaml:"org_prefixes,omitempty"`
		// Irregulars maps singular words to their irregular plural.
		Irregulars map[string]string `yaml:"irregulars,omitempty"`
		// Uncountables are words with no distinct plural.
		Uncountables []string `yaml:"uncountables,omitempty"`
		// UsersCollection is the target of user-created and user-updated fields.
		UsersCollection string `yaml:"users_collection,omitempty"`
	}
)

// DefaultRootTypeName is the root aggregate type name used when none is set.
const DefaultRootTypeName = "Schema"

// DefaultConventions returns a new set of the default conventions.
func DefaultConventions() *Conventions {
	return &Conventions{
		JunctionInfixes:     []string{"_to_", "_join_"},
		JunctionSuffixes:    []string{"_relations", "_links"},
		PluralPairJunctions: true,
		ParentRoles:         []string{"parent", "parent_id", "owner", "manager", "supervisor"},
		ChildRoles:          []string{"children", "child", "subordinates", "reports", "members"},
		ItemField:           "item",
		Irregulars: map[string]string{
			"person": "people",
			"child":  "children",
		},
		Uncountables:    []string{"data", "metadata", "media", "settings", "information", "news"},
		UsersCollection: "directus_users",
	}
}

// merge fills the empty fields of c from d.
func (c *Conventions) merge(d *Conventions) {
	if c.JunctionInfixes == nil {
		c.JunctionInfixes = d.JunctionInfixes
	}
	if c.JunctionSuffixes == nil {
		c.JunctionSuffixes = d.JunctionSuffixes
	}
	if c.ParentRoles == nil {
		c.ParentRoles = d.ParentRoles
	}
	if c.ChildRoles == nil {
		c.ChildRoles = d.ChildRoles
	}
	if c.ItemField == "" {
		c.ItemField = d.ItemField
	}
	if c.OrgPrefixes == nil {
		c.OrgPrefixes = d.OrgPrefixes
	}
	if c.Irregulars == nil {
		c.Irregulars = d.Irregulars
	}
	if c.Uncountables == nil {
		c.Uncountables = d.Uncountables
	}
	if c.UsersCollection == "" {
		c.UsersCollection = d.UsersCollection
	}
}

// NewConfig creates a new generator configuration with the default
// settings, and applies the given options on it.
func NewConfig(opts ...Option) (*Config, error) {
	c := defaultConfig()
	if err := c.ApplyAll(opts...); err != nil {
		return nil, err
	}
	c.defaults()
	return c, nil
}

// LoadConfig reads a YAML configuration file and applies the given
// options on top of it. Keys missing from the file keep their default.
func LoadConfig(path string, opts ...Option) (*Config, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, NewConfigError("path", path, err)
	}
	c := defaultConfig()
	if err := yaml.Unmarshal(buf, c); err != nil {
		return nil, NewConfigError("path", path, err)
	}
	if c.RootTypeName != "" {
		if err := c.Apply(WithRootTypeName(c.RootTypeName)); err != nil {
			return nil, err
		}
	}
	if err := c.ApplyAll(opts...); err != nil {
		return nil, err
	}
	c.defaults()
	return c, nil
}

func defaultConfig() *Config {
	c := &Config{}
	for _, f := range AllFeatures {
		f.set(c, f.Default)
	}
	return c
}

// defaults fills the unset values of the config.
func (c *Config) defaults() {
	if c.RootTypeName == "" {
		c.RootTypeName = DefaultRootTypeName
	}
	if c.Conventions == nil {
		c.Conventions = DefaultConventions()
	} else {
		c.Conventions.merge(DefaultConventions())
	}
	if c.Catalog == nil {
		c.Catalog = DefaultCatalog()
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
}
