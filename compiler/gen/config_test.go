package gen

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	c, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, "Schema", c.RootTypeName)
	assert.True(t, c.UseReferenceUnions)
	assert.False(t, c.MakeFieldsRequired)
	assert.False(t, c.IncludeSystemFields)
	assert.True(t, c.ExportSystemEntities)
	assert.True(t, c.ResolveSystemFallbackRelations)
	assert.False(t, c.AnnotateWithNotes)
	assert.Empty(t, c.Header)

	require.NotNil(t, c.Conventions)
	assert.Equal(t, "item", c.Conventions.ItemField)
	assert.Equal(t, "directus_users", c.Conventions.UsersCollection)
	assert.True(t, c.Conventions.PluralPairJunctions)
	require.NotNil(t, c.Catalog)
	_, ok := c.Catalog.Lookup("directus_users")
	assert.True(t, ok)
	assert.NotNil(t, c.Logger)
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "veloxts.yaml")
	err := os.WriteFile(path, []byte(`
root_type_name: Collections
use_reference_unions: false
include_system_fields: true
annotate_with_notes: true
target: src/types/directus.ts
header: |
  Generated types.
conventions:
  junction_suffixes: [_pivot]
  parent_roles: [up]
  org_prefixes: [acme_]
  irregulars:
    octopus: octopodes
`), 0o644)
	require.NoError(t, err)

	c, err := LoadConfig(path, WithNotes(false))
	require.NoError(t, err)

	assert.Equal(t, "Collections", c.RootTypeName)
	assert.False(t, c.UseReferenceUnions)
	assert.True(t, c.IncludeSystemFields)
	assert.False(t, c.AnnotateWithNotes, "options apply on top of the file")
	assert.True(t, c.ExportSystemEntities, "missing keys keep their default")
	assert.True(t, c.ResolveSystemFallbackRelations)
	assert.Equal(t, "src/types/directus.ts", c.Target)
	assert.Equal(t, "Generated types.\n", c.Header)

	conv := c.Conventions
	assert.Equal(t, []string{"_pivot"}, conv.JunctionSuffixes)
	assert.Equal(t, []string{"up"}, conv.ParentRoles)
	assert.Equal(t, []string{"acme_"}, conv.OrgPrefixes)
	assert.Equal(t, map[string]string{"octopus": "octopodes"}, conv.Irregulars)
	assert.Equal(t, []string{"_to_", "_join_"}, conv.JunctionInfixes, "unset conventions keep their default")
	assert.Equal(t, "item", conv.ItemField)
}

func TestLoadConfig_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "none.yaml"))
		require.Error(t, err)
		assert.True(t, IsConfigError(err))
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("root_type_name: [a"), 0o644))
		_, err := LoadConfig(path)
		require.Error(t, err)
		assert.True(t, IsConfigError(err))
	})

	t.Run("invalid root type name", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "root.yaml")
		require.NoError(t, os.WriteFile(path, []byte("root_type_name: my root\n"), 0o644))
		_, err := LoadConfig(path)
		var cerr *ConfigError
		require.ErrorAs(t, err, &cerr)
		assert.Equal(t, "RootTypeName", cerr.Option)
	})

	t.Run("invalid option", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "ok.yaml")
		require.NoError(t, os.WriteFile(path, []byte("target: a.ts\n"), 0o644))
		_, err := LoadConfig(path, WithRootTypeName("bad name"))
		require.Error(t, err)
		assert.True(t, IsConfigError(err))
	})
}

func TestConventions_Merge(t *testing.T) {
	c := &Conventions{ItemField: "ref", UsersCollection: "members"}
	c.merge(DefaultConventions())
	assert.Equal(t, "ref", c.ItemField)
	assert.Equal(t, "members", c.UsersCollection)
	assert.Equal(t, DefaultConventions().ChildRoles, c.ChildRoles)
	assert.False(t, c.PluralPairJunctions)
}
