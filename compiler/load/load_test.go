package load

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/veloxts/compiler/gen"
	"github.com/syssam/veloxts/schema"
)

func TestLoad(t *testing.T) {
	require := require.New(t)
	s, err := Load("testdata/snapshot.json")
	require.NoError(err)

	require.Equal(1, s.Version)
	require.Equal("postgres", s.Vendor)
	require.Len(s.Collections, 3)
	require.Len(s.Fields, 4)
	require.Len(s.Relations, 1)

	require.True(s.Collections[1].Singleton())
	require.Equal("Blog articles", s.Collections[0].Note())
	require.Nil(s.Collections[2].Schema)

	id := s.Fields[0]
	require.True(id.PrimaryKey())
	require.False(id.Nullable())
	require.Empty(id.Specials())

	author := s.Fields[1]
	require.True(author.HasSpecial(schema.SpecialM2O))
	require.Equal("Written by", author.Note())
	require.Equal("directus_users", *author.Schema.ForeignKeyTable)

	require.Equal([]string{schema.SpecialCastJSON}, s.Fields[2].Specials(), "CSV special string")
	require.True(s.Fields[3].Nullable())

	rel := s.Relations[0]
	require.Equal("directus_users", rel.Related())
	require.Equal("author", rel.ManyField())
	require.Empty(rel.OneField())
	require.Empty(rel.JunctionField())
	require.Equal("SET NULL", rel.Schema.OnDelete)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.True(t, gen.IsSourceError(err))
	assert.True(t, errors.Is(err, os.ErrNotExist))

	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"collections": [`), 0o644))
	_, err = Load(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, gen.ErrSourceFailed))
}

func TestDecode_Envelope(t *testing.T) {
	s, err := Decode([]byte(`{"data": {"collections": [{"collection": "posts"}]}}`), JSON)
	require.NoError(t, err)
	require.Len(t, s.Collections, 1)
	assert.Equal(t, "posts", s.Collections[0].Collection)

	s, err = Decode([]byte(`{"data": null}`), JSON)
	require.NoError(t, err)
	assert.Empty(t, s.Collections)
}

func TestDecode_YAML(t *testing.T) {
	buf := []byte(`
version: 1
collections:
  - collection: pages
    meta:
      singleton: true
fields:
  - collection: pages
    field: blocks
    type: alias
    meta:
      special: m2a
relations:
  - collection: pages_blocks
    field: item
    related_collection: null
    meta:
      one_allowed_collections: [headings, texts]
`)
	s, err := Decode(buf, YAML)
	require.NoError(t, err)
	require.Len(t, s.Collections, 1)
	assert.True(t, s.Collections[0].Singleton())
	assert.Equal(t, []string{schema.SpecialM2A}, s.Fields[0].Specials())
	assert.Empty(t, s.Relations[0].Related())
	assert.Equal(t, []string{"headings", "texts"}, s.Relations[0].AllowedCollections())

	s, err = Decode([]byte("data:\n  collections:\n    - collection: posts\n"), YAML)
	require.NoError(t, err)
	require.Len(t, s.Collections, 1)
}

func TestEncode_RoundTrip(t *testing.T) {
	want, err := Load("testdata/snapshot.json")
	require.NoError(t, err)
	for _, f := range []Format{JSON, YAML, Msgpack} {
		t.Run(string(f), func(t *testing.T) {
			buf, err := Encode(want, f)
			require.NoError(t, err)
			got, err := Decode(buf, f)
			require.NoError(t, err)
			assert.Equal(t, gen.NewGraph(nil, want).Gen(), gen.NewGraph(nil, got).Gen())
		})
	}
}

func TestUnknownFormat(t *testing.T) {
	_, err := Decode([]byte("{}"), "toml")
	require.Error(t, err)
	_, err = Encode(&schema.Snapshot{}, "toml")
	require.Error(t, err)
}

func TestFormatOf(t *testing.T) {
	for path, want := range map[string]Format{
		"schema.json":          JSON,
		"schema.YAML":          YAML,
		"schema.yml":           YAML,
		"cache/schema.msgpack": Msgpack,
		"schema.cache":         Msgpack,
		"schema":               JSON,
	} {
		assert.Equal(t, want, FormatOf(path), path)
	}
}

func TestSave(t *testing.T) {
	s, err := Load("testdata/snapshot.json")
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "cache", "snapshot.msgpack")
	require.NoError(t, Save(path, s))

	f := &File{Path: path}
	assert.Equal(t, path, f.String())
	got, err := f.Snapshot(context.Background())
	require.NoError(t, err)
	require.Len(t, got.Fields, len(s.Fields))
	assert.Equal(t, s.Fields[1].Specials(), got.Fields[1].Specials())
}

func TestFile_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := (&File{Path: "testdata/snapshot.json"}).Snapshot(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
