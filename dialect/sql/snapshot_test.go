package sql

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/syssam/veloxts/compiler/gen"
	"github.com/syssam/veloxts/dialect"
	"github.com/syssam/veloxts/schema"
)

var (
	collectionColumns = []string{"collection", "singleton", "hidden", "note", "icon", "group", "sort_field"}
	fieldColumns      = []string{"collection", "field", "special", "interface", "hidden", "readonly", "required", "note", "sort"}
	relationColumns   = []string{"many_collection", "many_field", "one_collection", "one_field", "one_collection_field", "one_allowed_collections", "junction_field", "sort_field", "one_deselect_action"}
	columnColumns     = []string{"table_name", "column_name", "data_type", "nullable", "pk"}
	fkColumns         = []string{"table_name", "column_name", "ref_table", "ref_column"}
)

func TestReader_Postgres(t *testing.T) {
	require := require.New(t)
	db, mock, err := sqlmock.New()
	require.NoError(err)
	defer db.Close()

	mock.ExpectQuery(`SELECT collection, singleton, hidden, note, icon, "group", sort_field FROM directus_collections`).
		WillReturnRows(sqlmock.NewRows(collectionColumns).
			AddRow("directus_users", false, false, nil, nil, nil, nil).
			AddRow("content", false, false, nil, "folder", nil, nil).
			AddRow("pages", false, false, "Site pages", nil, "content", nil).
			AddRow("settings", true, false, nil, nil, nil, nil))
	mock.ExpectQuery(`FROM directus_fields`).
		WillReturnRows(sqlmock.NewRows(fieldColumns).
			AddRow("pages", "author", "m2o", "select-dropdown-m2o", false, false, false, nil, int64(2)).
			AddRow("pages", "blocks", "m2a", "list-m2a", false, false, false, nil, nil).
			AddRow("pages", "tags", "cast-json", "tags", false, false, false, "Free form", nil))
	mock.ExpectQuery(`FROM directus_relations`).
		WillReturnRows(sqlmock.NewRows(relationColumns).
			AddRow("pages", "author", "directus_users", nil, nil, nil, nil, nil, "nullify").
			AddRow("pages_blocks", "item", nil, nil, "collection", "headings,texts", "pages_id", nil, "nullify"))
	mock.ExpectQuery(`FROM information_schema.columns c`).
		WillReturnRows(sqlmock.NewRows(columnColumns).
			AddRow("directus_users", "id", "uuid", false, true).
			AddRow("pages", "id", "integer", false, true).
			AddRow("pages", "author", "uuid", true, false).
			AddRow("pages", "tags", "json", true, false).
			AddRow("settings", "id", "integer", false, true).
			AddRow("settings", "updated_on", "timestamp with time zone", true, false).
			AddRow("logs", "id", "bigint", false, true))
	mock.ExpectQuery(`FOREIGN KEY`).
		WillReturnRows(sqlmock.NewRows(fkColumns).
			AddRow("pages", "author", "directus_users", "id"))

	s, err := NewReader(OpenDB(dialect.Postgres, db)).Snapshot(context.Background())
	require.NoError(err)
	require.NoError(mock.ExpectationsWereMet())
	require.Equal("postgres", s.Vendor)

	names := make([]string, len(s.Collections))
	for i, c := range s.Collections {
		names[i] = c.Collection
	}
	require.Equal([]string{"content", "pages", "settings", "logs"}, names, "system tables are left out")
	require.Nil(s.Collections[0].Schema, "folder without a table")
	require.Equal("Site pages", s.Collections[1].Note())
	require.Equal("content", *s.Collections[1].Meta.Group)
	require.True(s.Collections[2].Singleton())
	require.Nil(s.Collections[3].Meta)
	require.NotNil(s.Collections[3].Schema)

	fields := make(map[string]*schema.Field)
	for _, f := range s.Fields {
		fields[f.Collection+"."+f.Field] = f
	}
	require.Len(fields, 7)
	id := fields["pages.id"]
	require.True(id.PrimaryKey())
	require.False(id.Nullable())
	require.Equal(schema.KindInteger, id.Type)
	require.Nil(id.Meta)

	author := fields["pages.author"]
	require.Equal(schema.KindUUID, author.Type)
	require.True(author.HasSpecial(schema.SpecialM2O))
	require.Equal("directus_users", *author.Schema.ForeignKeyTable)
	require.Equal("id", *author.Schema.ForeignKeyColumn)
	require.Equal(2, *author.Meta.Sort)

	blocks := fields["pages.blocks"]
	require.Equal(schema.KindAlias, blocks.Type)
	require.Nil(blocks.Schema)
	require.Equal([]string{schema.SpecialM2A}, blocks.Specials())

	require.Equal("Free form", fields["pages.tags"].Note())
	require.Equal(schema.KindTimestamp, fields["settings.updated_on"].Type)
	require.Equal(schema.KindBigInteger, fields["logs.id"].Type)

	require.Len(s.Relations, 2)
	require.Equal("directus_users", s.Relations[0].Related())
	require.Equal("directus_users", s.Relations[0].Schema.ForeignKeyTable)
	require.Empty(s.Relations[1].Related())
	require.Nil(s.Relations[1].Schema)
	require.Equal([]string{"headings", "texts"}, s.Relations[1].AllowedCollections())
	require.Equal("pages_id", s.Relations[1].JunctionField())
	require.Equal("collection", *s.Relations[1].Meta.OneCollectionField)
}

func TestReader_SystemCollectionFields(t *testing.T) {
	require := require.New(t)
	db, mock, err := sqlmock.New()
	require.NoError(err)
	defer db.Close()

	mock.ExpectQuery(`FROM directus_collections`).
		WillReturnRows(sqlmock.NewRows(collectionColumns).
			AddRow("companies", false, false, nil, nil, nil, nil))
	mock.ExpectQuery(`FROM directus_fields`).
		WillReturnRows(sqlmock.NewRows(fieldColumns).
			AddRow("directus_users", "phone", nil, "input", false, false, false, nil, nil).
			AddRow("directus_users", "company", "m2o", "select-dropdown-m2o", false, false, false, nil, nil))
	mock.ExpectQuery(`FROM directus_relations`).
		WillReturnRows(sqlmock.NewRows(relationColumns).
			AddRow("directus_users", "company", "companies", nil, nil, nil, nil, nil, "nullify"))
	mock.ExpectQuery(`FROM information_schema.columns c`).
		WillReturnRows(sqlmock.NewRows(columnColumns).
			AddRow("companies", "id", "integer", false, true).
			AddRow("directus_users", "id", "uuid", false, true).
			AddRow("directus_users", "email", "character varying", true, false).
			AddRow("directus_users", "phone", "character varying", true, false).
			AddRow("directus_users", "company", "integer", true, false))
	mock.ExpectQuery(`FOREIGN KEY`).
		WillReturnRows(sqlmock.NewRows(fkColumns).
			AddRow("directus_users", "company", "companies", "id"))

	s, err := NewReader(OpenDB(dialect.Postgres, db)).Snapshot(context.Background())
	require.NoError(err)
	require.NoError(mock.ExpectationsWereMet())

	require.Len(s.Collections, 1)
	require.Equal("companies", s.Collections[0].Collection)
	require.Len(s.Fields, 3, "only fields with a field row are read from system tables")
	phone, company := s.Fields[1], s.Fields[2]
	require.Equal("directus_users.phone", phone.Collection+"."+phone.Field)
	require.Equal(schema.KindString, phone.Type)
	require.Equal(schema.KindInteger, company.Type)
	require.True(company.HasSpecial(schema.SpecialM2O))
	require.Equal("companies", *company.Schema.ForeignKeyTable)
	require.Len(s.Relations, 1)

	out := string(gen.NewGraph(nil, s).Gen())
	require.Contains(out, "export interface DirectusUser {\n  id: string;\n  phone?: string;\n  company?: number | Company;\n}\n")
	require.NotContains(out, "email")
}

func TestReader_MySQL(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("USE shop").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT collection, singleton, hidden, note, icon, `group`, sort_field FROM directus_collections").
		WillReturnRows(sqlmock.NewRows(collectionColumns).AddRow("orders", int64(0), int64(0), nil, nil, nil, nil))
	mock.ExpectQuery(`FROM directus_fields`).WillReturnRows(sqlmock.NewRows(fieldColumns))
	mock.ExpectQuery(`FROM directus_relations`).WillReturnRows(sqlmock.NewRows(relationColumns))
	mock.ExpectQuery(`column_key = 'PRI'`).
		WillReturnRows(sqlmock.NewRows(columnColumns).
			AddRow("orders", "id", "int", int64(0), int64(1)).
			AddRow("orders", "paid", "tinyint", int64(1), int64(0)))
	mock.ExpectQuery(`referenced_table_name IS NOT NULL`).WillReturnRows(sqlmock.NewRows(fkColumns))

	r := NewReader(OpenDB(dialect.MySQL, db))
	r.Schema = "shop"
	s, err := r.Snapshot(context.Background())
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
	require.Len(t, s.Fields, 2)
	assert.True(t, s.Fields[0].PrimaryKey())
	assert.False(t, s.Fields[0].Nullable())
	assert.True(t, s.Fields[1].Nullable())
	assert.Equal(t, schema.KindInteger, s.Fields[1].Type)
}

func TestReader_Errors(t *testing.T) {
	t.Run("query", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		mock.ExpectQuery(`FROM directus_collections`).
			WillReturnRows(sqlmock.NewRows(collectionColumns))
		cause := errors.New(`relation "directus_fields" does not exist`)
		mock.ExpectQuery(`FROM directus_fields`).WillReturnError(cause)

		_, err = NewReader(OpenDB(dialect.Postgres, db)).Snapshot(context.Background())
		require.ErrorIs(t, err, cause)
		var serr *gen.SourceError
		require.ErrorAs(t, err, &serr)
		assert.Equal(t, "sql", serr.Source)
		assert.Equal(t, "postgres", serr.Target)
		assert.Equal(t, "read fields", serr.Message)
	})

	t.Run("dialect", func(t *testing.T) {
		db, _, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		_, err = NewReader(OpenDB("mssql", db)).Snapshot(context.Background())
		assert.True(t, gen.IsSourceError(err))
		assert.ErrorContains(t, err, "unsupported dialect")
	})

	t.Run("canceled", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err = NewReader(OpenDB(dialect.Postgres, db)).Snapshot(ctx)
		require.ErrorIs(t, err, context.Canceled)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"integer", schema.KindInteger},
		{"INTEGER", schema.KindInteger},
		{"int unsigned", schema.KindInteger},
		{"bigint", schema.KindBigInteger},
		{"character varying", schema.KindString},
		{"VARCHAR(255)", schema.KindString},
		{"CHAR(36)", schema.KindString},
		{"text", schema.KindText},
		{"uuid", schema.KindUUID},
		{"boolean", schema.KindBoolean},
		{"numeric(10,2)", schema.KindDecimal},
		{"double precision", schema.KindFloat},
		{"jsonb", schema.KindJSON},
		{"date", schema.KindDate},
		{"time without time zone", schema.KindTime},
		{"timestamp without time zone", schema.KindDateTime},
		{"DATETIME", schema.KindDateTime},
		{"timestamp with time zone", schema.KindTimestamp},
		{"bytea", schema.KindBinary},
		{"point", schema.KindGeometry},
		{"UNSIGNED BIG INT", schema.KindInteger},
		{"NVARCHAR2", schema.KindString},
		{"USER-DEFINED", schema.KindUnknown},
		{"", schema.KindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, kindOf(tt.in))
		})
	}
}

// sqliteSchema creates the platform's system tables and a small blog.
const sqliteSchema = `
CREATE TABLE directus_collections (
  collection VARCHAR(64) PRIMARY KEY NOT NULL,
  singleton BOOLEAN NOT NULL DEFAULT 0,
  hidden BOOLEAN NOT NULL DEFAULT 0,
  note TEXT,
  icon VARCHAR(30),
  "group" VARCHAR(64),
  sort_field VARCHAR(64)
);
CREATE TABLE directus_fields (
  id INTEGER PRIMARY KEY,
  collection VARCHAR(64) NOT NULL,
  field VARCHAR(64) NOT NULL,
  special VARCHAR(64),
  interface VARCHAR(64),
  hidden BOOLEAN NOT NULL DEFAULT 0,
  readonly BOOLEAN NOT NULL DEFAULT 0,
  required BOOLEAN DEFAULT 0,
  note TEXT,
  sort INTEGER
);
CREATE TABLE directus_relations (
  id INTEGER PRIMARY KEY,
  many_collection VARCHAR(64) NOT NULL,
  many_field VARCHAR(64) NOT NULL,
  one_collection VARCHAR(64),
  one_field VARCHAR(64),
  one_collection_field VARCHAR(64),
  one_allowed_collections TEXT,
  junction_field VARCHAR(64),
  sort_field VARCHAR(64),
  one_deselect_action VARCHAR(255) NOT NULL DEFAULT 'nullify'
);
CREATE TABLE articles (id INTEGER PRIMARY KEY, title VARCHAR(255));
CREATE TABLE tags (id CHAR(36) PRIMARY KEY NOT NULL, name TEXT NOT NULL);
CREATE TABLE articles_tags (
  id INTEGER PRIMARY KEY,
  article_id INTEGER REFERENCES articles(id),
  tag_id CHAR(36) REFERENCES tags(id)
);
INSERT INTO directus_collections (collection, hidden) VALUES ('articles', 0), ('tags', 0), ('articles_tags', 1);
INSERT INTO directus_collections (collection, icon) VALUES ('blog', 'folder');
INSERT INTO directus_fields (collection, field, special, interface, note) VALUES
  ('articles', 'title', NULL, 'input', 'Headline'),
  ('articles', 'tags', 'm2m', 'list-m2m', NULL);
INSERT INTO directus_relations (many_collection, many_field, one_collection, one_field, junction_field) VALUES
  ('articles_tags', 'article_id', 'articles', 'tags', 'tag_id'),
  ('articles_tags', 'tag_id', 'tags', NULL, 'article_id');
`

func TestReader_SQLite(t *testing.T) {
	require := require.New(t)
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "app.db"))
	require.NoError(err)
	defer db.Close()
	_, err = db.Exec(sqliteSchema)
	require.NoError(err)

	drv := OpenDB(dialect.SQLite, db)
	s, err := NewReader(drv).Snapshot(context.Background())
	require.NoError(err)
	require.Len(s.Collections, 4)
	require.Len(s.Fields, 8)
	require.Len(s.Relations, 2)
	require.Equal(int64(5), drv.QueryStats().Stats().TotalQueries)

	g := gen.NewGraph(nil, s)
	for _, name := range []string{"articles", "tags", "articles_tags", "blog"} {
		_, ok := g.Entity(name)
		require.True(ok, name)
	}
	out := string(g.Gen())
	require.Contains(out, "export interface Article {\n  id: number;\n  title?: string;\n  tags?: string[] | Tag[];\n}\n")
	require.Contains(out, "export interface Tag {\n  id: string;\n  name: string;\n}\n")
	require.Contains(out, "export interface ArticlesTag {\n  id: number;\n  article_id?: number | Article;\n  tag_id?: string | Tag;\n}\n")
}
