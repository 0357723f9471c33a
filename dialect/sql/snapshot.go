package sql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/syssam/veloxts/compiler/gen"
	"github.com/syssam/veloxts/dialect"
	"github.com/syssam/veloxts/schema"
)

// catalogQueries holds the column and foreign key queries of a dialect.
// Column rows are (table, column, data type, nullable, primary key);
// foreign key rows are (table, column, referenced table, referenced column).
var catalogQueries = map[string]struct{ columns, foreignKeys string }{
	dialect.Postgres: {
		columns: `SELECT c.table_name, c.column_name, c.data_type, c.is_nullable = 'YES',
  EXISTS (
    SELECT 1 FROM information_schema.table_constraints tc
    JOIN information_schema.key_column_usage k
      ON k.constraint_name = tc.constraint_name AND k.table_schema = tc.table_schema
    WHERE tc.constraint_type = 'PRIMARY KEY' AND tc.table_schema = c.table_schema
      AND tc.table_name = c.table_name AND k.column_name = c.column_name
  )
FROM information_schema.columns c
WHERE c.table_schema = current_schema()
ORDER BY c.table_name, c.ordinal_position`,
		foreignKeys: `SELECT k.table_name, k.column_name, u.table_name, u.column_name
FROM information_schema.table_constraints tc
JOIN information_schema.key_column_usage k
  ON k.constraint_name = tc.constraint_name AND k.table_schema = tc.table_schema
JOIN information_schema.constraint_column_usage u
  ON u.constraint_name = tc.constraint_name AND u.table_schema = tc.table_schema
WHERE tc.constraint_type = 'FOREIGN KEY' AND tc.table_schema = current_schema()
ORDER BY k.table_name, k.column_name`,
	},
	dialect.MySQL: {
		columns: `SELECT table_name, column_name, data_type, is_nullable = 'YES', column_key = 'PRI'
FROM information_schema.columns
WHERE table_schema = DATABASE()
ORDER BY table_name, ordinal_position`,
		foreignKeys: `SELECT table_name, column_name, referenced_table_name, referenced_column_name
FROM information_schema.key_column_usage
WHERE table_schema = DATABASE() AND referenced_table_name IS NOT NULL
ORDER BY table_name, column_name`,
	},
	dialect.SQLite: {
		columns: `SELECT m.name, p.name, p.type, p."notnull" = 0 AND p.pk = 0, p.pk > 0
FROM sqlite_master m JOIN pragma_table_info(m.name) p
WHERE m.type = 'table' AND m.name NOT LIKE 'sqlite_%'
ORDER BY m.name, p.cid`,
		foreignKeys: `SELECT m.name, f."from", f."table", f."to"
FROM sqlite_master m JOIN pragma_foreign_key_list(m.name) f
WHERE m.type = 'table'
ORDER BY m.name, f."from"`,
	},
}

// Reader reads a schema snapshot from the platform's system tables
// (directus_collections, directus_fields, directus_relations) and the
// database catalog.
type Reader struct {
	drv *Driver
	// Schema selects the postgres schema or mysql database to read.
	// Empty reads the connection default.
	Schema string
}

// NewReader returns a snapshot reader over the driver.
func NewReader(drv *Driver) *Reader {
	return &Reader{drv: drv}
}

// String returns the dialect of the underlying database.
func (r *Reader) String() string {
	return r.drv.Dialect()
}

// Snapshot reads the snapshot over a single connection. System
// collections are left out, except for the fields and relations users
// added to them; their shape comes from the catalog.
func (r *Reader) Snapshot(ctx context.Context) (*schema.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	queries, ok := catalogQueries[r.drv.Dialect()]
	if !ok {
		return nil, gen.NewSourceError("sql", r.String(), "unsupported dialect", nil)
	}
	conn, err := r.drv.Conn(ctx, r.Schema)
	if err != nil {
		return nil, gen.NewSourceError("sql", r.String(), "connect", err)
	}
	defer conn.Close()

	c := &catalog{fks: make(map[string]foreignKey)}
	steps := []struct {
		name string
		read func(context.Context, ExecQuerier) error
	}{
		{"read collections", c.readCollections(r.drv)},
		{"read fields", c.readFields(r.drv)},
		{"read relations", c.readRelations(r.drv)},
		{"read columns", c.readColumns(r.drv, queries.columns)},
		{"read foreign keys", c.readForeignKeys(r.drv, queries.foreignKeys)},
	}
	for _, s := range steps {
		if err := s.read(ctx, conn); err != nil {
			return nil, gen.NewSourceError("sql", r.String(), s.name, err)
		}
	}
	return c.snapshot(r.drv.Dialect()), nil
}

type (
	collectionRow struct {
		name string
		meta *schema.CollectionMeta
	}
	fieldRow struct {
		collection, field string
		meta              *schema.FieldMeta
	}
	columnRow struct {
		table, name, dataType string
		nullable, pk          bool
	}
	foreignKey struct {
		table, column, refTable, refColumn string
	}
)

// catalog collects the rows of one read.
type catalog struct {
	collections []collectionRow
	fields      []fieldRow
	relations   []*schema.Relation
	columns     []columnRow
	fks         map[string]foreignKey
}

func (c *catalog) readCollections(drv *Driver) func(context.Context, ExecQuerier) error {
	query := fmt.Sprintf("SELECT collection, singleton, hidden, note, icon, %s, sort_field FROM directus_collections ORDER BY collection", drv.quote("group"))
	return func(ctx context.Context, ex ExecQuerier) error {
		return drv.Query(ctx, ex, query, func(s ColumnScanner) error {
			var (
				row                          collectionRow
				singleton, hidden            sql.NullBool
				note, icon, group, sortField sql.NullString
			)
			if err := s.Scan(&row.name, &singleton, &hidden, &note, &icon, &group, &sortField); err != nil {
				return err
			}
			row.meta = &schema.CollectionMeta{
				Collection: row.name,
				Singleton:  singleton.Bool,
				Hidden:     hidden.Bool,
				Note:       ref(note),
				Icon:       ref(icon),
				Group:      ref(group),
				SortField:  ref(sortField),
			}
			c.collections = append(c.collections, row)
			return nil
		})
	}
}

func (c *catalog) readFields(drv *Driver) func(context.Context, ExecQuerier) error {
	const query = "SELECT collection, field, special, interface, hidden, readonly, required, note, sort FROM directus_fields ORDER BY collection, id"
	return func(ctx context.Context, ex ExecQuerier) error {
		return drv.Query(ctx, ex, query, func(s ColumnScanner) error {
			var (
				row                        fieldRow
				special, iface, note       sql.NullString
				hidden, readonly, required sql.NullBool
				sort                       sql.NullInt64
			)
			if err := s.Scan(&row.collection, &row.field, &special, &iface, &hidden, &readonly, &required, &note, &sort); err != nil {
				return err
			}
			row.meta = &schema.FieldMeta{
				Special:   schema.SplitCSV(special.String),
				Interface: ref(iface),
				Hidden:    hidden.Bool,
				Readonly:  readonly.Bool,
				Required:  required.Bool,
				Note:      ref(note),
			}
			if sort.Valid {
				n := int(sort.Int64)
				row.meta.Sort = &n
			}
			c.fields = append(c.fields, row)
			return nil
		})
	}
}

func (c *catalog) readRelations(drv *Driver) func(context.Context, ExecQuerier) error {
	const query = "SELECT many_collection, many_field, one_collection, one_field, one_collection_field, one_allowed_collections, junction_field, sort_field, one_deselect_action FROM directus_relations ORDER BY id"
	return func(ctx context.Context, ex ExecQuerier) error {
		return drv.Query(ctx, ex, query, func(s ColumnScanner) error {
			var (
				meta                                     schema.RelationMeta
				oneColl, oneField, oneCollField, allowed sql.NullString
				junction, sortField, deselect            sql.NullString
			)
			if err := s.Scan(&meta.ManyCollection, &meta.ManyField, &oneColl, &oneField, &oneCollField, &allowed, &junction, &sortField, &deselect); err != nil {
				return err
			}
			meta.OneCollection = ref(oneColl)
			meta.OneField = ref(oneField)
			meta.OneCollectionField = ref(oneCollField)
			meta.OneAllowedCollections = schema.SplitCSV(allowed.String)
			meta.JunctionField = ref(junction)
			meta.SortField = ref(sortField)
			meta.OneDeselectAction = deselect.String
			c.relations = append(c.relations, &schema.Relation{
				Collection:        meta.ManyCollection,
				Field:             meta.ManyField,
				RelatedCollection: ref(oneColl),
				Meta:              &meta,
			})
			return nil
		})
	}
}

func (c *catalog) readColumns(drv *Driver, query string) func(context.Context, ExecQuerier) error {
	return func(ctx context.Context, ex ExecQuerier) error {
		return drv.Query(ctx, ex, query, func(s ColumnScanner) error {
			var row columnRow
			if err := s.Scan(&row.table, &row.name, &row.dataType, &row.nullable, &row.pk); err != nil {
				return err
			}
			c.columns = append(c.columns, row)
			return nil
		})
	}
}

func (c *catalog) readForeignKeys(drv *Driver, query string) func(context.Context, ExecQuerier) error {
	return func(ctx context.Context, ex ExecQuerier) error {
		return drv.Query(ctx, ex, query, func(s ColumnScanner) error {
			var (
				fk        foreignKey
				refColumn sql.NullString
			)
			if err := s.Scan(&fk.table, &fk.column, &fk.refTable, &refColumn); err != nil {
				return err
			}
			fk.refColumn = refColumn.String
			c.fks[key(fk.table, fk.column)] = fk
			return nil
		})
	}
}

// snapshot assembles the rows. Collections come in the order of the
// collections table, followed by tables without metadata. Fields of a
// collection are its columns in table order, followed by the fields
// without a column, which are aliases. System tables are read only for
// the fields users added to them, which are the ones with a field row.
func (c *catalog) snapshot(vendor string) *schema.Snapshot {
	s := &schema.Snapshot{
		Version:     1,
		Vendor:      vendor,
		Collections: []*schema.Collection{},
		Fields:      []*schema.Field{},
		Relations:   []*schema.Relation{},
	}
	var (
		metas   = make(map[string]*schema.FieldMeta)
		byColl  = make(map[string][]fieldRow)
		columns = make(map[string]bool)
	)
	var system []string
	for _, f := range c.fields {
		if _, ok := byColl[f.collection]; !ok && schema.IsSystem(f.collection) {
			system = append(system, f.collection)
		}
		metas[key(f.collection, f.field)] = f.meta
		byColl[f.collection] = append(byColl[f.collection], f)
	}

	tables := make(map[string][]columnRow)
	var ordered []string
	for _, col := range c.columns {
		if schema.IsSystem(col.table) {
			if _, ok := metas[key(col.table, col.name)]; !ok {
				continue
			}
		} else if _, ok := tables[col.table]; !ok {
			ordered = append(ordered, col.table)
		}
		tables[col.table] = append(tables[col.table], col)
	}
	seen := make(map[string]bool)
	add := func(name string, meta *schema.CollectionMeta) {
		seen[name] = true
		coll := &schema.Collection{Collection: name, Meta: meta}
		if _, ok := tables[name]; ok {
			coll.Schema = &schema.CollectionSchema{Name: name}
		}
		s.Collections = append(s.Collections, coll)
	}
	for _, row := range c.collections {
		if !schema.IsSystem(row.name) && !seen[row.name] {
			add(row.name, row.meta)
		}
	}
	for _, name := range ordered {
		if !seen[name] {
			add(name, nil)
		}
	}

	names := make([]string, 0, len(s.Collections)+len(system))
	for _, coll := range s.Collections {
		names = append(names, coll.Collection)
	}
	for _, name := range append(names, system...) {
		for _, col := range tables[name] {
			k := key(name, col.name)
			columns[k] = true
			f := &schema.Field{
				Collection: name,
				Field:      col.name,
				Type:       kindOf(col.dataType),
				Meta:       metas[k],
				Schema: &schema.FieldSchema{
					Name:         col.name,
					Table:        name,
					DataType:     col.dataType,
					IsNullable:   col.nullable,
					IsPrimaryKey: col.pk,
				},
			}
			if fk, ok := c.fks[k]; ok {
				f.Schema.ForeignKeyTable = schema.Ref(fk.refTable)
				f.Schema.ForeignKeyColumn = ref(sql.NullString{String: fk.refColumn, Valid: fk.refColumn != ""})
			}
			s.Fields = append(s.Fields, f)
		}
		for _, f := range byColl[name] {
			if !columns[key(name, f.field)] {
				s.Fields = append(s.Fields, &schema.Field{
					Collection: name,
					Field:      f.field,
					Type:       schema.KindAlias,
					Meta:       f.meta,
				})
			}
		}
	}
	for _, r := range c.relations {
		if fk, ok := c.fks[key(r.Collection, r.Field)]; ok {
			r.Schema = &schema.RelationSchema{
				Table:            fk.table,
				Column:           fk.column,
				ForeignKeyTable:  fk.refTable,
				ForeignKeyColumn: fk.refColumn,
			}
		}
		s.Relations = append(s.Relations, r)
	}
	return s
}

// kindOf maps a database data type to a field kind.
func kindOf(dataType string) string {
	t := strings.ToLower(strings.TrimSpace(dataType))
	if i := strings.IndexByte(t, '('); i >= 0 {
		t = strings.TrimSpace(t[:i])
	}
	t = strings.TrimSuffix(t, " unsigned")
	switch t {
	case "bigint", "int8", "bigserial":
		return schema.KindBigInteger
	case "int", "integer", "int4", "int2", "smallint", "mediumint", "tinyint", "serial", "smallserial":
		return schema.KindInteger
	case "bool", "boolean", "bit":
		return schema.KindBoolean
	case "real", "float", "float4", "float8", "double", "double precision":
		return schema.KindFloat
	case "decimal", "numeric":
		return schema.KindDecimal
	case "uuid":
		return schema.KindUUID
	case "text", "tinytext", "mediumtext", "longtext", "clob":
		return schema.KindText
	case "char", "character", "varchar", "character varying", "nchar", "nvarchar", "enum", "set":
		return schema.KindString
	case "json", "jsonb":
		return schema.KindJSON
	case "date":
		return schema.KindDate
	case "time", "time without time zone", "time with time zone":
		return schema.KindTime
	case "datetime", "timestamp without time zone":
		return schema.KindDateTime
	case "timestamp", "timestamptz", "timestamp with time zone":
		return schema.KindTimestamp
	case "bytea", "blob", "binary", "varbinary", "tinyblob", "mediumblob", "longblob":
		return schema.KindBinary
	case "geometry", "point", "linestring", "polygon", "multipoint", "multilinestring", "multipolygon", "geometrycollection":
		return schema.KindGeometry
	}
	switch {
	case strings.Contains(t, "int"):
		return schema.KindInteger
	case strings.Contains(t, "char"), strings.Contains(t, "clob"):
		return schema.KindString
	}
	return schema.KindUnknown
}

func key(table, column string) string {
	return table + "." + column
}

func ref(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}
