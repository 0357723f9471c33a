package sql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/syssam/veloxts/dialect"
)

// validIdentifierRe validates SQL identifiers (alphanumeric, underscores, dots for schema.name)
var validIdentifierRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_.]*$`)

// isValidIdentifier checks if the string is a valid SQL identifier.
func isValidIdentifier(s string) bool {
	return s != "" && len(s) <= 128 && validIdentifierRe.MatchString(s)
}

// Driver wraps a database handle with its dialect. Queries run through a
// Driver are counted in its statistics.
type Driver struct {
	db            *sql.DB
	dialect       string
	stats         QueryStats
	slowThreshold time.Duration
	log           *zap.Logger
}

// Option configures a Driver.
type Option func(*Driver)

// WithSlowThreshold sets the threshold for slow query detection.
// Default is 100ms.
func WithSlowThreshold(d time.Duration) Option {
	return func(drv *Driver) {
		drv.slowThreshold = d
	}
}

// WithLogger sets the logger that receives slow query warnings and a
// debug line per query.
func WithLogger(log *zap.Logger) Option {
	return func(drv *Driver) {
		if log != nil {
			drv.log = log
		}
	}
}

// Open wraps the database/sql.Open method. The driver name doubles as the
// dialect name; the database driver itself must be registered by the
// caller, e.g. with a blank import of lib/pq.
func Open(driverName, source string, opts ...Option) (*Driver, error) {
	db, err := sql.Open(driverName, source)
	if err != nil {
		return nil, err
	}
	return OpenDB(driverName, db, opts...), nil
}

// OpenDB wraps the given database/sql.DB with a Driver.
func OpenDB(driverName string, db *sql.DB, opts ...Option) *Driver {
	d := &Driver{
		db:            db,
		dialect:       driverName,
		slowThreshold: 100 * time.Millisecond,
		log:           zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DB returns the underlying *sql.DB instance.
func (d *Driver) DB() *sql.DB {
	return d.db
}

// Dialect returns the dialect of the driver.
func (d *Driver) Dialect() string {
	return dialect.Normalize(d.dialect)
}

// Close closes the underlying connection.
func (d *Driver) Close() error { return d.db.Close() }

// QueryStats returns the statistics of the queries run so far.
func (d *Driver) QueryStats() *QueryStats {
	return &d.stats
}

// ExecQuerier wraps the standard Exec and Query methods.
type ExecQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// ColumnScanner is the interface that wraps the scan method of sql.Rows.
type ColumnScanner interface {
	Scan(dest ...any) error
}

// Query runs the query on ex and calls scan once per row.
func (d *Driver) Query(ctx context.Context, ex ExecQuerier, query string, scan func(ColumnScanner) error, args ...any) (rerr error) {
	start := time.Now()
	defer func() { d.record(query, start, rerr) }()
	rows, err := ex.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("dialect/sql: query: %w", err)
	}
	defer func() { rerr = errors.Join(rerr, rows.Close()) }()
	for rows.Next() {
		if err := scan(rows); err != nil {
			return fmt.Errorf("dialect/sql: scan: %w", err)
		}
	}
	return rows.Err()
}

// Conn returns a single connection with the search path set to the
// given schema. An empty schema keeps the connection default.
func (d *Driver) Conn(ctx context.Context, schema string) (*sql.Conn, error) {
	conn, err := d.db.Conn(ctx)
	if err != nil {
		return nil, err
	}
	if schema == "" {
		return conn, nil
	}
	if !isValidIdentifier(schema) {
		return nil, errors.Join(fmt.Errorf("invalid schema name: %q", schema), conn.Close())
	}
	var stmt string
	switch d.Dialect() {
	case dialect.Postgres:
		stmt = fmt.Sprintf("SET search_path TO %s", schema)
	case dialect.MySQL:
		stmt = fmt.Sprintf("USE %s", schema)
	default:
		return nil, errors.Join(fmt.Errorf("dialect %s does not support schema selection", d.Dialect()), conn.Close())
	}
	if _, err := conn.ExecContext(ctx, stmt); err != nil {
		return nil, errors.Join(err, conn.Close())
	}
	return conn, nil
}

// quote quotes an identifier for the driver's dialect.
func (d *Driver) quote(ident string) string {
	if d.Dialect() == dialect.MySQL {
		return "`" + strings.ReplaceAll(ident, "`", "``") + "`"
	}
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}
