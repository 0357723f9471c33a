// Package sql reads schema snapshots from a live database.
//
// The platform keeps its metadata in system tables next to the user
// tables. A Reader joins that metadata with the database catalog (column
// types, nullability, primary and foreign keys) into a snapshot that can
// be fed to the generator.
//
// # Dialect Support
//
// PostgreSQL, MySQL and SQLite are supported. The database driver must be
// registered by the caller:
//
//	import (
//	    _ "github.com/lib/pq"
//
//	    "github.com/syssam/veloxts/dialect"
//	    "github.com/syssam/veloxts/dialect/sql"
//	)
//
//	drv, err := sql.Open(dialect.Postgres, dsn, sql.WithSlowThreshold(time.Second))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer drv.Close()
//	r := sql.NewReader(drv)
//	r.Schema = "tenant"
//	snap, err := r.Snapshot(ctx)
//
// # Statistics
//
// Every query run through a Driver is counted:
//
//	fmt.Println(drv.QueryStats().Stats())
//	// queries=5 duration=12ms avg=2.4ms slow=0 errors=0
package sql
