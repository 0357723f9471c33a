// Package dialect names the databases a schema snapshot can be read from.
//
// # Supported Dialects
//
//   - Postgres: PostgreSQL database
//   - MySQL: MySQL/MariaDB database
//   - SQLite: SQLite database
//
// Each dialect is identified by a constant string:
//
//	dialect.Postgres = "postgres"
//	dialect.MySQL    = "mysql"
//	dialect.SQLite   = "sqlite"
//
// # Usage
//
// Reading a snapshot from a live database:
//
//	import (
//	    "github.com/syssam/veloxts/dialect"
//	    "github.com/syssam/veloxts/dialect/sql"
//	)
//
//	drv, err := sql.Open(dialect.Postgres, "postgres://...")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer drv.Close()
//	snap, err := sql.NewReader(drv).Snapshot(ctx)
//
// # Sub-packages
//
//   - dialect/sql: snapshot reader over the platform's system tables
//   - dialect/rest: snapshot reader over the platform's REST API
package dialect
