package dialect

import "strings"

// Dialect names for external usage.
const (
	MySQL    = "mysql"
	SQLite   = "sqlite"
	Postgres = "postgres"
)

// Normalize returns the dialect of a database driver name. Wrapped or
// versioned driver names like "sqlite3" or "postgres-traced" map to the
// dialect they start with; unknown names are returned as is.
func Normalize(name string) string {
	for _, d := range []string{MySQL, SQLite, Postgres} {
		if strings.HasPrefix(name, d) {
			return d
		}
	}
	if name == "pgx" {
		return Postgres
	}
	return name
}

// Supported reports if the dialect has a schema reader.
func Supported(name string) bool {
	switch Normalize(name) {
	case MySQL, SQLite, Postgres:
		return true
	}
	return false
}
