package migrations

import (
	_ "embed"

	"github.com/dework-labs/marketsync/internal/db"
)

//go:embed 001_indexer_state.sql
var mig001 string

//go:embed 002_entities.sql
var mig002 string

//go:embed 003_details.sql
var mig003 string

// RunMigrations runs all schema migrations against the database at dbPath.
func RunMigrations(dbPath string) error {
	migrations := []db.Migration{
		{
			ID:  "001_indexer_state.sql",
			SQL: mig001,
		},
		{
			ID:  "002_entities.sql",
			SQL: mig002,
		},
		{
			ID:  "003_details.sql",
			SQL: mig003,
		},
	}

	return db.RunMigrations(dbPath, migrations)
}
