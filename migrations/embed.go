// Package migrations embeds SQL migration files into the binary.
//
// Migrations run without the SQL files being present on disk; they are
// compiled into the executable and registered with the database package.
package migrations

import (
	"embed"

	"github.com/nerrad567/gadget-registry/internal/infrastructure/database"
)

//go:embed *.sql
var migrationsFS embed.FS

func init() {
	database.MigrationsFS = migrationsFS
	database.MigrationsDir = "."
}
