package system

import (
	"database/sql"
	"fmt"

	"github.com/DarkZangetsu/medcare/internal/cli"
	"github.com/DarkZangetsu/medcare/internal/migration"
)

// database is implemented by the SQL backed stores.
type database interface {
	GetDB() *sql.DB
	Runner() (*migration.Runner, error)
}

func runnerFor(ctx *cli.Context) (*migration.Runner, error) {
	db, ok := ctx.Store.(database)
	if !ok {
		return nil, fmt.Errorf("storage backend does not support migrations")
	}
	if db.GetDB() == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return db.Runner()
}

type MigrateCmd struct{}

func (c *MigrateCmd) Run(ctx *cli.Context) error {
	runner, err := runnerFor(ctx)
	if err != nil {
		return err
	}

	count, err := runner.ApplyMigrations(func(msg string) {
		fmt.Println(msg)
	})
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	if count == 0 {
		fmt.Println("No migrations to apply. Database is up to date.")
	} else {
		fmt.Printf("\nSuccessfully applied %d migration(s).\n", count)
	}
	return nil
}
