package system

import (
	"fmt"

	"github.com/julianstephens/habitquest/internal/cli"
	"github.com/julianstephens/habitquest/internal/storage"
)

type MigrateCmd struct {
	Status bool `help:"Only report the schema version."`
}

func (c *MigrateCmd) Run(ctx *cli.Context) error {
	migrator, ok := ctx.Store.(storage.Migrator)
	if !ok {
		return fmt.Errorf("storage backend does not support migrations")
	}

	if c.Status {
		status, err := migrator.MigrationStatus()
		if err != nil {
			return err
		}
		ctx.Printf("Schema version: %d (latest %d)\n", status.Current, status.Latest)
		if !status.UpToDate() {
			ctx.Printf("%d migration(s) pending.\n", len(status.Pending))
		}
		return nil
	}

	count, err := migrator.Migrate(func(msg string) {
		ctx.Println(msg)
	})
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	if count == 0 {
		ctx.Println("No migrations to apply. Database is up to date.")
	} else {
		ctx.Printf("\nSuccessfully applied %d migration(s).\n", count)
	}
	return nil
}
