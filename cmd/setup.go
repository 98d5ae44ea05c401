package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/loopauth/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupConfig writes the example configuration to --config.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("config")
	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}

	r.logger.Info("config created", "path", path)
	return r.writePlain("✓ Config written to %s\n", path)
}

// SetupDatabase creates the attempt journal and applies migrations, or rolls the latest one back with --rollback.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd.String("config"))
	if err != nil {
		return err
	}

	db, err := r.openJournal(config, cmd)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	path := config.Database.Path
	if override := cmd.String("db"); override != "" {
		path = override
	}

	if cmd.Bool("rollback") {
		if err := shared.RollbackMigration(db); err != nil {
			return err
		}
		r.logger.Info("migration rolled back", "path", path)
		return r.writePlain("✓ Rolled back the latest migration in %s\n", path)
	}
	return r.writePlain("✓ Database ready at %s\n", path)
}
