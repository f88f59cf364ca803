package main

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"github.com/campuslabs/softreq/modules/requests"
	"github.com/campuslabs/softreq/pkg/application"
	"github.com/campuslabs/softreq/pkg/configuration"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply, roll back or inspect schema migrations",
	}
	cmd.AddCommand(
		newMigrateActionCmd("up", "Apply pending migrations", func(ctx context.Context, m application.MigrationManager, _ *cobra.Command) error {
			return m.Up(ctx)
		}),
		newMigrateActionCmd("down", "Roll back every applied migration", func(ctx context.Context, m application.MigrationManager, _ *cobra.Command) error {
			return m.Down(ctx)
		}),
		newMigrateActionCmd("status", "Show migration status", func(ctx context.Context, m application.MigrationManager, cmd *cobra.Command) error {
			statuses, err := m.Status(ctx)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), statuses)
		}),
	)
	return cmd
}

type migrateAction func(ctx context.Context, m application.MigrationManager, cmd *cobra.Command) error

func newMigrateActionCmd(use, short string, action migrateAction) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf, err := configuration.Load([]string{".env", ".env.local"})
			if err != nil {
				return err
			}
			defer conf.Unload()
			if conf.UsesMemoryStore() {
				return fmt.Errorf("migrate: STORE_DRIVER=%s has no schema", conf.StoreDriver)
			}

			db, err := sql.Open("postgres", conf.Database.Opts)
			if err != nil {
				return err
			}
			defer db.Close()

			manager, err := newMigrationManager(db, conf)
			if err != nil {
				return err
			}
			return action(cmd.Context(), manager, cmd)
		},
	}
}

func newMigrationManager(db *sql.DB, conf *configuration.Configuration) (application.MigrationManager, error) {
	schema, err := requests.Schema()
	if err != nil {
		return nil, err
	}
	manager := application.NewMigrationManager(db, conf.Logger())
	manager.RegisterSchema("requests", schema)
	return manager, nil
}
