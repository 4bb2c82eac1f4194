package main

import (
	"fmt"

	"github.com/cmlabs-hris/office-backend-go/internal/config"
	"github.com/cmlabs-hris/office-backend-go/internal/repository/postgresql"
	"github.com/cmlabs-hris/office-backend-go/migrations"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the embedded SQL schema to PostgreSQL",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.Database.Driver != config.StoreDriverPostgres {
				return fmt.Errorf("migrate requires STORE_DRIVER=%s", config.StoreDriverPostgres)
			}

			all, err := migrations.All()
			if err != nil {
				return fmt.Errorf("failed to read migrations: %w", err)
			}

			db, err := openDB(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			applied, err := postgresql.Migrate(cmd.Context(), db, all)
			if err != nil {
				return err
			}

			if len(applied) == 0 {
				log.Info("schema is up to date")
				return nil
			}
			for _, name := range applied {
				log.Info("migration applied", "name", name)
			}
			return nil
		},
	}
}
