package main

import (
	"github.com/spf13/cobra"

	"github.com/newosoal21-pixel/mceremony-reservation/internal/config"
	"github.com/newosoal21-pixel/mceremony-reservation/internal/db"
)

func newMigrateCmd(load func() (config.Config, error)) *cobra.Command {
	var seed bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			logger := newLogger()

			// Open applies migrations.
			sqlDB, err := db.Open(cmd.Context(), db.Config{Path: cfg.DBPath, Env: cfg.Env})
			if err != nil {
				return err
			}
			defer sqlDB.Close()
			logger.Printf("schema up to date in %s", cfg.DBPath)

			if seed {
				if err := db.SeedDev(cmd.Context(), sqlDB, db.SeedDevOptions{Password: cfg.DevSeedPassword}); err != nil {
					return err
				}
				logger.Printf("dev data seeded")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&seed, "seed", false, "also insert the dev status masters, sample records and accounts")
	return cmd
}
