package main

import (
	"context"
	"time"

	mongoMigration "tablebook/internal/migrations/mongo"
	postgresMigration "tablebook/internal/migrations/postgres"
	"tablebook/pkg/config"

	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	var timeout time.Duration

	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Create collections, tables and indexes for a store backend",
	}
	migrate.PersistentFlags().DurationVar(&timeout, "timeout", 120*time.Second, "overall migration deadline")

	migrate.AddCommand(&cobra.Command{
		Use:   "mongo",
		Short: "Apply MongoDB collection validators and indexes",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			cfg := config.Load(JobName)
			cfg.SetMongo()
			defer cfg.GracefulShutdown()

			db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
			return mongoMigration.RunMigration(ctx, db, cfg.Log)
		},
	})

	migrate.AddCommand(&cobra.Command{
		Use:   "postgres",
		Short: "Apply the PostgreSQL schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			cfg := config.Load(JobName)
			cfg.SetPostgres()
			defer cfg.GracefulShutdown()

			return postgresMigration.Migrate(ctx, cfg.Client.Postgres, cfg.Log)
		},
	})

	return migrate
}
