package cli

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"mbti-test-service/internal/config"
	"mbti-test-service/internal/domain"
	pg "mbti-test-service/internal/infra/postgres"
	pgmigrations "mbti-test-service/internal/infra/postgres/migrations"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
)

// NewMigrateCmd applies database migrations.
func NewMigrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrations(cmd.Context(), *configPath)
		},
	}
}

// NewSeedCmd imports catalog and report JSON files into Postgres.
func NewSeedCmd(configPath *string) *cobra.Command {
	var simplePath, detailedPath, reportsPath string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Import question catalogs and type reports",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context(), *configPath, simplePath, detailedPath, reportsPath)
		},
	}
	cmd.Flags().StringVar(&simplePath, "simple", "", "path to the simple catalog JSON")
	cmd.Flags().StringVar(&detailedPath, "detailed", "", "path to the detailed catalog JSON")
	cmd.Flags().StringVar(&reportsPath, "reports", "", "path to the reports JSON")
	return cmd
}

func runMigrations(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	return runMigrationsWithConfig(ctx, cfg)
}

func runMigrationsWithConfig(ctx context.Context, cfg config.Config) error {
	if cfg.Postgres.URL == "" {
		return fmt.Errorf("postgres url not configured")
	}

	db := openBun(cfg.Postgres.URL)
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)

	if err := migrator.Init(ctx); err != nil {
		return err
	}

	if _, err := migrator.Migrate(ctx); err != nil {
		return err
	}
	log.Printf("migrations applied")
	return nil
}

func runSeed(ctx context.Context, configPath, simplePath, detailedPath, reportsPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Postgres.URL == "" {
		return fmt.Errorf("postgres url not configured")
	}
	if err := runMigrationsWithConfig(ctx, cfg); err != nil {
		return err
	}

	db := openBun(cfg.Postgres.URL)
	defer db.Close()

	if simplePath != "" {
		n, err := pg.SeedQuestions(ctx, db, domain.VariantSimple, simplePath)
		if err != nil {
			return err
		}
		log.Printf("seeded %d simple questions", n)
	}
	if detailedPath != "" {
		n, err := pg.SeedQuestions(ctx, db, domain.VariantDetailed, detailedPath)
		if err != nil {
			return err
		}
		log.Printf("seeded %d detailed questions", n)
	}
	if reportsPath != "" {
		n, err := pg.SeedReports(ctx, db, reportsPath)
		if err != nil {
			return err
		}
		log.Printf("seeded %d reports", n)
	}
	return nil
}

func openBun(dsn string) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return bun.NewDB(sqldb, pgdialect.New())
}
