package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"

	"dscommerce-be/internal/config"
	"dscommerce-be/internal/db"
	"dscommerce-be/internal/logger"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// migrator is the subset of *migrate.Migrate used by the commands.
type migrator interface {
	Up() error
	Steps(n int) error
	Down() error
	Close() (error, error)
}

var (
	openDBFunc = func() (*sql.DB, error) {
		return db.NewDatabase(config.LoadConfig())
	}
	newMigratorFunc = newMigrator
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newMigrator(database *sql.DB, dir string) (migrator, error) {
	driver, err := postgres.WithInstance(database, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("migrate driver: %w", err)
	}
	return migrate.NewWithDatabaseInstance("file://"+dir, "postgres", driver)
}

func newRootCmd() *cobra.Command {
	var (
		migrationsDir string
		seedFile      string
		steps         int
		all           bool
	)

	root := &cobra.Command{
		Use:          "migrate",
		Short:        "Manage the dscommerce database schema",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&migrationsDir, "dir", "migrations", "migrations directory")

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(migrationsDir, func(m migrator) error {
				return ignoreNoChange(m.Up())
			})
		},
	}

	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations (one step by default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(migrationsDir, func(m migrator) error {
				if all {
					return ignoreNoChange(m.Down())
				}
				return ignoreNoChange(m.Steps(-steps))
			})
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")
	down.Flags().BoolVar(&all, "all", false, "roll back every migration")

	seed := &cobra.Command{
		Use:   "seed",
		Short: "Load the fixture catalog, users and orders",
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := os.ReadFile(seedFile)
			if err != nil {
				return fmt.Errorf("read seed file: %w", err)
			}

			database, err := openDBFunc()
			if err != nil {
				return err
			}
			defer database.Close()

			return runSeed(cmd.Context(), database, string(content))
		},
	}
	seed.Flags().StringVar(&seedFile, "file", "migrations/seed.sql", "seed SQL file")

	root.AddCommand(up, down, seed)
	return root
}

func withMigrator(dir string, fn func(m migrator) error) error {
	log := logger.L().With(zap.String("dir", dir))

	database, err := openDBFunc()
	if err != nil {
		return err
	}
	defer database.Close()

	m, err := newMigratorFunc(database, dir)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := fn(m); err != nil {
		log.Error("migration failed", zap.Error(err))
		return err
	}

	log.Info("migrations applied")
	return nil
}

func ignoreNoChange(err error) error {
	if errors.Is(err, migrate.ErrNoChange) {
		logger.L().Info("no migrations to apply")
		return nil
	}
	return err
}

// runSeed executes the seed script in one transaction.
func runSeed(ctx context.Context, database *sql.DB, script string) error {
	if strings.TrimSpace(script) == "" {
		return errors.New("seed file is empty")
	}

	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, script); err != nil {
		return fmt.Errorf("seed failed: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	logger.L().Info("seed data loaded")
	return nil
}
