package cli

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/spf13/cobra"

	"github.com/edhtools/deckforge/internal/storage"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the database schema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrations(func(mm *storage.MigrationManager) error {
			if err := mm.Up(); err != nil {
				return err
			}
			fmt.Println("migrations applied")
			return nil
		})
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Revert the most recent migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrations(func(mm *storage.MigrationManager) error {
			if err := mm.Down(); err != nil {
				return err
			}
			fmt.Println("migration reverted")
			return nil
		})
	},
}

var migrateVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the current schema version",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrations(func(mm *storage.MigrationManager) error {
			v, dirty, err := mm.Version()
			if err != nil {
				if errors.Is(err, migrate.ErrNilVersion) {
					fmt.Println("no migrations applied")
					return nil
				}
				return err
			}
			fmt.Printf("schema version %d (dirty: %v)\n", v, dirty)
			return nil
		})
	},
}

func withMigrations(fn func(*storage.MigrationManager) error) error {
	dbPath, err := configuredDBPath()
	if err != nil {
		return err
	}

	mm, err := storage.NewMigrationManager(dbPath)
	if err != nil {
		return err
	}
	defer mm.Close()

	return fn(mm)
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)
	migrateCmd.AddCommand(migrateVersionCmd)
	rootCmd.AddCommand(migrateCmd)
}
