package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/edhtools/deckforge/internal/storage"
)

var (
	backupDir      string
	backupPassword string
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Snapshot the database, optionally encrypted",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		dir := backupDir
		if dir == "" {
			dir, err = a.cfg.BackupDir()
			if err != nil {
				return err
			}
		}

		manager := storage.NewBackupManager(a.db.Path())
		path, err := manager.Backup(storage.BackupOptions{
			Dir:      dir,
			Password: backupPassword,
		})
		if err != nil {
			return err
		}
		fmt.Printf("backup written to %s\n", path)
		return nil
	},
}

var restoreCmd = &cobra.Command{
	Use:   "restore <backup-file>",
	Short: "Replace the database with a backup",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath, err := configuredDBPath()
		if err != nil {
			return err
		}

		// the database must not be open while it is replaced
		manager := storage.NewBackupManager(dbPath)
		if err := manager.Restore(args[0], backupPassword); err != nil {
			return err
		}
		fmt.Printf("restored %s from %s\n", dbPath, args[0])
		return nil
	},
}

func init() {
	backupCmd.Flags().StringVar(&backupDir, "dir", "", "backup directory (defaults to the configured backup_dir)")
	backupCmd.Flags().StringVar(&backupPassword, "password", "", "encrypt (or decrypt) the backup with this password")
	restoreCmd.Flags().StringVar(&backupPassword, "password", "", "password for an encrypted backup")
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(restoreCmd)
}
