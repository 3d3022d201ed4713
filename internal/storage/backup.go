package storage

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/crypto/argon2"
)

const (
	// backupMagicHeader identifies encrypted backup files.
	backupMagicHeader = "DFRGENC1"

	argon2Time    = 1
	argon2Memory  = 64 * 1024 // KB
	argon2Threads = 4
	argon2KeyLen  = 32 // AES-256
	saltLength    = 32
)

// BackupManager creates snapshots of the deck database.
type BackupManager struct {
	dbPath string
}

// NewBackupManager creates a backup manager for the given database path.
func NewBackupManager(dbPath string) *BackupManager {
	return &BackupManager{dbPath: dbPath}
}

// BackupOptions controls backup creation.
type BackupOptions struct {
	// Dir is where backups are written. Defaults to a "backups"
	// subdirectory next to the database file.
	Dir string

	// Password, when non-empty, encrypts the backup with AES-256-GCM
	// using an Argon2id-derived key.
	Password string
}

// Backup snapshots the database using VACUUM INTO, which is atomic and
// does not require an exclusive lock. Returns the path of the backup file.
func (bm *BackupManager) Backup(opts BackupOptions) (string, error) {
	dir := opts.Dir
	if dir == "" {
		dir = filepath.Join(filepath.Dir(bm.dbPath), "backups")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	name := fmt.Sprintf("backup_%s.db", time.Now().Format("20060102_150405"))
	backupPath := filepath.Join(dir, name)

	src, err := sql.Open("sqlite", bm.dbPath)
	if err != nil {
		return "", fmt.Errorf("failed to open source database: %w", err)
	}
	defer func() { _ = src.Close() }()

	if _, err := src.Exec(fmt.Sprintf("VACUUM INTO %q", backupPath)); err != nil {
		return "", fmt.Errorf("failed to snapshot database: %w", err)
	}

	if err := bm.Verify(backupPath); err != nil {
		_ = os.Remove(backupPath)
		return "", fmt.Errorf("backup verification failed: %w", err)
	}

	if opts.Password != "" {
		encPath := backupPath + ".enc"
		if err := encryptFile(backupPath, encPath, opts.Password); err != nil {
			_ = os.Remove(backupPath)
			return "", fmt.Errorf("failed to encrypt backup: %w", err)
		}
		_ = os.Remove(backupPath)
		return encPath, nil
	}

	return backupPath, nil
}

// Verify checks that a backup file is a readable, consistent SQLite database.
func (bm *BackupManager) Verify(path string) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open backup: %w", err)
	}
	defer func() { _ = db.Close() }()

	var result string
	if err := db.QueryRow("PRAGMA integrity_check").Scan(&result); err != nil {
		return fmt.Errorf("integrity check failed: %w", err)
	}
	if result != "ok" {
		return fmt.Errorf("integrity check reported: %s", result)
	}
	return nil
}

// Restore replaces the current database with the given backup.
// The caller must have closed every open connection first.
func (bm *BackupManager) Restore(backupPath, password string) error {
	data, err := os.ReadFile(backupPath)
	if err != nil {
		return fmt.Errorf("failed to read backup: %w", err)
	}

	if len(data) > len(backupMagicHeader) && string(data[:len(backupMagicHeader)]) == backupMagicHeader {
		if password == "" {
			return fmt.Errorf("backup is encrypted, password required")
		}
		data, err = decryptData(data[len(backupMagicHeader):], password)
		if err != nil {
			return err
		}
	}

	tmpPath := bm.dbPath + ".restore.tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write restore file: %w", err)
	}

	if err := bm.Verify(tmpPath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("restored database verification failed: %w", err)
	}

	if err := os.Rename(tmpPath, bm.dbPath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to replace database: %w", err)
	}
	return nil
}

func deriveKey(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)
}

func encryptFile(srcPath, destPath, password string) error {
	plaintext, err := os.ReadFile(srcPath)
	if err != nil {
		return fmt.Errorf("failed to read source file: %w", err)
	}

	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return fmt.Errorf("failed to generate salt: %w", err)
	}

	block, err := aes.NewCipher(deriveKey(password, salt))
	if err != nil {
		return fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return fmt.Errorf("failed to create GCM: %w", err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("failed to generate nonce: %w", err)
	}

	// Layout: magic || salt || nonce || ciphertext (auth tag included).
	out := make([]byte, 0, len(backupMagicHeader)+len(salt)+len(nonce)+len(plaintext)+gcm.Overhead())
	out = append(out, backupMagicHeader...)
	out = append(out, salt...)
	out = append(out, nonce...)
	out = gcm.Seal(out, nonce, plaintext, nil)

	if err := os.WriteFile(destPath, out, 0o600); err != nil {
		return fmt.Errorf("failed to write encrypted backup: %w", err)
	}
	return nil
}

func decryptData(data []byte, password string) ([]byte, error) {
	if len(data) < saltLength {
		return nil, fmt.Errorf("encrypted backup too short")
	}
	salt, data := data[:saltLength], data[saltLength:]

	block, err := aes.NewCipher(deriveKey(password, salt))
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	if len(data) < gcm.NonceSize() {
		return nil, fmt.Errorf("encrypted backup too short for nonce")
	}
	nonce, ciphertext := data[:gcm.NonceSize()], data[gcm.NonceSize():]

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("decryption failed (wrong password or corrupted backup): %w", err)
	}
	return plaintext, nil
}
