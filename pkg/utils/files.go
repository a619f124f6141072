// =============================================================================
// Bill Analyzer - File Utilities
// =============================================================================
//
// File-level helpers shared across the application:
//   - Backup lifecycle for the ledger file (create / restore / remove)
//   - Plain file copy
//   - Export file naming
//
// BACKUP STRATEGY:
//   The backup is a sibling file at a derived path (ledger path plus a
//   configured suffix). It is created before any mutation and removed after
//   a successful save; a backup file left behind after a run signals an
//   aborted or crashed operation that needs manual reconciliation.
//
// =============================================================================

package utils

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// BACKUP LIFECYCLE
// =============================================================================

// CreateBackup copies the file at path to its derived backup path and
// returns that path.
func CreateBackup(path, suffix string) (string, error) {
	backupPath := path + suffix
	if err := CopyFile(path, backupPath); err != nil {
		return "", fmt.Errorf("failed to create backup: %w", err)
	}
	return backupPath, nil
}

// RestoreBackup restores the original file byte-for-byte from its backup.
func RestoreBackup(backupPath, path string) error {
	if err := CopyFile(backupPath, path); err != nil {
		return fmt.Errorf("failed to restore from backup: %w", err)
	}
	return nil
}

// RemoveBackup deletes the backup file after a successful save.
func RemoveBackup(backupPath string) error {
	if err := os.Remove(backupPath); err != nil {
		return fmt.Errorf("failed to remove backup: %w", err)
	}
	return nil
}

// =============================================================================
// FILE OPERATIONS
// =============================================================================

// CopyFile copies a file from src to dst, syncing the destination.
func CopyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer destFile.Close()

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		return err
	}

	return destFile.Sync()
}

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// =============================================================================
// EXPORT FILE NAMING
// =============================================================================

// ExportFileName generates a unique name for an exported bill batch,
// combining the current date with a random UUID.
//
// EXAMPLE:
//   ExportFileName("bills") -> "bills_20260829_a1b2c3d4-....json"
func ExportFileName(prefix string) string {
	return fmt.Sprintf("%s_%s_%s.json",
		prefix,
		time.Now().Format("20060102"),
		uuid.New().String())
}
