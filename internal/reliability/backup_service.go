// Package reliability provides database backups, local and off-site.
package reliability

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aristath/tearsheet/internal/database"
	"github.com/rs/zerolog"
)

// BackupService snapshots databases with VACUUM INTO and verifies the copies
type BackupService struct {
	databases map[string]*database.DB
	log       zerolog.Logger
}

// NewBackupService creates a new backup service
func NewBackupService(databases map[string]*database.DB, log zerolog.Logger) *BackupService {
	return &BackupService{
		databases: databases,
		log:       log.With().Str("service", "backup").Logger(),
	}
}

// DatabaseNames returns the names of backed-up databases in sorted order.
// The cache database is excluded unless includeCache is set.
func (s *BackupService) DatabaseNames(includeCache bool) []string {
	names := make([]string, 0, len(s.databases))
	for name, db := range s.databases {
		if !includeCache && db.Profile() == database.ProfileCache {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// BackupDatabase writes a consistent copy of the named database to
// backupPath and verifies it. A copy that fails verification is removed.
func (s *BackupService) BackupDatabase(dbName, backupPath string) error {
	db, ok := s.databases[dbName]
	if !ok {
		return fmt.Errorf("database %s not found", dbName)
	}

	if err := os.MkdirAll(filepath.Dir(backupPath), 0755); err != nil {
		return fmt.Errorf("failed to create backup directory: %w", err)
	}
	// VACUUM INTO refuses to overwrite
	if err := os.Remove(backupPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove stale backup: %w", err)
	}

	s.log.Debug().
		Str("database", dbName).
		Str("backup_path", backupPath).
		Msg("Backing up database")

	escaped := strings.ReplaceAll(backupPath, "'", "''")
	if _, err := db.Conn().Exec(fmt.Sprintf("VACUUM INTO '%s'", escaped)); err != nil {
		return fmt.Errorf("VACUUM INTO failed: %w", err)
	}

	if err := VerifyBackup(backupPath); err != nil {
		os.Remove(backupPath)
		return fmt.Errorf("backup verification failed: %w", err)
	}

	if info, err := os.Stat(backupPath); err == nil {
		s.log.Debug().
			Str("database", dbName).
			Float64("size_mb", float64(info.Size())/1024/1024).
			Msg("Backup created")
	}
	return nil
}

// VerifyBackup runs an integrity check against a backup file
func VerifyBackup(backupPath string) error {
	backupDB, err := sql.Open("sqlite", backupPath)
	if err != nil {
		return fmt.Errorf("failed to open backup: %w", err)
	}
	defer backupDB.Close()

	var result string
	if err := backupDB.QueryRow("PRAGMA integrity_check").Scan(&result); err != nil {
		return fmt.Errorf("integrity check query failed: %w", err)
	}
	if result != "ok" {
		return fmt.Errorf("integrity check failed: %s", result)
	}
	return nil
}
