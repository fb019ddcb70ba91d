package reliability

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/aristath/tearsheet/internal/database"
	"github.com/aristath/tearsheet/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupDatabases(t *testing.T) (map[string]*database.DB, string) {
	t.Helper()
	dataDir := t.TempDir()

	history, err := database.New(database.Config{
		Path:    filepath.Join(dataDir, "history.db"),
		Profile: database.ProfileStandard,
		Name:    "history",
	})
	require.NoError(t, err)
	require.NoError(t, history.Migrate())
	t.Cleanup(func() { history.Close() })

	_, err = history.Conn().Exec(`
		INSERT INTO daily_prices (symbol, date, open, high, low, close, volume, updated_at)
		VALUES ('REE', 1704153600, 50, 50, 50, 50, 100, 0), ('REE', 1704240000, 51, 51, 51, 51, 100, 0)
	`)
	require.NoError(t, err)

	cache, err := database.New(database.Config{
		Path:    filepath.Join(dataDir, "cache.db"),
		Profile: database.ProfileCache,
		Name:    "cache",
	})
	require.NoError(t, err)
	require.NoError(t, cache.Migrate())
	t.Cleanup(func() { cache.Close() })

	return map[string]*database.DB{"history": history, "cache": cache}, dataDir
}

func TestBackupService_DatabaseNames(t *testing.T) {
	databases, _ := setupDatabases(t)
	svc := NewBackupService(databases, logger.Nop())

	assert.Equal(t, []string{"history"}, svc.DatabaseNames(false))
	assert.Equal(t, []string{"cache", "history"}, svc.DatabaseNames(true))
}

func TestBackupService_BackupDatabase(t *testing.T) {
	databases, dataDir := setupDatabases(t)
	svc := NewBackupService(databases, logger.Nop())

	backupPath := filepath.Join(dataDir, "backups", "history.db")
	require.NoError(t, svc.BackupDatabase("history", backupPath))
	// A second run replaces the previous copy
	require.NoError(t, svc.BackupDatabase("history", backupPath))

	backupDB, err := sql.Open("sqlite", backupPath)
	require.NoError(t, err)
	defer backupDB.Close()

	var count int
	require.NoError(t, backupDB.QueryRow("SELECT COUNT(*) FROM daily_prices").Scan(&count))
	assert.Equal(t, 2, count)
	assert.NoError(t, VerifyBackup(backupPath))
}

func TestBackupService_UnknownDatabase(t *testing.T) {
	svc := NewBackupService(map[string]*database.DB{}, logger.Nop())
	err := svc.BackupDatabase("ledger", filepath.Join(t.TempDir(), "ledger.db"))
	assert.Error(t, err)
}

func TestVerifyBackup_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.db")
	require.NoError(t, os.WriteFile(path, []byte("definitely not a database file, just some text padding"), 0644))
	assert.Error(t, VerifyBackup(path))
}
