package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/aristath/tearsheet/internal/database"
	"github.com/rs/zerolog"
)

const jobTimeout = 10 * time.Minute

// ExpiredEntryCleaner removes expired cache entries.
type ExpiredEntryCleaner interface {
	CleanupExpired(ctx context.Context) (int64, error)
}

// BackupUploader creates, uploads and rotates off-site backups.
type BackupUploader interface {
	CreateAndUploadBackup(ctx context.Context) (string, error)
	RotateOldBackups(ctx context.Context, retentionDays int) (int, error)
}

// CacheCleanupJob drops expired analysis cache entries
type CacheCleanupJob struct {
	cache ExpiredEntryCleaner
	log   zerolog.Logger
}

// NewCacheCleanupJob creates a new CacheCleanupJob
func NewCacheCleanupJob(cache ExpiredEntryCleaner, log zerolog.Logger) *CacheCleanupJob {
	return &CacheCleanupJob{
		cache: cache,
		log:   log.With().Str("job", "cache_cleanup").Logger(),
	}
}

// Name returns the job name
func (j *CacheCleanupJob) Name() string {
	return "cache_cleanup"
}

// Run executes the cache cleanup job
func (j *CacheCleanupJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	removed, err := j.cache.CleanupExpired(ctx)
	if err != nil {
		return fmt.Errorf("failed to clean up cache: %w", err)
	}
	if removed > 0 {
		j.log.Info().Int64("removed", removed).Msg("Removed expired cache entries")
	}
	return nil
}

// WALCheckpointJob truncates the write-ahead logs of every database
type WALCheckpointJob struct {
	databases map[string]*database.DB
	log       zerolog.Logger
}

// NewWALCheckpointJob creates a new WALCheckpointJob
func NewWALCheckpointJob(databases map[string]*database.DB, log zerolog.Logger) *WALCheckpointJob {
	return &WALCheckpointJob{
		databases: databases,
		log:       log.With().Str("job", "wal_checkpoint").Logger(),
	}
}

// Name returns the job name
func (j *WALCheckpointJob) Name() string {
	return "wal_checkpoint"
}

// Run checkpoints each database. Failures are logged and do not stop the
// remaining checkpoints; the first one is returned.
func (j *WALCheckpointJob) Run() error {
	var firstErr error
	checked := 0
	for name, db := range j.databases {
		if db == nil {
			continue
		}
		if err := db.WALCheckpoint("TRUNCATE"); err != nil {
			j.log.Warn().Err(err).Str("database", name).Msg("WAL checkpoint failed")
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		checked++
	}

	j.log.Debug().Int("databases", checked).Msg("WAL checkpoints completed")
	return firstErr
}

// S3BackupJob uploads a backup archive and rotates old ones
type S3BackupJob struct {
	backups       BackupUploader
	retentionDays int
	log           zerolog.Logger
}

// NewS3BackupJob creates a new S3BackupJob
func NewS3BackupJob(backups BackupUploader, retentionDays int, log zerolog.Logger) *S3BackupJob {
	return &S3BackupJob{
		backups:       backups,
		retentionDays: retentionDays,
		log:           log.With().Str("job", "s3_backup").Logger(),
	}
}

// Name returns the job name
func (j *S3BackupJob) Name() string {
	return "s3_backup"
}

// Run executes the backup. Rotation failures are logged only.
func (j *S3BackupJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	archive, err := j.backups.CreateAndUploadBackup(ctx)
	if err != nil {
		return fmt.Errorf("backup failed: %w", err)
	}

	if _, err := j.backups.RotateOldBackups(ctx, j.retentionDays); err != nil {
		j.log.Error().Err(err).Str("archive", archive).Msg("Failed to rotate old backups")
	}
	return nil
}
