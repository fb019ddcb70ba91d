package di

import (
	"fmt"

	"github.com/aristath/tearsheet/internal/config"
	"github.com/aristath/tearsheet/internal/scheduler"
	"github.com/rs/zerolog"
)

// Maintenance schedules (seconds field first)
const (
	CacheCleanupSchedule  = "0 */15 * * * *"
	WALCheckpointSchedule = "0 0 * * * *"
)

// RegisterJobs creates maintenance jobs and registers them with the scheduler
func RegisterJobs(container *Container, cfg *config.Config, log zerolog.Logger) (*JobInstances, error) {
	jobs := &JobInstances{
		CacheCleanup:  scheduler.NewCacheCleanupJob(container.ResultCache, log),
		WALCheckpoint: scheduler.NewWALCheckpointJob(container.Databases(), log),
	}

	if err := container.Scheduler.AddJob(CacheCleanupSchedule, jobs.CacheCleanup); err != nil {
		return nil, fmt.Errorf("failed to register cache_cleanup job: %w", err)
	}
	if err := container.Scheduler.AddJob(WALCheckpointSchedule, jobs.WALCheckpoint); err != nil {
		return nil, fmt.Errorf("failed to register wal_checkpoint job: %w", err)
	}

	if container.S3BackupService != nil {
		jobs.S3Backup = scheduler.NewS3BackupJob(container.S3BackupService, cfg.Backup.RetentionDays, log)
		if err := container.Scheduler.AddJob(cfg.Backup.Schedule, jobs.S3Backup); err != nil {
			return nil, fmt.Errorf("failed to register s3_backup job: %w", err)
		}
	}

	log.Info().Msg("Jobs registered")
	return jobs, nil
}
