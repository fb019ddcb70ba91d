package di

import (
	"context"
	"fmt"

	"github.com/aristath/tearsheet/internal/config"
	"github.com/aristath/tearsheet/internal/modules/analysis"
	"github.com/aristath/tearsheet/internal/modules/calculations"
	"github.com/aristath/tearsheet/internal/modules/charts"
	"github.com/aristath/tearsheet/internal/modules/history"
	"github.com/aristath/tearsheet/internal/modules/performance"
	"github.com/aristath/tearsheet/internal/modules/returns"
	"github.com/aristath/tearsheet/internal/modules/validation"
	"github.com/aristath/tearsheet/internal/reliability"
	"github.com/aristath/tearsheet/internal/scheduler"
	"github.com/rs/zerolog"
)

// InitializeServices builds repositories, the analysis pipeline and the
// backup services on top of the open databases
func InitializeServices(ctx context.Context, container *Container, cfg *config.Config, log zerolog.Logger) error {
	container.HistoryStore = history.NewHistoryDB(container.HistoryDB.Conn(), log)
	container.ResultCache = calculations.NewCache(container.CacheDB.Conn(), log)

	container.Validator = validation.NewValidator(cfg.Limits, log)
	container.Fetcher = history.NewFetcher(container.HistoryStore, log)
	container.ReturnsEngine = returns.NewEngine(log)

	metricsCfg := performance.DefaultConfig()
	metricsCfg.RiskFreeRate = cfg.RiskFreeRate
	container.Calculator = performance.NewCalculator(metricsCfg, log)
	container.ChartService = charts.NewService(charts.DefaultStyle(), log)

	var resultCache analysis.ResultCache
	if cfg.CacheTTL > 0 {
		resultCache = container.ResultCache
	}
	container.AnalysisService = analysis.NewService(
		container.Validator,
		container.Fetcher,
		container.ReturnsEngine,
		container.Calculator,
		container.ChartService,
		resultCache,
		cfg.CacheTTL,
		log,
	)

	container.BackupService = reliability.NewBackupService(container.Databases(), log)
	if cfg.Backup.Enabled {
		client, err := reliability.NewS3Client(ctx, reliability.S3Config{
			Bucket:          cfg.Backup.Bucket,
			Region:          cfg.Backup.Region,
			Endpoint:        cfg.Backup.Endpoint,
			AccessKeyID:     cfg.Backup.AccessKeyID,
			SecretAccessKey: cfg.Backup.SecretAccessKey,
			UsePathStyle:    cfg.Backup.UsePathStyle,
		}, log)
		if err != nil {
			return fmt.Errorf("failed to create s3 client: %w", err)
		}
		container.S3BackupService = reliability.NewS3BackupService(client, container.BackupService, cfg.DataDir, log)
	}

	container.Scheduler = scheduler.New(log)

	log.Info().Bool("backups", cfg.Backup.Enabled).Msg("Services initialized")
	return nil
}
