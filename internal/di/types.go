/**
 * Package di provides dependency injection type definitions.
 *
 * The Container holds every long-lived component of the application and is
 * handed to the server and scheduler. Nothing is a package-level singleton.
 */
package di

import (
	"github.com/aristath/tearsheet/internal/database"
	"github.com/aristath/tearsheet/internal/modules/analysis"
	"github.com/aristath/tearsheet/internal/modules/calculations"
	"github.com/aristath/tearsheet/internal/modules/charts"
	"github.com/aristath/tearsheet/internal/modules/history"
	"github.com/aristath/tearsheet/internal/modules/performance"
	"github.com/aristath/tearsheet/internal/modules/returns"
	"github.com/aristath/tearsheet/internal/modules/validation"
	"github.com/aristath/tearsheet/internal/reliability"
	"github.com/aristath/tearsheet/internal/scheduler"
)

// Container holds all dependencies for the application
type Container struct {
	// Databases
	HistoryDB *database.DB // Stored daily prices
	CacheDB   *database.DB // Encoded analysis results, always recomputable

	// Repositories
	HistoryStore *history.HistoryDB
	ResultCache  *calculations.Cache

	// Pipeline
	Validator       *validation.Validator
	Fetcher         *history.Fetcher
	ReturnsEngine   *returns.Engine
	Calculator      *performance.Calculator
	ChartService    *charts.Service
	AnalysisService *analysis.Service

	// Reliability
	BackupService   *reliability.BackupService
	S3BackupService *reliability.S3BackupService // nil when off-site backups are disabled

	Scheduler *scheduler.Scheduler
}

// Databases returns the open databases keyed by name
func (c *Container) Databases() map[string]*database.DB {
	return map[string]*database.DB{
		"history": c.HistoryDB,
		"cache":   c.CacheDB,
	}
}

// Close releases every database. Safe on a partially built container.
func (c *Container) Close() {
	for _, db := range []*database.DB{c.HistoryDB, c.CacheDB} {
		if db != nil {
			db.Close()
		}
	}
}

// JobInstances holds registered jobs for manual triggering
type JobInstances struct {
	CacheCleanup  scheduler.Job
	WALCheckpoint scheduler.Job
	S3Backup      scheduler.Job // nil when off-site backups are disabled
}
