package server

import (
	"context"
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"github.com/aristath/tearsheet/internal/database"
	"github.com/aristath/tearsheet/internal/reliability"
	"github.com/aristath/tearsheet/internal/scheduler"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

const backupTimeout = 5 * time.Minute

// BackupManager creates and lists off-site backups
type BackupManager interface {
	CreateAndUploadBackup(ctx context.Context) (string, error)
	ListBackups(ctx context.Context) ([]reliability.BackupInfo, error)
}

// JobLister reports scheduled maintenance jobs
type JobLister interface {
	Statuses() []scheduler.JobStatus
}

// SystemHandlers serves system status and backup endpoints
type SystemHandlers struct {
	databases map[string]*database.DB
	backups   BackupManager // nil when backups are disabled
	jobs      JobLister
	started   time.Time
	log       zerolog.Logger
}

// NewSystemHandlers creates new system handlers
func NewSystemHandlers(databases map[string]*database.DB, backups BackupManager, jobs JobLister, log zerolog.Logger) *SystemHandlers {
	return &SystemHandlers{
		databases: databases,
		backups:   backups,
		jobs:      jobs,
		started:   time.Now(),
		log:       log.With().Str("handler", "system").Logger(),
	}
}

// SystemStatusResponse is the payload of GET /api/system/status
type SystemStatusResponse struct {
	Status        string                     `json:"status"`
	UptimeSeconds int64                      `json:"uptime_seconds"`
	CPUPercent    float64                    `json:"cpu_percent"`
	MemoryPercent float64                    `json:"memory_percent"`
	Goroutines    int                        `json:"goroutines"`
	Databases     map[string]*database.Stats `json:"databases"`
	BackupsActive bool                       `json:"backups_enabled"`
	Jobs          []scheduler.JobStatus      `json:"jobs"`
	Timestamp     string                     `json:"timestamp"`
}

// HandleSystemStatus returns process, host and database status
// GET /api/system/status
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	cpuPercent, memPercent := h.getSystemStats()

	status := "healthy"
	stats := make(map[string]*database.Stats, len(h.databases))
	for name, db := range h.databases {
		if db == nil {
			continue
		}
		if err := db.HealthCheck(r.Context()); err != nil {
			h.log.Warn().Err(err).Str("database", name).Msg("Database health check failed")
			status = "degraded"
		}
		dbStats, err := db.GetStats()
		if err != nil {
			h.log.Warn().Err(err).Str("database", name).Msg("Failed to get database stats")
			continue
		}
		stats[name] = dbStats
	}

	jobs := []scheduler.JobStatus{}
	if h.jobs != nil {
		jobs = h.jobs.Statuses()
	}

	writeJSON(w, http.StatusOK, SystemStatusResponse{
		Status:        status,
		UptimeSeconds: int64(time.Since(h.started).Seconds()),
		CPUPercent:    cpuPercent,
		MemoryPercent: memPercent,
		Goroutines:    runtime.NumGoroutine(),
		Databases:     stats,
		BackupsActive: h.backups != nil,
		Jobs:          jobs,
		Timestamp:     time.Now().Format(time.RFC3339),
	}, h.log)
}

// HandleCreateBackup creates and uploads a backup now
// POST /api/backups
func (h *SystemHandlers) HandleCreateBackup(w http.ResponseWriter, r *http.Request) {
	if h.backups == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "Backups are not configured"}, h.log)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), backupTimeout)
	defer cancel()

	archive, err := h.backups.CreateAndUploadBackup(ctx)
	if err != nil {
		h.log.Error().Err(err).Msg("Manual backup failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Backup failed"}, h.log)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"archive": archive,
	}, h.log)
}

// HandleListBackups lists stored backups, newest first
// GET /api/backups
func (h *SystemHandlers) HandleListBackups(w http.ResponseWriter, r *http.Request) {
	if h.backups == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "Backups are not configured"}, h.log)
		return
	}

	backups, err := h.backups.ListBackups(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list backups")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to list backups"}, h.log)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"backups": backups,
		"count":   len(backups),
	}, h.log)
}

// getSystemStats returns CPU and RAM usage percentages. The CPU sample
// window is kept short so the endpoint stays responsive.
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}
	return cpuAvg, memStat.UsedPercent
}

// writeJSON encodes data before touching the response, so an encoding
// failure still produces a 500 instead of a committed status with no body.
func writeJSON(w http.ResponseWriter, status int, data interface{}, log zerolog.Logger) {
	body, err := json.Marshal(data)
	if err != nil {
		log.Error().Err(err).Msg("Failed to encode JSON response")
		status = http.StatusInternalServerError
		body = []byte(`{"error":"Internal server error"}`)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(append(body, '\n')); err != nil {
		log.Debug().Err(err).Msg("Failed to write JSON response")
	}
}
