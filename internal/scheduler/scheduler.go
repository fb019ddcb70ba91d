// Package scheduler runs the maintenance jobs (cache cleanup, WAL checkpoints,
// off-site backups) on cron schedules and keeps their last outcome for the
// system status endpoint.
package scheduler

import (
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Job is a unit of maintenance work
type Job interface {
	Run() error
	Name() string
}

// JobStatus describes one registered job
type JobStatus struct {
	Name      string     `json:"name"`
	Schedule  string     `json:"schedule"`
	NextRun   time.Time  `json:"next_run"`
	LastRun   *time.Time `json:"last_run,omitempty"`
	LastError string     `json:"last_error,omitempty"`
	Runs      int        `json:"runs"`
}

type registration struct {
	id       cron.EntryID
	job      Job
	schedule string
	lastRun  time.Time
	lastErr  string
	runs     int
}

// Scheduler owns the cron runner and the registered maintenance jobs
type Scheduler struct {
	cron *cron.Cron
	mu   sync.Mutex
	jobs []*registration
	log  zerolog.Logger
}

// New creates a scheduler. A panicking job is recovered and logged, and a
// job still running when its next tick fires is skipped for that tick.
func New(log zerolog.Logger) *Scheduler {
	log = log.With().Str("component", "scheduler").Logger()
	cl := cronLogger{log: log}
	return &Scheduler{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		log: log,
	}
}

// Start starts the cron runner
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Int("jobs", len(s.cron.Entries())).Msg("Scheduler started")
}

// Stop stops the cron runner and waits for in-flight jobs
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info().Msg("Scheduler stopped")
}

// AddJob registers job under a six-field cron expression ("0 */15 * * * *")
// or a descriptor such as "@hourly".
func (s *Scheduler) AddJob(schedule string, job Job) error {
	reg := &registration{job: job, schedule: schedule}

	id, err := s.cron.AddFunc(schedule, func() { s.execute(reg) })
	if err != nil {
		return err
	}
	reg.id = id

	s.mu.Lock()
	s.jobs = append(s.jobs, reg)
	s.mu.Unlock()

	s.log.Info().Str("job", job.Name()).Str("schedule", schedule).Msg("Job registered")
	return nil
}

// RunNow runs job immediately on the caller's goroutine. Registered jobs
// record the outcome as if the schedule had fired.
func (s *Scheduler) RunNow(job Job) error {
	s.mu.Lock()
	var reg *registration
	for _, r := range s.jobs {
		if r.job == job {
			reg = r
			break
		}
	}
	s.mu.Unlock()

	if reg != nil {
		return s.execute(reg)
	}
	return s.runJob(job)
}

// Statuses returns every registered job in registration order
func (s *Scheduler) Statuses() []JobStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]JobStatus, 0, len(s.jobs))
	for _, reg := range s.jobs {
		status := JobStatus{
			Name:      reg.job.Name(),
			Schedule:  reg.schedule,
			NextRun:   s.cron.Entry(reg.id).Next,
			LastError: reg.lastErr,
			Runs:      reg.runs,
		}
		if !reg.lastRun.IsZero() {
			last := reg.lastRun
			status.LastRun = &last
		}
		out = append(out, status)
	}
	return out
}

func (s *Scheduler) execute(reg *registration) error {
	started := time.Now()
	err := s.runJob(reg.job)

	s.mu.Lock()
	reg.lastRun = started
	reg.runs++
	reg.lastErr = ""
	if err != nil {
		reg.lastErr = err.Error()
	}
	s.mu.Unlock()
	return err
}

func (s *Scheduler) runJob(job Job) error {
	started := time.Now()
	err := job.Run()

	event := s.log.Debug()
	if err != nil {
		event = s.log.Error().Err(err)
	}
	event.Str("job", job.Name()).Dur("duration", time.Since(started)).Msg("Job finished")
	return err
}

// cronLogger routes cron's own messages (recovered panics, skipped ticks)
// through zerolog.
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
