package utils

import (
	"time"

	"github.com/rs/zerolog"
)

// SlowOperationThreshold is the duration above which a timed operation is
// reported at warn level.
const SlowOperationThreshold = 5 * time.Second

// Timer measures the duration of one operation
type Timer struct {
	start time.Time
	name  string
	log   zerolog.Logger
}

// NewTimer starts a timer with the given operation name
func NewTimer(name string, log zerolog.Logger) *Timer {
	return &Timer{
		start: time.Now(),
		name:  name,
		log:   log,
	}
}

// Stop logs the elapsed duration and returns it
func (t *Timer) Stop() time.Duration {
	duration := time.Since(t.start)

	event := t.log.Debug()
	if duration > SlowOperationThreshold {
		event = t.log.Warn()
	}
	event.
		Str("operation", t.name).
		Dur("duration_ms", duration).
		Msg("Performance measurement")

	return duration
}

// Stage records the duration of a named step since the previous stage (or
// since the timer started) at debug level.
func (t *Timer) Stage(step string, since time.Time) time.Time {
	now := time.Now()
	t.log.Debug().
		Str("operation", t.name).
		Str("stage", step).
		Dur("duration_ms", now.Sub(since)).
		Msg("Stage completed")
	return now
}
