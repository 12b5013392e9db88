// Package scheduler runs periodic background jobs on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/bellavista/carehome-cms/internal/core/ports"
)

// Scheduler hands jobs to a queue whenever their schedule fires. The jobs
// themselves run on the queue's workers, never on the cron goroutine.
type Scheduler struct {
	cron  *cron.Cron
	queue ports.JobQueue
	log   zerolog.Logger

	mu   sync.Mutex
	jobs map[string]ports.Job
}

func New(queue ports.JobQueue, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:  cron.New(cron.WithLogger(cronLogger{log: log})),
		queue: queue,
		log:   log,
		jobs:  make(map[string]ports.Job),
	}
}

// Add registers job under name. spec accepts the standard five-field format
// and descriptors such as "@every 12h" or "@daily".
func (s *Scheduler) Add(name, spec string, job ports.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.jobs[name]; dup {
		return fmt.Errorf("scheduler: job %q already registered", name)
	}
	if _, err := s.cron.AddFunc(spec, func() { s.enqueue(name, job) }); err != nil {
		return fmt.Errorf("scheduler: job %q: %w", name, err)
	}
	s.jobs[name] = job
	s.log.Info().Str("job", name).Str("schedule", spec).Msg("job scheduled")
	return nil
}

// RunNow enqueues the named job immediately. It reports false when the job
// is unknown or the queue dropped it.
func (s *Scheduler) RunNow(name string) bool {
	s.mu.Lock()
	job, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return false
	}
	return s.enqueue(name, job)
}

func (s *Scheduler) Start() { s.cron.Start() }

// Stop halts the schedule and returns a context that is done once no
// enqueue call is in flight.
func (s *Scheduler) Stop() context.Context { return s.cron.Stop() }

func (s *Scheduler) enqueue(name string, job ports.Job) bool {
	ok := s.queue.Enqueue(job)
	if ok {
		s.log.Debug().Str("job", name).Msg("job enqueued")
	}
	return ok
}

// cronLogger routes cron's own diagnostics through zerolog.
type cronLogger struct{ log zerolog.Logger }

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
