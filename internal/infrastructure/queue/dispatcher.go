package queue

import (
	"context"
	"fmt"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/bellavista/carehome-cms/internal/api/metrics"
	"github.com/bellavista/carehome-cms/internal/core/ports"
)

const (
	defaultWorkers = 8
	channelBuffer  = 256
	defaultJobTTL  = 2 * time.Minute
)

// Dispatcher routes background jobs to a fixed set of workers using
// consistent hashing on the job key, so jobs for the same entity run in the
// order they were enqueued.
type Dispatcher struct {
	workers []chan ports.Job
	log     zerolog.Logger
	timeout time.Duration

	mu      sync.RWMutex
	stopped bool
	wg      sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan ports.Job, numWorkers),
		log:     log,
		timeout: defaultJobTTL,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.Job, channelBuffer)
	}
	return d
}

// WithJobTimeout bounds how long a single job may run.
func (d *Dispatcher) WithJobTimeout(timeout time.Duration) *Dispatcher {
	if timeout > 0 {
		d.timeout = timeout
	}
	return d
}

// Start launches all worker goroutines. Jobs inherit the values of ctx but
// not its cancellation: workers keep running until Stop has drained their
// channel, so shutting down the caller's context loses no queued job.
func (d *Dispatcher) Start(ctx context.Context) {
	base := context.WithoutCancel(ctx)
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(base, i, ch)
	}
}

// Enqueue hands job to the worker responsible for its key. It never blocks:
// when the worker's buffer is full, or the dispatcher is stopped, the job is
// dropped and false is returned.
func (d *Dispatcher) Enqueue(job ports.Job) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.stopped {
		d.drop(job, "dispatcher stopped")
		return false
	}

	idx := d.shardIndex(job.Key)
	select {
	case d.workers[idx] <- job:
		metrics.JobQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
		return true
	default:
		d.drop(job, "worker queue full")
		return false
	}
}

// Stop refuses new jobs, lets the workers finish what is already queued and
// waits for them to exit.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	for _, ch := range d.workers {
		close(ch)
	}
	d.mu.Unlock()

	d.wg.Wait()
}

// shardIndex maps a job key deterministically to a worker index.
func (d *Dispatcher) shardIndex(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.Job) {
	defer d.wg.Done()
	for job := range ch {
		metrics.JobQueueDepth.WithLabelValues(strconv.Itoa(id)).Set(float64(len(ch)))
		d.run(ctx, id, job)
	}
}

func (d *Dispatcher) run(ctx context.Context, id int, job ports.Job) {
	start := time.Now()
	jobCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	err := d.safeRun(jobCtx, job)
	metrics.JobDuration.WithLabelValues(job.Kind).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.JobsTotal.WithLabelValues(job.Kind, "error").Inc()
		d.log.Error().Err(err).
			Str("kind", job.Kind).
			Str("key", job.Key).
			Int("worker_id", id).
			Msg("background job failed")
		return
	}
	metrics.JobsTotal.WithLabelValues(job.Kind, "ok").Inc()
}

// safeRun turns a panicking job into an error so one bad job cannot take a
// worker down.
func (d *Dispatcher) safeRun(ctx context.Context, job ports.Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &panicError{value: r}
		}
	}()
	return job.Run(ctx)
}

func (d *Dispatcher) drop(job ports.Job, reason string) {
	metrics.JobsTotal.WithLabelValues(job.Kind, "dropped").Inc()
	d.log.Warn().
		Str("kind", job.Kind).
		Str("key", job.Key).
		Str("reason", reason).
		Msg("background job dropped")
}

type panicError struct{ value any }

func (e *panicError) Error() string {
	return fmt.Sprintf("job panicked: %v", e.value)
}
