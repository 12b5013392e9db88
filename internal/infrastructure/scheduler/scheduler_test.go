package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bellavista/carehome-cms/internal/core/ports"
)

type recordingQueue struct {
	mu     sync.Mutex
	kinds  []string
	reject bool
}

func (q *recordingQueue) Enqueue(job ports.Job) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.reject {
		return false
	}
	q.kinds = append(q.kinds, job.Kind)
	return true
}

func (q *recordingQueue) count() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.kinds)
}

func noop(context.Context) error { return nil }

func TestAdd_RejectsBadSpecAndDuplicates(t *testing.T) {
	s := New(&recordingQueue{}, zerolog.Nop())
	require.Error(t, s.Add("bad", "every now and then", ports.Job{Kind: "x", Run: noop}))
	require.NoError(t, s.Add("import", "@every 12h", ports.Job{Kind: "review_import", Run: noop}))
	require.Error(t, s.Add("import", "@daily", ports.Job{Kind: "review_import", Run: noop}))
}

func TestRunNow(t *testing.T) {
	q := &recordingQueue{}
	s := New(q, zerolog.Nop())
	require.NoError(t, s.Add("import", "@every 12h", ports.Job{Kind: "review_import", Run: noop}))

	assert.True(t, s.RunNow("import"))
	assert.False(t, s.RunNow("missing"))
	assert.Equal(t, []string{"review_import"}, q.kinds)

	q.reject = true
	assert.False(t, s.RunNow("import"))
}

func TestScheduleFires(t *testing.T) {
	q := &recordingQueue{}
	s := New(q, zerolog.Nop())
	require.NoError(t, s.Add("tick", "@every 1s", ports.Job{Kind: "tick", Run: noop}))

	s.Start()
	defer s.Stop()

	assert.Eventually(t, func() bool { return q.count() >= 1 }, 3*time.Second, 50*time.Millisecond)
}
