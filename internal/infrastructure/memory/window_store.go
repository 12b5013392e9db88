// Package memory provides in-process implementations of the shared state
// ports. They are suitable for a single instance; run several instances
// against the redis implementations instead.
package memory

import (
	"context"
	"sync"
	"time"
)

const defaultJanitorInterval = time.Minute

type windowEntry struct {
	stamps  []time.Time
	expires time.Time
}

type lockEntry struct {
	lockedAt time.Time
	expires  time.Time
}

// WindowStore keeps sliding-window timestamps in a mutex-guarded map.
type WindowStore struct {
	mu      sync.Mutex
	windows map[string]*windowEntry
	locks   map[string]lockEntry
	now     func() time.Time
}

func NewWindowStore() *WindowStore {
	return &WindowStore{
		windows: make(map[string]*windowEntry),
		locks:   make(map[string]lockEntry),
		now:     time.Now,
	}
}

// WithClock replaces the time source used for key expiry.
func (s *WindowStore) WithClock(now func() time.Time) *WindowStore {
	s.now = now
	return s
}

func (s *WindowStore) Get(_ context.Context, key string) ([]time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.windows[key]
	if !ok || s.expired(e.expires) {
		return nil, nil
	}
	out := make([]time.Time, len(e.stamps))
	copy(out, e.stamps)
	return out, nil
}

func (s *WindowStore) Append(_ context.Context, key string, t time.Time, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.windows[key]
	if !ok || s.expired(e.expires) {
		e = &windowEntry{}
		s.windows[key] = e
	}
	// keep oldest first even when callers pass out-of-order times
	i := len(e.stamps)
	for i > 0 && e.stamps[i-1].After(t) {
		i--
	}
	e.stamps = append(e.stamps, time.Time{})
	copy(e.stamps[i+1:], e.stamps[i:])
	e.stamps[i] = t
	if ttl > 0 {
		e.expires = s.now().Add(ttl)
	}
	return nil
}

func (s *WindowStore) Prune(_ context.Context, key string, cutoff time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.windows[key]
	if !ok {
		return nil
	}
	i := 0
	for i < len(e.stamps) && e.stamps[i].Before(cutoff) {
		i++
	}
	e.stamps = e.stamps[i:]
	if len(e.stamps) == 0 {
		delete(s.windows, key)
	}
	return nil
}

func (s *WindowStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.windows, key)
	return nil
}

func (s *WindowStore) SetLock(_ context.Context, key string, lockedAt time.Time, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locks[key] = lockEntry{lockedAt: lockedAt, expires: s.now().Add(ttl)}
	return nil
}

func (s *WindowStore) GetLock(_ context.Context, key string) (time.Time, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.locks[key]
	if !ok || s.expired(l.expires) {
		return time.Time{}, false, nil
	}
	return l.lockedAt, true, nil
}

func (s *WindowStore) ClearLock(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.locks, key)
	return nil
}

// Run drops expired and empty keys every interval until ctx is cancelled.
func (s *WindowStore) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = defaultJanitorInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *WindowStore) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for k, e := range s.windows {
		if len(e.stamps) == 0 || s.expired(e.expires) {
			delete(s.windows, k)
		}
	}
	for k, l := range s.locks {
		if s.expired(l.expires) {
			delete(s.locks, k)
		}
	}
}

// Len returns the number of tracked window keys.
func (s *WindowStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.windows)
}

func (s *WindowStore) expired(at time.Time) bool {
	return !at.IsZero() && !s.now().Before(at)
}
