package memory

import (
	"context"
	"sync"

	"github.com/bellavista/carehome-cms/internal/core/domain"
)

const defaultAuditCapacity = 1000

// AuditSink keeps the most recent audit entries in a fixed-size ring. It is
// used when no audit database is configured; entries are still written to
// the structured log by the audit service.
type AuditSink struct {
	mu      sync.Mutex
	entries []domain.AuditEntry
	next    int
	full    bool
}

func NewAuditSink(capacity int) *AuditSink {
	if capacity <= 0 {
		capacity = defaultAuditCapacity
	}
	return &AuditSink{entries: make([]domain.AuditEntry, capacity)}
}

func (s *AuditSink) Append(_ context.Context, entry domain.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[s.next] = entry
	s.next = (s.next + 1) % len(s.entries)
	if s.next == 0 {
		s.full = true
	}
	return nil
}

// Recent walks the ring from newest to oldest.
func (s *AuditSink) Recent(_ context.Context, filter domain.AuditFilter) ([]domain.AuditEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.next
	if s.full {
		n = len(s.entries)
	}
	out := []domain.AuditEntry{}
	for i := 1; i <= n; i++ {
		e := s.entries[(s.next-i+len(s.entries))%len(s.entries)]
		if filter.Action != "" && e.Action != filter.Action {
			continue
		}
		if filter.ResourceType != "" && e.ResourceType != filter.ResourceType {
			continue
		}
		out = append(out, e)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}
