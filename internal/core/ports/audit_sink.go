package ports

import (
	"context"

	"github.com/bellavista/carehome-cms/internal/core/domain"
)

// AuditSink is an append-only destination for audit entries.
type AuditSink interface {
	Append(ctx context.Context, entry domain.AuditEntry) error
	// Recent returns the newest entries first.
	Recent(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditEntry, error)
}
