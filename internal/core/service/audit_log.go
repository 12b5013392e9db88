package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/bellavista/carehome-cms/internal/core/domain"
	"github.com/bellavista/carehome-cms/internal/core/ports"
)

const (
	auditWriteTimeout  = 3 * time.Second
	defaultAuditLimit  = 100
	maxAuditQueryLimit = 1000
)

// AuditLog records security-relevant actions. Every entry is written as a
// structured log line and appended to the sink; a sink failure is logged and
// never fails the operation being audited.
type AuditLog struct {
	sink      ports.AuditSink
	log       zerolog.Logger
	now       func() time.Time
	onFailure func()
}

func NewAuditLog(sink ports.AuditSink, log zerolog.Logger) *AuditLog {
	return &AuditLog{sink: sink, log: log, now: time.Now}
}

// WithClock replaces the time source.
func (a *AuditLog) WithClock(now func() time.Time) *AuditLog {
	a.now = now
	return a
}

// OnWriteFailure registers a hook called whenever the sink rejects an entry.
func (a *AuditLog) OnWriteFailure(fn func()) *AuditLog {
	a.onFailure = fn
	return a
}

// LogAction records a content or account change.
func (a *AuditLog) LogAction(ctx context.Context, action, resourceType, resourceID string, changes map[string]any, success bool) {
	a.write(ctx, domain.AuditEntry{
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Changes:      changes,
		Success:      success,
	}, zerolog.InfoLevel)
}

// LogLoginAttempt records a login. The actor is the submitted username since
// the caller is not authenticated yet.
func (a *AuditLog) LogLoginAttempt(ctx context.Context, username string, success bool, reason string) {
	level := zerolog.InfoLevel
	if !success {
		level = zerolog.WarnLevel
	}
	a.write(ctx, domain.AuditEntry{
		Action:       domain.ActionLoginAttempt,
		ResourceType: "auth",
		Actor:        username,
		Success:      success,
		Reason:       reason,
	}, level)
}

// LogUnauthorizedAccess records a request denied by authorization.
func (a *AuditLog) LogUnauthorizedAccess(ctx context.Context, resourceType, resourceID, reason string) {
	a.write(ctx, domain.AuditEntry{
		Action:       domain.ActionUnauthorizedAccess,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Success:      false,
		Reason:       reason,
	}, zerolog.WarnLevel)
}

// LogError records an unexpected failure of op.
func (a *AuditLog) LogError(ctx context.Context, op string, err error) {
	entry := domain.AuditEntry{
		Action:       domain.ActionError,
		ResourceType: op,
		Success:      false,
	}
	if err != nil {
		entry.Reason = err.Error()
	}
	a.write(ctx, entry, zerolog.ErrorLevel)
}

// Recent lists the newest entries matching filter.
func (a *AuditLog) Recent(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditEntry, error) {
	switch {
	case filter.Limit <= 0:
		filter.Limit = defaultAuditLimit
	case filter.Limit > maxAuditQueryLimit:
		filter.Limit = maxAuditQueryLimit
	}
	return a.sink.Recent(ctx, filter)
}

func (a *AuditLog) write(ctx context.Context, entry domain.AuditEntry, level zerolog.Level) {
	meta := domain.RequestMetaFrom(ctx)
	entry.Timestamp = a.now().UTC()
	if entry.Actor == "" {
		entry.Actor = meta.Actor
	}
	entry.IPAddress = meta.IP
	entry.RequestID = meta.RequestID

	ev := a.log.WithLevel(level).
		Str("audit_action", entry.Action).
		Str("user", entry.Actor).
		Str("ip", entry.IPAddress).
		Bool("success", entry.Success)
	if entry.ResourceType != "" {
		ev = ev.Str("resource_type", entry.ResourceType)
	}
	if entry.ResourceID != "" {
		ev = ev.Str("resource_id", entry.ResourceID)
	}
	if entry.Reason != "" {
		ev = ev.Str("reason", entry.Reason)
	}
	if entry.RequestID != "" {
		ev = ev.Str("request_id", entry.RequestID)
	}
	ev.Msg("audit")

	// The entry must survive a client that hangs up mid-request.
	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), auditWriteTimeout)
	defer cancel()
	if err := a.sink.Append(wctx, entry); err != nil {
		a.log.Error().Err(err).Str("audit_action", entry.Action).Msg("audit write failed")
		if a.onFailure != nil {
			a.onFailure()
		}
	}
}
