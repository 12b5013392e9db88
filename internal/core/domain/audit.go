package domain

import (
	"context"
	"time"
)

// Audit actions that are not plain CRUD verbs.
const (
	ActionLoginAttempt       = "login_attempt"
	ActionLogout             = "logout"
	ActionUnauthorizedAccess = "unauthorized_access"
	ActionError              = "error"
)

// Reasons for login attempts refused before the credentials were checked.
const (
	LoginReasonInvalidRequest = "invalid_request"
	LoginReasonRateLimited    = "rate_limited"
)

// UnknownActor is recorded when a request carries no verified identity.
const UnknownActor = "unknown"

// AuditEntry is one append-only audit record.
type AuditEntry struct {
	Timestamp    time.Time      `json:"timestamp" bson:"timestamp"`
	Action       string         `json:"action" bson:"action"`
	ResourceType string         `json:"resource_type,omitempty" bson:"resource_type,omitempty"`
	ResourceID   string         `json:"resource_id,omitempty" bson:"resource_id,omitempty"`
	Actor        string         `json:"user" bson:"user"`
	IPAddress    string         `json:"ip_address" bson:"ip_address"`
	Success      bool           `json:"success" bson:"success"`
	Reason       string         `json:"reason,omitempty" bson:"reason,omitempty"`
	Changes      map[string]any `json:"changes,omitempty" bson:"changes,omitempty"`
	RequestID    string         `json:"request_id,omitempty" bson:"request_id,omitempty"`
}

// AuditFilter narrows an audit listing.
type AuditFilter struct {
	Action       string
	ResourceType string
	Limit        int
}

// LockInfo describes an active account lock.
type LockInfo struct {
	Locked           bool      `json:"locked"`
	LockedAt         time.Time `json:"locked_at"`
	UnlockTime       time.Time `json:"unlock_time"`
	MinutesRemaining int       `json:"minutes_remaining"`
}

// RequestMeta is the caller information attached to a request context.
type RequestMeta struct {
	Actor     string
	IP        string
	RequestID string
}

type requestMetaKey struct{}

// WithRequestMeta stores meta in ctx.
func WithRequestMeta(ctx context.Context, meta RequestMeta) context.Context {
	return context.WithValue(ctx, requestMetaKey{}, meta)
}

// RequestMetaFrom returns the meta stored in ctx, defaulting the actor to
// UnknownActor.
func RequestMetaFrom(ctx context.Context) RequestMeta {
	meta, _ := ctx.Value(requestMetaKey{}).(RequestMeta)
	if meta.Actor == "" {
		meta.Actor = UnknownActor
	}
	return meta
}
