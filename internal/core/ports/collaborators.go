package ports

import (
	"context"
	"io"
	"time"

	"github.com/bellavista/carehome-cms/internal/core/domain"
)

// BlobObject describes a stored object.
type BlobObject struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// BlobStore persists uploaded files and backups.
type BlobStore interface {
	// Put stores body under key and returns its public URL.
	Put(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	// List returns objects whose key starts with prefix.
	List(ctx context.Context, prefix string) ([]BlobObject, error)
}

// Message is an outbound plain-text email.
type Message struct {
	To      []string
	ReplyTo string
	Subject string
	Body    string
}

// Mailer delivers email.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// ReviewSource fetches reviews for an external listing.
type ReviewSource interface {
	FetchReviews(ctx context.Context, placeID string) ([]domain.ExternalReview, error)
}

// Job is a unit of background work. Jobs sharing a Key run in order on the
// same worker.
type Job struct {
	Kind string
	Key  string
	Run  func(ctx context.Context) error
}

// JobQueue runs work in the background. Enqueue never blocks; it reports
// false when the job was dropped.
type JobQueue interface {
	Enqueue(job Job) bool
}

// Notifier tells staff about public submissions. Implementations send in the
// background and never report delivery failures to the caller.
type Notifier interface {
	TourRequested(ctx context.Context, tour *domain.ScheduledTour)
	EnquiryReceived(ctx context.Context, enquiry *domain.CareEnquiry)
	ApplicationReceived(ctx context.Context, app *domain.JobApplication)
}
