package ports

import (
	"context"

	"github.com/bellavista/carehome-cms/internal/core/domain"
)

// EventRepository persists event listings.
type EventRepository interface {
	CRUD[domain.Event]
	// List returns events ordered by date.
	List(ctx context.Context) ([]domain.Event, error)
}
