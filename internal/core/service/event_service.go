package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bellavista/carehome-cms/internal/core/domain"
	"github.com/bellavista/carehome-cms/internal/core/ports"
	"github.com/bellavista/carehome-cms/internal/pkg/sanitize"
)

type eventService struct {
	repo  ports.EventRepository
	audit *AuditLog
	log   zerolog.Logger
}

// NewEventService returns an EventService implementation.
func NewEventService(repo ports.EventRepository, audit *AuditLog, log zerolog.Logger) ports.EventService {
	return &eventService{repo: repo, audit: audit, log: log}
}

func (s *eventService) List(ctx context.Context) ([]domain.Event, error) {
	return s.repo.List(ctx)
}

func (s *eventService) Get(ctx context.Context, id string) (*domain.Event, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *eventService) Create(ctx context.Context, in ports.EventInput) (*domain.Event, error) {
	v := &domain.ValidationError{}
	requireText(v, "title", in.Title)
	requireText(v, "date", in.Date)
	if err := v.OrNil(); err != nil {
		return nil, err
	}

	ev := &domain.Event{ID: uuid.NewString(), CreatedAt: time.Now().UTC()}
	applyEvent(ev, in)

	if err := s.repo.Create(ctx, ev); err != nil {
		s.audit.LogAction(ctx, actionCreate, "event", ev.ID, nil, false)
		return nil, fmt.Errorf("create event: %w", err)
	}
	s.audit.LogAction(ctx, actionCreate, "event", ev.ID, changedFields(in), true)
	return ev, nil
}

func (s *eventService) Update(ctx context.Context, id string, in ports.EventInput) (*domain.Event, error) {
	ev, err := s.repo.Update(ctx, id, func(e *domain.Event) error {
		if in.Title != nil && sanitize.Text(*in.Title) == "" {
			return domain.NewValidationError("title", "must not be empty")
		}
		applyEvent(e, in)
		return nil
	})
	if err != nil {
		s.audit.LogAction(ctx, actionUpdate, "event", id, nil, false)
		return nil, err
	}
	s.audit.LogAction(ctx, actionUpdate, "event", id, changedFields(in), true)
	return ev, nil
}

func (s *eventService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		s.audit.LogAction(ctx, actionDelete, "event", id, nil, false)
		return err
	}
	s.audit.LogAction(ctx, actionDelete, "event", id, nil, true)
	return nil
}

func applyEvent(e *domain.Event, in ports.EventInput) {
	setText(&e.Title, in.Title)
	setText(&e.Description, in.Description)
	setText(&e.Date, in.Date)
	setText(&e.Time, in.Time)
	setText(&e.Location, in.Location)
	setText(&e.Image, in.Image)
	setText(&e.Category, in.Category)
}
