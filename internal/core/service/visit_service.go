package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bellavista/carehome-cms/internal/core/domain"
	"github.com/bellavista/carehome-cms/internal/core/ports"
	"github.com/bellavista/carehome-cms/internal/pkg/sanitize"
)

const enquiryReceived = "received"

// VisitService handles tour requests and care enquiries from the public site.
type VisitService struct {
	tours     ports.TourRepository
	enquiries ports.EnquiryRepository
	notify    ports.Notifier
	audit     *AuditLog
	log       zerolog.Logger
}

func NewVisitService(tours ports.TourRepository, enquiries ports.EnquiryRepository, notify ports.Notifier, audit *AuditLog, log zerolog.Logger) *VisitService {
	return &VisitService{tours: tours, enquiries: enquiries, notify: notify, audit: audit, log: log}
}

func (s *VisitService) RequestTour(ctx context.Context, in ports.TourInput) (*domain.ScheduledTour, error) {
	tour := &domain.ScheduledTour{
		ID:            uuid.NewString(),
		Name:          sanitize.Text(in.Name),
		Email:         strings.TrimSpace(in.Email),
		Phone:         strings.TrimSpace(in.Phone),
		PreferredDate: sanitize.Text(in.PreferredDate),
		PreferredTime: sanitize.Text(in.PreferredTime),
		Location:      sanitize.Text(in.Location),
		Message:       sanitize.Text(in.Message),
		Status:        domain.TourRequested,
		CreatedAt:     time.Now().UTC(),
	}
	if err := requireContact(tour.Name, tour.Email); err != nil {
		return nil, err
	}

	if err := s.tours.Create(ctx, tour); err != nil {
		s.audit.LogAction(ctx, actionCreate, "scheduled_tour", tour.ID, nil, false)
		return nil, fmt.Errorf("create tour: %w", err)
	}
	s.audit.LogAction(ctx, actionCreate, "scheduled_tour", tour.ID, map[string]any{"location": tour.Location}, true)
	s.notify.TourRequested(ctx, tour)
	return tour, nil
}

// ListTours returns tour requests newest first.
func (s *VisitService) ListTours(ctx context.Context) ([]domain.ScheduledTour, error) {
	return s.tours.List(ctx)
}

func (s *VisitService) UpdateTourStatus(ctx context.Context, id, status string) (*domain.ScheduledTour, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if !slices.Contains(domain.TourStatuses, status) {
		return nil, domain.NewValidationError("status", "must be one of "+strings.Join(domain.TourStatuses, ", "))
	}

	var previous string
	tour, err := s.tours.Update(ctx, id, func(t *domain.ScheduledTour) error {
		previous = t.Status
		t.Status = status
		return nil
	})
	if err != nil {
		s.audit.LogAction(ctx, actionUpdate, "scheduled_tour", id, nil, false)
		return nil, err
	}
	s.audit.LogAction(ctx, actionUpdate, "scheduled_tour", id, map[string]any{"status": status, "previous": previous}, true)
	return tour, nil
}

func (s *VisitService) SubmitEnquiry(ctx context.Context, in ports.EnquiryInput) (*domain.CareEnquiry, error) {
	enq := &domain.CareEnquiry{
		ID:          uuid.NewString(),
		Name:        sanitize.Text(in.Name),
		Email:       strings.TrimSpace(in.Email),
		Phone:       strings.TrimSpace(in.Phone),
		Location:    sanitize.Text(in.Location),
		EnquiryType: sanitize.Text(in.EnquiryType),
		Message:     sanitize.Text(in.Message),
		Status:      enquiryReceived,
		CreatedAt:   time.Now().UTC(),
	}
	if err := requireContact(enq.Name, enq.Email); err != nil {
		return nil, err
	}

	if err := s.enquiries.Create(ctx, enq); err != nil {
		s.audit.LogAction(ctx, actionCreate, "care_enquiry", enq.ID, nil, false)
		return nil, fmt.Errorf("create enquiry: %w", err)
	}
	s.audit.LogAction(ctx, actionCreate, "care_enquiry", enq.ID, map[string]any{"location": enq.Location, "enquiryType": enq.EnquiryType}, true)
	s.notify.EnquiryReceived(ctx, enq)
	return enq, nil
}

// ListEnquiries returns enquiries newest first.
func (s *VisitService) ListEnquiries(ctx context.Context) ([]domain.CareEnquiry, error) {
	return s.enquiries.List(ctx)
}

func requireContact(name, email string) error {
	v := &domain.ValidationError{}
	requireText(v, "name", &name)
	requireText(v, "email", &email)
	return v.OrNil()
}
