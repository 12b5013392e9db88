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

// KioskService records visitors signing in and out at reception.
type KioskService struct {
	repo  ports.KioskRepository
	audit *AuditLog
	log   zerolog.Logger
	now   func() time.Time
}

func NewKioskService(repo ports.KioskRepository, audit *AuditLog, log zerolog.Logger) *KioskService {
	return &KioskService{repo: repo, audit: audit, log: log, now: time.Now}
}

func (s *KioskService) WithClock(now func() time.Time) *KioskService {
	s.now = now
	return s
}

func (s *KioskService) CheckIn(ctx context.Context, in ports.CheckInInput) (*domain.KioskCheckIn, error) {
	c := &domain.KioskCheckIn{
		ID:             uuid.NewString(),
		Name:           sanitize.Text(in.Name),
		Email:          strings.TrimSpace(in.Email),
		Phone:          strings.TrimSpace(in.Phone),
		Location:       sanitize.Text(in.Location),
		VisitPurpose:   sanitize.Text(in.VisitPurpose),
		PersonVisiting: sanitize.Text(in.PersonVisiting),
		Notes:          sanitize.Text(in.Notes),
		CheckInTime:    s.now().UTC(),
		Status:         domain.CheckedIn,
	}
	v := &domain.ValidationError{}
	requireText(v, "name", &c.Name)
	requireText(v, "location", &c.Location)
	if err := v.OrNil(); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, c); err != nil {
		s.audit.LogAction(ctx, actionCreate, "kiosk_check_in", c.ID, nil, false)
		return nil, fmt.Errorf("check in: %w", err)
	}
	s.audit.LogAction(ctx, actionCreate, "kiosk_check_in", c.ID, map[string]any{"location": c.Location}, true)
	return c, nil
}

// CheckOut stamps the departure time. Checking out twice is rejected.
func (s *KioskService) CheckOut(ctx context.Context, id string) (*domain.KioskCheckIn, error) {
	c, err := s.repo.Update(ctx, id, func(c *domain.KioskCheckIn) error {
		if c.Status == domain.CheckedOut {
			return domain.NewValidationError("status", "visitor already checked out")
		}
		out := s.now().UTC()
		c.CheckOutTime = &out
		c.Status = domain.CheckedOut
		return nil
	})
	if err != nil {
		s.audit.LogAction(ctx, actionUpdate, "kiosk_check_in", id, nil, false)
		return nil, err
	}
	s.audit.LogAction(ctx, actionUpdate, "kiosk_check_in", id, map[string]any{"status": domain.CheckedOut}, true)
	return c, nil
}

// List returns check-ins newest first.
func (s *KioskService) List(ctx context.Context, filter domain.KioskFilter) ([]domain.KioskCheckIn, error) {
	if filter.Status != "" && !slices.Contains([]string{domain.CheckedIn, domain.CheckedOut}, filter.Status) {
		return nil, domain.NewValidationError("status", "must be checked-in or checked-out")
	}
	return s.repo.List(ctx, filter)
}
