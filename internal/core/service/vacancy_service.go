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

const applicationReceived = "received"

// VacancyService manages job vacancies and the applications sent for them.
type VacancyService struct {
	repo   ports.VacancyRepository
	apps   ports.ApplicationRepository
	notify ports.Notifier
	audit  *AuditLog
	log    zerolog.Logger
}

func NewVacancyService(repo ports.VacancyRepository, apps ports.ApplicationRepository, notify ports.Notifier, audit *AuditLog, log zerolog.Logger) *VacancyService {
	return &VacancyService{repo: repo, apps: apps, notify: notify, audit: audit, log: log}
}

func (s *VacancyService) List(ctx context.Context) ([]domain.Vacancy, error) {
	return s.repo.List(ctx)
}

func (s *VacancyService) Get(ctx context.Context, id string) (*domain.Vacancy, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *VacancyService) Create(ctx context.Context, in ports.VacancyInput) (*domain.Vacancy, error) {
	v := &domain.ValidationError{}
	requireText(v, "title", in.Title)
	requireText(v, "detailedDescription", in.DetailedDescription)
	checkEmploymentType(v, in.Type)
	if err := v.OrNil(); err != nil {
		return nil, err
	}

	vac := &domain.Vacancy{ID: uuid.NewString(), Type: domain.EmploymentTypes[0], CreatedAt: time.Now().UTC()}
	applyVacancy(vac, in)

	if err := s.repo.Create(ctx, vac); err != nil {
		s.audit.LogAction(ctx, actionCreate, "vacancy", vac.ID, nil, false)
		return nil, fmt.Errorf("create vacancy: %w", err)
	}
	s.audit.LogAction(ctx, actionCreate, "vacancy", vac.ID, changedFields(in), true)
	return vac, nil
}

func (s *VacancyService) Update(ctx context.Context, id string, in ports.VacancyInput) (*domain.Vacancy, error) {
	vac, err := s.repo.Update(ctx, id, func(vac *domain.Vacancy) error {
		v := &domain.ValidationError{}
		if in.Title != nil && sanitize.Text(*in.Title) == "" {
			v.Add("title", "must not be empty")
		}
		checkEmploymentType(v, in.Type)
		if err := v.OrNil(); err != nil {
			return err
		}
		applyVacancy(vac, in)
		return nil
	})
	if err != nil {
		s.audit.LogAction(ctx, actionUpdate, "vacancy", id, nil, false)
		return nil, err
	}
	s.audit.LogAction(ctx, actionUpdate, "vacancy", id, changedFields(in), true)
	return vac, nil
}

func (s *VacancyService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		s.audit.LogAction(ctx, actionDelete, "vacancy", id, nil, false)
		return err
	}
	s.audit.LogAction(ctx, actionDelete, "vacancy", id, nil, true)
	return nil
}

func applyVacancy(vac *domain.Vacancy, in ports.VacancyInput) {
	setText(&vac.Title, in.Title)
	setText(&vac.Image, in.Image)
	setText(&vac.ShortDescription, in.ShortDescription)
	setText(&vac.DetailedDescription, in.DetailedDescription)
	setText(&vac.Location, in.Location)
	setText(&vac.Salary, in.Salary)
	setText(&vac.Type, in.Type)
}

func checkEmploymentType(v *domain.ValidationError, typ *string) {
	if typ != nil && !slices.Contains(domain.EmploymentTypes, sanitize.Text(*typ)) {
		v.Add("type", "must be one of "+strings.Join(domain.EmploymentTypes, ", "))
	}
}

// Apply stores a job application and notifies staff. An application may name
// a vacancy or be speculative; a named vacancy must exist.
func (s *VacancyService) Apply(ctx context.Context, in ports.ApplicationInput) (*domain.JobApplication, error) {
	app := &domain.JobApplication{
		ID:               uuid.NewString(),
		FirstName:        sanitize.Text(in.FirstName),
		LastName:         sanitize.Text(in.LastName),
		Email:            strings.TrimSpace(in.Email),
		JobRole:          sanitize.Text(in.JobRole),
		CVURL:            strings.TrimSpace(in.CVURL),
		MarketingConsent: in.MarketingConsent,
		PrivacyConsent:   in.PrivacyConsent,
		Status:           applicationReceived,
		CreatedAt:        time.Now().UTC(),
	}

	v := &domain.ValidationError{}
	requireText(v, "firstName", &app.FirstName)
	requireText(v, "lastName", &app.LastName)
	requireText(v, "email", &app.Email)
	if err := v.OrNil(); err != nil {
		return nil, err
	}

	if id := sanitize.Text(in.VacancyID); id != "" {
		vac, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		app.VacancyID = &vac.ID
		if app.JobRole == "" {
			app.JobRole = vac.Title
		}
	}

	if err := s.apps.Create(ctx, app); err != nil {
		s.audit.LogAction(ctx, actionCreate, "job_application", app.ID, nil, false)
		return nil, fmt.Errorf("create application: %w", err)
	}
	s.audit.LogAction(ctx, actionCreate, "job_application", app.ID, map[string]any{"jobRole": app.JobRole, "cv": app.CVURL != ""}, true)
	s.notify.ApplicationReceived(ctx, app)
	return app, nil
}

// ListApplications returns applications newest first.
func (s *VacancyService) ListApplications(ctx context.Context) ([]domain.JobApplication, error) {
	return s.apps.List(ctx)
}
