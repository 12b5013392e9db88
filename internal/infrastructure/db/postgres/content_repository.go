package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/bellavista/carehome-cms/internal/core/domain"
)

// HomeRepository implements ports.HomeRepository.
type HomeRepository struct {
	crudStore[domain.Home]
}

func NewHomeRepository(db *gorm.DB) *HomeRepository {
	return &HomeRepository{newCRUD[domain.Home](db, "home", domain.ErrHomeNotFound)}
}

func (r *HomeRepository) List(ctx context.Context) ([]domain.Home, error) {
	return list[domain.Home](ctx, r.db, "homes", "name")
}

func (r *HomeRepository) FindByName(ctx context.Context, name string) (*domain.Home, error) {
	var h domain.Home
	err := r.db.WithContext(ctx).Where("LOWER(name) = LOWER(?)", name).Take(&h).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrHomeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find home by name: %w", err)
	}
	return &h, nil
}

func (r *HomeRepository) Exists(ctx context.Context, id string) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&domain.Home{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, fmt.Errorf("home exists: %w", err)
	}
	return n > 0, nil
}

// NewsRepository implements ports.NewsRepository.
type NewsRepository struct {
	crudStore[domain.NewsItem]
}

func NewNewsRepository(db *gorm.DB) *NewsRepository {
	return &NewsRepository{newCRUD[domain.NewsItem](db, "news item", domain.ErrNewsNotFound)}
}

func (r *NewsRepository) List(ctx context.Context) ([]domain.NewsItem, error) {
	return list[domain.NewsItem](ctx, r.db, "news", "created_at DESC")
}

// FAQRepository implements ports.FAQRepository.
type FAQRepository struct {
	crudStore[domain.FAQ]
}

func NewFAQRepository(db *gorm.DB) *FAQRepository {
	return &FAQRepository{newCRUD[domain.FAQ](db, "faq", domain.ErrFAQNotFound)}
}

func (r *FAQRepository) List(ctx context.Context) ([]domain.FAQ, error) {
	return list[domain.FAQ](ctx, r.db, "faqs", "sort_order, created_at")
}

// EventRepository implements ports.EventRepository.
type EventRepository struct {
	crudStore[domain.Event]
}

func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{newCRUD[domain.Event](db, "event", domain.ErrEventNotFound)}
}

func (r *EventRepository) List(ctx context.Context) ([]domain.Event, error) {
	return list[domain.Event](ctx, r.db, "events", "date, time")
}

// VacancyRepository implements ports.VacancyRepository.
type VacancyRepository struct {
	crudStore[domain.Vacancy]
}

func NewVacancyRepository(db *gorm.DB) *VacancyRepository {
	return &VacancyRepository{newCRUD[domain.Vacancy](db, "vacancy", domain.ErrVacancyNotFound)}
}

func (r *VacancyRepository) List(ctx context.Context) ([]domain.Vacancy, error) {
	return list[domain.Vacancy](ctx, r.db, "vacancies", "created_at DESC")
}

// ApplicationRepository implements ports.ApplicationRepository.
type ApplicationRepository struct {
	store crudStore[domain.JobApplication]
}

func NewApplicationRepository(db *gorm.DB) *ApplicationRepository {
	return &ApplicationRepository{newCRUD[domain.JobApplication](db, "job application", domain.ErrNotFound)}
}

func (r *ApplicationRepository) Create(ctx context.Context, app *domain.JobApplication) error {
	return r.store.Create(ctx, app)
}

func (r *ApplicationRepository) List(ctx context.Context) ([]domain.JobApplication, error) {
	return list[domain.JobApplication](ctx, r.store.db, "job applications", "created_at DESC")
}

// TourRepository implements ports.TourRepository.
type TourRepository struct {
	crudStore[domain.ScheduledTour]
}

func NewTourRepository(db *gorm.DB) *TourRepository {
	return &TourRepository{newCRUD[domain.ScheduledTour](db, "scheduled tour", domain.ErrTourNotFound)}
}

func (r *TourRepository) List(ctx context.Context) ([]domain.ScheduledTour, error) {
	return list[domain.ScheduledTour](ctx, r.db, "scheduled tours", "created_at DESC")
}

// EnquiryRepository implements ports.EnquiryRepository.
type EnquiryRepository struct {
	store crudStore[domain.CareEnquiry]
}

func NewEnquiryRepository(db *gorm.DB) *EnquiryRepository {
	return &EnquiryRepository{newCRUD[domain.CareEnquiry](db, "care enquiry", domain.ErrNotFound)}
}

func (r *EnquiryRepository) Create(ctx context.Context, e *domain.CareEnquiry) error {
	return r.store.Create(ctx, e)
}

func (r *EnquiryRepository) List(ctx context.Context) ([]domain.CareEnquiry, error) {
	return list[domain.CareEnquiry](ctx, r.store.db, "care enquiries", "created_at DESC")
}

// KioskRepository implements ports.KioskRepository.
type KioskRepository struct {
	crudStore[domain.KioskCheckIn]
}

func NewKioskRepository(db *gorm.DB) *KioskRepository {
	return &KioskRepository{newCRUD[domain.KioskCheckIn](db, "check-in", domain.ErrCheckInNotFound)}
}

func (r *KioskRepository) List(ctx context.Context, f domain.KioskFilter) ([]domain.KioskCheckIn, error) {
	return list[domain.KioskCheckIn](ctx, r.db, "check-ins", "check_in_time DESC", func(q *gorm.DB) *gorm.DB {
		if f.Location != "" {
			q = q.Where("location = ?", f.Location)
		}
		if f.Status != "" {
			q = q.Where("status = ?", f.Status)
		}
		return q
	})
}
