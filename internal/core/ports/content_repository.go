package ports

import (
	"context"

	"github.com/bellavista/carehome-cms/internal/core/domain"
)

// CRUD is the persistence contract shared by every content entity.
type CRUD[T any] interface {
	Create(ctx context.Context, item *T) error
	// FindByID returns the entity's not-found sentinel when id is unknown.
	FindByID(ctx context.Context, id string) (*T, error)
	// Update loads the entity inside a transaction, applies fn and saves it.
	// When fn or the save fails nothing is written.
	Update(ctx context.Context, id string, fn func(*T) error) (*T, error)
	Delete(ctx context.Context, id string) error
}

type HomeRepository interface {
	CRUD[domain.Home]
	List(ctx context.Context) ([]domain.Home, error)
	// FindByName matches case-insensitively.
	FindByName(ctx context.Context, name string) (*domain.Home, error)
	Exists(ctx context.Context, id string) (bool, error)
}

type NewsRepository interface {
	CRUD[domain.NewsItem]
	List(ctx context.Context) ([]domain.NewsItem, error)
}

type FAQRepository interface {
	CRUD[domain.FAQ]
	List(ctx context.Context) ([]domain.FAQ, error)
}

type VacancyRepository interface {
	CRUD[domain.Vacancy]
	List(ctx context.Context) ([]domain.Vacancy, error)
}

type ApplicationRepository interface {
	Create(ctx context.Context, app *domain.JobApplication) error
	List(ctx context.Context) ([]domain.JobApplication, error)
}

type TourRepository interface {
	CRUD[domain.ScheduledTour]
	List(ctx context.Context) ([]domain.ScheduledTour, error)
}

type EnquiryRepository interface {
	Create(ctx context.Context, enquiry *domain.CareEnquiry) error
	List(ctx context.Context) ([]domain.CareEnquiry, error)
}

type ReviewRepository interface {
	Create(ctx context.Context, review *domain.Review) error
	FindByID(ctx context.Context, id string) (*domain.Review, error)
	// Delete is a soft delete; the row stays for audit reconstruction.
	Delete(ctx context.Context, id string) error
	// List returns live reviews, optionally for one location.
	List(ctx context.Context, location string) ([]domain.Review, error)
	// ExistsByAuthorText reports whether a review with the same author name
	// and text was already stored, including soft-deleted ones.
	ExistsByAuthorText(ctx context.Context, name, text string) (bool, error)
}

type MealPlanRepository interface {
	CRUD[domain.MealPlan]
	// List returns active plans matching filter.
	List(ctx context.Context, filter domain.MealPlanFilter) ([]domain.MealPlan, error)
	// CreateMany inserts every plan in one transaction.
	CreateMany(ctx context.Context, plans []domain.MealPlan) error
	// Deactivate soft-deletes a plan.
	Deactivate(ctx context.Context, id string) error
}

type KioskRepository interface {
	Create(ctx context.Context, checkIn *domain.KioskCheckIn) error
	FindByID(ctx context.Context, id string) (*domain.KioskCheckIn, error)
	Update(ctx context.Context, id string, fn func(*domain.KioskCheckIn) error) (*domain.KioskCheckIn, error)
	List(ctx context.Context, filter domain.KioskFilter) ([]domain.KioskCheckIn, error)
}
