package ports

import (
	"context"
	"encoding/json"

	"github.com/bellavista/carehome-cms/internal/core/domain"
)

// Input types use pointer fields so that updates only touch what the caller
// sent. Create operations additionally require the fields marked in the
// service.

// HomeInput carries home page content.
type HomeInput struct {
	ID                  *string         `json:"id" validate:"omitempty,max=64"`
	Name                *string         `json:"homeName" validate:"omitempty,min=2,max=255"`
	Location            *string         `json:"homeLocation" validate:"omitempty,min=2,max=255"`
	AdminEmail          *string         `json:"adminEmail" validate:"omitempty,email,max=255"`
	Image               *string         `json:"homeImage" validate:"omitempty,max=512"`
	Badge               *string         `json:"homeBadge" validate:"omitempty,max=64"`
	Description         *string         `json:"homeDesc" validate:"omitempty,max=5000"`
	HeroTitle           *string         `json:"heroTitle" validate:"omitempty,max=255"`
	HeroSubtitle        *string         `json:"heroSubtitle" validate:"omitempty,max=512"`
	HeroBgImage         *string         `json:"heroBgImage" validate:"omitempty,max=512"`
	HeroExpandedDesc    *string         `json:"heroExpandedDesc" validate:"omitempty,max=5000"`
	CIWReportURL        *string         `json:"ciwReportUrl" validate:"omitempty,max=512"`
	NewsletterURL       *string         `json:"newsletterUrl" validate:"omitempty,max=512"`
	StatsBedrooms       *string         `json:"statsBedrooms" validate:"omitempty,max=32"`
	StatsPremier        *string         `json:"statsPremier" validate:"omitempty,max=32"`
	BannerImages        *domain.Section `json:"bannerImages"`
	TeamMembers         *domain.Section `json:"teamMembers"`
	TeamGallery         *domain.Section `json:"teamGalleryImages"`
	ActivitiesIntro     *string         `json:"activitiesIntro" validate:"omitempty,max=5000"`
	Activities          *domain.Section `json:"activities"`
	ActivityImages      *domain.Section `json:"activityImages"`
	ActivitiesModalDesc *string         `json:"activitiesModalDesc" validate:"omitempty,max=5000"`
	FacilitiesIntro     *string         `json:"facilitiesIntro" validate:"omitempty,max=5000"`
	FacilitiesList      *domain.Section `json:"facilitiesList"`
	DetailedFacilities  *domain.Section `json:"detailedFacilities"`
	FacilitiesGallery   *domain.Section `json:"facilitiesGalleryImages"`
	Featured            *bool           `json:"homeFeatured"`
}

// RestoreInput selects which backup to restore and for which homes.
type RestoreInput struct {
	Backup  string   `json:"backup" validate:"required,max=255"`
	HomeIDs []string `json:"homeIds"`
	DryRun  bool     `json:"dryRun"`
}

type HomeService interface {
	List(ctx context.Context) ([]domain.Home, error)
	Get(ctx context.Context, id string) (*domain.Home, error)
	Create(ctx context.Context, in HomeInput) (*domain.Home, error)
	Update(ctx context.Context, id string, in HomeInput) (*domain.Home, error)
	Delete(ctx context.Context, id string) error
	Backup(ctx context.Context) (*domain.HomeBackup, error)
	ListBackups(ctx context.Context) ([]domain.HomeBackup, error)
	Restore(ctx context.Context, in RestoreInput) (*domain.RestoreResult, error)
}

// NewsInput carries a news article.
type NewsInput struct {
	Title            *string   `json:"title" validate:"omitempty,min=3,max=255"`
	Excerpt          *string   `json:"excerpt" validate:"omitempty,max=5000"`
	FullDescription  *string   `json:"fullDescription" validate:"omitempty,min=10,max=5000"`
	Image            *string   `json:"image" validate:"omitempty,max=512"`
	Category         *string   `json:"category" validate:"omitempty,oneof=update event achievement story"`
	Date             *string   `json:"date" validate:"omitempty,max=32"`
	Location         *string   `json:"location" validate:"omitempty,max=255"`
	Author           *string   `json:"author" validate:"omitempty,min=2,max=255"`
	Badge            *string   `json:"badge" validate:"omitempty,max=64"`
	Important        *bool     `json:"important"`
	Gallery          *[]string `json:"gallery" validate:"omitempty,dive,max=512"`
	VideoURL         *string   `json:"videoUrl" validate:"omitempty,max=512"`
	VideoDescription *string   `json:"videoDescription" validate:"omitempty,max=5000"`
}

type NewsService interface {
	List(ctx context.Context) ([]domain.NewsItem, error)
	Get(ctx context.Context, id string) (*domain.NewsItem, error)
	Create(ctx context.Context, in NewsInput) (*domain.NewsItem, error)
	Update(ctx context.Context, id string, in NewsInput) (*domain.NewsItem, error)
	Delete(ctx context.Context, id string) error
}

// FAQInput carries a question and answer.
type FAQInput struct {
	ID       *string `json:"id" validate:"omitempty,max=64"`
	Question *string `json:"question" validate:"omitempty,min=5,max=5000"`
	Answer   *string `json:"answer" validate:"omitempty,min=10,max=5000"`
	Order    *int    `json:"order" validate:"omitempty,min=0"`
}

type FAQService interface {
	List(ctx context.Context) ([]domain.FAQ, error)
	Create(ctx context.Context, in FAQInput) (*domain.FAQ, error)
	Delete(ctx context.Context, id string) error
}

// EventInput carries an event listing.
type EventInput struct {
	Title       *string `json:"title" validate:"omitempty,min=3,max=255"`
	Description *string `json:"description" validate:"omitempty,max=5000"`
	Date        *string `json:"date" validate:"omitempty,max=32"`
	Time        *string `json:"time" validate:"omitempty,max=32"`
	Location    *string `json:"location" validate:"omitempty,max=255"`
	Image       *string `json:"image" validate:"omitempty,max=512"`
	Category    *string `json:"category" validate:"omitempty,max=64"`
}

type EventService interface {
	List(ctx context.Context) ([]domain.Event, error)
	Get(ctx context.Context, id string) (*domain.Event, error)
	Create(ctx context.Context, in EventInput) (*domain.Event, error)
	Update(ctx context.Context, id string, in EventInput) (*domain.Event, error)
	Delete(ctx context.Context, id string) error
}

// VacancyInput carries a job vacancy.
type VacancyInput struct {
	Title               *string `json:"title" validate:"omitempty,min=3,max=255"`
	Image               *string `json:"image" validate:"omitempty,max=512"`
	ShortDescription    *string `json:"shortDescription" validate:"omitempty,max=5000"`
	DetailedDescription *string `json:"detailedDescription" validate:"omitempty,min=20,max=5000"`
	Location            *string `json:"location" validate:"omitempty,max=255"`
	Salary              *string `json:"salary" validate:"omitempty,max=128"`
	Type                *string `json:"type" validate:"omitempty,oneof=full-time part-time temporary contract"`
}

// ApplicationInput carries a job application. CVURL is filled by the
// handler after the CV upload.
type ApplicationInput struct {
	VacancyID        string `json:"vacancyId" form:"vacancyId" validate:"omitempty,max=64"`
	FirstName        string `json:"firstName" form:"firstName" validate:"required,min=2,max=255"`
	LastName         string `json:"lastName" form:"lastName" validate:"required,min=2,max=255"`
	Email            string `json:"email" form:"email" validate:"required,email,max=255"`
	JobRole          string `json:"jobRole" form:"jobRole" validate:"omitempty,max=255"`
	MarketingConsent bool   `json:"marketingConsent" form:"marketingConsent"`
	PrivacyConsent   bool   `json:"privacyConsent" form:"privacyConsent"`
	CVURL            string `json:"-" form:"-"`
}

type VacancyService interface {
	List(ctx context.Context) ([]domain.Vacancy, error)
	Get(ctx context.Context, id string) (*domain.Vacancy, error)
	Create(ctx context.Context, in VacancyInput) (*domain.Vacancy, error)
	Update(ctx context.Context, id string, in VacancyInput) (*domain.Vacancy, error)
	Delete(ctx context.Context, id string) error
	Apply(ctx context.Context, in ApplicationInput) (*domain.JobApplication, error)
	ListApplications(ctx context.Context) ([]domain.JobApplication, error)
}

// TourInput carries a tour request.
type TourInput struct {
	Name          string `json:"name" validate:"required,min=2,max=255"`
	Email         string `json:"email" validate:"required,email,max=255"`
	Phone         string `json:"phone" validate:"omitempty,phone"`
	PreferredDate string `json:"preferredDate" validate:"omitempty,max=32"`
	PreferredTime string `json:"preferredTime" validate:"omitempty,max=32"`
	Location      string `json:"location" validate:"omitempty,max=255"`
	Message       string `json:"message" validate:"omitempty,max=5000"`
}

// EnquiryInput carries a care enquiry.
type EnquiryInput struct {
	Name        string `json:"name" validate:"required,min=2,max=255"`
	Email       string `json:"email" validate:"required,email,max=255"`
	Phone       string `json:"phone" validate:"omitempty,phone"`
	Location    string `json:"location" validate:"omitempty,max=255"`
	EnquiryType string `json:"enquiryType" validate:"omitempty,max=64"`
	Message     string `json:"message" validate:"omitempty,max=5000"`
}

type VisitService interface {
	RequestTour(ctx context.Context, in TourInput) (*domain.ScheduledTour, error)
	ListTours(ctx context.Context) ([]domain.ScheduledTour, error)
	UpdateTourStatus(ctx context.Context, id, status string) (*domain.ScheduledTour, error)
	SubmitEnquiry(ctx context.Context, in EnquiryInput) (*domain.CareEnquiry, error)
	ListEnquiries(ctx context.Context) ([]domain.CareEnquiry, error)
}

// ReviewInput carries a visitor review.
type ReviewInput struct {
	Location   string `json:"location" validate:"required,min=2,max=255"`
	Name       string `json:"name" validate:"required,min=2,max=255"`
	Email      string `json:"email" validate:"required,email,max=255"`
	Rating     int    `json:"rating" validate:"required,min=1,max=5"`
	ReviewText string `json:"reviewText" validate:"required,min=2,max=5000"`
	Source     string `json:"source" validate:"omitempty,oneof=website kiosk"`
}

type ReviewService interface {
	List(ctx context.Context, location string) ([]domain.Review, error)
	Submit(ctx context.Context, in ReviewInput) (*domain.Review, error)
	Delete(ctx context.Context, id string) error
}

// MealPlanInput carries a menu entry.
type MealPlanInput struct {
	HomeID          *string          `json:"homeId" validate:"omitempty,max=64"`
	DayOfWeek       *string          `json:"dayOfWeek" validate:"omitempty,oneof=Monday Tuesday Wednesday Thursday Friday Saturday Sunday"`
	MealType        *string          `json:"mealType" validate:"omitempty,oneof=Breakfast Lunch Dinner Snack Dessert"`
	MealName        *string          `json:"mealName" validate:"omitempty,min=2,max=255"`
	Description     *string          `json:"description" validate:"omitempty,max=5000"`
	Ingredients     *[]string        `json:"ingredients" validate:"omitempty,dive,max=255"`
	AllergyInfo     *[]string        `json:"allergyInfo" validate:"omitempty,dive,max=255"`
	ImageURL        *string          `json:"imageUrl" validate:"omitempty,max=512"`
	NutritionalInfo *json.RawMessage `json:"nutritionalInfo"`
	Tags            *[]string        `json:"tags" validate:"omitempty,dive,max=64"`
	IsSpecialMenu   *bool            `json:"isSpecialMenu"`
	EffectiveDate   *string          `json:"effectiveDate" validate:"omitempty,datetime=2006-01-02"`
	IsActive        *bool            `json:"isActive"`
	Order           *int             `json:"order" validate:"omitempty,min=0"`
}

// CopyWeekInput copies date-specific plans from one week to another. An
// empty TargetWeekStart means the following week.
type CopyWeekInput struct {
	HomeID          string `json:"homeId" validate:"required,max=64"`
	SourceWeekStart string `json:"sourceWeekStart" validate:"required,datetime=2006-01-02"`
	TargetWeekStart string `json:"targetWeekStart" validate:"omitempty,datetime=2006-01-02"`
}

type MealPlanService interface {
	List(ctx context.Context, filter domain.MealPlanFilter) ([]domain.MealPlan, error)
	Get(ctx context.Context, id string) (*domain.MealPlan, error)
	Create(ctx context.Context, in MealPlanInput) (*domain.MealPlan, error)
	BulkCreate(ctx context.Context, homeID string, in []MealPlanInput) ([]domain.MealPlan, error)
	Update(ctx context.Context, id string, in MealPlanInput) (*domain.MealPlan, error)
	Delete(ctx context.Context, id string) error
	CopyWeek(ctx context.Context, in CopyWeekInput) (*domain.CopyWeekResult, error)
}

// CheckInInput carries a kiosk sign-in.
type CheckInInput struct {
	Name           string `json:"name" validate:"required,min=2,max=255"`
	Email          string `json:"email" validate:"omitempty,email,max=255"`
	Phone          string `json:"phone" validate:"omitempty,phone"`
	Location       string `json:"location" validate:"required,min=2,max=255"`
	VisitPurpose   string `json:"visitPurpose" validate:"omitempty,max=255"`
	PersonVisiting string `json:"personVisiting" validate:"omitempty,max=255"`
	Notes          string `json:"notes" validate:"omitempty,max=5000"`
}

type KioskService interface {
	CheckIn(ctx context.Context, in CheckInInput) (*domain.KioskCheckIn, error)
	CheckOut(ctx context.Context, id string) (*domain.KioskCheckIn, error)
	List(ctx context.Context, filter domain.KioskFilter) ([]domain.KioskCheckIn, error)
}
