package domain

import (
	"time"

	"gorm.io/gorm"
)

// Review sources.
const (
	ReviewSourceWebsite = "website"
	ReviewSourceKiosk   = "kiosk"
	ReviewSourceGoogle  = "google"
)

// ImportedReviewEmail is stored on reviews pulled from an external source.
const ImportedReviewEmail = "google-import@bellavista.com"

// Review is a visitor or family review of a home.
type Review struct {
	ID         string         `json:"id" gorm:"primaryKey;size:64"`
	Location   string         `json:"location" gorm:"size:255;not null;index"`
	Name       string         `json:"name" gorm:"size:255;not null"`
	Email      string         `json:"email" gorm:"size:255;not null"`
	Rating     int            `json:"rating" gorm:"not null"`
	ReviewText string         `json:"reviewText" gorm:"type:text;not null"`
	Source     string         `json:"source" gorm:"size:64;default:website"`
	CreatedAt  time.Time      `json:"createdAt"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Review) TableName() string { return "reviews" }

// ExternalReview is a review fetched from a third-party listing.
type ExternalReview struct {
	AuthorName string
	Rating     int
	Text       string
	Time       time.Time
}

// ReviewLocation maps a home name to its external listing id.
type ReviewLocation struct {
	Name    string
	PlaceID string
}
