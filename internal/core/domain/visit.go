package domain

import "time"

// Tour statuses.
const (
	TourRequested = "requested"
	TourConfirmed = "confirmed"
	TourCompleted = "completed"
	TourCancelled = "cancelled"
)

// TourStatuses lists every accepted tour status.
var TourStatuses = []string{TourRequested, TourConfirmed, TourCompleted, TourCancelled}

// ScheduledTour is a visitor's request to tour a home.
type ScheduledTour struct {
	ID            string    `json:"id" gorm:"primaryKey;size:64"`
	Name          string    `json:"name" gorm:"size:255;not null"`
	Email         string    `json:"email" gorm:"size:255;not null"`
	Phone         string    `json:"phone" gorm:"size:64"`
	PreferredDate string    `json:"preferredDate" gorm:"size:32"`
	PreferredTime string    `json:"preferredTime" gorm:"size:32"`
	Location      string    `json:"location" gorm:"size:255"`
	Message       string    `json:"message" gorm:"type:text"`
	Status        string    `json:"status" gorm:"size:32;default:requested"`
	CreatedAt     time.Time `json:"createdAt"`
}

func (ScheduledTour) TableName() string { return "scheduled_tours" }

// CareEnquiry is an enquiry about care at a home.
type CareEnquiry struct {
	ID          string    `json:"id" gorm:"primaryKey;size:64"`
	Name        string    `json:"name" gorm:"size:255;not null"`
	Email       string    `json:"email" gorm:"size:255;not null"`
	Phone       string    `json:"phone" gorm:"size:64"`
	Location    string    `json:"location" gorm:"size:255"`
	EnquiryType string    `json:"enquiryType" gorm:"size:64"`
	Message     string    `json:"message" gorm:"type:text"`
	Status      string    `json:"status" gorm:"size:32;default:received"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (CareEnquiry) TableName() string { return "care_enquiries" }

// Kiosk check-in statuses.
const (
	CheckedIn  = "checked-in"
	CheckedOut = "checked-out"
)

// KioskCheckIn is a visitor signing in at a home's reception kiosk.
type KioskCheckIn struct {
	ID             string     `json:"id" gorm:"primaryKey;size:64"`
	Name           string     `json:"name" gorm:"size:255;not null"`
	Email          string     `json:"email" gorm:"size:255"`
	Phone          string     `json:"phone" gorm:"size:64"`
	Location       string     `json:"location" gorm:"size:255;index"`
	VisitPurpose   string     `json:"visitPurpose" gorm:"size:255"`
	PersonVisiting string     `json:"personVisiting" gorm:"size:255"`
	CheckInTime    time.Time  `json:"checkInTime"`
	CheckOutTime   *time.Time `json:"checkOutTime"`
	Status         string     `json:"status" gorm:"size:32;default:checked-in"`
	Notes          string     `json:"notes" gorm:"type:text"`
}

func (KioskCheckIn) TableName() string { return "kiosk_check_ins" }

// KioskFilter narrows a check-in listing.
type KioskFilter struct {
	Location string
	Status   string
}
