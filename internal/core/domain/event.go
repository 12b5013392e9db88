package domain

import "time"

// Event is an upcoming activity advertised on the site.
type Event struct {
	ID          string    `json:"id" gorm:"primaryKey;size:64"`
	Title       string    `json:"title" gorm:"size:255;not null"`
	Description string    `json:"description" gorm:"type:text"`
	Date        string    `json:"date" gorm:"size:32"`
	Time        string    `json:"time" gorm:"size:32"`
	Location    string    `json:"location" gorm:"size:255"`
	Image       string    `json:"image" gorm:"size:512"`
	Category    string    `json:"category" gorm:"size:64"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (Event) TableName() string { return "events" }
