package domain

import "time"

// News categories accepted by the editor.
var NewsCategories = []string{"update", "event", "achievement", "story"}

// NewsItem is a news article shown on the public site.
type NewsItem struct {
	ID               string    `json:"id" gorm:"primaryKey;size:64"`
	Title            string    `json:"title" gorm:"size:255;not null"`
	Excerpt          string    `json:"excerpt" gorm:"size:180"`
	FullDescription  string    `json:"fullDescription" gorm:"type:text"`
	Image            string    `json:"image" gorm:"size:512"`
	Category         string    `json:"category" gorm:"size:32"`
	Date             string    `json:"date" gorm:"size:32"`
	Location         string    `json:"location" gorm:"size:255"`
	Author           string    `json:"author" gorm:"size:255"`
	Badge            string    `json:"badge" gorm:"size:64"`
	Important        bool      `json:"important"`
	Gallery          []string  `json:"gallery" gorm:"type:text;serializer:json"`
	VideoURL         string    `json:"videoUrl" gorm:"size:512"`
	VideoDescription string    `json:"videoDescription" gorm:"type:text"`
	CreatedAt        time.Time `json:"createdAt"`
}

func (NewsItem) TableName() string { return "news_items" }

// FAQ is a question and answer pair.
type FAQ struct {
	ID        string    `json:"id" gorm:"primaryKey;size:64"`
	Question  string    `json:"question" gorm:"type:text;not null"`
	Answer    string    `json:"answer" gorm:"type:text;not null"`
	Order     int       `json:"order" gorm:"column:sort_order;default:0"`
	CreatedAt time.Time `json:"createdAt"`
}

func (FAQ) TableName() string { return "faqs" }
