package domain

import "time"

// Employment types accepted for vacancies.
var EmploymentTypes = []string{"full-time", "part-time", "temporary", "contract"}

// Vacancy is an open job position.
type Vacancy struct {
	ID                  string    `json:"id" gorm:"primaryKey;size:64"`
	Title               string    `json:"title" gorm:"size:255;not null"`
	Image               string    `json:"image" gorm:"size:512"`
	ShortDescription    string    `json:"shortDescription" gorm:"type:text"`
	DetailedDescription string    `json:"detailedDescription" gorm:"type:text"`
	Location            string    `json:"location" gorm:"size:255"`
	Salary              string    `json:"salary" gorm:"size:128"`
	Type                string    `json:"type" gorm:"size:32"`
	CreatedAt           time.Time `json:"createdAt"`
}

func (Vacancy) TableName() string { return "vacancies" }

// JobApplication is a candidate's application for a vacancy.
type JobApplication struct {
	ID               string    `json:"id" gorm:"primaryKey;size:64"`
	VacancyID        *string   `json:"vacancyId" gorm:"size:64;index"`
	FirstName        string    `json:"firstName" gorm:"size:255;not null"`
	LastName         string    `json:"lastName" gorm:"size:255;not null"`
	Email            string    `json:"email" gorm:"size:255;not null"`
	JobRole          string    `json:"jobRole" gorm:"size:255"`
	CVURL            string    `json:"cvUrl" gorm:"column:cv_url;size:512"`
	MarketingConsent bool      `json:"marketingConsent"`
	PrivacyConsent   bool      `json:"privacyConsent"`
	Status           string    `json:"status" gorm:"size:32;default:received"`
	CreatedAt        time.Time `json:"createdAt"`
}

func (JobApplication) TableName() string { return "job_applications" }
