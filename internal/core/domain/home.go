package domain

import (
	"encoding/json"
	"time"
)

// Section is a free-form list of items shown on a home page (team members,
// gallery images, facility cards). Items are kept as raw JSON so the page
// layout can evolve without migrations.
type Section []json.RawMessage

// Len returns the number of items, treating nil as empty.
func (s Section) Len() int { return len(s) }

// Home is a single care-home location and its page content.
type Home struct {
	ID                  string    `json:"id" gorm:"primaryKey;size:64"`
	Name                string    `json:"homeName" gorm:"size:255;not null"`
	Location            string    `json:"homeLocation" gorm:"size:255;not null"`
	AdminEmail          string    `json:"adminEmail" gorm:"size:255"`
	Image               string    `json:"homeImage" gorm:"size:512"`
	Badge               string    `json:"homeBadge" gorm:"size:64"`
	Description         string    `json:"homeDesc" gorm:"type:text"`
	HeroTitle           string    `json:"heroTitle" gorm:"size:255"`
	HeroSubtitle        string    `json:"heroSubtitle" gorm:"size:512"`
	HeroBgImage         string    `json:"heroBgImage" gorm:"size:512"`
	HeroExpandedDesc    string    `json:"heroExpandedDesc" gorm:"type:text"`
	CIWReportURL        string    `json:"ciwReportUrl" gorm:"column:ciw_report_url;size:512"`
	NewsletterURL       string    `json:"newsletterUrl" gorm:"size:512"`
	StatsBedrooms       string    `json:"statsBedrooms" gorm:"size:32"`
	StatsPremier        string    `json:"statsPremier" gorm:"size:32"`
	BannerImages        Section   `json:"bannerImages" gorm:"type:text;serializer:json"`
	TeamMembers         Section   `json:"teamMembers" gorm:"type:text;serializer:json"`
	TeamGallery         Section   `json:"teamGalleryImages" gorm:"type:text;serializer:json"`
	ActivitiesIntro     string    `json:"activitiesIntro" gorm:"type:text"`
	Activities          Section   `json:"activities" gorm:"type:text;serializer:json"`
	ActivityImages      Section   `json:"activityImages" gorm:"type:text;serializer:json"`
	ActivitiesModalDesc string    `json:"activitiesModalDesc" gorm:"type:text"`
	FacilitiesIntro     string    `json:"facilitiesIntro" gorm:"type:text"`
	FacilitiesList      Section   `json:"facilitiesList" gorm:"type:text;serializer:json"`
	DetailedFacilities  Section   `json:"detailedFacilities" gorm:"type:text;serializer:json"`
	FacilitiesGallery   Section   `json:"facilitiesGalleryImages" gorm:"type:text;serializer:json"`
	Featured            bool      `json:"homeFeatured"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

func (Home) TableName() string { return "homes" }

// SectionNames lists the restorable list sections in display order.
var SectionNames = []string{
	"bannerImages",
	"teamMembers",
	"teamGalleryImages",
	"activities",
	"activityImages",
	"facilitiesList",
	"detailedFacilities",
	"facilitiesGalleryImages",
}

// Sections returns pointers to every list section keyed by its JSON name.
func (h *Home) Sections() map[string]*Section {
	return map[string]*Section{
		"bannerImages":            &h.BannerImages,
		"teamMembers":             &h.TeamMembers,
		"teamGalleryImages":       &h.TeamGallery,
		"activities":              &h.Activities,
		"activityImages":          &h.ActivityImages,
		"facilitiesList":          &h.FacilitiesList,
		"detailedFacilities":      &h.DetailedFacilities,
		"facilitiesGalleryImages": &h.FacilitiesGallery,
	}
}

// HomeBackup is a point-in-time copy of every home's content.
type HomeBackup struct {
	Key       string    `json:"key"`
	CreatedAt time.Time `json:"createdAt"`
	Size      int64     `json:"size"`
	Homes     []Home    `json:"homes,omitempty"`
}

// SectionRestore reports one section a restore replaced (or would replace).
type SectionRestore struct {
	HomeID   string `json:"homeId"`
	Section  string `json:"section"`
	Current  int    `json:"currentItems"`
	Restored int    `json:"backupItems"`
}

// RestoreResult summarises a restore run.
type RestoreResult struct {
	Backup   string           `json:"backup"`
	DryRun   bool             `json:"dryRun"`
	Homes    int              `json:"homesRestored"`
	Sections []SectionRestore `json:"sections"`
	Missing  []string         `json:"missingHomes,omitempty"`
}
