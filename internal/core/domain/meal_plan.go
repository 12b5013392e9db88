package domain

import (
	"encoding/json"
	"time"
)

// Days and meal types accepted for meal plans.
var (
	WeekDays  = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}
	MealTypes = []string{"Breakfast", "Lunch", "Dinner", "Snack", "Dessert"}
)

// MealPlan is one menu entry for a home. Deleting a plan clears IsActive so
// past menus stay on record.
type MealPlan struct {
	ID              string          `json:"id" gorm:"primaryKey;size:64"`
	HomeID          string          `json:"homeId" gorm:"size:64;not null;index"`
	DayOfWeek       string          `json:"dayOfWeek" gorm:"size:16;not null"`
	MealType        string          `json:"mealType" gorm:"size:32;not null"`
	MealName        string          `json:"mealName" gorm:"size:255;not null"`
	Description     string          `json:"description" gorm:"type:text"`
	Ingredients     []string        `json:"ingredients" gorm:"type:text;serializer:json"`
	AllergyInfo     []string        `json:"allergyInfo" gorm:"type:text;serializer:json"`
	ImageURL        string          `json:"imageUrl" gorm:"size:512"`
	NutritionalInfo json.RawMessage `json:"nutritionalInfo" gorm:"type:text;serializer:json"`
	Tags            []string        `json:"tags" gorm:"type:text;serializer:json"`
	IsSpecialMenu   bool            `json:"isSpecialMenu"`
	EffectiveDate   *string         `json:"effectiveDate" gorm:"size:16"`
	IsActive        bool            `json:"isActive" gorm:"index"`
	Order           int             `json:"order" gorm:"column:sort_order;default:0"`
	CreatedBy       string          `json:"createdBy,omitempty" gorm:"size:64"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

func (MealPlan) TableName() string { return "meal_plans" }

// MealPlanFilter narrows a home's menu listing.
type MealPlanFilter struct {
	HomeID    string
	DayOfWeek string
	MealType  string
}

// CopyWeekResult counts the plans a week copy created and the ones it
// skipped because the target day already had them.
type CopyWeekResult struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}
