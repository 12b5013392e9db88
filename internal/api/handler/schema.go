package handler

import (
	"time"

	"github.com/bellavista/carehome-cms/internal/core/domain"
	"github.com/bellavista/carehome-cms/internal/core/ports"
)

// ErrorResponse is the canonical error envelope for all API errors.
type ErrorResponse struct {
	Code              string              `json:"code"`
	Message           string              `json:"message"`
	Errors            []domain.FieldError `json:"errors,omitempty"`
	LockoutInfo       *domain.LockInfo    `json:"lockout_info,omitempty"`
	RetryAfter        int                 `json:"retry_after,omitempty"`
	AttemptsRemaining *int                `json:"attempts_remaining,omitempty"`
}

type okResponse struct {
	OK bool `json:"ok"`
}

type acceptedResponse struct {
	Message string `json:"message"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required,max=80"`
	Password string `json:"password" validate:"required,max=128"`
}

type userView struct {
	Username string      `json:"username"`
	Role     domain.Role `json:"role"`
	HomeID   string      `json:"homeId,omitempty"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      userView  `json:"user"`
}

type sessionResponse struct {
	ExpiresAt        time.Time `json:"expires_at"`
	SecondsRemaining int       `json:"seconds_remaining"`
	Warn             bool      `json:"warn"`
}

type meResponse struct {
	UserID   string      `json:"user_id"`
	Username string      `json:"username"`
	Role     domain.Role `json:"role"`
	HomeID   string      `json:"homeId,omitempty"`
	IssuedAt time.Time   `json:"issued_at"`
	sessionResponse
}

type csrfResponse struct {
	Token     string `json:"csrf_token"`
	ExpiresIn int    `json:"expires_in"`
}

type tourStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=requested confirmed completed cancelled"`
}

type mealBulkRequest struct {
	HomeID string                `json:"homeId" validate:"required,max=64"`
	Meals  []ports.MealPlanInput `json:"meals" validate:"required,min=1,max=200,dive"`
}

type mealPlanListResponse struct {
	HomeID string                       `json:"homeId"`
	Meals  []domain.MealPlan            `json:"meals,omitempty"`
	ByDay  map[string][]domain.MealPlan `json:"byDay,omitempty"`
}

type importResponse struct {
	Message string `json:"message"`
	Queued  bool   `json:"queued"`
}
