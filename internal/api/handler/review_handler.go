package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bellavista/carehome-cms/internal/core/ports"
)

// ErrImportBusy is returned when a manual review import could not be queued.
var ErrImportBusy = errors.New("review import could not be queued")

// ImportTrigger queues a review import and reports whether it was accepted.
type ImportTrigger func() bool

type ReviewHandler struct {
	svc     ports.ReviewService
	trigger ImportTrigger
}

func NewReviewHandler(svc ports.ReviewService, trigger ImportTrigger) *ReviewHandler {
	return &ReviewHandler{svc: svc, trigger: trigger}
}

// List returns reviews, optionally for one location.
//
// @Summary  List reviews
// @Tags     reviews
// @Produce  json
// @Param    location  query  string  false  "Home name"
// @Success  200 {array} domain.Review
// @Router   /api/reviews [get]
func (h *ReviewHandler) List(c echo.Context) error {
	list, err := h.svc.List(c.Request().Context(), c.QueryParam("location"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

// Submit records a visitor review.
//
// @Summary  Submit review
// @Tags     reviews
// @Accept   json
// @Produce  json
// @Param    body  body  ports.ReviewInput  true  "Review"
// @Success  201 {object} domain.Review
// @Failure  400 {object} ErrorResponse
// @Failure  429 {object} ErrorResponse
// @Router   /api/reviews [post]
func (h *ReviewHandler) Submit(c echo.Context) error {
	var in ports.ReviewInput
	if err := bind(c, &in); err != nil {
		return err
	}
	r, err := h.svc.Submit(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, r)
}

// Delete hides a review.
//
// @Summary   Delete review
// @Tags      reviews
// @Security  BearerAuth
// @Param     id  path  string  true  "Review id"
// @Success   204
// @Failure   404 {object} ErrorResponse
// @Router    /api/reviews/{id} [delete]
func (h *ReviewHandler) Delete(c echo.Context) error {
	if err := h.svc.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Import queues a run of the external review import.
//
// @Summary   Trigger review import
// @Tags      reviews
// @Produce   json
// @Security  BearerAuth
// @Success   202 {object} importResponse
// @Failure   503 {object} ErrorResponse
// @Router    /api/reviews/import [post]
func (h *ReviewHandler) Import(c echo.Context) error {
	if h.trigger == nil || !h.trigger() {
		return ErrImportBusy
	}
	return c.JSON(http.StatusAccepted, importResponse{Message: "review import queued", Queued: true})
}
