package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bellavista/carehome-cms/internal/core/ports"
)

type EventHandler struct {
	svc ports.EventService
}

func NewEventHandler(svc ports.EventService) *EventHandler {
	return &EventHandler{svc: svc}
}

// List returns upcoming and past events.
//
// @Summary  List events
// @Tags     events
// @Produce  json
// @Success  200 {array} domain.Event
// @Router   /api/events [get]
func (h *EventHandler) List(c echo.Context) error {
	events, err := h.svc.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, events)
}

// Get returns one event.
//
// @Summary  Get event
// @Tags     events
// @Produce  json
// @Param    id  path  string  true  "Event id"
// @Success  200 {object} domain.Event
// @Failure  404 {object} ErrorResponse
// @Router   /api/events/{id} [get]
func (h *EventHandler) Get(c echo.Context) error {
	ev, err := h.svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ev)
}

// Create adds an event.
//
// @Summary   Create event
// @Tags      events
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     body  body  ports.EventInput  true  "Event"
// @Success   201 {object} domain.Event
// @Failure   400 {object} ErrorResponse
// @Failure   403 {object} ErrorResponse
// @Router    /api/events [post]
func (h *EventHandler) Create(c echo.Context) error {
	var in ports.EventInput
	if err := bind(c, &in); err != nil {
		return err
	}
	ev, err := h.svc.Create(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, ev)
}

// Update edits an event.
//
// @Summary   Update event
// @Tags      events
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     id    path  string            true  "Event id"
// @Param     body  body  ports.EventInput  true  "Fields to change"
// @Success   200 {object} domain.Event
// @Failure   400 {object} ErrorResponse
// @Failure   404 {object} ErrorResponse
// @Router    /api/events/{id} [put]
func (h *EventHandler) Update(c echo.Context) error {
	var in ports.EventInput
	if err := bind(c, &in); err != nil {
		return err
	}
	ev, err := h.svc.Update(c.Request().Context(), c.Param("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ev)
}

// Delete removes an event.
//
// @Summary   Delete event
// @Tags      events
// @Security  BearerAuth
// @Param     id  path  string  true  "Event id"
// @Success   204
// @Failure   404 {object} ErrorResponse
// @Router    /api/events/{id} [delete]
func (h *EventHandler) Delete(c echo.Context) error {
	if err := h.svc.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
