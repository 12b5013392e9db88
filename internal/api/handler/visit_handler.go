package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bellavista/carehome-cms/internal/core/ports"
)

type VisitHandler struct {
	svc ports.VisitService
}

func NewVisitHandler(svc ports.VisitService) *VisitHandler {
	return &VisitHandler{svc: svc}
}

// RequestTour books a tour of a home.
//
// @Summary  Request a tour
// @Tags     visits
// @Accept   json
// @Produce  json
// @Param    body  body  ports.TourInput  true  "Tour request"
// @Success  201 {object} domain.ScheduledTour
// @Failure  400 {object} ErrorResponse
// @Failure  429 {object} ErrorResponse
// @Router   /api/scheduled-tours [post]
func (h *VisitHandler) RequestTour(c echo.Context) error {
	var in ports.TourInput
	if err := bind(c, &in); err != nil {
		return err
	}
	tour, err := h.svc.RequestTour(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, tour)
}

// ListTours returns every tour request.
//
// @Summary   List tours
// @Tags      visits
// @Produce   json
// @Security  BearerAuth
// @Success   200 {array} domain.ScheduledTour
// @Router    /api/scheduled-tours [get]
func (h *VisitHandler) ListTours(c echo.Context) error {
	tours, err := h.svc.ListTours(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tours)
}

// UpdateTourStatus moves a tour to a new status.
//
// @Summary   Update tour status
// @Tags      visits
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     id    path  string             true  "Tour id"
// @Param     body  body  tourStatusRequest  true  "New status"
// @Success   200 {object} domain.ScheduledTour
// @Failure   400 {object} ErrorResponse
// @Failure   404 {object} ErrorResponse
// @Router    /api/scheduled-tours/{id} [put]
func (h *VisitHandler) UpdateTourStatus(c echo.Context) error {
	var req tourStatusRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	tour, err := h.svc.UpdateTourStatus(c.Request().Context(), c.Param("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tour)
}

// SubmitEnquiry records a care enquiry.
//
// @Summary  Submit a care enquiry
// @Tags     visits
// @Accept   json
// @Produce  json
// @Param    body  body  ports.EnquiryInput  true  "Enquiry"
// @Success  201 {object} domain.CareEnquiry
// @Failure  400 {object} ErrorResponse
// @Failure  429 {object} ErrorResponse
// @Router   /api/care-enquiries [post]
func (h *VisitHandler) SubmitEnquiry(c echo.Context) error {
	var in ports.EnquiryInput
	if err := bind(c, &in); err != nil {
		return err
	}
	enq, err := h.svc.SubmitEnquiry(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, enq)
}

// ListEnquiries returns every care enquiry.
//
// @Summary   List enquiries
// @Tags      visits
// @Produce   json
// @Security  BearerAuth
// @Success   200 {array} domain.CareEnquiry
// @Router    /api/care-enquiries [get]
func (h *VisitHandler) ListEnquiries(c echo.Context) error {
	list, err := h.svc.ListEnquiries(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}
