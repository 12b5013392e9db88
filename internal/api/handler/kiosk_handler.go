package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bellavista/carehome-cms/internal/core/domain"
	"github.com/bellavista/carehome-cms/internal/core/ports"
)

type KioskHandler struct {
	svc   ports.KioskService
	homes ports.HomeService
}

func NewKioskHandler(svc ports.KioskService, homes ports.HomeService) *KioskHandler {
	return &KioskHandler{svc: svc, homes: homes}
}

// CheckIn signs a visitor in.
//
// @Summary  Kiosk check-in
// @Tags     kiosk
// @Accept   json
// @Produce  json
// @Param    body  body  ports.CheckInInput  true  "Visitor"
// @Success  201 {object} domain.KioskCheckIn
// @Failure  400 {object} ErrorResponse
// @Failure  429 {object} ErrorResponse
// @Router   /api/kiosk/check-in [post]
func (h *KioskHandler) CheckIn(c echo.Context) error {
	var in ports.CheckInInput
	if err := bind(c, &in); err != nil {
		return err
	}
	rec, err := h.svc.CheckIn(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, rec)
}

// CheckOut signs a visitor out.
//
// @Summary  Kiosk check-out
// @Tags     kiosk
// @Produce  json
// @Param    id  path  string  true  "Check-in id"
// @Success  200 {object} domain.KioskCheckIn
// @Failure  400 {object} ErrorResponse  "already checked out"
// @Failure  404 {object} ErrorResponse
// @Router   /api/kiosk/check-out/{id} [post]
func (h *KioskHandler) CheckOut(c echo.Context) error {
	rec, err := h.svc.CheckOut(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rec)
}

// List returns check-ins. Home admins only see their own home's visitors,
// matched by home name.
//
// @Summary   List check-ins
// @Tags      kiosk
// @Produce   json
// @Security  BearerAuth
// @Param     location  query  string  false  "Home name (superadmin only)"
// @Param     status    query  string  false  "checked-in or checked-out"
// @Success   200 {array} domain.KioskCheckIn
// @Failure   401 {object} ErrorResponse
// @Router    /api/kiosk/check-ins [get]
func (h *KioskHandler) List(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}
	p, err := claims.Principal()
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	filter := domain.KioskFilter{Location: c.QueryParam("location"), Status: c.QueryParam("status")}
	if admin, ok := p.(domain.HomeAdmin); ok {
		home, err := h.homes.Get(ctx, admin.HomeID)
		if err != nil {
			return err
		}
		filter.Location = home.Name
	}

	list, err := h.svc.List(ctx, filter)
	if err != nil {
		return err
	}
	if list == nil {
		list = []domain.KioskCheckIn{}
	}
	return c.JSON(http.StatusOK, list)
}
