package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bellavista/carehome-cms/internal/core/ports"
)

type HomeHandler struct {
	svc ports.HomeService
}

func NewHomeHandler(svc ports.HomeService) *HomeHandler {
	return &HomeHandler{svc: svc}
}

// List returns every home page.
//
// @Summary  List homes
// @Tags     homes
// @Produce  json
// @Success  200 {array} domain.Home
// @Router   /api/homes [get]
func (h *HomeHandler) List(c echo.Context) error {
	homes, err := h.svc.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, homes)
}

// Get returns one home page.
//
// @Summary  Get home
// @Tags     homes
// @Produce  json
// @Param    id  path  string  true  "Home id"
// @Success  200 {object} domain.Home
// @Failure  404 {object} ErrorResponse
// @Router   /api/homes/{id} [get]
func (h *HomeHandler) Get(c echo.Context) error {
	home, err := h.svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, home)
}

// Create adds a home.
//
// @Summary   Create home
// @Tags      homes
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     body  body  ports.HomeInput  true  "Home content"
// @Success   201 {object} domain.Home
// @Failure   400 {object} ErrorResponse
// @Failure   403 {object} ErrorResponse
// @Router    /api/homes [post]
func (h *HomeHandler) Create(c echo.Context) error {
	var in ports.HomeInput
	if err := bind(c, &in); err != nil {
		return err
	}
	home, err := h.svc.Create(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, home)
}

// Update changes the fields present in the body.
//
// @Summary   Update home
// @Tags      homes
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     id    path  string           true  "Home id"
// @Param     body  body  ports.HomeInput  true  "Fields to change"
// @Success   200 {object} domain.Home
// @Failure   400 {object} ErrorResponse
// @Failure   403 {object} ErrorResponse
// @Failure   404 {object} ErrorResponse
// @Router    /api/homes/{id} [put]
func (h *HomeHandler) Update(c echo.Context) error {
	var in ports.HomeInput
	if err := bind(c, &in); err != nil {
		return err
	}
	home, err := h.svc.Update(c.Request().Context(), c.Param("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, home)
}

// Delete removes a home.
//
// @Summary   Delete home
// @Tags      homes
// @Security  BearerAuth
// @Param     id  path  string  true  "Home id"
// @Success   204
// @Failure   403 {object} ErrorResponse
// @Failure   404 {object} ErrorResponse
// @Router    /api/homes/{id} [delete]
func (h *HomeHandler) Delete(c echo.Context) error {
	if err := h.svc.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Backup snapshots the content sections of every home.
//
// @Summary   Back up homes
// @Tags      homes
// @Produce   json
// @Security  BearerAuth
// @Success   201 {object} domain.HomeBackup
// @Router    /api/homes/backup [post]
func (h *HomeHandler) Backup(c echo.Context) error {
	b, err := h.svc.Backup(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, b)
}

// ListBackups returns the stored snapshots, newest first.
//
// @Summary   List home backups
// @Tags      homes
// @Produce   json
// @Security  BearerAuth
// @Success   200 {array} domain.HomeBackup
// @Router    /api/homes/backups [get]
func (h *HomeHandler) ListBackups(c echo.Context) error {
	list, err := h.svc.ListBackups(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

// Restore copies sections back from a snapshot where the snapshot holds
// more items than the live record.
//
// @Summary   Restore homes from a backup
// @Tags      homes
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     body  body  ports.RestoreInput  true  "Backup selection"
// @Success   200 {object} domain.RestoreResult
// @Failure   404 {object} ErrorResponse
// @Router    /api/homes/restore [post]
func (h *HomeHandler) Restore(c echo.Context) error {
	var in ports.RestoreInput
	if err := bind(c, &in); err != nil {
		return err
	}
	res, err := h.svc.Restore(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}
