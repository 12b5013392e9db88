package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/bellavista/carehome-cms/internal/core/domain"
)

// AuditReader lists recorded audit entries.
type AuditReader interface {
	Recent(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditEntry, error)
}

type AuditHandler struct {
	audit AuditReader
}

func NewAuditHandler(audit AuditReader) *AuditHandler {
	return &AuditHandler{audit: audit}
}

// List returns the newest audit entries.
//
// @Summary   List audit log
// @Tags      audit
// @Produce   json
// @Security  BearerAuth
// @Param     limit          query  int     false  "Maximum entries (default 100, max 1000)"
// @Param     action         query  string  false  "Action filter"
// @Param     resource_type  query  string  false  "Resource type filter"
// @Success   200 {array} domain.AuditEntry
// @Failure   400 {object} ErrorResponse
// @Failure   403 {object} ErrorResponse
// @Router    /api/audit-log [get]
func (h *AuditHandler) List(c echo.Context) error {
	filter := domain.AuditFilter{
		Action:       c.QueryParam("action"),
		ResourceType: c.QueryParam("resource_type"),
	}
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return domain.NewValidationError("limit", "must be a positive integer")
		}
		filter.Limit = n
	}

	entries, err := h.audit.Recent(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	if entries == nil {
		entries = []domain.AuditEntry{}
	}
	return c.JSON(http.StatusOK, entries)
}
