package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bellavista/carehome-cms/internal/api/metrics"
	"github.com/bellavista/carehome-cms/internal/core/domain"
	"github.com/bellavista/carehome-cms/internal/core/ports"
)

type UploadHandler struct {
	svc ports.UploadService
}

func NewUploadHandler(svc ports.UploadService) *UploadHandler {
	return &UploadHandler{svc: svc}
}

// Upload stores an image or video, optionally producing a resized variant.
//
// @Summary   Upload media
// @Tags      uploads
// @Accept    multipart/form-data
// @Produce   json
// @Security  BearerAuth
// @Param     file          formData  file    true   "Image or video"
// @Param     process_type  formData  string  false  "none, resize_crop, resize_gallery or resize_gallery_pad"
// @Success   201 {object} ports.UploadResult
// @Failure   400 {object} ErrorResponse
// @Failure   413 {object} ErrorResponse
// @Router    /api/upload [post]
func (h *UploadHandler) Upload(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		metrics.UploadsTotal.WithLabelValues("unknown", "rejected").Inc()
		if errors.Is(err, http.ErrMissingFile) {
			return domain.NewValidationError("file", "no file provided")
		}
		return domain.NewValidationError("file", "could not read uploaded file")
	}
	data, err := readFormFile(fh)
	if err != nil {
		metrics.UploadsTotal.WithLabelValues("unknown", "rejected").Inc()
		return domain.NewValidationError("file", "could not read uploaded file")
	}

	processType := c.FormValue("process_type")
	if processType == "" {
		processType = ports.ProcessNone
	}

	res, err := h.svc.Upload(c.Request().Context(), ports.UploadInput{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Data:        data,
		ProcessType: processType,
	})
	if err != nil {
		metrics.UploadsTotal.WithLabelValues("unknown", "rejected").Inc()
		return err
	}
	metrics.UploadsTotal.WithLabelValues(res.Kind, "ok").Inc()
	return c.JSON(http.StatusCreated, res)
}
