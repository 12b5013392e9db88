package handler

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/bellavista/carehome-cms/internal/core/domain"
	"github.com/bellavista/carehome-cms/internal/core/ports"
)

type VacancyHandler struct {
	svc     ports.VacancyService
	uploads ports.UploadService
}

func NewVacancyHandler(svc ports.VacancyService, uploads ports.UploadService) *VacancyHandler {
	return &VacancyHandler{svc: svc, uploads: uploads}
}

// List returns all vacancies.
//
// @Summary  List vacancies
// @Tags     vacancies
// @Produce  json
// @Success  200 {array} domain.Vacancy
// @Router   /api/vacancies [get]
func (h *VacancyHandler) List(c echo.Context) error {
	list, err := h.svc.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

// Get returns one vacancy.
//
// @Summary  Get vacancy
// @Tags     vacancies
// @Produce  json
// @Param    id  path  string  true  "Vacancy id"
// @Success  200 {object} domain.Vacancy
// @Failure  404 {object} ErrorResponse
// @Router   /api/vacancies/{id} [get]
func (h *VacancyHandler) Get(c echo.Context) error {
	v, err := h.svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, v)
}

// Create adds a vacancy.
//
// @Summary   Create vacancy
// @Tags      vacancies
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     body  body  ports.VacancyInput  true  "Vacancy"
// @Success   201 {object} domain.Vacancy
// @Failure   400 {object} ErrorResponse
// @Router    /api/vacancies [post]
func (h *VacancyHandler) Create(c echo.Context) error {
	var in ports.VacancyInput
	if err := bind(c, &in); err != nil {
		return err
	}
	v, err := h.svc.Create(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, v)
}

// Update edits a vacancy.
//
// @Summary   Update vacancy
// @Tags      vacancies
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     id    path  string              true  "Vacancy id"
// @Param     body  body  ports.VacancyInput  true  "Fields to change"
// @Success   200 {object} domain.Vacancy
// @Failure   404 {object} ErrorResponse
// @Router    /api/vacancies/{id} [put]
func (h *VacancyHandler) Update(c echo.Context) error {
	var in ports.VacancyInput
	if err := bind(c, &in); err != nil {
		return err
	}
	v, err := h.svc.Update(c.Request().Context(), c.Param("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, v)
}

// Delete removes a vacancy.
//
// @Summary   Delete vacancy
// @Tags      vacancies
// @Security  BearerAuth
// @Param     id  path  string  true  "Vacancy id"
// @Success   204
// @Failure   404 {object} ErrorResponse
// @Router    /api/vacancies/{id} [delete]
func (h *VacancyHandler) Delete(c echo.Context) error {
	if err := h.svc.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Apply records a job application. Multipart requests may attach a CV in
// the "cv" field.
//
// @Summary  Apply for a vacancy
// @Tags     vacancies
// @Accept   multipart/form-data
// @Accept   json
// @Produce  json
// @Param    firstName         formData  string  true   "First name"
// @Param    lastName          formData  string  true   "Last name"
// @Param    email             formData  string  true   "Email"
// @Param    vacancyId         formData  string  false  "Vacancy id"
// @Param    jobRole           formData  string  false  "Role applied for"
// @Param    privacyConsent    formData  bool    true   "Privacy consent"
// @Param    marketingConsent  formData  bool    false  "Marketing consent"
// @Param    cv                formData  file    false  "CV (pdf, doc, docx)"
// @Success  201 {object} domain.JobApplication
// @Failure  400 {object} ErrorResponse
// @Failure  429 {object} ErrorResponse
// @Router   /api/apply [post]
func (h *VacancyHandler) Apply(c echo.Context) error {
	var in ports.ApplicationInput
	if err := bind(c, &in); err != nil {
		return err
	}

	if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		fh, err := c.FormFile("cv")
		switch {
		case errors.Is(err, http.ErrMissingFile):
		case err != nil:
			return domain.NewValidationError("cv", "could not read uploaded file")
		default:
			res, err := h.storeCV(c, fh)
			if err != nil {
				return err
			}
			in.CVURL = res.URL
		}
	}

	app, err := h.svc.Apply(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, app)
}

func (h *VacancyHandler) storeCV(c echo.Context, fh *multipart.FileHeader) (*ports.UploadResult, error) {
	data, err := readFormFile(fh)
	if err != nil {
		return nil, domain.NewValidationError("cv", "could not read uploaded file")
	}
	return h.uploads.Upload(c.Request().Context(), ports.UploadInput{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Data:        data,
		ProcessType: ports.ProcessNone,
		Prefix:      "cv/",
		Documents:   true,
	})
}

// ListApplications returns every application received.
//
// @Summary   List applications
// @Tags      vacancies
// @Produce   json
// @Security  BearerAuth
// @Success   200 {array} domain.JobApplication
// @Router    /api/applications [get]
func (h *VacancyHandler) ListApplications(c echo.Context) error {
	list, err := h.svc.ListApplications(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

func readFormFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
