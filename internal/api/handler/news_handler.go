package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bellavista/carehome-cms/internal/core/ports"
)

type NewsHandler struct {
	news ports.NewsService
	faqs ports.FAQService
}

func NewNewsHandler(news ports.NewsService, faqs ports.FAQService) *NewsHandler {
	return &NewsHandler{news: news, faqs: faqs}
}

// List returns all news items, newest first.
//
// @Summary  List news
// @Tags     news
// @Produce  json
// @Success  200 {array} domain.NewsItem
// @Router   /api/news [get]
func (h *NewsHandler) List(c echo.Context) error {
	items, err := h.news.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

// Get returns one news item.
//
// @Summary  Get news item
// @Tags     news
// @Produce  json
// @Param    id  path  string  true  "News id"
// @Success  200 {object} domain.NewsItem
// @Failure  404 {object} ErrorResponse
// @Router   /api/news/{id} [get]
func (h *NewsHandler) Get(c echo.Context) error {
	item, err := h.news.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, item)
}

// Create publishes a news item.
//
// @Summary   Create news item
// @Tags      news
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     body  body  ports.NewsInput  true  "Article"
// @Success   201 {object} domain.NewsItem
// @Failure   400 {object} ErrorResponse
// @Failure   403 {object} ErrorResponse
// @Router    /api/news [post]
func (h *NewsHandler) Create(c echo.Context) error {
	var in ports.NewsInput
	if err := bind(c, &in); err != nil {
		return err
	}
	item, err := h.news.Create(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, item)
}

// Update edits a news item.
//
// @Summary   Update news item
// @Tags      news
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     id    path  string           true  "News id"
// @Param     body  body  ports.NewsInput  true  "Fields to change"
// @Success   200 {object} domain.NewsItem
// @Failure   400 {object} ErrorResponse
// @Failure   404 {object} ErrorResponse
// @Router    /api/news/{id} [put]
func (h *NewsHandler) Update(c echo.Context) error {
	var in ports.NewsInput
	if err := bind(c, &in); err != nil {
		return err
	}
	item, err := h.news.Update(c.Request().Context(), c.Param("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, item)
}

// Delete removes a news item.
//
// @Summary   Delete news item
// @Tags      news
// @Security  BearerAuth
// @Param     id  path  string  true  "News id"
// @Success   204
// @Failure   404 {object} ErrorResponse
// @Router    /api/news/{id} [delete]
func (h *NewsHandler) Delete(c echo.Context) error {
	if err := h.news.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ListFAQs returns the FAQ in display order.
//
// @Summary  List FAQs
// @Tags     faqs
// @Produce  json
// @Success  200 {array} domain.FAQ
// @Router   /api/faqs [get]
func (h *NewsHandler) ListFAQs(c echo.Context) error {
	faqs, err := h.faqs.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, faqs)
}

// CreateFAQ adds a question.
//
// @Summary   Create FAQ
// @Tags      faqs
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     body  body  ports.FAQInput  true  "Question and answer"
// @Success   201 {object} domain.FAQ
// @Failure   400 {object} ErrorResponse
// @Router    /api/faqs [post]
func (h *NewsHandler) CreateFAQ(c echo.Context) error {
	var in ports.FAQInput
	if err := bind(c, &in); err != nil {
		return err
	}
	faq, err := h.faqs.Create(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, faq)
}

// DeleteFAQ removes a question.
//
// @Summary   Delete FAQ
// @Tags      faqs
// @Security  BearerAuth
// @Param     id  path  string  true  "FAQ id"
// @Success   204
// @Failure   404 {object} ErrorResponse
// @Router    /api/faqs/{id} [delete]
func (h *NewsHandler) DeleteFAQ(c echo.Context) error {
	if err := h.faqs.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
