package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/bellavista/carehome-cms/internal/core/domain"
	"github.com/bellavista/carehome-cms/internal/core/ports"
)

// MealGrouper buckets plans by weekday.
type MealGrouper func([]domain.MealPlan) map[string][]domain.MealPlan

type MealPlanHandler struct {
	svc   ports.MealPlanService
	group MealGrouper
}

func NewMealPlanHandler(svc ports.MealPlanService, group MealGrouper) *MealPlanHandler {
	return &MealPlanHandler{svc: svc, group: group}
}

// List returns a home's active menu.
//
// @Summary  List meal plans
// @Tags     meal-plans
// @Produce  json
// @Param    homeId      path   string  true   "Home id"
// @Param    dayOfWeek   query  string  false  "Monday..Sunday"
// @Param    mealType    query  string  false  "Breakfast, Lunch, Dinner, Snack or Dessert"
// @Param    groupByDay  query  bool    false  "Group plans by weekday"
// @Success  200 {object} mealPlanListResponse
// @Failure  404 {object} ErrorResponse
// @Router   /api/meal-plans/{homeId} [get]
func (h *MealPlanHandler) List(c echo.Context) error {
	homeID := c.Param("homeId")
	plans, err := h.svc.List(c.Request().Context(), domain.MealPlanFilter{
		HomeID:    homeID,
		DayOfWeek: c.QueryParam("dayOfWeek"),
		MealType:  c.QueryParam("mealType"),
	})
	if err != nil {
		return err
	}

	resp := mealPlanListResponse{HomeID: homeID}
	if grouped, _ := strconv.ParseBool(c.QueryParam("groupByDay")); grouped && h.group != nil {
		resp.ByDay = h.group(plans)
	} else {
		resp.Meals = plans
		if resp.Meals == nil {
			resp.Meals = []domain.MealPlan{}
		}
	}
	return c.JSON(http.StatusOK, resp)
}

// Create adds a menu entry.
//
// @Summary   Create meal plan
// @Tags      meal-plans
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     body  body  ports.MealPlanInput  true  "Meal"
// @Success   201 {object} domain.MealPlan
// @Failure   400 {object} ErrorResponse
// @Failure   403 {object} ErrorResponse
// @Failure   404 {object} ErrorResponse
// @Router    /api/meal-plans [post]
func (h *MealPlanHandler) Create(c echo.Context) error {
	var in ports.MealPlanInput
	if err := bind(c, &in); err != nil {
		return err
	}
	plan, err := h.svc.Create(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, plan)
}

// BulkCreate adds several menu entries in one transaction.
//
// @Summary   Bulk create meal plans
// @Tags      meal-plans
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     body  body  mealBulkRequest  true  "Meals"
// @Success   201 {array} domain.MealPlan
// @Failure   400 {object} ErrorResponse
// @Failure   403 {object} ErrorResponse
// @Router    /api/meal-plans/bulk [post]
func (h *MealPlanHandler) BulkCreate(c echo.Context) error {
	var req mealBulkRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	plans, err := h.svc.BulkCreate(c.Request().Context(), req.HomeID, req.Meals)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, plans)
}

// Update edits a menu entry.
//
// @Summary   Update meal plan
// @Tags      meal-plans
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     id    path  string               true  "Meal plan id"
// @Param     body  body  ports.MealPlanInput  true  "Fields to change"
// @Success   200 {object} domain.MealPlan
// @Failure   403 {object} ErrorResponse
// @Failure   404 {object} ErrorResponse
// @Router    /api/meal-plans/{id} [put]
func (h *MealPlanHandler) Update(c echo.Context) error {
	var in ports.MealPlanInput
	if err := bind(c, &in); err != nil {
		return err
	}
	plan, err := h.svc.Update(c.Request().Context(), c.Param("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, plan)
}

// Delete deactivates a menu entry.
//
// @Summary   Delete meal plan
// @Tags      meal-plans
// @Security  BearerAuth
// @Param     id  path  string  true  "Meal plan id"
// @Success   204
// @Failure   403 {object} ErrorResponse
// @Failure   404 {object} ErrorResponse
// @Router    /api/meal-plans/{id} [delete]
func (h *MealPlanHandler) Delete(c echo.Context) error {
	if err := h.svc.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// CopyWeek duplicates a week's date-specific menu into another week.
//
// @Summary   Copy a week of meal plans
// @Tags      meal-plans
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     body  body  ports.CopyWeekInput  true  "Weeks to copy"
// @Success   200 {object} domain.CopyWeekResult
// @Failure   400 {object} ErrorResponse
// @Failure   403 {object} ErrorResponse
// @Router    /api/meal-plans/copy-week [post]
func (h *MealPlanHandler) CopyWeek(c echo.Context) error {
	var in ports.CopyWeekInput
	if err := bind(c, &in); err != nil {
		return err
	}
	res, err := h.svc.CopyWeek(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}
