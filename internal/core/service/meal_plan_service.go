package service

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bellavista/carehome-cms/internal/core/domain"
	"github.com/bellavista/carehome-cms/internal/core/ports"
	"github.com/bellavista/carehome-cms/internal/pkg/sanitize"
)

const dateLayout = "2006-01-02"

// MealPlanService manages each home's weekly menu.
type MealPlanService struct {
	repo  ports.MealPlanRepository
	homes ports.HomeRepository
	audit *AuditLog
	log   zerolog.Logger
	now   func() time.Time
}

func NewMealPlanService(repo ports.MealPlanRepository, homes ports.HomeRepository, audit *AuditLog, log zerolog.Logger) *MealPlanService {
	return &MealPlanService{repo: repo, homes: homes, audit: audit, log: log, now: time.Now}
}

func (s *MealPlanService) WithClock(now func() time.Time) *MealPlanService {
	s.now = now
	return s
}

// List returns a home's active plans ordered by weekday, then display order.
func (s *MealPlanService) List(ctx context.Context, filter domain.MealPlanFilter) ([]domain.MealPlan, error) {
	if err := s.requireHome(ctx, filter.HomeID); err != nil {
		return nil, err
	}
	plans, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(plans, func(a, b domain.MealPlan) int {
		if d := slices.Index(domain.WeekDays, a.DayOfWeek) - slices.Index(domain.WeekDays, b.DayOfWeek); d != 0 {
			return d
		}
		if a.Order != b.Order {
			return a.Order - b.Order
		}
		return slices.Index(domain.MealTypes, a.MealType) - slices.Index(domain.MealTypes, b.MealType)
	})
	return plans, nil
}

// GroupByDay buckets plans under their weekday.
func GroupByDay(plans []domain.MealPlan) map[string][]domain.MealPlan {
	out := make(map[string][]domain.MealPlan)
	for _, p := range plans {
		out[p.DayOfWeek] = append(out[p.DayOfWeek], p)
	}
	return out
}

func (s *MealPlanService) Get(ctx context.Context, id string) (*domain.MealPlan, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *MealPlanService) Create(ctx context.Context, in ports.MealPlanInput) (*domain.MealPlan, error) {
	plan, err := s.newPlan(ctx, in, "")
	if err != nil {
		return nil, err
	}
	if err := s.requireHome(ctx, plan.HomeID); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, plan); err != nil {
		s.audit.LogAction(ctx, actionCreate, "meal_plan", plan.ID, nil, false)
		return nil, fmt.Errorf("create meal plan: %w", err)
	}
	s.audit.LogAction(ctx, actionCreate, "meal_plan", plan.ID, changedFields(in), true)
	return plan, nil
}

// BulkCreate stores several plans for one home. Every entry is validated
// before anything is written and the insert is all-or-nothing.
func (s *MealPlanService) BulkCreate(ctx context.Context, homeID string, in []ports.MealPlanInput) ([]domain.MealPlan, error) {
	homeID = sanitize.Text(homeID)
	if len(in) == 0 {
		return nil, domain.NewValidationError("meals", "at least one meal is required")
	}
	if err := s.requireHome(ctx, homeID); err != nil {
		return nil, err
	}

	plans := make([]domain.MealPlan, 0, len(in))
	v := &domain.ValidationError{}
	for i, item := range in {
		plan, err := s.newPlan(ctx, item, homeID)
		if err != nil {
			prefixFields(v, err, "meals["+strconv.Itoa(i)+"].")
			continue
		}
		plans = append(plans, *plan)
	}
	if err := v.OrNil(); err != nil {
		return nil, err
	}

	if err := s.repo.CreateMany(ctx, plans); err != nil {
		s.audit.LogAction(ctx, actionCreate, "meal_plan", homeID, map[string]any{"bulk": len(plans)}, false)
		return nil, fmt.Errorf("bulk create meal plans: %w", err)
	}
	s.audit.LogAction(ctx, actionCreate, "meal_plan", homeID, map[string]any{"bulk": len(plans)}, true)
	return plans, nil
}

func (s *MealPlanService) Update(ctx context.Context, id string, in ports.MealPlanInput) (*domain.MealPlan, error) {
	if in.HomeID != nil {
		if err := s.requireHome(ctx, sanitize.Text(*in.HomeID)); err != nil {
			return nil, err
		}
	}

	plan, err := s.repo.Update(ctx, id, func(p *domain.MealPlan) error {
		v := &domain.ValidationError{}
		if in.MealName != nil && sanitize.Text(*in.MealName) == "" {
			v.Add("mealName", "must not be empty")
		}
		checkMealFields(v, in)
		if err := v.OrNil(); err != nil {
			return err
		}
		applyMealPlan(p, in)
		p.UpdatedAt = s.now().UTC()
		return nil
	})
	if err != nil {
		s.audit.LogAction(ctx, actionUpdate, "meal_plan", id, nil, false)
		return nil, err
	}
	s.audit.LogAction(ctx, actionUpdate, "meal_plan", id, changedFields(in), true)
	return plan, nil
}

// Delete deactivates a plan; past menus stay on record.
func (s *MealPlanService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Deactivate(ctx, id); err != nil {
		s.audit.LogAction(ctx, actionDelete, "meal_plan", id, nil, false)
		return err
	}
	s.audit.LogAction(ctx, actionDelete, "meal_plan", id, nil, true)
	return nil
}

// CopyWeek duplicates the date-specific plans of one week into another,
// keeping each plan's offset from the week start. A plan whose target day
// already has the same meal type and name is skipped.
func (s *MealPlanService) CopyWeek(ctx context.Context, in ports.CopyWeekInput) (*domain.CopyWeekResult, error) {
	homeID := sanitize.Text(in.HomeID)
	src, err := time.Parse(dateLayout, strings.TrimSpace(in.SourceWeekStart))
	if err != nil {
		return nil, domain.NewValidationError("sourceWeekStart", "must be YYYY-MM-DD")
	}
	dst := src.AddDate(0, 0, 7)
	if t := strings.TrimSpace(in.TargetWeekStart); t != "" {
		if dst, err = time.Parse(dateLayout, t); err != nil {
			return nil, domain.NewValidationError("targetWeekStart", "must be YYYY-MM-DD")
		}
	}
	if err := s.requireHome(ctx, homeID); err != nil {
		return nil, err
	}

	plans, err := s.repo.List(ctx, domain.MealPlanFilter{HomeID: homeID})
	if err != nil {
		return nil, err
	}

	type slot struct{ date, mealType, name string }
	taken := make(map[slot]bool, len(plans))
	for _, p := range plans {
		if p.EffectiveDate != nil {
			taken[slot{*p.EffectiveDate, p.MealType, p.MealName}] = true
		}
	}

	res := &domain.CopyWeekResult{}
	srcEnd := src.AddDate(0, 0, 6)
	actor := domain.RequestMetaFrom(ctx).Actor
	now := s.now().UTC()
	var copies []domain.MealPlan
	for _, p := range plans {
		if p.EffectiveDate == nil {
			continue
		}
		day, err := time.Parse(dateLayout, *p.EffectiveDate)
		if err != nil || day.Before(src) || day.After(srcEnd) {
			continue
		}

		target := dst.AddDate(0, 0, int(day.Sub(src).Hours()/24)).Format(dateLayout)
		key := slot{target, p.MealType, p.MealName}
		if taken[key] {
			res.Skipped++
			continue
		}
		taken[key] = true

		cp := p
		cp.ID = uuid.NewString()
		cp.EffectiveDate = &target
		cp.IsActive = true
		cp.CreatedBy = actor
		cp.CreatedAt = now
		cp.UpdatedAt = now
		copies = append(copies, cp)
	}

	if len(copies) > 0 {
		if err := s.repo.CreateMany(ctx, copies); err != nil {
			s.audit.LogAction(ctx, actionCreate, "meal_plan", homeID, nil, false)
			return nil, fmt.Errorf("copy week: %w", err)
		}
	}
	res.Created = len(copies)
	s.audit.LogAction(ctx, actionCreate, "meal_plan", homeID, map[string]any{
		"copyWeek": map[string]any{"source": src.Format(dateLayout), "target": dst.Format(dateLayout)},
		"created":  res.Created,
		"skipped":  res.Skipped,
	}, true)
	return res, nil
}

func (s *MealPlanService) requireHome(ctx context.Context, homeID string) error {
	if homeID == "" {
		return domain.NewValidationError("homeId", "is required")
	}
	ok, err := s.homes.Exists(ctx, homeID)
	if err != nil {
		return fmt.Errorf("check home: %w", err)
	}
	if !ok {
		return domain.ErrHomeNotFound
	}
	return nil
}

// newPlan validates a create request. A non-empty homeID overrides the one
// in the input.
func (s *MealPlanService) newPlan(ctx context.Context, in ports.MealPlanInput, homeID string) (*domain.MealPlan, error) {
	if homeID != "" {
		in.HomeID = &homeID
	}
	v := &domain.ValidationError{}
	requireText(v, "homeId", in.HomeID)
	requireText(v, "dayOfWeek", in.DayOfWeek)
	requireText(v, "mealType", in.MealType)
	requireText(v, "mealName", in.MealName)
	checkMealFields(v, in)
	if err := v.OrNil(); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	plan := &domain.MealPlan{
		ID:              uuid.NewString(),
		Ingredients:     []string{},
		AllergyInfo:     []string{},
		Tags:            []string{},
		NutritionalInfo: json.RawMessage("{}"),
		IsActive:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	applyMealPlan(plan, in)
	plan.CreatedBy = domain.RequestMetaFrom(ctx).Actor
	return plan, nil
}

func checkMealFields(v *domain.ValidationError, in ports.MealPlanInput) {
	if in.DayOfWeek != nil && *in.DayOfWeek != "" && !slices.Contains(domain.WeekDays, *in.DayOfWeek) {
		v.Add("dayOfWeek", "must be a day from Monday to Sunday")
	}
	if in.MealType != nil && *in.MealType != "" && !slices.Contains(domain.MealTypes, *in.MealType) {
		v.Add("mealType", "must be one of "+strings.Join(domain.MealTypes, ", "))
	}
	if in.EffectiveDate != nil && *in.EffectiveDate != "" {
		if _, err := time.Parse(dateLayout, *in.EffectiveDate); err != nil {
			v.Add("effectiveDate", "must be YYYY-MM-DD")
		}
	}
	if in.NutritionalInfo != nil && len(*in.NutritionalInfo) > 0 && !json.Valid(*in.NutritionalInfo) {
		v.Add("nutritionalInfo", "must be valid JSON")
	}
}

func applyMealPlan(p *domain.MealPlan, in ports.MealPlanInput) {
	setText(&p.HomeID, in.HomeID)
	setText(&p.DayOfWeek, in.DayOfWeek)
	setText(&p.MealType, in.MealType)
	setText(&p.MealName, in.MealName)
	setText(&p.Description, in.Description)
	setList(&p.Ingredients, in.Ingredients)
	setList(&p.AllergyInfo, in.AllergyInfo)
	setText(&p.ImageURL, in.ImageURL)
	setList(&p.Tags, in.Tags)
	setBool(&p.IsSpecialMenu, in.IsSpecialMenu)
	setBool(&p.IsActive, in.IsActive)
	setInt(&p.Order, in.Order)
	if in.NutritionalInfo != nil && len(*in.NutritionalInfo) > 0 {
		p.NutritionalInfo = *in.NutritionalInfo
	}
	if in.EffectiveDate != nil {
		if d := strings.TrimSpace(*in.EffectiveDate); d != "" {
			p.EffectiveDate = &d
		} else {
			p.EffectiveDate = nil
		}
	}
}

// prefixFields copies a validation error's fields into v under prefix.
func prefixFields(v *domain.ValidationError, err error, prefix string) {
	if ve, ok := err.(*domain.ValidationError); ok {
		for _, f := range ve.Fields {
			v.Add(prefix+f.Field, f.Message)
		}
		return
	}
	v.Add(strings.TrimSuffix(prefix, "."), err.Error())
}
