package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/bellavista/carehome-cms/internal/core/domain"
)

const mealBatchSize = 100

// MealPlanRepository implements ports.MealPlanRepository.
type MealPlanRepository struct {
	crudStore[domain.MealPlan]
}

func NewMealPlanRepository(db *gorm.DB) *MealPlanRepository {
	return &MealPlanRepository{newCRUD[domain.MealPlan](db, "meal plan", domain.ErrMealNotFound)}
}

func (r *MealPlanRepository) List(ctx context.Context, f domain.MealPlanFilter) ([]domain.MealPlan, error) {
	return list[domain.MealPlan](ctx, r.db, "meal plans", "sort_order, created_at", func(q *gorm.DB) *gorm.DB {
		q = q.Where("home_id = ? AND is_active = ?", f.HomeID, true)
		if f.DayOfWeek != "" {
			q = q.Where("day_of_week = ?", f.DayOfWeek)
		}
		if f.MealType != "" {
			q = q.Where("meal_type = ?", f.MealType)
		}
		return q
	})
}

// CreateMany inserts plans in batches inside one transaction.
func (r *MealPlanRepository) CreateMany(ctx context.Context, plans []domain.MealPlan) error {
	if len(plans) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(&plans, mealBatchSize).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("meal plans: %w", domain.ErrAlreadyExists)
	}
	if err != nil {
		return fmt.Errorf("insert meal plans: %w", err)
	}
	return nil
}

func (r *MealPlanRepository) Deactivate(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Model(&domain.MealPlan{}).
		Where("id = ? AND is_active = ?", id, true).
		Updates(map[string]any{"is_active": false, "updated_at": r.db.NowFunc()})
	if res.Error != nil {
		return fmt.Errorf("deactivate meal plan: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrMealNotFound
	}
	return nil
}
