package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/bellavista/carehome-cms/internal/core/domain"
)

// ReviewRepository implements ports.ReviewRepository. Delete is soft: gorm
// sets deleted_at and hides the row from every scoped query.
type ReviewRepository struct {
	store crudStore[domain.Review]
}

func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{newCRUD[domain.Review](db, "review", domain.ErrReviewNotFound)}
}

func (r *ReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	return r.store.Create(ctx, review)
}

func (r *ReviewRepository) FindByID(ctx context.Context, id string) (*domain.Review, error) {
	return r.store.FindByID(ctx, id)
}

func (r *ReviewRepository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, id)
}

func (r *ReviewRepository) List(ctx context.Context, location string) ([]domain.Review, error) {
	return list[domain.Review](ctx, r.store.db, "reviews", "created_at DESC", func(q *gorm.DB) *gorm.DB {
		if location != "" {
			q = q.Where("location = ?", location)
		}
		return q
	})
}

func (r *ReviewRepository) ExistsByAuthorText(ctx context.Context, name, text string) (bool, error) {
	var n int64
	err := r.store.db.WithContext(ctx).Unscoped().Model(&domain.Review{}).
		Where("name = ? AND review_text = ?", name, text).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("review exists: %w", err)
	}
	return n > 0, nil
}
