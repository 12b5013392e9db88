package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bellavista/carehome-cms/internal/core/domain"
)

// crudStore implements ports.CRUD for any model keyed by a string "id"
// column. notFound is the entity's sentinel error.
type crudStore[T any] struct {
	db       *gorm.DB
	notFound error
	name     string
}

func newCRUD[T any](db *gorm.DB, name string, notFound error) crudStore[T] {
	return crudStore[T]{db: db, notFound: notFound, name: name}
}

func (s crudStore[T]) Create(ctx context.Context, item *T) error {
	if err := s.db.WithContext(ctx).Create(item).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%s: %w", s.name, domain.ErrAlreadyExists)
		}
		return fmt.Errorf("insert %s: %w", s.name, err)
	}
	return nil
}

func (s crudStore[T]) FindByID(ctx context.Context, id string) (*T, error) {
	return s.find(s.db.WithContext(ctx), id)
}

// Update runs load, fn and save in one transaction. On postgres the row is
// locked for the duration so concurrent partial updates do not interleave.
func (s crudStore[T]) Update(ctx context.Context, id string, fn func(*T) error) (*T, error) {
	var out *T
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx
		if tx.Dialector.Name() == DriverPostgres {
			q = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		item, err := s.find(q, id)
		if err != nil {
			return err
		}
		if err := fn(item); err != nil {
			return err
		}
		if err := tx.Save(item).Error; err != nil {
			return fmt.Errorf("save %s: %w", s.name, err)
		}
		out = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s crudStore[T]) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(new(T), "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("delete %s: %w", s.name, res.Error)
	}
	if res.RowsAffected == 0 {
		return s.notFound
	}
	return nil
}

func (s crudStore[T]) find(db *gorm.DB, id string) (*T, error) {
	item := new(T)
	if err := db.Where("id = ?", id).Take(item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, s.notFound
		}
		return nil, fmt.Errorf("find %s: %w", s.name, err)
	}
	return item, nil
}

// list loads every row of T matching scope, ordered by order.
func list[T any](ctx context.Context, db *gorm.DB, name, order string, scopes ...func(*gorm.DB) *gorm.DB) ([]T, error) {
	out := []T{}
	if err := db.WithContext(ctx).Scopes(scopes...).Order(order).Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list %s: %w", name, err)
	}
	return out, nil
}
