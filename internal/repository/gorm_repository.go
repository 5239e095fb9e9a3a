package repository

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"gorm.io/gorm"
)

// GormRepository provides a generic implementation of Repository over a
// gorm model type M whose primary key column is "id".
type GormRepository[M any, ID comparable] struct {
	db     *gorm.DB
	entity string
}

// NewGormRepository creates a new generic repository
func NewGormRepository[M any, ID comparable](db *gorm.DB) *GormRepository[M, ID] {
	var zero M
	return &GormRepository[M, ID]{
		db:     db,
		entity: reflect.TypeOf(zero).Name(),
	}
}

// Save inserts the model when its primary key is zero, otherwise updates every column
func (r *GormRepository[M, ID]) Save(ctx context.Context, model M) (M, error) {
	if err := r.db.WithContext(ctx).Save(&model).Error; err != nil {
		var zero M
		return zero, fmt.Errorf("failed to save %s: %w", r.entity, translateError(err))
	}
	return model, nil
}

// FindByID retrieves a model by its ID
func (r *GormRepository[M, ID]) FindByID(ctx context.Context, id ID) (M, error) {
	var model M
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&model).Error
	if err != nil {
		if isNotFoundError(err) {
			return model, fmt.Errorf("%s with ID %v: %w", r.entity, id, ErrNotFound)
		}
		return model, fmt.Errorf("failed to find %s: %w", r.entity, err)
	}
	return model, nil
}

// FindOne retrieves the first model matching the condition
func (r *GormRepository[M, ID]) FindOne(ctx context.Context, query string, args ...interface{}) (M, error) {
	var model M
	err := r.db.WithContext(ctx).Where(query, args...).Order("id ASC").Take(&model).Error
	if err != nil {
		if isNotFoundError(err) {
			return model, fmt.Errorf("%s where %s: %w", r.entity, query, ErrNotFound)
		}
		return model, fmt.Errorf("failed to find %s: %w", r.entity, err)
	}
	return model, nil
}

// FindAll retrieves all models ordered by ID
func (r *GormRepository[M, ID]) FindAll(ctx context.Context) ([]M, error) {
	models := make([]M, 0)
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", r.entity, err)
	}
	return models, nil
}

// FindWhere retrieves all models matching the condition ordered by ID
func (r *GormRepository[M, ID]) FindWhere(ctx context.Context, query string, args ...interface{}) ([]M, error) {
	models := make([]M, 0)
	if err := r.db.WithContext(ctx).Where(query, args...).Order("id ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", r.entity, err)
	}
	return models, nil
}

// DeleteByID removes a model by its ID. A missing row is not an error.
func (r *GormRepository[M, ID]) DeleteByID(ctx context.Context, id ID) error {
	var model M
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model).Error; err != nil {
		return fmt.Errorf("failed to delete %s: %w", r.entity, err)
	}
	return nil
}

// ExistsByID checks if a model exists by its ID
func (r *GormRepository[M, ID]) ExistsByID(ctx context.Context, id ID) (bool, error) {
	var count int64
	var model M
	if err := r.db.WithContext(ctx).Model(&model).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check %s existence: %w", r.entity, err)
	}
	return count > 0, nil
}

// Count returns the number of stored models
func (r *GormRepository[M, ID]) Count(ctx context.Context) (int64, error) {
	var count int64
	var model M
	if err := r.db.WithContext(ctx).Model(&model).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", r.entity, err)
	}
	return count, nil
}

// DB returns the underlying gorm handle (useful for specific implementations)
func (r *GormRepository[M, ID]) DB() *gorm.DB {
	return r.db
}

// Helper function to check if an error is a "not found" error from the ORM
func isNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// translateError maps unique constraint violations to ErrDuplicate.
// Dialects that implement gorm's error translation report ErrDuplicatedKey;
// the message checks cover drivers that do not.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	msg := err.Error()
	if strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value violates unique constraint") {
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return err
}
