package gorm

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/pastaboard/pastaboard/internal/domain/recipe"
	"github.com/pastaboard/pastaboard/internal/ports/outbound"
)

// EntryRepository implements the record store interface using GORM
type EntryRepository struct {
	db *gorm.DB
}

// NewEntryRepository creates a new entry repository
func NewEntryRepository(db *gorm.DB) *EntryRepository {
	return &EntryRepository{db: db}
}

var _ outbound.EntryRepository = (*EntryRepository)(nil)

// Append inserts a new row; rows are never updated
func (r *EntryRepository) Append(ctx context.Context, entry *recipe.Entry) error {
	model := EntryToModel(entry)

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("gorm: append entry: %w", err)
	}
	return nil
}

// FindByFilename returns the earliest row stored under filename
func (r *EntryRepository) FindByFilename(ctx context.Context, filename string) (*recipe.Entry, error) {
	var model EntryModel

	result := r.db.WithContext(ctx).
		Where("filename = ?", filename).
		Order("id ASC").
		First(&model)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, recipe.ErrEntryNotFound
		}
		return nil, fmt.Errorf("gorm: find entry: %w", result.Error)
	}

	return ModelToEntry(&model), nil
}

// Count returns the number of stored rows
func (r *EntryRepository) Count(ctx context.Context) (int, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&EntryModel{}).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("gorm: count entries: %w", err)
	}
	return int(total), nil
}

// Close closes the underlying connection pool
func (r *EntryRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
