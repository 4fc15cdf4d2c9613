package repositories

import (
	"context"
	"errors"
	"fmt"

	"showtrack/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMShowRepository is a GORM implementation of ShowRepository.
type GORMShowRepository struct {
	db *gorm.DB
}

// NewGORMShowRepository creates a new instance of GORMShowRepository.
func NewGORMShowRepository(db *gorm.DB) *GORMShowRepository {
	return &GORMShowRepository{
		db: db,
	}
}

func active(db *gorm.DB) *gorm.DB {
	return db.Where("is_deleted = ?", false)
}

// ListActive retrieves all non-deleted shows ordered by release date.
func (r *GORMShowRepository) ListActive(ctx context.Context) ([]models.Show, error) {
	var shows []models.Show
	err := r.db.WithContext(ctx).
		Scopes(active).
		Order("release_date ASC").
		Order("created_at ASC").
		Find(&shows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list shows: %w", err)
	}
	return shows, nil
}

// GetActive retrieves a single non-deleted show by its ID.
func (r *GORMShowRepository) GetActive(ctx context.Context, id uuid.UUID) (*models.Show, error) {
	var show models.Show
	if err := findActive(r.db.WithContext(ctx), id, &show); err != nil {
		return nil, err
	}
	return &show, nil
}

// Create inserts a new show.
func (r *GORMShowRepository) Create(ctx context.Context, show *models.Show) error {
	show.IsDeleted = false
	if err := r.db.WithContext(ctx).Create(show).Error; err != nil {
		return fmt.Errorf("failed to create show: %w", err)
	}
	return nil
}

// SoftDelete flags an active show as deleted and returns it.
func (r *GORMShowRepository) SoftDelete(ctx context.Context, id uuid.UUID) (*models.Show, error) {
	var show models.Show
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := findActive(tx, id, &show); err != nil {
			return err
		}
		if err := tx.Model(&show).Update("is_deleted", true).Error; err != nil {
			return fmt.Errorf("failed to delete show %s: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	show.IsDeleted = true
	return &show, nil
}

// Update overwrites the editable fields of an active show and returns it.
func (r *GORMShowRepository) Update(ctx context.Context, id uuid.UUID, fields models.ShowFields) (*models.Show, error) {
	var show models.Show
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := findActive(tx, id, &show); err != nil {
			return err
		}
		res := tx.Model(&show).Updates(map[string]interface{}{
			"title":        fields.Title,
			"release_date": fields.ReleaseDate,
			"genre":        fields.Genre,
		})
		if res.Error != nil {
			return fmt.Errorf("failed to update show %s: %w", id, res.Error)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	fields.Apply(&show)
	return &show, nil
}

func findActive(db *gorm.DB, id uuid.UUID, show *models.Show) error {
	if err := db.Scopes(active).First(show, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return showNotFound(id)
		}
		return fmt.Errorf("failed to get show by ID %s: %w", id, err)
	}
	return nil
}
