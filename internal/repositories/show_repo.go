package repositories

import (
	"context"

	"showtrack/internal/models"

	"github.com/google/uuid"
)

// ShowRepository defines the interface for show data access.
// Soft-deleted shows are invisible to every method.
type ShowRepository interface {
	ListActive(ctx context.Context) ([]models.Show, error)
	GetActive(ctx context.Context, id uuid.UUID) (*models.Show, error)
	Create(ctx context.Context, show *models.Show) error
	SoftDelete(ctx context.Context, id uuid.UUID) (*models.Show, error)
	Update(ctx context.Context, id uuid.UUID, fields models.ShowFields) (*models.Show, error)
}
