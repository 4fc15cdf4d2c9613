package repositories

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrShowNotFound is returned when no active show matches the requested ID.
// Handlers translate it into an HTTP 404 response.
var ErrShowNotFound = errors.New("show not found")

func showNotFound(id uuid.UUID) error {
	return fmt.Errorf("show with ID %s: %w", id, ErrShowNotFound)
}
