package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"showtrack/internal/models"

	"github.com/google/uuid"
)

// MemoryShowRepository is an in-memory implementation of ShowRepository.
// Deleted shows are kept in the map with IsDeleted set.
type MemoryShowRepository struct {
	shows map[uuid.UUID]memoryShow
	seq   uint64
	mu    sync.RWMutex
}

type memoryShow struct {
	show models.Show
	seq  uint64
}

// NewMemoryShowRepository creates a new instance of MemoryShowRepository.
func NewMemoryShowRepository() *MemoryShowRepository {
	return &MemoryShowRepository{
		shows: make(map[uuid.UUID]memoryShow),
	}
}

// ListActive returns all non-deleted shows ordered by release date, then insertion order.
func (r *MemoryShowRepository) ListActive(_ context.Context) ([]models.Show, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]memoryShow, 0, len(r.shows))
	for _, e := range r.shows {
		if !e.show.IsDeleted {
			entries = append(entries, e)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.show.ReleaseDate.Equal(b.show.ReleaseDate) {
			return a.show.ReleaseDate.Before(b.show.ReleaseDate)
		}
		return a.seq < b.seq
	})

	shows := make([]models.Show, len(entries))
	for i, e := range entries {
		shows[i] = e.show
	}
	return shows, nil
}

// GetActive returns a non-deleted show by its ID.
func (r *MemoryShowRepository) GetActive(_ context.Context, id uuid.UUID) (*models.Show, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.shows[id]
	if !ok || e.show.IsDeleted {
		return nil, showNotFound(id)
	}
	show := e.show
	return &show, nil
}

// Create adds a new show.
func (r *MemoryShowRepository) Create(_ context.Context, show *models.Show) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if show.ID == uuid.Nil {
		show.ID = uuid.New()
	}
	if show.ReleaseDate.IsZero() {
		show.ReleaseDate = models.Today()
	}
	now := time.Now().UTC()
	show.IsDeleted = false
	show.CreatedAt = now
	show.UpdatedAt = now

	r.seq++
	r.shows[show.ID] = memoryShow{show: *show, seq: r.seq}
	return nil
}

// SoftDelete flags an active show as deleted.
func (r *MemoryShowRepository) SoftDelete(_ context.Context, id uuid.UUID) (*models.Show, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.shows[id]
	if !ok || e.show.IsDeleted {
		return nil, showNotFound(id)
	}
	e.show.IsDeleted = true
	e.show.UpdatedAt = time.Now().UTC()
	r.shows[id] = e
	show := e.show
	return &show, nil
}

// Update overwrites the editable fields of an active show.
func (r *MemoryShowRepository) Update(_ context.Context, id uuid.UUID, fields models.ShowFields) (*models.Show, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.shows[id]
	if !ok || e.show.IsDeleted {
		return nil, showNotFound(id)
	}
	fields.Apply(&e.show)
	e.show.UpdatedAt = time.Now().UTC()
	r.shows[id] = e
	show := e.show
	return &show, nil
}
