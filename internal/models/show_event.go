package models

import (
	"time"

	"github.com/google/uuid"
)

// Show lifecycle event types.
const (
	ShowCreated = "show.created"
	ShowUpdated = "show.updated"
	ShowDeleted = "show.deleted"
)

// ShowEvent is published after a show has been created, updated or deleted.
type ShowEvent struct {
	Type        string    `json:"type"`
	ShowID      uuid.UUID `json:"show_id"`
	Title       string    `json:"title"`
	ReleaseDate string    `json:"release_date"`
	Genre       string    `json:"genre"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// NewShowEvent builds an event of the given type from a show snapshot.
func NewShowEvent(eventType string, show *Show) ShowEvent {
	return ShowEvent{
		Type:        eventType,
		ShowID:      show.ID,
		Title:       show.Title,
		ReleaseDate: show.ReleaseDateString(),
		Genre:       show.Genre,
		OccurredAt:  time.Now().UTC(),
	}
}
