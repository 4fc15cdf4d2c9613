package services

import (
	"encoding/json"
	"fmt"
	"log"

	"showtrack/internal/models"
)

// HandleShowEvent decodes a show event delivered by the broker and logs it.
// Unknown or malformed events are returned as errors so the consumer rejects them.
func HandleShowEvent(body []byte) error {
	var event models.ShowEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("failed to decode show event: %w", err)
	}

	switch event.Type {
	case models.ShowCreated, models.ShowUpdated, models.ShowDeleted:
	default:
		return fmt.Errorf("unknown show event type %q", event.Type)
	}

	log.Printf("Show event %s: %s (%s, %s, %s)", event.Type, event.ShowID, event.Title, event.ReleaseDate, event.Genre)
	return nil
}
