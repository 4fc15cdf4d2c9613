package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"reflect"
	"sort"
	"strings"
	"time"

	"showtrack/internal/models"
	"showtrack/internal/repositories"
	"showtrack/pkg/rabbitmq"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// EventPublisher delivers serialized show events to a message broker.
type EventPublisher interface {
	Publish(exchange, routingKey string, body []byte) error
}

// ValidationError lists the form fields that failed validation, keyed by form field name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + " " + e.Fields[name]
	}
	return "invalid show: " + strings.Join(parts, "; ")
}

// ShowService handles business logic related to shows.
type ShowService struct {
	repo      repositories.ShowRepository
	publisher EventPublisher
	validate  *validator.Validate
}

// NewShowService creates a new ShowService. publisher may be nil, in which case
// no events are emitted.
func NewShowService(repo repositories.ShowRepository, publisher EventPublisher) *ShowService {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if name := fld.Tag.Get("form"); name != "" {
			return name
		}
		return fld.Name
	})
	return &ShowService{
		repo:      repo,
		publisher: publisher,
		validate:  validate,
	}
}

// ListShows returns the active shows ordered by release date.
func (s *ShowService) ListShows(ctx context.Context) ([]models.Show, error) {
	return s.repo.ListActive(ctx)
}

// GetShow returns an active show by its ID.
func (s *ShowService) GetShow(ctx context.Context, id uuid.UUID) (*models.Show, error) {
	return s.repo.GetActive(ctx, id)
}

// CreateShow validates the form and stores a new show.
func (s *ShowService) CreateShow(ctx context.Context, form models.ShowForm) (*models.Show, error) {
	fields, err := s.ParseForm(form)
	if err != nil {
		return nil, err
	}

	show := &models.Show{}
	fields.Apply(show)
	if err := s.repo.Create(ctx, show); err != nil {
		return nil, err
	}

	s.publish(models.ShowCreated, show)
	return show, nil
}

// UpdateShow overwrites the fields of an active show. A missing or deleted show is
// reported before the form is validated.
func (s *ShowService) UpdateShow(ctx context.Context, id uuid.UUID, form models.ShowForm) (*models.Show, error) {
	if _, err := s.repo.GetActive(ctx, id); err != nil {
		return nil, err
	}

	fields, err := s.ParseForm(form)
	if err != nil {
		return nil, err
	}

	show, err := s.repo.Update(ctx, id, fields)
	if err != nil {
		return nil, err
	}

	s.publish(models.ShowUpdated, show)
	return show, nil
}

// DeleteShow soft-deletes an active show.
func (s *ShowService) DeleteShow(ctx context.Context, id uuid.UUID) error {
	show, err := s.repo.SoftDelete(ctx, id)
	if err != nil {
		return err
	}

	s.publish(models.ShowDeleted, show)
	return nil
}

// ParseForm trims and validates a submitted form and converts it to ShowFields.
func (s *ShowService) ParseForm(form models.ShowForm) (models.ShowFields, error) {
	form.Title = strings.TrimSpace(form.Title)
	form.ReleaseDate = strings.TrimSpace(form.ReleaseDate)
	form.Genre = strings.TrimSpace(form.Genre)

	if err := s.validate.Struct(form); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return models.ShowFields{}, fmt.Errorf("failed to validate show form: %w", err)
		}
		fields := make(map[string]string, len(validationErrors))
		for _, e := range validationErrors {
			fields[e.Field()] = validationMessage(e)
		}
		return models.ShowFields{}, &ValidationError{Fields: fields}
	}

	releaseDate, err := time.Parse(models.DateLayout, form.ReleaseDate)
	if err != nil {
		return models.ShowFields{}, &ValidationError{Fields: map[string]string{
			"release-date": "must be a date in YYYY-MM-DD format",
		}}
	}

	return models.ShowFields{
		Title:       form.Title,
		ReleaseDate: releaseDate,
		Genre:       form.Genre,
	}, nil
}

func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must be at most %s characters", e.Param())
	case "datetime":
		return "must be a date in YYYY-MM-DD format"
	default:
		return fmt.Sprintf("failed on the '%s' tag", e.Tag())
	}
}

// publish emits an event for show. Failures are logged and never fail the request.
func (s *ShowService) publish(eventType string, show *models.Show) {
	if s.publisher == nil {
		return
	}

	body, err := json.Marshal(models.NewShowEvent(eventType, show))
	if err != nil {
		log.Printf("Failed to marshal %s event for show %s: %v", eventType, show.ID, err)
		return
	}
	if err := s.publisher.Publish("", rabbitmq.ShowEventsQueue, body); err != nil {
		log.Printf("Warning: failed to publish %s event for show %s: %v", eventType, show.ID, err)
	}
}
