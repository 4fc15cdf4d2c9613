package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"showtrack/internal/models"
	"showtrack/internal/repositories"
	"showtrack/internal/services"
	"showtrack/pkg/rabbitmq"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockShowRepository is a mock implementation of repositories.ShowRepository
type MockShowRepository struct {
	mock.Mock
}

func (m *MockShowRepository) ListActive(ctx context.Context) ([]models.Show, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Show), args.Error(1)
}

func (m *MockShowRepository) GetActive(ctx context.Context, id uuid.UUID) (*models.Show, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Show), args.Error(1)
}

func (m *MockShowRepository) Create(ctx context.Context, show *models.Show) error {
	args := m.Called(ctx, show)
	return args.Error(0)
}

func (m *MockShowRepository) SoftDelete(ctx context.Context, id uuid.UUID) (*models.Show, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Show), args.Error(1)
}

func (m *MockShowRepository) Update(ctx context.Context, id uuid.UUID, fields models.ShowFields) (*models.Show, error) {
	args := m.Called(ctx, id, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Show), args.Error(1)
}

// MockPublisher is a mock implementation of services.EventPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(exchange, routingKey string, body []byte) error {
	args := m.Called(exchange, routingKey, body)
	return args.Error(0)
}

func date(s string) time.Time {
	d, _ := time.Parse(models.DateLayout, s)
	return d
}

func validForm() models.ShowForm {
	return models.ShowForm{Title: "Foo", ReleaseDate: "2020-01-01", Genre: "Drama"}
}

func eventOfType(eventType string) interface{} {
	return mock.MatchedBy(func(body []byte) bool {
		var event models.ShowEvent
		return json.Unmarshal(body, &event) == nil && event.Type == eventType
	})
}

func TestShowService_ListShows(t *testing.T) {
	mockRepo := new(MockShowRepository)
	service := services.NewShowService(mockRepo, nil)
	ctx := context.Background()

	expected := []models.Show{
		{ID: uuid.New(), Title: "A", ReleaseDate: date("2019-01-01"), Genre: "Drama"},
		{ID: uuid.New(), Title: "B", ReleaseDate: date("2020-01-01"), Genre: "Comedy"},
	}
	mockRepo.On("ListActive", ctx).Return(expected, nil).Once()

	shows, err := service.ListShows(ctx)
	assert.NoError(t, err)
	assert.Equal(t, expected, shows)
	mockRepo.AssertExpectations(t)
}

func TestShowService_CreateShow(t *testing.T) {
	mockRepo := new(MockShowRepository)
	mockPub := new(MockPublisher)
	service := services.NewShowService(mockRepo, mockPub)
	ctx := context.Background()

	isFoo := mock.MatchedBy(func(s *models.Show) bool {
		return s.Title == "Foo" && s.Genre == "Drama" && s.ReleaseDate.Equal(date("2020-01-01")) && !s.IsDeleted
	})
	mockRepo.On("Create", ctx, isFoo).Return(nil).Once()
	mockPub.On("Publish", "", rabbitmq.ShowEventsQueue, eventOfType(models.ShowCreated)).Return(nil).Once()

	show, err := service.CreateShow(ctx, models.ShowForm{Title: "  Foo ", ReleaseDate: "2020-01-01", Genre: "Drama"})
	require.NoError(t, err)
	assert.Equal(t, "Foo", show.Title)
	mockRepo.AssertExpectations(t)
	mockPub.AssertExpectations(t)

	// Repository failure is returned and nothing is published
	mockRepo.On("Create", ctx, mock.Anything).Return(fmt.Errorf("database error")).Once()
	show, err = service.CreateShow(ctx, validForm())
	assert.Nil(t, show)
	assert.EqualError(t, err, "database error")
	mockRepo.AssertExpectations(t)
	mockPub.AssertNumberOfCalls(t, "Publish", 1)
}

func TestShowService_CreateShowPublishFailureIsIgnored(t *testing.T) {
	mockRepo := new(MockShowRepository)
	mockPub := new(MockPublisher)
	service := services.NewShowService(mockRepo, mockPub)
	ctx := context.Background()

	mockRepo.On("Create", ctx, mock.Anything).Return(nil).Once()
	mockPub.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("broker down")).Once()

	show, err := service.CreateShow(ctx, validForm())
	assert.NoError(t, err)
	assert.NotNil(t, show)
	mockPub.AssertExpectations(t)
}

func TestShowService_CreateShowValidation(t *testing.T) {
	tests := []struct {
		name   string
		form   models.ShowForm
		fields map[string]string
	}{
		{
			name: "MissingFields",
			form: models.ShowForm{Title: "   "},
			fields: map[string]string{
				"title":        "is required",
				"release-date": "is required",
				"genre":        "is required",
			},
		},
		{
			name:   "TitleTooLong",
			form:   models.ShowForm{Title: strings.Repeat("x", 81), ReleaseDate: "2020-01-01", Genre: "Drama"},
			fields: map[string]string{"title": "must be at most 80 characters"},
		},
		{
			name:   "GenreTooLong",
			form:   models.ShowForm{Title: "Foo", ReleaseDate: "2020-01-01", Genre: strings.Repeat("g", 31)},
			fields: map[string]string{"genre": "must be at most 30 characters"},
		},
		{
			name:   "MalformedDate",
			form:   models.ShowForm{Title: "Foo", ReleaseDate: "01/02/2020", Genre: "Drama"},
			fields: map[string]string{"release-date": "must be a date in YYYY-MM-DD format"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockShowRepository)
			service := services.NewShowService(mockRepo, nil)

			show, err := service.CreateShow(context.Background(), tt.form)
			assert.Nil(t, show)

			var validationErr *services.ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, tt.fields, validationErr.Fields)
			mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestShowService_TitleLengthCountsCharacters(t *testing.T) {
	service := services.NewShowService(new(MockShowRepository), nil)

	fields, err := service.ParseForm(models.ShowForm{Title: strings.Repeat("é", 80), ReleaseDate: "2020-01-01", Genre: "Drama"})
	require.NoError(t, err)
	assert.Equal(t, 80, len([]rune(fields.Title)))
}

func TestShowService_UpdateShow(t *testing.T) {
	mockRepo := new(MockShowRepository)
	mockPub := new(MockPublisher)
	service := services.NewShowService(mockRepo, mockPub)
	ctx := context.Background()
	id := uuid.New()

	fields := models.ShowFields{Title: "Foo", ReleaseDate: date("2020-01-01"), Genre: "Drama"}
	existing := &models.Show{ID: id, Title: "Old", ReleaseDate: date("2010-01-01"), Genre: "Drama"}
	updated := &models.Show{ID: id, Title: "Foo", ReleaseDate: date("2020-01-01"), Genre: "Drama"}
	mockRepo.On("GetActive", ctx, id).Return(existing, nil).Once()
	mockRepo.On("Update", ctx, id, fields).Return(updated, nil).Once()
	mockPub.On("Publish", "", rabbitmq.ShowEventsQueue, eventOfType(models.ShowUpdated)).Return(nil).Once()

	show, err := service.UpdateShow(ctx, id, validForm())
	assert.NoError(t, err)
	assert.Equal(t, updated, show)
	mockRepo.AssertExpectations(t)
	mockPub.AssertExpectations(t)

	// Not found is passed through for the handler to map
	missing := uuid.New()
	mockRepo.On("GetActive", ctx, missing).Return(nil, fmt.Errorf("show with ID %s: %w", missing, repositories.ErrShowNotFound)).Once()
	show, err = service.UpdateShow(ctx, missing, validForm())
	assert.Nil(t, show)
	assert.ErrorIs(t, err, repositories.ErrShowNotFound)
	mockRepo.AssertExpectations(t)
	mockRepo.AssertNumberOfCalls(t, "Update", 1)
}

func TestShowService_UpdateShowNotFoundBeforeValidation(t *testing.T) {
	mockRepo := new(MockShowRepository)
	service := services.NewShowService(mockRepo, nil)
	ctx := context.Background()
	id := uuid.New()

	mockRepo.On("GetActive", ctx, id).Return(nil, repositories.ErrShowNotFound).Once()

	show, err := service.UpdateShow(ctx, id, models.ShowForm{})
	assert.Nil(t, show)
	assert.ErrorIs(t, err, repositories.ErrShowNotFound)

	var validationErr *services.ValidationError
	assert.False(t, errors.As(err, &validationErr))
	mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestShowService_DeleteShow(t *testing.T) {
	mockRepo := new(MockShowRepository)
	mockPub := new(MockPublisher)
	service := services.NewShowService(mockRepo, mockPub)
	ctx := context.Background()
	id := uuid.New()

	deleted := &models.Show{ID: id, Title: "Foo", ReleaseDate: date("2020-01-01"), Genre: "Drama", IsDeleted: true}
	mockRepo.On("SoftDelete", ctx, id).Return(deleted, nil).Once()
	mockPub.On("Publish", "", rabbitmq.ShowEventsQueue, eventOfType(models.ShowDeleted)).Return(nil).Once()

	assert.NoError(t, service.DeleteShow(ctx, id))
	mockRepo.AssertExpectations(t)
	mockPub.AssertExpectations(t)

	missing := uuid.New()
	mockRepo.On("SoftDelete", ctx, missing).Return(nil, repositories.ErrShowNotFound).Once()
	err := service.DeleteShow(ctx, missing)
	assert.ErrorIs(t, err, repositories.ErrShowNotFound)
	mockPub.AssertNumberOfCalls(t, "Publish", 1)
}

func TestHandleShowEvent(t *testing.T) {
	show := &models.Show{ID: uuid.New(), Title: "Foo", ReleaseDate: date("2020-01-01"), Genre: "Drama"}
	body, err := json.Marshal(models.NewShowEvent(models.ShowCreated, show))
	require.NoError(t, err)

	assert.NoError(t, services.HandleShowEvent(body))
	assert.Error(t, services.HandleShowEvent([]byte("not json")))
	assert.Error(t, services.HandleShowEvent([]byte(`{"type":"show.archived"}`)))
}
