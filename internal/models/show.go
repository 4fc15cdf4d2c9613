package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DateLayout is the layout used for release dates in forms and views.
const DateLayout = "2006-01-02"

// Show represents a tracked television show.
type Show struct {
	ID          uuid.UUID `json:"id" gorm:"primaryKey;type:uuid"`
	Title       string    `json:"title" gorm:"type:varchar(80);not null"`
	ReleaseDate time.Time `json:"release_date" gorm:"type:date;not null;index"`
	Genre       string    `json:"genre" gorm:"type:varchar(30);not null"`
	IsDeleted   bool      `json:"is_deleted" gorm:"not null;default:false"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName keeps the table name used by earlier deployments of the app.
func (Show) TableName() string {
	return "tv_show"
}

// BeforeCreate assigns the identifier and release date defaults.
func (s *Show) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.ReleaseDate.IsZero() {
		s.ReleaseDate = Today()
	}
	return nil
}

// ReleaseDateString formats the release date for forms and listings.
func (s Show) ReleaseDateString() string {
	return s.ReleaseDate.Format(DateLayout)
}

// ShowFields holds the user-editable fields of a Show.
type ShowFields struct {
	Title       string
	ReleaseDate time.Time
	Genre       string
}

// Apply overwrites the editable fields of s.
func (f ShowFields) Apply(s *Show) {
	s.Title = f.Title
	s.ReleaseDate = f.ReleaseDate
	s.Genre = f.Genre
}

// ShowForm is the submitted add/update form.
type ShowForm struct {
	Title       string `form:"title" validate:"required,max=80"`
	ReleaseDate string `form:"release-date" validate:"required,datetime=2006-01-02"`
	Genre       string `form:"genre" validate:"required,max=30"`
}

// Today returns the current date at midnight UTC.
func Today() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
