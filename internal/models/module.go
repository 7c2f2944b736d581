package models

import (
	"time"

	"github.com/google/uuid"
)

// Difficulty levels as stored in the modules table.
const (
	DifficultyBeginner     = "beginner"
	DifficultyIntermediate = "intermediate"
	DifficultyAdvanced     = "advanced"
)

type Category struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Slug string    `json:"slug"`
}

// Module is a top-level curriculum unit. Modules are authored by content
// administrators and read-only to this service.
type Module struct {
	ID               uuid.UUID  `json:"id"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	ThumbnailURL     *string    `json:"thumbnailUrl"`
	EstimatedMinutes int        `json:"estimatedMinutes"`
	Difficulty       string     `json:"difficulty"`
	CategoryID       *uuid.UUID `json:"categoryId"`
	CategoryName     string     `json:"category"`
	Instructor       string     `json:"instructor"`
	Rating           float64    `json:"rating"`
	EnrollmentCount  int        `json:"enrollmentCount"`
	IsLocked         bool       `json:"isLocked"`
	SortOrder        int        `json:"sortOrder"`
	Lessons          []Lesson   `json:"lessons,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
}

// Lesson belongs to exactly one module; deleting the module cascades.
type Lesson struct {
	ID              uuid.UUID `json:"id"`
	ModuleID        uuid.UUID `json:"moduleId"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	DurationMinutes int       `json:"durationMinutes"`
	SortOrder       int       `json:"sortOrder"`
}
