package models

import (
	"time"

	"github.com/google/uuid"
)

// Completion records that a user finished a lesson. One row per
// (user, lesson); repeating a lesson overwrites completed_at and
// time_spent_minutes rather than inserting a second row.
type Completion struct {
	UserID           uuid.UUID `json:"userId"`
	LessonID         uuid.UUID `json:"lessonId"`
	ModuleID         uuid.UUID `json:"moduleId"`
	CompletedAt      time.Time `json:"completedAt"`
	TimeSpentMinutes int       `json:"timeSpentMinutes"`
}

type CompleteLessonRequest struct {
	LessonID  string `json:"lessonId"`
	ModuleID  string `json:"moduleId"`
	TimeSpent *int   `json:"timeSpent"`
}
