// Package progress derives a user's progress summary from their completion
// records. Everything here is pure computation over already-fetched rows.
package progress

import (
	"math"
	"time"

	"github.com/google/uuid"

	"pathwise-backend/internal/models"
)

type ModuleProgress struct {
	ModuleID         uuid.UUID `json:"moduleId"`
	CompletedLessons int       `json:"completedLessons"`
	TotalLessons     int       `json:"totalLessons"`
	Percentage       int       `json:"percentage"`
	Completed        bool      `json:"completed"`
}

type Summary struct {
	ModuleProgress   []ModuleProgress `json:"moduleProgress"`
	CompletedLessons []uuid.UUID      `json:"completedLessons"`
	OverallPercent   int              `json:"overallPercent"`
	TotalTimeSpent   int              `json:"totalTimeSpent"`
	CurrentStreak    int              `json:"currentStreak"`
	LastActivity     *time.Time       `json:"lastActivity"`
}

// Compute reconciles a completion-record set against the current module
// catalog. Percentages are always measured against lessons that exist right
// now; lessons removed from a module drop out of the denominator on the next
// computation. Completions for vanished lessons still count toward total
// time spent and activity.
func Compute(modules []models.Module, completions []models.Completion, now time.Time) *Summary {
	done := make(map[uuid.UUID]bool, len(completions))
	for _, c := range completions {
		done[c.LessonID] = true
	}

	summary := &Summary{
		ModuleProgress:   make([]ModuleProgress, 0, len(modules)),
		CompletedLessons: make([]uuid.UUID, 0, len(completions)),
		CurrentStreak:    Streak(completions, now),
	}

	totalLessons := 0
	totalCompleted := 0
	for _, m := range modules {
		mp := ModuleProgress{ModuleID: m.ID, TotalLessons: len(m.Lessons)}
		for _, l := range m.Lessons {
			if done[l.ID] {
				mp.CompletedLessons++
			}
		}
		mp.Percentage = Percentage(mp.CompletedLessons, mp.TotalLessons)
		mp.Completed = mp.Percentage == 100
		summary.ModuleProgress = append(summary.ModuleProgress, mp)

		totalLessons += mp.TotalLessons
		totalCompleted += mp.CompletedLessons
	}
	summary.OverallPercent = Percentage(totalCompleted, totalLessons)

	for _, c := range completions {
		summary.CompletedLessons = append(summary.CompletedLessons, c.LessonID)
		summary.TotalTimeSpent += c.TimeSpentMinutes
		if summary.LastActivity == nil || c.CompletedAt.After(*summary.LastActivity) {
			t := c.CompletedAt
			summary.LastActivity = &t
		}
	}

	return summary
}

// Percentage rounds half away from zero; a module with no lessons is 0%,
// never a division error.
func Percentage(completed, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}

// Streak counts consecutive UTC calendar days with at least one completion,
// walking backwards from today. A run that ended yesterday still counts
// (today simply has not happened yet); a run that ended earlier is 0.
func Streak(completions []models.Completion, now time.Time) int {
	if len(completions) == 0 {
		return 0
	}

	days := make(map[string]bool, len(completions))
	for _, c := range completions {
		days[c.CompletedAt.UTC().Format("2006-01-02")] = true
	}

	day := now.UTC().Truncate(24 * time.Hour)
	if !days[day.Format("2006-01-02")] {
		day = day.AddDate(0, 0, -1)
	}

	streak := 0
	for days[day.Format("2006-01-02")] {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}
