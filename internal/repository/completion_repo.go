package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"pathwise-backend/internal/models"
)

type CompletionRepo struct {
	pool *pgxpool.Pool
}

func NewCompletionRepo(pool *pgxpool.Pool) *CompletionRepo {
	return &CompletionRepo{pool: pool}
}

// Upsert records a lesson completion keyed on (user, lesson). A repeat
// completion overwrites the timestamp and time spent instead of inserting a
// second row, so summary recomputation never double-counts.
func (r *CompletionRepo) Upsert(ctx context.Context, c *models.Completion) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO user_lesson_completions (user_id, lesson_id, module_id, completed_at, time_spent_minutes)
		VALUES ($1, $2, $3, NOW(), $4)
		ON CONFLICT (user_id, lesson_id) DO UPDATE
		SET completed_at = NOW(),
			time_spent_minutes = EXCLUDED.time_spent_minutes,
			module_id = EXCLUDED.module_id
		RETURNING completed_at
	`, c.UserID, c.LessonID, c.ModuleID, c.TimeSpentMinutes).Scan(&c.CompletedAt)
}

func (r *CompletionRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Completion, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT user_id, lesson_id, module_id, completed_at, time_spent_minutes
		FROM user_lesson_completions
		WHERE user_id = $1
		ORDER BY completed_at ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	completions := make([]models.Completion, 0)
	for rows.Next() {
		var c models.Completion
		if err := rows.Scan(&c.UserID, &c.LessonID, &c.ModuleID, &c.CompletedAt, &c.TimeSpentMinutes); err != nil {
			return nil, err
		}
		completions = append(completions, c)
	}

	return completions, rows.Err()
}
