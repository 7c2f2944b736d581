package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pathwise-backend/internal/models"
)

type PreferenceRepo struct {
	pool *pgxpool.Pool
}

func NewPreferenceRepo(pool *pgxpool.Pool) *PreferenceRepo {
	return &PreferenceRepo{pool: pool}
}

// CreateDefaults inserts the default row at signup. Idempotent.
func (r *PreferenceRepo) CreateDefaults(ctx context.Context, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		"INSERT INTO user_preferences (user_id) VALUES ($1) ON CONFLICT DO NOTHING", userID)
	return err
}

// Get returns the user's preferences, falling back to the documented
// defaults when no row exists yet.
func (r *PreferenceRepo) Get(ctx context.Context, userID uuid.UUID) (*models.Preferences, error) {
	p := &models.Preferences{}
	err := r.pool.QueryRow(ctx, `
		SELECT user_id, theme, email_notifications, push_notifications,
			public_profile, daily_goal_minutes, reminder_time, updated_at
		FROM user_preferences WHERE user_id = $1
	`, userID).Scan(
		&p.UserID, &p.Theme, &p.EmailNotifications, &p.PushNotifications,
		&p.PublicProfile, &p.DailyGoalMinutes, &p.ReminderTime, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.DefaultPreferences(userID), nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PreferenceRepo) Upsert(ctx context.Context, p *models.Preferences) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO user_preferences (user_id, theme, email_notifications, push_notifications,
			public_profile, daily_goal_minutes, reminder_time, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		ON CONFLICT (user_id) DO UPDATE
		SET theme = EXCLUDED.theme,
			email_notifications = EXCLUDED.email_notifications,
			push_notifications = EXCLUDED.push_notifications,
			public_profile = EXCLUDED.public_profile,
			daily_goal_minutes = EXCLUDED.daily_goal_minutes,
			reminder_time = EXCLUDED.reminder_time,
			updated_at = NOW()
	`, p.UserID, p.Theme, p.EmailNotifications, p.PushNotifications,
		p.PublicProfile, p.DailyGoalMinutes, p.ReminderTime)
	return err
}

// ListReminderRecipients returns users who opted into email notifications,
// for the reminder scheduler.
func (r *PreferenceRepo) ListReminderRecipients(ctx context.Context) ([]ReminderRecipient, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT u.id, u.email, u.full_name, p.daily_goal_minutes, p.reminder_time
		FROM users u
		JOIN user_preferences p ON p.user_id = u.id
		WHERE p.email_notifications = TRUE
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	recipients := make([]ReminderRecipient, 0)
	for rows.Next() {
		var rec ReminderRecipient
		if err := rows.Scan(&rec.ID, &rec.Email, &rec.FullName, &rec.DailyGoalMinutes, &rec.ReminderTime); err != nil {
			return nil, err
		}
		recipients = append(recipients, rec)
	}

	return recipients, rows.Err()
}

type ReminderRecipient struct {
	ID               uuid.UUID
	Email            string
	FullName         string
	DailyGoalMinutes int
	ReminderTime     string
}

// MinutesSpentToday sums completion time recorded today (UTC), used to skip
// reminders for users who already met their daily goal.
func (r *PreferenceRepo) MinutesSpentToday(ctx context.Context, userID uuid.UUID) (int, error) {
	var minutes int
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(time_spent_minutes), 0)
		FROM user_lesson_completions
		WHERE user_id = $1
		  AND completed_at >= CURRENT_DATE
	`, userID).Scan(&minutes)
	return minutes, err
}
