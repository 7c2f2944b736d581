package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"pathwise-backend/internal/models"
)

type ModuleRepo struct {
	pool *pgxpool.Pool
}

func NewModuleRepo(pool *pgxpool.Pool) *ModuleRepo {
	return &ModuleRepo{pool: pool}
}

const moduleColumns = `m.id, m.title, m.description, m.thumbnail_url, m.estimated_minutes,
	m.difficulty, m.category_id, COALESCE(c.name, ''), m.instructor, m.rating,
	m.enrollment_count, m.is_locked, m.sort_order, m.created_at`

// List returns all modules ordered by sort order, optionally with their
// lessons nested (lessons ordered by sort order within each module).
func (r *ModuleRepo) List(ctx context.Context, includeLessons bool) ([]models.Module, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+moduleColumns+`
		FROM modules m
		LEFT JOIN categories c ON c.id = m.category_id
		ORDER BY m.sort_order ASC, m.created_at ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	modules := make([]models.Module, 0)
	index := make(map[uuid.UUID]int)
	for rows.Next() {
		var m models.Module
		if err := scanModule(rows, &m); err != nil {
			return nil, err
		}
		index[m.ID] = len(modules)
		modules = append(modules, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if !includeLessons || len(modules) == 0 {
		return modules, nil
	}

	lessonRows, err := r.pool.Query(ctx, `
		SELECT id, module_id, title, description, duration_minutes, sort_order
		FROM lessons
		ORDER BY module_id, sort_order ASC
	`)
	if err != nil {
		return nil, err
	}
	defer lessonRows.Close()

	for lessonRows.Next() {
		var l models.Lesson
		if err := lessonRows.Scan(&l.ID, &l.ModuleID, &l.Title, &l.Description, &l.DurationMinutes, &l.SortOrder); err != nil {
			return nil, err
		}
		if i, ok := index[l.ModuleID]; ok {
			modules[i].Lessons = append(modules[i].Lessons, l)
		}
	}

	return modules, lessonRows.Err()
}

// GetByID returns one module with its lessons. A missing row surfaces as
// pgx.ErrNoRows so callers can branch on presence.
func (r *ModuleRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Module, error) {
	m := &models.Module{}
	row := r.pool.QueryRow(ctx, `
		SELECT `+moduleColumns+`
		FROM modules m
		LEFT JOIN categories c ON c.id = m.category_id
		WHERE m.id = $1
	`, id)
	if err := scanModule(row, m); err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, module_id, title, description, duration_minutes, sort_order
		FROM lessons
		WHERE module_id = $1
		ORDER BY sort_order ASC
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var l models.Lesson
		if err := rows.Scan(&l.ID, &l.ModuleID, &l.Title, &l.Description, &l.DurationMinutes, &l.SortOrder); err != nil {
			return nil, err
		}
		m.Lessons = append(m.Lessons, l)
	}

	return m, rows.Err()
}

func (r *ModuleRepo) GetLesson(ctx context.Context, id uuid.UUID) (*models.Lesson, error) {
	l := &models.Lesson{}
	err := r.pool.QueryRow(ctx, `
		SELECT id, module_id, title, description, duration_minutes, sort_order
		FROM lessons
		WHERE id = $1
	`, id).Scan(&l.ID, &l.ModuleID, &l.Title, &l.Description, &l.DurationMinutes, &l.SortOrder)
	if err != nil {
		return nil, err
	}
	return l, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanModule(row rowScanner, m *models.Module) error {
	return row.Scan(
		&m.ID, &m.Title, &m.Description, &m.ThumbnailURL, &m.EstimatedMinutes,
		&m.Difficulty, &m.CategoryID, &m.CategoryName, &m.Instructor, &m.Rating,
		&m.EnrollmentCount, &m.IsLocked, &m.SortOrder, &m.CreatedAt,
	)
}
