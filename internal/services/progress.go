package services

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"pathwise-backend/internal/models"
	"pathwise-backend/internal/progress"
)

const (
	// RecomputeQueue feeds the worker pool that refreshes cached summaries
	// and pushes websocket events after a completion lands.
	RecomputeQueue   = "queue:progress-recompute"
	progressCacheTTL = 5 * time.Minute
)

// RecomputeJob is the payload on RecomputeQueue.
type RecomputeJob struct {
	UserID uuid.UUID `json:"userId"`
}

func ProgressCacheKey(userID uuid.UUID) string {
	return "progress:" + userID.String()
}

// UserEventChannel is the per-user pub/sub channel the websocket hub
// subscribes to.
func UserEventChannel(userID uuid.UUID) string {
	return "user_updates:" + userID.String()
}

type moduleCatalog interface {
	List(ctx context.Context, includeLessons bool) ([]models.Module, error)
}

type completionStore interface {
	Upsert(ctx context.Context, c *models.Completion) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Completion, error)
}

// ProgressService is the facade the handlers and the view-state store talk
// to: it fetches rows, runs the aggregator, and keeps the Redis cache warm.
type ProgressService struct {
	modules     moduleCatalog
	completions completionStore
	redis       *redis.Client
}

func NewProgressService(modules moduleCatalog, completions completionStore, redisClient *redis.Client) *ProgressService {
	return &ProgressService{
		modules:     modules,
		completions: completions,
		redis:       redisClient,
	}
}

// GetSummary serves the cached summary when warm, otherwise recomputes from
// the authoritative rows.
func (s *ProgressService) GetSummary(ctx context.Context, userID uuid.UUID) (*progress.Summary, error) {
	if s.redis != nil {
		if raw, err := s.redis.Get(ctx, ProgressCacheKey(userID)).Result(); err == nil {
			var summary progress.Summary
			if err := json.Unmarshal([]byte(raw), &summary); err == nil {
				return &summary, nil
			}
		}
	}

	summary, err := s.computeFresh(ctx, userID)
	if err != nil {
		return nil, err
	}

	s.cache(ctx, userID, summary)
	return summary, nil
}

// CompleteLesson upserts the completion record and returns the freshly
// recomputed summary. The recomputation always derives from the record set,
// never an incremented counter, so repeating a lesson cannot double-count.
func (s *ProgressService) CompleteLesson(ctx context.Context, userID, lessonID, moduleID uuid.UUID, timeSpentMinutes int) (*progress.Summary, error) {
	c := &models.Completion{
		UserID:           userID,
		LessonID:         lessonID,
		ModuleID:         moduleID,
		TimeSpentMinutes: timeSpentMinutes,
	}
	if err := s.completions.Upsert(ctx, c); err != nil {
		return nil, err
	}

	summary, err := s.computeFresh(ctx, userID)
	if err != nil {
		return nil, err
	}

	s.cache(ctx, userID, summary)
	s.enqueueRecompute(ctx, userID)

	return summary, nil
}

func (s *ProgressService) computeFresh(ctx context.Context, userID uuid.UUID) (*progress.Summary, error) {
	modules, err := s.modules.List(ctx, true)
	if err != nil {
		return nil, err
	}

	completions, err := s.completions.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	return progress.Compute(modules, completions, time.Now()), nil
}

func (s *ProgressService) cache(ctx context.Context, userID uuid.UUID, summary *progress.Summary) {
	if s.redis == nil {
		return
	}
	data, err := json.Marshal(summary)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, ProgressCacheKey(userID), data, progressCacheTTL).Err(); err != nil {
		log.Printf("progress cache write failed for user %s: %v", userID, err)
	}
}

// enqueueRecompute hands the follow-up (cache refresh + websocket event) to
// the worker pool. Queue failure is logged, never surfaced: the synchronous
// response already carries the fresh summary.
func (s *ProgressService) enqueueRecompute(ctx context.Context, userID uuid.UUID) {
	if s.redis == nil {
		return
	}
	payload, _ := json.Marshal(RecomputeJob{UserID: userID})
	if err := s.redis.LPush(ctx, RecomputeQueue, string(payload)).Err(); err != nil {
		log.Printf("failed to enqueue progress recompute for user %s: %v", userID, err)
	}
}
