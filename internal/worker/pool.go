package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"pathwise-backend/internal/models"
	"pathwise-backend/internal/progress"
	"pathwise-backend/internal/services"
)

type moduleLister interface {
	List(ctx context.Context, includeLessons bool) ([]models.Module, error)
}

type completionLister interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Completion, error)
}

// Pool consumes recompute jobs queued after each completion write. Workers
// rebuild the summary from the authoritative rows, refresh the cache, and
// publish the result to the user's event channel.
type Pool struct {
	redis       *redis.Client
	modules     moduleLister
	completions completionLister
	workerCount int
	stopChan    chan struct{}
}

func NewPool(redisClient *redis.Client, modules moduleLister, completions completionLister, workerCount int) *Pool {
	return &Pool{
		redis:       redisClient,
		modules:     modules,
		completions: completions,
		workerCount: workerCount,
		stopChan:    make(chan struct{}),
	}
}

func (p *Pool) Start() {
	for i := 0; i < p.workerCount; i++ {
		go p.worker(i)
	}

	log.Printf("Started %d worker goroutines", p.workerCount)
}

func (p *Pool) Stop() {
	close(p.stopChan)
}

func (p *Pool) worker(id int) {
	for {
		select {
		case <-p.stopChan:
			log.Printf("Worker %d shutting down", id)
			return
		default:
		}

		ctx := context.Background()

		// BLPOP with 30s timeout
		result, err := p.redis.BLPop(ctx, 30*time.Second, services.RecomputeQueue).Result()
		if err != nil {
			continue // Timeout or error, retry
		}

		if len(result) < 2 {
			continue
		}

		var job services.RecomputeJob
		if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
			log.Printf("Worker %d: failed to parse job: %v", id, err)
			continue
		}

		// Collapse bursts: one in-flight recompute per user
		lockKey := fmt.Sprintf("recompute_lock:%s", job.UserID)
		locked, err := p.redis.SetNX(ctx, lockKey, "1", time.Minute).Result()
		if err != nil || !locked {
			continue
		}

		if err := p.recompute(ctx, job.UserID); err != nil {
			log.Printf("Worker %d: recompute failed for user %s: %v", id, job.UserID, err)
		}

		p.redis.Del(ctx, lockKey)
	}
}

func (p *Pool) recompute(ctx context.Context, userID uuid.UUID) error {
	modules, err := p.modules.List(ctx, true)
	if err != nil {
		return fmt.Errorf("failed to list modules: %w", err)
	}

	completions, err := p.completions.ListByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to list completions: %w", err)
	}

	summary := progress.Compute(modules, completions, time.Now())

	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}
	if err := p.redis.Set(ctx, services.ProgressCacheKey(userID), data, 5*time.Minute).Err(); err != nil {
		return fmt.Errorf("failed to cache summary: %w", err)
	}

	p.publish(ctx, userID, models.WSMessage{
		Type: "progress_updated",
		Payload: models.ProgressUpdatedEvent{
			OverallPercent: summary.OverallPercent,
			TotalTimeSpent: summary.TotalTimeSpent,
			CurrentStreak:  summary.CurrentStreak,
		},
	})

	return nil
}

func (p *Pool) publish(ctx context.Context, userID uuid.UUID, msg models.WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	if err := p.redis.Publish(ctx, services.UserEventChannel(userID), data).Err(); err != nil {
		log.Printf("failed to publish %s event for user %s: %v", msg.Type, userID, err)
	}
}
