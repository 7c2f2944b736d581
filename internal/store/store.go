// Package store holds the per-session view state: the last-fetched module
// catalog, the user's progress summary, and transient UI state. It is an
// explicit, dependency-injected container; nothing in here is a singleton.
package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"pathwise-backend/internal/models"
	"pathwise-backend/internal/progress"
	"pathwise-backend/internal/services"
)

type progressClient interface {
	GetSummary(ctx context.Context, userID uuid.UUID) (*progress.Summary, error)
	CompleteLesson(ctx context.Context, userID, lessonID, moduleID uuid.UUID, timeSpentMinutes int) (*progress.Summary, error)
}

type catalogClient interface {
	List(ctx context.Context, includeLessons bool) ([]models.Module, error)
}

type UIState struct {
	SearchQuery string
	SidebarOpen bool
}

type Store struct {
	userID      uuid.UUID
	progressAPI progressClient
	catalog     catalogClient

	mu        sync.Mutex
	modules   []models.Module
	summary   *progress.Summary
	completed map[uuid.UUID]bool
	ui        UIState
}

func New(userID uuid.UUID, progressAPI progressClient, catalog catalogClient) *Store {
	return &Store{
		userID:      userID,
		progressAPI: progressAPI,
		catalog:     catalog,
		completed:   make(map[uuid.UUID]bool),
	}
}

// Load fetches authoritative state from the backend.
func (s *Store) Load(ctx context.Context) error {
	modules, err := s.catalog.List(ctx, true)
	if err != nil {
		return err
	}

	summary, err := s.progressAPI.GetSummary(ctx, s.userID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.modules = modules
	s.apply(summary)
	return nil
}

// MarkLessonComplete is the two-phase optimistic mutation: the lesson joins
// the local completed-set before the remote upsert is issued; a failed upsert
// rolls the local set back and returns the error; a successful one refetches
// authoritative state so local and remote converge.
func (s *Store) MarkLessonComplete(ctx context.Context, lessonID, moduleID uuid.UUID, timeSpentMinutes int) error {
	s.mu.Lock()
	wasCompleted := s.completed[lessonID]
	s.completed[lessonID] = true
	s.mu.Unlock()

	summary, err := s.progressAPI.CompleteLesson(ctx, s.userID, lessonID, moduleID, timeSpentMinutes)
	if err != nil {
		s.mu.Lock()
		if !wasCompleted {
			delete(s.completed, lessonID)
		}
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	s.apply(summary)
	s.mu.Unlock()

	// Refresh the catalog too; a failure here is tolerable, the completion
	// itself already landed.
	if modules, err := s.catalog.List(ctx, true); err == nil {
		s.mu.Lock()
		s.modules = modules
		s.mu.Unlock()
	}

	return nil
}

// apply replaces the derived state; caller holds the lock.
func (s *Store) apply(summary *progress.Summary) {
	s.summary = summary
	s.completed = make(map[uuid.UUID]bool, len(summary.CompletedLessons))
	for _, id := range summary.CompletedLessons {
		s.completed[id] = true
	}
}

func (s *Store) Modules() []models.Module {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.modules
}

func (s *Store) Summary() *progress.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summary
}

func (s *Store) IsCompleted(lessonID uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.completed[lessonID]
}

func (s *Store) CompletedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.completed)
}

// SetSearchQuery updates the header-search state and returns the filtered
// results from the in-memory catalog.
func (s *Store) SetSearchQuery(query string) []services.SearchResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ui.SearchQuery = query
	return services.Filter(s.modules, query)
}

func (s *Store) ToggleSidebar() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ui.SidebarOpen = !s.ui.SidebarOpen
}

func (s *Store) UI() UIState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ui
}
