package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"pathwise-backend/internal/models"
)

const (
	searchResultLimit = 8
	catalogTTL        = 2 * time.Minute
)

type SearchResult struct {
	Type        string     `json:"type"` // "module" | "lesson"
	ID          uuid.UUID  `json:"id"`
	ModuleID    *uuid.UUID `json:"moduleId,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Category    string     `json:"category,omitempty"`
}

// SearchService answers header-search queries from an in-memory copy of the
// module catalog, refreshed lazily from the data-access facade.
type SearchService struct {
	modules moduleCatalog

	mu        sync.RWMutex
	catalog   []models.Module
	refreshed time.Time
}

func NewSearchService(modules moduleCatalog) *SearchService {
	return &SearchService{modules: modules}
}

// Search filters modules and lessons by case-insensitive substring match
// against title, description and category. Results are capped at 8, in
// first-match order: each module followed by its own matching lessons as
// encountered. An empty query clears results instead of matching everything.
func (s *SearchService) Search(ctx context.Context, query string) ([]SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []SearchResult{}, nil
	}

	catalog, err := s.currentCatalog(ctx)
	if err != nil {
		return nil, err
	}

	return Filter(catalog, query), nil
}

// Filter is the pure matching core, exported for the store and tests.
func Filter(modules []models.Module, query string) []SearchResult {
	q := strings.ToLower(strings.TrimSpace(query))
	results := make([]SearchResult, 0, searchResultLimit)
	if q == "" {
		return results
	}

	for _, m := range modules {
		if len(results) >= searchResultLimit {
			break
		}
		if containsFold(m.Title, q) || containsFold(m.Description, q) || containsFold(m.CategoryName, q) {
			results = append(results, SearchResult{
				Type:        "module",
				ID:          m.ID,
				Title:       m.Title,
				Description: m.Description,
				Category:    m.CategoryName,
			})
		}
		for _, l := range m.Lessons {
			if len(results) >= searchResultLimit {
				break
			}
			if containsFold(l.Title, q) || containsFold(l.Description, q) {
				moduleID := m.ID
				results = append(results, SearchResult{
					Type:        "lesson",
					ID:          l.ID,
					ModuleID:    &moduleID,
					Title:       l.Title,
					Description: l.Description,
				})
			}
		}
	}

	return results
}

func containsFold(haystack, loweredNeedle string) bool {
	return strings.Contains(strings.ToLower(haystack), loweredNeedle)
}

func (s *SearchService) currentCatalog(ctx context.Context) ([]models.Module, error) {
	s.mu.RLock()
	if time.Since(s.refreshed) < catalogTTL && s.catalog != nil {
		catalog := s.catalog
		s.mu.RUnlock()
		return catalog, nil
	}
	s.mu.RUnlock()

	modules, err := s.modules.List(ctx, true)
	if err != nil {
		// Serve the stale catalog if we have one rather than failing the search
		s.mu.RLock()
		defer s.mu.RUnlock()
		if s.catalog != nil {
			return s.catalog, nil
		}
		return nil, err
	}

	s.mu.Lock()
	s.catalog = modules
	s.refreshed = time.Now()
	s.mu.Unlock()

	return modules, nil
}
