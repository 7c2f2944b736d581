package services

import (
	"fmt"
	"testing"

	"github.com/google/uuid"

	"pathwise-backend/internal/models"
)

func catalogWith(modules ...models.Module) []models.Module {
	return modules
}

func TestFilter_MatchesTitleCaseInsensitive(t *testing.T) {
	design := models.Module{ID: uuid.New(), Title: "Product Design Basics"}
	engineering := models.Module{ID: uuid.New(), Title: "Engineering 101"}

	results := Filter(catalogWith(design, engineering), "design")

	if len(results) != 1 {
		t.Fatalf("expected exactly one result, got %d", len(results))
	}
	if results[0].ID != design.ID {
		t.Errorf("expected the design module, got %q", results[0].Title)
	}
}

func TestFilter_EmptyQueryClearsResults(t *testing.T) {
	m := models.Module{ID: uuid.New(), Title: "Anything"}

	for _, q := range []string{"", "   "} {
		if results := Filter(catalogWith(m), q); len(results) != 0 {
			t.Errorf("query %q should return no results, got %d", q, len(results))
		}
	}
}

func TestFilter_CapsAtEightResults(t *testing.T) {
	var modules []models.Module
	for i := 0; i < 12; i++ {
		modules = append(modules, models.Module{
			ID:    uuid.New(),
			Title: fmt.Sprintf("Design Fundamentals %d", i),
		})
	}

	results := Filter(modules, "design")

	if len(results) != 8 {
		t.Errorf("expected results capped at 8, got %d", len(results))
	}
}

func TestFilter_MatchesLessonsAfterTheirModule(t *testing.T) {
	moduleID := uuid.New()
	m := models.Module{
		ID:          moduleID,
		Title:       "Design Systems",
		Description: "Scaling product design",
		Lessons: []models.Lesson{
			{ID: uuid.New(), ModuleID: moduleID, Title: "Design tokens"},
			{ID: uuid.New(), ModuleID: moduleID, Title: "Typography"},
		},
	}

	results := Filter(catalogWith(m), "design")

	if len(results) != 2 {
		t.Fatalf("expected module + one lesson, got %d results", len(results))
	}
	if results[0].Type != "module" {
		t.Errorf("expected the module first, got %q", results[0].Type)
	}
	if results[1].Type != "lesson" || results[1].ModuleID == nil || *results[1].ModuleID != moduleID {
		t.Errorf("expected the matching lesson with its module id, got %+v", results[1])
	}
}

func TestFilter_MatchesCategory(t *testing.T) {
	m := models.Module{ID: uuid.New(), Title: "Figma Deep Dive", CategoryName: "Design"}

	results := Filter(catalogWith(m), "desig")

	if len(results) != 1 {
		t.Fatalf("expected a category match, got %d results", len(results))
	}
}
