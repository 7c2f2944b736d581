package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"pathwise-backend/internal/middleware"
	"pathwise-backend/internal/models"
	"pathwise-backend/internal/services"
)

type moduleCatalog interface {
	List(ctx context.Context, includeLessons bool) ([]models.Module, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Module, error)
	GetLesson(ctx context.Context, id uuid.UUID) (*models.Lesson, error)
}

type ModulesHandler struct {
	modules moduleCatalog
	search  *services.SearchService
}

func NewModulesHandler(modules moduleCatalog, search *services.SearchService) *ModulesHandler {
	return &ModulesHandler{modules: modules, search: search}
}

// GetModules serves the catalog to both signed-in and anonymous visitors.
// The userAuthenticated flag lets the client decide whether to fetch
// progress on top of it.
func (h *ModulesHandler) GetModules(w http.ResponseWriter, r *http.Request) {
	includeLessons, _ := strconv.ParseBool(r.URL.Query().Get("include_lessons"))

	modules, err := h.modules.List(r.Context(), includeLessons)
	if err != nil {
		log.Printf("Failed to list modules: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResp("Failed to load modules"))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"modules":           modules,
		"userAuthenticated": middleware.IsAuthenticated(r.Context()),
	})
}

func (h *ModulesHandler) GetModule(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("Invalid module ID"))
		return
	}

	module, err := h.modules.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, errorResp("Module not found"))
			return
		}
		log.Printf("Failed to get module %s: %v", id, err)
		writeJSON(w, http.StatusInternalServerError, errorResp("Failed to load module"))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"module":            module,
		"userAuthenticated": middleware.IsAuthenticated(r.Context()),
	})
}

func (h *ModulesHandler) GetLesson(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("Invalid lesson ID"))
		return
	}

	lesson, err := h.modules.GetLesson(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, errorResp("Lesson not found"))
			return
		}
		log.Printf("Failed to get lesson %s: %v", id, err)
		writeJSON(w, http.StatusInternalServerError, errorResp("Failed to load lesson"))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"lesson": lesson})
}

func (h *ModulesHandler) Search(w http.ResponseWriter, r *http.Request) {
	results, err := h.search.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		log.Printf("Search failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResp("Search failed"))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"results": results})
}
