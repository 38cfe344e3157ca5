package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pmerino/gocatalog/pkg/web"
)

// SeedRunner is the part of the seed collaborator the transport needs.
type SeedRunner interface {
	Run(ctx context.Context) error
}

// SeedHandler exposes the explicit seed trigger.
type SeedHandler struct {
	seeder SeedRunner
	logger *slog.Logger
}

// NewSeedHandler creates a new instance of the seed HTTP handler.
func NewSeedHandler(seeder SeedRunner, logger *slog.Logger) *SeedHandler {
	return &SeedHandler{
		seeder: seeder,
		logger: logger.With("component", "rest"),
	}
}

// RegisterRoutes registers the seed trigger route.
func (h *SeedHandler) RegisterRoutes(r *chi.Mux) {
	r.Post("/api/v1/seed", h.Run)
}

// Run resets the catalog to the bundled dataset.
func (h *SeedHandler) Run(w http.ResponseWriter, r *http.Request) {
	mLogger := h.logger.With("request_id", middleware.GetReqID(r.Context()))
	if err := h.seeder.Run(r.Context()); err != nil {
		mLogger.ErrorContext(r.Context(), "Error seeding catalog", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to seed catalog")
		return
	}
	mLogger.InfoContext(r.Context(), "Catalog seeded successfully")
	web.RespondJSON(w, mLogger, http.StatusOK, map[string]string{"message": "seed executed"})
}
