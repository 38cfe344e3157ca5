// Package app contains the application setup for the catalog service.
package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pmerino/gocatalog/internal/catalog/rest"
	"github.com/pmerino/gocatalog/internal/catalog/service"
	"github.com/pmerino/gocatalog/internal/catalog/store"
	"github.com/pmerino/gocatalog/internal/config"
	"github.com/pmerino/gocatalog/internal/seed"
	"github.com/pmerino/gocatalog/pkg/server"
)

type Dependencies struct {
	CatalogService service.CatalogService
	Seeder         *seed.Seeder
	Logger         *slog.Logger
}

func SetupDependencies(dbPool *pgxpool.Pool, logger *slog.Logger) *Dependencies {
	catalog := service.NewService(store.NewPgStore(dbPool, logger))

	return &Dependencies{
		CatalogService: catalog,
		Seeder:         seed.NewSeeder(catalog, logger),
		Logger:         logger,
	}
}

// SetupHTTPHandler initializes the router and routes for the catalog service.
// Also used by tests to set up the full HTTP surface.
func SetupHTTPHandler(deps *Dependencies) http.Handler {
	mux := server.NewChiRouter(deps.Logger)
	wireRoutes(mux, deps)
	return mux
}

// wireRoutes sets up the HTTP routes for the catalog service.
func wireRoutes(mux *chi.Mux, deps *Dependencies) {
	catalogHandler := rest.NewHandler(deps.CatalogService, deps.Logger)
	catalogHandler.RegisterRoutes(mux)

	seedHandler := rest.NewSeedHandler(deps.Seeder, deps.Logger)
	seedHandler.RegisterRoutes(mux)
}

// SetupHTTPServer creates and configures the HTTP server for the catalog service.
func SetupHTTPServer(deps *Dependencies, cfg *config.Config) *http.Server {
	mux := SetupHTTPHandler(deps)

	httpCfg := server.HTTPConfig{
		Port:           cfg.HTTPServer.Port,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		ReadTimeout:    cfg.HTTPServer.Timeout.Read,
		WriteTimeout:   cfg.HTTPServer.Timeout.Write,
		IdleTimeout:    cfg.HTTPServer.Timeout.Idle,
		ReadHeader:     cfg.HTTPServer.Timeout.ReadHeader,
	}

	return server.NewHTTPServer(httpCfg, mux)
}
