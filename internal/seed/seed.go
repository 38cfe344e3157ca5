// Package seed resets the catalog to a bundled dataset. It is triggered
// explicitly over HTTP and never runs as a startup side effect.
package seed

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pmerino/gocatalog/internal/catalog/service"
	"golang.org/x/sync/errgroup"
)

// Seeder wipes the catalog and inserts the bundled dataset.
type Seeder struct {
	catalog service.CatalogService
	logger  *slog.Logger
}

// NewSeeder creates a Seeder over the given catalog service.
func NewSeeder(catalog service.CatalogService, logger *slog.Logger) *Seeder {
	return &Seeder{
		catalog: catalog,
		logger:  logger.With("component", "seed"),
	}
}

// Run deletes every product, then issues all creates concurrently and waits
// for them. The first failure propagates; creates that already committed are
// not rolled back as a group, each one is independently atomic.
func (s *Seeder) Run(ctx context.Context) error {
	if err := s.catalog.DeleteAll(ctx); err != nil {
		return fmt.Errorf("failed to reset catalog: %w", err)
	}

	g, gCtx := errgroup.WithContext(ctx)
	for _, product := range initialProducts {
		g.Go(func() error {
			if _, err := s.catalog.Create(gCtx, product); err != nil {
				return fmt.Errorf("failed to seed product %q: %w", product.Title, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	s.logger.Info("Catalog seeded", "products", len(initialProducts))
	return nil
}
