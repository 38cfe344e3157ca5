// Package store provides the catalog storage contract and its PostgreSQL
// implementation.
package store

import (
	"context"

	"github.com/google/uuid"
)

// Gender values accepted for a product. The REST boundary validates input
// against the same set.
const (
	GenderMen    = "men"
	GenderWomen  = "women"
	GenderKid    = "kid"
	GenderUnisex = "unisex"
)

// Product is a catalog item together with its owned image collection.
type Product struct {
	ID          uuid.UUID
	Title       string
	Slug        string
	Description string
	Price       float64
	Stock       int32
	Sizes       []string
	Gender      string
	Tags        []string
	Images      []ProductImage
}

// ProductImage is a single image URL owned by exactly one product.
// Images are returned in insertion order.
type ProductImage struct {
	ID        int64
	URL       string
	ProductID uuid.UUID
}

// CreateParams carries the fields for a new product. Slug is expected to be
// already derived and normalized by the caller.
type CreateParams struct {
	Title       string
	Slug        string
	Description string
	Price       float64
	Stock       int32
	Sizes       []string
	Gender      string
	Tags        []string
	ImageURLs   []string
}

// UpdateParams is a patch: nil fields keep the stored value. A non-nil
// ImageURLs (even empty) replaces the whole image collection; nil leaves it
// untouched.
type UpdateParams struct {
	Title       *string
	Slug        *string
	Description *string
	Price       *float64
	Stock       *int32
	Sizes       []string
	Gender      *string
	Tags        []string
	ImageURLs   []string
}

// ListParams holds the optional filters and the pagination window for List.
// The caller guarantees Limit > 0 and Offset >= 0.
type ListParams struct {
	Search string
	Gender string
	Size   string
	Limit  int32
	Offset int32
}

// ProductStore is the contract for catalog storage operations.
type ProductStore interface {
	// Create inserts a product and its images as one atomic unit.
	// Returns ErrDuplicateProduct when title or slug already exists.
	Create(ctx context.Context, params CreateParams) (*Product, error)

	// FindByID retrieves a product with its images by its unique identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindByTerm retrieves a product by case-insensitive exact match on slug
	// or title. Returns ErrProductNotFound if nothing matches.
	FindByTerm(ctx context.Context, term string) (*Product, error)

	// List returns the page of products matching the filters, ordered by
	// title ascending, together with the total count of matching rows
	// before pagination. An empty page is not an error.
	List(ctx context.Context, params ListParams) ([]Product, int64, error)

	// Update applies a partial update inside one transaction. A supplied
	// image set fully replaces the stored one. Returns ErrProductNotFound
	// when the product does not exist, ErrDuplicateProduct on a uniqueness
	// violation; the transaction is rolled back on any failure.
	Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*Product, error)

	// DeleteByID removes a product; its images are cascade-deleted.
	// Returns ErrProductNotFound if no row was affected.
	DeleteByID(ctx context.Context, id uuid.UUID) error

	// DeleteAll removes every product and, by cascade, every image.
	// Used only by the seed collaborator.
	DeleteAll(ctx context.Context) error
}
