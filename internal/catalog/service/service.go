// Package service provides the implementation of catalog business logic.
package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	caterrors "github.com/pmerino/gocatalog/internal/catalog/errors"
	"github.com/pmerino/gocatalog/internal/catalog/store"
)

// CatalogService defines the operations exposed to collaborators.
type CatalogService interface {
	// Create adds a new product with its images. Derives the slug from the
	// title when none is supplied. Returns ErrDuplicateProduct when title or
	// slug already exists.
	Create(ctx context.Context, product ProductCreateDto) (*ProductDto, error)

	// FindAll returns one page of products matching the query filters plus
	// the derived pagination metadata. Empty results are not an error.
	FindAll(ctx context.Context, query ListQuery) (*Page, error)

	// FindOne resolves a product by ID when term is a well-formed UUID,
	// otherwise by case-insensitive slug or title match.
	// Returns ErrProductNotFound if nothing matches.
	FindOne(ctx context.Context, term string) (*ProductDto, error)

	// Update applies a partial update atomically. A supplied image list
	// fully replaces the stored collection; an omitted one leaves it alone.
	// Returns ErrInvalidProductID before touching storage when id is not a
	// UUID, ErrProductNotFound when the product does not exist.
	Update(ctx context.Context, id string, patch ProductUpdateDto) (*ProductDto, error)

	// DeleteByID removes a product and, by cascade, its images.
	// Returns ErrProductNotFound if no product exists with the given ID.
	DeleteByID(ctx context.Context, id uuid.UUID) error

	// DeleteAll wipes the catalog. Reserved for the seed collaborator.
	DeleteAll(ctx context.Context) error
}

// Service implements CatalogService on top of a ProductStore.
type Service struct {
	repository store.ProductStore
}

// NewService creates a new instance of CatalogService with the provided repository.
func NewService(repo store.ProductStore) *Service {
	return &Service{
		repository: repo,
	}
}

// ProductCreateDto represents the data transfer object for creating a new product.
type ProductCreateDto struct {
	Title       string   `json:"title"       validate:"required,max=200"`
	Slug        string   `json:"slug"        validate:"omitempty,max=200"`
	Description string   `json:"description"`
	Price       float64  `json:"price"       validate:"gte=0"`
	Stock       int32    `json:"stock"       validate:"gte=0"`
	Sizes       []string `json:"sizes"`
	Gender      string   `json:"gender"      validate:"required,oneof=men women kid unisex"`
	Tags        []string `json:"tags"`
	Images      []string `json:"images"`
}

// ProductUpdateDto is a partial update: nil fields keep the stored value.
// A non-nil Images slice (even empty) replaces the whole image collection.
type ProductUpdateDto struct {
	Title       *string  `json:"title"       validate:"omitempty,min=1,max=200"`
	Slug        *string  `json:"slug"        validate:"omitempty,min=1,max=200"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"       validate:"omitempty,gte=0"`
	Stock       *int32   `json:"stock"       validate:"omitempty,gte=0"`
	Sizes       []string `json:"sizes"`
	Gender      *string  `json:"gender"      validate:"omitempty,oneof=men women kid unisex"`
	Tags        []string `json:"tags"`
	Images      []string `json:"images"`
}

// ProductDto represents the data transfer object for a product. Image URLs
// are flattened to plain strings in insertion order.
type ProductDto struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Slug        string   `json:"slug"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Stock       int32    `json:"stock"`
	Sizes       []string `json:"sizes"`
	Gender      string   `json:"gender"`
	Tags        []string `json:"tags"`
	Images      []string `json:"images"`
}

// ListQuery carries the optional filters and the pagination window.
// The REST boundary guarantees Limit > 0 and Offset >= 0 before the core
// is invoked.
type ListQuery struct {
	Limit  int32
	Offset int32
	Search string
	Gender string
	Size   string
}

// Page is a bounded slice of the filtered, title-sorted result set plus the
// derived pagination metadata.
type Page struct {
	Data            []ProductDto `json:"data"`
	Total           int64        `json:"total"`
	Limit           int32        `json:"limit"`
	Offset          int32        `json:"offset"`
	TotalPages      int64        `json:"totalPages"`
	CurrentPage     int64        `json:"currentPage"`
	HasNextPage     bool         `json:"hasNextPage"`
	HasPreviousPage bool         `json:"hasPreviousPage"`
}

// Create derives the slug when absent, normalizes a supplied one, and
// persists the product together with its images.
func (s *Service) Create(ctx context.Context, product ProductCreateDto) (*ProductDto, error) {
	slug := product.Slug
	if slug == "" {
		slug = Slugify(product.Title)
	} else {
		slug = Slugify(slug)
	}

	created, err := s.repository.Create(ctx, store.CreateParams{
		Title:       product.Title,
		Slug:        slug,
		Description: product.Description,
		Price:       product.Price,
		Stock:       product.Stock,
		Sizes:       product.Sizes,
		Gender:      product.Gender,
		Tags:        product.Tags,
		ImageURLs:   product.Images,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return toDto(created), nil
}

// FindAll runs the filtered, paginated read and derives the page metadata
// from the pre-pagination total.
func (s *Service) FindAll(ctx context.Context, query ListQuery) (*Page, error) {
	products, total, err := s.repository.List(ctx, store.ListParams{
		Search: query.Search,
		Gender: query.Gender,
		Size:   query.Size,
		Limit:  query.Limit,
		Offset: query.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}

	data := make([]ProductDto, len(products))
	for i := range products {
		data[i] = *toDto(&products[i])
	}

	limit := int64(query.Limit)
	totalPages := (total + limit - 1) / limit
	currentPage := int64(query.Offset)/limit + 1

	return &Page{
		Data:            data,
		Total:           total,
		Limit:           query.Limit,
		Offset:          query.Offset,
		TotalPages:      totalPages,
		CurrentPage:     currentPage,
		HasNextPage:     currentPage < totalPages,
		HasPreviousPage: currentPage > 1,
	}, nil
}

// FindOne decides once, at this boundary, whether term is a unique
// identifier or a human-readable slug/title and dispatches to the matching
// repository lookup.
func (s *Service) FindOne(ctx context.Context, term string) (*ProductDto, error) {
	var (
		product *store.Product
		err     error
	)
	if id, parseErr := uuid.Parse(term); parseErr == nil {
		product, err = s.repository.FindByID(ctx, id)
	} else {
		product, err = s.repository.FindByTerm(ctx, term)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product by term %q: %w", term, err)
	}
	return toDto(product), nil
}

// Update rejects a malformed identifier before any storage access, then
// delegates the atomic read-merge-write to the repository.
func (s *Service) Update(ctx context.Context, id string, patch ProductUpdateDto) (*ProductDto, error) {
	productID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", caterrors.ErrInvalidProductID, id)
	}

	var slug *string
	if patch.Slug != nil {
		normalized := Slugify(*patch.Slug)
		slug = &normalized
	}

	updated, err := s.repository.Update(ctx, productID, store.UpdateParams{
		Title:       patch.Title,
		Slug:        slug,
		Description: patch.Description,
		Price:       patch.Price,
		Stock:       patch.Stock,
		Sizes:       patch.Sizes,
		Gender:      patch.Gender,
		Tags:        patch.Tags,
		ImageURLs:   patch.Images,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update product with ID %s: %w", id, err)
	}
	return toDto(updated), nil
}

// DeleteByID deletes a product by its ID.
// Returns ErrProductNotFound if no product exists with the given ID.
func (s *Service) DeleteByID(ctx context.Context, id uuid.UUID) error {
	return s.repository.DeleteByID(ctx, id)
}

// DeleteAll wipes the catalog. Reserved for the seed collaborator.
func (s *Service) DeleteAll(ctx context.Context) error {
	return s.repository.DeleteAll(ctx)
}

// Slugify derives a URL-safe slug: lowercase, spaces to hyphens,
// apostrophes removed.
func Slugify(s string) string {
	slug := strings.ToLower(strings.TrimSpace(s))
	slug = strings.ReplaceAll(slug, " ", "-")
	slug = strings.ReplaceAll(slug, "'", "")
	return slug
}

// toDto converts a store.Product to a ProductDto, flattening image rows to
// their URLs.
func toDto(product *store.Product) *ProductDto {
	images := make([]string, len(product.Images))
	for i, image := range product.Images {
		images[i] = image.URL
	}
	return &ProductDto{
		ID:          product.ID.String(),
		Title:       product.Title,
		Slug:        product.Slug,
		Description: product.Description,
		Price:       product.Price,
		Stock:       product.Stock,
		Sizes:       product.Sizes,
		Gender:      product.Gender,
		Tags:        product.Tags,
		Images:      images,
	}
}
