package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	caterrors "github.com/pmerino/gocatalog/internal/catalog/errors"
)

// pgUniqueViolation is the PostgreSQL class 23 code for unique constraint violations.
const pgUniqueViolation = "23505"

const productColumns = "id, title, slug, description, price, stock, sizes, gender, tags"

// querier is satisfied by both *pgxpool.Pool and pgx.Tx, so image loading
// helpers work inside and outside a transaction.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PgStore implements ProductStore using PostgreSQL as the data store.
type PgStore struct {
	db     *pgxpool.Pool
	logger *slog.Logger
}

// NewPgStore creates a new instance of ProductStore using a PostgreSQL connection pool.
func NewPgStore(dbp *pgxpool.Pool, logger *slog.Logger) *PgStore {
	return &PgStore{
		db:     dbp,
		logger: logger.With("component", "store"),
	}
}

// Create inserts the product and one row per image URL in a single
// transaction. The product row is persisted first, then each image
// referencing its ID.
func (p *PgStore) Create(ctx context.Context, params CreateParams) (*Product, error) {
	var created *Product

	txErr := p.withTransaction(ctx, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx,
			`INSERT INTO products (title, slug, description, price, stock, sizes, gender, tags)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			 RETURNING `+productColumns,
			params.Title, params.Slug, params.Description, params.Price,
			params.Stock, params.Sizes, params.Gender, params.Tags,
		)
		product, err := scanProduct(row)
		if err != nil {
			return p.translate("create product", err)
		}
		images, err := insertImages(ctx, tx, product.ID, params.ImageURLs)
		if err != nil {
			return p.translate("create product images", err)
		}
		product.Images = images
		created = product
		return nil
	})

	if txErr != nil {
		return nil, txErr
	}
	return created, nil
}

// FindByID retrieves a product with its images by its unique identifier.
// Returns ErrProductNotFound if no product exists with the given ID.
func (p *PgStore) FindByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	return p.findOne(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
}

// FindByTerm retrieves a product by exact case-insensitive match on slug or
// title. Both sides are folded with LOWER; slugs are stored lowercase, so
// the same rule covers both columns.
func (p *PgStore) FindByTerm(ctx context.Context, term string) (*Product, error) {
	return p.findOne(ctx,
		`SELECT `+productColumns+` FROM products
		 WHERE LOWER(title) = LOWER($1) OR slug = LOWER($1)
		 LIMIT 1`, term)
}

// findOne runs a single-product query and attaches the image collection
// inside one transaction, so the parent and its children come from the same
// snapshot.
func (p *PgStore) findOne(ctx context.Context, query string, arg any) (*Product, error) {
	var found *Product

	txErr := p.withTransaction(ctx, func(tx pgx.Tx) error {
		product, err := scanProduct(tx.QueryRow(ctx, query, arg))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return caterrors.ErrProductNotFound
			}
			return fmt.Errorf("failed to find product: %w", err)
		}
		images, err := imagesFor(ctx, tx, product.ID)
		if err != nil {
			return fmt.Errorf("failed to load product images: %w", err)
		}
		product.Images = images
		found = product
		return nil
	})

	if txErr != nil {
		return nil, txErr
	}
	return found, nil
}

// List returns one page of products matching the filters, ordered by title
// ascending, plus the total count of matching rows before pagination.
func (p *PgStore) List(ctx context.Context, params ListParams) ([]Product, int64, error) {
	where := make([]string, 0, 3)
	args := make([]any, 0, 5)

	if params.Search != "" {
		args = append(args, "%"+params.Search+"%")
		where = append(where, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d)", len(args), len(args)))
	}
	if params.Gender != "" {
		args = append(args, params.Gender)
		where = append(where, fmt.Sprintf("gender = $%d", len(args)))
	}
	if params.Size != "" {
		args = append(args, params.Size)
		where = append(where, fmt.Sprintf("$%d = ANY(sizes)", len(args)))
	}

	var clause string
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	// Total is computed on the filters only, before the window is applied.
	var total int64
	if err := p.db.QueryRow(ctx, "SELECT COUNT(*) FROM products"+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	query := fmt.Sprintf("SELECT %s FROM products%s ORDER BY title ASC LIMIT $%d OFFSET $%d",
		productColumns, clause, len(args)+1, len(args)+2)
	args = append(args, params.Limit, params.Offset)

	rows, err := p.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := make([]Product, 0, params.Limit)
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan product row: %w", err)
		}
		products = append(products, *product)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate product rows: %w", err)
	}

	if err := p.attachImages(ctx, products); err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// Update applies a partial update inside one transaction: load the current
// row, merge the patch onto it, replace the image set when one is supplied,
// and persist the result. Any failure rolls the whole transaction back.
func (p *PgStore) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*Product, error) {
	var updated *Product

	txErr := p.withTransaction(ctx, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1 FOR UPDATE`, id)
		product, err := scanProduct(row)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return caterrors.ErrProductNotFound
			}
			return fmt.Errorf("failed to load product for update: %w", err)
		}

		mergePatch(product, params)

		if params.ImageURLs != nil {
			// Full replace: drop the owned set, then stage the new rows.
			if _, err := tx.Exec(ctx, `DELETE FROM product_images WHERE product_id = $1`, id); err != nil {
				return fmt.Errorf("failed to delete product images: %w", err)
			}
			images, err := insertImages(ctx, tx, id, params.ImageURLs)
			if err != nil {
				return p.translate("replace product images", err)
			}
			product.Images = images
		} else {
			images, err := imagesFor(ctx, tx, id)
			if err != nil {
				return fmt.Errorf("failed to load product images: %w", err)
			}
			product.Images = images
		}

		_, err = tx.Exec(ctx,
			`UPDATE products
			 SET title = $1, slug = $2, description = $3, price = $4,
			     stock = $5, sizes = $6, gender = $7, tags = $8, updated_at = now()
			 WHERE id = $9`,
			product.Title, product.Slug, product.Description, product.Price,
			product.Stock, product.Sizes, product.Gender, product.Tags, id,
		)
		if err != nil {
			return p.translate("update product", err)
		}

		updated = product
		return nil
	})

	if txErr != nil {
		return nil, txErr
	}
	return updated, nil
}

// DeleteByID removes a product by its unique identifier. The images go with
// it via ON DELETE CASCADE. Returns ErrProductNotFound if no row was affected.
func (p *PgStore) DeleteByID(ctx context.Context, id uuid.UUID) error {
	tag, err := p.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product by ID: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return caterrors.ErrProductNotFound
	}
	return nil
}

// DeleteAll removes every product and, by cascade, every image.
func (p *PgStore) DeleteAll(ctx context.Context) error {
	if _, err := p.db.Exec(ctx, `DELETE FROM products`); err != nil {
		return fmt.Errorf("failed to delete all products: %w", err)
	}
	return nil
}

// withTransaction runs fn inside a transaction, committing on success and
// rolling back on any failure. Resources are released on every path.
func (p *PgStore) withTransaction(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := p.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			p.logger.Error("transaction rollback failed", "error", rbErr)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// translate maps a unique constraint violation to ErrDuplicateProduct,
// logging the driver detail instead of exposing it. Everything else stays an
// opaque wrapped storage error.
func (p *PgStore) translate(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		p.logger.Warn("unique constraint violated", "op", op, "constraint", pgErr.ConstraintName, "detail", pgErr.Detail)
		return caterrors.ErrDuplicateProduct
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

// mergePatch overwrites each product field the patch specifies and keeps the
// stored value for every field it omits.
func mergePatch(product *Product, params UpdateParams) {
	if params.Title != nil {
		product.Title = *params.Title
	}
	if params.Slug != nil {
		product.Slug = *params.Slug
	}
	if params.Description != nil {
		product.Description = *params.Description
	}
	if params.Price != nil {
		product.Price = *params.Price
	}
	if params.Stock != nil {
		product.Stock = *params.Stock
	}
	if params.Sizes != nil {
		product.Sizes = params.Sizes
	}
	if params.Gender != nil {
		product.Gender = *params.Gender
	}
	if params.Tags != nil {
		product.Tags = params.Tags
	}
}

func scanProduct(row pgx.Row) (*Product, error) {
	var product Product
	err := row.Scan(
		&product.ID, &product.Title, &product.Slug, &product.Description,
		&product.Price, &product.Stock, &product.Sizes, &product.Gender, &product.Tags,
	)
	if err != nil {
		return nil, err
	}
	product.Images = []ProductImage{}
	return &product, nil
}

// insertImages persists one row per URL referencing the owning product,
// preserving the order of urls.
func insertImages(ctx context.Context, tx pgx.Tx, productID uuid.UUID, urls []string) ([]ProductImage, error) {
	images := make([]ProductImage, 0, len(urls))
	for _, url := range urls {
		var image ProductImage
		err := tx.QueryRow(ctx,
			`INSERT INTO product_images (url, product_id) VALUES ($1, $2)
			 RETURNING id, url, product_id`,
			url, productID,
		).Scan(&image.ID, &image.URL, &image.ProductID)
		if err != nil {
			return nil, err
		}
		images = append(images, image)
	}
	return images, nil
}

// imagesFor loads the owned image collection in insertion order.
func imagesFor(ctx context.Context, q querier, productID uuid.UUID) ([]ProductImage, error) {
	rows, err := q.Query(ctx,
		`SELECT id, url, product_id FROM product_images WHERE product_id = $1 ORDER BY id`,
		productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	images := make([]ProductImage, 0, 4)
	for rows.Next() {
		var image ProductImage
		if err := rows.Scan(&image.ID, &image.URL, &image.ProductID); err != nil {
			return nil, err
		}
		images = append(images, image)
	}
	return images, rows.Err()
}

// attachImages loads the images for a whole page of products in one query.
func (p *PgStore) attachImages(ctx context.Context, products []Product) error {
	if len(products) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(products))
	index := make(map[uuid.UUID]*Product, len(products))
	for i := range products {
		ids[i] = products[i].ID
		index[products[i].ID] = &products[i]
	}

	rows, err := p.db.Query(ctx,
		`SELECT id, url, product_id FROM product_images WHERE product_id = ANY($1) ORDER BY id`,
		ids)
	if err != nil {
		return fmt.Errorf("failed to load page images: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var image ProductImage
		if err := rows.Scan(&image.ID, &image.URL, &image.ProductID); err != nil {
			return fmt.Errorf("failed to scan image row: %w", err)
		}
		if owner, ok := index[image.ProductID]; ok {
			owner.Images = append(owner.Images, image)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate image rows: %w", err)
	}
	return nil
}
