package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/GTDGit/cbc_bookstore/internal/metrics"
	"github.com/GTDGit/cbc_bookstore/internal/models"
	"github.com/GTDGit/cbc_bookstore/internal/utils"
)

// PostgreSQL error codes the repositories translate.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// ProductRepository handles data access for products.
type ProductRepository struct {
	db *sqlx.DB
}

// NewProductRepository creates a new ProductRepository.
func NewProductRepository(db *sqlx.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// List returns one page of products matching the filter along with the total
// number of matching rows.
func (r *ProductRepository) List(ctx context.Context, filter ProductFilter) ([]models.Product, int, error) {
	defer metrics.TrackDBOperation("product_list")(time.Now())

	countQuery, countArgs := BuildProductCountQuery(filter)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("%w: count products: %w", utils.ErrQueryFailure, err)
	}

	listQuery, args := BuildProductQuery(filter)
	products := []models.Product{}
	if err := r.db.SelectContext(ctx, &products, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("%w: list products: %w", utils.ErrQueryFailure, err)
	}
	return products, total, nil
}

// GetByID returns a single product with its joined lookup names.
func (r *ProductRepository) GetByID(ctx context.Context, id int) (*models.Product, error) {
	defer metrics.TrackDBOperation("product_get")(time.Now())

	q := productSelect + ` WHERE p.id = $1`
	var p models.Product
	if err := r.db.GetContext(ctx, &p, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: product %d", utils.ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: get product: %w", utils.ErrQueryFailure, err)
	}
	return &p, nil
}

// UpsertByISBN inserts a product or, when the ISBN already exists, replaces
// only its title, price and stock. It reports whether a new row was created
// and refreshes product with the stored row.
func (r *ProductRepository) UpsertByISBN(ctx context.Context, product *models.Product) (bool, error) {
	defer metrics.TrackDBOperation("product_upsert")(time.Now())

	const q = `
        INSERT INTO products (title, grade_id, subject_id, category_id, price, image, publisher, isbn, description, stock)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        ON CONFLICT (isbn) DO UPDATE SET
            title = EXCLUDED.title,
            price = EXCLUDED.price,
            stock = EXCLUDED.stock,
            updated_at = NOW()
        RETURNING id, grade_id, subject_id, category_id, image, publisher, description,
                  created_at, updated_at, (xmax = 0) AS inserted`

	var inserted bool
	err := r.db.QueryRowxContext(ctx, q,
		product.Title,
		product.GradeID,
		product.SubjectID,
		product.CategoryID,
		product.Price,
		product.Image,
		product.Publisher,
		product.ISBN,
		product.Description,
		product.Stock,
	).Scan(
		&product.ID,
		&product.GradeID,
		&product.SubjectID,
		&product.CategoryID,
		&product.Image,
		&product.Publisher,
		&product.Description,
		&product.CreatedAt,
		&product.UpdatedAt,
		&inserted,
	)
	if err != nil {
		return false, translateWriteError("upsert product", err)
	}
	return inserted, nil
}

// Update overwrites every editable field of an existing product.
func (r *ProductRepository) Update(ctx context.Context, product *models.Product) error {
	defer metrics.TrackDBOperation("product_update")(time.Now())

	const q = `
        UPDATE products
        SET title = $1, grade_id = $2, subject_id = $3, category_id = $4, price = $5,
            image = $6, publisher = $7, isbn = $8, description = $9, stock = $10,
            updated_at = NOW()
        WHERE id = $11
        RETURNING created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, q,
		product.Title,
		product.GradeID,
		product.SubjectID,
		product.CategoryID,
		product.Price,
		product.Image,
		product.Publisher,
		product.ISBN,
		product.Description,
		product.Stock,
		product.ID,
	).Scan(&product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: product %d", utils.ErrNotFound, product.ID)
		}
		return translateWriteError("update product", err)
	}
	return nil
}

// translateWriteError maps constraint violations to validation errors and
// everything else to a query failure.
func translateWriteError(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%w: %s: duplicate value violates %s", utils.ErrValidation, op, pqErr.Constraint)
		case pgForeignKeyViolation:
			return fmt.Errorf("%w: %s: referenced row does not exist (%s)", utils.ErrValidation, op, pqErr.Constraint)
		}
	}
	return fmt.Errorf("%w: %s: %w", utils.ErrQueryFailure, op, err)
}
