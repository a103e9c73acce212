package service

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/GTDGit/cbc_bookstore/internal/metrics"
	"github.com/GTDGit/cbc_bookstore/internal/models"
	"github.com/GTDGit/cbc_bookstore/internal/repository"
	"github.com/GTDGit/cbc_bookstore/internal/utils"
)

// ProductAdminService handles secret-gated product writes.
type ProductAdminService struct {
	productRepo *repository.ProductRepository
	secret      []byte
}

// NewProductAdminService constructs a ProductAdminService that accepts the
// given shared admin secret.
func NewProductAdminService(productRepo *repository.ProductRepository, adminSecret string) *ProductAdminService {
	return &ProductAdminService{
		productRepo: productRepo,
		secret:      []byte(adminSecret),
	}
}

// ProductRequest is the full product payload accepted by admin endpoints.
// Lookup ids of 0 are treated as "none".
type ProductRequest struct {
	Title       string          `json:"title"`
	GradeID     *int            `json:"grade_id"`
	SubjectID   *int            `json:"subject_id"`
	CategoryID  *int            `json:"category_id"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
	Publisher   string          `json:"publisher"`
	ISBN        string          `json:"isbn"`
	Description string          `json:"description"`
	Stock       int             `json:"stock"`
}

// Authorize checks secret against the configured admin secret in constant time.
func (s *ProductAdminService) Authorize(secret string) error {
	if len(s.secret) == 0 || subtle.ConstantTimeCompare([]byte(secret), s.secret) != 1 {
		metrics.AdminAuthFailures.Inc()
		return fmt.Errorf("%w: invalid admin password", utils.ErrUnauthorized)
	}
	return nil
}

func (r *ProductRequest) validate() error {
	r.Title = strings.TrimSpace(r.Title)
	r.ISBN = strings.TrimSpace(r.ISBN)

	switch {
	case r.Title == "":
		return fmt.Errorf("%w: title is required", utils.ErrValidation)
	case r.ISBN == "":
		return fmt.Errorf("%w: isbn is required", utils.ErrValidation)
	case r.Price.IsNegative():
		return fmt.Errorf("%w: price must be >= 0", utils.ErrValidation)
	case r.Stock < 0:
		return fmt.Errorf("%w: stock must be >= 0", utils.ErrValidation)
	}
	return nil
}

func (r *ProductRequest) toModel() *models.Product {
	return &models.Product{
		Title:       r.Title,
		GradeID:     optionalID(r.GradeID),
		SubjectID:   optionalID(r.SubjectID),
		CategoryID:  optionalID(r.CategoryID),
		Price:       r.Price,
		Image:       r.Image,
		Publisher:   r.Publisher,
		ISBN:        r.ISBN,
		Description: r.Description,
		Stock:       r.Stock,
	}
}

func optionalID(id *int) *int {
	if id == nil || *id <= 0 {
		return nil
	}
	return id
}

// Upsert creates the product or, if its ISBN exists, updates title, price and
// stock of the existing row. It returns the stored product and whether it was
// newly created.
func (s *ProductAdminService) Upsert(ctx context.Context, req *ProductRequest) (*models.Product, bool, error) {
	if err := req.validate(); err != nil {
		return nil, false, err
	}

	product := req.toModel()
	created, err := s.productRepo.UpsertByISBN(ctx, product)
	if err != nil {
		metrics.ProductUpserts.WithLabelValues("error").Inc()
		log.Error().Err(err).Str("isbn", req.ISBN).Msg("Admin product upsert failed")
		return nil, false, err
	}

	outcome := "updated"
	if created {
		outcome = "created"
	}
	metrics.ProductUpserts.WithLabelValues(outcome).Inc()
	log.Info().Int("product_id", product.ID).Str("isbn", product.ISBN).Str("outcome", outcome).Msg("Product upserted")

	stored, err := s.productRepo.GetByID(ctx, product.ID)
	if err != nil {
		return nil, false, err
	}
	return stored, created, nil
}

// Update overwrites every field of product id.
func (s *ProductAdminService) Update(ctx context.Context, id int, req *ProductRequest) (*models.Product, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: invalid product id", utils.ErrValidation)
	}
	if err := req.validate(); err != nil {
		return nil, err
	}

	product := req.toModel()
	product.ID = id
	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}
	log.Info().Int("product_id", id).Msg("Product updated")

	return s.productRepo.GetByID(ctx, id)
}
