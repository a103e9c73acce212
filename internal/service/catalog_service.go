package service

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/GTDGit/cbc_bookstore/internal/cache"
	"github.com/GTDGit/cbc_bookstore/internal/metrics"
	"github.com/GTDGit/cbc_bookstore/internal/models"
	"github.com/GTDGit/cbc_bookstore/internal/repository"
)

// CatalogService serves product listings and the lookup tables.
type CatalogService struct {
	productRepo *repository.ProductRepository
	lookupRepo  *repository.LookupRepository
	lookupCache *cache.LookupCache
}

// NewCatalogService constructs a CatalogService. lookupCache may be nil, in
// which case lookups always hit the database.
func NewCatalogService(productRepo *repository.ProductRepository, lookupRepo *repository.LookupRepository, lookupCache *cache.LookupCache) *CatalogService {
	return &CatalogService{
		productRepo: productRepo,
		lookupRepo:  lookupRepo,
		lookupCache: lookupCache,
	}
}

// ProductPage is one page of a catalog listing.
type ProductPage struct {
	Products   []models.Product
	Page       int
	Limit      int
	TotalItems int
}

// ParseIDList splits a comma-separated id list, silently dropping tokens that
// are not positive integers.
func ParseIDList(raw string) []int64 {
	var ids []int64
	for _, tok := range strings.Split(raw, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		id, err := strconv.ParseInt(tok, 10, 64)
		if err != nil || id <= 0 {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// ParseProductFilter builds a typed filter from listing query parameters.
// Unparseable values are treated as absent.
func ParseProductFilter(q url.Values) repository.ProductFilter {
	f := repository.ProductFilter{
		GradeIDs:    ParseIDList(q.Get("grade_ids")),
		SubjectIDs:  ParseIDList(q.Get("subject_ids")),
		CategoryIDs: ParseIDList(q.Get("category_ids")),
		MinPrice:    parseDecimal(q.Get("min_price")),
		MaxPrice:    parseDecimal(q.Get("max_price")),
		Page:        parseInt(q.Get("page")),
		Limit:       parseInt(q.Get("limit")),
	}

	if search := strings.TrimSpace(q.Get("search")); search != "" {
		f.Search = &search
	}

	switch repository.SortOrder(q.Get("sort")) {
	case repository.SortPriceLow:
		f.Sort = repository.SortPriceLow
	case repository.SortPriceHigh:
		f.Sort = repository.SortPriceHigh
	default:
		f.Sort = repository.SortNewest
	}

	return f.Normalized()
}

func parseDecimal(raw string) *decimal.Decimal {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil
	}
	return &d
}

func parseInt(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	return n
}

// ListProducts returns the page of products matching filter.
func (s *CatalogService) ListProducts(ctx context.Context, filter repository.ProductFilter) (*ProductPage, error) {
	filter = filter.Normalized()

	sortLabel := string(filter.Sort)
	if sortLabel == "" {
		sortLabel = "newest"
	}
	metrics.CatalogQueriesTotal.WithLabelValues(sortLabel).Inc()

	products, total, err := s.productRepo.List(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("Catalog query failed")
		return nil, err
	}

	return &ProductPage{
		Products:   products,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalItems: total,
	}, nil
}

// GetProduct returns a single product with its joined lookup names.
func (s *CatalogService) GetProduct(ctx context.Context, id int) (*models.Product, error) {
	return s.productRepo.GetByID(ctx, id)
}

// GetGrades returns all grades.
func (s *CatalogService) GetGrades(ctx context.Context) ([]models.Grade, error) {
	return cachedLookup(ctx, s.lookupCache, cache.KeyGrades, s.lookupRepo.GetGrades)
}

// GetSubjects returns all subjects.
func (s *CatalogService) GetSubjects(ctx context.Context) ([]models.Subject, error) {
	return cachedLookup(ctx, s.lookupCache, cache.KeySubjects, s.lookupRepo.GetSubjects)
}

// GetCategories returns all categories.
func (s *CatalogService) GetCategories(ctx context.Context) ([]models.Category, error) {
	return cachedLookup(ctx, s.lookupCache, cache.KeyCategories, s.lookupRepo.GetCategories)
}

// cachedLookup reads key through the cache, loading and storing on a miss.
// Cache write failures are logged; the loaded rows are still returned.
func cachedLookup[T any](ctx context.Context, c *cache.LookupCache, key string, load func(context.Context) ([]T, error)) ([]T, error) {
	if c != nil {
		var cached []T
		if c.Get(ctx, key, &cached) {
			return cached, nil
		}
	}

	rows, err := load(ctx)
	if err != nil {
		return nil, err
	}

	if c != nil {
		if err := c.Set(ctx, key, rows); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("Failed to cache lookup rows")
		}
	}
	return rows, nil
}

// RefreshLookups reloads every lookup table into the cache. It is a no-op
// without a cache.
func (s *CatalogService) RefreshLookups(ctx context.Context) error {
	if s.lookupCache == nil {
		return nil
	}
	if err := refreshLookup(ctx, s.lookupCache, cache.KeyGrades, s.lookupRepo.GetGrades); err != nil {
		return err
	}
	if err := refreshLookup(ctx, s.lookupCache, cache.KeySubjects, s.lookupRepo.GetSubjects); err != nil {
		return err
	}
	return refreshLookup(ctx, s.lookupCache, cache.KeyCategories, s.lookupRepo.GetCategories)
}

func refreshLookup[T any](ctx context.Context, c *cache.LookupCache, key string, load func(context.Context) ([]T, error)) error {
	rows, err := load(ctx)
	if err != nil {
		return err
	}
	return c.Set(ctx, key, rows)
}
