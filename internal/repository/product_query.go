package repository

import (
	"fmt"
	"math"
	"strings"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// SortOrder selects the ordering of a product listing.
type SortOrder string

const (
	SortNewest    SortOrder = ""
	SortPriceLow  SortOrder = "price_low"
	SortPriceHigh SortOrder = "price_high"
)

// Pagination defaults for catalog listings.
const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100

	// MaxPage keeps (MaxPage-1)*MaxLimit inside a Postgres integer offset.
	MaxPage = math.MaxInt32 / MaxLimit
)

// ProductFilter holds the optional criteria of a catalog listing. Empty slices
// and nil pointers mean "no constraint".
type ProductFilter struct {
	GradeIDs    []int64
	SubjectIDs  []int64
	CategoryIDs []int64
	MinPrice    *decimal.Decimal
	MaxPrice    *decimal.Decimal
	Search      *string
	Sort        SortOrder
	Page        int
	Limit       int
}

// Normalized returns a copy of f with pagination defaults applied.
func (f ProductFilter) Normalized() ProductFilter {
	if f.Page <= 0 {
		f.Page = DefaultPage
	}
	if f.Limit <= 0 {
		f.Limit = DefaultLimit
	}
	if f.Limit > MaxLimit {
		f.Limit = MaxLimit
	}
	if f.Page > MaxPage {
		f.Page = MaxPage
	}
	return f
}

// Offset returns the row offset of the filter's page.
func (f ProductFilter) Offset() int {
	n := f.Normalized()
	return (n.Page - 1) * n.Limit
}

const productSelect = `
        SELECT p.id, p.title, p.grade_id, p.subject_id, p.category_id, p.price,
               p.image, p.publisher, p.isbn, p.description, p.stock,
               p.created_at, p.updated_at,
               COALESCE(g.name, 'All Grades') AS grade_name,
               COALESCE(s.name, 'All Subjects') AS subject_name,
               COALESCE(c.name, 'Books') AS category_name
        FROM products p
        LEFT JOIN grades g ON p.grade_id = g.id
        LEFT JOIN subjects s ON p.subject_id = s.id
        LEFT JOIN categories c ON p.category_id = c.id`

// whereClause folds over the present criteria in a fixed order (grade,
// subject, category, min_price, max_price, search). Each criterion adds one
// placeholder; values are only ever bound as arguments.
func whereClause(f ProductFilter) (string, []interface{}) {
	var (
		conds []string
		args  []interface{}
	)
	next := func(v interface{}) int {
		args = append(args, v)
		return len(args)
	}

	if len(f.GradeIDs) > 0 {
		conds = append(conds, fmt.Sprintf("p.grade_id = ANY($%d)", next(pq.Array(f.GradeIDs))))
	}
	if len(f.SubjectIDs) > 0 {
		conds = append(conds, fmt.Sprintf("p.subject_id = ANY($%d)", next(pq.Array(f.SubjectIDs))))
	}
	if len(f.CategoryIDs) > 0 {
		conds = append(conds, fmt.Sprintf("p.category_id = ANY($%d)", next(pq.Array(f.CategoryIDs))))
	}
	if f.MinPrice != nil {
		conds = append(conds, fmt.Sprintf("p.price >= $%d", next(*f.MinPrice)))
	}
	if f.MaxPrice != nil {
		conds = append(conds, fmt.Sprintf("p.price <= $%d", next(*f.MaxPrice)))
	}
	if f.Search != nil && *f.Search != "" {
		n := next("%" + escapeLike(*f.Search) + "%")
		conds = append(conds, fmt.Sprintf("(p.title ILIKE $%d OR p.description ILIKE $%d)", n, n))
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// orderClause returns the ORDER BY for s. Price sorts break ties on id so
// offset pagination stays stable.
func orderClause(s SortOrder) string {
	switch s {
	case SortPriceLow:
		return " ORDER BY p.price ASC, p.id ASC"
	case SortPriceHigh:
		return " ORDER BY p.price DESC, p.id DESC"
	default:
		return " ORDER BY p.id DESC"
	}
}

// BuildProductQuery translates f into a single parameterized listing query
// and its arguments.
func BuildProductQuery(f ProductFilter) (string, []interface{}) {
	f = f.Normalized()
	where, args := whereClause(f)

	q := productSelect + where + orderClause(f.Sort)
	args = append(args, f.Limit, f.Offset())
	q += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	return q, args
}

// BuildProductCountQuery returns the COUNT query matching f's criteria.
func BuildProductCountQuery(f ProductFilter) (string, []interface{}) {
	where, args := whereClause(f)
	return `SELECT COUNT(1) FROM products p` + where, args
}

// escapeLike escapes ILIKE wildcards so search terms match literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
