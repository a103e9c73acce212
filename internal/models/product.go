package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a book in the catalog.
// Fields are tagged for both DB scanning and JSON serialization.
type Product struct {
	ID          int             `db:"id" json:"id"`
	Title       string          `db:"title" json:"title"`
	GradeID     *int            `db:"grade_id" json:"grade_id"`
	SubjectID   *int            `db:"subject_id" json:"subject_id"`
	CategoryID  *int            `db:"category_id" json:"category_id"`
	Price       decimal.Decimal `db:"price" json:"price"`
	Image       string          `db:"image" json:"image"`
	Publisher   string          `db:"publisher" json:"publisher"`
	ISBN        string          `db:"isbn" json:"isbn"`
	Description string          `db:"description" json:"description"`
	Stock       int             `db:"stock" json:"stock"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`

	// Joined lookup names (populated by catalog queries)
	GradeName    string `db:"grade_name" json:"grade_name"`
	SubjectName  string `db:"subject_name" json:"subject_name"`
	CategoryName string `db:"category_name" json:"category_name"`
}
