package models

// Grade is a school grade lookup row (PP1, Grade 1, ...).
type Grade struct {
	ID   int    `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// Subject is a curriculum subject lookup row.
type Subject struct {
	ID   int    `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// Category is a product category lookup row.
type Category struct {
	ID   int    `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// Display names used when a product has no grade, subject or category.
const (
	FallbackGradeName    = "All Grades"
	FallbackSubjectName  = "All Subjects"
	FallbackCategoryName = "Books"
)
