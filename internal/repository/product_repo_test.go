package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/cbc_bookstore/internal/models"
	"github.com/GTDGit/cbc_bookstore/internal/utils"
)

func TestProductRepository_List_WorkedExample(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProductRepository(db)
	now := time.Now()

	mock.ExpectQuery(`SELECT COUNT\(1\) FROM products p WHERE p.grade_id = ANY\(\$1\)`).
		WithArgs(pq.Array([]int64{3, 4})).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery(`ORDER BY p.price ASC, p.id ASC LIMIT \$2 OFFSET \$3`).
		WithArgs(pq.Array([]int64{3, 4}), 2, 0).
		WillReturnRows(sqlmock.NewRows(productColumns).
			AddRow(3, "Grade 4 Maths", 4, nil, nil, "300.00", "", "KLB", "isbn-3", "", 5, now, now, "Grade 4", "All Subjects", "Books").
			AddRow(1, "Grade 3 English", 3, 2, 1, "500.00", "", "Longhorn", "isbn-1", "", 9, now, now, "Grade 3", "English", "Textbooks"))

	products, total, err := repo.List(context.Background(), ProductFilter{GradeIDs: []int64{3, 4}, Sort: SortPriceLow, Limit: 2})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	assert.Equal(t, 2, total)
	require.Len(t, products, 2)
	assert.Equal(t, 3, products[0].ID)
	assert.True(t, products[0].Price.Equal(decimal.NewFromInt(300)))
	assert.Nil(t, products[0].SubjectID)
	assert.Equal(t, models.FallbackSubjectName, products[0].SubjectName)
	assert.Equal(t, 1, products[1].ID)
	assert.True(t, products[1].Price.Equal(decimal.NewFromInt(500)))
}

func TestProductRepository_List_EmptyResultIsNotAnError(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProductRepository(db)

	mock.ExpectQuery(`SELECT COUNT\(1\)`).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`FROM products p`).WillReturnRows(sqlmock.NewRows(productColumns))

	products, total, err := repo.List(context.Background(), ProductFilter{})
	require.NoError(t, err)
	assert.Equal(t, 0, total)
	assert.NotNil(t, products)
	assert.Empty(t, products)
}

func TestProductRepository_List_SurfacesQueryFailure(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProductRepository(db)

	mock.ExpectQuery(`SELECT COUNT\(1\)`).WillReturnError(errors.New("connection reset"))

	products, _, err := repo.List(context.Background(), ProductFilter{})
	require.Error(t, err)
	assert.ErrorIs(t, err, utils.ErrQueryFailure)
	assert.Contains(t, err.Error(), "connection reset")
	assert.Nil(t, products)
}

func TestProductRepository_GetByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProductRepository(db)
	now := time.Now()

	mock.ExpectQuery(`WHERE p.id = \$1`).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows(productColumns).
			AddRow(7, "Kiswahili Mufti", nil, nil, nil, "450", "", "Oxford", "isbn-7", "desc", 3, now, now, "All Grades", "All Subjects", "Books"))

	p, err := repo.GetByID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "Kiswahili Mufti", p.Title)
	assert.Equal(t, models.FallbackGradeName, p.GradeName)
	assert.Equal(t, models.FallbackCategoryName, p.CategoryName)
}

func TestProductRepository_GetByID_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProductRepository(db)

	mock.ExpectQuery(`WHERE p.id = \$1`).WithArgs(99).WillReturnRows(sqlmock.NewRows(productColumns))

	_, err := repo.GetByID(context.Background(), 99)
	assert.ErrorIs(t, err, utils.ErrNotFound)
	assert.NotErrorIs(t, err, utils.ErrQueryFailure)
}

func TestProductRepository_GetByID_QueryFailure(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProductRepository(db)

	mock.ExpectQuery(`WHERE p.id = \$1`).WithArgs(1).WillReturnError(errors.New("timeout"))

	_, err := repo.GetByID(context.Background(), 1)
	assert.ErrorIs(t, err, utils.ErrQueryFailure)
	assert.NotErrorIs(t, err, utils.ErrNotFound)
}

func TestProductRepository_UpsertByISBN(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProductRepository(db)
	now := time.Now()
	grade := 3

	p := &models.Product{
		Title:     "Grade 3 Maths",
		GradeID:   &grade,
		Price:     decimal.NewFromInt(650),
		Publisher: "KLB",
		ISBN:      "978-9966",
		Stock:     12,
	}

	mock.ExpectQuery(`ON CONFLICT \(isbn\) DO UPDATE SET`).
		WithArgs(p.Title, p.GradeID, nil, nil, p.Price, "", "KLB", "978-9966", "", 12).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "grade_id", "subject_id", "category_id", "image", "publisher", "description",
			"created_at", "updated_at", "inserted",
		}).AddRow(11, 3, nil, nil, "img.png", "KLB", "kept", now, now, false))

	inserted, err := repo.UpsertByISBN(context.Background(), p)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	assert.False(t, inserted)
	assert.Equal(t, 11, p.ID)
	assert.Equal(t, "img.png", p.Image)
	assert.Equal(t, "kept", p.Description)
}

func TestProductRepository_UpsertByISBN_UnknownGrade(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProductRepository(db)

	mock.ExpectQuery(`INSERT INTO products`).
		WillReturnError(&pq.Error{Code: pgForeignKeyViolation, Constraint: "products_grade_id_fkey"})

	_, err := repo.UpsertByISBN(context.Background(), &models.Product{Title: "x", ISBN: "y"})
	assert.ErrorIs(t, err, utils.ErrValidation)
}

func TestProductRepository_Update(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProductRepository(db)
	now := time.Now()

	mock.ExpectQuery(`UPDATE products`).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	p := &models.Product{ID: 4, Title: "t", ISBN: "i", Price: decimal.NewFromInt(10)}
	require.NoError(t, repo.Update(context.Background(), p))
	assert.Equal(t, now, p.UpdatedAt)
}

func TestProductRepository_Update_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProductRepository(db)

	mock.ExpectQuery(`UPDATE products`).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}))

	err := repo.Update(context.Background(), &models.Product{ID: 404})
	assert.ErrorIs(t, err, utils.ErrNotFound)
}

func TestProductRepository_Update_DuplicateISBN(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProductRepository(db)

	mock.ExpectQuery(`UPDATE products`).
		WillReturnError(&pq.Error{Code: pgUniqueViolation, Constraint: "products_isbn_key"})

	err := repo.Update(context.Background(), &models.Product{ID: 1})
	assert.ErrorIs(t, err, utils.ErrValidation)
	assert.Contains(t, err.Error(), "products_isbn_key")
}
