package service

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/cbc_bookstore/internal/repository"
	"github.com/GTDGit/cbc_bookstore/internal/utils"
)

var upsertColumns = []string{
	"id", "grade_id", "subject_id", "category_id", "image", "publisher", "description",
	"created_at", "updated_at", "inserted",
}

func intPtr(v int) *int { return &v }

func TestProductAdminService_Authorize(t *testing.T) {
	db, _ := newMockDB(t)
	svc := NewProductAdminService(repository.NewProductRepository(db), "s3cret")

	assert.NoError(t, svc.Authorize("s3cret"))
	assert.ErrorIs(t, svc.Authorize("S3CRET"), utils.ErrUnauthorized)
	assert.ErrorIs(t, svc.Authorize(""), utils.ErrUnauthorized)

	unset := NewProductAdminService(repository.NewProductRepository(db), "")
	assert.ErrorIs(t, unset.Authorize(""), utils.ErrUnauthorized)
}

func TestProductAdminService_Upsert_Validation(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewProductAdminService(repository.NewProductRepository(db), "x")

	cases := []*ProductRequest{
		{ISBN: "1", Price: dec("10")},
		{Title: "A", Price: dec("10")},
		{Title: "A", ISBN: "1", Price: dec("-1")},
		{Title: "A", ISBN: "1", Price: dec("1"), Stock: -2},
	}
	for _, req := range cases {
		_, _, err := svc.Upsert(context.Background(), req)
		assert.ErrorIs(t, err, utils.ErrValidation)
	}
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProductAdminService_Upsert_IsIdempotentOnISBN(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewProductAdminService(repository.NewProductRepository(db), "x")
	now := time.Now()

	req := func() *ProductRequest {
		return &ProductRequest{
			Title:      "Grade 3 Maths",
			GradeID:    intPtr(3),
			SubjectID:  intPtr(0),
			CategoryID: nil,
			Price:      dec("650"),
			Publisher:  "KLB",
			ISBN:       " 978-9966 ",
			Stock:      12,
		}
	}

	for i, inserted := range []bool{true, false} {
		mock.ExpectQuery(`ON CONFLICT \(isbn\) DO UPDATE SET`).
			WithArgs("Grade 3 Maths", intPtr(3), nil, nil, dec("650"), "", "KLB", "978-9966", "", 12).
			WillReturnRows(sqlmock.NewRows(upsertColumns).AddRow(11, 3, nil, nil, "", "KLB", "", now, now, inserted))
		mock.ExpectQuery(`WHERE p.id = \$1`).
			WithArgs(11).
			WillReturnRows(sqlmock.NewRows(productColumns).
				AddRow(11, "Grade 3 Maths", 3, nil, nil, "650", "", "KLB", "978-9966", "", 12, now, now, "Grade 3", "All Subjects", "Books"))

		product, created, err := svc.Upsert(context.Background(), req())
		require.NoError(t, err, "call %d", i)
		assert.Equal(t, inserted, created)
		assert.Equal(t, 11, product.ID)
		assert.Equal(t, "Grade 3", product.GradeName)
	}
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProductAdminService_Update(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewProductAdminService(repository.NewProductRepository(db), "x")
	now := time.Now()

	mock.ExpectQuery(`UPDATE products`).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	mock.ExpectQuery(`WHERE p.id = \$1`).
		WithArgs(4).
		WillReturnRows(sqlmock.NewRows(productColumns).
			AddRow(4, "Kiswahili", nil, nil, nil, "450", "", "Oxford", "isbn-4", "", 2, now, now, "All Grades", "All Subjects", "Books"))

	product, err := svc.Update(context.Background(), 4, &ProductRequest{Title: "Kiswahili", ISBN: "isbn-4", Price: dec("450"), Stock: 2})
	require.NoError(t, err)
	assert.Equal(t, 4, product.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProductAdminService_Update_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewProductAdminService(repository.NewProductRepository(db), "x")

	mock.ExpectQuery(`UPDATE products`).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}))

	_, err := svc.Update(context.Background(), 99, &ProductRequest{Title: "A", ISBN: "b", Price: dec("1")})
	assert.ErrorIs(t, err, utils.ErrNotFound)

	_, err = svc.Update(context.Background(), 0, &ProductRequest{Title: "A", ISBN: "b"})
	assert.ErrorIs(t, err, utils.ErrValidation)
	require.NoError(t, mock.ExpectationsWereMet())
}
