package repository

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { raw.Close() })
	return sqlx.NewDb(raw, "postgres"), mock
}

var productColumns = []string{
	"id", "title", "grade_id", "subject_id", "category_id", "price",
	"image", "publisher", "isbn", "description", "stock",
	"created_at", "updated_at", "grade_name", "subject_name", "category_name",
}
