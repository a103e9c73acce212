package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/cbc_bookstore/internal/models"
	"github.com/GTDGit/cbc_bookstore/internal/utils"
)

// LookupRepository reads the grade, subject and category tables.
type LookupRepository struct {
	db *sqlx.DB
}

// NewLookupRepository creates a new LookupRepository.
func NewLookupRepository(db *sqlx.DB) *LookupRepository {
	return &LookupRepository{db: db}
}

// GetGrades returns all grades ordered by id.
func (r *LookupRepository) GetGrades(ctx context.Context) ([]models.Grade, error) {
	grades := []models.Grade{}
	if err := r.db.SelectContext(ctx, &grades, `SELECT id, name FROM grades ORDER BY id`); err != nil {
		return nil, fmt.Errorf("%w: list grades: %w", utils.ErrQueryFailure, err)
	}
	return grades, nil
}

// GetSubjects returns all subjects ordered by name.
func (r *LookupRepository) GetSubjects(ctx context.Context) ([]models.Subject, error) {
	subjects := []models.Subject{}
	if err := r.db.SelectContext(ctx, &subjects, `SELECT id, name FROM subjects ORDER BY name`); err != nil {
		return nil, fmt.Errorf("%w: list subjects: %w", utils.ErrQueryFailure, err)
	}
	return subjects, nil
}

// GetCategories returns all categories ordered by name.
func (r *LookupRepository) GetCategories(ctx context.Context) ([]models.Category, error) {
	categories := []models.Category{}
	if err := r.db.SelectContext(ctx, &categories, `SELECT id, name FROM categories ORDER BY name`); err != nil {
		return nil, fmt.Errorf("%w: list categories: %w", utils.ErrQueryFailure, err)
	}
	return categories, nil
}
