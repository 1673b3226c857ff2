package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-timetable-engine/internal/models"
)

// FacultyRepository reads faculty members from the catalog.
type FacultyRepository struct {
	db *sqlx.DB
}

// NewFacultyRepository constructs a FacultyRepository.
func NewFacultyRepository(db *sqlx.DB) *FacultyRepository {
	return &FacultyRepository{db: db}
}

// ListByDepartment returns the department's faculty ordered by name.
func (r *FacultyRepository) ListByDepartment(ctx context.Context, instituteID, department string) ([]models.Faculty, error) {
	const query = `SELECT id, institute_id, name, department, classes, subjects FROM faculty
WHERE institute_id = $1 AND department = $2 ORDER BY name ASC, id ASC`
	var faculty []models.Faculty
	if err := r.db.SelectContext(ctx, &faculty, query, instituteID, department); err != nil {
		return nil, fmt.Errorf("list faculty by department: %w", err)
	}
	return faculty, nil
}
