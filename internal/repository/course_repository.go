package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-timetable-engine/internal/models"
)

// CourseRepository reads courses from the catalog.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs a CourseRepository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// ListByDepartment returns the department's courses in catalog order.
func (r *CourseRepository) ListByDepartment(ctx context.Context, instituteID, department string) ([]models.Course, error) {
	const query = `SELECT id, institute_id, name, code, department, credits, COALESCE(faculty_id, '') AS faculty_id,
COALESCE(duration_minutes, 0) AS duration_minutes, COALESCE(session_type, 'lecture') AS session_type
FROM courses WHERE institute_id = $1 AND department = $2 ORDER BY code ASC, id ASC`
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query, instituteID, department); err != nil {
		return nil, fmt.Errorf("list courses by department: %w", err)
	}
	return courses, nil
}
