package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-timetable-engine/internal/models"
)

func newCatalogRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestFacultyRepositoryListByDepartment(t *testing.T) {
	db, mock, cleanup := newCatalogRepoMock(t)
	defer cleanup()
	repo := NewFacultyRepository(db)

	rows := sqlmock.NewRows([]string{"id", "institute_id", "name", "department", "classes", "subjects"}).
		AddRow("f-1", "inst-1", "Ana", "science", []byte("{X-A,X-B}"), []byte("{math}")).
		AddRow("f-2", "inst-1", "Budi", "science", []byte("{}"), []byte("{}"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, institute_id, name, department, classes, subjects FROM faculty WHERE institute_id = $1 AND department = $2")).
		WithArgs("inst-1", "science").
		WillReturnRows(rows)

	faculty, err := repo.ListByDepartment(context.Background(), "inst-1", "science")
	require.NoError(t, err)
	require.Len(t, faculty, 2)
	assert.True(t, faculty[0].CanTeachClass("X-B"))
	assert.False(t, faculty[1].CanTeachClass("X-A"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryListByDepartment(t *testing.T) {
	db, mock, cleanup := newCatalogRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	rows := sqlmock.NewRows([]string{"id", "institute_id", "name", "code", "department", "credits", "faculty_id", "duration_minutes", "session_type"}).
		AddRow("c-1", "inst-1", "Mathematics", "MAT1", "science", 3, "f-1", 0, "lecture").
		AddRow("c-2", "inst-1", "Chemistry Lab", "CHL1", "science", 1, "", 120, "lab")
	mock.ExpectQuery(regexp.QuoteMeta("FROM courses WHERE institute_id = $1 AND department = $2")).
		WithArgs("inst-1", "science").
		WillReturnRows(rows)

	courses, err := repo.ListByDepartment(context.Background(), "inst-1", "science")
	require.NoError(t, err)
	require.Len(t, courses, 2)
	assert.Equal(t, 3, courses[0].WeeklyQuota())
	assert.Equal(t, models.EntryTypeLab, courses[1].Type)
	assert.Equal(t, 120, courses[1].DurationMinutes)
	assert.Empty(t, courses[1].FacultyID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryListByDepartmentError(t *testing.T) {
	db, mock, cleanup := newCatalogRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectQuery("FROM courses").WillReturnError(errors.New("timeout"))

	_, err := repo.ListByDepartment(context.Background(), "inst-1", "science")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list courses by department")
}
