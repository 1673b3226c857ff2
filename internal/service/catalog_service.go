package service

import (
	"context"

	"github.com/noah-isme/sma-timetable-engine/internal/models"
	"github.com/noah-isme/sma-timetable-engine/pkg/cache"
	appErrors "github.com/noah-isme/sma-timetable-engine/pkg/errors"
)

type facultyLister interface {
	ListByDepartment(ctx context.Context, instituteID, department string) ([]models.Faculty, error)
}

type courseLister interface {
	ListByDepartment(ctx context.Context, instituteID, department string) ([]models.Course, error)
}

// CatalogService reads faculty and courses for a department, optionally through the cache.
type CatalogService struct {
	faculty facultyLister
	courses courseLister
	cache   *CacheService
}

// NewCatalogService constructs the catalog reader. cacheSvc may be nil.
func NewCatalogService(faculty facultyLister, courses courseLister, cacheSvc *CacheService) *CatalogService {
	return &CatalogService{faculty: faculty, courses: courses, cache: cacheSvc}
}

// Faculty lists the department's faculty members.
func (s *CatalogService) Faculty(ctx context.Context, instituteID, department string) ([]models.Faculty, error) {
	key := cache.CatalogKey(instituteID, "faculty", department)
	var cached []models.Faculty
	if s.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	faculty, err := s.faculty.ListByDepartment(ctx, instituteID, department)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load faculty")
	}
	s.cache.Set(ctx, key, faculty, 0)
	return faculty, nil
}

// Courses lists the department's courses.
func (s *CatalogService) Courses(ctx context.Context, instituteID, department string) ([]models.Course, error) {
	key := cache.CatalogKey(instituteID, "courses", department)
	var cached []models.Course
	if s.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	courses, err := s.courses.ListByDepartment(ctx, instituteID, department)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load courses")
	}
	s.cache.Set(ctx, key, courses, 0)
	return courses, nil
}

// Invalidate drops every cached catalog lookup of the institute.
func (s *CatalogService) Invalidate(ctx context.Context, instituteID string) error {
	return s.cache.Invalidate(ctx, cache.CatalogPattern(instituteID))
}
