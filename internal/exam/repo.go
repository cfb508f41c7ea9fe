package exam

import (
	"context"
	"errors"
)

var (
	ErrNotFound       = errors.New("exam not found")
	ErrCourseNotFound = errors.New("course not found")
	ErrNotCourseOwner = errors.New("not an instructor of this course")
)

type Store interface {
	PutExam(ctx context.Context, e Exam) error
	UpdateExam(ctx context.Context, e Exam) error
	GetExam(ctx context.Context, id string) (Exam, error)
	ListExamsByInstructor(ctx context.Context, instructorID string) ([]Exam, error)

	CreateCourse(ctx context.Context, c Course, instructorID string) error
	GetCourse(ctx context.Context, id string) (Course, error)
	ListCoursesByInstructor(ctx context.Context, instructorID string) ([]Course, error)
	CourseOwnedBy(ctx context.Context, courseID, instructorID string) (bool, error)
}
