package exam

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Service implements exam and course operations for instructors: create,
// update-with-questions, publish/unpublish, listing. It owns id generation
// and the passing-score defaulting rule.
type Service struct {
	store  Store
	events *EventLog
}

func NewService(store Store, events *EventLog) *Service {
	return &Service{store: store, events: events}
}

func defaultPassingScore(totalScore float64) float64 {
	return math.Ceil(totalScore * 0.3)
}

func (s *Service) CreateExam(ctx context.Context, instructorID string, req CreateExamRequest) (Exam, error) {
	if strings.TrimSpace(req.CourseID) == "" {
		return Exam{}, fmt.Errorf("course id is required")
	}
	course, err := s.store.GetCourse(ctx, req.CourseID)
	if err != nil {
		return Exam{}, err
	}
	owned, err := s.store.CourseOwnedBy(ctx, req.CourseID, instructorID)
	if err != nil {
		return Exam{}, err
	}
	if !owned {
		return Exam{}, ErrNotCourseOwner
	}

	e := Exam{
		ID:           uuid.NewString(),
		Title:        req.Title,
		Course:       course,
		Duration:     req.Duration,
		TotalScore:   req.TotalScore,
		PassingScore: defaultPassingScore(req.TotalScore),
		MaxAttempts:  1,
		Published:    false,
		CreatedAt:    time.Now().Unix(),
	}
	for _, q := range req.Questions {
		e.Questions = append(e.Questions, Question{
			ID:             uuid.NewString(),
			Text:           q.Text,
			Type:           q.Type,
			Marks:          q.Marks,
			Options:        q.Options,
			CorrectAnswer:  q.CorrectAnswer,
			IsCodeQuestion: q.IsCodeQuestion,
			CodeSnippet:    q.CodeSnippet,
		})
	}
	e.NumberOfQuestions = len(e.Questions)

	if err := s.store.PutExam(ctx, e); err != nil {
		return Exam{}, err
	}
	s.events.Record(ctx, EventExamCreated, e.ID, map[string]any{"title": e.Title, "course": course.ID})
	return e, nil
}

// UpdateExamWithQuestions patches exam fields and reconciles the question
// list: rows carrying an id update the matching question, rows without one
// insert. Questions missing from the request are left alone, not deleted.
func (s *Service) UpdateExamWithQuestions(ctx context.Context, instructorID, examID string, req UpdateExamRequest) (Exam, error) {
	e, err := s.store.GetExam(ctx, examID)
	if err != nil {
		return Exam{}, err
	}
	owned, err := s.store.CourseOwnedBy(ctx, e.Course.ID, instructorID)
	if err != nil {
		return Exam{}, err
	}
	if !owned {
		return Exam{}, ErrNotCourseOwner
	}

	if req.Title != "" {
		e.Title = req.Title
	}
	if req.Duration > 0 {
		e.Duration = req.Duration
	}
	if req.TotalScore > 0 {
		e.TotalScore = req.TotalScore
		e.PassingScore = defaultPassingScore(req.TotalScore)
	}

	byID := map[string]int{}
	for i, q := range e.Questions {
		byID[q.ID] = i
	}
	for _, qr := range req.Questions {
		if qr.ID == "" {
			e.Questions = append(e.Questions, Question{
				ID:            uuid.NewString(),
				Text:          qr.QuestionText,
				Type:          qr.Type,
				Marks:         qr.Marks,
				Options:       qr.Options,
				CorrectAnswer: qr.CorrectAnswer,
			})
			continue
		}
		i, ok := byID[qr.ID]
		if !ok {
			return Exam{}, fmt.Errorf("question %s: %w", qr.ID, ErrNotFound)
		}
		q := &e.Questions[i]
		if qr.QuestionText != "" {
			q.Text = qr.QuestionText
		}
		if qr.Type != "" {
			q.Type = qr.Type
		}
		if qr.Marks > 0 {
			q.Marks = qr.Marks
		}
		if qr.Options != nil {
			q.Options = qr.Options
		}
		if qr.CorrectAnswer != "" {
			q.CorrectAnswer = qr.CorrectAnswer
		}
	}

	if req.NumberOfQuestions > 0 {
		e.NumberOfQuestions = req.NumberOfQuestions
	} else {
		e.NumberOfQuestions = len(e.Questions)
	}

	if err := s.store.UpdateExam(ctx, e); err != nil {
		return Exam{}, err
	}
	s.events.Record(ctx, EventExamUpdated, e.ID, map[string]any{"questions": len(e.Questions)})
	return e, nil
}

func (s *Service) setPublished(ctx context.Context, examID string, published bool) (Exam, error) {
	e, err := s.store.GetExam(ctx, examID)
	if err != nil {
		return Exam{}, err
	}
	e.Published = published
	if err := s.store.UpdateExam(ctx, e); err != nil {
		return Exam{}, err
	}
	typ := EventExamUnpublished
	if published {
		typ = EventExamPublished
	}
	s.events.Record(ctx, typ, e.ID, nil)
	return e, nil
}

func (s *Service) PublishExam(ctx context.Context, examID string) (Exam, error) {
	return s.setPublished(ctx, examID, true)
}

func (s *Service) UnpublishExam(ctx context.Context, examID string) (Exam, error) {
	return s.setPublished(ctx, examID, false)
}

func (s *Service) GetExam(ctx context.Context, examID string) (Exam, error) {
	return s.store.GetExam(ctx, examID)
}

func (s *Service) ListExamsForInstructor(ctx context.Context, instructorID string) ([]Exam, error) {
	return s.store.ListExamsByInstructor(ctx, instructorID)
}

func (s *Service) CreateCourse(ctx context.Context, instructorID, name string) (Course, error) {
	if strings.TrimSpace(name) == "" {
		return Course{}, fmt.Errorf("course name is required")
	}
	c := Course{ID: uuid.NewString(), Name: name}
	if err := s.store.CreateCourse(ctx, c, instructorID); err != nil {
		return Course{}, err
	}
	return c, nil
}

func (s *Service) ListCoursesForInstructor(ctx context.Context, instructorID string) ([]Course, error) {
	return s.store.ListCoursesByInstructor(ctx, instructorID)
}
