package draft

import (
	"context"
	"strings"

	"github.com/examplatform/examplatform/internal/exam"
)

type SaveKind string

const (
	SaveCreate SaveKind = "CREATE"
	SaveUpdate SaveKind = "UPDATE"
)

// SaveCommand is the single batched request a finished draft turns into.
// Saving everything in one call keeps "3 of 7 questions saved" states out of
// the picture entirely.
type SaveCommand struct {
	Kind   SaveKind
	ExamID string // required for SaveUpdate

	Create *exam.CreateExamRequest
	Update *exam.UpdateExamRequest
}

type SaveResult struct {
	ID   string
	Exam *exam.Exam
}

// Saver executes a save command against the exam service.
type Saver interface {
	Save(ctx context.Context, cmd SaveCommand) (SaveResult, error)
}

func validateDetails(d *ExamDraft, requireCourse bool) error {
	if strings.TrimSpace(d.Title) == "" {
		return &ValidationError{Field: "title", Reason: "exam title is required"}
	}
	if requireCourse && strings.TrimSpace(d.CourseID) == "" {
		return &ValidationError{Field: "courseId", Reason: "select a course for the exam"}
	}
	if d.Duration <= 0 {
		return &ValidationError{Field: "duration", Reason: "duration must be a positive number of minutes"}
	}
	if d.TotalScore <= 0 {
		return &ValidationError{Field: "totalScore", Reason: "total score must be positive"}
	}
	return nil
}

func correctAnswerText(q QuestionDraft) string {
	for _, o := range q.Options {
		if o.IsCorrect {
			return o.Text
		}
	}
	return ""
}

func wireOptions(q QuestionDraft) []exam.Option {
	out := make([]exam.Option, 0, len(q.Options))
	for _, o := range q.Options {
		out = append(out, exam.Option{Text: o.Text, IsCorrect: o.IsCorrect})
	}
	return out
}

// CreatePayload builds the create request for a new exam. The course id is
// required here; it is immutable afterwards.
func CreatePayload(d *ExamDraft) (exam.CreateExamRequest, error) {
	if err := validateDetails(d, true); err != nil {
		return exam.CreateExamRequest{}, err
	}
	qs := make([]exam.CreateQuestion, 0, len(d.Questions))
	for _, q := range d.Questions {
		qs = append(qs, exam.CreateQuestion{
			Text:           q.Text,
			Type:           string(q.Type),
			Marks:          q.Marks,
			Options:        wireOptions(q),
			CorrectAnswer:  correctAnswerText(q),
			IsCodeQuestion: q.IsCodeQuestion,
			CodeSnippet:    q.CodeSnippet,
		})
	}
	return exam.CreateExamRequest{
		Title:      d.Title,
		CourseID:   d.CourseID,
		Duration:   d.Duration,
		TotalScore: d.TotalScore,
		Questions:  qs,
	}, nil
}

// UpdatePayload builds the update request for an existing exam. It omits the
// course id, derives numberOfQuestions from the list, and sends a question id
// only when the question pre-existed on the server.
func UpdatePayload(d *ExamDraft) (exam.UpdateExamRequest, error) {
	if err := validateDetails(d, false); err != nil {
		return exam.UpdateExamRequest{}, err
	}
	qs := make([]exam.UpdateQuestion, 0, len(d.Questions))
	for _, q := range d.Questions {
		qs = append(qs, exam.UpdateQuestion{
			ID:            q.ServerID,
			QuestionText:  q.Text,
			Type:          string(q.Type),
			Marks:         q.Marks,
			Options:       wireOptions(q),
			CorrectAnswer: correctAnswerText(q),
		})
	}
	return exam.UpdateExamRequest{
		Title:             d.Title,
		Duration:          d.Duration,
		TotalScore:        d.TotalScore,
		NumberOfQuestions: len(d.Questions),
		Questions:         qs,
	}, nil
}
