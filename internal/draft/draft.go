package draft

import (
	"strings"

	"github.com/google/uuid"

	"github.com/examplatform/examplatform/internal/exam"
)

type QuestionType string

const (
	TypeMultipleChoice QuestionType = "MULTIPLE_CHOICE"
	TypeTrueFalse      QuestionType = "TRUE_FALSE"
)

// DefaultOptionFloor is the option count below which removal is refused for
// multiple-choice questions.
const DefaultOptionFloor = 4

const DefaultDuration = 60

type OptionDraft struct {
	Text      string `json:"optionText"`
	IsCorrect bool   `json:"isCorrect"`
}

// QuestionDraft is the canonical in-memory question shape. All three sources
// (hand-authored, AI-generated, server-hydrated) are normalized into it.
type QuestionDraft struct {
	ClientID       string        `json:"clientId"`
	ServerID       string        `json:"serverId,omitempty"` // set only when the question exists on the server
	Text           string        `json:"text"`
	Type           QuestionType  `json:"type"`
	Marks          float64       `json:"marks"`
	IsCodeQuestion bool          `json:"isCodeQuestion"`
	CodeSnippet    string        `json:"codeSnippet,omitempty"`
	Options        []OptionDraft `json:"options"`
}

// ExamDraft lives only for the duration of an authoring session. It is never
// persisted as-is; the persistence adapter turns it into a save command.
type ExamDraft struct {
	Title      string          `json:"title"`
	CourseID   string          `json:"courseId"`
	Duration   int             `json:"duration"`
	TotalScore float64         `json:"totalScore"`
	Questions  []QuestionDraft `json:"questions"`
}

// DefaultOptions returns the starting option set for a question type: the
// fixed True/False pair, or four blank multiple-choice options.
func DefaultOptions(t QuestionType) []OptionDraft {
	if t == TypeTrueFalse {
		return []OptionDraft{
			{Text: "True"},
			{Text: "False"},
		}
	}
	out := make([]OptionDraft, DefaultOptionFloor)
	return out
}

// NewQuestion returns a blank working question of the given type.
func NewQuestion(t QuestionType) QuestionDraft {
	if t == "" {
		t = TypeMultipleChoice
	}
	return QuestionDraft{
		Type:    t,
		Marks:   5,
		Options: DefaultOptions(t),
	}
}

// Normalize coerces a question from any boundary into the canonical shape:
// a known type, a non-empty option list, and at least one correct option
// (first option forced correct when the source marks none). Upstream shapes
// vary, so the read is tolerant.
func Normalize(q QuestionDraft) QuestionDraft {
	if q.Type != TypeTrueFalse {
		q.Type = TypeMultipleChoice
	}
	if len(q.Options) == 0 {
		q.Options = DefaultOptions(q.Type)
	}
	opts := make([]OptionDraft, len(q.Options))
	copy(opts, q.Options)
	q.Options = opts
	hasCorrect := false
	for _, o := range q.Options {
		if o.IsCorrect {
			hasCorrect = true
			break
		}
	}
	if !hasCorrect {
		q.Options[0].IsCorrect = true
	}
	if q.Marks <= 0 {
		q.Marks = 5
	}
	return q
}

// Clone copies a question so the form editor never aliases the draft's live
// list entry.
func Clone(q QuestionDraft) QuestionDraft {
	opts := make([]OptionDraft, len(q.Options))
	copy(opts, q.Options)
	q.Options = opts
	return q
}

// InitCreate resets the draft to an empty exam with defaults.
func (d *ExamDraft) InitCreate() {
	*d = ExamDraft{Duration: DefaultDuration}
}

// InitEdit hydrates the draft from a previously persisted exam. Each source
// question passes through Normalize so a row with no marked answer still
// yields exactly one correct option.
func (d *ExamDraft) InitEdit(e exam.Exam) {
	qs := make([]QuestionDraft, 0, len(e.Questions))
	for _, src := range e.Questions {
		opts := make([]OptionDraft, 0, len(src.Options))
		for _, o := range src.Options {
			opts = append(opts, OptionDraft{Text: o.Text, IsCorrect: o.IsCorrect})
		}
		q := Normalize(QuestionDraft{
			ServerID:       src.ID,
			Text:           src.Text,
			Type:           QuestionType(src.Type),
			Marks:          src.Marks,
			IsCodeQuestion: src.IsCodeQuestion,
			CodeSnippet:    src.CodeSnippet,
			Options:        opts,
		})
		q.ClientID = uuid.NewString()
		qs = append(qs, q)
	}
	*d = ExamDraft{
		Title:      e.Title,
		CourseID:   e.Course.ID,
		Duration:   e.Duration,
		TotalScore: e.TotalScore,
		Questions:  qs,
	}
}

// CommitQuestion validates the working copy and either appends it
// (editingIndex nil) or replaces the entry at editingIndex in place,
// preserving the original server and client IDs. The draft is untouched on
// validation failure.
func (d *ExamDraft) CommitQuestion(working QuestionDraft, editingIndex *int) error {
	if strings.TrimSpace(working.Text) == "" {
		return &ValidationError{Field: "text", Reason: "question text is required"}
	}
	correct := false
	for _, o := range working.Options {
		if o.IsCorrect {
			correct = true
			break
		}
	}
	if !correct {
		return &ValidationError{Field: "options", Reason: "mark one option as correct"}
	}

	q := Clone(working)
	if editingIndex == nil {
		q.ClientID = uuid.NewString()
		q.ServerID = ""
		d.Questions = append(d.Questions, q)
		return nil
	}
	i := *editingIndex
	if i < 0 || i >= len(d.Questions) {
		return &ValidationError{Field: "editingIndex", Reason: "no question at that position"}
	}
	q.ClientID = d.Questions[i].ClientID
	q.ServerID = d.Questions[i].ServerID
	d.Questions[i] = q
	return nil
}

// DeleteQuestion removes the entry at index and reports how a tracked editing
// index should change: cancelled reports that the form editor was editing the
// removed entry, shifted carries the adjusted index otherwise.
func (d *ExamDraft) DeleteQuestion(index int, editingIndex *int) (cancelled bool, shifted *int) {
	if index < 0 || index >= len(d.Questions) {
		return false, editingIndex
	}
	d.Questions = append(d.Questions[:index], d.Questions[index+1:]...)
	if editingIndex == nil {
		return false, nil
	}
	switch {
	case *editingIndex == index:
		return true, nil
	case *editingIndex > index:
		n := *editingIndex - 1
		return false, &n
	default:
		return false, editingIndex
	}
}
