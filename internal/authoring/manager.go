package authoring

import (
	"context"
	"errors"
	"sync"

	"github.com/examplatform/examplatform/internal/draft"
	"github.com/examplatform/examplatform/internal/exam"
)

// ExamService is the slice of the exam service the authoring layer consumes.
type ExamService interface {
	CreateExam(ctx context.Context, instructorID string, req exam.CreateExamRequest) (exam.Exam, error)
	UpdateExamWithQuestions(ctx context.Context, instructorID, examID string, req exam.UpdateExamRequest) (exam.Exam, error)
}

// Manager hands out at most one session per instructor. Sessions are created
// lazily and torn down explicitly; nothing survives a process restart, which
// is the intended lifetime of an unsaved draft.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session

	gen  Generator
	svc  ExamService
	opts Options
}

func NewManager(gen Generator, svc ExamService, opts Options) *Manager {
	return &Manager{
		sessions: map[string]*Session{},
		gen:      gen,
		svc:      svc,
		opts:     opts,
	}
}

// Session returns the instructor's session, creating one if needed.
func (m *Manager) Session(instructorID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[instructorID]
	if !ok {
		s = NewSession(m.gen, &serviceSaver{svc: m.svc, instructorID: instructorID}, m.opts)
		m.sessions[instructorID] = s
	}
	return s
}

// Lookup returns the session only if one already exists.
func (m *Manager) Lookup(instructorID string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[instructorID]
	return s, ok
}

// Drop discards an instructor's session entirely.
func (m *Manager) Drop(instructorID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, instructorID)
}

// serviceSaver adapts the exam service to the draft layer's command/result
// save boundary, classifying rejections as PersistenceError.
type serviceSaver struct {
	svc          ExamService
	instructorID string
}

func (s *serviceSaver) Save(ctx context.Context, cmd draft.SaveCommand) (draft.SaveResult, error) {
	switch cmd.Kind {
	case draft.SaveCreate:
		e, err := s.svc.CreateExam(ctx, s.instructorID, *cmd.Create)
		if err != nil {
			return draft.SaveResult{}, &draft.PersistenceError{Op: "create", Err: err}
		}
		return draft.SaveResult{ID: e.ID, Exam: &e}, nil
	case draft.SaveUpdate:
		e, err := s.svc.UpdateExamWithQuestions(ctx, s.instructorID, cmd.ExamID, *cmd.Update)
		if err != nil {
			return draft.SaveResult{}, &draft.PersistenceError{Op: "update", Err: err}
		}
		return draft.SaveResult{ID: e.ID, Exam: &e}, nil
	}
	return draft.SaveResult{}, &draft.PersistenceError{Op: string(cmd.Kind), Err: errUnknownKind}
}

var errUnknownKind = errors.New("unknown save command kind")
