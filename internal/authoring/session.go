// Package authoring owns the per-instructor exam draft editing session: the
// draft, the question form editor, the AI candidate queue, and the route
// sync guard, behind one mutex. All mutation happens in response to discrete
// author actions; the only suspension points are AI generation and save,
// which release the lock and re-check the session epoch before applying
// their results.
package authoring

import (
	"context"
	"sync"

	"github.com/examplatform/examplatform/internal/aigen"
	"github.com/examplatform/examplatform/internal/draft"
	"github.com/examplatform/examplatform/internal/exam"
	"github.com/examplatform/examplatform/internal/routesync"
)

// Generator is the question generation boundary (satisfied by aigen.Client).
type Generator interface {
	Generate(ctx context.Context, req aigen.Request) ([]draft.QuestionDraft, error)
}

type Options struct {
	OptionFloor  int
	DefaultMarks float64
}

type Session struct {
	mu sync.Mutex

	// epoch guards async results: bumped on every open/close/reset, so a
	// response that raced with a teardown is discarded, never applied.
	epoch uint64

	guard  *routesync.Guard
	nav    *routeRecorder
	draft  draft.ExamDraft
	editor *draft.FormEditor
	queue  *aigen.Queue
	examID string // edit target, set while Mode == EDIT

	gen   Generator
	saver draft.Saver

	genInFlight  bool
	saveInFlight bool

	opts Options
}

func NewSession(gen Generator, saver draft.Saver, opts Options) *Session {
	if opts.OptionFloor <= 0 {
		opts.OptionFloor = draft.DefaultOptionFloor
	}
	if opts.DefaultMarks <= 0 {
		opts.DefaultMarks = 5
	}
	nav := &routeRecorder{}
	return &Session{
		guard:  routesync.New(nav),
		nav:    nav,
		editor: draft.NewFormEditor(opts.OptionFloor),
		gen:    gen,
		saver:  saver,
		opts:   opts,
	}
}

// View is the read-only snapshot handed to the HTTP layer.
type View struct {
	Open         bool                `json:"open"`
	Mode         string              `json:"mode"`
	Target       string              `json:"target,omitempty"`
	Draft        draft.ExamDraft     `json:"draft"`
	Working      draft.QuestionDraft `json:"working"`
	EditingIndex *int                `json:"editingIndex"`
	QueueLen     int                 `json:"queueLen"`
	QueuePos     int                 `json:"queuePos"`
	Route        string              `json:"route,omitempty"` // navigation update the client should apply
}

func (s *Session) viewLocked() View {
	st := s.guard.State()
	v := View{
		Open:         st.Open,
		Mode:         string(st.Mode),
		Target:       st.Target,
		Draft:        s.draft,
		Working:      s.editor.Working(),
		EditingIndex: s.editor.EditingIndex(),
		Route:        s.nav.take(),
	}
	if s.queue != nil {
		v.QueueLen = s.queue.Len()
		v.QueuePos = s.queue.Pos()
	}
	return v
}

func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

func (s *Session) resetLocked() {
	s.epoch++
	s.draft = draft.ExamDraft{}
	s.editor = draft.NewFormEditor(s.opts.OptionFloor)
	s.queue = nil
	s.examID = ""
	s.genInFlight = false
	s.saveInFlight = false
}

// hydrateEditLocked seeds the draft from a persisted exam and opens its first
// question in the form editor for review.
func (s *Session) hydrateEditLocked(e exam.Exam) {
	s.epoch++
	s.draft.InitEdit(e)
	s.editor = draft.NewFormEditor(s.opts.OptionFloor)
	s.queue = nil
	s.examID = e.ID
	s.genInFlight = false
	s.saveInFlight = false
	if len(s.draft.Questions) > 0 {
		zero := 0
		s.editor.Load(s.draft.Questions[0], &zero)
	}
}

// OpenCreate starts a blank authoring session (local intent).
func (s *Session) OpenCreate() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
	s.draft.InitCreate()
	s.guard.LocalOpenCreate()
	return s.viewLocked()
}

// OpenEdit starts an edit session for a persisted exam (local intent).
func (s *Session) OpenEdit(e exam.Exam) View {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hydrateEditLocked(e)
	s.guard.LocalOpenEdit(e.ID)
	return s.viewLocked()
}

// Close discards the draft (local intent). Authored work is gone on purpose.
func (s *Session) Close() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.guard.LocalClose()
	s.resetLocked()
	return s.viewLocked()
}

// Sync reconciles the session against the external navigation signal and the
// currently known exam list. Safe to call any number of times.
func (s *Session) Sync(sig routesync.Signal, known []exam.Exam, listLoaded bool) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	action, target, err := s.guard.Reconcile(sig, known, listLoaded)
	switch action {
	case routesync.ActionClose:
		s.resetLocked()
	case routesync.ActionOpenEdit:
		s.hydrateEditLocked(*target)
	}
	return s.viewLocked(), err
}

// UpdateDetails patches the exam metadata. The course is immutable once the
// session edits an existing exam.
func (s *Session) UpdateDetails(title, courseID *string, duration *int, totalScore *float64) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.guard.State().Open {
		return s.viewLocked(), draft.ErrSessionClosed
	}
	if title != nil {
		s.draft.Title = *title
	}
	if courseID != nil {
		if s.guard.State().Mode == routesync.ModeEdit {
			return s.viewLocked(), &draft.ValidationError{Field: "courseId", Reason: "course cannot change on an existing exam"}
		}
		s.draft.CourseID = *courseID
	}
	if duration != nil {
		s.draft.Duration = *duration
	}
	if totalScore != nil {
		s.draft.TotalScore = *totalScore
	}
	return s.viewLocked(), nil
}

// editorOp runs a form editor mutation under the session lock.
func (s *Session) editorOp(op func(*draft.FormEditor) error) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.guard.State().Open {
		return s.viewLocked(), draft.ErrSessionClosed
	}
	err := op(s.editor)
	return s.viewLocked(), err
}

// LoadQuestion selects a committed question for revision. The editor gets a
// working copy, so changes stay invisible in the list until commit.
func (s *Session) LoadQuestion(index int) (View, error) {
	return s.editorOp(func(f *draft.FormEditor) error {
		if index < 0 || index >= len(s.draft.Questions) {
			return &draft.ValidationError{Field: "index", Reason: "no question at that position"}
		}
		f.Load(s.draft.Questions[index], &index)
		return nil
	})
}

func (s *Session) SetQuestionText(text string) (View, error) {
	return s.editorOp(func(f *draft.FormEditor) error { f.SetText(text); return nil })
}

func (s *Session) SetQuestionMarks(marks float64) (View, error) {
	return s.editorOp(func(f *draft.FormEditor) error { f.SetMarks(marks); return nil })
}

func (s *Session) SetCodeQuestion(on bool, snippet string) (View, error) {
	return s.editorOp(func(f *draft.FormEditor) error {
		f.SetCodeQuestion(on)
		f.SetCodeSnippet(snippet)
		return nil
	})
}

func (s *Session) SetQuestionType(t draft.QuestionType) (View, error) {
	return s.editorOp(func(f *draft.FormEditor) error { f.SetType(t); return nil })
}

func (s *Session) SetCorrectOption(index int) (View, error) {
	return s.editorOp(func(f *draft.FormEditor) error { f.SetCorrectOption(index); return nil })
}

func (s *Session) SetOptionText(index int, text string) (View, error) {
	return s.editorOp(func(f *draft.FormEditor) error { f.SetOptionText(index, text); return nil })
}

func (s *Session) AddOption() (View, error) {
	return s.editorOp(func(f *draft.FormEditor) error { return f.AddOption() })
}

func (s *Session) RemoveOption(index int) (View, error) {
	return s.editorOp(func(f *draft.FormEditor) error { return f.RemoveOption(index) })
}

// CommitQuestion submits the working copy into the draft. A successful
// commit of a new question auto-loads the next AI candidate when the queue
// has one.
func (s *Session) CommitQuestion() (View, error) {
	return s.editorOp(func(f *draft.FormEditor) error {
		return f.Submit(&s.draft, func() (draft.QuestionDraft, bool) {
			q, err := s.queue.Advance()
			if err != nil {
				return draft.QuestionDraft{}, false
			}
			return q, true
		})
	})
}

func (s *Session) CancelEdit() (View, error) {
	return s.editorOp(func(f *draft.FormEditor) error { f.CancelEdit(); return nil })
}

func (s *Session) DeleteQuestion(index int) (View, error) {
	return s.editorOp(func(f *draft.FormEditor) error {
		cancelled, shifted := s.draft.DeleteQuestion(index, f.EditingIndex())
		f.NoteDeleted(cancelled, shifted)
		return nil
	})
}

// Generate fetches an AI question batch and, on success, replaces any prior
// queue and loads the first candidate into the editor, discarding whatever
// was being composed. A second call while one is outstanding is rejected. A
// result arriving after the session was closed or reopened is discarded.
func (s *Session) Generate(ctx context.Context, topic string, count int, marksPerQuestion float64) (View, error) {
	s.mu.Lock()
	if !s.guard.State().Open {
		defer s.mu.Unlock()
		return s.viewLocked(), draft.ErrSessionClosed
	}
	if s.genInFlight {
		defer s.mu.Unlock()
		return s.viewLocked(), draft.ErrGenerationInFlight
	}
	if marksPerQuestion <= 0 {
		marksPerQuestion = s.opts.DefaultMarks
	}
	s.genInFlight = true
	epoch := s.epoch
	s.mu.Unlock()

	items, err := s.gen.Generate(ctx, aigen.Request{
		Topic:            topic,
		Count:            count,
		MarksPerQuestion: marksPerQuestion,
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch == epoch {
		s.genInFlight = false
	}
	if err != nil {
		// draft and any prior queue untouched
		return s.viewLocked(), err
	}
	if s.epoch != epoch {
		return s.viewLocked(), draft.ErrSessionClosed
	}
	q := aigen.NewQueue(items)
	s.queue = q
	if first, ok := q.First(); ok {
		s.editor.Load(first, nil)
	}
	return s.viewLocked(), nil
}

// Advance manually loads the next AI candidate. Exhaustion is informational.
func (s *Session) Advance() (View, error) {
	return s.editorOp(func(f *draft.FormEditor) error {
		q, err := s.queue.Advance()
		if err != nil {
			return err
		}
		f.Load(q, nil)
		return nil
	})
}

// Save turns the draft into one batched create or update command. Success
// closes the session and discards the draft; failure leaves everything
// intact so no authored work is lost.
func (s *Session) Save(ctx context.Context) (draft.SaveResult, View, error) {
	s.mu.Lock()
	st := s.guard.State()
	if !st.Open {
		defer s.mu.Unlock()
		return draft.SaveResult{}, s.viewLocked(), draft.ErrSessionClosed
	}
	if s.saveInFlight {
		defer s.mu.Unlock()
		return draft.SaveResult{}, s.viewLocked(), draft.ErrSaveInFlight
	}

	var cmd draft.SaveCommand
	if st.Mode == routesync.ModeEdit {
		upd, err := draft.UpdatePayload(&s.draft)
		if err != nil {
			defer s.mu.Unlock()
			return draft.SaveResult{}, s.viewLocked(), err
		}
		cmd = draft.SaveCommand{Kind: draft.SaveUpdate, ExamID: s.examID, Update: &upd}
	} else {
		cr, err := draft.CreatePayload(&s.draft)
		if err != nil {
			defer s.mu.Unlock()
			return draft.SaveResult{}, s.viewLocked(), err
		}
		cmd = draft.SaveCommand{Kind: draft.SaveCreate, Create: &cr}
	}
	s.saveInFlight = true
	epoch := s.epoch
	s.mu.Unlock()

	res, err := s.saver.Save(ctx, cmd)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch == epoch {
		s.saveInFlight = false
	}
	if s.epoch != epoch {
		return draft.SaveResult{}, s.viewLocked(), draft.ErrSessionClosed
	}
	if err != nil {
		return draft.SaveResult{}, s.viewLocked(), err
	}
	s.guard.LocalClose()
	s.resetLocked()
	return res, s.viewLocked(), nil
}

// routeRecorder implements routesync.Navigator by remembering the last
// requested route until the HTTP layer picks it up for the response.
type routeRecorder struct {
	pending string
}

func (r *routeRecorder) RequestEdit(examID string) {
	r.pending = "/instructor/exams/" + examID + "/edit"
}

func (r *routeRecorder) RequestClear() { r.pending = "/instructor" }

func (r *routeRecorder) take() string {
	p := r.pending
	r.pending = ""
	return p
}
