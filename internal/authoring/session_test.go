package authoring_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/examplatform/examplatform/internal/aigen"
	"github.com/examplatform/examplatform/internal/authoring"
	"github.com/examplatform/examplatform/internal/draft"
	"github.com/examplatform/examplatform/internal/exam"
	"github.com/examplatform/examplatform/internal/routesync"
)

func candidate(text string) draft.QuestionDraft {
	return draft.Normalize(draft.QuestionDraft{
		Text:    text,
		Type:    draft.TypeMultipleChoice,
		Marks:   5,
		Options: []draft.OptionDraft{{Text: "a", IsCorrect: true}, {Text: "b"}, {Text: "c"}, {Text: "d"}},
	})
}

type stubGen struct {
	items []draft.QuestionDraft
	err   error

	// optional rendezvous for concurrency tests
	entered chan struct{}
	release chan struct{}
}

func (g *stubGen) Generate(ctx context.Context, req aigen.Request) ([]draft.QuestionDraft, error) {
	if g.entered != nil {
		g.entered <- struct{}{}
		<-g.release
	}
	return g.items, g.err
}

type stubSaver struct {
	cmds   []draft.SaveCommand
	err    error
	result draft.SaveResult
}

func (s *stubSaver) Save(ctx context.Context, cmd draft.SaveCommand) (draft.SaveResult, error) {
	s.cmds = append(s.cmds, cmd)
	if s.err != nil {
		return draft.SaveResult{}, s.err
	}
	return s.result, nil
}

func newSession(gen authoring.Generator, saver draft.Saver) *authoring.Session {
	return authoring.NewSession(gen, saver, authoring.Options{})
}

func persistedExam() exam.Exam {
	return exam.Exam{
		ID:         "e1",
		Title:      "Midterm",
		Course:     exam.Course{ID: "c1", Name: "Algorithms"},
		Duration:   60,
		TotalScore: 40,
		Questions: []exam.Question{
			{ID: "srv-1", Text: "first", Type: "MULTIPLE_CHOICE", Marks: 5,
				Options: []exam.Option{{Text: "a", IsCorrect: true}, {Text: "b"}}},
			{ID: "srv-2", Text: "second", Type: "TRUE_FALSE", Marks: 5,
				Options: []exam.Option{{Text: "True", IsCorrect: true}, {Text: "False"}}},
		},
	}
}

func TestOpenCreate(t *testing.T) {
	s := newSession(&stubGen{}, &stubSaver{})
	v := s.OpenCreate()

	assert.True(t, v.Open)
	assert.Equal(t, "CREATE", v.Mode)
	assert.Equal(t, draft.DefaultDuration, v.Draft.Duration)
	assert.Nil(t, v.EditingIndex)
	assert.Equal(t, "/instructor", v.Route, "open-create clears any edit route")
}

func TestOpenEditHydratesFirstQuestion(t *testing.T) {
	s := newSession(&stubGen{}, &stubSaver{})
	v := s.OpenEdit(persistedExam())

	assert.Equal(t, "EDIT", v.Mode)
	assert.Equal(t, "e1", v.Target)
	require.Len(t, v.Draft.Questions, 2)
	require.NotNil(t, v.EditingIndex)
	assert.Equal(t, 0, *v.EditingIndex)
	assert.Equal(t, "first", v.Working.Text)
	assert.Equal(t, "/instructor/exams/e1/edit", v.Route)
}

func TestUpdateDetailsCourseImmutableInEdit(t *testing.T) {
	s := newSession(&stubGen{}, &stubSaver{})
	s.OpenEdit(persistedExam())

	other := "c2"
	_, err := s.UpdateDetails(nil, &other, nil, nil)
	var vErr *draft.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "courseId", vErr.Field)

	title := "Renamed"
	v, err := s.UpdateDetails(&title, nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", v.Draft.Title)
	assert.Equal(t, "c1", v.Draft.CourseID)
}

func TestOperationsRequireOpenSession(t *testing.T) {
	s := newSession(&stubGen{}, &stubSaver{})
	_, err := s.SetQuestionText("x")
	assert.ErrorIs(t, err, draft.ErrSessionClosed)
	_, err = s.Generate(context.Background(), "go", 3, 0)
	assert.ErrorIs(t, err, draft.ErrSessionClosed)
	_, _, err = s.Save(context.Background())
	assert.ErrorIs(t, err, draft.ErrSessionClosed)
}

func TestGenerateLoadsFirstCandidate(t *testing.T) {
	gen := &stubGen{items: []draft.QuestionDraft{candidate("ai-1"), candidate("ai-2"), candidate("ai-3")}}
	s := newSession(gen, &stubSaver{})
	s.OpenCreate()

	v, err := s.Generate(context.Background(), "goroutines", 3, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, v.QueueLen)
	assert.Equal(t, 1, v.QueuePos)
	assert.Equal(t, "ai-1", v.Working.Text)
	assert.Nil(t, v.EditingIndex, "candidates are composed as new questions")
}

func TestCommitAdvancesQueue(t *testing.T) {
	gen := &stubGen{items: []draft.QuestionDraft{candidate("ai-1"), candidate("ai-2")}}
	s := newSession(gen, &stubSaver{})
	s.OpenCreate()
	_, err := s.Generate(context.Background(), "topic", 2, 0)
	require.NoError(t, err)

	v, err := s.CommitQuestion()
	require.NoError(t, err)
	require.Len(t, v.Draft.Questions, 1)
	assert.Equal(t, "ai-1", v.Draft.Questions[0].Text)
	assert.Equal(t, "ai-2", v.Working.Text, "next candidate auto-loaded")
	assert.Equal(t, 2, v.QueuePos)

	v, err = s.CommitQuestion()
	require.NoError(t, err)
	require.Len(t, v.Draft.Questions, 2)
	assert.Empty(t, v.Working.Text, "exhausted queue leaves a blank form")
}

func TestGenerateFailureKeepsPriorQueue(t *testing.T) {
	gen := &stubGen{items: []draft.QuestionDraft{candidate("ai-1"), candidate("ai-2")}}
	s := newSession(gen, &stubSaver{})
	s.OpenCreate()
	_, err := s.Generate(context.Background(), "topic", 2, 0)
	require.NoError(t, err)

	gen.items = nil
	gen.err = &aigen.GenerationError{Err: errors.New("upstream down")}
	v, err := s.Generate(context.Background(), "topic", 2, 0)
	var gErr *aigen.GenerationError
	require.ErrorAs(t, err, &gErr)
	assert.Equal(t, 2, v.QueueLen, "failed generation must not clobber the queue")
	assert.Equal(t, "ai-1", v.Working.Text)
}

func TestGenerateRejectsConcurrent(t *testing.T) {
	gen := &stubGen{
		items:   []draft.QuestionDraft{candidate("ai-1")},
		entered: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	s := newSession(gen, &stubSaver{})
	s.OpenCreate()

	done := make(chan error, 1)
	go func() {
		_, err := s.Generate(context.Background(), "topic", 1, 0)
		done <- err
	}()
	<-gen.entered

	_, err := s.Generate(context.Background(), "topic", 1, 0)
	assert.ErrorIs(t, err, draft.ErrGenerationInFlight)

	close(gen.release)
	require.NoError(t, <-done)

	// flag cleared: a fresh request goes through
	gen.entered = nil
	_, err = s.Generate(context.Background(), "topic", 1, 0)
	require.NoError(t, err)
}

func TestGenerateResultAfterCloseIsDiscarded(t *testing.T) {
	gen := &stubGen{
		items:   []draft.QuestionDraft{candidate("ai-1")},
		entered: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	s := newSession(gen, &stubSaver{})
	s.OpenCreate()

	done := make(chan error, 1)
	go func() {
		_, err := s.Generate(context.Background(), "topic", 1, 0)
		done <- err
	}()
	<-gen.entered
	s.Close()
	close(gen.release)

	select {
	case err := <-done:
		assert.ErrorIs(t, err, draft.ErrSessionClosed)
	case <-time.After(2 * time.Second):
		t.Fatal("generate did not return")
	}
	v := s.View()
	assert.False(t, v.Open)
	assert.Zero(t, v.QueueLen, "stale batch must not be installed")
}

func TestSaveCreate(t *testing.T) {
	saver := &stubSaver{result: draft.SaveResult{ID: "new-exam"}}
	s := newSession(&stubGen{}, saver)
	s.OpenCreate()
	title, course := "Final", "c1"
	dur, total := 90, 100.0
	_, err := s.UpdateDetails(&title, &course, &dur, &total)
	require.NoError(t, err)
	_, err = s.SetQuestionText("q1")
	require.NoError(t, err)
	_, err = s.SetCorrectOption(0)
	require.NoError(t, err)
	_, err = s.CommitQuestion()
	require.NoError(t, err)

	res, v, err := s.Save(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "new-exam", res.ID)
	assert.False(t, v.Open, "successful save closes the session")
	assert.Empty(t, v.Draft.Questions)
	assert.Equal(t, "/instructor", v.Route)

	require.Len(t, saver.cmds, 1)
	cmd := saver.cmds[0]
	assert.Equal(t, draft.SaveCreate, cmd.Kind)
	require.NotNil(t, cmd.Create)
	assert.Equal(t, "Final", cmd.Create.Title)
	require.Len(t, cmd.Create.Questions, 1)
}

func TestSaveUpdateCarriesExamID(t *testing.T) {
	saver := &stubSaver{result: draft.SaveResult{ID: "e1"}}
	s := newSession(&stubGen{}, saver)
	s.OpenEdit(persistedExam())

	_, _, err := s.Save(context.Background())
	require.NoError(t, err)

	require.Len(t, saver.cmds, 1)
	cmd := saver.cmds[0]
	assert.Equal(t, draft.SaveUpdate, cmd.Kind)
	assert.Equal(t, "e1", cmd.ExamID)
	require.NotNil(t, cmd.Update)
	assert.Equal(t, 2, cmd.Update.NumberOfQuestions)
	assert.Equal(t, "srv-1", cmd.Update.Questions[0].ID)
}

func TestSaveFailureKeepsDraft(t *testing.T) {
	saver := &stubSaver{err: &draft.PersistenceError{Op: "update", Err: errors.New("db down")}}
	s := newSession(&stubGen{}, saver)
	s.OpenEdit(persistedExam())

	_, v, err := s.Save(context.Background())
	var pErr *draft.PersistenceError
	require.ErrorAs(t, err, &pErr)
	assert.True(t, v.Open, "failed save keeps the session open")
	assert.Len(t, v.Draft.Questions, 2, "no authored work lost")

	// and the in-flight flag is cleared, so a retry is possible
	saver.err = nil
	saver.result = draft.SaveResult{ID: "e1"}
	_, _, err = s.Save(context.Background())
	require.NoError(t, err)
}

func TestSaveValidationFailsFast(t *testing.T) {
	saver := &stubSaver{}
	s := newSession(&stubGen{}, saver)
	s.OpenCreate() // no title, no course

	_, v, err := s.Save(context.Background())
	var vErr *draft.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.True(t, v.Open)
	assert.Empty(t, saver.cmds, "invalid drafts never reach the service")
}

func TestSyncClosesAndReopens(t *testing.T) {
	s := newSession(&stubGen{}, &stubSaver{})
	e := persistedExam()
	s.OpenEdit(e)

	// consume the suppression from the local open
	_, err := s.Sync(routesync.Signal{TargetExamID: "e1"}, []exam.Exam{e}, true)
	require.NoError(t, err)

	// navigation moved away: session resets
	v, err := s.Sync(routesync.Signal{}, []exam.Exam{e}, true)
	require.NoError(t, err)
	assert.False(t, v.Open)
	assert.Empty(t, v.Draft.Questions)

	// deep link back in: session rehydrates from the list
	v, err = s.Sync(routesync.Signal{TargetExamID: "e1"}, []exam.Exam{e}, true)
	require.NoError(t, err)
	assert.True(t, v.Open)
	assert.Equal(t, "EDIT", v.Mode)
	assert.Equal(t, "first", v.Working.Text)
}

func TestManagerOneSessionPerInstructor(t *testing.T) {
	mgr := authoring.NewManager(&stubGen{}, nil, authoring.Options{})

	s1 := mgr.Session("alice")
	s2 := mgr.Session("alice")
	s3 := mgr.Session("bob")
	assert.Same(t, s1, s2)
	assert.NotSame(t, s1, s3)

	if _, ok := mgr.Lookup("carol"); ok {
		t.Fatal("lookup must not create sessions")
	}
	mgr.Drop("alice")
	if _, ok := mgr.Lookup("alice"); ok {
		t.Fatal("dropped session still present")
	}
}
