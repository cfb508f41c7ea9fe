package draft_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/examplatform/examplatform/internal/draft"
)

func TestSetTypeResetsOptions(t *testing.T) {
	f := draft.NewFormEditor(0)
	f.SetOptionText(0, "typed by hand")

	f.SetType(draft.TypeTrueFalse)
	w := f.Working()
	require.Len(t, w.Options, 2)
	assert.Equal(t, "True", w.Options[0].Text)
	assert.Equal(t, "False", w.Options[1].Text)
	assert.False(t, w.Options[0].IsCorrect)
	assert.False(t, w.Options[1].IsCorrect, "type switch marks nothing correct")

	f.SetType(draft.TypeMultipleChoice)
	w = f.Working()
	require.Len(t, w.Options, draft.DefaultOptionFloor)
	assert.Empty(t, w.Options[0].Text, "hand-typed text is gone after a round trip")
}

func TestSetCorrectOptionRadioSemantics(t *testing.T) {
	f := draft.NewFormEditor(0)

	f.SetCorrectOption(2)
	f.SetCorrectOption(2) // idempotent
	w := f.Working()
	for i, o := range w.Options {
		assert.Equal(t, i == 2, o.IsCorrect, "option %d", i)
	}

	f.SetCorrectOption(0)
	w = f.Working()
	assert.True(t, w.Options[0].IsCorrect)
	assert.False(t, w.Options[2].IsCorrect, "exactly one correct at a time")

	f.SetCorrectOption(99) // out of range: no change
	assert.True(t, f.Working().Options[0].IsCorrect)
}

func TestOptionFloor(t *testing.T) {
	f := draft.NewFormEditor(4)

	require.ErrorIs(t, f.RemoveOption(0), draft.ErrOptionFloor)

	require.NoError(t, f.AddOption())
	require.NoError(t, f.RemoveOption(4))
	require.ErrorIs(t, f.RemoveOption(0), draft.ErrOptionFloor)

	f.SetType(draft.TypeTrueFalse)
	require.ErrorIs(t, f.AddOption(), draft.ErrNotMultipleChoice)
	require.ErrorIs(t, f.RemoveOption(0), draft.ErrNotMultipleChoice)
}

func TestWorkingCopyDoesNotAliasDraft(t *testing.T) {
	var d draft.ExamDraft
	d.InitCreate()
	require.NoError(t, d.CommitQuestion(validQuestion("committed"), nil))

	f := draft.NewFormEditor(0)
	idx := 0
	f.Load(d.Questions[0], &idx)
	f.SetText("changed in editor")
	f.SetOptionText(0, "changed option")

	assert.Equal(t, "committed", d.Questions[0].Text)
	assert.Equal(t, "A", d.Questions[0].Options[0].Text)
}

func TestSubmitAutoLoadsNextCandidate(t *testing.T) {
	var d draft.ExamDraft
	d.InitCreate()
	f := draft.NewFormEditor(0)

	candidates := []draft.QuestionDraft{validQuestion("ai-1"), validQuestion("ai-2")}
	cursor := 0
	next := func() (draft.QuestionDraft, bool) {
		if cursor >= len(candidates) {
			return draft.QuestionDraft{}, false
		}
		q := candidates[cursor]
		cursor++
		return q, true
	}

	f.Load(validQuestion("typed"), nil)
	require.NoError(t, f.Submit(&d, next))
	assert.Equal(t, "ai-1", f.Working().Text, "next candidate auto-loaded after committing new")

	require.NoError(t, f.Submit(&d, next))
	assert.Equal(t, "ai-2", f.Working().Text)

	require.NoError(t, f.Submit(&d, next))
	assert.Empty(t, f.Working().Text, "queue exhausted: blank form")
	require.Len(t, d.Questions, 3)
}

func TestSubmitAfterEditDoesNotAdvance(t *testing.T) {
	var d draft.ExamDraft
	d.InitCreate()
	require.NoError(t, d.CommitQuestion(validQuestion("old"), nil))

	f := draft.NewFormEditor(0)
	idx := 0
	f.Load(d.Questions[0], &idx)
	f.SetText("new text")

	advanced := false
	next := func() (draft.QuestionDraft, bool) {
		advanced = true
		return validQuestion("ai"), true
	}
	require.NoError(t, f.Submit(&d, next))

	assert.False(t, advanced, "updating a committed question must not consume the queue")
	assert.Equal(t, "new text", d.Questions[0].Text)
	assert.Nil(t, f.EditingIndex())
	assert.Empty(t, f.Working().Text)
}

func TestSubmitFailureKeepsEverything(t *testing.T) {
	var d draft.ExamDraft
	d.InitCreate()
	f := draft.NewFormEditor(0)
	f.SetText("   ") // invalid

	err := f.Submit(&d, nil)
	var vErr *draft.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Empty(t, d.Questions)
	assert.Equal(t, "   ", f.Working().Text, "working copy survives a rejected commit")
}

func TestCancelEdit(t *testing.T) {
	var d draft.ExamDraft
	d.InitCreate()
	require.NoError(t, d.CommitQuestion(validQuestion("keep me"), nil))

	f := draft.NewFormEditor(0)
	idx := 0
	f.Load(d.Questions[0], &idx)
	f.SetText("scrapped")
	f.CancelEdit()

	assert.Nil(t, f.EditingIndex())
	assert.Empty(t, f.Working().Text)
	assert.Equal(t, "keep me", d.Questions[0].Text)

	// no-op while composing new
	f.SetText("composing")
	f.CancelEdit()
	assert.Equal(t, "composing", f.Working().Text)
}

func TestNoteDeleted(t *testing.T) {
	f := draft.NewFormEditor(0)
	idx := 2
	f.Load(validQuestion("editing"), &idx)

	one := 1
	f.NoteDeleted(false, &one)
	require.NotNil(t, f.EditingIndex())
	assert.Equal(t, 1, *f.EditingIndex())

	f.NoteDeleted(true, nil)
	assert.Nil(t, f.EditingIndex())
	assert.Empty(t, f.Working().Text, "editing the deleted question resets the form")
}
