package draft_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/examplatform/examplatform/internal/draft"
	"github.com/examplatform/examplatform/internal/exam"
)

func validQuestion(text string) draft.QuestionDraft {
	q := draft.NewQuestion(draft.TypeMultipleChoice)
	q.Text = text
	q.Options[0].Text = "A"
	q.Options[0].IsCorrect = true
	q.Options[1].Text = "B"
	return q
}

func TestCommitQuestionValidation(t *testing.T) {
	tests := []struct {
		name  string
		mut   func(*draft.QuestionDraft)
		field string
	}{
		{"empty text", func(q *draft.QuestionDraft) { q.Text = "" }, "text"},
		{"whitespace text", func(q *draft.QuestionDraft) { q.Text = "   " }, "text"},
		{"no correct option", func(q *draft.QuestionDraft) {
			for i := range q.Options {
				q.Options[i].IsCorrect = false
			}
		}, "options"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d draft.ExamDraft
			d.InitCreate()
			q := validQuestion("What is Go?")
			tt.mut(&q)

			err := d.CommitQuestion(q, nil)

			var vErr *draft.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)
			assert.Empty(t, d.Questions, "draft must be untouched on rejection")
		})
	}
}

func TestCommitQuestionAppendAssignsClientID(t *testing.T) {
	var d draft.ExamDraft
	d.InitCreate()

	require.NoError(t, d.CommitQuestion(validQuestion("q1"), nil))
	require.NoError(t, d.CommitQuestion(validQuestion("q2"), nil))

	require.Len(t, d.Questions, 2)
	assert.NotEmpty(t, d.Questions[0].ClientID)
	assert.NotEqual(t, d.Questions[0].ClientID, d.Questions[1].ClientID)
	assert.Empty(t, d.Questions[0].ServerID, "new questions carry no server id")
}

func TestCommitQuestionReplacePreservesIdentity(t *testing.T) {
	var d draft.ExamDraft
	d.InitCreate()
	require.NoError(t, d.CommitQuestion(validQuestion("original"), nil))
	d.Questions[0].ServerID = "srv-1"
	clientID := d.Questions[0].ClientID

	revised := validQuestion("revised")
	revised.ClientID = "attacker-supplied"
	revised.ServerID = "other"
	idx := 0
	require.NoError(t, d.CommitQuestion(revised, &idx))

	require.Len(t, d.Questions, 1)
	assert.Equal(t, "revised", d.Questions[0].Text)
	assert.Equal(t, clientID, d.Questions[0].ClientID)
	assert.Equal(t, "srv-1", d.Questions[0].ServerID)
}

func TestDeleteQuestionEditingIndex(t *testing.T) {
	seed := func() draft.ExamDraft {
		var d draft.ExamDraft
		d.InitCreate()
		for _, txt := range []string{"a", "b", "c"} {
			if err := d.CommitQuestion(validQuestion(txt), nil); err != nil {
				t.Fatalf("seed: %v", err)
			}
		}
		return d
	}
	idx := func(n int) *int { return &n }

	t.Run("editing the deleted entry cancels", func(t *testing.T) {
		d := seed()
		cancelled, shifted := d.DeleteQuestion(1, idx(1))
		assert.True(t, cancelled)
		assert.Nil(t, shifted)
		assert.Len(t, d.Questions, 2)
	})

	t.Run("editing a later entry shifts down", func(t *testing.T) {
		d := seed()
		cancelled, shifted := d.DeleteQuestion(0, idx(2))
		assert.False(t, cancelled)
		require.NotNil(t, shifted)
		assert.Equal(t, 1, *shifted)
	})

	t.Run("editing an earlier entry is unaffected", func(t *testing.T) {
		d := seed()
		cancelled, shifted := d.DeleteQuestion(2, idx(0))
		assert.False(t, cancelled)
		require.NotNil(t, shifted)
		assert.Equal(t, 0, *shifted)
	})

	t.Run("out of range is a no-op", func(t *testing.T) {
		d := seed()
		cancelled, shifted := d.DeleteQuestion(7, idx(1))
		assert.False(t, cancelled)
		require.NotNil(t, shifted)
		assert.Equal(t, 1, *shifted)
		assert.Len(t, d.Questions, 3)
	})
}

func TestInitEditNormalizes(t *testing.T) {
	src := exam.Exam{
		ID:         "e1",
		Title:      "Midterm",
		Course:     exam.Course{ID: "c1", Name: "Algorithms"},
		Duration:   45,
		TotalScore: 50,
		Questions: []exam.Question{
			{
				ID:   "q-srv-1",
				Text: "No answer marked",
				Type: "MULTIPLE_CHOICE",
				Options: []exam.Option{
					{Text: "x"}, {Text: "y"},
				},
			},
			{
				ID:    "q-srv-2",
				Text:  "Unknown type",
				Type:  "ESSAY",
				Marks: -1,
			},
		},
	}

	var d draft.ExamDraft
	d.InitEdit(src)

	assert.Equal(t, "Midterm", d.Title)
	assert.Equal(t, "c1", d.CourseID)
	require.Len(t, d.Questions, 2)

	q0 := d.Questions[0]
	assert.Equal(t, "q-srv-1", q0.ServerID)
	assert.NotEmpty(t, q0.ClientID)
	assert.True(t, q0.Options[0].IsCorrect, "first option forced correct when none marked")

	q1 := d.Questions[1]
	assert.Equal(t, draft.TypeMultipleChoice, q1.Type, "unknown types coerce to multiple choice")
	assert.Len(t, q1.Options, draft.DefaultOptionFloor)
	assert.Equal(t, 5.0, q1.Marks)
}

func TestNormalizeKeepsTrueFalse(t *testing.T) {
	q := draft.Normalize(draft.QuestionDraft{Text: "t", Type: draft.TypeTrueFalse})
	assert.Equal(t, draft.TypeTrueFalse, q.Type)
	require.Len(t, q.Options, 2)
	assert.Equal(t, "True", q.Options[0].Text)
	assert.Equal(t, "False", q.Options[1].Text)
}
