package aigen

import (
	"errors"

	"github.com/examplatform/examplatform/internal/draft"
)

// ErrNoMoreItems reports queue exhaustion. Informational, never fatal: the
// queue state is unchanged when it is returned.
var ErrNoMoreItems = errors.New("no more generated questions")

// Queue sequences a generated batch into the form editor. The cursor points
// at the item currently loaded as the working copy.
type Queue struct {
	items  []draft.QuestionDraft
	cursor int
}

func NewQueue(items []draft.QuestionDraft) *Queue {
	return &Queue{items: items}
}

func (q *Queue) Len() int { return len(q.items) }

// Pos is the 1-based position of the loaded item, 0 for an empty queue.
func (q *Queue) Pos() int {
	if len(q.items) == 0 {
		return 0
	}
	return q.cursor + 1
}

// First returns the item the queue starts on.
func (q *Queue) First() (draft.QuestionDraft, bool) {
	if len(q.items) == 0 {
		return draft.QuestionDraft{}, false
	}
	return draft.Clone(q.items[0]), true
}

// Advance moves the cursor to the next item and returns it, or
// ErrNoMoreItems without moving anything.
func (q *Queue) Advance() (draft.QuestionDraft, error) {
	if q == nil || q.cursor+1 >= len(q.items) {
		return draft.QuestionDraft{}, ErrNoMoreItems
	}
	q.cursor++
	return draft.Clone(q.items[q.cursor]), nil
}
