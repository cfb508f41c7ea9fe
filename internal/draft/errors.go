package draft

import (
	"errors"
	"fmt"
)

// ValidationError means the author's input is incomplete. It never reaches a
// service call; the draft is retained so the author can correct in place.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// PersistenceError wraps a create/update rejection from the exam service.
// The session stays open with the full draft intact.
type PersistenceError struct {
	Op  string // "create" or "update"
	Err error
}

func (e *PersistenceError) Error() string { return fmt.Sprintf("save (%s): %v", e.Op, e.Err) }
func (e *PersistenceError) Unwrap() error { return e.Err }

var (
	// ErrNoSession is returned by the session manager when the instructor has
	// no open authoring session.
	ErrNoSession = errors.New("no authoring session open")

	// ErrSessionClosed is returned when an operation needs an open editor.
	ErrSessionClosed = errors.New("authoring session is closed")

	// ErrGenerationInFlight rejects a second Generate while one is outstanding.
	ErrGenerationInFlight = errors.New("a generation request is already in flight")

	// ErrSaveInFlight rejects a second save while one is outstanding.
	ErrSaveInFlight = errors.New("a save request is already in flight")

	// ErrOptionFloor is returned when removing an option would drop a
	// multiple-choice question below the configured floor.
	ErrOptionFloor = errors.New("cannot remove option: minimum option count reached")

	// ErrNotMultipleChoice guards option add/remove on fixed-pair questions.
	ErrNotMultipleChoice = errors.New("options are fixed for this question type")
)
