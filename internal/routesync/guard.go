// Package routesync reconciles the authoring editor's open/closed state
// against the client's navigation state. Two triggers compete: explicit local
// actions (open create, open edit, close) and the external navigation signal
// (deep link, reload). A one-shot suppression flag keeps a locally-caused
// change from being immediately "corrected" by the echo of its own
// navigation update.
package routesync

import (
	"errors"

	"github.com/examplatform/examplatform/internal/exam"
)

type Mode string

const (
	ModeCreate Mode = "CREATE"
	ModeEdit   Mode = "EDIT"
)

// ErrEditTargetNotFound: the navigation signal names an exam that is absent
// from the fully loaded exam list. While the list is still loading this is
// not an error; the guard just waits for the next reconciliation.
var ErrEditTargetNotFound = errors.New("edit target not found in exam list")

// Navigator is the navigation boundary. The guard only requests route
// changes; it never mutates navigation state itself.
type Navigator interface {
	RequestEdit(examID string)
	RequestClear()
}

// Signal is the external navigation state: an optional target exam id, and
// optionally the exam object carried alongside it (navigation state from an
// in-app transition).
type Signal struct {
	TargetExamID string
	Exam         *exam.Exam
}

type State struct {
	Open   bool
	Mode   Mode
	Target string // exam id, EDIT mode only
}

type Action int

const (
	ActionNone Action = iota
	ActionClose
	ActionOpenEdit
)

type Guard struct {
	state            State
	suppressNextSync bool
	nav              Navigator
}

func New(nav Navigator) *Guard {
	return &Guard{nav: nav}
}

func (g *Guard) State() State { return g.state }

// LocalOpenCreate applies a locally initiated "create exam" intent and asks
// navigation to clear any edit target. The next reconciliation of that same
// change is suppressed.
func (g *Guard) LocalOpenCreate() {
	g.suppressNextSync = true
	g.state = State{Open: true, Mode: ModeCreate}
	if g.nav != nil {
		g.nav.RequestClear()
	}
}

// LocalOpenEdit applies a locally initiated "edit exam X" intent and asks
// navigation to reflect it.
func (g *Guard) LocalOpenEdit(examID string) {
	g.suppressNextSync = true
	g.state = State{Open: true, Mode: ModeEdit, Target: examID}
	if g.nav != nil {
		g.nav.RequestEdit(examID)
	}
}

// LocalClose applies a locally initiated close. Without the suppression flag
// the still-propagating navigation state would flash the editor back open.
func (g *Guard) LocalClose() {
	g.suppressNextSync = true
	g.state = State{}
	if g.nav != nil {
		g.nav.RequestClear()
	}
}

// Reconcile runs on every change to the navigation signal or to the set of
// known exams. It is idempotent: unchanged inputs produce ActionNone.
//
// Resolution prefers the exam object carried with the signal, then the known
// list. An unresolved target is not an error until the list has finished
// loading.
func (g *Guard) Reconcile(sig Signal, known []exam.Exam, listLoaded bool) (Action, *exam.Exam, error) {
	if g.suppressNextSync {
		g.suppressNextSync = false
		return ActionNone, nil, nil
	}

	if sig.TargetExamID == "" {
		if g.state.Open && g.state.Mode == ModeEdit {
			g.state = State{}
			return ActionClose, nil, nil
		}
		return ActionNone, nil, nil
	}

	target := resolve(sig, known)
	if target == nil {
		if listLoaded {
			return ActionNone, nil, ErrEditTargetNotFound
		}
		return ActionNone, nil, nil
	}
	if g.state.Open && g.state.Mode == ModeEdit && g.state.Target == target.ID {
		return ActionNone, nil, nil
	}
	g.state = State{Open: true, Mode: ModeEdit, Target: target.ID}
	return ActionOpenEdit, target, nil
}

func resolve(sig Signal, known []exam.Exam) *exam.Exam {
	if sig.Exam != nil && sig.Exam.ID == sig.TargetExamID {
		e := *sig.Exam
		return &e
	}
	for i := range known {
		if known[i].ID == sig.TargetExamID {
			e := known[i]
			return &e
		}
	}
	return nil
}
