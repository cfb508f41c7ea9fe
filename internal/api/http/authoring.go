package http

import (
	"encoding/json"
	"strconv"

	nethttp "net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/examplatform/examplatform/internal/aigen"
	authmw "github.com/examplatform/examplatform/internal/auth/middleware"
	"github.com/examplatform/examplatform/internal/authoring"
	"github.com/examplatform/examplatform/internal/draft"
	"github.com/examplatform/examplatform/internal/exam"
	"github.com/examplatform/examplatform/internal/routesync"
)

var validate = validator.New()

type openSessionRequest struct {
	Mode   string `json:"mode" validate:"required,oneof=CREATE EDIT"`
	ExamID string `json:"examId" validate:"required_if=Mode EDIT"`
}

// OpenSessionHandler starts an authoring session: a blank draft for CREATE,
// or one hydrated from a persisted exam for EDIT.
func OpenSessionHandler(mgr *authoring.Manager, svc *exam.Service) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		sub := authmw.SubjectFromContext(r.Context())
		var req openSessionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			nethttp.Error(w, "bad json", nethttp.StatusBadRequest)
			return
		}
		if err := validate.Struct(req); err != nil {
			nethttp.Error(w, err.Error(), nethttp.StatusBadRequest)
			return
		}
		sess := mgr.Session(sub)
		if req.Mode == "EDIT" {
			e, err := svc.GetExam(r.Context(), req.ExamID)
			if err != nil {
				writeDomainError(w, err)
				return
			}
			writeJSON(w, nethttp.StatusOK, sess.OpenEdit(e))
			return
		}
		writeJSON(w, nethttp.StatusOK, sess.OpenCreate())
	}
}

type syncRequest struct {
	TargetExamID string     `json:"targetExamId"`
	Exam         *exam.Exam `json:"exam,omitempty"`
}

// SyncSessionHandler reconciles the session against an external navigation
// signal, resolving edit targets from the instructor's exam list.
func SyncSessionHandler(mgr *authoring.Manager, svc *exam.Service) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		sub := authmw.SubjectFromContext(r.Context())
		var req syncRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			nethttp.Error(w, "bad json", nethttp.StatusBadRequest)
			return
		}
		known, err := svc.ListExamsForInstructor(r.Context(), sub)
		listLoaded := err == nil
		sig := routesync.Signal{TargetExamID: req.TargetExamID, Exam: req.Exam}
		view, err := mgr.Session(sub).Sync(sig, known, listLoaded)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, nethttp.StatusOK, view)
	}
}

func GetSessionHandler(mgr *authoring.Manager) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		sub := authmw.SubjectFromContext(r.Context())
		sess, ok := mgr.Lookup(sub)
		if !ok {
			writeDomainError(w, draft.ErrNoSession)
			return
		}
		writeJSON(w, nethttp.StatusOK, sess.View())
	}
}

// CloseSessionHandler abandons the draft. Unsaved work is discarded.
func CloseSessionHandler(mgr *authoring.Manager) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		sub := authmw.SubjectFromContext(r.Context())
		sess, ok := mgr.Lookup(sub)
		if !ok {
			writeDomainError(w, draft.ErrNoSession)
			return
		}
		writeJSON(w, nethttp.StatusOK, sess.Close())
	}
}

type detailsRequest struct {
	Title      *string  `json:"title"`
	CourseID   *string  `json:"courseId"`
	Duration   *int     `json:"duration"`
	TotalScore *float64 `json:"totalScore"`
}

func UpdateDetailsHandler(mgr *authoring.Manager) nethttp.HandlerFunc {
	return withSession(mgr, func(sess *authoring.Session, r *nethttp.Request) (authoring.View, error) {
		var req detailsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return authoring.View{}, &draft.ValidationError{Field: "body", Reason: "bad json"}
		}
		return sess.UpdateDetails(req.Title, req.CourseID, req.Duration, req.TotalScore)
	})
}

type workingRequest struct {
	Text           *string  `json:"text"`
	Marks          *float64 `json:"marks"`
	Type           *string  `json:"type"`
	IsCodeQuestion *bool    `json:"isCodeQuestion"`
	CodeSnippet    *string  `json:"codeSnippet"`
}

// UpdateWorkingHandler patches the question under composition. A type change
// resets the option list, so it is applied before the other fields.
func UpdateWorkingHandler(mgr *authoring.Manager) nethttp.HandlerFunc {
	return withSession(mgr, func(sess *authoring.Session, r *nethttp.Request) (authoring.View, error) {
		var req workingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return authoring.View{}, &draft.ValidationError{Field: "body", Reason: "bad json"}
		}
		view := sess.View()
		var err error
		if req.Type != nil {
			if view, err = sess.SetQuestionType(draft.QuestionType(*req.Type)); err != nil {
				return view, err
			}
		}
		if req.Text != nil {
			if view, err = sess.SetQuestionText(*req.Text); err != nil {
				return view, err
			}
		}
		if req.Marks != nil {
			if view, err = sess.SetQuestionMarks(*req.Marks); err != nil {
				return view, err
			}
		}
		if req.IsCodeQuestion != nil || req.CodeSnippet != nil {
			cur := sess.View().Working
			on := cur.IsCodeQuestion
			snippet := cur.CodeSnippet
			if req.IsCodeQuestion != nil {
				on = *req.IsCodeQuestion
			}
			if req.CodeSnippet != nil {
				snippet = *req.CodeSnippet
			}
			if view, err = sess.SetCodeQuestion(on, snippet); err != nil {
				return view, err
			}
		}
		return view, nil
	})
}

func LoadQuestionHandler(mgr *authoring.Manager) nethttp.HandlerFunc {
	return withSessionIndex(mgr, "index", func(sess *authoring.Session, i int, _ *nethttp.Request) (authoring.View, error) {
		return sess.LoadQuestion(i)
	})
}

func SetCorrectOptionHandler(mgr *authoring.Manager) nethttp.HandlerFunc {
	return withSessionIndex(mgr, "optIndex", func(sess *authoring.Session, i int, _ *nethttp.Request) (authoring.View, error) {
		return sess.SetCorrectOption(i)
	})
}

func SetOptionTextHandler(mgr *authoring.Manager) nethttp.HandlerFunc {
	return withSessionIndex(mgr, "optIndex", func(sess *authoring.Session, i int, r *nethttp.Request) (authoring.View, error) {
		var req struct {
			Text string `json:"text"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return authoring.View{}, &draft.ValidationError{Field: "body", Reason: "bad json"}
		}
		return sess.SetOptionText(i, req.Text)
	})
}

func AddOptionHandler(mgr *authoring.Manager) nethttp.HandlerFunc {
	return withSession(mgr, func(sess *authoring.Session, _ *nethttp.Request) (authoring.View, error) {
		return sess.AddOption()
	})
}

func RemoveOptionHandler(mgr *authoring.Manager) nethttp.HandlerFunc {
	return withSessionIndex(mgr, "optIndex", func(sess *authoring.Session, i int, _ *nethttp.Request) (authoring.View, error) {
		return sess.RemoveOption(i)
	})
}

func CommitQuestionHandler(mgr *authoring.Manager) nethttp.HandlerFunc {
	return withSession(mgr, func(sess *authoring.Session, _ *nethttp.Request) (authoring.View, error) {
		return sess.CommitQuestion()
	})
}

func CancelEditHandler(mgr *authoring.Manager) nethttp.HandlerFunc {
	return withSession(mgr, func(sess *authoring.Session, _ *nethttp.Request) (authoring.View, error) {
		return sess.CancelEdit()
	})
}

func DeleteQuestionHandler(mgr *authoring.Manager) nethttp.HandlerFunc {
	return withSessionIndex(mgr, "index", func(sess *authoring.Session, i int, _ *nethttp.Request) (authoring.View, error) {
		return sess.DeleteQuestion(i)
	})
}

type generateRequest struct {
	Topic            string  `json:"topic" validate:"required"`
	Count            int     `json:"count" validate:"required,min=1,max=20"`
	MarksPerQuestion float64 `json:"marksPerQuestion" validate:"omitempty,gt=0"`
}

func GenerateHandler(mgr *authoring.Manager) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		sub := authmw.SubjectFromContext(r.Context())
		sess, ok := mgr.Lookup(sub)
		if !ok {
			writeDomainError(w, draft.ErrNoSession)
			return
		}
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			nethttp.Error(w, "bad json", nethttp.StatusBadRequest)
			return
		}
		if err := validate.Struct(req); err != nil {
			nethttp.Error(w, err.Error(), nethttp.StatusBadRequest)
			return
		}
		view, err := sess.Generate(r.Context(), req.Topic, req.Count, req.MarksPerQuestion)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, nethttp.StatusOK, view)
	}
}

// AdvanceHandler loads the next AI candidate. Exhaustion is not an error to
// the client, just a signal that the queue is done.
func AdvanceHandler(mgr *authoring.Manager) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		sub := authmw.SubjectFromContext(r.Context())
		sess, ok := mgr.Lookup(sub)
		if !ok {
			writeDomainError(w, draft.ErrNoSession)
			return
		}
		view, err := sess.Advance()
		if err != nil {
			if err == aigen.ErrNoMoreItems {
				writeJSON(w, nethttp.StatusOK, map[string]any{"exhausted": true, "view": view})
				return
			}
			writeDomainError(w, err)
			return
		}
		writeJSON(w, nethttp.StatusOK, view)
	}
}

// SaveHandler persists the draft as one batched create or update. On success
// the session is closed and the saved exam returned.
func SaveHandler(mgr *authoring.Manager) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		sub := authmw.SubjectFromContext(r.Context())
		sess, ok := mgr.Lookup(sub)
		if !ok {
			writeDomainError(w, draft.ErrNoSession)
			return
		}
		res, view, err := sess.Save(r.Context())
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, nethttp.StatusOK, map[string]any{"id": res.ID, "exam": res.Exam, "view": view})
	}
}

func withSession(mgr *authoring.Manager, op func(*authoring.Session, *nethttp.Request) (authoring.View, error)) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		sub := authmw.SubjectFromContext(r.Context())
		sess, ok := mgr.Lookup(sub)
		if !ok {
			writeDomainError(w, draft.ErrNoSession)
			return
		}
		view, err := op(sess, r)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, nethttp.StatusOK, view)
	}
}

func withSessionIndex(mgr *authoring.Manager, param string, op func(*authoring.Session, int, *nethttp.Request) (authoring.View, error)) nethttp.HandlerFunc {
	return withSession(mgr, func(sess *authoring.Session, r *nethttp.Request) (authoring.View, error) {
		i, err := strconv.Atoi(chi.URLParam(r, param))
		if err != nil {
			return authoring.View{}, &draft.ValidationError{Field: param, Reason: "not a number"}
		}
		return op(sess, i, r)
	})
}
