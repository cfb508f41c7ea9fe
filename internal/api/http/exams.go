package http

import (
	nethttp "net/http"

	"github.com/go-chi/chi/v5"

	authmw "github.com/examplatform/examplatform/internal/auth/middleware"
	"github.com/examplatform/examplatform/internal/exam"
)

func ListExamsHandler(svc *exam.Service) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		sub := authmw.SubjectFromContext(r.Context())
		out, err := svc.ListExamsForInstructor(r.Context(), sub)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		if out == nil {
			out = []exam.Exam{}
		}
		writeJSON(w, nethttp.StatusOK, out)
	}
}

func GetExamHandler(svc *exam.Service) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		e, err := svc.GetExam(r.Context(), chi.URLParam(r, "examID"))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, nethttp.StatusOK, e)
	}
}

func PublishExamHandler(svc *exam.Service, publish bool) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		id := chi.URLParam(r, "examID")
		var (
			e   exam.Exam
			err error
		)
		if publish {
			e, err = svc.PublishExam(r.Context(), id)
		} else {
			e, err = svc.UnpublishExam(r.Context(), id)
		}
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, nethttp.StatusOK, e)
	}
}
