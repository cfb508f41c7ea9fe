package http

import (
	"encoding/json"
	"strings"

	nethttp "net/http"

	authmw "github.com/examplatform/examplatform/internal/auth/middleware"
	"github.com/examplatform/examplatform/internal/exam"
)

func CreateCourseHandler(svc *exam.Service) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		sub := authmw.SubjectFromContext(r.Context())
		var req struct {
			Name string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Name) == "" {
			nethttp.Error(w, "bad json", nethttp.StatusBadRequest)
			return
		}
		c, err := svc.CreateCourse(r.Context(), sub, strings.TrimSpace(req.Name))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, nethttp.StatusCreated, c)
	}
}

func ListCoursesHandler(svc *exam.Service) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		sub := authmw.SubjectFromContext(r.Context())
		out, err := svc.ListCoursesForInstructor(r.Context(), sub)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		if out == nil {
			out = []exam.Course{}
		}
		writeJSON(w, nethttp.StatusOK, out)
	}
}
