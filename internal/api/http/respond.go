package http

import (
	"encoding/json"
	"errors"

	nethttp "net/http"

	"github.com/examplatform/examplatform/internal/aigen"
	"github.com/examplatform/examplatform/internal/draft"
	"github.com/examplatform/examplatform/internal/exam"
	"github.com/examplatform/examplatform/internal/routesync"
)

// Handlers only — routes remain in main.go

func writeJSON(w nethttp.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeDomainError maps authoring and exam errors onto HTTP statuses.
func writeDomainError(w nethttp.ResponseWriter, err error) {
	var vErr *draft.ValidationError
	var gErr *aigen.GenerationError
	var pErr *draft.PersistenceError
	switch {
	case errors.As(err, &vErr):
		writeJSON(w, nethttp.StatusUnprocessableEntity,
			map[string]string{"error": vErr.Error(), "field": vErr.Field})
	case errors.As(err, &gErr):
		writeJSON(w, nethttp.StatusBadGateway, map[string]string{"error": gErr.Error()})
	case errors.As(err, &pErr):
		writeJSON(w, nethttp.StatusBadGateway, map[string]string{"error": pErr.Error()})
	case errors.Is(err, draft.ErrGenerationInFlight),
		errors.Is(err, draft.ErrSaveInFlight),
		errors.Is(err, draft.ErrOptionFloor),
		errors.Is(err, draft.ErrNotMultipleChoice):
		writeJSON(w, nethttp.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, draft.ErrSessionClosed):
		writeJSON(w, nethttp.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, draft.ErrNoSession),
		errors.Is(err, routesync.ErrEditTargetNotFound),
		errors.Is(err, exam.ErrNotFound),
		errors.Is(err, exam.ErrCourseNotFound):
		writeJSON(w, nethttp.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, exam.ErrNotCourseOwner):
		writeJSON(w, nethttp.StatusForbidden, map[string]string{"error": err.Error()})
	default:
		writeJSON(w, nethttp.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}
