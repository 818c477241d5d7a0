package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"regiond/internal/errs"
	"regiond/internal/logs"
	"regiond/internal/middleware"
	"regiond/internal/models"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeModel sets the ETag header from the model content.
func writeModel(w http.ResponseWriter, code int, m models.Model) {
	w.Header().Set("ETag", strconv.Quote(m.Etag()))
	writeJSON(w, code, m)
}

type errorBody struct {
	Code    int           `json:"code"`
	Kind    string        `json:"kind"`
	Details []errs.Detail `json:"details,omitempty"`
}

func statusOf(kind errs.Kind) int {
	switch kind {
	case errs.KindNotFound:
		return http.StatusNotFound
	case errs.KindPreconditionFailed:
		return http.StatusPreconditionFailed
	case errs.KindValidation:
		return http.StatusBadRequest
	case errs.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var e *errs.Error
	if errors.As(err, &e) {
		code := statusOf(e.Kind)
		writeJSON(w, code, errorBody{Code: code, Kind: e.Kind.String(), Details: e.Details})
		return
	}
	logs.Logger.WithField("request_id", middleware.RequestIDFrom(r.Context())).
		WithError(err).Error("request failed")
	writeJSON(w, http.StatusInternalServerError, errorBody{Code: http.StatusInternalServerError, Kind: "internal"})
}

func notFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, errs.NotFound("Resource with such identifiers does not exist."))
}

func pathID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || id <= 0 {
		return 0, errs.Validation("invalid id %q", mux.Vars(r)["id"])
	}
	return id, nil
}

// ifMatch returns the If-Match header without quotes. "*" matches any
// version and is treated as absent.
func ifMatch(r *http.Request) string {
	v := strings.TrimSpace(r.Header.Get("If-Match"))
	v = strings.TrimPrefix(v, "W/")
	if v == "*" {
		return ""
	}
	return strings.Trim(v, `"`)
}

func decodeBody(r *http.Request, into any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(into); err != nil {
		return errs.Validation("invalid request body: %v", err)
	}
	return nil
}
