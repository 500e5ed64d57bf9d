package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/erazemk/reclaim/internal/model"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
	Field string `json:"field,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("encoding response", "error", err)
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, errorResponse{Error: message})
}

// workflowError writes the response for a failed workflow operation. Each
// failure kind has a stable status, code and message.
func workflowError(w http.ResponseWriter, r *http.Request, err error) {
	kind := model.ErrorKind(err)
	resp := errorResponse{Code: kind}
	status := http.StatusInternalServerError

	switch kind {
	case "not_found":
		status, resp.Error = http.StatusNotFound, "not found"
	case "forbidden":
		status, resp.Error = http.StatusForbidden, "not allowed"
	case "invalid_transition":
		status, resp.Error = http.StatusConflict, "not possible in the current state"
	case "conflict":
		status, resp.Error = http.StatusConflict, "already requested"
	case "closed":
		status, resp.Error = http.StatusLocked, "chat is closed"
	case "validation":
		status = http.StatusBadRequest
		var verr *model.ValidationError
		if errors.As(err, &verr) {
			resp.Field = verr.Field
			resp.Error = verr.Field + " " + verr.Message
		} else {
			resp.Error = "invalid input"
		}
	default:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		resp.Error = "internal error"
	}

	jsonResponse(w, status, resp)
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}

// pathID parses the {id} path value.
func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil && id > 0
}

// emptyIfNil keeps empty lists encoded as [] rather than null.
func emptyIfNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
