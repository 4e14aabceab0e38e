package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/thenoetrevino/plank/internal/apperr"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			slog.Error("failed to encode response", "error", err)
		}
	}
}

// writeError maps a classified error onto an HTTP status. Unclassified
// errors are infrastructure failures: log the detail, hide it from the
// client.
func writeError(w http.ResponseWriter, err error) {
	switch apperr.KindOf(err) {
	case apperr.KindBadRequest:
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	case apperr.KindUnauthorized:
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: err.Error()})
	case apperr.KindForbidden:
		writeJSON(w, http.StatusForbidden, errorBody{Error: err.Error()})
	case apperr.KindNotFound:
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
	case apperr.KindConflict:
		writeJSON(w, http.StatusConflict, errorBody{Error: err.Error()})
	default:
		slog.Error("request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}

// pathID parses a positive integer path segment. Anything else is a
// client error, reported before any domain call runs.
func pathID(r *http.Request, name string) (int, error) {
	id, err := strconv.Atoi(r.PathValue(name))
	if err != nil || id <= 0 {
		return 0, apperr.Newf(apperr.KindBadRequest, "invalid %s", name)
	}
	return id, nil
}

// decodeBody parses the JSON request body into v.
func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.New(apperr.KindBadRequest, "malformed request body")
	}
	return nil
}
