package handler

import (
	"encoding/json"
	"net/http"

	"github.com/MaqroSolutions/Dealerships-sub000/internal/apperr"
)

// writeJSON encodes v as the response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// decodeJSON reads and decodes r's body into v.
func decodeJSON(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// writeError maps an apperr.Kind to the HTTP status named in §7 and writes
// a JSON error body. Untyped errors map to 500, per apperr.KindOf's
// KindFatal default.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch apperr.KindOf(err) {
	case apperr.KindInput:
		status = http.StatusBadRequest
	case apperr.KindAuth:
		status = http.StatusForbidden
	case apperr.KindNotFound:
		status = http.StatusNotFound
	case apperr.KindConflict:
		status = http.StatusConflict
	case apperr.KindProvider:
		status = http.StatusBadGateway
	case apperr.KindTransient:
		status = http.StatusServiceUnavailable
	case apperr.KindFatal:
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
