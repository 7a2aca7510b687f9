package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/lib/pq"

	"dealerinspect/pkg/inspection"
)

// writeJSON sends v as the response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

// writeError translates engine errors into status codes: ValidationError 400,
// NotFoundError 404, ConflictError 409, anything else 500. A postgres unique
// violation on the default-config partial index surfaces as a conflict.
func writeError(w http.ResponseWriter, err error) {
	var nf *inspection.NotFoundError
	var ve *inspection.ValidationError
	var ce *inspection.ConflictError
	var pqErr *pq.Error

	switch {
	case errors.As(err, &nf):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": nf.Error()})
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": ve.Error()})
	case errors.As(err, &ce):
		writeJSON(w, http.StatusConflict, map[string]string{"error": ce.Error()})
	case errors.As(err, &pqErr) && pqErr.Code == "23505":
		writeJSON(w, http.StatusConflict, map[string]string{"error": "conflict: " + pqErr.Constraint})
	default:
		log.Println("internal error:", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}

// decodeJSON reads the request body into dst; false means the response was
// already written.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return false
	}
	return true
}
