package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"biblioteca-backend/models"
	"biblioteca-backend/store"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type validationResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

// writeStoreError maps the error taxonomy to HTTP statuses: constraint
// violations and field errors are 400, missing ids are 404, everything else
// is an infrastructure 500.
func writeStoreError(w http.ResponseWriter, err error) {
	var v *models.ValidationError
	switch {
	case errors.As(err, &v):
		writeJSON(w, http.StatusBadRequest, validationResponse{Error: "validation_error", Fields: v.Fields})
	case errors.Is(err, store.ErrDuplicateISBN):
		writeJSON(w, http.StatusBadRequest, validationResponse{
			Error:  "validation_error",
			Fields: map[string]string{"isbn": "ya existe un libro con este isbn"},
		})
	case errors.Is(err, store.ErrUnknownAuthor):
		writeJSON(w, http.StatusBadRequest, validationResponse{
			Error:  "validation_error",
			Fields: map[string]string{"autor": "el autor no existe"},
		})
	case errors.Is(err, store.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}
