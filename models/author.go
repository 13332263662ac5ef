package models

import (
	"strings"
	"time"
)

// Author is a catalog author. PhotoKey is the media-store object key of the
// author's photo; empty means no photo.
type Author struct {
	ID          int64  `json:"id"`
	FirstName   string `json:"nombre"`
	LastName    string `json:"apellido"`
	Nationality string `json:"nacionalidad"`
	BirthDate   string `json:"fecha_nacimiento,omitempty"` // YYYY-MM-DD, optional
	Biography   string `json:"biografia,omitempty"`
	PhotoKey    string `json:"-"`
}

// Validate checks structural constraints. Relational constraints (nothing for
// authors today) live in the store.
func (a *Author) Validate() error {
	v := NewValidationError()
	if strings.TrimSpace(a.FirstName) == "" {
		v.Add("nombre", "este campo es requerido")
	}
	if strings.TrimSpace(a.LastName) == "" {
		v.Add("apellido", "este campo es requerido")
	}
	if strings.TrimSpace(a.Nationality) == "" {
		v.Add("nacionalidad", "este campo es requerido")
	}
	if a.BirthDate != "" {
		if _, err := time.Parse("2006-01-02", a.BirthDate); err != nil {
			v.Add("fecha_nacimiento", "fecha inválida, use YYYY-MM-DD")
		}
	}
	return v.OrNil()
}
