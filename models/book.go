package models

import "strings"

// Book is a catalog book. AuthorID is a required reference to an Author and
// is enforced by the store; deleting the author deletes the book. CoverKey
// and PDFKey are media-store object keys, empty when absent.
type Book struct {
	ID              int64  `json:"id"`
	Title           string `json:"titulo"`
	AuthorID        int64  `json:"autor"`
	Publisher       string `json:"editorial"`
	PublicationYear int    `json:"anio_publicacion"`
	ISBN            string `json:"isbn"`
	Category        string `json:"categoria"`
	Language        string `json:"idioma"`
	CopyCount       int    `json:"numero_ejemplares"`
	Genre           string `json:"genero"`
	PageCount       int    `json:"numero_paginas"`
	Synopsis        string `json:"sinopsis,omitempty"`
	Series          string `json:"serie,omitempty"`
	CoverKey        string `json:"-"`
	PDFKey          string `json:"-"`
}

// Validate checks structural constraints. ISBN uniqueness and the author
// reference are relational and checked by the store at write time.
func (b *Book) Validate() error {
	v := NewValidationError()
	if strings.TrimSpace(b.Title) == "" {
		v.Add("titulo", "este campo es requerido")
	}
	if b.AuthorID <= 0 {
		v.Add("autor", "este campo es requerido")
	}
	if strings.TrimSpace(b.Publisher) == "" {
		v.Add("editorial", "este campo es requerido")
	}
	if b.PublicationYear < 0 {
		v.Add("anio_publicacion", "debe ser un número positivo")
	}
	if strings.TrimSpace(b.ISBN) == "" {
		v.Add("isbn", "este campo es requerido")
	}
	if strings.TrimSpace(b.Category) == "" {
		v.Add("categoria", "este campo es requerido")
	}
	if strings.TrimSpace(b.Language) == "" {
		v.Add("idioma", "este campo es requerido")
	}
	if b.CopyCount < 1 {
		v.Add("numero_ejemplares", "debe ser al menos 1")
	}
	if strings.TrimSpace(b.Genre) == "" {
		v.Add("genero", "este campo es requerido")
	}
	if b.PageCount < 0 {
		v.Add("numero_paginas", "debe ser un número positivo")
	}
	return v.OrNil()
}
