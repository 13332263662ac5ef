package models

import (
	"errors"
	"testing"
)

func fields(t *testing.T, err error) map[string]string {
	t.Helper()
	var v *ValidationError
	if !errors.As(err, &v) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	return v.Fields
}

func TestAuthorValidate(t *testing.T) {
	a := Author{FirstName: "Gabriel", LastName: "García Márquez", Nationality: "Colombia"}
	if err := a.Validate(); err != nil {
		t.Fatalf("valid author: %v", err)
	}

	a = Author{}
	f := fields(t, a.Validate())
	for _, field := range []string{"nombre", "apellido", "nacionalidad"} {
		if _, ok := f[field]; !ok {
			t.Fatalf("missing %s error: %v", field, f)
		}
	}

	a = Author{FirstName: "G", LastName: "G", Nationality: "C", BirthDate: "06/03/1927"}
	f = fields(t, a.Validate())
	if _, ok := f["fecha_nacimiento"]; !ok {
		t.Fatalf("missing fecha_nacimiento error: %v", f)
	}

	a.BirthDate = "1927-03-06"
	if err := a.Validate(); err != nil {
		t.Fatalf("valid birth date: %v", err)
	}
}

func TestBookValidate(t *testing.T) {
	valid := Book{
		Title: "Cien años de soledad", AuthorID: 1, Publisher: "Sudamericana",
		PublicationYear: 1967, ISBN: "978-0307474728", Category: "Novela",
		Language: "Español", CopyCount: 1, Genre: "Realismo mágico", PageCount: 417,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid book: %v", err)
	}

	b := Book{}
	f := fields(t, b.Validate())
	for _, field := range []string{"titulo", "autor", "editorial", "isbn", "categoria", "idioma", "numero_ejemplares", "genero"} {
		if _, ok := f[field]; !ok {
			t.Fatalf("missing %s error: %v", field, f)
		}
	}

	b = valid
	b.CopyCount = 0
	f = fields(t, b.Validate())
	if _, ok := f["numero_ejemplares"]; !ok {
		t.Fatalf("copy count 0 should fail: %v", f)
	}

	b = valid
	b.PageCount = -1
	f = fields(t, b.Validate())
	if _, ok := f["numero_paginas"]; !ok {
		t.Fatalf("negative page count should fail: %v", f)
	}

	b = valid
	b.PublicationYear = -5
	f = fields(t, b.Validate())
	if _, ok := f["anio_publicacion"]; !ok {
		t.Fatalf("negative year should fail: %v", f)
	}
}

func TestValidationErrorMessage(t *testing.T) {
	v := NewValidationError()
	if v.OrNil() != nil {
		t.Fatal("empty validation error should be nil")
	}
	v.Add("isbn", "ya existe")
	v.Add("autor", "no existe")
	got := v.Error()
	want := "validation failed: autor: no existe; isbn: ya existe"
	if got != want {
		t.Fatalf("message %q, want %q", got, want)
	}
}
