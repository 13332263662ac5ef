package handlers

import (
	"encoding/json"
	"mime/multipart"
	"net/http"

	"biblioteca-backend/media"
	"biblioteca-backend/models"
	"biblioteca-backend/store"
)

type BooksHandler struct {
	Store    store.Store
	Media    media.Store
	MaxBytes int64
}

// BookResponse is a Book enriched with the author's denormalized name and
// the resolved media URLs. URLs are null when absent or unresolvable.
type BookResponse struct {
	models.Book
	AutorNombre   string  `json:"autor_nombre"`
	AutorApellido string  `json:"autor_apellido"`
	PortadaURL    *string `json:"portada_url"`
	ArchivoPDFURL *string `json:"archivo_pdf_url"`
}

func (h *BooksHandler) response(r *http.Request, b *models.Book, author *models.Author) BookResponse {
	resp := BookResponse{Book: *b}
	if author != nil {
		resp.AutorNombre = author.FirstName
		resp.AutorApellido = author.LastName
	}
	if h.Media != nil {
		if b.CoverKey != "" {
			if url := h.Media.ResolveURL(r.Context(), b.CoverKey); url != "" {
				resp.PortadaURL = &url
			}
		}
		if b.PDFKey != "" {
			if url := h.Media.ResolveURL(r.Context(), b.PDFKey); url != "" {
				resp.ArchivoPDFURL = &url
			}
		}
	}
	return resp
}

// responseWithAuthor looks the author up for single-book responses. A lookup
// failure only drops the denormalized names, never the book.
func (h *BooksHandler) responseWithAuthor(r *http.Request, b *models.Book) BookResponse {
	author, err := h.Store.AuthorByID(r.Context(), b.AuthorID)
	if err != nil {
		author = nil
	}
	return h.response(r, b, author)
}

type bookForm struct {
	Title           *string `json:"titulo"`
	AuthorID        *int64  `json:"autor"`
	Publisher       *string `json:"editorial"`
	PublicationYear *int    `json:"anio_publicacion"`
	ISBN            *string `json:"isbn"`
	Category        *string `json:"categoria"`
	Language        *string `json:"idioma"`
	CopyCount       *int    `json:"numero_ejemplares"`
	Genre           *string `json:"genero"`
	PageCount       *int    `json:"numero_paginas"`
	Synopsis        *string `json:"sinopsis"`
	Series          *string `json:"serie"`
	cover           *multipart.FileHeader
	pdf             *multipart.FileHeader
}

func (f *bookForm) apply(b *models.Book) {
	if f.Title != nil {
		b.Title = *f.Title
	}
	if f.AuthorID != nil {
		b.AuthorID = *f.AuthorID
	}
	if f.Publisher != nil {
		b.Publisher = *f.Publisher
	}
	if f.PublicationYear != nil {
		b.PublicationYear = *f.PublicationYear
	}
	if f.ISBN != nil {
		b.ISBN = *f.ISBN
	}
	if f.Category != nil {
		b.Category = *f.Category
	}
	if f.Language != nil {
		b.Language = *f.Language
	}
	if f.CopyCount != nil {
		b.CopyCount = *f.CopyCount
	}
	if f.Genre != nil {
		b.Genre = *f.Genre
	}
	if f.PageCount != nil {
		b.PageCount = *f.PageCount
	}
	if f.Synopsis != nil {
		b.Synopsis = *f.Synopsis
	}
	if f.Series != nil {
		b.Series = *f.Series
	}
}

// parseForm accepts JSON or multipart (entity fields plus `portada` image
// and `archivo_pdf` document parts).
func (h *BooksHandler) parseForm(w http.ResponseWriter, r *http.Request) (*bookForm, bool) {
	var f bookForm
	if isMultipart(r) {
		if h.MaxBytes > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, h.MaxBytes)
		}
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "failed to parse multipart form"})
			return nil, false
		}
		form := r.MultipartForm
		v := models.NewValidationError()
		f.Title = formString(form, "titulo")
		f.AuthorID = formInt64(form, "autor", v)
		f.Publisher = formString(form, "editorial")
		f.PublicationYear = formInt(form, "anio_publicacion", v)
		f.ISBN = formString(form, "isbn")
		f.Category = formString(form, "categoria")
		f.Language = formString(form, "idioma")
		f.CopyCount = formInt(form, "numero_ejemplares", v)
		f.Genre = formString(form, "genero")
		f.PageCount = formInt(form, "numero_paginas", v)
		f.Synopsis = formString(form, "sinopsis")
		f.Series = formString(form, "serie")
		f.cover = formFile(form, "portada")
		f.pdf = formFile(form, "archivo_pdf")
		if !v.Empty() {
			writeStoreError(w, v)
			return nil, false
		}
		return &f, true
	}
	if err := json.NewDecoder(r.Body).Decode(&f); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return nil, false
	}
	return &f, true
}

// storeAttachments uploads the cover and pdf parts, if any, and sets the
// book's keys. Returns false after writing the error response.
func (h *BooksHandler) storeAttachments(w http.ResponseWriter, r *http.Request, f *bookForm, b *models.Book) bool {
	if f.cover == nil && f.pdf == nil {
		return true
	}
	if h.Media == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "media storage not configured"})
		return false
	}
	if f.cover != nil {
		key, err := storeAttachment(r, h.Media, media.KindImage, f.cover)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to store file"})
			return false
		}
		b.CoverKey = key
	}
	if f.pdf != nil {
		key, err := storeAttachment(r, h.Media, media.KindDocument, f.pdf)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to store file"})
			return false
		}
		b.PDFKey = key
	}
	return true
}

func (h *BooksHandler) List(w http.ResponseWriter, r *http.Request) {
	books, err := h.Store.ListBooks(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	authors, err := h.Store.ListAuthors(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	byID := make(map[int64]*models.Author, len(authors))
	for i := range authors {
		byID[authors[i].ID] = &authors[i]
	}
	out := make([]BookResponse, 0, len(books))
	for i := range books {
		out = append(out, h.response(r, &books[i], byID[books[i].AuthorID]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *BooksHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid book id"})
		return
	}
	book, err := h.Store.BookByID(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.responseWithAuthor(r, book))
}

func (h *BooksHandler) Create(w http.ResponseWriter, r *http.Request) {
	f, ok := h.parseForm(w, r)
	if !ok {
		return
	}
	book := models.Book{CopyCount: 1}
	f.apply(&book)
	if err := book.Validate(); err != nil {
		writeStoreError(w, err)
		return
	}
	if !h.storeAttachments(w, r, f, &book) {
		return
	}
	if err := h.Store.CreateBook(r.Context(), &book); err != nil {
		h.evict(r, book.CoverKey, book.PDFKey)
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.responseWithAuthor(r, &book))
}

// Update handles PUT (full replace) and PATCH (overlay on the stored
// record); replaced attachments evict the old objects.
func (h *BooksHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid book id"})
		return
	}
	existing, err := h.Store.BookByID(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	f, ok := h.parseForm(w, r)
	if !ok {
		return
	}
	book := models.Book{ID: id, CopyCount: 1, CoverKey: existing.CoverKey, PDFKey: existing.PDFKey}
	if r.Method == http.MethodPatch {
		book = *existing
	}
	f.apply(&book)
	if err := book.Validate(); err != nil {
		writeStoreError(w, err)
		return
	}
	oldCover, oldPDF := existing.CoverKey, existing.PDFKey
	if !h.storeAttachments(w, r, f, &book) {
		return
	}
	if err := h.Store.UpdateBook(r.Context(), &book); err != nil {
		if f.cover != nil {
			h.evict(r, book.CoverKey, "")
		}
		if f.pdf != nil {
			h.evict(r, "", book.PDFKey)
		}
		writeStoreError(w, err)
		return
	}
	if f.cover != nil && oldCover != "" && oldCover != book.CoverKey {
		h.evict(r, oldCover, "")
	}
	if f.pdf != nil && oldPDF != "" && oldPDF != book.PDFKey {
		h.evict(r, "", oldPDF)
	}
	writeJSON(w, http.StatusOK, h.responseWithAuthor(r, &book))
}

func (h *BooksHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid book id"})
		return
	}
	existing, err := h.Store.BookByID(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if err := h.Store.DeleteBook(r.Context(), id); err != nil {
		writeStoreError(w, err)
		return
	}
	h.evict(r, existing.CoverKey, existing.PDFKey)
	w.WriteHeader(http.StatusNoContent)
}

func (h *BooksHandler) evict(r *http.Request, coverKey, pdfKey string) {
	if h.Media == nil {
		return
	}
	if coverKey != "" {
		_ = h.Media.Delete(r.Context(), coverKey)
	}
	if pdfKey != "" {
		_ = h.Media.Delete(r.Context(), pdfKey)
	}
}
