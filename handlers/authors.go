package handlers

import (
	"encoding/json"
	"mime/multipart"
	"net/http"

	"biblioteca-backend/media"
	"biblioteca-backend/models"
	"biblioteca-backend/store"
)

type AuthorsHandler struct {
	Store    store.Store
	Media    media.Store
	MaxBytes int64
}

// AuthorResponse is an Author enriched with the resolved photo URL. FotoURL
// is null when there is no photo or resolution failed.
type AuthorResponse struct {
	models.Author
	FotoURL *string `json:"foto_url"`
}

func (h *AuthorsHandler) response(r *http.Request, a *models.Author) AuthorResponse {
	resp := AuthorResponse{Author: *a}
	if a.PhotoKey != "" && h.Media != nil {
		if url := h.Media.ResolveURL(r.Context(), a.PhotoKey); url != "" {
			resp.FotoURL = &url
		}
	}
	return resp
}

// authorForm carries the writable fields of an Author. Pointers distinguish
// "absent" from "empty" so the same form serves PUT and PATCH.
type authorForm struct {
	FirstName   *string `json:"nombre"`
	LastName    *string `json:"apellido"`
	Nationality *string `json:"nacionalidad"`
	BirthDate   *string `json:"fecha_nacimiento"`
	Biography   *string `json:"biografia"`
	photo       *multipart.FileHeader
}

func (f *authorForm) apply(a *models.Author) {
	if f.FirstName != nil {
		a.FirstName = *f.FirstName
	}
	if f.LastName != nil {
		a.LastName = *f.LastName
	}
	if f.Nationality != nil {
		a.Nationality = *f.Nationality
	}
	if f.BirthDate != nil {
		a.BirthDate = *f.BirthDate
	}
	if f.Biography != nil {
		a.Biography = *f.Biography
	}
}

// parseForm accepts JSON or multipart (entity fields plus a `foto` image
// part). On failure it writes the error response and returns false.
func (h *AuthorsHandler) parseForm(w http.ResponseWriter, r *http.Request) (*authorForm, bool) {
	var f authorForm
	if isMultipart(r) {
		if h.MaxBytes > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, h.MaxBytes)
		}
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "failed to parse multipart form"})
			return nil, false
		}
		form := r.MultipartForm
		f.FirstName = formString(form, "nombre")
		f.LastName = formString(form, "apellido")
		f.Nationality = formString(form, "nacionalidad")
		f.BirthDate = formString(form, "fecha_nacimiento")
		f.Biography = formString(form, "biografia")
		f.photo = formFile(form, "foto")
		return &f, true
	}
	if err := json.NewDecoder(r.Body).Decode(&f); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return nil, false
	}
	return &f, true
}

// storePhoto uploads the form's photo, if any, and sets the author's key.
// Returns false after writing the error response.
func (h *AuthorsHandler) storePhoto(w http.ResponseWriter, r *http.Request, f *authorForm, a *models.Author) bool {
	if f.photo == nil {
		return true
	}
	if h.Media == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "media storage not configured"})
		return false
	}
	key, err := storeAttachment(r, h.Media, media.KindImage, f.photo)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to store file"})
		return false
	}
	a.PhotoKey = key
	return true
}

func (h *AuthorsHandler) List(w http.ResponseWriter, r *http.Request) {
	authors, err := h.Store.ListAuthors(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	out := make([]AuthorResponse, 0, len(authors))
	for i := range authors {
		out = append(out, h.response(r, &authors[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *AuthorsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid author id"})
		return
	}
	author, err := h.Store.AuthorByID(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.response(r, author))
}

func (h *AuthorsHandler) Create(w http.ResponseWriter, r *http.Request) {
	f, ok := h.parseForm(w, r)
	if !ok {
		return
	}
	var author models.Author
	f.apply(&author)
	if err := author.Validate(); err != nil {
		writeStoreError(w, err)
		return
	}
	if !h.storePhoto(w, r, f, &author) {
		return
	}
	if err := h.Store.CreateAuthor(r.Context(), &author); err != nil {
		if author.PhotoKey != "" && h.Media != nil {
			_ = h.Media.Delete(r.Context(), author.PhotoKey)
		}
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.response(r, &author))
}

// Update handles PUT (full replace) and PATCH (overlay on the stored
// record); in both cases a replaced photo evicts the old object.
func (h *AuthorsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid author id"})
		return
	}
	existing, err := h.Store.AuthorByID(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	f, ok := h.parseForm(w, r)
	if !ok {
		return
	}
	author := models.Author{ID: id, PhotoKey: existing.PhotoKey}
	if r.Method == http.MethodPatch {
		author = *existing
	}
	f.apply(&author)
	if err := author.Validate(); err != nil {
		writeStoreError(w, err)
		return
	}
	oldPhoto := existing.PhotoKey
	if !h.storePhoto(w, r, f, &author) {
		return
	}
	if err := h.Store.UpdateAuthor(r.Context(), &author); err != nil {
		if f.photo != nil && author.PhotoKey != oldPhoto && h.Media != nil {
			_ = h.Media.Delete(r.Context(), author.PhotoKey)
		}
		writeStoreError(w, err)
		return
	}
	if f.photo != nil && oldPhoto != "" && oldPhoto != author.PhotoKey && h.Media != nil {
		_ = h.Media.Delete(r.Context(), oldPhoto)
	}
	writeJSON(w, http.StatusOK, h.response(r, &author))
}

// Delete removes the author and cascades to its books; all associated media
// objects are evicted best-effort.
func (h *AuthorsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid author id"})
		return
	}
	existing, err := h.Store.AuthorByID(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	books, err := h.Store.BooksByAuthor(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if err := h.Store.DeleteAuthor(r.Context(), id); err != nil {
		writeStoreError(w, err)
		return
	}
	if h.Media != nil {
		if existing.PhotoKey != "" {
			_ = h.Media.Delete(r.Context(), existing.PhotoKey)
		}
		for i := range books {
			if books[i].CoverKey != "" {
				_ = h.Media.Delete(r.Context(), books[i].CoverKey)
			}
			if books[i].PDFKey != "" {
				_ = h.Media.Delete(r.Context(), books[i].PDFKey)
			}
		}
	}
	w.WriteHeader(http.StatusNoContent)
}
