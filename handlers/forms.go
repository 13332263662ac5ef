package handlers

import (
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"biblioteca-backend/media"
	"biblioteca-backend/models"
)

// multipartMemory is the in-memory threshold for multipart parsing; larger
// parts spill to temp files.
const multipartMemory = 10 << 20

func parseID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

func formString(form *multipart.Form, key string) *string {
	if vals, ok := form.Value[key]; ok && len(vals) > 0 {
		v := vals[0]
		return &v
	}
	return nil
}

func formInt(form *multipart.Form, key string, v *models.ValidationError) *int {
	s := formString(form, key)
	if s == nil {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(*s))
	if err != nil {
		v.Add(key, "debe ser un número entero")
		return nil
	}
	return &n
}

func formInt64(form *multipart.Form, key string, v *models.ValidationError) *int64 {
	s := formString(form, key)
	if s == nil {
		return nil
	}
	n, err := strconv.ParseInt(strings.TrimSpace(*s), 10, 64)
	if err != nil {
		v.Add(key, "debe ser un número entero")
		return nil
	}
	return &n
}

func formFile(form *multipart.Form, key string) *multipart.FileHeader {
	if files, ok := form.File[key]; ok && len(files) > 0 {
		return files[0]
	}
	return nil
}

// storeAttachment uploads a multipart file to the media store and returns the
// object key.
func storeAttachment(r *http.Request, m media.Store, kind media.Kind, fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()
	contentType := fh.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return m.Store(r.Context(), kind, fh.Filename, f, contentType)
}
