package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"biblioteca-backend/media"
	"biblioteca-backend/middleware"
	"biblioteca-backend/models"
	"biblioteca-backend/store"
)

const testSecret = "test-secret"

// fakeMedia is an in-memory media.Store. Keys are deterministic and resolve
// to https://media.test/<key>; failResolve simulates an unreachable backend.
type fakeMedia struct {
	mu          sync.Mutex
	objects     map[string][]byte
	next        int
	failResolve bool
}

func newFakeMedia() *fakeMedia {
	return &fakeMedia{objects: map[string][]byte{}}
}

func (f *fakeMedia) Store(ctx context.Context, kind media.Kind, filename string, body io.Reader, contentType string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	f.next++
	key := fmt.Sprintf("%s/%d-%s", kind, f.next, filename)
	f.objects[key] = data
	return key, nil
}

func (f *fakeMedia) ResolveURL(ctx context.Context, key string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failResolve || key == "" {
		return ""
	}
	return "https://media.test/" + key
}

func (f *fakeMedia) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	return nil
}

func (f *fakeMedia) has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[key]
	return ok
}

type testEnv struct {
	store *store.Memory
	media *fakeMedia
	srv   http.Handler
}

// newTestEnv wires the handlers onto a router the way main does, backed by
// the in-memory store and the fake media store.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := store.NewMemory()
	fm := newFakeMedia()

	authHandler := &AuthHandler{
		Store:      db,
		JWTSecret:  testSecret,
		AccessTTL:  time.Hour,
		RefreshTTL: 7 * 24 * time.Hour,
	}
	authorsHandler := &AuthorsHandler{Store: db, Media: fm}
	booksHandler := &BooksHandler{Store: db, Media: fm}

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Post("/login", authHandler.Login)
		r.Get("/autores", authorsHandler.List)
		r.Get("/autores/{id}", authorsHandler.Get)
		r.Get("/libros", booksHandler.List)
		r.Get("/libros/{id}", booksHandler.Get)
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(testSecret))
			r.Post("/autores", authorsHandler.Create)
			r.Put("/autores/{id}", authorsHandler.Update)
			r.Patch("/autores/{id}", authorsHandler.Update)
			r.Delete("/autores/{id}", authorsHandler.Delete)
			r.Post("/libros", booksHandler.Create)
			r.Put("/libros/{id}", booksHandler.Update)
			r.Patch("/libros/{id}", booksHandler.Update)
			r.Delete("/libros/{id}", booksHandler.Delete)
		})
	})

	return &testEnv{store: db, media: fm, srv: r}
}

// seedUser creates an active user and returns it.
func (e *testEnv) seedUser(t *testing.T, username, email, password, role string, active bool) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	u := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		IsActive:     active,
	}
	if err := e.store.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

// token logs a seeded user in and returns the access token.
func (e *testEnv) token(t *testing.T, identifier, password string) string {
	t.Helper()
	rec := e.doJSON(t, http.MethodPost, "/api/login", "", map[string]string{
		"identifier": identifier,
		"password":   password,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login for token: status %d body %s", rec.Code, rec.Body.String())
	}
	var resp LoginResponse
	decodeBody(t, rec, &resp)
	return resp.Access
}

func (e *testEnv) doJSON(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.srv.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) doMultipart(t *testing.T, method, path, token string, fields map[string]string, files map[string][2]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field %s: %v", k, err)
		}
	}
	for part, f := range files {
		fw, err := mw.CreateFormFile(part, f[0])
		if err != nil {
			t.Fatalf("create form file %s: %v", part, err)
		}
		if _, err := fw.Write([]byte(f[1])); err != nil {
			t.Fatalf("write file %s: %v", part, err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.srv.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

// seedAuthor creates an author directly in the store.
func (e *testEnv) seedAuthor(t *testing.T, first, last string) *models.Author {
	t.Helper()
	a := &models.Author{FirstName: first, LastName: last, Nationality: "Colombia"}
	if err := e.store.CreateAuthor(context.Background(), a); err != nil {
		t.Fatalf("seed author: %v", err)
	}
	return a
}

func (e *testEnv) seedBook(t *testing.T, authorID int64, title, isbn string) *models.Book {
	t.Helper()
	b := &models.Book{
		Title:           title,
		AuthorID:        authorID,
		Publisher:       "Planeta",
		PublicationYear: 1967,
		ISBN:            isbn,
		Category:        "Novela",
		Language:        "Español",
		CopyCount:       1,
		Genre:           "Realismo mágico",
		PageCount:       417,
	}
	if err := e.store.CreateBook(context.Background(), b); err != nil {
		t.Fatalf("seed book: %v", err)
	}
	return b
}
