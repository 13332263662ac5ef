package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"biblioteca-backend/models"
)

// Integration coverage for the Postgres store. Skipped unless
// BIBLIOTECA_TEST_DATABASE_URL points at a scratch database.
func openTestPostgres(t *testing.T) *Postgres {
	t.Helper()
	dsn := os.Getenv("BIBLIOTECA_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("BIBLIOTECA_TEST_DATABASE_URL not set; skipping postgres integration test")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	p, err := NewPostgres(ctx, dsn)
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	t.Cleanup(p.Close)
	return p
}

func TestPostgres_ConstraintsAndCascade(t *testing.T) {
	p := openTestPostgres(t)
	ctx := context.Background()
	suffix := time.Now().UnixNano()

	a := seedAuthor(t, p, "Gabriel", "García Márquez")
	isbn1 := fmt.Sprintf("it-isbn-1-%d", suffix)
	isbn2 := fmt.Sprintf("it-isbn-2-%d", suffix)
	seedBook(t, p, a.ID, "Cien años de soledad", isbn1)
	seedBook(t, p, a.ID, "El otoño del patriarca", isbn2)

	dup := &models.Book{Title: "Otro", AuthorID: a.ID, ISBN: isbn1}
	if err := p.CreateBook(ctx, dup); !errors.Is(err, ErrDuplicateISBN) {
		t.Fatalf("duplicate isbn: %v", err)
	}
	orphan := &models.Book{Title: "Huérfano", AuthorID: -1, ISBN: fmt.Sprintf("it-isbn-3-%d", suffix)}
	if err := p.CreateBook(ctx, orphan); !errors.Is(err, ErrUnknownAuthor) {
		t.Fatalf("unknown author: %v", err)
	}

	books, err := p.BooksByAuthor(ctx, a.ID)
	if err != nil || len(books) != 2 {
		t.Fatalf("books by author: %v len=%d", err, len(books))
	}

	if err := p.DeleteAuthor(ctx, a.ID); err != nil {
		t.Fatalf("delete author: %v", err)
	}
	books, err = p.BooksByAuthor(ctx, a.ID)
	if err != nil || len(books) != 0 {
		t.Fatalf("cascade: %v len=%d", err, len(books))
	}
}

func TestPostgres_UserLookup(t *testing.T) {
	p := openTestPostgres(t)
	ctx := context.Background()
	suffix := time.Now().UnixNano()

	u := &models.User{
		Username:     fmt.Sprintf("alice-%d", suffix),
		Email:        fmt.Sprintf("alice-%d@example.com", suffix),
		PasswordHash: "x",
		Role:         models.RoleAdmin,
		IsActive:     true,
	}
	if err := p.CreateUser(ctx, u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	got, err := p.UserByIdentifier(ctx, u.Email)
	if err != nil || got == nil || got.ID != u.ID {
		t.Fatalf("lookup by email: %v %+v", err, got)
	}
	got, err = p.UserByIdentifier(ctx, u.Username)
	if err != nil || got == nil || got.ID != u.ID {
		t.Fatalf("lookup by username: %v %+v", err, got)
	}
}
