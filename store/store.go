package store

import (
	"context"
	"errors"

	"biblioteca-backend/models"
)

// ErrNotFound is returned when an entity id does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicateISBN is returned when a book write would violate isbn uniqueness.
var ErrDuplicateISBN = errors.New("isbn already in use")

// ErrUnknownAuthor is returned when a book references a non-existent author.
var ErrUnknownAuthor = errors.New("author does not exist")

// AuthorStore defines operations on Author entities.
type AuthorStore interface {
	ListAuthors(ctx context.Context) ([]models.Author, error)
	AuthorByID(ctx context.Context, id int64) (*models.Author, error)
	CreateAuthor(ctx context.Context, a *models.Author) error
	UpdateAuthor(ctx context.Context, a *models.Author) error
	// DeleteAuthor removes the author and, by cascade, every book that
	// references it.
	DeleteAuthor(ctx context.Context, id int64) error
}

// BookStore defines operations on Book entities.
type BookStore interface {
	ListBooks(ctx context.Context) ([]models.Book, error)
	BookByID(ctx context.Context, id int64) (*models.Book, error)
	BooksByAuthor(ctx context.Context, authorID int64) ([]models.Book, error)
	CreateBook(ctx context.Context, b *models.Book) error
	UpdateBook(ctx context.Context, b *models.Book) error
	DeleteBook(ctx context.Context, id int64) error
}

// UserStore defines operations on the credential store.
type UserStore interface {
	// UserByIdentifier finds a user whose email or username equals
	// identifier, case-insensitively. Returns (nil, nil) when no user
	// matches; active-flag policy is the caller's concern.
	UserByIdentifier(ctx context.Context, identifier string) (*models.User, error)
	CreateUser(ctx context.Context, u *models.User) error
}

// Store is the full repository surface the API is wired against. Postgres
// implements it for production; Memory implements it for tests.
type Store interface {
	AuthorStore
	BookStore
	UserStore
}
