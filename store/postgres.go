package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"biblioteca-backend/models"
)

// Postgres is the production Store backed by a pgx connection pool. Uniqueness
// and the book→author cascade are enforced by the schema, so concurrent writes
// stay consistent without in-process coordination.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("postgres dsn required")
	}
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	p := &Postgres{pool: pool}
	if err := p.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	log.Println("Connected to Postgres")
	return p, nil
}

func (p *Postgres) Close() {
	p.pool.Close()
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'user',
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS authors (
		id BIGSERIAL PRIMARY KEY,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		nationality TEXT NOT NULL,
		birth_date DATE,
		biography TEXT NOT NULL DEFAULT '',
		photo_key TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS books (
		id BIGSERIAL PRIMARY KEY,
		title TEXT NOT NULL,
		author_id BIGINT NOT NULL REFERENCES authors(id) ON DELETE CASCADE,
		publisher TEXT NOT NULL,
		publication_year INT NOT NULL,
		isbn TEXT NOT NULL UNIQUE,
		category TEXT NOT NULL,
		language TEXT NOT NULL,
		copy_count INT NOT NULL DEFAULT 1,
		genre TEXT NOT NULL,
		page_count INT NOT NULL,
		synopsis TEXT NOT NULL DEFAULT '',
		series TEXT NOT NULL DEFAULT '',
		cover_key TEXT NOT NULL DEFAULT '',
		pdf_key TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS books_author_id_idx ON books (author_id)`,
}

func (p *Postgres) migrate(ctx context.Context) error {
	for _, stmt := range migrations {
		if _, err := p.pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// mapConstraintErr converts Postgres constraint violations into the store's
// sentinel errors so the API layer can surface them as validation failures.
func mapConstraintErr(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case "23505":
		if strings.Contains(pgErr.ConstraintName, "isbn") {
			return ErrDuplicateISBN
		}
	case "23503":
		return ErrUnknownAuthor
	}
	return err
}

func birthDateParam(s string) (any, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func scanAuthor(row pgx.Row) (*models.Author, error) {
	var a models.Author
	var birth *time.Time
	err := row.Scan(&a.ID, &a.FirstName, &a.LastName, &a.Nationality, &birth, &a.Biography, &a.PhotoKey)
	if err != nil {
		return nil, err
	}
	if birth != nil {
		a.BirthDate = birth.Format("2006-01-02")
	}
	return &a, nil
}

const authorColumns = `id, first_name, last_name, nationality, birth_date, biography, photo_key`

func (p *Postgres) ListAuthors(ctx context.Context) ([]models.Author, error) {
	rows, err := p.pool.Query(ctx, `SELECT `+authorColumns+` FROM authors ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var authors []models.Author
	for rows.Next() {
		a, err := scanAuthor(rows)
		if err != nil {
			return nil, err
		}
		authors = append(authors, *a)
	}
	return authors, rows.Err()
}

func (p *Postgres) AuthorByID(ctx context.Context, id int64) (*models.Author, error) {
	a, err := scanAuthor(p.pool.QueryRow(ctx, `SELECT `+authorColumns+` FROM authors WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return a, err
}

func (p *Postgres) CreateAuthor(ctx context.Context, a *models.Author) error {
	birth, err := birthDateParam(a.BirthDate)
	if err != nil {
		return models.FieldError("fecha_nacimiento", "fecha inválida, use YYYY-MM-DD")
	}
	return p.pool.QueryRow(ctx,
		`INSERT INTO authors (first_name, last_name, nationality, birth_date, biography, photo_key)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		a.FirstName, a.LastName, a.Nationality, birth, a.Biography, a.PhotoKey,
	).Scan(&a.ID)
}

func (p *Postgres) UpdateAuthor(ctx context.Context, a *models.Author) error {
	birth, err := birthDateParam(a.BirthDate)
	if err != nil {
		return models.FieldError("fecha_nacimiento", "fecha inválida, use YYYY-MM-DD")
	}
	tag, err := p.pool.Exec(ctx,
		`UPDATE authors SET first_name = $1, last_name = $2, nationality = $3,
		 birth_date = $4, biography = $5, photo_key = $6 WHERE id = $7`,
		a.FirstName, a.LastName, a.Nationality, birth, a.Biography, a.PhotoKey, a.ID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) DeleteAuthor(ctx context.Context, id int64) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM authors WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const bookColumns = `id, title, author_id, publisher, publication_year, isbn, category,
	language, copy_count, genre, page_count, synopsis, series, cover_key, pdf_key`

func scanBook(row pgx.Row) (*models.Book, error) {
	var b models.Book
	err := row.Scan(&b.ID, &b.Title, &b.AuthorID, &b.Publisher, &b.PublicationYear,
		&b.ISBN, &b.Category, &b.Language, &b.CopyCount, &b.Genre, &b.PageCount,
		&b.Synopsis, &b.Series, &b.CoverKey, &b.PDFKey)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (p *Postgres) ListBooks(ctx context.Context) ([]models.Book, error) {
	return p.queryBooks(ctx, `SELECT `+bookColumns+` FROM books ORDER BY id`)
}

func (p *Postgres) BooksByAuthor(ctx context.Context, authorID int64) ([]models.Book, error) {
	return p.queryBooks(ctx, `SELECT `+bookColumns+` FROM books WHERE author_id = $1 ORDER BY id`, authorID)
}

func (p *Postgres) queryBooks(ctx context.Context, sql string, args ...any) ([]models.Book, error) {
	rows, err := p.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var books []models.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, *b)
	}
	return books, rows.Err()
}

func (p *Postgres) BookByID(ctx context.Context, id int64) (*models.Book, error) {
	b, err := scanBook(p.pool.QueryRow(ctx, `SELECT `+bookColumns+` FROM books WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return b, err
}

func (p *Postgres) CreateBook(ctx context.Context, b *models.Book) error {
	err := p.pool.QueryRow(ctx,
		`INSERT INTO books (title, author_id, publisher, publication_year, isbn, category,
		 language, copy_count, genre, page_count, synopsis, series, cover_key, pdf_key)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14) RETURNING id`,
		b.Title, b.AuthorID, b.Publisher, b.PublicationYear, b.ISBN, b.Category,
		b.Language, b.CopyCount, b.Genre, b.PageCount, b.Synopsis, b.Series, b.CoverKey, b.PDFKey,
	).Scan(&b.ID)
	if err != nil {
		return mapConstraintErr(err)
	}
	return nil
}

func (p *Postgres) UpdateBook(ctx context.Context, b *models.Book) error {
	tag, err := p.pool.Exec(ctx,
		`UPDATE books SET title = $1, author_id = $2, publisher = $3, publication_year = $4,
		 isbn = $5, category = $6, language = $7, copy_count = $8, genre = $9,
		 page_count = $10, synopsis = $11, series = $12, cover_key = $13, pdf_key = $14
		 WHERE id = $15`,
		b.Title, b.AuthorID, b.Publisher, b.PublicationYear, b.ISBN, b.Category,
		b.Language, b.CopyCount, b.Genre, b.PageCount, b.Synopsis, b.Series,
		b.CoverKey, b.PDFKey, b.ID,
	)
	if err != nil {
		return mapConstraintErr(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) DeleteBook(ctx context.Context, id int64) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) UserByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	var u models.User
	err := p.pool.QueryRow(ctx,
		`SELECT id, username, email, password_hash, role, is_active, created_at
		 FROM users WHERE lower(email) = lower($1) OR lower(username) = lower($1)
		 ORDER BY id LIMIT 1`,
		identifier,
	).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (p *Postgres) CreateUser(ctx context.Context, u *models.User) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	return p.pool.QueryRow(ctx,
		`INSERT INTO users (username, email, password_hash, role, is_active, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		u.Username, u.Email, u.PasswordHash, u.Role, u.IsActive, u.CreatedAt,
	).Scan(&u.ID)
}
