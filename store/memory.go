package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"biblioteca-backend/models"
)

// Memory is an in-process Store with the same constraint semantics as
// Postgres (isbn uniqueness, author reference, cascade on author delete).
// It backs the handler and repository tests.
type Memory struct {
	mu      sync.Mutex
	nextID  int64
	authors map[int64]models.Author
	books   map[int64]models.Book
	users   map[int64]models.User
}

func NewMemory() *Memory {
	return &Memory{
		nextID:  1,
		authors: map[int64]models.Author{},
		books:   map[int64]models.Book{},
		users:   map[int64]models.User{},
	}
}

func (m *Memory) allocID() int64 {
	id := m.nextID
	m.nextID++
	return id
}

func (m *Memory) ListAuthors(ctx context.Context) ([]models.Author, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	authors := make([]models.Author, 0, len(m.authors))
	for _, a := range m.authors {
		authors = append(authors, a)
	}
	sort.Slice(authors, func(i, j int) bool { return authors[i].ID < authors[j].ID })
	return authors, nil
}

func (m *Memory) AuthorByID(ctx context.Context, id int64) (*models.Author, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.authors[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &a, nil
}

func (m *Memory) CreateAuthor(ctx context.Context, a *models.Author) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a.ID = m.allocID()
	m.authors[a.ID] = *a
	return nil
}

func (m *Memory) UpdateAuthor(ctx context.Context, a *models.Author) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.authors[a.ID]; !ok {
		return ErrNotFound
	}
	m.authors[a.ID] = *a
	return nil
}

func (m *Memory) DeleteAuthor(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.authors[id]; !ok {
		return ErrNotFound
	}
	delete(m.authors, id)
	for bid, b := range m.books {
		if b.AuthorID == id {
			delete(m.books, bid)
		}
	}
	return nil
}

func (m *Memory) ListBooks(ctx context.Context) ([]models.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	books := make([]models.Book, 0, len(m.books))
	for _, b := range m.books {
		books = append(books, b)
	}
	sort.Slice(books, func(i, j int) bool { return books[i].ID < books[j].ID })
	return books, nil
}

func (m *Memory) BooksByAuthor(ctx context.Context, authorID int64) ([]models.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var books []models.Book
	for _, b := range m.books {
		if b.AuthorID == authorID {
			books = append(books, b)
		}
	}
	sort.Slice(books, func(i, j int) bool { return books[i].ID < books[j].ID })
	return books, nil
}

func (m *Memory) BookByID(ctx context.Context, id int64) (*models.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.books[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &b, nil
}

func (m *Memory) checkBookConstraints(b *models.Book) error {
	if _, ok := m.authors[b.AuthorID]; !ok {
		return ErrUnknownAuthor
	}
	for _, other := range m.books {
		if other.ID != b.ID && other.ISBN == b.ISBN {
			return ErrDuplicateISBN
		}
	}
	return nil
}

func (m *Memory) CreateBook(ctx context.Context, b *models.Book) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkBookConstraints(b); err != nil {
		return err
	}
	b.ID = m.allocID()
	m.books[b.ID] = *b
	return nil
}

func (m *Memory) UpdateBook(ctx context.Context, b *models.Book) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.books[b.ID]; !ok {
		return ErrNotFound
	}
	if err := m.checkBookConstraints(b); err != nil {
		return err
	}
	m.books[b.ID] = *b
	return nil
}

func (m *Memory) DeleteBook(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.books[id]; !ok {
		return ErrNotFound
	}
	delete(m.books, id)
	return nil
}

func (m *Memory) UserByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]int64, 0, len(m.users))
	for id := range m.users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		u := m.users[id]
		if strings.EqualFold(u.Email, identifier) || strings.EqualFold(u.Username, identifier) {
			return &u, nil
		}
	}
	return nil, nil
}

func (m *Memory) CreateUser(ctx context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	u.ID = m.allocID()
	m.users[u.ID] = *u
	return nil
}
