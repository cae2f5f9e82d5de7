package catalog

import (
	"strings"
	"sync"

	"golang.org/x/text/cases"
)

// MemStore keeps books in insertion order. Lookups are linear scans.
type MemStore struct {
	mu    sync.RWMutex
	books []Book
}

func NewMemStore() *MemStore {
	return &MemStore{books: make([]Book, 0, 16)}
}

func (s *MemStore) Add(b Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(b.isbn) >= 0 {
		return ErrDuplicateISBN
	}
	s.books = append(s.books, b)
	return nil
}

// Remove drops the first record whose isbn matches exactly.
func (s *MemStore) Remove(isbn string) (Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(isbn)
	if i < 0 {
		return Book{}, ErrNotFound
	}
	b := s.books[i]
	s.books = append(s.books[:i], s.books[i+1:]...)
	return b, nil
}

func (s *MemStore) FindByTitle(fragment string) []Book {
	fold := cases.Fold()
	needle := fold.String(fragment)

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Book, 0)
	for _, b := range s.books {
		if strings.Contains(fold.String(b.title), needle) {
			out = append(out, b)
		}
	}
	return out
}

func (s *MemStore) List() ([]Book, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Book, len(s.books))
	copy(out, s.books)
	return out, len(out) > 0
}

func (s *MemStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.books)
}

// Replace swaps in books verbatim, duplicates included.
func (s *MemStore) Replace(books []Book) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.books = make([]Book, len(books))
	copy(s.books, books)
}

func (s *MemStore) indexOf(isbn string) int {
	for i, b := range s.books {
		if b.isbn == isbn {
			return i
		}
	}
	return -1
}
