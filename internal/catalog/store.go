package catalog

import "errors"

var (
	ErrDuplicateISBN = errors.New("book with this isbn already exists")
	ErrNotFound      = errors.New("book not found")
)

type Store interface {
	Add(b Book) error
	Remove(isbn string) (Book, error)
	FindByTitle(fragment string) []Book
	List() ([]Book, bool)
	Len() int
	Replace(books []Book)
}
