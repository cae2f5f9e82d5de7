package catalog

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

var ErrInvalidBook = errors.New("invalid book")

// Book is a catalog record. Fields are fixed at construction; use NewBook.
type Book struct {
	title  string
	author string
	year   int
	isbn   string
}

func NewBook(title, author string, year int, isbn string) (Book, error) {
	switch {
	case blank(title):
		return Book{}, fmt.Errorf("%w: title required", ErrInvalidBook)
	case blank(author):
		return Book{}, fmt.Errorf("%w: author required", ErrInvalidBook)
	case blank(isbn):
		return Book{}, fmt.Errorf("%w: isbn required", ErrInvalidBook)
	case !utf8.ValidString(title), !utf8.ValidString(author), !utf8.ValidString(isbn):
		return Book{}, fmt.Errorf("%w: text must be valid UTF-8", ErrInvalidBook)
	}
	return Book{title: title, author: author, year: year, isbn: isbn}, nil
}

// RestoreBook rebuilds a saved record as is. Saved catalogs are not
// re-validated, so a record written by an older or hand-edited file still loads.
func RestoreBook(title, author string, year int, isbn string) Book {
	return Book{title: title, author: author, year: year, isbn: isbn}
}

func (b Book) Title() string  { return b.title }
func (b Book) Author() string { return b.author }
func (b Book) Year() int      { return b.year }
func (b Book) ISBN() string   { return b.isbn }

func (b Book) String() string {
	return fmt.Sprintf("Title: %s, Author: %s, Year: %d, ISBN: %s", b.title, b.author, b.year, b.isbn)
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
