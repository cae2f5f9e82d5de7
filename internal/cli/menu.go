package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"BookShelf/internal/catalog"
)

const menuText = `
=== My Library ===
1) Add a book
2) Remove a book by ISBN
3) Find books by title
4) List all books
5) Save
6) Exit
Choose an action: `

// Menu is the interactive front end. It reads one answer per line.
type Menu struct {
	svc *catalog.Service
	in  *bufio.Scanner
	out io.Writer
}

// maxLine caps a single answer. Longer lines end the session with
// bufio.ErrTooLong.
const maxLine = 1 << 20

func NewMenu(svc *catalog.Service, in io.Reader, out io.Writer) *Menu {
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 4096), maxLine)
	return &Menu{svc: svc, in: sc, out: out}
}

// Run serves the menu until the user exits or input ends. Either way the
// catalog is saved one last time.
func (m *Menu) Run(ctx context.Context) error {
	for {
		fmt.Fprint(m.out, menuText)

		choice, ok := m.readLine()
		if !ok {
			fmt.Fprintln(m.out)
			return m.exit(ctx)
		}

		var more bool
		switch strings.TrimSpace(choice) {
		case "1":
			more = m.add(ctx)
		case "2":
			more = m.remove(ctx)
		case "3":
			more = m.find()
		case "4":
			m.list()
			more = true
		case "5":
			m.save(ctx)
			more = true
		case "6":
			return m.exit(ctx)
		default:
			fmt.Fprintln(m.out, "Unknown choice, try again.")
			more = true
		}

		if !more {
			fmt.Fprintln(m.out)
			return m.exit(ctx)
		}
	}
}

func (m *Menu) add(ctx context.Context) bool {
	title, ok := m.prompt("Title: ")
	if !ok {
		return false
	}
	author, ok := m.prompt("Author: ")
	if !ok {
		return false
	}

	var year int
	for {
		raw, ok := m.prompt("Year: ")
		if !ok {
			return false
		}
		y, err := strconv.Atoi(strings.TrimSpace(raw))
		if err == nil {
			year = y
			break
		}
		fmt.Fprintln(m.out, "Year must be a whole number.")
	}

	isbn, ok := m.prompt("ISBN: ")
	if !ok {
		return false
	}

	b, err := catalog.NewBook(title, author, year, isbn)
	if err != nil {
		fmt.Fprintln(m.out, "All fields are required. Use plain text.")
		return true
	}

	err = m.svc.Add(ctx, b)
	switch {
	case errors.Is(err, catalog.ErrDuplicateISBN):
		fmt.Fprintln(m.out, "A book with this ISBN already exists.")
	case errors.Is(err, catalog.ErrSaveFailed):
		fmt.Fprintln(m.out, "Book added.")
		m.warnNotSaved(err)
	case err != nil:
		fmt.Fprintf(m.out, "Book not added: %v\n", err)
	default:
		fmt.Fprintln(m.out, "Book added.")
	}
	return true
}

func (m *Menu) remove(ctx context.Context) bool {
	isbn, ok := m.prompt("ISBN to remove: ")
	if !ok {
		return false
	}

	_, err := m.svc.Remove(ctx, isbn)
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		fmt.Fprintln(m.out, "No book with this ISBN.")
	case errors.Is(err, catalog.ErrSaveFailed):
		fmt.Fprintln(m.out, "Book removed.")
		m.warnNotSaved(err)
	case err != nil:
		fmt.Fprintf(m.out, "Book not removed: %v\n", err)
	default:
		fmt.Fprintln(m.out, "Book removed.")
	}
	return true
}

func (m *Menu) find() bool {
	fragment, ok := m.prompt("Title: ")
	if !ok {
		return false
	}

	found := m.svc.FindByTitle(fragment)
	if len(found) == 0 {
		fmt.Fprintln(m.out, "No books match that title.")
		return true
	}
	fmt.Fprintln(m.out, "Found books:")
	printBooks(m.out, found)
	return true
}

func (m *Menu) list() {
	books, ok := m.svc.List()
	if !ok {
		fmt.Fprintln(m.out, "The library is empty.")
		return
	}
	fmt.Fprintln(m.out, "Books:")
	printBooks(m.out, books)
}

func (m *Menu) save(ctx context.Context) {
	if err := m.svc.Save(ctx); err != nil {
		m.warnNotSaved(err)
		return
	}
	fmt.Fprintln(m.out, "Catalog saved.")
}

func (m *Menu) exit(ctx context.Context) error {
	if err := m.svc.Save(ctx); err != nil {
		m.warnNotSaved(err)
	}
	fmt.Fprintln(m.out, "Goodbye!")
	return m.in.Err()
}

func (m *Menu) warnNotSaved(err error) {
	fmt.Fprintf(m.out, "Warning: changes were not saved: %v\n", err)
}

func (m *Menu) prompt(label string) (string, bool) {
	fmt.Fprint(m.out, label)
	return m.readLine()
}

func (m *Menu) readLine() (string, bool) {
	if !m.in.Scan() {
		return "", false
	}
	return strings.TrimRight(m.in.Text(), "\r"), true
}

func printBooks(w io.Writer, books []catalog.Book) {
	for _, b := range books {
		fmt.Fprintln(w, b)
	}
}
