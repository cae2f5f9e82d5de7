package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"BookShelf/internal/catalog"
	"BookShelf/internal/storage"
	"BookShelf/pkg/kit"
)

type response struct {
	Status string `json:"status"`
	ISBN   string `json:"isbn,omitempty"`
	Books  *int   `json:"books,omitempty"`
}

func (a *App) addCmd() *cobra.Command {
	var (
		title, author, isbn string
		year                int
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a book",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a.reportLoad(false)

			b, err := catalog.NewBook(title, author, year, isbn)
			if err != nil {
				return a.fail(err, isbn)
			}

			// A save failure is an error here too: nothing outlives this process.
			if err := a.svc.Add(cmd.Context(), b); err != nil {
				return a.fail(err, isbn)
			}
			return a.ok("added", isbn, fmt.Sprintf("Added %s", b))
		},
	}

	f := cmd.Flags()
	f.StringVar(&title, "title", "", "book title")
	f.StringVar(&author, "author", "", "book author")
	f.IntVar(&year, "year", 0, "publication year")
	f.StringVar(&isbn, "isbn", "", "ISBN, unique within the catalog")
	for _, name := range []string{"title", "author", "year", "isbn"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func (a *App) removeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove ISBN",
		Short: "Remove the book with this ISBN",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a.reportLoad(false)

			isbn := args[0]
			b, err := a.svc.Remove(cmd.Context(), isbn)
			if err != nil {
				return a.fail(err, isbn)
			}
			return a.ok("removed", isbn, fmt.Sprintf("Removed %s", b))
		},
	}
}

func (a *App) findCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "find TITLE",
		Short: "List books whose title contains TITLE, ignoring case",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			a.reportLoad(false)

			found := a.svc.FindByTitle(args[0])
			if a.flags.json {
				return a.writeBooks(found)
			}
			if len(found) == 0 {
				fmt.Fprintln(a.out, "No books match that title.")
				return nil
			}
			printBooks(a.out, found)
			return nil
		},
	}
}

func (a *App) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all books in insertion order",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			a.reportLoad(false)

			books, ok := a.svc.List()
			if a.flags.json {
				return a.writeBooks(books)
			}
			if !ok {
				fmt.Fprintln(a.out, "The library is empty.")
				return nil
			}
			printBooks(a.out, books)
			return nil
		},
	}
}

func (a *App) saveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "save",
		Short: "Rewrite the catalog file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a.reportLoad(false)

			if err := a.svc.Save(cmd.Context()); err != nil {
				return a.fail(err, "")
			}
			n := a.svc.Store.Len()
			if a.flags.json {
				return kit.WriteJSON(a.out, response{Status: "saved", Books: &n})
			}
			fmt.Fprintf(a.out, "Saved %d books to %s\n", n, a.cfg.DataFile)
			return nil
		},
	}
}

// writeBooks prints books in the same shape as the catalog file.
func (a *App) writeBooks(books []catalog.Book) error {
	data, err := storage.Encode(books)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.out, string(data))
	return err
}

func (a *App) ok(status, isbn, text string) error {
	if a.flags.json {
		return kit.WriteJSON(a.out, response{Status: status, ISBN: isbn})
	}
	fmt.Fprintln(a.out, text)
	return nil
}

// fail reports err and returns it so the process exits non-zero.
func (a *App) fail(err error, isbn string) error {
	if a.flags.json {
		var details any
		if isbn != "" {
			details = map[string]any{"isbn": isbn}
		}
		_ = kit.WriteError(a.out, err.Error(), details)
	}
	return err
}
