package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"BookShelf/internal/catalog"
)

const fileMode = 0o644

// record is the on-disk shape of a book. Field names are part of the file
// format and must not change.
type record struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	Year   int    `json:"year"`
	ISBN   string `json:"isbn"`
}

// JSONFile persists the whole catalog as one JSON array.
type JSONFile struct {
	path string
	log  *zap.Logger
}

func NewJSONFile(path string, log *zap.Logger) *JSONFile {
	if log == nil {
		log = zap.NewNop()
	}
	return &JSONFile{path: path, log: log}
}

func (f *JSONFile) Path() string { return f.path }

func (f *JSONFile) Load(ctx context.Context) ([]catalog.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		f.log.Info("no saved catalog", zap.String("path", f.path))
		return nil, catalog.ErrNoData
	}
	if err != nil {
		f.log.Warn("read catalog failed", zap.String("path", f.path), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", catalog.ErrMalformed, err)
	}

	books, err := Decode(data)
	if err != nil {
		f.log.Warn("decode catalog failed", zap.String("path", f.path), zap.Error(err))
		return nil, err
	}

	f.log.Info("catalog loaded", zap.String("path", f.path), zap.Int("books", len(books)))
	return books, nil
}

// Save replaces the file through a temp file and rename, so readers see either
// the previous document or the new one.
func (f *JSONFile) Save(ctx context.Context, books []catalog.Book) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", catalog.ErrSaveFailed, err)
	}

	data, err := Encode(books)
	if err != nil {
		return fmt.Errorf("%w: %w", catalog.ErrSaveFailed, err)
	}

	if err := writeFile(f.path, data); err != nil {
		f.log.Warn("save catalog failed", zap.String("path", f.path), zap.Error(err))
		return fmt.Errorf("%w: %w", catalog.ErrSaveFailed, err)
	}

	f.log.Debug("catalog saved", zap.String("path", f.path), zap.Int("books", len(books)))
	return nil
}

func Encode(books []catalog.Book) ([]byte, error) {
	out := make([]record, 0, len(books))
	for _, b := range books {
		out = append(out, record{
			Title:  b.Title(),
			Author: b.Author(),
			Year:   b.Year(),
			ISBN:   b.ISBN(),
		})
	}
	return json.MarshalIndent(out, "", "  ")
}

// Decode accepts a JSON array of books. A null document is an empty catalog.
// Records are kept as stored, blank fields included.
func Decode(data []byte) ([]catalog.Book, error) {
	var in []record
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("%w: %w", catalog.ErrMalformed, err)
	}

	books := make([]catalog.Book, 0, len(in))
	for _, r := range in {
		books = append(books, catalog.RestoreBook(r.Title, r.Author, r.Year, r.ISBN))
	}
	return books, nil
}

// writeFile replaces the file at path. A symlinked path keeps its link and the
// target is replaced instead.
func writeFile(path string, data []byte) error {
	if target, err := filepath.EvalSymlinks(path); err == nil {
		path = target
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, fileMode); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
