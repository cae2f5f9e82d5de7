package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"BookShelf/pkg/kit"
)

// Errors a Persister reports. None of them is fatal to a session.
var (
	ErrNoData     = errors.New("no saved catalog")
	ErrMalformed  = errors.New("saved catalog is unreadable")
	ErrSaveFailed = errors.New("catalog not saved")
)

type Persister interface {
	Load(ctx context.Context) ([]Book, error)
	Save(ctx context.Context, books []Book) error
}

const (
	opLoad   = "load"
	opAdd    = "add"
	opRemove = "remove"
	opFind   = "find"
	opList   = "list"
	opSave   = "save"
)

// Service saves the full catalog after every successful mutation. Reads never
// touch storage.
type Service struct {
	Store   Store
	Persist Persister
	Log     *zap.Logger
	Metrics *kit.Metrics
}

func NewService(store Store, p Persister, log *zap.Logger, m *kit.Metrics) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{Store: store, Persist: p, Log: log, Metrics: m}
}

// Load replaces the in-memory catalog with the saved one. On ErrNoData or
// ErrMalformed the catalog is left empty and the error is returned as a
// warning.
func (s *Service) Load(ctx context.Context) error {
	books, err := s.Persist.Load(ctx)
	if err != nil {
		s.Store.Replace(nil)
		s.Metrics.SetBooks(0)

		switch {
		case errors.Is(err, ErrNoData):
			s.Metrics.Observe(opLoad, kit.OutcomeNoData)
		default:
			s.Metrics.Observe(opLoad, kit.OutcomeMalformed)
			s.Log.Warn("starting with an empty catalog", zap.Error(err))
		}
		return err
	}

	s.Store.Replace(books)
	s.Metrics.SetBooks(len(books))
	s.Metrics.Observe(opLoad, kit.OutcomeOK)
	return nil
}

func (s *Service) Add(ctx context.Context, b Book) error {
	if err := s.Store.Add(b); err != nil {
		if errors.Is(err, ErrDuplicateISBN) {
			s.Metrics.Observe(opAdd, kit.OutcomeDuplicate)
		}
		return err
	}

	s.Log.Info("book added", zap.String("isbn", b.ISBN()), zap.String("title", b.Title()))
	s.Metrics.SetBooks(s.Store.Len())

	if err := s.save(ctx); err != nil {
		s.Metrics.Observe(opAdd, kit.OutcomeSaveFailed)
		return err
	}
	s.Metrics.Observe(opAdd, kit.OutcomeOK)
	return nil
}

func (s *Service) Remove(ctx context.Context, isbn string) (Book, error) {
	b, err := s.Store.Remove(isbn)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.Metrics.Observe(opRemove, kit.OutcomeNotFound)
		}
		return Book{}, err
	}

	s.Log.Info("book removed", zap.String("isbn", isbn))
	s.Metrics.SetBooks(s.Store.Len())

	if err := s.save(ctx); err != nil {
		s.Metrics.Observe(opRemove, kit.OutcomeSaveFailed)
		return b, err
	}
	s.Metrics.Observe(opRemove, kit.OutcomeOK)
	return b, nil
}

func (s *Service) FindByTitle(fragment string) []Book {
	out := s.Store.FindByTitle(fragment)
	if len(out) == 0 {
		s.Metrics.Observe(opFind, kit.OutcomeEmpty)
	} else {
		s.Metrics.Observe(opFind, kit.OutcomeOK)
	}
	return out
}

func (s *Service) List() ([]Book, bool) {
	out, ok := s.Store.List()
	if !ok {
		s.Metrics.Observe(opList, kit.OutcomeEmpty)
	} else {
		s.Metrics.Observe(opList, kit.OutcomeOK)
	}
	return out, ok
}

func (s *Service) Save(ctx context.Context) error {
	err := s.save(ctx)
	if err != nil {
		s.Metrics.Observe(opSave, kit.OutcomeSaveFailed)
		return err
	}
	s.Metrics.Observe(opSave, kit.OutcomeOK)
	return nil
}

func (s *Service) save(ctx context.Context) error {
	books, _ := s.Store.List()

	start := time.Now()
	err := s.Persist.Save(ctx, books)
	s.Metrics.ObserveSave(start)

	if err == nil {
		return nil
	}
	s.Log.Warn("catalog not saved, changes kept in memory", zap.Error(err))
	if errors.Is(err, ErrSaveFailed) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrSaveFailed, err)
}
