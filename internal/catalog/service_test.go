package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"BookShelf/pkg/kit"
)

type fakePersister struct {
	loadBooks []Book
	loadErr   error
	saveErr   error
	saves     [][]Book
}

func (p *fakePersister) Load(context.Context) ([]Book, error) {
	return p.loadBooks, p.loadErr
}

func (p *fakePersister) Save(_ context.Context, books []Book) error {
	if p.saveErr != nil {
		return p.saveErr
	}
	p.saves = append(p.saves, books)
	return nil
}

func (p *fakePersister) last(t *testing.T) []Book {
	t.Helper()
	require.NotEmpty(t, p.saves, "expected at least one save")
	return p.saves[len(p.saves)-1]
}

func newTestService(t *testing.T, p *fakePersister) (*Service, *kit.Metrics, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	m := kit.NewMetrics(prometheus.NewRegistry())
	return NewService(NewMemStore(), p, zap.New(core), m), m, logs
}

func counter(m *kit.Metrics, op, outcome string) float64 {
	return testutil.ToFloat64(m.Operations.WithLabelValues(op, outcome))
}

func TestService_AddSavesFullCatalog(t *testing.T) {
	p := &fakePersister{}
	svc, m, _ := newTestService(t, p)
	ctx := context.Background()

	require.NoError(t, svc.Add(ctx, mustBook(t, "Dune", "Herbert", 1965, "111")))
	require.NoError(t, svc.Add(ctx, mustBook(t, "Emma", "Austen", 1815, "222")))

	require.Len(t, p.saves, 2)
	saved := p.last(t)
	require.Len(t, saved, 2)
	assert.Equal(t, "111", saved[0].ISBN())
	assert.Equal(t, "222", saved[1].ISBN())

	assert.Equal(t, 2.0, counter(m, opAdd, kit.OutcomeOK))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Books))
}

func TestService_AddDuplicateDoesNotSave(t *testing.T) {
	p := &fakePersister{}
	svc, m, _ := newTestService(t, p)
	ctx := context.Background()

	require.NoError(t, svc.Add(ctx, mustBook(t, "Dune", "Herbert", 1965, "X")))
	err := svc.Add(ctx, mustBook(t, "Dune Messiah", "Herbert", 1969, "X"))

	assert.ErrorIs(t, err, ErrDuplicateISBN)
	assert.Len(t, p.saves, 1)
	assert.Equal(t, 1, svc.Store.Len())
	assert.Equal(t, 1.0, counter(m, opAdd, kit.OutcomeDuplicate))
}

func TestService_AddKeepsBookWhenSaveFails(t *testing.T) {
	p := &fakePersister{saveErr: errors.New("disk full")}
	svc, m, logs := newTestService(t, p)

	err := svc.Add(context.Background(), mustBook(t, "Dune", "Herbert", 1965, "111"))

	require.ErrorIs(t, err, ErrSaveFailed)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, 1, svc.Store.Len())
	assert.Equal(t, 1.0, counter(m, opAdd, kit.OutcomeSaveFailed))
	assert.Equal(t, 1, logs.FilterMessage("catalog not saved, changes kept in memory").Len())
}

func TestService_SaveErrorIsNotWrappedTwice(t *testing.T) {
	wrapped := errors.Join(ErrSaveFailed, errors.New("read-only file system"))
	p := &fakePersister{saveErr: wrapped}
	svc, _, _ := newTestService(t, p)

	err := svc.Save(context.Background())
	assert.Same(t, wrapped, err)
}

func TestService_Remove(t *testing.T) {
	p := &fakePersister{}
	svc, m, _ := newTestService(t, p)
	ctx := context.Background()

	require.NoError(t, svc.Add(ctx, mustBook(t, "Dune", "Herbert", 1965, "111")))

	b, err := svc.Remove(ctx, "111")
	require.NoError(t, err)
	assert.Equal(t, "Dune", b.Title())
	assert.Empty(t, p.last(t))
	assert.Equal(t, 1.0, counter(m, opRemove, kit.OutcomeOK))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Books))
}

func TestService_RemoveMissingDoesNotSave(t *testing.T) {
	p := &fakePersister{}
	svc, m, _ := newTestService(t, p)

	_, err := svc.Remove(context.Background(), "nope")

	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, p.saves)
	assert.Equal(t, 1.0, counter(m, opRemove, kit.OutcomeNotFound))
}

func TestService_RemoveSaveFailure(t *testing.T) {
	p := &fakePersister{}
	svc, m, _ := newTestService(t, p)
	ctx := context.Background()
	require.NoError(t, svc.Add(ctx, mustBook(t, "Dune", "Herbert", 1965, "111")))

	p.saveErr = errors.New("permission denied")
	b, err := svc.Remove(ctx, "111")

	require.ErrorIs(t, err, ErrSaveFailed)
	assert.Equal(t, "111", b.ISBN())
	assert.Equal(t, 0, svc.Store.Len())
	assert.Equal(t, 1.0, counter(m, opRemove, kit.OutcomeSaveFailed))
}

func TestService_ReadsDoNotSave(t *testing.T) {
	p := &fakePersister{loadBooks: []Book{
		mustBook(t, "The Great Gatsby", "Fitzgerald", 1925, "111"),
	}}
	svc, m, _ := newTestService(t, p)
	require.NoError(t, svc.Load(context.Background()))

	assert.Len(t, svc.FindByTitle("great"), 1)
	assert.Empty(t, svc.FindByTitle("xyz"))
	books, ok := svc.List()
	assert.True(t, ok)
	assert.Len(t, books, 1)

	assert.Empty(t, p.saves)
	assert.Equal(t, 1.0, counter(m, opFind, kit.OutcomeOK))
	assert.Equal(t, 1.0, counter(m, opFind, kit.OutcomeEmpty))
	assert.Equal(t, 1.0, counter(m, opList, kit.OutcomeOK))
}

func TestService_Load(t *testing.T) {
	t.Run("replaces catalog", func(t *testing.T) {
		p := &fakePersister{loadBooks: []Book{
			mustBook(t, "Dune", "Herbert", 1965, "111"),
			mustBook(t, "Emma", "Austen", 1815, "222"),
		}}
		svc, m, _ := newTestService(t, p)
		require.NoError(t, svc.Store.Add(mustBook(t, "Stale", "X", 1, "999")))

		require.NoError(t, svc.Load(context.Background()))

		got, _ := svc.List()
		require.Len(t, got, 2)
		assert.Equal(t, "111", got[0].ISBN())
		assert.Equal(t, 1.0, counter(m, opLoad, kit.OutcomeOK))
		assert.Equal(t, 2.0, testutil.ToFloat64(m.Books))
	})

	t.Run("no data", func(t *testing.T) {
		p := &fakePersister{loadErr: ErrNoData}
		svc, m, logs := newTestService(t, p)

		err := svc.Load(context.Background())

		assert.ErrorIs(t, err, ErrNoData)
		_, ok := svc.List()
		assert.False(t, ok)
		assert.Equal(t, 1.0, counter(m, opLoad, kit.OutcomeNoData))
		assert.Zero(t, logs.FilterLevelExact(zapcore.WarnLevel).Len())
	})

	t.Run("malformed", func(t *testing.T) {
		p := &fakePersister{loadErr: errors.Join(ErrMalformed, errors.New("unexpected end of JSON input"))}
		svc, m, logs := newTestService(t, p)
		require.NoError(t, svc.Store.Add(mustBook(t, "Stale", "X", 1, "999")))

		err := svc.Load(context.Background())

		assert.ErrorIs(t, err, ErrMalformed)
		assert.Equal(t, 0, svc.Store.Len())
		assert.Equal(t, 1.0, counter(m, opLoad, kit.OutcomeMalformed))
		assert.Equal(t, 1, logs.FilterMessage("starting with an empty catalog").Len())
	})
}

func TestService_WorksWithoutMetrics(t *testing.T) {
	svc := NewService(NewMemStore(), &fakePersister{}, nil, nil)
	ctx := context.Background()

	require.NoError(t, svc.Add(ctx, mustBook(t, "Dune", "Herbert", 1965, "111")))
	_, err := svc.Remove(ctx, "111")
	require.NoError(t, err)
	require.NoError(t, svc.Save(ctx))
}
