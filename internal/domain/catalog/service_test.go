package catalog_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/janhq/library-api/internal/domain/catalog"
	"github.com/janhq/library-api/internal/domain/media"
	"github.com/janhq/library-api/internal/utils/platformerrors"
)

type mockProvider struct {
	calls      int
	SearchFunc func(ctx context.Context, t media.Type, query string, limit int) ([]catalog.Result, error)
}

func (m *mockProvider) Name() string { return "mock" }

func (m *mockProvider) Search(ctx context.Context, t media.Type, query string, limit int) ([]catalog.Result, error) {
	m.calls++
	return m.SearchFunc(ctx, t, query, limit)
}

func books(n int) []catalog.Result {
	out := make([]catalog.Result, n)
	for i := range out {
		out[i] = catalog.Result{Source: "mock", Type: media.TypeBook, Title: "Dune"}
	}
	return out
}

func TestSearchCachesWithinTTL(t *testing.T) {
	clock := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	provider := &mockProvider{SearchFunc: func(_ context.Context, _ media.Type, query string, limit int) ([]catalog.Result, error) {
		assert.Equal(t, "dune", query)
		assert.Equal(t, catalog.DefaultLimit, limit)
		return books(2), nil
	}}
	svc, err := catalog.NewService(map[media.Type]catalog.Provider{media.TypeBook: provider}, 8, time.Minute, zerolog.Nop())
	require.NoError(t, err)
	svc.WithClock(func() time.Time { return clock })

	first, err := svc.Search(context.Background(), media.TypeBook, " dune ", 0)
	require.NoError(t, err)
	assert.Len(t, first, 2)

	_, err = svc.Search(context.Background(), media.TypeBook, "dune", 0)
	require.NoError(t, err)
	assert.Equal(t, 1, provider.calls)

	clock = clock.Add(2 * time.Minute)
	_, err = svc.Search(context.Background(), media.TypeBook, "dune", 0)
	require.NoError(t, err)
	assert.Equal(t, 2, provider.calls, "expired entries are fetched again")
}

func TestSearchClampsLimit(t *testing.T) {
	provider := &mockProvider{SearchFunc: func(_ context.Context, _ media.Type, _ string, limit int) ([]catalog.Result, error) {
		assert.Equal(t, catalog.MaxLimit, limit)
		return books(catalog.MaxLimit + 5), nil
	}}
	svc, err := catalog.NewService(map[media.Type]catalog.Provider{media.TypeBook: provider}, 8, time.Minute, zerolog.Nop())
	require.NoError(t, err)

	results, err := svc.Search(context.Background(), media.TypeBook, "dune", 500)
	require.NoError(t, err)
	assert.Len(t, results, catalog.MaxLimit)
}

func TestSearchValidation(t *testing.T) {
	svc, err := catalog.NewService(nil, 8, time.Minute, zerolog.Nop())
	require.NoError(t, err)

	_, err = svc.Search(context.Background(), media.TypeBook, "  ", 5)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation))

	_, err = svc.Search(context.Background(), media.Type("vinyl"), "dune", 5)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation))

	_, err = svc.Search(context.Background(), media.TypeMusic, "kind of blue", 5)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeExternal))
}

func TestSearchProviderFailureIsExternal(t *testing.T) {
	provider := &mockProvider{SearchFunc: func(context.Context, media.Type, string, int) ([]catalog.Result, error) {
		return nil, errors.New("503 service unavailable")
	}}
	svc, err := catalog.NewService(map[media.Type]catalog.Provider{media.TypeMovie: provider}, 8, time.Minute, zerolog.Nop())
	require.NoError(t, err)

	_, err = svc.Search(context.Background(), media.TypeMovie, "alien", 5)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeExternal))

	_, err = svc.Search(context.Background(), media.TypeMovie, "alien", 5)
	require.Error(t, err)
	assert.Equal(t, 2, provider.calls, "failures are not cached")
}
