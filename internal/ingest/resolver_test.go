package ingest

import (
	"context"
	"errors"
	"testing"

	"github.com/fortuna/propline/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStrategy struct {
	name    string
	records []string
	err     error
	calls   int
}

func (f *fakeStrategy) Name() string { return f.name }

func (f *fakeStrategy) Fetch(ctx context.Context, query int) ([]string, error) {
	f.calls++
	return f.records, f.err
}

func TestResolverFirstSuccessWins(t *testing.T) {
	api := &fakeStrategy{name: "api", err: errors.New("connection refused")}
	html := &fakeStrategy{name: "html", records: []string{"a", "b"}}
	mock := &fakeStrategy{name: "mock", records: []string{"m"}}

	r := NewResolver[int, string](logger.NewNop(), api, html, mock)
	res, err := r.Resolve(context.Background(), 0)
	require.NoError(t, err)

	assert.Equal(t, "html", res.Strategy)
	assert.Equal(t, []string{"a", "b"}, res.Records)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, "api", res.Failures[0].Strategy)
	assert.Equal(t, 1, api.calls)
	assert.Equal(t, 1, html.calls)
	assert.Equal(t, 0, mock.calls)
}

func TestResolverEmptyFallsThrough(t *testing.T) {
	api := &fakeStrategy{name: "api", records: nil}
	mock := &fakeStrategy{name: "mock", records: []string{"m"}}

	r := NewResolver[int, string](logger.NewNop(), api, mock)
	res, err := r.Resolve(context.Background(), 0)
	require.NoError(t, err)

	assert.Equal(t, "mock", res.Strategy)
	require.Len(t, res.Failures, 1)
	assert.ErrorIs(t, res.Failures[0].Err, ErrNoRecords)
}

func TestResolverAcceptEmpty(t *testing.T) {
	api := &fakeStrategy{name: "api", records: nil}
	mock := &fakeStrategy{name: "mock", records: []string{"m"}}

	r := NewResolver[int, string](logger.NewNop(), api, mock).AcceptEmpty()
	res, err := r.Resolve(context.Background(), 0)
	require.NoError(t, err)

	assert.Equal(t, "api", res.Strategy)
	assert.NotNil(t, res.Records)
	assert.Empty(t, res.Records)
	assert.Equal(t, 0, mock.calls)
}

func TestResolverAllFail(t *testing.T) {
	a := &fakeStrategy{name: "a", err: errors.New("timeout")}
	b := &fakeStrategy{name: "b", err: errors.New("bad gateway")}

	r := NewResolver[int, string](logger.NewNop(), a, b)
	_, err := r.Resolve(context.Background(), 0)
	require.ErrorIs(t, err, ErrAllStrategiesFailed)
	assert.Contains(t, err.Error(), "a: timeout")
	assert.Contains(t, err.Error(), "b: bad gateway")
	assert.Equal(t, []string{"a", "b"}, r.Strategies())
}

func TestResolverCancelled(t *testing.T) {
	a := &fakeStrategy{name: "a", records: []string{"x"}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewResolver[int, string](logger.NewNop(), a)
	_, err := r.Resolve(ctx, 0)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, a.calls)
}
