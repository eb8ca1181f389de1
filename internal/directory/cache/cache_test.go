package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentiric/sentiric-contact-resolver/internal/directory"
	"github.com/sentiric/sentiric-contact-resolver/internal/directory/memory"
)

type fakeStore struct {
	data    map[string]string
	getErr  error
	setErr  error
	lastTTL time.Duration
}

func newFakeStore() *fakeStore { return &fakeStore{data: make(map[string]string)} }

func (f *fakeStore) Get(_ context.Context, key string) *redis.StringCmd {
	if f.getErr != nil {
		return redis.NewStringResult("", f.getErr)
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeStore) Set(_ context.Context, key string, value any, ttl time.Duration) *redis.StatusCmd {
	if f.setErr != nil {
		return redis.NewStatusResult("", f.setErr)
	}
	f.data[key] = string(value.([]byte))
	f.lastTTL = ttl
	return redis.NewStatusResult("OK", nil)
}

type countingClient struct {
	next  directory.Client
	calls int
}

func (c *countingClient) Query(ctx context.Context, f directory.Filter) ([]*directory.Record, error) {
	c.calls++
	return c.next.Query(ctx, f)
}

func newBackend() *countingClient {
	mem := memory.New()
	mem.Put(&directory.Record{
		ID:    "u-1",
		Name:  []directory.Entry{{Value: "Ayşe"}},
		Email: []directory.Entry{{Value: "ayse@example.com"}},
	})
	return &countingClient{next: mem}
}

func TestKey(t *testing.T) {
	assert.Equal(t, "contact-resolver:directory:email:equals:a@b.com", Key(directory.ByIdentity("a@b.com")))
}

func TestReadThrough(t *testing.T) {
	backend := newBackend()
	store := newFakeStore()
	c := New(backend, store, time.Minute, zerolog.Nop())
	ctx := context.Background()

	first, err := c.Query(ctx, directory.ByIdentity("ayse@example.com"))
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, time.Minute, store.lastTTL)

	second, err := c.Query(ctx, directory.ByIdentity("ayse@example.com"))
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, backend.calls)
}

func TestEmptyResultsAreNotCached(t *testing.T) {
	backend := newBackend()
	store := newFakeStore()
	c := New(backend, store, time.Minute, zerolog.Nop())

	for i := 0; i < 2; i++ {
		got, err := c.Query(context.Background(), directory.ByIdentity("nobody@example.com"))
		require.NoError(t, err)
		assert.Empty(t, got)
	}
	assert.Equal(t, 2, backend.calls)
	assert.Empty(t, store.data)
}

func TestRedisFailuresAreBypassed(t *testing.T) {
	backend := newBackend()
	store := newFakeStore()
	store.getErr = errors.New("connection refused")
	store.setErr = errors.New("connection refused")
	c := New(backend, store, time.Minute, zerolog.Nop())

	got, err := c.Query(context.Background(), directory.ByID("u-1"))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "u-1", got[0].ID)
}

func TestCorruptEntryFallsThrough(t *testing.T) {
	backend := newBackend()
	store := newFakeStore()
	store.data[Key(directory.ByID("u-1"))] = "{not json"
	c := New(backend, store, time.Minute, zerolog.Nop())

	got, err := c.Query(context.Background(), directory.ByID("u-1"))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 1, backend.calls)
}
