package redis

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	redislib "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/creditbook/internal/domain"
)

// newMiniredisClient returns a client bound to an in-process server that
// lives as long as the test.
func newMiniredisClient(t *testing.T) (*redislib.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	return redislib.NewClient(&redislib.Options{Addr: mr.Addr()}), mr
}

func records(docs ...string) []json.RawMessage {
	out := make([]json.RawMessage, len(docs))
	for i, d := range docs {
		out[i] = json.RawMessage(d)
	}
	return out
}

func TestCollectionRepository_LoadMissing(t *testing.T) {
	client, _ := newMiniredisClient(t)
	defer client.Close()

	repo := NewCollectionRepository(client, "test:")

	col, err := repo.Load(context.Background(), "clients")
	require.NoError(t, err)
	assert.Empty(t, col.Records)
	assert.Equal(t, int64(0), col.Version)
}

func TestCollectionRepository_SaveAndLoad(t *testing.T) {
	client, mr := newMiniredisClient(t)
	defer client.Close()

	repo := NewCollectionRepository(client, "test:")
	ctx := context.Background()

	v1, err := repo.Save(ctx, "sales", records(`{"id":"s1"}`), 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v1)

	v2, err := repo.Save(ctx, "sales", records(`{"id":"s1"}`, `{"id":"s2"}`), v1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), v2)

	col, err := repo.Load(ctx, "sales")
	require.NoError(t, err)
	assert.Equal(t, int64(2), col.Version)
	require.Len(t, col.Records, 2)
	assert.JSONEq(t, `{"id":"s2"}`, string(col.Records[1]))

	assert.Equal(t, "2", mr.HGet("test:ledger:sales", "version"))
}

func TestCollectionRepository_StaleVersionRejected(t *testing.T) {
	client, _ := newMiniredisClient(t)
	defer client.Close()

	repo := NewCollectionRepository(client, "test:")
	ctx := context.Background()

	_, err := repo.Save(ctx, "payments", records(`{"id":"p1"}`), 0)
	require.NoError(t, err)

	_, err = repo.Save(ctx, "payments", records(`{"id":"other"}`), 0)
	require.ErrorIs(t, err, domain.ErrVersionConflict)

	col, err := repo.Load(ctx, "payments")
	require.NoError(t, err)
	require.Len(t, col.Records, 1)
	assert.JSONEq(t, `{"id":"p1"}`, string(col.Records[0]))
}

func TestCollectionRepository_EmptyRecords(t *testing.T) {
	client, mr := newMiniredisClient(t)
	defer client.Close()

	repo := NewCollectionRepository(client, "")
	ctx := context.Background()

	_, err := repo.Save(ctx, "daily_prices", nil, 0)
	require.NoError(t, err)
	assert.Equal(t, "[]", mr.HGet("ledger:daily_prices", "records"))
}

func TestCollectionRepository_CorruptVersion(t *testing.T) {
	client, mr := newMiniredisClient(t)
	defer client.Close()

	mr.HSet("test:ledger:clients", "records", "[]", "version", "abc")

	_, err := NewCollectionRepository(client, "test:").Load(context.Background(), "clients")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid version")
}

func TestCollectionRepository_ConcurrentSavesOnlyOneWins(t *testing.T) {
	client, _ := newMiniredisClient(t)
	defer client.Close()

	repo := NewCollectionRepository(client, "test:")
	ctx := context.Background()

	const writers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Save(ctx, "clients", records(`{"writer":`+strconv.Itoa(i)+`}`), 0)
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, domain.ErrVersionConflict)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)

	col, err := repo.Load(ctx, "clients")
	require.NoError(t, err)
	assert.Equal(t, int64(1), col.Version)
}
