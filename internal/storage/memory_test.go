package storage_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atinyakov/linkshort/internal/storage"
)

func TestMemoryStorage_InsertAndFind(t *testing.T) {
	mem, _ := storage.CreateMemoryStorage()
	ctx := context.Background()

	result, err := mem.Insert(ctx, "abc123", "https://example.com")
	require.NoError(t, err)
	assert.Equal(t, "abc123", result.Code)
	assert.Equal(t, "https://example.com", result.TargetURL)
	assert.Zero(t, result.TotalClicks)
	assert.Nil(t, result.LastClickedAt)
	assert.False(t, result.CreatedAt.IsZero())

	// Insert same code again - should fail
	_, err = mem.Insert(ctx, "abc123", "https://other.com")
	assert.ErrorIs(t, err, storage.ErrConflict)

	found, err := mem.FindByCode(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", found.TargetURL)

	_, err = mem.FindByCode(ctx, "notfound")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestMemoryStorage_CodesAreCaseSensitive(t *testing.T) {
	mem, _ := storage.CreateMemoryStorage()
	ctx := context.Background()

	_, err := mem.Insert(ctx, "ABC123", "https://upper.com")
	require.NoError(t, err)
	_, err = mem.Insert(ctx, "abc123", "https://lower.com")
	require.NoError(t, err)

	found, err := mem.FindByCode(ctx, "ABC123")
	require.NoError(t, err)
	assert.Equal(t, "https://upper.com", found.TargetURL)
}

func TestMemoryStorage_FindAllNewestFirst(t *testing.T) {
	mem, _ := storage.CreateMemoryStorage()
	ctx := context.Background()

	for _, code := range []string{"first1", "second", "third3"} {
		_, err := mem.Insert(ctx, code, "https://example.com/"+code)
		require.NoError(t, err)
	}

	records, err := mem.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "third3", records[0].Code)
	assert.Equal(t, "second", records[1].Code)
	assert.Equal(t, "first1", records[2].Code)
}

func TestMemoryStorage_DeleteByCode(t *testing.T) {
	mem, _ := storage.CreateMemoryStorage()
	ctx := context.Background()

	_, err := mem.Insert(ctx, "toDel12", "https://del.com")
	require.NoError(t, err)

	require.NoError(t, mem.DeleteByCode(ctx, "toDel12"))
	_, err = mem.FindByCode(ctx, "toDel12")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	// Deleting again is a no-op
	assert.NoError(t, mem.DeleteByCode(ctx, "toDel12"))
}

func TestMemoryStorage_IncrementClicks(t *testing.T) {
	mem, _ := storage.CreateMemoryStorage()
	ctx := context.Background()

	created, err := mem.Insert(ctx, "click01", "https://example.com")
	require.NoError(t, err)

	require.NoError(t, mem.IncrementClicks(ctx, "click01"))

	found, err := mem.FindByCode(ctx, "click01")
	require.NoError(t, err)
	assert.Equal(t, int64(1), found.TotalClicks)
	require.NotNil(t, found.LastClickedAt)
	assert.False(t, found.LastClickedAt.Before(created.CreatedAt))

	err = mem.IncrementClicks(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestMemoryStorage_ConcurrentIncrements(t *testing.T) {
	mem, _ := storage.CreateMemoryStorage()
	ctx := context.Background()

	_, err := mem.Insert(ctx, "hot1234", "https://example.com")
	require.NoError(t, err)

	const n = 200
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_ = mem.IncrementClicks(ctx, "hot1234")
		}()
	}
	wg.Wait()

	found, err := mem.FindByCode(ctx, "hot1234")
	require.NoError(t, err)
	assert.Equal(t, int64(n), found.TotalClicks)
}

func TestMemoryStorage_ReturnedRecordsAreCopies(t *testing.T) {
	mem, _ := storage.CreateMemoryStorage()
	ctx := context.Background()

	_, err := mem.Insert(ctx, "copy123", "https://example.com")
	require.NoError(t, err)

	found, err := mem.FindByCode(ctx, "copy123")
	require.NoError(t, err)
	found.TotalClicks = 99

	again, err := mem.FindByCode(ctx, "copy123")
	require.NoError(t, err)
	assert.Zero(t, again.TotalClicks)
}

func TestMemoryStorage_PingContext(t *testing.T) {
	mem, _ := storage.CreateMemoryStorage()

	err := mem.PingContext(context.Background())
	assert.True(t, errors.Is(err, errors.ErrUnsupported))
}
