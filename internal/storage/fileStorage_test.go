package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFileStorage_ReplaysJournal(t *testing.T) {
	logger := zap.NewNop()
	testFile := filepath.Join(t.TempDir(), "links.json")
	ctx := context.Background()

	fs, err := NewFileStorage(testFile, logger)
	require.NoError(t, err)

	_, err = fs.Insert(ctx, "keep123", "https://example1.com")
	require.NoError(t, err)
	_, err = fs.Insert(ctx, "drop123", "https://example2.com")
	require.NoError(t, err)
	require.NoError(t, fs.IncrementClicks(ctx, "keep123"))
	require.NoError(t, fs.IncrementClicks(ctx, "keep123"))
	require.NoError(t, fs.DeleteByCode(ctx, "drop123"))
	require.NoError(t, fs.Close())

	reopened, err := NewFileStorage(testFile, logger)
	require.NoError(t, err)
	defer reopened.Close()

	found, err := reopened.FindByCode(ctx, "keep123")
	require.NoError(t, err)
	assert.Equal(t, "https://example1.com", found.TargetURL)
	assert.Equal(t, int64(2), found.TotalClicks)
	require.NotNil(t, found.LastClickedAt)

	_, err = reopened.FindByCode(ctx, "drop123")
	assert.ErrorIs(t, err, ErrNotFound)

	all, err := reopened.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestFileStorage_ReopensWithLongURL(t *testing.T) {
	testFile := filepath.Join(t.TempDir(), "long.json")
	ctx := context.Background()
	longURL := "https://example.com/" + strings.Repeat("a", 70*1024)

	fs, err := NewFileStorage(testFile, zap.NewNop())
	require.NoError(t, err)
	_, err = fs.Insert(ctx, "abc123", longURL)
	require.NoError(t, err)
	_, err = fs.Insert(ctx, "def456", "https://example.com/short")
	require.NoError(t, err)
	require.NoError(t, fs.Close())

	reopened, err := NewFileStorage(testFile, zap.NewNop())
	require.NoError(t, err)
	defer reopened.Close()

	found, err := reopened.FindByCode(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, longURL, found.TargetURL)

	_, err = reopened.FindByCode(ctx, "def456")
	assert.NoError(t, err)
}

func TestFileStorage_Conflict(t *testing.T) {
	testFile := filepath.Join(t.TempDir(), "conflict.json")
	ctx := context.Background()

	fs, err := NewFileStorage(testFile, zap.NewNop())
	require.NoError(t, err)
	defer fs.Close()

	_, err = fs.Insert(ctx, "abc123", "https://a.com")
	require.NoError(t, err)

	_, err = fs.Insert(ctx, "abc123", "https://b.com")
	assert.ErrorIs(t, err, ErrConflict)

	content, err := os.ReadFile(testFile)
	require.NoError(t, err)
	assert.Equal(t, 1, countLines(content))
}

func TestFileStorage_MissingCodeWritesNothing(t *testing.T) {
	testFile := filepath.Join(t.TempDir(), "missing.json")
	ctx := context.Background()

	fs, err := NewFileStorage(testFile, zap.NewNop())
	require.NoError(t, err)
	defer fs.Close()

	assert.NoError(t, fs.DeleteByCode(ctx, "nothere"))
	assert.ErrorIs(t, fs.IncrementClicks(ctx, "nothere"), ErrNotFound)

	content, err := os.ReadFile(testFile)
	require.NoError(t, err)
	assert.Empty(t, content)
}

func TestFileStorage_BadLine(t *testing.T) {
	testFile := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(testFile, []byte("not json\n"), 0644))

	_, err := NewFileStorage(testFile, zap.NewNop())
	assert.Error(t, err)
}

func countLines(b []byte) int {
	n := 0
	for _, c := range b {
		if c == '\n' {
			n++
		}
	}
	return n
}
