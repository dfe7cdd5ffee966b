package service

import (
	"context"
	"errors"
	"math/rand/v2"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/atinyakov/linkshort/internal/mocks"
	"github.com/atinyakov/linkshort/internal/storage"
)

var generatedCode = regexp.MustCompile(`^[A-Za-z0-9]{6}$`)

// scriptedSource replays fixed draws so collisions can be forced.
type scriptedSource struct {
	draws []int
	next  int
}

func (s *scriptedSource) IntN(n int) int {
	v := s.draws[s.next%len(s.draws)]
	s.next++
	return v % n
}

func TestResolveCode_Requested(t *testing.T) {
	mem, _ := storage.CreateMemoryStorage()
	_, err := mem.Insert(context.Background(), "taken1", "https://example.com")
	require.NoError(t, err)

	allocator := NewCodeAllocator(mem, rand.New(rand.NewPCG(1, 2)))

	tests := []struct {
		name      string
		requested string
		want      string
		wantErr   error
	}{
		{name: "six chars", requested: "ABC123", want: "ABC123"},
		{name: "eight chars", requested: "abcDEF12", want: "abcDEF12"},
		{name: "case preserved", requested: "TAKEN1", want: "TAKEN1"},
		{name: "too short", requested: "abc12", wantErr: ErrInvalidFormat},
		{name: "too long", requested: "abcdefghi", wantErr: ErrInvalidFormat},
		{name: "dash", requested: "abc-123", wantErr: ErrInvalidFormat},
		{name: "space", requested: "abc 123", wantErr: ErrInvalidFormat},
		{name: "non ascii letter", requested: "abcdé12", wantErr: ErrInvalidFormat},
		{name: "taken", requested: "taken1", wantErr: ErrCodeConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, err := allocator.ResolveCode(context.Background(), tt.requested)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, code)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, code)
		})
	}
}

func TestResolveCode_Generated(t *testing.T) {
	mem, _ := storage.CreateMemoryStorage()
	allocator := NewCodeAllocator(mem, nil)

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code, err := allocator.ResolveCode(context.Background(), "")
		require.NoError(t, err)
		assert.Regexp(t, generatedCode, code)

		_, err = mem.Insert(context.Background(), code, "https://example.com")
		require.NoError(t, err)
		seen[code] = true
	}

	assert.Len(t, seen, 100)
}

func TestResolveCode_SeededIsDeterministic(t *testing.T) {
	mem, _ := storage.CreateMemoryStorage()

	a := NewCodeAllocator(mem, rand.New(rand.NewPCG(42, 7)))
	b := NewCodeAllocator(mem, rand.New(rand.NewPCG(42, 7)))

	codeA, err := a.ResolveCode(context.Background(), "")
	require.NoError(t, err)
	codeB, err := b.ResolveCode(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, codeA, codeB)
}

func TestResolveCode_RetriesOnCollision(t *testing.T) {
	mem, _ := storage.CreateMemoryStorage()
	// first candidate is "000000", second is "111111"
	_, err := mem.Insert(context.Background(), "000000", "https://example.com")
	require.NoError(t, err)

	src := &scriptedSource{draws: []int{0, 0, 0, 0, 0, 0, 1, 1, 1, 1, 1, 1}}
	allocator := NewCodeAllocator(mem, src)

	code, err := allocator.ResolveCode(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "111111", code)
}

func TestResolveCode_Exhausted(t *testing.T) {
	ctrl := gomock.NewController(t)
	finder := mocks.NewMockStorage(ctrl)

	finder.EXPECT().
		FindByCode(gomock.Any(), "000000").
		Return(&storage.LinkRecord{Code: "000000"}, nil).
		Times(MaxAllocationAttempts)

	allocator := NewCodeAllocator(finder, &scriptedSource{draws: []int{0}})

	_, err := allocator.ResolveCode(context.Background(), "")
	assert.ErrorIs(t, err, ErrAllocationExhausted)
}

func TestResolveCode_StorageError(t *testing.T) {
	ctrl := gomock.NewController(t)
	finder := mocks.NewMockStorage(ctrl)
	dbErr := errors.New("connection refused")

	finder.EXPECT().FindByCode(gomock.Any(), "ABC123").Return(nil, dbErr)

	allocator := NewCodeAllocator(finder, nil)

	_, err := allocator.ResolveCode(context.Background(), "ABC123")
	assert.ErrorIs(t, err, dbErr)
	assert.NotErrorIs(t, err, ErrCodeConflict)
}

func TestIsValidCode(t *testing.T) {
	assert.True(t, IsValidCode("abc123"))
	assert.True(t, IsValidCode("ABCdef12"))
	assert.False(t, IsValidCode(""))
	assert.False(t, IsValidCode("abc_123"))
	assert.False(t, IsValidCode("abc123\n"))
}
