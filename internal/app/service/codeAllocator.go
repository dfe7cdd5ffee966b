// Package service implements the link directory: short code allocation,
// link lifecycle and click accounting on redirect.
package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"regexp"
	"sync"
	"time"

	"github.com/atinyakov/linkshort/internal/storage"
)

const (
	// GeneratedCodeLength is the length of codes produced by the allocator.
	GeneratedCodeLength = 6
	// MaxAllocationAttempts bounds the generate-and-check loop.
	MaxAllocationAttempts = 50
)

// codeAlphabet is case-preserving: "aBc123" and "abc123" are distinct codes.
const codeAlphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

var codePattern = regexp.MustCompile(`^[A-Za-z0-9]{6,8}$`)

// RandomSource supplies the randomness for generated codes. *rand.Rand from
// math/rand/v2 satisfies it.
type RandomSource interface {
	IntN(n int) int
}

// CodeFinder is the lookup the allocator uses to check whether a code is taken.
type CodeFinder interface {
	FindByCode(ctx context.Context, code string) (*storage.LinkRecord, error)
}

// CodeAllocator validates requested codes and generates fresh ones.
// Its uniqueness check is advisory: the storage unique constraint is what
// finally rejects a duplicate.
type CodeAllocator struct {
	finder      CodeFinder
	mu          sync.Mutex // guards rnd
	rnd         RandomSource
	length      int
	maxAttempts int
}

// NewCodeAllocator creates an allocator drawing from rnd. A nil rnd gets a
// PCG generator seeded from the clock.
func NewCodeAllocator(finder CodeFinder, rnd RandomSource) *CodeAllocator {
	if rnd == nil {
		seed := uint64(time.Now().UnixNano())
		rnd = rand.New(rand.NewPCG(seed, seed>>32|seed<<32))
	}

	return &CodeAllocator{
		finder:      finder,
		rnd:         rnd,
		length:      GeneratedCodeLength,
		maxAttempts: MaxAllocationAttempts,
	}
}

// IsValidCode reports whether code is 6 to 8 ASCII letters or digits.
func IsValidCode(code string) bool {
	return codePattern.MatchString(code)
}

// ResolveCode returns requested unchanged when it is well formed and free,
// or a newly generated free code when requested is empty.
func (a *CodeAllocator) ResolveCode(ctx context.Context, requested string) (string, error) {
	if requested != "" {
		if !IsValidCode(requested) {
			return "", ErrInvalidFormat
		}

		taken, err := a.taken(ctx, requested)
		if err != nil {
			return "", err
		}
		if taken {
			return "", ErrCodeConflict
		}

		return requested, nil
	}

	for i := 0; i < a.maxAttempts; i++ {
		candidate := a.generate()

		taken, err := a.taken(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}

	return "", ErrAllocationExhausted
}

func (a *CodeAllocator) generate() string {
	a.mu.Lock()
	defer a.mu.Unlock()

	b := make([]byte, a.length)
	for i := range b {
		b[i] = codeAlphabet[a.rnd.IntN(len(codeAlphabet))]
	}
	return string(b)
}

func (a *CodeAllocator) taken(ctx context.Context, code string) (bool, error) {
	_, err := a.finder.FindByCode(ctx, code)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, storage.ErrNotFound):
		return false, nil
	default:
		return false, fmt.Errorf("check code %q: %w", code, err)
	}
}
