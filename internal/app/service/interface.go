package service

import (
	"context"

	"github.com/atinyakov/linkshort/internal/storage"
)

//go:generate mockgen -source=interface.go -destination=../../mocks/mock_service.go -package=mocks

// Storage is the persistence contract the link directory depends on.
// Insert must report a taken code as storage.ErrConflict, lookups and
// IncrementClicks report a missing code as storage.ErrNotFound.
type Storage interface {
	Insert(ctx context.Context, code, targetURL string) (*storage.LinkRecord, error)
	FindByCode(ctx context.Context, code string) (*storage.LinkRecord, error)
	FindAll(ctx context.Context) ([]storage.LinkRecord, error)
	DeleteByCode(ctx context.Context, code string) error
	IncrementClicks(ctx context.Context, code string) error
	PingContext(ctx context.Context) error
}

// LinkServiceIface is what the HTTP and gRPC layers call.
type LinkServiceIface interface {
	Create(ctx context.Context, targetURL, requestedCode string) (*storage.LinkRecord, error)
	List(ctx context.Context) ([]storage.LinkRecord, error)
	Get(ctx context.Context, code string) (*storage.LinkRecord, error)
	Delete(ctx context.Context, code string) error
	Redirect(ctx context.Context, code string) (string, error)
	ShortURL(code string) string
	PingContext(ctx context.Context) error
}
