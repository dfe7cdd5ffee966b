// Package backend opens the storage selected by the configuration:
// Postgres when a DSN is set, then Redis, then the file journal, and the
// in-memory store otherwise.
package backend

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/atinyakov/linkshort/internal/app/service"
	"github.com/atinyakov/linkshort/internal/config"
	"github.com/atinyakov/linkshort/internal/repository"
	"github.com/atinyakov/linkshort/internal/storage"
)

// RedisKeyPrefix namespaces every key the service writes to Redis.
const RedisKeyPrefix = "linkshort:"

// Kind names a storage backend.
type Kind string

const (
	Postgres Kind = "postgres"
	Redis    Kind = "redis"
	File     Kind = "file"
	Memory   Kind = "memory"
)

// Select picks the backend for opts.
func Select(opts *config.Options) Kind {
	switch {
	case opts.DatabaseDSN != "":
		return Postgres
	case opts.RedisAddr != "":
		return Redis
	case opts.FileStoragePath != "":
		return File
	default:
		return Memory
	}
}

// Backend is an open store plus whatever must be released with it.
type Backend struct {
	Kind    Kind
	Storage service.Storage
	close   func() error
}

// Close releases the underlying connection or file.
func (b *Backend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

// Open connects to the backend chosen by Select.
func Open(ctx context.Context, opts *config.Options, logger *zap.Logger) (*Backend, error) {
	kind := Select(opts)

	switch kind {
	case Postgres:
		logger.Info("using postgres storage")

		db, err := repository.InitDB(ctx, opts.DatabaseDSN, logger)
		if err != nil {
			return nil, err
		}
		return &Backend{
			Kind:    kind,
			Storage: repository.CreateLinkRepository(db, logger),
			close:   db.Close,
		}, nil

	case Redis:
		logger.Info("using redis storage", zap.String("addr", opts.RedisAddr))

		client := redis.NewClient(&redis.Options{Addr: opts.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, errors.Join(fmt.Errorf("connect to redis: %w", err), client.Close())
		}
		return &Backend{
			Kind:    kind,
			Storage: repository.NewRedisRepository(client, RedisKeyPrefix, logger),
			close:   client.Close,
		}, nil

	case File:
		logger.Info("using file storage", zap.String("path", opts.FileStoragePath))

		fs, err := storage.NewFileStorage(opts.FileStoragePath, logger)
		if err != nil {
			return nil, err
		}
		return &Backend{
			Kind:    kind,
			Storage: fs,
			close:   fs.Close,
		}, nil

	default:
		logger.Info("using in memory storage")

		mem, err := storage.CreateMemoryStorage()
		if err != nil {
			return nil, err
		}
		return &Backend{
			Kind:    Memory,
			Storage: mem,
		}, nil
	}
}
