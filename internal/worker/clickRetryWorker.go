// Package worker holds background jobs that run beside request handling.
package worker

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/atinyakov/linkshort/internal/storage"
)

const (
	DefaultFlushInterval = 10 * time.Second
	batchSize            = 25
	queueSize            = 256
	flushTimeout         = 3 * time.Second
)

type Repo interface {
	IncrementClicks(context.Context, string) error
}

// ClickRetryWorker replays click increments that failed during a redirect.
// Accounting is best effort: each queued click is retried once and dropped
// if that fails too.
type ClickRetryWorker struct {
	in       chan string
	logger   *zap.Logger
	repo     Repo
	interval time.Duration
	done     chan struct{}
}

func NewClickRetryWorker(logger *zap.Logger, repo Repo, interval time.Duration) *ClickRetryWorker {
	if interval <= 0 {
		interval = DefaultFlushInterval
	}

	return &ClickRetryWorker{
		in:       make(chan string, queueSize),
		logger:   logger,
		repo:     repo,
		interval: interval,
		done:     make(chan struct{}),
	}
}

// Done is closed once FlushRecords has returned.
func (w *ClickRetryWorker) Done() <-chan struct{} {
	return w.done
}

// Enqueue schedules a retry for code without blocking. It reports false when
// the queue is full and the click is lost.
func (w *ClickRetryWorker) Enqueue(code string) bool {
	select {
	case w.in <- code:
		return true
	default:
		w.logger.Warn("click retry queue full, dropping click", zap.String("code", code))
		return false
	}
}

// FlushRecords runs until ctx is done, then flushes what is still queued.
func (w *ClickRetryWorker) FlushRecords(ctx context.Context) {
	defer close(w.done)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	var pending []string

	flush := func() {
		if len(pending) == 0 {
			return
		}

		w.logger.Info("retrying click increments", zap.Int("count", len(pending)))
		fctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
		defer cancel()

		for _, code := range pending {
			err := w.repo.IncrementClicks(fctx, code)
			switch {
			case err == nil:
			case errors.Is(err, storage.ErrNotFound):
				w.logger.Debug("link deleted before click retry", zap.String("code", code))
			default:
				w.logger.Error("cannot record click", zap.String("code", code), zap.Error(err))
			}
		}
		pending = pending[:0]
	}

	for {
		select {
		case code := <-w.in:
			pending = append(pending, code)
			if len(pending) > batchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-ctx.Done():
		drain:
			for {
				select {
				case code := <-w.in:
					pending = append(pending, code)
				default:
					break drain
				}
			}
			flush()
			return
		}
	}
}
