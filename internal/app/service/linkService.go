package service

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/atinyakov/linkshort/internal/storage"
	"github.com/atinyakov/linkshort/internal/worker"
)

// insertAttempts bounds how many generated codes are tried when the insert
// itself loses a race on the unique constraint.
const insertAttempts = 3

type LinkService struct {
	repository Storage
	allocator  *CodeAllocator
	clicks     *worker.ClickRetryWorker
	logger     *zap.Logger
	baseURL    string
}

// NewLinkService builds the directory and starts its click retry worker,
// which lives until ctx is cancelled.
func NewLinkService(ctx context.Context, repo Storage, allocator *CodeAllocator, logger *zap.Logger, baseURL string) *LinkService {
	clicks := worker.NewClickRetryWorker(logger, repo, worker.DefaultFlushInterval)
	go clicks.FlushRecords(ctx)

	return &LinkService{
		repository: repo,
		allocator:  allocator,
		clicks:     clicks,
		logger:     logger,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// Done is closed after the click retry worker made its final flush.
func (s *LinkService) Done() <-chan struct{} {
	return s.clicks.Done()
}

func (s *LinkService) PingContext(ctx context.Context) error {
	return s.repository.PingContext(ctx)
}

// ShortURL composes the public short link for code.
func (s *LinkService) ShortURL(code string) string {
	return s.baseURL + "/" + code
}

// Create stores a new link to targetURL under requestedCode, or under a
// generated code when requestedCode is empty.
func (s *LinkService) Create(ctx context.Context, targetURL, requestedCode string) (*storage.LinkRecord, error) {
	if !isAbsoluteURL(targetURL) {
		return nil, ErrInvalidURL
	}

	for attempt := 1; ; attempt++ {
		code, err := s.allocator.ResolveCode(ctx, requestedCode)
		if err != nil {
			return nil, err
		}

		rec, err := s.repository.Insert(ctx, code, targetURL)
		if err == nil {
			s.logger.Info("link created", zap.String("code", rec.Code), zap.String("url", rec.TargetURL))
			return rec, nil
		}

		if !errors.Is(err, storage.ErrConflict) {
			return nil, err
		}

		if requestedCode != "" {
			return nil, ErrCodeConflict
		}

		if attempt >= insertAttempts {
			return nil, ErrAllocationExhausted
		}

		s.logger.Warn("generated code taken at insert, retrying", zap.String("code", code), zap.Int("attempt", attempt))
	}
}

func (s *LinkService) List(ctx context.Context) ([]storage.LinkRecord, error) {
	return s.repository.FindAll(ctx)
}

func (s *LinkService) Get(ctx context.Context, code string) (*storage.LinkRecord, error) {
	rec, err := s.repository.FindByCode(ctx, code)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNotFound
	}

	return rec, err
}

// Delete removes the link. Missing codes are not an error.
func (s *LinkService) Delete(ctx context.Context, code string) error {
	if err := s.repository.DeleteByCode(ctx, code); err != nil {
		return err
	}

	s.logger.Info("link deleted", zap.String("code", code))
	return nil
}

// Redirect resolves code to its target URL and records the click.
//
// Once the link is found the redirect is served even if the click cannot be
// recorded: a failed increment is queued for one retry in the background.
func (s *LinkService) Redirect(ctx context.Context, code string) (string, error) {
	rec, err := s.repository.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}

	if err := s.repository.IncrementClicks(ctx, code); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			// deleted after the lookup; the lookup still wins
			s.logger.Debug("link deleted during redirect", zap.String("code", code))
		} else {
			s.logger.Warn("cannot record click, queued for retry", zap.String("code", code), zap.Error(err))
			s.clicks.Enqueue(code)
		}
	}

	return rec.TargetURL, nil
}

func isAbsoluteURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}

	return u.Scheme != "" && u.Host != ""
}
