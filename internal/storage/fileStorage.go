package storage

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

const (
	opCreate = "create"
	opClick  = "click"
	opDelete = "delete"
)

// journalEntry is one line of the storage file. The file is an append-only
// log of mutations that is replayed into memory on start.
type journalEntry struct {
	Op        string    `json:"op"`
	Code      string    `json:"code"`
	TargetURL string    `json:"target_url,omitempty"`
	At        time.Time `json:"at"`
}

// FileStorage keeps links in memory and persists every mutation to a
// JSON-lines journal.
type FileStorage struct {
	*MemoryStorage
	file   *os.File
	logger *zap.Logger
}

func NewFileStorage(p string, logger *zap.Logger) (*FileStorage, error) {
	if err := os.MkdirAll(filepath.Dir(p), 0770); err != nil {
		return nil, err
	}

	file, err := os.OpenFile(p, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0660)
	if err != nil {
		return nil, err
	}

	mem, _ := CreateMemoryStorage()
	fs := &FileStorage{
		MemoryStorage: mem,
		file:          file,
		logger:        logger,
	}

	if err := fs.replay(); err != nil {
		file.Close()
		return nil, err
	}

	return fs, nil
}

// replay applies every journal line to the in-memory map. Lines are read
// whole, so entries of any length survive a restart.
func (fs *FileStorage) replay() error {
	reader := bufio.NewReader(fs.file)
	applied := 0
	for {
		line, err := reader.ReadBytes('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("error reading file: %w", err)
		}
		eof := err != nil

		line = bytes.TrimSpace(line)
		if len(line) > 0 {
			var e journalEntry
			if err := json.Unmarshal(line, &e); err != nil {
				return fmt.Errorf("failed to parse JSON line: %w", err)
			}

			if fs.apply(e) {
				applied++
			}
		}

		if eof {
			break
		}
	}

	fs.logger.Info("storage file loaded", zap.Int("entries", applied), zap.Int("links", len(fs.links)))
	return nil
}

func (fs *FileStorage) apply(e journalEntry) bool {
	switch e.Op {
	case opCreate:
		_, _ = fs.insertLocked(LinkRecord{Code: e.Code, TargetURL: e.TargetURL, CreatedAt: e.At})
	case opClick:
		_ = fs.incrementLocked(e.Code, e.At)
	case opDelete:
		delete(fs.links, e.Code)
	default:
		fs.logger.Warn("skipping unknown journal entry", zap.String("op", e.Op))
		return false
	}
	return true
}

func (fs *FileStorage) append(e journalEntry) error {
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}

	_, err = fs.file.Write(append(b, '\n'))
	return err
}

func (fs *FileStorage) Insert(_ context.Context, code, targetURL string) (*LinkRecord, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if _, exists := fs.links[code]; exists {
		return nil, ErrConflict
	}

	now := fs.now().UTC()
	if err := fs.append(journalEntry{Op: opCreate, Code: code, TargetURL: targetURL, At: now}); err != nil {
		return nil, err
	}

	return fs.insertLocked(LinkRecord{Code: code, TargetURL: targetURL, CreatedAt: now})
}

func (fs *FileStorage) DeleteByCode(_ context.Context, code string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if _, exists := fs.links[code]; !exists {
		return nil
	}

	if err := fs.append(journalEntry{Op: opDelete, Code: code, At: fs.now().UTC()}); err != nil {
		return err
	}

	delete(fs.links, code)
	return nil
}

func (fs *FileStorage) IncrementClicks(_ context.Context, code string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if _, exists := fs.links[code]; !exists {
		return ErrNotFound
	}

	now := fs.now().UTC()
	if err := fs.append(journalEntry{Op: opClick, Code: code, At: now}); err != nil {
		return err
	}

	return fs.incrementLocked(code, now)
}

func (fs *FileStorage) Close() error {
	return fs.file.Close()
}
