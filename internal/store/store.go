// Package store keeps markdown documents in an embedded badger database.
//
// All records live under a single key as one JSON array, so every write
// replaces the whole list inside one transaction: a save either fully
// succeeds or leaves the previous list untouched.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// filesKey holds the JSON array of File records.
var filesKey = []byte("markdownFiles")

// DefaultLimit is the storage quota in bytes.
const DefaultLimit int64 = 10 * 1024 * 1024

// Badger sizing. The whole file list is one value of at most DefaultLimit
// bytes, so the value log never needs badger's 1 GiB default. In-memory
// stores keep values inline and are meant for small test data.
const (
	valueLogFileSize     = 64 << 20
	memTableSizeInMemory = 8 << 20
)

// maxConflictRetries bounds retries of a write that raced another transaction.
const maxConflictRetries = 3

// Options configures Open.
type Options struct {
	Dir      string         // database directory, ignored when InMemory
	InMemory bool           // keep everything in memory (tests)
	Limit    int64          // quota in bytes, 0 = DefaultLimit
	Logger   zerolog.Logger // receives badger's own diagnostics, zero value = silent
	Now      func() time.Time
}

// Usage reports quota consumption.
type Usage struct {
	Used       int64
	Total      int64
	Percentage float64
}

// Store is a file store backed by badger.
// Safe for concurrent use within one process; badger's directory lock keeps
// other processes out.
type Store struct {
	db    *badger.DB
	limit int64
	now   func() time.Time
	mu    sync.Mutex // serializes read-modify-write cycles
}

// DefaultDir returns the store directory under the user config directory.
func DefaultDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating user config directory: %w", err)
	}
	return filepath.Join(dir, "go-mdexport", "store"), nil
}

// Open opens or creates the store.
func Open(opts Options) (*Store, error) {
	bopts := badger.DefaultOptions(opts.Dir).WithValueLogFileSize(valueLogFileSize)
	if opts.InMemory {
		bopts = badger.DefaultOptions("").WithInMemory(true).WithMemTableSize(memTableSizeInMemory)
	}
	bopts = bopts.WithLogger(newBadgerLogger(opts.Logger))

	db, err := badger.Open(bopts)
	if err != nil {
		if strings.Contains(err.Error(), "directory lock") {
			return nil, fmt.Errorf("%w: %s", ErrStoreLocked, opts.Dir)
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreOpen, err)
	}

	s := &Store{db: db, limit: opts.Limit, now: opts.Now}
	if s.limit <= 0 {
		s.limit = DefaultLimit
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s, nil
}

// Close flushes and closes the database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	// Every save rewrites the list; reclaim the stale copies.
	for s.db.RunValueLogGC(0.5) == nil {
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// All returns every stored file in insertion order.
func (s *Store) All() ([]File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil, ErrClosed
	}

	var files []File
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		files, err = readFiles(txn)
		return err
	})
	return files, err
}

// ByType returns the files of type t.
func (s *Store) ByType(t FileType) ([]File, error) {
	if !ValidType(t) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidType, t)
	}
	files, err := s.All()
	if err != nil {
		return nil, err
	}
	return slices.DeleteFunc(files, func(f File) bool { return f.Type != t }), nil
}

// Get returns the file with the given ID.
func (s *Store) Get(id string) (File, error) {
	files, err := s.All()
	if err != nil {
		return File{}, err
	}
	i := slices.IndexFunc(files, func(f File) bool { return f.ID == id })
	if i < 0 {
		return File{}, fmt.Errorf("%w: %s", ErrFileNotFound, id)
	}
	return files[i], nil
}

// Save inserts f, or replaces the stored file with the same ID.
// An empty ID gets a new UUID, an empty Size defaults to the content length,
// CreatedAt is kept from the stored file or set to now, UpdatedAt is always now.
// If the result would exceed the quota, ErrQuotaExceeded is returned and the
// stored list is unchanged.
func (s *Store) Save(f File) (File, error) {
	if !ValidType(f.Type) {
		return File{}, fmt.Errorf("%w: %q", ErrInvalidType, f.Type)
	}

	now := s.now().UnixMilli()
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	if f.Size <= 0 {
		f.Size = int64(len(f.Content))
	}
	f.UpdatedAt = now

	err := s.update(func(files []File) ([]File, error) {
		i := slices.IndexFunc(files, func(x File) bool { return x.ID == f.ID })
		if i >= 0 {
			if f.CreatedAt == 0 {
				f.CreatedAt = files[i].CreatedAt
			}
			files[i] = f
		} else {
			if f.CreatedAt == 0 {
				f.CreatedAt = now
			}
			files = append(files, f)
		}

		if used := totalUsage(files); used > s.limit {
			return nil, &QuotaError{Used: used, Limit: s.limit}
		}
		return files, nil
	})
	if err != nil {
		return File{}, err
	}
	return f, nil
}

// Delete removes the file with the given ID.
func (s *Store) Delete(id string) error {
	return s.update(func(files []File) ([]File, error) {
		i := slices.IndexFunc(files, func(f File) bool { return f.ID == id })
		if i < 0 {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, id)
		}
		return slices.Delete(files, i, i+1), nil
	})
}

// ClearType removes every file of type t and returns how many were removed.
func (s *Store) ClearType(t FileType) (int, error) {
	if !ValidType(t) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidType, t)
	}
	removed := 0
	err := s.update(func(files []File) ([]File, error) {
		before := len(files)
		files = slices.DeleteFunc(files, func(f File) bool { return f.Type == t })
		removed = before - len(files)
		return files, nil
	})
	return removed, err
}

// ClearAll removes every file.
func (s *Store) ClearAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return ErrClosed
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(filesKey)
	})
}

// Usage reports how much of the quota the stored files use.
func (s *Store) Usage() (Usage, error) {
	files, err := s.All()
	if err != nil {
		return Usage{}, err
	}
	used := totalUsage(files)
	return Usage{
		Used:       used,
		Total:      s.limit,
		Percentage: float64(used) / float64(s.limit) * 100,
	}, nil
}

// update runs a read-modify-write cycle in one badger transaction.
// If mutate returns an error nothing is written.
func (s *Store) update(mutate func([]File) ([]File, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return ErrClosed
	}

	var err error
	for range maxConflictRetries {
		err = s.db.Update(func(txn *badger.Txn) error {
			files, err := readFiles(txn)
			if err != nil {
				return err
			}
			files, err = mutate(files)
			if err != nil {
				return err
			}
			return writeFiles(txn, files)
		})
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return err
}

func readFiles(txn *badger.Txn) ([]File, error) {
	item, err := txn.Get(filesKey)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return []File{}, nil
	}
	if err != nil {
		return nil, err
	}

	data, err := item.ValueCopy(nil)
	if err != nil {
		return nil, err
	}
	var files []File
	if err := json.Unmarshal(data, &files); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptStore, err)
	}
	if files == nil {
		files = []File{}
	}
	return files, nil
}

func writeFiles(txn *badger.Txn, files []File) error {
	data, err := json.Marshal(files)
	if err != nil {
		return err
	}
	return txn.Set(filesKey, data)
}

func totalUsage(files []File) int64 {
	var total int64
	for _, f := range files {
		total += f.usage()
	}
	return total
}
