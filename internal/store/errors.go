package store

import (
	"errors"
	"fmt"
)

// Sentinel errors for store operations.
var (
	ErrFileNotFound  = errors.New("file not found")
	ErrQuotaExceeded = errors.New("storage quota exceeded")
	ErrInvalidType   = errors.New("invalid file type")
	ErrNotMarkdown   = errors.New("not a markdown file")
	ErrStoreLocked   = errors.New("store is locked by another process")
	ErrStoreOpen     = errors.New("failed to open store")
	ErrCorruptStore  = errors.New("stored file list is corrupt")
	ErrClosed        = errors.New("store is closed")
)

// QuotaError reports a write that would exceed the storage quota.
// It matches ErrQuotaExceeded with errors.Is.
type QuotaError struct {
	Used  int64 // bytes the store would hold after the write
	Limit int64
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("%v: %d of %d bytes", ErrQuotaExceeded, e.Used, e.Limit)
}

// Is makes errors.Is(err, ErrQuotaExceeded) true.
func (e *QuotaError) Is(target error) bool {
	return target == ErrQuotaExceeded
}
