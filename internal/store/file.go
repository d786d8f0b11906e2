package store

import (
	"fmt"
	"time"
)

// FileType distinguishes imported files from documents written in the editor.
type FileType string

// FileType values.
const (
	TypeUploaded FileType = "uploaded"
	TypeEdited   FileType = "edited"
)

// File is a stored markdown document. Timestamps are unix milliseconds.
type File struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Content      string   `json:"content"`
	CreatedAt    int64    `json:"createdAt"`
	UpdatedAt    int64    `json:"updatedAt"`
	Type         FileType `json:"type"`
	OriginalName string   `json:"originalName,omitempty"`
	Size         int64    `json:"size,omitempty"`
}

// ValidType reports whether t is uploaded or edited.
func ValidType(t FileType) bool {
	return t == TypeUploaded || t == TypeEdited
}

// ParseType parses a file type name.
func ParseType(s string) (FileType, error) {
	t := FileType(s)
	if !ValidType(t) {
		return "", fmt.Errorf("%w: %q (valid: uploaded, edited)", ErrInvalidType, s)
	}
	return t, nil
}

// usage returns the bytes f counts against the quota.
func (f File) usage() int64 {
	if f.Size > 0 {
		return f.Size
	}
	return int64(len(f.Content))
}

// Created returns CreatedAt as a time.
func (f File) Created() time.Time { return time.UnixMilli(f.CreatedAt) }

// Updated returns UpdatedAt as a time.
func (f File) Updated() time.Time { return time.UnixMilli(f.UpdatedAt) }

// DownloadName is the file name used when f is exported: uploaded files keep
// their original name, everything else is the title with ".md".
func DownloadName(f File) string {
	if f.Type == TypeUploaded && f.OriginalName != "" {
		return f.OriginalName
	}
	return f.Title + ".md"
}
