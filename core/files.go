package core

import (
	"context"
	"io"
)

// StoredFile is a reference to a blob held by a FileStore.
type StoredFile struct {
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	URL         string `json:"url"`
}

// FileStore is any service that can persist uploaded files (assignment
// handouts, submission attachments) and hand back a stable reference.
type FileStore interface {
	Store(ctx context.Context, name, contentType string, r io.Reader) (StoredFile, error)
}
