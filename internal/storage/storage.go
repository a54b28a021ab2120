// Package storage provides the local temp workspace, source downloads and
// the object store backends that receive processed outputs.
package storage

import (
	"context"
	"fmt"

	"github.com/gabriel-vasile/mimetype"
)

// ObjectStore is a remote destination for processed files.
type ObjectStore interface {
	// Upload stores the file at localPath under key and returns its public URL.
	Upload(ctx context.Context, localPath, key string) (url string, err error)

	// Name identifies the backend in logs and health output.
	Name() string
}

// detectContentType sniffs the MIME type of the file at path.
func detectContentType(path string) (string, error) {
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return "", fmt.Errorf("detect content type: %w", err)
	}
	return mt.String(), nil
}
