package storage

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Upload is the outcome of publishing a processed file.
type Upload struct {
	// URL is the public URL, or the local path when Remote is false.
	URL string
	// Remote reports whether the file reached the object store.
	Remote bool
}

// Uploader publishes processed files and never fails: when no store is
// configured or the upload errors, the local path is returned instead.
type Uploader struct {
	store   ObjectStore
	timeout time.Duration
	logger  *slog.Logger
}

// UploaderOption is a function that configures an Uploader.
type UploaderOption func(*Uploader)

// WithUploadTimeout bounds each upload attempt.
func WithUploadTimeout(d time.Duration) UploaderOption {
	return func(u *Uploader) {
		u.timeout = d
	}
}

// NewUploader creates an Uploader. store may be nil.
func NewUploader(store ObjectStore, logger *slog.Logger, opts ...UploaderOption) *Uploader {
	if logger == nil {
		logger = slog.Default()
	}
	u := &Uploader{store: store, logger: logger}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Configured reports whether an object store is available.
func (u *Uploader) Configured() bool {
	return u.store != nil
}

// Backend returns the name of the configured store, or "local".
func (u *Uploader) Backend() string {
	if u.store == nil {
		return "local"
	}
	return u.store.Name()
}

// Upload publishes localPath under owner/folder/<random><ext>.
func (u *Uploader) Upload(ctx context.Context, localPath, owner, folder string) Upload {
	if u.store == nil {
		u.logger.Warn("no object store configured, keeping local file",
			slog.String("path", localPath),
		)
		return Upload{URL: localPath}
	}

	if u.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, u.timeout)
		defer cancel()
	}

	key := ObjectKey(owner, folder, filepath.Ext(localPath))
	url, err := u.store.Upload(ctx, localPath, key)
	if err != nil {
		u.logger.Error("upload failed, falling back to local path",
			slog.String("store", u.store.Name()),
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return Upload{URL: localPath}
	}

	u.logger.Info("file uploaded",
		slog.String("store", u.store.Name()),
		slog.String("url", url),
	)
	return Upload{URL: url, Remote: true}
}

// ObjectKey builds a unique object key namespaced by owner and folder.
func ObjectKey(owner, folder, ext string) string {
	name := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("%s/%s/%s%s", strings.Trim(owner, "/"), strings.Trim(folder, "/"), name, ext)
}
