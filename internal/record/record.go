// Package record persists job output URLs against the generation row that
// requested them. Updates are partial and best-effort.
package record

import (
	"context"
	"log/slog"
)

// Column is a URL column of the generations table.
type Column string

// Columns written by jobs.
const (
	ColumnThumbnailURL   Column = "thumbnail_url"
	ColumnWatermarkedURL Column = "watermarked_url"
	ColumnResizedURL     Column = "resized_url"
)

// Updater sets one column of one generation row.
// Implementations never return errors; false means the row was not updated.
type Updater interface {
	Update(ctx context.Context, generationID string, column Column, url string) bool
}

// NoopUpdater is used when no backing store is configured.
type NoopUpdater struct {
	logger *slog.Logger
}

// NewNoopUpdater creates a NoopUpdater.
func NewNoopUpdater(logger *slog.Logger) *NoopUpdater {
	if logger == nil {
		logger = slog.Default()
	}
	return &NoopUpdater{logger: logger}
}

// Update implements Updater and always reports false.
func (u *NoopUpdater) Update(_ context.Context, generationID string, column Column, _ string) bool {
	u.logger.Debug("record store not configured, skipping update",
		slog.String("generation_id", generationID),
		slog.String("column", string(column)),
	)
	return false
}
