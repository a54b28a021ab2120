package record

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/maauso/ffmpeg-service/internal/supabase"
)

// PostgRESTUpdater updates rows through the Supabase REST API.
type PostgRESTUpdater struct {
	client *supabase.Client
	table  string
	logger *slog.Logger
}

// NewPostgRESTUpdater creates an updater for table.
func NewPostgRESTUpdater(client *supabase.Client, table string, logger *slog.Logger) *PostgRESTUpdater {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgRESTUpdater{client: client, table: table, logger: logger}
}

// Update sends PATCH /rest/v1/<table>?id=eq.<generationID> with {column: url}.
func (u *PostgRESTUpdater) Update(ctx context.Context, generationID string, column Column, value string) bool {
	body, err := json.Marshal(map[string]string{string(column): value})
	if err != nil {
		u.logger.Error("failed to encode record update", slog.String("error", err.Error()))
		return false
	}

	header := http.Header{}
	header.Set("Content-Type", "application/json")
	header.Set("Prefer", "return=representation")

	path := fmt.Sprintf("/rest/v1/%s?id=eq.%s", u.table, url.QueryEscape(generationID))
	if _, err := u.client.Do(ctx, http.MethodPatch, path, bytes.NewReader(body), header); err != nil {
		u.logger.Error("record update failed",
			slog.String("generation_id", generationID),
			slog.String("column", string(column)),
			slog.String("error", err.Error()),
		)
		return false
	}

	u.logger.Info("record updated",
		slog.String("generation_id", generationID),
		slog.String("column", string(column)),
	)
	return true
}
