package record

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maauso/ffmpeg-service/internal/supabase"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPostgRESTUpdater_Update(t *testing.T) {
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/rest/v1/ai_generations", r.URL.Path)
		assert.Equal(t, "eq.gen-1", r.URL.Query().Get("id"))
		assert.Equal(t, "return=representation", r.Header.Get("Prefer"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer service", r.Header.Get("Authorization"))

		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client, err := supabase.NewClient(srv.URL, "service")
	require.NoError(t, err)

	u := NewPostgRESTUpdater(client, "ai_generations", testLogger())
	ok := u.Update(context.Background(), "gen-1", ColumnThumbnailURL, "https://cdn/x.jpg")

	assert.True(t, ok)
	assert.Equal(t, map[string]string{"thumbnail_url": "https://cdn/x.jpg"}, gotBody)
}

func TestPostgRESTUpdater_Update_Failure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client, err := supabase.NewClient(srv.URL, "service")
	require.NoError(t, err)

	u := NewPostgRESTUpdater(client, "ai_generations", testLogger())
	assert.False(t, u.Update(context.Background(), "gen-1", ColumnWatermarkedURL, "u"))
}

func TestPostgRESTUpdater_Update_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	client, err := supabase.NewClient(url, "service")
	require.NoError(t, err)

	u := NewPostgRESTUpdater(client, "ai_generations", testLogger())
	assert.False(t, u.Update(context.Background(), "gen-1", ColumnResizedURL, "u"))
}

type fakeExecer struct {
	sql  string
	args []any
	tag  string
	err  error
}

func (f *fakeExecer) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.sql, f.args = sql, args
	return pgconn.NewCommandTag(f.tag), f.err
}

func TestPostgresUpdater_Update(t *testing.T) {
	t.Run("row updated", func(t *testing.T) {
		db := &fakeExecer{tag: "UPDATE 1"}
		u := newPostgresUpdater(db, "ai_generations", testLogger())

		assert.True(t, u.Update(context.Background(), "gen-1", ColumnResizedURL, "https://cdn/r.mp4"))
		assert.Equal(t, `UPDATE "ai_generations" SET "resized_url" = $1 WHERE id::text = $2`, db.sql)
		assert.Equal(t, []any{"https://cdn/r.mp4", "gen-1"}, db.args)
	})

	t.Run("no matching row", func(t *testing.T) {
		u := newPostgresUpdater(&fakeExecer{tag: "UPDATE 0"}, "ai_generations", testLogger())
		assert.False(t, u.Update(context.Background(), "missing", ColumnThumbnailURL, "u"))
	})

	t.Run("exec error", func(t *testing.T) {
		u := newPostgresUpdater(&fakeExecer{err: errors.New("connection reset")}, "ai_generations", testLogger())
		assert.False(t, u.Update(context.Background(), "gen-1", ColumnThumbnailURL, "u"))
	})

	t.Run("close without pool", func(t *testing.T) {
		u := newPostgresUpdater(&fakeExecer{}, "t", testLogger())
		assert.NotPanics(t, u.Close)
	})
}

func TestUpdateSQL_QuotesIdentifiers(t *testing.T) {
	got := updateSQL(`gen"; DROP TABLE x; --`, ColumnThumbnailURL)
	assert.Equal(t, `UPDATE "gen""; DROP TABLE x; --" SET "thumbnail_url" = $1 WHERE id::text = $2`, got)
}

func TestNoopUpdater(t *testing.T) {
	u := NewNoopUpdater(testLogger())
	assert.False(t, u.Update(context.Background(), "gen-1", ColumnThumbnailURL, "u"))
}
