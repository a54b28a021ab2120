package storage

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"regexp"
	"testing"
	"time"
)

type fakeStore struct {
	err     error
	gotKey  string
	gotPath string
	hadDL   bool
}

func (f *fakeStore) Upload(ctx context.Context, localPath, key string) (string, error) {
	f.gotKey, f.gotPath = key, localPath
	_, f.hadDL = ctx.Deadline()
	if f.err != nil {
		return "", f.err
	}
	return "https://cdn.example.com/" + key, nil
}

func (f *fakeStore) Name() string { return "fake" }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestUploader_Upload(t *testing.T) {
	ctx := context.Background()

	t.Run("remote success", func(t *testing.T) {
		store := &fakeStore{}
		u := NewUploader(store, discardLogger(), WithUploadTimeout(time.Minute))

		res := u.Upload(ctx, "/tmp/ffmpeg/thumbnail_123.jpg", "u1", "thumbnails/g1")
		if !res.Remote {
			t.Fatal("expected remote upload")
		}
		if !regexp.MustCompile(`^u1/thumbnails/g1/[0-9a-f]{32}\.jpg$`).MatchString(store.gotKey) {
			t.Errorf("unexpected key %q", store.gotKey)
		}
		if res.URL != "https://cdn.example.com/"+store.gotKey {
			t.Errorf("URL = %q", res.URL)
		}
		if !store.hadDL {
			t.Error("expected upload timeout to set a deadline")
		}
	})

	t.Run("store failure falls back to local path", func(t *testing.T) {
		u := NewUploader(&fakeStore{err: errors.New("network down")}, discardLogger())

		res := u.Upload(ctx, "/tmp/ffmpeg/out.mp4", "u1", "resized/g1")
		if res.Remote {
			t.Error("expected local fallback")
		}
		if res.URL != "/tmp/ffmpeg/out.mp4" {
			t.Errorf("URL = %q, want local path", res.URL)
		}
	})

	t.Run("no store configured", func(t *testing.T) {
		u := NewUploader(nil, discardLogger())
		if u.Configured() {
			t.Error("expected unconfigured uploader")
		}
		if u.Backend() != "local" {
			t.Errorf("Backend() = %q", u.Backend())
		}

		res := u.Upload(ctx, "/tmp/ffmpeg/out.mp4", "u1", "resized/g1")
		if res.Remote || res.URL != "/tmp/ffmpeg/out.mp4" {
			t.Errorf("unexpected result %+v", res)
		}
	})
}

func TestObjectKey(t *testing.T) {
	a := ObjectKey("/u1/", "watermarked/g1/", ".mp4")
	b := ObjectKey("u1", "watermarked/g1", ".mp4")
	if a == b {
		t.Error("expected unique keys")
	}
	if !regexp.MustCompile(`^u1/watermarked/g1/[0-9a-f]{32}\.mp4$`).MatchString(a) {
		t.Errorf("unexpected key %q", a)
	}
}
