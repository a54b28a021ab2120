package storage

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/maauso/ffmpeg-service/internal/supabase"
)

// SupabaseStore uploads processed files to a Supabase Storage bucket.
type SupabaseStore struct {
	client *supabase.Client
	bucket string
}

// NewSupabaseStore creates a SupabaseStore writing into bucket.
func NewSupabaseStore(client *supabase.Client, bucket string) *SupabaseStore {
	return &SupabaseStore{client: client, bucket: bucket}
}

// Name implements ObjectStore.
func (s *SupabaseStore) Name() string {
	return "supabase"
}

// Upload stores the file at localPath under key, replacing any existing
// object, and returns its public URL.
func (s *SupabaseStore) Upload(ctx context.Context, localPath, key string) (string, error) {
	contentType, err := detectContentType(localPath)
	if err != nil {
		return "", err
	}

	f, err := os.Open(localPath) // #nosec G304 - path is created by the service
	if err != nil {
		return "", fmt.Errorf("open upload file: %w", err)
	}
	defer func() { _ = f.Close() }()

	header := http.Header{}
	header.Set("Content-Type", contentType)
	header.Set("Cache-Control", "3600")

	path := fmt.Sprintf("/storage/v1/object/%s/%s?upsert=true", s.bucket, key)
	if _, err := s.client.Do(ctx, http.MethodPost, path, f, header); err != nil {
		return "", fmt.Errorf("upload to supabase: %w", err)
	}

	return s.client.PublicObjectURL(s.bucket, key), nil
}
