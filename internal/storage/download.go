package storage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"
)

// Static errors for downloads.
var (
	// ErrUnsupportedScheme is returned for URLs that are not http or https.
	ErrUnsupportedScheme = errors.New("download: unsupported URL scheme")
	// ErrDownloadFailed is returned when the remote answers with a non-2xx status.
	ErrDownloadFailed = errors.New("download: request failed")
)

// defaultExt is used when the URL path carries no usable extension.
const defaultExt = ".mp4"

// Downloader fetches remote media into the temp workspace.
type Downloader struct {
	local      *LocalStorage
	httpClient *http.Client
}

// NewDownloader creates a Downloader that writes into local.
// A zero timeout leaves requests bounded only by their context.
func NewDownloader(local *LocalStorage, timeout time.Duration) *Downloader {
	return &Downloader{
		local:      local,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Fetch downloads rawURL into a new temp file and returns its path.
// Redirects are followed.
func (d *Downloader) Fetch(ctx context.Context, rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("download: parse url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("download: create request: %w", err)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("download: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w with status %d: %s", ErrDownloadFailed, resp.StatusCode, rawURL)
	}

	return d.local.SaveTemp(ctx, "download", extFromPath(u.Path), resp.Body)
}

// extFromPath returns the file extension of p, or defaultExt when p has none
// or it does not look like one.
func extFromPath(p string) string {
	ext := strings.ToLower(path.Ext(p))
	if len(ext) < 2 || len(ext) > 6 {
		return defaultExt
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return defaultExt
		}
	}
	return ext
}
