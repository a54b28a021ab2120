// Package bootstrap provides dependency initialization for the ffmpeg service.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/maauso/ffmpeg-service/internal/config"
	"github.com/maauso/ffmpeg-service/internal/events"
	"github.com/maauso/ffmpeg-service/internal/job"
	"github.com/maauso/ffmpeg-service/internal/media"
	"github.com/maauso/ffmpeg-service/internal/notify"
	"github.com/maauso/ffmpeg-service/internal/record"
	"github.com/maauso/ffmpeg-service/internal/storage"
	"github.com/maauso/ffmpeg-service/internal/supabase"
)

// Dependencies holds all initialized dependencies for the HTTP server.
type Dependencies struct {
	JobService *job.Service

	closers []func()
}

// Close releases connections held by the dependencies in reverse order of
// creation. Call it after the job service has drained.
func (d *Dependencies) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
}

// NewDependencies creates and initializes all dependencies for the application.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{}

	local, err := storage.NewLocalStorage(cfg.TempDir)
	if err != nil {
		return nil, fmt.Errorf("create local storage: %w", err)
	}
	downloader := storage.NewDownloader(local, cfg.DownloadTimeout)
	processor := media.NewFFmpegProcessor(cfg.FFmpegPath, cfg.FFprobePath)

	var sb *supabase.Client
	if cfg.SupabaseEnabled() {
		sb, err = supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseServiceRoleKey,
			supabase.WithAnonKey(cfg.SupabaseAnonKey),
			supabase.WithHTTPClient(&http.Client{Timeout: cfg.UploadTimeout}),
		)
		if err != nil {
			return nil, fmt.Errorf("create supabase client: %w", err)
		}
	}

	store, err := initObjectStore(ctx, cfg, sb, logger)
	if err != nil {
		return nil, err
	}
	uploader := storage.NewUploader(store, logger, storage.WithUploadTimeout(cfg.UploadTimeout))

	records, err := initRecords(ctx, cfg, sb, deps, logger)
	if err != nil {
		deps.Close()
		return nil, err
	}

	webhookOpts := []notify.WebhookOption{
		notify.WithHTTPClient(&http.Client{Timeout: cfg.WebhookTimeout}),
	}
	if sb != nil {
		webhookOpts = append(webhookOpts, notify.WithSupabase(sb))
	}
	webhook := notify.NewWebhook(logger, webhookOpts...)

	overlayPath := cfg.DefaultWatermarkPath
	if overlayPath == "" {
		overlayPath = filepath.Join(local.TempDir(), "assets", "default_watermark.png")
	}

	opts := []job.ServiceOption{
		job.WithMaxConcurrentJobs(cfg.MaxConcurrentJobs),
		job.WithDefaultOverlay(media.NewDefaultOverlay(overlayPath, cfg.DefaultWatermarkText)),
	}
	if cfg.KafkaEnabled() {
		publisher := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		deps.closers = append(deps.closers, func() {
			if err := publisher.Close(); err != nil {
				logger.Warn("close kafka writer", slog.String("error", err.Error()))
			}
		})
		opts = append(opts, job.WithEventPublisher(publisher))
		logger.Info("job events enabled",
			slog.Any("brokers", cfg.KafkaBrokers),
			slog.String("topic", cfg.KafkaTopic),
		)
	}

	deps.JobService = job.NewService(local, downloader, processor, uploader, records, webhook, logger, opts...)

	logger.Info("dependencies initialized",
		slog.String("temp_dir", local.TempDir()),
		slog.String("storage_backend", uploader.Backend()),
		slog.Bool("webhook_auth", sb != nil),
		slog.Int("max_concurrent_jobs", cfg.MaxConcurrentJobs),
	)

	return deps, nil
}

// initObjectStore picks Supabase storage, then S3, then none. Without a store
// outputs stay on local disk.
func initObjectStore(ctx context.Context, cfg *config.Config, sb *supabase.Client, logger *slog.Logger) (storage.ObjectStore, error) {
	if sb != nil {
		logger.Info("supabase storage configured",
			slog.String("bucket", cfg.SupabaseBucket),
		)
		return storage.NewSupabaseStore(sb, cfg.SupabaseBucket), nil
	}

	if cfg.S3Enabled() {
		s3Store, err := storage.NewS3Store(ctx, storage.S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
		})
		if err != nil {
			return nil, fmt.Errorf("create S3 storage: %w", err)
		}
		logger.Info("S3 storage configured",
			slog.String("bucket", cfg.S3Bucket),
			slog.String("region", cfg.S3Region),
		)
		return s3Store, nil
	}

	logger.Warn("no object store configured, outputs will stay on local disk")
	return nil, nil
}

// initRecords picks a direct database connection, then PostgREST, then a no-op.
func initRecords(ctx context.Context, cfg *config.Config, sb *supabase.Client, deps *Dependencies, logger *slog.Logger) (record.Updater, error) {
	if cfg.DatabaseEnabled() {
		pg, err := record.NewPostgresUpdater(ctx, cfg.DatabaseURL, cfg.SupabaseTable, logger)
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		deps.closers = append(deps.closers, pg.Close)
		logger.Info("record updates via postgres", slog.String("table", cfg.SupabaseTable))
		return pg, nil
	}

	if sb != nil {
		logger.Info("record updates via postgrest", slog.String("table", cfg.SupabaseTable))
		return record.NewPostgRESTUpdater(sb, cfg.SupabaseTable, logger), nil
	}

	logger.Warn("no record backend configured, generation rows will not be updated")
	return record.NewNoopUpdater(logger), nil
}
