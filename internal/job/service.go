package job

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime/debug"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/maauso/ffmpeg-service/internal/job/id"
	"github.com/maauso/ffmpeg-service/internal/media"
	"github.com/maauso/ffmpeg-service/internal/notify"
	"github.com/maauso/ffmpeg-service/internal/record"
	"github.com/maauso/ffmpeg-service/internal/storage"
)

var (
	// ErrNoOverlay is returned when a watermark job has neither an overlay URL
	// nor a default overlay.
	ErrNoOverlay = errors.New("job: no watermark overlay available")
	// ErrJobPanicked is reported when a job aborts with a panic.
	ErrJobPanicked = errors.New("job: panic during processing")
)

// Workspace owns the temporary files of running jobs.
type Workspace interface {
	TempPath(name, ext string) (string, error)
	CleanupTemp(ctx context.Context, paths []string) error
}

// Fetcher downloads a remote file into the workspace.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (path string, err error)
}

// Uploader publishes processed files. It never fails.
type Uploader interface {
	Upload(ctx context.Context, localPath, owner, folder string) storage.Upload
	Configured() bool
}

// Notifier delivers a completion notification to url.
type Notifier interface {
	Send(ctx context.Context, url string, n notify.Notification) error
}

// EventPublisher receives every terminal notification.
type EventPublisher interface {
	Publish(ctx context.Context, n notify.Notification) error
}

// OverlaySource provides the built-in watermark.
type OverlaySource interface {
	Path() (string, error)
}

// Health describes the readiness of the processing pipeline.
type Health struct {
	FFmpegAvailable   bool
	StorageConfigured bool
	QueuedJobs        int
	RunningJobs       int
}

// Service schedules jobs and runs them in the background.
// Callers never wait for a job; its outcome is reported only through the
// notifier and the event publisher.
type Service struct {
	workspace Workspace
	fetcher   Fetcher
	processor media.Processor
	uploader  Uploader
	records   record.Updater
	notifier  Notifier
	events    EventPublisher
	overlay   OverlaySource
	limiter   *semaphore.Weighted
	registry  *Registry
	logger    *slog.Logger

	wg sync.WaitGroup
}

// ServiceOption is a function that configures a Service.
type ServiceOption func(*Service)

// WithMaxConcurrentJobs bounds the number of jobs running at once.
// Zero or negative keeps jobs unbounded.
func WithMaxConcurrentJobs(n int) ServiceOption {
	return func(s *Service) {
		if n > 0 {
			s.limiter = semaphore.NewWeighted(int64(n))
		}
	}
}

// WithEventPublisher publishes every terminal notification to p.
func WithEventPublisher(p EventPublisher) ServiceOption {
	return func(s *Service) {
		s.events = p
	}
}

// WithDefaultOverlay sets the watermark used when a job has no overlay URL.
func WithDefaultOverlay(o OverlaySource) ServiceOption {
	return func(s *Service) {
		s.overlay = o
	}
}

// NewService creates a new Service.
func NewService(
	workspace Workspace,
	fetcher Fetcher,
	processor media.Processor,
	uploader Uploader,
	records record.Updater,
	notifier Notifier,
	logger *slog.Logger,
	opts ...ServiceOption,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		workspace: workspace,
		fetcher:   fetcher,
		processor: processor,
		uploader:  uploader,
		records:   records,
		notifier:  notifier,
		registry:  NewRegistry(),
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Schedule starts d in the background and returns its processing ID.
// The job outlives ctx; only ctx values are inherited. d must have passed
// Validate.
func (s *Service) Schedule(ctx context.Context, d Descriptor) string {
	processingID := id.Generate()
	s.registry.Add(processingID, d)
	s.wg.Add(1)

	s.logger.Info("job scheduled",
		slog.String("processing_id", processingID),
		slog.String("generation_id", d.GenerationID),
		slog.String("kind", string(d.Kind)),
	)

	go func(ctx context.Context) {
		defer s.wg.Done()
		defer s.registry.Remove(processingID)
		s.run(ctx, processingID, d)
	}(context.WithoutCancel(ctx))

	return processingID
}

// Wait blocks until every scheduled job has finished or ctx is done.
func (s *Service) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("wait for jobs: %w", ctx.Err())
	}
}

// Active returns a snapshot of in-flight jobs.
func (s *Service) Active() []ActiveJob {
	return s.registry.List()
}

// Health reports processor availability, storage configuration and load.
func (s *Service) Health(ctx context.Context) Health {
	queued, running := s.registry.Counts()
	return Health{
		FFmpegAvailable:   s.processor.Available(ctx),
		StorageConfigured: s.uploader.Configured(),
		QueuedJobs:        queued,
		RunningJobs:       running,
	}
}

// Probe downloads url, reads its metadata and removes the download.
func (s *Service) Probe(ctx context.Context, url string) (*media.Metadata, error) {
	src, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch video: %w", err)
	}
	defer s.cleanup(context.WithoutCancel(ctx), "", []string{src})

	md, err := s.processor.Probe(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("probe video: %w", err)
	}
	return md, nil
}

// run executes one job and delivers its outcome.
func (s *Service) run(ctx context.Context, processingID string, d Descriptor) {
	if s.limiter != nil {
		if err := s.limiter.Acquire(ctx, 1); err != nil {
			s.deliver(ctx, d, notify.Failed(d.GenerationID, processingID, err))
			return
		}
		defer s.limiter.Release(1)
	}
	s.registry.Start(processingID)

	start := time.Now()
	n := s.execute(ctx, processingID, d)

	s.logger.Info("job finished",
		slog.String("processing_id", processingID),
		slog.String("kind", string(d.Kind)),
		slog.String("status", string(n.Status)),
		slog.Duration("duration", time.Since(start)),
	)

	s.deliver(ctx, d, n)
}

// execute runs fetch, process, upload and persist. Every file created along
// the way is removed before it returns, including when a step panics.
func (s *Service) execute(ctx context.Context, processingID string, d Descriptor) (n notify.Notification) {
	var artifacts []string

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("job panicked",
				slog.String("processing_id", processingID),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())),
			)
			n = notify.Failed(d.GenerationID, processingID, fmt.Errorf("%w: %v", ErrJobPanicked, r))
		}
		s.cleanup(ctx, processingID, artifacts)
	}()

	result, err := s.process(ctx, d, &artifacts)
	if err != nil {
		s.logger.Error("job failed",
			slog.String("processing_id", processingID),
			slog.String("generation_id", d.GenerationID),
			slog.String("error", err.Error()),
		)
		return notify.Failed(d.GenerationID, processingID, err)
	}
	return notify.Completed(d.GenerationID, processingID, result)
}

func (s *Service) process(ctx context.Context, d Descriptor, artifacts *[]string) (notify.Result, error) {
	src, err := s.fetcher.Fetch(ctx, d.VideoURL)
	if err != nil {
		return notify.Result{}, fmt.Errorf("fetch video: %w", err)
	}
	*artifacts = append(*artifacts, src)

	out, err := s.workspace.TempPath(string(d.Kind), d.Kind.outputExt())
	if err != nil {
		return notify.Result{}, err
	}
	*artifacts = append(*artifacts, out)

	switch d.Kind {
	case KindThumbnail:
		err = s.processor.ExtractThumbnail(ctx, src, out, d.Thumbnail)
	case KindWatermark:
		var overlay string
		overlay, err = s.overlayPath(ctx, d, artifacts)
		if err == nil {
			err = s.processor.AddWatermark(ctx, src, overlay, out, d.Watermark)
		}
	case KindResize:
		err = s.processor.Resize(ctx, src, out, d.Resize)
	default:
		err = fmt.Errorf("%w: %q", ErrInvalidKind, d.Kind)
	}
	if err != nil {
		return notify.Result{}, fmt.Errorf("%s: %w", d.Kind, err)
	}

	up := s.uploader.Upload(ctx, out, d.UserID, d.Kind.Folder()+"/"+d.GenerationID)

	// A local fallback path is useless to other services, so it is not recorded.
	var dbUpdated bool
	if up.Remote {
		dbUpdated = s.records.Update(ctx, d.GenerationID, d.Kind.Column(), up.URL)
	}

	result := notify.Result{DBUpdated: dbUpdated, Uploaded: up.Remote}
	switch d.Kind {
	case KindThumbnail:
		ts := d.Thumbnail.Timestamp
		result.ThumbnailURL = up.URL
		result.Timestamp = &ts
	case KindWatermark:
		result.WatermarkedURL = up.URL
		result.OriginalURL = d.VideoURL
	case KindResize:
		result.ResizedURL = up.URL
		result.OriginalURL = d.VideoURL
		result.Dimensions = dimensions(d.Resize.Width, d.Resize.Height)
		if info, err := os.Stat(out); err == nil {
			result.NewSize = info.Size()
		}
	}
	return result, nil
}

// overlayPath returns the overlay for a watermark job, downloading it when
// the descriptor names one.
func (s *Service) overlayPath(ctx context.Context, d Descriptor, artifacts *[]string) (string, error) {
	if d.OverlayURL != "" {
		p, err := s.fetcher.Fetch(ctx, d.OverlayURL)
		if err != nil {
			return "", fmt.Errorf("fetch overlay: %w", err)
		}
		*artifacts = append(*artifacts, p)
		return p, nil
	}
	if s.overlay == nil {
		return "", ErrNoOverlay
	}
	return s.overlay.Path()
}

// deliver sends the notification when the job asked for one and publishes
// the job event. Delivery errors are logged and dropped.
func (s *Service) deliver(ctx context.Context, d Descriptor, n notify.Notification) {
	if d.NotifyURL != "" {
		if err := s.notifier.Send(ctx, d.NotifyURL, n); err != nil {
			s.logger.Warn("notification failed",
				slog.String("processing_id", n.ProcessingID),
				slog.String("error", err.Error()),
			)
		}
	}

	if s.events != nil {
		if err := s.events.Publish(ctx, n); err != nil {
			s.logger.Warn("job event not published",
				slog.String("processing_id", n.ProcessingID),
				slog.String("error", err.Error()),
			)
		}
	}
}

func (s *Service) cleanup(ctx context.Context, processingID string, paths []string) {
	if len(paths) == 0 {
		return
	}
	if err := s.workspace.CleanupTemp(ctx, paths); err != nil {
		s.logger.Warn("temp cleanup incomplete",
			slog.String("processing_id", processingID),
			slog.String("error", err.Error()),
		)
	}
}

// dimensions formats a resize target, using "auto" for a derived axis.
func dimensions(w, h int) string {
	axis := func(v int) string {
		if v <= 0 {
			return "auto"
		}
		return strconv.Itoa(v)
	}
	return axis(w) + "x" + axis(h)
}
