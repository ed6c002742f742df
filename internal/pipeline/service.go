package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pfrederiksen/covid-jp-sync/internal/article"
	"github.com/pfrederiksen/covid-jp-sync/internal/mhlw"
	"github.com/pfrederiksen/covid-jp-sync/internal/metrics"
	"github.com/pfrederiksen/covid-jp-sync/internal/notifier"
	"github.com/pfrederiksen/covid-jp-sync/internal/patients"
	"github.com/pfrederiksen/covid-jp-sync/internal/scraper"
	"github.com/pfrederiksen/covid-jp-sync/internal/sheet"
	"github.com/pfrederiksen/covid-jp-sync/internal/storage"
)

// Archive kinds.
const (
	KindSummary = "summary"
	KindApply   = "apply"
)

// Job names used for metrics and logs.
const (
	JobSummary  = "summary"
	JobBatch    = "batch"
	JobVerify   = "verify"
	JobPort     = "port"
	JobRecovery = "recoveries"
	JobWatch    = "watch"
)

// Service runs the sync operations against one workbook.
type Service struct {
	backend  sheet.Backend
	scraper  *scraper.Scraper
	mhlw     *mhlw.Client
	writer   *patients.Writer
	notifier notifier.Notifier
	archiver storage.Archiver
	store    *storage.Storage
	logger   *zap.Logger
	metrics  *metrics.Recorder
	now      func() time.Time
	newRunID func() string
}

// Option configures a Service.
type Option func(*Service)

// WithNotifier sets the sink that receives committed write reports.
func WithNotifier(n notifier.Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithArchiver uploads run reports after each summary or apply.
func WithArchiver(a storage.Archiver) Option {
	return func(s *Service) { s.archiver = a }
}

// WithStorage sets the snapshot store used by NewArticles.
func WithStorage(st *storage.Storage) Option {
	return func(s *Service) { s.store = st }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m *metrics.Recorder) Option {
	return func(s *Service) { s.metrics = m }
}

// WithClock replaces time.Now, used to pin "today" in tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New creates a Service. sc and mc default to clients for the live sites
// when nil.
func New(b sheet.Backend, sc *scraper.Scraper, mc *mhlw.Client, opts ...Option) *Service {
	s := &Service{
		backend:  b,
		scraper:  sc,
		mhlw:     mc,
		logger:   zap.NewNop(),
		now:      time.Now,
		newRunID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.scraper == nil {
		s.scraper = scraper.New(scraper.WithLogger(s.logger))
	}
	if s.mhlw == nil {
		s.mhlw = mhlw.New(mhlw.WithLogger(s.logger))
	}
	s.writer = patients.NewWriter(b, s.logger, s.metrics)
	return s
}

// Today returns the current JST date.
func (s *Service) Today() string {
	return article.Today(s.now())
}

// Yesterday returns the JST date before Today.
func (s *Service) Yesterday() string {
	return article.Yesterday(s.now())
}

// Metrics returns the recorder, possibly nil.
func (s *Service) Metrics() *metrics.Recorder {
	return s.metrics
}

// BaseURL is the NHK site articles are resolved against.
func (s *Service) BaseURL() string {
	return s.scraper.BaseURL()
}

// job starts a run and returns its logger. The returned func records the
// job duration.
func (s *Service) job(name string) (*zap.Logger, func(error)) {
	start := time.Now()
	log := s.logger.With(zap.String("job", name), zap.String("run_id", s.newRunID()))
	return log, func(err error) {
		s.metrics.ObserveJob(name, start, err)
		if err != nil {
			log.Error("job failed", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
			return
		}
		log.Debug("job done", zap.Duration("elapsed", time.Since(start)))
	}
}

// archive uploads report when an archiver is configured. Failures are
// logged only.
func (s *Service) archive(ctx context.Context, log *zap.Logger, kind, date string, report any) {
	if s.archiver == nil {
		return
	}
	loc, err := s.archiver.Archive(ctx, kind, date, report)
	if err != nil {
		log.Warn("archiving run report failed", zap.String("kind", kind), zap.Error(err))
		return
	}
	log.Info("run report archived", zap.String("kind", kind), zap.String("location", loc))
}
