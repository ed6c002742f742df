// Package app builds a pipeline.Service from configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"go.uber.org/zap"

	"github.com/pfrederiksen/covid-jp-sync/internal/config"
	"github.com/pfrederiksen/covid-jp-sync/internal/metrics"
	"github.com/pfrederiksen/covid-jp-sync/internal/mhlw"
	"github.com/pfrederiksen/covid-jp-sync/internal/notifier"
	"github.com/pfrederiksen/covid-jp-sync/internal/patients"
	"github.com/pfrederiksen/covid-jp-sync/internal/pipeline"
	"github.com/pfrederiksen/covid-jp-sync/internal/scraper"
	"github.com/pfrederiksen/covid-jp-sync/internal/sheet"
	"github.com/pfrederiksen/covid-jp-sync/internal/sheet/googlesheets"
	"github.com/pfrederiksen/covid-jp-sync/internal/sheet/sqlitesheet"
	"github.com/pfrederiksen/covid-jp-sync/internal/storage"
	"github.com/pfrederiksen/covid-jp-sync/internal/summarysheet"
	"github.com/pfrederiksen/covid-jp-sync/internal/verify"
)

// Sizes of the sheets created in local workbooks.
const (
	patientRows = 1000
	patientCols = 14
	summaryRows = 60
	summaryCols = 9
	dataRows    = 50
	dataCols    = 13
)

// App holds a built service and what must be released with it.
type App struct {
	Service *pipeline.Service
	Metrics *metrics.Recorder
	Backend sheet.Backend

	closers []func() error
}

// Close releases the backend.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// Build wires the backend, clients, notifier, snapshot storage and archive
// selected by cfg.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &App{Metrics: metrics.New()}

	backend, closer, err := Backend(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.Backend = backend
	if closer != nil {
		a.closers = append(a.closers, closer)
	}

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	scOpts := []scraper.Option{
		scraper.WithHTTPClient(httpClient),
		scraper.WithBaseURL(cfg.NHKBaseURL),
		scraper.WithLogger(logger),
	}
	mhOpts := []mhlw.Option{
		mhlw.WithHTTPClient(httpClient),
		mhlw.WithIndexURL(cfg.MHLWIndexURL),
		mhlw.WithLogger(logger),
	}
	if cfg.UserAgent != "" {
		scOpts = append(scOpts, scraper.WithUserAgent(cfg.UserAgent))
		mhOpts = append(mhOpts, mhlw.WithUserAgent(cfg.UserAgent))
	}

	opts := []pipeline.Option{
		pipeline.WithLogger(logger),
		pipeline.WithMetrics(a.Metrics),
	}

	n, err := Notifier(cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	if n != nil {
		opts = append(opts, pipeline.WithNotifier(n))
	}

	if cfg.DataDir != "" {
		store, err := storage.New(cfg.DataDir)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("initializing storage: %w", err)
		}
		opts = append(opts, pipeline.WithStorage(store))
	}

	if cfg.ArchiveEnabled() {
		client, err := storage.NewS3Client(ctx, storage.S3Config{
			Region:   cfg.ArchiveS3Region,
			Endpoint: cfg.ArchiveS3Endpoint,
			Key:      cfg.ArchiveS3Key,
			Secret:   cfg.ArchiveS3Secret,
		})
		if err != nil {
			a.Close()
			return nil, err
		}
		opts = append(opts, pipeline.WithArchiver(storage.NewS3Archive(client, cfg.ArchiveS3Bucket, cfg.ArchiveS3Prefix)))
	}

	a.Service = pipeline.New(backend, scraper.New(scOpts...), mhlw.New(mhOpts...), opts...)
	return a, nil
}

// Backend opens the workbook selected by cfg. The returned func, when not
// nil, closes it.
func Backend(ctx context.Context, cfg *config.Config) (sheet.Backend, func() error, error) {
	switch cfg.Backend {
	case config.BackendGoogle:
		creds, err := cfg.Credentials()
		if err != nil {
			return nil, nil, err
		}
		c, err := googlesheets.NewWithCredentials(ctx, cfg.SpreadsheetID, creds)
		if err != nil {
			return nil, nil, err
		}
		return c, nil, nil
	case config.BackendSQLite:
		store, err := sqlitesheet.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		if err := CreateLayout(ctx, store); err != nil {
			store.Close()
			return nil, nil, err
		}
		return store, store.Close, nil
	case config.BackendMemory:
		m := sheet.NewMemory()
		if err := CreateLayout(ctx, m); err != nil {
			return nil, nil, err
		}
		return m, nil, nil
	default:
		return nil, nil, fmt.Errorf("invalid SHEET_BACKEND %q", cfg.Backend)
	}
}

// CreateLayout creates every sheet the pipeline reads and writes. It is
// only used for local workbooks.
func CreateLayout(ctx context.Context, c sheet.Creator) error {
	create := func(title string, rows, cols int) error {
		if err := c.CreateSheet(ctx, title, rows, cols); err != nil {
			return fmt.Errorf("creating sheet %q: %w", title, err)
		}
		return nil
	}
	for _, title := range append([]string{patients.DefaultSheet}, patients.Tabs...) {
		if err := create(title, patientRows, patientCols); err != nil {
			return err
		}
	}
	if err := create(summarysheet.Title, summaryRows, summaryCols); err != nil {
		return err
	}
	return create(verify.PrefectureDataTitle, dataRows, dataCols)
}

// Notifier returns the notification sink selected by cfg, or nil.
func Notifier(cfg *config.Config) (notifier.Notifier, error) {
	switch cfg.Notifier {
	case config.NotifierTelegram:
		return notifier.NewTelegramNotifier(cfg.TelegramBotToken, cfg.TelegramChatID)
	case config.NotifierTwitter:
		return notifier.NewTwitterNotifier(notifier.TwitterCredentials{
			APIKey:       cfg.TwitterAPIKey,
			APISecret:    cfg.TwitterAPISecret,
			AccessToken:  cfg.TwitterAccessToken,
			AccessSecret: cfg.TwitterAccessSecret,
		}, nil)
	case config.NotifierDryRun:
		return notifier.NewDryRunNotifier(os.Stderr), nil
	default:
		return nil, nil
	}
}
