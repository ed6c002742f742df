package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pfrederiksen/covid-jp-sync/internal/article"
	"github.com/pfrederiksen/covid-jp-sync/internal/notifier"
	"github.com/pfrederiksen/covid-jp-sync/internal/patients"
	"github.com/pfrederiksen/covid-jp-sync/internal/reconcile"
	"github.com/pfrederiksen/covid-jp-sync/internal/scraper"
)

// snapshotRetention bounds how long seen articles stay in the watch
// snapshot.
const snapshotRetention = 7 * 24 * time.Hour

// ListArticles fetches and classifies the first pages of the listing.
func (s *Service) ListArticles(ctx context.Context, pages int) ([]*article.Article, error) {
	articles, err := s.scraper.FetchArticles(ctx, pages)
	if err != nil {
		return nil, fmt.Errorf("fetching listing: %w", err)
	}
	s.metrics.ArticlesFetched(len(articles))
	return articles, nil
}

// ListRSSArticles classifies the entries of an RSS feed. An empty feedURL
// reads NHK's main news feed.
func (s *Service) ListRSSArticles(ctx context.Context, feedURL string) ([]*article.Article, error) {
	if feedURL == "" {
		feedURL = s.scraper.BaseURL() + scraper.RSSPath
	}
	items, err := s.scraper.FetchRSS(ctx, feedURL)
	if err != nil {
		return nil, fmt.Errorf("fetching rss: %w", err)
	}
	articles := scraper.ClassifyAll(items, s.scraper.BaseURL())
	s.metrics.ArticlesFetched(len(articles))
	return articles, nil
}

// ReconcileUpdates folds the listing's prefecture articles for date into one
// update per prefecture. prefectureFilter, when set, keeps one prefecture.
func (s *Service) ReconcileUpdates(ctx context.Context, date, prefectureFilter string) (article.Updates, error) {
	if _, err := article.ParseDate(date); err != nil {
		return nil, err
	}
	articles, err := s.ListArticles(ctx, scraper.ListPages)
	if err != nil {
		return nil, err
	}
	updates := reconcile.Reconcile(date, articles, prefectureFilter)
	s.logger.Debug("reconciled updates",
		zap.String("date", date),
		zap.String("prefecture", prefectureFilter),
		zap.Int("prefectures", len(updates)))
	return updates, nil
}

// ApplyUpdates writes updates for date to the patient sheets. After a
// commit that changed rows the write report goes to the notifier; a failed
// notification is logged and does not fail the apply.
func (s *Service) ApplyUpdates(ctx context.Context, date string, updates article.Updates, commit bool) (res *patients.Result, err error) {
	log, done := s.job(JobBatch)
	defer func() { done(err) }()

	res, err = s.writer.Apply(ctx, date, updates, commit)
	if err != nil {
		return nil, err
	}
	s.archive(ctx, log, KindApply, date, res)

	if commit && res.Result == patients.ResultUpdated && s.notifier != nil {
		msg := notifier.Report(res.Result, res.Updates())
		if nerr := s.notifier.Notify(ctx, msg); nerr != nil {
			log.Warn("notification failed", zap.Error(nerr))
		}
	}
	return res, nil
}

// Batch reconciles the listing for date and applies the result.
func (s *Service) Batch(ctx context.Context, date, prefectureFilter string, commit bool) (article.Updates, *patients.Result, error) {
	updates, err := s.ReconcileUpdates(ctx, date, prefectureFilter)
	if err != nil {
		return nil, nil, err
	}
	res, err := s.ApplyUpdates(ctx, date, updates, commit)
	if err != nil {
		return updates, nil, err
	}
	return updates, res, nil
}

// NewArticles returns the listing articles not seen by a previous call and
// records them in the snapshot for prefectureFilter ("" for all).
func (s *Service) NewArticles(ctx context.Context, pages int, prefectureFilter string) (res *article.DiffResult, err error) {
	log, done := s.job(JobWatch)
	defer func() { done(err) }()

	if s.store == nil {
		return nil, fmt.Errorf("no snapshot storage configured")
	}
	articles, err := s.ListArticles(ctx, pages)
	if err != nil {
		return nil, err
	}

	snap, err := s.store.LoadSnapshot(prefectureFilter)
	if err != nil {
		return nil, err
	}
	res = article.Diff(snap, articles, prefectureFilter)

	now := s.now()
	cutoff := article.Today(now.Add(-snapshotRetention))
	snap.Merge(articles, now.UTC().Format(time.RFC3339), cutoff)
	if err := s.store.SaveSnapshot(snap, prefectureFilter); err != nil {
		return nil, err
	}

	log.Info("listing checked",
		zap.Int("articles", len(articles)),
		zap.Int("new", len(res.NewArticles)),
		zap.Int("prefectures", len(res.Prefectures)))
	return res, nil
}
