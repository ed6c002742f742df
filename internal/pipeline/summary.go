package pipeline

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/pfrederiksen/covid-jp-sync/internal/article"
	"github.com/pfrederiksen/covid-jp-sync/internal/scraper"
	"github.com/pfrederiksen/covid-jp-sync/internal/summarysheet"
)

// ErrNoSummary is the SummaryResult.Error text when no article qualifies.
const ErrNoSummary = "No summary article found"

// Summary write outcomes.
const (
	OutcomeWritten  = "written"
	OutcomeRejected = "rejected"
	OutcomeDryRun   = "dry_run"
)

// SummaryResult is the outcome of a daily summary run. Counts and Errors
// are returned even when the write was blocked so callers can show what
// was extracted next to what went wrong.
type SummaryResult struct {
	Date        string                `json:"date"`
	URL         string                `json:"url,omitempty"`
	Counts      *article.DailySummary `json:"counts,omitempty"`
	WriteStatus string                `json:"writeStatus"`
	Errors      []string              `json:"errors,omitempty"`
	Missing     []string              `json:"missing,omitempty"`
	Error       string                `json:"error,omitempty"`
}

// GetDailySummary finds the national summary article for date among the
// first pages of the listing, extracts it and, when commit is set and the
// figures validate, writes them to the NHK sheet.
func (s *Service) GetDailySummary(ctx context.Context, date string, commit bool, pages int) (res *SummaryResult, err error) {
	log, done := s.job(JobSummary)
	defer func() { done(err) }()

	if _, err := article.ParseDate(date); err != nil {
		return nil, err
	}

	items, err := s.scraper.FetchFeed(ctx, pages)
	if err != nil {
		return nil, fmt.Errorf("fetching listing: %w", err)
	}
	s.metrics.ArticlesFetched(len(items))

	item, ok := scraper.FindSummaryArticle(items, date)
	if !ok {
		log.Info("no summary article", zap.String("date", date), zap.Int("items", len(items)))
		return &SummaryResult{Date: date, Error: ErrNoSummary}, nil
	}
	return s.summary(ctx, log, date, s.scraper.ResolveLink(item.Link), commit)
}

// SummaryFromURL extracts the summary article at url for date, skipping the
// listing search.
func (s *Service) SummaryFromURL(ctx context.Context, date, url string, commit bool) (res *SummaryResult, err error) {
	log, done := s.job(JobSummary)
	defer func() { done(err) }()

	if _, err := article.ParseDate(date); err != nil {
		return nil, err
	}
	return s.summary(ctx, log, date, url, commit)
}

func (s *Service) summary(ctx context.Context, log *zap.Logger, date, url string, commit bool) (*SummaryResult, error) {
	counts, err := s.scraper.FetchSummary(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetching summary: %w", err)
	}
	counts.Date = date

	res := &SummaryResult{Date: date, URL: url, Counts: counts}
	res.Missing = scraper.MissingFields(counts)
	for _, field := range res.Missing {
		s.metrics.ExtractionMiss(field)
	}

	var verr *article.ValidationError
	if err := counts.Validate(); errors.As(err, &verr) {
		res.Errors = verr.Problems
		s.metrics.SummaryWrite(OutcomeRejected)
		log.Warn("summary rejected",
			zap.String("date", date),
			zap.String("url", url),
			zap.Strings("problems", verr.Problems))
		s.archive(ctx, log, KindSummary, date, res)
		return res, nil
	}

	if !commit {
		s.metrics.SummaryWrite(OutcomeDryRun)
		s.archive(ctx, log, KindSummary, date, res)
		return res, nil
	}

	status, err := summarysheet.Write(ctx, s.backend, date, url, counts.OrderedCounts(), counts.OtherCounts())
	if err != nil {
		return nil, fmt.Errorf("writing summary sheet: %w", err)
	}
	res.WriteStatus = status
	s.metrics.SummaryWrite(OutcomeWritten)
	log.Info("summary written", zap.String("date", date), zap.String("url", url))
	s.archive(ctx, log, KindSummary, date, res)
	return res, nil
}
