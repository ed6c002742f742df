package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/pfrederiksen/covid-jp-sync/internal/article"
	"github.com/pfrederiksen/covid-jp-sync/internal/mhlw"
	"github.com/pfrederiksen/covid-jp-sync/internal/patients"
	"github.com/pfrederiksen/covid-jp-sync/internal/prefecture"
	"github.com/pfrederiksen/covid-jp-sync/internal/verify"
)

// PortResult is the outcome of a port quarantine run.
type PortResult struct {
	Report  *mhlw.PortCases  `json:"report"`
	Updates article.Updates  `json:"updates,omitempty"`
	Write   *patients.Result `json:"write,omitempty"`
}

// UpdatePortQuarantine reads the latest airport quarantine report and, when
// it states a positive count, applies it as the Port Quarantine confirmed
// row for the report date.
func (s *Service) UpdatePortQuarantine(ctx context.Context, commit bool) (res *PortResult, err error) {
	log, done := s.job(JobPort)
	defer func() { done(err) }()

	url, err := s.mhlw.LatestReportURL(ctx, mhlw.PortReport)
	if err != nil {
		return nil, err
	}
	report, err := s.mhlw.PortCaseCount(ctx, url)
	if err != nil {
		return nil, err
	}
	res = &PortResult{Report: report}
	if report.Count <= 0 {
		log.Info("port report has no cases", zap.String("url", url))
		return res, nil
	}

	date := reportDate(report.Date)
	if date == "" {
		return res, fmt.Errorf("port report %s has no usable date %q", url, report.Date)
	}
	res.Updates = article.Updates{
		prefecture.PortQuarantine: {
			Confirmed: &article.Observation{Count: report.Count, Source: url},
		},
	}
	res.Write, err = s.ApplyUpdates(ctx, date, res.Updates, commit)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// reportDate cuts a datetime attribute down to its calendar date.
func reportDate(datetime string) string {
	if len(datetime) < 10 {
		return ""
	}
	if _, err := article.ParseDate(datetime[:10]); err != nil {
		return ""
	}
	return datetime[:10]
}

// RecoveryResult is the outcome of a prefecture table run.
type RecoveryResult struct {
	ReportURL string `json:"reportUrl"`
	TableURL  string `json:"tableUrl"`
	Rows      int    `json:"rows"`
	Changed   int    `json:"changedCells"`
	Committed bool   `json:"committed"`
}

// UpdateRecoveries copies per-prefecture cases and recoveries from the
// latest situation report attachment into Prefecture Data.
func (s *Service) UpdateRecoveries(ctx context.Context, commit bool) (res *RecoveryResult, err error) {
	log, done := s.job(JobRecovery)
	defer func() { done(err) }()

	reportURL, err := s.mhlw.LatestReportURL(ctx, mhlw.SituationReport)
	if err != nil {
		return nil, err
	}
	tableURL, err := s.mhlw.PrefectureTableURL(ctx, reportURL)
	if err != nil {
		return nil, err
	}
	table, err := s.mhlw.FetchPrefectureTable(ctx, tableURL)
	if err != nil {
		return nil, err
	}

	changed, err := mhlw.WritePrefectureData(ctx, s.backend, table, commit)
	if err != nil {
		return nil, err
	}
	log.Info("prefecture data checked",
		zap.String("table", tableURL),
		zap.Int("changed_cells", changed),
		zap.Bool("commit", commit))
	return &RecoveryResult{
		ReportURL: reportURL,
		TableURL:  tableURL,
		Rows:      len(table.Rows),
		Changed:   changed,
		Committed: commit && changed > 0,
	}, nil
}

// Verify checks the workbook against today's JST date.
func (s *Service) Verify(ctx context.Context) (res *verify.Result, err error) {
	log, done := s.job(JobVerify)
	defer func() { done(err) }()

	res, err = verify.Check(ctx, s.backend, s.Today())
	if err != nil {
		return nil, err
	}
	if !res.OK() {
		log.Warn("sheet verification found problems",
			zap.Bool("has_latest_summary", res.HasLatestNhkSummary),
			zap.Int("differences", len(res.HasPrefectureDifferences)),
			zap.Int("negative_active", len(res.HasNegativeActive)))
	}
	return res, nil
}
