package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/pfrederiksen/covid-jp-sync/internal/pipeline"
	"github.com/pfrederiksen/covid-jp-sync/internal/prefecture"
	"github.com/pfrederiksen/covid-jp-sync/internal/scraper"
)

// Event selects and parameterizes one job.
type Event struct {
	Job        string `json:"job"`
	Date       string `json:"date,omitempty"`
	Yesterday  bool   `json:"yesterday,omitempty"`
	Prefecture string `json:"prefecture,omitempty"`
	Commit     bool   `json:"commit,omitempty"`
}

// Response is the Lambda result. Result holds the job's own report.
type Response struct {
	StatusCode int    `json:"statusCode"`
	Job        string `json:"job"`
	Date       string `json:"date,omitempty"`
	Message    string `json:"message"`
	Result     any    `json:"result,omitempty"`
}

func (e Event) date(svc *pipeline.Service) string {
	switch {
	case e.Yesterday:
		return svc.Yesterday()
	case e.Date != "":
		return e.Date
	}
	return svc.Today()
}

func handle(ctx context.Context, svc *pipeline.Service, log *zap.Logger, e Event) (Response, error) {
	resp := Response{StatusCode: 200, Job: e.Job}
	log.Info("Starting job", zap.String("job", e.Job), zap.Bool("commit", e.Commit))

	var err error
	switch e.Job {
	case pipeline.JobSummary:
		resp.Date = e.date(svc)
		var res *pipeline.SummaryResult
		res, err = svc.GetDailySummary(ctx, resp.Date, e.Commit, scraper.DefaultPages)
		if err == nil {
			resp.Result = res
			resp.Message = summaryMessage(res)
		}
	case pipeline.JobBatch:
		resp.Date = e.date(svc)
		pref := e.Prefecture
		if pref != "" {
			var ok bool
			if pref, ok = prefecture.Canonicalize(pref); !ok {
				return Response{StatusCode: 400, Job: e.Job, Message: fmt.Sprintf("unknown prefecture %q", e.Prefecture)}, nil
			}
		}
		_, res, berr := svc.Batch(ctx, resp.Date, pref, e.Commit)
		err = berr
		if err == nil {
			resp.Result = res
			resp.Message = fmt.Sprintf("%s: %d rows", res.Result, len(res.UpdatedRows))
		}
	case pipeline.JobPort:
		var res *pipeline.PortResult
		res, err = svc.UpdatePortQuarantine(ctx, e.Commit)
		if err == nil {
			resp.Result = res
			resp.Message = fmt.Sprintf("%d port quarantine cases", res.Report.Count)
		}
	case pipeline.JobRecovery:
		var res *pipeline.RecoveryResult
		res, err = svc.UpdateRecoveries(ctx, e.Commit)
		if err == nil {
			resp.Result = res
			resp.Message = fmt.Sprintf("%d cells changed", res.Changed)
		}
	case pipeline.JobVerify:
		res, verr := svc.Verify(ctx)
		err = verr
		if err == nil {
			resp.Result = res
			resp.Message = "OK"
			if !res.OK() {
				resp.Message = "problems found"
			}
		}
	default:
		return Response{StatusCode: 400, Job: e.Job, Message: fmt.Sprintf("unknown job %q", e.Job)}, nil
	}

	if err != nil {
		log.Error("Job failed", zap.String("job", e.Job), zap.Error(err))
		return Response{StatusCode: 500, Job: e.Job, Date: resp.Date, Message: err.Error()}, err
	}
	log.Info("Job completed", zap.String("job", e.Job), zap.String("message", resp.Message))
	return resp, nil
}

func summaryMessage(res *pipeline.SummaryResult) string {
	switch {
	case res.Error != "":
		return res.Error
	case len(res.Errors) > 0:
		return fmt.Sprintf("not written: %v", res.Errors)
	case res.WriteStatus != "":
		return "written: " + res.WriteStatus
	}
	return "extracted, not written"
}
