package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/pfrederiksen/covid-jp-sync/internal/article"
	"github.com/pfrederiksen/covid-jp-sync/internal/patients"
	"github.com/pfrederiksen/covid-jp-sync/internal/pipeline"
	"github.com/pfrederiksen/covid-jp-sync/internal/prefecture"
	"github.com/pfrederiksen/covid-jp-sync/internal/verify"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// ArticleList is the output of nhk --list
type ArticleList struct {
	Date     string             `json:"date,omitempty"`
	Articles []*article.Article `json:"articles"`
}

// BatchResult is the output of nhk-batch
type BatchResult struct {
	Date    string           `json:"date"`
	Updates article.Updates  `json:"updates"`
	Write   *patients.Result `json:"write"`
}

// WatchResult contains the new articles found by watch
type WatchResult struct {
	CheckedAt    time.Time                     `json:"checked_at"`
	Prefectures  []string                      `json:"prefectures"`
	NewArticles  []*article.Article            `json:"new_articles"`
	ArticleCount int                           `json:"article_count"`
	ByPrefecture map[string][]*article.Article `json:"by_prefecture,omitempty"`
}

func newWatchResult(diff *article.DiffResult, pref string) *WatchResult {
	result := &WatchResult{
		CheckedAt:    time.Now().UTC(),
		NewArticles:  diff.NewArticles,
		ArticleCount: len(diff.NewArticles),
		ByPrefecture: diff.Prefectures,
	}
	if pref != "" {
		result.Prefectures = []string{pref}
		return result
	}
	result.Prefectures = make([]string, 0, len(diff.Prefectures))
	for p := range diff.Prefectures {
		result.Prefectures = append(result.Prefectures, p)
	}
	sort.Strings(result.Prefectures)
	return result
}

// WriteOutput writes the result in the specified format
func WriteOutput(w io.Writer, result any, format OutputFormat, verbose bool) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		return writeText(w, result, verbose)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs results as JSON
func writeJSON(w io.Writer, result any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// writeText outputs results as human-readable text
func writeText(w io.Writer, result any, verbose bool) error {
	switch r := result.(type) {
	case *pipeline.SummaryResult:
		writeSummary(w, r, verbose)
	case *ArticleList:
		for _, a := range r.Articles {
			writeArticle(w, "", a, verbose)
		}
		fmt.Fprintf(w, "\nTotal: %d articles\n", len(r.Articles))
	case *BatchResult:
		writeUpdates(w, r.Updates)
		writePatientResult(w, r.Write, verbose)
	case *WatchResult:
		writeWatch(w, r, verbose)
	case *verify.Result:
		writeVerify(w, r)
	case *pipeline.PortResult:
		fmt.Fprintf(w, "Report: %s\n", r.Report.URL)
		fmt.Fprintf(w, "Date: %s\n", r.Report.Date)
		fmt.Fprintf(w, "Port quarantine cases: %d\n", r.Report.Count)
		if verbose && r.Report.Header != "" {
			fmt.Fprintf(w, "Header: %s\n", r.Report.Header)
		}
		if r.Write != nil {
			writePatientResult(w, r.Write, verbose)
		}
	case *pipeline.RecoveryResult:
		fmt.Fprintf(w, "Report: %s\n", r.ReportURL)
		fmt.Fprintf(w, "Table: %s\n", r.TableURL)
		fmt.Fprintf(w, "Prefectures: %d\n", r.Rows)
		status := "not written"
		if r.Committed {
			status = "written"
		}
		fmt.Fprintf(w, "Changed cells: %d (%s)\n", r.Changed, status)
	default:
		return writeJSON(w, result)
	}
	return nil
}

func writeSummary(w io.Writer, r *pipeline.SummaryResult, verbose bool) {
	fmt.Fprintf(w, "Date: %s\n", r.Date)
	if r.Error != "" {
		fmt.Fprintf(w, "Error: %s\n", r.Error)
		return
	}
	fmt.Fprintf(w, "URL: %s\n", r.URL)
	if c := r.Counts; c != nil {
		fmt.Fprintf(w, "Prefectures: %d/%d\n", len(c.English()), prefecture.Count)
		fmt.Fprintf(w, "Port quarantine: %s\n", optional(c.PortQuarantineCount))
		fmt.Fprintf(w, "Total: %s\n", optional(c.TotalCount))
		fmt.Fprintf(w, "Deceased: %s\n", optional(c.Deceased))
		fmt.Fprintf(w, "Critical: %s\n", optional(c.Critical))
		fmt.Fprintf(w, "Recovered (Japan): %s\n", optional(c.RecoveredJapan))
		fmt.Fprintf(w, "Recovered (total): %s\n", optional(c.RecoveredTotal))
		if verbose {
			counts := c.English()
			for _, name := range prefecture.Names() {
				fmt.Fprintf(w, "  %-10s %d\n", name, counts[name])
			}
		}
	}
	if len(r.Errors) > 0 {
		fmt.Fprintf(w, "Problems: %s\n", strings.Join(r.Errors, "; "))
	}
	if r.WriteStatus != "" {
		fmt.Fprintf(w, "Write: %s\n", r.WriteStatus)
	} else {
		fmt.Fprintln(w, "Write: not written")
	}
}

func optional(p *int) string {
	if p == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *p)
}

// writeRawValues prints the 47 prefecture counts and the 5 auxiliary
// counts in sheet row order, one per line, ready to paste into a column.
func writeRawValues(w io.Writer, c *article.DailySummary) error {
	for _, n := range c.OrderedCounts() {
		if _, err := fmt.Fprintln(w, n); err != nil {
			return err
		}
	}
	for _, n := range c.OtherCounts() {
		if _, err := fmt.Fprintln(w, n); err != nil {
			return err
		}
	}
	return nil
}

func writeArticle(w io.Writer, indent string, a *article.Article, verbose bool) {
	fmt.Fprintf(w, "%s%s %s %s %s %s\n", indent, a.Date, orDash(a.Prefecture), a.Title, optional(a.Confirmed), optional(a.Deaths))
	if verbose {
		fmt.Fprintf(w, "%s     ID: %s\n", indent, a.ID)
		fmt.Fprintf(w, "%s     Source: %s\n", indent, a.Source)
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func writeUpdates(w io.Writer, updates article.Updates) {
	if updates.Empty() {
		fmt.Fprintln(w, "No updates found.")
		return
	}
	for _, name := range updates.Prefectures() {
		u := updates[name]
		if u.Confirmed != nil {
			fmt.Fprintf(w, "%s: %d cases (%s)\n", name, u.Confirmed.Count, u.Confirmed.Source)
		}
		if u.Deceased != nil {
			fmt.Fprintf(w, "%s: %d deaths (%s)\n", name, u.Deceased.Count, u.Deceased.Source)
		}
	}
}

func writePatientResult(w io.Writer, r *patients.Result, verbose bool) {
	fmt.Fprintf(w, "\nResult: %s\n", r.Result)
	for _, u := range r.UpdatedRows {
		switch {
		case u.Deceased != nil:
			fmt.Fprintf(w, "  %s!%d %s deaths %d\n", u.Sheet, u.Row+1, u.Prefecture, u.Deceased.Count)
		case u.Confirmed != nil:
			fmt.Fprintf(w, "  %s!%d %s cases %d\n", u.Sheet, u.Row+1, u.Prefecture, u.Confirmed.Count)
		}
	}
	if !verbose || len(r.Pending) == 0 {
		return
	}
	titles := make([]string, 0, len(r.Pending))
	for title := range r.Pending {
		titles = append(titles, title)
	}
	sort.Strings(titles)
	for _, title := range titles {
		fmt.Fprintf(w, "Pending %s (%d cells):\n", title, len(r.Pending[title]))
		for _, c := range r.Pending[title] {
			fmt.Fprintf(w, "  R%dC%d = %s\n", c.Pos.Row+1, c.Pos.Col+1, c.Cell)
		}
	}
}

func writeWatch(w io.Writer, result *WatchResult, verbose bool) {
	if result.ArticleCount == 0 {
		fmt.Fprintln(w, "No new articles found.")
		return
	}

	if len(result.ByPrefecture) > 0 {
		for _, p := range result.Prefectures {
			articles := result.ByPrefecture[p]
			if len(articles) == 0 {
				continue
			}
			fmt.Fprintf(w, "\n%s (%d new):\n", p, len(articles))
			for _, a := range articles {
				writeArticle(w, "  NEW: ", a, verbose)
			}
		}
	}
	fmt.Fprintf(w, "\nTotal: %d new across %d prefectures\n", result.ArticleCount, len(result.ByPrefecture))
}

func writeVerify(w io.Writer, r *verify.Result) {
	fmt.Fprintf(w, "Date: %s\n", r.Date)
	fmt.Fprintf(w, "Latest NHK summary: %t\n", r.HasLatestNhkSummary)
	for _, d := range r.HasPrefectureDifferences {
		fmt.Fprintf(w, "  %s: ours %s, NHK %s\n", d.Prefecture, d.OurValue, d.NHKValue)
	}
	for _, n := range r.HasNegativeActive {
		fmt.Fprintf(w, "  %s: active %g\n", n.Prefecture, n.ActiveValue)
	}
	if r.OK() {
		fmt.Fprintln(w, "OK")
	}
}
