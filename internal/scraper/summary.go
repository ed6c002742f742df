package scraper

import (
	"context"
	"fmt"
	"io"
	"regexp"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/pfrederiksen/covid-jp-sync/internal/article"
	"github.com/pfrederiksen/covid-jp-sync/internal/numeral"
	"github.com/pfrederiksen/covid-jp-sync/internal/prefecture"
)

// MainContentSelector is the article body region of an NHK news page.
const MainContentSelector = "section.content--detail-main"

// countClass matches a count expression, including full-width digits, the
// 万 unit and group separators.
const countClass = `([0-9０-９万,，]+)`

// Summary fields, used for logging and metrics of extraction misses.
const (
	FieldPortQuarantine = "portQuarantineCount"
	FieldTotal          = "totalCount"
	FieldDeceased       = "deceased"
	FieldCritical       = "critical"
	FieldRecoveredJapan = "recoveredJapan"
	FieldRecoveredTotal = "recoveredTotal"
)

type aggregatePattern struct {
	field string
	re    *regexp.Regexp
	group int
	set   func(s *article.DailySummary, n int)
}

var (
	prefecturePatterns = compilePrefecturePatterns()

	aggregatePatterns = []aggregatePattern{
		{
			field: FieldPortQuarantine,
			re:    regexp.MustCompile(`(?i)空港の検疫で.*?` + countClass + `人`),
			group: 1,
			set:   func(s *article.DailySummary, n int) { s.PortQuarantineCount = article.Int(n) },
		},
		{
			field: FieldTotal,
			re:    regexp.MustCompile(`(?i)日本で感染が確認された人は.*?` + countClass + `人`),
			group: 1,
			set:   func(s *article.DailySummary, n int) { s.TotalCount = article.Int(n) },
		},
		{
			field: FieldDeceased,
			re:    regexp.MustCompile(`(?i)亡くなった人は.*国内で感染した人が` + countClass + `人`),
			group: 1,
			set:   func(s *article.DailySummary, n int) { s.Deceased = article.Int(n) },
		},
		{
			field: FieldCritical,
			re:    regexp.MustCompile(`(?i)重症者は.*?` + countClass + `人`),
			group: 1,
			set:   func(s *article.DailySummary, n int) { s.Critical = article.Int(n) },
		},
		{
			field: FieldRecoveredJapan,
			re:    regexp.MustCompile(`(?i)症状が改善して退院した.*国内で感染した人が` + countClass + `人`),
			group: 1,
			set:   func(s *article.DailySummary, n int) { s.RecoveredJapan = article.Int(n) },
		},
		{
			// The second capture is the grand total including cruise ship cases.
			field: FieldRecoveredTotal,
			re:    regexp.MustCompile(`(?i)症状が改善して退院した.*クルーズ船の乗客・乗員が` + countClass + `人.*合わせて` + countClass),
			group: 2,
			set:   func(s *article.DailySummary, n int) { s.RecoveredTotal = article.Int(n) },
		},
	}
)

type prefecturePattern struct {
	name string // long Japanese name
	re   *regexp.Regexp
}

func compilePrefecturePatterns() []prefecturePattern {
	out := make([]prefecturePattern, 0, prefecture.Count)
	for _, en := range prefecture.Names() {
		ja, _ := prefecture.LongName(en)
		out = append(out, prefecturePattern{
			name: ja,
			re:   regexp.MustCompile(`(?i)` + regexp.QuoteMeta(ja) + `は[※]?` + countClass + `人`),
		})
	}
	return out
}

// ExtractSummary applies every summary pattern to text. Patterns do not
// short-circuit each other; a pattern that does not match leaves its field
// absent. When a prefecture is mentioned several times the last figure wins.
func ExtractSummary(text string) *article.DailySummary {
	s := article.NewDailySummary("")

	for _, p := range prefecturePatterns {
		for _, m := range p.re.FindAllStringSubmatch(text, -1) {
			if n, err := numeral.ParseCount(m[1]); err == nil {
				s.PrefectureCounts[p.name] = n
			}
		}
	}

	for _, p := range aggregatePatterns {
		m := p.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if n, err := numeral.ParseCount(m[p.group]); err == nil {
			p.set(s, n)
		}
	}

	return s
}

// MissingFields lists the aggregate fields ExtractSummary left absent.
func MissingFields(s *article.DailySummary) []string {
	var missing []string
	check := func(field string, v *int) {
		if v == nil {
			missing = append(missing, field)
		}
	}
	check(FieldPortQuarantine, s.PortQuarantineCount)
	check(FieldTotal, s.TotalCount)
	check(FieldDeceased, s.Deceased)
	check(FieldCritical, s.Critical)
	check(FieldRecoveredJapan, s.RecoveredJapan)
	check(FieldRecoveredTotal, s.RecoveredTotal)
	return missing
}

// MainContent returns the text of the article body region of an NHK page.
func MainContent(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", fmt.Errorf("parsing HTML: %w", err)
	}
	return doc.Find(MainContentSelector).Text(), nil
}

// FetchSummary fetches a summary article and extracts its figures.
func (s *Scraper) FetchSummary(ctx context.Context, url string) (*article.DailySummary, error) {
	body, err := s.get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	text, err := MainContent(body)
	if err != nil {
		return nil, err
	}

	summary := ExtractSummary(text)
	s.logger.Debug("Extracted summary",
		zap.String("url", url),
		zap.Int("prefectures", len(summary.PrefectureCounts)),
		zap.Strings("missing", MissingFields(summary)),
	)
	return summary, nil
}
