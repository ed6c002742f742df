package mhlw

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"

	"github.com/pfrederiksen/covid-jp-sync/internal/numeral"
	"github.com/pfrederiksen/covid-jp-sync/internal/prefecture"
)

// Link text prefixes of the per-prefecture attachment.
var prefectureTableLinks = []string{"別紙１", "各都道府県の検査陽性者の状況"}

// ErrIncompleteTable is returned when fewer than 47 prefectures were read.
var ErrIncompleteTable = errors.New("prefecture table is incomplete")

var (
	footnotePattern = regexp.MustCompile(`※\d`)
	numberPattern   = regexp.MustCompile(`\d[\d,]*`)
)

// Layout gives the positions of the wanted figures among the numbers that
// follow a prefecture name in the table.
type Layout struct {
	Cases      int
	Recoveries int
}

// DefaultLayout matches the attachment as published: tests, cases, then
// five more columns up to discharged patients.
var DefaultLayout = Layout{Cases: 1, Recoveries: 6}

// PrefectureRow is one row of the attachment.
type PrefectureRow struct {
	Prefecture string `json:"prefecture"`
	Cases      int    `json:"cases"`
	Recoveries int    `json:"recoveries"`
}

// PrefectureTable is the parsed attachment.
type PrefectureTable struct {
	URL  string          `json:"url"`
	Rows []PrefectureRow `json:"rows"`
}

// Complete reports whether every prefecture has a row.
func (t *PrefectureTable) Complete() bool {
	return len(t.Rows) == prefecture.Count
}

// Ordered returns cases and recoveries in prefecture.Names order. Missing
// prefectures are zero.
func (t *PrefectureTable) Ordered() (cases, recoveries []int) {
	byName := make(map[string]PrefectureRow, len(t.Rows))
	for _, r := range t.Rows {
		byName[r.Prefecture] = r
	}
	names := prefecture.Names()
	cases = make([]int, len(names))
	recoveries = make([]int, len(names))
	for i, name := range names {
		cases[i] = byName[name].Cases
		recoveries[i] = byName[name].Recoveries
	}
	return cases, recoveries
}

// PrefectureTableURL returns the attachment link of a situation report.
// The last matching link on the page wins.
func (c *Client) PrefectureTableURL(ctx context.Context, reportURL string) (string, error) {
	doc, err := c.document(ctx, reportURL)
	if err != nil {
		return "", err
	}
	var href string
	doc.Find("a").Each(func(_ int, a *goquery.Selection) {
		text := strings.TrimSpace(a.Text())
		for _, prefix := range prefectureTableLinks {
			if strings.HasPrefix(text, prefix) {
				if h, ok := a.Attr("href"); ok {
					href = h
				}
			}
		}
	})
	if href == "" {
		return "", fmt.Errorf("prefecture table: %w", ErrReportNotFound)
	}
	return resolve(reportURL, href)
}

// FetchPrefectureTable downloads and parses the attachment at pdfURL.
func (c *Client) FetchPrefectureTable(ctx context.Context, pdfURL string) (*PrefectureTable, error) {
	body, err := c.get(ctx, pdfURL)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF: %w", err)
	}
	text, err := PDFText(data)
	if err != nil {
		return nil, err
	}

	table, err := ParsePrefectureTable(text, DefaultLayout)
	if table != nil {
		table.URL = pdfURL
		c.logger.Debug("Parsed prefecture table",
			zap.String("url", pdfURL),
			zap.Int("rows", len(table.Rows)))
	}
	return table, err
}

// PDFText returns the plain text of every page of a PDF document.
func PDFText(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to parse PDF: %w", err)
	}

	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(text)
		b.WriteString("\n")
	}
	return b.String(), nil
}

// ParsePrefectureTable reads the first row of each prefecture from the
// attachment text. A row runs from a prefecture name to the next one.
// ErrIncompleteTable is returned along with the rows found when any
// prefecture is missing.
func ParsePrefectureTable(text string, layout Layout) (*PrefectureTable, error) {
	text = numeral.NormalizeWidth(text)
	matches := prefecture.Pattern().FindAllStringSubmatchIndex(text, -1)

	table := &PrefectureTable{}
	seen := make(map[string]bool)
	for i, m := range matches {
		name, ok := prefecture.Lookup(text[m[2]:m[3]])
		if !ok || seen[name] {
			continue
		}
		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		row := footnotePattern.ReplaceAllString(text[m[1]:end], "")
		nums := numberPattern.FindAllString(row, -1)
		if len(nums) <= max(layout.Cases, layout.Recoveries) {
			continue
		}

		seen[name] = true
		table.Rows = append(table.Rows, PrefectureRow{
			Prefecture: name,
			Cases:      atoi(nums[layout.Cases]),
			Recoveries: atoi(nums[layout.Recoveries]),
		})
	}

	if !table.Complete() {
		return table, fmt.Errorf("%d of %d prefectures: %w", len(table.Rows), prefecture.Count, ErrIncompleteTable)
	}
	return table, nil
}

func atoi(s string) int {
	n, _ := strconv.Atoi(strings.ReplaceAll(s, ",", ""))
	return n
}
