package mhlw

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// ErrReportNotFound is returned when the index page has no matching link.
var ErrReportNotFound = errors.New("report not found")

var (
	symptomaticPattern  = regexp.MustCompile(`検疫により新型コロナウイルスの患者(\d+)名`)
	asymptomaticPattern = regexp.MustCompile(`無症状病原体保有者(\d+)名`)
)

// PortCases is the airport quarantine count of one report.
type PortCases struct {
	Date   string `json:"date"`
	URL    string `json:"url"`
	Count  int    `json:"count"`
	Header string `json:"header,omitempty"`
}

// LatestReportURL returns the first link on the index page whose text
// contains linkText, resolved against the index URL.
func (c *Client) LatestReportURL(ctx context.Context, linkText string) (string, error) {
	doc, err := c.document(ctx, c.indexURL)
	if err != nil {
		return "", err
	}
	href, ok := findLink(doc, func(text string) bool {
		return strings.Contains(text, linkText)
	})
	if !ok {
		return "", fmt.Errorf("%s: %w", linkText, ErrReportNotFound)
	}
	return resolve(c.indexURL, href)
}

// PortCaseCount reads a port quarantine report. The count is the sum of
// patients and asymptomatic carriers stated above the first table, or the
// number of table rows when there is no such text.
func (c *Client) PortCaseCount(ctx context.Context, reportURL string) (*PortCases, error) {
	doc, err := c.document(ctx, reportURL)
	if err != nil {
		return nil, err
	}
	res := ParsePortReport(doc)
	res.URL = reportURL
	c.logger.Debug("Parsed port report",
		zap.String("url", reportURL),
		zap.String("date", res.Date),
		zap.Int("count", res.Count))
	return res, nil
}

// ParsePortReport extracts the report date and case count from a parsed
// report page.
func ParsePortReport(doc *goquery.Document) *PortCases {
	res := &PortCases{}
	res.Date, _ = doc.Find("time").First().Attr("datetime")

	table := doc.Find(".m-grid__col1").Find("table").First()
	// The description is the first node of the element wrapping the table.
	if first := table.Parent().Contents().First(); !first.Is("table") {
		res.Header = strings.TrimSpace(first.Text())
	}

	if res.Header == "" {
		if rows := table.Find("tr").Length(); rows > 0 {
			res.Count = rows - 1
		}
		return res
	}
	for _, re := range []*regexp.Regexp{symptomaticPattern, asymptomaticPattern} {
		if m := re.FindStringSubmatch(res.Header); m != nil {
			n, _ := strconv.Atoi(m[1])
			res.Count += n
		}
	}
	return res
}

func (c *Client) document(ctx context.Context, u string) (*goquery.Document, error) {
	body, err := c.get(ctx, u)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", u, err)
	}
	return doc, nil
}

func findLink(doc *goquery.Document, match func(text string) bool) (string, bool) {
	var href string
	doc.Find("a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		h, ok := a.Attr("href")
		if !ok || !match(a.Text()) {
			return true
		}
		href = h
		return false
	})
	return href, href != ""
}

func resolve(base, href string) (string, error) {
	b, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parsing %s: %w", base, err)
	}
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", fmt.Errorf("parsing link %q: %w", href, err)
	}
	return b.ResolveReference(ref).String(), nil
}
