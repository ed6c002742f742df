package scraper

import (
	"regexp"
	"strings"

	"github.com/pfrederiksen/covid-jp-sync/internal/article"
	"github.com/pfrederiksen/covid-jp-sync/internal/numeral"
	"github.com/pfrederiksen/covid-jp-sync/internal/prefecture"
)

// Headline patterns are tried in order; the first match's capture wins.
var (
	confirmedPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)([0-9０-９万]+)人感染確認`),
		regexp.MustCompile(`(?i)([0-9０-９万]+)人の感染確認`),
		regexp.MustCompile(`(?i)感染確認([0-9０-９万]+)人`),
	}
	deathPatterns = []*regexp.Regexp{
		regexp.MustCompile(`([0-9０-９万]+)人の死亡確認`),
		regexp.MustCompile(`([0-9０-９万]+)人死亡`),
		regexp.MustCompile(`([0-9０-９万]+)人が死亡`),
	}

	summaryTitlePattern = regexp.MustCompile(`(【国内感染】|【国内】|全国で|全国の感染発表|国内感染確認|国内の新たな感染確認)`)
)

// Classify turns a feed item into an Article. The prefecture is the first
// one named in the title; confirmed and death counts come from the first
// matching headline pattern of each kind.
func Classify(item FeedItem, baseURL string) *article.Article {
	date, _ := article.DateOf(item.PubDate)
	a := article.New(date, item.Title, resolveLink(baseURL, item.Link))

	name, ok := prefecture.Find(item.Title)
	if !ok {
		return a
	}
	a.Prefecture = name
	a.Confirmed = firstCount(confirmedPatterns, item.Title)
	a.Deaths = firstCount(deathPatterns, item.Title)
	return a
}

// ClassifyAll classifies items preserving their order.
func ClassifyAll(items []FeedItem, baseURL string) []*article.Article {
	out := make([]*article.Article, 0, len(items))
	for _, item := range items {
		out = append(out, Classify(item, baseURL))
	}
	return out
}

func firstCount(patterns []*regexp.Regexp, title string) *int {
	for _, p := range patterns {
		m := p.FindStringSubmatch(title)
		if m == nil {
			continue
		}
		n, err := numeral.ParseCount(m[1])
		if err != nil {
			return nil
		}
		return article.Int(n)
	}
	return nil
}

// FindSummaryArticle returns the first item, in feed order, whose link
// carries date (YYYY-MM-DD) as a /YYYYMMDD/ path segment and whose title
// carries one of the national summary markers.
func FindSummaryArticle(items []FeedItem, date string) (FeedItem, bool) {
	segment := "/" + article.CompactDate(date) + "/"
	for _, item := range items {
		if strings.Contains(item.Link, segment) && IsSummaryTitle(item.Title) {
			return item, true
		}
	}
	return FeedItem{}, false
}

// IsSummaryTitle reports whether title carries a national summary marker.
func IsSummaryTitle(title string) bool {
	return summaryTitlePattern.MatchString(title)
}

func resolveLink(baseURL, link string) string {
	if strings.HasPrefix(link, "http://") || strings.HasPrefix(link, "https://") {
		return link
	}
	return strings.TrimRight(baseURL, "/") + link
}

// ResolveLink returns the absolute URL of a listing link.
func (s *Scraper) ResolveLink(link string) string {
	return resolveLink(s.baseURL, link)
}
