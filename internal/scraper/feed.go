package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"

	"go.uber.org/zap"

	"github.com/pfrederiksen/covid-jp-sync/internal/article"
)

// feedPath is the coronavirus topic listing; the page number is appended
// directly after the 00 prefix.
const feedPath = "/news/json16/word/0000969_00%d.json"

// FeedItem is one entry of the listing as NHK serves it. Link is relative
// to the NHK host.
type FeedItem struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	PubDate string `json:"pubDate"`
}

type feedPage struct {
	Channel struct {
		Item []FeedItem `json:"item"`
	} `json:"channel"`
}

// ClampPages bounds a requested page count to [1, MaxPages], using
// DefaultPages for zero or negative values.
func ClampPages(n int) int {
	if n <= 0 {
		return DefaultPages
	}
	if n > MaxPages {
		return MaxPages
	}
	return n
}

// PageURL returns the URL of listing page (1-based)
func (s *Scraper) PageURL(page int) string {
	return s.baseURL + fmt.Sprintf(feedPath, page)
}

// Pages iterates over the first n listing pages in order, fetching each
// page only when the previous one has been consumed. Iteration stops after
// the first error.
func (s *Scraper) Pages(ctx context.Context, n int) iter.Seq2[[]FeedItem, error] {
	n = ClampPages(n)
	return func(yield func([]FeedItem, error) bool) {
		for page := 1; page <= n; page++ {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}
			items, err := s.fetchPage(ctx, page)
			if err != nil {
				yield(nil, fmt.Errorf("page %d: %w", page, err))
				return
			}
			if !yield(items, nil) {
				return
			}
		}
	}
}

func (s *Scraper) fetchPage(ctx context.Context, page int) ([]FeedItem, error) {
	body, err := s.get(ctx, s.PageURL(page))
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var p feedPage
	if err := json.NewDecoder(body).Decode(&p); err != nil {
		return nil, fmt.Errorf("decoding feed: %w", err)
	}
	s.logger.Debug("Fetched listing page", zap.Int("page", page), zap.Int("items", len(p.Channel.Item)))
	return p.Channel.Item, nil
}

// FetchFeed concatenates the first n listing pages in feed order, most
// recent first.
func (s *Scraper) FetchFeed(ctx context.Context, n int) ([]FeedItem, error) {
	var items []FeedItem
	for page, err := range s.Pages(ctx, n) {
		if err != nil {
			return nil, err
		}
		items = append(items, page...)
	}
	return items, nil
}

// FetchArticles fetches n listing pages and classifies every item. No item
// is dropped; unclassified headlines come back as unstructured articles.
func (s *Scraper) FetchArticles(ctx context.Context, n int) ([]*article.Article, error) {
	items, err := s.FetchFeed(ctx, n)
	if err != nil {
		return nil, err
	}
	return ClassifyAll(items, s.baseURL), nil
}
