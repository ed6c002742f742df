package scraper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

// RSSPath is NHK's main news RSS feed, relative to the base URL. It is
// shallower than the JSON listing but carries the same headlines.
const RSSPath = "/rss/news/cat0.xml"

// FetchRSS reads an RSS or Atom feed and maps its entries into FeedItems,
// so they can go through the same classifier as the JSON listing.
func (s *Scraper) FetchRSS(ctx context.Context, url string) ([]FeedItem, error) {
	body, err := s.get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	fp := gofeed.NewParser()
	feed, err := fp.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("RSS parse failed: %w", err)
	}

	items := make([]FeedItem, 0, len(feed.Items))
	for _, it := range feed.Items {
		title := strings.TrimSpace(it.Title)
		if title == "" {
			continue
		}
		pub := it.Published
		if it.PublishedParsed != nil {
			pub = it.PublishedParsed.Format(time.RFC1123Z)
		}
		items = append(items, FeedItem{
			Title:   title,
			Link:    strings.TrimSpace(it.Link),
			PubDate: pub,
		})
	}
	return items, nil
}
