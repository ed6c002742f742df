// Package reconcile folds classified articles into one update per
// prefecture and metric.
package reconcile

import (
	"strings"

	"github.com/pfrederiksen/covid-jp-sync/internal/article"
)

// Reconcile filters articles to date and, when prefectureFilter is not
// empty, to that prefecture (case-insensitive). For every prefecture and
// metric it keeps the observation with the largest count; a later article
// replaces the held one only when its count is strictly greater, so ties
// keep the first observation in input order.
//
// Intraday cumulative counts only revise upward, which is why magnitude and
// not publication time decides. Prefectures without any observation are
// left out of the result.
func Reconcile(date string, articles []*article.Article, prefectureFilter string) article.Updates {
	updates := make(article.Updates)

	for _, a := range articles {
		if a == nil || a.Date != date || !a.Structured() {
			continue
		}
		if prefectureFilter != "" && !strings.EqualFold(a.Prefecture, prefectureFilter) {
			continue
		}

		confirmed := article.Value(a.Confirmed)
		deaths := article.Value(a.Deaths)
		if confirmed <= 0 && deaths <= 0 {
			continue
		}

		upd := updates[a.Prefecture]
		if upd == nil {
			upd = &article.PrefectureUpdate{}
			updates[a.Prefecture] = upd
		}

		if confirmed > 0 && (upd.Confirmed == nil || confirmed > upd.Confirmed.Count) {
			upd.Confirmed = observation(a, confirmed)
		}
		if deaths > 0 && (upd.Deceased == nil || deaths > upd.Deceased.Count) {
			upd.Deceased = observation(a, deaths)
		}
	}

	return updates
}

func observation(a *article.Article, count int) *article.Observation {
	return &article.Observation{
		Count:  count,
		Source: a.Source,
		Title:  a.Title,
	}
}

// Filter returns the articles published on date, optionally restricted to
// one prefecture. Unstructured articles are kept unless a prefecture is
// given, matching the article listing.
func Filter(articles []*article.Article, date, prefectureFilter string) []*article.Article {
	out := make([]*article.Article, 0, len(articles))
	for _, a := range articles {
		if date != "" && a.Date != date {
			continue
		}
		if prefectureFilter != "" && a.Structured() && !strings.EqualFold(a.Prefecture, prefectureFilter) {
			continue
		}
		out = append(out, a)
	}
	return out
}
