package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pfrederiksen/covid-jp-sync/internal/article"
)

// SortOrder represents the available sorting options
type SortOrder string

const (
	SortNone         SortOrder = ""
	SortByDate       SortOrder = "date"
	SortByPrefecture SortOrder = "prefecture"
	SortByTitle      SortOrder = "title"
)

// sortArticles sorts articles in place. Ties keep feed order.
func sortArticles(articles []*article.Article, sortOrder SortOrder) error {
	switch sortOrder {
	case SortNone:
	case SortByDate:
		sort.SliceStable(articles, func(i, j int) bool {
			return compareByDate(articles[i], articles[j])
		})
	case SortByPrefecture:
		sort.SliceStable(articles, func(i, j int) bool {
			pi, pj := articles[i].Prefecture, articles[j].Prefecture
			if pi != pj {
				// Unstructured articles go last
				if pi == "" || pj == "" {
					return pj == ""
				}
				return pi < pj
			}
			// If prefectures are equal, sort by date
			return compareByDate(articles[i], articles[j])
		})
	case SortByTitle:
		sort.SliceStable(articles, func(i, j int) bool {
			if articles[i].Title != articles[j].Title {
				return strings.ToLower(articles[i].Title) < strings.ToLower(articles[j].Title)
			}
			return compareByDate(articles[i], articles[j])
		})
	default:
		return fmt.Errorf("invalid sort: %s (must be date, prefecture or title)", sortOrder)
	}
	return nil
}

// compareByDate puts newer articles first; articles without a date go
// last.
func compareByDate(i, j *article.Article) bool {
	if i.Date == "" || j.Date == "" {
		return i.Date != "" && j.Date == ""
	}
	return i.Date > j.Date
}
