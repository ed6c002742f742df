package article

import (
	"sort"
	"strings"
)

// Snapshot represents the articles seen by the watch job at a point in time
type Snapshot struct {
	Articles  map[string]*Article `json:"articles"`   // keyed by Article.ID
	UpdatedAt string              `json:"updated_at"` // RFC3339 timestamp
}

// NewSnapshot creates an empty snapshot
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Articles: make(map[string]*Article),
	}
}

// DiffResult contains the results of comparing a listing to a snapshot
type DiffResult struct {
	NewArticles []*Article
	Prefectures map[string][]*Article // new structured articles grouped by prefecture
}

// Diff compares current articles against a previous snapshot and returns the
// ones not seen before. A non-empty prefecture filter keeps only articles
// about that prefecture.
func Diff(previous *Snapshot, current []*Article, prefectureFilter string) *DiffResult {
	result := &DiffResult{
		NewArticles: make([]*Article, 0),
		Prefectures: make(map[string][]*Article),
	}

	if previous == nil {
		previous = NewSnapshot()
	}

	for _, a := range current {
		if prefectureFilter != "" && !strings.EqualFold(a.Prefecture, prefectureFilter) {
			continue
		}
		if _, exists := previous.Articles[a.ID]; exists {
			continue
		}

		result.NewArticles = append(result.NewArticles, a)
		if a.Structured() {
			result.Prefectures[a.Prefecture] = append(result.Prefectures[a.Prefecture], a)
		}
	}

	// Sort new articles for consistent output, newest date first
	sort.SliceStable(result.NewArticles, func(i, j int) bool {
		return result.NewArticles[i].Date > result.NewArticles[j].Date
	})

	return result
}

// Merge adds the articles of current to snap, keeping existing entries.
// Articles older than cutoff (YYYY-MM-DD) are dropped so the snapshot does
// not grow without bound.
func (s *Snapshot) Merge(current []*Article, updatedAt, cutoff string) {
	for _, a := range current {
		if _, ok := s.Articles[a.ID]; !ok {
			s.Articles[a.ID] = a
		}
	}
	if cutoff != "" {
		for id, a := range s.Articles {
			if a.Date < cutoff {
				delete(s.Articles, id)
			}
		}
	}
	s.UpdatedAt = updatedAt
}
