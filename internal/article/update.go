package article

import "sort"

// Observation is one count taken from an article.
type Observation struct {
	Count  int    `json:"count"`
	Source string `json:"source,omitempty"`
	Title  string `json:"title,omitempty"`
}

// PrefectureUpdate holds the best confirmed and deceased observation for a
// prefecture on one date.
type PrefectureUpdate struct {
	Confirmed *Observation `json:"confirmed,omitempty"`
	Deceased  *Observation `json:"deceased,omitempty"`
}

// Updates maps a canonical prefecture name to its update.
type Updates map[string]*PrefectureUpdate

// Prefectures returns the keys of u in alphabetical order.
func (u Updates) Prefectures() []string {
	out := make([]string, 0, len(u))
	for name := range u {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Empty reports whether u carries no observation at all.
func (u Updates) Empty() bool {
	for _, upd := range u {
		if upd != nil && (upd.Confirmed != nil || upd.Deceased != nil) {
			return false
		}
	}
	return true
}
