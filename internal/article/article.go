package article

import (
	"crypto/sha1"
	"fmt"
)

// Article is one item of the news listing, optionally classified with a
// prefecture and a confirmed or death count taken from its headline.
type Article struct {
	ID         string `json:"id"`
	Date       string `json:"date"` // YYYY-MM-DD in JST
	Title      string `json:"title"`
	Source     string `json:"source"` // absolute URL
	Prefecture string `json:"prefecture,omitempty"`
	Confirmed  *int   `json:"confirmed,omitempty"`
	Deaths     *int   `json:"deaths,omitempty"`
}

// GenerateID creates a deterministic ID for an article from its source URL
func GenerateID(source string) string {
	h := sha1.New()
	h.Write([]byte(source))
	return fmt.Sprintf("%x", h.Sum(nil))
}

// New creates an unstructured Article with its ID populated
func New(date, title, source string) *Article {
	return &Article{
		ID:     GenerateID(source),
		Date:   date,
		Title:  title,
		Source: source,
	}
}

// Structured reports whether a prefecture was detected in the headline.
func (a *Article) Structured() bool {
	return a.Prefecture != ""
}

// Int returns a pointer to n, for populating optional counts.
func Int(n int) *int {
	return &n
}

// Value dereferences an optional count, returning 0 when absent.
func Value(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
