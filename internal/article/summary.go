package article

import (
	"strings"

	"github.com/pfrederiksen/covid-jp-sync/internal/prefecture"
)

// DailySummary holds the figures extracted from NHK's national daily
// summary article. PrefectureCounts is keyed by the long Japanese name;
// prefectures that were not found are absent rather than zero.
type DailySummary struct {
	Date                string         `json:"date,omitempty"`
	PrefectureCounts    map[string]int `json:"prefectureCounts"`
	PortQuarantineCount *int           `json:"portQuarantineCount,omitempty"`
	TotalCount          *int           `json:"totalCount,omitempty"`
	Deceased            *int           `json:"deceased,omitempty"`
	Critical            *int           `json:"critical,omitempty"`
	RecoveredJapan      *int           `json:"recoveredJapan,omitempty"`
	RecoveredTotal      *int           `json:"recoveredTotal,omitempty"`
}

// NewDailySummary returns an empty summary for date.
func NewDailySummary(date string) *DailySummary {
	return &DailySummary{
		Date:             date,
		PrefectureCounts: make(map[string]int),
	}
}

// English returns the prefecture counts keyed by canonical name.
func (s *DailySummary) English() map[string]int {
	out := make(map[string]int, len(s.PrefectureCounts))
	for ja, n := range s.PrefectureCounts {
		if en, ok := prefecture.Lookup(ja); ok {
			out[en] = n
		}
	}
	return out
}

// OrderedCounts returns the 47 prefecture counts in sheet row order.
// Absent prefectures serialize as zero.
func (s *DailySummary) OrderedCounts() []int {
	return prefecture.Order(s.English())
}

// OtherCounts returns the auxiliary aggregates in sheet row order: port
// quarantine, critical, deceased, recovered in Japan, recovered in total.
func (s *DailySummary) OtherCounts() []int {
	return []int{
		Value(s.PortQuarantineCount),
		Value(s.Critical),
		Value(s.Deceased),
		Value(s.RecoveredJapan),
		Value(s.RecoveredTotal),
	}
}

// Validation problems reported by Validate.
const (
	ProblemIncomplete     = "prefectureCounts are less than 47"
	ProblemPrefectureZero = "prefectureCounts has 0s"
	ProblemOtherZero      = "otherCounts has 0s"
)

// ValidationError lists every reason a summary is not plausible enough to
// write.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Problems, "; ")
}

// Validate checks that all 47 prefectures were extracted, none of them is
// zero and every auxiliary count is present and non-zero. A partial page
// scrape fails here instead of overwriting the sheet with gaps.
func (s *DailySummary) Validate() error {
	var problems []string

	if len(s.English()) < prefecture.Count {
		problems = append(problems, ProblemIncomplete)
	}
	for _, n := range s.OrderedCounts() {
		if n == 0 {
			problems = append(problems, ProblemPrefectureZero)
			break
		}
	}
	for _, n := range s.OtherCounts() {
		if n == 0 {
			problems = append(problems, ProblemOtherZero)
			break
		}
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}
