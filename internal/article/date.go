package article

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar date format used throughout the pipeline.
const DateLayout = "2006-01-02"

// JST is Japan Standard Time. Japan has no daylight saving time, so a fixed
// zone avoids depending on the host's tzdata.
var JST = time.FixedZone("JST", 9*60*60)

// Today returns the JST calendar date of now.
func Today(now time.Time) string {
	return now.In(JST).Format(DateLayout)
}

// Yesterday returns the JST calendar date of the day before now.
func Yesterday(now time.Time) string {
	return now.In(JST).AddDate(0, 0, -1).Format(DateLayout)
}

// ParseDate parses a YYYY-MM-DD date as midnight JST.
func ParseDate(date string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, date, JST)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", date, err)
	}
	return t, nil
}

// CompactDate converts YYYY-MM-DD into the YYYYMMDD form used in article
// URLs and row ids.
func CompactDate(date string) string {
	return strings.ReplaceAll(date, "-", "")
}

// pubDateLayouts are tried in order when parsing feed timestamps
var pubDateLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC3339,
	"Mon, 2 Jan 2006 15:04:05 -0700",
}

// DateOf returns the JST calendar date of a feed publish timestamp.
func DateOf(pubDate string) (string, error) {
	pubDate = strings.TrimSpace(pubDate)
	for _, layout := range pubDateLayouts {
		if t, err := time.Parse(layout, pubDate); err == nil {
			return t.In(JST).Format(DateLayout), nil
		}
	}
	return "", fmt.Errorf("unrecognized publish date %q", pubDate)
}
