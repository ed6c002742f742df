package numeral

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/width"
)

// ErrNoDigits is returned when an expression contains no parseable digits.
// Callers treat it as an extraction miss, not a failure.
var ErrNoDigits = errors.New("no digits in count expression")

// fullWidthDigits covers U+FF10 (０) to U+FF19 (９).
var fullWidthDigits = runes.In(&unicode.RangeTable{
	R16: []unicode.Range16{{Lo: 0xFF10, Hi: 0xFF19, Stride: 1}},
})

var (
	tenThousandPattern = regexp.MustCompile(`([0-9]+)万([0-9]*)`)
	separators         = strings.NewReplacer(",", "", "，", "")
)

// NormalizeWidth maps full-width digits to their ASCII equivalents.
// No other characters are altered.
func NormalizeWidth(s string) string {
	t := runes.If(fullWidthDigits, width.Narrow, nil)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// ParseCount converts a count expression into an integer.
//
// "1万2345" yields 12345 and "3万" yields 30000. Anything else is read as
// the leading run of base-10 digits, after width normalization and removal
// of group separators.
func ParseCount(s string) (int, error) {
	n := separators.Replace(NormalizeWidth(strings.TrimSpace(s)))

	if m := tenThousandPattern.FindStringSubmatch(n); m != nil {
		high, err := strconv.Atoi(m[1])
		if err != nil {
			return 0, fmt.Errorf("parsing %q: %w", s, err)
		}
		low := 0
		if m[2] != "" {
			low, err = strconv.Atoi(m[2])
			if err != nil {
				return 0, fmt.Errorf("parsing %q: %w", s, err)
			}
		}
		return high*10000 + low, nil
	}

	end := 0
	for end < len(n) && n[end] >= '0' && n[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, ErrNoDigits
	}

	v, err := strconv.Atoi(n[:end])
	if err != nil {
		return 0, fmt.Errorf("parsing %q: %w", s, err)
	}
	return v, nil
}
