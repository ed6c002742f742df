package sheet

import (
	"fmt"
	"time"
)

// serialOffset is added to the day count since 1900-01-01. The store's
// serial epoch counts a nonexistent 1900-02-29 and starts at 1, so existing
// rows only compare equal with exactly this correction.
const serialOffset = 2

var serialBase = time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC)

// SerialDate converts a YYYY-MM-DD date into the store's date serial.
func SerialDate(date string) (int, error) {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return 0, fmt.Errorf("invalid date %q: %w", date, err)
	}
	return int((t.Unix()-serialBase.Unix())/(24*60*60)) + serialOffset, nil
}

// DateFromSerial converts a store date serial back to YYYY-MM-DD.
func DateFromSerial(serial int) string {
	return serialBase.AddDate(0, 0, serial-serialOffset).Format("2006-01-02")
}
