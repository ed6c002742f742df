package patients

import (
	"slices"

	"github.com/pfrederiksen/covid-jp-sync/internal/article"
	"github.com/pfrederiksen/covid-jp-sync/internal/prefecture"
)

// Column offsets shared by every patient sheet.
const (
	ColID            = 0
	ColDateAnnounced = 3
	ColDateAdded     = 4
	ColPrefecture    = 9
	ColStatus        = 10
	ColCount         = 11
	ColSource        = 13
)

const (
	// DefaultSheet receives every prefecture without its own tab.
	DefaultSheet = "Patient Data"
	// WindowRows is how many trailing rows are searched and reused.
	WindowRows = 100

	StatusDeceased = "Deceased"
	// DeceasedID is the id written on death rows.
	DeceasedID = "Existing"
)

// Tabs lists the prefectures that have a sheet of their own.
var Tabs = []string{"Aichi", "Chiba", "Fukuoka", "Osaka", "Hokkaido", "Kanagawa", "Saitama", "Tokyo"}

// SheetFor returns the sheet title that rows of name are written to.
func SheetFor(name string) string {
	if slices.Contains(Tabs, name) {
		return name
	}
	return DefaultSheet
}

// Key identifies one row.
type Key struct {
	Prefecture string
	Date       string // YYYY-MM-DD
	Deceased   bool
}

// Status is the value of the status column for k.
func (k Key) Status() string {
	if k.Deceased {
		return StatusDeceased
	}
	return ""
}

// RowID is the id written into a new row for k. Confirmed rows get the
// prefecture prefix plus the compact date.
func (k Key) RowID() string {
	if k.Deceased {
		return DeceasedID
	}
	p, _ := prefecture.IDPrefix(k.Prefecture)
	return p + article.CompactDate(k.Date)
}
