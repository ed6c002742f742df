package notifier

import (
	"context"
	"fmt"
	"strings"

	"github.com/pfrederiksen/covid-jp-sync/internal/article"
)

// Notifier defines the interface for posting run reports
type Notifier interface {
	// Notify posts message to the channel
	Notify(ctx context.Context, message string) error
}

// Report formats the result of a write as
//
//	[updated]:
//	Tokyo 736 cases.
//	Tokyo 3 deaths.
//
// Prefectures appear in sorted order.
func Report(result string, updates article.Updates) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s]:\n", result)
	for _, name := range updates.Prefectures() {
		u := updates[name]
		if u.Confirmed != nil {
			fmt.Fprintf(&b, "%s %d cases.\n", name, u.Confirmed.Count)
		}
		if u.Deceased != nil {
			fmt.Fprintf(&b, "%s %d deaths.\n", name, u.Deceased.Count)
		}
	}
	return b.String()
}
