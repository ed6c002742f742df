package notifier

import (
	"context"
	"fmt"
	"io"
	"os"
	"unicode/utf8"
)

// DryRunNotifier prints what would be sent without posting
type DryRunNotifier struct {
	w io.Writer
}

// NewDryRunNotifier creates a dry-run notifier writing to w, or stdout
// when w is nil.
func NewDryRunNotifier(w io.Writer) *DryRunNotifier {
	if w == nil {
		w = os.Stdout
	}
	return &DryRunNotifier{w: w}
}

// Notify prints the message that would be posted
func (n *DryRunNotifier) Notify(_ context.Context, message string) error {
	fmt.Fprintln(n.w, "--- Notification ---")
	fmt.Fprint(n.w, message)
	_, err := fmt.Fprintf(n.w, "\n(Length: %d characters)\n\n", utf8.RuneCountInString(message))
	return err
}
