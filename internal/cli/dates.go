package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/covid-jp-sync/internal/article"
	"github.com/pfrederiksen/covid-jp-sync/internal/pipeline"
)

// dateFlags are the --date/--today/--yesterday options shared by commands
// that run for one day.
type dateFlags struct {
	date      string
	today     bool
	yesterday bool
}

func (d *dateFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&d.date, "date", "d", "", "Date in YYYY-MM-DD format")
	cmd.Flags().BoolVar(&d.today, "today", false, "Execute for today (JST)")
	cmd.Flags().BoolVar(&d.yesterday, "yesterday", false, "Execute for yesterday (JST)")
}

func (d *dateFlags) set() bool {
	return d.date != "" || d.today || d.yesterday
}

// resolve returns the selected date. --yesterday wins over --today, which
// wins over --date.
func (d *dateFlags) resolve(svc *pipeline.Service) (string, error) {
	switch {
	case d.yesterday:
		return svc.Yesterday(), nil
	case d.today:
		return svc.Today(), nil
	case d.date != "":
		if _, err := article.ParseDate(d.date); err != nil {
			return "", err
		}
		return d.date, nil
	}
	return "", fmt.Errorf("one of --date, --today or --yesterday is required")
}
