package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pfrederiksen/covid-jp-sync/internal/app"
	"github.com/pfrederiksen/covid-jp-sync/internal/article"
	"github.com/pfrederiksen/covid-jp-sync/internal/pipeline"
	"github.com/pfrederiksen/covid-jp-sync/internal/scraper"
	"github.com/pfrederiksen/covid-jp-sync/internal/server"
)

func newNHKCmd() *cobra.Command {
	var (
		dates     dateFlags
		url       string
		write     bool
		list      bool
		pref      string
		rawValues bool
		sortOrder string
		rss       bool
	)
	cmd := &cobra.Command{
		Use:   "nhk",
		Short: "Extract the NHK daily summary, or list NHK articles",
		Example: `  covid-jp-sync nhk --yesterday
  covid-jp-sync nhk --url https://www3.nhk.or.jp/news/html/20201219/k10012773101000.html --date 2020-12-19
  covid-jp-sync nhk --list --today --prefecture Tokyo`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !dates.set() && !list && url == "" {
				return cmd.Help()
			}
			format, err := outputFormat()
			if err != nil {
				return err
			}
			if pref, err = canonicalPrefecture(pref); err != nil {
				return err
			}
			a, _, err := setup(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			svc := a.Service
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			if list {
				date := ""
				if dates.set() {
					if date, err = dates.resolve(svc); err != nil {
						return err
					}
				}
				var articles []*article.Article
				if rss {
					articles, err = svc.ListRSSArticles(ctx, "")
				} else {
					articles, err = svc.ListArticles(ctx, scraper.ListPages)
				}
				if err != nil {
					return err
				}
				articles = filterArticles(articles, date, pref)
				if err := sortArticles(articles, SortOrder(sortOrder)); err != nil {
					return err
				}
				return WriteOutput(out, &ArticleList{Date: date, Articles: articles}, format, flagVerbose)
			}

			var res *pipeline.SummaryResult
			if url != "" {
				date := svc.Today()
				if dates.set() {
					if date, err = dates.resolve(svc); err != nil {
						return err
					}
				}
				res, err = svc.SummaryFromURL(ctx, date, url, write)
			} else {
				date, derr := dates.resolve(svc)
				if derr != nil {
					return derr
				}
				res, err = svc.GetDailySummary(ctx, date, write, scraper.MaxPages)
			}
			if err != nil {
				return err
			}
			if rawValues && res.Counts != nil {
				return writeRawValues(out, res.Counts)
			}
			return WriteOutput(out, res, format, flagVerbose)
		},
	}
	dates.register(cmd)
	cmd.Flags().StringVar(&url, "url", "", "URL of an NHK summary article (skips the listing search)")
	cmd.Flags().BoolVarP(&write, "write", "w", false, "Write to spreadsheet")
	cmd.Flags().BoolVarP(&list, "list", "l", false, "List all articles")
	cmd.Flags().StringVarP(&pref, "prefecture", "p", "", "Restrict the listing to a single prefecture")
	cmd.Flags().BoolVar(&rawValues, "raw-values", false, "Print the 47 prefecture and 5 auxiliary values, one per line")
	cmd.Flags().StringVar(&sortOrder, "sort", "", "Sort the listing by date, prefecture or title (default feed order)")
	cmd.Flags().BoolVar(&rss, "rss", false, "List from the NHK RSS feed instead of the JSON listing")
	return cmd
}

// filterArticles keeps articles of date (any date when empty). A prefecture
// filter keeps that prefecture's articles and the unstructured ones.
func filterArticles(articles []*article.Article, date, pref string) []*article.Article {
	out := make([]*article.Article, 0, len(articles))
	for _, a := range articles {
		if date != "" && a.Date != date {
			continue
		}
		if pref != "" && a.Prefecture != "" && !strings.EqualFold(a.Prefecture, pref) {
			continue
		}
		out = append(out, a)
	}
	return out
}

func newBatchCmd() *cobra.Command {
	var (
		dates  dateFlags
		output string
		pref   string
		write  bool
	)
	cmd := &cobra.Command{
		Use:   "nhk-batch",
		Short: "Get all articles for a day and write rows to the spreadsheet",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !dates.set() {
				return cmd.Help()
			}
			format, err := outputFormat()
			if err != nil {
				return err
			}
			if pref, err = canonicalPrefecture(pref); err != nil {
				return err
			}
			a, _, err := setup(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			svc := a.Service
			date, err := dates.resolve(svc)
			if err != nil {
				return err
			}

			updates, err := svc.ReconcileUpdates(cmd.Context(), date, pref)
			if err != nil {
				return err
			}
			if output != "" {
				data, err := json.MarshalIndent(updates, "", "  ")
				if err != nil {
					return fmt.Errorf("encoding updates: %w", err)
				}
				if err := os.WriteFile(output, data, 0644); err != nil {
					return fmt.Errorf("writing %s: %w", output, err)
				}
			}

			res, err := svc.ApplyUpdates(cmd.Context(), date, updates, write)
			if err != nil {
				return err
			}
			return WriteOutput(cmd.OutOrStdout(), &BatchResult{Date: date, Updates: updates, Write: res}, format, flagVerbose)
		},
	}
	dates.register(cmd)
	cmd.Flags().StringVar(&output, "output", "", "Output updates to file")
	cmd.Flags().StringVarP(&pref, "prefecture", "p", "", "Only write prefecture")
	cmd.Flags().BoolVarP(&write, "write", "w", false, "Write to spreadsheet")
	return cmd
}

func newVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify-sheet",
		Short: "Verify data in the sheet",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := outputFormat()
			if err != nil {
				return err
			}
			a, _, err := setup(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.Service.Verify(cmd.Context())
			if err != nil {
				return err
			}
			if err := WriteOutput(cmd.OutOrStdout(), res, format, flagVerbose); err != nil {
				return err
			}
			if !res.OK() {
				return &exitError{code: ExitProblems}
			}
			return nil
		},
	}
}

func newPortCmd() *cobra.Command {
	var write bool
	cmd := &cobra.Command{
		Use:   "mhlw-port",
		Short: "Record the latest MHLW airport quarantine count as Port Quarantine cases",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := outputFormat()
			if err != nil {
				return err
			}
			a, _, err := setup(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.Service.UpdatePortQuarantine(cmd.Context(), write)
			if err != nil {
				return err
			}
			return WriteOutput(cmd.OutOrStdout(), res, format, flagVerbose)
		},
	}
	cmd.Flags().BoolVarP(&write, "write", "w", false, "Write to spreadsheet")
	return cmd
}

func newRecoveriesCmd() *cobra.Command {
	var write bool
	cmd := &cobra.Command{
		Use:   "mhlw-recoveries",
		Short: "Copy per-prefecture cases and recoveries from the latest MHLW situation report",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := outputFormat()
			if err != nil {
				return err
			}
			a, _, err := setup(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.Service.UpdateRecoveries(cmd.Context(), write)
			if err != nil {
				return err
			}
			return WriteOutput(cmd.OutOrStdout(), res, format, flagVerbose)
		},
	}
	cmd.Flags().BoolVarP(&write, "write", "w", false, "Write to spreadsheet")
	return cmd
}

func newWatchCmd() *cobra.Command {
	var (
		pref      string
		pages     int
		sortOrder string
	)
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Report NHK articles not seen by a previous run",
		Long: `Report NHK articles not seen by a previous run. Seen articles are kept in
a snapshot under DATA_DIR. Exits with status 2 when there are new articles.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := outputFormat()
			if err != nil {
				return err
			}
			if pref, err = canonicalPrefecture(pref); err != nil {
				return err
			}
			a, _, err := setup(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			diff, err := a.Service.NewArticles(cmd.Context(), pages, pref)
			if err != nil {
				return err
			}
			if err := sortArticles(diff.NewArticles, SortOrder(sortOrder)); err != nil {
				return err
			}
			if err := WriteOutput(cmd.OutOrStdout(), newWatchResult(diff, pref), format, flagVerbose); err != nil {
				return fmt.Errorf("writing output: %w", err)
			}
			if len(diff.NewArticles) > 0 {
				return &exitError{code: ExitNewArticles}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&pref, "prefecture", "p", "", "Only watch articles about this prefecture")
	cmd.Flags().IntVar(&pages, "pages", scraper.DefaultPages, "Number of listing pages to read")
	cmd.Flags().StringVar(&sortOrder, "sort", "", "Sort new articles by date, prefecture or title")
	return cmd
}

func newServeCmd() *cobra.Command {
	var noCron bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the pipeline over HTTP and run the scheduled jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			log, err := newLogger(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := app.Build(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer a.Close()

			if !noCron {
				c, err := server.NewScheduler(a.Service, log, server.Schedule{
					Summary: cfg.SummarySchedule,
					Batch:   cfg.BatchSchedule,
					Commit:  cfg.CommitScheduled,
				})
				if err != nil {
					return err
				}
				c.Start()
				defer c.Stop()
				log.Info("scheduler started",
					zap.String("summary", cfg.SummarySchedule),
					zap.String("batch", cfg.BatchSchedule),
					zap.Bool("commit", cfg.CommitScheduled))
			}

			srv := server.New(a.Service, log,
				server.WithAPIKey(cfg.APIKey),
				server.WithActionBaseURL(cfg.ActionBaseURL))
			return srv.Run(ctx, ":"+cfg.HTTPPort)
		},
	}
	cmd.Flags().BoolVar(&noCron, "no-cron", false, "Serve HTTP only, without the scheduled jobs")
	return cmd
}

