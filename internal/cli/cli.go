package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pfrederiksen/covid-jp-sync/internal/app"
	"github.com/pfrederiksen/covid-jp-sync/internal/config"
	"github.com/pfrederiksen/covid-jp-sync/internal/logger"
	"github.com/pfrederiksen/covid-jp-sync/internal/prefecture"
)

const (
	ExitSuccess     = 0
	ExitError       = 1
	ExitNewArticles = 2
	ExitProblems    = 3
)

var (
	flagBackend string
	flagFormat  string
	flagVerbose bool
)

// exitError carries a non-zero exit status that is not a failure message.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "covid-jp-sync",
		Short: "Sync Japanese COVID-19 counts from NHK and MHLW into the patient spreadsheet",
		Long: `A CLI tool that scrapes NHK's COVID-19 news listing and daily summary
article and MHLW's reports, reconciles them into per-prefecture counts and
writes them to the patient spreadsheet.

Nothing is written unless --write is given.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&flagBackend, "backend", "", "Sheet backend: google, sqlite or memory (default from SHEET_BACKEND)")
	cmd.PersistentFlags().StringVar(&flagFormat, "format", "text", "Output format: text or json")
	cmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable verbose logging")

	cmd.AddCommand(
		newNHKCmd(),
		newBatchCmd(),
		newVerifyCmd(),
		newPortCmd(),
		newRecoveriesCmd(),
		newWatchCmd(),
		newServeCmd(),
	)
	return cmd
}

// outputFormat validates --format
func outputFormat() (OutputFormat, error) {
	format := OutputFormat(strings.ToLower(flagFormat))
	if format != FormatText && format != FormatJSON {
		return "", fmt.Errorf("invalid format: %s (must be 'text' or 'json')", flagFormat)
	}
	return format, nil
}

// canonicalPrefecture resolves a --prefecture value. Empty stays empty.
func canonicalPrefecture(name string) (string, error) {
	if name == "" {
		return "", nil
	}
	canonical, ok := prefecture.Canonicalize(name)
	if !ok {
		return "", fmt.Errorf("unknown prefecture: %s", name)
	}
	return canonical, nil
}

// loadConfig reads the environment and applies flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if cfg == nil {
		return nil, err
	}
	if flagBackend != "" {
		cfg.Backend = strings.ToLower(flagBackend)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger logs JSON lines to stderr so stdout stays parseable.
func newLogger(cfg *config.Config, stderr io.Writer) (*zap.Logger, error) {
	if flagVerbose {
		return logger.New(logger.LevelDebug, stderr), nil
	}
	return logger.FromString(cfg.LogLevel, stderr)
}

// setup builds the application for a command run.
func setup(cmd *cobra.Command) (*app.App, *zap.Logger, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	log, err := newLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return nil, nil, err
	}
	if flagVerbose {
		log.Debug("configuration loaded",
			zap.String("backend", cfg.Backend),
			zap.String("notifier", cfg.Notifier),
			zap.String("data_dir", cfg.DataDir))
	}
	a, err := app.Build(cmd.Context(), cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return a, log, nil
}

// Execute runs the CLI
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		var exit *exitError
		if errors.As(err, &exit) {
			os.Exit(exit.code)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
}
