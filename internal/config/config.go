// Package config loads runtime settings from the environment. A .env file
// in the working directory is read first when present.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Backend names.
const (
	BackendGoogle = "google"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Notifier names.
const (
	NotifierNone     = "none"
	NotifierDryRun   = "dryrun"
	NotifierTelegram = "telegram"
	NotifierTwitter  = "twitter"
)

// Config holds every setting read from the environment.
type Config struct {
	Backend string `envconfig:"SHEET_BACKEND" default:"google"`

	SpreadsheetID   string        `envconfig:"SPREADSHEET_ID"`
	CredentialsJSON string        `envconfig:"GOOGLE_ACCOUNT_CREDENTIALS_JSON"`
	CredentialsFile string        `envconfig:"GOOGLE_ACCOUNT_CREDENTIALS_FILE" default:"credentials.json"`
	SQLitePath      string        `envconfig:"SQLITE_PATH" default:"covid-jp.db"`
	NHKBaseURL      string        `envconfig:"NHK_BASE_URL" default:"https://www3.nhk.or.jp"`
	MHLWIndexURL    string        `envconfig:"MHLW_INDEX_URL" default:"https://www.mhlw.go.jp/stf/seisakunitsuite/bunya/topics_shingata_09444.html"`
	HTTPTimeout     time.Duration `envconfig:"HTTP_TIMEOUT" default:"30s"`
	UserAgent       string        `envconfig:"USER_AGENT"`

	Notifier            string `envconfig:"NOTIFIER" default:"none"`
	TelegramBotToken    string `envconfig:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID      string `envconfig:"TELEGRAM_CHAT_ID"`
	TwitterAPIKey       string `envconfig:"TWITTER_API_KEY"`
	TwitterAPISecret    string `envconfig:"TWITTER_API_SECRET"`
	TwitterAccessToken  string `envconfig:"TWITTER_ACCESS_TOKEN"`
	TwitterAccessSecret string `envconfig:"TWITTER_ACCESS_SECRET"`

	HTTPPort        string `envconfig:"HTTP_PORT" default:"8080"`
	APIKey          string `envconfig:"API_KEY"`
	ActionBaseURL   string `envconfig:"ACTION_BASE_URL"`
	SummarySchedule string `envconfig:"SUMMARY_SCHEDULE" default:"*/30 10-23 * * *"`
	BatchSchedule   string `envconfig:"BATCH_SCHEDULE" default:"*/15 * * * *"`
	CommitScheduled bool   `envconfig:"COMMIT_SCHEDULED" default:"false"`

	DataDir string `envconfig:"DATA_DIR" default:"~/.local/share/covid-jp-sync"`

	ArchiveS3Bucket   string `envconfig:"ARCHIVE_S3_BUCKET"`
	ArchiveS3Region   string `envconfig:"ARCHIVE_S3_REGION" default:"ap-northeast-1"`
	ArchiveS3Endpoint string `envconfig:"ARCHIVE_S3_ENDPOINT"`
	ArchiveS3Key      string `envconfig:"ARCHIVE_S3_KEY"`
	ArchiveS3Secret   string `envconfig:"ARCHIVE_S3_SECRET"`
	ArchiveS3Prefix   string `envconfig:"ARCHIVE_S3_PREFIX" default:"runs/"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}
	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))
	c.Notifier = strings.ToLower(strings.TrimSpace(c.Notifier))
	return &c, c.Validate()
}

// Validate checks that the selected backend and notifier can be built.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendGoogle:
		if c.SpreadsheetID == "" {
			return fmt.Errorf("SPREADSHEET_ID is required for the %s backend", BackendGoogle)
		}
	case BackendSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for the %s backend", BackendSQLite)
		}
	case BackendMemory:
	default:
		return fmt.Errorf("invalid SHEET_BACKEND %q (must be google, sqlite or memory)", c.Backend)
	}

	switch c.Notifier {
	case "", NotifierNone, NotifierDryRun:
	case NotifierTelegram:
		if c.TelegramBotToken == "" || c.TelegramChatID == "" {
			return fmt.Errorf("TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID are required for the telegram notifier")
		}
	case NotifierTwitter:
		if c.TwitterAPIKey == "" || c.TwitterAPISecret == "" || c.TwitterAccessToken == "" || c.TwitterAccessSecret == "" {
			return fmt.Errorf("missing required Twitter credentials in environment variables")
		}
	default:
		return fmt.Errorf("invalid NOTIFIER %q", c.Notifier)
	}
	return nil
}

// Credentials returns the service account key, from the environment when
// set, otherwise from CredentialsFile.
func (c *Config) Credentials() ([]byte, error) {
	if c.CredentialsJSON != "" {
		return []byte(c.CredentialsJSON), nil
	}
	data, err := os.ReadFile(c.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("reading credentials: %w", err)
	}
	return data, nil
}

// ArchiveEnabled reports whether run reports are uploaded to S3.
func (c *Config) ArchiveEnabled() bool {
	return c.ArchiveS3Bucket != ""
}
