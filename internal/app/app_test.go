package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/pfrederiksen/covid-jp-sync/internal/config"
	"github.com/pfrederiksen/covid-jp-sync/internal/notifier"
	"github.com/pfrederiksen/covid-jp-sync/internal/patients"
	"github.com/pfrederiksen/covid-jp-sync/internal/summarysheet"
	"github.com/pfrederiksen/covid-jp-sync/internal/verify"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Backend:      config.BackendMemory,
		SQLitePath:   filepath.Join(t.TempDir(), "book.db"),
		NHKBaseURL:   "http://127.0.0.1:1",
		MHLWIndexURL: "http://127.0.0.1:1/index.html",
		HTTPTimeout:  time.Second,
		Notifier:     config.NotifierNone,
		DataDir:      t.TempDir(),
	}
}

func TestBackend_LayoutSheets(t *testing.T) {
	ctx := context.Background()
	for _, backend := range []string{config.BackendMemory, config.BackendSQLite} {
		t.Run(backend, func(t *testing.T) {
			cfg := testConfig(t)
			cfg.Backend = backend
			b, closer, err := Backend(ctx, cfg)
			if err != nil {
				t.Fatalf("Backend() error = %v", err)
			}
			if closer != nil {
				defer closer()
			}
			titles := append([]string{patients.DefaultSheet, summarysheet.Title, verify.PrefectureDataTitle}, patients.Tabs...)
			for _, title := range titles {
				if _, err := b.Properties(ctx, title); err != nil {
					t.Errorf("Properties(%q) error = %v", title, err)
				}
			}
		})
	}
}

func TestBackend_SQLiteReopen(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	cfg.Backend = config.BackendSQLite

	for i := 0; i < 2; i++ {
		_, closer, err := Backend(ctx, cfg)
		if err != nil {
			t.Fatalf("open %d: %v", i, err)
		}
		closer()
	}
}

func TestBackend_GoogleWithoutCredentials(t *testing.T) {
	cfg := testConfig(t)
	cfg.Backend = config.BackendGoogle
	cfg.SpreadsheetID = "sheet-123"
	cfg.CredentialsFile = filepath.Join(t.TempDir(), "missing.json")
	if _, _, err := Backend(context.Background(), cfg); err == nil {
		t.Error("expected an error for missing credentials")
	}
}

func TestNotifier(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.Config
		wantNil bool
		wantErr bool
	}{
		{name: "none", cfg: config.Config{Notifier: config.NotifierNone}, wantNil: true},
		{name: "dry run", cfg: config.Config{Notifier: config.NotifierDryRun}},
		{name: "telegram", cfg: config.Config{Notifier: config.NotifierTelegram, TelegramBotToken: "t", TelegramChatID: "c"}},
		{name: "telegram without chat", cfg: config.Config{Notifier: config.NotifierTelegram, TelegramBotToken: "t"}, wantErr: true},
		{name: "twitter", cfg: config.Config{Notifier: config.NotifierTwitter, TwitterAPIKey: "k", TwitterAPISecret: "s", TwitterAccessToken: "t", TwitterAccessSecret: "ts"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := Notifier(&tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Error("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if (n == nil) != tt.wantNil {
				t.Errorf("Notifier() = %v, wantNil %v", n, tt.wantNil)
			}
		})
	}

	n, _ := Notifier(&config.Config{Notifier: config.NotifierDryRun})
	if _, ok := n.(*notifier.DryRunNotifier); !ok {
		t.Errorf("dry run notifier is %T", n)
	}
}

func TestBuild(t *testing.T) {
	a, err := Build(context.Background(), testConfig(t), nil)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	defer a.Close()

	if a.Service == nil || a.Metrics == nil || a.Backend == nil {
		t.Fatalf("Build() = %+v", a)
	}
	res, err := a.Service.Verify(context.Background())
	if err != nil {
		t.Fatalf("Verify() on a fresh workbook error = %v", err)
	}
	if res.HasLatestNhkSummary {
		t.Error("fresh workbook should not have a summary")
	}
}
