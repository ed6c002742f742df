package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/pfrederiksen/covid-jp-sync/internal/article"
	"github.com/pfrederiksen/covid-jp-sync/internal/prefecture"
)

func loadFixture(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile("../../testdata/fixtures/" + name)
	if err != nil {
		t.Fatalf("failed to load test fixture: %v", err)
	}
	return string(data)
}

func TestExtractSummary_Prefectures(t *testing.T) {
	tests := []struct {
		name string
		text string
		ja   string
		want int
	}{
		{"half-width with marker and comma", "東京都は※1,234人でした。", "東京都", 1234},
		{"full-width digits", "東京都は※１，２３４人でした。", "東京都", 1234},
		{"ten-thousands notation", "大阪府は1万2345人", "大阪府", 12345},
		{"no marker", "愛知県は57人", "愛知県", 57},
		{"last match wins", "北海道は10人。訂正、北海道は12人", "北海道", 12},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := ExtractSummary(tt.text)
			got, ok := s.PrefectureCounts[tt.ja]
			if !ok {
				t.Fatalf("PrefectureCounts[%q] missing in %v", tt.ja, s.PrefectureCounts)
			}
			if got != tt.want {
				t.Errorf("PrefectureCounts[%q] = %d, want %d", tt.ja, got, tt.want)
			}
		})
	}
}

func TestExtractSummary_Absent(t *testing.T) {
	s := ExtractSummary("ワクチンの接種が始まりました。")
	if len(s.PrefectureCounts) != 0 {
		t.Errorf("expected no prefecture counts, got %v", s.PrefectureCounts)
	}
	if got := MissingFields(s); len(got) != 6 {
		t.Errorf("MissingFields() = %v, want all 6 fields", got)
	}
	if s.Validate() == nil {
		t.Error("expected validation to fail for empty summary")
	}
}

func TestExtractSummary_Fixture(t *testing.T) {
	text, err := MainContent(strings.NewReader(loadFixture(t, "nhk_summary.html")))
	if err != nil {
		t.Fatalf("MainContent() error = %v", err)
	}

	s := ExtractSummary(text)

	if len(s.PrefectureCounts) != prefecture.Count {
		t.Errorf("expected %d prefectures, got %d", prefecture.Count, len(s.PrefectureCounts))
	}

	wantPrefectures := map[string]int{
		"東京都": 1234,
		"大阪府": 300,
		"北海道": 150, // corrected later in the article
		"京都府": 121,
		"沖縄県": 131, // the sidebar figure is outside the main content
		"愛知県": 100,
		"山梨県": 146,
	}
	for ja, want := range wantPrefectures {
		if got := s.PrefectureCounts[ja]; got != want {
			t.Errorf("PrefectureCounts[%s] = %d, want %d", ja, got, want)
		}
	}

	wantOther := []struct {
		name string
		got  *int
		want int
	}{
		{"port quarantine", s.PortQuarantineCount, 3},
		{"total", s.TotalCount, 193804},
		{"deceased", s.Deceased, 2876},
		{"critical", s.Critical, 629},
		{"recovered japan", s.RecoveredJapan, 164319},
		{"recovered total", s.RecoveredTotal, 164978},
	}
	for _, tt := range wantOther {
		if tt.got == nil {
			t.Errorf("%s missing", tt.name)
			continue
		}
		if *tt.got != tt.want {
			t.Errorf("%s = %d, want %d", tt.name, *tt.got, tt.want)
		}
	}

	if err := s.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}

func TestFetchSummary(t *testing.T) {
	fixture := loadFixture(t, "nhk_summary.html")

	tests := []struct {
		name       string
		statusCode int
		wantError  bool
	}{
		{"successful fetch", http.StatusOK, false},
		{"HTTP error", http.StatusNotFound, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if userAgent := r.Header.Get("User-Agent"); !strings.Contains(userAgent, "covid-jp-sync") {
					t.Errorf("User-Agent = %q, should contain 'covid-jp-sync'", userAgent)
				}
				w.WriteHeader(tt.statusCode)
				if tt.statusCode == http.StatusOK {
					w.Write([]byte(fixture))
				}
			}))
			defer server.Close()

			s := New(WithBaseURL(server.URL))
			summary, err := s.FetchSummary(context.Background(), server.URL+"/news/html/20201219/k10012773101000.html")

			if tt.wantError {
				if err == nil {
					t.Error("FetchSummary() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("FetchSummary() unexpected error: %v", err)
			}
			if article.Value(summary.Critical) != 629 {
				t.Errorf("critical = %d, want 629", article.Value(summary.Critical))
			}
		})
	}
}
