package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pfrederiksen/covid-jp-sync/internal/mhlw"
	"github.com/pfrederiksen/covid-jp-sync/internal/patients"
	"github.com/pfrederiksen/covid-jp-sync/internal/prefecture"
	"github.com/pfrederiksen/covid-jp-sync/internal/scraper"
	"github.com/pfrederiksen/covid-jp-sync/internal/sheet"
	"github.com/pfrederiksen/covid-jp-sync/internal/storage"
	"github.com/pfrederiksen/covid-jp-sync/internal/summarysheet"
	"github.com/pfrederiksen/covid-jp-sync/internal/verify"
)

const (
	testDate    = "2020-12-19"
	testSerial  = 44184
	summaryPath = "/news/html/20201219/k10012773101000.html"
	pubDate     = "Sat, 19 Dec 2020 18:03:00 +0900"
)

// 2020-12-19 12:00 JST
var testNow = time.Date(2020, 12, 19, 3, 0, 0, 0, time.UTC)

type feedItem struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	PubDate string `json:"pubDate"`
}

var listing = []feedItem{
	{Title: "【国内感染】新型コロナ 全国で2992人感染確認", Link: summaryPath, PubDate: pubDate},
	{Title: "東京都 新型コロナ 736人感染確認 過去最多", Link: "/news/html/20201219/k1.html", PubDate: pubDate},
	{Title: "東京都 新たに700人の感染確認", Link: "/news/html/20201219/k2.html", PubDate: pubDate},
	{Title: "秋田県 2人の死亡確認", Link: "/news/html/20201219/k3.html", PubDate: pubDate},
	{Title: "経済対策まとまる", Link: "/news/html/20201219/k4.html", PubDate: pubDate},
}

func nhkServer(t *testing.T) *httptest.Server {
	t.Helper()
	fixture, err := os.ReadFile("../../testdata/fixtures/nhk_summary.html")
	if err != nil {
		t.Fatalf("failed to load test fixture: %v", err)
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var page int
		if _, err := fmt.Sscanf(r.URL.Path, "/news/json16/word/0000969_00%d.json", &page); err == nil {
			var body struct {
				Channel struct {
					Item []feedItem `json:"item"`
				} `json:"channel"`
			}
			body.Channel.Item = []feedItem{}
			if page == 1 {
				body.Channel.Item = listing
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(body)
			return
		}
		switch r.URL.Path {
		case summaryPath:
			w.Write(fixture)
		case scraper.RSSPath:
			w.Header().Set("Content-Type", "application/rss+xml")
			fmt.Fprintf(w, `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>NHK</title>
<item><title>東京都 新型コロナ 736人感染確認 過去最多</title><link>%s/news/html/20201219/k1.html</link><pubDate>%s</pubDate></item>
<item><title>経済対策まとまる</title><link>%s/news/html/20201219/k4.html</link><pubDate>%s</pubDate></item>
</channel></rss>`, "http://"+r.Host, pubDate, "http://"+r.Host, pubDate)
		case "/news/html/20201219/partial.html":
			w.Write([]byte(`<section class="content--detail-main"><p>東京都は736人。</p></section>`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func mhlwServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/index.html", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><a href="/port.html">新型コロナウイルス感染症の患者等の発生について（空港・海港検疫）</a></body></html>`)
	})
	mux.HandleFunc("/port.html", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><time datetime="2020-12-19">2020年12月19日</time>
<div class="m-grid__col1"><div>検疫により新型コロナウイルスの患者3名と無症状病原体保有者2名が確認されました。<table><tr><td>1</td></tr></table></div></div></body></html>`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newWorkbook(t *testing.T) *sheet.Memory {
	t.Helper()
	ctx := context.Background()
	m := sheet.NewMemory()
	for _, title := range append([]string{patients.DefaultSheet}, patients.Tabs...) {
		if err := m.CreateSheet(ctx, title, 20, 14); err != nil {
			t.Fatal(err)
		}
		m.SetDateColumn(title, patients.ColDateAnnounced)
		m.SetDateColumn(title, patients.ColDateAdded)
		m.Put(title, 0, patients.ColID, sheet.StringCell("Patient Number"))
	}
	if err := m.CreateSheet(ctx, summarysheet.Title, 60, 9); err != nil {
		t.Fatal(err)
	}
	if err := m.CreateSheet(ctx, verify.PrefectureDataTitle, 50, 13); err != nil {
		t.Fatal(err)
	}
	return m
}

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
	err      error
}

func (n *recordingNotifier) Notify(_ context.Context, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, message)
	return n.err
}

type recordingArchive struct {
	kinds []string
}

func (a *recordingArchive) Archive(_ context.Context, kind, date string, _ any) (string, error) {
	a.kinds = append(a.kinds, kind)
	return "mem://" + kind + "/" + date, nil
}

type fixture struct {
	svc      *Service
	book     *sheet.Memory
	notifier *recordingNotifier
	archive  *recordingArchive
	nhk      *httptest.Server
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	nhk := nhkServer(t)
	mh := mhlwServer(t)
	f := &fixture{
		book:     newWorkbook(t),
		notifier: &recordingNotifier{},
		archive:  &recordingArchive{},
		nhk:      nhk,
	}
	opts = append([]Option{
		WithNotifier(f.notifier),
		WithArchiver(f.archive),
		WithClock(func() time.Time { return testNow }),
	}, opts...)
	f.svc = New(f.book,
		scraper.New(scraper.WithBaseURL(nhk.URL)),
		mhlw.New(mhlw.WithIndexURL(mh.URL+"/index.html")),
		opts...)
	return f
}

func TestGetDailySummary_Commit(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.GetDailySummary(context.Background(), testDate, true, 2)
	if err != nil {
		t.Fatalf("GetDailySummary() error = %v", err)
	}
	if res.Error != "" || len(res.Errors) != 0 {
		t.Fatalf("unexpected problems: %+v", res)
	}
	if res.URL != f.nhk.URL+summaryPath {
		t.Errorf("URL = %q", res.URL)
	}
	if res.WriteStatus != summarysheet.StatusOK {
		t.Errorf("WriteStatus = %q, want OK", res.WriteStatus)
	}
	if n, _ := f.book.Get(summarysheet.Title, summarysheet.DateRow, summarysheet.LatestCol).Int(); n != testSerial {
		t.Errorf("H1 = %d, want %d", n, testSerial)
	}
	if len(f.archive.kinds) != 1 || f.archive.kinds[0] != KindSummary {
		t.Errorf("archived %v", f.archive.kinds)
	}
}

func TestGetDailySummary_DryRun(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.GetDailySummary(context.Background(), testDate, false, 1)
	if err != nil {
		t.Fatal(err)
	}
	if res.WriteStatus != "" {
		t.Errorf("WriteStatus = %q, want empty on a dry run", res.WriteStatus)
	}
	if res.Counts == nil || res.Counts.PrefectureCounts["東京都"] != 1234 {
		t.Errorf("Counts = %+v", res.Counts)
	}
	if n := f.book.Calls(summarysheet.Title, "write"); n != 0 {
		t.Errorf("dry run wrote %d times", n)
	}
}

func TestGetDailySummary_NotFound(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.GetDailySummary(context.Background(), "2020-12-18", true, 1)
	if err != nil {
		t.Fatalf("GetDailySummary() error = %v, want a structured result", err)
	}
	if res.Error != ErrNoSummary {
		t.Errorf("Error = %q, want %q", res.Error, ErrNoSummary)
	}
}

func TestSummaryFromURL_Rejected(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.SummaryFromURL(context.Background(), testDate, f.nhk.URL+"/news/html/20201219/partial.html", true)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Errors) == 0 {
		t.Fatal("expected validation problems")
	}
	if res.WriteStatus != "" {
		t.Errorf("WriteStatus = %q, want empty", res.WriteStatus)
	}
	if len(res.Missing) == 0 {
		t.Error("expected missing aggregate fields")
	}
	if n := f.book.Calls(summarysheet.Title, "write"); n != 0 {
		t.Errorf("rejected summary wrote %d times", n)
	}
}

func TestSummaryFromURL_BadDate(t *testing.T) {
	f := newFixture(t)
	if _, err := f.svc.SummaryFromURL(context.Background(), "19/12/2020", f.nhk.URL+summaryPath, false); err == nil {
		t.Error("expected an error for a malformed date")
	}
}

func TestReconcileUpdates(t *testing.T) {
	f := newFixture(t)

	updates, err := f.svc.ReconcileUpdates(context.Background(), testDate, "")
	if err != nil {
		t.Fatal(err)
	}
	if got := updates["Tokyo"]; got == nil || got.Confirmed == nil || got.Confirmed.Count != 736 {
		t.Fatalf("Tokyo = %+v, want the larger count 736", got)
	}
	if got := updates["Akita"]; got == nil || got.Deceased == nil || got.Deceased.Count != 2 {
		t.Errorf("Akita = %+v", got)
	}

	only, err := f.svc.ReconcileUpdates(context.Background(), testDate, "tokyo")
	if err != nil {
		t.Fatal(err)
	}
	if len(only) != 1 {
		t.Errorf("filtered updates = %v", only.Prefectures())
	}
}

func TestListRSSArticles(t *testing.T) {
	f := newFixture(t)

	articles, err := f.svc.ListRSSArticles(context.Background(), "")
	if err != nil {
		t.Fatal(err)
	}
	if len(articles) != 2 {
		t.Fatalf("got %d articles, want 2", len(articles))
	}
	tokyo := articles[0]
	if tokyo.Prefecture != "Tokyo" || tokyo.Confirmed == nil || *tokyo.Confirmed != 736 {
		t.Errorf("articles[0] = %+v", tokyo)
	}
	if tokyo.Date != testDate {
		t.Errorf("Date = %q, want %q", tokyo.Date, testDate)
	}
	if articles[1].Structured() {
		t.Errorf("articles[1] should be unstructured: %+v", articles[1])
	}
}

func TestBatch_CommitNotifies(t *testing.T) {
	f := newFixture(t)

	_, res, err := f.svc.Batch(context.Background(), testDate, "", true)
	if err != nil {
		t.Fatalf("Batch() error = %v", err)
	}
	if res.Result != patients.ResultUpdated {
		t.Fatalf("Result = %q", res.Result)
	}

	var tokyo *patients.RowUpdate
	for i := range res.UpdatedRows {
		if res.UpdatedRows[i].Prefecture == "Tokyo" {
			tokyo = &res.UpdatedRows[i]
		}
	}
	if tokyo == nil {
		t.Fatal("no Tokyo row updated")
	}
	if n, _ := f.book.Get("Tokyo", tokyo.Row, patients.ColCount).Int(); n != 736 {
		t.Errorf("Tokyo count = %d, want 736", n)
	}

	if len(f.notifier.messages) != 1 {
		t.Fatalf("notifications = %d, want 1", len(f.notifier.messages))
	}
	want := "[updated]:\nAkita 2 deaths.\nTokyo 736 cases.\n"
	if f.notifier.messages[0] != want {
		t.Errorf("notification = %q, want %q", f.notifier.messages[0], want)
	}
}

func TestApplyUpdates_DryRunDoesNotNotify(t *testing.T) {
	f := newFixture(t)

	updates, err := f.svc.ReconcileUpdates(context.Background(), testDate, "")
	if err != nil {
		t.Fatal(err)
	}
	res, err := f.svc.ApplyUpdates(context.Background(), testDate, updates, false)
	if err != nil {
		t.Fatal(err)
	}
	if res.Result != patients.ResultNoChange || len(res.Pending) == 0 {
		t.Errorf("dry run result = %+v", res)
	}
	if len(f.notifier.messages) != 0 {
		t.Errorf("dry run sent %d notifications", len(f.notifier.messages))
	}
}

func TestApplyUpdates_NotifierFailureIsNotFatal(t *testing.T) {
	f := newFixture(t)
	f.notifier.err = errors.New("chat not found")

	updates, err := f.svc.ReconcileUpdates(context.Background(), testDate, "Tokyo")
	if err != nil {
		t.Fatal(err)
	}
	res, err := f.svc.ApplyUpdates(context.Background(), testDate, updates, true)
	if err != nil {
		t.Fatalf("ApplyUpdates() error = %v, want nil when only the notifier fails", err)
	}
	if res.Result != patients.ResultUpdated {
		t.Errorf("Result = %q", res.Result)
	}
}

func TestUpdatePortQuarantine(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.UpdatePortQuarantine(context.Background(), true)
	if err != nil {
		t.Fatalf("UpdatePortQuarantine() error = %v", err)
	}
	if res.Report.Count != 5 {
		t.Fatalf("Count = %d, want 5", res.Report.Count)
	}
	if res.Write == nil || len(res.Write.UpdatedRows) != 1 {
		t.Fatalf("Write = %+v", res.Write)
	}
	row := res.Write.UpdatedRows[0]
	if row.Sheet != patients.DefaultSheet || row.Prefecture != prefecture.PortQuarantine {
		t.Errorf("row = %+v", row)
	}
	if id := f.book.Get(patients.DefaultSheet, row.Row, patients.ColID).String(); id != "PRT20201219" {
		t.Errorf("id = %q, want PRT20201219", id)
	}
	if src := f.book.Get(patients.DefaultSheet, row.Row, patients.ColSource).String(); !strings.HasSuffix(src, "/port.html") {
		t.Errorf("source = %q", src)
	}
}

func TestReportDate(t *testing.T) {
	tests := map[string]string{
		"2020-12-19":          "2020-12-19",
		"2020-12-19T10:00:00": "2020-12-19",
		"":                    "",
		"令和2年12月19日":          "",
	}
	for in, want := range tests {
		if got := reportDate(in); got != want {
			t.Errorf("reportDate(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestVerify(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.Verify(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if res.HasLatestNhkSummary {
		t.Error("empty workbook should not have today's summary")
	}

	if _, err := f.svc.GetDailySummary(ctx, testDate, true, 1); err != nil {
		t.Fatal(err)
	}
	res, err = f.svc.Verify(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !res.OK() {
		t.Errorf("Verify() after a summary write = %+v", res)
	}
}

func TestNewArticles(t *testing.T) {
	store, err := storage.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	f := newFixture(t, WithStorage(store))
	ctx := context.Background()

	first, err := f.svc.NewArticles(ctx, 1, "")
	if err != nil {
		t.Fatalf("NewArticles() error = %v", err)
	}
	if len(first.NewArticles) != len(listing) {
		t.Errorf("first run found %d new articles, want %d", len(first.NewArticles), len(listing))
	}
	if len(first.Prefectures["Tokyo"]) != 2 {
		t.Errorf("Tokyo articles = %d, want 2", len(first.Prefectures["Tokyo"]))
	}

	second, err := f.svc.NewArticles(ctx, 1, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(second.NewArticles) != 0 {
		t.Errorf("second run found %d new articles, want 0", len(second.NewArticles))
	}
}

func TestNewArticles_RequiresStorage(t *testing.T) {
	f := newFixture(t)
	if _, err := f.svc.NewArticles(context.Background(), 1, ""); err == nil {
		t.Error("expected an error without snapshot storage")
	}
}

func TestToday(t *testing.T) {
	f := newFixture(t)
	if got := f.svc.Today(); got != testDate {
		t.Errorf("Today() = %q", got)
	}
	if got := f.svc.Yesterday(); got != "2020-12-18" {
		t.Errorf("Yesterday() = %q", got)
	}
}
