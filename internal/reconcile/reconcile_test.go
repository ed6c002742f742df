package reconcile

import (
	"reflect"
	"testing"

	"github.com/pfrederiksen/covid-jp-sync/internal/article"
)

func structured(date, pref, source string, confirmed, deaths *int) *article.Article {
	a := article.New(date, pref+" report", source)
	a.Prefecture = pref
	a.Confirmed = confirmed
	a.Deaths = deaths
	return a
}

func TestReconcile_MaxWins(t *testing.T) {
	low := structured("2020-12-19", "Tokyo", "https://example.com/low", article.Int(10), nil)
	high := structured("2020-12-19", "Tokyo", "https://example.com/high", article.Int(15), nil)

	for name, order := range map[string][]*article.Article{
		"ascending":  {low, high},
		"descending": {high, low},
	} {
		t.Run(name, func(t *testing.T) {
			got := Reconcile("2020-12-19", order, "")
			upd := got["Tokyo"]
			if upd == nil || upd.Confirmed == nil {
				t.Fatalf("expected Tokyo confirmed update, got %+v", got)
			}
			if upd.Confirmed.Count != 15 {
				t.Errorf("Count = %d, want 15", upd.Confirmed.Count)
			}
			if upd.Confirmed.Source != "https://example.com/high" {
				t.Errorf("Source = %q, want the article that reported 15", upd.Confirmed.Source)
			}
			if upd.Deceased != nil {
				t.Errorf("Deceased = %+v, want nil", upd.Deceased)
			}
		})
	}
}

func TestReconcile_TieKeepsFirst(t *testing.T) {
	first := structured("2020-12-19", "Osaka", "https://example.com/first", article.Int(20), nil)
	second := structured("2020-12-19", "Osaka", "https://example.com/second", article.Int(20), nil)

	got := Reconcile("2020-12-19", []*article.Article{first, second}, "")
	if src := got["Osaka"].Confirmed.Source; src != "https://example.com/first" {
		t.Errorf("Source = %q, want first observation", src)
	}
}

func TestReconcile_Metrics(t *testing.T) {
	articles := []*article.Article{
		structured("2020-12-19", "Hokkaido", "https://example.com/1", article.Int(150), article.Int(3)),
		structured("2020-12-19", "Hokkaido", "https://example.com/2", nil, article.Int(5)),
		structured("2020-12-19", "Hokkaido", "https://example.com/3", article.Int(120), nil),
	}

	got := Reconcile("2020-12-19", articles, "")
	upd := got["Hokkaido"]
	if upd.Confirmed.Count != 150 || upd.Confirmed.Source != "https://example.com/1" {
		t.Errorf("Confirmed = %+v, want 150 from article 1", upd.Confirmed)
	}
	if upd.Deceased.Count != 5 || upd.Deceased.Source != "https://example.com/2" {
		t.Errorf("Deceased = %+v, want 5 from article 2", upd.Deceased)
	}
}

func TestReconcile_Filters(t *testing.T) {
	articles := []*article.Article{
		structured("2020-12-19", "Tokyo", "https://example.com/t", article.Int(736), nil),
		structured("2020-12-18", "Tokyo", "https://example.com/old", article.Int(900), nil),
		structured("2020-12-19", "Aichi", "https://example.com/a", article.Int(128), nil),
		structured("2020-12-19", "Chiba", "https://example.com/c", nil, nil),
		structured("2020-12-19", "Gifu", "https://example.com/g", article.Int(0), nil),
		article.New("2020-12-19", "【国内感染】全国で2992人", "https://example.com/summary"),
		nil,
	}

	t.Run("date only", func(t *testing.T) {
		got := Reconcile("2020-12-19", articles, "")
		want := []string{"Aichi", "Tokyo"}
		if !reflect.DeepEqual(got.Prefectures(), want) {
			t.Errorf("Prefectures() = %v, want %v", got.Prefectures(), want)
		}
		if got["Tokyo"].Confirmed.Count != 736 {
			t.Errorf("Tokyo count = %d, want 736 (other dates ignored)", got["Tokyo"].Confirmed.Count)
		}
	})

	t.Run("prefecture case-insensitive", func(t *testing.T) {
		got := Reconcile("2020-12-19", articles, "tokyo")
		if !reflect.DeepEqual(got.Prefectures(), []string{"Tokyo"}) {
			t.Errorf("Prefectures() = %v, want [Tokyo]", got.Prefectures())
		}
	})

	t.Run("no matches", func(t *testing.T) {
		got := Reconcile("2020-01-01", articles, "")
		if len(got) != 0 {
			t.Errorf("expected empty updates, got %v", got)
		}
	})
}

func TestReconcile_Deterministic(t *testing.T) {
	articles := []*article.Article{
		structured("2020-12-19", "Tokyo", "https://example.com/1", article.Int(5), nil),
		structured("2020-12-19", "Tokyo", "https://example.com/2", article.Int(9), article.Int(1)),
		structured("2020-12-19", "Osaka", "https://example.com/3", article.Int(7), nil),
	}
	first := Reconcile("2020-12-19", articles, "")
	for i := 0; i < 5; i++ {
		if got := Reconcile("2020-12-19", articles, ""); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d differs: %v vs %v", i, got, first)
		}
	}
}

func TestFilter(t *testing.T) {
	tokyo := structured("2020-12-19", "Tokyo", "https://example.com/t", article.Int(1), nil)
	osaka := structured("2020-12-19", "Osaka", "https://example.com/o", article.Int(1), nil)
	plain := article.New("2020-12-19", "plain", "https://example.com/p")
	old := article.New("2020-12-18", "old", "https://example.com/old")
	all := []*article.Article{tokyo, osaka, plain, old}

	if got := Filter(all, "", ""); len(got) != 4 {
		t.Errorf("no filters: got %d, want 4", len(got))
	}
	if got := Filter(all, "2020-12-19", ""); len(got) != 3 {
		t.Errorf("date filter: got %d, want 3", len(got))
	}
	got := Filter(all, "2020-12-19", "TOKYO")
	if len(got) != 2 || got[0] != tokyo || got[1] != plain {
		t.Errorf("prefecture filter keeps Tokyo and unstructured, got %v", got)
	}
}
