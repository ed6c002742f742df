package server

import (
	"strconv"

	"github.com/pfrederiksen/covid-jp-sync/internal/article"
)

const articlesTemplate = `<html>
<head>
<style>
th { text-align: left; background: #ddd; }
td { padding: 2px; border-bottom: 1px solid #ddd; }
</style>
</head>
<body style="font-family: sans-serif;">
<table>
<tr><th>Date</th><th>Prefecture</th><th>Confirmed</th><th>Deaths</th><th>Source</th></tr>
{{range .}}<tr>
<td>{{.Date}}</td>
<td>{{.Prefecture}}</td>
<td>{{with .Confirmed}}<a target="_blank" href="{{.URL}}">{{.Text}}</a>{{end}}</td>
<td>{{with .Deaths}}<a target="_blank" href="{{.URL}}">{{.Text}}</a>{{end}}</td>
<td><a href="{{.Source}}">{{.Title}}</a></td>
</tr>
{{end}}</table>
</body>
</html>`

type actionLink struct {
	URL  string
	Text string
}

type articleRow struct {
	Date       string
	Prefecture string
	Confirmed  *actionLink
	Deaths     *actionLink
	Source     string
	Title      string
}

// newArticleRow links each count to its update action. A prefecture
// article without a count gets a "?" link so the figure can be entered by
// hand; unstructured articles get no links.
func newArticleRow(base string, a *article.Article) articleRow {
	row := articleRow{
		Date:       a.Date,
		Prefecture: a.Prefecture,
		Source:     a.Source,
		Title:      a.Title,
	}
	if a.Prefecture == "" {
		return row
	}
	link := func(count *int, deceased bool) *actionLink {
		if count == nil || *count == 0 {
			return &actionLink{URL: ActionURL(base, a.Prefecture, a.Date, a.Source, 0, false), Text: "?"}
		}
		return &actionLink{URL: ActionURL(base, a.Prefecture, a.Date, a.Source, *count, deceased), Text: strconv.Itoa(*count)}
	}
	row.Confirmed = link(a.Confirmed, false)
	row.Deaths = link(a.Deaths, true)
	return row
}
