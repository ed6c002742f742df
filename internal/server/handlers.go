package server

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pfrederiksen/covid-jp-sync/internal/article"
	"github.com/pfrederiksen/covid-jp-sync/internal/prefecture"
	"github.com/pfrederiksen/covid-jp-sync/internal/scraper"
)

// date resolves ?yesterday and ?date, defaulting to today in JST.
func (s *Server) date(c *gin.Context) string {
	if flag(c, "yesterday") {
		return s.svc.Yesterday()
	}
	if d := c.Query("date"); d != "" {
		return d
	}
	return s.svc.Today()
}

// flag reports whether a boolean query parameter is set to anything but
// an explicit false.
func flag(c *gin.Context, name string) bool {
	v, ok := c.GetQuery(name)
	if !ok {
		return false
	}
	if v == "" {
		return true
	}
	b, err := strconv.ParseBool(v)
	return err != nil || b
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func serverError(c *gin.Context, err error) {
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

// validDate answers 400 for a malformed date.
func (s *Server) validDate(c *gin.Context, date string) bool {
	if _, err := article.ParseDate(date); err != nil {
		badRequest(c, err)
		return false
	}
	return true
}

func (s *Server) handleSummary(c *gin.Context) {
	date := s.date(c)
	if !s.validDate(c, date) {
		return
	}
	res, err := s.svc.GetDailySummary(c.Request.Context(), date, flag(c, "write"), scraper.DefaultPages)
	if err != nil {
		serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) handleArticles(c *gin.Context) {
	articles, err := s.svc.ListArticles(c.Request.Context(), scraper.ListPages)
	if err != nil {
		serverError(c, err)
		return
	}
	if c.DefaultQuery("output", "json") != "html" {
		c.JSON(http.StatusOK, articles)
		return
	}
	rows := make([]articleRow, 0, len(articles))
	for _, a := range articles {
		rows = append(rows, newArticleRow(s.actionBase, a))
	}
	c.HTML(http.StatusOK, "articles", rows)
}

func (s *Server) handleUpdatePatients(c *gin.Context) {
	date := s.date(c)
	if !s.validDate(c, date) {
		return
	}
	var updates article.Updates
	if err := c.ShouldBindJSON(&updates); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Expecting JSON body"})
		return
	}
	updates, err := canonicalUpdates(updates)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res, err := s.svc.ApplyUpdates(c.Request.Context(), date, updates, flag(c, "write"))
	if err != nil {
		serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// handleUpdatePatient applies the single observation carried by an action
// link of the HTML listing.
func (s *Server) handleUpdatePatient(c *gin.Context) {
	date := c.Query("date")
	if !s.validDate(c, date) {
		return
	}
	if c.Query("prefecture") == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "prefecture is required"})
		return
	}
	name, ok := prefecture.Canonicalize(c.Query("prefecture"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown prefecture %q", c.Query("prefecture"))})
		return
	}

	upd := &article.PrefectureUpdate{}
	source := c.Query("source")
	for param, dst := range map[string]**article.Observation{"cases": &upd.Confirmed, "deceased": &upd.Deceased} {
		v := c.Query(param)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + param})
			return
		}
		*dst = &article.Observation{Count: n, Source: source}
	}
	if upd.Confirmed == nil && upd.Deceased == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cases or deceased is required"})
		return
	}

	res, err := s.svc.ApplyUpdates(c.Request.Context(), date, article.Updates{name: upd}, flag(c, "write"))
	if err != nil {
		serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) handlePort(c *gin.Context) {
	res, err := s.svc.UpdatePortQuarantine(c.Request.Context(), flag(c, "write"))
	if err != nil {
		serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) handleRecoveries(c *gin.Context) {
	res, err := s.svc.UpdateRecoveries(c.Request.Context(), flag(c, "write"))
	if err != nil {
		serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) handleVerify(c *gin.Context) {
	res, err := s.svc.Verify(c.Request.Context())
	if err != nil {
		serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// ActionURL links to the single-row update endpoint for one observation.
// count is sent as cases, or as deceased when deceased is set; zero omits
// the count.
func ActionURL(base, name, date, source string, count int, deceased bool) string {
	q := url.Values{}
	q.Set("source", source)
	q.Set("prefecture", name)
	q.Set("date", date)
	if count > 0 {
		if deceased {
			q.Set("deceased", strconv.Itoa(count))
		} else {
			q.Set("cases", strconv.Itoa(count))
		}
	}
	return base + "/patients/update?" + q.Encode()
}

// canonicalUpdates rekeys updates by canonical prefecture name.
func canonicalUpdates(updates article.Updates) (article.Updates, error) {
	out := make(article.Updates, len(updates))
	for name, upd := range updates {
		canonical, ok := prefecture.Canonicalize(name)
		if !ok {
			return nil, fmt.Errorf("unknown prefecture %q", name)
		}
		out[canonical] = upd
	}
	return out, nil
}
