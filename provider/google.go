package provider

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-rod/rod"

	"github.com/seekerhq/websearch/config"
	"github.com/seekerhq/websearch/models"
	"github.com/seekerhq/websearch/serp"
	"github.com/seekerhq/websearch/session"
)

const googleResultsPerPage = 10

type google struct {
	base
}

func newGoogle(cfg *config.Config, sess *session.Manager) Provider {
	return &google{base{
		cfg:      cfg,
		sess:     sess,
		name:     config.ProviderGoogle,
		perPage:  googleResultsPerPage,
		pipeline: serp.New(serp.GoogleRules(), cfg.SelectorTimeout),
	}}
}

// BuildTarget maps the query and page index onto Google's parameter scheme:
// start= for pagination, hl/lr for language, gl for region, safe= for the
// filter level, tbs=qdr:* for the recency bucket.
func (g *google) BuildTarget(query string, pageIndex int) string {
	params := url.Values{}
	params.Set("q", query)
	if pageIndex > 0 {
		params.Set("start", strconv.Itoa(pageIndex*googleResultsPerPage))
	}

	if lang := g.cfg.Language; lang != "" {
		params.Set("hl", lang)
		baseLang, _, _ := strings.Cut(lang, "-")
		params.Set("lr", "lang_"+baseLang)
	}
	if g.cfg.Region != "" {
		params.Set("gl", strings.ToUpper(g.cfg.Region))
	}
	params.Set("num", strconv.Itoa(g.cfg.NumResults))

	switch g.cfg.SafeSearch {
	case config.SafeSearchOn:
		params.Set("safe", "active")
	case config.SafeSearchModerate:
		params.Set("safe", "images")
	case config.SafeSearchOff:
		params.Set("safe", "off")
	}

	switch g.cfg.TimeRange {
	case config.TimeRangeDay:
		params.Set("tbs", "qdr:d")
	case config.TimeRangeWeek:
		params.Set("tbs", "qdr:w")
	case config.TimeRangeMonth:
		params.Set("tbs", "qdr:m")
	case config.TimeRangeYear:
		params.Set("tbs", "qdr:y")
	}

	return "https://www.google.com/search?" + params.Encode()
}

func (g *google) FetchPage(ctx context.Context, page *rod.Page, pageIndex int, query string) ([]models.WebResult, serp.PageMeta, error) {
	target := g.BuildTarget(query, pageIndex)
	if err := g.navigate(ctx, page, target, query); err != nil {
		return nil, serp.PageMeta{}, err
	}
	return g.parse(page, target, query)
}

func (g *google) Search(ctx context.Context, query string) (*models.SearchResults, error) {
	return g.runSearch(ctx, g, query)
}
