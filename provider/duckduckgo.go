package provider

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/seekerhq/websearch/config"
	"github.com/seekerhq/websearch/models"
	"github.com/seekerhq/websearch/serp"
	"github.com/seekerhq/websearch/session"
)

// DuckDuckGo serves everything on one page and loads further batches of
// roughly this size through its "More Results" control.
const duckduckgoBatchSize = 10

type duckduckgo struct {
	base
}

func newDuckDuckGo(cfg *config.Config, sess *session.Manager) Provider {
	return &duckduckgo{base{
		cfg:      cfg,
		sess:     sess,
		name:     config.ProviderDuckDuckGo,
		perPage:  1, // in-page incremental loading, never discrete pages
		pipeline: serp.New(serp.DuckDuckGoRules(), cfg.SelectorTimeout),
	}}
}

// BuildTarget maps the query onto DuckDuckGo's parameter scheme: kl for the
// region-language pair, kp for the filter level, df for the recency bucket.
// Pagination happens in-page, so the page index never changes the URL.
func (d *duckduckgo) BuildTarget(query string, _ int) string {
	params := url.Values{}
	params.Set("q", query)

	region, lang := d.cfg.Region, d.cfg.Language
	switch {
	case region != "" && lang != "":
		baseLang, _, _ := strings.Cut(lang, "-")
		params.Set("kl", strings.ToLower(region)+"-"+strings.ToLower(baseLang))
	case region != "":
		params.Set("kl", strings.ToLower(region))
	}

	switch d.cfg.SafeSearch {
	case config.SafeSearchOn:
		params.Set("kp", "-1")
	case config.SafeSearchModerate:
		params.Set("kp", "-2")
	case config.SafeSearchOff:
		params.Set("kp", "1")
	}

	switch d.cfg.TimeRange {
	case config.TimeRangeDay:
		params.Set("df", "d")
	case config.TimeRangeWeek:
		params.Set("df", "w")
	case config.TimeRangeMonth:
		params.Set("df", "m")
	case config.TimeRangeYear:
		params.Set("df", "y")
	}

	params.Set("ia", "web")
	return "https://duckduckgo.com/?" + params.Encode()
}

func (d *duckduckgo) FetchPage(ctx context.Context, page *rod.Page, pageIndex int, query string) ([]models.WebResult, serp.PageMeta, error) {
	target := d.BuildTarget(query, pageIndex)
	if err := d.navigate(ctx, page, target, query); err != nil {
		return nil, serp.PageMeta{}, err
	}
	d.loadMore(ctx, page)
	return d.parse(page, target, query)
}

// loadMore clicks the "More Results" control once per extra result batch.
// If the control never appears or stops responding, the loop ends early and
// extraction proceeds with whatever has loaded; fewer results is a soft
// outcome, not a failure.
func (d *duckduckgo) loadMore(ctx context.Context, page *rod.Page) {
	rounds := (d.cfg.NumResults - 1) / duckduckgoBatchSize
	for i := 0; i < rounds; i++ {
		if err := d.clickMore(ctx, page); err != nil {
			slog.Warn("load-more control unavailable, stopping early",
				"provider", d.name, "round", i, "rounds", rounds, "error", err)
			return
		}
	}
}

func (d *duckduckgo) clickMore(ctx context.Context, page *rod.Page) error {
	waitCtx, cancel := context.WithTimeout(ctx, d.cfg.SelectorTimeout)
	defer cancel()
	p := page.Context(waitCtx)

	el, err := p.Element("button#more-results")
	if err != nil {
		return err
	}
	if err := el.WaitVisible(); err != nil {
		return err
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return err
	}
	if _, err := p.Eval(`() => window.scrollTo(0, document.body.scrollHeight)`); err != nil {
		return err
	}
	// Let the next batch render before looking for the control again.
	if err := p.WaitDOMStable(300*time.Millisecond, 0.1); err != nil {
		slog.Debug("DOM did not stabilize after load-more", "error", err)
	}
	return nil
}

func (d *duckduckgo) Search(ctx context.Context, query string) (*models.SearchResults, error) {
	return d.runSearch(ctx, d, query)
}
