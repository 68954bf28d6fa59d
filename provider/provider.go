// Package provider implements one adapter per search service. An adapter
// turns a logical query into navigations: it decides how many pages are
// needed, builds the target URL for each page index, drives any
// provider-specific interaction, and hands the loaded page to the
// extraction pipeline.
package provider

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"golang.org/x/sync/errgroup"

	"github.com/seekerhq/websearch/config"
	"github.com/seekerhq/websearch/models"
	"github.com/seekerhq/websearch/serp"
	"github.com/seekerhq/websearch/session"
)

// Provider is the capability interface implemented once per search service.
type Provider interface {
	// Name returns the provider identifier.
	Name() config.Provider

	// PagesNeeded returns how many pages must be fetched to satisfy the
	// configured result count.
	PagesNeeded() int

	// BuildTarget deterministically maps a query and a zero-based page
	// index to a fully-formed URL.
	BuildTarget(query string, pageIndex int) string

	// FetchPage navigates the handle to the page's target, performs any
	// provider-specific interaction, and extracts the results.
	FetchPage(ctx context.Context, page *rod.Page, pageIndex int, query string) ([]models.WebResult, serp.PageMeta, error)

	// Search runs the whole query: acquire pages, fetch them concurrently,
	// aggregate in page-index order, release every handle.
	Search(ctx context.Context, query string) (*models.SearchResults, error)
}

type factory func(cfg *config.Config, sess *session.Manager) Provider

var registry = map[config.Provider]factory{
	config.ProviderGoogle:     newGoogle,
	config.ProviderDuckDuckGo: newDuckDuckGo,
	config.ProviderBrave:      newBrave,
}

// New resolves the configured provider to its adapter.
func New(cfg *config.Config, sess *session.Manager) (Provider, error) {
	f, ok := registry[cfg.Provider]
	if !ok {
		return nil, models.NewConfigurationError(
			fmt.Sprintf("provider %q is not registered", cfg.Provider), nil)
	}
	return f(cfg, sess), nil
}

// base carries the state and behavior shared by all adapters.
type base struct {
	cfg      *config.Config
	sess     *session.Manager
	name     config.Provider
	perPage  int
	pipeline *serp.Pipeline
}

func (b *base) Name() config.Provider { return b.name }

// PagesNeeded is ceil(requested / perPage). Providers that load results
// through in-page interaction rather than discrete pages use a single page.
func (b *base) PagesNeeded() int {
	if b.perPage <= 1 {
		return 1
	}
	return (b.cfg.NumResults-1)/b.perPage + 1
}

// navigate loads target into the page under the configured navigation
// timeout, waiting for the DOM to settle afterwards. The session's rate
// limiter gates every navigation.
func (b *base) navigate(ctx context.Context, page *rod.Page, target, query string) error {
	if err := b.sess.Limiter().Wait(ctx); err != nil {
		return models.NewNavigationError(string(b.name), query, target, err)
	}

	navCtx, cancel := context.WithTimeout(ctx, b.cfg.NavigationTimeout)
	defer cancel()
	p := page.Context(navCtx)

	if err := p.Navigate(target); err != nil {
		return models.NewNavigationError(string(b.name), query, target, err)
	}
	if err := p.WaitDOMStable(300*time.Millisecond, 0.1); err != nil {
		slog.Debug("DOM did not stabilize, proceeding with current state",
			"provider", b.name, "url", target, "error", err)
	}
	return nil
}

// parse runs the extraction pipeline against the loaded page.
func (b *base) parse(page *rod.Page, target, query string) ([]models.WebResult, serp.PageMeta, error) {
	items, meta, err := b.pipeline.Parse(page, b.cfg.NumResults)
	if err != nil {
		return nil, meta, models.NewEngineError(
			string(b.name), query, target, "failed to extract results", err)
	}
	return items, meta, nil
}

// runSearch is the shared query driver. All page fetches for one query run
// concurrently; the first failure aborts the query. Every handle is
// released on every exit path.
func (b *base) runSearch(ctx context.Context, p Provider, query string) (*models.SearchResults, error) {
	n := p.PagesNeeded()
	pages, err := b.sess.AcquirePages(n)
	if err != nil {
		return nil, err
	}
	defer func() {
		for _, page := range pages {
			b.sess.ReleasePage(page)
		}
	}()

	start := time.Now()
	perPage, metas, err := fanOut(ctx, n,
		func(ctx context.Context, pageIndex int) ([]models.WebResult, serp.PageMeta, error) {
			return p.FetchPage(ctx, pages[pageIndex], pageIndex, query)
		})
	if err != nil {
		return nil, err
	}

	var meta serp.PageMeta
	for _, m := range metas {
		meta.Merge(m)
	}

	return &models.SearchResults{
		Query:                 query,
		Provider:              string(b.name),
		WebResults:            merge(perPage, b.cfg.NumResults),
		CorrectedQuery:        meta.CorrectedQuery,
		TotalEstimatedResults: meta.EstimatedTotal,
		PageLoadTimeMS:        float64(time.Since(start).Microseconds()) / 1000,
	}, nil
}

// fanOut fetches every page index concurrently. Results come back indexed
// by page, so completion order never affects output order. The first
// failure cancels the remaining fetches and fails the batch.
func fanOut(ctx context.Context, n int,
	fetch func(ctx context.Context, pageIndex int) ([]models.WebResult, serp.PageMeta, error),
) ([][]models.WebResult, []serp.PageMeta, error) {
	perPage := make([][]models.WebResult, n)
	metas := make([]serp.PageMeta, n)

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			items, meta, err := fetch(gctx, i)
			if err != nil {
				return err
			}
			perPage[i] = items
			metas[i] = meta
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return perPage, metas, nil
}

// merge flattens per-page results in page-index order, capped at limit.
func merge(perPage [][]models.WebResult, limit int) []models.WebResult {
	var out []models.WebResult
	for _, page := range perPage {
		for _, item := range page {
			if limit > 0 && len(out) >= limit {
				return out
			}
			out = append(out, item)
		}
	}
	return out
}
