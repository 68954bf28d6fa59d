package provider

import (
	"context"
	"net/url"
	"strconv"

	"github.com/go-rod/rod"

	"github.com/seekerhq/websearch/config"
	"github.com/seekerhq/websearch/models"
	"github.com/seekerhq/websearch/serp"
	"github.com/seekerhq/websearch/session"
)

const braveResultsPerPage = 20

type brave struct {
	base
}

func newBrave(cfg *config.Config, sess *session.Manager) Provider {
	return &brave{base{
		cfg:      cfg,
		sess:     sess,
		name:     config.ProviderBrave,
		perPage:  braveResultsPerPage,
		pipeline: serp.New(serp.BraveRules(), cfg.SelectorTimeout),
	}}
}

// BuildTarget maps the query and page index onto Brave's parameter scheme.
// Brave paginates with offset= counting pages, not results. Language,
// region, safe search and time range have no documented URL mapping, so
// those filters degrade to no parameter.
func (b *brave) BuildTarget(query string, pageIndex int) string {
	params := url.Values{}
	params.Set("q", query)
	if pageIndex > 0 {
		params.Set("offset", strconv.Itoa(pageIndex))
	}
	params.Set("source", "web")
	return "https://search.brave.com/search?" + params.Encode()
}

func (b *brave) FetchPage(ctx context.Context, page *rod.Page, pageIndex int, query string) ([]models.WebResult, serp.PageMeta, error) {
	target := b.BuildTarget(query, pageIndex)
	if err := b.navigate(ctx, page, target, query); err != nil {
		return nil, serp.PageMeta{}, err
	}
	return b.parse(page, target, query)
}

func (b *brave) Search(ctx context.Context, query string) (*models.SearchResults, error) {
	return b.runSearch(ctx, b, query)
}
