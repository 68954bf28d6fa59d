// Package serp converts rendered search result pages into typed results.
//
// Provider markup is selector-fragile, so every field is located through an
// ordered fallback chain and malformed blocks are dropped individually
// instead of failing the page.
package serp

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-rod/rod"

	"github.com/seekerhq/websearch/models"
)

// Ruleset describes where a provider keeps its results. Selector lists are
// ordered fallback chains: the first one that matches wins.
type Ruleset struct {
	// Provider names the search service, recorded on every result.
	Provider string

	// Root lists candidate containers whose presence means results loaded.
	Root []string

	// Blocks lists candidate selectors for individual result blocks.
	Blocks []string

	// Title, Link, Snippet and DisplayURL locate fields within one block.
	// Link selectors must match an anchor; its href becomes the result URL.
	Title      []string
	Link       []string
	Snippet    []string
	DisplayURL []string

	// Meta optionally extracts page-level metadata (spelling correction,
	// estimated total) from the document.
	Meta func(doc *goquery.Document) PageMeta
}

// PageMeta is optional page-level metadata. Zero values mean absent.
type PageMeta struct {
	CorrectedQuery string
	EstimatedTotal int64
}

// Merge fills empty fields of m from other.
func (m *PageMeta) Merge(other PageMeta) {
	if m.CorrectedQuery == "" {
		m.CorrectedQuery = other.CorrectedQuery
	}
	if m.EstimatedTotal == 0 {
		m.EstimatedTotal = other.EstimatedTotal
	}
}

// Pipeline extracts results from one provider's pages.
type Pipeline struct {
	rules       Ruleset
	waitTimeout time.Duration
}

// New creates a Pipeline for the given ruleset. waitTimeout bounds the wait
// for the root results container.
func New(rules Ruleset, waitTimeout time.Duration) *Pipeline {
	return &Pipeline{rules: rules, waitTimeout: waitTimeout}
}

// Parse waits for the root results container on the page, snapshots the
// rendered HTML and extracts up to limit results.
//
// A missing root container is a soft failure: the provider may have changed
// layout or blocked the request, so Parse logs a warning and returns no
// results rather than an error.
func (p *Pipeline) Parse(page *rod.Page, limit int) ([]models.WebResult, PageMeta, error) {
	race := page.Timeout(p.waitTimeout).Race()
	for _, sel := range p.rules.Root {
		race = race.Element(sel)
	}
	if _, err := race.Do(); err != nil {
		slog.Warn("results container never appeared, returning no results",
			"provider", p.rules.Provider, "candidates", p.rules.Root, "error", err)
		return nil, PageMeta{}, nil
	}

	rawHTML, err := page.HTML()
	if err != nil {
		return nil, PageMeta{}, fmt.Errorf("failed to read page HTML: %w", err)
	}
	return p.ParseHTML(rawHTML, limit)
}

// ParseHTML extracts up to limit results from a rendered HTML snapshot.
// Blocks missing a title or a well-formed absolute URL are dropped with a
// logged reason; one malformed block never aborts its siblings.
func (p *Pipeline) ParseHTML(rawHTML string, limit int) ([]models.WebResult, PageMeta, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, PageMeta{}, fmt.Errorf("failed to parse page HTML: %w", err)
	}

	var meta PageMeta
	if p.rules.Meta != nil {
		meta = p.rules.Meta(doc)
	}

	var blocks *goquery.Selection
	for _, sel := range p.rules.Blocks {
		if s := doc.Find(sel); s.Length() > 0 {
			blocks = s
			break
		}
	}
	if blocks == nil {
		slog.Debug("no result blocks matched", "provider", p.rules.Provider)
		return nil, meta, nil
	}

	retrievedAt := time.Now().UTC()
	var results []models.WebResult
	position := 1

	blocks.EachWithBreak(func(_ int, block *goquery.Selection) bool {
		if limit > 0 && len(results) >= limit {
			return false
		}
		item, dropReason := p.extract(block)
		if dropReason != "" {
			slog.Debug("dropping result block",
				"provider", p.rules.Provider, "reason", dropReason)
			return true
		}
		item.Position = position
		item.Provider = p.rules.Provider
		item.RetrievedAt = retrievedAt
		results = append(results, item)
		position++
		return true
	})

	return results, meta, nil
}

// extract pulls one result out of a block. A non-empty drop reason means
// the block failed validation and must be skipped.
func (p *Pipeline) extract(block *goquery.Selection) (models.WebResult, string) {
	title := firstText(block, p.rules.Title)
	if title == "" {
		return models.WebResult{}, "missing title"
	}

	href := firstAttr(block, p.rules.Link, "href")
	if href == "" {
		return models.WebResult{}, "missing link"
	}
	resultURL, ok := absoluteURL(href)
	if !ok {
		return models.WebResult{}, fmt.Sprintf("link %q is not an absolute URL", href)
	}

	displayURL := firstText(block, p.rules.DisplayURL)
	if displayURL == "" && len(p.rules.DisplayURL) > 0 {
		displayURL = hostOf(resultURL)
	}

	return models.WebResult{
		Title:      title,
		URL:        resultURL,
		Snippet:    joinedText(block, p.rules.Snippet),
		DisplayURL: displayURL,
	}, ""
}

// firstText returns the trimmed text of the first selector in the chain
// that matches an element with non-empty text.
func firstText(s *goquery.Selection, selectors []string) string {
	for _, sel := range selectors {
		found := s.Find(sel).First()
		if found.Length() == 0 {
			continue
		}
		if text := strings.TrimSpace(found.Text()); text != "" {
			return text
		}
	}
	return ""
}

// joinedText returns the trimmed texts of all elements matched by the first
// selector in the chain with any matches, joined with a single space.
// Providers split snippets across sibling spans.
func joinedText(s *goquery.Selection, selectors []string) string {
	for _, sel := range selectors {
		matches := s.Find(sel)
		if matches.Length() == 0 {
			continue
		}
		var parts []string
		matches.Each(func(_ int, m *goquery.Selection) {
			if text := strings.TrimSpace(m.Text()); text != "" {
				parts = append(parts, text)
			}
		})
		if len(parts) > 0 {
			return strings.Join(parts, " ")
		}
	}
	return ""
}

// firstAttr returns the named attribute of the first matching element with
// a non-empty value for that attribute.
func firstAttr(s *goquery.Selection, selectors []string, attr string) string {
	for _, sel := range selectors {
		var value string
		s.Find(sel).EachWithBreak(func(_ int, m *goquery.Selection) bool {
			if v, ok := m.Attr(attr); ok && strings.TrimSpace(v) != "" {
				value = strings.TrimSpace(v)
				return false
			}
			return true
		})
		if value != "" {
			return value
		}
	}
	return ""
}

// absoluteURL validates href as a well-formed absolute http(s) URL.
func absoluteURL(href string) (string, bool) {
	u, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", false
	}
	return u.String(), true
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
