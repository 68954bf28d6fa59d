package serp

import (
	"testing"
	"time"
)

const googleFixture = `
<html><body>
<div id="result-stats">About 1,230,000 results (0.42 seconds)</div>
<p>Showing results for <a id="fprsl" href="/search?q=golang">golang</a></p>
<div id="search">
  <div data-hveid="CAB">
    <a href="https://go.dev/doc/"><h3>Go Documentation</h3><cite>go.dev</cite></a>
    <div data-sncf="1">The official Go documentation.</div>
  </div>
  <div data-hveid="CAC">
    <a href="https://go.dev/tour/"><h3>A Tour of Go</h3></a>
    <div class="VwiC3b"><span>An interactive</span><span>introduction.</span></div>
  </div>
  <div data-hveid="CAD">
    <a href="https://example.org/third"><h3>Third Result</h3><cite>example.org</cite></a>
  </div>
</div>
</body></html>`

func TestGoogle_ParseHTML(t *testing.T) {
	p := New(GoogleRules(), 10*time.Second)
	results, meta, err := p.ParseHTML(googleFixture, 10)
	if err != nil {
		t.Fatalf("ParseHTML error: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}

	first := results[0]
	if first.Title != "Go Documentation" {
		t.Errorf("title = %q", first.Title)
	}
	if first.URL != "https://go.dev/doc/" {
		t.Errorf("url = %q", first.URL)
	}
	if first.Snippet != "The official Go documentation." {
		t.Errorf("snippet = %q", first.Snippet)
	}
	if first.DisplayURL != "go.dev" {
		t.Errorf("display url = %q", first.DisplayURL)
	}
	if first.Provider != "google" {
		t.Errorf("provider = %q", first.Provider)
	}
	if first.RetrievedAt.IsZero() {
		t.Error("retrieved_at not set")
	}

	// Second block has no data-sncf div; the span chain must kick in.
	if results[1].Snippet != "An interactive introduction." {
		t.Errorf("fallback snippet = %q", results[1].Snippet)
	}

	// Positions are 1-based and monotonic.
	for i, r := range results {
		if r.Position != i+1 {
			t.Errorf("results[%d].Position = %d, want %d", i, r.Position, i+1)
		}
	}

	if meta.EstimatedTotal != 1230000 {
		t.Errorf("estimated total = %d, want 1230000", meta.EstimatedTotal)
	}
	if meta.CorrectedQuery != "golang" {
		t.Errorf("corrected query = %q, want golang", meta.CorrectedQuery)
	}
}

func TestGoogle_BlockFallbackSelector(t *testing.T) {
	// Older layout: no data-hveid markers, results under div.g.
	html := `<div id="search">
		<div class="g"><a href="https://example.com/a"><h3>Alpha</h3></a></div>
		<div class="g"><a href="https://example.com/b"><h3>Beta</h3></a></div>
	</div>`

	p := New(GoogleRules(), 10*time.Second)
	results, _, err := p.ParseHTML(html, 10)
	if err != nil {
		t.Fatalf("ParseHTML error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	// No cite element: display URL falls back to the link hostname.
	if results[0].DisplayURL != "example.com" {
		t.Errorf("display url = %q, want example.com", results[0].DisplayURL)
	}
}

func TestParseHTML_DropsInvalidItemsWithoutAbortingSiblings(t *testing.T) {
	html := `<div id="search">
		<div data-hveid="1"><a href="https://ok.example/1"><h3>Valid One</h3></a></div>
		<div data-hveid="2"><a href="https://dropped.example"><h3></h3></a></div>
		<div data-hveid="3"><h3>Relative Link</h3><a href="/url?q=x">x</a></div>
		<div data-hveid="4"><h3>No Link At All</h3></div>
		<div data-hveid="5"><a href="https://ok.example/2"><h3>Valid Two</h3></a></div>
	</div>`

	p := New(GoogleRules(), 10*time.Second)
	results, _, err := p.ParseHTML(html, 10)
	if err != nil {
		t.Fatalf("ParseHTML error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Title != "Valid One" || results[1].Title != "Valid Two" {
		t.Errorf("unexpected survivors: %q, %q", results[0].Title, results[1].Title)
	}
	// Dropped blocks must not consume positions.
	if results[1].Position != 2 {
		t.Errorf("position = %d, want 2", results[1].Position)
	}
}

func TestParseHTML_StopsAtLimit(t *testing.T) {
	html := `<div id="search">
		<div data-hveid="1"><a href="https://a.example/"><h3>A</h3></a></div>
		<div data-hveid="2"><a href="https://b.example/"><h3>B</h3></a></div>
		<div data-hveid="3"><a href="https://c.example/"><h3>C</h3></a></div>
	</div>`

	p := New(GoogleRules(), 10*time.Second)
	results, _, err := p.ParseHTML(html, 2)
	if err != nil {
		t.Fatalf("ParseHTML error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
}

func TestParseHTML_MissingRootIsSoft(t *testing.T) {
	p := New(GoogleRules(), 10*time.Second)
	results, _, err := p.ParseHTML(`<html><body><p>unusual layout</p></body></html>`, 10)
	if err != nil {
		t.Fatalf("ParseHTML error: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("got %d results, want 0", len(results))
	}
}

func TestDuckDuckGo_ParseHTML(t *testing.T) {
	html := `<div class="react-results--main">
		<article data-testid="result">
			<h2><a href="https://go.dev/">The Go Programming Language</a></h2>
			<span data-testid="result-extras-url-host">go.dev</span>
			<div data-testid="result-snippet">Build simple, secure, scalable systems.</div>
		</article>
		<article data-testid="result">
			<h2><a href="https://pkg.go.dev/">Go Packages</a></h2>
			<div class="result__snippet">Package discovery site.</div>
		</article>
	</div>`

	p := New(DuckDuckGoRules(), 10*time.Second)
	results, _, err := p.ParseHTML(html, 10)
	if err != nil {
		t.Fatalf("ParseHTML error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Title != "The Go Programming Language" {
		t.Errorf("title = %q", results[0].Title)
	}
	if results[0].URL != "https://go.dev/" {
		t.Errorf("url = %q", results[0].URL)
	}
	if results[0].DisplayURL != "go.dev" {
		t.Errorf("display url = %q", results[0].DisplayURL)
	}
	if results[1].Snippet != "Package discovery site." {
		t.Errorf("fallback snippet = %q", results[1].Snippet)
	}
	// Second result carries no url-host span: hostname fallback applies.
	if results[1].DisplayURL != "pkg.go.dev" {
		t.Errorf("display url = %q, want pkg.go.dev", results[1].DisplayURL)
	}
}

func TestBrave_ParseHTML(t *testing.T) {
	html := `<div id="results">
		<div class="snippet" data-type="web">
			<a href="https://go.dev/"><div class="title">The Go Programming Language</div></a>
			<p class="snippet-description">Official site.</p>
		</div>
		<div class="snippet" data-type="news">
			<a href="https://news.example/"><div class="title">Should Not Appear</div></a>
		</div>
		<div class="snippet" data-type="web">
			<a href="https://go.dev/blog/"><div class="title">The Go Blog</div></a>
			<div class="desc">Articles from the Go team.</div>
		</div>
	</div>`

	p := New(BraveRules(), 10*time.Second)
	results, _, err := p.ParseHTML(html, 10)
	if err != nil {
		t.Fatalf("ParseHTML error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2 (web results only)", len(results))
	}
	if results[1].Snippet != "Articles from the Go team." {
		t.Errorf("snippet = %q", results[1].Snippet)
	}
	if results[0].DisplayURL != "" {
		t.Errorf("brave results should have no display url, got %q", results[0].DisplayURL)
	}
}

func TestAbsoluteURL(t *testing.T) {
	tests := []struct {
		href string
		want bool
	}{
		{"https://example.com/path", true},
		{"http://example.com", true},
		{"ftp://example.com", false},
		{"/relative/path", false},
		{"javascript:void(0)", false},
		{"", false},
		{"://bad", false},
	}

	for _, tt := range tests {
		if _, ok := absoluteURL(tt.href); ok != tt.want {
			t.Errorf("absoluteURL(%q) = %v, want %v", tt.href, ok, tt.want)
		}
	}
}

func TestPageMeta_Merge(t *testing.T) {
	m := PageMeta{}
	m.Merge(PageMeta{CorrectedQuery: "golang", EstimatedTotal: 100})
	m.Merge(PageMeta{CorrectedQuery: "ignored", EstimatedTotal: 5})

	if m.CorrectedQuery != "golang" {
		t.Errorf("corrected query = %q", m.CorrectedQuery)
	}
	if m.EstimatedTotal != 100 {
		t.Errorf("estimated total = %d", m.EstimatedTotal)
	}
}
