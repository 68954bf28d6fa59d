package serp

// DuckDuckGoRules locates organic results on a DuckDuckGo result page.
// The title anchor carries the result link, so Title and Link share a
// selector.
func DuckDuckGoRules() Ruleset {
	return Ruleset{
		Provider: "duckduckgo",
		Root:     []string{".react-results--main"},
		Blocks: []string{
			".react-results--main article[data-testid='result']",
			".react-results--main [data-layout='organic']",
		},
		Title: []string{"h2 a[href]"},
		Link:  []string{"h2 a[href]"},
		Snippet: []string{
			"div[data-testid='result-snippet']",
			".result__snippet",
		},
		DisplayURL: []string{
			"span[data-testid='result-extras-url-host']",
			"span.result__url__domain",
		},
	}
}
