package models

import "time"

// WebResult is one organic result extracted from a provider's result page.
type WebResult struct {
	// Title is the result heading. Always non-empty.
	Title string `json:"title"`

	// URL is the canonical result link as an absolute URL. Always non-empty.
	URL string `json:"url"`

	// Snippet is the short description shown under the title, if any.
	Snippet string `json:"snippet,omitempty"`

	// DisplayURL is the human-readable URL shown in the result block.
	DisplayURL string `json:"display_url,omitempty"`

	// Position is the 1-based position of the result within its page.
	Position int `json:"position"`

	// Provider names the search service that produced this result.
	Provider string `json:"provider"`

	// RetrievedAt is the UTC timestamp of extraction.
	RetrievedAt time.Time `json:"retrieved_at"`
}

// SearchResults is the envelope returned for one query.
type SearchResults struct {
	// Query is the original query string.
	Query string `json:"query"`

	// Provider names the search service that was queried.
	Provider string `json:"provider"`

	// WebResults is ordered by (page index, in-page position) and capped
	// at the configured result count.
	WebResults []WebResult `json:"web_results"`

	// CorrectedQuery is the provider's spelling correction, when offered.
	CorrectedQuery string `json:"corrected_query,omitempty"`

	// TotalEstimatedResults is the provider's estimated total match count,
	// when the result page reports one.
	TotalEstimatedResults int64 `json:"total_estimated_results,omitempty"`

	// PageLoadTimeMS is the wall-clock duration of all page fetches.
	PageLoadTimeMS float64 `json:"page_load_time_ms,omitempty"`
}
