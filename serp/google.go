package serp

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// GoogleRules locates organic results on a Google result page.
//
// data-hveid is the most stable marker for result blocks; div.g is the
// older layout kept as a fallback.
func GoogleRules() Ruleset {
	return Ruleset{
		Provider: "google",
		Root:     []string{"#search"},
		Blocks:   []string{"#search [data-hveid]", "div.g"},
		Title:    []string{"h3"},
		Link:     []string{"a[href]"},
		Snippet: []string{
			"div[data-sncf='1']",
			"div.VwiC3b span",
			"div.MUxGbd span",
		},
		DisplayURL: []string{"cite"},
		Meta:       googleMeta,
	}
}

var statsNumberRe = regexp.MustCompile(`[0-9][0-9.,\x{00a0}\s]*`)

// googleMeta reads the spelling correction and the estimated total result
// count. Both are frequently absent and that is not an error.
func googleMeta(doc *goquery.Document) PageMeta {
	var meta PageMeta

	// "Showing results for <a id=fprsl>..." when the query was corrected.
	if corrected := strings.TrimSpace(doc.Find("a#fprsl").First().Text()); corrected != "" {
		meta.CorrectedQuery = corrected
	}

	// "#result-stats" reads like "About 1,230,000 results (0.42 seconds)".
	stats := strings.TrimSpace(doc.Find("#result-stats").First().Text())
	if raw := statsNumberRe.FindString(stats); raw != "" {
		digits := strings.Map(func(r rune) rune {
			if r >= '0' && r <= '9' {
				return r
			}
			return -1
		}, raw)
		if n, err := strconv.ParseInt(digits, 10, 64); err == nil {
			meta.EstimatedTotal = n
		}
	}

	return meta
}
