package serp

// BraveRules locates organic results on a Brave Search result page.
// Brave shows no separate display URL worth extracting, so the field is
// left unset.
func BraveRules() Ruleset {
	return Ruleset{
		Provider: "brave",
		Root:     []string{"#results"},
		Blocks: []string{
			"#results .snippet[data-type='web']",
			"#results .snippet",
		},
		Title: []string{".title"},
		Link:  []string{"a[href]"},
		Snippet: []string{
			".snippet-content",
			"p.snippet-description",
			"div.desc",
		},
	}
}
