// Command websearch runs one query against a search provider through a
// headless browser and prints the extracted results.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"

	websearch "github.com/seekerhq/websearch"
	"github.com/seekerhq/websearch/config"
	"github.com/seekerhq/websearch/models"
)

func main() {
	os.Exit(run())
}

func run() int {
	engine := flag.String("engine", "google", "search provider: google, ddg, brave")
	numResults := flag.Int("n", 10, "number of results to fetch")
	headless := flag.Bool("headless", true, "run the browser headless")
	language := flag.String("lang", "", "result language, e.g. en or en-US")
	region := flag.String("region", "", "result region, e.g. us")
	safeSearch := flag.String("safe", "off", "safe search level: off, moderate, on")
	timeRange := flag.String("time", "any", "time range: any, day, week, month, year")
	proxy := flag.String("proxy", "", "proxy URL for the browser")
	timeout := flag.Duration("timeout", 30*time.Second, "per-page navigation timeout")
	logLevel := flag.String("log-level", "warn", "log level: debug, info, warn, error")
	flag.Parse()

	query := strings.TrimSpace(strings.Join(flag.Args(), " "))
	if query == "" {
		fmt.Fprintln(os.Stderr, "usage: websearch [flags] <query>")
		flag.PrintDefaults()
		return 2
	}

	setupLogging(*logLevel)

	cfg := config.Default()
	cfg.Provider = resolveProvider(*engine)
	cfg.NumResults = *numResults
	cfg.Headless = *headless
	cfg.Language = *language
	cfg.Region = *region
	cfg.SafeSearch = config.SafeSearch(*safeSearch)
	cfg.TimeRange = config.TimeRange(*timeRange)
	cfg.Proxy = *proxy
	cfg.NavigationTimeout = *timeout

	tool, err := websearch.New(cfg)
	if err != nil {
		return fail(err)
	}
	defer tool.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	results, err := tool.Search(ctx, query)
	if err != nil {
		return fail(err)
	}

	printResults(results)
	return 0
}

// resolveProvider accepts short engine aliases alongside the full names.
func resolveProvider(name string) config.Provider {
	switch strings.ToLower(name) {
	case "ddg", "duckduckgo":
		return config.ProviderDuckDuckGo
	case "brave":
		return config.ProviderBrave
	default:
		return config.Provider(strings.ToLower(name))
	}
}

func setupLogging(level string) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		l = slog.LevelWarn
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l})))
}

func fail(err error) int {
	red := color.New(color.FgRed)
	if models.IsConfigurationError(err) {
		red.Fprintf(os.Stderr, "configuration error: %v\n", err)
		return 2
	}
	red.Fprintf(os.Stderr, "search failed: %v\n", err)
	return 1
}

func printResults(results *models.SearchResults) {
	if len(results.WebResults) == 0 {
		fmt.Println("No results found.")
		return
	}

	titleColor := color.New(color.FgCyan, color.Bold)
	urlColor := color.New(color.FgGreen)
	dim := color.New(color.Faint)

	if results.CorrectedQuery != "" {
		dim.Printf("Showing results for %q\n\n", results.CorrectedQuery)
	}

	for i, r := range results.WebResults {
		titleColor.Printf("%d. %s\n", i+1, r.Title)
		urlColor.Printf("   %s\n", r.URL)
		if r.Snippet != "" {
			fmt.Printf("   %s\n", r.Snippet)
		}
	}

	dim.Printf("\n%d results from %s", len(results.WebResults), results.Provider)
	if results.TotalEstimatedResults > 0 {
		dim.Printf(" (about %d total)", results.TotalEstimatedResults)
	}
	if results.PageLoadTimeMS > 0 {
		dim.Printf(" in %.0f ms", results.PageLoadTimeMS)
	}
	dim.Println()
}
