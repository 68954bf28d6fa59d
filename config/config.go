package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/seekerhq/websearch/models"
)

// MaxResults is the hard cap on the requested result count.
const MaxResults = 500

// Provider identifies a supported search service.
type Provider string

const (
	ProviderGoogle     Provider = "google"
	ProviderDuckDuckGo Provider = "duckduckgo"
	ProviderBrave      Provider = "brave"
)

// SafeSearch is the content filtering level requested from the provider.
type SafeSearch string

const (
	SafeSearchOff      SafeSearch = "off"
	SafeSearchModerate SafeSearch = "moderate"
	SafeSearchOn       SafeSearch = "on"
)

// TimeRange restricts results to a coarse recency bucket.
type TimeRange string

const (
	TimeRangeAny   TimeRange = "any"
	TimeRangeDay   TimeRange = "day"
	TimeRangeWeek  TimeRange = "week"
	TimeRangeMonth TimeRange = "month"
	TimeRangeYear  TimeRange = "year"
)

// Config holds all settings for one search. It is immutable once handed to
// the orchestrator; adapters and parsers read it but never write it.
type Config struct {
	// Provider selects the search service.
	Provider Provider // default: google

	// NumResults is the requested result count, clamped to [1, MaxResults].
	NumResults int // default: 10

	// Language is a BCP-47 language tag (e.g. "en" or "en-US"). Optional.
	Language string

	// Region is an ISO 3166-1 country code (e.g. "us"). Optional.
	Region string

	// SafeSearch is the content filtering level.
	SafeSearch SafeSearch // default: off

	// TimeRange restricts results by recency.
	TimeRange TimeRange // default: any

	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// Proxy is an optional proxy URL passed to the browser launcher.
	Proxy string

	// UserAgent overrides the session's fixed user-agent string.
	UserAgent string

	// BrowserBin overrides the browser binary path.
	BrowserBin string

	// NoSandbox disables the browser sandbox (needed in containers).
	NoSandbox bool // default: false

	// ProfileDir is the persistent user-data directory. When empty the
	// session manager places one under the user cache dir.
	ProfileDir string

	// NavigationTimeout bounds each page load.
	NavigationTimeout time.Duration // default: 30s

	// SelectorTimeout bounds each wait for a results container or control.
	SelectorTimeout time.Duration // default: 10s

	// NavigationsPerSecond is the sustained navigation rate per session.
	NavigationsPerSecond float64 // default: 2
}

// Default returns a Config with all defaults applied.
func Default() *Config {
	return &Config{
		Provider:             ProviderGoogle,
		NumResults:           10,
		SafeSearch:           SafeSearchOff,
		TimeRange:            TimeRangeAny,
		Headless:             true,
		NavigationTimeout:    30 * time.Second,
		SelectorTimeout:      10 * time.Second,
		NavigationsPerSecond: 2,
	}
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Provider:             Provider(envOr("WEBSEARCH_PROVIDER", string(ProviderGoogle))),
		NumResults:           envIntOr("WEBSEARCH_NUM_RESULTS", 10),
		Language:             os.Getenv("WEBSEARCH_LANGUAGE"),
		Region:               os.Getenv("WEBSEARCH_REGION"),
		SafeSearch:           SafeSearch(envOr("WEBSEARCH_SAFE_SEARCH", string(SafeSearchOff))),
		TimeRange:            TimeRange(envOr("WEBSEARCH_TIME_RANGE", string(TimeRangeAny))),
		Headless:             envBoolOr("WEBSEARCH_HEADLESS", true),
		Proxy:                os.Getenv("WEBSEARCH_PROXY"),
		UserAgent:            os.Getenv("WEBSEARCH_USER_AGENT"),
		BrowserBin:           os.Getenv("WEBSEARCH_BROWSER_BIN"),
		NoSandbox:            envBoolOr("WEBSEARCH_NO_SANDBOX", false),
		ProfileDir:           os.Getenv("WEBSEARCH_PROFILE_DIR"),
		NavigationTimeout:    envDurationOr("WEBSEARCH_NAV_TIMEOUT", 30*time.Second),
		SelectorTimeout:      envDurationOr("WEBSEARCH_SELECTOR_TIMEOUT", 10*time.Second),
		NavigationsPerSecond: envFloatOr("WEBSEARCH_NAV_RPS", 2),
	}
}

// Normalize clamps out-of-range values to their nearest legal setting.
func (c *Config) Normalize() {
	if c.NumResults < 1 {
		c.NumResults = 1
	}
	if c.NumResults > MaxResults {
		c.NumResults = MaxResults
	}
	if c.NavigationTimeout <= 0 {
		c.NavigationTimeout = 30 * time.Second
	}
	if c.SelectorTimeout <= 0 {
		c.SelectorTimeout = 10 * time.Second
	}
	if c.NavigationsPerSecond <= 0 {
		c.NavigationsPerSecond = 2
	}
}

// Validate checks enum fields and returns a configuration error on the
// first invalid value.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderGoogle, ProviderDuckDuckGo, ProviderBrave:
	default:
		return models.NewConfigurationError(
			fmt.Sprintf("unsupported provider %q", c.Provider), nil)
	}
	switch c.SafeSearch {
	case SafeSearchOff, SafeSearchModerate, SafeSearchOn:
	default:
		return models.NewConfigurationError(
			fmt.Sprintf("unsupported safe search level %q", c.SafeSearch), nil)
	}
	switch c.TimeRange {
	case TimeRangeAny, TimeRangeDay, TimeRangeWeek, TimeRangeMonth, TimeRangeYear:
	default:
		return models.NewConfigurationError(
			fmt.Sprintf("unsupported time range %q", c.TimeRange), nil)
	}
	return nil
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
