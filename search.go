// Package websearch drives a headless browser against public web search
// providers and converts their rendered result pages into structured,
// typed results.
package websearch

import (
	"context"

	"github.com/seekerhq/websearch/config"
	"github.com/seekerhq/websearch/models"
	"github.com/seekerhq/websearch/provider"
	"github.com/seekerhq/websearch/session"
)

// Tool orchestrates searches for one configuration: it resolves the
// configured provider, scopes the browser session around each query, and
// enforces the final result cap.
type Tool struct {
	cfg  *config.Config
	sess *session.Manager
}

// New validates the configuration and prepares a Tool. The browser does
// not start until the first Search call.
func New(cfg *config.Config) (*Tool, error) {
	if cfg == nil {
		return nil, models.NewConfigurationError("configuration must not be nil", nil)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Tool{cfg: cfg, sess: session.NewManager(cfg)}, nil
}

// Search runs one query against the configured provider. Errors surface as
// the closed taxonomy of configuration, session and engine errors; any
// unexpected failure is wrapped as an engine error.
func (t *Tool) Search(ctx context.Context, query string) (*models.SearchResults, error) {
	adapter, err := provider.New(t.cfg, t.sess)
	if err != nil {
		return nil, err
	}

	// The session is scoped to this search: the browser comes down on
	// every exit path, successful or not.
	defer t.sess.Close()

	results, err := adapter.Search(ctx, query)
	if err != nil {
		return nil, classify(err, adapter.Name(), query)
	}

	if len(results.WebResults) > t.cfg.NumResults {
		results.WebResults = results.WebResults[:t.cfg.NumResults]
	}
	return results, nil
}

// Close tears down the browser session. Safe to call at any time, even if
// Search was never invoked or already failed.
func (t *Tool) Close() {
	t.sess.Close()
}

// classify passes already-typed errors through unchanged and wraps
// anything unexpected as an engine error, so callers always see one
// closed error taxonomy.
func classify(err error, name config.Provider, query string) error {
	if models.IsConfigurationError(err) || models.IsSessionError(err) || models.IsEngineError(err) {
		return err
	}
	return models.NewEngineError(string(name), query, "", "search failed", err)
}
