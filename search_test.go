package websearch

import (
	"errors"
	"testing"

	"github.com/seekerhq/websearch/config"
	"github.com/seekerhq/websearch/models"
)

func TestNew_NilConfig(t *testing.T) {
	_, err := New(nil)
	if !models.IsConfigurationError(err) {
		t.Errorf("expected a configuration error, got %v", err)
	}
}

func TestNew_InvalidProvider(t *testing.T) {
	cfg := config.Default()
	cfg.Provider = "altavista"
	_, err := New(cfg)
	if !models.IsConfigurationError(err) {
		t.Errorf("expected a configuration error, got %v", err)
	}
}

func TestNew_ClampsRequestedCount(t *testing.T) {
	cfg := config.Default()
	cfg.NumResults = 100000
	tool, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer tool.Close()

	if cfg.NumResults != config.MaxResults {
		t.Errorf("NumResults = %d, want clamped to %d", cfg.NumResults, config.MaxResults)
	}
}

func TestClose_WithoutSearch(t *testing.T) {
	tool, err := New(config.Default())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	tool.Close()
	tool.Close() // idempotent
}

func TestClassify(t *testing.T) {
	sessErr := models.NewSessionError("launch failed", nil)
	if got := classify(sessErr, config.ProviderGoogle, "q"); got != sessErr {
		t.Errorf("session error was re-wrapped: %v", got)
	}

	engErr := models.NewEngineError("google", "q", "", "fetch failed", nil)
	if got := classify(engErr, config.ProviderGoogle, "q"); got != engErr {
		t.Errorf("engine error was re-wrapped: %v", got)
	}

	plain := errors.New("surprise")
	got := classify(plain, config.ProviderBrave, "my query")
	if !models.IsEngineError(got) {
		t.Fatalf("unexpected error not wrapped as engine error: %v", got)
	}
	if !errors.Is(got, plain) {
		t.Error("original cause lost during wrapping")
	}
	var se *models.SearchError
	if errors.As(got, &se) {
		if se.Provider != "brave" || se.Query != "my query" {
			t.Errorf("wrapped error missing context: %+v", se)
		}
	}
}
