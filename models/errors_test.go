package models

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestSearchError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewSessionError("failed to launch browser", cause)

	if !errors.Is(err, cause) {
		t.Error("wrapped cause not reachable via errors.Is")
	}
}

func TestSearchError_ErrorIncludesContext(t *testing.T) {
	err := NewEngineError("google", "golang testing", "https://www.google.com/search?q=golang+testing",
		"interaction failed", errors.New("boom"))

	msg := err.Error()
	for _, want := range []string{"google", `"golang testing"`, "https://www.google.com/search", "boom"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error message missing %q: %s", want, msg)
		}
	}
}

func TestNewEngineError_TimeoutClassification(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
	}{
		{"deadline", context.DeadlineExceeded, ErrCodeTimeout},
		{"wrapped deadline", fmt.Errorf("navigate: %w", context.DeadlineExceeded), ErrCodeTimeout},
		{"canceled", context.Canceled, ErrCodeTimeout},
		{"other", errors.New("net::ERR_CONNECTION_RESET"), ErrCodeEngine},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEngineError("brave", "q", "", "fetch failed", tt.err)
			if e.Code != tt.code {
				t.Errorf("got code %s, want %s", e.Code, tt.code)
			}
		})
	}
}

func TestPredicates(t *testing.T) {
	cfgErr := NewConfigurationError("unknown provider", nil)
	sessErr := NewSessionError("context launch failed", nil)
	engErr := NewEngineError("google", "q", "", "fetch failed", nil)
	navErr := NewNavigationError("google", "q", "https://example.com", context.DeadlineExceeded)

	if !IsConfigurationError(cfgErr) || IsConfigurationError(sessErr) {
		t.Error("IsConfigurationError misclassified")
	}
	if !IsSessionError(sessErr) || IsSessionError(engErr) {
		t.Error("IsSessionError misclassified")
	}
	if !IsEngineError(engErr) || !IsEngineError(navErr) {
		t.Error("IsEngineError should match engine and timeout codes")
	}
	if IsEngineError(cfgErr) {
		t.Error("IsEngineError matched a configuration error")
	}
	if IsEngineError(errors.New("plain")) {
		t.Error("predicate matched a plain error")
	}
}

func TestNewNavigationError_Codes(t *testing.T) {
	if e := NewNavigationError("brave", "q", "u", errors.New("dns failure")); e.Code != ErrCodeNavigation {
		t.Errorf("got %s, want %s", e.Code, ErrCodeNavigation)
	}
	if e := NewNavigationError("brave", "q", "u", context.DeadlineExceeded); e.Code != ErrCodeTimeout {
		t.Errorf("got %s, want %s", e.Code, ErrCodeTimeout)
	}
}
