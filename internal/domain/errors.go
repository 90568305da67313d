package domain

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("already exists")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// ValidationError is a rejected submission; Message is safe to show to callers.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ProviderError is a non-success HTTP response from a third-party analysis provider.
type ProviderError struct {
	Provider   string
	StatusCode int
	StatusText string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s API error: %s", e.Provider, e.StatusText)
}

// NewProviderError keeps the provider's reason phrase from status (as in
// "429 Quota Exceeded") and falls back to the standard text for code.
func NewProviderError(provider string, code int, status string) *ProviderError {
	text := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(status), strconv.Itoa(code)))
	if text == "" {
		text = http.StatusText(code)
	}
	return &ProviderError{Provider: provider, StatusCode: code, StatusText: text}
}
