// Package oracle talks to the external text-completion service.
//
// The rest of the engine treats it as an opaque, possibly-failing,
// possibly-malformed text source: one exchange per call, no retries,
// no streaming.
package oracle

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Message is one role/content pair in the conversation sent upstream.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client performs a single request/response exchange with the oracle.
type Client interface {
	Complete(ctx context.Context, messages []Message, model string) (string, error)
}

// ErrUnavailable wraps network failures, non-2xx statuses and empty replies.
var ErrUnavailable = errors.New("oracle unavailable")

// Config controls client construction.
type Config struct {
	Mode    string
	BaseURL string
	APIKey  string
}

func NewClient(cfg Config) (Client, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.Mode))
	if mode == "" {
		mode = "auto"
	}

	switch mode {
	case "auto":
		if strings.TrimSpace(cfg.APIKey) != "" {
			return NewHTTPClient(cfg.BaseURL, cfg.APIKey), nil
		}
		return NewMockClient(), nil
	case "http":
		if strings.TrimSpace(cfg.APIKey) == "" {
			return nil, errors.New("oracle API key is required for http mode")
		}
		return NewHTTPClient(cfg.BaseURL, cfg.APIKey), nil
	case "mock":
		return NewMockClient(), nil
	default:
		return nil, fmt.Errorf("unsupported oracle mode %q", cfg.Mode)
	}
}
