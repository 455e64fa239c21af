// Package labels produces short child labels that expand a mindmap node.
//
// A Generator asks an optional primary Backend (a remote language model) and
// falls back to the Deterministic rule table whenever the primary is absent or
// fails. Generate never returns an error.
package labels

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const (
	MinLabels = 3
	MaxLabels = 10
)

var (
	// ErrTimeout indicates the backend did not answer within its deadline.
	ErrTimeout = errors.New("labels backend timeout")
	// ErrMalformedOutput indicates the backend output was not a JSON array.
	ErrMalformedOutput = errors.New("labels backend output is not a JSON array")
	// ErrTooFewLabels indicates fewer than MinLabels usable strings survived decoding.
	ErrTooFewLabels = errors.New("labels backend returned too few labels")
	// ErrNoChoices indicates the backend response carried no completion.
	ErrNoChoices = errors.New("labels backend returned no choices")
	// ErrBackendPanic indicates the backend call panicked and was recovered.
	ErrBackendPanic = errors.New("labels backend panicked")
)

// Backend generates child labels for a seed at a given depth.
type Backend interface {
	Labels(ctx context.Context, seed string, depth int) ([]string, error)
}

// DecodeLabels parses model output as a JSON array of strings. Non-string
// items are skipped, strings are trimmed and empties dropped. At most
// MaxLabels are returned, in order.
func DecodeLabels(content string) ([]string, error) {
	var items []json.RawMessage
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}

	out := make([]string, 0, len(items))
	for _, raw := range items {
		var value string
		if err := json.Unmarshal(raw, &value); err != nil {
			continue
		}
		if value = strings.TrimSpace(value); value != "" {
			out = append(out, value)
		}
	}
	return checkLabels(out)
}

// checkLabels enforces the shape every accepted result must have.
func checkLabels(values []string) ([]string, error) {
	out := make([]string, 0, len(values))
	for _, value := range values {
		if value = strings.TrimSpace(value); value != "" {
			out = append(out, value)
		}
	}
	if len(out) < MinLabels {
		return nil, fmt.Errorf("%w: got %d", ErrTooFewLabels, len(out))
	}
	if len(out) > MaxLabels {
		out = out[:MaxLabels]
	}
	return out, nil
}
