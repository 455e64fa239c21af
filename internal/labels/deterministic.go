package labels

import (
	"context"
	"fmt"
	"strings"
)

var deeperLabels = []string{
	"Define",
	"Break into steps",
	"Tools / resources",
	"Measure success",
	"Common pitfalls",
}

// Deterministic is the dependency-free rule table used when no remote
// backend is configured or the remote backend fails.
type Deterministic struct{}

func (Deterministic) Labels(_ context.Context, seed string, depth int) ([]string, error) {
	return FallbackLabels(seed, depth), nil
}

// FallbackLabels expands a seed idea (depth <= 0) into framing questions, and
// any deeper node into a fixed list of actionable steps.
func FallbackLabels(seed string, depth int) []string {
	if depth > 0 {
		out := make([]string, len(deeperLabels))
		copy(out, deeperLabels)
		return out
	}

	base := strings.TrimRight(strings.TrimSpace(seed), ".?!")
	if base == "" {
		base = "Idea"
	}
	return []string{
		fmt.Sprintf("What is %s?", base),
		"Key components",
		"Examples",
		"Risks & constraints",
		"Next steps",
	}
}
