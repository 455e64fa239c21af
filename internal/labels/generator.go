package labels

import (
	"context"
	"fmt"
	"log/slog"
)

// Generator is the facade that tries the primary backend first and falls back
// to the deterministic rule table.
type Generator struct {
	primary  Backend
	fallback Deterministic
	logger   *slog.Logger
}

// NewGenerator creates a generator. primary may be nil when no remote backend
// is configured.
func NewGenerator(primary Backend, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{primary: primary, logger: logger}
}

// RemoteEnabled reports whether a primary backend is configured.
func (g *Generator) RemoteEnabled() bool {
	return g.primary != nil
}

// Generate returns between MinLabels and MaxLabels non-empty labels for seed.
// Any primary failure is logged and replaced with the fallback result.
func (g *Generator) Generate(ctx context.Context, seed string, depth int) []string {
	if g.primary == nil {
		return FallbackLabels(seed, depth)
	}

	labels, err := g.tryPrimary(ctx, seed, depth)
	if err != nil {
		g.logger.Warn("labels: upstream degraded, using fallback",
			"depth", depth,
			"error", err,
		)
		fallback, _ := g.fallback.Labels(ctx, seed, depth)
		return fallback
	}
	return labels
}

func (g *Generator) tryPrimary(ctx context.Context, seed string, depth int) (labels []string, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			labels, err = nil, fmt.Errorf("%w: %v", ErrBackendPanic, recovered)
		}
	}()

	labels, err = g.primary.Labels(ctx, seed, depth)
	if err != nil {
		return nil, err
	}
	return checkLabels(labels)
}
