package main

import (
	"log/slog"
	"strings"

	"demosite/api/internal/config"
	"demosite/api/internal/labels"
	"demosite/api/internal/search"
)

// buildGenerator wires the remote label backend, wrapped in the Redis cache
// when one is configured. The returned cache is nil when caching is off.
func buildGenerator(cfg config.Config, logger *slog.Logger) (*labels.Generator, *labels.Cache) {
	if !cfg.RemoteLabelsEnabled() {
		logger.Info("labels: no OPENAI_API_KEY, using built-in labels")
		return labels.NewGenerator(nil, logger), nil
	}

	remote := labels.NewRemote(labels.RemoteOptions{
		APIKey:  cfg.OpenAIAPIKey,
		Model:   cfg.OpenAIModel,
		BaseURL: cfg.OpenAIBaseURL,
		Timeout: cfg.LabelTimeout,
	})
	logger.Info("labels: remote backend enabled", "model", remote.Model())

	if strings.TrimSpace(cfg.RedisURL) == "" {
		return labels.NewGenerator(remote, logger), nil
	}
	cache, err := labels.NewCache(cfg.RedisURL, cfg.LabelCacheTTL)
	if err != nil {
		logger.Warn("labels: redis unavailable, caching disabled", "error", err)
		return labels.NewGenerator(remote, logger), nil
	}
	logger.Info("labels: caching generations in redis", "ttl", cfg.LabelCacheTTL)
	return labels.NewGenerator(labels.NewCachedBackend(remote, cache, logger), logger), cache
}

func buildSearch(cfg config.Config, logger *slog.Logger) (*search.Service, *search.Meili) {
	var meili *search.Meili
	if strings.TrimSpace(cfg.MeiliURL) != "" {
		meili = search.NewMeili(cfg.MeiliURL, cfg.MeiliMasterKey, logger)
	}
	return search.NewService(meili, search.NewMemory(), logger), meili
}
