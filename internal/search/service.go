package search

import (
	"log/slog"
	"strings"
)

// Service is the facade that tries Meilisearch first and falls back to the
// in-memory index.
type Service struct {
	meili  *Meili
	memory *Memory
	logger *slog.Logger
}

// NewService creates a search service. meili may be nil if Meilisearch is not configured.
func NewService(meili *Meili, memory *Memory, logger *slog.Logger) *Service {
	if memory == nil {
		memory = NewMemory()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{meili: meili, memory: memory, logger: logger}
}

// Backend names the searcher currently serving queries.
func (s *Service) Backend() string {
	if s.meili != nil && s.meili.Healthy() {
		return "meilisearch"
	}
	return "memory"
}

// Search tries Meilisearch if healthy, otherwise falls back to the memory index.
func (s *Service) Search(q Query) Response {
	q.Text = strings.TrimSpace(q.Text)
	if s.meili != nil && s.meili.Healthy() {
		results, total, err := s.meili.Search(q)
		if err == nil {
			return Response{Results: nonNil(results), Total: total, Query: q.Text}
		}
		s.logger.Warn("search: meilisearch error, falling back to memory", "error", err)
	}

	results, total, err := s.memory.Search(q)
	if err != nil {
		s.logger.Error("search: memory search failed", "error", err)
		return Response{Results: []Result{}, Total: 0, Query: q.Text}
	}
	return Response{Results: nonNil(results), Total: total, Query: q.Text}
}

// IndexNodes indexes records into memory synchronously and into Meilisearch
// fire-and-forget.
func (s *Service) IndexNodes(records []NodeRecord) {
	if len(records) == 0 {
		return
	}
	s.memory.Index(records)
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	go func() {
		if err := s.meili.IndexNodes(records); err != nil {
			s.logger.Warn("search: index nodes", "count", len(records), "error", err)
		}
	}()
}

func nonNil(r []Result) []Result {
	if r == nil {
		return []Result{}
	}
	return r
}
