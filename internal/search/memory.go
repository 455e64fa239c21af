package search

import (
	"html"
	"strings"
	"sync"
	"unicode/utf8"
)

// Memory implements Searcher with a case-insensitive substring scan over
// indexed records. It is always healthy and serves as the fallback.
type Memory struct {
	mu      sync.RWMutex
	records []NodeRecord
	byID    map[string]int
}

func NewMemory() *Memory {
	return &Memory{byID: make(map[string]int)}
}

func (m *Memory) Healthy() bool {
	return true
}

// Index adds records, replacing any with the same id.
func (m *Memory) Index(records []NodeRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, record := range records {
		if pos, ok := m.byID[record.ID]; ok {
			m.records[pos] = record
			continue
		}
		m.byID[record.ID] = len(m.records)
		m.records = append(m.records, record)
	}
}

func (m *Memory) Search(q Query) ([]Result, int, error) {
	needle := strings.TrimSpace(q.Text)
	if needle == "" {
		return nil, 0, nil
	}
	limit := q.limit()

	m.mu.RLock()
	defer m.mu.RUnlock()

	var results []Result
	total := 0
	for _, record := range m.records {
		if q.MapID > 0 && record.MapID != q.MapID {
			continue
		}
		start, end, ok := matchFold(record.Label, needle)
		if !ok {
			continue
		}
		total++
		if len(results) >= limit {
			continue
		}
		results = append(results, Result{
			MapID:   record.MapID,
			NodeID:  record.NodeID,
			Label:   record.Label,
			Depth:   record.Depth,
			Snippet: highlight(record.Label, start, end),
		})
	}
	return results, total, nil
}

// matchFold returns the byte span of the first case-insensitive occurrence of
// needle in label. Spans are found over rune windows of the original label,
// since lowercasing can change a character's encoded length.
func matchFold(label, needle string) (start, end int, ok bool) {
	n := utf8.RuneCountInString(needle)
	for start = range label {
		end = start
		for i := 0; i < n && end < len(label); i++ {
			_, size := utf8.DecodeRuneInString(label[end:])
			end += size
		}
		if strings.EqualFold(label[start:end], needle) {
			return start, end, true
		}
	}
	return 0, 0, false
}

// highlight wraps label[start:end] in <mark> tags, escaping the rest.
func highlight(label string, start, end int) string {
	if start < 0 || end > len(label) || start > end {
		return html.EscapeString(label)
	}
	return html.EscapeString(label[:start]) +
		"<mark>" + html.EscapeString(label[start:end]) + "</mark>" +
		html.EscapeString(label[end:])
}
