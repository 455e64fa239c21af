package export

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"demosite/api/internal/mindmap"

	"gopkg.in/yaml.v3"
)

// Service provides mindmap export functionality
type Service struct {
	now func() time.Time
}

// NewService creates a new export service
func NewService() *Service {
	return &Service{now: time.Now}
}

// Export renders m in the requested format
func (s *Service) Export(ctx context.Context, m mindmap.Mindmap, format Format) (*Result, error) {
	root := BuildTree(m)
	base := sanitizeFilename(root.Label)

	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(m, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshal mindmap: %w", err)
		}
		return &Result{Data: append(data, '\n'), Filename: base + ".json", MimeType: "application/json"}, nil
	case FormatMarkdown:
		return &Result{Data: []byte(RenderMarkdown(root)), Filename: base + ".md", MimeType: "text/markdown; charset=utf-8"}, nil
	case FormatYAML:
		data, err := yaml.Marshal(root)
		if err != nil {
			return nil, fmt.Errorf("marshal yaml: %w", err)
		}
		return &Result{Data: data, Filename: base + ".yaml", MimeType: "application/yaml"}, nil
	case FormatHTML, FormatPDF:
		html, err := RenderMindmapHTML(TemplateData{
			Title:       root.Label,
			MapID:       m.MapID,
			NodeCount:   len(m.Nodes),
			GeneratedAt: s.now().UTC(),
			Root:        root,
		})
		if err != nil {
			return nil, fmt.Errorf("render template: %w", err)
		}
		if format == FormatPDF {
			return exportPDF(ctx, html, root.Label)
		}
		return &Result{Data: []byte(html), Filename: base + ".html", MimeType: "text/html; charset=utf-8"}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// BuildTree arranges the flat node list of m under its root, keeping
// insertion order among siblings.
func BuildTree(m mindmap.Mindmap) *Tree {
	byID := make(map[string]*Tree, len(m.Nodes))
	for _, node := range m.Nodes {
		byID[node.ID] = &Tree{ID: node.ID, Label: node.Label, Depth: node.Depth}
	}
	for _, node := range m.Nodes {
		if node.IsRoot() {
			continue
		}
		if parent, ok := byID[*node.ParentID]; ok {
			parent.Children = append(parent.Children, byID[node.ID])
		}
	}
	if root, ok := byID[m.RootID]; ok {
		return root
	}
	return &Tree{ID: m.RootID}
}

// RenderMarkdown writes the tree as a heading followed by a nested bullet list.
func RenderMarkdown(root *Tree) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", root.Label)
	var walk func(nodes []*Tree, indent int)
	walk = func(nodes []*Tree, indent int) {
		for _, node := range nodes {
			fmt.Fprintf(&b, "%s- %s\n", strings.Repeat("  ", indent), node.Label)
			walk(node.Children, indent+1)
		}
	}
	walk(root.Children, 0)
	return b.String()
}
