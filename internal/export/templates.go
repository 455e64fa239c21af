package export

import (
	"bytes"
	"embed"
	"html/template"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

var mindmapTemplate = template.Must(
	template.New("mindmap.html").
		Funcs(template.FuncMap{
			"formatDate": func(t time.Time, layout string) string {
				return t.Format(layout)
			},
		}).
		ParseFS(templateFS, "templates/mindmap.html"),
)

// TemplateData holds data for mindmap template rendering
type TemplateData struct {
	Title       string
	MapID       int
	NodeCount   int
	GeneratedAt time.Time
	Root        *Tree
}

// RenderMindmapHTML renders the mindmap template with provided data
func RenderMindmapHTML(data TemplateData) (string, error) {
	var buf bytes.Buffer
	if err := mindmapTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
