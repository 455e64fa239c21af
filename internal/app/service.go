package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"demosite/api/internal/config"
	"demosite/api/internal/export"
	"demosite/api/internal/labels"
	"demosite/api/internal/mindmap"
	"demosite/api/internal/search"
	"demosite/api/internal/todo"
)

const (
	maxPromptRunes = 2000
	maxNodeIDRunes = 200
)

// Pinger reports whether an optional dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the collaborators a Service is built from. Nil fields get
// in-memory defaults and the deterministic label generator.
type Deps struct {
	Todos    *todo.Store
	Mindmaps *mindmap.Store
	Labels   *labels.Generator
	Search   *search.Service
	Export   *export.Service
	Cache    Pinger
	Logger   *slog.Logger
}

type Service struct {
	cfg       config.Config
	todos     *todo.Store
	mindmaps  *mindmap.Store
	generator *labels.Generator
	search    *search.Service
	exporter  *export.Service
	cache     Pinger
	logger    *slog.Logger
}

func New(cfg config.Config, deps Deps) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	generator := deps.Labels
	if generator == nil {
		generator = labels.NewGenerator(nil, logger)
	}
	svc := &Service{
		cfg:       cfg,
		todos:     deps.Todos,
		mindmaps:  deps.Mindmaps,
		generator: generator,
		search:    deps.Search,
		exporter:  deps.Export,
		cache:     deps.Cache,
		logger:    logger,
	}
	if svc.todos == nil {
		svc.todos = todo.NewStore()
	}
	if svc.mindmaps == nil {
		svc.mindmaps = mindmap.NewStore(generator)
	}
	if svc.search == nil {
		svc.search = search.NewService(nil, nil, logger)
	}
	if svc.exporter == nil {
		svc.exporter = export.NewService()
	}
	return svc
}

func (s *Service) ListTodos() []todo.Todo {
	return s.todos.List()
}

func (s *Service) CreateTodo(title string, done bool) (todo.Todo, error) {
	if strings.TrimSpace(title) == "" {
		return todo.Todo{}, validationError("title", "title is required")
	}
	return s.todos.Create(title, done), nil
}

func (s *Service) GetTodo(id int) (todo.Todo, error) {
	return s.todos.Get(id)
}

func (s *Service) SetTodoDone(id int, done bool) (todo.Todo, error) {
	return s.todos.SetDone(id, done)
}

func (s *Service) DeleteTodo(id int) error {
	return s.todos.Delete(id)
}

// CreateMindmap builds a new map from prompt and indexes its nodes for search.
func (s *Service) CreateMindmap(ctx context.Context, prompt string) (mindmap.Mindmap, error) {
	if err := checkLength("prompt", prompt, maxPromptRunes); err != nil {
		return mindmap.Mindmap{}, err
	}
	m, err := s.mindmaps.Create(ctx, prompt)
	if err != nil {
		return mindmap.Mindmap{}, fmt.Errorf("create mindmap: %w", err)
	}
	s.index(m.MapID, m.Nodes)
	s.logger.Info("mindmap created", "map_id", m.MapID, "nodes", len(m.Nodes))
	return m, nil
}

// ExpandNode attaches children to nodeID, or returns its existing children.
func (s *Service) ExpandNode(ctx context.Context, mapID int, nodeID string) ([]mindmap.Node, error) {
	if err := checkLength("node_id", nodeID, maxNodeIDRunes); err != nil {
		return nil, err
	}
	children, err := s.mindmaps.Expand(ctx, mapID, nodeID)
	if err != nil {
		return nil, err
	}
	s.index(mapID, children)
	return children, nil
}

func (s *Service) ListMindmaps() []mindmap.Summary {
	return s.mindmaps.List()
}

func (s *Service) GetMindmap(mapID int) (mindmap.Mindmap, error) {
	return s.mindmaps.Get(mapID)
}

// NodeChildren returns the current children of one node without expanding it.
func (s *Service) NodeChildren(mapID int, nodeID string) ([]mindmap.Node, error) {
	return s.mindmaps.Children(mapID, nodeID)
}

// ExportMindmap renders one map in the named format.
func (s *Service) ExportMindmap(ctx context.Context, mapID int, formatName string) (*export.Result, error) {
	format, err := export.ParseFormat(formatName)
	if err != nil {
		return nil, err
	}
	m, err := s.mindmaps.Get(mapID)
	if err != nil {
		return nil, err
	}
	return s.exporter.Export(ctx, m, format)
}

func (s *Service) Search(q search.Query) (search.Response, error) {
	if strings.TrimSpace(q.Text) == "" {
		return search.Response{}, validationError("q", "q is required")
	}
	return s.search.Search(q), nil
}

// Readiness reports the state of each optional dependency. The service can
// always answer requests, so only a failing cache marks it degraded.
func (s *Service) Readiness(ctx context.Context) (status string, checks map[string]any) {
	status = "ready"
	mode := "fallback"
	if s.generator.RemoteEnabled() {
		mode = "remote"
	}
	labelCheck := map[string]any{"status": "ok", "mode": mode}
	if mode == "remote" && s.cfg.OpenAIModel != "" {
		labelCheck["model"] = s.cfg.OpenAIModel
	}
	checks = map[string]any{
		"labels": labelCheck,
		"search": map[string]any{"status": "ok", "backend": s.search.Backend()},
	}

	if s.cache == nil {
		checks["cache"] = map[string]any{"status": "disabled"}
		return status, checks
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.cache.Ping(ctx); err != nil {
		status = "degraded"
		checks["cache"] = map[string]any{"status": "error", "error": err.Error()}
	} else {
		checks["cache"] = map[string]any{"status": "ok"}
	}
	return status, checks
}

func (s *Service) index(mapID int, nodes []mindmap.Node) {
	records := make([]search.NodeRecord, 0, len(nodes))
	for _, node := range nodes {
		records = append(records, search.NewNodeRecord(mapID, node.ID, node.Label, node.Depth))
	}
	s.search.IndexNodes(records)
}

func checkLength(field, value string, max int) error {
	n := utf8.RuneCountInString(value)
	if n == 0 {
		return validationError(field, field+" is required")
	}
	if n > max {
		return validationError(field, fmt.Sprintf("%s must be at most %d characters", field, max))
	}
	return nil
}
