package app

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"demosite/api/internal/export"
	"demosite/api/internal/mindmap"
	"demosite/api/internal/search"
	"demosite/api/internal/todo"

	"github.com/felixge/httpsnoop"
	"github.com/google/uuid"
)

//go:embed static
var staticFiles embed.FS

type HTTPServer struct {
	service    *Service
	corsOrigin string
	logger     *slog.Logger
	static     http.Handler
}

func NewHTTPServer(service *Service, corsOrigin string) *HTTPServer {
	assets, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}
	return &HTTPServer{
		service:    service,
		corsOrigin: corsOrigin,
		logger:     service.logger,
		static:     http.StripPrefix("/static/", http.FileServer(http.FS(assets))),
	}
}

func (s *HTTPServer) Handler() http.Handler {
	return s.withMiddleware(http.HandlerFunc(s.handle))
}

func (s *HTTPServer) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	readOnly := r.Method == http.MethodGet || r.Method == http.MethodHead

	switch r.URL.Path {
	case "/":
		if !readOnly {
			methodNotAllowed(w)
			return
		}
		s.serveIndex(w)
		return
	case "/favicon.ico", "/apple-touch-icon.png", "/apple-touch-icon-precomposed.png":
		w.WriteHeader(http.StatusNoContent)
		return
	case "/api/health":
		if !readOnly {
			methodNotAllowed(w)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	case "/api/ready":
		if !readOnly {
			methodNotAllowed(w)
			return
		}
		status, checks := s.service.Readiness(r.Context())
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":     status == "ready",
			"status": status,
			"checks": checks,
		})
		return
	}

	if strings.HasPrefix(r.URL.Path, "/static/") {
		if !readOnly {
			methodNotAllowed(w)
			return
		}
		w.Header().Set("Cache-Control", "public, max-age=3600")
		s.static.ServeHTTP(w, r)
		return
	}

	parts := splitPath(r.URL.Path)
	if len(parts) == 0 {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Route not found", nil)
		return
	}

	switch parts[0] {
	case "todos":
		s.handleTodos(w, r, parts[1:])
	case "mindmap":
		s.handleMindmaps(w, r, parts[1:])
	case "search":
		if len(parts) != 1 {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Route not found", nil)
			return
		}
		if !readOnly {
			methodNotAllowed(w)
			return
		}
		s.handleSearch(w, r)
	default:
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Route not found", nil)
	}
}

func (s *HTTPServer) serveIndex(w http.ResponseWriter) {
	page, err := staticFiles.ReadFile("static/index.html")
	if err != nil {
		writeError(w, http.StatusInternalServerError, "SERVER_ERROR", "Server error", nil)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(page)
}

func (s *HTTPServer) handleTodos(w http.ResponseWriter, r *http.Request, parts []string) {
	if len(parts) == 0 {
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, s.service.ListTodos())
		case http.MethodPost:
			var body struct {
				Title *string `json:"title"`
				Done  bool    `json:"done"`
			}
			if err := decodeBody(r, &body); err != nil {
				writeError(w, http.StatusUnprocessableEntity, "INVALID_BODY", err.Error(), nil)
				return
			}
			if body.Title == nil {
				s.writeMappedError(w, r, validationError("title", "title is required"))
				return
			}
			item, err := s.service.CreateTodo(*body.Title, body.Done)
			if err != nil {
				s.writeMappedError(w, r, err)
				return
			}
			writeJSON(w, http.StatusCreated, item)
		default:
			methodNotAllowed(w)
		}
		return
	}

	if len(parts) != 1 {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Route not found", nil)
		return
	}
	id, ok := parseID(parts[0])
	if !ok {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
		return
	}

	switch r.Method {
	case http.MethodGet:
		item, err := s.service.GetTodo(id)
		if err != nil {
			s.writeMappedError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, item)
	case http.MethodPatch:
		var body struct {
			Done *bool `json:"done"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusUnprocessableEntity, "INVALID_BODY", err.Error(), nil)
			return
		}
		if body.Done == nil {
			s.writeMappedError(w, r, validationError("done", "done is required"))
			return
		}
		item, err := s.service.SetTodoDone(id, *body.Done)
		if err != nil {
			s.writeMappedError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, item)
	case http.MethodDelete:
		if err := s.service.DeleteTodo(id); err != nil {
			s.writeMappedError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		methodNotAllowed(w)
	}
}

func (s *HTTPServer) handleMindmaps(w http.ResponseWriter, r *http.Request, parts []string) {
	if len(parts) == 0 {
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, s.service.ListMindmaps())
		case http.MethodPost:
			var body struct {
				Prompt string `json:"prompt"`
			}
			if err := decodeBody(r, &body); err != nil {
				writeError(w, http.StatusUnprocessableEntity, "INVALID_BODY", err.Error(), nil)
				return
			}
			m, err := s.service.CreateMindmap(r.Context(), body.Prompt)
			if err != nil {
				s.writeMappedError(w, r, err)
				return
			}
			writeJSON(w, http.StatusCreated, m)
		default:
			methodNotAllowed(w)
		}
		return
	}

	nodeRoute := len(parts) == 4 && parts[1] == "nodes" && parts[3] == "children"
	if len(parts) > 2 && !nodeRoute {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Route not found", nil)
		return
	}
	mapID, ok := parseID(parts[0])
	if !ok {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Mindmap not found", nil)
		return
	}

	if nodeRoute {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			methodNotAllowed(w)
			return
		}
		children, err := s.service.NodeChildren(mapID, parts[2])
		if err != nil {
			s.writeMappedError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, children)
		return
	}

	if len(parts) == 1 {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			methodNotAllowed(w)
			return
		}
		m, err := s.service.GetMindmap(mapID)
		if err != nil {
			s.writeMappedError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, m)
		return
	}

	switch parts[1] {
	case "expand":
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		var body struct {
			NodeID string `json:"node_id"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusUnprocessableEntity, "INVALID_BODY", err.Error(), nil)
			return
		}
		children, err := s.service.ExpandNode(r.Context(), mapID, body.NodeID)
		if err != nil {
			s.writeMappedError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, children)
	case "export":
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		result, err := s.service.ExportMindmap(r.Context(), mapID, r.URL.Query().Get("format"))
		if err != nil {
			s.writeMappedError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", result.MimeType)
		w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": result.Filename}))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(result.Data)
	default:
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Route not found", nil)
	}
}

func (s *HTTPServer) handleSearch(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	q := search.Query{Text: values.Get("q")}
	if raw := values.Get("map_id"); raw != "" {
		mapID, ok := parseID(raw)
		if !ok {
			s.writeMappedError(w, r, validationError("map_id", "map_id must be a positive integer"))
			return
		}
		q.MapID = mapID
	}
	if raw := values.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			s.writeMappedError(w, r, validationError("limit", "limit must be a positive integer"))
			return
		}
		q.Limit = limit
	}
	resp, err := s.service.Search(q)
	if err != nil {
		s.writeMappedError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *HTTPServer) writeMappedError(w http.ResponseWriter, r *http.Request, err error) {
	status, code, message, details := mapError(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			"request_id", requestIDFromContext(r.Context()),
			"path", r.URL.Path,
			"error", err,
		)
	}
	writeError(w, status, code, message, details)
}

func (s *HTTPServer) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		setCORSHeaders(w.Header(), s.corsOrigin)
		w.Header().Set("X-Request-ID", requestID)

		metrics := httpsnoop.CaptureMetrics(next, w, r)

		s.logger.Info("request",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", metrics.Code,
			"duration_ms", metrics.Duration.Milliseconds(),
			"bytes", metrics.Written,
		)
	})
}

type requestIDKey struct{}

func requestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func setCORSHeaders(header http.Header, corsOrigin string) {
	header.Set("Access-Control-Allow-Origin", corsOrigin)
	header.Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
	header.Set("Access-Control-Allow-Methods", "GET,POST,PATCH,DELETE,OPTIONS")
	header.Set("Access-Control-Expose-Headers", "Content-Disposition, X-Request-ID")
	header.Set("Cache-Control", "no-store")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string, details any) {
	response := map[string]any{
		"code":  code,
		"error": message,
	}
	if details != nil {
		response["details"] = details
	}
	writeJSON(w, status, response)
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
}

func decodeBody(r *http.Request, target any) error {
	if r.Body == nil {
		return fmt.Errorf("invalid JSON body")
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(target); err != nil {
		return fmt.Errorf("invalid JSON body")
	}
	return nil
}

func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

func parseID(raw string) (int, bool) {
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}

func mapError(err error) (status int, code, message string, details any) {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Status, domainErr.Code, domainErr.Message, domainErr.Details
	}
	switch {
	case errors.Is(err, mindmap.ErrMapNotFound):
		return http.StatusNotFound, "NOT_FOUND", "Mindmap not found", nil
	case errors.Is(err, mindmap.ErrNodeNotFound):
		return http.StatusNotFound, "NOT_FOUND", "Node not found", nil
	case errors.Is(err, todo.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND", "Not found", nil
	case errors.Is(err, export.ErrUnsupportedFormat):
		return http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Unsupported export format", map[string]any{"field": "format"}
	case errors.Is(err, export.ErrPDFDependencyMissing):
		return http.StatusServiceUnavailable, "EXPORT_UNAVAILABLE", "PDF export is not available on this server", nil
	}
	return http.StatusInternalServerError, "SERVER_ERROR", "Server error", nil
}
