package http

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/aretw0/skury"
	"github.com/aretw0/skury/internal/logging"
	"github.com/aretw0/skury/pkg/capture"
	"github.com/aretw0/skury/pkg/domain"
	"github.com/aretw0/skury/pkg/persistence/middleware"
	"github.com/aretw0/skury/pkg/ports"
	"github.com/aretw0/skury/pkg/surface"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/go-chi/chi/v5"
)

//go:embed openapi.yaml
var rawSpec []byte

// Coordinator is what the HTTP surface needs from skury.Coordinator.
type Coordinator interface {
	Dispatch(ctx context.Context, msg domain.Message) (domain.Response, error)
	ClickAction(ctx context.Context) (domain.Response, error)
	OpenSurface(ctx context.Context, s surface.Surface) (string, error)
	CloseSurface(id string)
	Activate(id string) error
	Surfaces() ([]surface.Surface, string)
	Store() ports.PreferenceStore
}

var _ Coordinator = (*skury.Coordinator)(nil)

// Server serves the coordinator over JSON.
type Server struct {
	coord  Coordinator
	spec   *openapi3.T
	prefs  ports.PreferenceStore
	logger *slog.Logger

	metrics http.Handler
	ports   http.Handler
	origins map[string]bool
}

// Option configures a Server.
type Option func(*Server)

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics mounts h on /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithPorts mounts h, usually a websocket port handler, on /v1/ports.
func WithPorts(h http.Handler) Option {
	return func(s *Server) {
		s.ports = h
	}
}

// WithAllowedOrigins lists the browser origins allowed to call the API
// cross-origin. "*" allows any origin. By default only same-origin browser
// requests and clients that send no Origin header are served.
func WithAllowedOrigins(origins ...string) Option {
	return func(s *Server) {
		for _, o := range origins {
			s.origins[strings.TrimSuffix(o, "/")] = true
		}
	}
}

// LoadSpec parses and validates the embedded OpenAPI document.
func LoadSpec() (*openapi3.T, error) {
	doc, err := openapi3.NewLoader().LoadFromData(rawSpec)
	if err != nil {
		return nil, err
	}
	if err := doc.Validate(context.Background()); err != nil {
		return nil, err
	}
	return doc, nil
}

// NewHandler creates the HTTP handler for coord.
func NewHandler(coord Coordinator, opts ...Option) (http.Handler, error) {
	spec, err := LoadSpec()
	if err != nil {
		return nil, err
	}
	s := &Server{
		coord:  coord,
		spec:   spec,
		logger:  logging.NewNop(),
		origins: map[string]bool{},
		prefs: middleware.Chain(coord.Store(),
			middleware.NewRedactMiddleware([]string{"^" + regexp.QuoteMeta(domain.KeyAPICredential) + "$"})),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		_, _ = w.Write(rawSpec)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(swaggerHTML))
	})
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Post("/messages", s.validated("/v1/messages", s.PostMessage))
		r.Post("/action", s.validated("/v1/action", s.ClickAction))
		r.Get("/surfaces", s.validated("/v1/surfaces", s.ListSurfaces))
		r.Post("/surfaces", s.validated("/v1/surfaces", s.OpenSurface))
		r.Delete("/surfaces/{id}", s.validated("/v1/surfaces/{id}", s.CloseSurface))
		r.Post("/surfaces/{id}/activate", s.validated("/v1/surfaces/{id}/activate", s.ActivateSurface))
		r.Get("/preferences", s.validated("/v1/preferences", s.GetPreferences))
		r.Put("/preferences", s.validated("/v1/preferences", s.SetPreferences))
		if s.ports != nil {
			r.Handle("/ports", s.ports)
		}
	})

	return s.enableCORS(r), nil
}

// validated checks the request against the operation declared for path.
func (s *Server) validated(path string, next http.HandlerFunc) http.HandlerFunc {
	item := s.spec.Paths.Find(path)
	return func(w http.ResponseWriter, r *http.Request) {
		if item == nil || item.GetOperation(r.Method) == nil {
			next(w, r)
			return
		}
		params := map[string]string{}
		if id := chi.URLParam(r, "id"); id != "" {
			params["id"] = id
		}
		input := &openapi3filter.RequestValidationInput{
			Request:    r,
			PathParams: params,
			Route: &routers.Route{
				Spec:      s.spec,
				Path:      path,
				PathItem:  item,
				Method:    r.Method,
				Operation: item.GetOperation(r.Method),
			},
		}
		if err := openapi3filter.ValidateRequest(r.Context(), input); err != nil {
			s.logger.Warn("request rejected", "path", path, "err", err)
			writeJSON(w, http.StatusBadRequest, domain.Failf(domain.ErrInvalidRequest, "%v", err))
			return
		}
		next(w, r)
	}
}

func (s *Server) enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin == "" || sameOrigin(origin, r.Host) {
			next.ServeHTTP(w, r)
			return
		}
		if !s.origins["*"] && !s.origins[origin] {
			s.logger.Warn("cross-origin request refused", "origin", origin, "path", r.URL.Path)
			writeJSON(w, http.StatusForbidden, domain.Failf(domain.ErrInvalidRequest, "origin %s is not allowed", origin))
			return
		}
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Add("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func sameOrigin(origin, host string) bool {
	u, err := url.Parse(origin)
	return err == nil && u.Host == host
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Skury API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if s.spec.Info != nil {
		apiVersion = s.spec.Info.Version
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"app":         "skury-http",
		"version":     skury.Version,
		"api_version": apiVersion,
	})
}

// PostMessage handles POST /v1/messages.
func (s *Server) PostMessage(w http.ResponseWriter, r *http.Request) {
	var raw map[string]any
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		writeJSON(w, http.StatusBadRequest, domain.Failf(domain.ErrInvalidRequest, "Invalid request body"))
		return
	}
	msg, err := domain.Decode(raw)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, domain.Fail(err))
		return
	}

	resp, err := s.coord.Dispatch(r.Context(), msg)
	if err != nil {
		s.logger.Error("dispatch failed", "kind", msg.Kind(), "err", err)
		writeJSON(w, statusOf(err), domain.Fail(err))
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// ClickAction handles POST /v1/action.
func (s *Server) ClickAction(w http.ResponseWriter, r *http.Request) {
	resp, err := s.coord.ClickAction(r.Context())
	if err != nil && !resp.IsError() {
		writeJSON(w, statusOf(err), domain.Fail(err))
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

type surfaceBody struct {
	ID     string  `json:"id,omitempty"`
	URL    string  `json:"url"`
	HTML   string  `json:"html,omitempty"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
	Active bool    `json:"active,omitempty"`
}

// ListSurfaces handles GET /v1/surfaces.
func (s *Server) ListSurfaces(w http.ResponseWriter, r *http.Request) {
	list, active := s.coord.Surfaces()
	out := make([]surfaceBody, 0, len(list))
	for _, sf := range list {
		out = append(out, surfaceBody{
			ID:     sf.ID,
			URL:    sf.URL,
			Width:  sf.Viewport.W,
			Height: sf.Viewport.H,
			Active: sf.ID == active,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// OpenSurface handles POST /v1/surfaces.
func (s *Server) OpenSurface(w http.ResponseWriter, r *http.Request) {
	var body surfaceBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, domain.Failf(domain.ErrInvalidRequest, "Invalid request body"))
		return
	}
	id, err := s.coord.OpenSurface(r.Context(), surface.Surface{
		ID:       body.ID,
		URL:      body.URL,
		HTML:     body.HTML,
		Viewport: capture.Viewport{W: body.Width, H: body.Height},
	})
	if err != nil {
		// The surface is open; only its content script failed.
		s.logger.Warn("content script failed", "surface_id", id, "err", err)
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// CloseSurface handles DELETE /v1/surfaces/{id}.
func (s *Server) CloseSurface(w http.ResponseWriter, r *http.Request) {
	s.coord.CloseSurface(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

// ActivateSurface handles POST /v1/surfaces/{id}/activate.
func (s *Server) ActivateSurface(w http.ResponseWriter, r *http.Request) {
	if err := s.coord.Activate(chi.URLParam(r, "id")); err != nil {
		writeJSON(w, statusOf(err), domain.Fail(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetPreferences handles GET /v1/preferences. The credential is masked.
func (s *Server) GetPreferences(w http.ResponseWriter, r *http.Request) {
	var keys []string
	if q := r.URL.Query().Get("keys"); q != "" {
		for _, k := range strings.Split(q, ",") {
			if k = strings.TrimSpace(k); k != "" {
				keys = append(keys, k)
			}
		}
	}
	vals, err := s.prefs.Get(r.Context(), keys...)
	if err != nil {
		s.logger.Error("preferences read failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, domain.Fail(err))
		return
	}
	writeJSON(w, http.StatusOK, vals)
}

// SetPreferences handles PUT /v1/preferences.
func (s *Server) SetPreferences(w http.ResponseWriter, r *http.Request) {
	var items map[string]string
	if err := json.NewDecoder(r.Body).Decode(&items); err != nil {
		writeJSON(w, http.StatusBadRequest, domain.Failf(domain.ErrInvalidRequest, "Invalid request body"))
		return
	}
	if theme, ok := items[domain.KeyTheme]; ok {
		items[domain.KeyTheme] = string(domain.NormalizeTheme(theme))
	}
	if err := s.prefs.Set(r.Context(), items); err != nil {
		s.logger.Error("preferences write failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, domain.Fail(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, domain.ErrNoTarget):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidRequest), errors.Is(err, domain.ErrUnknownKind):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNoReceiver), errors.Is(err, domain.ErrContextTornDown):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
