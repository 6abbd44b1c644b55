package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aretw0/skury"
	"github.com/aretw0/skury/internal/logging"
	"github.com/aretw0/skury/pkg/domain"
	"github.com/aretw0/skury/pkg/surface"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// SurfacesURI is the resource listing the open surfaces.
const SurfacesURI = "skury://surfaces"

// FormResult is the structured output of the form tools.
type FormResult struct {
	Solved    bool              `json:"solved" jsonschema_description:"Whether a form was answered on the page"`
	Count     int               `json:"count" jsonschema_description:"Number of questions answered"`
	Questions []domain.Question `json:"questions,omitempty" jsonschema_description:"Questions extracted from a structured form"`
}

// ThemeResult is the structured output of page_theme.
type ThemeResult struct {
	IsDark bool `json:"isDark" jsonschema_description:"Whether the active page has a dark background"`
}

// Coordinator is what the MCP server needs from skury.Coordinator.
type Coordinator interface {
	Dispatch(ctx context.Context, msg domain.Message) (domain.Response, error)
	Surfaces() ([]surface.Surface, string)
}

// Server exposes the coordinator's page and model operations as MCP tools.
type Server struct {
	coord     Coordinator
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(coord Coordinator, opts ...Option) *Server {
	s := &Server{
		coord:  coord,
		logger: logging.NewNop(),
		mcpServer: server.NewMCPServer("skury-mcp", strings.TrimSpace(skury.Version),
			server.WithToolCapabilities(false),
			server.WithResourceCapabilities(false, false),
		),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer { return s.mcpServer }

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// SSEHandler returns the SSE and message endpoints, announcing baseURL to clients.
// Browser requests from other origins are refused.
func (s *Server) SSEHandler(baseURL string) http.Handler {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sameOriginOnly(sseServer.SSEHandler()))
	mux.Handle("/message", sameOriginOnly(sseServer.MessageHandler()))
	return mux
}

// ServeSSE serves over SSE on the loopback port until ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf("127.0.0.1:%d", port)
	mux := s.SSEHandler(fmt.Sprintf("http://localhost:%d", port))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func sameOriginOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); origin != "" {
			if u, err := url.Parse(origin); err != nil || u.Host != r.Host {
				http.Error(w, "origin not allowed", http.StatusForbidden)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("ask",
		mcp.WithDescription("Send a prompt, and optionally an image, to the model and return its answer."),
		mcp.WithString("prompt", mcp.Required(), mcp.Description("The question or instruction")),
		mcp.WithString("image_data", mcp.Description("Image as a data URL (optional)")),
	), s.handleAsk)

	s.mcpServer.AddTool(mcp.NewTool("read_page",
		mcp.WithDescription("Return the main text of the active page."),
	), s.handleReadPage)

	s.mcpServer.AddTool(mcp.NewTool("solve_form",
		mcp.WithDescription("Answer every visible multiple-choice question on the active page."),
		mcp.WithOutputSchema[FormResult](),
	), mcp.NewStructuredToolHandler(s.handleSolveForm))

	s.mcpServer.AddTool(mcp.NewTool("analyze_form",
		mcp.WithDescription("Extract the questions of the structured form on the active page."),
		mcp.WithOutputSchema[FormResult](),
	), mcp.NewStructuredToolHandler(s.handleAnalyzeForm))

	s.mcpServer.AddTool(mcp.NewTool("page_theme",
		mcp.WithDescription("Report whether the active page has a dark background."),
		mcp.WithOutputSchema[ThemeResult](),
	), mcp.NewStructuredToolHandler(s.handlePageTheme))
}

// dispatch sends msg and turns an error envelope into an error.
func (s *Server) dispatch(ctx context.Context, msg domain.Message) (domain.Response, error) {
	resp, err := s.coord.Dispatch(ctx, msg)
	if err != nil {
		s.logger.Error("MCP dispatch failed", "kind", msg.Kind(), "err", err)
		return resp, err
	}
	return resp, resp.Err()
}

func (s *Server) handleAsk(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	prompt, err := request.RequireString("prompt")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	resp, err := s.dispatch(ctx, domain.RemoteCall{
		Prompt:    prompt,
		ImageData: request.GetString("image_data", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(resp.Reply), nil
}

func (s *Server) handleReadPage(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	resp, err := s.dispatch(ctx, domain.ReadPageContent{})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(resp.Content), nil
}

func (s *Server) handleSolveForm(ctx context.Context, _ mcp.CallToolRequest, _ map[string]any) (FormResult, error) {
	resp, err := s.dispatch(ctx, domain.SolveVisibleForm{})
	if err != nil {
		return FormResult{}, err
	}
	return FormResult{Solved: resp.Solved, Count: resp.Count}, nil
}

func (s *Server) handleAnalyzeForm(ctx context.Context, _ mcp.CallToolRequest, _ map[string]any) (FormResult, error) {
	resp, err := s.dispatch(ctx, domain.AnalyzeStructuredForm{})
	if err != nil {
		return FormResult{}, err
	}
	return FormResult{Count: len(resp.Questions), Questions: resp.Questions}, nil
}

func (s *Server) handlePageTheme(ctx context.Context, _ mcp.CallToolRequest, _ map[string]any) (ThemeResult, error) {
	resp, err := s.dispatch(ctx, domain.GetSurfaceTheme{})
	if err != nil {
		return ThemeResult{}, err
	}
	return ThemeResult{IsDark: resp.IsDark != nil && *resp.IsDark}, nil
}

type surfaceEntry struct {
	ID     string `json:"id"`
	URL    string `json:"url"`
	Active bool   `json:"active"`
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(SurfacesURI, "Open surfaces",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		list, active := s.coord.Surfaces()
		out := make([]surfaceEntry, 0, len(list))
		for _, sf := range list {
			out = append(out, surfaceEntry{ID: sf.ID, URL: sf.URL, Active: sf.ID == active})
		}
		jsonBytes, err := json.Marshal(out)
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      SurfacesURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
