// Package mcp exposes the bridge as a Model Context Protocol server: one tool per
// command kind, plus the session context as a resource.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/designbridge"
	"github.com/aretw0/designbridge/internal/logging"
	"github.com/aretw0/designbridge/internal/sanitizer"
	"github.com/aretw0/designbridge/pkg/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// SessionURI is the resource exposing the session context.
const SessionURI = "design://session"

// Bridge defines what the MCP server needs from designbridge.Bridge.
type Bridge interface {
	Send(ctx context.Context, cmd domain.Command) (domain.Response, error)
	SessionContext() domain.SessionContext
	State() domain.State
}

var _ Bridge = (*designbridge.Bridge)(nil)

// Server wraps a Bridge and exposes it as an MCP Server.
type Server struct {
	bridge    Bridge
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(bridge Bridge, opts ...Option) *Server {
	s := &Server{
		bridge: bridge,
		logger: logging.NewNop(),
		mcpServer: server.NewMCPServer("designbridge", strings.TrimSpace(designbridge.Version),
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

// MCPServer returns the underlying server, e.g. for in-process clients.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE, until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
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

		s.logger.Info("Shutdown signal received, stopping MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	for _, spec := range Catalog() {
		s.mcpServer.AddTool(spec.Tool(), s.handler(spec.Kind))
	}
}

// handler turns a tool call into one command of kind.
// Bridge failures are reported as tool errors, never as protocol errors.
func (s *Server) handler(kind domain.Kind) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, err := sanitizer.Args(request.GetArguments())
		if err != nil {
			s.logger.Warn("MCP: arguments rejected", "kind", kind, "err", err)
			return mcp.NewToolResultError(fmt.Sprintf("arguments rejected: %v", err)), nil
		}

		payload, err := domain.PayloadFromMap(kind, args)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}

		resp, err := s.bridge.Send(ctx, domain.NewCommand(payload))
		var merr *domain.MutationError
		switch {
		case errors.As(err, &merr):
			return mcp.NewToolResultError(resp.Summary()), nil
		case err != nil:
			s.logger.Error("MCP: command failed", "kind", kind, "err", err)
			return mcp.NewToolResultError(fmt.Sprintf("%s failed: %v", kind, err)), nil
		}
		return mcp.NewToolResultText(resp.Summary()), nil
	}
}

// sessionView is the resource body.
type sessionView struct {
	State   domain.State          `json:"state"`
	Context domain.SessionContext `json:"context"`
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(SessionURI, "Session context",
		mcp.WithResourceDescription("Active wireframe, active page and known wireframes"),
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		body, err := json.Marshal(sessionView{State: s.bridge.State(), Context: s.bridge.SessionContext()})
		if err != nil {
			return nil, fmt.Errorf("failed to encode session context: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      SessionURI,
				MIMEType: "application/json",
				Text:     string(body),
			},
		}, nil
	})
}
