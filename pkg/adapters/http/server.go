// Package http serves the bridge over a small JSON API described by an embedded
// OpenAPI document.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/designbridge"
	"github.com/aretw0/designbridge/internal/logging"
	"github.com/aretw0/designbridge/internal/sanitizer"
	"github.com/aretw0/designbridge/pkg/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/oapi-codegen/runtime"
)

// maxBodySize bounds command bodies.
const maxBodySize = 1 << 20

// Bridge defines what the HTTP server needs from designbridge.Bridge.
type Bridge interface {
	Send(ctx context.Context, cmd domain.Command) (domain.Response, error)
	SessionContext() domain.SessionContext
	State() domain.State
}

var _ Bridge = (*designbridge.Bridge)(nil)

// Server holds the handlers.
type Server struct {
	Bridge  Bridge
	Streams *StreamManager
	metrics http.Handler
	logger  *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithStreams enables GET /events, fed by the manager's hooks.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) {
		s.Streams = sm
	}
}

// WithMetrics serves h on GET /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewHandler creates a new HTTP handler for the bridge.
func NewHandler(bridge Bridge, opts ...Option) http.Handler {
	s := &Server{
		Bridge: bridge,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(rawSpec)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(swaggerHTML))
	})
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/context", s.GetContext)
	r.Post("/commands/{kind}", s.SendCommand)
	if s.Streams != nil {
		r.Get("/events", s.SubscribeEvents)
	}
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>designbridge API</title>
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

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"state":  string(s.Bridge.State()),
	})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if swagger, err := GetSwagger(); err == nil && swagger.Info != nil {
		apiVersion = swagger.Info.Version
	} else if err != nil {
		s.logger.Error("Failed to load OpenAPI document", "err", err)
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"app":         "designbridge-http",
		"version":     strings.TrimSpace(designbridge.Version),
		"api_version": apiVersion,
	})
}

// GetContext handles the GET /context request.
func (s *Server) GetContext(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Bridge.SessionContext())
}

// SendCommand handles the POST /commands/{kind} request.
func (s *Server) SendCommand(w http.ResponseWriter, r *http.Request) {
	var rawKind string
	err := runtime.BindStyledParameterWithOptions("simple", "kind", chi.URLParam(r, "kind"), &rawKind,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		http.Error(w, fmt.Sprintf("Invalid format for parameter kind: %v", err), http.StatusBadRequest)
		return
	}
	kind, err := domain.ParseKind(strings.ToUpper(rawKind))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var timeoutMS *int
	if err := runtime.BindQueryParameter("form", true, false, "timeout_ms", r.URL.Query(), &timeoutMS); err != nil {
		http.Error(w, fmt.Sprintf("Invalid format for parameter timeout_ms: %v", err), http.StatusBadRequest)
		return
	}

	args, err := readArgs(r)
	if err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		s.logger.Warn("SendCommand: invalid request body", "kind", kind, "err", err)
		return
	}
	payload, err := domain.PayloadFromMap(kind, args)
	if err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	if timeoutMS != nil && *timeoutMS > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(*timeoutMS)*time.Millisecond)
		defer cancel()
	}

	resp, err := s.Bridge.Send(ctx, domain.NewCommand(payload))
	if err != nil {
		var merr *domain.MutationError
		if errors.As(err, &merr) {
			writeJSON(w, http.StatusUnprocessableEntity, resp)
			return
		}
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			s.logger.Error("SendCommand failed", "kind", kind, "err", err)
		}
		http.Error(w, err.Error(), status)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func readArgs(r *http.Request) (map[string]any, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize+1))
	if err != nil {
		return nil, err
	}
	if len(body) > maxBodySize {
		return nil, fmt.Errorf("%w: body exceeds %d bytes", sanitizer.ErrInputTooLarge, maxBodySize)
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, nil
	}
	var args map[string]any
	if err := json.Unmarshal(body, &args); err != nil {
		return nil, err
	}
	return sanitizer.Args(args)
}

func statusFor(err error) int {
	var derr *domain.DispatchError
	var perr *domain.ProtocolError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, domain.ErrBridgeClosed):
		return http.StatusServiceUnavailable
	case errors.As(err, &derr), errors.Is(err, domain.ErrHostDisconnected):
		return http.StatusBadGateway
	case errors.As(err, &perr):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// SubscribeEvents handles the GET /events request (SSE).
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	var kinds *[]string
	if err := runtime.BindQueryParameter("form", false, false, "kinds", r.URL.Query(), &kinds); err != nil {
		http.Error(w, fmt.Sprintf("Invalid format for parameter kinds: %v", err), http.StatusBadRequest)
		return
	}
	filter := make(map[domain.Kind]bool)
	if kinds != nil {
		for _, k := range *kinds {
			filter[domain.Kind(strings.ToUpper(strings.TrimSpace(k)))] = true
		}
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Streams.Subscribe()
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("SSE client disconnected")
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			if len(filter) > 0 && !filter[ev.Kind] {
				continue
			}
			fmt.Fprintf(w, "event: command\ndata: %s\n\n", ev.marshal())
			flusher.Flush()
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
