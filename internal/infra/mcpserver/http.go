package mcpserver

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/server"
)

// HTTPServer exposes the MCP server over streamable HTTP at /mcp, with an
// unauthenticated GET /health.
type HTTPServer struct {
	addr      string
	server    *http.Server
	logger    *slog.Logger
	mu        sync.Mutex
	running   bool
	mux       *http.ServeMux
	authToken string
}

func NewHTTPServer(addr string, mcpServer *server.MCPServer, authToken string, logger *slog.Logger) *HTTPServer {
	h := &HTTPServer{
		addr:      addr,
		logger:    logger,
		mux:       http.NewServeMux(),
		authToken: authToken,
	}
	h.mux.Handle("/mcp", h.requireToken(server.NewStreamableHTTPServer(mcpServer)))
	h.mux.HandleFunc("GET /health", h.handleHealth)
	return h
}

func (h *HTTPServer) Start(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.running {
		return nil
	}

	// No WriteTimeout: a tool call blocks for the whole upload and processing wait.
	h.server = &http.Server{
		Addr:              h.addr,
		Handler:           h.mux,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		h.logger.Info("MCP HTTP server starting", "addr", h.addr)
		if err := h.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			h.logger.Error("HTTP server error", "error", err)
		}
	}()

	h.running = true
	return nil
}

func (h *HTTPServer) Stop() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.running {
		return nil
	}

	if h.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := h.server.Shutdown(ctx); err != nil {
			h.logger.Warn("graceful shutdown failed, forcing close", "error", err)
			if err := h.server.Close(); err != nil {
				return fmt.Errorf("closing server: %w", err)
			}
		}
	}

	h.running = false
	return nil
}

// Run starts the server and blocks until ctx is cancelled.
func (h *HTTPServer) Run(ctx context.Context) error {
	if err := h.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	return h.Stop()
}

func (h *HTTPServer) Handler() http.Handler {
	return h.mux
}

func (h *HTTPServer) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.authToken != "" {
			token := r.Header.Get("X-Auth-Token")
			if token == "" {
				token = r.URL.Query().Get("token")
			}

			if token != h.authToken {
				h.logger.Warn("unauthorized MCP request", "remote_addr", r.RemoteAddr)
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (h *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	running := h.running
	h.mu.Unlock()

	status := "ok"
	statusCode := http.StatusOK

	if !running {
		status = "not_ready"
		statusCode = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	fmt.Fprintf(w, `{"status":"%s","running":%t,"server":"%s"}`, status, running, ServerName)
}
