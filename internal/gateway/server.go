// Package gateway runs the operator HTTP server.
package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/w1labs/atende/internal/config"
	"github.com/w1labs/atende/internal/escalation"
	"github.com/w1labs/atende/internal/httpapi"
)

// Server is the operator-facing HTTP server: escalation queue API,
// manual send endpoint, and the liveness root.
type Server struct {
	cfg    config.GatewayConfig
	store  *escalation.Store
	sender httpapi.Sender

	httpServer *http.Server
	mux        *http.ServeMux
}

// NewServer creates the gateway server. sender is the channel manager
// used by the operator send endpoint.
func NewServer(cfg config.GatewayConfig, store *escalation.Store, sender httpapi.Sender) *Server {
	return &Server{
		cfg:    cfg,
		store:  store,
		sender: sender,
	}
}

// BuildMux creates and caches the HTTP mux with all routes registered.
func (s *Server) BuildMux() *http.ServeMux {
	if s.mux != nil {
		return s.mux
	}

	mux := http.NewServeMux()

	httpapi.NewRequestsHandler(s.store).RegisterRoutes(mux)
	httpapi.NewSendMessageHandler(s.sender, "whatsapp").RegisterRoutes(mux)

	mux.HandleFunc("GET /healthz", s.handleHealth)

	s.mux = mux
	return mux
}

// Start listens until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	mux := s.BuildMux()

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: s.corsMiddleware(mux),
	}

	slog.Info("gateway starting", "addr", addr)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.httpServer.Shutdown(shutdownCtx)
	}()

	if err := s.httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("gateway server: %w", err)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// corsMiddleware applies the allowed-origins whitelist for the operator
// dashboard. No configured origins means allow all (dev mode).
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" {
			if s.originAllowed(origin) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			} else {
				slog.Warn("cors rejected", "origin", origin)
			}
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) originAllowed(origin string) bool {
	allowed := s.cfg.AllowedOrigins
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if origin == a || a == "*" {
			return true
		}
	}
	return false
}
