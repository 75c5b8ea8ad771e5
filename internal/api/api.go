// Package api provides the HTTP admin and webhook surface of the bot engine.
//
// It exposes RESTful endpoints for flow management, tenant settings, session
// control, the message log and menu items, plus the Twilio inbound webhook
// and Prometheus metrics.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gestorzap/botengine/internal/flow"
	"github.com/gestorzap/botengine/internal/messaging"
	"github.com/gestorzap/botengine/internal/models"
	"github.com/gestorzap/botengine/internal/store"
	"github.com/gestorzap/botengine/internal/util"
)

// Default timeouts for the HTTP server.
const (
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
)

// Opts holds configuration options for the API server.
type Opts struct {
	Addr   string
	APIKey string
}

// Option defines a configuration option for the API server.
type Option func(*Opts)

// WithAddr sets the listen address.
func WithAddr(addr string) Option {
	return func(o *Opts) { o.Addr = addr }
}

// WithAPIKey enables bearer-token authentication on the /api/v1 surface.
func WithAPIKey(key string) Option {
	return func(o *Opts) { o.APIKey = key }
}

// Server hosts the HTTP API on top of the store and the flow engine.
type Server struct {
	store  store.Store
	engine *flow.Engine
	twilio *messaging.TwilioService // nil unless the Twilio transport is active
	apiKey string
	http   *http.Server
}

// NewServer creates an API server. twilio may be nil; the Twilio webhook then
// responds 404.
func NewServer(st store.Store, engine *flow.Engine, twilio *messaging.TwilioService, opts ...Option) *Server {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}

	s := &Server{
		store:  st,
		engine: engine,
		twilio: twilio,
		apiKey: cfg.APIKey,
	}

	r := mux.NewRouter()
	r.Use(s.requestLogMiddleware)
	r.HandleFunc("/health", s.healthHandler).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/webhook/twilio", s.twilioWebhookHandler).Methods(http.MethodPost)

	v1 := r.PathPrefix("/api/v1").Subrouter()
	v1.Use(s.authMiddleware)

	v1.HandleFunc("/tenants/{tenant}/messages", s.inboundMessageHandler).Methods(http.MethodPost)
	v1.HandleFunc("/tenants/{tenant}/settings", s.getSettingsHandler).Methods(http.MethodGet)
	v1.HandleFunc("/tenants/{tenant}/settings", s.putSettingsHandler).Methods(http.MethodPut)

	v1.HandleFunc("/tenants/{tenant}/flows", s.listFlowsHandler).Methods(http.MethodGet)
	v1.HandleFunc("/tenants/{tenant}/flows", s.createFlowHandler).Methods(http.MethodPost)
	v1.HandleFunc("/tenants/{tenant}/flows/import", s.importFlowHandler).Methods(http.MethodPost)
	v1.HandleFunc("/flows/{id}", s.getFlowHandler).Methods(http.MethodGet)
	v1.HandleFunc("/flows/{id}", s.updateFlowHandler).Methods(http.MethodPut)
	v1.HandleFunc("/flows/{id}", s.deleteFlowHandler).Methods(http.MethodDelete)
	v1.HandleFunc("/flows/{id}/clone", s.cloneFlowHandler).Methods(http.MethodPost)
	v1.HandleFunc("/flows/{id}/export", s.exportFlowHandler).Methods(http.MethodGet)

	v1.HandleFunc("/flows/{id}/nodes", s.createNodeHandler).Methods(http.MethodPost)
	v1.HandleFunc("/nodes/{id}", s.updateNodeHandler).Methods(http.MethodPut)
	v1.HandleFunc("/nodes/{id}", s.deleteNodeHandler).Methods(http.MethodDelete)
	v1.HandleFunc("/flows/{id}/edges", s.createEdgeHandler).Methods(http.MethodPost)
	v1.HandleFunc("/edges/{id}", s.deleteEdgeHandler).Methods(http.MethodDelete)

	v1.HandleFunc("/tenants/{tenant}/sessions", s.resetSessionsHandler).Methods(http.MethodDelete)
	v1.HandleFunc("/tenants/{tenant}/sessions/{phone}", s.getActiveSessionHandler).Methods(http.MethodGet)
	v1.HandleFunc("/sessions/{id}/log", s.messageLogHandler).Methods(http.MethodGet)

	v1.HandleFunc("/tenants/{tenant}/menu", s.listMenuHandler).Methods(http.MethodGet)
	v1.HandleFunc("/tenants/{tenant}/menu", s.saveMenuItemHandler).Methods(http.MethodPost)
	v1.HandleFunc("/menu/{id}", s.deleteMenuItemHandler).Methods(http.MethodDelete)

	s.http = &http.Server{
		Addr:         cfg.Addr,
		Handler:      r,
		ReadTimeout:  DefaultReadTimeout,
		WriteTimeout: DefaultWriteTimeout,
	}
	return s
}

// Start runs the HTTP server until it fails or Shutdown is called.
func (s *Server) Start() error {
	slog.Info("API server listening", "addr", s.http.Addr, "auth_enabled", s.apiKey != "")
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("API server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
	defer cancel()
	return s.http.Shutdown(ctx)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, models.Success(map[string]string{"status": "healthy"}))
}

// requestLogMiddleware tags each request with a correlation id and logs it.
func (s *Server) requestLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := util.GenerateRequestID()
		w.Header().Set("X-Request-ID", reqID)
		slog.Debug("API request", "request_id", reqID, "method", r.Method, "path", r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

// authMiddleware enforces bearer-token auth when an API key is configured.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey != "" && r.Header.Get("Authorization") != "Bearer "+s.apiKey {
			slog.Warn("API request rejected: bad or missing token", "path", r.URL.Path)
			writeJSONResponse(w, http.StatusUnauthorized, models.Error("Unauthorized"))
			return
		}
		next.ServeHTTP(w, r)
	})
}
