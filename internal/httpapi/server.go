package httpapi

import (
	"context"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/newosoal21-pixel/mceremony-reservation/internal/facility/broadcast"
	"github.com/newosoal21-pixel/mceremony-reservation/internal/facility/service"
	"github.com/newosoal21-pixel/mceremony-reservation/internal/facility/session"
)

type Dependencies struct {
	Logger *log.Logger
	Addr   string

	Dispatcher *service.Dispatcher
	Queries    *service.QueryService
	Auth       *session.Authenticator
	Sessions   *session.Registry
	Hub        *broadcast.Hub

	SecureCookies bool
	// AllowedOrigins lists websocket origins accepted besides the server's
	// own host.
	AllowedOrigins []string
}

type Server struct {
	httpServer *http.Server
	logger     *log.Logger
	mux        *http.ServeMux

	dispatcher *service.Dispatcher
	queries    *service.QueryService
	auth       *session.Authenticator
	sessions   *session.Registry
	hub        *broadcast.Hub

	secureCookies  bool
	allowedOrigins map[string]struct{}
}

func NewServer(d Dependencies) *Server {
	if d.Logger == nil {
		d.Logger = log.New(io.Discard, "", 0)
	}
	mux := http.NewServeMux()

	s := &Server{
		logger:         d.Logger,
		mux:            mux,
		dispatcher:     d.Dispatcher,
		queries:        d.Queries,
		auth:           d.Auth,
		sessions:       d.Sessions,
		hub:            d.Hub,
		secureCookies:  d.SecureCookies,
		allowedOrigins: make(map[string]struct{}, len(d.AllowedOrigins)),
	}
	for _, o := range d.AllowedOrigins {
		s.allowedOrigins[o] = struct{}{}
	}

	// Public
	mux.HandleFunc("POST /login", s.handleLogin)
	mux.HandleFunc("POST /logout", s.handleLogout)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	// Any signed-in staff member
	mux.Handle("POST /api/{entity}/update", s.requireSession(s.handleUpdate))
	mux.Handle("GET /api/{entity}/statuses", s.requireSession(s.handleStatuses))
	mux.Handle("GET /api/bus/situations", s.requireSession(s.statusesFor("bus")))
	mux.Handle("GET /api/visitor/situations", s.requireSession(s.statusesFor("visitor")))
	mux.Handle("GET /api/{entity}/records", s.requireSession(s.handleRecords))
	mux.Handle("GET /ws", s.requireSession(s.handleWS))

	// Admin only
	mux.Handle("GET /api/admin/sessions", s.requireAdmin(s.handleListSessions))
	mux.Handle("POST /api/admin/sessions/invalidate", s.requireAdmin(s.handleInvalidateSessions))

	handler := requestIDMiddleware(loggingMiddleware(d.Logger, mux))

	s.httpServer = &http.Server{
		Addr:              d.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"sessions":    s.sessions.Len(),
		"subscribers": s.hub.SubscriberCount(),
	})
}
