package httpapi

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gorilla/websocket"

	"github.com/newosoal21-pixel/mceremony-reservation/internal/facility/broadcast"
)

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	sub, err := s.hub.Subscribe(0)
	if errors.Is(err, broadcast.ErrTooManySubscribers) || errors.Is(err, broadcast.ErrHubClosed) {
		writeError(w, http.StatusServiceUnavailable, "Too many live connections.")
		return
	}
	if err != nil {
		s.logger.Printf("ws subscribe error: %v", err)
		writeError(w, http.StatusInternalServerError, "Unexpected server error.")
		return
	}

	upgrader := websocket.Upgrader{CheckOrigin: s.checkOrigin}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.hub.Unsubscribe(sub)
		s.logger.Printf("ws upgrade error: %v", err)
		return
	}

	s.logger.Printf("ws client connected: %s", r.RemoteAddr)
	go func() {
		s.hub.ServeConn(conn, sub)
		s.logger.Printf("ws client disconnected: %s", r.RemoteAddr)
	}()
}

// checkOrigin accepts same-host pages, non-browser clients that send no
// Origin, and any configured extra origin.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if _, ok := s.allowedOrigins[origin]; ok {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return u.Host == r.Host
}
