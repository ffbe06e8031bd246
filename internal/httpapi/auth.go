package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/newosoal21-pixel/mceremony-reservation/internal/facility/session"
	"github.com/newosoal21-pixel/mceremony-reservation/internal/facility/types"
)

const sessionCookie = "FACILITY_SESSION"

func sessionFrom(ctx context.Context) (session.Entry, bool) {
	e, ok := ctx.Value(sessionKey).(session.Entry)
	return e, ok
}

func (s *Server) requireSession(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(sessionCookie)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Authentication required.")
			return
		}
		e, err := s.auth.Authenticate(c.Value)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Authentication required.")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey, e)))
	})
}

func (s *Server) requireAdmin(next http.HandlerFunc) http.Handler {
	return s.requireSession(func(w http.ResponseWriter, r *http.Request) {
		if e, _ := sessionFrom(r.Context()); e.Role != types.RoleAdmin {
			writeError(w, http.StatusForbidden, "Administrator role required.")
			return
		}
		next(w, r)
	})
}

// handleLogin reports its outcome as a redirect; failures never produce a
// structured API error.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/login?error", http.StatusSeeOther)
		return
	}

	prev := ""
	if c, err := r.Cookie(sessionCookie); err == nil {
		prev = c.Value
	}

	e, err := s.auth.Login(r.Context(), r.PostFormValue("username"), r.PostFormValue("password"), prev)
	switch {
	case errors.Is(err, session.ErrAdmissionRejected):
		http.Redirect(w, r, "/login?expired", http.StatusSeeOther)
		return
	case errors.Is(err, session.ErrBadCredentials):
		http.Redirect(w, r, "/login?error", http.StatusSeeOther)
		return
	case err != nil:
		s.logger.Printf("login error rid=%s: %v", requestID(r.Context()), err)
		http.Redirect(w, r, "/login?error", http.StatusSeeOther)
		return
	}

	http.SetCookie(w, s.cookie(e.Handle, 0))
	target := "/"
	if e.Role == types.RoleAdmin {
		target = "/admin/dashboard"
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(sessionCookie); err == nil {
		s.auth.Logout(c.Value)
	}

	http.SetCookie(w, s.cookie("", -1))
	h := w.Header()
	h.Set("Cache-Control", "no-cache, no-store, must-revalidate")
	h.Set("Pragma", "no-cache")
	h.Set("Expires", "0")
	http.Redirect(w, r, "/login?logout", http.StatusSeeOther)
}

func (s *Server) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     sessionCookie,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
	}
}
