package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/newosoal21-pixel/mceremony-reservation/internal/facility/store"
	"github.com/newosoal21-pixel/mceremony-reservation/internal/metrics"
)

var (
	ErrBadCredentials = errors.New("bad credentials")
	ErrNoSession      = errors.New("no session")
)

// Authenticator is the login boundary: credential check, then identity
// rotation and admission as one registry step.
type Authenticator struct {
	accounts store.AccountStore
	reg      *Registry
	guard    *FixationGuard
	logger   *log.Logger
	now      func() time.Time
}

func NewAuthenticator(accounts store.AccountStore, reg *Registry, guard *FixationGuard, logger *log.Logger) *Authenticator {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Authenticator{
		accounts: accounts,
		reg:      reg,
		guard:    guard,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Login verifies credentials and admits a new session. prevHandle is the
// handle the client presented before logging in, if any.
func (a *Authenticator) Login(ctx context.Context, username, password, prevHandle string) (Entry, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		metrics.Logins.WithLabelValues("bad_credentials").Inc()
		return Entry{}, ErrBadCredentials
	}

	acct, err := a.accounts.FindAccount(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		metrics.Logins.WithLabelValues("bad_credentials").Inc()
		return Entry{}, ErrBadCredentials
	}
	if err != nil {
		metrics.Logins.WithLabelValues("error").Inc()
		return Entry{}, fmt.Errorf("find account: %w", err)
	}
	if acct.Deleted {
		metrics.Logins.WithLabelValues("bad_credentials").Inc()
		return Entry{}, ErrBadCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)); err != nil {
		metrics.Logins.WithLabelValues("bad_credentials").Inc()
		return Entry{}, ErrBadCredentials
	}

	now := a.now()
	role := acct.Role()
	e, evicted, err := a.guard.Rotate(Entry{
		Principal: acct.Username,
		Role:      role,
		CreatedAt: now,
		LastSeen:  now,
	}, PolicyFor(role), prevHandle)
	if err != nil {
		metrics.Logins.WithLabelValues("rejected").Inc()
		a.logger.Printf("login rejected for %s (%s): %v", acct.Username, role, err)
		return Entry{}, err
	}
	for _, old := range evicted {
		a.logger.Printf("session evicted for %s (created %s)", old.Principal, old.CreatedAt.Format(time.RFC3339))
	}

	metrics.Logins.WithLabelValues("ok").Inc()
	if cur, ok := a.reg.Lookup(e.Handle); ok {
		return cur, nil
	}
	return e, nil
}

// Logout ends the session under handle. Unknown handles are ignored.
func (a *Authenticator) Logout(handle string) {
	if handle == "" {
		return
	}
	a.reg.Remove(handle)
}

// Authenticate resolves handle to its live session and records the access.
func (a *Authenticator) Authenticate(handle string) (Entry, error) {
	if handle == "" {
		return Entry{}, ErrNoSession
	}
	if !a.reg.Touch(handle, a.now()) {
		return Entry{}, ErrNoSession
	}
	e, ok := a.reg.Lookup(handle)
	if !ok {
		return Entry{}, ErrNoSession
	}
	return e, nil
}
