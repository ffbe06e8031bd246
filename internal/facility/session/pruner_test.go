package session_test

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/newosoal21-pixel/mceremony-reservation/internal/facility/session"
	"github.com/newosoal21-pixel/mceremony-reservation/internal/facility/types"
)

func silentLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestIdlePruner_DisabledWhenTTLZero(t *testing.T) {
	reg := session.NewRegistry()
	_, _ = reg.Admit(session.Entry{Principal: "admin", Role: types.RoleAdmin, Handle: "h1"}, session.Policy{}, "")

	p := session.NewIdlePruner(reg, 0, time.Millisecond, silentLogger())
	p.Start(context.Background())
	p.Stop()

	assert.Equal(t, 0, p.PruneOnce())
	assert.Equal(t, 1, reg.Len())
}

func TestIdlePruner_ExpiresIdleSessions(t *testing.T) {
	reg := session.NewRegistry()
	now := time.Now().UTC()
	_, _ = reg.Admit(session.Entry{Principal: "admin", Role: types.RoleAdmin, Handle: "idle", LastSeen: now.Add(-2 * time.Hour)}, session.Policy{}, "")
	_, _ = reg.Admit(session.Entry{Principal: "staff", Role: types.RoleUser, Handle: "busy", LastSeen: now}, session.Policy{}, "")

	p := session.NewIdlePruner(reg, time.Hour, time.Minute, silentLogger())
	assert.Equal(t, 1, p.PruneOnce())

	_, ok := reg.Lookup("idle")
	assert.False(t, ok)
	_, ok = reg.Lookup("busy")
	assert.True(t, ok)
}

func TestIdlePruner_BackgroundLoop(t *testing.T) {
	reg := session.NewRegistry()
	_, _ = reg.Admit(session.Entry{Principal: "admin", Role: types.RoleAdmin, Handle: "idle", LastSeen: time.Now().UTC().Add(-time.Hour)}, session.Policy{}, "")

	p := session.NewIdlePruner(reg, time.Minute, 10*time.Millisecond, silentLogger())
	p.Start(context.Background())
	defer p.Stop()

	assert.Eventually(t, func() bool { return reg.Len() == 0 }, 2*time.Second, 10*time.Millisecond)
}
