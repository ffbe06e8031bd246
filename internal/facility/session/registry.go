package session

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/newosoal21-pixel/mceremony-reservation/internal/facility/types"
	"github.com/newosoal21-pixel/mceremony-reservation/internal/metrics"
)

// ErrAdmissionRejected means the principal already holds as many sessions as
// its role allows and the role's policy rejects rather than evicts.
var ErrAdmissionRejected = errors.New("session admission rejected")

// Entry is one authenticated session.
type Entry struct {
	Principal string     `json:"principal"`
	Role      types.Role `json:"role"`
	Handle    string     `json:"handle"`
	CreatedAt time.Time  `json:"createdAt"`
	LastSeen  time.Time  `json:"lastSeen"`
}

// Registry tracks live session handles per principal. A single mutex guards
// both indexes so admission is one atomic check-and-register.
type Registry struct {
	mu          sync.Mutex
	byPrincipal map[string]map[string]*Entry
	byHandle    map[string]string // handle -> principal
}

func NewRegistry() *Registry {
	return &Registry{
		byPrincipal: make(map[string]map[string]*Entry),
		byHandle:    make(map[string]string),
	}
}

// Admit applies policy p to e and registers it on success. prev is the handle
// the client presented before authenticating, if any; it is retired only when
// the policy accepts, so a rejected login leaves every session as it was. A
// prev held by the same principal is a re-login from the same browser and does
// not count against the limit; its CreatedAt carries over to e.
//
// Admit returns the entries evicted to make room, which is only non-empty for
// evicting policies.
func (r *Registry) Admit(e Entry, p Policy, prev string) ([]Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	held := r.byPrincipal[e.Principal]
	replaced := make(map[string]bool, 2)
	for _, h := range []string{prev, e.Handle} {
		if _, ok := held[h]; ok && h != "" {
			replaced[h] = true
		}
	}

	var evicted []Entry
	if p.MaxConcurrent > 0 {
		if n := len(held) - len(replaced); n >= p.MaxConcurrent {
			if p.RejectOnExceed {
				return nil, ErrAdmissionRejected
			}
			for _, old := range oldestFirst(held) {
				if !replaced[old.Handle] {
					evicted = append(evicted, old)
				}
			}
			evicted = evicted[:n-p.MaxConcurrent+1]
		}
	}

	// Accepted: nothing above has changed the registry.
	for _, old := range evicted {
		r.removeLocked(old.Handle)
	}
	for _, h := range []string{prev, e.Handle} {
		if h == "" {
			continue
		}
		if old, ok := r.removeLocked(h); ok && old.Principal == e.Principal && old.CreatedAt.Before(e.CreatedAt) {
			e.CreatedAt = old.CreatedAt
		}
	}
	r.addLocked(e)
	return evicted, nil
}

func (r *Registry) Count(principal string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byPrincipal[principal])
}

// Len is the number of live sessions across all principals.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byHandle)
}

func (r *Registry) Lookup(handle string) (Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.byHandle[handle]
	if !ok {
		return Entry{}, false
	}
	return *r.byPrincipal[p][handle], true
}

// Touch records activity on handle. It reports false for unknown handles.
func (r *Registry) Touch(handle string, t time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.byHandle[handle]
	if !ok {
		return false
	}
	r.byPrincipal[p][handle].LastSeen = t
	return true
}

func (r *Registry) Remove(handle string) (Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.removeLocked(handle)
}

// RemovePrincipal drops every session of principal.
func (r *Registry) RemovePrincipal(principal string) []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Entry
	for _, e := range oldestFirst(r.byPrincipal[principal]) {
		r.removeLocked(e.Handle)
		out = append(out, e)
	}
	return out
}

// Entries returns a snapshot ordered by principal, then creation time.
func (r *Registry) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Entry, 0, len(r.byHandle))
	for _, held := range r.byPrincipal {
		for _, e := range held {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Principal != out[j].Principal {
			return out[i].Principal < out[j].Principal
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// PruneIdle removes sessions whose LastSeen is before cutoff.
func (r *Registry) PruneIdle(cutoff time.Time) []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Entry
	for _, held := range r.byPrincipal {
		for _, e := range oldestFirst(held) {
			if e.LastSeen.Before(cutoff) {
				r.removeLocked(e.Handle)
				out = append(out, e)
			}
		}
	}
	return out
}

func (r *Registry) addLocked(e Entry) {
	held, ok := r.byPrincipal[e.Principal]
	if !ok {
		held = make(map[string]*Entry)
		r.byPrincipal[e.Principal] = held
	}
	c := e
	held[e.Handle] = &c
	r.byHandle[e.Handle] = e.Principal
	metrics.ActiveSessions.Set(float64(len(r.byHandle)))
}

func (r *Registry) removeLocked(handle string) (Entry, bool) {
	p, ok := r.byHandle[handle]
	if !ok {
		return Entry{}, false
	}
	e := *r.byPrincipal[p][handle]
	delete(r.byHandle, handle)
	delete(r.byPrincipal[p], handle)
	if len(r.byPrincipal[p]) == 0 {
		delete(r.byPrincipal, p)
	}
	metrics.ActiveSessions.Set(float64(len(r.byHandle)))
	return e, true
}

func oldestFirst(held map[string]*Entry) []Entry {
	out := make([]Entry, 0, len(held))
	for _, e := range held {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}
