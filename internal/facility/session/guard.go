package session

import "github.com/google/uuid"

// FixationGuard issues a fresh session handle at every successful
// authentication so a handle known before login is never honoured after it.
type FixationGuard struct {
	reg       *Registry
	newHandle func() string
}

func NewFixationGuard(reg *Registry) *FixationGuard {
	return &FixationGuard{reg: reg, newHandle: uuid.NewString}
}

// Rotate admits e under a new handle and retires prev in the same registry
// step. When admission is rejected prev stays live and untouched.
func (g *FixationGuard) Rotate(e Entry, p Policy, prev string) (Entry, []Entry, error) {
	e.Handle = g.newHandle()
	evicted, err := g.reg.Admit(e, p, prev)
	if err != nil {
		return Entry{}, nil, err
	}
	return e, evicted, nil
}
