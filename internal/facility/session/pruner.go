package session

import (
	"context"
	"io"
	"log"
	"time"

	"github.com/newosoal21-pixel/mceremony-reservation/internal/metrics"
)

// IdlePruner periodically expires sessions that have not been used for longer
// than the TTL. Without it an admin who closes the browser without logging out
// would be locked out until restart.
//
// A TTL of 0 disables pruning entirely.
type IdlePruner struct {
	reg      *Registry
	ttl      time.Duration
	interval time.Duration
	logger   *log.Logger
	now      func() time.Time
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewIdlePruner creates a pruner but does not start it. interval defaults to
// one minute.
func NewIdlePruner(reg *Registry, ttl, interval time.Duration, logger *log.Logger) *IdlePruner {
	if interval <= 0 {
		interval = time.Minute
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &IdlePruner{
		reg:      reg,
		ttl:      ttl,
		interval: interval,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
		done:     make(chan struct{}),
	}
}

// Start launches the background loop. It exits when ctx is cancelled or Stop
// is called.
func (p *IdlePruner) Start(ctx context.Context) {
	if p.ttl <= 0 {
		p.logger.Printf("session pruner disabled (ttl=0)")
		close(p.done)
		return
	}

	ctx, p.cancel = context.WithCancel(ctx)
	go p.loop(ctx)

	p.logger.Printf("session pruner started (ttl=%s, interval=%s)", p.ttl, p.interval)
}

// Stop signals the pruner to exit and waits for it.
func (p *IdlePruner) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
	<-p.done
}

func (p *IdlePruner) loop(ctx context.Context) {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.PruneOnce()
		}
	}
}

// PruneOnce expires idle sessions now and returns how many were removed.
func (p *IdlePruner) PruneOnce() int {
	if p.ttl <= 0 {
		return 0
	}
	expired := p.reg.PruneIdle(p.now().Add(-p.ttl))
	for _, e := range expired {
		p.logger.Printf("session expired for %s (idle since %s)", e.Principal, e.LastSeen.Format(time.RFC3339))
	}
	metrics.SessionsPruned.Add(float64(len(expired)))
	return len(expired)
}
