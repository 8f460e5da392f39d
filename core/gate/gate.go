package gate

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/irsalhamdi/wholesale-storefront/core/claims"
	"github.com/sirupsen/logrus"
)

// Lookup asks the backend whether id is an administrator. ctx carries id.
type Lookup func(ctx context.Context, id claims.Identity) (bool, error)

// Gate derives the admin verdict of one session from its identity and an
// asynchronous role lookup. Each identity change or refresh starts a new
// generation; lookups finishing for an older generation are dropped.
type Gate struct {
	lookup  Lookup
	timeout time.Duration
	log     logrus.FieldLogger

	mu       sync.Mutex
	identity *claims.Identity
	gen      uint64
	verdict  Verdict
	changed  chan struct{}
	subs     map[int]func(Verdict)
	nextSub  int
	seq      uint64

	deliverMu sync.Mutex
	delivered uint64
}

func New(lookup Lookup, timeout time.Duration, log logrus.FieldLogger) *Gate {
	return &Gate{
		lookup:  lookup,
		timeout: timeout,
		log:     log,
		verdict: Verdict{State: NoIdentity},
		changed: make(chan struct{}),
		subs:    make(map[int]func(Verdict)),
	}
}

// SetIdentity records the current identity. Signing in as a different
// principal discards the previous verdict and starts a fresh lookup;
// repeating the same principal only refreshes its token.
func (g *Gate) SetIdentity(id *claims.Identity) {
	g.mu.Lock()

	switch {
	case id == nil && g.identity == nil:
		g.mu.Unlock()
		return
	case id != nil && g.identity != nil && id.Principal == g.identity.Principal:
		cp := *id
		g.identity = &cp
		g.mu.Unlock()
		return
	}

	if id == nil {
		g.identity = nil
		g.gen++
		g.set(Verdict{State: NoIdentity})
		return
	}

	cp := *id
	g.identity = &cp
	g.startLocked()
}

// Refresh forces a new role lookup for the current identity.
func (g *Gate) Refresh() {
	g.mu.Lock()
	if g.identity == nil {
		g.mu.Unlock()
		return
	}
	g.startLocked()
}

// RefreshFor refreshes only while principal is still the current identity.
func (g *Gate) RefreshFor(principal string) bool {
	g.mu.Lock()
	if g.identity == nil || g.identity.Principal != principal {
		g.mu.Unlock()
		return false
	}
	g.startLocked()
	return true
}

func (g *Gate) Verdict() Verdict {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.verdict
}

func (g *Gate) Identity() *claims.Identity {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.identity == nil {
		return nil
	}
	cp := *g.identity
	return &cp
}

// Wait blocks until the verdict is no longer Resolving or ctx is done. On
// ctx expiry it returns the current (still resolving) verdict and ctx.Err().
func (g *Gate) Wait(ctx context.Context) (Verdict, error) {
	for {
		g.mu.Lock()
		v, ch := g.verdict, g.changed
		g.mu.Unlock()

		if v.State != Resolving {
			return v, nil
		}

		select {
		case <-ch:
		case <-ctx.Done():
			return v, ctx.Err()
		}
	}
}

// Subscribe registers fn for verdict changes. A verdict older than one
// already delivered is never delivered. fn must not change the gate.
func (g *Gate) Subscribe(fn func(Verdict)) (unsubscribe func()) {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := g.nextSub
	g.nextSub++
	g.subs[id] = fn

	return func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		delete(g.subs, id)
	}
}

// startLocked must be called with g.mu held; it releases it.
func (g *Gate) startLocked() {
	g.gen++
	gen, id := g.gen, *g.identity
	g.set(Verdict{State: Resolving})

	go g.resolve(gen, id)
}

func (g *Gate) resolve(gen uint64, id claims.Identity) {
	ctx, cancel := context.WithTimeout(claims.Set(context.Background(), id), g.timeout)
	defer cancel()

	isAdmin, err := g.lookup(ctx, id)

	log := g.log.WithField("principal", id.Principal)

	g.mu.Lock()
	if gen != g.gen {
		g.mu.Unlock()
		log.Debug("discarding stale admin lookup")
		return
	}

	switch {
	case err != nil:
		if errors.Is(err, context.DeadlineExceeded) {
			log = log.WithField("timeout", g.timeout)
		}
		log.WithError(err).Warn("unable to confirm admin status")
		g.set(Verdict{State: NonAdmin, Err: err})
	case isAdmin:
		g.set(Verdict{State: Admin})
	default:
		g.set(Verdict{State: NonAdmin})
	}
}

// set must be called with g.mu held; it releases it before notifying.
func (g *Gate) set(v Verdict) {
	g.verdict = v
	close(g.changed)
	g.changed = make(chan struct{})
	g.seq++
	seq := g.seq

	fns := make([]func(Verdict), 0, len(g.subs))
	for _, fn := range g.subs {
		fns = append(fns, fn)
	}
	g.mu.Unlock()

	g.deliver(seq, v, fns)
}

// deliver hands verdict number seq to fns unless a newer verdict has already
// gone out.
func (g *Gate) deliver(seq uint64, v Verdict, fns []func(Verdict)) {
	g.deliverMu.Lock()
	defer g.deliverMu.Unlock()

	if seq <= g.delivered {
		return
	}
	g.delivered = seq

	for _, fn := range fns {
		fn(v)
	}
}
