package gate

import (
	"sync"
	"time"

	"github.com/irsalhamdi/wholesale-storefront/core/claims"
	"github.com/sirupsen/logrus"
)

// Registry keeps one Gate per browser session and drops gates idle for
// longer than expiry.
type Registry struct {
	lookup  Lookup
	timeout time.Duration
	expiry  time.Duration
	log     logrus.FieldLogger

	mu    sync.Mutex
	gates map[string]*entry
	stop  chan struct{}
	once  sync.Once
}

type entry struct {
	gate       *Gate
	lastAccess time.Time
}

func NewRegistry(lookup Lookup, timeout, expiry time.Duration, log logrus.FieldLogger) *Registry {
	r := &Registry{
		lookup:  lookup,
		timeout: timeout,
		expiry:  expiry,
		log:     log,
		gates:   make(map[string]*entry),
		stop:    make(chan struct{}),
	}
	go r.refresh(time.Minute)
	return r
}

// Sync returns the session's gate after feeding it the request identity.
func (r *Registry) Sync(key string, id *claims.Identity) *Gate {
	g := r.Gate(key)
	g.SetIdentity(id)
	return g
}

func (r *Registry) Gate(key string) *Gate {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.gates[key]
	if !ok {
		e = &entry{gate: New(r.lookup, r.timeout, r.log.WithField("session", key))}
		r.gates[key] = e
	}
	e.lastAccess = time.Now()
	return e.gate
}

func (r *Registry) Forget(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.gates, key)
}

func (r *Registry) Close() {
	r.once.Do(func() { close(r.stop) })
}

func (r *Registry) refresh(every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()

	for {
		select {
		case <-r.stop:
			return
		case <-t.C:
		}

		r.sweep()
	}
}

func (r *Registry) sweep() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, e := range r.gates {
		if time.Since(e.lastAccess) > r.expiry {
			delete(r.gates, key)
		}
	}
}
