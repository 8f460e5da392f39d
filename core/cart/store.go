package cart

import (
	"context"
	"sync"

	"github.com/irsalhamdi/wholesale-storefront/core/nat"
	"github.com/sirupsen/logrus"
)

// Storage is the durable key/value area a cart is persisted into. GetItem
// returns a nil slice and no error when nothing is stored under name.
type Storage interface {
	GetItem(ctx context.Context, name string) ([]byte, error)
	SetItem(ctx context.Context, name string, value []byte) error
	RemoveItem(ctx context.Context, name string) error
}

// Store owns one session's cart. Every mutation is applied in full and then
// persisted; persistence failures are logged, never returned.
type Store struct {
	mu      sync.Mutex
	lines   []Line
	seq     uint64
	storage Storage
	log     logrus.FieldLogger

	publishMu sync.Mutex
	published uint64

	subMu   sync.Mutex
	subs    map[int]func([]Line)
	nextSub int
}

// Open rehydrates the cart from storage. A missing or unreadable record
// yields an empty cart.
func Open(ctx context.Context, storage Storage, log logrus.FieldLogger) *Store {
	s := &Store{
		storage: storage,
		log:     log,
		subs:    make(map[int]func([]Line)),
	}

	b, err := storage.GetItem(ctx, StorageKey)
	if err != nil {
		log.WithError(err).Warn("reading stored cart, starting empty")
		return s
	}
	if len(b) == 0 {
		return s
	}

	lines, err := decodeRecord(b)
	if err != nil {
		log.WithError(err).Warn("stored cart is corrupt, starting empty")
		return s
	}
	s.lines = lines
	return s
}

// AddItem merges into an existing line by summing quantities and keeping the
// originally captured price, or appends a new line priced at unitPrice. A
// merge that would exceed MaxQuantity is rejected and changes nothing.
func (s *Store) AddItem(ctx context.Context, productID nat.Nat, quantity int, unitPrice nat.Nat) error {
	if quantity < 1 || quantity > MaxQuantity {
		return ErrInvalidQuantity
	}

	return s.mutate(ctx, func(lines []Line) ([]Line, error) {
		for i := range lines {
			if lines[i].ProductID.Equal(productID) {
				if lines[i].Quantity > MaxQuantity-quantity {
					return nil, ErrInvalidQuantity
				}
				lines[i].Quantity += quantity
				return lines, nil
			}
		}
		return append(lines, Line{ProductID: productID, Quantity: quantity, UnitPriceAtOrder: unitPrice}), nil
	})
}

func (s *Store) RemoveItem(ctx context.Context, productID nat.Nat) {
	_ = s.mutate(ctx, func(lines []Line) ([]Line, error) {
		out := lines[:0]
		for _, l := range lines {
			if !l.ProductID.Equal(productID) {
				out = append(out, l)
			}
		}
		return out, nil
	})
}

// UpdateQuantity replaces the quantity of the matching line. Quantities
// outside [1, MaxQuantity] are rejected here and nowhere else; callers clamp
// user input first.
func (s *Store) UpdateQuantity(ctx context.Context, productID nat.Nat, quantity int) error {
	if quantity < 1 || quantity > MaxQuantity {
		return ErrInvalidQuantity
	}

	return s.mutate(ctx, func(lines []Line) ([]Line, error) {
		for i := range lines {
			if lines[i].ProductID.Equal(productID) {
				lines[i].Quantity = quantity
			}
		}
		return lines, nil
	})
}

func (s *Store) ClearCart(ctx context.Context) {
	_ = s.mutate(ctx, func([]Line) ([]Line, error) { return nil, nil })
}

// TotalEstimate is the exact sum of quantity x unit price over all lines.
func (s *Store) TotalEstimate() nat.Nat {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total nat.Nat
	for _, l := range s.lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// Lines returns a copy of the current lines in insertion order.
func (s *Store) Lines() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyLines(s.lines)
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lines)
}

// Subscribe registers fn to receive a snapshot after every mutation. A
// snapshot older than one already delivered is never delivered. fn must not
// mutate the store.
func (s *Store) Subscribe(fn func([]Line)) (unsubscribe func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn

	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

// mutate applies fn to a private copy so the store never exposes a
// half-applied state. When fn fails nothing changes. Otherwise the new state
// is published outside mu so reads never wait on storage I/O.
func (s *Store) mutate(ctx context.Context, fn func([]Line) ([]Line, error)) error {
	s.mu.Lock()
	next, err := fn(copyLines(s.lines))
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.lines = next
	s.seq++
	seq, snapshot := s.seq, copyLines(next)
	s.mu.Unlock()

	s.publish(ctx, seq, snapshot)
	return nil
}

// publish persists and notifies snapshot number seq. Snapshots arriving after
// a newer one has been published are dropped, so storage and subscribers
// always end on the latest state.
func (s *Store) publish(ctx context.Context, seq uint64, lines []Line) {
	s.publishMu.Lock()
	defer s.publishMu.Unlock()

	if seq <= s.published {
		return
	}
	s.published = seq

	s.persist(ctx, lines)
	s.notify(lines)
}

func (s *Store) persist(ctx context.Context, lines []Line) {
	b, err := encodeRecord(lines)
	if err != nil {
		s.log.WithError(err).Error("encoding cart")
		return
	}
	if err := s.storage.SetItem(ctx, StorageKey, b); err != nil {
		s.log.WithError(err).Error("saving cart")
	}
}

func (s *Store) notify(lines []Line) {
	s.subMu.Lock()
	fns := make([]func([]Line), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(copyLines(lines))
	}
}

func copyLines(lines []Line) []Line {
	if len(lines) == 0 {
		return []Line{}
	}
	out := make([]Line, len(lines))
	copy(out, lines)
	return out
}
