package backend

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/irsalhamdi/wholesale-storefront/core/claims"
	"github.com/irsalhamdi/wholesale-storefront/core/nat"
)

// Memory is an in-process backend for local development and tests. It follows
// the remote rules: catalog writes and order review need an admin caller, and
// the admin role can be claimed only while no admin exists.
type Memory struct {
	mu       sync.Mutex
	products map[string]Product
	orders   []Order
	roles    map[string]claims.Role
	nextProd nat.Nat
	nextOrd  nat.Nat
	now      func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		products: make(map[string]Product),
		roles:    make(map[string]claims.Role),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (m *Memory) GetProducts(ctx context.Context) ([]Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ps := make([]Product, 0, len(m.products))
	for _, p := range m.products {
		ps = append(ps, p)
	}
	sort.Slice(ps, func(i, j int) bool { return ps[i].ID.Cmp(ps[j].ID) < 0 })
	return ps, nil
}

func (m *Memory) GetProduct(ctx context.Context, id nat.Nat) (Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.products[id.String()]
	if !ok {
		return Product{}, fmt.Errorf("product[%s]: %w", id, ErrNotFound)
	}
	return p, nil
}

func (m *Memory) AddProduct(ctx context.Context, pn ProductNew) (nat.Nat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.isAdmin(ctx) {
		return nat.Nat{}, ErrUnauthorized
	}
	return m.addLocked(pn), nil
}

// Seed adds products without an admin caller, for local runs and tests.
func (m *Memory) Seed(pns ...ProductNew) []nat.Nat {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]nat.Nat, 0, len(pns))
	for _, pn := range pns {
		ids = append(ids, m.addLocked(pn))
	}
	return ids
}

func (m *Memory) addLocked(pn ProductNew) nat.Nat {
	m.nextProd = m.nextProd.Add(nat.FromUint64(1))
	now := m.now()
	p := Product{
		ID:          m.nextProd,
		Name:        pn.Name,
		Description: pn.Description,
		Image:       pn.Image,
		Price:       pn.Price,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	m.products[p.ID.String()] = p
	return p.ID
}

func (m *Memory) UpdateProduct(ctx context.Context, id nat.Nat, pn ProductNew) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.isAdmin(ctx) {
		return ErrUnauthorized
	}

	p, ok := m.products[id.String()]
	if !ok {
		return fmt.Errorf("product[%s]: %w", id, ErrNotFound)
	}
	p.Name = pn.Name
	p.Description = pn.Description
	p.Image = pn.Image
	p.Price = pn.Price
	p.UpdatedAt = m.now()
	m.products[id.String()] = p
	return nil
}

func (m *Memory) DeleteProduct(ctx context.Context, id nat.Nat) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.isAdmin(ctx) {
		return ErrUnauthorized
	}
	if _, ok := m.products[id.String()]; !ok {
		return fmt.Errorf("product[%s]: %w", id, ErrNotFound)
	}
	delete(m.products, id.String())
	return nil
}

func (m *Memory) PlaceOrder(ctx context.Context, items []OrderItem, customer CustomerDetails) (nat.Nat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(items) == 0 {
		return nat.Nat{}, fmt.Errorf("no items: %w", ErrInvalid)
	}

	var total nat.Nat
	for _, it := range items {
		if it.Quantity.IsZero() {
			return nat.Nat{}, fmt.Errorf("product[%s] quantity 0: %w", it.ProductID, ErrInvalid)
		}
		total = total.Add(it.UnitPriceAtOrder.Mul(it.Quantity))
	}

	m.nextOrd = m.nextOrd.Add(nat.FromUint64(1))
	o := Order{
		ID:            m.nextOrd,
		Customer:      customer,
		CreatedAt:     m.now(),
		TotalEstimate: total,
		Items:         append([]OrderItem(nil), items...),
	}
	m.orders = append(m.orders, o)
	return o.ID, nil
}

func (m *Memory) GetAllOrders(ctx context.Context) ([]Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.isAdmin(ctx) {
		return nil, ErrUnauthorized
	}
	return append([]Order(nil), m.orders...), nil
}

func (m *Memory) IsCallerAdmin(ctx context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.isAdmin(ctx), nil
}

func (m *Memory) AssignCallerUserRole(ctx context.Context, principal string, role claims.Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	caller := claims.Lookup(ctx)
	if caller == nil {
		return ErrUnauthorized
	}

	if m.isAdmin(ctx) {
		m.roles[principal] = role
		return nil
	}

	// Non-admin callers may only bootstrap themselves as the first admin.
	if principal != caller.Principal || role != claims.RoleAdmin {
		return ErrUnauthorized
	}
	for _, r := range m.roles {
		if r == claims.RoleAdmin {
			return ErrAdminExists
		}
	}
	m.roles[principal] = claims.RoleAdmin
	return nil
}

func (m *Memory) isAdmin(ctx context.Context) bool {
	id := claims.Lookup(ctx)
	if id == nil {
		return false
	}
	return m.roles[id.Principal] == claims.RoleAdmin
}
