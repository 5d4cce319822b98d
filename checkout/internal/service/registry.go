package service

import (
	"sync"

	"github.com/google/uuid"

	"github.com/greenbasket/grocer/checkout/internal/cart"
	"github.com/greenbasket/grocer/checkout/internal/checkout"
	"github.com/greenbasket/grocer/checkout/internal/payment"
)

// Registry holds the live per-user carts and their checkout orchestrators.
// One orchestrator per user keeps the single-attempt guard scoped to that
// user's cart.
type Registry struct {
	mu       sync.Mutex
	carts    map[uuid.UUID]*cart.Store
	attempts map[uuid.UUID]*checkout.Orchestrator

	backend  checkout.Backend
	sheet    payment.Sheet
	currency string
}

func NewRegistry(b checkout.Backend, sheet payment.Sheet, currency string) *Registry {
	return &Registry{
		carts:    map[uuid.UUID]*cart.Store{},
		attempts: map[uuid.UUID]*checkout.Orchestrator{},
		backend:  b,
		sheet:    sheet,
		currency: currency,
	}
}

// storeFor returns the user's cart, calling load to build it on first
// access. The bool reports whether the store already existed.
func (r *Registry) storeFor(userID uuid.UUID, load func() *cart.Store) (*cart.Store, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if store, ok := r.carts[userID]; ok {
		return store, true
	}
	store := load()
	if store == nil {
		store = cart.NewStore()
	}
	r.carts[userID] = store
	return store, false
}

func (r *Registry) orchestratorFor(userID uuid.UUID) *checkout.Orchestrator {
	r.mu.Lock()
	defer r.mu.Unlock()

	if o, ok := r.attempts[userID]; ok {
		return o
	}
	o := checkout.NewOrchestrator(r.backend, r.sheet, r.currency)
	r.attempts[userID] = o
	return o
}
