package cart

import (
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/greenbasket/grocer/checkout/internal/pricing"
	"github.com/greenbasket/grocer/checkout/internal/promo"
)

// LineItem is one product's presence in the cart: quantity plus the pricing
// snapshot taken at add time. AvailableStock is an advisory hint only; the
// stock verification before payment always wins over it.
type LineItem struct {
	ProductID      uuid.UUID       `json:"productId"`
	Name           string          `json:"name"`
	Unit           string          `json:"unit"`
	MRP            decimal.Decimal `json:"mrp"`
	SellingPrice   decimal.Decimal `json:"sellingPrice"`
	Quantity       int64           `json:"quantity"`
	VATCategory    string          `json:"vatCategory,omitempty"`
	AvailableStock *int64          `json:"availableStock,omitempty"`
	Image          string          `json:"image,omitempty"`
}

// Store holds one user's cart. Items keep insertion order; a stored quantity
// is always >= 1 because every mutation that would reach zero deletes the
// entry instead. The mutex covers concurrent handlers on the same session.
type Store struct {
	mu    sync.Mutex
	items map[uuid.UUID]*LineItem
	order []uuid.UUID
	promo *promo.PromoCode
}

func NewStore() *Store {
	return &Store{items: map[uuid.UUID]*LineItem{}}
}

// AddItem inserts the item or, when the product is already in the cart,
// increments the existing quantity. Non-positive quantities are ignored.
func (s *Store) AddItem(item LineItem, quantity int64) {
	if quantity <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.items[item.ProductID]
	if ok {
		existing.Quantity += quantity
		return
	}
	item.Quantity = quantity
	s.items[item.ProductID] = &item
	s.order = append(s.order, item.ProductID)
}

// UpdateQuantity sets the quantity directly. Zero or negative removes the
// item.
func (s *Store) UpdateQuantity(productID uuid.UUID, quantity int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity <= 0 {
		s.removeLocked(productID)
		return
	}
	item, ok := s.items[productID]
	if !ok {
		return
	}
	item.Quantity = quantity
}

// RemoveItem deletes the entry; an absent product id is a no-op.
func (s *Store) RemoveItem(productID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(productID)
}

func (s *Store) removeLocked(productID uuid.UUID) {
	if _, ok := s.items[productID]; !ok {
		return
	}
	delete(s.items, productID)
	for i, id := range s.order {
		if id == productID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Clear empties the cart and drops the applied promo. Used after order
// success and on logout.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = map[uuid.UUID]*LineItem{}
	s.order = nil
	s.promo = nil
}

// ItemQuantity returns 0 for an absent product.
func (s *Store) ItemQuantity(productID uuid.UUID) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[productID]
	if !ok {
		return 0
	}
	return item.Quantity
}

// Items returns the line items in insertion order. The slice and its
// elements are copies; mutating them does not touch the store.
func (s *Store) Items() []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.itemsLocked()
}

func (s *Store) itemsLocked() []LineItem {
	items := make([]LineItem, 0, len(s.order))
	for _, id := range s.order {
		items = append(items, *s.items[id])
	}
	return items
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// SetPromo replaces the single applied-promo slot.
func (s *Store) SetPromo(p promo.PromoCode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.promo = &p
}

func (s *Store) ClearPromo() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.promo = nil
}

// AppliedPromo returns a copy of the applied promo, or nil.
func (s *Store) AppliedPromo() *promo.PromoCode {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.promo == nil {
		return nil
	}
	p := *s.promo
	return &p
}

// Summary holds the derived aggregates for the current cart contents.
type Summary struct {
	Items     []LineItem        `json:"items"`
	Breakdown pricing.Breakdown `json:"breakdown"`
	Display   pricing.Display   `json:"display"`
}

// Summary recomputes the aggregates from the current contents. The promo
// discount is always derived from the current subtotal, never cached.
func (s *Store) Summary(deliveryFee decimal.Decimal) Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.itemsLocked()
	lines := make([]pricing.Line, 0, len(items))
	for _, item := range items {
		lines = append(lines, pricing.Line{
			UnitPrice:   item.SellingPrice,
			Quantity:    item.Quantity,
			VATCategory: item.VATCategory,
		})
	}
	var discount *pricing.Discount
	if s.promo != nil {
		discount = s.promo.Discount()
	}
	breakdown := pricing.Calculate(lines, discount, deliveryFee)
	return Summary{Items: items, Breakdown: breakdown, Display: breakdown.Display()}
}

// Snapshot is the serializable form persisted to the session cache.
type Snapshot struct {
	Items []LineItem       `json:"items"`
	Promo *promo.PromoCode `json:"promo,omitempty"`
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{Items: s.itemsLocked(), Promo: s.promo}
}

// FromSnapshot rebuilds a store from a persisted snapshot, dropping any
// entry whose quantity violates the positive-quantity invariant.
func FromSnapshot(snapshot Snapshot) *Store {
	store := NewStore()
	for _, item := range snapshot.Items {
		store.AddItem(item, item.Quantity)
	}
	if snapshot.Promo != nil {
		store.SetPromo(*snapshot.Promo)
	}
	return store
}
