package usecase

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/lguillozl/ecommerce-api/internal/entity"
)

// In-memory fakes mirroring the MySQL repos' contract, including the
// unique-key conflict on a second active cart per user.

type fakeProductRepo struct {
	mu       sync.Mutex
	products map[string]*entity.Product
}

func newFakeProductRepo(products ...*entity.Product) *fakeProductRepo {
	r := &fakeProductRepo{products: make(map[string]*entity.Product)}
	for _, p := range products {
		r.products[p.ID] = p
	}
	return r
}

func (r *fakeProductRepo) GetActive(_ context.Context, id string) (*entity.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok || p.Status != entity.ProductActive {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProductRepo) AdjustStock(_ context.Context, id string, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.products[id]; ok {
		p.Quantity += delta
		if p.Quantity < 0 {
			p.Quantity = 0
		}
	}
	return nil
}

type fakeCartRepo struct {
	mu       sync.Mutex
	carts    map[string]*entity.Cart               // cart ID -> cart
	lines    map[string]map[string]*entity.CartLine // cart ID -> product ID -> line
	products *fakeProductRepo                      // for summary joins
}

func newFakeCartRepo(products *fakeProductRepo) *fakeCartRepo {
	return &fakeCartRepo{
		carts:    make(map[string]*entity.Cart),
		lines:    make(map[string]map[string]*entity.CartLine),
		products: products,
	}
}

func (r *fakeCartRepo) activeCartLocked(userID string) *entity.Cart {
	for _, c := range r.carts {
		if c.UserID == userID && c.Status == entity.CartActive {
			return c
		}
	}
	return nil
}

func (r *fakeCartRepo) GetActiveCart(_ context.Context, userID string) (*entity.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c := r.activeCartLocked(userID); c != nil {
		cp := *c
		cp.Lines = nil
		return &cp, nil
	}
	return nil, ErrNotFound
}

func (r *fakeCartRepo) GetActiveCartLines(_ context.Context, userID string) (*entity.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := r.activeCartLocked(userID)
	if c == nil {
		return nil, ErrNotFound
	}
	cp := *c
	cp.Lines = nil
	for _, ln := range r.lines[c.ID] {
		if ln.Status != entity.LineActive {
			continue
		}
		lc := *ln
		if p, ok := r.products.products[ln.ProductID]; ok {
			lc.Product = p.Summary()
		}
		cp.Lines = append(cp.Lines, lc)
	}
	return &cp, nil
}

func (r *fakeCartRepo) CreateCart(_ context.Context, c *entity.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.activeCartLocked(c.UserID) != nil {
		return ErrConflict
	}
	cp := *c
	r.carts[c.ID] = &cp
	return nil
}

func (r *fakeCartRepo) FindLine(_ context.Context, cartID, productID string) (*entity.CartLine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ln, ok := r.lines[cartID][productID]; ok {
		cp := *ln
		return &cp, nil
	}
	return nil, ErrNotFound
}

func (r *fakeCartRepo) CreateLine(_ context.Context, ln *entity.CartLine) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.lines[ln.CartID] == nil {
		r.lines[ln.CartID] = make(map[string]*entity.CartLine)
	}
	if _, ok := r.lines[ln.CartID][ln.ProductID]; ok {
		return ErrConflict
	}
	cp := *ln
	r.lines[ln.CartID][ln.ProductID] = &cp
	return nil
}

func (r *fakeCartRepo) SetLine(_ context.Context, lineID string, quantity int, status entity.LineStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, byProduct := range r.lines {
		for _, ln := range byProduct {
			if ln.ID == lineID {
				ln.Quantity = quantity
				ln.Status = status
				return nil
			}
		}
	}
	return ErrNotFound
}

func (r *fakeCartRepo) line(cartID, productID string) *entity.CartLine {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ln, ok := r.lines[cartID][productID]; ok {
		cp := *ln
		return &cp
	}
	return nil
}

func (r *fakeCartRepo) activeCartCount(userID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.carts {
		if c.UserID == userID && c.Status == entity.CartActive {
			n++
		}
	}
	return n
}

type fakeCheckoutStore struct {
	mu       sync.Mutex
	products *fakeProductRepo
	carts    *fakeCartRepo
	err      error
	commits  int
	order    *entity.Order
	lines    []entity.CartLine
	event    []byte
}

// Commit mirrors the MySQL store's transaction: every line's stock is
// checked before anything mutates, and a shortfall fails the whole
// purchase leaving stock, lines and cart as they were.
func (s *fakeCheckoutStore) Commit(_ context.Context, cart *entity.Cart, lines []entity.CartLine, order *entity.Order, event []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}

	s.products.mu.Lock()
	defer s.products.mu.Unlock()
	for _, ln := range lines {
		p, ok := s.products.products[ln.ProductID]
		if !ok {
			return &InsufficientStockError{Available: 0}
		}
		if ln.Quantity > p.Quantity {
			return &InsufficientStockError{Available: p.Quantity}
		}
	}
	for _, ln := range lines {
		s.products.products[ln.ProductID].Quantity -= ln.Quantity
	}

	s.carts.mu.Lock()
	for _, ln := range lines {
		if row, ok := s.carts.lines[ln.CartID][ln.ProductID]; ok {
			row.Status = entity.LinePurchased
			row.UnitPrice = decimal.NewNullDecimal(ln.Product.Price)
		}
	}
	if row, ok := s.carts.carts[cart.ID]; ok {
		row.Status = entity.CartPurchased
	}
	s.carts.mu.Unlock()

	s.commits++
	s.order = order
	s.lines = lines
	s.event = event
	return nil
}

type fakeIdemStore struct {
	mu     sync.Mutex
	locked map[string]bool
	known  map[string]string
}

func newFakeIdemStore() *fakeIdemStore {
	return &fakeIdemStore{locked: make(map[string]bool), known: make(map[string]string)}
}

func (s *fakeIdemStore) TryLock(_ context.Context, scope, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := scope + ":" + key
	if s.locked[k] {
		return false, nil
	}
	s.locked[k] = true
	return true, nil
}

func (s *fakeIdemStore) Release(_ context.Context, scope, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.locked, scope+":"+key)
	return nil
}

func (s *fakeIdemStore) Remember(_ context.Context, scope, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.known[scope+":"+key] = value
	return nil
}

func (s *fakeIdemStore) Recall(_ context.Context, scope, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.known[scope+":"+key]
	return v, ok, nil
}

func activeProduct(id, title string, price string, qty int) *entity.Product {
	return &entity.Product{
		ID:       id,
		Title:    title,
		Price:    decimal.RequireFromString(price),
		Quantity: qty,
		Status:   entity.ProductActive,
	}
}
