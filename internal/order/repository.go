package order

import (
	"errors"
	"sync"

	"pharmacy-backend/internal/cart"
	"pharmacy-backend/internal/product"
)

var (
	ErrNotFound          = errors.New("order not found")
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrDelivered         = errors.New("cannot cancel a delivered order")
	ErrForbidden         = errors.New("not your order")
)

// Repository persists orders and cancelled-order snapshots. Checkout and
// Cancel are single logical transactions: either every effect applies or
// none does.
type Repository interface {
	Checkout(ord Order, items []CheckoutItem) (Order, error)
	GetByID(orderID int) (Order, error)
	ListByUser(userID int) ([]Order, error)
	ListAll() ([]Order, error)
	UpdateStatus(orderID int, status, updatedAt string) (Order, error)
	Cancel(orderID int) (Order, error)
	ListCanceledByUser(userID int) ([]Order, error)
	ListAllCanceled() ([]Order, error)
}

// InMemoryRepository is used for tests and local scenarios. It coordinates
// with the in-memory product and cart repositories to mirror the
// all-or-nothing checkout the Postgres implementation gets from a
// transaction.
type InMemoryRepository struct {
	mu       sync.Mutex
	orders   []Order
	canceled []Order
	nextID   int
	products *product.InMemoryRepository
	carts    *cart.InMemoryRepository
}

func NewInMemoryRepository(products *product.InMemoryRepository, carts *cart.InMemoryRepository) *InMemoryRepository {
	return &InMemoryRepository{nextID: 1, products: products, carts: carts}
}

func (r *InMemoryRepository) Checkout(ord Order, items []CheckoutItem) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// validate everything before mutating anything
	resolved := make([]product.Product, 0, len(items))
	for _, it := range items {
		p, err := r.products.GetByID(it.ProductID)
		if err != nil {
			return Order{}, ErrProductNotFound
		}
		if p.Stock < it.Quantity {
			return Order{}, ErrInsufficientStock
		}
		resolved = append(resolved, p)
	}

	ord.Items = make([]Item, 0, len(items))
	ord.TotalAmount = 0
	for i, it := range items {
		p := resolved[i]
		p.Stock -= it.Quantity
		if _, err := r.products.Update(p.ID, p); err != nil {
			return Order{}, err
		}
		ord.Items = append(ord.Items, Item{ProductID: p.ID, Quantity: it.Quantity, UnitPrice: p.Price})
		ord.TotalAmount += p.Price * float64(it.Quantity)
	}

	ord.OrderID = r.nextID
	r.nextID++
	ord.Status = StatusOnDelivery
	r.orders = append(r.orders, ord)

	if r.carts != nil {
		_ = r.carts.Clear(ord.UserID)
	}
	return ord, nil
}

func (r *InMemoryRepository) GetByID(orderID int) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, ord := range r.orders {
		if ord.OrderID == orderID {
			return ord, nil
		}
	}
	return Order{}, ErrNotFound
}

func (r *InMemoryRepository) ListByUser(userID int) ([]Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Order, 0)
	for _, ord := range r.orders {
		if ord.UserID == userID {
			out = append(out, ord)
		}
	}
	return out, nil
}

func (r *InMemoryRepository) ListAll() ([]Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Order, len(r.orders))
	copy(out, r.orders)
	return out, nil
}

func (r *InMemoryRepository) UpdateStatus(orderID int, status, updatedAt string) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, ord := range r.orders {
		if ord.OrderID == orderID {
			ord.Status = status
			ord.UpdatedAt = updatedAt
			r.orders[i] = ord
			return ord, nil
		}
	}
	return Order{}, ErrNotFound
}

func (r *InMemoryRepository) Cancel(orderID int) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, ord := range r.orders {
		if ord.OrderID != orderID {
			continue
		}
		if ord.Status == StatusDelivered {
			return Order{}, ErrDelivered
		}
		ord.Status = StatusCanceled
		r.canceled = append(r.canceled, ord)
		r.orders = append(r.orders[:i], r.orders[i+1:]...)
		return ord, nil
	}
	return Order{}, ErrNotFound
}

func (r *InMemoryRepository) ListCanceledByUser(userID int) ([]Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Order, 0)
	for _, ord := range r.canceled {
		if ord.UserID == userID {
			out = append(out, ord)
		}
	}
	return out, nil
}

func (r *InMemoryRepository) ListAllCanceled() ([]Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Order, len(r.canceled))
	copy(out, r.canceled)
	return out, nil
}
