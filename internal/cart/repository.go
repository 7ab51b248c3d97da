package cart

import (
	"errors"
	"sync"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrLineNotFound    = errors.New("cart line not found")
	ErrConflict        = errors.New("cart was modified concurrently")
)

// Repository stores one cart per user. Mutations go through Mutate so the
// read-modify-write cycle stays inside a single optimistic-concurrency
// round trip instead of ad hoc array edits.
type Repository interface {
	Get(userID int) ([]Line, error)
	Mutate(userID int, fn func(lines []Line) ([]Line, error)) ([]Line, error)
	Clear(userID int) error
}

// InMemoryRepository is used for tests and local scenarios.
type InMemoryRepository struct {
	mu    sync.Mutex
	carts map[int][]Line
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{carts: make(map[int][]Line)}
}

func (r *InMemoryRepository) Get(userID int) ([]Line, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	lines := r.carts[userID]
	out := make([]Line, len(lines))
	copy(out, lines)
	return out, nil
}

func (r *InMemoryRepository) Mutate(userID int, fn func(lines []Line) ([]Line, error)) ([]Line, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current := make([]Line, len(r.carts[userID]))
	copy(current, r.carts[userID])

	next, err := fn(current)
	if err != nil {
		return nil, err
	}

	r.carts[userID] = next
	out := make([]Line, len(next))
	copy(out, next)
	return out, nil
}

func (r *InMemoryRepository) Clear(userID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.carts[userID] = []Line{}
	return nil
}
