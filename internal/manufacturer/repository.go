package manufacturer

import (
	"errors"
	"sync"
)

var (
	ErrNotFound   = errors.New("manufacturer not found")
	ErrNameExists = errors.New("manufacturer already exists")
)

type Repository interface {
	List() []Manufacturer
	GetByID(id int) (Manufacturer, error)
	GetByName(name string) (Manufacturer, error)
	Create(m Manufacturer) (Manufacturer, error)
	Update(id int, m Manufacturer) (Manufacturer, error)
	Delete(id int) error
}

// InMemoryRepository is used for tests and local scenarios.
type InMemoryRepository struct {
	mu            sync.RWMutex
	manufacturers []Manufacturer
	nextID        int
}

func NewInMemoryRepository(seed []Manufacturer) *InMemoryRepository {
	repo := &InMemoryRepository{manufacturers: make([]Manufacturer, 0, len(seed))}

	maxID := 0
	for _, m := range seed {
		repo.manufacturers = append(repo.manufacturers, m)
		if m.ID > maxID {
			maxID = m.ID
		}
	}

	repo.nextID = maxID + 1
	return repo
}

func (r *InMemoryRepository) List() []Manufacturer {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Manufacturer, len(r.manufacturers))
	copy(out, r.manufacturers)
	return out
}

func (r *InMemoryRepository) GetByID(id int) (Manufacturer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, m := range r.manufacturers {
		if m.ID == id {
			return m, nil
		}
	}
	return Manufacturer{}, ErrNotFound
}

func (r *InMemoryRepository) GetByName(name string) (Manufacturer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, m := range r.manufacturers {
		if m.Name == name {
			return m, nil
		}
	}
	return Manufacturer{}, ErrNotFound
}

func (r *InMemoryRepository) Create(m Manufacturer) (Manufacturer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if m.ID == 0 {
		m.ID = r.nextID
		r.nextID++
	}

	r.manufacturers = append(r.manufacturers, m)
	return m, nil
}

func (r *InMemoryRepository) Update(id int, m Manufacturer) (Manufacturer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, existing := range r.manufacturers {
		if existing.ID == id {
			m.ID = id
			r.manufacturers[i] = m
			return m, nil
		}
	}
	return Manufacturer{}, ErrNotFound
}

func (r *InMemoryRepository) Delete(id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, m := range r.manufacturers {
		if m.ID == id {
			r.manufacturers = append(r.manufacturers[:i], r.manufacturers[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}
