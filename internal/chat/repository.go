package chat

import (
	"errors"
	"sort"
	"sync"
)

var (
	ErrEmptyMessage = errors.New("message body is required")
	ErrForbidden    = errors.New("not your conversation")
)

type Repository interface {
	Insert(m Message) (Message, error)
	// Between returns every message exchanged by the two ids, oldest first.
	Between(a, b int) ([]Message, error)
	// Conversations returns one entry per customer with the latest message,
	// newest conversation first. Customer names are filled in by the service.
	Conversations() ([]Conversation, error)
}

type InMemoryRepository struct {
	mu       sync.Mutex
	messages []Message
	nextID   int
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{nextID: 1}
}

func (r *InMemoryRepository) Insert(m Message) (Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m.ID = r.nextID
	r.nextID++
	r.messages = append(r.messages, m)
	return m, nil
}

func (r *InMemoryRepository) Between(a, b int) ([]Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Message
	for _, m := range r.messages {
		if (m.SenderID == a && m.ReceiverID == b) || (m.SenderID == b && m.ReceiverID == a) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *InMemoryRepository) Conversations() ([]Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	latest := map[int]Message{}
	for _, m := range r.messages {
		customerID := m.SenderID
		if m.IsAdmin {
			customerID = m.ReceiverID
		}
		latest[customerID] = m
	}

	out := make([]Conversation, 0, len(latest))
	for customerID, m := range latest {
		out = append(out, Conversation{CustomerID: customerID, LastMessage: m.Body, LastAt: m.CreatedAt})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastAt > out[j].LastAt })
	return out, nil
}
