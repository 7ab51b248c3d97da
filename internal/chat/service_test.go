package chat

import (
	"testing"

	"pharmacy-backend/internal/user"
)

type capturePublisher struct {
	rooms    []int
	messages []Message
}

func (p *capturePublisher) Publish(customerID int, m Message) {
	p.rooms = append(p.rooms, customerID)
	p.messages = append(p.messages, m)
}

func newChatFixture() (*Service, *capturePublisher) {
	users := user.NewService(user.NewInMemoryRepository([]user.User{
		{ID: 1, Email: "support@example.com", FirstName: "Support", IsAdmin: true},
		{ID: 42, Email: "jane@example.com", FirstName: "Jane", LastName: "Doe"},
	}))
	pub := &capturePublisher{}
	return NewService(NewInMemoryRepository(), users, pub, 1), pub
}

func TestSend_AttributesAdminRepliesToSharedIdentity(t *testing.T) {
	s, pub := newChatFixture()

	// customer writes in; the thread is addressed to the shared identity
	m1, err := s.Send(42, false, 0, "do you have ibuprofen in stock?")
	if err != nil {
		t.Fatalf("customer send failed: %v", err)
	}
	if m1.SenderID != 42 || m1.ReceiverID != 1 || m1.IsAdmin {
		t.Fatalf("unexpected customer message: %+v", m1)
	}

	// any admin who replies shows up as the shared identity
	m2, err := s.Send(7, true, 42, "yes, 200mg and 400mg")
	if err != nil {
		t.Fatalf("admin send failed: %v", err)
	}
	if m2.SenderID != 1 || m2.ReceiverID != 42 || !m2.IsAdmin {
		t.Fatalf("expected reply attributed to shared admin, got %+v", m2)
	}

	// both messages were pushed into the customer's room
	if len(pub.rooms) != 2 || pub.rooms[0] != 42 || pub.rooms[1] != 42 {
		t.Fatalf("expected both publishes in room 42, got %v", pub.rooms)
	}

	// the customer sees one chronological thread from both sides
	thread, err := s.Messages(42, false, 1)
	if err != nil {
		t.Fatalf("messages failed: %v", err)
	}
	if len(thread) != 2 || thread[0].ID != m1.ID || thread[1].ID != m2.ID {
		t.Fatalf("unexpected thread: %+v", thread)
	}
}

func TestSend_Validation(t *testing.T) {
	s, pub := newChatFixture()

	if _, err := s.Send(42, false, 0, "   "); err != ErrEmptyMessage {
		t.Fatalf("expected ErrEmptyMessage, got %v", err)
	}
	if _, err := s.Send(7, true, 999, "hello?"); err != user.ErrNotFound {
		t.Fatalf("expected user.ErrNotFound for unknown receiver, got %v", err)
	}
	if len(pub.messages) != 0 {
		t.Fatalf("expected nothing published for rejected sends, got %d", len(pub.messages))
	}
}

func TestMessages_CustomerCannotReadOtherThreads(t *testing.T) {
	s, _ := newChatFixture()

	s.Send(42, false, 0, "hello")
	s.Send(7, true, 42, "hi Jane")

	// another customer asking for Jane's thread is refused
	if _, err := s.Messages(55, false, 42); err != ErrForbidden {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	// an admin can open it
	thread, err := s.Messages(7, true, 42)
	if err != nil || len(thread) != 2 {
		t.Fatalf("expected admin to read 2 messages, got %d (%v)", len(thread), err)
	}
}

func TestConversations_OnePerCustomerWithLatestPreview(t *testing.T) {
	s, _ := newChatFixture()

	s.Send(42, false, 0, "first")
	s.Send(7, true, 42, "reply")
	s.Send(42, false, 0, "second")

	convos, err := s.Conversations()
	if err != nil {
		t.Fatalf("conversations failed: %v", err)
	}
	if len(convos) != 1 {
		t.Fatalf("expected one conversation, got %d", len(convos))
	}
	if convos[0].CustomerID != 42 || convos[0].LastMessage != "second" {
		t.Fatalf("unexpected conversation: %+v", convos[0])
	}
	if convos[0].CustomerName != "Jane Doe" {
		t.Fatalf("expected resolved customer name, got %q", convos[0].CustomerName)
	}
}
