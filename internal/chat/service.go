package chat

import (
	"strings"
	"time"

	"pharmacy-backend/internal/user"
)

// Publisher pushes a stored message to any live websocket clients in the
// conversation room. Delivery is best effort; the message is already
// persisted when Publish runs.
type Publisher interface {
	Publish(customerID int, m Message)
}

// Service routes every message through the shared support identity: staff
// replies are attributed to one admin user id so customers see a single
// support contact no matter which admin answered.
type Service struct {
	repo      Repository
	users     user.ServiceInterface
	publisher Publisher
	adminID   int
}

func NewService(repo Repository, users user.ServiceInterface, publisher Publisher, sharedAdminID int) *Service {
	return &Service{repo: repo, users: users, publisher: publisher, adminID: sharedAdminID}
}

// SetPublisher wires the websocket hub in after construction; the hub
// itself needs the service to persist inbound messages.
func (s *Service) SetPublisher(p Publisher) {
	s.publisher = p
}

func (s *Service) SharedAdminID() int {
	return s.adminID
}

// Send stores a message. Customer messages always address the shared admin
// identity; admin messages are re-attributed to it and must name the
// customer they answer.
func (s *Service) Send(senderID int, isAdmin bool, receiverID int, body string) (Message, error) {
	if strings.TrimSpace(body) == "" {
		return Message{}, ErrEmptyMessage
	}

	m := Message{
		Body:      body,
		IsAdmin:   isAdmin,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	customerID := senderID
	if isAdmin {
		if _, err := s.users.GetByID(receiverID); err != nil {
			return Message{}, err
		}
		m.SenderID = s.adminID
		m.ReceiverID = receiverID
		customerID = receiverID
	} else {
		m.SenderID = senderID
		m.ReceiverID = s.adminID
	}

	stored, err := s.repo.Insert(m)
	if err != nil {
		return Message{}, err
	}
	if s.publisher != nil {
		s.publisher.Publish(customerID, stored)
	}
	return stored, nil
}

// Messages returns one conversation oldest first. Customers may only read
// their own thread with support; admins may open any customer's thread.
func (s *Service) Messages(callerID int, isAdmin bool, counterpartyID int) ([]Message, error) {
	if isAdmin {
		return s.repo.Between(s.adminID, counterpartyID)
	}
	if counterpartyID != s.adminID && counterpartyID != callerID {
		return nil, ErrForbidden
	}
	return s.repo.Between(callerID, s.adminID)
}

// Conversations is the admin inbox with customer names resolved live.
func (s *Service) Conversations() ([]Conversation, error) {
	convos, err := s.repo.Conversations()
	if err != nil {
		return nil, err
	}
	for i := range convos {
		if u, err := s.users.GetByID(convos[i].CustomerID); err == nil {
			convos[i].CustomerName = u.DisplayName()
		}
	}
	return convos, nil
}
