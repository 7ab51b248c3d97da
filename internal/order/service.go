package order

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	"pharmacy-backend/internal/notify"
	"pharmacy-backend/internal/user"
)

var (
	ErrIncompleteAddress = errors.New("all fields in the shipping address are required")
	ErrInvalidPhone      = errors.New("phone number must be 10 to 15 digits")
	ErrInvalidPayment    = errors.New("payment method must be card or cash")
	ErrEmptyOrder        = errors.New("order must contain at least one item")
)

var phonePattern = regexp.MustCompile(`^[0-9]{10,15}$`)

// Service validates checkout input and owns the order state machine.
type Service struct {
	repo     Repository
	users    user.ServiceInterface
	notifier notify.Sender
}

func NewService(repo Repository, users user.ServiceInterface, notifier notify.Sender) *Service {
	if notifier == nil {
		notifier = notify.NopSender{}
	}
	return &Service{repo: repo, users: users, notifier: notifier}
}

type CheckoutRequest struct {
	Items           []CheckoutItem  `json:"items"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	PhoneNumber     string          `json:"phoneNumber"`
	PaymentMethod   string          `json:"paymentMethod"`
}

// Checkout converts the requested items into a committed order. All
// validation happens before any state changes; the repository makes the
// stock decrement, order insert and cart clear a single transaction. The
// receipt notification afterwards is best effort.
func (s *Service) Checkout(userID int, req CheckoutRequest) (Order, error) {
	if len(req.Items) == 0 {
		return Order{}, ErrEmptyOrder
	}
	if req.ShippingAddress.Incomplete() {
		return Order{}, ErrIncompleteAddress
	}
	if !phonePattern.MatchString(req.PhoneNumber) {
		return Order{}, ErrInvalidPhone
	}
	if req.PaymentMethod != "card" && req.PaymentMethod != "cash" {
		return Order{}, ErrInvalidPayment
	}
	for _, it := range req.Items {
		if it.Quantity <= 0 {
			return Order{}, ErrEmptyOrder
		}
	}

	now := time.Now().UTC().Format(time.RFC3339)
	ord, err := s.repo.Checkout(Order{
		UserID:          userID,
		ShippingAddress: req.ShippingAddress,
		PhoneNumber:     req.PhoneNumber,
		PaymentMethod:   req.PaymentMethod,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, req.Items)
	if err != nil {
		return Order{}, err
	}

	s.sendReceipt(ord)
	return ord, nil
}

func (s *Service) GetByID(orderID int) (Order, error) {
	return s.repo.GetByID(orderID)
}

func (s *Service) ListByUser(userID int) ([]Order, error) {
	return s.repo.ListByUser(userID)
}

func (s *Service) ListAll() ([]Order, error) {
	return s.repo.ListAll()
}

// UpdateStatus overwrites the order status. Delivered-is-terminal is only
// enforced at cancellation, matching the reference behaviour.
func (s *Service) UpdateStatus(orderID int, status string) (Order, error) {
	return s.repo.UpdateStatus(orderID, status, time.Now().UTC().Format(time.RFC3339))
}

// Cancel moves the order into the cancelled snapshot collection. Only the
// owner or an admin may cancel; delivered orders are refused.
func (s *Service) Cancel(orderID, callerID int, isAdmin bool) (Order, error) {
	ord, err := s.repo.GetByID(orderID)
	if err != nil {
		return Order{}, err
	}
	if !isAdmin && ord.UserID != callerID {
		return Order{}, ErrForbidden
	}
	return s.repo.Cancel(orderID)
}

func (s *Service) ListCanceledByUser(userID int) ([]Order, error) {
	return s.repo.ListCanceledByUser(userID)
}

func (s *Service) ListAllCanceled() ([]Order, error) {
	return s.repo.ListAllCanceled()
}

// sendReceipt must never fail the checkout; errors are only logged.
func (s *Service) sendReceipt(ord Order) {
	if s.users == nil {
		return
	}
	u, err := s.users.GetByID(ord.UserID)
	if err != nil {
		fmt.Printf("warning: no user %d for order %d receipt: %v\n", ord.UserID, ord.OrderID, err)
		return
	}

	body := fmt.Sprintf("Your order #%d for %.2f has been placed and is on its way.", ord.OrderID, ord.TotalAmount)
	if err := s.notifier.Send(u.Email, "Order confirmation", body); err != nil {
		fmt.Printf("warning: receipt for order %d not delivered: %v\n", ord.OrderID, err)
	}
}
