package order

import (
	"strings"
	"testing"

	"pharmacy-backend/internal/cart"
	"pharmacy-backend/internal/product"
	"pharmacy-backend/internal/user"
)

type captureSender struct {
	to      string
	subject string
	body    string
	sent    int
}

func (s *captureSender) Send(to, subject, body string) error {
	s.to, s.subject, s.body = to, subject, body
	s.sent++
	return nil
}

type orderFixture struct {
	service  *Service
	products *product.InMemoryRepository
	carts    *cart.InMemoryRepository
	sender   *captureSender
}

func newOrderFixture() orderFixture {
	products := product.NewInMemoryRepository([]product.Product{
		{ID: 1, Name: "Ibuprofen 200mg", Price: 10.00, Stock: 10},
		{ID: 2, Name: "Cough Syrup", Price: 5.00, Stock: 3},
	})
	carts := cart.NewInMemoryRepository()
	users := user.NewService(user.NewInMemoryRepository([]user.User{
		{ID: 42, Email: "jane@example.com", FirstName: "Jane", LastName: "Doe"},
	}))
	sender := &captureSender{}
	repo := NewInMemoryRepository(products, carts)
	return orderFixture{
		service:  NewService(repo, users, sender),
		products: products,
		carts:    carts,
		sender:   sender,
	}
}

func validCheckout() CheckoutRequest {
	return CheckoutRequest{
		Items: []CheckoutItem{{ProductID: 1, Quantity: 2}, {ProductID: 2, Quantity: 1}},
		ShippingAddress: ShippingAddress{
			Address:    "1 Main St",
			City:       "Springfield",
			PostalCode: "12345",
			Country:    "US",
		},
		PhoneNumber:   "5551234567",
		PaymentMethod: "card",
	}
}

func TestCheckout_FreezesPricesAndClearsCart(t *testing.T) {
	f := newOrderFixture()
	f.carts.Mutate(42, func([]cart.Line) ([]cart.Line, error) {
		return []cart.Line{{ProductID: 1, Quantity: 2}, {ProductID: 2, Quantity: 1}}, nil
	})

	ord, err := f.service.Checkout(42, validCheckout())
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}
	if ord.TotalAmount != 25.00 {
		t.Fatalf("expected total 25.00, got %.2f", ord.TotalAmount)
	}
	if ord.Status != StatusOnDelivery {
		t.Fatalf("expected status %q, got %q", StatusOnDelivery, ord.Status)
	}
	if len(ord.Items) != 2 || ord.Items[0].UnitPrice != 10.00 || ord.Items[1].UnitPrice != 5.00 {
		t.Fatalf("expected frozen unit prices, got %+v", ord.Items)
	}

	// stock is decremented per line
	p1, _ := f.products.GetByID(1)
	p2, _ := f.products.GetByID(2)
	if p1.Stock != 8 || p2.Stock != 2 {
		t.Fatalf("expected stock 8 and 2, got %d and %d", p1.Stock, p2.Stock)
	}

	// the cart is emptied as part of checkout
	lines, _ := f.carts.Get(42)
	if len(lines) != 0 {
		t.Fatalf("expected empty cart after checkout, got %+v", lines)
	}

	// a receipt goes to the account email
	if f.sender.sent != 1 || f.sender.to != "jane@example.com" {
		t.Fatalf("expected one receipt to jane@example.com, got %d to %q", f.sender.sent, f.sender.to)
	}
	if !strings.Contains(f.sender.body, "25.00") {
		t.Fatalf("expected total in receipt body, got %q", f.sender.body)
	}

	// a later price change must not alter the stored order
	p1.Price = 99.00
	f.products.Update(1, p1)
	stored, _ := f.service.GetByID(ord.OrderID)
	if stored.Items[0].UnitPrice != 10.00 || stored.TotalAmount != 25.00 {
		t.Fatalf("stored order changed after price update: %+v", stored)
	}
}

func TestCheckout_InsufficientStockLeavesEverythingUntouched(t *testing.T) {
	f := newOrderFixture()

	req := validCheckout()
	req.Items = []CheckoutItem{{ProductID: 1, Quantity: 2}, {ProductID: 2, Quantity: 5}}

	if _, err := f.service.Checkout(42, req); err != ErrInsufficientStock {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}

	// the first line must not have been applied
	p1, _ := f.products.GetByID(1)
	if p1.Stock != 10 {
		t.Fatalf("expected stock untouched, got %d", p1.Stock)
	}
	if orders, _ := f.service.ListByUser(42); len(orders) != 0 {
		t.Fatalf("expected no order recorded, got %d", len(orders))
	}
	if f.sender.sent != 0 {
		t.Fatalf("expected no receipt, got %d", f.sender.sent)
	}
}

func TestCheckout_Validation(t *testing.T) {
	f := newOrderFixture()

	cases := []struct {
		name   string
		mutate func(*CheckoutRequest)
		want   error
	}{
		{"no items", func(r *CheckoutRequest) { r.Items = nil }, ErrEmptyOrder},
		{"missing city", func(r *CheckoutRequest) { r.ShippingAddress.City = "" }, ErrIncompleteAddress},
		{"short phone", func(r *CheckoutRequest) { r.PhoneNumber = "12345" }, ErrInvalidPhone},
		{"letters in phone", func(r *CheckoutRequest) { r.PhoneNumber = "55512345ab" }, ErrInvalidPhone},
		{"unknown payment", func(r *CheckoutRequest) { r.PaymentMethod = "crypto" }, ErrInvalidPayment},
		{"unknown product", func(r *CheckoutRequest) { r.Items = []CheckoutItem{{ProductID: 99, Quantity: 1}} }, ErrProductNotFound},
	}

	for _, tc := range cases {
		req := validCheckout()
		tc.mutate(&req)
		if _, err := f.service.Checkout(42, req); err != tc.want {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}

	if orders, _ := f.service.ListByUser(42); len(orders) != 0 {
		t.Fatalf("expected no orders after rejected checkouts, got %d", len(orders))
	}
}

func TestCancel_MovesOrderAndGuardsDelivered(t *testing.T) {
	f := newOrderFixture()

	ord, err := f.service.Checkout(42, validCheckout())
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}

	// another customer must not be able to cancel it
	if _, err := f.service.Cancel(ord.OrderID, 7, false); err != ErrForbidden {
		t.Fatalf("expected ErrForbidden for foreign cancel, got %v", err)
	}

	canceled, err := f.service.Cancel(ord.OrderID, 42, false)
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if canceled.Status != StatusCanceled {
		t.Fatalf("expected status %q, got %q", StatusCanceled, canceled.Status)
	}

	// gone from the active listing, present in the canceled one
	if orders, _ := f.service.ListByUser(42); len(orders) != 0 {
		t.Fatalf("expected no active orders, got %d", len(orders))
	}
	hist, _ := f.service.ListCanceledByUser(42)
	if len(hist) != 1 || hist[0].OrderID != ord.OrderID {
		t.Fatalf("expected canceled order %d in history, got %+v", ord.OrderID, hist)
	}

	// cancelling twice is a not-found
	if _, err := f.service.Cancel(ord.OrderID, 42, false); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound for second cancel, got %v", err)
	}
}

func TestCancel_DeliveredOrderIsRefused(t *testing.T) {
	f := newOrderFixture()

	ord, err := f.service.Checkout(42, validCheckout())
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}
	if _, err := f.service.UpdateStatus(ord.OrderID, StatusDelivered); err != nil {
		t.Fatalf("status update failed: %v", err)
	}

	if _, err := f.service.Cancel(ord.OrderID, 42, true); err != ErrDelivered {
		t.Fatalf("expected ErrDelivered, got %v", err)
	}
	// the order stays in the active listing
	stored, err := f.service.GetByID(ord.OrderID)
	if err != nil || stored.Status != StatusDelivered {
		t.Fatalf("expected delivered order to remain, got %+v (%v)", stored, err)
	}
}
