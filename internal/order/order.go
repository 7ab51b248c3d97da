package order

import "pharmacy-backend/internal/product"

const (
	StatusOnDelivery = "On-Delivery"
	StatusDelivered  = "Delivered"
	StatusCanceled   = "Canceled"
)

// Item is one order line. The unit price is frozen at checkout time so
// historical orders stay accurate when the catalog changes.
type Item struct {
	ProductID int     `json:"productId"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
}

type ShippingAddress struct {
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

func (a ShippingAddress) Incomplete() bool {
	return a.Address == "" || a.City == "" || a.PostalCode == "" || a.Country == ""
}

type Order struct {
	OrderID         int             `json:"orderId"`
	UserID          int             `json:"userId"`
	Items           []Item          `json:"items"`
	TotalAmount     float64         `json:"totalAmount"`
	Status          string          `json:"status"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	PhoneNumber     string          `json:"phoneNumber"`
	PaymentMethod   string          `json:"paymentMethod"`
	CreatedAt       string          `json:"createdAt"`
	UpdatedAt       string          `json:"updatedAt"`

	// populated on admin views only (live join, not part of the stored row)
	UserName string                      `json:"userName,omitempty"`
	Products map[string]product.Snapshot `json:"products,omitempty"`
}

// CheckoutItem is a requested (product, quantity) pair before prices are
// resolved and frozen.
type CheckoutItem struct {
	ProductID int `json:"productId"`
	Quantity  int `json:"quantity"`
}
