package cart

// Line is one (product, quantity) pair in a user's pending selection.
type Line struct {
	ProductID int `json:"productId"`
	Quantity  int `json:"quantity"`
}

// Item is a line resolved with product details for API responses.
type Item struct {
	ProductID int      `json:"productId"`
	Name      string   `json:"name"`
	Price     float64  `json:"price"`
	Images    []string `json:"images"`
	Quantity  int      `json:"quantity"`
}
