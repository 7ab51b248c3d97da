package manufacturer

// Manufacturer is a required reference on every product. Like categories,
// deletion is unguarded.
type Manufacturer struct {
	ID          int    `json:"manufacturerId"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
}
