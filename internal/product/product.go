package product

// Review is embedded in its product, matching the catalog's document-style
// storage: reviews are addressed by index, not by id.
type Review struct {
	Name      string `json:"name"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
	Timestamp string `json:"timestamp"`
}

type Product struct {
	ID             int      `json:"productId"`
	Name           string   `json:"name"`
	CategoryID     *int     `json:"categoryId,omitempty"`
	ManufacturerID int      `json:"manufacturerId"`
	Price          float64  `json:"price"`
	Description    string   `json:"description"`
	Stock          int      `json:"stockLevel"`
	Images         []string `json:"images"`
	AverageRating  float64  `json:"averageRating"`
	RatingsCount   int      `json:"ratingsCount"`
	Reviews        []Review `json:"reviews"`
	CreatedAt      string   `json:"createdAt,omitempty"`
	UpdatedAt      string   `json:"updatedAt,omitempty"`
}

// Snapshot is the reduced shape other features embed when they resolve a
// product reference (cart lines, order item views).
type Snapshot struct {
	ProductID int      `json:"productId"`
	Name      string   `json:"name"`
	Price     float64  `json:"price"`
	Images    []string `json:"images"`
}

func (p Product) Snapshot() Snapshot {
	return Snapshot{ProductID: p.ID, Name: p.Name, Price: p.Price, Images: p.Images}
}
