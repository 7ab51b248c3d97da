package category

// Category is a named grouping referenced by products. Deleting a category
// does not touch products that reference it.
type Category struct {
	ID          int    `json:"categoryId"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
}
