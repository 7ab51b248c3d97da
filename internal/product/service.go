package product

import (
	"strings"
	"time"
)

// ServiceInterface is what cart and order handlers depend on when they
// resolve product references.
type ServiceInterface interface {
	GetByID(id int) (Product, error)
	ListByIDs(ids []int) ([]Product, error)
}

type Service struct {
	repo Repository
}

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List() []Product {
	return s.repo.List()
}

func (s *Service) GetByID(id int) (Product, error) {
	return s.repo.GetByID(id)
}

func (s *Service) ListByIDs(ids []int) ([]Product, error) {
	return s.repo.ListByIDs(ids)
}

func (s *Service) ListByCategoryID(categoryID int) []Product {
	return s.repo.ListByCategoryID(categoryID)
}

func (s *Service) ListByManufacturerID(manufacturerID int) []Product {
	return s.repo.ListByManufacturerID(manufacturerID)
}

func (s *Service) Search(query string) []Product {
	return s.repo.Search(query)
}

// SearchKeywords matches products whose name contains any of the given
// words. It backs the OCR search: scanned prescription text is tokenized
// and each token tried against the catalog.
func (s *Service) SearchKeywords(words []string) []Product {
	seen := map[int]bool{}
	out := make([]Product, 0)
	for _, w := range words {
		w = strings.TrimSpace(w)
		if len(w) < 2 {
			continue
		}
		for _, p := range s.repo.Search(w) {
			if !seen[p.ID] {
				seen[p.ID] = true
				out = append(out, p)
			}
		}
	}
	return out
}

func (s *Service) Create(p Product) (Product, error) {
	if _, err := s.repo.GetByName(p.Name); err == nil {
		return Product{}, ErrNameExists
	} else if err != ErrNotFound {
		return Product{}, err
	}

	if p.Reviews == nil {
		p.Reviews = []Review{}
	}
	return s.repo.Create(p)
}

// UpdateInput is a partial update: nil fields keep their current value,
// so price and stockLevel can be set to zero explicitly.
type UpdateInput struct {
	Name           *string
	CategoryID     *int
	ManufacturerID *int
	Price          *float64
	Description    *string
	Stock          *int
	Images         []string
}

func (s *Service) Update(id int, in UpdateInput) (Product, error) {
	existing, err := s.repo.GetByID(id)
	if err != nil {
		return Product{}, err
	}

	if in.Name != nil {
		existing.Name = *in.Name
	}
	if in.CategoryID != nil {
		existing.CategoryID = in.CategoryID
	}
	if in.ManufacturerID != nil {
		existing.ManufacturerID = *in.ManufacturerID
	}
	if in.Price != nil {
		existing.Price = *in.Price
	}
	if in.Description != nil {
		existing.Description = *in.Description
	}
	if in.Stock != nil {
		existing.Stock = *in.Stock
	}
	if in.Images != nil {
		existing.Images = in.Images
	}
	existing.UpdatedAt = time.Now().UTC().Format(time.RFC3339)

	return s.repo.Update(id, existing)
}

func (s *Service) Delete(id int) error {
	return s.repo.Delete(id)
}

// AddReview appends a review and recomputes the denormalized rating fields.
func (s *Service) AddReview(productID int, name string, rating int, comment string) (Product, error) {
	if rating < 1 || rating > 5 {
		return Product{}, ErrInvalidRating
	}

	p, err := s.repo.GetByID(productID)
	if err != nil {
		return Product{}, err
	}

	reviews := append(p.Reviews, Review{
		Name:      name,
		Rating:    rating,
		Comment:   comment,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})

	average, count := ratingStats(reviews)
	return s.repo.SaveReviews(productID, reviews, average, count)
}

// DeleteReview removes the review at the given index. Deleting the last
// review resets averageRating to zero.
func (s *Service) DeleteReview(productID int, index int) (Product, error) {
	p, err := s.repo.GetByID(productID)
	if err != nil {
		return Product{}, err
	}

	if index < 0 || index >= len(p.Reviews) {
		return Product{}, ErrNoSuchReview
	}

	reviews := append(p.Reviews[:index:index], p.Reviews[index+1:]...)
	average, count := ratingStats(reviews)
	return s.repo.SaveReviews(productID, reviews, average, count)
}

func ratingStats(reviews []Review) (float64, int) {
	if len(reviews) == 0 {
		return 0, 0
	}
	sum := 0
	for _, rv := range reviews {
		sum += rv.Rating
	}
	return float64(sum) / float64(len(reviews)), len(reviews)
}
