package cart

import "pharmacy-backend/internal/product"

// Service orchestrates cart operations. Product references are validated
// against the catalog; stock is only enforced at checkout.
type Service struct {
	repo     Repository
	products product.ServiceInterface
}

func NewService(repo Repository, products product.ServiceInterface) *Service {
	return &Service{repo: repo, products: products}
}

// AddItem appends a line or increments an existing one.
func (s *Service) AddItem(userID, productID, quantity int) ([]Item, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if _, err := s.products.GetByID(productID); err != nil {
		return nil, err
	}

	lines, err := s.repo.Mutate(userID, func(lines []Line) ([]Line, error) {
		for i := range lines {
			if lines[i].ProductID == productID {
				lines[i].Quantity += quantity
				return lines, nil
			}
		}
		return append(lines, Line{ProductID: productID, Quantity: quantity}), nil
	})
	if err != nil {
		return nil, err
	}

	return s.resolve(lines)
}

// UpdateQuantity overwrites a line's quantity. Non-positive quantities are
// rejected and leave the line unchanged.
func (s *Service) UpdateQuantity(userID, productID, quantity int) ([]Item, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	lines, err := s.repo.Mutate(userID, func(lines []Line) ([]Line, error) {
		for i := range lines {
			if lines[i].ProductID == productID {
				lines[i].Quantity = quantity
				return lines, nil
			}
		}
		return nil, ErrLineNotFound
	})
	if err != nil {
		return nil, err
	}

	return s.resolve(lines)
}

// RemoveItem deletes a line, or with decrementOnly lowers its quantity by
// one and drops the line when it reaches zero.
func (s *Service) RemoveItem(userID, productID int, decrementOnly bool) ([]Item, error) {
	lines, err := s.repo.Mutate(userID, func(lines []Line) ([]Line, error) {
		for i := range lines {
			if lines[i].ProductID != productID {
				continue
			}
			if decrementOnly {
				lines[i].Quantity--
				if lines[i].Quantity > 0 {
					return lines, nil
				}
			}
			return append(lines[:i], lines[i+1:]...), nil
		}
		return nil, ErrLineNotFound
	})
	if err != nil {
		return nil, err
	}

	return s.resolve(lines)
}

func (s *Service) GetCart(userID int) ([]Item, error) {
	lines, err := s.repo.Get(userID)
	if err != nil {
		return nil, err
	}
	return s.resolve(lines)
}

// Lines returns the raw cart lines, used by checkout.
func (s *Service) Lines(userID int) ([]Line, error) {
	return s.repo.Get(userID)
}

func (s *Service) Clear(userID int) error {
	return s.repo.Clear(userID)
}

// resolve attaches product name/price/images to each line. Lines whose
// product has since been deleted are skipped.
func (s *Service) resolve(lines []Line) ([]Item, error) {
	if len(lines) == 0 {
		return []Item{}, nil
	}

	ids := make([]int, 0, len(lines))
	for _, ln := range lines {
		ids = append(ids, ln.ProductID)
	}

	products, err := s.products.ListByIDs(ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[int]product.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	out := make([]Item, 0, len(lines))
	for _, ln := range lines {
		p, ok := byID[ln.ProductID]
		if !ok {
			continue
		}
		out = append(out, Item{
			ProductID: p.ID,
			Name:      p.Name,
			Price:     p.Price,
			Images:    p.Images,
			Quantity:  ln.Quantity,
		})
	}
	return out, nil
}
