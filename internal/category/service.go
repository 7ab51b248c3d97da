package category

// Service provides business logic for categories.
type Service struct {
	repo Repository
}

func NewService(r Repository) *Service {
	return &Service{repo: r}
}

func (s *Service) List() []Category {
	return s.repo.List()
}

func (s *Service) GetByID(id int) (Category, error) {
	return s.repo.GetByID(id)
}

func (s *Service) Create(cat Category) (Category, error) {
	if _, err := s.repo.GetByName(cat.Name); err == nil {
		return Category{}, ErrNameExists
	} else if err != ErrNotFound {
		return Category{}, err
	}
	return s.repo.Create(cat)
}

func (s *Service) Update(id int, cat Category) (Category, error) {
	existing, err := s.repo.GetByID(id)
	if err != nil {
		return Category{}, err
	}

	if cat.Name == "" {
		cat.Name = existing.Name
	}
	if cat.Description == "" {
		cat.Description = existing.Description
	}
	if cat.Image == "" {
		cat.Image = existing.Image
	}

	return s.repo.Update(id, cat)
}

// Delete is unguarded: products referencing the category keep a dangling
// reference, matching the documented catalog behaviour.
func (s *Service) Delete(id int) error {
	return s.repo.Delete(id)
}
