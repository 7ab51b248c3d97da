package manufacturer

// Service provides business logic for manufacturers.
type Service struct {
	repo Repository
}

func NewService(r Repository) *Service {
	return &Service{repo: r}
}

func (s *Service) List() []Manufacturer {
	return s.repo.List()
}

func (s *Service) GetByID(id int) (Manufacturer, error) {
	return s.repo.GetByID(id)
}

func (s *Service) Create(m Manufacturer) (Manufacturer, error) {
	if _, err := s.repo.GetByName(m.Name); err == nil {
		return Manufacturer{}, ErrNameExists
	} else if err != ErrNotFound {
		return Manufacturer{}, err
	}
	return s.repo.Create(m)
}

func (s *Service) Update(id int, m Manufacturer) (Manufacturer, error) {
	existing, err := s.repo.GetByID(id)
	if err != nil {
		return Manufacturer{}, err
	}

	if m.Name == "" {
		m.Name = existing.Name
	}
	if m.Description == "" {
		m.Description = existing.Description
	}
	if m.Image == "" {
		m.Image = existing.Image
	}

	return s.repo.Update(id, m)
}

// Delete is unguarded; products referencing the manufacturer are left
// with a dangling reference.
func (s *Service) Delete(id int) error {
	return s.repo.Delete(id)
}
