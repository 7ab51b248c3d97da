package product

import "testing"

func newCatalog() *Service {
	repo := NewInMemoryRepository([]Product{
		{ID: 1, Name: "Aspirin 100mg", Price: 3.50, Stock: 50},
		{ID: 2, Name: "Amoxicillin 500mg", Price: 12.00, Stock: 20},
		{ID: 3, Name: "Aspirin Forte", Price: 5.00, Stock: 10},
	})
	return NewService(repo)
}

func TestAddReview_UpdatesAggregates(t *testing.T) {
	s := newCatalog()

	p, err := s.AddReview(1, "Jane", 4, "works well")
	if err != nil {
		t.Fatalf("add review failed: %v", err)
	}
	if p.RatingsCount != 1 || p.AverageRating != 4.0 {
		t.Fatalf("expected count 1 average 4.0, got %d / %.2f", p.RatingsCount, p.AverageRating)
	}

	p, err = s.AddReview(1, "Joe", 1, "did nothing")
	if err != nil {
		t.Fatalf("second review failed: %v", err)
	}
	if p.RatingsCount != 2 || p.AverageRating != 2.5 {
		t.Fatalf("expected count 2 average 2.5, got %d / %.2f", p.RatingsCount, p.AverageRating)
	}

	// out-of-range rating is rejected and nothing changes
	if _, err := s.AddReview(1, "Eve", 6, "!"); err != ErrInvalidRating {
		t.Fatalf("expected ErrInvalidRating, got %v", err)
	}
	stored, _ := s.GetByID(1)
	if stored.RatingsCount != 2 {
		t.Fatalf("expected count unchanged after rejected review, got %d", stored.RatingsCount)
	}
}

func TestDeleteReview_ByIndex(t *testing.T) {
	s := newCatalog()
	s.AddReview(2, "Jane", 5, "great")
	s.AddReview(2, "Joe", 1, "terrible")

	p, err := s.DeleteReview(2, 1)
	if err != nil {
		t.Fatalf("delete review failed: %v", err)
	}
	if p.RatingsCount != 1 || p.AverageRating != 5.0 {
		t.Fatalf("expected count 1 average 5.0, got %d / %.2f", p.RatingsCount, p.AverageRating)
	}
	if len(p.Reviews) != 1 || p.Reviews[0].Name != "Jane" {
		t.Fatalf("expected Jane's review to remain, got %+v", p.Reviews)
	}

	// removing the last review resets the aggregates
	p, err = s.DeleteReview(2, 0)
	if err != nil {
		t.Fatalf("deleting last review failed: %v", err)
	}
	if p.RatingsCount != 0 || p.AverageRating != 0 {
		t.Fatalf("expected zeroed aggregates, got %d / %.2f", p.RatingsCount, p.AverageRating)
	}

	if _, err := s.DeleteReview(2, 0); err != ErrNoSuchReview {
		t.Fatalf("expected ErrNoSuchReview for empty list, got %v", err)
	}
	if _, err := s.DeleteReview(2, -1); err != ErrNoSuchReview {
		t.Fatalf("expected ErrNoSuchReview for negative index, got %v", err)
	}
}

func TestUpdate_KeepsReviewsAndAggregates(t *testing.T) {
	s := newCatalog()
	s.AddReview(1, "Jane", 4, "works well")
	s.AddReview(1, "Joe", 2, "slow")

	price := 4.00
	updated, err := s.Update(1, UpdateInput{Price: &price})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Price != 4.00 {
		t.Fatalf("expected price 4.00, got %.2f", updated.Price)
	}
	if len(updated.Reviews) != 2 || updated.RatingsCount != 2 || updated.AverageRating != 3.0 {
		t.Fatalf("review data lost on catalog update: %+v", updated)
	}

	stored, _ := s.GetByID(1)
	if len(stored.Reviews) != 2 || stored.Reviews[0].Name != "Jane" {
		t.Fatalf("stored reviews changed: %+v", stored.Reviews)
	}
}

func TestSearchKeywords_DedupesAndSkipsShortTokens(t *testing.T) {
	s := newCatalog()

	// "Aspirin" matches products 1 and 3; the second occurrence and the
	// one-character token must not produce duplicates or noise
	results := s.SearchKeywords([]string{"Aspirin", "aspirin", "x", "500mg"})
	if len(results) != 3 {
		t.Fatalf("expected 3 unique products, got %d", len(results))
	}
	seen := map[int]bool{}
	for _, p := range results {
		if seen[p.ID] {
			t.Fatalf("duplicate product %d in results", p.ID)
		}
		seen[p.ID] = true
	}

	if got := s.SearchKeywords([]string{"a", " "}); len(got) != 0 {
		t.Fatalf("expected no results for short tokens, got %d", len(got))
	}
}

func TestCreateAndUpdate_NameRules(t *testing.T) {
	s := newCatalog()

	if _, err := s.Create(Product{Name: "Aspirin 100mg"}); err != ErrNameExists {
		t.Fatalf("expected ErrNameExists, got %v", err)
	}

	created, err := s.Create(Product{Name: "Zinc Tablets", Price: 7.00, Stock: 5})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.ID == 0 {
		t.Fatalf("expected assigned id, got %+v", created)
	}

	// partial update keeps untouched fields
	price := 8.00
	updated, err := s.Update(created.ID, UpdateInput{Price: &price})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Name != "Zinc Tablets" || updated.Stock != 5 || updated.Price != 8.00 {
		t.Fatalf("unexpected update result: %+v", updated)
	}

	// an explicit zero is an update, not an omission
	soldOut := 0
	updated, err = s.Update(created.ID, UpdateInput{Stock: &soldOut})
	if err != nil {
		t.Fatalf("zero-stock update failed: %v", err)
	}
	if updated.Stock != 0 || updated.Price != 8.00 {
		t.Fatalf("expected stock 0 price 8.00, got %+v", updated)
	}
}
