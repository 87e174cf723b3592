package questionbank

import "testing"

func TestLoad_CatalogInvariants(t *testing.T) {
	b, err := Load()
	if err != nil {
		t.Fatalf("load bank: %v", err)
	}
	if b.Len() != 180 {
		t.Fatalf("expected 180 questions, got %d", b.Len())
	}
	min, max := b.Scale()
	if min != 1 || max != 5 {
		t.Fatalf("unexpected scale [%d,%d]", min, max)
	}
	for _, trait := range []string{"O", "C", "E", "A", "N"} {
		if b.MaxTraitWeight(trait) <= 0 {
			t.Fatalf("trait %s has no weight", trait)
		}
	}
}

func TestQuestions_BalancedQuiz30(t *testing.T) {
	b, err := Load()
	if err != nil {
		t.Fatalf("load bank: %v", err)
	}
	qs := b.Questions(30)
	if len(qs) != 30 {
		t.Fatalf("expected 30 questions, got %d", len(qs))
	}
	perTrait := make(map[string]int)
	for _, q := range qs {
		perTrait[q.Trait]++
	}
	for trait, count := range perTrait {
		if count < 5 || count > 7 {
			t.Fatalf("trait %s has %d questions in balanced quiz, want 5..7", trait, count)
		}
	}
}

func TestQuestions_LimitClamps(t *testing.T) {
	b, err := Load()
	if err != nil {
		t.Fatalf("load bank: %v", err)
	}
	if got := len(b.Questions(0)); got != 180 {
		t.Fatalf("limit 0 should return full catalog, got %d", got)
	}
	if got := len(b.Questions(999)); got != 180 {
		t.Fatalf("limit beyond catalog should clamp, got %d", got)
	}
	if got := len(b.Questions(10)); got != 10 {
		t.Fatalf("limit 10 should return 10, got %d", got)
	}
}
