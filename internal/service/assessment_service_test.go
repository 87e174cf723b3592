package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"lifesync-engine/internal/domain"
	"lifesync-engine/internal/persona"
	"lifesync-engine/internal/questionbank"
	"lifesync-engine/internal/scorer"
)

type fakeAssessmentRepo struct {
	created   []*domain.Assessment
	responses map[string]map[string]int
	scored    map[string]bool
	telemetry int
	order     []string
}

func newFakeAssessmentRepo() *fakeAssessmentRepo {
	return &fakeAssessmentRepo{
		responses: make(map[string]map[string]int),
		scored:    make(map[string]bool),
	}
}

func (f *fakeAssessmentRepo) Create(_ context.Context, a *domain.Assessment) error {
	if a.ID == "" {
		a.ID = "as-" + string(rune('0'+len(f.created)))
	}
	f.created = append(f.created, a)
	f.order = append(f.order, "create")
	return nil
}

func (f *fakeAssessmentRepo) SaveResponses(_ context.Context, id string, responses map[string]int) error {
	f.responses[id] = responses
	f.order = append(f.order, "responses")
	return nil
}

func (f *fakeAssessmentRepo) SaveScores(_ context.Context, a *domain.Assessment) error {
	f.scored[a.ID] = true
	f.order = append(f.order, "scores")
	return nil
}

func (f *fakeAssessmentRepo) SaveTelemetry(_ context.Context, _ string, _ domain.ScoringMetadata) {
	f.telemetry++
	f.order = append(f.order, "telemetry")
}

func (f *fakeAssessmentRepo) MarkNeedsRetake(_ context.Context, _, _ string) error { return nil }

func (f *fakeAssessmentRepo) Get(_ context.Context, userID, id string) (*domain.Assessment, error) {
	for _, a := range f.created {
		if a.ID == id && a.UserID == userID {
			return a, nil
		}
	}
	return nil, domain.ErrAssessmentNotFound
}

func (f *fakeAssessmentRepo) GetFull(ctx context.Context, userID, id string) (*domain.Assessment, error) {
	return f.Get(ctx, userID, id)
}

func (f *fakeAssessmentRepo) History(_ context.Context, userID string, page, pageSize int) (*domain.HistoryPage, error) {
	var data []domain.AssessmentSummary
	for _, a := range f.created {
		if a.UserID == userID {
			data = append(data, domain.AssessmentSummary{ID: a.ID, QuizType: a.QuizType})
		}
	}
	return &domain.HistoryPage{Data: data, Page: page, PageSize: pageSize, Total: len(data)}, nil
}

type fakeProfileRepo struct {
	upserts []string
}

func (f *fakeProfileRepo) Upsert(_ context.Context, userID, _, assessmentID string) error {
	f.upserts = append(f.upserts, userID+"/"+assessmentID)
	return nil
}

func (f *fakeProfileRepo) GetByUserID(_ context.Context, userID string) (domain.Profile, error) {
	return domain.Profile{UserID: userID}, nil
}

func newTestAssessmentService(t *testing.T) (*AssessmentService, *fakeAssessmentRepo, *fakeProfileRepo, *questionbank.Bank) {
	t.Helper()
	bank, err := questionbank.Load()
	if err != nil {
		t.Fatalf("bank: %v", err)
	}
	registry, err := persona.Load()
	if err != nil {
		t.Fatalf("personas: %v", err)
	}
	repo := newFakeAssessmentRepo()
	profiles := &fakeProfileRepo{}
	svc := NewAssessmentService(zap.NewNop(), bank, scorer.New(bank), registry, repo, profiles)
	return svc, repo, profiles, bank
}

func balancedAnswers(bank *questionbank.Bank, value int) map[string]int {
	answers := make(map[string]int)
	for _, q := range bank.Questions(30) {
		answers[q.ID] = value
	}
	return answers
}

func TestSubmit_PersistsInOrder(t *testing.T) {
	svc, repo, profiles, bank := newTestAssessmentService(t)

	a, err := svc.Submit(context.Background(), SubmitInput{
		UserID:  "u1",
		Email:   "u1@example.com",
		Answers: balancedAnswers(bank, 3),
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	want := []string{"create", "responses", "scores", "telemetry"}
	if len(repo.order) != len(want) {
		t.Fatalf("order = %v", repo.order)
	}
	for i, step := range want {
		if repo.order[i] != step {
			t.Fatalf("order[%d] = %s, want %s (full: %v)", i, repo.order[i], step, repo.order)
		}
	}
	if len(profiles.upserts) != 1 {
		t.Fatalf("profile upserts = %v", profiles.upserts)
	}
	if a.MBTICode != "ENFJ-B" {
		t.Fatalf("MBTICode = %q", a.MBTICode)
	}
	if a.NeedsRetake {
		t.Fatal("balanced set flagged needs_retake")
	}
}

func TestSubmit_CompleteProfileCarriesPersonaConfidence(t *testing.T) {
	svc, _, _, bank := newTestAssessmentService(t)

	a, err := svc.Submit(context.Background(), SubmitInput{
		UserID:  "u1",
		Email:   "u1@example.com",
		Answers: balancedAnswers(bank, 3),
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if a.Metadata.PersonaConfidence <= 0 || a.Metadata.PersonaConfidence > 1 {
		t.Fatalf("PersonaConfidence = %v, quiero en (0, 1]", a.Metadata.PersonaConfidence)
	}
}

func TestSubmit_UnbalancedSetRejectedWithReport(t *testing.T) {
	svc, repo, _, bank := newTestAssessmentService(t)

	answers := make(map[string]int)
	for _, q := range bank.Questions(0) {
		if q.Trait == "O" {
			answers[q.ID] = 4
			if len(answers) == 10 {
				break
			}
		}
	}

	_, err := svc.Submit(context.Background(), SubmitInput{UserID: "u1", Answers: answers})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want *ValidationError", err)
	}
	if len(verr.Report.MissingTraits) != 4 {
		t.Fatalf("MissingTraits = %v", verr.Report.MissingTraits)
	}
	if len(repo.created) != 0 {
		t.Fatal("invalid submission reached the repository")
	}
}

func TestSubmit_EmptyAnswers(t *testing.T) {
	svc, _, _, _ := newTestAssessmentService(t)
	_, err := svc.Submit(context.Background(), SubmitInput{UserID: "u1", Answers: nil})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestSync_ItemsAreIndependent(t *testing.T) {
	svc, repo, _, bank := newTestAssessmentService(t)

	items := []SyncItem{
		{ClientRef: "c1", Answers: balancedAnswers(bank, 4)},
		{ClientRef: "c2", Answers: map[string]int{"Q001": 9}},
		{ClientRef: "c3", Answers: balancedAnswers(bank, 2)},
	}
	results := svc.Sync(context.Background(), "u1", "u1@example.com", items)

	if len(results) != 3 {
		t.Fatalf("results = %v", results)
	}
	if results[0].Status != "created" || results[2].Status != "created" {
		t.Fatalf("valid items not created: %+v", results)
	}
	if results[1].Status != "failed" || results[1].Error == "" {
		t.Fatalf("invalid item: %+v", results[1])
	}
	if results[1].ClientRef != "c2" {
		t.Fatalf("client ref = %q", results[1].ClientRef)
	}
	if len(repo.created) != 2 {
		t.Fatalf("created = %d, want 2", len(repo.created))
	}
}
