package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"lifesync-engine/internal/config"
	"lifesync-engine/internal/domain"
	"lifesync-engine/internal/email"
	"lifesync-engine/internal/llm"
	"lifesync-engine/internal/metrics"
	"lifesync-engine/internal/persona"
	"lifesync-engine/internal/questionbank"
	"lifesync-engine/internal/quota"
	"lifesync-engine/internal/ratelimit"
	"lifesync-engine/internal/repository"
	"lifesync-engine/internal/scorer"
	"lifesync-engine/internal/service"
)

type memAssessmentRepo struct {
	mu          sync.Mutex
	assessments map[string]*domain.Assessment
	responses   map[string]map[string]int
}

func newMemAssessmentRepo() *memAssessmentRepo {
	return &memAssessmentRepo{
		assessments: make(map[string]*domain.Assessment),
		responses:   make(map[string]map[string]int),
	}
}

func (r *memAssessmentRepo) Create(_ context.Context, a *domain.Assessment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	copied := *a
	r.assessments[a.ID] = &copied
	return nil
}

func (r *memAssessmentRepo) SaveResponses(_ context.Context, assessmentID string, responses map[string]int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.responses[assessmentID] = responses
	return nil
}

func (r *memAssessmentRepo) SaveScores(_ context.Context, a *domain.Assessment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *a
	r.assessments[a.ID] = &copied
	return nil
}

func (r *memAssessmentRepo) SaveTelemetry(context.Context, string, domain.ScoringMetadata) {}

func (r *memAssessmentRepo) MarkNeedsRetake(_ context.Context, assessmentID, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.assessments[assessmentID]
	if !ok {
		return domain.ErrAssessmentNotFound
	}
	if !a.NeedsRetake {
		a.NeedsRetake = true
		a.NeedsRetakeReason = reason
	}
	return nil
}

func (r *memAssessmentRepo) Get(_ context.Context, userID, assessmentID string) (*domain.Assessment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.assessments[assessmentID]
	if !ok || a.UserID != userID {
		return nil, domain.ErrAssessmentNotFound
	}
	copied := *a
	return &copied, nil
}

func (r *memAssessmentRepo) GetFull(ctx context.Context, userID, assessmentID string) (*domain.Assessment, error) {
	a, err := r.Get(ctx, userID, assessmentID)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	a.RawResponses = r.responses[assessmentID]
	r.mu.Unlock()
	return a, nil
}

func (r *memAssessmentRepo) History(_ context.Context, userID string, page, pageSize int) (*domain.HistoryPage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := &domain.HistoryPage{Page: page, PageSize: pageSize}
	for _, a := range r.assessments {
		if a.UserID != userID {
			continue
		}
		out.Total++
		out.Data = append(out.Data, domain.AssessmentSummary{ID: a.ID, CreatedAt: a.CreatedAt})
	}
	return out, nil
}

type memProfileRepo struct {
	mu       sync.Mutex
	profiles map[string]domain.Profile
}

func (r *memProfileRepo) Upsert(_ context.Context, userID, email, currentAssessmentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.profiles == nil {
		r.profiles = make(map[string]domain.Profile)
	}
	p := r.profiles[userID]
	p.UserID = userID
	p.Email = email
	p.CurrentAssessmentID = currentAssessmentID
	p.UpdatedAt = time.Now().UTC()
	r.profiles[userID] = p
	return nil
}

func (r *memProfileRepo) GetByUserID(_ context.Context, userID string) (domain.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[userID]
	if !ok {
		return domain.Profile{}, domain.ErrProfileNotFound
	}
	return p, nil
}

type memExplanationRepo struct {
	mu    sync.Mutex
	saved map[string]*domain.Explanation
}

func (r *memExplanationRepo) Save(_ context.Context, _, assessmentID string, e *domain.Explanation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saved == nil {
		r.saved = make(map[string]*domain.Explanation)
	}
	r.saved[assessmentID] = e
	return nil
}

func (r *memExplanationRepo) Get(_ context.Context, _, assessmentID string) (*domain.Explanation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.saved[assessmentID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return e, nil
}

type memUserRepo struct {
	mu    sync.Mutex
	users map[string]domain.User
}

func (r *memUserRepo) Create(_ context.Context, user domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.users == nil {
		r.users = make(map[string]domain.User)
	}
	for _, u := range r.users {
		if u.Email == user.Email {
			return domain.ErrDuplicateEmail
		}
	}
	r.users[user.ID] = user
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return u, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrUserNotFound
}

func (r *memUserRepo) SetResetToken(_ context.Context, userID, tokenHash string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.ResetTokenHash = tokenHash
	u.ResetExpiresAt = &expiresAt
	r.users[userID] = u
	return nil
}

func (r *memUserRepo) FindByResetToken(_ context.Context, tokenHash string) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ResetTokenHash == tokenHash && u.ResetExpiresAt != nil && u.ResetExpiresAt.After(time.Now()) {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrInvalidToken
}

func (r *memUserRepo) UpdatePassword(_ context.Context, userID, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	u.ResetTokenHash = ""
	u.ResetExpiresAt = nil
	r.users[userID] = u
	return nil
}

var _ repository.AssessmentRepository = (*memAssessmentRepo)(nil)
var _ repository.ProfileRepository = (*memProfileRepo)(nil)
var _ repository.ExplanationRepository = (*memExplanationRepo)(nil)
var _ repository.UserRepository = (*memUserRepo)(nil)

const mockExplanationJSON = `{
  "persona_title": "The Warm Connector",
  "vibe_summary": "You bring people together.",
  "strengths": ["empathy", "energy", "planning"],
  "growth_edges": ["saying no", "solo time", "detail fatigue"],
  "how_you_show_up": "Warm and organized.",
  "tagline": "Connection first.",
  "summary": "You bring people together. Warm and organized.",
  "challenges": ["saying no", "solo time", "detail fatigue"],
  "steps": ["schedule quiet time", "delegate", "practice boundaries"],
  "confidence_note": ""
}`

type testEnv struct {
	router      *gin.Engine
	bank        *questionbank.Bank
	assessments *memAssessmentRepo
	provider    *llm.MockProvider
	jwt         *service.JWTService
	token       string
	userID      string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	bank, err := questionbank.Load()
	if err != nil {
		t.Fatalf("cargando banco de preguntas: %v", err)
	}
	personas, err := persona.Load()
	if err != nil {
		t.Fatalf("cargando personas: %v", err)
	}

	assessRepo := newMemAssessmentRepo()
	profileRepo := &memProfileRepo{}
	explRepo := &memExplanationRepo{}
	userRepo := &memUserRepo{}

	provider := &llm.MockProvider{
		ProviderName: "mock",
		Response:     &llm.Response{Text: mockExplanationJSON, Model: "mock-1"},
	}
	router := llm.NewRouter(logger, provider)

	jwtSvc := service.NewJWTService("router-test-secret", 15*time.Minute, 24*time.Hour)
	authSvc := service.NewAuthService(logger, userRepo, profileRepo, jwtSvc, email.NewDisabledSender("smtp off in tests"))
	assessSvc := service.NewAssessmentService(logger, bank, scorer.New(bank), personas, assessRepo, profileRepo)
	explSvc := service.NewExplanationService(logger, assessRepo, explRepo, personas, router, quota.NewTracker(10, 5))

	limiter := ratelimit.NewMemoryLimiter()
	t.Cleanup(func() { limiter.Close() })

	cfg := &config.Config{RequestTimeout: 10 * time.Second}

	engine := NewRouter(RouterDeps{
		Logger:      logger,
		Config:      cfg,
		Metrics:     metrics.NewCollector(),
		Limiter:     limiter,
		JWT:         jwtSvc,
		Auth:        NewAuthHandler(logger, authSvc),
		Assessments: NewAssessmentHandler(logger, assessSvc, explSvc),
	})

	userID := uuid.NewString()
	pair, err := jwtSvc.GeneratePair(domain.User{ID: userID, Email: "tester@example.com"})
	if err != nil {
		t.Fatalf("generando tokens: %v", err)
	}

	return &testEnv{
		router:      engine,
		bank:        bank,
		assessments: assessRepo,
		provider:    provider,
		jwt:         jwtSvc,
		token:       pair.AccessToken,
		userID:      userID,
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, authed bool) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("serializando body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.Header.Set("Authorization", "Bearer "+e.token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decodificando respuesta %q: %v", w.Body.String(), err)
	}
	return out
}

func fullAnswers(bank *questionbank.Bank, value int) map[string]int {
	answers := make(map[string]int)
	for _, q := range bank.Questions(0) {
		answers[q.ID] = value
	}
	return answers
}

func TestSubmitFullCatalogAllMidpoint(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/v1/assessments", gin.H{"answers": fullAnswers(env.bank, 3)}, true)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, quiero 200: %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)

	if got := body["quiz_type"]; got != "full180" {
		t.Fatalf("quiz_type = %v, quiero full180", got)
	}
	dominant, _ := body["dominant"].(map[string]any)
	if dominant["mbti_proxy"] != "ENFJ" || dominant["personality_code"] != "ENFJ-B" {
		t.Fatalf("dominant = %v, quiero ENFJ / ENFJ-B", dominant)
	}
	ocean, _ := body["ocean"].(map[string]any)
	for _, code := range domain.TraitCodes {
		v, ok := ocean[code].(float64)
		if !ok || v != 0.5 {
			t.Fatalf("ocean %s = %v, quiero 0.5", code, ocean[code])
		}
	}
	traits, _ := body["traits"].(map[string]any)
	if v, ok := traits["Openness"].(float64); !ok || v != 0.5 {
		t.Fatalf("traits.Openness = %v, quiero 0.5", traits["Openness"])
	}
	conf, _ := body["trait_confidence"].(map[string]any)
	if v, ok := conf["Openness"].(float64); !ok || v <= 0 {
		t.Fatalf("trait_confidence.Openness = %v, quiero > 0", conf["Openness"])
	}
	metadata, _ := body["metadata"].(map[string]any)
	if v, ok := metadata["persona_confidence"].(float64); !ok || v <= 0 {
		t.Fatalf("metadata.persona_confidence = %v, quiero > 0", metadata["persona_confidence"])
	}
	if body["is_complete"] != true {
		t.Fatalf("is_complete = %v", body["is_complete"])
	}
	if body["mbti_proxy"] != "ENFJ" {
		t.Fatalf("mbti_proxy = %v", body["mbti_proxy"])
	}
	if body["needs_retake"] != false {
		t.Fatalf("needs_retake = %v con catalogo completo", body["needs_retake"])
	}
	if body["persona_id"] != "enfj" {
		t.Fatalf("persona_id = %v, quiero enfj", body["persona_id"])
	}
}

func TestSubmitUnbalancedReturns400(t *testing.T) {
	env := newTestEnv(t)

	answers := make(map[string]int)
	for _, q := range env.bank.Questions(0) {
		if q.Trait != "O" {
			continue
		}
		answers[q.ID] = 4
		if len(answers) == 10 {
			break
		}
	}

	w := env.do(t, http.MethodPost, "/v1/assessments", gin.H{"answers": answers}, true)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, quiero 400: %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	report, _ := body["report"].(map[string]any)
	missing, _ := report["missing_traits"].([]any)
	if len(missing) != 4 {
		t.Fatalf("missing_traits = %v, quiero 4 rasgos", missing)
	}

	env.assessments.mu.Lock()
	persisted := len(env.assessments.assessments)
	env.assessments.mu.Unlock()
	if persisted != 0 {
		t.Fatalf("se persistieron %d assessments tras un 400", persisted)
	}
}

func TestSubmitRequiresAuth(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodPost, "/v1/assessments", gin.H{"answers": map[string]int{"Q001": 3}}, false)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status sin token = %d, quiero 401", w.Code)
	}
}

func TestGetAssessmentNotFoundAndBadID(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/v1/assessments/"+uuid.NewString(), nil, true)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status con uuid desconocido = %d, quiero 404", w.Code)
	}
	w = env.do(t, http.MethodGet, "/v1/assessments/not-a-uuid", nil, true)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status con id invalido = %d, quiero 400", w.Code)
	}
}

func TestExplanationFlow(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/v1/assessments", gin.H{"answers": fullAnswers(env.bank, 3)}, true)
	if w.Code != http.StatusOK {
		t.Fatalf("submit fallo: %d %s", w.Code, w.Body.String())
	}
	id, _ := decodeBody(t, w)["assessment_id"].(string)
	if id == "" {
		t.Fatal("submit no devolvio assessment_id")
	}

	w = env.do(t, http.MethodGet, fmt.Sprintf("/v1/assessments/%s/explanation", id), nil, true)
	if w.Code != http.StatusNotFound {
		t.Fatalf("explanation antes de generar = %d, quiero 404", w.Code)
	}

	w = env.do(t, http.MethodPost, fmt.Sprintf("/v1/assessments/%s/generate_explanation", id), nil, true)
	if w.Code != http.StatusOK {
		t.Fatalf("generate = %d: %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	if body["persona_title"] != "The Warm Connector" {
		t.Fatalf("persona_title = %v", body["persona_title"])
	}
	if body["is_fallback"] != false {
		t.Fatalf("is_fallback = %v con proveedor sano", body["is_fallback"])
	}
	if env.provider.Calls != 1 {
		t.Fatalf("llamadas al proveedor = %d, quiero 1", env.provider.Calls)
	}

	w = env.do(t, http.MethodGet, fmt.Sprintf("/v1/assessments/%s/explanation", id), nil, true)
	if w.Code != http.StatusOK {
		t.Fatalf("get explanation = %d: %s", w.Code, w.Body.String())
	}
	if got := decodeBody(t, w)["tagline"]; got != "Connection first." {
		t.Fatalf("tagline = %v tras persistir", got)
	}
}

func TestHistoryAndProfile(t *testing.T) {
	env := newTestEnv(t)

	for i := 0; i < 2; i++ {
		w := env.do(t, http.MethodPost, "/v1/assessments", gin.H{"answers": fullAnswers(env.bank, 3)}, true)
		if w.Code != http.StatusOK {
			t.Fatalf("submit %d fallo: %d", i, w.Code)
		}
	}

	w := env.do(t, http.MethodGet, "/v1/assessments/"+env.userID+"/history?page=1&page_size=10", nil, true)
	if w.Code != http.StatusOK {
		t.Fatalf("history = %d: %s", w.Code, w.Body.String())
	}
	if total := decodeBody(t, w)["total"]; total != float64(2) {
		t.Fatalf("total = %v, quiero 2", total)
	}

	w = env.do(t, http.MethodGet, "/v1/profiles/"+env.userID, nil, true)
	if w.Code != http.StatusOK {
		t.Fatalf("profile = %d: %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	if body["current_assessment_id"] == "" {
		t.Fatal("el perfil no apunta a ningun assessment")
	}
	if body["email"] != "tester@example.com" {
		t.Fatalf("email = %v", body["email"])
	}
}

func TestLoginRateLimit(t *testing.T) {
	env := newTestEnv(t)

	payload := gin.H{"email": "nobody@example.com", "password": "whatever123"}
	for i := 0; i < 3; i++ {
		w := env.do(t, http.MethodPost, "/v1/auth/login", payload, false)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("intento %d = %d, quiero 401", i+1, w.Code)
		}
	}
	w := env.do(t, http.MethodPost, "/v1/auth/login", payload, false)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("cuarto intento = %d, quiero 429", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Fatal("falta la cabecera Retry-After en el 429")
	}
}

func TestSignUpAndSignIn(t *testing.T) {
	env := newTestEnv(t)

	creds := gin.H{"email": "New.User@Example.com", "password": "s3cure-pass"}
	w := env.do(t, http.MethodPost, "/v1/auth/signup", creds, false)
	if w.Code != http.StatusOK {
		t.Fatalf("signup = %d: %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	tokens, _ := body["tokens"].(map[string]any)
	if tokens["access_token"] == "" {
		t.Fatal("signup no devolvio access_token")
	}

	w = env.do(t, http.MethodPost, "/v1/auth/signup", creds, false)
	if w.Code != http.StatusConflict {
		t.Fatalf("signup duplicado = %d, quiero 409", w.Code)
	}

	w = env.do(t, http.MethodPost, "/v1/auth/login", gin.H{"email": "new.user@example.com", "password": "s3cure-pass"}, false)
	if w.Code != http.StatusOK {
		t.Fatalf("login = %d: %s", w.Code, w.Body.String())
	}
}

func TestHealthAndMetrics(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/health", nil, false)
	if w.Code != http.StatusOK {
		t.Fatalf("health = %d", w.Code)
	}

	env.do(t, http.MethodGet, "/v1/questions?limit=5", nil, false)

	w = env.do(t, http.MethodGet, "/metrics", nil, false)
	if w.Code != http.StatusOK {
		t.Fatalf("metrics = %d", w.Code)
	}
	process, _ := decodeBody(t, w)["process"].(map[string]any)
	if count, _ := process["request_count"].(float64); count < 2 {
		t.Fatalf("request_count = %v, quiero al menos 2", count)
	}
}

func TestRequestIDPropagation(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/questions", nil)
	req.Header.Set("X-Request-ID", "fixed-id-123")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	if got := w.Header().Get("X-Request-ID"); got != "fixed-id-123" {
		t.Fatalf("X-Request-ID = %q, quiero el propagado", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/questions", nil)
	w = httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	if got := w.Header().Get("X-Request-ID"); got == "" || strings.Contains(got, " ") {
		t.Fatalf("X-Request-ID generado invalido: %q", got)
	}
}

func TestGenerateExplanationRateLimitedPerIP(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/v1/assessments", gin.H{"answers": fullAnswers(env.bank, 3)}, true)
	if w.Code != http.StatusOK {
		t.Fatalf("submit fallo: %d", w.Code)
	}
	id, _ := decodeBody(t, w)["assessment_id"].(string)

	path := fmt.Sprintf("/v1/assessments/%s/generate_explanation", id)
	for i := 0; i < 2; i++ {
		if w := env.do(t, http.MethodPost, path, nil, true); w.Code != http.StatusOK {
			t.Fatalf("generate %d = %d: %s", i+1, w.Code, w.Body.String())
		}
	}
	w = env.do(t, http.MethodPost, path, nil, true)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("tercer generate = %d, quiero 429", w.Code)
	}
	if env.provider.Calls != 2 {
		t.Fatalf("llamadas al proveedor = %d, quiero 2", env.provider.Calls)
	}
}

func TestGetAssessmentWithAbsentTrait(t *testing.T) {
	env := newTestEnv(t)

	half := 0.5
	id := uuid.NewString()
	stored := &domain.Assessment{
		ID:     id,
		UserID: env.userID,
		TraitScores: map[string]*float64{
			"O": &half, "C": &half, "E": &half, "A": &half, "N": nil,
		},
		QuizType:       "quick",
		PersonaID:      "unknown",
		ScoringVersion: "v2.1.0",
	}
	if err := env.assessments.Create(context.Background(), stored); err != nil {
		t.Fatalf("sembrando assessment: %v", err)
	}

	w := env.do(t, http.MethodGet, "/v1/assessments/"+id, nil, true)
	if w.Code != http.StatusOK {
		t.Fatalf("get = %d: %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	traits, _ := body["traits"].(map[string]any)
	if v, present := traits["Neuroticism"]; !present || v != nil {
		t.Fatalf("Neuroticism = %v, quiero null explicito", v)
	}
	if body["mbti_proxy"] != nil {
		t.Fatalf("mbti_proxy = %v con perfil incompleto", body["mbti_proxy"])
	}
	if body["is_complete"] != false {
		t.Fatalf("is_complete = %v", body["is_complete"])
	}
}
