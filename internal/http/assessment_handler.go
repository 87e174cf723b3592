package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lifesync-engine/internal/domain"
	"lifesync-engine/internal/quota"
	"lifesync-engine/internal/service"
	"lifesync-engine/internal/validators"
)

// AssessmentHandler expone los endpoints de assessments y explicaciones.
type AssessmentHandler struct {
	logger       *zap.Logger
	assessments  *service.AssessmentService
	explanations *service.ExplanationService
}

func NewAssessmentHandler(logger *zap.Logger, assessments *service.AssessmentService, explanations *service.ExplanationService) *AssessmentHandler {
	return &AssessmentHandler{
		logger:       logger,
		assessments:  assessments,
		explanations: explanations,
	}
}

// Submit maneja POST /v1/assessments.
func (h *AssessmentHandler) Submit(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorBody(c, gin.H{"error": "unauthorized"}))
		return
	}

	var req struct {
		QuizType string         `json:"quiz_type"`
		Answers  map[string]int `json:"answers" binding:"required"`
		Platform string         `json:"platform"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, errorBody(c, gin.H{"error": "invalid payload"}))
		return
	}

	a, err := h.assessments.Submit(c.Request.Context(), service.SubmitInput{
		UserID:   claims.UserID,
		Email:    claims.Email,
		QuizType: req.QuizType,
		Answers:  req.Answers,
		Platform: validators.SanitizeText(req.Platform),
	})
	if err != nil {
		h.renderSubmitError(c, err)
		return
	}
	c.JSON(http.StatusOK, serializeAssessment(a))
}

func (h *AssessmentHandler) renderSubmitError(c *gin.Context, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, errorBody(c, gin.H{
			"error":  "responses failed validation",
			"report": verr.Report,
		}))
	case errors.Is(err, domain.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, errorBody(c, gin.H{"error": err.Error()}))
	default:
		h.logger.Error("submit failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, errorBody(c, gin.H{"error": "internal error"}))
	}
}

// Sync maneja POST /v1/assessments/sync.
func (h *AssessmentHandler) Sync(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorBody(c, gin.H{"error": "unauthorized"}))
		return
	}

	var req struct {
		Items []service.SyncItem `json:"items" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Items) == 0 {
		c.JSON(http.StatusUnprocessableEntity, errorBody(c, gin.H{"error": "invalid payload"}))
		return
	}

	results := h.assessments.Sync(c.Request.Context(), claims.UserID, claims.Email, req.Items)
	c.JSON(http.StatusOK, gin.H{"results": results})
}

// Get maneja GET /v1/assessments/:id.
func (h *AssessmentHandler) Get(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorBody(c, gin.H{"error": "unauthorized"}))
		return
	}
	id, err := validators.UUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorBody(c, gin.H{"error": "invalid assessment id"}))
		return
	}

	a, err := h.assessments.Get(c.Request.Context(), claims.UserID, id)
	if err != nil {
		h.renderLookupError(c, err)
		return
	}
	c.JSON(http.StatusOK, serializeAssessment(a))
}

// History maneja GET /v1/assessments/:id/history, donde :id es el usuario.
// Solo el dueño del token puede leer su propio historial; cualquier otro
// id responde 404 para no filtrar existencia.
func (h *AssessmentHandler) History(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorBody(c, gin.H{"error": "unauthorized"}))
		return
	}
	userID, err := validators.UUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorBody(c, gin.H{"error": "invalid user id"}))
		return
	}
	if userID != claims.UserID {
		c.JSON(http.StatusNotFound, errorBody(c, gin.H{"error": "not found"}))
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	history, err := h.assessments.History(c.Request.Context(), claims.UserID, page, pageSize)
	if err != nil {
		h.logger.Error("history failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, errorBody(c, gin.H{"error": "internal error"}))
		return
	}
	c.JSON(http.StatusOK, history)
}

// GenerateExplanation maneja POST /v1/assessments/:id/generate_explanation.
func (h *AssessmentHandler) GenerateExplanation(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorBody(c, gin.H{"error": "unauthorized"}))
		return
	}
	id, err := validators.UUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorBody(c, gin.H{"error": "invalid assessment id"}))
		return
	}

	explanation, err := h.explanations.Generate(c.Request.Context(), claims.UserID, id)
	if err != nil {
		if errors.Is(err, quota.ErrQuotaExceeded) {
			c.JSON(http.StatusTooManyRequests, errorBody(c, gin.H{
				"error": err.Error(),
				"quota": h.explanations.QuotaStats(claims.UserID),
			}))
			return
		}
		h.renderLookupError(c, err)
		return
	}
	c.JSON(http.StatusOK, explanation)
}

// GetExplanation maneja GET /v1/assessments/:id/explanation.
func (h *AssessmentHandler) GetExplanation(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorBody(c, gin.H{"error": "unauthorized"}))
		return
	}
	id, err := validators.UUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorBody(c, gin.H{"error": "invalid assessment id"}))
		return
	}

	explanation, err := h.explanations.Get(c.Request.Context(), claims.UserID, id)
	if err != nil {
		h.renderLookupError(c, err)
		return
	}
	c.JSON(http.StatusOK, explanation)
}

// Questions maneja GET /v1/questions. Acepta ?limit=30 para el quiz corto.
func (h *AssessmentHandler) Questions(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	questions := h.assessments.Questions(limit)
	c.JSON(http.StatusOK, gin.H{"questions": questions, "count": len(questions)})
}

// Profile maneja GET /v1/profiles/:user_id. Mismo criterio que History:
// el id debe coincidir con el token.
func (h *AssessmentHandler) Profile(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorBody(c, gin.H{"error": "unauthorized"}))
		return
	}
	userID, err := validators.UUID(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorBody(c, gin.H{"error": "invalid user id"}))
		return
	}
	if userID != claims.UserID {
		c.JSON(http.StatusNotFound, errorBody(c, gin.H{"error": "not found"}))
		return
	}
	p, err := h.assessments.Profile(c.Request.Context(), claims.UserID)
	if err != nil {
		h.renderLookupError(c, err)
		return
	}
	resp := gin.H{
		"user_id":               p.UserID,
		"profile_id":            p.ProfileID,
		"email":                 p.Email,
		"current_assessment_id": p.CurrentAssessmentID,
		"updated_at":            p.UpdatedAt,
	}
	if p.CurrentAssessment != nil {
		resp["current_assessment"] = serializeAssessment(p.CurrentAssessment)
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AssessmentHandler) renderLookupError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrAssessmentNotFound),
		errors.Is(err, domain.ErrProfileNotFound),
		errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, errorBody(c, gin.H{"error": "not found"}))
	default:
		h.logger.Error("lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, errorBody(c, gin.H{"error": "internal error"}))
	}
}

// serializeAssessment produce la forma canonica del recurso: traits por
// letra con null para ausentes y el bloque dominant separado.
func serializeAssessment(a *domain.Assessment) gin.H {
	ocean := make(map[string]float64, len(domain.TraitCodes))
	traits := make(map[string]*float64, len(domain.TraitCodes))
	withData := make([]string, 0, len(domain.TraitCodes))
	for _, code := range domain.TraitCodes {
		v := a.TraitScores[code]
		traits[domain.TraitNames[code]] = v
		if v != nil {
			ocean[code] = *v
			withData = append(withData, code)
		} else {
			ocean[code] = 0.0
		}
	}

	var mbtiProxy, personalityCode any
	if a.MBTICode != "" {
		mbtiProxy = trimPersonalityCode(a.MBTICode)
		personalityCode = a.MBTICode
	}

	return gin.H{
		"assessment_id": a.ID,
		"created_at":    a.CreatedAt,
		"quiz_type":     a.QuizType,
		"ocean":         ocean,
		"mbti_proxy":    mbtiProxy,
		"dominant": gin.H{
			"mbti_proxy":       mbtiProxy,
			"personality_code": personalityCode,
		},
		"persona_id":          a.PersonaID,
		"confidence":          a.Confidence,
		"traits":              traits,
		"trait_confidence":    a.TraitConfidence,
		"facets":              a.FacetScores,
		"facet_confidence":    a.FacetConfidence,
		"is_complete":         len(withData) == len(domain.TraitCodes),
		"traits_with_data":    withData,
		"scoring_version":     a.ScoringVersion,
		"needs_retake":        a.NeedsRetake,
		"needs_retake_reason": a.NeedsRetakeReason,
		"metadata":            a.Metadata,
	}
}

// trimPersonalityCode separa el proxy MBTI del codigo completo XXXX-Y.
func trimPersonalityCode(code string) string {
	if len(code) >= 4 {
		return code[:4]
	}
	return code
}
