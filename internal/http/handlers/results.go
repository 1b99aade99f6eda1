package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/cqox-backend/internal/http/response"
	"github.com/yungbote/cqox-backend/internal/services"
)

type ResultsHandler struct {
	results services.ResultsService
}

func NewResultsHandler(results services.ResultsService) *ResultsHandler {
	return &ResultsHandler{results: results}
}

// GET /api/users/:user_id/treatment-effects
func (h *ResultsHandler) ListTreatmentEffects(c *gin.Context) {
	userID, ok := userParam(c)
	if !ok {
		return
	}
	rows, err := h.results.TreatmentEffects(c.Request.Context(), userID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"effects": rows})
}

// GET /api/users/:user_id/path-summary
func (h *ResultsHandler) GetPathSummary(c *gin.Context) {
	userID, ok := userParam(c)
	if !ok {
		return
	}
	row, err := h.results.PathSummary(c.Request.Context(), userID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, row)
}

// GET /api/users/:user_id/path-partners
func (h *ResultsHandler) ListPathPartners(c *gin.Context) {
	userID, ok := userParam(c)
	if !ok {
		return
	}
	rows, err := h.results.PartnerSummaries(c.Request.Context(), userID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"partners": rows})
}
