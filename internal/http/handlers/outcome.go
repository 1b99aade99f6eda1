package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	types "github.com/yungbote/cqox-backend/internal/domain/emotion"
	"github.com/yungbote/cqox-backend/internal/http/response"
	"github.com/yungbote/cqox-backend/internal/services"
)

type OutcomeHandler struct {
	outcomes services.OutcomeService
}

func NewOutcomeHandler(outcomes services.OutcomeService) *OutcomeHandler {
	return &OutcomeHandler{outcomes: outcomes}
}

// The six scores are required; pointers tell "missing" apart from zero.
type recordOutcomeRequest struct {
	StressDuring           *int                   `json:"stress_during" binding:"required"`
	StressAfter            *int                   `json:"stress_after" binding:"required"`
	CryingLevel            *int                   `json:"crying_level" binding:"required"`
	SpeechBlockLevel       *int                   `json:"speech_block_level" binding:"required"`
	ExpressionScore        *int                   `json:"expression_score" binding:"required"`
	RelationshipImpact     *int                   `json:"relationship_impact" binding:"required"`
	PartnerReaction        *types.PartnerReaction `json:"partner_reaction"`
	DaysAfterReflection    *int                   `json:"days_after_reflection"`
	WouldRepeatPreparation *int                   `json:"would_repeat_preparation"`
	ReflectionShort        *string                `json:"reflection_short"`
}

func (r recordOutcomeRequest) input() services.OutcomeInput {
	return services.OutcomeInput{
		StressDuring:           *r.StressDuring,
		StressAfter:            *r.StressAfter,
		CryingLevel:            *r.CryingLevel,
		SpeechBlockLevel:       *r.SpeechBlockLevel,
		ExpressionScore:        *r.ExpressionScore,
		RelationshipImpact:     *r.RelationshipImpact,
		PartnerReaction:        r.PartnerReaction,
		DaysAfterReflection:    r.DaysAfterReflection,
		WouldRepeatPreparation: r.WouldRepeatPreparation,
		ReflectionShort:        r.ReflectionShort,
	}
}

// POST /api/users/:user_id/episodes/:episode_id/outcome
func (h *OutcomeHandler) RecordOutcome(c *gin.Context) {
	userID, ok := userParam(c)
	if !ok {
		return
	}
	episodeID, ok := uuidParam(c, "episode_id")
	if !ok {
		return
	}
	var req recordOutcomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	row, err := h.outcomes.RecordOutcome(c.Request.Context(), userID, episodeID, req.input())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, row)
}
