package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/cqox-backend/internal/data/aggregates"
	pkgerrors "github.com/yungbote/cqox-backend/internal/pkg/errors"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.AbortWithStatusJSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// RespondServiceError maps service errors onto status codes. Anything
// unrecognized is a 500 with a generic message.
func RespondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, pkgerrors.ErrInvalidArgument):
		RespondError(c, http.StatusBadRequest, "invalid_argument", err)
	case errors.Is(err, pkgerrors.ErrNotFound):
		RespondError(c, http.StatusNotFound, "not_found", err)
	case errors.Is(err, pkgerrors.ErrAlreadyRecorded):
		RespondError(c, http.StatusConflict, "already_recorded", err)
	case aggregates.IsCode(err, aggregates.CodeConflict):
		RespondError(c, http.StatusConflict, "conflict", err)
	case aggregates.IsCode(err, aggregates.CodeRetryable):
		RespondError(c, http.StatusServiceUnavailable, "retryable", err)
	default:
		_ = c.Error(err)
		RespondError(c, http.StatusInternalServerError, "internal", errors.New("internal error"))
	}
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}
