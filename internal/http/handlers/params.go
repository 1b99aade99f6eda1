package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/cqox-backend/internal/http/response"
	"github.com/yungbote/cqox-backend/internal/platform/ctxutil"
)

// uuidParam parses a path parameter, writing a 400 on failure.
func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	raw := c.Param(name)
	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_"+name, fmt.Errorf("invalid %s %q", name, raw))
		return uuid.Nil, false
	}
	return id, true
}

func userParam(c *gin.Context) (uuid.UUID, bool) {
	id, ok := uuidParam(c, "user_id")
	if ok {
		if rd := ctxutil.GetRequestData(c.Request.Context()); rd != nil {
			rd.UserID = id.String()
		}
	}
	return id, ok
}
