package handler

import (
	"strconv"
	"time"

	appaudit "github.com/agencycrm/backend/internal/application/audit"
	"github.com/agencycrm/backend/internal/domain/audit"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ActivityHandler exposes the recent activity feed
type ActivityHandler struct {
	BaseHandler
	activity *appaudit.ActivityLogger
}

// NewActivityHandler creates an activity handler
func NewActivityHandler(activity *appaudit.ActivityLogger) *ActivityHandler {
	return &ActivityHandler{activity: activity}
}

// ActivityResponse is the activity entry representation returned to callers
type ActivityResponse struct {
	ID          uuid.UUID  `json:"id"`
	ActionType  string     `json:"action_type"`
	EntityType  string     `json:"entity_type"`
	EntityID    *uuid.UUID `json:"entity_id,omitempty"`
	Description string     `json:"description"`
	CreatedAt   time.Time  `json:"created_at"`
}

func toActivityResponse(e *audit.ActivityEntry) ActivityResponse {
	return ActivityResponse{
		ID:          e.ID,
		ActionType:  string(e.ActionType),
		EntityType:  e.EntityType,
		EntityID:    e.EntityID,
		Description: e.Description,
		CreatedAt:   e.CreatedAt,
	}
}

// Recent handles GET /activity. The limit query parameter is clamped
// to the local ring capacity.
func (h *ActivityHandler) Recent(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant not resolved")
		return
	}

	limit := audit.LocalLogCapacity
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			h.BadRequest(c, "Invalid limit")
			return
		}
		if parsed < limit {
			limit = parsed
		}
	}

	entries, err := h.activity.Recent(c.Request.Context(), tenantID, limit)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	out := make([]ActivityResponse, len(entries))
	for i := range entries {
		out[i] = toActivityResponse(&entries[i])
	}
	h.Success(c, out)
}
