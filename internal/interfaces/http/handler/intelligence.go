package handler

import (
	appintel "github.com/agencycrm/backend/internal/application/intelligence"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// IntelligenceHandler exposes notes and the AI record collections
// (transcripts, recommendations, messages, plans, reports, signals)
type IntelligenceHandler struct {
	BaseHandler
	notes   *appintel.NoteService
	records *appintel.RecordsService
}

// NewIntelligenceHandler creates an intelligence handler
func NewIntelligenceHandler(notes *appintel.NoteService, records *appintel.RecordsService) *IntelligenceHandler {
	return &IntelligenceHandler{notes: notes, records: records}
}

func (h *IntelligenceHandler) bindParentQuery(c *gin.Context) (appintel.ParentRequest, bool) {
	var req appintel.ParentRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return req, false
	}
	return req, true
}

// CreateNote handles POST /notes
func (h *IntelligenceHandler) CreateNote(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant not resolved")
		return
	}

	var req appintel.CreateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request format: "+err.Error())
		return
	}

	resp, err := h.notes.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, resp)
}

// ListNotes handles GET /notes filtered by client_id or lead_id
func (h *IntelligenceHandler) ListNotes(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant not resolved")
		return
	}

	req, ok := h.bindParentQuery(c)
	if !ok {
		return
	}

	notes, err := h.notes.ListByParent(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, notes)
}

// DeleteNote handles DELETE /notes/:id
func (h *IntelligenceHandler) DeleteNote(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant not resolved")
		return
	}

	noteID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid note ID")
		return
	}

	if err := h.notes.Delete(c.Request.Context(), tenantID, noteID); err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.NoContent(c)
}

// CreateTranscript handles POST /transcripts
func (h *IntelligenceHandler) CreateTranscript(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant not resolved")
		return
	}

	var req appintel.CreateTranscriptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request format: "+err.Error())
		return
	}

	resp, err := h.records.AddTranscript(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, resp)
}

// ListTranscripts handles GET /transcripts
func (h *IntelligenceHandler) ListTranscripts(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant not resolved")
		return
	}

	req, ok := h.bindParentQuery(c)
	if !ok {
		return
	}

	rows, err := h.records.ListTranscripts(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, rows)
}

// CreateRecommendation handles POST /recommendations
func (h *IntelligenceHandler) CreateRecommendation(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant not resolved")
		return
	}

	var req appintel.CreateRecommendationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request format: "+err.Error())
		return
	}

	resp, err := h.records.AddRecommendation(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, resp)
}

// ListRecommendations handles GET /recommendations
func (h *IntelligenceHandler) ListRecommendations(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant not resolved")
		return
	}

	req, ok := h.bindParentQuery(c)
	if !ok {
		return
	}

	rows, err := h.records.ListRecommendations(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, rows)
}

// CreateMessage handles POST /messages
func (h *IntelligenceHandler) CreateMessage(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant not resolved")
		return
	}

	var req appintel.CreateMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request format: "+err.Error())
		return
	}

	resp, err := h.records.AddMessage(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, resp)
}

// ListMessages handles GET /messages
func (h *IntelligenceHandler) ListMessages(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant not resolved")
		return
	}

	req, ok := h.bindParentQuery(c)
	if !ok {
		return
	}

	rows, err := h.records.ListMessages(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, rows)
}

// MarkMessageSent handles POST /messages/:id/sent
func (h *IntelligenceHandler) MarkMessageSent(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant not resolved")
		return
	}

	messageID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid message ID")
		return
	}

	resp, err := h.records.MarkMessageSent(c.Request.Context(), tenantID, messageID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, resp)
}

// CreateStrategyPlan handles POST /strategy-plans
func (h *IntelligenceHandler) CreateStrategyPlan(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant not resolved")
		return
	}

	var req appintel.CreateStrategyPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request format: "+err.Error())
		return
	}

	resp, err := h.records.AddStrategyPlan(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, resp)
}

// ListStrategyPlans handles GET /strategy-plans
func (h *IntelligenceHandler) ListStrategyPlans(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant not resolved")
		return
	}

	req, ok := h.bindParentQuery(c)
	if !ok {
		return
	}

	rows, err := h.records.ListStrategyPlans(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, rows)
}

// CreateCompetitorReport handles POST /competitor-reports
func (h *IntelligenceHandler) CreateCompetitorReport(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant not resolved")
		return
	}

	var req appintel.CreateCompetitorReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request format: "+err.Error())
		return
	}

	resp, err := h.records.AddCompetitorReport(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, resp)
}

// ListCompetitorReports handles GET /competitor-reports
func (h *IntelligenceHandler) ListCompetitorReports(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant not resolved")
		return
	}

	req, ok := h.bindParentQuery(c)
	if !ok {
		return
	}

	rows, err := h.records.ListCompetitorReports(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, rows)
}

// CreateSignal handles POST /signals
func (h *IntelligenceHandler) CreateSignal(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant not resolved")
		return
	}

	var req appintel.CreateSignalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request format: "+err.Error())
		return
	}

	resp, err := h.records.AddSignal(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, resp)
}

// ListSignals handles GET /signals
func (h *IntelligenceHandler) ListSignals(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant not resolved")
		return
	}

	req, ok := h.bindParentQuery(c)
	if !ok {
		return
	}

	rows, err := h.records.ListSignals(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, rows)
}
