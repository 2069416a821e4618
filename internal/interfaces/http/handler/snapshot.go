package handler

import (
	"io"
	"net/http"

	"github.com/agencycrm/backend/internal/application/snapshot"
	"github.com/gin-gonic/gin"
)

// SnapshotHandler exposes full-dataset load, export and import
type SnapshotHandler struct {
	BaseHandler
	snapshot *snapshot.Service
}

// NewSnapshotHandler creates a snapshot handler
func NewSnapshotHandler(snapshot *snapshot.Service) *SnapshotHandler {
	return &SnapshotHandler{snapshot: snapshot}
}

// Load handles POST /snapshot/load, refreshing the in-memory cache
// from the database
func (h *SnapshotHandler) Load(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant not resolved")
		return
	}

	if err := h.snapshot.Load(c.Request.Context(), tenantID); err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.NoContent(c)
}

// Export handles GET /snapshot/export. The body is the flat JSON
// document itself, served as a download.
func (h *SnapshotHandler) Export(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant not resolved")
		return
	}

	data, err := h.snapshot.Export(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="crm-export.json"`)
	c.Data(http.StatusOK, "application/json", data)
}

// Import handles POST /snapshot/import with the flat JSON document as
// the request body
func (h *SnapshotHandler) Import(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant not resolved")
		return
	}

	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.BadRequest(c, "Failed to read request body")
		return
	}
	if len(data) == 0 {
		h.BadRequest(c, "Empty import document")
		return
	}

	if err := h.snapshot.Import(c.Request.Context(), tenantID, data); err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.NoContent(c)
}
