package handler

import (
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/agencycrm/backend/internal/infrastructure/storage"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// FileHandler exposes blob upload, listing, signed download URLs and
// deletion over the configured object store
type FileHandler struct {
	BaseHandler
	blobs storage.BlobStorage
}

// NewFileHandler creates a file handler
func NewFileHandler(blobs storage.BlobStorage) *FileHandler {
	return &FileHandler{blobs: blobs}
}

// FileInfoResponse describes a stored file
type FileInfoResponse struct {
	Key          string    `json:"key"`
	Name         string    `json:"name"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
}

// SignedURLResponse carries a time-limited download URL
type SignedURLResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UploadResponse reports the key of a stored file
type UploadResponse struct {
	Key string `json:"key"`
}

// perEntity reports whether a namespace keys files under an owning
// client or lead
func perEntity(namespace string) bool {
	return namespace == storage.NamespaceContracts || namespace == storage.NamespaceRecordings
}

func validNamespace(namespace string) bool {
	switch namespace {
	case storage.NamespaceContracts, storage.NamespaceRecordings,
		storage.NamespaceReceipts, storage.NamespaceKnowledge, storage.NamespaceLogos:
		return true
	}
	return false
}

// buildKey places an uploaded file in its namespace. Logos ignore the
// entity and key on the tenant instead.
func buildKey(namespace string, tenantID uuid.UUID, entityID uuid.UUID, filename string, now time.Time) string {
	switch namespace {
	case storage.NamespaceContracts:
		return storage.ContractKey(entityID, now, filename)
	case storage.NamespaceRecordings:
		return storage.RecordingKey(entityID, now, filename)
	case storage.NamespaceReceipts:
		return storage.ReceiptKey(now, filename)
	case storage.NamespaceKnowledge:
		return storage.KnowledgeKey(now, filename)
	case storage.NamespaceLogos:
		return storage.LogoKey(tenantID, now, filepath.Ext(filename))
	}
	return ""
}

// Upload handles POST /files/:namespace as a multipart form with a
// "file" part. Contracts and recordings also require an entity_id field.
func (h *FileHandler) Upload(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant not resolved")
		return
	}

	namespace := c.Param("namespace")
	if !validNamespace(namespace) {
		h.BadRequest(c, "Unknown file namespace")
		return
	}

	var entityID uuid.UUID
	if perEntity(namespace) {
		entityID, err = uuid.Parse(c.PostForm("entity_id"))
		if err != nil {
			h.BadRequest(c, "Invalid entity ID")
			return
		}
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.BadRequest(c, "Missing file")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.BadRequest(c, "Failed to read file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.BadRequest(c, "Failed to read file")
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := buildKey(namespace, tenantID, entityID, fileHeader.Filename, time.Now())
	if err := h.blobs.Upload(c.Request.Context(), key, data, contentType); err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, UploadResponse{Key: key})
}

// List handles GET /files/:namespace. Contracts and recordings require
// an entity_id query parameter; logos list the tenant's own prefix.
func (h *FileHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant not resolved")
		return
	}

	namespace := c.Param("namespace")
	if !validNamespace(namespace) {
		h.BadRequest(c, "Unknown file namespace")
		return
	}

	var prefix string
	switch {
	case perEntity(namespace):
		entityID, err := uuid.Parse(c.Query("entity_id"))
		if err != nil {
			h.BadRequest(c, "Invalid entity ID")
			return
		}
		prefix = storage.EntityPrefix(namespace, entityID)
	case namespace == storage.NamespaceLogos:
		prefix = storage.TenantLogoPrefix(tenantID)
	default:
		prefix = namespace + "/"
	}

	objects, err := h.blobs.List(c.Request.Context(), prefix)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	out := make([]FileInfoResponse, len(objects))
	for i, obj := range objects {
		out[i] = FileInfoResponse{
			Key:          obj.Key,
			Name:         displayName(obj.Key),
			Size:         obj.Size,
			LastModified: obj.LastModified,
		}
	}
	h.Success(c, out)
}

// SignedURL handles GET /files/signed-url?key=...
func (h *FileHandler) SignedURL(c *gin.Context) {
	if _, err := getTenantID(c); err != nil {
		h.Unauthorized(c, "Tenant not resolved")
		return
	}

	key := c.Query("key")
	if !validKey(key) {
		h.BadRequest(c, "Invalid file key")
		return
	}

	url, expiresAt, err := h.blobs.SignedURL(c.Request.Context(), key)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, SignedURLResponse{URL: url, ExpiresAt: expiresAt})
}

// Delete handles DELETE /files?key=...
func (h *FileHandler) Delete(c *gin.Context) {
	if _, err := getTenantID(c); err != nil {
		h.Unauthorized(c, "Tenant not resolved")
		return
	}

	key := c.Query("key")
	if !validKey(key) {
		h.BadRequest(c, "Invalid file key")
		return
	}

	if err := h.blobs.Delete(c.Request.Context(), key); err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.NoContent(c)
}

// validKey accepts only keys rooted in a known namespace with no path
// traversal
func validKey(key string) bool {
	if key == "" || strings.Contains(key, "..") {
		return false
	}
	namespace, _, found := strings.Cut(key, "/")
	return found && validNamespace(namespace)
}

// displayName strips the namespace path and timestamp prefix from a key
func displayName(key string) string {
	name := key
	if idx := strings.LastIndex(key, "/"); idx >= 0 {
		name = key[idx+1:]
	}
	if _, rest, found := strings.Cut(name, "_"); found {
		return rest
	}
	return name
}
