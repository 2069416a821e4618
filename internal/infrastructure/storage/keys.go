package storage

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Namespace prefixes. Contracts and recordings are keyed per owning
// entity, receipts and knowledge are flat per tenant bucket, logos are
// keyed per tenant with a fixed name.
const (
	NamespaceContracts  = "contracts"
	NamespaceRecordings = "recordings"
	NamespaceReceipts   = "receipts"
	NamespaceKnowledge  = "knowledge"
	NamespaceLogos      = "logos"
)

// sanitizeName strips path separators and whitespace so user-supplied
// filenames cannot escape their namespace
func sanitizeName(name string) string {
	name = strings.TrimSpace(name)
	replacer := strings.NewReplacer("/", "_", "\\", "_", " ", "_")
	name = replacer.Replace(name)
	if name == "" {
		name = "file"
	}
	return name
}

// ContractKey builds the object key for a contract file owned by a
// client or lead
func ContractKey(entityID uuid.UUID, at time.Time, name string) string {
	return fmt.Sprintf("%s/%s/%d_%s", NamespaceContracts, entityID, at.UnixMilli(), sanitizeName(name))
}

// RecordingKey builds the object key for a call recording
func RecordingKey(entityID uuid.UUID, at time.Time, name string) string {
	return fmt.Sprintf("%s/%s/%d_%s", NamespaceRecordings, entityID, at.UnixMilli(), sanitizeName(name))
}

// ReceiptKey builds the object key for an expense receipt
func ReceiptKey(at time.Time, name string) string {
	return fmt.Sprintf("%s/%d_%s", NamespaceReceipts, at.UnixMilli(), sanitizeName(name))
}

// KnowledgeKey builds the object key for a knowledge-base document
func KnowledgeKey(at time.Time, name string) string {
	return fmt.Sprintf("%s/%d_%s", NamespaceKnowledge, at.UnixMilli(), sanitizeName(name))
}

// LogoKey builds the object key for a tenant's agency logo
func LogoKey(tenantID uuid.UUID, at time.Time, ext string) string {
	ext = strings.TrimPrefix(sanitizeName(ext), ".")
	return fmt.Sprintf("%s/%s/logo_%d.%s", NamespaceLogos, tenantID, at.UnixMilli(), ext)
}

// EntityPrefix returns the list prefix for an entity's files in a
// per-entity namespace
func EntityPrefix(namespace string, entityID uuid.UUID) string {
	return fmt.Sprintf("%s/%s/", namespace, entityID)
}

// TenantLogoPrefix returns the list prefix for a tenant's logos
func TenantLogoPrefix(tenantID uuid.UUID) string {
	return fmt.Sprintf("%s/%s/", NamespaceLogos, tenantID)
}
