package crm

// ClientStatus represents the lifecycle status of a client.
// Values are the current localized display values; older rows may still
// carry the legacy English constants and are canonicalized on read.
type ClientStatus string

const (
	ClientStatusActive   ClientStatus = "פעיל"
	ClientStatusInactive ClientStatus = "לא פעיל"
	ClientStatusFrozen   ClientStatus = "מוקפא"
)

// legacyClientStatuses maps legacy stored values to their canonical form.
var legacyClientStatuses = map[string]ClientStatus{
	"Active":   ClientStatusActive,
	"active":   ClientStatusActive,
	"Inactive": ClientStatusInactive,
	"inactive": ClientStatusInactive,
	"Churned":  ClientStatusInactive,
	"Frozen":   ClientStatusFrozen,
	"Paused":   ClientStatusFrozen,
}

// CanonicalClientStatus maps a stored status value to its canonical form.
// Unrecognized values pass through unchanged.
func CanonicalClientStatus(raw string) ClientStatus {
	if canonical, ok := legacyClientStatuses[raw]; ok {
		return canonical
	}
	return ClientStatus(raw)
}

// ClientStatusAliases returns the canonical value plus every legacy alias
// that canonicalizes to it, for use in stored-value filters.
func ClientStatusAliases(s ClientStatus) []string {
	values := []string{string(s)}
	for legacy, canonical := range legacyClientStatuses {
		if canonical == s {
			values = append(values, legacy)
		}
	}
	return values
}

// IsValidClientStatus reports whether s is one of the canonical values
func IsValidClientStatus(s ClientStatus) bool {
	switch s {
	case ClientStatusActive, ClientStatusInactive, ClientStatusFrozen:
		return true
	}
	return false
}

// LeadStatus represents the pipeline status of a lead
type LeadStatus string

const (
	LeadStatusNew        LeadStatus = "חדש"
	LeadStatusInProgress LeadStatus = "בטיפול"
	LeadStatusProposal   LeadStatus = "הצעה נשלחה"
	LeadStatusWon        LeadStatus = "הפך ללקוח"
	LeadStatusLost       LeadStatus = "אבוד"
)

var legacyLeadStatuses = map[string]LeadStatus{
	"New":           LeadStatusNew,
	"new":           LeadStatusNew,
	"In Progress":   LeadStatusInProgress,
	"Contacted":     LeadStatusInProgress,
	"Proposal Sent": LeadStatusProposal,
	"Proposal":      LeadStatusProposal,
	"Won":           LeadStatusWon,
	"Converted":     LeadStatusWon,
	"Lost":          LeadStatusLost,
	"lost":          LeadStatusLost,
}

// CanonicalLeadStatus maps a stored lead status to its canonical form.
// Unrecognized values pass through unchanged.
func CanonicalLeadStatus(raw string) LeadStatus {
	if canonical, ok := legacyLeadStatuses[raw]; ok {
		return canonical
	}
	return LeadStatus(raw)
}

// LeadStatusAliases returns the canonical value plus every legacy alias
// that canonicalizes to it, for use in stored-value filters.
func LeadStatusAliases(s LeadStatus) []string {
	values := []string{string(s)}
	for legacy, canonical := range legacyLeadStatuses {
		if canonical == s {
			values = append(values, legacy)
		}
	}
	return values
}

// IsValidLeadStatus reports whether s is one of the canonical values
func IsValidLeadStatus(s LeadStatus) bool {
	switch s {
	case LeadStatusNew, LeadStatusInProgress, LeadStatusProposal, LeadStatusWon, LeadStatusLost:
		return true
	}
	return false
}

// IsTerminal reports whether the lead status ends the pipeline
func (s LeadStatus) IsTerminal() bool {
	return s == LeadStatusWon || s == LeadStatusLost
}
