package crm

import (
	"regexp"
	"time"

	"github.com/agencycrm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Client represents an agency client. It is the aggregate root that owns
// the client's deals, expenses, payments and intelligence records.
type Client struct {
	shared.TenantAggregateRoot
	Name                string          `gorm:"type:varchar(200);not null"`
	Company             string          `gorm:"type:varchar(200)"`
	Phone               string          `gorm:"type:varchar(50);index"`
	Email               string          `gorm:"type:varchar(200);index"`
	Status              ClientStatus    `gorm:"type:varchar(50);not null"`
	Rating              int             `gorm:"not null;default:0;check:rating >= 0"`
	MonthlyRetainer     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	SupplierCostMonthly decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ServiceKeys         []string        `gorm:"-"`
	AssignedTo          string          `gorm:"type:varchar(100)"`
	Notes               string          `gorm:"type:text"`
	JoinedAt            time.Time       `gorm:"not null"`
	ChurnedAt           *time.Time
	NextReviewAt        *time.Time
}

// TableName returns the table name for GORM
func (Client) TableName() string {
	return "clients"
}

// NewClient creates a new client with required fields
func NewClient(tenantID uuid.UUID, name string) (*Client, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}

	client := &Client{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		Status:              ClientStatusActive,
		MonthlyRetainer:     decimal.Zero,
		SupplierCostMonthly: decimal.Zero,
		ServiceKeys:         []string{},
		JoinedAt:            time.Now(),
	}

	client.AddDomainEvent(NewClientCreatedEvent(client))

	return client, nil
}

// SetContact sets the client's contact information
func (c *Client) SetContact(company, phone, email string) error {
	if phone != "" {
		if err := validatePhone(phone); err != nil {
			return err
		}
	}
	if email != "" {
		if err := validateEmail(email); err != nil {
			return err
		}
	}

	c.Company = company
	c.Phone = phone
	c.Email = email
	c.touch()

	return nil
}

// Rename changes the client's display name
func (c *Client) Rename(name string) error {
	if err := validateName(name); err != nil {
		return err
	}
	c.Name = name
	c.touch()
	return nil
}

// SetStatus sets the lifecycle status. Input is canonicalized first so
// legacy callers keep working; only canonical values are accepted.
func (c *Client) SetStatus(status ClientStatus) error {
	canonical := CanonicalClientStatus(string(status))
	if !IsValidClientStatus(canonical) {
		return shared.NewDomainError("INVALID_STATUS", "Unknown client status")
	}

	oldStatus := c.Status
	c.Status = canonical
	if canonical == ClientStatusInactive && c.ChurnedAt == nil {
		now := time.Now()
		c.ChurnedAt = &now
	}
	c.touch()

	if oldStatus != canonical {
		c.AddDomainEvent(NewClientStatusChangedEvent(c, oldStatus, canonical))
	}

	return nil
}

// SetRating sets the client rating (0-5)
func (c *Client) SetRating(rating int) error {
	if rating < 0 || rating > 5 {
		return shared.NewDomainError("INVALID_RATING", "Rating must be between 0 and 5")
	}
	c.Rating = rating
	c.touch()
	return nil
}

// SetRetainer sets the monthly retainer and supplier cost
func (c *Client) SetRetainer(retainer, supplierCost decimal.Decimal) error {
	if retainer.IsNegative() {
		return shared.NewDomainError("INVALID_RETAINER", "Monthly retainer cannot be negative")
	}
	if supplierCost.IsNegative() {
		return shared.NewDomainError("INVALID_SUPPLIER_COST", "Monthly supplier cost cannot be negative")
	}

	c.MonthlyRetainer = retainer
	c.SupplierCostMonthly = supplierCost
	c.touch()

	return nil
}

// SetServices replaces the client's service-key list
func (c *Client) SetServices(keys []string) {
	if keys == nil {
		keys = []string{}
	}
	c.ServiceKeys = keys
	c.touch()
}

// Assign sets the handler responsible for the client
func (c *Client) Assign(handler string) {
	c.AssignedTo = handler
	c.touch()
}

// SetNotes sets the client's free-text notes
func (c *Client) SetNotes(notes string) {
	c.Notes = notes
	c.touch()
}

// ScheduleReview sets the next review date
func (c *Client) ScheduleReview(at time.Time) {
	c.NextReviewAt = &at
	c.touch()
}

// GrossMargin returns the monthly retainer minus the supplier cost
func (c *Client) GrossMargin() decimal.Decimal {
	return c.MonthlyRetainer.Sub(c.SupplierCostMonthly)
}

// IsActive returns true if the client is active
func (c *Client) IsActive() bool {
	return c.Status == ClientStatusActive
}

func (c *Client) touch() {
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

// Validation functions shared by Client and Lead

func validateName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Name cannot exceed 200 characters")
	}
	return nil
}

func validatePhone(phone string) error {
	if len(phone) > 50 {
		return shared.NewDomainError("INVALID_PHONE", "Phone number cannot exceed 50 characters")
	}
	validPhone := regexp.MustCompile(`^[\d\s\-\(\)\+]+$`)
	if !validPhone.MatchString(phone) {
		return shared.NewDomainError("INVALID_PHONE", "Invalid phone number format")
	}
	return nil
}

func validateEmail(email string) error {
	if len(email) > 200 {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 200 characters")
	}
	emailRegex := regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	if !emailRegex.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	return nil
}
