package ledger

import (
	"time"

	"github.com/fzhange/financial-sys/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceRegisteredEvent is raised when an invoice is registered
type InvoiceRegisteredEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	InvoiceCode   string          `json:"invoice_code"`
	SupplierID    uuid.UUID       `json:"supplier_id"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
}

// EventType returns the event type name
func (e *InvoiceRegisteredEvent) EventType() string {
	return "InvoiceRegistered"
}

// NewInvoiceRegisteredEvent creates a new InvoiceRegisteredEvent
func NewInvoiceRegisteredEvent(inv *Invoice) *InvoiceRegisteredEvent {
	return &InvoiceRegisteredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("InvoiceRegistered", "Invoice", inv.ID),
		InvoiceID:       inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		InvoiceCode:     inv.InvoiceCode,
		SupplierID:      inv.SupplierID,
		TotalAmount:     inv.TotalAmount,
	}
}

// InvoiceVerifiedEvent is raised when an invoice passes verification
type InvoiceVerifiedEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID `json:"invoice_id"`
	InvoiceNumber string    `json:"invoice_number"`
	VerifiedBy    string    `json:"verified_by"`
	VerifiedAt    time.Time `json:"verified_at"`
}

// EventType returns the event type name
func (e *InvoiceVerifiedEvent) EventType() string {
	return "InvoiceVerified"
}

// NewInvoiceVerifiedEvent creates a new InvoiceVerifiedEvent
func NewInvoiceVerifiedEvent(inv *Invoice) *InvoiceVerifiedEvent {
	verifiedAt := time.Now()
	if inv.VerifiedAt != nil {
		verifiedAt = *inv.VerifiedAt
	}
	return &InvoiceVerifiedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("InvoiceVerified", "Invoice", inv.ID),
		InvoiceID:       inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		VerifiedBy:      inv.VerifiedBy,
		VerifiedAt:      verifiedAt,
	}
}
