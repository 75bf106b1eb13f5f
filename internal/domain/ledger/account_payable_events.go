package ledger

import (
	"time"

	"github.com/fzhange/financial-sys/internal/domain/shared"
	"github.com/fzhange/financial-sys/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountPayableCreatedEvent is raised when a new account payable is created
type AccountPayableCreatedEvent struct {
	shared.BaseDomainEvent
	PayableID     uuid.UUID         `json:"payable_id"`
	PayableNumber string            `json:"payable_number"`
	SupplierID    uuid.UUID         `json:"supplier_id"`
	SupplierName  string            `json:"supplier_name"`
	SourceType    PayableSourceType `json:"source_type"`
	SourceID      uuid.UUID         `json:"source_id"`
	SourceNumber  string            `json:"source_number"`
	TotalAmount   decimal.Decimal   `json:"total_amount"`
	DueDate       *time.Time        `json:"due_date,omitempty"`
}

// EventType returns the event type name
func (e *AccountPayableCreatedEvent) EventType() string {
	return "AccountPayableCreated"
}

// NewAccountPayableCreatedEvent creates a new AccountPayableCreatedEvent
func NewAccountPayableCreatedEvent(ap *AccountPayable) *AccountPayableCreatedEvent {
	return &AccountPayableCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("AccountPayableCreated", "AccountPayable", ap.ID),
		PayableID:       ap.ID,
		PayableNumber:   ap.PayableNumber,
		SupplierID:      ap.SupplierID,
		SupplierName:    ap.SupplierName,
		SourceType:      ap.SourceType,
		SourceID:        ap.SourceID,
		SourceNumber:    ap.SourceNumber,
		TotalAmount:     ap.TotalAmount,
		DueDate:         ap.DueDate,
	}
}

// AccountPayablePaidEvent is raised when a payable is fully paid
type AccountPayablePaidEvent struct {
	shared.BaseDomainEvent
	PayableID     uuid.UUID       `json:"payable_id"`
	PayableNumber string          `json:"payable_number"`
	SupplierID    uuid.UUID       `json:"supplier_id"`
	SupplierName  string          `json:"supplier_name"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	PaidAt        time.Time       `json:"paid_at"`
}

// EventType returns the event type name
func (e *AccountPayablePaidEvent) EventType() string {
	return "AccountPayablePaid"
}

// NewAccountPayablePaidEvent creates a new AccountPayablePaidEvent
func NewAccountPayablePaidEvent(ap *AccountPayable) *AccountPayablePaidEvent {
	paidAt := time.Now()
	if ap.PaidAt != nil {
		paidAt = *ap.PaidAt
	}
	return &AccountPayablePaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("AccountPayablePaid", "AccountPayable", ap.ID),
		PayableID:       ap.ID,
		PayableNumber:   ap.PayableNumber,
		SupplierID:      ap.SupplierID,
		SupplierName:    ap.SupplierName,
		TotalAmount:     ap.TotalAmount,
		PaidAmount:      ap.PaidAmount,
		PaidAt:          paidAt,
	}
}

// AccountPayablePartiallyPaidEvent is raised when a partial payment is applied
type AccountPayablePartiallyPaidEvent struct {
	shared.BaseDomainEvent
	PayableID     uuid.UUID       `json:"payable_id"`
	PayableNumber string          `json:"payable_number"`
	SupplierID    uuid.UUID       `json:"supplier_id"`
	SupplierName  string          `json:"supplier_name"`
	PaymentAmount decimal.Decimal `json:"payment_amount"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	UnpaidAmount  decimal.Decimal `json:"unpaid_amount"`
}

// EventType returns the event type name
func (e *AccountPayablePartiallyPaidEvent) EventType() string {
	return "AccountPayablePartiallyPaid"
}

// NewAccountPayablePartiallyPaidEvent creates a new AccountPayablePartiallyPaidEvent
func NewAccountPayablePartiallyPaidEvent(ap *AccountPayable, paymentAmount valueobject.Money) *AccountPayablePartiallyPaidEvent {
	return &AccountPayablePartiallyPaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("AccountPayablePartiallyPaid", "AccountPayable", ap.ID),
		PayableID:       ap.ID,
		PayableNumber:   ap.PayableNumber,
		SupplierID:      ap.SupplierID,
		SupplierName:    ap.SupplierName,
		PaymentAmount:   paymentAmount.Amount(),
		TotalAmount:     ap.TotalAmount,
		PaidAmount:      ap.PaidAmount,
		UnpaidAmount:    ap.UnpaidAmount,
	}
}

// AccountPayableCancelledEvent is raised when a payable is cancelled
type AccountPayableCancelledEvent struct {
	shared.BaseDomainEvent
	PayableID     uuid.UUID       `json:"payable_id"`
	PayableNumber string          `json:"payable_number"`
	SupplierID    uuid.UUID       `json:"supplier_id"`
	SupplierName  string          `json:"supplier_name"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	CancelReason  string          `json:"cancel_reason"`
	CancelledAt   time.Time       `json:"cancelled_at"`
}

// EventType returns the event type name
func (e *AccountPayableCancelledEvent) EventType() string {
	return "AccountPayableCancelled"
}

// NewAccountPayableCancelledEvent creates a new AccountPayableCancelledEvent
func NewAccountPayableCancelledEvent(ap *AccountPayable) *AccountPayableCancelledEvent {
	cancelledAt := time.Now()
	if ap.CancelledAt != nil {
		cancelledAt = *ap.CancelledAt
	}
	return &AccountPayableCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("AccountPayableCancelled", "AccountPayable", ap.ID),
		PayableID:       ap.ID,
		PayableNumber:   ap.PayableNumber,
		SupplierID:      ap.SupplierID,
		SupplierName:    ap.SupplierName,
		TotalAmount:     ap.TotalAmount,
		CancelReason:    ap.CancelReason,
		CancelledAt:     cancelledAt,
	}
}
