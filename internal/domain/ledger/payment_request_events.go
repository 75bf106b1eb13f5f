package ledger

import (
	"time"

	"github.com/fzhange/financial-sys/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentRequestCreatedEvent is raised when a payment request is created
type PaymentRequestCreatedEvent struct {
	shared.BaseDomainEvent
	RequestID     uuid.UUID       `json:"request_id"`
	RequestNumber string          `json:"request_number"`
	SupplierID    uuid.UUID       `json:"supplier_id"`
	RequestAmount decimal.Decimal `json:"request_amount"`
	Applicant     string          `json:"applicant"`
}

// EventType returns the event type name
func (e *PaymentRequestCreatedEvent) EventType() string {
	return "PaymentRequestCreated"
}

// NewPaymentRequestCreatedEvent creates a new PaymentRequestCreatedEvent
func NewPaymentRequestCreatedEvent(pr *PaymentRequest) *PaymentRequestCreatedEvent {
	return &PaymentRequestCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("PaymentRequestCreated", "PaymentRequest", pr.ID),
		RequestID:       pr.ID,
		RequestNumber:   pr.RequestNumber,
		SupplierID:      pr.SupplierID,
		RequestAmount:   pr.RequestAmount,
		Applicant:       pr.Applicant,
	}
}

// PaymentRequestApprovedEvent is raised when a request is approved
type PaymentRequestApprovedEvent struct {
	shared.BaseDomainEvent
	RequestID      uuid.UUID       `json:"request_id"`
	RequestNumber  string          `json:"request_number"`
	ApprovedAmount decimal.Decimal `json:"approved_amount"`
	Approver       string          `json:"approver"`
	ApprovedAt     time.Time       `json:"approved_at"`
}

// EventType returns the event type name
func (e *PaymentRequestApprovedEvent) EventType() string {
	return "PaymentRequestApproved"
}

// NewPaymentRequestApprovedEvent creates a new PaymentRequestApprovedEvent
func NewPaymentRequestApprovedEvent(pr *PaymentRequest) *PaymentRequestApprovedEvent {
	approvedAt := time.Now()
	if pr.ApprovedAt != nil {
		approvedAt = *pr.ApprovedAt
	}
	return &PaymentRequestApprovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("PaymentRequestApproved", "PaymentRequest", pr.ID),
		RequestID:       pr.ID,
		RequestNumber:   pr.RequestNumber,
		ApprovedAmount:  pr.ApprovedAmount,
		Approver:        pr.Approver,
		ApprovedAt:      approvedAt,
	}
}

// PaymentRequestRejectedEvent is raised when a request is rejected
type PaymentRequestRejectedEvent struct {
	shared.BaseDomainEvent
	RequestID     uuid.UUID `json:"request_id"`
	RequestNumber string    `json:"request_number"`
	Approver      string    `json:"approver"`
	Remark        string    `json:"remark"`
}

// EventType returns the event type name
func (e *PaymentRequestRejectedEvent) EventType() string {
	return "PaymentRequestRejected"
}

// NewPaymentRequestRejectedEvent creates a new PaymentRequestRejectedEvent
func NewPaymentRequestRejectedEvent(pr *PaymentRequest) *PaymentRequestRejectedEvent {
	return &PaymentRequestRejectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("PaymentRequestRejected", "PaymentRequest", pr.ID),
		RequestID:       pr.ID,
		RequestNumber:   pr.RequestNumber,
		Approver:        pr.Approver,
		Remark:          pr.ApprovalRemark,
	}
}

// PaymentRequestPaidEvent is raised when an approved request is executed
type PaymentRequestPaidEvent struct {
	shared.BaseDomainEvent
	RequestID      uuid.UUID       `json:"request_id"`
	RequestNumber  string          `json:"request_number"`
	ApprovedAmount decimal.Decimal `json:"approved_amount"`
	VoucherID      *uuid.UUID      `json:"voucher_id,omitempty"`
	ActualPayDate  *time.Time      `json:"actual_pay_date,omitempty"`
}

// EventType returns the event type name
func (e *PaymentRequestPaidEvent) EventType() string {
	return "PaymentRequestPaid"
}

// NewPaymentRequestPaidEvent creates a new PaymentRequestPaidEvent
func NewPaymentRequestPaidEvent(pr *PaymentRequest) *PaymentRequestPaidEvent {
	return &PaymentRequestPaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("PaymentRequestPaid", "PaymentRequest", pr.ID),
		RequestID:       pr.ID,
		RequestNumber:   pr.RequestNumber,
		ApprovedAmount:  pr.ApprovedAmount,
		VoucherID:       pr.VoucherID,
		ActualPayDate:   pr.ActualPayDate,
	}
}
