package ledger

import (
	"time"

	"github.com/fzhange/financial-sys/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentVoucherCreatedEvent is raised when a payment voucher is created
type PaymentVoucherCreatedEvent struct {
	shared.BaseDomainEvent
	VoucherID     uuid.UUID       `json:"voucher_id"`
	VoucherNumber string          `json:"voucher_number"`
	SupplierID    uuid.UUID       `json:"supplier_id"`
	SupplierName  string          `json:"supplier_name"`
	PaymentAmount decimal.Decimal `json:"payment_amount"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	PaymentDate   time.Time       `json:"payment_date"`
}

// EventType returns the event type name
func (e *PaymentVoucherCreatedEvent) EventType() string {
	return "PaymentVoucherCreated"
}

// NewPaymentVoucherCreatedEvent creates a new PaymentVoucherCreatedEvent
func NewPaymentVoucherCreatedEvent(pv *PaymentVoucher) *PaymentVoucherCreatedEvent {
	return &PaymentVoucherCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("PaymentVoucherCreated", "PaymentVoucher", pv.ID),
		VoucherID:       pv.ID,
		VoucherNumber:   pv.VoucherNumber,
		SupplierID:      pv.SupplierID,
		SupplierName:    pv.SupplierName,
		PaymentAmount:   pv.PaymentAmount,
		PaymentMethod:   pv.PaymentMethod,
		PaymentDate:     pv.PaymentDate,
	}
}

// PaymentVoucherWrittenOffEvent is raised when a write-off line is appended
type PaymentVoucherWrittenOffEvent struct {
	shared.BaseDomainEvent
	VoucherID       uuid.UUID       `json:"voucher_id"`
	VoucherNumber   string          `json:"voucher_number"`
	PayableID       uuid.UUID       `json:"payable_id"`
	PayableNumber   string          `json:"payable_number"`
	WriteOffAmount  decimal.Decimal `json:"write_off_amount"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
	UnallocatedLeft decimal.Decimal `json:"unallocated_left"`
}

// EventType returns the event type name
func (e *PaymentVoucherWrittenOffEvent) EventType() string {
	return "PaymentVoucherWrittenOff"
}

// NewPaymentVoucherWrittenOffEvent creates a new PaymentVoucherWrittenOffEvent
func NewPaymentVoucherWrittenOffEvent(pv *PaymentVoucher, detail *WriteOffDetail) *PaymentVoucherWrittenOffEvent {
	return &PaymentVoucherWrittenOffEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("PaymentVoucherWrittenOff", "PaymentVoucher", pv.ID),
		VoucherID:       pv.ID,
		VoucherNumber:   pv.VoucherNumber,
		PayableID:       detail.PayableID,
		PayableNumber:   detail.PayableNumber,
		WriteOffAmount:  detail.WriteOffAmount,
		RemainingAmount: detail.RemainingAmount,
		UnallocatedLeft: pv.UnallocatedAmount(),
	}
}

// PaymentVoucherCancelledEvent is raised when a voucher is cancelled
type PaymentVoucherCancelledEvent struct {
	shared.BaseDomainEvent
	VoucherID     uuid.UUID `json:"voucher_id"`
	VoucherNumber string    `json:"voucher_number"`
	CancelReason  string    `json:"cancel_reason"`
	CancelledAt   time.Time `json:"cancelled_at"`
}

// EventType returns the event type name
func (e *PaymentVoucherCancelledEvent) EventType() string {
	return "PaymentVoucherCancelled"
}

// NewPaymentVoucherCancelledEvent creates a new PaymentVoucherCancelledEvent
func NewPaymentVoucherCancelledEvent(pv *PaymentVoucher) *PaymentVoucherCancelledEvent {
	cancelledAt := time.Now()
	if pv.CancelledAt != nil {
		cancelledAt = *pv.CancelledAt
	}
	return &PaymentVoucherCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("PaymentVoucherCancelled", "PaymentVoucher", pv.ID),
		VoucherID:       pv.ID,
		VoucherNumber:   pv.VoucherNumber,
		CancelReason:    pv.CancelReason,
		CancelledAt:     cancelledAt,
	}
}
