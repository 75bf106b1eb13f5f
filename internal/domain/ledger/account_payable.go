package ledger

import (
	"fmt"
	"time"

	"github.com/fzhange/financial-sys/internal/domain/shared"
	"github.com/fzhange/financial-sys/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PayableStatus represents the settlement status of an account payable
type PayableStatus string

const (
	PayableStatusPending   PayableStatus = "PENDING"   // No payment applied yet
	PayableStatusPartial   PayableStatus = "PARTIAL"   // 0 < paid < total
	PayableStatusPaid      PayableStatus = "PAID"      // Fully settled, unpaid = 0
	PayableStatusCancelled PayableStatus = "CANCELLED" // Cancelled before any payment
)

// IsValid checks if the status is a valid PayableStatus
func (s PayableStatus) IsValid() bool {
	switch s {
	case PayableStatusPending, PayableStatusPartial, PayableStatusPaid, PayableStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of PayableStatus
func (s PayableStatus) String() string {
	return string(s)
}

// IsTerminal returns true if the payable is in a terminal state
func (s PayableStatus) IsTerminal() bool {
	return s == PayableStatusPaid || s == PayableStatusCancelled
}

// CanApplyPayment returns true if payments can be applied in this status
func (s PayableStatus) CanApplyPayment() bool {
	return s == PayableStatusPending || s == PayableStatusPartial
}

// PayableSourceType represents the type of source document that created the payable
type PayableSourceType string

const (
	PayableSourceTypeReconciliation PayableSourceType = "RECONCILIATION" // Confirmed supplier statement
	PayableSourceTypePurchase       PayableSourceType = "PURCHASE"       // Direct purchase document
	PayableSourceTypeOther          PayableSourceType = "OTHER"
)

// IsValid checks if the source type is valid
func (s PayableSourceType) IsValid() bool {
	switch s {
	case PayableSourceTypeReconciliation, PayableSourceTypePurchase, PayableSourceTypeOther:
		return true
	}
	return false
}

// PaymentMethod represents how a payment was made
type PaymentMethod string

const (
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodCash         PaymentMethod = "CASH"
	PaymentMethodCheck        PaymentMethod = "CHECK"
	PaymentMethodOther        PaymentMethod = "OTHER"
)

// IsValid checks if the payment method is valid
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodBankTransfer, PaymentMethodCash, PaymentMethodCheck, PaymentMethodOther:
		return true
	}
	return false
}

// PaymentRecord is one settlement applied to a payable.
// Every settlement path (direct pay, payment request execution, voucher
// write-off) goes through the same record.
type PaymentRecord struct {
	ID            uuid.UUID       `json:"id"`
	PaymentNumber string          `json:"payment_number"`
	PayableID     uuid.UUID       `json:"payable_id"`
	VoucherID     *uuid.UUID      `json:"voucher_id,omitempty"` // Set when settled through a voucher
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	PaymentDate   time.Time       `json:"payment_date"`
	Operator      string          `json:"operator"`
	Remark        string          `json:"remark"`
	AppliedAt     time.Time       `json:"applied_at"`
}

// GetAmountMoney returns the amount as Money value object
func (p *PaymentRecord) GetAmountMoney() valueobject.Money {
	return valueobject.NewMoneyCNY(p.Amount)
}

// AccountPayable tracks money owed to a supplier.
// Balance invariant: TotalAmount = PaidAmount + UnpaidAmount at all times.
type AccountPayable struct {
	shared.BaseAggregateRoot
	PayableNumber  string            `json:"payable_number"`
	SupplierID     uuid.UUID         `json:"supplier_id"`
	SupplierName   string            `json:"supplier_name"`
	SourceType     PayableSourceType `json:"source_type"`
	SourceID       uuid.UUID         `json:"source_id"`
	SourceNumber   string            `json:"source_number"`
	TotalAmount    decimal.Decimal   `json:"total_amount"` // Immutable after creation
	PaidAmount     decimal.Decimal   `json:"paid_amount"`
	UnpaidAmount   decimal.Decimal   `json:"unpaid_amount"`
	InvoiceAmount  decimal.Decimal   `json:"invoice_amount"` // Documentary coverage from linked invoices
	InvoiceIDs     []uuid.UUID       `json:"invoice_ids"`
	InvoiceNumbers []string          `json:"invoice_numbers"`
	Status         PayableStatus     `json:"status"`
	DueDate        *time.Time        `json:"due_date"`
	PaymentRecords []PaymentRecord   `json:"payment_records"`
	Remark         string            `json:"remark"`
	PaidAt         *time.Time        `json:"paid_at"`
	CancelledAt    *time.Time        `json:"cancelled_at"`
	CancelReason   string            `json:"cancel_reason"`
}

// NewAccountPayable creates a new account payable
func NewAccountPayable(
	payableNumber string,
	supplierID uuid.UUID,
	supplierName string,
	sourceType PayableSourceType,
	sourceID uuid.UUID,
	sourceNumber string,
	totalAmount valueobject.Money,
	dueDate *time.Time,
) (*AccountPayable, error) {
	if payableNumber == "" {
		return nil, shared.NewDomainError("INVALID_PAYABLE_NUMBER", "Payable number cannot be empty")
	}
	if len(payableNumber) > 50 {
		return nil, shared.NewDomainError("INVALID_PAYABLE_NUMBER", "Payable number cannot exceed 50 characters")
	}
	if supplierID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SUPPLIER", "Supplier ID cannot be empty")
	}
	if supplierName == "" {
		return nil, shared.NewDomainError("INVALID_SUPPLIER_NAME", "Supplier name cannot be empty")
	}
	if !sourceType.IsValid() {
		return nil, shared.NewDomainError("INVALID_SOURCE_TYPE", "Source type is not valid")
	}
	if sourceID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SOURCE_ID", "Source ID cannot be empty")
	}
	if sourceNumber == "" {
		return nil, shared.NewDomainError("INVALID_SOURCE_NUMBER", "Source number cannot be empty")
	}
	if totalAmount.Amount().LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Total amount must be positive")
	}

	ap := &AccountPayable{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		PayableNumber:     payableNumber,
		SupplierID:        supplierID,
		SupplierName:      supplierName,
		SourceType:        sourceType,
		SourceID:          sourceID,
		SourceNumber:      sourceNumber,
		TotalAmount:       totalAmount.Amount(),
		PaidAmount:        decimal.Zero,
		UnpaidAmount:      totalAmount.Amount(),
		InvoiceAmount:     decimal.Zero,
		InvoiceIDs:        make([]uuid.UUID, 0),
		InvoiceNumbers:    make([]string, 0),
		Status:            PayableStatusPending,
		DueDate:           dueDate,
		PaymentRecords:    make([]PaymentRecord, 0),
	}

	ap.AddDomainEvent(NewAccountPayableCreatedEvent(ap))

	return ap, nil
}

// ApplyPayment settles part or all of the payable and records the payment line.
// The voucher reference is optional: direct pays carry none, write-offs carry
// the voucher that funded them.
func (ap *AccountPayable) ApplyPayment(
	paymentNumber string,
	amount valueobject.Money,
	method PaymentMethod,
	paymentDate time.Time,
	voucherID *uuid.UUID,
	operator string,
	remark string,
) (*PaymentRecord, error) {
	if !ap.Status.CanApplyPayment() {
		return nil, shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot apply payment to payable in %s status", ap.Status))
	}
	if paymentNumber == "" {
		return nil, shared.NewDomainError("INVALID_PAYMENT_NUMBER", "Payment number cannot be empty")
	}
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if amount.Amount().GreaterThan(ap.UnpaidAmount) {
		return nil, shared.NewDomainError("EXCEEDS_UNPAID", fmt.Sprintf("Payment amount %s exceeds unpaid amount %s", amount.Amount().StringFixed(2), ap.UnpaidAmount.StringFixed(2)))
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Payment method is not valid")
	}
	if paymentDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_DATE", "Payment date is required")
	}

	record := PaymentRecord{
		ID:            uuid.New(),
		PaymentNumber: paymentNumber,
		PayableID:     ap.ID,
		VoucherID:     voucherID,
		Amount:        amount.Amount(),
		PaymentMethod: method,
		PaymentDate:   paymentDate,
		Operator:      operator,
		Remark:        remark,
		AppliedAt:     time.Now(),
	}
	ap.PaymentRecords = append(ap.PaymentRecords, record)

	ap.PaidAmount = ap.PaidAmount.Add(amount.Amount())
	ap.UnpaidAmount = ap.TotalAmount.Sub(ap.PaidAmount)

	if ap.UnpaidAmount.IsZero() {
		now := time.Now()
		ap.Status = PayableStatusPaid
		ap.PaidAt = &now
		ap.AddDomainEvent(NewAccountPayablePaidEvent(ap))
	} else {
		ap.Status = PayableStatusPartial
		ap.AddDomainEvent(NewAccountPayablePartiallyPaidEvent(ap, amount))
	}

	ap.UpdatedAt = time.Now()
	ap.IncrementVersion()

	return &ap.PaymentRecords[len(ap.PaymentRecords)-1], nil
}

// AddInvoiceCoverage records documentary coverage from a newly linked invoice.
// Coverage never affects the settlement balance.
func (ap *AccountPayable) AddInvoiceCoverage(invoiceID uuid.UUID, invoiceNumber string, amount decimal.Decimal) error {
	if ap.Status == PayableStatusCancelled {
		return shared.NewDomainError("INVALID_STATE", "Cannot link invoices to a cancelled payable")
	}
	if invoiceID == uuid.Nil {
		return shared.NewDomainError("INVALID_INVOICE", "Invoice ID cannot be empty")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Coverage amount must be positive")
	}

	ap.InvoiceAmount = ap.InvoiceAmount.Add(amount)
	if !ap.hasInvoice(invoiceID) {
		ap.InvoiceIDs = append(ap.InvoiceIDs, invoiceID)
		ap.InvoiceNumbers = append(ap.InvoiceNumbers, invoiceNumber)
	}
	ap.UpdatedAt = time.Now()
	ap.IncrementVersion()

	return nil
}

// RemoveInvoiceCoverage reverses the documentary coverage of an unlinked invoice
func (ap *AccountPayable) RemoveInvoiceCoverage(invoiceID uuid.UUID, amount decimal.Decimal) error {
	if !ap.hasInvoice(invoiceID) {
		return shared.NewDomainError("NOT_LINKED", "Invoice is not linked to this payable")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Coverage amount must be positive")
	}

	ap.InvoiceAmount = ap.InvoiceAmount.Sub(amount)
	if ap.InvoiceAmount.IsNegative() {
		ap.InvoiceAmount = decimal.Zero
	}
	for i, id := range ap.InvoiceIDs {
		if id == invoiceID {
			ap.InvoiceIDs = append(ap.InvoiceIDs[:i], ap.InvoiceIDs[i+1:]...)
			ap.InvoiceNumbers = append(ap.InvoiceNumbers[:i], ap.InvoiceNumbers[i+1:]...)
			break
		}
	}
	ap.UpdatedAt = time.Now()
	ap.IncrementVersion()

	return nil
}

// Cancel cancels the payable (only if no payments have been applied)
func (ap *AccountPayable) Cancel(reason string) error {
	if ap.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel payable in %s status", ap.Status))
	}
	if ap.PaidAmount.GreaterThan(decimal.Zero) {
		return shared.NewDomainError("HAS_PAYMENTS", "Cannot cancel payable with existing payments")
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Cancel reason is required")
	}

	now := time.Now()
	ap.Status = PayableStatusCancelled
	ap.CancelledAt = &now
	ap.CancelReason = reason
	ap.UnpaidAmount = decimal.Zero
	ap.UpdatedAt = now
	ap.IncrementVersion()

	ap.AddDomainEvent(NewAccountPayableCancelledEvent(ap))

	return nil
}

// SetDueDate updates the due date
func (ap *AccountPayable) SetDueDate(dueDate *time.Time) error {
	if ap.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", "Cannot modify due date for payable in terminal state")
	}

	ap.DueDate = dueDate
	ap.UpdatedAt = time.Now()
	ap.IncrementVersion()

	return nil
}

// SetRemark sets the remark
func (ap *AccountPayable) SetRemark(remark string) {
	ap.Remark = remark
	ap.UpdatedAt = time.Now()
	ap.IncrementVersion()
}

func (ap *AccountPayable) hasInvoice(invoiceID uuid.UUID) bool {
	for _, id := range ap.InvoiceIDs {
		if id == invoiceID {
			return true
		}
	}
	return false
}

// Helper methods

// GetTotalAmountMoney returns total amount as Money
func (ap *AccountPayable) GetTotalAmountMoney() valueobject.Money {
	return valueobject.NewMoneyCNY(ap.TotalAmount)
}

// GetPaidAmountMoney returns paid amount as Money
func (ap *AccountPayable) GetPaidAmountMoney() valueobject.Money {
	return valueobject.NewMoneyCNY(ap.PaidAmount)
}

// GetUnpaidAmountMoney returns unpaid amount as Money
func (ap *AccountPayable) GetUnpaidAmountMoney() valueobject.Money {
	return valueobject.NewMoneyCNY(ap.UnpaidAmount)
}

// IsPending returns true if payable is pending
func (ap *AccountPayable) IsPending() bool {
	return ap.Status == PayableStatusPending
}

// IsPartial returns true if payable is partially paid
func (ap *AccountPayable) IsPartial() bool {
	return ap.Status == PayableStatusPartial
}

// IsPaid returns true if payable is fully paid
func (ap *AccountPayable) IsPaid() bool {
	return ap.Status == PayableStatusPaid
}

// IsCancelled returns true if payable is cancelled
func (ap *AccountPayable) IsCancelled() bool {
	return ap.Status == PayableStatusCancelled
}

// IsOverdue returns true if the payable is past due date and not settled.
// Overdue is derived for display, never stored as a status.
func (ap *AccountPayable) IsOverdue() bool {
	if ap.Status.IsTerminal() {
		return false
	}
	if ap.DueDate == nil {
		return false
	}
	return time.Now().After(*ap.DueDate)
}

// DaysOverdue returns the number of days past due (0 if not overdue)
func (ap *AccountPayable) DaysOverdue() int {
	if !ap.IsOverdue() {
		return 0
	}
	return int(time.Since(*ap.DueDate).Hours() / 24)
}

// PaymentCount returns the number of payments applied
func (ap *AccountPayable) PaymentCount() int {
	return len(ap.PaymentRecords)
}

// PaidPercentage returns the percentage of total that has been paid (0-100)
func (ap *AccountPayable) PaidPercentage() decimal.Decimal {
	if ap.TotalAmount.IsZero() {
		return decimal.NewFromInt(100)
	}
	return ap.PaidAmount.Div(ap.TotalAmount).Mul(decimal.NewFromInt(100)).Round(2)
}
