package ledger

import (
	"fmt"
	"time"

	"github.com/fzhange/financial-sys/internal/domain/shared"
	"github.com/fzhange/financial-sys/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// VoucherStatus represents the state of a payment voucher
type VoucherStatus string

const (
	VoucherStatusCompleted VoucherStatus = "COMPLETED"
	VoucherStatusCancelled VoucherStatus = "CANCELLED"
)

// IsValid checks if the status is a valid VoucherStatus
func (s VoucherStatus) IsValid() bool {
	switch s {
	case VoucherStatusCompleted, VoucherStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of VoucherStatus
func (s VoucherStatus) String() string {
	return string(s)
}

// WriteOffDetail is one allocation of voucher funds against a payable
type WriteOffDetail struct {
	ID              uuid.UUID       `json:"id"`
	VoucherID       uuid.UUID       `json:"voucher_id"`
	PayableID       uuid.UUID       `json:"payable_id"`
	PayableNumber   string          `json:"payable_number"`
	PayableAmount   decimal.Decimal `json:"payable_amount"` // Payable total at write-off time
	WriteOffAmount  decimal.Decimal `json:"write_off_amount"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"` // Payable unpaid balance after this line
	WrittenOffAt    time.Time       `json:"written_off_at"`
}

// GetWriteOffAmountMoney returns the write-off amount as Money
func (d *WriteOffDetail) GetWriteOffAmountMoney() valueobject.Money {
	return valueobject.NewMoneyCNY(d.WriteOffAmount)
}

// PaymentVoucher is the record of funds actually paid to a supplier.
// PaymentAmount is fixed at creation; write-off details allocate it against
// payables and their sum can never exceed PaymentAmount.
type PaymentVoucher struct {
	shared.BaseAggregateRoot
	VoucherNumber   string           `json:"voucher_number"`
	RequestID       *uuid.UUID       `json:"request_id,omitempty"` // Set when produced by a payment request
	RequestNumber   string           `json:"request_number"`
	SupplierID      uuid.UUID        `json:"supplier_id"`
	SupplierName    string           `json:"supplier_name"`
	PaymentAmount   decimal.Decimal  `json:"payment_amount"`
	PaymentMethod   PaymentMethod    `json:"payment_method"`
	BankAccount     string           `json:"bank_account"`
	BankName        string           `json:"bank_name"`
	PaymentDate     time.Time        `json:"payment_date"`
	WriteOffDetails []WriteOffDetail `json:"write_off_details"`
	PayableIDs      []uuid.UUID      `json:"payable_ids"`
	PayableNumbers  []string         `json:"payable_numbers"`
	Operator        string           `json:"operator"`
	Status          VoucherStatus    `json:"status"`
	Remark          string           `json:"remark"`
	CancelledAt     *time.Time       `json:"cancelled_at"`
	CancelReason    string           `json:"cancel_reason"`
}

// NewPaymentVoucher creates a completed payment voucher. Write-off details
// are appended separately so creation and allocation share one path.
func NewPaymentVoucher(
	voucherNumber string,
	supplierID uuid.UUID,
	supplierName string,
	paymentAmount valueobject.Money,
	paymentMethod PaymentMethod,
	paymentDate time.Time,
	operator string,
) (*PaymentVoucher, error) {
	if voucherNumber == "" {
		return nil, shared.NewDomainError("INVALID_VOUCHER_NUMBER", "Voucher number cannot be empty")
	}
	if len(voucherNumber) > 50 {
		return nil, shared.NewDomainError("INVALID_VOUCHER_NUMBER", "Voucher number cannot exceed 50 characters")
	}
	if supplierID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SUPPLIER", "Supplier ID cannot be empty")
	}
	if supplierName == "" {
		return nil, shared.NewDomainError("INVALID_SUPPLIER_NAME", "Supplier name cannot be empty")
	}
	if paymentAmount.Amount().LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if !paymentMethod.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Payment method is not valid")
	}
	if paymentDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_DATE", "Payment date is required")
	}

	pv := &PaymentVoucher{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		VoucherNumber:     voucherNumber,
		SupplierID:        supplierID,
		SupplierName:      supplierName,
		PaymentAmount:     paymentAmount.Amount(),
		PaymentMethod:     paymentMethod,
		PaymentDate:       paymentDate,
		WriteOffDetails:   make([]WriteOffDetail, 0),
		PayableIDs:        make([]uuid.UUID, 0),
		PayableNumbers:    make([]string, 0),
		Operator:          operator,
		Status:            VoucherStatusCompleted,
	}

	pv.AddDomainEvent(NewPaymentVoucherCreatedEvent(pv))

	return pv, nil
}

// LinkRequest records the payment request this voucher settles
func (pv *PaymentVoucher) LinkRequest(requestID uuid.UUID, requestNumber string) error {
	if requestID == uuid.Nil {
		return shared.NewDomainError("INVALID_REQUEST", "Request ID cannot be empty")
	}
	pv.RequestID = &requestID
	pv.RequestNumber = requestNumber
	pv.UpdatedAt = time.Now()
	pv.IncrementVersion()
	return nil
}

// SetBankDetails records the originating account
func (pv *PaymentVoucher) SetBankDetails(bankAccount, bankName string) {
	pv.BankAccount = bankAccount
	pv.BankName = bankName
	pv.UpdatedAt = time.Now()
	pv.IncrementVersion()
}

// AllocatedAmount returns the sum of all write-off lines
func (pv *PaymentVoucher) AllocatedAmount() decimal.Decimal {
	total := decimal.Zero
	for _, d := range pv.WriteOffDetails {
		total = total.Add(d.WriteOffAmount)
	}
	return total
}

// UnallocatedAmount returns the remaining funds not yet written off
func (pv *PaymentVoucher) UnallocatedAmount() decimal.Decimal {
	return pv.PaymentAmount.Sub(pv.AllocatedAmount())
}

// AppendWriteOff adds one write-off line against a payable.
// payableAmount and remainingAmount are snapshots of the payable taken by
// the caller after applying the matching payment.
func (pv *PaymentVoucher) AppendWriteOff(
	payableID uuid.UUID,
	payableNumber string,
	payableAmount decimal.Decimal,
	writeOffAmount decimal.Decimal,
	remainingAmount decimal.Decimal,
) (*WriteOffDetail, error) {
	if pv.Status != VoucherStatusCompleted {
		return nil, shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot write off voucher in %s status", pv.Status))
	}
	if payableID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PAYABLE", "Payable ID cannot be empty")
	}
	if payableNumber == "" {
		return nil, shared.NewDomainError("INVALID_PAYABLE_NUMBER", "Payable number is required")
	}
	if writeOffAmount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Write-off amount must be positive")
	}
	if writeOffAmount.GreaterThan(pv.UnallocatedAmount()) {
		return nil, shared.NewDomainError("EXCEEDS_UNALLOCATED", fmt.Sprintf("Write-off amount %s exceeds unallocated amount %s", writeOffAmount.StringFixed(2), pv.UnallocatedAmount().StringFixed(2)))
	}
	if remainingAmount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Remaining amount cannot be negative")
	}

	detail := WriteOffDetail{
		ID:              uuid.New(),
		VoucherID:       pv.ID,
		PayableID:       payableID,
		PayableNumber:   payableNumber,
		PayableAmount:   payableAmount,
		WriteOffAmount:  writeOffAmount,
		RemainingAmount: remainingAmount,
		WrittenOffAt:    time.Now(),
	}
	pv.WriteOffDetails = append(pv.WriteOffDetails, detail)

	if !pv.hasPayable(payableID) {
		pv.PayableIDs = append(pv.PayableIDs, payableID)
		pv.PayableNumbers = append(pv.PayableNumbers, payableNumber)
	}

	pv.UpdatedAt = time.Now()
	pv.IncrementVersion()

	pv.AddDomainEvent(NewPaymentVoucherWrittenOffEvent(pv, &detail))

	return &pv.WriteOffDetails[len(pv.WriteOffDetails)-1], nil
}

// Cancel voids the voucher. Only vouchers without write-off lines can be
// cancelled; settled lines would have to be reversed first.
func (pv *PaymentVoucher) Cancel(reason string) error {
	if pv.Status != VoucherStatusCompleted {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel voucher in %s status", pv.Status))
	}
	if len(pv.WriteOffDetails) > 0 {
		return shared.NewDomainError("HAS_WRITE_OFFS", "Cannot cancel voucher with existing write-off details")
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Cancel reason is required")
	}

	now := time.Now()
	pv.Status = VoucherStatusCancelled
	pv.CancelledAt = &now
	pv.CancelReason = reason
	pv.UpdatedAt = now
	pv.IncrementVersion()

	pv.AddDomainEvent(NewPaymentVoucherCancelledEvent(pv))

	return nil
}

// SetRemark sets the remark
func (pv *PaymentVoucher) SetRemark(remark string) {
	pv.Remark = remark
	pv.UpdatedAt = time.Now()
	pv.IncrementVersion()
}

func (pv *PaymentVoucher) hasPayable(payableID uuid.UUID) bool {
	for _, id := range pv.PayableIDs {
		if id == payableID {
			return true
		}
	}
	return false
}

// Helper methods

// GetPaymentAmountMoney returns payment amount as Money
func (pv *PaymentVoucher) GetPaymentAmountMoney() valueobject.Money {
	return valueobject.NewMoneyCNY(pv.PaymentAmount)
}

// IsCompleted returns true if the voucher is active
func (pv *PaymentVoucher) IsCompleted() bool {
	return pv.Status == VoucherStatusCompleted
}

// IsCancelled returns true if the voucher is cancelled
func (pv *PaymentVoucher) IsCancelled() bool {
	return pv.Status == VoucherStatusCancelled
}

// IsFullyAllocated returns true if all funds have been written off
func (pv *PaymentVoucher) IsFullyAllocated() bool {
	return pv.UnallocatedAmount().IsZero()
}

// WriteOffCount returns the number of write-off lines
func (pv *PaymentVoucher) WriteOffCount() int {
	return len(pv.WriteOffDetails)
}

// GetWriteOffByPayableID returns the first write-off line for a payable
func (pv *PaymentVoucher) GetWriteOffByPayableID(payableID uuid.UUID) *WriteOffDetail {
	for i := range pv.WriteOffDetails {
		if pv.WriteOffDetails[i].PayableID == payableID {
			return &pv.WriteOffDetails[i]
		}
	}
	return nil
}
