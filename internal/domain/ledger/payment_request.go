package ledger

import (
	"fmt"
	"time"

	"github.com/fzhange/financial-sys/internal/domain/shared"
	"github.com/fzhange/financial-sys/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RequestStatus represents the approval state of a payment request
type RequestStatus string

const (
	RequestStatusDraft     RequestStatus = "DRAFT"
	RequestStatusPending   RequestStatus = "PENDING"
	RequestStatusApproved  RequestStatus = "APPROVED"
	RequestStatusRejected  RequestStatus = "REJECTED"
	RequestStatusPaid      RequestStatus = "PAID"
	RequestStatusCancelled RequestStatus = "CANCELLED"
)

// IsValid checks if the status is a valid RequestStatus
func (s RequestStatus) IsValid() bool {
	switch s {
	case RequestStatusDraft, RequestStatusPending, RequestStatusApproved,
		RequestStatusRejected, RequestStatusPaid, RequestStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of RequestStatus
func (s RequestStatus) String() string {
	return string(s)
}

// IsTerminal returns true for states that accept no further transitions
func (s RequestStatus) IsTerminal() bool {
	return s == RequestStatusRejected || s == RequestStatusPaid || s == RequestStatusCancelled
}

// CanApprove returns true if the request can be approved or rejected
func (s RequestStatus) CanApprove() bool {
	return s == RequestStatusDraft || s == RequestStatusPending
}

// CanCancel returns true if the request can be cancelled
func (s RequestStatus) CanCancel() bool {
	return s == RequestStatusDraft || s == RequestStatusPending
}

// RequestType represents the kind of payment request
type RequestType string

const (
	RequestTypeNormal  RequestType = "NORMAL"
	RequestTypeAdvance RequestType = "ADVANCE"
	RequestTypeUrgent  RequestType = "URGENT"
)

// IsValid checks if the request type is valid
func (t RequestType) IsValid() bool {
	switch t {
	case RequestTypeNormal, RequestTypeAdvance, RequestTypeUrgent:
		return true
	}
	return false
}

// PaymentRequest is an approval workflow wrapper around a batch of payables.
// Settlement happens only after approval, through ExecutePayment, which
// writes off the approved amount against the request's payables.
type PaymentRequest struct {
	shared.BaseAggregateRoot
	RequestNumber   string          `json:"request_number"`
	SupplierID      uuid.UUID       `json:"supplier_id"`
	SupplierName    string          `json:"supplier_name"`
	RequestType     RequestType     `json:"request_type"`
	PayableIDs      []uuid.UUID     `json:"payable_ids"`
	PayableNumbers  []string        `json:"payable_numbers"`
	InvoiceIDs      []uuid.UUID     `json:"invoice_ids"`
	InvoiceNumbers  []string        `json:"invoice_numbers"`
	RequestAmount   decimal.Decimal `json:"request_amount"`
	ApprovedAmount  decimal.Decimal `json:"approved_amount"`
	PaymentMethod   PaymentMethod   `json:"payment_method"`
	BankAccount     string          `json:"bank_account"`
	BankName        string          `json:"bank_name"`
	ExpectedPayDate *time.Time      `json:"expected_pay_date"`
	ActualPayDate   *time.Time      `json:"actual_pay_date"`
	Applicant       string          `json:"applicant"`
	Approver        string          `json:"approver"`
	ApprovalRemark  string          `json:"approval_remark"`
	Status          RequestStatus   `json:"status"`
	VoucherID       *uuid.UUID      `json:"voucher_id,omitempty"` // Voucher produced by execution
	Remark          string          `json:"remark"`
	ApprovedAt      *time.Time      `json:"approved_at"`
	RejectedAt      *time.Time      `json:"rejected_at"`
	CancelledAt     *time.Time      `json:"cancelled_at"`
}

// NewPaymentRequest creates a payment request in DRAFT status
func NewPaymentRequest(
	requestNumber string,
	supplierID uuid.UUID,
	supplierName string,
	requestType RequestType,
	payableIDs []uuid.UUID,
	payableNumbers []string,
	requestAmount valueobject.Money,
	paymentMethod PaymentMethod,
	applicant string,
) (*PaymentRequest, error) {
	if requestNumber == "" {
		return nil, shared.NewDomainError("INVALID_REQUEST_NUMBER", "Request number cannot be empty")
	}
	if supplierID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SUPPLIER", "Supplier ID cannot be empty")
	}
	if supplierName == "" {
		return nil, shared.NewDomainError("INVALID_SUPPLIER_NAME", "Supplier name cannot be empty")
	}
	if !requestType.IsValid() {
		return nil, shared.NewDomainError("INVALID_REQUEST_TYPE", "Request type is not valid")
	}
	if len(payableIDs) == 0 {
		return nil, shared.NewDomainError("NO_PAYABLES", "At least one payable is required")
	}
	if len(payableIDs) != len(payableNumbers) {
		return nil, shared.NewDomainError("INVALID_PAYABLES", "Payable IDs and numbers must match")
	}
	if requestAmount.Amount().LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Request amount must be positive")
	}
	if !paymentMethod.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Payment method is not valid")
	}
	if applicant == "" {
		return nil, shared.NewDomainError("INVALID_APPLICANT", "Applicant is required")
	}

	pr := &PaymentRequest{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		RequestNumber:     requestNumber,
		SupplierID:        supplierID,
		SupplierName:      supplierName,
		RequestType:       requestType,
		PayableIDs:        payableIDs,
		PayableNumbers:    payableNumbers,
		InvoiceIDs:        make([]uuid.UUID, 0),
		InvoiceNumbers:    make([]string, 0),
		RequestAmount:     requestAmount.Amount(),
		ApprovedAmount:    decimal.Zero,
		PaymentMethod:     paymentMethod,
		Applicant:         applicant,
		Status:            RequestStatusDraft,
	}

	pr.AddDomainEvent(NewPaymentRequestCreatedEvent(pr))

	return pr, nil
}

// SetBankDetails records the target account for the payment
func (pr *PaymentRequest) SetBankDetails(bankAccount, bankName string) {
	pr.BankAccount = bankAccount
	pr.BankName = bankName
	pr.UpdatedAt = time.Now()
	pr.IncrementVersion()
}

// SetInvoiceReferences attaches supporting invoice snapshots
func (pr *PaymentRequest) SetInvoiceReferences(invoiceIDs []uuid.UUID, invoiceNumbers []string) error {
	if len(invoiceIDs) != len(invoiceNumbers) {
		return shared.NewDomainError("INVALID_INVOICES", "Invoice IDs and numbers must match")
	}
	pr.InvoiceIDs = invoiceIDs
	pr.InvoiceNumbers = invoiceNumbers
	pr.UpdatedAt = time.Now()
	pr.IncrementVersion()
	return nil
}

// SetExpectedPayDate records when the payment is expected to go out
func (pr *PaymentRequest) SetExpectedPayDate(date *time.Time) {
	pr.ExpectedPayDate = date
	pr.UpdatedAt = time.Now()
	pr.IncrementVersion()
}

// Submit moves a draft into the approval queue
func (pr *PaymentRequest) Submit() error {
	if pr.Status != RequestStatusDraft {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot submit request in %s status", pr.Status))
	}

	pr.Status = RequestStatusPending
	pr.UpdatedAt = time.Now()
	pr.IncrementVersion()

	return nil
}

// Approve approves the request. The approved amount equals the requested
// amount; partial approval is not supported.
func (pr *PaymentRequest) Approve(approver, remark string) error {
	if !pr.Status.CanApprove() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot approve request in %s status", pr.Status))
	}
	if approver == "" {
		return shared.NewDomainError("INVALID_APPROVER", "Approver is required")
	}

	now := time.Now()
	pr.Status = RequestStatusApproved
	pr.ApprovedAmount = pr.RequestAmount
	pr.Approver = approver
	pr.ApprovalRemark = remark
	pr.ApprovedAt = &now
	pr.UpdatedAt = now
	pr.IncrementVersion()

	pr.AddDomainEvent(NewPaymentRequestApprovedEvent(pr))

	return nil
}

// Reject rejects the request. The approved amount stays zero.
func (pr *PaymentRequest) Reject(approver, remark string) error {
	if !pr.Status.CanApprove() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot reject request in %s status", pr.Status))
	}
	if approver == "" {
		return shared.NewDomainError("INVALID_APPROVER", "Approver is required")
	}

	now := time.Now()
	pr.Status = RequestStatusRejected
	pr.ApprovedAmount = decimal.Zero
	pr.Approver = approver
	pr.ApprovalRemark = remark
	pr.RejectedAt = &now
	pr.UpdatedAt = now
	pr.IncrementVersion()

	pr.AddDomainEvent(NewPaymentRequestRejectedEvent(pr))

	return nil
}

// Cancel withdraws the request before it is decided
func (pr *PaymentRequest) Cancel() error {
	if !pr.Status.CanCancel() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel request in %s status", pr.Status))
	}

	now := time.Now()
	pr.Status = RequestStatusCancelled
	pr.CancelledAt = &now
	pr.UpdatedAt = now
	pr.IncrementVersion()

	return nil
}

// MarkPaid records that the approved request was executed into a voucher
func (pr *PaymentRequest) MarkPaid(voucherID uuid.UUID, payDate time.Time) error {
	if pr.Status != RequestStatusApproved {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot pay request in %s status", pr.Status))
	}
	if voucherID == uuid.Nil {
		return shared.NewDomainError("INVALID_VOUCHER", "Voucher ID cannot be empty")
	}
	if payDate.IsZero() {
		return shared.NewDomainError("INVALID_PAY_DATE", "Pay date is required")
	}

	pr.Status = RequestStatusPaid
	pr.VoucherID = &voucherID
	pr.ActualPayDate = &payDate
	pr.UpdatedAt = time.Now()
	pr.IncrementVersion()

	pr.AddDomainEvent(NewPaymentRequestPaidEvent(pr))

	return nil
}

// HasPayable returns true if the payable belongs to this request
func (pr *PaymentRequest) HasPayable(payableID uuid.UUID) bool {
	for _, id := range pr.PayableIDs {
		if id == payableID {
			return true
		}
	}
	return false
}

// GetApprovedAmountMoney returns approved amount as Money
func (pr *PaymentRequest) GetApprovedAmountMoney() valueobject.Money {
	return valueobject.NewMoneyCNY(pr.ApprovedAmount)
}

// IsApproved returns true if the request is approved and awaiting payment
func (pr *PaymentRequest) IsApproved() bool {
	return pr.Status == RequestStatusApproved
}

// IsPaid returns true if the request has been executed
func (pr *PaymentRequest) IsPaid() bool {
	return pr.Status == RequestStatusPaid
}
