package ledger

import (
	"fmt"
	"time"

	"github.com/fzhange/financial-sys/internal/domain/shared"
	"github.com/fzhange/financial-sys/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceType represents the kind of tax invoice
type InvoiceType string

const (
	InvoiceTypeVATSpecial InvoiceType = "VAT_SPECIAL"
	InvoiceTypeVATNormal  InvoiceType = "VAT_NORMAL"
	InvoiceTypeElectronic InvoiceType = "ELECTRONIC"
	InvoiceTypeOther      InvoiceType = "OTHER"
)

// IsValid checks if the invoice type is valid
func (t InvoiceType) IsValid() bool {
	switch t {
	case InvoiceTypeVATSpecial, InvoiceTypeVATNormal, InvoiceTypeElectronic, InvoiceTypeOther:
		return true
	}
	return false
}

// InvoiceVerifyStatus represents the manual verification state of an invoice
type InvoiceVerifyStatus string

const (
	InvoiceVerifyStatusPending  InvoiceVerifyStatus = "PENDING"
	InvoiceVerifyStatusVerified InvoiceVerifyStatus = "VERIFIED"
	InvoiceVerifyStatusFailed   InvoiceVerifyStatus = "FAILED"
)

// IsValid checks if the verify status is valid
func (s InvoiceVerifyStatus) IsValid() bool {
	switch s {
	case InvoiceVerifyStatusPending, InvoiceVerifyStatusVerified, InvoiceVerifyStatusFailed:
		return true
	}
	return false
}

// InvoiceMatchStatus reflects whether the invoice is linked to any payable
type InvoiceMatchStatus string

const (
	InvoiceMatchStatusPending InvoiceMatchStatus = "PENDING"
	InvoiceMatchStatusMatched InvoiceMatchStatus = "MATCHED"
)

// Invoice represents a supplier tax invoice registered in the system.
// MatchedAmount tracks how much of the invoice value is consumed by
// payable links; it can never exceed TotalAmount.
type Invoice struct {
	shared.BaseAggregateRoot
	InvoiceNumber  string              `json:"invoice_number"`
	InvoiceCode    string              `json:"invoice_code"`
	InvoiceType    InvoiceType         `json:"invoice_type"`
	SupplierID     uuid.UUID           `json:"supplier_id"`
	SupplierName   string              `json:"supplier_name"`
	BuyerName      string              `json:"buyer_name"`
	BuyerTaxNumber string              `json:"buyer_tax_number"`
	InvoiceDate    time.Time           `json:"invoice_date"`
	Amount         decimal.Decimal     `json:"amount"`     // Pre-tax amount
	TaxRate        decimal.Decimal     `json:"tax_rate"`   // e.g. 0.13
	TaxAmount      decimal.Decimal     `json:"tax_amount"`
	TotalAmount    decimal.Decimal     `json:"total_amount"` // Amount + TaxAmount
	MatchedAmount  decimal.Decimal     `json:"matched_amount"`
	VerifyStatus   InvoiceVerifyStatus `json:"verify_status"`
	VerifyRemark   string              `json:"verify_remark"`
	MatchStatus    InvoiceMatchStatus  `json:"match_status"`
	PayableIDs     []uuid.UUID         `json:"payable_ids"`
	PayableNumbers []string            `json:"payable_numbers"`
	Remark         string              `json:"remark"`
	VerifiedAt     *time.Time          `json:"verified_at"`
	VerifiedBy     string              `json:"verified_by"`
}

// NewInvoice registers a new invoice
func NewInvoice(
	invoiceNumber string,
	invoiceCode string,
	invoiceType InvoiceType,
	supplierID uuid.UUID,
	supplierName string,
	invoiceDate time.Time,
	amount valueobject.Money,
	taxRate decimal.Decimal,
	taxAmount valueobject.Money,
) (*Invoice, error) {
	if invoiceNumber == "" {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot be empty")
	}
	if invoiceCode == "" {
		return nil, shared.NewDomainError("INVALID_INVOICE_CODE", "Invoice code cannot be empty")
	}
	if !invoiceType.IsValid() {
		return nil, shared.NewDomainError("INVALID_INVOICE_TYPE", "Invoice type is not valid")
	}
	if supplierID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SUPPLIER", "Supplier ID cannot be empty")
	}
	if supplierName == "" {
		return nil, shared.NewDomainError("INVALID_SUPPLIER_NAME", "Supplier name cannot be empty")
	}
	if invoiceDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_INVOICE_DATE", "Invoice date is required")
	}
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Invoice amount must be positive")
	}
	if taxRate.IsNegative() || taxRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return nil, shared.NewDomainError("INVALID_TAX_RATE", "Tax rate must be in [0, 1)")
	}
	if taxAmount.Amount().IsNegative() {
		return nil, shared.NewDomainError("INVALID_TAX_AMOUNT", "Tax amount cannot be negative")
	}

	inv := &Invoice{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		InvoiceNumber:     invoiceNumber,
		InvoiceCode:       invoiceCode,
		InvoiceType:       invoiceType,
		SupplierID:        supplierID,
		SupplierName:      supplierName,
		InvoiceDate:       invoiceDate,
		Amount:            amount.Amount(),
		TaxRate:           taxRate,
		TaxAmount:         taxAmount.Amount(),
		TotalAmount:       amount.Amount().Add(taxAmount.Amount()),
		MatchedAmount:     decimal.Zero,
		VerifyStatus:      InvoiceVerifyStatusPending,
		MatchStatus:       InvoiceMatchStatusPending,
		PayableIDs:        make([]uuid.UUID, 0),
		PayableNumbers:    make([]string, 0),
	}

	inv.AddDomainEvent(NewInvoiceRegisteredEvent(inv))

	return inv, nil
}

// SetBuyer records the buyer side of the invoice
func (inv *Invoice) SetBuyer(name, taxNumber string) {
	inv.BuyerName = name
	inv.BuyerTaxNumber = taxNumber
	inv.UpdatedAt = time.Now()
	inv.IncrementVersion()
}

// UnmatchedAmount returns the invoice value not yet consumed by payable links
func (inv *Invoice) UnmatchedAmount() decimal.Decimal {
	return inv.TotalAmount.Sub(inv.MatchedAmount)
}

// Verify marks the invoice as verified. Verification is irreversible.
func (inv *Invoice) Verify(verifiedBy string) error {
	if inv.VerifyStatus == InvoiceVerifyStatusVerified {
		return shared.NewDomainError("INVALID_STATE", "Invoice is already verified")
	}
	if verifiedBy == "" {
		return shared.NewDomainError("INVALID_USER", "Verifying user is required")
	}

	now := time.Now()
	inv.VerifyStatus = InvoiceVerifyStatusVerified
	inv.VerifiedAt = &now
	inv.VerifiedBy = verifiedBy
	inv.VerifyRemark = ""
	inv.UpdatedAt = now
	inv.IncrementVersion()

	inv.AddDomainEvent(NewInvoiceVerifiedEvent(inv))

	return nil
}

// FailVerification marks the invoice as failed verification with a reason
func (inv *Invoice) FailVerification(reason string) error {
	if inv.VerifyStatus == InvoiceVerifyStatusVerified {
		return shared.NewDomainError("INVALID_STATE", "Cannot fail a verified invoice")
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Failure reason is required")
	}

	inv.VerifyStatus = InvoiceVerifyStatusFailed
	inv.VerifyRemark = reason
	inv.UpdatedAt = time.Now()
	inv.IncrementVersion()

	return nil
}

// ApplyMatch consumes part of the invoice value for a payable link.
// The caller computes availability across all relations; the aggregate
// enforces its own ceiling.
func (inv *Invoice) ApplyMatch(payableID uuid.UUID, payableNumber string, amount decimal.Decimal) error {
	if payableID == uuid.Nil {
		return shared.NewDomainError("INVALID_PAYABLE", "Payable ID cannot be empty")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Match amount must be positive")
	}
	if amount.GreaterThan(inv.UnmatchedAmount()) {
		return shared.NewDomainError("EXCEEDS_AVAILABLE", fmt.Sprintf("Match amount %s exceeds available amount %s", amount.StringFixed(2), inv.UnmatchedAmount().StringFixed(2)))
	}

	inv.MatchedAmount = inv.MatchedAmount.Add(amount)
	if !inv.hasPayable(payableID) {
		inv.PayableIDs = append(inv.PayableIDs, payableID)
		inv.PayableNumbers = append(inv.PayableNumbers, payableNumber)
	}
	inv.MatchStatus = InvoiceMatchStatusMatched
	inv.UpdatedAt = time.Now()
	inv.IncrementVersion()

	return nil
}

// ReleaseMatch reverses a payable link entirely, freeing the matched value.
// When the last link goes away the invoice returns to PENDING.
func (inv *Invoice) ReleaseMatch(payableID uuid.UUID, amount decimal.Decimal) error {
	if !inv.hasPayable(payableID) {
		return shared.NewDomainError("NOT_LINKED", "Invoice is not linked to this payable")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Release amount must be positive")
	}

	inv.MatchedAmount = inv.MatchedAmount.Sub(amount)
	if inv.MatchedAmount.IsNegative() {
		inv.MatchedAmount = decimal.Zero
	}
	for i, id := range inv.PayableIDs {
		if id == payableID {
			inv.PayableIDs = append(inv.PayableIDs[:i], inv.PayableIDs[i+1:]...)
			inv.PayableNumbers = append(inv.PayableNumbers[:i], inv.PayableNumbers[i+1:]...)
			break
		}
	}
	if len(inv.PayableIDs) == 0 {
		inv.MatchStatus = InvoiceMatchStatusPending
	}
	inv.UpdatedAt = time.Now()
	inv.IncrementVersion()

	return nil
}

// SetRemark sets the remark
func (inv *Invoice) SetRemark(remark string) {
	inv.Remark = remark
	inv.UpdatedAt = time.Now()
	inv.IncrementVersion()
}

func (inv *Invoice) hasPayable(payableID uuid.UUID) bool {
	for _, id := range inv.PayableIDs {
		if id == payableID {
			return true
		}
	}
	return false
}

// IsVerified returns true if the invoice passed verification
func (inv *Invoice) IsVerified() bool {
	return inv.VerifyStatus == InvoiceVerifyStatusVerified
}

// IsMatched returns true if the invoice is linked to at least one payable
func (inv *Invoice) IsMatched() bool {
	return inv.MatchStatus == InvoiceMatchStatusMatched
}

// GetTotalAmountMoney returns total amount as Money
func (inv *Invoice) GetTotalAmountMoney() valueobject.Money {
	return valueobject.NewMoneyCNY(inv.TotalAmount)
}
