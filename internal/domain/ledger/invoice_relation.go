package ledger

import (
	"time"

	"github.com/fzhange/financial-sys/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PayableInvoiceRelation is the first-class link between one payable and one
// invoice, carrying the amount of the invoice consumed by that payable.
// A (payable, invoice) pair has at most one relation; re-linking the same
// pair increases the existing relation in place.
type PayableInvoiceRelation struct {
	ID                 uuid.UUID       `json:"id"`
	PayableID          uuid.UUID       `json:"payable_id"`
	PayableNumber      string          `json:"payable_number"`
	InvoiceID          uuid.UUID       `json:"invoice_id"`
	InvoiceNumber      string          `json:"invoice_number"`
	InvoiceTotalAmount decimal.Decimal `json:"invoice_total_amount"` // Snapshot at link time
	RelatedAmount      decimal.Decimal `json:"related_amount"`
	Operator           string          `json:"operator"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// NewPayableInvoiceRelation creates a new relation between a payable and an invoice
func NewPayableInvoiceRelation(
	payableID uuid.UUID,
	payableNumber string,
	invoiceID uuid.UUID,
	invoiceNumber string,
	invoiceTotalAmount decimal.Decimal,
	relatedAmount decimal.Decimal,
	operator string,
) (*PayableInvoiceRelation, error) {
	if payableID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PAYABLE", "Payable ID cannot be empty")
	}
	if invoiceID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INVOICE", "Invoice ID cannot be empty")
	}
	if relatedAmount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Related amount must be positive")
	}

	now := time.Now()
	return &PayableInvoiceRelation{
		ID:                 uuid.New(),
		PayableID:          payableID,
		PayableNumber:      payableNumber,
		InvoiceID:          invoiceID,
		InvoiceNumber:      invoiceNumber,
		InvoiceTotalAmount: invoiceTotalAmount,
		RelatedAmount:      relatedAmount,
		Operator:           operator,
		CreatedAt:          now,
		UpdatedAt:          now,
	}, nil
}

// IncreaseAmount grows the relation when the same pair is linked again
func (r *PayableInvoiceRelation) IncreaseAmount(amount decimal.Decimal, operator string) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Increase amount must be positive")
	}
	r.RelatedAmount = r.RelatedAmount.Add(amount)
	r.Operator = operator
	r.UpdatedAt = time.Now()
	return nil
}
