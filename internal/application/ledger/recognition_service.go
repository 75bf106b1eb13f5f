package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fzhange/financial-sys/internal/domain/shared"
)

// RecognizedInvoice is the field guess extracted from an uploaded invoice
// document. Nothing here touches ledger state; the caller reviews the guess
// and registers the invoice explicitly.
type RecognizedInvoice struct {
	InvoiceNumber string             `json:"invoice_number"`
	InvoiceCode   string             `json:"invoice_code"`
	InvoiceType   string             `json:"invoice_type"`
	SupplierName  string             `json:"supplier_name"`
	BuyerName     string             `json:"buyer_name,omitempty"`
	InvoiceDate   *time.Time         `json:"invoice_date,omitempty"`
	Amount        decimal.Decimal    `json:"amount"`
	TaxRate       decimal.Decimal    `json:"tax_rate"`
	TaxAmount     decimal.Decimal    `json:"tax_amount"`
	TotalAmount   decimal.Decimal    `json:"total_amount"`
	Confidence    map[string]float32 `json:"confidence,omitempty"`
}

// InvoiceRecognizer extracts invoice fields from a scanned document
type InvoiceRecognizer interface {
	Recognize(ctx context.Context, content []byte, mimeType string) (*RecognizedInvoice, error)
}

// RecognitionService exposes invoice document recognition to the API layer
type RecognitionService struct {
	recognizer InvoiceRecognizer
}

// NewRecognitionService creates a new RecognitionService. A nil recognizer is
// valid and means recognition is not configured for this deployment.
func NewRecognitionService(recognizer InvoiceRecognizer) *RecognitionService {
	return &RecognitionService{recognizer: recognizer}
}

// RecognizeInvoice runs the recognizer over an uploaded document and returns
// the extracted field guess.
func (s *RecognitionService) RecognizeInvoice(ctx context.Context, content []byte, mimeType string) (*RecognizedInvoice, error) {
	if s.recognizer == nil {
		return nil, shared.NewDomainError("RECOGNITION_DISABLED", "Invoice recognition is not configured")
	}
	if len(content) == 0 {
		return nil, shared.NewDomainError("EMPTY_DOCUMENT", "Uploaded document is empty")
	}
	return s.recognizer.Recognize(ctx, content, mimeType)
}
