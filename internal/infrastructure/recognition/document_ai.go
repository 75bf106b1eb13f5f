// Package recognition provides invoice document recognition backed by
// Google Document AI.
package recognition

import (
	"context"
	"fmt"
	"strings"
	"time"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	appledger "github.com/fzhange/financial-sys/internal/application/ledger"
	"github.com/fzhange/financial-sys/internal/domain/ledger"
	"github.com/fzhange/financial-sys/internal/domain/shared"
	"github.com/fzhange/financial-sys/internal/infrastructure/config"
)

// MaxDocumentSizeBytes is the maximum document size accepted for processing (20MB)
const MaxDocumentSizeBytes = 20 * 1024 * 1024

// DocumentAIRecognizer implements InvoiceRecognizer using Google Document AI
type DocumentAIRecognizer struct {
	client *documentai.DocumentProcessorClient
	cfg    config.RecognitionConfig
	logger *zap.Logger
}

// NewDocumentAIRecognizer creates a recognizer from the service configuration.
// The processing endpoint is regional; locations other than the "us"
// multi-region resolve through the location-prefixed host.
func NewDocumentAIRecognizer(ctx context.Context, cfg config.RecognitionConfig, logger *zap.Logger) (*DocumentAIRecognizer, error) {
	var opts []option.ClientOption
	if cfg.Location != "" && cfg.Location != "us" {
		endpoint := fmt.Sprintf("%s-documentai.googleapis.com:443", cfg.Location)
		opts = append(opts, option.WithEndpoint(endpoint))
	}
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := documentai.NewDocumentProcessorClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Document AI client: %w", err)
	}

	return &DocumentAIRecognizer{
		client: client,
		cfg:    cfg,
		logger: logger,
	}, nil
}

// Close releases the underlying gRPC connection
func (r *DocumentAIRecognizer) Close() error {
	return r.client.Close()
}

// Recognize runs the configured invoice processor over the document and maps
// its entities to an invoice field guess.
func (r *DocumentAIRecognizer) Recognize(ctx context.Context, content []byte, mimeType string) (*appledger.RecognizedInvoice, error) {
	if len(content) > MaxDocumentSizeBytes {
		return nil, shared.NewDomainError("DOCUMENT_TOO_LARGE", fmt.Sprintf("Document exceeds %d bytes", MaxDocumentSizeBytes))
	}
	if mimeType == "" {
		mimeType = "application/pdf"
	}

	processCtx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	req := &documentaipb.ProcessRequest{
		Name: r.processorName(),
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{
				Content:  content,
				MimeType: mimeType,
			},
		},
	}

	resp, err := r.client.ProcessDocument(processCtx, req)
	if err != nil {
		return nil, r.mapProcessingError(err)
	}
	if resp.Document == nil {
		return nil, shared.NewDomainError("RECOGNITION_FAILED", "Recognizer returned no document")
	}

	result := r.extractFields(resp.Document)

	r.logger.Info("invoice recognition completed",
		zap.String("invoice_number", result.InvoiceNumber),
		zap.String("supplier_name", result.SupplierName),
		zap.String("total_amount", result.TotalAmount.String()),
	)

	return result, nil
}

func (r *DocumentAIRecognizer) processorName() string {
	return fmt.Sprintf("projects/%s/locations/%s/processors/%s",
		r.cfg.ProjectID, r.cfg.Location, r.cfg.ProcessorID)
}

func (r *DocumentAIRecognizer) mapProcessingError(err error) error {
	errStr := err.Error()
	switch {
	case strings.Contains(errStr, "PERMISSION_DENIED"):
		return shared.NewDomainError("RECOGNITION_FAILED", "Insufficient permissions for Document AI")
	case strings.Contains(errStr, "QUOTA_EXCEEDED"):
		return shared.NewDomainError("RECOGNITION_FAILED", "Document AI quota exceeded")
	case strings.Contains(errStr, "NOT_FOUND"):
		return shared.NewDomainError("RECOGNITION_FAILED", fmt.Sprintf("Processor not found: %s", r.cfg.ProcessorID))
	case strings.Contains(errStr, "INVALID_ARGUMENT"):
		return shared.NewDomainError("INVALID_DOCUMENT", "Document format not supported or corrupted")
	case strings.Contains(errStr, "context deadline exceeded"):
		return shared.NewDomainError("RECOGNITION_TIMEOUT", "Recognition timed out")
	default:
		return fmt.Errorf("document recognition failed: %w", err)
	}
}

func (r *DocumentAIRecognizer) extractFields(doc *documentaipb.Document) *appledger.RecognizedInvoice {
	result := &appledger.RecognizedInvoice{
		InvoiceType: string(ledger.InvoiceTypeVATNormal),
		Confidence:  make(map[string]float32),
	}

	for _, entity := range doc.Entities {
		value := strings.TrimSpace(entity.MentionText)
		result.Confidence[entity.Type] = entity.Confidence

		switch entity.Type {
		case "invoice_id", "invoice_number":
			result.InvoiceNumber = value
		case "invoice_code":
			result.InvoiceCode = value
		case "invoice_type":
			if t := mapInvoiceType(value); t != "" {
				result.InvoiceType = t
			}
		case "supplier_name", "vendor_name":
			result.SupplierName = value
		case "buyer_name", "customer_name":
			result.BuyerName = value
		case "invoice_date":
			if date, ok := extractDate(entity); ok {
				result.InvoiceDate = &date
			}
		case "net_amount", "subtotal_amount":
			if amount, ok := extractAmount(entity); ok {
				result.Amount = amount
			}
		case "total_tax_amount", "vat_amount":
			if amount, ok := extractAmount(entity); ok {
				result.TaxAmount = amount
			}
		case "total_amount", "gross_amount":
			if amount, ok := extractAmount(entity); ok {
				result.TotalAmount = amount
			}
		case "vat_rate", "tax_rate":
			if rate, ok := extractRate(value); ok {
				result.TaxRate = rate
			}
		}
	}

	// Fill in whichever of net/tax/total the processor missed
	if result.TotalAmount.IsZero() && !result.Amount.IsZero() {
		result.TotalAmount = result.Amount.Add(result.TaxAmount)
	}
	if result.Amount.IsZero() && !result.TotalAmount.IsZero() {
		result.Amount = result.TotalAmount.Sub(result.TaxAmount)
	}
	if result.TaxRate.IsZero() && !result.Amount.IsZero() && !result.TaxAmount.IsZero() {
		result.TaxRate = result.TaxAmount.Div(result.Amount).Round(4)
	}

	return result
}

func mapInvoiceType(value string) string {
	lower := strings.ToLower(value)
	switch {
	case strings.Contains(lower, "special") || strings.Contains(value, "专用"):
		return string(ledger.InvoiceTypeVATSpecial)
	case strings.Contains(lower, "electronic") || strings.Contains(value, "电子"):
		return string(ledger.InvoiceTypeElectronic)
	case strings.Contains(lower, "normal") || strings.Contains(value, "普通"):
		return string(ledger.InvoiceTypeVATNormal)
	}
	return ""
}

func extractDate(entity *documentaipb.Document_Entity) (time.Time, bool) {
	if entity.NormalizedValue != nil {
		if dv := entity.NormalizedValue.GetDateValue(); dv != nil {
			return time.Date(int(dv.Year), time.Month(dv.Month), int(dv.Day), 0, 0, 0, 0, time.UTC), true
		}
	}
	for _, layout := range []string{"2006-01-02", "2006/01/02", "02.01.2006", "January 2, 2006"} {
		if date, err := time.Parse(layout, strings.TrimSpace(entity.MentionText)); err == nil {
			return date, true
		}
	}
	return time.Time{}, false
}

func extractAmount(entity *documentaipb.Document_Entity) (decimal.Decimal, bool) {
	if entity.NormalizedValue != nil {
		if mv := entity.NormalizedValue.GetMoneyValue(); mv != nil {
			return decimal.New(mv.Units, 0).
				Add(decimal.New(int64(mv.Nanos), -9)).
				Round(2), true
		}
	}

	cleaned := strings.NewReplacer(",", "", "¥", "", "$", "", "€", "", " ", "").
		Replace(entity.MentionText)
	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, false
	}
	return amount, true
}

func extractRate(value string) (decimal.Decimal, bool) {
	cleaned := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(value), "%"))
	rate, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, false
	}
	// Percent notation comes back as e.g. "13"; as a fraction it stays below 1
	if rate.GreaterThan(decimal.NewFromInt(1)) {
		rate = rate.Div(decimal.NewFromInt(100))
	}
	return rate, true
}

// Ensure DocumentAIRecognizer implements InvoiceRecognizer
var _ appledger.InvoiceRecognizer = (*DocumentAIRecognizer)(nil)
