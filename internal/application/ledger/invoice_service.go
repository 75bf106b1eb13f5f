package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fzhange/financial-sys/internal/domain/ledger"
	"github.com/fzhange/financial-sys/internal/domain/shared"
	"github.com/fzhange/financial-sys/internal/domain/shared/valueobject"
)

// InvoiceService provides application-level invoice operations
type InvoiceService struct {
	invoiceRepo  ledger.InvoiceRepository
	payableRepo  ledger.AccountPayableRepository
	relationRepo ledger.PayableInvoiceRelationRepository
	txManager    shared.TransactionManager
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(
	invoiceRepo ledger.InvoiceRepository,
	payableRepo ledger.AccountPayableRepository,
	relationRepo ledger.PayableInvoiceRelationRepository,
	txManager shared.TransactionManager,
) *InvoiceService {
	return &InvoiceService{
		invoiceRepo:  invoiceRepo,
		payableRepo:  payableRepo,
		relationRepo: relationRepo,
		txManager:    txManager,
	}
}

// InvoiceResponse represents an invoice in API responses
type InvoiceResponse struct {
	ID             uuid.UUID       `json:"id"`
	InvoiceNumber  string          `json:"invoice_number"`
	InvoiceCode    string          `json:"invoice_code"`
	InvoiceType    string          `json:"invoice_type"`
	SupplierID     uuid.UUID       `json:"supplier_id"`
	SupplierName   string          `json:"supplier_name"`
	BuyerName      string          `json:"buyer_name,omitempty"`
	BuyerTaxNumber string          `json:"buyer_tax_number,omitempty"`
	InvoiceDate    time.Time       `json:"invoice_date"`
	Amount         decimal.Decimal `json:"amount"`
	TaxRate        decimal.Decimal `json:"tax_rate"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	MatchedAmount  decimal.Decimal `json:"matched_amount"`
	AvailableToUse decimal.Decimal `json:"available_to_use"`
	// Amount already related to the payable being edited; only set by the
	// available-invoices projection when a payable is excluded.
	CurrentRelatedAmount *decimal.Decimal `json:"current_related_amount,omitempty"`
	VerifyStatus         string           `json:"verify_status"`
	VerifyRemark         string           `json:"verify_remark,omitempty"`
	MatchStatus          string           `json:"match_status"`
	PayableNumbers       []string         `json:"payable_numbers,omitempty"`
	Remark               string           `json:"remark,omitempty"`
	VerifiedAt           *time.Time       `json:"verified_at,omitempty"`
	VerifiedBy           string           `json:"verified_by,omitempty"`
	CreatedAt            time.Time        `json:"created_at"`
	UpdatedAt            time.Time        `json:"updated_at"`
	Version              int              `json:"version"`
}

// RegisterInvoiceRequest represents a request to register a supplier invoice
type RegisterInvoiceRequest struct {
	InvoiceNumber string          `json:"invoice_number" binding:"required"`
	InvoiceCode   string          `json:"invoice_code" binding:"required"`
	InvoiceType   string          `json:"invoice_type" binding:"required"`
	SupplierID    uuid.UUID       `json:"supplier_id" binding:"required"`
	SupplierName  string          `json:"supplier_name" binding:"required"`
	InvoiceDate   time.Time       `json:"invoice_date" binding:"required"`
	Amount        decimal.Decimal `json:"amount" binding:"required"`
	TaxRate       decimal.Decimal `json:"tax_rate"`
	TaxAmount     decimal.Decimal `json:"tax_amount"`
	BuyerName     string          `json:"buyer_name"`
	BuyerTaxID    string          `json:"buyer_tax_id"`
	Remark        string          `json:"remark"`
}

// InvoiceListFilter defines filtering options for invoice list queries
type InvoiceListFilter struct {
	Search       string     `form:"search"`
	SupplierID   *uuid.UUID `form:"supplier_id"`
	InvoiceType  string     `form:"invoice_type"`
	VerifyStatus string     `form:"verify_status"`
	MatchStatus  string     `form:"match_status"`
	FromDate     *time.Time `form:"from_date"`
	ToDate       *time.Time `form:"to_date"`
	Page         int        `form:"page"`
	PageSize     int        `form:"page_size"`
}

// RegisterInvoice registers a new supplier invoice.
// The invoice number and code pair must be unique.
func (s *InvoiceService) RegisterInvoice(ctx context.Context, req RegisterInvoiceRequest) (*InvoiceResponse, error) {
	existing, err := s.invoiceRepo.FindByNumberAndCode(ctx, req.InvoiceNumber, req.InvoiceCode)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Invoice with this number and code already exists")
	}

	invoice, err := ledger.NewInvoice(
		req.InvoiceNumber,
		req.InvoiceCode,
		ledger.InvoiceType(req.InvoiceType),
		req.SupplierID,
		req.SupplierName,
		req.InvoiceDate,
		valueobject.NewMoneyCNY(req.Amount),
		req.TaxRate,
		valueobject.NewMoneyCNY(req.TaxAmount),
	)
	if err != nil {
		return nil, err
	}

	if req.BuyerName != "" || req.BuyerTaxID != "" {
		invoice.SetBuyer(req.BuyerName, req.BuyerTaxID)
	}
	if req.Remark != "" {
		invoice.SetRemark(req.Remark)
	}

	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		return nil, err
	}

	return toInvoiceResponse(invoice, nil), nil
}

// ImportResult reports the outcome of a batch invoice import
type ImportResult struct {
	Imported int           `json:"imported"`
	Skipped  int           `json:"skipped"`
	Errors   []ImportError `json:"errors,omitempty"`
}

// ImportError describes a single rejected row in a batch import
type ImportError struct {
	Row     int    `json:"row"`
	Invoice string `json:"invoice"`
	Reason  string `json:"reason"`
}

// ImportInvoices registers a batch of invoices. Rows that duplicate an
// existing invoice or fail validation are reported, not fatal; valid rows
// are imported regardless.
func (s *InvoiceService) ImportInvoices(ctx context.Context, reqs []RegisterInvoiceRequest) (*ImportResult, error) {
	result := &ImportResult{}

	for i, req := range reqs {
		_, err := s.RegisterInvoice(ctx, req)
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, ImportError{
				Row:     i + 1,
				Invoice: fmt.Sprintf("%s/%s", req.InvoiceCode, req.InvoiceNumber),
				Reason:  err.Error(),
			})
			continue
		}
		result.Imported++
	}

	return result, nil
}

// GetInvoiceByID gets an invoice by ID
func (s *InvoiceService) GetInvoiceByID(ctx context.Context, id uuid.UUID) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Invoice not found")
	}
	return toInvoiceResponse(invoice, nil), nil
}

// ListInvoices lists invoices with filtering
func (s *InvoiceService) ListInvoices(ctx context.Context, filter InvoiceListFilter) ([]InvoiceResponse, int64, error) {
	domainFilter := ledger.InvoiceFilter{
		SupplierID: filter.SupplierID,
		FromDate:   filter.FromDate,
		ToDate:     filter.ToDate,
	}
	domainFilter.Page = filter.Page
	domainFilter.PageSize = filter.PageSize
	domainFilter.Search = filter.Search

	if filter.InvoiceType != "" {
		invoiceType := ledger.InvoiceType(filter.InvoiceType)
		domainFilter.InvoiceType = &invoiceType
	}
	if filter.VerifyStatus != "" {
		status := ledger.InvoiceVerifyStatus(filter.VerifyStatus)
		domainFilter.VerifyStatus = &status
	}
	if filter.MatchStatus != "" {
		status := ledger.InvoiceMatchStatus(filter.MatchStatus)
		domainFilter.MatchStatus = &status
	}

	invoices, err := s.invoiceRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.invoiceRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]InvoiceResponse, len(invoices))
	for i, inv := range invoices {
		responses[i] = *toInvoiceResponse(&inv, nil)
	}

	return responses, total, nil
}

// GetInvoiceSummary gets aggregate invoice figures, optionally per supplier
func (s *InvoiceService) GetInvoiceSummary(ctx context.Context, supplierID *uuid.UUID) (*ledger.InvoiceSummary, error) {
	return s.invoiceRepo.Summarize(ctx, supplierID)
}

// VerifyInvoice marks an invoice as verified. Verification is irreversible.
func (s *InvoiceService) VerifyInvoice(ctx context.Context, invoiceID uuid.UUID, verifiedBy string) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Invoice not found")
	}

	if err := invoice.Verify(verifiedBy); err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.SaveWithLock(ctx, invoice); err != nil {
		return nil, err
	}

	return toInvoiceResponse(invoice, nil), nil
}

// FailInvoiceVerification marks an invoice verification as failed
func (s *InvoiceService) FailInvoiceVerification(ctx context.Context, invoiceID uuid.UUID, reason string) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Invoice not found")
	}

	if err := invoice.FailVerification(reason); err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.SaveWithLock(ctx, invoice); err != nil {
		return nil, err
	}

	return toInvoiceResponse(invoice, nil), nil
}

// GetAvailableInvoices lists a supplier's verified invoices with value still
// available for linking. Availability is the total amount minus everything
// already related, the current payable's relation included. When
// excludePayableID is set, the amount related to that payable is reported
// separately so the caller can show the existing link set while editing.
func (s *InvoiceService) GetAvailableInvoices(ctx context.Context, supplierID uuid.UUID, excludePayableID *uuid.UUID) ([]InvoiceResponse, error) {
	invoices, err := s.invoiceRepo.FindBySupplier(ctx, supplierID)
	if err != nil {
		return nil, err
	}

	responses := make([]InvoiceResponse, 0, len(invoices))
	for i := range invoices {
		inv := &invoices[i]
		if !inv.IsVerified() {
			continue
		}

		available := inv.UnmatchedAmount()
		if available.LessThanOrEqual(decimal.Zero) {
			continue
		}

		response := toInvoiceResponse(inv, &available)
		if excludePayableID != nil {
			relation, err := s.relationRepo.FindByPair(ctx, *excludePayableID, inv.ID)
			if err != nil {
				return nil, err
			}
			if relation != nil {
				current := relation.RelatedAmount
				response.CurrentRelatedAmount = &current
			}
		}

		responses = append(responses, *response)
	}

	return responses, nil
}

// InvoiceLinkLine is one invoice-to-payable link in a LinkInvoices request
type InvoiceLinkLine struct {
	InvoiceID uuid.UUID       `json:"invoice_id" binding:"required"`
	Amount    decimal.Decimal `json:"amount" binding:"required"`
}

// LinkInvoicesRequest represents a request to link invoices to a payable
type LinkInvoicesRequest struct {
	Lines    []InvoiceLinkLine `json:"lines" binding:"required,min=1"`
	Operator string            `json:"operator"`
}

// LinkInvoices links one or more invoices to a payable. All lines are
// validated before any is applied; one bad line rejects the whole request.
func (s *InvoiceService) LinkInvoices(ctx context.Context, payableID uuid.UUID, req LinkInvoicesRequest) (*AccountPayableResponse, error) {
	var payable *ledger.AccountPayable

	err := s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		payable, err = s.payableRepo.FindByID(ctx, payableID)
		if err != nil {
			return err
		}
		if payable == nil {
			return shared.NewDomainError("NOT_FOUND", "Account payable not found")
		}
		if payable.IsCancelled() {
			return shared.NewDomainError("INVALID_STATE", "Cannot link invoices to a cancelled payable")
		}

		seen := make(map[uuid.UUID]bool, len(req.Lines))
		invoices := make([]*ledger.Invoice, len(req.Lines))

		// Validate every line before touching any aggregate
		for i, line := range req.Lines {
			if seen[line.InvoiceID] {
				return shared.NewDomainError("DUPLICATE_INVOICE", "Invoice appears more than once in the request")
			}
			seen[line.InvoiceID] = true

			if line.Amount.LessThanOrEqual(decimal.Zero) {
				return shared.NewDomainError("INVALID_AMOUNT", "Link amount must be positive")
			}

			invoice, err := s.invoiceRepo.FindByID(ctx, line.InvoiceID)
			if err != nil {
				return err
			}
			if invoice == nil {
				return shared.NewDomainError("NOT_FOUND", fmt.Sprintf("Invoice %s not found", line.InvoiceID))
			}
			if invoice.SupplierID != payable.SupplierID {
				return shared.NewDomainError("SUPPLIER_MISMATCH", fmt.Sprintf("Invoice %s belongs to a different supplier", invoice.InvoiceNumber))
			}
			if !invoice.IsVerified() {
				return shared.NewDomainError("NOT_VERIFIED", fmt.Sprintf("Invoice %s is not verified", invoice.InvoiceNumber))
			}
			if line.Amount.GreaterThan(invoice.UnmatchedAmount()) {
				return shared.NewDomainError("EXCEEDS_AVAILABLE", fmt.Sprintf("Link amount exceeds available value of invoice %s", invoice.InvoiceNumber))
			}

			invoices[i] = invoice
		}

		for i, line := range req.Lines {
			invoice := invoices[i]

			if err := invoice.ApplyMatch(payable.ID, payable.PayableNumber, line.Amount); err != nil {
				return err
			}
			if err := payable.AddInvoiceCoverage(invoice.ID, invoice.InvoiceNumber, line.Amount); err != nil {
				return err
			}

			relation, err := s.relationRepo.FindByPair(ctx, payable.ID, invoice.ID)
			if err != nil {
				return err
			}
			if relation != nil {
				if err := relation.IncreaseAmount(line.Amount, req.Operator); err != nil {
					return err
				}
			} else {
				relation, err = ledger.NewPayableInvoiceRelation(
					payable.ID,
					payable.PayableNumber,
					invoice.ID,
					invoice.InvoiceNumber,
					invoice.TotalAmount,
					line.Amount,
					req.Operator,
				)
				if err != nil {
					return err
				}
			}

			if err := s.invoiceRepo.SaveWithLock(ctx, invoice); err != nil {
				return err
			}
			if err := s.relationRepo.Save(ctx, relation); err != nil {
				return err
			}
		}

		return s.payableRepo.SaveWithLock(ctx, payable)
	})
	if err != nil {
		return nil, err
	}

	return toPayableResponse(payable), nil
}

// UnlinkInvoice removes the link between a payable and an invoice, restoring
// the full related amount to the invoice's availability.
func (s *InvoiceService) UnlinkInvoice(ctx context.Context, payableID, invoiceID uuid.UUID) (*AccountPayableResponse, error) {
	var payable *ledger.AccountPayable

	err := s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		payable, err = s.payableRepo.FindByID(ctx, payableID)
		if err != nil {
			return err
		}
		if payable == nil {
			return shared.NewDomainError("NOT_FOUND", "Account payable not found")
		}

		invoice, err := s.invoiceRepo.FindByID(ctx, invoiceID)
		if err != nil {
			return err
		}
		if invoice == nil {
			return shared.NewDomainError("NOT_FOUND", "Invoice not found")
		}

		relation, err := s.relationRepo.FindByPair(ctx, payableID, invoiceID)
		if err != nil {
			return err
		}
		if relation == nil {
			return shared.NewDomainError("NOT_FOUND", "Invoice is not linked to this payable")
		}

		if err := invoice.ReleaseMatch(payableID, relation.RelatedAmount); err != nil {
			return err
		}
		if err := payable.RemoveInvoiceCoverage(invoiceID, relation.RelatedAmount); err != nil {
			return err
		}

		if err := s.invoiceRepo.SaveWithLock(ctx, invoice); err != nil {
			return err
		}
		if err := s.relationRepo.Delete(ctx, relation.ID); err != nil {
			return err
		}

		return s.payableRepo.SaveWithLock(ctx, payable)
	})
	if err != nil {
		return nil, err
	}

	return toPayableResponse(payable), nil
}

func toInvoiceResponse(inv *ledger.Invoice, availableOverride *decimal.Decimal) *InvoiceResponse {
	available := inv.UnmatchedAmount()
	if availableOverride != nil {
		available = *availableOverride
	}
	if !inv.IsVerified() {
		available = decimal.Zero
	}

	return &InvoiceResponse{
		ID:             inv.ID,
		InvoiceNumber:  inv.InvoiceNumber,
		InvoiceCode:    inv.InvoiceCode,
		InvoiceType:    string(inv.InvoiceType),
		SupplierID:     inv.SupplierID,
		SupplierName:   inv.SupplierName,
		BuyerName:      inv.BuyerName,
		BuyerTaxNumber: inv.BuyerTaxNumber,
		InvoiceDate:    inv.InvoiceDate,
		Amount:         inv.Amount,
		TaxRate:        inv.TaxRate,
		TaxAmount:      inv.TaxAmount,
		TotalAmount:    inv.TotalAmount,
		MatchedAmount:  inv.MatchedAmount,
		AvailableToUse: available,
		VerifyStatus:   string(inv.VerifyStatus),
		VerifyRemark:   inv.VerifyRemark,
		MatchStatus:    string(inv.MatchStatus),
		PayableNumbers: inv.PayableNumbers,
		Remark:         inv.Remark,
		VerifiedAt:     inv.VerifiedAt,
		VerifiedBy:     inv.VerifiedBy,
		CreatedAt:      inv.CreatedAt,
		UpdatedAt:      inv.UpdatedAt,
		Version:        inv.Version,
	}
}
