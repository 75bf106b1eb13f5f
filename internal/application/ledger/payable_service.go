package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fzhange/financial-sys/internal/domain/ledger"
	"github.com/fzhange/financial-sys/internal/domain/shared"
	"github.com/fzhange/financial-sys/internal/domain/shared/valueobject"
)

// PayableService provides application-level account payable operations
type PayableService struct {
	payableRepo ledger.AccountPayableRepository
	txManager   shared.TransactionManager
}

// NewPayableService creates a new PayableService
func NewPayableService(
	payableRepo ledger.AccountPayableRepository,
	txManager shared.TransactionManager,
) *PayableService {
	return &PayableService{
		payableRepo: payableRepo,
		txManager:   txManager,
	}
}

// AccountPayableResponse represents an account payable in API responses
type AccountPayableResponse struct {
	ID             uuid.UUID               `json:"id"`
	PayableNumber  string                  `json:"payable_number"`
	SupplierID     uuid.UUID               `json:"supplier_id"`
	SupplierName   string                  `json:"supplier_name"`
	SourceType     string                  `json:"source_type"`
	SourceID       uuid.UUID               `json:"source_id"`
	SourceNumber   string                  `json:"source_number"`
	TotalAmount    decimal.Decimal         `json:"total_amount"`
	PaidAmount     decimal.Decimal         `json:"paid_amount"`
	UnpaidAmount   decimal.Decimal         `json:"unpaid_amount"`
	InvoiceAmount  decimal.Decimal         `json:"invoice_amount"`
	InvoiceNumbers []string                `json:"invoice_numbers,omitempty"`
	Status         string                  `json:"status"`
	DueDate        *time.Time              `json:"due_date,omitempty"`
	Overdue        bool                    `json:"overdue"`
	DaysOverdue    int                     `json:"days_overdue,omitempty"`
	PaymentRecords []PaymentRecordResponse `json:"payment_records,omitempty"`
	Remark         string                  `json:"remark,omitempty"`
	PaidAt         *time.Time              `json:"paid_at,omitempty"`
	CreatedAt      time.Time               `json:"created_at"`
	UpdatedAt      time.Time               `json:"updated_at"`
	Version        int                     `json:"version"`
}

// PaymentRecordResponse represents a payment record in API responses
type PaymentRecordResponse struct {
	ID            uuid.UUID       `json:"id"`
	PaymentNumber string          `json:"payment_number"`
	VoucherID     *uuid.UUID      `json:"voucher_id,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"payment_method"`
	PaymentDate   time.Time       `json:"payment_date"`
	Operator      string          `json:"operator,omitempty"`
	Remark        string          `json:"remark,omitempty"`
	AppliedAt     time.Time       `json:"applied_at"`
}

// AccountPayableListFilter defines filtering options for payable list queries
type AccountPayableListFilter struct {
	Search     string     `form:"search"`
	SupplierID *uuid.UUID `form:"supplier_id"`
	Status     string     `form:"status"`
	SourceType string     `form:"source_type"`
	FromDate   *time.Time `form:"from_date"`
	ToDate     *time.Time `form:"to_date"`
	Overdue    *bool      `form:"overdue"`
	Page       int        `form:"page"`
	PageSize   int        `form:"page_size"`
}

// GetPayableByID gets a payable by ID
func (s *PayableService) GetPayableByID(ctx context.Context, id uuid.UUID) (*AccountPayableResponse, error) {
	payable, err := s.payableRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if payable == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Account payable not found")
	}
	return toPayableResponse(payable), nil
}

// ListPayables lists payables with filtering
func (s *PayableService) ListPayables(ctx context.Context, filter AccountPayableListFilter) ([]AccountPayableResponse, int64, error) {
	domainFilter := ledger.AccountPayableFilter{
		SupplierID: filter.SupplierID,
		FromDate:   filter.FromDate,
		ToDate:     filter.ToDate,
		Overdue:    filter.Overdue,
	}
	domainFilter.Page = filter.Page
	domainFilter.PageSize = filter.PageSize
	domainFilter.Search = filter.Search

	if filter.Status != "" {
		status := ledger.PayableStatus(filter.Status)
		domainFilter.Status = &status
	}
	if filter.SourceType != "" {
		sourceType := ledger.PayableSourceType(filter.SourceType)
		domainFilter.SourceType = &sourceType
	}

	payables, err := s.payableRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.payableRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]AccountPayableResponse, len(payables))
	for i, p := range payables {
		responses[i] = *toPayableResponse(&p)
	}

	return responses, total, nil
}

// GetPayableSummary gets aggregate payable figures, optionally per supplier
func (s *PayableService) GetPayableSummary(ctx context.Context, supplierID *uuid.UUID) (*ledger.PayableSummary, error) {
	return s.payableRepo.Summarize(ctx, supplierID)
}

// PayPayableRequest represents a direct payment against a single payable
type PayPayableRequest struct {
	Amount        decimal.Decimal `json:"amount" binding:"required"`
	PaymentMethod string          `json:"payment_method" binding:"required"`
	PaymentDate   time.Time       `json:"payment_date" binding:"required"`
	Operator      string          `json:"operator"`
	Remark        string          `json:"remark"`
}

// PayPayable applies a direct payment to a payable
func (s *PayableService) PayPayable(ctx context.Context, payableID uuid.UUID, req PayPayableRequest) (*AccountPayableResponse, error) {
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

		paymentNumber, err := s.payableRepo.GeneratePaymentNumber(ctx)
		if err != nil {
			return err
		}

		_, err = payable.ApplyPayment(
			paymentNumber,
			valueobject.NewMoneyCNY(req.Amount),
			ledger.PaymentMethod(req.PaymentMethod),
			req.PaymentDate,
			nil,
			req.Operator,
			req.Remark,
		)
		if err != nil {
			return err
		}

		return s.payableRepo.SaveWithLock(ctx, payable)
	})
	if err != nil {
		return nil, err
	}

	return toPayableResponse(payable), nil
}

// CancelPayable cancels an unpaid payable
func (s *PayableService) CancelPayable(ctx context.Context, payableID uuid.UUID, reason string) (*AccountPayableResponse, error) {
	payable, err := s.payableRepo.FindByID(ctx, payableID)
	if err != nil {
		return nil, err
	}
	if payable == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Account payable not found")
	}

	if err := payable.Cancel(reason); err != nil {
		return nil, err
	}

	if err := s.payableRepo.SaveWithLock(ctx, payable); err != nil {
		return nil, err
	}

	return toPayableResponse(payable), nil
}

func toPayableResponse(p *ledger.AccountPayable) *AccountPayableResponse {
	records := make([]PaymentRecordResponse, len(p.PaymentRecords))
	for i, r := range p.PaymentRecords {
		records[i] = PaymentRecordResponse{
			ID:            r.ID,
			PaymentNumber: r.PaymentNumber,
			VoucherID:     r.VoucherID,
			Amount:        r.Amount,
			PaymentMethod: string(r.PaymentMethod),
			PaymentDate:   r.PaymentDate,
			Operator:      r.Operator,
			Remark:        r.Remark,
			AppliedAt:     r.AppliedAt,
		}
	}

	return &AccountPayableResponse{
		ID:             p.ID,
		PayableNumber:  p.PayableNumber,
		SupplierID:     p.SupplierID,
		SupplierName:   p.SupplierName,
		SourceType:     string(p.SourceType),
		SourceID:       p.SourceID,
		SourceNumber:   p.SourceNumber,
		TotalAmount:    p.TotalAmount,
		PaidAmount:     p.PaidAmount,
		UnpaidAmount:   p.UnpaidAmount,
		InvoiceAmount:  p.InvoiceAmount,
		InvoiceNumbers: p.InvoiceNumbers,
		Status:         string(p.Status),
		DueDate:        p.DueDate,
		Overdue:        p.IsOverdue(),
		DaysOverdue:    p.DaysOverdue(),
		PaymentRecords: records,
		Remark:         p.Remark,
		PaidAt:         p.PaidAt,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
		Version:        p.Version,
	}
}
