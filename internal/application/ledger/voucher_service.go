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

// VoucherService provides application-level payment voucher operations
type VoucherService struct {
	voucherRepo ledger.PaymentVoucherRepository
	payableRepo ledger.AccountPayableRepository
	txManager   shared.TransactionManager
}

// NewVoucherService creates a new VoucherService
func NewVoucherService(
	voucherRepo ledger.PaymentVoucherRepository,
	payableRepo ledger.AccountPayableRepository,
	txManager shared.TransactionManager,
) *VoucherService {
	return &VoucherService{
		voucherRepo: voucherRepo,
		payableRepo: payableRepo,
		txManager:   txManager,
	}
}

// PaymentVoucherResponse represents a payment voucher in API responses
type PaymentVoucherResponse struct {
	ID                uuid.UUID                `json:"id"`
	VoucherNumber     string                   `json:"voucher_number"`
	RequestID         *uuid.UUID               `json:"request_id,omitempty"`
	RequestNumber     string                   `json:"request_number,omitempty"`
	SupplierID        uuid.UUID                `json:"supplier_id"`
	SupplierName      string                   `json:"supplier_name"`
	PaymentAmount     decimal.Decimal          `json:"payment_amount"`
	AllocatedAmount   decimal.Decimal          `json:"allocated_amount"`
	UnallocatedAmount decimal.Decimal          `json:"unallocated_amount"`
	PaymentMethod     string                   `json:"payment_method"`
	BankAccount       string                   `json:"bank_account,omitempty"`
	BankName          string                   `json:"bank_name,omitempty"`
	PaymentDate       time.Time                `json:"payment_date"`
	WriteOffDetails   []WriteOffDetailResponse `json:"write_off_details,omitempty"`
	PayableNumbers    []string                 `json:"payable_numbers,omitempty"`
	Operator          string                   `json:"operator,omitempty"`
	Status            string                   `json:"status"`
	Remark            string                   `json:"remark,omitempty"`
	CancelledAt       *time.Time               `json:"cancelled_at,omitempty"`
	CancelReason      string                   `json:"cancel_reason,omitempty"`
	CreatedAt         time.Time                `json:"created_at"`
	UpdatedAt         time.Time                `json:"updated_at"`
	Version           int                      `json:"version"`
}

// WriteOffDetailResponse represents a write-off line in API responses
type WriteOffDetailResponse struct {
	ID              uuid.UUID       `json:"id"`
	PayableID       uuid.UUID       `json:"payable_id"`
	PayableNumber   string          `json:"payable_number"`
	PayableAmount   decimal.Decimal `json:"payable_amount"`
	WriteOffAmount  decimal.Decimal `json:"write_off_amount"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
	WrittenOffAt    time.Time       `json:"written_off_at"`
}

// VoucherWriteOffLine is one allocation in a create or write-off request
type VoucherWriteOffLine struct {
	PayableID uuid.UUID       `json:"payable_id" binding:"required"`
	Amount    decimal.Decimal `json:"amount" binding:"required"`
}

// CreateVoucherRequest represents a request to record a standalone payment
type CreateVoucherRequest struct {
	SupplierID    uuid.UUID             `json:"supplier_id" binding:"required"`
	SupplierName  string                `json:"supplier_name" binding:"required"`
	PaymentAmount decimal.Decimal       `json:"payment_amount" binding:"required"`
	PaymentMethod string                `json:"payment_method" binding:"required"`
	BankAccount   string                `json:"bank_account"`
	BankName      string                `json:"bank_name"`
	PaymentDate   time.Time             `json:"payment_date" binding:"required"`
	Operator      string                `json:"operator"`
	Remark        string                `json:"remark"`
	Lines         []VoucherWriteOffLine `json:"lines"` // Immediate write-offs, optional
}

// PaymentVoucherListFilter defines filtering options for voucher list queries
type PaymentVoucherListFilter struct {
	Search     string     `form:"search"`
	SupplierID *uuid.UUID `form:"supplier_id"`
	Status     string     `form:"status"`
	FromDate   *time.Time `form:"from_date"`
	ToDate     *time.Time `form:"to_date"`
	Page       int        `form:"page"`
	PageSize   int        `form:"page_size"`
}

// CreateVoucher records a payment made outside the request workflow. Any
// write-off lines provided are applied to their payables in the same
// transaction.
func (s *VoucherService) CreateVoucher(ctx context.Context, req CreateVoucherRequest) (*PaymentVoucherResponse, error) {
	var voucher *ledger.PaymentVoucher

	err := s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		voucherNumber, err := s.voucherRepo.GenerateVoucherNumber(ctx)
		if err != nil {
			return err
		}

		voucher, err = ledger.NewPaymentVoucher(
			voucherNumber,
			req.SupplierID,
			req.SupplierName,
			valueobject.NewMoneyCNY(req.PaymentAmount),
			ledger.PaymentMethod(req.PaymentMethod),
			req.PaymentDate,
			req.Operator,
		)
		if err != nil {
			return err
		}
		if req.BankAccount != "" || req.BankName != "" {
			voucher.SetBankDetails(req.BankAccount, req.BankName)
		}
		if req.Remark != "" {
			voucher.SetRemark(req.Remark)
		}

		for _, line := range req.Lines {
			if err := s.applyWriteOff(ctx, voucher, line); err != nil {
				return err
			}
		}

		return s.voucherRepo.Save(ctx, voucher)
	})
	if err != nil {
		return nil, err
	}

	return toVoucherResponse(voucher), nil
}

// GetVoucherByID gets a voucher by ID
func (s *VoucherService) GetVoucherByID(ctx context.Context, id uuid.UUID) (*PaymentVoucherResponse, error) {
	voucher, err := s.voucherRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if voucher == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Payment voucher not found")
	}
	return toVoucherResponse(voucher), nil
}

// ListVouchers lists vouchers with filtering
func (s *VoucherService) ListVouchers(ctx context.Context, filter PaymentVoucherListFilter) ([]PaymentVoucherResponse, int64, error) {
	domainFilter := ledger.PaymentVoucherFilter{
		SupplierID: filter.SupplierID,
		FromDate:   filter.FromDate,
		ToDate:     filter.ToDate,
	}
	domainFilter.Page = filter.Page
	domainFilter.PageSize = filter.PageSize
	domainFilter.Search = filter.Search

	if filter.Status != "" {
		status := ledger.VoucherStatus(filter.Status)
		domainFilter.Status = &status
	}

	vouchers, err := s.voucherRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.voucherRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]PaymentVoucherResponse, len(vouchers))
	for i, v := range vouchers {
		responses[i] = *toVoucherResponse(&v)
	}

	return responses, total, nil
}

// WriteOffVoucherRequest represents additional write-offs on a voucher
type WriteOffVoucherRequest struct {
	Lines []VoucherWriteOffLine `json:"lines" binding:"required,min=1"`
}

// WriteOffVoucher allocates more of a voucher's unallocated amount against
// payables. Each line settles its payable in the same transaction.
func (s *VoucherService) WriteOffVoucher(ctx context.Context, voucherID uuid.UUID, req WriteOffVoucherRequest) (*PaymentVoucherResponse, error) {
	var voucher *ledger.PaymentVoucher

	err := s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		voucher, err = s.voucherRepo.FindByID(ctx, voucherID)
		if err != nil {
			return err
		}
		if voucher == nil {
			return shared.NewDomainError("NOT_FOUND", "Payment voucher not found")
		}

		for _, line := range req.Lines {
			if err := s.applyWriteOff(ctx, voucher, line); err != nil {
				return err
			}
		}

		return s.voucherRepo.SaveWithLock(ctx, voucher)
	})
	if err != nil {
		return nil, err
	}

	return toVoucherResponse(voucher), nil
}

// CancelVoucher cancels a voucher. Only vouchers with no write-off details
// can be cancelled; settled amounts are not rolled back.
func (s *VoucherService) CancelVoucher(ctx context.Context, voucherID uuid.UUID, reason string) (*PaymentVoucherResponse, error) {
	voucher, err := s.voucherRepo.FindByID(ctx, voucherID)
	if err != nil {
		return nil, err
	}
	if voucher == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Payment voucher not found")
	}

	if err := voucher.Cancel(reason); err != nil {
		return nil, err
	}

	if err := s.voucherRepo.SaveWithLock(ctx, voucher); err != nil {
		return nil, err
	}

	return toVoucherResponse(voucher), nil
}

// applyWriteOff settles one payable line and records it on the voucher
func (s *VoucherService) applyWriteOff(ctx context.Context, voucher *ledger.PaymentVoucher, line VoucherWriteOffLine) error {
	if line.Amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Write-off amount must be positive")
	}
	if line.Amount.GreaterThan(voucher.UnallocatedAmount()) {
		return shared.NewDomainError("EXCEEDS_FUNDS", "Write-off amount exceeds the voucher's unallocated amount")
	}

	payable, err := s.payableRepo.FindByID(ctx, line.PayableID)
	if err != nil {
		return err
	}
	if payable == nil {
		return shared.NewDomainError("NOT_FOUND", "Account payable not found")
	}
	if payable.SupplierID != voucher.SupplierID {
		return shared.NewDomainError("SUPPLIER_MISMATCH", "Payable belongs to a different supplier")
	}

	paymentNumber, err := s.payableRepo.GeneratePaymentNumber(ctx)
	if err != nil {
		return err
	}

	_, err = payable.ApplyPayment(
		paymentNumber,
		valueobject.NewMoneyCNY(line.Amount),
		voucher.PaymentMethod,
		voucher.PaymentDate,
		&voucher.ID,
		voucher.Operator,
		"Voucher "+voucher.VoucherNumber,
	)
	if err != nil {
		return err
	}

	_, err = voucher.AppendWriteOff(
		payable.ID,
		payable.PayableNumber,
		payable.TotalAmount,
		line.Amount,
		payable.UnpaidAmount,
	)
	if err != nil {
		return err
	}

	return s.payableRepo.SaveWithLock(ctx, payable)
}

func toVoucherResponse(v *ledger.PaymentVoucher) *PaymentVoucherResponse {
	details := make([]WriteOffDetailResponse, len(v.WriteOffDetails))
	for i, d := range v.WriteOffDetails {
		details[i] = WriteOffDetailResponse{
			ID:              d.ID,
			PayableID:       d.PayableID,
			PayableNumber:   d.PayableNumber,
			PayableAmount:   d.PayableAmount,
			WriteOffAmount:  d.WriteOffAmount,
			RemainingAmount: d.RemainingAmount,
			WrittenOffAt:    d.WrittenOffAt,
		}
	}

	return &PaymentVoucherResponse{
		ID:                v.ID,
		VoucherNumber:     v.VoucherNumber,
		RequestID:         v.RequestID,
		RequestNumber:     v.RequestNumber,
		SupplierID:        v.SupplierID,
		SupplierName:      v.SupplierName,
		PaymentAmount:     v.PaymentAmount,
		AllocatedAmount:   v.AllocatedAmount(),
		UnallocatedAmount: v.UnallocatedAmount(),
		PaymentMethod:     string(v.PaymentMethod),
		BankAccount:       v.BankAccount,
		BankName:          v.BankName,
		PaymentDate:       v.PaymentDate,
		WriteOffDetails:   details,
		PayableNumbers:    v.PayableNumbers,
		Operator:          v.Operator,
		Status:            string(v.Status),
		Remark:            v.Remark,
		CancelledAt:       v.CancelledAt,
		CancelReason:      v.CancelReason,
		CreatedAt:         v.CreatedAt,
		UpdatedAt:         v.UpdatedAt,
		Version:           v.Version,
	}
}
