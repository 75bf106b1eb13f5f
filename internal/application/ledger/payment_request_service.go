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

// PaymentRequestService provides application-level payment request
// operations, including the execution step that settles payables and
// produces the payment voucher.
type PaymentRequestService struct {
	requestRepo      ledger.PaymentRequestRepository
	payableRepo      ledger.AccountPayableRepository
	voucherRepo      ledger.PaymentVoucherRepository
	invoiceRepo      ledger.InvoiceRepository
	txManager        shared.TransactionManager
	idempotencyStore shared.IdempotencyStore
	idempotencyTTL   time.Duration
}

// NewPaymentRequestService creates a new PaymentRequestService
func NewPaymentRequestService(
	requestRepo ledger.PaymentRequestRepository,
	payableRepo ledger.AccountPayableRepository,
	voucherRepo ledger.PaymentVoucherRepository,
	invoiceRepo ledger.InvoiceRepository,
	txManager shared.TransactionManager,
	idempotencyStore shared.IdempotencyStore,
) *PaymentRequestService {
	return &PaymentRequestService{
		requestRepo:      requestRepo,
		payableRepo:      payableRepo,
		voucherRepo:      voucherRepo,
		invoiceRepo:      invoiceRepo,
		txManager:        txManager,
		idempotencyStore: idempotencyStore,
		idempotencyTTL:   shared.DefaultIdempotencyConfig().TTL,
	}
}

// PaymentRequestResponse represents a payment request in API responses
type PaymentRequestResponse struct {
	ID              uuid.UUID       `json:"id"`
	RequestNumber   string          `json:"request_number"`
	SupplierID      uuid.UUID       `json:"supplier_id"`
	SupplierName    string          `json:"supplier_name"`
	RequestType     string          `json:"request_type"`
	PayableNumbers  []string        `json:"payable_numbers"`
	InvoiceNumbers  []string        `json:"invoice_numbers,omitempty"`
	RequestAmount   decimal.Decimal `json:"request_amount"`
	ApprovedAmount  decimal.Decimal `json:"approved_amount"`
	PaymentMethod   string          `json:"payment_method"`
	BankAccount     string          `json:"bank_account,omitempty"`
	BankName        string          `json:"bank_name,omitempty"`
	ExpectedPayDate *time.Time      `json:"expected_pay_date,omitempty"`
	ActualPayDate   *time.Time      `json:"actual_pay_date,omitempty"`
	Applicant       string          `json:"applicant"`
	Approver        string          `json:"approver,omitempty"`
	ApprovalRemark  string          `json:"approval_remark,omitempty"`
	Status          string          `json:"status"`
	VoucherID       *uuid.UUID      `json:"voucher_id,omitempty"`
	Remark          string          `json:"remark,omitempty"`
	ApprovedAt      *time.Time      `json:"approved_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	Version         int             `json:"version"`
}

// CreatePaymentRequestRequest represents a request to create a payment request
type CreatePaymentRequestRequest struct {
	SupplierID      uuid.UUID       `json:"supplier_id" binding:"required"`
	RequestType     string          `json:"request_type"`
	PayableIDs      []uuid.UUID     `json:"payable_ids" binding:"required,min=1"`
	InvoiceIDs      []uuid.UUID     `json:"invoice_ids"`
	RequestAmount   decimal.Decimal `json:"request_amount" binding:"required"`
	PaymentMethod   string          `json:"payment_method" binding:"required"`
	BankAccount     string          `json:"bank_account"`
	BankName        string          `json:"bank_name"`
	ExpectedPayDate *time.Time      `json:"expected_pay_date"`
	Applicant       string          `json:"applicant" binding:"required"`
	Remark          string          `json:"remark"`
	SubmitNow       bool            `json:"submit_now"`
}

// PaymentRequestListFilter defines filtering options for request list queries
type PaymentRequestListFilter struct {
	Search      string     `form:"search"`
	SupplierID  *uuid.UUID `form:"supplier_id"`
	Status      string     `form:"status"`
	RequestType string     `form:"request_type"`
	Applicant   string     `form:"applicant"`
	FromDate    *time.Time `form:"from_date"`
	ToDate      *time.Time `form:"to_date"`
	Page        int        `form:"page"`
	PageSize    int        `form:"page_size"`
}

// CreatePaymentRequest creates a payment request over a batch of payables.
// Every payable must belong to the requested supplier and carry an unpaid
// balance; the request amount cannot exceed the combined unpaid balance.
func (s *PaymentRequestService) CreatePaymentRequest(ctx context.Context, req CreatePaymentRequestRequest) (*PaymentRequestResponse, error) {
	payables, err := s.payableRepo.FindByIDs(ctx, req.PayableIDs)
	if err != nil {
		return nil, err
	}
	if len(payables) != len(req.PayableIDs) {
		return nil, shared.NewDomainError("NOT_FOUND", "One or more payables not found")
	}

	var supplierName string
	payableNumbers := make([]string, len(payables))
	totalUnpaid := decimal.Zero
	for i := range payables {
		p := &payables[i]
		if p.SupplierID != req.SupplierID {
			return nil, shared.NewDomainError("SUPPLIER_MISMATCH", "All payables must belong to the same supplier")
		}
		if !p.Status.CanApplyPayment() {
			return nil, shared.NewDomainError("INVALID_STATE", "Payable "+p.PayableNumber+" cannot be paid")
		}
		supplierName = p.SupplierName
		payableNumbers[i] = p.PayableNumber
		totalUnpaid = totalUnpaid.Add(p.UnpaidAmount)
	}

	if req.RequestAmount.GreaterThan(totalUnpaid) {
		return nil, shared.NewDomainError("EXCEEDS_UNPAID", "Request amount exceeds the combined unpaid balance")
	}

	requestType := ledger.RequestType(req.RequestType)
	if req.RequestType == "" {
		requestType = ledger.RequestTypeNormal
	}

	requestNumber, err := s.requestRepo.GenerateRequestNumber(ctx)
	if err != nil {
		return nil, err
	}

	request, err := ledger.NewPaymentRequest(
		requestNumber,
		req.SupplierID,
		supplierName,
		requestType,
		req.PayableIDs,
		payableNumbers,
		valueobject.NewMoneyCNY(req.RequestAmount),
		ledger.PaymentMethod(req.PaymentMethod),
		req.Applicant,
	)
	if err != nil {
		return nil, err
	}

	if len(req.InvoiceIDs) > 0 {
		invoiceNumbers, err := s.resolveInvoiceNumbers(ctx, req.SupplierID, req.InvoiceIDs)
		if err != nil {
			return nil, err
		}
		if err := request.SetInvoiceReferences(req.InvoiceIDs, invoiceNumbers); err != nil {
			return nil, err
		}
	}

	if req.BankAccount != "" || req.BankName != "" {
		request.SetBankDetails(req.BankAccount, req.BankName)
	}
	request.SetExpectedPayDate(req.ExpectedPayDate)
	if req.Remark != "" {
		request.Remark = req.Remark
	}

	if req.SubmitNow {
		if err := request.Submit(); err != nil {
			return nil, err
		}
	}

	if err := s.requestRepo.Save(ctx, request); err != nil {
		return nil, err
	}

	return toRequestResponse(request), nil
}

// resolveInvoiceNumbers loads the supporting invoices and returns their
// numbers in the order the IDs were given. Every invoice must exist and
// belong to the supplier the request is for.
func (s *PaymentRequestService) resolveInvoiceNumbers(ctx context.Context, supplierID uuid.UUID, invoiceIDs []uuid.UUID) ([]string, error) {
	invoices, err := s.invoiceRepo.FindByIDs(ctx, invoiceIDs)
	if err != nil {
		return nil, err
	}
	if len(invoices) != len(invoiceIDs) {
		return nil, shared.NewDomainError("NOT_FOUND", "One or more invoices not found")
	}

	numberByID := make(map[uuid.UUID]string, len(invoices))
	for i := range invoices {
		inv := &invoices[i]
		if inv.SupplierID != supplierID {
			return nil, shared.NewDomainError("SUPPLIER_MISMATCH", "Invoice "+inv.InvoiceNumber+" belongs to a different supplier")
		}
		numberByID[inv.ID] = inv.InvoiceNumber
	}

	numbers := make([]string, len(invoiceIDs))
	for i, id := range invoiceIDs {
		numbers[i] = numberByID[id]
	}
	return numbers, nil
}

// GetRequestByID gets a payment request by ID
func (s *PaymentRequestService) GetRequestByID(ctx context.Context, id uuid.UUID) (*PaymentRequestResponse, error) {
	request, err := s.requestRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if request == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Payment request not found")
	}
	return toRequestResponse(request), nil
}

// ListRequests lists payment requests with filtering
func (s *PaymentRequestService) ListRequests(ctx context.Context, filter PaymentRequestListFilter) ([]PaymentRequestResponse, int64, error) {
	domainFilter := ledger.PaymentRequestFilter{
		SupplierID: filter.SupplierID,
		FromDate:   filter.FromDate,
		ToDate:     filter.ToDate,
	}
	domainFilter.Page = filter.Page
	domainFilter.PageSize = filter.PageSize
	domainFilter.Search = filter.Search

	if filter.Status != "" {
		status := ledger.RequestStatus(filter.Status)
		domainFilter.Status = &status
	}
	if filter.RequestType != "" {
		requestType := ledger.RequestType(filter.RequestType)
		domainFilter.RequestType = &requestType
	}
	if filter.Applicant != "" {
		domainFilter.Applicant = &filter.Applicant
	}

	requests, err := s.requestRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.requestRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]PaymentRequestResponse, len(requests))
	for i, r := range requests {
		responses[i] = *toRequestResponse(&r)
	}

	return responses, total, nil
}

// GetRequestSummary gets aggregate request figures, optionally per supplier
func (s *PaymentRequestService) GetRequestSummary(ctx context.Context, supplierID *uuid.UUID) (*ledger.RequestSummary, error) {
	return s.requestRepo.Summarize(ctx, supplierID)
}

// SubmitRequest submits a draft request for approval
func (s *PaymentRequestService) SubmitRequest(ctx context.Context, requestID uuid.UUID) (*PaymentRequestResponse, error) {
	return s.mutateRequest(ctx, requestID, func(r *ledger.PaymentRequest) error {
		return r.Submit()
	})
}

// ApproveRequest approves a payment request for its full requested amount
func (s *PaymentRequestService) ApproveRequest(ctx context.Context, requestID uuid.UUID, approver, remark string) (*PaymentRequestResponse, error) {
	return s.mutateRequest(ctx, requestID, func(r *ledger.PaymentRequest) error {
		return r.Approve(approver, remark)
	})
}

// RejectRequest rejects a payment request
func (s *PaymentRequestService) RejectRequest(ctx context.Context, requestID uuid.UUID, approver, remark string) (*PaymentRequestResponse, error) {
	return s.mutateRequest(ctx, requestID, func(r *ledger.PaymentRequest) error {
		return r.Reject(approver, remark)
	})
}

// CancelRequest cancels a draft or pending request
func (s *PaymentRequestService) CancelRequest(ctx context.Context, requestID uuid.UUID) (*PaymentRequestResponse, error) {
	return s.mutateRequest(ctx, requestID, func(r *ledger.PaymentRequest) error {
		return r.Cancel()
	})
}

// WriteOffPreviewResponse carries a proposed allocation without applying it
type WriteOffPreviewResponse struct {
	RequestID       uuid.UUID             `json:"request_id"`
	RequestNumber   string                `json:"request_number"`
	Strategy        string                `json:"strategy"`
	Amount          decimal.Decimal       `json:"amount"`
	Lines           []ledger.WriteOffLine `json:"lines"`
	TotalAllocated  decimal.Decimal       `json:"total_allocated"`
	RemainingAmount decimal.Decimal       `json:"remaining_amount"`
	FullyAllocated  bool                  `json:"fully_allocated"`
}

// PreviewWriteOff computes how the approved amount would spread across the
// request's payables without settling anything.
func (s *PaymentRequestService) PreviewWriteOff(ctx context.Context, requestID uuid.UUID) (*WriteOffPreviewResponse, error) {
	request, err := s.requestRepo.FindByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Payment request not found")
	}
	if !request.IsApproved() {
		return nil, shared.NewDomainError("INVALID_STATE", "Only approved requests can be previewed")
	}

	payables, err := s.payableRepo.FindByIDs(ctx, request.PayableIDs)
	if err != nil {
		return nil, err
	}

	strategy := ledger.NewGreedyWriteOffStrategy()
	plan, err := strategy.Allocate(
		request.GetApprovedAmountMoney(),
		ledger.PayablesToWriteOffTargets(payables),
	)
	if err != nil {
		return nil, err
	}

	return &WriteOffPreviewResponse{
		RequestID:       request.ID,
		RequestNumber:   request.RequestNumber,
		Strategy:        strategy.StrategyType().String(),
		Amount:          request.ApprovedAmount,
		Lines:           plan.Lines,
		TotalAllocated:  plan.TotalAllocated,
		RemainingAmount: plan.RemainingAmount,
		FullyAllocated:  plan.FullyAllocated,
	}, nil
}

// ManualWriteOffLine is one caller-specified allocation in an execute request
type ManualWriteOffLine struct {
	PayableID uuid.UUID       `json:"payable_id" binding:"required"`
	Amount    decimal.Decimal `json:"amount"`
}

// ExecutePaymentRequest represents a request to execute an approved payment
type ExecutePaymentRequest struct {
	PaymentDate time.Time            `json:"payment_date" binding:"required"`
	Operator    string               `json:"operator"`
	Remark      string               `json:"remark"`
	Lines       []ManualWriteOffLine `json:"lines"` // Empty means automatic allocation
}

// ExecutePayment settles an approved payment request: it allocates the
// approved amount across the request's payables, applies a payment record to
// each, and produces the payment voucher — all in one transaction. An
// idempotency key makes retries safe; a replayed key returns the voucher
// recorded by the first execution.
func (s *PaymentRequestService) ExecutePayment(ctx context.Context, requestID uuid.UUID, idempotencyKey string, req ExecutePaymentRequest) (*PaymentVoucherResponse, error) {
	if idempotencyKey != "" {
		isNew, err := s.idempotencyStore.MarkProcessed(ctx, "payment-execute:"+idempotencyKey, s.idempotencyTTL)
		if err != nil {
			return nil, err
		}
		if !isNew {
			return s.replayExecution(ctx, requestID)
		}
	}

	var voucher *ledger.PaymentVoucher

	err := s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		request, err := s.requestRepo.FindByID(ctx, requestID)
		if err != nil {
			return err
		}
		if request == nil {
			return shared.NewDomainError("NOT_FOUND", "Payment request not found")
		}
		if !request.IsApproved() {
			return shared.NewDomainError("INVALID_STATE", "Only approved requests can be executed")
		}

		payables, err := s.payableRepo.FindByIDs(ctx, request.PayableIDs)
		if err != nil {
			return err
		}
		if len(payables) != len(request.PayableIDs) {
			return shared.NewDomainError("NOT_FOUND", "One or more payables not found")
		}

		var strategy ledger.WriteOffStrategy
		if len(req.Lines) > 0 {
			manual := make([]ledger.ManualWriteOffRequest, len(req.Lines))
			for i, line := range req.Lines {
				manual[i] = ledger.ManualWriteOffRequest{
					PayableID: line.PayableID,
					Amount:    line.Amount,
				}
			}
			strategy = ledger.NewManualWriteOffStrategy(manual)
		} else {
			strategy = ledger.NewGreedyWriteOffStrategy()
		}

		plan, err := strategy.Allocate(
			request.GetApprovedAmountMoney(),
			ledger.PayablesToWriteOffTargets(payables),
		)
		if err != nil {
			return err
		}
		if len(plan.Lines) == 0 {
			return shared.NewDomainError("NOTHING_TO_SETTLE", "No payable has an unpaid balance to write off")
		}

		voucherNumber, err := s.voucherRepo.GenerateVoucherNumber(ctx)
		if err != nil {
			return err
		}

		voucher, err = ledger.NewPaymentVoucher(
			voucherNumber,
			request.SupplierID,
			request.SupplierName,
			request.GetApprovedAmountMoney(),
			request.PaymentMethod,
			req.PaymentDate,
			req.Operator,
		)
		if err != nil {
			return err
		}
		if request.BankAccount != "" || request.BankName != "" {
			voucher.SetBankDetails(request.BankAccount, request.BankName)
		}
		if req.Remark != "" {
			voucher.SetRemark(req.Remark)
		}
		if err := voucher.LinkRequest(request.ID, request.RequestNumber); err != nil {
			return err
		}

		payableByID := make(map[uuid.UUID]*ledger.AccountPayable, len(payables))
		for i := range payables {
			payableByID[payables[i].ID] = &payables[i]
		}

		for _, line := range plan.Lines {
			payable := payableByID[line.PayableID]

			paymentNumber, err := s.payableRepo.GeneratePaymentNumber(ctx)
			if err != nil {
				return err
			}

			_, err = payable.ApplyPayment(
				paymentNumber,
				valueobject.NewMoneyCNY(line.Amount),
				request.PaymentMethod,
				req.PaymentDate,
				&voucher.ID,
				req.Operator,
				"Payment request "+request.RequestNumber,
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

			if err := s.payableRepo.SaveWithLock(ctx, payable); err != nil {
				return err
			}
		}

		if err := s.voucherRepo.Save(ctx, voucher); err != nil {
			return err
		}

		if err := request.MarkPaid(voucher.ID, req.PaymentDate); err != nil {
			return err
		}

		return s.requestRepo.SaveWithLock(ctx, request)
	})
	if err != nil {
		// A failed execution must not hold the key for the TTL; free it
		// so the caller can retry with the same key.
		if idempotencyKey != "" {
			_ = s.idempotencyStore.Release(ctx, "payment-execute:"+idempotencyKey)
		}
		return nil, err
	}

	return toVoucherResponse(voucher), nil
}

// replayExecution resolves a duplicate execution attempt. The voucher created
// by the original execution is returned when it exists; otherwise the first
// attempt is still in flight and the caller must retry later.
func (s *PaymentRequestService) replayExecution(ctx context.Context, requestID uuid.UUID) (*PaymentVoucherResponse, error) {
	voucher, err := s.voucherRepo.FindByRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if voucher == nil {
		return nil, shared.NewDomainError("DUPLICATE_REQUEST", "Payment execution with this idempotency key is already in progress")
	}
	return toVoucherResponse(voucher), nil
}

func (s *PaymentRequestService) mutateRequest(ctx context.Context, requestID uuid.UUID, mutate func(*ledger.PaymentRequest) error) (*PaymentRequestResponse, error) {
	request, err := s.requestRepo.FindByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Payment request not found")
	}

	if err := mutate(request); err != nil {
		return nil, err
	}

	if err := s.requestRepo.SaveWithLock(ctx, request); err != nil {
		return nil, err
	}

	return toRequestResponse(request), nil
}

func toRequestResponse(r *ledger.PaymentRequest) *PaymentRequestResponse {
	return &PaymentRequestResponse{
		ID:              r.ID,
		RequestNumber:   r.RequestNumber,
		SupplierID:      r.SupplierID,
		SupplierName:    r.SupplierName,
		RequestType:     string(r.RequestType),
		PayableNumbers:  r.PayableNumbers,
		InvoiceNumbers:  r.InvoiceNumbers,
		RequestAmount:   r.RequestAmount,
		ApprovedAmount:  r.ApprovedAmount,
		PaymentMethod:   string(r.PaymentMethod),
		BankAccount:     r.BankAccount,
		BankName:        r.BankName,
		ExpectedPayDate: r.ExpectedPayDate,
		ActualPayDate:   r.ActualPayDate,
		Applicant:       r.Applicant,
		Approver:        r.Approver,
		ApprovalRemark:  r.ApprovalRemark,
		Status:          string(r.Status),
		VoucherID:       r.VoucherID,
		Remark:          r.Remark,
		ApprovedAt:      r.ApprovedAt,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
		Version:         r.Version,
	}
}
