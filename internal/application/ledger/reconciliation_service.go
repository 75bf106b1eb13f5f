package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fzhange/financial-sys/internal/domain/ledger"
	"github.com/fzhange/financial-sys/internal/domain/partner"
	"github.com/fzhange/financial-sys/internal/domain/shared"
	"github.com/fzhange/financial-sys/internal/domain/shared/valueobject"
)

// ReconciliationService provides application-level reconciliation statement
// operations. Confirming a statement is the entry point of the settlement
// flow: it turns the statement's payable total into an account payable.
type ReconciliationService struct {
	statementRepo ledger.ReconciliationStatementRepository
	payableRepo   ledger.AccountPayableRepository
	supplierRepo  partner.SupplierRepository
	txManager     shared.TransactionManager
}

// NewReconciliationService creates a new ReconciliationService
func NewReconciliationService(
	statementRepo ledger.ReconciliationStatementRepository,
	payableRepo ledger.AccountPayableRepository,
	supplierRepo partner.SupplierRepository,
	txManager shared.TransactionManager,
) *ReconciliationService {
	return &ReconciliationService{
		statementRepo: statementRepo,
		payableRepo:   payableRepo,
		supplierRepo:  supplierRepo,
		txManager:     txManager,
	}
}

// StatementResponse represents a reconciliation statement in API responses
type StatementResponse struct {
	ID                   uuid.UUID         `json:"id"`
	StatementNumber      string            `json:"statement_number"`
	SupplierID           uuid.UUID         `json:"supplier_id"`
	SupplierName         string            `json:"supplier_name"`
	PeriodStart          time.Time         `json:"period_start"`
	PeriodEnd            time.Time         `json:"period_end"`
	Receipts             []ReceiptResponse `json:"receipts"`
	ReconciliationAmount decimal.Decimal   `json:"reconciliation_amount"`
	TotalPayableAmount   decimal.Decimal   `json:"total_payable_amount"`
	ConfirmedAmount      decimal.Decimal   `json:"confirmed_amount"`
	Status               string            `json:"status"`
	DisputeReason        string            `json:"dispute_reason,omitempty"`
	Remark               string            `json:"remark,omitempty"`
	ConfirmedAt          *time.Time        `json:"confirmed_at,omitempty"`
	ConfirmedBy          string            `json:"confirmed_by,omitempty"`
	PayableID            *uuid.UUID        `json:"payable_id,omitempty"`
	CreatedAt            time.Time         `json:"created_at"`
	UpdatedAt            time.Time         `json:"updated_at"`
	Version              int               `json:"version"`
}

// ReceiptResponse represents a receipt line in API responses
type ReceiptResponse struct {
	ID                  uuid.UUID       `json:"id"`
	ReceiptNumber       string          `json:"receipt_number"`
	ReceiptDate         time.Time       `json:"receipt_date"`
	PurchaseOrderNumber string          `json:"purchase_order_number,omitempty"`
	SKUCount            int             `json:"sku_count"`
	GoodQuantity        int             `json:"good_quantity"`
	DefectQuantity      int             `json:"defect_quantity"`
	Category            string          `json:"category,omitempty"`
	HasTax              bool            `json:"has_tax"`
	ReceiptAmount       decimal.Decimal `json:"receipt_amount"`
	PayableAmount       decimal.Decimal `json:"payable_amount"`
	MatchStatus         string          `json:"match_status"`
	Remark              string          `json:"remark,omitempty"`
}

// ReceiptLineRequest is one receipt line in a CreateStatement request
type ReceiptLineRequest struct {
	ReceiptNumber       string          `json:"receipt_number" binding:"required"`
	ReceiptDate         time.Time       `json:"receipt_date" binding:"required"`
	PurchaseOrderNumber string          `json:"purchase_order_number"`
	SKUCount            int             `json:"sku_count"`
	GoodQuantity        int             `json:"good_quantity"`
	DefectQuantity      int             `json:"defect_quantity"`
	Category            string          `json:"category"`
	HasTax              bool            `json:"has_tax"`
	ReceiptAmount       decimal.Decimal `json:"receipt_amount" binding:"required"`
	PayableAmount       decimal.Decimal `json:"payable_amount" binding:"required"`
}

// CreateStatementRequest represents a request to create a statement
type CreateStatementRequest struct {
	SupplierID  uuid.UUID            `json:"supplier_id" binding:"required"`
	PeriodStart time.Time            `json:"period_start" binding:"required"`
	PeriodEnd   time.Time            `json:"period_end" binding:"required"`
	Receipts    []ReceiptLineRequest `json:"receipts" binding:"required,min=1"`
	Remark      string               `json:"remark"`
}

// StatementListFilter defines filtering options for statement list queries
type StatementListFilter struct {
	Search     string     `form:"search"`
	SupplierID *uuid.UUID `form:"supplier_id"`
	Status     string     `form:"status"`
	FromDate   *time.Time `form:"from_date"`
	ToDate     *time.Time `form:"to_date"`
	ActiveOnly bool       `form:"active_only"`
	Page       int        `form:"page"`
	PageSize   int        `form:"page_size"`
}

// CreateStatement creates a reconciliation statement from receipt lines
func (s *ReconciliationService) CreateStatement(ctx context.Context, req CreateStatementRequest) (*StatementResponse, error) {
	supplier, err := s.supplierRepo.FindByID(ctx, req.SupplierID)
	if err != nil {
		return nil, err
	}
	if supplier == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Supplier not found")
	}
	if supplier.IsBlocked() {
		return nil, shared.NewDomainError("SUPPLIER_BLOCKED", "Cannot reconcile with a blocked supplier")
	}

	statementNumber, err := s.statementRepo.GenerateStatementNumber(ctx)
	if err != nil {
		return nil, err
	}

	receipts := make([]ledger.ReceiptInput, len(req.Receipts))
	for i, r := range req.Receipts {
		receipts[i] = ledger.ReceiptInput{
			ReceiptNumber:       r.ReceiptNumber,
			ReceiptDate:         r.ReceiptDate,
			PurchaseOrderNumber: r.PurchaseOrderNumber,
			SKUCount:            r.SKUCount,
			GoodQuantity:        r.GoodQuantity,
			DefectQuantity:      r.DefectQuantity,
			Category:            r.Category,
			HasTax:              r.HasTax,
			ReceiptAmount:       r.ReceiptAmount,
			PayableAmount:       r.PayableAmount,
		}
	}

	statement, err := ledger.NewReconciliationStatement(
		statementNumber,
		supplier.ID,
		supplier.Name,
		req.PeriodStart,
		req.PeriodEnd,
		receipts,
	)
	if err != nil {
		return nil, err
	}

	if req.Remark != "" {
		statement.Remark = req.Remark
	}

	if err := s.statementRepo.Save(ctx, statement); err != nil {
		return nil, err
	}

	return toStatementResponse(statement), nil
}

// GetStatementByID gets a statement by ID
func (s *ReconciliationService) GetStatementByID(ctx context.Context, id uuid.UUID) (*StatementResponse, error) {
	statement, err := s.statementRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if statement == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Reconciliation statement not found")
	}
	return toStatementResponse(statement), nil
}

// ListStatements lists statements with filtering
func (s *ReconciliationService) ListStatements(ctx context.Context, filter StatementListFilter) ([]StatementResponse, int64, error) {
	domainFilter := ledger.StatementFilter{
		SupplierID: filter.SupplierID,
		FromDate:   filter.FromDate,
		ToDate:     filter.ToDate,
		ActiveOnly: filter.ActiveOnly,
	}
	domainFilter.Page = filter.Page
	domainFilter.PageSize = filter.PageSize
	domainFilter.Search = filter.Search

	if filter.Status != "" {
		status := ledger.StatementStatus(filter.Status)
		domainFilter.Status = &status
	}

	statements, err := s.statementRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.statementRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]StatementResponse, len(statements))
	for i, st := range statements {
		responses[i] = *toStatementResponse(&st)
	}

	return responses, total, nil
}

// MarkReceiptMatched marks a single receipt line as matched
func (s *ReconciliationService) MarkReceiptMatched(ctx context.Context, statementID, receiptID uuid.UUID) (*StatementResponse, error) {
	return s.mutateStatement(ctx, statementID, func(st *ledger.ReconciliationStatement) error {
		return st.MarkReceiptMatched(receiptID)
	})
}

// MarkReceiptUnmatched marks a single receipt line as unmatched with a reason
func (s *ReconciliationService) MarkReceiptUnmatched(ctx context.Context, statementID, receiptID uuid.UUID, remark string) (*StatementResponse, error) {
	return s.mutateStatement(ctx, statementID, func(st *ledger.ReconciliationStatement) error {
		return st.MarkReceiptUnmatched(receiptID, remark)
	})
}

// MarkAllReceiptsMatched marks every receipt line on the statement as matched
func (s *ReconciliationService) MarkAllReceiptsMatched(ctx context.Context, statementID uuid.UUID) (*StatementResponse, error) {
	return s.mutateStatement(ctx, statementID, func(st *ledger.ReconciliationStatement) error {
		return st.MarkAllReceiptsMatched()
	})
}

// DisputeStatement moves a statement into dispute with a reason
func (s *ReconciliationService) DisputeStatement(ctx context.Context, statementID uuid.UUID, reason string) (*StatementResponse, error) {
	return s.mutateStatement(ctx, statementID, func(st *ledger.ReconciliationStatement) error {
		return st.Dispute(reason)
	})
}

// ResolveStatement resolves a disputed statement
func (s *ReconciliationService) ResolveStatement(ctx context.Context, statementID uuid.UUID) (*StatementResponse, error) {
	return s.mutateStatement(ctx, statementID, func(st *ledger.ReconciliationStatement) error {
		return st.Resolve()
	})
}

// ConfirmStatementResponse carries the confirmed statement together with the
// account payable the confirmation produced
type ConfirmStatementResponse struct {
	Statement *StatementResponse      `json:"statement"`
	Payable   *AccountPayableResponse `json:"payable"`
}

// ConfirmStatement confirms a statement and creates the account payable for
// its payable total. The due date comes from the supplier's credit days.
// Both writes happen in one transaction.
func (s *ReconciliationService) ConfirmStatement(ctx context.Context, statementID uuid.UUID, confirmedBy string) (*ConfirmStatementResponse, error) {
	var statement *ledger.ReconciliationStatement
	var payable *ledger.AccountPayable

	err := s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		statement, err = s.statementRepo.FindByID(ctx, statementID)
		if err != nil {
			return err
		}
		if statement == nil {
			return shared.NewDomainError("NOT_FOUND", "Reconciliation statement not found")
		}

		supplier, err := s.supplierRepo.FindByID(ctx, statement.SupplierID)
		if err != nil {
			return err
		}
		if supplier == nil {
			return shared.NewDomainError("NOT_FOUND", "Supplier not found")
		}

		if err := statement.Confirm(confirmedBy); err != nil {
			return err
		}

		payableNumber, err := s.payableRepo.GeneratePayableNumber(ctx)
		if err != nil {
			return err
		}

		payable, err = ledger.NewAccountPayable(
			payableNumber,
			statement.SupplierID,
			statement.SupplierName,
			ledger.PayableSourceTypeReconciliation,
			statement.ID,
			statement.StatementNumber,
			valueobject.NewMoneyCNY(statement.ConfirmedAmount),
			supplier.DueDateFor(time.Now()),
		)
		if err != nil {
			return err
		}

		if err := s.payableRepo.Save(ctx, payable); err != nil {
			return err
		}

		if err := statement.LinkPayable(payable.ID); err != nil {
			return err
		}

		return s.statementRepo.SaveWithLock(ctx, statement)
	})
	if err != nil {
		return nil, err
	}

	return &ConfirmStatementResponse{
		Statement: toStatementResponse(statement),
		Payable:   toPayableResponse(payable),
	}, nil
}

func (s *ReconciliationService) mutateStatement(ctx context.Context, statementID uuid.UUID, mutate func(*ledger.ReconciliationStatement) error) (*StatementResponse, error) {
	statement, err := s.statementRepo.FindByID(ctx, statementID)
	if err != nil {
		return nil, err
	}
	if statement == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Reconciliation statement not found")
	}

	if err := mutate(statement); err != nil {
		return nil, err
	}

	if err := s.statementRepo.SaveWithLock(ctx, statement); err != nil {
		return nil, err
	}

	return toStatementResponse(statement), nil
}

func toStatementResponse(st *ledger.ReconciliationStatement) *StatementResponse {
	receipts := make([]ReceiptResponse, len(st.Receipts))
	for i, r := range st.Receipts {
		receipts[i] = ReceiptResponse{
			ID:                  r.ID,
			ReceiptNumber:       r.ReceiptNumber,
			ReceiptDate:         r.ReceiptDate,
			PurchaseOrderNumber: r.PurchaseOrderNumber,
			SKUCount:            r.SKUCount,
			GoodQuantity:        r.GoodQuantity,
			DefectQuantity:      r.DefectQuantity,
			Category:            r.Category,
			HasTax:              r.HasTax,
			ReceiptAmount:       r.ReceiptAmount,
			PayableAmount:       r.PayableAmount,
			MatchStatus:         string(r.MatchStatus),
			Remark:              r.Remark,
		}
	}

	return &StatementResponse{
		ID:                   st.ID,
		StatementNumber:      st.StatementNumber,
		SupplierID:           st.SupplierID,
		SupplierName:         st.SupplierName,
		PeriodStart:          st.PeriodStart,
		PeriodEnd:            st.PeriodEnd,
		Receipts:             receipts,
		ReconciliationAmount: st.ReconciliationAmount,
		TotalPayableAmount:   st.TotalPayableAmount(),
		ConfirmedAmount:      st.ConfirmedAmount,
		Status:               string(st.Status),
		DisputeReason:        st.DisputeReason,
		Remark:               st.Remark,
		ConfirmedAt:          st.ConfirmedAt,
		ConfirmedBy:          st.ConfirmedBy,
		PayableID:            st.PayableID,
		CreatedAt:            st.CreatedAt,
		UpdatedAt:            st.UpdatedAt,
		Version:              st.Version,
	}
}
