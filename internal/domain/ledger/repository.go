package ledger

import (
	"context"
	"time"

	"github.com/fzhange/financial-sys/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountPayableFilter defines filtering options for payable queries
type AccountPayableFilter struct {
	shared.Filter
	SupplierID *uuid.UUID
	Status     *PayableStatus
	SourceType *PayableSourceType
	SourceID   *uuid.UUID
	FromDate   *time.Time
	ToDate     *time.Time
	DueFrom    *time.Time
	DueTo      *time.Time
	Overdue    *bool
	MinUnpaid  *decimal.Decimal
	MaxUnpaid  *decimal.Decimal
}

// PayableSummary aggregates payable balances for the dashboard
type PayableSummary struct {
	TotalCount    int64           `json:"total_count"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	UnpaidAmount  decimal.Decimal `json:"unpaid_amount"`
	OverdueCount  int64           `json:"overdue_count"`
	OverdueAmount decimal.Decimal `json:"overdue_amount"`
}

// AccountPayableRepository defines the interface for account payable persistence
type AccountPayableRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*AccountPayable, error)
	FindByNumber(ctx context.Context, payableNumber string) (*AccountPayable, error)
	FindBySource(ctx context.Context, sourceType PayableSourceType, sourceID uuid.UUID) (*AccountPayable, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]AccountPayable, error)
	FindAll(ctx context.Context, filter AccountPayableFilter) ([]AccountPayable, error)
	FindOutstanding(ctx context.Context, supplierID uuid.UUID) ([]AccountPayable, error)
	Save(ctx context.Context, payable *AccountPayable) error
	SaveWithLock(ctx context.Context, payable *AccountPayable) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context, filter AccountPayableFilter) (int64, error)
	Summarize(ctx context.Context, supplierID *uuid.UUID) (*PayableSummary, error)

	// GeneratePayableNumber generates the next number: AP{yyyymmdd}{seq}
	GeneratePayableNumber(ctx context.Context) (string, error)
	// GeneratePaymentNumber generates the next payment record number: PAY{yyyymmdd}{seq}
	GeneratePaymentNumber(ctx context.Context) (string, error)
}

// InvoiceFilter defines filtering options for invoice queries
type InvoiceFilter struct {
	shared.Filter
	SupplierID   *uuid.UUID
	InvoiceType  *InvoiceType
	VerifyStatus *InvoiceVerifyStatus
	MatchStatus  *InvoiceMatchStatus
	FromDate     *time.Time
	ToDate       *time.Time
}

// InvoiceSummary aggregates invoice figures for the dashboard
type InvoiceSummary struct {
	TotalCount    int64           `json:"total_count"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	VerifiedCount int64           `json:"verified_count"`
	MatchedCount  int64           `json:"matched_count"`
	PendingCount  int64           `json:"pending_count"`
}

// InvoiceRepository defines the interface for invoice persistence
type InvoiceRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)
	FindByNumberAndCode(ctx context.Context, invoiceNumber, invoiceCode string) (*Invoice, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Invoice, error)
	FindBySupplier(ctx context.Context, supplierID uuid.UUID) ([]Invoice, error)
	FindAll(ctx context.Context, filter InvoiceFilter) ([]Invoice, error)
	Save(ctx context.Context, invoice *Invoice) error
	SaveWithLock(ctx context.Context, invoice *Invoice) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context, filter InvoiceFilter) (int64, error)
	Summarize(ctx context.Context, supplierID *uuid.UUID) (*InvoiceSummary, error)
}

// PayableInvoiceRelationRepository persists the payable-invoice links
type PayableInvoiceRelationRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*PayableInvoiceRelation, error)
	FindByPayable(ctx context.Context, payableID uuid.UUID) ([]PayableInvoiceRelation, error)
	FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]PayableInvoiceRelation, error)
	FindByPair(ctx context.Context, payableID, invoiceID uuid.UUID) (*PayableInvoiceRelation, error)
	FindBySupplierInvoices(ctx context.Context, invoiceIDs []uuid.UUID) ([]PayableInvoiceRelation, error)
	Save(ctx context.Context, relation *PayableInvoiceRelation) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// PaymentRequestFilter defines filtering options for payment request queries
type PaymentRequestFilter struct {
	shared.Filter
	SupplierID  *uuid.UUID
	Status      *RequestStatus
	RequestType *RequestType
	Applicant   *string
	FromDate    *time.Time
	ToDate      *time.Time
}

// RequestSummary aggregates payment request figures for the dashboard
type RequestSummary struct {
	TotalCount     int64           `json:"total_count"`
	PendingCount   int64           `json:"pending_count"`
	ApprovedCount  int64           `json:"approved_count"`
	PaidCount      int64           `json:"paid_count"`
	PendingAmount  decimal.Decimal `json:"pending_amount"`
	ApprovedAmount decimal.Decimal `json:"approved_amount"`
	PaidAmount     decimal.Decimal `json:"paid_amount"`
}

// PaymentRequestRepository defines the interface for payment request persistence
type PaymentRequestRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*PaymentRequest, error)
	FindByNumber(ctx context.Context, requestNumber string) (*PaymentRequest, error)
	FindAll(ctx context.Context, filter PaymentRequestFilter) ([]PaymentRequest, error)
	Save(ctx context.Context, request *PaymentRequest) error
	SaveWithLock(ctx context.Context, request *PaymentRequest) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context, filter PaymentRequestFilter) (int64, error)
	Summarize(ctx context.Context, supplierID *uuid.UUID) (*RequestSummary, error)

	// GenerateRequestNumber generates the next number: QK{yyyymmdd}{seq}
	GenerateRequestNumber(ctx context.Context) (string, error)
}

// PaymentVoucherFilter defines filtering options for voucher queries
type PaymentVoucherFilter struct {
	shared.Filter
	SupplierID *uuid.UUID
	Status     *VoucherStatus
	RequestID  *uuid.UUID
	FromDate   *time.Time
	ToDate     *time.Time
}

// PaymentVoucherRepository defines the interface for payment voucher persistence
type PaymentVoucherRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*PaymentVoucher, error)
	FindByNumber(ctx context.Context, voucherNumber string) (*PaymentVoucher, error)
	FindByRequest(ctx context.Context, requestID uuid.UUID) (*PaymentVoucher, error)
	FindAll(ctx context.Context, filter PaymentVoucherFilter) ([]PaymentVoucher, error)
	Save(ctx context.Context, voucher *PaymentVoucher) error
	SaveWithLock(ctx context.Context, voucher *PaymentVoucher) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context, filter PaymentVoucherFilter) (int64, error)

	// GenerateVoucherNumber generates the next number: FK{yyyymmdd}{seq}
	GenerateVoucherNumber(ctx context.Context) (string, error)
}

// StatementFilter defines filtering options for reconciliation statement queries
type StatementFilter struct {
	shared.Filter
	SupplierID *uuid.UUID
	Status     *StatementStatus
	FromDate   *time.Time
	ToDate     *time.Time
	ActiveOnly bool // Exclude confirmed statements
}

// ReconciliationStatementRepository defines the interface for statement persistence
type ReconciliationStatementRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ReconciliationStatement, error)
	FindByNumber(ctx context.Context, statementNumber string) (*ReconciliationStatement, error)
	FindAll(ctx context.Context, filter StatementFilter) ([]ReconciliationStatement, error)
	Save(ctx context.Context, statement *ReconciliationStatement) error
	SaveWithLock(ctx context.Context, statement *ReconciliationStatement) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context, filter StatementFilter) (int64, error)

	// GenerateStatementNumber generates the next number: DZ{yyyymmdd}{seq}
	GenerateStatementNumber(ctx context.Context) (string, error)
}
