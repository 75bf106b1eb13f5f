package handler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/fzhange/financial-sys/internal/domain/ledger"
	"github.com/fzhange/financial-sys/internal/domain/partner"
	"github.com/fzhange/financial-sys/internal/domain/shared"
)

// passthroughTxManager runs the callback without a real transaction
type passthroughTxManager struct{}

func (passthroughTxManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// memoryIdempotencyStore is a map-backed store for tests
type memoryIdempotencyStore struct {
	mu   sync.Mutex
	seen map[string]bool
}

func newMemoryIdempotencyStore() *memoryIdempotencyStore {
	return &memoryIdempotencyStore{seen: make(map[string]bool)}
}

func (s *memoryIdempotencyStore) MarkProcessed(_ context.Context, eventID string, _ time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seen[eventID] {
		return false, nil
	}
	s.seen[eventID] = true
	return true, nil
}

func (s *memoryIdempotencyStore) IsProcessed(_ context.Context, eventID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seen[eventID], nil
}

func (s *memoryIdempotencyStore) Release(_ context.Context, eventID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.seen, eventID)
	return nil
}

func (s *memoryIdempotencyStore) Close() error { return nil }

// MockAccountPayableRepository is a mock implementation of ledger.AccountPayableRepository
type MockAccountPayableRepository struct {
	mock.Mock
	paymentSeq int32
}

func (m *MockAccountPayableRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.AccountPayable, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.AccountPayable), args.Error(1)
}

func (m *MockAccountPayableRepository) FindByNumber(ctx context.Context, payableNumber string) (*ledger.AccountPayable, error) {
	args := m.Called(ctx, payableNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.AccountPayable), args.Error(1)
}

func (m *MockAccountPayableRepository) FindBySource(ctx context.Context, sourceType ledger.PayableSourceType, sourceID uuid.UUID) (*ledger.AccountPayable, error) {
	args := m.Called(ctx, sourceType, sourceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.AccountPayable), args.Error(1)
}

func (m *MockAccountPayableRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]ledger.AccountPayable, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]ledger.AccountPayable), args.Error(1)
}

func (m *MockAccountPayableRepository) FindAll(ctx context.Context, filter ledger.AccountPayableFilter) ([]ledger.AccountPayable, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]ledger.AccountPayable), args.Error(1)
}

func (m *MockAccountPayableRepository) FindOutstanding(ctx context.Context, supplierID uuid.UUID) ([]ledger.AccountPayable, error) {
	args := m.Called(ctx, supplierID)
	return args.Get(0).([]ledger.AccountPayable), args.Error(1)
}

func (m *MockAccountPayableRepository) Save(ctx context.Context, payable *ledger.AccountPayable) error {
	args := m.Called(ctx, payable)
	return args.Error(0)
}

func (m *MockAccountPayableRepository) SaveWithLock(ctx context.Context, payable *ledger.AccountPayable) error {
	args := m.Called(ctx, payable)
	return args.Error(0)
}

func (m *MockAccountPayableRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAccountPayableRepository) Count(ctx context.Context, filter ledger.AccountPayableFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAccountPayableRepository) Summarize(ctx context.Context, supplierID *uuid.UUID) (*ledger.PayableSummary, error) {
	args := m.Called(ctx, supplierID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.PayableSummary), args.Error(1)
}

func (m *MockAccountPayableRepository) GeneratePayableNumber(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockAccountPayableRepository) GeneratePaymentNumber(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	seq := atomic.AddInt32(&m.paymentSeq, 1)
	return fmt.Sprintf("%s%03d", args.String(0), seq), args.Error(1)
}

// MockInvoiceRepository is a mock implementation of ledger.InvoiceRepository
type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByNumberAndCode(ctx context.Context, invoiceNumber, invoiceCode string) (*ledger.Invoice, error) {
	args := m.Called(ctx, invoiceNumber, invoiceCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]ledger.Invoice, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]ledger.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindBySupplier(ctx context.Context, supplierID uuid.UUID) ([]ledger.Invoice, error) {
	args := m.Called(ctx, supplierID)
	return args.Get(0).([]ledger.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindAll(ctx context.Context, filter ledger.InvoiceFilter) ([]ledger.Invoice, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]ledger.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) Save(ctx context.Context, invoice *ledger.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) SaveWithLock(ctx context.Context, invoice *ledger.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockInvoiceRepository) Count(ctx context.Context, filter ledger.InvoiceFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInvoiceRepository) Summarize(ctx context.Context, supplierID *uuid.UUID) (*ledger.InvoiceSummary, error) {
	args := m.Called(ctx, supplierID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.InvoiceSummary), args.Error(1)
}

// MockRelationRepository is a mock implementation of ledger.PayableInvoiceRelationRepository
type MockRelationRepository struct {
	mock.Mock
}

func (m *MockRelationRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.PayableInvoiceRelation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.PayableInvoiceRelation), args.Error(1)
}

func (m *MockRelationRepository) FindByPayable(ctx context.Context, payableID uuid.UUID) ([]ledger.PayableInvoiceRelation, error) {
	args := m.Called(ctx, payableID)
	return args.Get(0).([]ledger.PayableInvoiceRelation), args.Error(1)
}

func (m *MockRelationRepository) FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]ledger.PayableInvoiceRelation, error) {
	args := m.Called(ctx, invoiceID)
	return args.Get(0).([]ledger.PayableInvoiceRelation), args.Error(1)
}

func (m *MockRelationRepository) FindByPair(ctx context.Context, payableID, invoiceID uuid.UUID) (*ledger.PayableInvoiceRelation, error) {
	args := m.Called(ctx, payableID, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.PayableInvoiceRelation), args.Error(1)
}

func (m *MockRelationRepository) FindBySupplierInvoices(ctx context.Context, invoiceIDs []uuid.UUID) ([]ledger.PayableInvoiceRelation, error) {
	args := m.Called(ctx, invoiceIDs)
	return args.Get(0).([]ledger.PayableInvoiceRelation), args.Error(1)
}

func (m *MockRelationRepository) Save(ctx context.Context, relation *ledger.PayableInvoiceRelation) error {
	args := m.Called(ctx, relation)
	return args.Error(0)
}

func (m *MockRelationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockPaymentRequestRepository is a mock implementation of ledger.PaymentRequestRepository
type MockPaymentRequestRepository struct {
	mock.Mock
}

func (m *MockPaymentRequestRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.PaymentRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.PaymentRequest), args.Error(1)
}

func (m *MockPaymentRequestRepository) FindByNumber(ctx context.Context, requestNumber string) (*ledger.PaymentRequest, error) {
	args := m.Called(ctx, requestNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.PaymentRequest), args.Error(1)
}

func (m *MockPaymentRequestRepository) FindAll(ctx context.Context, filter ledger.PaymentRequestFilter) ([]ledger.PaymentRequest, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]ledger.PaymentRequest), args.Error(1)
}

func (m *MockPaymentRequestRepository) Save(ctx context.Context, request *ledger.PaymentRequest) error {
	args := m.Called(ctx, request)
	return args.Error(0)
}

func (m *MockPaymentRequestRepository) SaveWithLock(ctx context.Context, request *ledger.PaymentRequest) error {
	args := m.Called(ctx, request)
	return args.Error(0)
}

func (m *MockPaymentRequestRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPaymentRequestRepository) Count(ctx context.Context, filter ledger.PaymentRequestFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPaymentRequestRepository) Summarize(ctx context.Context, supplierID *uuid.UUID) (*ledger.RequestSummary, error) {
	args := m.Called(ctx, supplierID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.RequestSummary), args.Error(1)
}

func (m *MockPaymentRequestRepository) GenerateRequestNumber(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

// MockPaymentVoucherRepository is a mock implementation of ledger.PaymentVoucherRepository
type MockPaymentVoucherRepository struct {
	mock.Mock
}

func (m *MockPaymentVoucherRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.PaymentVoucher, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.PaymentVoucher), args.Error(1)
}

func (m *MockPaymentVoucherRepository) FindByNumber(ctx context.Context, voucherNumber string) (*ledger.PaymentVoucher, error) {
	args := m.Called(ctx, voucherNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.PaymentVoucher), args.Error(1)
}

func (m *MockPaymentVoucherRepository) FindByRequest(ctx context.Context, requestID uuid.UUID) (*ledger.PaymentVoucher, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.PaymentVoucher), args.Error(1)
}

func (m *MockPaymentVoucherRepository) FindAll(ctx context.Context, filter ledger.PaymentVoucherFilter) ([]ledger.PaymentVoucher, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]ledger.PaymentVoucher), args.Error(1)
}

func (m *MockPaymentVoucherRepository) Save(ctx context.Context, voucher *ledger.PaymentVoucher) error {
	args := m.Called(ctx, voucher)
	return args.Error(0)
}

func (m *MockPaymentVoucherRepository) SaveWithLock(ctx context.Context, voucher *ledger.PaymentVoucher) error {
	args := m.Called(ctx, voucher)
	return args.Error(0)
}

func (m *MockPaymentVoucherRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPaymentVoucherRepository) Count(ctx context.Context, filter ledger.PaymentVoucherFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPaymentVoucherRepository) GenerateVoucherNumber(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

// MockStatementRepository is a mock implementation of ledger.ReconciliationStatementRepository
type MockStatementRepository struct {
	mock.Mock
}

func (m *MockStatementRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.ReconciliationStatement, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.ReconciliationStatement), args.Error(1)
}

func (m *MockStatementRepository) FindByNumber(ctx context.Context, statementNumber string) (*ledger.ReconciliationStatement, error) {
	args := m.Called(ctx, statementNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.ReconciliationStatement), args.Error(1)
}

func (m *MockStatementRepository) FindAll(ctx context.Context, filter ledger.StatementFilter) ([]ledger.ReconciliationStatement, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]ledger.ReconciliationStatement), args.Error(1)
}

func (m *MockStatementRepository) Save(ctx context.Context, statement *ledger.ReconciliationStatement) error {
	args := m.Called(ctx, statement)
	return args.Error(0)
}

func (m *MockStatementRepository) SaveWithLock(ctx context.Context, statement *ledger.ReconciliationStatement) error {
	args := m.Called(ctx, statement)
	return args.Error(0)
}

func (m *MockStatementRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockStatementRepository) Count(ctx context.Context, filter ledger.StatementFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStatementRepository) GenerateStatementNumber(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

// MockSupplierRepository is a mock implementation of partner.SupplierRepository
type MockSupplierRepository struct {
	mock.Mock
}

func (m *MockSupplierRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Supplier, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Supplier), args.Error(1)
}

func (m *MockSupplierRepository) FindByCode(ctx context.Context, code string) (*partner.Supplier, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Supplier), args.Error(1)
}

func (m *MockSupplierRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]partner.Supplier, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]partner.Supplier), args.Error(1)
}

func (m *MockSupplierRepository) FindAll(ctx context.Context, filter shared.Filter) ([]partner.Supplier, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]partner.Supplier), args.Error(1)
}

func (m *MockSupplierRepository) FindActive(ctx context.Context, filter shared.Filter) ([]partner.Supplier, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]partner.Supplier), args.Error(1)
}

func (m *MockSupplierRepository) Save(ctx context.Context, supplier *partner.Supplier) error {
	args := m.Called(ctx, supplier)
	return args.Error(0)
}

func (m *MockSupplierRepository) SaveWithLock(ctx context.Context, supplier *partner.Supplier) error {
	args := m.Called(ctx, supplier)
	return args.Error(0)
}

func (m *MockSupplierRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockSupplierRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSupplierRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}
