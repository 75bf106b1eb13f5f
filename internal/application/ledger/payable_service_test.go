package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fzhange/financial-sys/internal/domain/ledger"
	"github.com/fzhange/financial-sys/internal/domain/shared"
	"github.com/fzhange/financial-sys/internal/domain/shared/valueobject"
)

func newTestPayable(t *testing.T, supplierID uuid.UUID, number string, total int64) *ledger.AccountPayable {
	t.Helper()
	payable, err := ledger.NewAccountPayable(
		number,
		supplierID,
		"Acme Industrial",
		ledger.PayableSourceTypeReconciliation,
		uuid.New(),
		"DZ20260801001",
		valueobject.NewMoneyCNY(decimal.NewFromInt(total)),
		nil,
	)
	require.NoError(t, err)
	payable.ClearDomainEvents()
	return payable
}

func TestPayableService_GetPayableByID(t *testing.T) {
	mockPayableRepo := new(MockAccountPayableRepository)
	service := NewPayableService(mockPayableRepo, passthroughTxManager{})

	ctx := context.Background()
	payable := newTestPayable(t, uuid.New(), "AP20260829001", 1000)

	mockPayableRepo.On("FindByID", ctx, payable.ID).Return(payable, nil)

	result, err := service.GetPayableByID(ctx, payable.ID)

	require.NoError(t, err)
	assert.Equal(t, "AP20260829001", result.PayableNumber)
	assert.True(t, result.TotalAmount.Equal(decimal.NewFromInt(1000)))
	assert.True(t, result.UnpaidAmount.Equal(decimal.NewFromInt(1000)))
	assert.Equal(t, "PENDING", result.Status)
	mockPayableRepo.AssertExpectations(t)
}

func TestPayableService_GetPayableByID_NotFound(t *testing.T) {
	mockPayableRepo := new(MockAccountPayableRepository)
	service := NewPayableService(mockPayableRepo, passthroughTxManager{})

	ctx := context.Background()
	id := uuid.New()

	mockPayableRepo.On("FindByID", ctx, id).Return(nil, nil)

	result, err := service.GetPayableByID(ctx, id)

	assert.Error(t, err)
	assert.Nil(t, result)
	var domainErr *shared.DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "NOT_FOUND", domainErr.Code)
	mockPayableRepo.AssertExpectations(t)
}

func TestPayableService_PayPayable_Partial(t *testing.T) {
	mockPayableRepo := new(MockAccountPayableRepository)
	service := NewPayableService(mockPayableRepo, passthroughTxManager{})

	ctx := context.Background()
	payable := newTestPayable(t, uuid.New(), "AP20260829001", 1000)

	mockPayableRepo.On("FindByID", ctx, payable.ID).Return(payable, nil)
	mockPayableRepo.On("GeneratePaymentNumber", ctx).Return("PAY20260829", nil)
	mockPayableRepo.On("SaveWithLock", ctx, payable).Return(nil)

	result, err := service.PayPayable(ctx, payable.ID, PayPayableRequest{
		Amount:        decimal.NewFromInt(400),
		PaymentMethod: "BANK_TRANSFER",
		PaymentDate:   time.Now(),
		Operator:      "finance-clerk",
	})

	require.NoError(t, err)
	assert.Equal(t, "PARTIAL", result.Status)
	assert.True(t, result.PaidAmount.Equal(decimal.NewFromInt(400)))
	assert.True(t, result.UnpaidAmount.Equal(decimal.NewFromInt(600)))
	require.Len(t, result.PaymentRecords, 1)
	assert.Nil(t, result.PaymentRecords[0].VoucherID)
	mockPayableRepo.AssertExpectations(t)
}

func TestPayableService_PayPayable_FullSettlement(t *testing.T) {
	mockPayableRepo := new(MockAccountPayableRepository)
	service := NewPayableService(mockPayableRepo, passthroughTxManager{})

	ctx := context.Background()
	payable := newTestPayable(t, uuid.New(), "AP20260829001", 1000)

	mockPayableRepo.On("FindByID", ctx, payable.ID).Return(payable, nil)
	mockPayableRepo.On("GeneratePaymentNumber", ctx).Return("PAY20260829", nil)
	mockPayableRepo.On("SaveWithLock", ctx, payable).Return(nil)

	result, err := service.PayPayable(ctx, payable.ID, PayPayableRequest{
		Amount:        decimal.NewFromInt(1000),
		PaymentMethod: "BANK_TRANSFER",
		PaymentDate:   time.Now(),
		Operator:      "finance-clerk",
	})

	require.NoError(t, err)
	assert.Equal(t, "PAID", result.Status)
	assert.True(t, result.UnpaidAmount.IsZero())
	assert.NotNil(t, result.PaidAt)
	mockPayableRepo.AssertExpectations(t)
}

func TestPayableService_PayPayable_ExceedsUnpaid(t *testing.T) {
	mockPayableRepo := new(MockAccountPayableRepository)
	service := NewPayableService(mockPayableRepo, passthroughTxManager{})

	ctx := context.Background()
	payable := newTestPayable(t, uuid.New(), "AP20260829001", 1000)

	mockPayableRepo.On("FindByID", ctx, payable.ID).Return(payable, nil)
	mockPayableRepo.On("GeneratePaymentNumber", ctx).Return("PAY20260829", nil)

	result, err := service.PayPayable(ctx, payable.ID, PayPayableRequest{
		Amount:        decimal.NewFromInt(1500),
		PaymentMethod: "BANK_TRANSFER",
		PaymentDate:   time.Now(),
		Operator:      "finance-clerk",
	})

	assert.Error(t, err)
	assert.Nil(t, result)
	var domainErr *shared.DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "EXCEEDS_UNPAID", domainErr.Code)
	mockPayableRepo.AssertNotCalled(t, "SaveWithLock", ctx, payable)
	mockPayableRepo.AssertExpectations(t)
}

func TestPayableService_ListPayables(t *testing.T) {
	mockPayableRepo := new(MockAccountPayableRepository)
	service := NewPayableService(mockPayableRepo, passthroughTxManager{})

	ctx := context.Background()
	supplierID := uuid.New()
	payables := []ledger.AccountPayable{
		*newTestPayable(t, supplierID, "AP20260829001", 1000),
		*newTestPayable(t, supplierID, "AP20260829002", 500),
	}

	expectedFilter := ledger.AccountPayableFilter{SupplierID: &supplierID}
	expectedFilter.Page = 1
	expectedFilter.PageSize = 20
	status := ledger.PayableStatusPending
	expectedFilter.Status = &status

	mockPayableRepo.On("FindAll", ctx, expectedFilter).Return(payables, nil)
	mockPayableRepo.On("Count", ctx, expectedFilter).Return(int64(2), nil)

	result, total, err := service.ListPayables(ctx, AccountPayableListFilter{
		SupplierID: &supplierID,
		Status:     "PENDING",
		Page:       1,
		PageSize:   20,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, result, 2)
	assert.Equal(t, "AP20260829001", result[0].PayableNumber)
	mockPayableRepo.AssertExpectations(t)
}

func TestPayableService_CancelPayable(t *testing.T) {
	mockPayableRepo := new(MockAccountPayableRepository)
	service := NewPayableService(mockPayableRepo, passthroughTxManager{})

	ctx := context.Background()
	payable := newTestPayable(t, uuid.New(), "AP20260829001", 1000)

	mockPayableRepo.On("FindByID", ctx, payable.ID).Return(payable, nil)
	mockPayableRepo.On("SaveWithLock", ctx, payable).Return(nil)

	result, err := service.CancelPayable(ctx, payable.ID, "statement re-opened")

	require.NoError(t, err)
	assert.Equal(t, "CANCELLED", result.Status)
	mockPayableRepo.AssertExpectations(t)
}

func TestPayableService_CancelPayable_AfterPayment(t *testing.T) {
	mockPayableRepo := new(MockAccountPayableRepository)
	service := NewPayableService(mockPayableRepo, passthroughTxManager{})

	ctx := context.Background()
	payable := newTestPayable(t, uuid.New(), "AP20260829001", 1000)
	_, err := payable.ApplyPayment("PAY20260829001", valueobject.NewMoneyCNY(decimal.NewFromInt(200)), ledger.PaymentMethodCash, time.Now(), nil, "clerk", "")
	require.NoError(t, err)

	mockPayableRepo.On("FindByID", ctx, payable.ID).Return(payable, nil)

	result, err := service.CancelPayable(ctx, payable.ID, "mistake")

	assert.Error(t, err)
	assert.Nil(t, result)
	var domainErr *shared.DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "HAS_PAYMENTS", domainErr.Code)
	mockPayableRepo.AssertExpectations(t)
}
