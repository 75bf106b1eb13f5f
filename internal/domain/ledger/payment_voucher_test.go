package ledger

import (
	"testing"
	"time"

	"github.com/fzhange/financial-sys/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestVoucher(t *testing.T, amount float64) *PaymentVoucher {
	t.Helper()
	pv, err := NewPaymentVoucher(
		"FK20250101001",
		uuid.New(),
		"Acme Supplies",
		valueobject.NewMoneyCNYFromFloat(amount),
		PaymentMethodBankTransfer,
		time.Now(),
		"alice",
	)
	require.NoError(t, err)
	return pv
}

func TestNewPaymentVoucher(t *testing.T) {
	t.Run("created completed with no write-offs", func(t *testing.T) {
		pv := newTestVoucher(t, 10000)

		assert.Equal(t, VoucherStatusCompleted, pv.Status)
		assert.True(t, pv.AllocatedAmount().IsZero())
		assert.True(t, pv.UnallocatedAmount().Equal(decimal.NewFromInt(10000)))
		assert.Equal(t, 0, pv.WriteOffCount())
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		_, err := NewPaymentVoucher("FK-1", uuid.New(), "Acme", valueobject.ZeroCNY(), PaymentMethodCash, time.Now(), "alice")
		assert.Error(t, err)
	})

	t.Run("rejects empty voucher number", func(t *testing.T) {
		_, err := NewPaymentVoucher("", uuid.New(), "Acme", valueobject.NewMoneyCNYFromFloat(10), PaymentMethodCash, time.Now(), "alice")
		assert.Error(t, err)
	})
}

func TestPaymentVoucher_AppendWriteOff(t *testing.T) {
	t.Run("append tracks allocated and unallocated", func(t *testing.T) {
		pv := newTestVoucher(t, 1000)
		payableID := uuid.New()

		detail, err := pv.AppendWriteOff(payableID, "AP-1", decimal.NewFromInt(800), decimal.NewFromInt(600), decimal.NewFromInt(200))
		require.NoError(t, err)

		assert.True(t, detail.WriteOffAmount.Equal(decimal.NewFromInt(600)))
		assert.True(t, pv.AllocatedAmount().Equal(decimal.NewFromInt(600)))
		assert.True(t, pv.UnallocatedAmount().Equal(decimal.NewFromInt(400)))
		assert.Len(t, pv.PayableIDs, 1)
	})

	t.Run("sum of write-offs never exceeds payment amount", func(t *testing.T) {
		pv := newTestVoucher(t, 1000)
		_, err := pv.AppendWriteOff(uuid.New(), "AP-1", decimal.NewFromInt(900), decimal.NewFromInt(700), decimal.NewFromInt(200))
		require.NoError(t, err)

		_, err = pv.AppendWriteOff(uuid.New(), "AP-2", decimal.NewFromInt(500), decimal.NewFromInt(301), decimal.NewFromInt(199))
		assert.Error(t, err)
		assert.True(t, pv.AllocatedAmount().Equal(decimal.NewFromInt(700)))
	})

	t.Run("same payable may receive several lines", func(t *testing.T) {
		pv := newTestVoucher(t, 1000)
		payableID := uuid.New()

		_, err := pv.AppendWriteOff(payableID, "AP-1", decimal.NewFromInt(900), decimal.NewFromInt(300), decimal.NewFromInt(600))
		require.NoError(t, err)
		_, err = pv.AppendWriteOff(payableID, "AP-1", decimal.NewFromInt(900), decimal.NewFromInt(200), decimal.NewFromInt(400))
		require.NoError(t, err)

		assert.Equal(t, 2, pv.WriteOffCount())
		assert.Len(t, pv.PayableIDs, 1)
		assert.True(t, pv.UnallocatedAmount().Equal(decimal.NewFromInt(500)))
	})

	t.Run("rejects non-positive write-off", func(t *testing.T) {
		pv := newTestVoucher(t, 1000)
		_, err := pv.AppendWriteOff(uuid.New(), "AP-1", decimal.NewFromInt(100), decimal.Zero, decimal.NewFromInt(100))
		assert.Error(t, err)
	})

	t.Run("fully allocated voucher accepts no more lines", func(t *testing.T) {
		pv := newTestVoucher(t, 500)
		_, err := pv.AppendWriteOff(uuid.New(), "AP-1", decimal.NewFromInt(500), decimal.NewFromInt(500), decimal.Zero)
		require.NoError(t, err)
		assert.True(t, pv.IsFullyAllocated())

		_, err = pv.AppendWriteOff(uuid.New(), "AP-2", decimal.NewFromInt(100), decimal.NewFromInt(1), decimal.NewFromInt(99))
		assert.Error(t, err)
	})
}

func TestPaymentVoucher_Cancel(t *testing.T) {
	t.Run("cancels voucher without write-offs", func(t *testing.T) {
		pv := newTestVoucher(t, 100)
		require.NoError(t, pv.Cancel("entered by mistake"))
		assert.Equal(t, VoucherStatusCancelled, pv.Status)
		assert.NotNil(t, pv.CancelledAt)
	})

	t.Run("rejects cancel with write-offs", func(t *testing.T) {
		pv := newTestVoucher(t, 100)
		_, err := pv.AppendWriteOff(uuid.New(), "AP-1", decimal.NewFromInt(50), decimal.NewFromInt(50), decimal.Zero)
		require.NoError(t, err)

		assert.Error(t, pv.Cancel("too late"))
	})

	t.Run("cancelled voucher accepts no write-offs", func(t *testing.T) {
		pv := newTestVoucher(t, 100)
		require.NoError(t, pv.Cancel("mistake"))

		_, err := pv.AppendWriteOff(uuid.New(), "AP-1", decimal.NewFromInt(50), decimal.NewFromInt(50), decimal.Zero)
		assert.Error(t, err)
	})

	t.Run("rejects cancel without reason", func(t *testing.T) {
		pv := newTestVoucher(t, 100)
		assert.Error(t, pv.Cancel(""))
	})
}

func TestPaymentVoucher_LinkRequest(t *testing.T) {
	pv := newTestVoucher(t, 100)
	requestID := uuid.New()

	require.NoError(t, pv.LinkRequest(requestID, "QK20250101001"))
	assert.Equal(t, requestID, *pv.RequestID)
	assert.Equal(t, "QK20250101001", pv.RequestNumber)

	assert.Error(t, pv.LinkRequest(uuid.Nil, ""))
}

func TestPaymentVoucher_GetWriteOffByPayableID(t *testing.T) {
	pv := newTestVoucher(t, 1000)
	payableID := uuid.New()
	_, err := pv.AppendWriteOff(payableID, "AP-1", decimal.NewFromInt(100), decimal.NewFromInt(100), decimal.Zero)
	require.NoError(t, err)

	assert.NotNil(t, pv.GetWriteOffByPayableID(payableID))
	assert.Nil(t, pv.GetWriteOffByPayableID(uuid.New()))
}
