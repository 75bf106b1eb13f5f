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

func TestInvoiceType_IsValid(t *testing.T) {
	tests := []struct {
		invoiceType InvoiceType
		expected    bool
	}{
		{InvoiceTypeVATSpecial, true},
		{InvoiceTypeVATNormal, true},
		{InvoiceTypeElectronic, true},
		{InvoiceTypeOther, true},
		{InvoiceType("PAPER"), false},
	}

	for _, tc := range tests {
		t.Run(string(tc.invoiceType), func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.invoiceType.IsValid())
		})
	}
}

func newTestInvoice(t *testing.T, amount, taxAmount float64) *Invoice {
	t.Helper()
	inv, err := NewInvoice(
		"12345678",
		"044001900111",
		InvoiceTypeVATSpecial,
		uuid.New(),
		"Acme Supplies",
		time.Now(),
		valueobject.NewMoneyCNYFromFloat(amount),
		decimal.NewFromFloat(0.13),
		valueobject.NewMoneyCNYFromFloat(taxAmount),
	)
	require.NoError(t, err)
	return inv
}

func TestNewInvoice(t *testing.T) {
	t.Run("total is amount plus tax", func(t *testing.T) {
		inv := newTestInvoice(t, 1000, 130)

		assert.True(t, inv.TotalAmount.Equal(decimal.NewFromInt(1130)))
		assert.True(t, inv.MatchedAmount.IsZero())
		assert.True(t, inv.UnmatchedAmount().Equal(decimal.NewFromInt(1130)))
		assert.Equal(t, InvoiceVerifyStatusPending, inv.VerifyStatus)
		assert.Equal(t, InvoiceMatchStatusPending, inv.MatchStatus)
	})

	t.Run("rejects empty number or code", func(t *testing.T) {
		_, err := NewInvoice("", "code", InvoiceTypeVATNormal, uuid.New(), "Acme", time.Now(), valueobject.NewMoneyCNYFromFloat(10), decimal.Zero, valueobject.ZeroCNY())
		assert.Error(t, err)
		_, err = NewInvoice("no", "", InvoiceTypeVATNormal, uuid.New(), "Acme", time.Now(), valueobject.NewMoneyCNYFromFloat(10), decimal.Zero, valueobject.ZeroCNY())
		assert.Error(t, err)
	})

	t.Run("rejects tax rate >= 1", func(t *testing.T) {
		_, err := NewInvoice("no", "code", InvoiceTypeVATNormal, uuid.New(), "Acme", time.Now(), valueobject.NewMoneyCNYFromFloat(10), decimal.NewFromInt(1), valueobject.ZeroCNY())
		assert.Error(t, err)
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		_, err := NewInvoice("no", "code", InvoiceTypeVATNormal, uuid.New(), "Acme", time.Now(), valueobject.ZeroCNY(), decimal.Zero, valueobject.ZeroCNY())
		assert.Error(t, err)
	})
}

func TestInvoice_Verify(t *testing.T) {
	t.Run("verify is irreversible", func(t *testing.T) {
		inv := newTestInvoice(t, 100, 13)

		require.NoError(t, inv.Verify("bob"))
		assert.Equal(t, InvoiceVerifyStatusVerified, inv.VerifyStatus)
		assert.NotNil(t, inv.VerifiedAt)

		assert.Error(t, inv.Verify("bob"))
		assert.Error(t, inv.FailVerification("changed my mind"))
	})

	t.Run("verify after failure", func(t *testing.T) {
		inv := newTestInvoice(t, 100, 13)

		require.NoError(t, inv.FailVerification("blurry scan"))
		assert.Equal(t, InvoiceVerifyStatusFailed, inv.VerifyStatus)
		assert.Equal(t, "blurry scan", inv.VerifyRemark)

		require.NoError(t, inv.Verify("bob"))
		assert.Equal(t, InvoiceVerifyStatusVerified, inv.VerifyStatus)
		assert.Empty(t, inv.VerifyRemark)
	})

	t.Run("fail requires a reason", func(t *testing.T) {
		inv := newTestInvoice(t, 100, 13)
		assert.Error(t, inv.FailVerification(""))
	})
}

func TestInvoice_ApplyMatch(t *testing.T) {
	t.Run("match consumes available value", func(t *testing.T) {
		inv := newTestInvoice(t, 1000, 130)
		payableID := uuid.New()

		require.NoError(t, inv.ApplyMatch(payableID, "AP20250101001", decimal.NewFromInt(500)))

		assert.True(t, inv.MatchedAmount.Equal(decimal.NewFromInt(500)))
		assert.True(t, inv.UnmatchedAmount().Equal(decimal.NewFromInt(630)))
		assert.Equal(t, InvoiceMatchStatusMatched, inv.MatchStatus)
		assert.Len(t, inv.PayableIDs, 1)
	})

	t.Run("rejects match beyond available", func(t *testing.T) {
		inv := newTestInvoice(t, 100, 13)
		require.NoError(t, inv.ApplyMatch(uuid.New(), "AP-1", decimal.NewFromInt(100)))

		err := inv.ApplyMatch(uuid.New(), "AP-2", decimal.NewFromInt(14))
		assert.Error(t, err)
	})

	t.Run("rejects non-positive match", func(t *testing.T) {
		inv := newTestInvoice(t, 100, 13)
		assert.Error(t, inv.ApplyMatch(uuid.New(), "AP-1", decimal.Zero))
	})
}

func TestInvoice_ReleaseMatch(t *testing.T) {
	t.Run("releasing last link resets match status", func(t *testing.T) {
		inv := newTestInvoice(t, 1000, 130)
		payableID := uuid.New()
		require.NoError(t, inv.ApplyMatch(payableID, "AP-1", decimal.NewFromInt(400)))

		require.NoError(t, inv.ReleaseMatch(payableID, decimal.NewFromInt(400)))

		assert.True(t, inv.MatchedAmount.IsZero())
		assert.Equal(t, InvoiceMatchStatusPending, inv.MatchStatus)
		assert.Empty(t, inv.PayableIDs)
	})

	t.Run("other links keep invoice matched", func(t *testing.T) {
		inv := newTestInvoice(t, 1000, 130)
		first := uuid.New()
		second := uuid.New()
		require.NoError(t, inv.ApplyMatch(first, "AP-1", decimal.NewFromInt(300)))
		require.NoError(t, inv.ApplyMatch(second, "AP-2", decimal.NewFromInt(200)))

		require.NoError(t, inv.ReleaseMatch(first, decimal.NewFromInt(300)))

		assert.Equal(t, InvoiceMatchStatusMatched, inv.MatchStatus)
		assert.True(t, inv.MatchedAmount.Equal(decimal.NewFromInt(200)))
	})

	t.Run("rejects release for unlinked payable", func(t *testing.T) {
		inv := newTestInvoice(t, 100, 13)
		assert.Error(t, inv.ReleaseMatch(uuid.New(), decimal.NewFromInt(10)))
	})
}

func TestPayableInvoiceRelation(t *testing.T) {
	t.Run("creates relation with positive amount", func(t *testing.T) {
		rel, err := NewPayableInvoiceRelation(uuid.New(), "AP-1", uuid.New(), "INV-1", decimal.NewFromInt(1130), decimal.NewFromInt(500), "alice")
		require.NoError(t, err)
		assert.True(t, rel.RelatedAmount.Equal(decimal.NewFromInt(500)))
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		_, err := NewPayableInvoiceRelation(uuid.New(), "AP-1", uuid.New(), "INV-1", decimal.NewFromInt(1130), decimal.Zero, "alice")
		assert.Error(t, err)
	})

	t.Run("increase grows amount in place", func(t *testing.T) {
		rel, err := NewPayableInvoiceRelation(uuid.New(), "AP-1", uuid.New(), "INV-1", decimal.NewFromInt(1130), decimal.NewFromInt(500), "alice")
		require.NoError(t, err)

		require.NoError(t, rel.IncreaseAmount(decimal.NewFromInt(130), "bob"))
		assert.True(t, rel.RelatedAmount.Equal(decimal.NewFromInt(630)))
		assert.Equal(t, "bob", rel.Operator)

		assert.Error(t, rel.IncreaseAmount(decimal.Zero, "bob"))
	})
}
