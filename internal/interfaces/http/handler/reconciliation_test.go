package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	ledgerapp "github.com/fzhange/financial-sys/internal/application/ledger"
	"github.com/fzhange/financial-sys/internal/domain/ledger"
	"github.com/fzhange/financial-sys/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type reconciliationTestEnv struct {
	statementRepo *MockStatementRepository
	payableRepo   *MockAccountPayableRepository
	supplierRepo  *MockSupplierRepository
	router        *gin.Engine
}

func newReconciliationTestEnv() *reconciliationTestEnv {
	env := &reconciliationTestEnv{
		statementRepo: new(MockStatementRepository),
		payableRepo:   new(MockAccountPayableRepository),
		supplierRepo:  new(MockSupplierRepository),
	}

	svc := ledgerapp.NewReconciliationService(env.statementRepo, env.payableRepo, env.supplierRepo, passthroughTxManager{})
	h := NewReconciliationHandler(svc)

	r := gin.New()
	r.POST("/reconciliations", h.Create)
	r.GET("/reconciliations", h.List)
	r.GET("/reconciliations/:id", h.GetByID)
	r.POST("/reconciliations/:id/receipts/:receiptId/match", h.MatchReceipt)
	r.POST("/reconciliations/:id/receipts/:receiptId/unmatch", h.UnmatchReceipt)
	r.POST("/reconciliations/:id/match-all", h.MatchAll)
	r.POST("/reconciliations/:id/confirm", h.Confirm)
	r.POST("/reconciliations/:id/dispute", h.Dispute)
	r.POST("/reconciliations/:id/resolve", h.Resolve)
	env.router = r
	return env
}

func mustNewStatement(t *testing.T, supplierID uuid.UUID, amounts ...float64) *ledger.ReconciliationStatement {
	t.Helper()
	receipts := make([]ledger.ReceiptInput, len(amounts))
	for i, amount := range amounts {
		receipts[i] = ledger.ReceiptInput{
			ReceiptNumber: fmt.Sprintf("RK2026010900%d", i+1),
			ReceiptDate:   time.Date(2026, 1, 9, 0, 0, 0, 0, time.UTC),
			SKUCount:      3,
			GoodQuantity:  100,
			ReceiptAmount: decimal.NewFromFloat(amount),
			PayableAmount: decimal.NewFromFloat(amount),
		}
	}
	st, err := ledger.NewReconciliationStatement(
		"DZ20260109001",
		supplierID,
		"Acme Components",
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC),
		receipts,
	)
	require.NoError(t, err)
	return st
}

func TestReconciliationHandler_Create(t *testing.T) {
	t.Run("creates statement", func(t *testing.T) {
		env := newReconciliationTestEnv()
		supplier := mustNewSupplier(t, "SUP001", "Acme Components")
		env.supplierRepo.On("FindByID", mock.Anything, supplier.ID).Return(supplier, nil)
		env.statementRepo.On("GenerateStatementNumber", mock.Anything).Return("DZ20260109001", nil)
		env.statementRepo.On("Save", mock.Anything, mock.AnythingOfType("*ledger.ReconciliationStatement")).Return(nil)

		body, _ := json.Marshal(map[string]any{
			"supplier_id":  supplier.ID,
			"period_start": "2026-01-01T00:00:00Z",
			"period_end":   "2026-01-31T00:00:00Z",
			"receipts": []map[string]any{
				{
					"receipt_number": "RK20260109001",
					"receipt_date":   "2026-01-09T00:00:00Z",
					"sku_count":      3,
					"good_quantity":  100,
					"receipt_amount": "1000",
					"payable_amount": "1000",
				},
			},
		})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/reconciliations", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		data := resp.Data.(map[string]interface{})
		assert.Equal(t, "DZ20260109001", data["statement_number"])
		assert.Equal(t, "PENDING", data["status"])
		env.statementRepo.AssertExpectations(t)
	})

	t.Run("rejects blocked supplier", func(t *testing.T) {
		env := newReconciliationTestEnv()
		supplier := mustNewSupplier(t, "SUP001", "Acme Components")
		require.NoError(t, supplier.Block())
		env.supplierRepo.On("FindByID", mock.Anything, supplier.ID).Return(supplier, nil)

		body, _ := json.Marshal(map[string]any{
			"supplier_id":  supplier.ID,
			"period_start": "2026-01-01T00:00:00Z",
			"period_end":   "2026-01-31T00:00:00Z",
			"receipts": []map[string]any{
				{
					"receipt_number": "RK20260109001",
					"receipt_date":   "2026-01-09T00:00:00Z",
					"receipt_amount": "1000",
					"payable_amount": "1000",
				},
			},
		})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/reconciliations", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "SUPPLIER_BLOCKED", resp.Error.Code)
		env.statementRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("rejects empty receipt list", func(t *testing.T) {
		env := newReconciliationTestEnv()

		body, _ := json.Marshal(map[string]any{
			"supplier_id":  uuid.New(),
			"period_start": "2026-01-01T00:00:00Z",
			"period_end":   "2026-01-31T00:00:00Z",
			"receipts":     []map[string]any{},
		})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/reconciliations", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env.supplierRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})
}

func TestReconciliationHandler_GetByID(t *testing.T) {
	t.Run("returns statement with receipts", func(t *testing.T) {
		env := newReconciliationTestEnv()
		st := mustNewStatement(t, uuid.New(), 600, 400)
		env.statementRepo.On("FindByID", mock.Anything, st.ID).Return(st, nil)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/reconciliations/"+st.ID.String(), nil)
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		data := resp.Data.(map[string]interface{})
		assert.Equal(t, "DZ20260109001", data["statement_number"])
		assert.Len(t, data["receipts"], 2)
	})

	t.Run("returns 404 for unknown statement", func(t *testing.T) {
		env := newReconciliationTestEnv()
		id := uuid.New()
		env.statementRepo.On("FindByID", mock.Anything, id).Return(nil, nil)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/reconciliations/"+id.String(), nil)
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestReconciliationHandler_List(t *testing.T) {
	env := newReconciliationTestEnv()
	st := mustNewStatement(t, uuid.New(), 1000)
	env.statementRepo.On("FindAll", mock.Anything, mock.AnythingOfType("ledger.StatementFilter")).
		Return([]ledger.ReconciliationStatement{*st}, nil)
	env.statementRepo.On("Count", mock.Anything, mock.AnythingOfType("ledger.StatementFilter")).
		Return(int64(1), nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/reconciliations?status=PENDING&page=1&page_size=20", nil)
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(1), resp.Meta.Total)
	assert.Len(t, resp.Data, 1)
}

func TestReconciliationHandler_Matching(t *testing.T) {
	t.Run("matches single receipt", func(t *testing.T) {
		env := newReconciliationTestEnv()
		st := mustNewStatement(t, uuid.New(), 600, 400)
		env.statementRepo.On("FindByID", mock.Anything, st.ID).Return(st, nil)
		env.statementRepo.On("SaveWithLock", mock.Anything, mock.AnythingOfType("*ledger.ReconciliationStatement")).Return(nil)

		url := fmt.Sprintf("/reconciliations/%s/receipts/%s/match", st.ID, st.Receipts[0].ID)
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, url, nil)
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		data := resp.Data.(map[string]interface{})
		receipts := data["receipts"].([]interface{})
		first := receipts[0].(map[string]interface{})
		assert.Equal(t, "MATCHED", first["match_status"])
		env.statementRepo.AssertExpectations(t)
	})

	t.Run("unmatches receipt with remark", func(t *testing.T) {
		env := newReconciliationTestEnv()
		st := mustNewStatement(t, uuid.New(), 600)
		env.statementRepo.On("FindByID", mock.Anything, st.ID).Return(st, nil)
		env.statementRepo.On("SaveWithLock", mock.Anything, mock.AnythingOfType("*ledger.ReconciliationStatement")).Return(nil)

		body, _ := json.Marshal(map[string]any{"remark": "quantity short by 5"})
		url := fmt.Sprintf("/reconciliations/%s/receipts/%s/unmatch", st.ID, st.Receipts[0].ID)
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, url, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		data := resp.Data.(map[string]interface{})
		receipts := data["receipts"].([]interface{})
		first := receipts[0].(map[string]interface{})
		assert.Equal(t, "UNMATCHED", first["match_status"])
		assert.Equal(t, "quantity short by 5", first["remark"])
	})

	t.Run("returns 404 for unknown receipt", func(t *testing.T) {
		env := newReconciliationTestEnv()
		st := mustNewStatement(t, uuid.New(), 600)
		env.statementRepo.On("FindByID", mock.Anything, st.ID).Return(st, nil)

		url := fmt.Sprintf("/reconciliations/%s/receipts/%s/match", st.ID, uuid.New())
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, url, nil)
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		env.statementRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})

	t.Run("matches all receipts", func(t *testing.T) {
		env := newReconciliationTestEnv()
		st := mustNewStatement(t, uuid.New(), 600, 400, 250)
		env.statementRepo.On("FindByID", mock.Anything, st.ID).Return(st, nil)
		env.statementRepo.On("SaveWithLock", mock.Anything, mock.AnythingOfType("*ledger.ReconciliationStatement")).Return(nil)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/reconciliations/"+st.ID.String()+"/match-all", nil)
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		data := resp.Data.(map[string]interface{})
		for _, r := range data["receipts"].([]interface{}) {
			assert.Equal(t, "MATCHED", r.(map[string]interface{})["match_status"])
		}
	})
}

func TestReconciliationHandler_Dispute(t *testing.T) {
	t.Run("disputes statement", func(t *testing.T) {
		env := newReconciliationTestEnv()
		st := mustNewStatement(t, uuid.New(), 1000)
		env.statementRepo.On("FindByID", mock.Anything, st.ID).Return(st, nil)
		env.statementRepo.On("SaveWithLock", mock.Anything, mock.AnythingOfType("*ledger.ReconciliationStatement")).Return(nil)

		body, _ := json.Marshal(map[string]any{"reason": "receipt RK20260109001 amount disagrees"})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/reconciliations/"+st.ID.String()+"/dispute", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		data := resp.Data.(map[string]interface{})
		assert.Equal(t, "DISPUTED", data["status"])
		assert.Equal(t, "receipt RK20260109001 amount disagrees", data["dispute_reason"])
	})

	t.Run("requires a reason", func(t *testing.T) {
		env := newReconciliationTestEnv()
		st := mustNewStatement(t, uuid.New(), 1000)

		body, _ := json.Marshal(map[string]any{})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/reconciliations/"+st.ID.String()+"/dispute", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env.statementRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("resolves disputed statement", func(t *testing.T) {
		env := newReconciliationTestEnv()
		st := mustNewStatement(t, uuid.New(), 1000)
		require.NoError(t, st.Dispute("amount disagrees"))
		env.statementRepo.On("FindByID", mock.Anything, st.ID).Return(st, nil)
		env.statementRepo.On("SaveWithLock", mock.Anything, mock.AnythingOfType("*ledger.ReconciliationStatement")).Return(nil)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/reconciliations/"+st.ID.String()+"/resolve", nil)
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		data := resp.Data.(map[string]interface{})
		assert.Equal(t, "RESOLVED", data["status"])
	})
}

func TestReconciliationHandler_Confirm(t *testing.T) {
	t.Run("confirms fully matched statement and creates payable", func(t *testing.T) {
		env := newReconciliationTestEnv()
		supplier := mustNewSupplier(t, "SUP001", "Acme Components")
		st := mustNewStatement(t, supplier.ID, 600, 400)
		require.NoError(t, st.MarkAllReceiptsMatched())

		env.statementRepo.On("FindByID", mock.Anything, st.ID).Return(st, nil)
		env.supplierRepo.On("FindByID", mock.Anything, supplier.ID).Return(supplier, nil)
		env.payableRepo.On("GeneratePayableNumber", mock.Anything).Return("AP20260110001", nil)
		env.payableRepo.On("Save", mock.Anything, mock.AnythingOfType("*ledger.AccountPayable")).Return(nil)
		env.statementRepo.On("SaveWithLock", mock.Anything, mock.AnythingOfType("*ledger.ReconciliationStatement")).Return(nil)

		body, _ := json.Marshal(map[string]any{"confirmed_by": "finance.chen"})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/reconciliations/"+st.ID.String()+"/confirm", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		data := resp.Data.(map[string]interface{})
		statement := data["statement"].(map[string]interface{})
		assert.Equal(t, "CONFIRMED", statement["status"])
		assert.Equal(t, "finance.chen", statement["confirmed_by"])
		assert.Equal(t, "1000", statement["confirmed_amount"])
		payable := data["payable"].(map[string]interface{})
		assert.Equal(t, "AP20260110001", payable["payable_number"])
		assert.Equal(t, "1000", payable["unpaid_amount"])
		assert.Equal(t, statement["payable_id"], payable["id"])

		env.payableRepo.AssertExpectations(t)
		env.statementRepo.AssertExpectations(t)
	})

	t.Run("rejects confirm with unmatched receipts", func(t *testing.T) {
		env := newReconciliationTestEnv()
		supplier := mustNewSupplier(t, "SUP001", "Acme Components")
		st := mustNewStatement(t, supplier.ID, 600, 400)
		require.NoError(t, st.MarkReceiptMatched(st.Receipts[0].ID))

		env.statementRepo.On("FindByID", mock.Anything, st.ID).Return(st, nil)
		env.supplierRepo.On("FindByID", mock.Anything, supplier.ID).Return(supplier, nil)

		body, _ := json.Marshal(map[string]any{"confirmed_by": "finance.chen"})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/reconciliations/"+st.ID.String()+"/confirm", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "RECEIPTS_NOT_MATCHED", resp.Error.Code)
		env.payableRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("rejects confirm on already confirmed statement", func(t *testing.T) {
		env := newReconciliationTestEnv()
		supplier := mustNewSupplier(t, "SUP001", "Acme Components")
		st := mustNewStatement(t, supplier.ID, 1000)
		require.NoError(t, st.MarkAllReceiptsMatched())
		require.NoError(t, st.Confirm("finance.chen"))

		env.statementRepo.On("FindByID", mock.Anything, st.ID).Return(st, nil)
		env.supplierRepo.On("FindByID", mock.Anything, supplier.ID).Return(supplier, nil)

		body, _ := json.Marshal(map[string]any{"confirmed_by": "finance.chen"})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/reconciliations/"+st.ID.String()+"/confirm", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "INVALID_STATE", resp.Error.Code)
	})
}
