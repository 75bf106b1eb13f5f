package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	ledgerapp "github.com/fzhange/financial-sys/internal/application/ledger"
	"github.com/fzhange/financial-sys/internal/domain/ledger"
	"github.com/fzhange/financial-sys/internal/domain/shared/valueobject"
	"github.com/fzhange/financial-sys/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type invoiceTestEnv struct {
	invoiceRepo  *MockInvoiceRepository
	payableRepo  *MockAccountPayableRepository
	relationRepo *MockRelationRepository
	router       *gin.Engine
}

func newInvoiceTestEnv(recognizer ledgerapp.InvoiceRecognizer) *invoiceTestEnv {
	env := &invoiceTestEnv{
		invoiceRepo:  new(MockInvoiceRepository),
		payableRepo:  new(MockAccountPayableRepository),
		relationRepo: new(MockRelationRepository),
	}

	invoiceService := ledgerapp.NewInvoiceService(env.invoiceRepo, env.payableRepo, env.relationRepo, passthroughTxManager{})
	h := NewInvoiceHandler(invoiceService, ledgerapp.NewRecognitionService(recognizer))

	r := gin.New()
	r.POST("/invoices", h.Register)
	r.GET("/invoices", h.List)
	r.GET("/invoices/summary", h.Summary)
	r.POST("/invoices/import", h.Import)
	r.POST("/invoices/recognize", h.Recognize)
	r.GET("/invoices/:id", h.GetByID)
	r.POST("/invoices/:id/verify", h.Verify)
	r.POST("/invoices/:id/fail-verification", h.FailVerification)
	env.router = r
	return env
}

func mustNewInvoice(t *testing.T, number, code string, amount float64) *ledger.Invoice {
	t.Helper()
	inv, err := ledger.NewInvoice(
		number,
		code,
		ledger.InvoiceTypeVATSpecial,
		uuid.New(),
		"Acme Components",
		time.Date(2026, 1, 8, 0, 0, 0, 0, time.UTC),
		valueobject.NewMoneyCNYFromFloat(amount),
		decimal.NewFromFloat(0.13),
		valueobject.NewMoneyCNYFromFloat(amount*0.13),
	)
	require.NoError(t, err)
	return inv
}

func registerInvoiceBody(number string) map[string]any {
	return map[string]any{
		"invoice_number": number,
		"invoice_code":   "3100231130",
		"invoice_type":   "VAT_SPECIAL",
		"supplier_id":    uuid.New(),
		"supplier_name":  "Acme Components",
		"invoice_date":   "2026-01-08T00:00:00Z",
		"amount":         "1000",
		"tax_rate":       "0.13",
		"tax_amount":     "130",
	}
}

func TestInvoiceHandler_Register(t *testing.T) {
	t.Run("registers invoice", func(t *testing.T) {
		env := newInvoiceTestEnv(nil)
		env.invoiceRepo.On("FindByNumberAndCode", mock.Anything, "04412973", "3100231130").Return(nil, nil)
		env.invoiceRepo.On("Save", mock.Anything, mock.AnythingOfType("*ledger.Invoice")).Return(nil)

		body, _ := json.Marshal(registerInvoiceBody("04412973"))
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/invoices", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		data := resp.Data.(map[string]interface{})
		assert.Equal(t, "04412973", data["invoice_number"])
		assert.Equal(t, "PENDING", data["verify_status"])
		assert.Equal(t, "1130", data["total_amount"])
		env.invoiceRepo.AssertExpectations(t)
	})

	t.Run("rejects duplicate number and code", func(t *testing.T) {
		env := newInvoiceTestEnv(nil)
		existing := mustNewInvoice(t, "04412973", "3100231130", 1000)
		env.invoiceRepo.On("FindByNumberAndCode", mock.Anything, "04412973", "3100231130").Return(existing, nil)

		body, _ := json.Marshal(registerInvoiceBody("04412973"))
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/invoices", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "ALREADY_EXISTS", resp.Error.Code)
		env.invoiceRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("rejects missing required fields", func(t *testing.T) {
		env := newInvoiceTestEnv(nil)

		body, _ := json.Marshal(map[string]any{"invoice_number": "04412973"})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/invoices", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env.invoiceRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestInvoiceHandler_Import(t *testing.T) {
	env := newInvoiceTestEnv(nil)
	existing := mustNewInvoice(t, "04412974", "3100231130", 500)
	env.invoiceRepo.On("FindByNumberAndCode", mock.Anything, "04412973", "3100231130").Return(nil, nil)
	env.invoiceRepo.On("FindByNumberAndCode", mock.Anything, "04412974", "3100231130").Return(existing, nil)
	env.invoiceRepo.On("Save", mock.Anything, mock.AnythingOfType("*ledger.Invoice")).Return(nil).Once()

	body, _ := json.Marshal(map[string]any{
		"invoices": []map[string]any{
			registerInvoiceBody("04412973"),
			registerInvoiceBody("04412974"),
		},
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/invoices/import", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, float64(1), data["imported"])
	assert.Equal(t, float64(1), data["skipped"])
	errs := data["errors"].([]interface{})
	require.Len(t, errs, 1)
	rowErr := errs[0].(map[string]interface{})
	assert.Equal(t, float64(2), rowErr["row"])
	assert.Equal(t, "3100231130/04412974", rowErr["invoice"])
	env.invoiceRepo.AssertExpectations(t)
}

func TestInvoiceHandler_List(t *testing.T) {
	env := newInvoiceTestEnv(nil)
	inv := mustNewInvoice(t, "04412973", "3100231130", 1000)
	env.invoiceRepo.On("FindAll", mock.Anything, mock.AnythingOfType("ledger.InvoiceFilter")).
		Return([]ledger.Invoice{*inv}, nil)
	env.invoiceRepo.On("Count", mock.Anything, mock.AnythingOfType("ledger.InvoiceFilter")).
		Return(int64(1), nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/invoices?verify_status=PENDING&page=1&page_size=20", nil)
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(1), resp.Meta.Total)
	assert.Len(t, resp.Data, 1)
}

func TestInvoiceHandler_Summary(t *testing.T) {
	t.Run("returns summary", func(t *testing.T) {
		env := newInvoiceTestEnv(nil)
		env.invoiceRepo.On("Summarize", mock.Anything, (*uuid.UUID)(nil)).Return(&ledger.InvoiceSummary{
			TotalCount:    3,
			PendingCount:  1,
			VerifiedCount: 2,
		}, nil)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/invoices/summary", nil)
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		env.invoiceRepo.AssertExpectations(t)
	})

	t.Run("rejects malformed supplier filter", func(t *testing.T) {
		env := newInvoiceTestEnv(nil)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/invoices/summary?supplier_id=not-a-uuid", nil)
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env.invoiceRepo.AssertNotCalled(t, "Summarize", mock.Anything, mock.Anything)
	})
}

func TestInvoiceHandler_Verify(t *testing.T) {
	t.Run("verifies invoice", func(t *testing.T) {
		env := newInvoiceTestEnv(nil)
		inv := mustNewInvoice(t, "04412973", "3100231130", 1000)
		env.invoiceRepo.On("FindByID", mock.Anything, inv.ID).Return(inv, nil)
		env.invoiceRepo.On("SaveWithLock", mock.Anything, mock.AnythingOfType("*ledger.Invoice")).Return(nil)

		body, _ := json.Marshal(map[string]any{"verified_by": "finance.chen"})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/invoices/"+inv.ID.String()+"/verify", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		data := resp.Data.(map[string]interface{})
		assert.Equal(t, "VERIFIED", data["verify_status"])
		assert.Equal(t, "finance.chen", data["verified_by"])
		env.invoiceRepo.AssertExpectations(t)
	})

	t.Run("requires verified_by", func(t *testing.T) {
		env := newInvoiceTestEnv(nil)
		inv := mustNewInvoice(t, "04412973", "3100231130", 1000)

		body, _ := json.Marshal(map[string]any{})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/invoices/"+inv.ID.String()+"/verify", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env.invoiceRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("fails verification with reason", func(t *testing.T) {
		env := newInvoiceTestEnv(nil)
		inv := mustNewInvoice(t, "04412973", "3100231130", 1000)
		env.invoiceRepo.On("FindByID", mock.Anything, inv.ID).Return(inv, nil)
		env.invoiceRepo.On("SaveWithLock", mock.Anything, mock.AnythingOfType("*ledger.Invoice")).Return(nil)

		body, _ := json.Marshal(map[string]any{"reason": "tax number mismatch"})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/invoices/"+inv.ID.String()+"/fail-verification", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		data := resp.Data.(map[string]interface{})
		assert.Equal(t, "FAILED", data["verify_status"])
		assert.Equal(t, "tax number mismatch", data["verify_remark"])
	})
}

// stubRecognizer returns a canned extraction result.
type stubRecognizer struct {
	result *ledgerapp.RecognizedInvoice
	err    error
}

func (s *stubRecognizer) Recognize(ctx context.Context, content []byte, mimeType string) (*ledgerapp.RecognizedInvoice, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func recognizeRequest(t *testing.T, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "invoice.pdf")
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/invoices/recognize", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestInvoiceHandler_Recognize(t *testing.T) {
	t.Run("returns extracted fields", func(t *testing.T) {
		env := newInvoiceTestEnv(&stubRecognizer{result: &ledgerapp.RecognizedInvoice{
			InvoiceNumber: "04412973",
			InvoiceCode:   "3100231130",
			SupplierName:  "Acme Components",
			Amount:        decimal.NewFromInt(1000),
			TaxAmount:     decimal.NewFromInt(130),
			TotalAmount:   decimal.NewFromInt(1130),
		}})

		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, recognizeRequest(t, []byte("%PDF-1.7 test")))

		assert.Equal(t, http.StatusOK, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		data := resp.Data.(map[string]interface{})
		assert.Equal(t, "04412973", data["invoice_number"])
		assert.Equal(t, "Acme Components", data["supplier_name"])
	})

	t.Run("returns 503 when recognition is not configured", func(t *testing.T) {
		env := newInvoiceTestEnv(nil)

		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, recognizeRequest(t, []byte("%PDF-1.7 test")))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "RECOGNITION_DISABLED", resp.Error.Code)
	})

	t.Run("rejects request without a file", func(t *testing.T) {
		env := newInvoiceTestEnv(nil)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/invoices/recognize", nil)
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
