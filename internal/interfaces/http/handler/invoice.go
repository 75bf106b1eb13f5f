package handler

import (
	"io"

	ledgerapp "github.com/fzhange/financial-sys/internal/application/ledger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// InvoiceHandler handles invoice API endpoints
type InvoiceHandler struct {
	BaseHandler
	invoiceService     *ledgerapp.InvoiceService
	recognitionService *ledgerapp.RecognitionService
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(invoiceService *ledgerapp.InvoiceService, recognitionService *ledgerapp.RecognitionService) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService:     invoiceService,
		recognitionService: recognitionService,
	}
}

// Register registers a single supplier invoice
func (h *InvoiceHandler) Register(c *gin.Context) {
	var req ledgerapp.RegisterInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	invoice, err := h.invoiceService.RegisterInvoice(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, invoice)
}

// ImportRequest is a batch of invoices to register
type ImportRequest struct {
	Invoices []ledgerapp.RegisterInvoiceRequest `json:"invoices" binding:"required,min=1"`
}

// Import registers a batch of invoices, reporting per-row failures
func (h *InvoiceHandler) Import(c *gin.Context) {
	var req ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.invoiceService.ImportInvoices(c.Request.Context(), req.Invoices)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// List retrieves a paginated list of invoices
func (h *InvoiceHandler) List(c *gin.Context) {
	filter := ledgerapp.InvoiceListFilter{Page: 1, PageSize: 20}
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	invoices, total, err := h.invoiceService.ListInvoices(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, invoices, total, filter.Page, filter.PageSize)
}

// Summary returns aggregate invoice figures, optionally scoped to a supplier
func (h *InvoiceHandler) Summary(c *gin.Context) {
	var supplierID *uuid.UUID
	if raw := c.Query("supplier_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid supplier ID format")
			return
		}
		supplierID = &id
	}

	summary, err := h.invoiceService.GetInvoiceSummary(c.Request.Context(), supplierID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, summary)
}

// GetByID retrieves an invoice by ID
func (h *InvoiceHandler) GetByID(c *gin.Context) {
	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID format")
		return
	}

	invoice, err := h.invoiceService.GetInvoiceByID(c.Request.Context(), invoiceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, invoice)
}

// VerifyInvoiceRequest identifies who verified the invoice
type VerifyInvoiceRequest struct {
	VerifiedBy string `json:"verified_by" binding:"required"`
}

// Verify marks an invoice as verified
func (h *InvoiceHandler) Verify(c *gin.Context) {
	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID format")
		return
	}

	var req VerifyInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	invoice, err := h.invoiceService.VerifyInvoice(c.Request.Context(), invoiceID, req.VerifiedBy)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, invoice)
}

// FailVerificationRequest carries the verification failure reason
type FailVerificationRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// FailVerification marks an invoice as failed verification
func (h *InvoiceHandler) FailVerification(c *gin.Context) {
	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID format")
		return
	}

	var req FailVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	invoice, err := h.invoiceService.FailInvoiceVerification(c.Request.Context(), invoiceID, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, invoice)
}

// Recognize extracts invoice fields from an uploaded document. The result is
// a pre-filled draft; it still goes through manual verification.
func (h *InvoiceHandler) Recognize(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		h.BadRequest(c, "A document file upload is required")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		h.BadRequest(c, "Could not read uploaded file")
		return
	}

	mimeType := header.Header.Get("Content-Type")

	recognized, err := h.recognitionService.RecognizeInvoice(c.Request.Context(), content, mimeType)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, recognized)
}
