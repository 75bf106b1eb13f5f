package handler

import (
	ledgerapp "github.com/fzhange/financial-sys/internal/application/ledger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PayableHandler handles account payable API endpoints
type PayableHandler struct {
	BaseHandler
	payableService *ledgerapp.PayableService
	invoiceService *ledgerapp.InvoiceService
}

// NewPayableHandler creates a new PayableHandler
func NewPayableHandler(payableService *ledgerapp.PayableService, invoiceService *ledgerapp.InvoiceService) *PayableHandler {
	return &PayableHandler{
		payableService: payableService,
		invoiceService: invoiceService,
	}
}

// List retrieves a paginated list of payables
func (h *PayableHandler) List(c *gin.Context) {
	filter := ledgerapp.AccountPayableListFilter{Page: 1, PageSize: 20}
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	payables, total, err := h.payableService.ListPayables(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, payables, total, filter.Page, filter.PageSize)
}

// Summary returns aggregate payable figures, optionally scoped to a supplier
func (h *PayableHandler) Summary(c *gin.Context) {
	supplierID, ok := h.optionalSupplierID(c)
	if !ok {
		return
	}

	summary, err := h.payableService.GetPayableSummary(c.Request.Context(), supplierID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, summary)
}

// GetByID retrieves a payable with its payment records
func (h *PayableHandler) GetByID(c *gin.Context) {
	payableID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payable ID format")
		return
	}

	payable, err := h.payableService.GetPayableByID(c.Request.Context(), payableID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, payable)
}

// Pay applies a direct payment against a payable
func (h *PayableHandler) Pay(c *gin.Context) {
	payableID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payable ID format")
		return
	}

	var req ledgerapp.PayPayableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	payable, err := h.payableService.PayPayable(c.Request.Context(), payableID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, payable)
}

// CancelPayableRequest carries the cancellation reason
type CancelPayableRequest struct {
	Reason string `json:"reason"`
}

// Cancel cancels an unpaid payable
func (h *PayableHandler) Cancel(c *gin.Context) {
	payableID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payable ID format")
		return
	}

	var req CancelPayableRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BadRequest(c, err.Error())
			return
		}
	}

	payable, err := h.payableService.CancelPayable(c.Request.Context(), payableID, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, payable)
}

// AvailableInvoices lists verified invoices that can still be linked to the payable
func (h *PayableHandler) AvailableInvoices(c *gin.Context) {
	payableID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payable ID format")
		return
	}

	payable, err := h.payableService.GetPayableByID(c.Request.Context(), payableID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	invoices, err := h.invoiceService.GetAvailableInvoices(c.Request.Context(), payable.SupplierID, &payableID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, invoices)
}

// LinkInvoices links a batch of verified invoices to the payable
func (h *PayableHandler) LinkInvoices(c *gin.Context) {
	payableID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payable ID format")
		return
	}

	var req ledgerapp.LinkInvoicesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	payable, err := h.invoiceService.LinkInvoices(c.Request.Context(), payableID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, payable)
}

// UnlinkInvoice removes a linked invoice from the payable
func (h *PayableHandler) UnlinkInvoice(c *gin.Context) {
	payableID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payable ID format")
		return
	}
	invoiceID, err := uuid.Parse(c.Param("invoiceId"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID format")
		return
	}

	payable, err := h.invoiceService.UnlinkInvoice(c.Request.Context(), payableID, invoiceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, payable)
}

// optionalSupplierID parses the supplier_id query parameter when present.
func (h *PayableHandler) optionalSupplierID(c *gin.Context) (*uuid.UUID, bool) {
	raw := c.Query("supplier_id")
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		h.BadRequest(c, "Invalid supplier ID format")
		return nil, false
	}
	return &id, true
}
