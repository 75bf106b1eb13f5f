package handler

import (
	ledgerapp "github.com/fzhange/financial-sys/internal/application/ledger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PaymentRequestHandler handles payment request API endpoints
type PaymentRequestHandler struct {
	BaseHandler
	requestService *ledgerapp.PaymentRequestService
}

// NewPaymentRequestHandler creates a new PaymentRequestHandler
func NewPaymentRequestHandler(requestService *ledgerapp.PaymentRequestService) *PaymentRequestHandler {
	return &PaymentRequestHandler{
		requestService: requestService,
	}
}

// Create creates a payment request over a batch of payables
func (h *PaymentRequestHandler) Create(c *gin.Context) {
	var req ledgerapp.CreatePaymentRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	request, err := h.requestService.CreatePaymentRequest(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, request)
}

// List retrieves a paginated list of payment requests
func (h *PaymentRequestHandler) List(c *gin.Context) {
	filter := ledgerapp.PaymentRequestListFilter{Page: 1, PageSize: 20}
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	requests, total, err := h.requestService.ListRequests(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, requests, total, filter.Page, filter.PageSize)
}

// Summary returns aggregate request figures, optionally scoped to a supplier
func (h *PaymentRequestHandler) Summary(c *gin.Context) {
	var supplierID *uuid.UUID
	if raw := c.Query("supplier_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid supplier ID format")
			return
		}
		supplierID = &id
	}

	summary, err := h.requestService.GetRequestSummary(c.Request.Context(), supplierID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, summary)
}

// GetByID retrieves a payment request by ID
func (h *PaymentRequestHandler) GetByID(c *gin.Context) {
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid request ID format")
		return
	}

	request, err := h.requestService.GetRequestByID(c.Request.Context(), requestID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, request)
}

// Submit moves a draft request into the approval queue
func (h *PaymentRequestHandler) Submit(c *gin.Context) {
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid request ID format")
		return
	}

	request, err := h.requestService.SubmitRequest(c.Request.Context(), requestID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, request)
}

// ApprovalRequest identifies the approver and an optional remark
type ApprovalRequest struct {
	Approver string `json:"approver" binding:"required"`
	Remark   string `json:"remark"`
}

// Approve approves a pending request
func (h *PaymentRequestHandler) Approve(c *gin.Context) {
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid request ID format")
		return
	}

	var req ApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	request, err := h.requestService.ApproveRequest(c.Request.Context(), requestID, req.Approver, req.Remark)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, request)
}

// Reject rejects a pending request
func (h *PaymentRequestHandler) Reject(c *gin.Context) {
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid request ID format")
		return
	}

	var req ApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	request, err := h.requestService.RejectRequest(c.Request.Context(), requestID, req.Approver, req.Remark)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, request)
}

// Cancel cancels a draft or pending request
func (h *PaymentRequestHandler) Cancel(c *gin.Context) {
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid request ID format")
		return
	}

	request, err := h.requestService.CancelRequest(c.Request.Context(), requestID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, request)
}

// WriteOffPreview shows how the approved amount would spread across payables
func (h *PaymentRequestHandler) WriteOffPreview(c *gin.Context) {
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid request ID format")
		return
	}

	preview, err := h.requestService.PreviewWriteOff(c.Request.Context(), requestID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, preview)
}

// Pay settles an approved request, producing a payment voucher. Retries can
// pass the same Idempotency-Key header to get the original voucher back.
func (h *PaymentRequestHandler) Pay(c *gin.Context) {
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid request ID format")
		return
	}

	var req ledgerapp.ExecutePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	idempotencyKey := c.GetHeader("Idempotency-Key")

	voucher, err := h.requestService.ExecutePayment(c.Request.Context(), requestID, idempotencyKey, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, voucher)
}
