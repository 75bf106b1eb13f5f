package handler

import (
	ledgerapp "github.com/fzhange/financial-sys/internal/application/ledger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PaymentVoucherHandler handles payment voucher API endpoints
type PaymentVoucherHandler struct {
	BaseHandler
	voucherService *ledgerapp.VoucherService
}

// NewPaymentVoucherHandler creates a new PaymentVoucherHandler
func NewPaymentVoucherHandler(voucherService *ledgerapp.VoucherService) *PaymentVoucherHandler {
	return &PaymentVoucherHandler{
		voucherService: voucherService,
	}
}

// Create records a payment made outside the request workflow
func (h *PaymentVoucherHandler) Create(c *gin.Context) {
	var req ledgerapp.CreateVoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	voucher, err := h.voucherService.CreateVoucher(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, voucher)
}

// List retrieves a paginated list of vouchers
func (h *PaymentVoucherHandler) List(c *gin.Context) {
	filter := ledgerapp.PaymentVoucherListFilter{Page: 1, PageSize: 20}
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	vouchers, total, err := h.voucherService.ListVouchers(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, vouchers, total, filter.Page, filter.PageSize)
}

// GetByID retrieves a voucher with its write-off details
func (h *PaymentVoucherHandler) GetByID(c *gin.Context) {
	voucherID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid voucher ID format")
		return
	}

	voucher, err := h.voucherService.GetVoucherByID(c.Request.Context(), voucherID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, voucher)
}

// WriteOff allocates more of a voucher's unallocated amount against payables
func (h *PaymentVoucherHandler) WriteOff(c *gin.Context) {
	voucherID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid voucher ID format")
		return
	}

	var req ledgerapp.WriteOffVoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	voucher, err := h.voucherService.WriteOffVoucher(c.Request.Context(), voucherID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, voucher)
}

// CancelVoucherRequest carries the cancellation reason
type CancelVoucherRequest struct {
	Reason string `json:"reason"`
}

// Cancel cancels a voucher and reverses its payments and write-offs
func (h *PaymentVoucherHandler) Cancel(c *gin.Context) {
	voucherID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid voucher ID format")
		return
	}

	var req CancelVoucherRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BadRequest(c, err.Error())
			return
		}
	}

	voucher, err := h.voucherService.CancelVoucher(c.Request.Context(), voucherID, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, voucher)
}
