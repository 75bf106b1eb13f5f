package handler

import (
	ledgerapp "github.com/fzhange/financial-sys/internal/application/ledger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ReconciliationHandler handles supplier statement API endpoints
type ReconciliationHandler struct {
	BaseHandler
	reconciliationService *ledgerapp.ReconciliationService
}

// NewReconciliationHandler creates a new ReconciliationHandler
func NewReconciliationHandler(reconciliationService *ledgerapp.ReconciliationService) *ReconciliationHandler {
	return &ReconciliationHandler{
		reconciliationService: reconciliationService,
	}
}

// Create creates a reconciliation statement from receipt lines
func (h *ReconciliationHandler) Create(c *gin.Context) {
	var req ledgerapp.CreateStatementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	statement, err := h.reconciliationService.CreateStatement(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, statement)
}

// GetByID retrieves a statement with its receipt lines
func (h *ReconciliationHandler) GetByID(c *gin.Context) {
	statementID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid statement ID format")
		return
	}

	statement, err := h.reconciliationService.GetStatementByID(c.Request.Context(), statementID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, statement)
}

// List retrieves a paginated list of statements
func (h *ReconciliationHandler) List(c *gin.Context) {
	filter := ledgerapp.StatementListFilter{Page: 1, PageSize: 20}
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	statements, total, err := h.reconciliationService.ListStatements(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, statements, total, filter.Page, filter.PageSize)
}

// MatchReceipt marks a single receipt line as matched
func (h *ReconciliationHandler) MatchReceipt(c *gin.Context) {
	statementID, receiptID, ok := h.pathIDs(c)
	if !ok {
		return
	}

	statement, err := h.reconciliationService.MarkReceiptMatched(c.Request.Context(), statementID, receiptID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, statement)
}

// UnmatchReceiptRequest carries the reason a receipt could not be matched
type UnmatchReceiptRequest struct {
	Remark string `json:"remark"`
}

// UnmatchReceipt marks a single receipt line as unmatched
func (h *ReconciliationHandler) UnmatchReceipt(c *gin.Context) {
	statementID, receiptID, ok := h.pathIDs(c)
	if !ok {
		return
	}

	var req UnmatchReceiptRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BadRequest(c, err.Error())
			return
		}
	}

	statement, err := h.reconciliationService.MarkReceiptUnmatched(c.Request.Context(), statementID, receiptID, req.Remark)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, statement)
}

// MatchAll marks every pending receipt line on the statement as matched
func (h *ReconciliationHandler) MatchAll(c *gin.Context) {
	statementID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid statement ID format")
		return
	}

	statement, err := h.reconciliationService.MarkAllReceiptsMatched(c.Request.Context(), statementID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, statement)
}

// DisputeStatementRequest carries the dispute reason
type DisputeStatementRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// Dispute flags a statement as disputed
func (h *ReconciliationHandler) Dispute(c *gin.Context) {
	statementID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid statement ID format")
		return
	}

	var req DisputeStatementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	statement, err := h.reconciliationService.DisputeStatement(c.Request.Context(), statementID, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, statement)
}

// Resolve returns a disputed statement to the pending state
func (h *ReconciliationHandler) Resolve(c *gin.Context) {
	statementID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid statement ID format")
		return
	}

	statement, err := h.reconciliationService.ResolveStatement(c.Request.Context(), statementID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, statement)
}

// ConfirmStatementRequest identifies who confirmed the statement
type ConfirmStatementRequest struct {
	ConfirmedBy string `json:"confirmed_by" binding:"required"`
}

// Confirm confirms a fully matched statement, producing its account payable
func (h *ReconciliationHandler) Confirm(c *gin.Context) {
	statementID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid statement ID format")
		return
	}

	var req ConfirmStatementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.reconciliationService.ConfirmStatement(c.Request.Context(), statementID, req.ConfirmedBy)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

func (h *ReconciliationHandler) pathIDs(c *gin.Context) (statementID, receiptID uuid.UUID, ok bool) {
	statementID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid statement ID format")
		return uuid.Nil, uuid.Nil, false
	}
	receiptID, err = uuid.Parse(c.Param("receiptId"))
	if err != nil {
		h.BadRequest(c, "Invalid receipt ID format")
		return uuid.Nil, uuid.Nil, false
	}
	return statementID, receiptID, true
}
