package ledger

import (
	"fmt"
	"time"

	"github.com/fzhange/financial-sys/internal/domain/shared"
	"github.com/fzhange/financial-sys/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StatementStatus represents the lifecycle state of a reconciliation statement
type StatementStatus string

const (
	StatementStatusDraft     StatementStatus = "DRAFT"
	StatementStatusPending   StatementStatus = "PENDING"
	StatementStatusConfirmed StatementStatus = "CONFIRMED"
	StatementStatusDisputed  StatementStatus = "DISPUTED"
	StatementStatusResolved  StatementStatus = "RESOLVED"
)

// IsValid checks if the status is a valid StatementStatus
func (s StatementStatus) IsValid() bool {
	switch s {
	case StatementStatusDraft, StatementStatusPending, StatementStatusConfirmed,
		StatementStatusDisputed, StatementStatusResolved:
		return true
	}
	return false
}

// String returns the string representation of StatementStatus
func (s StatementStatus) String() string {
	return string(s)
}

// IsActive returns true while the statement is still in the working queue
func (s StatementStatus) IsActive() bool {
	return s != StatementStatusConfirmed
}

// CanConfirm returns true if the statement may be confirmed from this status
func (s StatementStatus) CanConfirm() bool {
	return s == StatementStatusDraft || s == StatementStatusPending || s == StatementStatusResolved
}

// ReceiptMatchStatus represents the reconciliation state of one receipt line
type ReceiptMatchStatus string

const (
	ReceiptMatchStatusPending   ReceiptMatchStatus = "PENDING"
	ReceiptMatchStatusMatched   ReceiptMatchStatus = "MATCHED"
	ReceiptMatchStatusUnmatched ReceiptMatchStatus = "UNMATCHED"
)

// ReconciliationReceipt is one goods-receipt line on a supplier statement
type ReconciliationReceipt struct {
	ID                  uuid.UUID          `json:"id"`
	StatementID         uuid.UUID          `json:"statement_id"`
	ReceiptNumber       string             `json:"receipt_number"`
	ReceiptDate         time.Time          `json:"receipt_date"`
	PurchaseOrderNumber string             `json:"purchase_order_number"`
	SKUCount            int                `json:"sku_count"`
	GoodQuantity        int                `json:"good_quantity"`
	DefectQuantity      int                `json:"defect_quantity"`
	Category            string             `json:"category"`
	HasTax              bool               `json:"has_tax"`
	ReceiptAmount       decimal.Decimal    `json:"receipt_amount"`
	PayableAmount       decimal.Decimal    `json:"payable_amount"`
	MatchStatus         ReceiptMatchStatus `json:"match_status"`
	Remark              string             `json:"remark"`
}

// ReconciliationStatement is a supplier statement for a billing period.
// Confirming requires every receipt line to be matched; confirmation is the
// single transition that spawns the account payable.
type ReconciliationStatement struct {
	shared.BaseAggregateRoot
	StatementNumber      string                  `json:"statement_number"`
	SupplierID           uuid.UUID               `json:"supplier_id"`
	SupplierName         string                  `json:"supplier_name"`
	PeriodStart          time.Time               `json:"period_start"`
	PeriodEnd            time.Time               `json:"period_end"`
	Receipts             []ReconciliationReceipt `json:"receipts"`
	ReconciliationAmount decimal.Decimal         `json:"reconciliation_amount"` // Sum of receipt amounts
	ConfirmedAmount      decimal.Decimal         `json:"confirmed_amount"`      // Sum of payable amounts at confirm
	Status               StatementStatus         `json:"status"`
	DisputeReason        string                  `json:"dispute_reason"`
	Remark               string                  `json:"remark"`
	ConfirmedAt          *time.Time              `json:"confirmed_at"`
	ConfirmedBy          string                  `json:"confirmed_by"`
	PayableID            *uuid.UUID              `json:"payable_id,omitempty"` // Payable created on confirm
}

// ReceiptInput carries the receipt lines a statement is built from
type ReceiptInput struct {
	ReceiptNumber       string
	ReceiptDate         time.Time
	PurchaseOrderNumber string
	SKUCount            int
	GoodQuantity        int
	DefectQuantity      int
	Category            string
	HasTax              bool
	ReceiptAmount       decimal.Decimal
	PayableAmount       decimal.Decimal
}

// NewReconciliationStatement creates a statement with its receipt lines
func NewReconciliationStatement(
	statementNumber string,
	supplierID uuid.UUID,
	supplierName string,
	periodStart time.Time,
	periodEnd time.Time,
	receipts []ReceiptInput,
) (*ReconciliationStatement, error) {
	if statementNumber == "" {
		return nil, shared.NewDomainError("INVALID_STATEMENT_NUMBER", "Statement number cannot be empty")
	}
	if supplierID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SUPPLIER", "Supplier ID cannot be empty")
	}
	if supplierName == "" {
		return nil, shared.NewDomainError("INVALID_SUPPLIER_NAME", "Supplier name cannot be empty")
	}
	if periodStart.IsZero() || periodEnd.IsZero() {
		return nil, shared.NewDomainError("INVALID_PERIOD", "Statement period is required")
	}
	if periodEnd.Before(periodStart) {
		return nil, shared.NewDomainError("INVALID_PERIOD", "Period end cannot be before period start")
	}
	if len(receipts) == 0 {
		return nil, shared.NewDomainError("NO_RECEIPTS", "At least one receipt line is required")
	}

	rs := &ReconciliationStatement{
		BaseAggregateRoot:    shared.NewBaseAggregateRoot(),
		StatementNumber:      statementNumber,
		SupplierID:           supplierID,
		SupplierName:         supplierName,
		PeriodStart:          periodStart,
		PeriodEnd:            periodEnd,
		Receipts:             make([]ReconciliationReceipt, 0, len(receipts)),
		ReconciliationAmount: decimal.Zero,
		ConfirmedAmount:      decimal.Zero,
		Status:               StatementStatusPending,
	}

	for _, in := range receipts {
		if in.ReceiptNumber == "" {
			return nil, shared.NewDomainError("INVALID_RECEIPT", "Receipt number cannot be empty")
		}
		if in.ReceiptAmount.IsNegative() || in.PayableAmount.IsNegative() {
			return nil, shared.NewDomainError("INVALID_RECEIPT_AMOUNT", fmt.Sprintf("Receipt %s has a negative amount", in.ReceiptNumber))
		}
		rs.Receipts = append(rs.Receipts, ReconciliationReceipt{
			ID:                  uuid.New(),
			StatementID:         rs.ID,
			ReceiptNumber:       in.ReceiptNumber,
			ReceiptDate:         in.ReceiptDate,
			PurchaseOrderNumber: in.PurchaseOrderNumber,
			SKUCount:            in.SKUCount,
			GoodQuantity:        in.GoodQuantity,
			DefectQuantity:      in.DefectQuantity,
			Category:            in.Category,
			HasTax:              in.HasTax,
			ReceiptAmount:       in.ReceiptAmount,
			PayableAmount:       in.PayableAmount,
			MatchStatus:         ReceiptMatchStatusPending,
		})
		rs.ReconciliationAmount = rs.ReconciliationAmount.Add(in.ReceiptAmount)
	}

	rs.AddDomainEvent(NewStatementCreatedEvent(rs))

	return rs, nil
}

// MarkReceiptMatched marks one receipt line as matched against our records
func (rs *ReconciliationStatement) MarkReceiptMatched(receiptID uuid.UUID) error {
	return rs.setReceiptStatus(receiptID, ReceiptMatchStatusMatched, "")
}

// MarkReceiptUnmatched flags one receipt line as disputed with a remark
func (rs *ReconciliationStatement) MarkReceiptUnmatched(receiptID uuid.UUID, remark string) error {
	if remark == "" {
		return shared.NewDomainError("INVALID_REASON", "Unmatched receipt requires a remark")
	}
	return rs.setReceiptStatus(receiptID, ReceiptMatchStatusUnmatched, remark)
}

// MarkAllReceiptsMatched matches every receipt line in one step
func (rs *ReconciliationStatement) MarkAllReceiptsMatched() error {
	if rs.Status == StatementStatusConfirmed {
		return shared.NewDomainError("INVALID_STATE", "Statement is already confirmed")
	}
	for i := range rs.Receipts {
		rs.Receipts[i].MatchStatus = ReceiptMatchStatusMatched
		rs.Receipts[i].Remark = ""
	}
	rs.UpdatedAt = time.Now()
	rs.IncrementVersion()
	return nil
}

func (rs *ReconciliationStatement) setReceiptStatus(receiptID uuid.UUID, status ReceiptMatchStatus, remark string) error {
	if rs.Status == StatementStatusConfirmed {
		return shared.NewDomainError("INVALID_STATE", "Statement is already confirmed")
	}
	for i := range rs.Receipts {
		if rs.Receipts[i].ID == receiptID {
			rs.Receipts[i].MatchStatus = status
			rs.Receipts[i].Remark = remark
			rs.UpdatedAt = time.Now()
			rs.IncrementVersion()
			return nil
		}
	}
	return shared.NewDomainError("RECEIPT_NOT_FOUND", "Receipt line not found on statement")
}

// AllReceiptsMatched returns true if every receipt line is matched
func (rs *ReconciliationStatement) AllReceiptsMatched() bool {
	for _, r := range rs.Receipts {
		if r.MatchStatus != ReceiptMatchStatusMatched {
			return false
		}
	}
	return true
}

// TotalPayableAmount returns the sum of receipt payable amounts
func (rs *ReconciliationStatement) TotalPayableAmount() decimal.Decimal {
	total := decimal.Zero
	for _, r := range rs.Receipts {
		total = total.Add(r.PayableAmount)
	}
	return total
}

// Dispute flags the whole statement as disputed with the supplier
func (rs *ReconciliationStatement) Dispute(reason string) error {
	if rs.Status == StatementStatusConfirmed {
		return shared.NewDomainError("INVALID_STATE", "Cannot dispute a confirmed statement")
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Dispute reason is required")
	}

	rs.Status = StatementStatusDisputed
	rs.DisputeReason = reason
	rs.UpdatedAt = time.Now()
	rs.IncrementVersion()

	return nil
}

// Resolve clears a dispute, returning the statement to the working queue
func (rs *ReconciliationStatement) Resolve() error {
	if rs.Status != StatementStatusDisputed {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot resolve statement in %s status", rs.Status))
	}

	rs.Status = StatementStatusResolved
	rs.UpdatedAt = time.Now()
	rs.IncrementVersion()

	return nil
}

// Confirm finalizes the statement. All receipts must be matched and the
// total payable amount must be positive. The caller creates the payable in
// the same transaction and records it via LinkPayable.
func (rs *ReconciliationStatement) Confirm(confirmedBy string) error {
	if !rs.Status.CanConfirm() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot confirm statement in %s status", rs.Status))
	}
	if confirmedBy == "" {
		return shared.NewDomainError("INVALID_USER", "Confirming user is required")
	}
	if !rs.AllReceiptsMatched() {
		return shared.NewDomainError("RECEIPTS_NOT_MATCHED", "All receipts must be matched before confirming")
	}
	total := rs.TotalPayableAmount()
	if total.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Confirmed payable amount must be positive")
	}

	now := time.Now()
	rs.Status = StatementStatusConfirmed
	rs.ConfirmedAmount = total
	rs.ConfirmedAt = &now
	rs.ConfirmedBy = confirmedBy
	rs.UpdatedAt = now
	rs.IncrementVersion()

	rs.AddDomainEvent(NewStatementConfirmedEvent(rs))

	return nil
}

// LinkPayable records the payable generated from this statement
func (rs *ReconciliationStatement) LinkPayable(payableID uuid.UUID) error {
	if rs.Status != StatementStatusConfirmed {
		return shared.NewDomainError("INVALID_STATE", "Statement must be confirmed before linking a payable")
	}
	if payableID == uuid.Nil {
		return shared.NewDomainError("INVALID_PAYABLE", "Payable ID cannot be empty")
	}
	rs.PayableID = &payableID
	rs.UpdatedAt = time.Now()
	return nil
}

// GetConfirmedAmountMoney returns the confirmed amount as Money
func (rs *ReconciliationStatement) GetConfirmedAmountMoney() valueobject.Money {
	return valueobject.NewMoneyCNY(rs.ConfirmedAmount)
}

// IsConfirmed returns true once the statement left the working queue
func (rs *ReconciliationStatement) IsConfirmed() bool {
	return rs.Status == StatementStatusConfirmed
}

// ReceiptCount returns the number of receipt lines
func (rs *ReconciliationStatement) ReceiptCount() int {
	return len(rs.Receipts)
}
