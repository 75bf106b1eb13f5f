package ledger

import (
	"time"

	"github.com/fzhange/financial-sys/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StatementCreatedEvent is raised when a reconciliation statement is created
type StatementCreatedEvent struct {
	shared.BaseDomainEvent
	StatementID          uuid.UUID       `json:"statement_id"`
	StatementNumber      string          `json:"statement_number"`
	SupplierID           uuid.UUID       `json:"supplier_id"`
	ReceiptCount         int             `json:"receipt_count"`
	ReconciliationAmount decimal.Decimal `json:"reconciliation_amount"`
}

// EventType returns the event type name
func (e *StatementCreatedEvent) EventType() string {
	return "ReconciliationStatementCreated"
}

// NewStatementCreatedEvent creates a new StatementCreatedEvent
func NewStatementCreatedEvent(rs *ReconciliationStatement) *StatementCreatedEvent {
	return &StatementCreatedEvent{
		BaseDomainEvent:      shared.NewBaseDomainEvent("ReconciliationStatementCreated", "ReconciliationStatement", rs.ID),
		StatementID:          rs.ID,
		StatementNumber:      rs.StatementNumber,
		SupplierID:           rs.SupplierID,
		ReceiptCount:         len(rs.Receipts),
		ReconciliationAmount: rs.ReconciliationAmount,
	}
}

// StatementConfirmedEvent is raised when a statement is confirmed
type StatementConfirmedEvent struct {
	shared.BaseDomainEvent
	StatementID     uuid.UUID       `json:"statement_id"`
	StatementNumber string          `json:"statement_number"`
	SupplierID      uuid.UUID       `json:"supplier_id"`
	ConfirmedAmount decimal.Decimal `json:"confirmed_amount"`
	ConfirmedBy     string          `json:"confirmed_by"`
	ConfirmedAt     time.Time       `json:"confirmed_at"`
}

// EventType returns the event type name
func (e *StatementConfirmedEvent) EventType() string {
	return "ReconciliationStatementConfirmed"
}

// NewStatementConfirmedEvent creates a new StatementConfirmedEvent
func NewStatementConfirmedEvent(rs *ReconciliationStatement) *StatementConfirmedEvent {
	confirmedAt := time.Now()
	if rs.ConfirmedAt != nil {
		confirmedAt = *rs.ConfirmedAt
	}
	return &StatementConfirmedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("ReconciliationStatementConfirmed", "ReconciliationStatement", rs.ID),
		StatementID:     rs.ID,
		StatementNumber: rs.StatementNumber,
		SupplierID:      rs.SupplierID,
		ConfirmedAmount: rs.ConfirmedAmount,
		ConfirmedBy:     rs.ConfirmedBy,
		ConfirmedAt:     confirmedAt,
	}
}
