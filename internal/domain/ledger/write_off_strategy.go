package ledger

import (
	"sort"
	"time"

	"github.com/fzhange/financial-sys/internal/domain/shared"
	"github.com/fzhange/financial-sys/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WriteOffStrategyType defines how payment funds are spread across payables
type WriteOffStrategyType string

const (
	WriteOffStrategyTypeGreedy WriteOffStrategyType = "GREEDY" // Oldest due date first, fill each payable before moving on
	WriteOffStrategyTypeManual WriteOffStrategyType = "MANUAL" // User-specified lines
)

// IsValid checks if the strategy type is valid
func (t WriteOffStrategyType) IsValid() bool {
	switch t {
	case WriteOffStrategyTypeGreedy, WriteOffStrategyTypeManual:
		return true
	}
	return false
}

// String returns the string representation
func (t WriteOffStrategyType) String() string {
	return string(t)
}

// WriteOffTarget is one payable eligible for write-off
type WriteOffTarget struct {
	ID           uuid.UUID
	Number       string
	TotalAmount  decimal.Decimal
	UnpaidAmount decimal.Decimal
	DueDate      *time.Time
	CreatedAt    time.Time
}

// WriteOffLine is one proposed allocation against a payable
type WriteOffLine struct {
	PayableID     uuid.UUID       `json:"payable_id"`
	PayableNumber string          `json:"payable_number"`
	Amount        decimal.Decimal `json:"amount"`
}

// WriteOffPlan is the complete proposal produced by a strategy
type WriteOffPlan struct {
	Lines           []WriteOffLine  `json:"lines"`
	TotalAllocated  decimal.Decimal `json:"total_allocated"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
	FullyAllocated  bool            `json:"fully_allocated"`
	PayablesSettled []uuid.UUID     `json:"payables_settled"` // Payables the plan pays off in full
	PayablesPartial []uuid.UUID     `json:"payables_partial"` // Payables left with a balance
}

// WriteOffStrategy computes how to spread an amount across payables
type WriteOffStrategy interface {
	StrategyType() WriteOffStrategyType
	Allocate(amount valueobject.Money, targets []WriteOffTarget) (*WriteOffPlan, error)
}

// GreedyWriteOffStrategy fills payables first-fit in a fixed order:
// earliest due date first, nil due dates last, creation date as tie-break.
// Each payable is filled up to its unpaid balance before moving to the next.
type GreedyWriteOffStrategy struct{}

// NewGreedyWriteOffStrategy creates a new greedy write-off strategy
func NewGreedyWriteOffStrategy() *GreedyWriteOffStrategy {
	return &GreedyWriteOffStrategy{}
}

// StrategyType returns the strategy type
func (s *GreedyWriteOffStrategy) StrategyType() WriteOffStrategyType {
	return WriteOffStrategyTypeGreedy
}

// Allocate spreads the amount across targets in greedy first-fit order
func (s *GreedyWriteOffStrategy) Allocate(amount valueobject.Money, targets []WriteOffTarget) (*WriteOffPlan, error) {
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Allocation amount must be positive")
	}
	if len(targets) == 0 {
		return emptyPlan(amount.Amount()), nil
	}

	sorted := make([]WriteOffTarget, len(targets))
	copy(sorted, targets)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].DueDate != nil && sorted[j].DueDate != nil {
			if !sorted[i].DueDate.Equal(*sorted[j].DueDate) {
				return sorted[i].DueDate.Before(*sorted[j].DueDate)
			}
		} else if sorted[i].DueDate != nil {
			return true
		} else if sorted[j].DueDate != nil {
			return false
		}
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})

	lines := make([]WriteOffLine, 0)
	settled := make([]uuid.UUID, 0)
	partial := make([]uuid.UUID, 0)
	remaining := amount.Amount()
	totalAllocated := decimal.Zero

	for _, target := range sorted {
		if remaining.IsZero() {
			break
		}
		if target.UnpaidAmount.LessThanOrEqual(decimal.Zero) {
			continue
		}

		allocAmount := decimal.Min(remaining, target.UnpaidAmount)

		lines = append(lines, WriteOffLine{
			PayableID:     target.ID,
			PayableNumber: target.Number,
			Amount:        allocAmount,
		})

		totalAllocated = totalAllocated.Add(allocAmount)
		remaining = remaining.Sub(allocAmount)

		if allocAmount.GreaterThanOrEqual(target.UnpaidAmount) {
			settled = append(settled, target.ID)
		} else {
			partial = append(partial, target.ID)
		}
	}

	return &WriteOffPlan{
		Lines:           lines,
		TotalAllocated:  totalAllocated,
		RemainingAmount: remaining,
		FullyAllocated:  remaining.IsZero(),
		PayablesSettled: settled,
		PayablesPartial: partial,
	}, nil
}

// ManualWriteOffRequest is one user-specified allocation
type ManualWriteOffRequest struct {
	PayableID uuid.UUID
	Amount    decimal.Decimal // Zero means fill up to the unpaid balance
}

// ManualWriteOffStrategy allocates to user-specified payables in order,
// capping each line at both the remaining funds and the payable's balance
type ManualWriteOffStrategy struct {
	requests []ManualWriteOffRequest
}

// NewManualWriteOffStrategy creates a manual strategy over the given lines
func NewManualWriteOffStrategy(requests []ManualWriteOffRequest) *ManualWriteOffStrategy {
	return &ManualWriteOffStrategy{requests: requests}
}

// StrategyType returns the strategy type
func (s *ManualWriteOffStrategy) StrategyType() WriteOffStrategyType {
	return WriteOffStrategyTypeManual
}

// GetRequests returns the configured manual lines
func (s *ManualWriteOffStrategy) GetRequests() []ManualWriteOffRequest {
	return s.requests
}

// Allocate applies the manual lines against the targets
func (s *ManualWriteOffStrategy) Allocate(amount valueobject.Money, targets []WriteOffTarget) (*WriteOffPlan, error) {
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Allocation amount must be positive")
	}
	if len(targets) == 0 {
		return emptyPlan(amount.Amount()), nil
	}

	targetMap := make(map[uuid.UUID]*WriteOffTarget)
	for i := range targets {
		targetMap[targets[i].ID] = &targets[i]
	}

	lines := make([]WriteOffLine, 0)
	settled := make([]uuid.UUID, 0)
	partial := make([]uuid.UUID, 0)
	remaining := amount.Amount()
	totalAllocated := decimal.Zero

	for _, req := range s.requests {
		target, exists := targetMap[req.PayableID]
		if !exists {
			return nil, shared.NewDomainError("INVALID_PAYABLE", "Write-off line references a payable outside the eligible set")
		}
		if target.UnpaidAmount.LessThanOrEqual(decimal.Zero) {
			continue
		}

		// Leftover lines after the funds run out are an error, not a
		// silent truncation of the caller's plan.
		if remaining.IsZero() {
			return nil, shared.NewDomainError("EXCEEDS_FUNDS", "Write-off lines exceed the amount being allocated")
		}

		var allocAmount decimal.Decimal
		if req.Amount.IsZero() {
			allocAmount = decimal.Min(remaining, target.UnpaidAmount)
		} else {
			if req.Amount.IsNegative() {
				return nil, shared.NewDomainError("INVALID_AMOUNT", "Write-off line amount cannot be negative")
			}
			if req.Amount.GreaterThan(target.UnpaidAmount) {
				return nil, shared.NewDomainError("EXCEEDS_UNPAID", "Write-off line exceeds the payable's unpaid balance")
			}
			if req.Amount.GreaterThan(remaining) {
				return nil, shared.NewDomainError("EXCEEDS_FUNDS", "Write-off line exceeds the remaining funds")
			}
			allocAmount = req.Amount
		}

		lines = append(lines, WriteOffLine{
			PayableID:     target.ID,
			PayableNumber: target.Number,
			Amount:        allocAmount,
		})

		totalAllocated = totalAllocated.Add(allocAmount)
		remaining = remaining.Sub(allocAmount)

		if allocAmount.GreaterThanOrEqual(target.UnpaidAmount) {
			settled = append(settled, target.ID)
		} else {
			partial = append(partial, target.ID)
		}

		target.UnpaidAmount = target.UnpaidAmount.Sub(allocAmount)
	}

	return &WriteOffPlan{
		Lines:           lines,
		TotalAllocated:  totalAllocated,
		RemainingAmount: remaining,
		FullyAllocated:  remaining.IsZero(),
		PayablesSettled: settled,
		PayablesPartial: partial,
	}, nil
}

func emptyPlan(amount decimal.Decimal) *WriteOffPlan {
	return &WriteOffPlan{
		Lines:           make([]WriteOffLine, 0),
		TotalAllocated:  decimal.Zero,
		RemainingAmount: amount,
		FullyAllocated:  false,
		PayablesSettled: make([]uuid.UUID, 0),
		PayablesPartial: make([]uuid.UUID, 0),
	}
}

// PayablesToWriteOffTargets converts open payables into strategy targets,
// skipping anything that cannot accept a payment
func PayablesToWriteOffTargets(payables []AccountPayable) []WriteOffTarget {
	targets := make([]WriteOffTarget, 0, len(payables))
	for _, p := range payables {
		if p.Status.CanApplyPayment() && p.UnpaidAmount.GreaterThan(decimal.Zero) {
			targets = append(targets, WriteOffTarget{
				ID:           p.ID,
				Number:       p.PayableNumber,
				TotalAmount:  p.TotalAmount,
				UnpaidAmount: p.UnpaidAmount,
				DueDate:      p.DueDate,
				CreatedAt:    p.CreatedAt,
			})
		}
	}
	return targets
}
