package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/fzhange/financial-sys/internal/domain/ledger"
	"github.com/fzhange/financial-sys/internal/domain/shared"
	"github.com/fzhange/financial-sys/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormAccountPayableRepository implements AccountPayableRepository using GORM
type GormAccountPayableRepository struct {
	db *gorm.DB
}

// NewGormAccountPayableRepository creates a new GormAccountPayableRepository
func NewGormAccountPayableRepository(db *gorm.DB) *GormAccountPayableRepository {
	return &GormAccountPayableRepository{db: db}
}

// FindByID finds an account payable by its ID. Returns (nil, nil) when no row exists.
func (r *GormAccountPayableRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.AccountPayable, error) {
	var model models.AccountPayableModel
	if err := dbFromContext(ctx, r.db).WithContext(ctx).
		Preload("PaymentRecords").
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByNumber finds an account payable by its payable number
func (r *GormAccountPayableRepository) FindByNumber(ctx context.Context, payableNumber string) (*ledger.AccountPayable, error) {
	var model models.AccountPayableModel
	if err := dbFromContext(ctx, r.db).WithContext(ctx).
		Preload("PaymentRecords").
		Where("payable_number = ?", payableNumber).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindBySource finds the payable created from a source document
func (r *GormAccountPayableRepository) FindBySource(ctx context.Context, sourceType ledger.PayableSourceType, sourceID uuid.UUID) (*ledger.AccountPayable, error) {
	var model models.AccountPayableModel
	if err := dbFromContext(ctx, r.db).WithContext(ctx).
		Preload("PaymentRecords").
		Where("source_type = ? AND source_id = ?", sourceType, sourceID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDs finds multiple account payables by their IDs
func (r *GormAccountPayableRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]ledger.AccountPayable, error) {
	if len(ids) == 0 {
		return []ledger.AccountPayable{}, nil
	}

	var payableModels []models.AccountPayableModel
	if err := dbFromContext(ctx, r.db).WithContext(ctx).
		Preload("PaymentRecords").
		Where("id IN ?", ids).
		Find(&payableModels).Error; err != nil {
		return nil, err
	}
	return toDomainPayables(payableModels), nil
}

// FindAll finds all account payables matching the filter
func (r *GormAccountPayableRepository) FindAll(ctx context.Context, filter ledger.AccountPayableFilter) ([]ledger.AccountPayable, error) {
	var payableModels []models.AccountPayableModel
	query := dbFromContext(ctx, r.db).WithContext(ctx).Model(&models.AccountPayableModel{}).
		Preload("PaymentRecords")
	query = r.applyFilter(query, filter)

	if err := query.Find(&payableModels).Error; err != nil {
		return nil, err
	}
	return toDomainPayables(payableModels), nil
}

// FindOutstanding finds all payables of a supplier that still carry an unpaid
// balance, ordered for write-off allocation: earliest due date first, ties
// broken by creation time.
func (r *GormAccountPayableRepository) FindOutstanding(ctx context.Context, supplierID uuid.UUID) ([]ledger.AccountPayable, error) {
	var payableModels []models.AccountPayableModel
	if err := dbFromContext(ctx, r.db).WithContext(ctx).
		Preload("PaymentRecords").
		Where("supplier_id = ? AND status IN ?", supplierID,
			[]ledger.PayableStatus{ledger.PayableStatusPending, ledger.PayableStatusPartial}).
		Order("due_date ASC NULLS LAST, created_at ASC").
		Find(&payableModels).Error; err != nil {
		return nil, err
	}
	return toDomainPayables(payableModels), nil
}

// Save creates or updates an account payable
func (r *GormAccountPayableRepository) Save(ctx context.Context, payable *ledger.AccountPayable) error {
	model := models.AccountPayableModelFromDomain(payable)
	return dbFromContext(ctx, r.db).WithContext(ctx).Save(model).Error
}

// SaveWithLock saves with optimistic locking
func (r *GormAccountPayableRepository) SaveWithLock(ctx context.Context, payable *ledger.AccountPayable) error {
	model := models.AccountPayableModelFromDomain(payable)
	db := dbFromContext(ctx, r.db).WithContext(ctx)
	result := db.
		Model(model).
		Where("id = ? AND version = ?", payable.ID, payable.Version-1).
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	// Updates does not touch associations, payment records are saved explicitly.
	if len(model.PaymentRecords) > 0 {
		if err := db.Save(&model.PaymentRecords).Error; err != nil {
			return err
		}
	}
	return nil
}

// Delete deletes an account payable
func (r *GormAccountPayableRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := dbFromContext(ctx, r.db).WithContext(ctx).Delete(&models.AccountPayableModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts account payables matching the filter
func (r *GormAccountPayableRepository) Count(ctx context.Context, filter ledger.AccountPayableFilter) (int64, error) {
	var count int64
	query := dbFromContext(ctx, r.db).WithContext(ctx).Model(&models.AccountPayableModel{})
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Summarize aggregates payable balances, optionally scoped to one supplier.
// Cancelled payables are excluded from every figure.
func (r *GormAccountPayableRepository) Summarize(ctx context.Context, supplierID *uuid.UUID) (*ledger.PayableSummary, error) {
	db := dbFromContext(ctx, r.db).WithContext(ctx)

	base := db.Model(&models.AccountPayableModel{}).
		Where("status <> ?", ledger.PayableStatusCancelled)
	if supplierID != nil {
		base = base.Where("supplier_id = ?", *supplierID)
	}

	var summary ledger.PayableSummary
	if err := base.Session(&gorm.Session{}).
		Select("COUNT(*) as total_count, " +
			"COALESCE(SUM(total_amount), 0) as total_amount, " +
			"COALESCE(SUM(paid_amount), 0) as paid_amount, " +
			"COALESCE(SUM(unpaid_amount), 0) as unpaid_amount").
		Scan(&summary).Error; err != nil {
		return nil, err
	}

	var overdue struct {
		OverdueCount  int64
		OverdueAmount decimal.Decimal
	}
	if err := base.Session(&gorm.Session{}).
		Where("due_date < ? AND status IN ?", time.Now(),
			[]ledger.PayableStatus{ledger.PayableStatusPending, ledger.PayableStatusPartial}).
		Select("COUNT(*) as overdue_count, COALESCE(SUM(unpaid_amount), 0) as overdue_amount").
		Scan(&overdue).Error; err != nil {
		return nil, err
	}
	summary.OverdueCount = overdue.OverdueCount
	summary.OverdueAmount = overdue.OverdueAmount

	return &summary, nil
}

// GeneratePayableNumber generates the next payable number
func (r *GormAccountPayableRepository) GeneratePayableNumber(ctx context.Context) (string, error) {
	return nextDocumentNumber(dbFromContext(ctx, r.db).WithContext(ctx),
		&models.AccountPayableModel{}, "payable_number", "AP")
}

// GeneratePaymentNumber generates the next payment record number
func (r *GormAccountPayableRepository) GeneratePaymentNumber(ctx context.Context) (string, error) {
	return nextDocumentNumber(dbFromContext(ctx, r.db).WithContext(ctx),
		&models.PaymentRecordModel{}, "payment_number", "PAY")
}

// applyFilter applies filter options to the query
func (r *GormAccountPayableRepository) applyFilter(query *gorm.DB, filter ledger.AccountPayableFilter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, AccountPayableSortFields, "created_at")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormAccountPayableRepository) applyFilterWithoutPagination(query *gorm.DB, filter ledger.AccountPayableFilter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("payable_number ILIKE ? OR supplier_name ILIKE ? OR source_number ILIKE ?",
			searchPattern, searchPattern, searchPattern)
	}

	if filter.SupplierID != nil {
		query = query.Where("supplier_id = ?", *filter.SupplierID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.SourceType != nil {
		query = query.Where("source_type = ?", *filter.SourceType)
	}
	if filter.SourceID != nil {
		query = query.Where("source_id = ?", *filter.SourceID)
	}
	if filter.FromDate != nil {
		query = query.Where("created_at >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("created_at <= ?", *filter.ToDate)
	}
	if filter.DueFrom != nil {
		query = query.Where("due_date >= ?", *filter.DueFrom)
	}
	if filter.DueTo != nil {
		query = query.Where("due_date <= ?", *filter.DueTo)
	}
	if filter.Overdue != nil && *filter.Overdue {
		query = query.Where("due_date < ? AND status IN ?", time.Now(),
			[]ledger.PayableStatus{ledger.PayableStatusPending, ledger.PayableStatusPartial})
	}
	if filter.MinUnpaid != nil {
		query = query.Where("unpaid_amount >= ?", *filter.MinUnpaid)
	}
	if filter.MaxUnpaid != nil {
		query = query.Where("unpaid_amount <= ?", *filter.MaxUnpaid)
	}

	return query
}

func toDomainPayables(payableModels []models.AccountPayableModel) []ledger.AccountPayable {
	payables := make([]ledger.AccountPayable, len(payableModels))
	for i, model := range payableModels {
		payables[i] = *model.ToDomain()
	}
	return payables
}

// Ensure GormAccountPayableRepository implements AccountPayableRepository
var _ ledger.AccountPayableRepository = (*GormAccountPayableRepository)(nil)
