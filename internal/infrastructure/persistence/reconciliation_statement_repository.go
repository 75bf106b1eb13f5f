package persistence

import (
	"context"
	"errors"

	"github.com/fzhange/financial-sys/internal/domain/ledger"
	"github.com/fzhange/financial-sys/internal/domain/shared"
	"github.com/fzhange/financial-sys/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormReconciliationStatementRepository implements ReconciliationStatementRepository using GORM
type GormReconciliationStatementRepository struct {
	db *gorm.DB
}

// NewGormReconciliationStatementRepository creates a new GormReconciliationStatementRepository
func NewGormReconciliationStatementRepository(db *gorm.DB) *GormReconciliationStatementRepository {
	return &GormReconciliationStatementRepository{db: db}
}

// FindByID finds a statement by its ID. Returns (nil, nil) when no row exists.
func (r *GormReconciliationStatementRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.ReconciliationStatement, error) {
	var model models.ReconciliationStatementModel
	if err := dbFromContext(ctx, r.db).WithContext(ctx).
		Preload("Receipts").
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByNumber finds a statement by its statement number
func (r *GormReconciliationStatementRepository) FindByNumber(ctx context.Context, statementNumber string) (*ledger.ReconciliationStatement, error) {
	var model models.ReconciliationStatementModel
	if err := dbFromContext(ctx, r.db).WithContext(ctx).
		Preload("Receipts").
		Where("statement_number = ?", statementNumber).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds all statements matching the filter
func (r *GormReconciliationStatementRepository) FindAll(ctx context.Context, filter ledger.StatementFilter) ([]ledger.ReconciliationStatement, error) {
	var statementModels []models.ReconciliationStatementModel
	query := dbFromContext(ctx, r.db).WithContext(ctx).Model(&models.ReconciliationStatementModel{}).
		Preload("Receipts")
	query = r.applyFilter(query, filter)

	if err := query.Find(&statementModels).Error; err != nil {
		return nil, err
	}
	statements := make([]ledger.ReconciliationStatement, len(statementModels))
	for i, model := range statementModels {
		statements[i] = *model.ToDomain()
	}
	return statements, nil
}

// Save creates or updates a statement
func (r *GormReconciliationStatementRepository) Save(ctx context.Context, statement *ledger.ReconciliationStatement) error {
	model := models.ReconciliationStatementModelFromDomain(statement)
	return dbFromContext(ctx, r.db).WithContext(ctx).Save(model).Error
}

// SaveWithLock saves with optimistic locking
func (r *GormReconciliationStatementRepository) SaveWithLock(ctx context.Context, statement *ledger.ReconciliationStatement) error {
	model := models.ReconciliationStatementModelFromDomain(statement)
	db := dbFromContext(ctx, r.db).WithContext(ctx)
	result := db.
		Model(model).
		Where("id = ? AND version = ?", statement.ID, statement.Version-1).
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	// Updates does not touch associations, receipts are saved explicitly.
	if len(model.Receipts) > 0 {
		if err := db.Save(&model.Receipts).Error; err != nil {
			return err
		}
	}
	return nil
}

// Delete deletes a statement
func (r *GormReconciliationStatementRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := dbFromContext(ctx, r.db).WithContext(ctx).Delete(&models.ReconciliationStatementModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts statements matching the filter
func (r *GormReconciliationStatementRepository) Count(ctx context.Context, filter ledger.StatementFilter) (int64, error) {
	var count int64
	query := dbFromContext(ctx, r.db).WithContext(ctx).Model(&models.ReconciliationStatementModel{})
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// GenerateStatementNumber generates the next statement number
func (r *GormReconciliationStatementRepository) GenerateStatementNumber(ctx context.Context) (string, error) {
	return nextDocumentNumber(dbFromContext(ctx, r.db).WithContext(ctx),
		&models.ReconciliationStatementModel{}, "statement_number", "DZ")
}

// applyFilter applies filter options to the query
func (r *GormReconciliationStatementRepository) applyFilter(query *gorm.DB, filter ledger.StatementFilter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, StatementSortFields, "created_at")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormReconciliationStatementRepository) applyFilterWithoutPagination(query *gorm.DB, filter ledger.StatementFilter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("statement_number ILIKE ? OR supplier_name ILIKE ?",
			searchPattern, searchPattern)
	}

	if filter.SupplierID != nil {
		query = query.Where("supplier_id = ?", *filter.SupplierID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.FromDate != nil {
		query = query.Where("period_start >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("period_end <= ?", *filter.ToDate)
	}
	if filter.ActiveOnly {
		query = query.Where("status <> ?", ledger.StatementStatusConfirmed)
	}

	return query
}

// Ensure GormReconciliationStatementRepository implements ReconciliationStatementRepository
var _ ledger.ReconciliationStatementRepository = (*GormReconciliationStatementRepository)(nil)
