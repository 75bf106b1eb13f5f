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

// GormPaymentRequestRepository implements PaymentRequestRepository using GORM
type GormPaymentRequestRepository struct {
	db *gorm.DB
}

// NewGormPaymentRequestRepository creates a new GormPaymentRequestRepository
func NewGormPaymentRequestRepository(db *gorm.DB) *GormPaymentRequestRepository {
	return &GormPaymentRequestRepository{db: db}
}

// FindByID finds a payment request by its ID. Returns (nil, nil) when no row exists.
func (r *GormPaymentRequestRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.PaymentRequest, error) {
	var model models.PaymentRequestModel
	if err := dbFromContext(ctx, r.db).WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByNumber finds a payment request by its request number
func (r *GormPaymentRequestRepository) FindByNumber(ctx context.Context, requestNumber string) (*ledger.PaymentRequest, error) {
	var model models.PaymentRequestModel
	if err := dbFromContext(ctx, r.db).WithContext(ctx).
		Where("request_number = ?", requestNumber).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds all payment requests matching the filter
func (r *GormPaymentRequestRepository) FindAll(ctx context.Context, filter ledger.PaymentRequestFilter) ([]ledger.PaymentRequest, error) {
	var requestModels []models.PaymentRequestModel
	query := dbFromContext(ctx, r.db).WithContext(ctx).Model(&models.PaymentRequestModel{})
	query = r.applyFilter(query, filter)

	if err := query.Find(&requestModels).Error; err != nil {
		return nil, err
	}
	requests := make([]ledger.PaymentRequest, len(requestModels))
	for i, model := range requestModels {
		requests[i] = *model.ToDomain()
	}
	return requests, nil
}

// Save creates or updates a payment request
func (r *GormPaymentRequestRepository) Save(ctx context.Context, request *ledger.PaymentRequest) error {
	model := models.PaymentRequestModelFromDomain(request)
	return dbFromContext(ctx, r.db).WithContext(ctx).Save(model).Error
}

// SaveWithLock saves with optimistic locking
func (r *GormPaymentRequestRepository) SaveWithLock(ctx context.Context, request *ledger.PaymentRequest) error {
	model := models.PaymentRequestModelFromDomain(request)
	result := dbFromContext(ctx, r.db).WithContext(ctx).
		Model(model).
		Where("id = ? AND version = ?", request.ID, request.Version-1).
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Delete deletes a payment request
func (r *GormPaymentRequestRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := dbFromContext(ctx, r.db).WithContext(ctx).Delete(&models.PaymentRequestModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts payment requests matching the filter
func (r *GormPaymentRequestRepository) Count(ctx context.Context, filter ledger.PaymentRequestFilter) (int64, error) {
	var count int64
	query := dbFromContext(ctx, r.db).WithContext(ctx).Model(&models.PaymentRequestModel{})
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Summarize aggregates payment request figures, optionally scoped to one supplier
func (r *GormPaymentRequestRepository) Summarize(ctx context.Context, supplierID *uuid.UUID) (*ledger.RequestSummary, error) {
	base := dbFromContext(ctx, r.db).WithContext(ctx).Model(&models.PaymentRequestModel{})
	if supplierID != nil {
		base = base.Where("supplier_id = ?", *supplierID)
	}

	var summary ledger.RequestSummary
	if err := base.
		Select("COUNT(*) as total_count, " +
			"COUNT(*) FILTER (WHERE status = 'PENDING') as pending_count, " +
			"COUNT(*) FILTER (WHERE status = 'APPROVED') as approved_count, " +
			"COUNT(*) FILTER (WHERE status = 'PAID') as paid_count, " +
			"COALESCE(SUM(request_amount) FILTER (WHERE status = 'PENDING'), 0) as pending_amount, " +
			"COALESCE(SUM(approved_amount) FILTER (WHERE status = 'APPROVED'), 0) as approved_amount, " +
			"COALESCE(SUM(approved_amount) FILTER (WHERE status = 'PAID'), 0) as paid_amount").
		Scan(&summary).Error; err != nil {
		return nil, err
	}
	return &summary, nil
}

// GenerateRequestNumber generates the next request number
func (r *GormPaymentRequestRepository) GenerateRequestNumber(ctx context.Context) (string, error) {
	return nextDocumentNumber(dbFromContext(ctx, r.db).WithContext(ctx),
		&models.PaymentRequestModel{}, "request_number", "QK")
}

// applyFilter applies filter options to the query
func (r *GormPaymentRequestRepository) applyFilter(query *gorm.DB, filter ledger.PaymentRequestFilter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, PaymentRequestSortFields, "created_at")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormPaymentRequestRepository) applyFilterWithoutPagination(query *gorm.DB, filter ledger.PaymentRequestFilter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("request_number ILIKE ? OR supplier_name ILIKE ? OR applicant ILIKE ?",
			searchPattern, searchPattern, searchPattern)
	}

	if filter.SupplierID != nil {
		query = query.Where("supplier_id = ?", *filter.SupplierID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.RequestType != nil {
		query = query.Where("request_type = ?", *filter.RequestType)
	}
	if filter.Applicant != nil {
		query = query.Where("applicant = ?", *filter.Applicant)
	}
	if filter.FromDate != nil {
		query = query.Where("created_at >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("created_at <= ?", *filter.ToDate)
	}

	return query
}

// Ensure GormPaymentRequestRepository implements PaymentRequestRepository
var _ ledger.PaymentRequestRepository = (*GormPaymentRequestRepository)(nil)
