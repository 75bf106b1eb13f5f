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

// GormPaymentVoucherRepository implements PaymentVoucherRepository using GORM
type GormPaymentVoucherRepository struct {
	db *gorm.DB
}

// NewGormPaymentVoucherRepository creates a new GormPaymentVoucherRepository
func NewGormPaymentVoucherRepository(db *gorm.DB) *GormPaymentVoucherRepository {
	return &GormPaymentVoucherRepository{db: db}
}

// FindByID finds a payment voucher by its ID. Returns (nil, nil) when no row exists.
func (r *GormPaymentVoucherRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.PaymentVoucher, error) {
	var model models.PaymentVoucherModel
	if err := dbFromContext(ctx, r.db).WithContext(ctx).
		Preload("WriteOffDetails").
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByNumber finds a payment voucher by its voucher number
func (r *GormPaymentVoucherRepository) FindByNumber(ctx context.Context, voucherNumber string) (*ledger.PaymentVoucher, error) {
	var model models.PaymentVoucherModel
	if err := dbFromContext(ctx, r.db).WithContext(ctx).
		Preload("WriteOffDetails").
		Where("voucher_number = ?", voucherNumber).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByRequest finds the voucher issued for a payment request
func (r *GormPaymentVoucherRepository) FindByRequest(ctx context.Context, requestID uuid.UUID) (*ledger.PaymentVoucher, error) {
	var model models.PaymentVoucherModel
	if err := dbFromContext(ctx, r.db).WithContext(ctx).
		Preload("WriteOffDetails").
		Where("request_id = ?", requestID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds all payment vouchers matching the filter
func (r *GormPaymentVoucherRepository) FindAll(ctx context.Context, filter ledger.PaymentVoucherFilter) ([]ledger.PaymentVoucher, error) {
	var voucherModels []models.PaymentVoucherModel
	query := dbFromContext(ctx, r.db).WithContext(ctx).Model(&models.PaymentVoucherModel{}).
		Preload("WriteOffDetails")
	query = r.applyFilter(query, filter)

	if err := query.Find(&voucherModels).Error; err != nil {
		return nil, err
	}
	vouchers := make([]ledger.PaymentVoucher, len(voucherModels))
	for i, model := range voucherModels {
		vouchers[i] = *model.ToDomain()
	}
	return vouchers, nil
}

// Save creates or updates a payment voucher
func (r *GormPaymentVoucherRepository) Save(ctx context.Context, voucher *ledger.PaymentVoucher) error {
	model := models.PaymentVoucherModelFromDomain(voucher)
	return dbFromContext(ctx, r.db).WithContext(ctx).Save(model).Error
}

// SaveWithLock saves with optimistic locking
func (r *GormPaymentVoucherRepository) SaveWithLock(ctx context.Context, voucher *ledger.PaymentVoucher) error {
	model := models.PaymentVoucherModelFromDomain(voucher)
	result := dbFromContext(ctx, r.db).WithContext(ctx).
		Model(model).
		Where("id = ? AND version = ?", voucher.ID, voucher.Version-1).
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Delete deletes a payment voucher
func (r *GormPaymentVoucherRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := dbFromContext(ctx, r.db).WithContext(ctx).Delete(&models.PaymentVoucherModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts payment vouchers matching the filter
func (r *GormPaymentVoucherRepository) Count(ctx context.Context, filter ledger.PaymentVoucherFilter) (int64, error) {
	var count int64
	query := dbFromContext(ctx, r.db).WithContext(ctx).Model(&models.PaymentVoucherModel{})
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// GenerateVoucherNumber generates the next voucher number
func (r *GormPaymentVoucherRepository) GenerateVoucherNumber(ctx context.Context) (string, error) {
	return nextDocumentNumber(dbFromContext(ctx, r.db).WithContext(ctx),
		&models.PaymentVoucherModel{}, "voucher_number", "FK")
}

// applyFilter applies filter options to the query
func (r *GormPaymentVoucherRepository) applyFilter(query *gorm.DB, filter ledger.PaymentVoucherFilter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, PaymentVoucherSortFields, "created_at")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormPaymentVoucherRepository) applyFilterWithoutPagination(query *gorm.DB, filter ledger.PaymentVoucherFilter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("voucher_number ILIKE ? OR request_number ILIKE ? OR supplier_name ILIKE ?",
			searchPattern, searchPattern, searchPattern)
	}

	if filter.SupplierID != nil {
		query = query.Where("supplier_id = ?", *filter.SupplierID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.RequestID != nil {
		query = query.Where("request_id = ?", *filter.RequestID)
	}
	if filter.FromDate != nil {
		query = query.Where("payment_date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("payment_date <= ?", *filter.ToDate)
	}

	return query
}

// Ensure GormPaymentVoucherRepository implements PaymentVoucherRepository
var _ ledger.PaymentVoucherRepository = (*GormPaymentVoucherRepository)(nil)
