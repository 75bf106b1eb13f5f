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

// GormPayableInvoiceRelationRepository implements PayableInvoiceRelationRepository using GORM
type GormPayableInvoiceRelationRepository struct {
	db *gorm.DB
}

// NewGormPayableInvoiceRelationRepository creates a new GormPayableInvoiceRelationRepository
func NewGormPayableInvoiceRelationRepository(db *gorm.DB) *GormPayableInvoiceRelationRepository {
	return &GormPayableInvoiceRelationRepository{db: db}
}

// FindByID finds a relation by its ID. Returns (nil, nil) when no row exists.
func (r *GormPayableInvoiceRelationRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.PayableInvoiceRelation, error) {
	var model models.PayableInvoiceRelationModel
	if err := dbFromContext(ctx, r.db).WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByPayable finds all relations of a payable
func (r *GormPayableInvoiceRelationRepository) FindByPayable(ctx context.Context, payableID uuid.UUID) ([]ledger.PayableInvoiceRelation, error) {
	var relationModels []models.PayableInvoiceRelationModel
	if err := dbFromContext(ctx, r.db).WithContext(ctx).
		Where("payable_id = ?", payableID).
		Order("created_at ASC").
		Find(&relationModels).Error; err != nil {
		return nil, err
	}
	return toDomainRelations(relationModels), nil
}

// FindByInvoice finds all relations of an invoice
func (r *GormPayableInvoiceRelationRepository) FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]ledger.PayableInvoiceRelation, error) {
	var relationModels []models.PayableInvoiceRelationModel
	if err := dbFromContext(ctx, r.db).WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Order("created_at ASC").
		Find(&relationModels).Error; err != nil {
		return nil, err
	}
	return toDomainRelations(relationModels), nil
}

// FindByPair finds the relation linking a payable to an invoice. At most one
// relation exists per pair. Returns (nil, nil) when no row exists.
func (r *GormPayableInvoiceRelationRepository) FindByPair(ctx context.Context, payableID, invoiceID uuid.UUID) (*ledger.PayableInvoiceRelation, error) {
	var model models.PayableInvoiceRelationModel
	if err := dbFromContext(ctx, r.db).WithContext(ctx).
		Where("payable_id = ? AND invoice_id = ?", payableID, invoiceID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindBySupplierInvoices finds all relations referencing any of the given invoices
func (r *GormPayableInvoiceRelationRepository) FindBySupplierInvoices(ctx context.Context, invoiceIDs []uuid.UUID) ([]ledger.PayableInvoiceRelation, error) {
	if len(invoiceIDs) == 0 {
		return []ledger.PayableInvoiceRelation{}, nil
	}

	var relationModels []models.PayableInvoiceRelationModel
	if err := dbFromContext(ctx, r.db).WithContext(ctx).
		Where("invoice_id IN ?", invoiceIDs).
		Find(&relationModels).Error; err != nil {
		return nil, err
	}
	return toDomainRelations(relationModels), nil
}

// Save creates or updates a relation
func (r *GormPayableInvoiceRelationRepository) Save(ctx context.Context, relation *ledger.PayableInvoiceRelation) error {
	model := models.PayableInvoiceRelationModelFromDomain(relation)
	return dbFromContext(ctx, r.db).WithContext(ctx).Save(model).Error
}

// Delete deletes a relation
func (r *GormPayableInvoiceRelationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := dbFromContext(ctx, r.db).WithContext(ctx).Delete(&models.PayableInvoiceRelationModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func toDomainRelations(relationModels []models.PayableInvoiceRelationModel) []ledger.PayableInvoiceRelation {
	relations := make([]ledger.PayableInvoiceRelation, len(relationModels))
	for i, model := range relationModels {
		relations[i] = *model.ToDomain()
	}
	return relations
}

// Ensure GormPayableInvoiceRelationRepository implements PayableInvoiceRelationRepository
var _ ledger.PayableInvoiceRelationRepository = (*GormPayableInvoiceRelationRepository)(nil)
