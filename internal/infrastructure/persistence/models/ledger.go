// Package models contains the persistence models for the settlement domain.
// Each model maps one domain aggregate (or child entity) to its table and
// carries the ToDomain/FromDomain conversions.
package models

import (
	"time"

	"github.com/fzhange/financial-sys/internal/domain/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountPayableModel is the persistence model for AccountPayable.
type AccountPayableModel struct {
	AggregateModel
	PayableNumber  string                   `gorm:"type:varchar(50);not null;uniqueIndex"`
	SupplierID     uuid.UUID                `gorm:"type:uuid;not null;index"`
	SupplierName   string                   `gorm:"type:varchar(200);not null"`
	SourceType     ledger.PayableSourceType `gorm:"type:varchar(30);not null;index"`
	SourceID       uuid.UUID                `gorm:"type:uuid;not null;index"`
	SourceNumber   string                   `gorm:"type:varchar(50);not null"`
	TotalAmount    decimal.Decimal          `gorm:"type:decimal(18,4);not null"`
	PaidAmount     decimal.Decimal          `gorm:"type:decimal(18,4);not null"`
	UnpaidAmount   decimal.Decimal          `gorm:"type:decimal(18,4);not null;index"`
	InvoiceAmount  decimal.Decimal          `gorm:"type:decimal(18,4);not null"`
	InvoiceIDs     UUIDArray                `gorm:"type:jsonb;default:'[]'"`
	InvoiceNumbers StringArray              `gorm:"type:jsonb;default:'[]'"`
	Status         ledger.PayableStatus     `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	DueDate        *time.Time               `gorm:"index"`
	PaymentRecords []PaymentRecordModel     `gorm:"foreignKey:PayableID;references:ID"`
	Remark         string                   `gorm:"type:text"`
	PaidAt         *time.Time
	CancelledAt    *time.Time
	CancelReason   string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (AccountPayableModel) TableName() string {
	return "account_payables"
}

// ToDomain converts the persistence model to a domain AccountPayable entity.
func (m *AccountPayableModel) ToDomain() *ledger.AccountPayable {
	ap := &ledger.AccountPayable{
		BaseAggregateRoot: m.ToAggregateRoot(),
		PayableNumber:     m.PayableNumber,
		SupplierID:        m.SupplierID,
		SupplierName:      m.SupplierName,
		SourceType:        m.SourceType,
		SourceID:          m.SourceID,
		SourceNumber:      m.SourceNumber,
		TotalAmount:       m.TotalAmount,
		PaidAmount:        m.PaidAmount,
		UnpaidAmount:      m.UnpaidAmount,
		InvoiceAmount:     m.InvoiceAmount,
		InvoiceIDs:        append([]uuid.UUID{}, m.InvoiceIDs...),
		InvoiceNumbers:    append([]string{}, m.InvoiceNumbers...),
		Status:            m.Status,
		DueDate:           m.DueDate,
		Remark:            m.Remark,
		PaidAt:            m.PaidAt,
		CancelledAt:       m.CancelledAt,
		CancelReason:      m.CancelReason,
		PaymentRecords:    make([]ledger.PaymentRecord, len(m.PaymentRecords)),
	}
	for i, pr := range m.PaymentRecords {
		ap.PaymentRecords[i] = *pr.ToDomain()
	}
	return ap
}

// FromDomain populates the persistence model from a domain AccountPayable entity.
func (m *AccountPayableModel) FromDomain(ap *ledger.AccountPayable) {
	m.FromDomainAggregateRoot(ap.BaseAggregateRoot)
	m.PayableNumber = ap.PayableNumber
	m.SupplierID = ap.SupplierID
	m.SupplierName = ap.SupplierName
	m.SourceType = ap.SourceType
	m.SourceID = ap.SourceID
	m.SourceNumber = ap.SourceNumber
	m.TotalAmount = ap.TotalAmount
	m.PaidAmount = ap.PaidAmount
	m.UnpaidAmount = ap.UnpaidAmount
	m.InvoiceAmount = ap.InvoiceAmount
	m.InvoiceIDs = UUIDArray(ap.InvoiceIDs)
	m.InvoiceNumbers = StringArray(ap.InvoiceNumbers)
	m.Status = ap.Status
	m.DueDate = ap.DueDate
	m.Remark = ap.Remark
	m.PaidAt = ap.PaidAt
	m.CancelledAt = ap.CancelledAt
	m.CancelReason = ap.CancelReason
	m.PaymentRecords = make([]PaymentRecordModel, len(ap.PaymentRecords))
	for i, pr := range ap.PaymentRecords {
		m.PaymentRecords[i] = *PaymentRecordModelFromDomain(&pr)
	}
}

// AccountPayableModelFromDomain creates a new persistence model from a domain AccountPayable.
func AccountPayableModelFromDomain(ap *ledger.AccountPayable) *AccountPayableModel {
	m := &AccountPayableModel{}
	m.FromDomain(ap)
	return m
}

// PaymentRecordModel is the persistence model for PaymentRecord.
type PaymentRecordModel struct {
	ID            uuid.UUID            `gorm:"type:uuid;primary_key"`
	PaymentNumber string               `gorm:"type:varchar(50);not null;index"`
	PayableID     uuid.UUID            `gorm:"type:uuid;not null;index"`
	VoucherID     *uuid.UUID           `gorm:"type:uuid;index"`
	Amount        decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	PaymentMethod ledger.PaymentMethod `gorm:"type:varchar(30);not null"`
	PaymentDate   time.Time            `gorm:"not null"`
	Operator      string               `gorm:"type:varchar(100)"`
	Remark        string               `gorm:"type:varchar(500)"`
	AppliedAt     time.Time            `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PaymentRecordModel) TableName() string {
	return "payable_payment_records"
}

// ToDomain converts the persistence model to a domain PaymentRecord.
func (m *PaymentRecordModel) ToDomain() *ledger.PaymentRecord {
	return &ledger.PaymentRecord{
		ID:            m.ID,
		PaymentNumber: m.PaymentNumber,
		PayableID:     m.PayableID,
		VoucherID:     m.VoucherID,
		Amount:        m.Amount,
		PaymentMethod: m.PaymentMethod,
		PaymentDate:   m.PaymentDate,
		Operator:      m.Operator,
		Remark:        m.Remark,
		AppliedAt:     m.AppliedAt,
	}
}

// PaymentRecordModelFromDomain creates a new persistence model from domain.
func PaymentRecordModelFromDomain(pr *ledger.PaymentRecord) *PaymentRecordModel {
	return &PaymentRecordModel{
		ID:            pr.ID,
		PaymentNumber: pr.PaymentNumber,
		PayableID:     pr.PayableID,
		VoucherID:     pr.VoucherID,
		Amount:        pr.Amount,
		PaymentMethod: pr.PaymentMethod,
		PaymentDate:   pr.PaymentDate,
		Operator:      pr.Operator,
		Remark:        pr.Remark,
		AppliedAt:     pr.AppliedAt,
	}
}

// InvoiceModel is the persistence model for Invoice.
type InvoiceModel struct {
	AggregateModel
	InvoiceNumber  string                     `gorm:"type:varchar(50);not null;uniqueIndex:idx_invoice_number_code,priority:1"`
	InvoiceCode    string                     `gorm:"type:varchar(50);not null;uniqueIndex:idx_invoice_number_code,priority:2"`
	InvoiceType    ledger.InvoiceType         `gorm:"type:varchar(30);not null"`
	SupplierID     uuid.UUID                  `gorm:"type:uuid;not null;index"`
	SupplierName   string                     `gorm:"type:varchar(200);not null"`
	BuyerName      string                     `gorm:"type:varchar(200)"`
	BuyerTaxNumber string                     `gorm:"type:varchar(50)"`
	InvoiceDate    time.Time                  `gorm:"not null;index"`
	Amount         decimal.Decimal            `gorm:"type:decimal(18,4);not null"`
	TaxRate        decimal.Decimal            `gorm:"type:decimal(8,4);not null"`
	TaxAmount      decimal.Decimal            `gorm:"type:decimal(18,4);not null"`
	TotalAmount    decimal.Decimal            `gorm:"type:decimal(18,4);not null"`
	MatchedAmount  decimal.Decimal            `gorm:"type:decimal(18,4);not null"`
	VerifyStatus   ledger.InvoiceVerifyStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	VerifyRemark   string                     `gorm:"type:varchar(500)"`
	MatchStatus    ledger.InvoiceMatchStatus  `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	PayableIDs     UUIDArray                  `gorm:"type:jsonb;default:'[]'"`
	PayableNumbers StringArray                `gorm:"type:jsonb;default:'[]'"`
	Remark         string                     `gorm:"type:text"`
	VerifiedAt     *time.Time
	VerifiedBy     string `gorm:"type:varchar(100)"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the persistence model to a domain Invoice entity.
func (m *InvoiceModel) ToDomain() *ledger.Invoice {
	return &ledger.Invoice{
		BaseAggregateRoot: m.ToAggregateRoot(),
		InvoiceNumber:     m.InvoiceNumber,
		InvoiceCode:       m.InvoiceCode,
		InvoiceType:       m.InvoiceType,
		SupplierID:        m.SupplierID,
		SupplierName:      m.SupplierName,
		BuyerName:         m.BuyerName,
		BuyerTaxNumber:    m.BuyerTaxNumber,
		InvoiceDate:       m.InvoiceDate,
		Amount:            m.Amount,
		TaxRate:           m.TaxRate,
		TaxAmount:         m.TaxAmount,
		TotalAmount:       m.TotalAmount,
		MatchedAmount:     m.MatchedAmount,
		VerifyStatus:      m.VerifyStatus,
		VerifyRemark:      m.VerifyRemark,
		MatchStatus:       m.MatchStatus,
		PayableIDs:        append([]uuid.UUID{}, m.PayableIDs...),
		PayableNumbers:    append([]string{}, m.PayableNumbers...),
		Remark:            m.Remark,
		VerifiedAt:        m.VerifiedAt,
		VerifiedBy:        m.VerifiedBy,
	}
}

// FromDomain populates the persistence model from a domain Invoice entity.
func (m *InvoiceModel) FromDomain(inv *ledger.Invoice) {
	m.FromDomainAggregateRoot(inv.BaseAggregateRoot)
	m.InvoiceNumber = inv.InvoiceNumber
	m.InvoiceCode = inv.InvoiceCode
	m.InvoiceType = inv.InvoiceType
	m.SupplierID = inv.SupplierID
	m.SupplierName = inv.SupplierName
	m.BuyerName = inv.BuyerName
	m.BuyerTaxNumber = inv.BuyerTaxNumber
	m.InvoiceDate = inv.InvoiceDate
	m.Amount = inv.Amount
	m.TaxRate = inv.TaxRate
	m.TaxAmount = inv.TaxAmount
	m.TotalAmount = inv.TotalAmount
	m.MatchedAmount = inv.MatchedAmount
	m.VerifyStatus = inv.VerifyStatus
	m.VerifyRemark = inv.VerifyRemark
	m.MatchStatus = inv.MatchStatus
	m.PayableIDs = UUIDArray(inv.PayableIDs)
	m.PayableNumbers = StringArray(inv.PayableNumbers)
	m.Remark = inv.Remark
	m.VerifiedAt = inv.VerifiedAt
	m.VerifiedBy = inv.VerifiedBy
}

// InvoiceModelFromDomain creates a new persistence model from a domain Invoice.
func InvoiceModelFromDomain(inv *ledger.Invoice) *InvoiceModel {
	m := &InvoiceModel{}
	m.FromDomain(inv)
	return m
}

// PayableInvoiceRelationModel is the persistence model for PayableInvoiceRelation.
// The unique (payable_id, invoice_id) index enforces the one-relation-per-pair rule.
type PayableInvoiceRelationModel struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primary_key"`
	PayableID          uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_relation_payable_invoice,priority:1"`
	PayableNumber      string          `gorm:"type:varchar(50);not null"`
	InvoiceID          uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_relation_payable_invoice,priority:2;index"`
	InvoiceNumber      string          `gorm:"type:varchar(50);not null"`
	InvoiceTotalAmount decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	RelatedAmount      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Operator           string          `gorm:"type:varchar(100)"`
	CreatedAt          time.Time       `gorm:"not null"`
	UpdatedAt          time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PayableInvoiceRelationModel) TableName() string {
	return "payable_invoice_relations"
}

// ToDomain converts the persistence model to a domain PayableInvoiceRelation.
func (m *PayableInvoiceRelationModel) ToDomain() *ledger.PayableInvoiceRelation {
	return &ledger.PayableInvoiceRelation{
		ID:                 m.ID,
		PayableID:          m.PayableID,
		PayableNumber:      m.PayableNumber,
		InvoiceID:          m.InvoiceID,
		InvoiceNumber:      m.InvoiceNumber,
		InvoiceTotalAmount: m.InvoiceTotalAmount,
		RelatedAmount:      m.RelatedAmount,
		Operator:           m.Operator,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

// PayableInvoiceRelationModelFromDomain creates a new persistence model from domain.
func PayableInvoiceRelationModelFromDomain(rel *ledger.PayableInvoiceRelation) *PayableInvoiceRelationModel {
	return &PayableInvoiceRelationModel{
		ID:                 rel.ID,
		PayableID:          rel.PayableID,
		PayableNumber:      rel.PayableNumber,
		InvoiceID:          rel.InvoiceID,
		InvoiceNumber:      rel.InvoiceNumber,
		InvoiceTotalAmount: rel.InvoiceTotalAmount,
		RelatedAmount:      rel.RelatedAmount,
		Operator:           rel.Operator,
		CreatedAt:          rel.CreatedAt,
		UpdatedAt:          rel.UpdatedAt,
	}
}

// PaymentRequestModel is the persistence model for PaymentRequest.
type PaymentRequestModel struct {
	AggregateModel
	RequestNumber   string               `gorm:"type:varchar(50);not null;uniqueIndex"`
	SupplierID      uuid.UUID            `gorm:"type:uuid;not null;index"`
	SupplierName    string               `gorm:"type:varchar(200);not null"`
	RequestType     ledger.RequestType   `gorm:"type:varchar(30);not null"`
	PayableIDs      UUIDArray            `gorm:"type:jsonb;default:'[]'"`
	PayableNumbers  StringArray          `gorm:"type:jsonb;default:'[]'"`
	InvoiceIDs      UUIDArray            `gorm:"type:jsonb;default:'[]'"`
	InvoiceNumbers  StringArray          `gorm:"type:jsonb;default:'[]'"`
	RequestAmount   decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	ApprovedAmount  decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	PaymentMethod   ledger.PaymentMethod `gorm:"type:varchar(30);not null"`
	BankAccount     string               `gorm:"type:varchar(100)"`
	BankName        string               `gorm:"type:varchar(200)"`
	ExpectedPayDate *time.Time
	ActualPayDate   *time.Time
	Applicant       string               `gorm:"type:varchar(100);not null;index"`
	Approver        string               `gorm:"type:varchar(100)"`
	ApprovalRemark  string               `gorm:"type:varchar(500)"`
	Status          ledger.RequestStatus `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	VoucherID       *uuid.UUID           `gorm:"type:uuid;index"`
	Remark          string               `gorm:"type:text"`
	ApprovedAt      *time.Time
	RejectedAt      *time.Time
	CancelledAt     *time.Time
}

// TableName returns the table name for GORM
func (PaymentRequestModel) TableName() string {
	return "payment_requests"
}

// ToDomain converts the persistence model to a domain PaymentRequest entity.
func (m *PaymentRequestModel) ToDomain() *ledger.PaymentRequest {
	return &ledger.PaymentRequest{
		BaseAggregateRoot: m.ToAggregateRoot(),
		RequestNumber:     m.RequestNumber,
		SupplierID:        m.SupplierID,
		SupplierName:      m.SupplierName,
		RequestType:       m.RequestType,
		PayableIDs:        append([]uuid.UUID{}, m.PayableIDs...),
		PayableNumbers:    append([]string{}, m.PayableNumbers...),
		InvoiceIDs:        append([]uuid.UUID{}, m.InvoiceIDs...),
		InvoiceNumbers:    append([]string{}, m.InvoiceNumbers...),
		RequestAmount:     m.RequestAmount,
		ApprovedAmount:    m.ApprovedAmount,
		PaymentMethod:     m.PaymentMethod,
		BankAccount:       m.BankAccount,
		BankName:          m.BankName,
		ExpectedPayDate:   m.ExpectedPayDate,
		ActualPayDate:     m.ActualPayDate,
		Applicant:         m.Applicant,
		Approver:          m.Approver,
		ApprovalRemark:    m.ApprovalRemark,
		Status:            m.Status,
		VoucherID:         m.VoucherID,
		Remark:            m.Remark,
		ApprovedAt:        m.ApprovedAt,
		RejectedAt:        m.RejectedAt,
		CancelledAt:       m.CancelledAt,
	}
}

// FromDomain populates the persistence model from a domain PaymentRequest entity.
func (m *PaymentRequestModel) FromDomain(pr *ledger.PaymentRequest) {
	m.FromDomainAggregateRoot(pr.BaseAggregateRoot)
	m.RequestNumber = pr.RequestNumber
	m.SupplierID = pr.SupplierID
	m.SupplierName = pr.SupplierName
	m.RequestType = pr.RequestType
	m.PayableIDs = UUIDArray(pr.PayableIDs)
	m.PayableNumbers = StringArray(pr.PayableNumbers)
	m.InvoiceIDs = UUIDArray(pr.InvoiceIDs)
	m.InvoiceNumbers = StringArray(pr.InvoiceNumbers)
	m.RequestAmount = pr.RequestAmount
	m.ApprovedAmount = pr.ApprovedAmount
	m.PaymentMethod = pr.PaymentMethod
	m.BankAccount = pr.BankAccount
	m.BankName = pr.BankName
	m.ExpectedPayDate = pr.ExpectedPayDate
	m.ActualPayDate = pr.ActualPayDate
	m.Applicant = pr.Applicant
	m.Approver = pr.Approver
	m.ApprovalRemark = pr.ApprovalRemark
	m.Status = pr.Status
	m.VoucherID = pr.VoucherID
	m.Remark = pr.Remark
	m.ApprovedAt = pr.ApprovedAt
	m.RejectedAt = pr.RejectedAt
	m.CancelledAt = pr.CancelledAt
}

// PaymentRequestModelFromDomain creates a new persistence model from a domain PaymentRequest.
func PaymentRequestModelFromDomain(pr *ledger.PaymentRequest) *PaymentRequestModel {
	m := &PaymentRequestModel{}
	m.FromDomain(pr)
	return m
}

// PaymentVoucherModel is the persistence model for PaymentVoucher.
type PaymentVoucherModel struct {
	AggregateModel
	VoucherNumber   string                 `gorm:"type:varchar(50);not null;uniqueIndex"`
	RequestID       *uuid.UUID             `gorm:"type:uuid;index"`
	RequestNumber   string                 `gorm:"type:varchar(50)"`
	SupplierID      uuid.UUID              `gorm:"type:uuid;not null;index"`
	SupplierName    string                 `gorm:"type:varchar(200);not null"`
	PaymentAmount   decimal.Decimal        `gorm:"type:decimal(18,4);not null"`
	PaymentMethod   ledger.PaymentMethod   `gorm:"type:varchar(30);not null"`
	BankAccount     string                 `gorm:"type:varchar(100)"`
	BankName        string                 `gorm:"type:varchar(200)"`
	PaymentDate     time.Time              `gorm:"not null;index"`
	WriteOffDetails []WriteOffDetailModel  `gorm:"foreignKey:VoucherID;references:ID"`
	PayableIDs      UUIDArray              `gorm:"type:jsonb;default:'[]'"`
	PayableNumbers  StringArray            `gorm:"type:jsonb;default:'[]'"`
	Operator        string                 `gorm:"type:varchar(100)"`
	Status          ledger.VoucherStatus   `gorm:"type:varchar(20);not null;default:'COMPLETED';index"`
	Remark          string                 `gorm:"type:text"`
	CancelledAt     *time.Time
	CancelReason    string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (PaymentVoucherModel) TableName() string {
	return "payment_vouchers"
}

// ToDomain converts the persistence model to a domain PaymentVoucher entity.
func (m *PaymentVoucherModel) ToDomain() *ledger.PaymentVoucher {
	pv := &ledger.PaymentVoucher{
		BaseAggregateRoot: m.ToAggregateRoot(),
		VoucherNumber:     m.VoucherNumber,
		RequestID:         m.RequestID,
		RequestNumber:     m.RequestNumber,
		SupplierID:        m.SupplierID,
		SupplierName:      m.SupplierName,
		PaymentAmount:     m.PaymentAmount,
		PaymentMethod:     m.PaymentMethod,
		BankAccount:       m.BankAccount,
		BankName:          m.BankName,
		PaymentDate:       m.PaymentDate,
		PayableIDs:        append([]uuid.UUID{}, m.PayableIDs...),
		PayableNumbers:    append([]string{}, m.PayableNumbers...),
		Operator:          m.Operator,
		Status:            m.Status,
		Remark:            m.Remark,
		CancelledAt:       m.CancelledAt,
		CancelReason:      m.CancelReason,
		WriteOffDetails:   make([]ledger.WriteOffDetail, len(m.WriteOffDetails)),
	}
	for i, d := range m.WriteOffDetails {
		pv.WriteOffDetails[i] = *d.ToDomain()
	}
	return pv
}

// FromDomain populates the persistence model from a domain PaymentVoucher entity.
func (m *PaymentVoucherModel) FromDomain(pv *ledger.PaymentVoucher) {
	m.FromDomainAggregateRoot(pv.BaseAggregateRoot)
	m.VoucherNumber = pv.VoucherNumber
	m.RequestID = pv.RequestID
	m.RequestNumber = pv.RequestNumber
	m.SupplierID = pv.SupplierID
	m.SupplierName = pv.SupplierName
	m.PaymentAmount = pv.PaymentAmount
	m.PaymentMethod = pv.PaymentMethod
	m.BankAccount = pv.BankAccount
	m.BankName = pv.BankName
	m.PaymentDate = pv.PaymentDate
	m.PayableIDs = UUIDArray(pv.PayableIDs)
	m.PayableNumbers = StringArray(pv.PayableNumbers)
	m.Operator = pv.Operator
	m.Status = pv.Status
	m.Remark = pv.Remark
	m.CancelledAt = pv.CancelledAt
	m.CancelReason = pv.CancelReason
	m.WriteOffDetails = make([]WriteOffDetailModel, len(pv.WriteOffDetails))
	for i, d := range pv.WriteOffDetails {
		m.WriteOffDetails[i] = *WriteOffDetailModelFromDomain(&d)
	}
}

// PaymentVoucherModelFromDomain creates a new persistence model from a domain PaymentVoucher.
func PaymentVoucherModelFromDomain(pv *ledger.PaymentVoucher) *PaymentVoucherModel {
	m := &PaymentVoucherModel{}
	m.FromDomain(pv)
	return m
}

// WriteOffDetailModel is the persistence model for WriteOffDetail.
type WriteOffDetailModel struct {
	ID              uuid.UUID       `gorm:"type:uuid;primary_key"`
	VoucherID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	PayableID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	PayableNumber   string          `gorm:"type:varchar(50);not null"`
	PayableAmount   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	WriteOffAmount  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	RemainingAmount decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	WrittenOffAt    time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (WriteOffDetailModel) TableName() string {
	return "voucher_write_off_details"
}

// ToDomain converts the persistence model to a domain WriteOffDetail.
func (m *WriteOffDetailModel) ToDomain() *ledger.WriteOffDetail {
	return &ledger.WriteOffDetail{
		ID:              m.ID,
		VoucherID:       m.VoucherID,
		PayableID:       m.PayableID,
		PayableNumber:   m.PayableNumber,
		PayableAmount:   m.PayableAmount,
		WriteOffAmount:  m.WriteOffAmount,
		RemainingAmount: m.RemainingAmount,
		WrittenOffAt:    m.WrittenOffAt,
	}
}

// WriteOffDetailModelFromDomain creates a new persistence model from domain.
func WriteOffDetailModelFromDomain(d *ledger.WriteOffDetail) *WriteOffDetailModel {
	return &WriteOffDetailModel{
		ID:              d.ID,
		VoucherID:       d.VoucherID,
		PayableID:       d.PayableID,
		PayableNumber:   d.PayableNumber,
		PayableAmount:   d.PayableAmount,
		WriteOffAmount:  d.WriteOffAmount,
		RemainingAmount: d.RemainingAmount,
		WrittenOffAt:    d.WrittenOffAt,
	}
}

// ReconciliationStatementModel is the persistence model for ReconciliationStatement.
type ReconciliationStatementModel struct {
	AggregateModel
	StatementNumber      string                       `gorm:"type:varchar(50);not null;uniqueIndex"`
	SupplierID           uuid.UUID                    `gorm:"type:uuid;not null;index"`
	SupplierName         string                       `gorm:"type:varchar(200);not null"`
	PeriodStart          time.Time                    `gorm:"not null;index"`
	PeriodEnd            time.Time                    `gorm:"not null"`
	Receipts             []ReconciliationReceiptModel `gorm:"foreignKey:StatementID;references:ID"`
	ReconciliationAmount decimal.Decimal              `gorm:"type:decimal(18,4);not null"`
	ConfirmedAmount      decimal.Decimal              `gorm:"type:decimal(18,4);not null"`
	Status               ledger.StatementStatus       `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	DisputeReason        string                       `gorm:"type:varchar(500)"`
	Remark               string                       `gorm:"type:text"`
	ConfirmedAt          *time.Time
	ConfirmedBy          string     `gorm:"type:varchar(100)"`
	PayableID            *uuid.UUID `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (ReconciliationStatementModel) TableName() string {
	return "reconciliation_statements"
}

// ToDomain converts the persistence model to a domain ReconciliationStatement entity.
func (m *ReconciliationStatementModel) ToDomain() *ledger.ReconciliationStatement {
	st := &ledger.ReconciliationStatement{
		BaseAggregateRoot:    m.ToAggregateRoot(),
		StatementNumber:      m.StatementNumber,
		SupplierID:           m.SupplierID,
		SupplierName:         m.SupplierName,
		PeriodStart:          m.PeriodStart,
		PeriodEnd:            m.PeriodEnd,
		ReconciliationAmount: m.ReconciliationAmount,
		ConfirmedAmount:      m.ConfirmedAmount,
		Status:               m.Status,
		DisputeReason:        m.DisputeReason,
		Remark:               m.Remark,
		ConfirmedAt:          m.ConfirmedAt,
		ConfirmedBy:          m.ConfirmedBy,
		PayableID:            m.PayableID,
		Receipts:             make([]ledger.ReconciliationReceipt, len(m.Receipts)),
	}
	for i, r := range m.Receipts {
		st.Receipts[i] = *r.ToDomain()
	}
	return st
}

// FromDomain populates the persistence model from a domain ReconciliationStatement entity.
func (m *ReconciliationStatementModel) FromDomain(st *ledger.ReconciliationStatement) {
	m.FromDomainAggregateRoot(st.BaseAggregateRoot)
	m.StatementNumber = st.StatementNumber
	m.SupplierID = st.SupplierID
	m.SupplierName = st.SupplierName
	m.PeriodStart = st.PeriodStart
	m.PeriodEnd = st.PeriodEnd
	m.ReconciliationAmount = st.ReconciliationAmount
	m.ConfirmedAmount = st.ConfirmedAmount
	m.Status = st.Status
	m.DisputeReason = st.DisputeReason
	m.Remark = st.Remark
	m.ConfirmedAt = st.ConfirmedAt
	m.ConfirmedBy = st.ConfirmedBy
	m.PayableID = st.PayableID
	m.Receipts = make([]ReconciliationReceiptModel, len(st.Receipts))
	for i, r := range st.Receipts {
		m.Receipts[i] = *ReconciliationReceiptModelFromDomain(&r)
	}
}

// ReconciliationStatementModelFromDomain creates a new persistence model from domain.
func ReconciliationStatementModelFromDomain(st *ledger.ReconciliationStatement) *ReconciliationStatementModel {
	m := &ReconciliationStatementModel{}
	m.FromDomain(st)
	return m
}

// ReconciliationReceiptModel is the persistence model for ReconciliationReceipt.
type ReconciliationReceiptModel struct {
	ID                  uuid.UUID                 `gorm:"type:uuid;primary_key"`
	StatementID         uuid.UUID                 `gorm:"type:uuid;not null;index"`
	ReceiptNumber       string                    `gorm:"type:varchar(50);not null"`
	ReceiptDate         time.Time                 `gorm:"not null"`
	PurchaseOrderNumber string                    `gorm:"type:varchar(50)"`
	SKUCount            int                       `gorm:"not null;default:0"`
	GoodQuantity        int                       `gorm:"not null;default:0"`
	DefectQuantity      int                       `gorm:"not null;default:0"`
	Category            string                    `gorm:"type:varchar(100)"`
	HasTax              bool                      `gorm:"not null;default:false"`
	ReceiptAmount       decimal.Decimal           `gorm:"type:decimal(18,4);not null"`
	PayableAmount       decimal.Decimal           `gorm:"type:decimal(18,4);not null"`
	MatchStatus         ledger.ReceiptMatchStatus `gorm:"type:varchar(20);not null;default:'PENDING'"`
	Remark              string                    `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (ReconciliationReceiptModel) TableName() string {
	return "reconciliation_receipts"
}

// ToDomain converts the persistence model to a domain ReconciliationReceipt.
func (m *ReconciliationReceiptModel) ToDomain() *ledger.ReconciliationReceipt {
	return &ledger.ReconciliationReceipt{
		ID:                  m.ID,
		StatementID:         m.StatementID,
		ReceiptNumber:       m.ReceiptNumber,
		ReceiptDate:         m.ReceiptDate,
		PurchaseOrderNumber: m.PurchaseOrderNumber,
		SKUCount:            m.SKUCount,
		GoodQuantity:        m.GoodQuantity,
		DefectQuantity:      m.DefectQuantity,
		Category:            m.Category,
		HasTax:              m.HasTax,
		ReceiptAmount:       m.ReceiptAmount,
		PayableAmount:       m.PayableAmount,
		MatchStatus:         m.MatchStatus,
		Remark:              m.Remark,
	}
}

// ReconciliationReceiptModelFromDomain creates a new persistence model from domain.
func ReconciliationReceiptModelFromDomain(r *ledger.ReconciliationReceipt) *ReconciliationReceiptModel {
	return &ReconciliationReceiptModel{
		ID:                  r.ID,
		StatementID:         r.StatementID,
		ReceiptNumber:       r.ReceiptNumber,
		ReceiptDate:         r.ReceiptDate,
		PurchaseOrderNumber: r.PurchaseOrderNumber,
		SKUCount:            r.SKUCount,
		GoodQuantity:        r.GoodQuantity,
		DefectQuantity:      r.DefectQuantity,
		Category:            r.Category,
		HasTax:              r.HasTax,
		ReceiptAmount:       r.ReceiptAmount,
		PayableAmount:       r.PayableAmount,
		MatchStatus:         r.MatchStatus,
		Remark:              r.Remark,
	}
}
