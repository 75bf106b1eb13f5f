package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// CommonSortFields contains fields common to most entities
var CommonSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
}

// SupplierSortFields contains allowed sort fields for suppliers
var SupplierSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"code":         true,
	"name":         true,
	"contact_name": true,
	"status":       true,
	"credit_days":  true,
	"credit_limit": true,
}

// AccountPayableSortFields contains allowed sort fields for accounts payable
var AccountPayableSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"updated_at":     true,
	"payable_number": true,
	"supplier_id":    true,
	"supplier_name":  true,
	"source_type":    true,
	"source_number":  true,
	"total_amount":   true,
	"paid_amount":    true,
	"unpaid_amount":  true,
	"invoice_amount": true,
	"status":         true,
	"due_date":       true,
	"paid_at":        true,
}

// InvoiceSortFields contains allowed sort fields for invoices
var InvoiceSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"updated_at":     true,
	"invoice_number": true,
	"invoice_code":   true,
	"invoice_type":   true,
	"supplier_id":    true,
	"supplier_name":  true,
	"invoice_date":   true,
	"total_amount":   true,
	"matched_amount": true,
	"verify_status":  true,
	"match_status":   true,
	"verified_at":    true,
}

// PaymentRequestSortFields contains allowed sort fields for payment requests
var PaymentRequestSortFields = map[string]bool{
	"id":                true,
	"created_at":        true,
	"updated_at":        true,
	"request_number":    true,
	"supplier_id":       true,
	"supplier_name":     true,
	"request_type":      true,
	"request_amount":    true,
	"approved_amount":   true,
	"expected_pay_date": true,
	"actual_pay_date":   true,
	"applicant":         true,
	"status":            true,
	"approved_at":       true,
}

// PaymentVoucherSortFields contains allowed sort fields for payment vouchers
var PaymentVoucherSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"updated_at":     true,
	"voucher_number": true,
	"request_number": true,
	"supplier_id":    true,
	"supplier_name":  true,
	"payment_amount": true,
	"payment_date":   true,
	"status":         true,
}

// StatementSortFields contains allowed sort fields for reconciliation statements
var StatementSortFields = map[string]bool{
	"id":                    true,
	"created_at":            true,
	"updated_at":            true,
	"statement_number":      true,
	"supplier_id":           true,
	"supplier_name":         true,
	"period_start":          true,
	"period_end":            true,
	"reconciliation_amount": true,
	"confirmed_amount":      true,
	"status":                true,
	"confirmed_at":          true,
}
