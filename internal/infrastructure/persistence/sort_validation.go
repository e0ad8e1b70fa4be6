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

func withCommon(fields ...string) map[string]bool {
	m := map[string]bool{
		"id":         true,
		"created_at": true,
		"updated_at": true,
	}
	for _, f := range fields {
		m[f] = true
	}
	return m
}

// Allowed sort fields per table
var (
	PartnerSortFields         = withCommon("code", "name", "type", "city", "status")
	UserSortFields            = withCommon("username", "email", "display_name", "role", "status", "last_login_at")
	ProductSortFields         = withCommon("sku", "name", "brand", "category_id", "selling_price", "purchase_price", "stock", "min_stock", "status")
	CategorySortFields        = withCommon("code", "name")
	ServiceOfferingSortFields = withCommon("code", "name", "category", "price", "duration_minutes")
	CustomerSortFields        = withCommon("name", "phone", "vehicle_plate", "total_spent", "visit_count", "last_visit_at")
	SaleSortFields            = withCommon("number", "sold_at", "total", "status", "payment_method")
	PurchaseOrderSortFields   = withCommon("number", "supplier_name", "total", "status", "expected_at", "received_at")
	MovementSortFields        = map[string]bool{"id": true, "created_at": true, "quantity": true, "type": true, "product_id": true}
	RevenueSortFields         = withCommon("date", "device_id", "total_revenue", "order_count", "computed_at", "sync_status")
	SyncLogSortFields         = map[string]bool{"id": true, "started_at": true, "finished_at": true, "status": true, "records_total": true}
)
