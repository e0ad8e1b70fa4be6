package persistence

import (
	"github.com/autocare/platform/internal/domain/catalog"
	"github.com/autocare/platform/internal/domain/customer"
	"github.com/autocare/platform/internal/domain/identity"
	"github.com/autocare/platform/internal/domain/inventory"
	"github.com/autocare/platform/internal/domain/revenue"
	"github.com/autocare/platform/internal/domain/settings"
	"github.com/autocare/platform/internal/domain/trade"
)

// ServerModels lists every table of the platform database
func ServerModels() []any {
	return []any{
		&identity.Partner{},
		&identity.User{},
		&catalog.Category{},
		&catalog.Product{},
		&catalog.ServiceOffering{},
		&customer.Customer{},
		&trade.Sale{},
		&trade.SaleItem{},
		&trade.PurchaseOrder{},
		&trade.PurchaseOrderItem{},
		&inventory.StockMovement{},
		&settings.Setting{},
		&revenue.RevenueData{},
		&revenue.SyncLog{},
	}
}
