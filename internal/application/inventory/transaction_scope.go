package inventory

import (
	"context"

	"github.com/autocare/platform/internal/domain/catalog"
	"github.com/autocare/platform/internal/domain/customer"
	"github.com/autocare/platform/internal/domain/inventory"
	"github.com/autocare/platform/internal/domain/trade"
)

// TransactionScope runs stock-moving work atomically. Every repository handed
// to fn shares one database transaction, rolled back when fn returns an error.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides the repositories touched when stock moves
type TransactionalRepositories interface {
	Products() catalog.ProductRepository
	Movements() inventory.MovementRepository
	Sales() trade.SaleRepository
	PurchaseOrders() trade.PurchaseOrderRepository
	Customers() customer.Repository
}

// NoOpTransactionScope runs fn directly against the given repositories.
// Used by tests and by single-connection stores where nesting is not needed.
type NoOpTransactionScope struct {
	repos noOpRepositories
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories
func NewNoOpTransactionScope(
	products catalog.ProductRepository,
	movements inventory.MovementRepository,
	sales trade.SaleRepository,
	orders trade.PurchaseOrderRepository,
	customers customer.Repository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{repos: noOpRepositories{
		products:  products,
		movements: movements,
		sales:     sales,
		orders:    orders,
		customers: customers,
	}}
}

// Execute runs fn without a transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(&s.repos)
}

type noOpRepositories struct {
	products  catalog.ProductRepository
	movements inventory.MovementRepository
	sales     trade.SaleRepository
	orders    trade.PurchaseOrderRepository
	customers customer.Repository
}

func (r *noOpRepositories) Products() catalog.ProductRepository { return r.products }
func (r *noOpRepositories) Movements() inventory.MovementRepository { return r.movements }
func (r *noOpRepositories) Sales() trade.SaleRepository { return r.sales }
func (r *noOpRepositories) PurchaseOrders() trade.PurchaseOrderRepository { return r.orders }
func (r *noOpRepositories) Customers() customer.Repository { return r.customers }
