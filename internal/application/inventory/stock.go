package inventory

import (
	"context"
	"errors"

	"github.com/autocare/platform/internal/domain/catalog"
	"github.com/autocare/platform/internal/domain/inventory"
	"github.com/autocare/platform/internal/domain/shared"
	"github.com/google/uuid"
)

// StockChange describes one product quantity change inside a transaction
type StockChange struct {
	PartnerID     uuid.UUID
	ProductID     uuid.UUID
	Type          inventory.MovementType
	Quantity      int
	ReferenceType string
	ReferenceID   *uuid.UUID
	Note          string
	CreatedBy     *uuid.UUID
}

// MoveStock locks the product, applies the change and records the movement.
// The returned product carries any stock.low event raised by the change.
func MoveStock(ctx context.Context, repos TransactionalRepositories, c StockChange) (*catalog.Product, *inventory.StockMovement, error) {
	product, err := repos.Products().FindByIDForUpdate(ctx, c.PartnerID, c.ProductID)
	if err != nil {
		return nil, nil, err
	}
	if err := product.ChangeStock(c.Quantity); err != nil {
		if errors.Is(err, shared.ErrInsufficientStock) {
			return nil, nil, shared.NewDomainError("INSUFFICIENT_STOCK", "Insufficient stock for "+product.SKU)
		}
		return nil, nil, err
	}
	if err := repos.Products().Save(ctx, product); err != nil {
		return nil, nil, err
	}

	mv, err := inventory.NewStockMovement(c.PartnerID, product.ID, c.Type, c.Quantity, product.Stock)
	if err != nil {
		return nil, nil, err
	}
	mv.ReferenceType = c.ReferenceType
	mv.ReferenceID = c.ReferenceID
	mv.WithNote(c.Note).WithCreatedBy(c.CreatedBy)
	if err := repos.Movements().Create(ctx, mv); err != nil {
		return nil, nil, err
	}
	return product, mv, nil
}

// CollectEvents drains the pending domain events of the given products
func CollectEvents(products ...*catalog.Product) []shared.DomainEvent {
	var events []shared.DomainEvent
	for _, p := range products {
		events = append(events, p.GetDomainEvents()...)
		p.ClearDomainEvents()
	}
	return events
}
