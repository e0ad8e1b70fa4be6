package customer

import (
	"context"

	"github.com/autocare/platform/internal/domain/customer"
	"github.com/autocare/platform/internal/domain/shared"
	"github.com/google/uuid"
)

// CustomerService handles customer-related business operations
type CustomerService struct {
	customerRepo customer.Repository
}

// NewCustomerService creates a new CustomerService
func NewCustomerService(customerRepo customer.Repository) *CustomerService {
	return &CustomerService{customerRepo: customerRepo}
}

// Create creates a new customer
func (s *CustomerService) Create(ctx context.Context, partnerID, userID uuid.UUID, req CreateCustomerRequest) (*CustomerResponse, error) {
	c, err := customer.NewCustomer(partnerID, req.Name, req.Phone)
	if err != nil {
		return nil, err
	}
	if err := c.Update(req.Name, req.Phone, req.Email, req.VehiclePlate, req.VehicleModel, req.Notes); err != nil {
		return nil, err
	}
	c.SetCreatedBy(userID)

	if err := s.customerRepo.Save(ctx, c); err != nil {
		return nil, err
	}
	response := ToCustomerResponse(c)
	return &response, nil
}

// GetByID retrieves a customer by ID
func (s *CustomerService) GetByID(ctx context.Context, partnerID, id uuid.UUID) (*CustomerResponse, error) {
	c, err := s.customerRepo.FindByIDForPartner(ctx, partnerID, id)
	if err != nil {
		return nil, err
	}
	response := ToCustomerResponse(c)
	return &response, nil
}

// List returns a page of customers. Search matches name, phone and plate.
func (s *CustomerService) List(ctx context.Context, partnerID uuid.UUID, filter shared.Filter) (*shared.Paginated[CustomerResponse], error) {
	filter.Normalize()
	customers, total, err := s.customerRepo.FindAllForPartner(ctx, partnerID, filter)
	if err != nil {
		return nil, err
	}
	items := make([]CustomerResponse, len(customers))
	for i := range customers {
		items[i] = ToCustomerResponse(&customers[i])
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

// Update updates a customer's contact and vehicle details
func (s *CustomerService) Update(ctx context.Context, partnerID, id uuid.UUID, req UpdateCustomerRequest) (*CustomerResponse, error) {
	c, err := s.customerRepo.FindByIDForPartner(ctx, partnerID, id)
	if err != nil {
		return nil, err
	}

	name, phone, email := c.Name, c.Phone, c.Email
	plate, model, notes := c.VehiclePlate, c.VehicleModel, c.Notes
	if req.Name != nil {
		name = *req.Name
	}
	if req.Phone != nil {
		phone = *req.Phone
	}
	if req.Email != nil {
		email = *req.Email
	}
	if req.VehiclePlate != nil {
		plate = *req.VehiclePlate
	}
	if req.VehicleModel != nil {
		model = *req.VehicleModel
	}
	if req.Notes != nil {
		notes = *req.Notes
	}
	if err := c.Update(name, phone, email, plate, model, notes); err != nil {
		return nil, err
	}

	if err := s.customerRepo.Save(ctx, c); err != nil {
		return nil, err
	}
	response := ToCustomerResponse(c)
	return &response, nil
}

// Delete deletes a customer
func (s *CustomerService) Delete(ctx context.Context, partnerID, id uuid.UUID) error {
	if _, err := s.customerRepo.FindByIDForPartner(ctx, partnerID, id); err != nil {
		return err
	}
	return s.customerRepo.DeleteForPartner(ctx, partnerID, id)
}
