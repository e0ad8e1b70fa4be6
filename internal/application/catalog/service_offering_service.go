package catalog

import (
	"context"

	"github.com/autocare/platform/internal/domain/catalog"
	"github.com/autocare/platform/internal/domain/shared"
	"github.com/google/uuid"
)

// ServiceOfferingService manages the workshop services published by service centers
type ServiceOfferingService struct {
	repo catalog.ServiceOfferingRepository
}

// NewServiceOfferingService creates a new ServiceOfferingService
func NewServiceOfferingService(repo catalog.ServiceOfferingRepository) *ServiceOfferingService {
	return &ServiceOfferingService{repo: repo}
}

// List returns services. A caller listing its own partner sees inactive
// services too; other listings only show active ones.
func (s *ServiceOfferingService) List(ctx context.Context, callerPartnerID uuid.UUID, filter ServiceListFilter) (*shared.Paginated[ServiceResponse], error) {
	f := catalog.ServiceOfferingFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
			Search:   filter.Search,
		},
		PartnerID:  filter.PartnerID,
		Category:   filter.Category,
		ActiveOnly: filter.PartnerID == nil || *filter.PartnerID != callerPartnerID,
	}
	f.Normalize()

	services, total, err := s.repo.FindAll(ctx, f)
	if err != nil {
		return nil, err
	}
	items := make([]ServiceResponse, len(services))
	for i := range services {
		items[i] = ToServiceResponse(&services[i])
	}
	page := shared.NewPaginated(items, total, f.Page, f.PageSize)
	return &page, nil
}

// GetByID returns a service of the partner
func (s *ServiceOfferingService) GetByID(ctx context.Context, partnerID, id uuid.UUID) (*ServiceResponse, error) {
	svc, err := s.repo.FindByIDForPartner(ctx, partnerID, id)
	if err != nil {
		return nil, err
	}
	resp := ToServiceResponse(svc)
	return &resp, nil
}

// Create publishes a new service
func (s *ServiceOfferingService) Create(ctx context.Context, partnerID uuid.UUID, req CreateServiceRequest) (*ServiceResponse, error) {
	svc, err := catalog.NewServiceOffering(partnerID, req.Code, req.Name, req.Price, req.DurationMinutes)
	if err != nil {
		return nil, err
	}
	exists, err := s.repo.ExistsByCode(ctx, partnerID, svc.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Service with this code already exists")
	}
	if err := svc.Update(req.Name, req.Category, req.Description, req.Price, req.DurationMinutes); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, svc); err != nil {
		return nil, err
	}
	resp := ToServiceResponse(svc)
	return &resp, nil
}

// Update changes a service definition and availability
func (s *ServiceOfferingService) Update(ctx context.Context, partnerID, id uuid.UUID, req UpdateServiceRequest) (*ServiceResponse, error) {
	svc, err := s.repo.FindByIDForPartner(ctx, partnerID, id)
	if err != nil {
		return nil, err
	}
	if err := svc.Update(req.Name, req.Category, req.Description, req.Price, req.DurationMinutes); err != nil {
		return nil, err
	}
	if req.Active != nil {
		svc.SetActive(*req.Active)
	}
	if err := s.repo.Save(ctx, svc); err != nil {
		return nil, err
	}
	resp := ToServiceResponse(svc)
	return &resp, nil
}

// Delete removes a service
func (s *ServiceOfferingService) Delete(ctx context.Context, partnerID, id uuid.UUID) error {
	if _, err := s.repo.FindByIDForPartner(ctx, partnerID, id); err != nil {
		return err
	}
	return s.repo.DeleteForPartner(ctx, partnerID, id)
}
