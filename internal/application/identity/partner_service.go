package identity

import (
	"context"

	"github.com/autocare/platform/internal/domain/identity"
	"github.com/autocare/platform/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PartnerService manages partner accounts (admin only, except ListServiceCenters)
type PartnerService struct {
	partnerRepo identity.PartnerRepository
	logger      *zap.Logger
}

// NewPartnerService creates a new partner service
func NewPartnerService(partnerRepo identity.PartnerRepository, logger *zap.Logger) *PartnerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PartnerService{partnerRepo: partnerRepo, logger: logger}
}

// List returns a page of partners
func (s *PartnerService) List(ctx context.Context, filter PartnerListFilter) (*shared.Paginated[PartnerResponse], error) {
	f := identity.PartnerFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
			Search:   filter.Search,
		},
		Type:   filter.Type,
		Status: filter.Status,
		City:   filter.City,
	}
	f.Normalize()
	partners, total, err := s.partnerRepo.FindAll(ctx, f)
	if err != nil {
		return nil, err
	}
	page := shared.NewPaginated(ToPartnerResponses(partners), total, f.Page, f.PageSize)
	return &page, nil
}

// ListServiceCenters returns active service centers, visible to every authenticated user
func (s *PartnerService) ListServiceCenters(ctx context.Context, filter PartnerListFilter) (*shared.Paginated[PartnerResponse], error) {
	filter.Type = identity.PartnerTypeServiceCenter
	filter.Status = identity.PartnerStatusActive
	return s.List(ctx, filter)
}

// Get returns one partner
func (s *PartnerService) Get(ctx context.Context, id uuid.UUID) (*PartnerResponse, error) {
	p, err := s.partnerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToPartnerResponse(p)
	return &resp, nil
}

// Create registers a new partner
func (s *PartnerService) Create(ctx context.Context, req CreatePartnerRequest) (*PartnerResponse, error) {
	p, err := identity.NewPartner(req.Code, req.Name, req.Type)
	if err != nil {
		return nil, err
	}
	exists, err := s.partnerRepo.ExistsByCode(ctx, p.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Partner code is already in use")
	}
	if err := p.Update(req.Name, req.Phone, req.Email, req.Address, req.City); err != nil {
		return nil, err
	}
	if err := s.partnerRepo.Save(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info("Partner created", zap.String("partner_id", p.ID.String()), zap.String("code", p.Code))
	resp := ToPartnerResponse(p)
	return &resp, nil
}

// Update changes the descriptive fields of a partner
func (s *PartnerService) Update(ctx context.Context, id uuid.UUID, req UpdatePartnerRequest) (*PartnerResponse, error) {
	p, err := s.partnerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := p.Update(req.Name, req.Phone, req.Email, req.Address, req.City); err != nil {
		return nil, err
	}
	if err := s.partnerRepo.Save(ctx, p); err != nil {
		return nil, err
	}
	resp := ToPartnerResponse(p)
	return &resp, nil
}

// Suspend blocks every user of the partner from logging in
func (s *PartnerService) Suspend(ctx context.Context, id uuid.UUID) (*PartnerResponse, error) {
	return s.changeStatus(ctx, id, (*identity.Partner).Suspend)
}

// Activate re-enables a suspended partner
func (s *PartnerService) Activate(ctx context.Context, id uuid.UUID) (*PartnerResponse, error) {
	return s.changeStatus(ctx, id, (*identity.Partner).Activate)
}

// Delete removes a partner
func (s *PartnerService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.partnerRepo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.partnerRepo.Delete(ctx, id)
}

func (s *PartnerService) changeStatus(ctx context.Context, id uuid.UUID, apply func(*identity.Partner) error) (*PartnerResponse, error) {
	p, err := s.partnerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := apply(p); err != nil {
		return nil, err
	}
	if err := s.partnerRepo.Save(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info("Partner status changed", zap.String("partner_id", p.ID.String()), zap.String("status", string(p.Status)))
	resp := ToPartnerResponse(p)
	return &resp, nil
}
