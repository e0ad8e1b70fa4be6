package identity

import (
	"context"
	"time"

	"github.com/autocare/platform/internal/domain/identity"
	"github.com/autocare/platform/internal/domain/shared"
	"github.com/autocare/platform/internal/infrastructure/auth"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UserService manages platform users. Managers only see and manage the users
// of their own partner and can never grant the admin role.
type UserService struct {
	userRepo    identity.UserRepository
	partnerRepo identity.PartnerRepository
	blacklist   auth.TokenBlacklist
	revokeTTL   time.Duration
	logger      *zap.Logger
}

// NewUserService creates a new user service. revokeTTL should cover the
// longest token lifetime so a disabled user's tokens stay rejected.
func NewUserService(
	userRepo identity.UserRepository,
	partnerRepo identity.PartnerRepository,
	blacklist auth.TokenBlacklist,
	revokeTTL time.Duration,
	logger *zap.Logger,
) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{
		userRepo:    userRepo,
		partnerRepo: partnerRepo,
		blacklist:   blacklist,
		revokeTTL:   revokeTTL,
		logger:      logger,
	}
}

// List returns a page of users visible to the actor
func (s *UserService) List(ctx context.Context, actor Actor, filter UserListFilter) (*shared.Paginated[UserResponse], error) {
	f := identity.UserFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
			Search:   filter.Search,
		},
		PartnerID: filter.PartnerID,
		Role:      filter.Role,
		Status:    filter.Status,
	}
	// Non-admins only see their own partner
	if !actor.IsAdmin() {
		f.PartnerID = &actor.PartnerID
	}
	f.Normalize()

	users, total, err := s.userRepo.FindAll(ctx, f)
	if err != nil {
		return nil, err
	}
	items := make([]UserResponse, len(users))
	for i := range users {
		items[i] = ToUserResponse(&users[i])
	}
	page := shared.NewPaginated(items, total, f.Page, f.PageSize)
	return &page, nil
}

// Get returns one user
func (s *UserService) Get(ctx context.Context, actor Actor, id uuid.UUID) (*UserResponse, error) {
	user, err := s.find(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	resp := ToUserResponse(user)
	return &resp, nil
}

// Create adds a user. Admins may create users for any partner.
func (s *UserService) Create(ctx context.Context, actor Actor, req CreateUserRequest) (*UserResponse, error) {
	// Check the actor may assign the requested role
	if !actor.Role.CanAssign(req.Role) {
		return nil, shared.NewDomainError("FORBIDDEN", "You cannot assign the "+string(req.Role)+" role")
	}

	// Resolve the target partner
	partnerID := actor.PartnerID
	if req.PartnerID != nil && *req.PartnerID != actor.PartnerID {
		if !actor.IsAdmin() {
			return nil, shared.ErrForbidden
		}
		partnerID = *req.PartnerID
	}
	if _, err := s.partnerRepo.FindByID(ctx, partnerID); err != nil {
		return nil, err
	}

	// Check if username already exists
	exists, err := s.userRepo.ExistsByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Username is already taken")
	}

	// Create user
	user, err := identity.NewUser(partnerID, req.Username, req.Password, req.Role)
	if err != nil {
		return nil, err
	}
	if err := user.SetProfile(req.DisplayName, req.Email); err != nil {
		return nil, err
	}
	user.SetCreatedBy(actor.UserID)
	// Save the user
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("User created",
		zap.String("user_id", user.ID.String()),
		zap.String("partner_id", partnerID.String()),
		zap.String("role", string(user.Role)),
		zap.String("created_by", actor.UserID.String()),
	)
	resp := ToUserResponse(user)
	return &resp, nil
}

// Update changes a user's profile, role, status or password.
// Disabling a user revokes every token issued to them.
func (s *UserService) Update(ctx context.Context, actor Actor, id uuid.UUID, req UpdateUserRequest) (*UserResponse, error) {
	user, err := s.find(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !actor.Role.CanAssign(user.Role) {
		return nil, shared.ErrForbidden
	}

	// Update profile
	if req.Email != nil || req.DisplayName != nil {
		email, name := user.Email, user.DisplayName
		if req.Email != nil {
			email = *req.Email
		}
		if req.DisplayName != nil {
			name = *req.DisplayName
		}
		if err := user.SetProfile(name, email); err != nil {
			return nil, err
		}
	}
	// Update role
	if req.Role != nil && *req.Role != user.Role {
		if !actor.Role.CanAssign(*req.Role) {
			return nil, shared.ErrForbidden
		}
		if err := user.SetRole(*req.Role); err != nil {
			return nil, err
		}
	}
	// Update password
	if req.Password != nil {
		if err := user.SetPassword(*req.Password); err != nil {
			return nil, err
		}
	}
	// Update status
	disabled := false
	if req.Status != nil && *req.Status != user.Status {
		if user.ID == actor.UserID {
			return nil, shared.NewDomainError("INVALID_STATE", "You cannot change your own status")
		}
		switch *req.Status {
		case identity.UserStatusDisabled:
			user.Disable()
			disabled = true
		case identity.UserStatusActive:
			user.Enable()
		}
	}

	// Save the user
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}
	// Revoke tokens of disabled users and changed passwords
	if disabled || req.Password != nil {
		s.revokeTokens(ctx, user.ID)
	}
	resp := ToUserResponse(user)
	return &resp, nil
}

// Delete removes a user. Users cannot delete themselves.
func (s *UserService) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	if id == actor.UserID {
		return shared.NewDomainError("INVALID_STATE", "You cannot delete your own account")
	}
	// Get existing user
	user, err := s.find(ctx, actor, id)
	if err != nil {
		return err
	}
	if !actor.Role.CanAssign(user.Role) {
		return shared.ErrForbidden
	}
	// Delete the user
	if err := s.userRepo.Delete(ctx, user.ID); err != nil {
		return err
	}
	s.revokeTokens(ctx, user.ID)
	s.logger.Info("User deleted", zap.String("user_id", user.ID.String()), zap.String("deleted_by", actor.UserID.String()))
	return nil
}

// find loads a user, hiding users of other partners from non-admins
func (s *UserService) find(ctx context.Context, actor Actor, id uuid.UUID) (*identity.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && user.PartnerID != actor.PartnerID {
		return nil, shared.ErrNotFound
	}
	return user, nil
}

func (s *UserService) revokeTokens(ctx context.Context, userID uuid.UUID) {
	if s.blacklist == nil {
		return
	}
	if err := s.blacklist.RevokeUser(ctx, userID.String(), s.revokeTTL); err != nil {
		s.logger.Warn("Failed to revoke user tokens", zap.String("user_id", userID.String()), zap.Error(err))
	}
}
