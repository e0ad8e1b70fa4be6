package identity

import (
	"context"
	"errors"

	"github.com/autocare/platform/internal/domain/identity"
	"github.com/autocare/platform/internal/domain/shared"
	"github.com/autocare/platform/internal/infrastructure/auth"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Authentication error codes
var (
	ErrInvalidCredentials = shared.NewDomainError("INVALID_CREDENTIALS", "Invalid username or password")
	ErrAccountDisabled    = shared.NewDomainError("ACCOUNT_DISABLED", "Account has been disabled")
	ErrPartnerSuspended   = shared.NewDomainError("PARTNER_SUSPENDED", "Partner account is suspended")
	ErrTokenRevoked       = shared.NewDomainError("TOKEN_INVALID", "Token has been revoked")
)

// AuthService handles authentication operations
type AuthService struct {
	userRepo    identity.UserRepository
	partnerRepo identity.PartnerRepository
	jwtService  *auth.JWTService
	blacklist   auth.TokenBlacklist
	logger      *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	userRepo identity.UserRepository,
	partnerRepo identity.PartnerRepository,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	logger *zap.Logger,
) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		userRepo:    userRepo,
		partnerRepo: partnerRepo,
		jwtService:  jwtService,
		blacklist:   blacklist,
		logger:      logger,
	}
}

// Login authenticates a user and returns a token pair.
// Disabled users and users of suspended partners are rejected.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	// Find user by username
	user, err := s.userRepo.FindByUsername(ctx, input.Username)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("Login for unknown user", zap.String("username", input.Username))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	// Verify password
	if !user.VerifyPassword(input.Password) {
		s.logger.Warn("Invalid password attempt", zap.String("username", input.Username))
		return nil, ErrInvalidCredentials
	}
	// Check user and partner status
	if err := s.checkCanLogin(ctx, user); err != nil {
		return nil, err
	}

	// Generate token pair
	result, err := s.issue(user)
	if err != nil {
		return nil, err
	}

	// Update last login time
	user.RecordLogin()
	if err := s.userRepo.Save(ctx, user); err != nil {
		// the login itself succeeded
		s.logger.Error("Failed to record login", zap.String("user_id", user.ID.String()), zap.Error(err))
	}
	s.logger.Info("User logged in",
		zap.String("user_id", user.ID.String()),
		zap.String("partner_id", user.PartnerID.String()),
		zap.String("role", string(user.Role)),
	)
	return result, nil
}

// Refresh exchanges a refresh token for a new pair. The used refresh token is revoked.
func (s *AuthService) Refresh(ctx context.Context, input RefreshInput) (*LoginResult, error) {
	// Validate refresh token
	claims, err := s.jwtService.ValidateRefreshToken(input.RefreshToken)
	if err != nil {
		if errors.Is(err, auth.ErrExpiredToken) {
			return nil, shared.NewDomainError("TOKEN_EXPIRED", "Refresh token has expired")
		}
		return nil, shared.NewDomainError("TOKEN_INVALID", "Invalid refresh token")
	}
	if err := s.checkNotRevoked(ctx, claims); err != nil {
		return nil, err
	}

	// Load the user behind the token
	user, err := s.userRepo.FindByID(ctx, claims.UserUUID())
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrTokenRevoked
		}
		return nil, err
	}
	if err := s.checkCanLogin(ctx, user); err != nil {
		return nil, err
	}

	result, err := s.issue(user)
	if err != nil {
		return nil, err
	}
	// Revoke the used refresh token
	if err := s.blacklist.Revoke(ctx, claims.ID, claims.RemainingTTL()); err != nil {
		s.logger.Warn("Failed to revoke used refresh token", zap.Error(err))
	}
	return result, nil
}

// Logout revokes the access token for the rest of its lifetime
func (s *AuthService) Logout(ctx context.Context, input LogoutInput) error {
	if input.TokenJTI == "" {
		return shared.ErrInvalidInput
	}
	if err := s.blacklist.Revoke(ctx, input.TokenJTI, input.TTL); err != nil {
		return err
	}
	return nil
}

// Me returns the user behind the token
func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := ToUserResponse(user)
	return &resp, nil
}

// IsTokenRevoked reports whether an access token was revoked individually or
// through a revocation of every token of its user
func (s *AuthService) IsTokenRevoked(ctx context.Context, claims *auth.Claims) (bool, error) {
	revoked, err := s.blacklist.IsRevoked(ctx, claims.ID)
	if err != nil || revoked {
		return revoked, err
	}
	return s.blacklist.IsUserRevoked(ctx, claims.UserID, claims.IssuedAtTime())
}

func (s *AuthService) checkNotRevoked(ctx context.Context, claims *auth.Claims) error {
	revoked, err := s.IsTokenRevoked(ctx, claims)
	if err != nil {
		return err
	}
	if revoked {
		return ErrTokenRevoked
	}
	return nil
}

func (s *AuthService) checkCanLogin(ctx context.Context, user *identity.User) error {
	if !user.IsActive() {
		s.logger.Warn("Login attempt for disabled user", zap.String("user_id", user.ID.String()))
		return ErrAccountDisabled
	}
	// Check partner status
	partner, err := s.partnerRepo.FindByID(ctx, user.PartnerID)
	if err != nil {
		return err
	}
	if !partner.IsActive() {
		s.logger.Warn("Login attempt for suspended partner", zap.String("partner_id", partner.ID.String()))
		return ErrPartnerSuspended
	}
	return nil
}

func (s *AuthService) issue(user *identity.User) (*LoginResult, error) {
	pair, err := s.jwtService.GenerateTokenPair(auth.GenerateTokenInput{
		PartnerID: user.PartnerID,
		UserID:    user.ID,
		Username:  user.Username,
		Role:      user.Role,
	})
	if err != nil {
		s.logger.Error("Failed to generate token pair", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL", "Failed to generate authentication tokens")
	}
	return &LoginResult{
		AccessToken:           pair.AccessToken,
		RefreshToken:          pair.RefreshToken,
		AccessTokenExpiresAt:  pair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: pair.RefreshTokenExpiresAt,
		TokenType:             pair.TokenType,
		User:                  ToUserResponse(user),
	}, nil
}
