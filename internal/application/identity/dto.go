package identity

import (
	"time"

	"github.com/autocare/platform/internal/domain/identity"
	"github.com/google/uuid"
)

// Actor is the authenticated caller of an operation
type Actor struct {
	UserID    uuid.UUID
	PartnerID uuid.UUID
	Role      identity.Role
}

// IsAdmin reports whether the caller operates the platform
func (a Actor) IsAdmin() bool {
	return a.Role == identity.RoleAdmin
}

// LoginInput contains the input for user login
type LoginInput struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Password string `json:"password" binding:"required,min=1,max=72"`
}

// LoginResult contains the result of a successful login
type LoginResult struct {
	AccessToken           string       `json:"access_token"`
	RefreshToken          string       `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time    `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time    `json:"refresh_token_expires_at"`
	TokenType             string       `json:"token_type"`
	User                  UserResponse `json:"user"`
}

// RefreshInput contains the input for token refresh
type RefreshInput struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// LogoutInput identifies the token to revoke
type LogoutInput struct {
	TokenJTI string
	TTL      time.Duration
}

// UserResponse represents a user in API responses
type UserResponse struct {
	ID          uuid.UUID           `json:"id"`
	PartnerID   uuid.UUID           `json:"partner_id"`
	Username    string              `json:"username"`
	Email       string              `json:"email"`
	DisplayName string              `json:"display_name"`
	Role        identity.Role       `json:"role"`
	Status      identity.UserStatus `json:"status"`
	LastLoginAt *time.Time          `json:"last_login_at,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// ToUserResponse converts a domain User to UserResponse
func ToUserResponse(u *identity.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		PartnerID:   u.PartnerID,
		Username:    u.Username,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Role:        u.Role,
		Status:      u.Status,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

// CreateUserRequest represents a request to create a user
type CreateUserRequest struct {
	PartnerID   *uuid.UUID    `json:"partner_id"`
	Username    string        `json:"username" binding:"required,min=3,max=50"`
	Password    string        `json:"password" binding:"required,min=8,max=72"`
	Role        identity.Role `json:"role" binding:"required,oneof=admin manager cashier technician"`
	Email       string        `json:"email" binding:"omitempty,email,max=200"`
	DisplayName string        `json:"display_name" binding:"max=200"`
}

// UpdateUserRequest represents a request to update a user. Nil fields are left unchanged.
type UpdateUserRequest struct {
	Email       *string              `json:"email" binding:"omitempty,max=200"`
	DisplayName *string              `json:"display_name" binding:"omitempty,max=200"`
	Role        *identity.Role       `json:"role" binding:"omitempty,oneof=admin manager cashier technician"`
	Status      *identity.UserStatus `json:"status" binding:"omitempty,oneof=active disabled"`
	Password    *string              `json:"password" binding:"omitempty,min=8,max=72"`
}

// UserListFilter represents filter options for the user list
type UserListFilter struct {
	Search    string              `form:"search"`
	PartnerID *uuid.UUID          `form:"partner_id"`
	Role      identity.Role       `form:"role" binding:"omitempty,oneof=admin manager cashier technician"`
	Status    identity.UserStatus `form:"status" binding:"omitempty,oneof=active disabled"`
	Page      int                 `form:"page" binding:"omitempty,min=1"`
	PageSize  int                 `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy   string              `form:"order_by"`
	OrderDir  string              `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// PartnerResponse represents a partner in API responses
type PartnerResponse struct {
	ID        uuid.UUID              `json:"id"`
	Code      string                 `json:"code"`
	Name      string                 `json:"name"`
	Type      identity.PartnerType   `json:"type"`
	Phone     string                 `json:"phone"`
	Email     string                 `json:"email"`
	Address   string                 `json:"address"`
	City      string                 `json:"city"`
	Status    identity.PartnerStatus `json:"status"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
}

// ToPartnerResponse converts a domain Partner to PartnerResponse
func ToPartnerResponse(p *identity.Partner) PartnerResponse {
	return PartnerResponse{
		ID:        p.ID,
		Code:      p.Code,
		Name:      p.Name,
		Type:      p.Type,
		Phone:     p.Phone,
		Email:     p.Email,
		Address:   p.Address,
		City:      p.City,
		Status:    p.Status,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// ToPartnerResponses converts a slice of partners
func ToPartnerResponses(partners []identity.Partner) []PartnerResponse {
	out := make([]PartnerResponse, len(partners))
	for i := range partners {
		out[i] = ToPartnerResponse(&partners[i])
	}
	return out
}

// CreatePartnerRequest represents a request to create a partner
type CreatePartnerRequest struct {
	Code    string               `json:"code" binding:"required,min=2,max=32"`
	Name    string               `json:"name" binding:"required,min=1,max=200"`
	Type    identity.PartnerType `json:"type" binding:"required,oneof=shop service_center"`
	Phone   string               `json:"phone" binding:"max=50"`
	Email   string               `json:"email" binding:"omitempty,email,max=200"`
	Address string               `json:"address" binding:"max=500"`
	City    string               `json:"city" binding:"max=100"`
}

// UpdatePartnerRequest represents a request to update a partner
type UpdatePartnerRequest struct {
	Name    string `json:"name" binding:"required,min=1,max=200"`
	Phone   string `json:"phone" binding:"max=50"`
	Email   string `json:"email" binding:"omitempty,email,max=200"`
	Address string `json:"address" binding:"max=500"`
	City    string `json:"city" binding:"max=100"`
}

// PartnerListFilter represents filter options for the partner list
type PartnerListFilter struct {
	Search   string                 `form:"search"`
	Type     identity.PartnerType   `form:"type" binding:"omitempty,oneof=shop service_center"`
	Status   identity.PartnerStatus `form:"status" binding:"omitempty,oneof=active suspended"`
	City     string                 `form:"city"`
	Page     int                    `form:"page" binding:"omitempty,min=1"`
	PageSize int                    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string                 `form:"order_by"`
	OrderDir string                 `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}
