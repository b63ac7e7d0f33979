package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type UserRole string

const (
	RoleAdmin  UserRole = "admin"
	RoleMember UserRole = "member"
)

// User is an authentication identity. Admin accounts carry a LibraryID that
// scopes every query they make; member accounts carry a MemberID once their
// profile has been linked to a Member record.
type User struct {
	ID          int32     `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	Role        UserRole  `json:"role"`
	LibraryID   *int32    `json:"library_id,omitempty"`
	MemberID    *int32    `json:"member_id,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Caller is the authenticated identity threaded explicitly into every scoped
// service call. There is no ambient current-user state below the middleware
// layer.
type Caller struct {
	UserID    int32
	Role      UserRole
	LibraryID *int32
	MemberID  *int32
}

func (c Caller) IsAdmin() bool  { return c.Role == RoleAdmin }
func (c Caller) IsMember() bool { return c.Role == RoleMember }

type RegisterRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	DisplayName string `json:"display_name" binding:"omitempty,max=200"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	User         *User  `json:"user"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
}

// UpdateProfileRequest drives membership linking: the first profile update of
// an unlinked non-admin account links (or creates) a Member record.
type UpdateProfileRequest struct {
	FirstName string `json:"first_name" binding:"required,min=2,max=100"`
	LastName  string `json:"last_name" binding:"required,min=2,max=100"`
	Email     string `json:"email" binding:"required,email"`
	Phone     string `json:"phone" binding:"omitempty,max=30"`
}

type JWTClaims struct {
	UserID      int32    `json:"user_id"`
	Email       string   `json:"email"`
	DisplayName string   `json:"display_name"`
	Role        UserRole `json:"role"`
	LibraryID   *int32   `json:"library_id,omitempty"`
	MemberID    *int32   `json:"member_id,omitempty"`
	jwt.RegisteredClaims
}

type RefreshTokenClaims struct {
	UserID int32  `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// AsCaller converts validated claims into the explicit caller context.
func (c *JWTClaims) AsCaller() Caller {
	return Caller{
		UserID:    c.UserID,
		Role:      c.Role,
		LibraryID: c.LibraryID,
		MemberID:  c.MemberID,
	}
}
