package models

import (
	"errors"
	"strings"
	"time"
)

// CreateMemberRequest represents the request to register a library member
type CreateMemberRequest struct {
	FirstName        string  `json:"first_name" binding:"required,min=1,max=100"`
	LastName         string  `json:"last_name" binding:"required,min=1,max=100"`
	Email            *string `json:"email" binding:"omitempty,email"`
	MembershipNumber *string `json:"membership_number" binding:"omitempty,max=50"`
	Phone            *string `json:"phone" binding:"omitempty,max=30"`
	ImageURL         *string `json:"image_url" binding:"omitempty,max=500"`
}

// UpdateMemberRequest represents the request to update a member. The auth
// identity link is never writable through this request.
type UpdateMemberRequest struct {
	FirstName *string `json:"first_name" binding:"omitempty,min=1,max=100"`
	LastName  *string `json:"last_name" binding:"omitempty,min=1,max=100"`
	Email     *string `json:"email" binding:"omitempty,email"`
	Phone     *string `json:"phone" binding:"omitempty,max=30"`
	ImageURL  *string `json:"image_url" binding:"omitempty,max=500"`
}

// MemberResponse represents the response for member operations
type MemberResponse struct {
	ID               int32          `json:"id"`
	FirstName        string         `json:"first_name"`
	LastName         string         `json:"last_name"`
	Email            *string        `json:"email"`
	MembershipNumber string         `json:"membership_number"`
	Phone            *string        `json:"phone"`
	ImageURL         *string        `json:"image_url"`
	UserID           *int32         `json:"user_id,omitempty"`
	Loans            []LoanResponse `json:"loans,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// FullName joins the member's name fields the way the UI displays them.
func (m *MemberResponse) FullName() string {
	return MemberFullName(m.FirstName, m.LastName)
}

// MemberFullName derives the display name from its parts.
func MemberFullName(first, last string) string {
	return strings.TrimSpace(first + " " + last)
}

// Validate validates the CreateMemberRequest
func (r *CreateMemberRequest) Validate() error {
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	if r.FirstName == "" {
		return errors.New("first_name is required")
	}
	if r.LastName == "" {
		return errors.New("last_name is required")
	}
	if r.MembershipNumber != nil {
		num := strings.TrimSpace(*r.MembershipNumber)
		if len(num) > 50 {
			return errors.New("membership_number cannot exceed 50 characters")
		}
		r.MembershipNumber = &num
	}
	return nil
}
