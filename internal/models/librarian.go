package models

import (
	"errors"
	"strings"
	"time"
)

// CreateLibrarianRequest adds a librarian to the acting admin's library; any
// client-supplied library id is ignored.
type CreateLibrarianRequest struct {
	FirstName string  `json:"first_name" binding:"required,min=1,max=100"`
	LastName  string  `json:"last_name" binding:"required,min=1,max=100"`
	Email     *string `json:"email" binding:"omitempty,email"`
	ImageURL  *string `json:"image_url" binding:"omitempty,max=500"`
}

// UpdateLibrarianRequest represents the request to update a librarian
type UpdateLibrarianRequest struct {
	FirstName *string `json:"first_name" binding:"omitempty,min=1,max=100"`
	LastName  *string `json:"last_name" binding:"omitempty,min=1,max=100"`
	Email     *string `json:"email" binding:"omitempty,email"`
	ImageURL  *string `json:"image_url" binding:"omitempty,max=500"`
}

// LibrarianResponse represents the response for librarian operations
type LibrarianResponse struct {
	ID          int32     `json:"id"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Email       *string   `json:"email"`
	ImageURL    *string   `json:"image_url"`
	LibraryID   int32     `json:"library_id"`
	LibraryName string    `json:"library_name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Validate validates the CreateLibrarianRequest
func (r *CreateLibrarianRequest) Validate() error {
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	if r.FirstName == "" {
		return errors.New("first_name is required")
	}
	if r.LastName == "" {
		return errors.New("last_name is required")
	}
	return nil
}
