package models

import (
	"errors"
	"strings"
	"time"
)

// CreateLibraryRequest represents the request to create a library
type CreateLibraryRequest struct {
	Name    string  `json:"name" binding:"required,min=1,max=200"`
	Address *string `json:"address" binding:"omitempty,max=255"`
	City    *string `json:"city" binding:"omitempty,max=100"`
}

// UpdateLibraryRequest represents the request to update a library
type UpdateLibraryRequest struct {
	Name    *string `json:"name" binding:"omitempty,min=1,max=200"`
	Address *string `json:"address" binding:"omitempty,max=255"`
	City    *string `json:"city" binding:"omitempty,max=100"`
}

// LibraryResponse represents the response for library operations
type LibraryResponse struct {
	ID        int32     `json:"id"`
	Name      string    `json:"name"`
	Address   *string   `json:"address"`
	City      *string   `json:"city"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BookInventory is one catalog book's copy counts within a single library.
type BookInventory struct {
	BookID          int32  `json:"book_id"`
	Title           string `json:"title"`
	Author          string `json:"author"`
	TotalCopies     int64  `json:"total_copies"`
	AvailableCopies int64  `json:"available_copies"`
}

// HasAvailable reports whether at least one copy can be borrowed.
func (b BookInventory) HasAvailable() bool { return b.AvailableCopies > 0 }

// LibraryInventoryResponse is the per-library inventory rollup: every book
// held by the library with total and available copy counts.
type LibraryInventoryResponse struct {
	LibraryID   int32           `json:"library_id"`
	LibraryName string          `json:"library_name"`
	City        *string         `json:"city"`
	Address     *string         `json:"address"`
	Books       []BookInventory `json:"books"`
}

// Validate validates the CreateLibraryRequest
func (r *CreateLibraryRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return errors.New("name is required")
	}
	return nil
}
