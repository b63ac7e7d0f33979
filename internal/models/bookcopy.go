package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// CreateBookCopyRequest creates one or more physical copies of a book in the
// caller's library. Any client-supplied library id is ignored; the copy is
// always placed in the acting admin's own library.
type CreateBookCopyRequest struct {
	BookID        int32            `json:"book_id" binding:"required"`
	InventoryCode string           `json:"inventory_code" binding:"required,min=1,max=50"`
	IsAvailable   bool             `json:"is_available"`
	PricePerDay   *decimal.Decimal `json:"price_per_day"`
	Quantity      int              `json:"quantity" binding:"omitempty,min=1,max=500"`
}

// UpdateBookCopyRequest updates a copy. LibraryID is intentionally absent:
// copies never move between libraries through this API.
type UpdateBookCopyRequest struct {
	BookID        *int32           `json:"book_id"`
	InventoryCode *string          `json:"inventory_code" binding:"omitempty,min=1,max=50"`
	IsAvailable   *bool            `json:"is_available"`
	PricePerDay   *decimal.Decimal `json:"price_per_day"`
}

// BookCopyResponse represents the response for copy operations
type BookCopyResponse struct {
	ID            int32            `json:"id"`
	InventoryCode string           `json:"inventory_code"`
	IsAvailable   bool             `json:"is_available"`
	PricePerDay   *decimal.Decimal `json:"price_per_day"`
	LibraryID     int32            `json:"library_id"`
	BookID        int32            `json:"book_id"`
	BookTitle     string           `json:"book_title,omitempty"`
	LibraryName   string           `json:"library_name,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// AvailableCopyResponse is one row of the member borrow page: an available
// copy of the requested book with the library holding it.
type AvailableCopyResponse struct {
	BookCopyID    int32           `json:"book_copy_id"`
	InventoryCode string          `json:"inventory_code"`
	LibraryName   string          `json:"library_name"`
	PricePerDay   decimal.Decimal `json:"price_per_day"`
}

// BorrowPageResponse lists the available copies of a book for self-service
// borrowing.
type BorrowPageResponse struct {
	BookID          int32                   `json:"book_id"`
	BookTitle       string                  `json:"book_title"`
	Author          string                  `json:"author"`
	ImageURL        *string                 `json:"image_url"`
	AvailableCopies []AvailableCopyResponse `json:"available_copies"`
}

// Validate validates the CreateBookCopyRequest and normalizes the quantity.
func (r *CreateBookCopyRequest) Validate() error {
	r.InventoryCode = strings.TrimSpace(r.InventoryCode)
	if r.InventoryCode == "" {
		return errors.New("inventory_code is required")
	}
	if len(r.InventoryCode) > 50 {
		return errors.New("inventory_code cannot exceed 50 characters")
	}
	if r.BookID <= 0 {
		return errors.New("book_id is required")
	}
	if r.PricePerDay != nil && r.PricePerDay.IsNegative() {
		return errors.New("price_per_day cannot be negative")
	}
	if r.Quantity < 1 {
		r.Quantity = 1
	}
	if r.Quantity > 500 {
		r.Quantity = 500
	}
	return nil
}

// ExpandInventoryCodes returns the inventory codes for the requested
// quantity. A single copy keeps the code as-is; multiple copies get a
// zero-padded suffix: "BM-001" with quantity 3 yields BM-001-001,
// BM-001-002, BM-001-003.
func (r *CreateBookCopyRequest) ExpandInventoryCodes() []string {
	if r.Quantity <= 1 {
		return []string{r.InventoryCode}
	}
	codes := make([]string, r.Quantity)
	for i := 0; i < r.Quantity; i++ {
		codes[i] = fmt.Sprintf("%s-%03d", r.InventoryCode, i+1)
	}
	return codes
}
