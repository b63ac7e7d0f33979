package models

import (
	"errors"
	"strings"
	"time"
)

// CreateBookRequest represents the request to create a catalog book
type CreateBookRequest struct {
	Title       string  `json:"title" binding:"required,min=1,max=255"`
	Author      string  `json:"author" binding:"required,min=1,max=255"`
	ISBN        *string `json:"isbn" binding:"omitempty,min=10,max=20"`
	Category    *string `json:"category" binding:"omitempty,max=100"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
	ImageURL    *string `json:"image_url" binding:"omitempty,max=500"`
}

// UpdateBookRequest represents the request to update a catalog book
type UpdateBookRequest struct {
	Title       *string `json:"title" binding:"omitempty,min=1,max=255"`
	Author      *string `json:"author" binding:"omitempty,min=1,max=255"`
	ISBN        *string `json:"isbn" binding:"omitempty,min=10,max=20"`
	Category    *string `json:"category" binding:"omitempty,max=100"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
	ImageURL    *string `json:"image_url" binding:"omitempty,max=500"`
}

// BookSearchRequest represents the public catalog search filters
type BookSearchRequest struct {
	Title     string `json:"title" form:"title"`
	Author    string `json:"author" form:"author"`
	Category  string `json:"category" form:"category"`
	LibraryID *int32 `json:"library_id" form:"library_id"`
	Page      int    `json:"page" form:"page,default=1" binding:"omitempty,min=1"`
	Limit     int    `json:"limit" form:"limit,default=20" binding:"omitempty,min=1,max=100"`
}

// BookResponse represents the response for book operations
type BookResponse struct {
	ID          int32              `json:"id"`
	Title       string             `json:"title"`
	Author      string             `json:"author"`
	ISBN        *string            `json:"isbn"`
	Category    *string            `json:"category"`
	Description *string            `json:"description"`
	ImageURL    *string            `json:"image_url"`
	Copies      []BookCopyResponse `json:"copies,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// BookListResponse represents the response for book list operations
type BookListResponse struct {
	Books      []BookResponse `json:"books"`
	Pagination Pagination     `json:"pagination"`
}

// Pagination represents pagination information
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// Validate validates the CreateBookRequest
func (r *CreateBookRequest) Validate() error {
	r.Title = strings.TrimSpace(r.Title)
	if r.Title == "" {
		return errors.New("title is required")
	}
	if len(r.Title) > 255 {
		return errors.New("title cannot exceed 255 characters")
	}

	r.Author = strings.TrimSpace(r.Author)
	if r.Author == "" {
		return errors.New("author is required")
	}
	if len(r.Author) > 255 {
		return errors.New("author cannot exceed 255 characters")
	}

	if r.ISBN != nil {
		isbn := strings.ReplaceAll(strings.TrimSpace(*r.ISBN), "-", "")
		if isbn != "" && (len(isbn) < 10 || len(isbn) > 13) {
			return errors.New("isbn must be between 10 and 13 characters")
		}
		r.ISBN = &isbn
	}

	return nil
}

// Validate validates the UpdateBookRequest
func (r *UpdateBookRequest) Validate() error {
	if r.Title != nil {
		title := strings.TrimSpace(*r.Title)
		if title == "" {
			return errors.New("title cannot be empty")
		}
		r.Title = &title
	}
	if r.Author != nil {
		author := strings.TrimSpace(*r.Author)
		if author == "" {
			return errors.New("author cannot be empty")
		}
		r.Author = &author
	}
	if r.ISBN != nil {
		isbn := strings.ReplaceAll(strings.TrimSpace(*r.ISBN), "-", "")
		if isbn != "" && (len(isbn) < 10 || len(isbn) > 13) {
			return errors.New("isbn must be between 10 and 13 characters")
		}
		r.ISBN = &isbn
	}
	return nil
}
