package services

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/ristomkd/LibraryNetwork/internal/database/queries"
	"github.com/ristomkd/LibraryNetwork/internal/models"
)

// BookQuerier defines the interface for catalog database operations
type BookQuerier interface {
	CreateBook(ctx context.Context, arg queries.CreateBookParams) (queries.Book, error)
	GetBookByID(ctx context.Context, id int32) (queries.Book, error)
	GetBookByISBN(ctx context.Context, isbn pgtype.Text) (queries.Book, error)
	UpdateBook(ctx context.Context, arg queries.UpdateBookParams) (queries.Book, error)
	DeleteBook(ctx context.Context, id int32) (int64, error)
	SearchBooks(ctx context.Context, arg queries.SearchBooksParams) ([]queries.Book, error)
	CountBooks(ctx context.Context, arg queries.CountBooksParams) (int64, error)
	ListBookCategories(ctx context.Context) ([]string, error)
	ListAvailableCopiesByBook(ctx context.Context, bookID int32) ([]queries.AvailableCopyRow, error)
}

// BookService manages the shared catalog. Books are global: every library
// sees and edits the same records, and only the copy inventory is scoped.
type BookService struct {
	querier BookQuerier
}

func NewBookService(querier BookQuerier) *BookService {
	return &BookService{querier: querier}
}

// Create adds a catalog book, rejecting duplicate ISBNs up front.
func (s *BookService) Create(ctx context.Context, req models.CreateBookRequest) (*models.BookResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	if req.ISBN != nil && *req.ISBN != "" {
		if _, err := s.querier.GetBookByISBN(ctx, pgtype.Text{String: *req.ISBN, Valid: true}); err == nil {
			return nil, fmt.Errorf("book with ISBN %s already exists: %w", *req.ISBN, ErrConflict)
		} else if !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("failed to check ISBN: %w", err)
		}
	}

	book, err := s.querier.CreateBook(ctx, queries.CreateBookParams{
		Title:       req.Title,
		Author:      req.Author,
		Isbn:        textFromPtr(req.ISBN),
		Category:    textFromPtr(req.Category),
		Description: textFromPtr(req.Description),
		ImageUrl:    textFromPtr(req.ImageURL),
	})
	if err != nil {
		if queries.IsUniqueViolation(err) {
			return nil, fmt.Errorf("book already exists: %w", ErrConflict)
		}
		return nil, fmt.Errorf("failed to create book: %w", err)
	}

	resp := bookToResponse(book)
	return &resp, nil
}

// Get returns one catalog book.
func (s *BookService) Get(ctx context.Context, id int32) (*models.BookResponse, error) {
	book, err := s.querier.GetBookByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("book %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get book: %w", err)
	}

	resp := bookToResponse(book)
	return &resp, nil
}

// Search runs the public catalog search: partial title/author match, exact
// category, optional restriction to books with a copy in a given library.
func (s *BookService) Search(ctx context.Context, req models.BookSearchRequest) (*models.BookListResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 || req.Limit > 100 {
		req.Limit = 20
	}

	filters := queries.SearchBooksParams{
		Title:    textFromFilter(req.Title),
		Author:   textFromFilter(req.Author),
		Category: textFromFilter(req.Category),
		Limit:    int32(req.Limit),
		Offset:   int32((req.Page - 1) * req.Limit),
	}
	if req.LibraryID != nil {
		filters.LibraryID = pgtype.Int4{Int32: *req.LibraryID, Valid: true}
	}

	books, err := s.querier.SearchBooks(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to search books: %w", err)
	}

	total, err := s.querier.CountBooks(ctx, queries.CountBooksParams{
		Title:     filters.Title,
		Author:    filters.Author,
		Category:  filters.Category,
		LibraryID: filters.LibraryID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to count books: %w", err)
	}

	responses := make([]models.BookResponse, len(books))
	for i, b := range books {
		responses[i] = bookToResponse(b)
	}

	return &models.BookListResponse{
		Books: responses,
		Pagination: models.Pagination{
			Page:       req.Page,
			Limit:      req.Limit,
			Total:      total,
			TotalPages: int(math.Ceil(float64(total) / float64(req.Limit))),
		},
	}, nil
}

// Categories returns the distinct non-empty categories for the search form.
func (s *BookService) Categories(ctx context.Context) ([]string, error) {
	categories, err := s.querier.ListBookCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// Update edits a catalog book. Unset fields keep their current value.
func (s *BookService) Update(ctx context.Context, id int32, req models.UpdateBookRequest) (*models.BookResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	current, err := s.querier.GetBookByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("book %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get book: %w", err)
	}

	params := queries.UpdateBookParams{
		ID:          id,
		Title:       current.Title,
		Author:      current.Author,
		Isbn:        current.Isbn,
		Category:    current.Category,
		Description: current.Description,
		ImageUrl:    current.ImageUrl,
	}
	if req.Title != nil {
		params.Title = *req.Title
	}
	if req.Author != nil {
		params.Author = *req.Author
	}
	if req.ISBN != nil {
		params.Isbn = textFromPtr(req.ISBN)
	}
	if req.Category != nil {
		params.Category = textFromPtr(req.Category)
	}
	if req.Description != nil {
		params.Description = textFromPtr(req.Description)
	}
	if req.ImageURL != nil {
		params.ImageUrl = textFromPtr(req.ImageURL)
	}

	book, err := s.querier.UpdateBook(ctx, params)
	if err != nil {
		if queries.IsUniqueViolation(err) {
			return nil, fmt.Errorf("book with this ISBN already exists: %w", ErrConflict)
		}
		return nil, fmt.Errorf("failed to update book: %w", err)
	}

	resp := bookToResponse(book)
	return &resp, nil
}

// Delete removes a catalog book. Copies cascade at the database level.
func (s *BookService) Delete(ctx context.Context, id int32) error {
	affected, err := s.querier.DeleteBook(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete book: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("book %d: %w", id, ErrNotFound)
	}
	return nil
}

func bookToResponse(b queries.Book) models.BookResponse {
	resp := models.BookResponse{
		ID:          b.ID,
		Title:       b.Title,
		Author:      b.Author,
		ISBN:        textToPtr(b.Isbn),
		Category:    textToPtr(b.Category),
		Description: textToPtr(b.Description),
		ImageURL:    textToPtr(b.ImageUrl),
	}
	if b.CreatedAt.Valid {
		resp.CreatedAt = b.CreatedAt.Time
	}
	if b.UpdatedAt.Valid {
		resp.UpdatedAt = b.UpdatedAt.Time
	}
	return resp
}

func textFromPtr(s *string) pgtype.Text {
	if s == nil || *s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: *s, Valid: true}
}

// textFromFilter treats the empty string as "filter off".
func textFromFilter(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}

func textToPtr(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	return &t.String
}
