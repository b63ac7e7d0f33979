package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/ristomkd/LibraryNetwork/internal/database/queries"
	"github.com/ristomkd/LibraryNetwork/internal/models"
)

// BookCopyQuerier defines the interface for copy database operations
type BookCopyQuerier interface {
	CreateBookCopy(ctx context.Context, arg queries.CreateBookCopyParams) (queries.BookCopy, error)
	GetBookCopyForLibrary(ctx context.Context, arg queries.GetBookCopyForLibraryParams) (queries.BookCopy, error)
	ListBookCopiesByLibrary(ctx context.Context, libraryID int32) ([]queries.BookCopyWithBookRow, error)
	UpdateBookCopy(ctx context.Context, arg queries.UpdateBookCopyParams) (queries.BookCopy, error)
	DeleteBookCopy(ctx context.Context, arg queries.DeleteBookCopyParams) (int64, error)
	GetBookByID(ctx context.Context, id int32) (queries.Book, error)
}

// BookCopyService manages the physical inventory of the caller's library.
// Every operation is scoped to the acting admin's own library; the client
// never chooses a library id.
type BookCopyService struct {
	querier BookCopyQuerier
}

func NewBookCopyService(querier BookCopyQuerier) *BookCopyService {
	return &BookCopyService{querier: querier}
}

// Create registers one or more copies of a book in the caller's library. A
// quantity above one expands the inventory code with a numeric suffix, so
// "BM-001" with quantity 3 becomes BM-001-001 through BM-001-003.
func (s *BookCopyService) Create(ctx context.Context, caller models.Caller, req models.CreateBookCopyRequest) ([]models.BookCopyResponse, error) {
	if caller.LibraryID == nil {
		return nil, fmt.Errorf("admin has no library assigned: %w", ErrForbidden)
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	if _, err := s.querier.GetBookByID(ctx, req.BookID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("book %d: %w", req.BookID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get book: %w", err)
	}

	price := pgtype.Numeric{}
	if req.PricePerDay != nil {
		price = queries.NumericFromDecimal(*req.PricePerDay)
	}

	codes := req.ExpandInventoryCodes()
	responses := make([]models.BookCopyResponse, 0, len(codes))
	for _, code := range codes {
		copyRow, err := s.querier.CreateBookCopy(ctx, queries.CreateBookCopyParams{
			InventoryCode: code,
			IsAvailable:   req.IsAvailable,
			PricePerDay:   price,
			LibraryID:     *caller.LibraryID,
			BookID:        req.BookID,
		})
		if err != nil {
			if queries.IsUniqueViolation(err) {
				return nil, fmt.Errorf("inventory code %s already exists: %w", code, ErrConflict)
			}
			return nil, fmt.Errorf("failed to create book copy: %w", err)
		}
		responses = append(responses, bookCopyToResponse(copyRow))
	}
	return responses, nil
}

// List returns all copies held by the caller's library, joined with book
// titles.
func (s *BookCopyService) List(ctx context.Context, caller models.Caller) ([]models.BookCopyResponse, error) {
	if caller.LibraryID == nil {
		return nil, fmt.Errorf("admin has no library assigned: %w", ErrForbidden)
	}

	rows, err := s.querier.ListBookCopiesByLibrary(ctx, *caller.LibraryID)
	if err != nil {
		return nil, fmt.Errorf("failed to list book copies: %w", err)
	}

	responses := make([]models.BookCopyResponse, len(rows))
	for i, r := range rows {
		resp := bookCopyToResponse(r.BookCopy)
		resp.BookTitle = r.BookTitle
		resp.LibraryName = r.LibraryName
		responses[i] = resp
	}
	return responses, nil
}

// Get returns a single copy of the caller's library. Copies of other
// libraries read as not found.
func (s *BookCopyService) Get(ctx context.Context, caller models.Caller, id int32) (*models.BookCopyResponse, error) {
	if caller.LibraryID == nil {
		return nil, fmt.Errorf("admin has no library assigned: %w", ErrForbidden)
	}

	copyRow, err := s.querier.GetBookCopyForLibrary(ctx, queries.GetBookCopyForLibraryParams{
		ID:        id,
		LibraryID: *caller.LibraryID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("book copy %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get book copy: %w", err)
	}

	resp := bookCopyToResponse(copyRow)
	return &resp, nil
}

// Update edits a copy in place. The copy stays in the caller's library; there
// is no way to move it elsewhere through this operation.
func (s *BookCopyService) Update(ctx context.Context, caller models.Caller, id int32, req models.UpdateBookCopyRequest) (*models.BookCopyResponse, error) {
	if caller.LibraryID == nil {
		return nil, fmt.Errorf("admin has no library assigned: %w", ErrForbidden)
	}

	current, err := s.querier.GetBookCopyForLibrary(ctx, queries.GetBookCopyForLibraryParams{
		ID:        id,
		LibraryID: *caller.LibraryID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("book copy %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get book copy: %w", err)
	}

	params := queries.UpdateBookCopyParams{
		ID:            id,
		LibraryID:     *caller.LibraryID,
		InventoryCode: current.InventoryCode,
		IsAvailable:   current.IsAvailable,
		PricePerDay:   current.PricePerDay,
		BookID:        current.BookID,
	}
	if req.InventoryCode != nil {
		params.InventoryCode = *req.InventoryCode
	}
	if req.IsAvailable != nil {
		params.IsAvailable = *req.IsAvailable
	}
	if req.PricePerDay != nil {
		params.PricePerDay = queries.NumericFromDecimal(*req.PricePerDay)
	}
	if req.BookID != nil {
		if _, err := s.querier.GetBookByID(ctx, *req.BookID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, fmt.Errorf("book %d: %w", *req.BookID, ErrNotFound)
			}
			return nil, fmt.Errorf("failed to get book: %w", err)
		}
		params.BookID = *req.BookID
	}

	copyRow, err := s.querier.UpdateBookCopy(ctx, params)
	if err != nil {
		if queries.IsUniqueViolation(err) {
			return nil, fmt.Errorf("inventory code %s already exists: %w", params.InventoryCode, ErrConflict)
		}
		return nil, fmt.Errorf("failed to update book copy: %w", err)
	}

	resp := bookCopyToResponse(copyRow)
	return &resp, nil
}

// Delete removes a copy of the caller's library.
func (s *BookCopyService) Delete(ctx context.Context, caller models.Caller, id int32) error {
	if caller.LibraryID == nil {
		return fmt.Errorf("admin has no library assigned: %w", ErrForbidden)
	}

	affected, err := s.querier.DeleteBookCopy(ctx, queries.DeleteBookCopyParams{
		ID:        id,
		LibraryID: *caller.LibraryID,
	})
	if err != nil {
		return fmt.Errorf("failed to delete book copy: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("book copy %d: %w", id, ErrNotFound)
	}
	return nil
}

func bookCopyToResponse(c queries.BookCopy) models.BookCopyResponse {
	resp := models.BookCopyResponse{
		ID:            c.ID,
		InventoryCode: c.InventoryCode,
		IsAvailable:   c.IsAvailable,
		PricePerDay:   queries.NumericToDecimal(c.PricePerDay),
		LibraryID:     c.LibraryID,
		BookID:        c.BookID,
	}
	if c.CreatedAt.Valid {
		resp.CreatedAt = c.CreatedAt.Time
	}
	if c.UpdatedAt.Valid {
		resp.UpdatedAt = c.UpdatedAt.Time
	}
	return resp
}
