package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/ristomkd/LibraryNetwork/internal/database/queries"
	"github.com/ristomkd/LibraryNetwork/internal/models"
)

// LibrarianQuerier defines the interface for librarian database operations
type LibrarianQuerier interface {
	CreateLibrarian(ctx context.Context, arg queries.CreateLibrarianParams) (queries.Librarian, error)
	GetLibrarianForLibrary(ctx context.Context, arg queries.GetLibrarianForLibraryParams) (queries.Librarian, error)
	ListLibrariansByLibrary(ctx context.Context, libraryID int32) ([]queries.Librarian, error)
	UpdateLibrarian(ctx context.Context, arg queries.UpdateLibrarianParams) (queries.Librarian, error)
	DeleteLibrarian(ctx context.Context, arg queries.DeleteLibrarianParams) (int64, error)
}

// LibrarianService manages staff records, scoped to the acting admin's
// library on every operation.
type LibrarianService struct {
	querier LibrarianQuerier
}

func NewLibrarianService(querier LibrarianQuerier) *LibrarianService {
	return &LibrarianService{querier: querier}
}

// Create adds a librarian to the caller's library.
func (s *LibrarianService) Create(ctx context.Context, caller models.Caller, req models.CreateLibrarianRequest) (*models.LibrarianResponse, error) {
	if caller.LibraryID == nil {
		return nil, fmt.Errorf("admin has no library assigned: %w", ErrForbidden)
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	librarian, err := s.querier.CreateLibrarian(ctx, queries.CreateLibrarianParams{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     textFromPtr(req.Email),
		ImageUrl:  textFromPtr(req.ImageURL),
		LibraryID: *caller.LibraryID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create librarian: %w", err)
	}

	resp := librarianToResponse(librarian)
	return &resp, nil
}

// List returns the caller's library staff.
func (s *LibrarianService) List(ctx context.Context, caller models.Caller) ([]models.LibrarianResponse, error) {
	if caller.LibraryID == nil {
		return nil, fmt.Errorf("admin has no library assigned: %w", ErrForbidden)
	}

	librarians, err := s.querier.ListLibrariansByLibrary(ctx, *caller.LibraryID)
	if err != nil {
		return nil, fmt.Errorf("failed to list librarians: %w", err)
	}

	responses := make([]models.LibrarianResponse, len(librarians))
	for i, l := range librarians {
		responses[i] = librarianToResponse(l)
	}
	return responses, nil
}

// Get returns one librarian of the caller's library; staff of other libraries
// read as not found.
func (s *LibrarianService) Get(ctx context.Context, caller models.Caller, id int32) (*models.LibrarianResponse, error) {
	if caller.LibraryID == nil {
		return nil, fmt.Errorf("admin has no library assigned: %w", ErrForbidden)
	}

	librarian, err := s.querier.GetLibrarianForLibrary(ctx, queries.GetLibrarianForLibraryParams{
		ID:        id,
		LibraryID: *caller.LibraryID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("librarian %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get librarian: %w", err)
	}

	resp := librarianToResponse(librarian)
	return &resp, nil
}

// Update edits a librarian of the caller's library.
func (s *LibrarianService) Update(ctx context.Context, caller models.Caller, id int32, req models.UpdateLibrarianRequest) (*models.LibrarianResponse, error) {
	if caller.LibraryID == nil {
		return nil, fmt.Errorf("admin has no library assigned: %w", ErrForbidden)
	}

	current, err := s.querier.GetLibrarianForLibrary(ctx, queries.GetLibrarianForLibraryParams{
		ID:        id,
		LibraryID: *caller.LibraryID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("librarian %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get librarian: %w", err)
	}

	params := queries.UpdateLibrarianParams{
		ID:        id,
		LibraryID: *caller.LibraryID,
		FirstName: current.FirstName,
		LastName:  current.LastName,
		Email:     current.Email,
		ImageUrl:  current.ImageUrl,
	}
	if req.FirstName != nil {
		params.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		params.LastName = *req.LastName
	}
	if req.Email != nil {
		params.Email = textFromPtr(req.Email)
	}
	if req.ImageURL != nil {
		params.ImageUrl = textFromPtr(req.ImageURL)
	}

	librarian, err := s.querier.UpdateLibrarian(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to update librarian: %w", err)
	}

	resp := librarianToResponse(librarian)
	return &resp, nil
}

// Delete removes a librarian of the caller's library.
func (s *LibrarianService) Delete(ctx context.Context, caller models.Caller, id int32) error {
	if caller.LibraryID == nil {
		return fmt.Errorf("admin has no library assigned: %w", ErrForbidden)
	}

	affected, err := s.querier.DeleteLibrarian(ctx, queries.DeleteLibrarianParams{
		ID:        id,
		LibraryID: *caller.LibraryID,
	})
	if err != nil {
		return fmt.Errorf("failed to delete librarian: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("librarian %d: %w", id, ErrNotFound)
	}
	return nil
}

func librarianToResponse(l queries.Librarian) models.LibrarianResponse {
	resp := models.LibrarianResponse{
		ID:        l.ID,
		FirstName: l.FirstName,
		LastName:  l.LastName,
		Email:     textToPtr(l.Email),
		ImageURL:  textToPtr(l.ImageUrl),
		LibraryID: l.LibraryID,
	}
	if l.CreatedAt.Valid {
		resp.CreatedAt = l.CreatedAt.Time
	}
	if l.UpdatedAt.Valid {
		resp.UpdatedAt = l.UpdatedAt.Time
	}
	return resp
}
