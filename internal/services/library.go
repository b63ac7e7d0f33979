package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/ristomkd/LibraryNetwork/internal/database/queries"
	"github.com/ristomkd/LibraryNetwork/internal/models"
)

// LibraryQuerier defines the interface for library database operations
type LibraryQuerier interface {
	CreateLibrary(ctx context.Context, arg queries.CreateLibraryParams) (queries.Library, error)
	GetLibraryByID(ctx context.Context, id int32) (queries.Library, error)
	ListLibraries(ctx context.Context) ([]queries.Library, error)
	UpdateLibrary(ctx context.Context, arg queries.UpdateLibraryParams) (queries.Library, error)
	DeleteLibrary(ctx context.Context, id int32) (int64, error)
	ListLibraryInventory(ctx context.Context, libraryID int32) ([]queries.LibraryInventoryRow, error)
}

// LibraryService manages the library directory. The directory itself is
// public; mutations are reserved for admins by the routing layer.
type LibraryService struct {
	querier LibraryQuerier
}

func NewLibraryService(querier LibraryQuerier) *LibraryService {
	return &LibraryService{querier: querier}
}

func (s *LibraryService) Create(ctx context.Context, req models.CreateLibraryRequest) (*models.LibraryResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	library, err := s.querier.CreateLibrary(ctx, queries.CreateLibraryParams{
		Name:    req.Name,
		Address: textFromPtr(req.Address),
		City:    textFromPtr(req.City),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create library: %w", err)
	}

	resp := libraryToResponse(library)
	return &resp, nil
}

func (s *LibraryService) List(ctx context.Context) ([]models.LibraryResponse, error) {
	libraries, err := s.querier.ListLibraries(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list libraries: %w", err)
	}

	responses := make([]models.LibraryResponse, len(libraries))
	for i, l := range libraries {
		responses[i] = libraryToResponse(l)
	}
	return responses, nil
}

func (s *LibraryService) Get(ctx context.Context, id int32) (*models.LibraryResponse, error) {
	library, err := s.querier.GetLibraryByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("library %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get library: %w", err)
	}

	resp := libraryToResponse(library)
	return &resp, nil
}

// Inventory returns the public per-library rollup: every book the library
// holds with total and available copy counts.
func (s *LibraryService) Inventory(ctx context.Context, id int32) (*models.LibraryInventoryResponse, error) {
	library, err := s.querier.GetLibraryByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("library %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get library: %w", err)
	}

	rows, err := s.querier.ListLibraryInventory(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list library inventory: %w", err)
	}

	books := make([]models.BookInventory, len(rows))
	for i, r := range rows {
		books[i] = models.BookInventory{
			BookID:          r.BookID,
			Title:           r.Title,
			Author:          r.Author,
			TotalCopies:     r.TotalCopies,
			AvailableCopies: r.AvailableCopies,
		}
	}

	return &models.LibraryInventoryResponse{
		LibraryID:   library.ID,
		LibraryName: library.Name,
		City:        textToPtr(library.City),
		Address:     textToPtr(library.Address),
		Books:       books,
	}, nil
}

func (s *LibraryService) Update(ctx context.Context, id int32, req models.UpdateLibraryRequest) (*models.LibraryResponse, error) {
	current, err := s.querier.GetLibraryByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("library %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get library: %w", err)
	}

	params := queries.UpdateLibraryParams{
		ID:      id,
		Name:    current.Name,
		Address: current.Address,
		City:    current.City,
	}
	if req.Name != nil {
		params.Name = *req.Name
	}
	if req.Address != nil {
		params.Address = textFromPtr(req.Address)
	}
	if req.City != nil {
		params.City = textFromPtr(req.City)
	}

	library, err := s.querier.UpdateLibrary(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to update library: %w", err)
	}

	resp := libraryToResponse(library)
	return &resp, nil
}

func (s *LibraryService) Delete(ctx context.Context, id int32) error {
	affected, err := s.querier.DeleteLibrary(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete library: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("library %d: %w", id, ErrNotFound)
	}
	return nil
}

func libraryToResponse(l queries.Library) models.LibraryResponse {
	resp := models.LibraryResponse{
		ID:      l.ID,
		Name:    l.Name,
		Address: textToPtr(l.Address),
		City:    textToPtr(l.City),
	}
	if l.CreatedAt.Valid {
		resp.CreatedAt = l.CreatedAt.Time
	}
	if l.UpdatedAt.Valid {
		resp.UpdatedAt = l.UpdatedAt.Time
	}
	return resp
}
