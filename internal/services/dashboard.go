package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/ristomkd/LibraryNetwork/internal/database/queries"
	"github.com/ristomkd/LibraryNetwork/internal/models"
)

const recentLoanLimit = 10

// DashboardQuerier defines the interface for dashboard database operations
type DashboardQuerier interface {
	GetLibraryByID(ctx context.Context, id int32) (queries.Library, error)
	CountCopiesByLibrary(ctx context.Context, libraryID int32) (int64, error)
	CountAvailableCopiesByLibrary(ctx context.Context, libraryID int32) (int64, error)
	CountActiveLoansByLibrary(ctx context.Context, libraryID int32) (int64, error)
	CountOverdueLoansByLibrary(ctx context.Context, arg queries.CountOverdueLoansByLibraryParams) (int64, error)
	ListRecentLoansByLibrary(ctx context.Context, arg queries.ListRecentLoansByLibraryParams) ([]queries.LoanDetailRow, error)
}

// DashboardService builds the read-only rollup for the acting admin's
// library. It never mutates loan rows; overdue counts and statuses are
// derived from due dates on the fly.
type DashboardService struct {
	querier DashboardQuerier
	now     func() time.Time
}

func NewDashboardService(querier DashboardQuerier) *DashboardService {
	return &DashboardService{querier: querier, now: time.Now}
}

// Get assembles the dashboard: copy counts, loan counts and the ten most
// recent loans of the caller's library.
func (s *DashboardService) Get(ctx context.Context, caller models.Caller) (*models.DashboardResponse, error) {
	if caller.LibraryID == nil {
		return nil, fmt.Errorf("admin has no library assigned: %w", ErrForbidden)
	}
	libraryID := *caller.LibraryID

	library, err := s.querier.GetLibraryByID(ctx, libraryID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("library %d: %w", libraryID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get library: %w", err)
	}

	totalCopies, err := s.querier.CountCopiesByLibrary(ctx, libraryID)
	if err != nil {
		return nil, fmt.Errorf("failed to count copies: %w", err)
	}

	availableCopies, err := s.querier.CountAvailableCopiesByLibrary(ctx, libraryID)
	if err != nil {
		return nil, fmt.Errorf("failed to count available copies: %w", err)
	}

	activeLoans, err := s.querier.CountActiveLoansByLibrary(ctx, libraryID)
	if err != nil {
		return nil, fmt.Errorf("failed to count active loans: %w", err)
	}

	today := s.now()
	overdueLoans, err := s.querier.CountOverdueLoansByLibrary(ctx, queries.CountOverdueLoansByLibraryParams{
		LibraryID: libraryID,
		AsOf:      pgtype.Timestamptz{Time: today, Valid: true},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to count overdue loans: %w", err)
	}

	recent, err := s.querier.ListRecentLoansByLibrary(ctx, queries.ListRecentLoansByLibraryParams{
		LibraryID: libraryID,
		Limit:     recentLoanLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list recent loans: %w", err)
	}

	recentLoans := make([]models.RecentLoan, len(recent))
	for i, r := range recent {
		loan := models.RecentLoan{
			LoanID:        r.ID,
			BookTitle:     r.BookTitle,
			MemberName:    models.MemberFullName(r.MemberFirst, r.MemberLast),
			InventoryCode: r.InventoryCode,
			Status:        r.Status,
		}
		if r.BorrowDate.Valid {
			loan.BorrowDate = &r.BorrowDate.Time
		}
		if r.DueDate.Valid {
			loan.DueDate = &r.DueDate.Time
		}
		var returnedAt *time.Time
		if r.ReturnDate.Valid {
			returnedAt = &r.ReturnDate.Time
		}
		if r.DueDate.Valid && models.IsLoanOverdue(&r.DueDate.Time, returnedAt, today) {
			loan.IsOverdue = true
			loan.Status = string(models.LoanStatusOverdue)
		}
		recentLoans[i] = loan
	}

	return &models.DashboardResponse{
		LibraryName:     library.Name,
		TotalCopies:     totalCopies,
		AvailableCopies: availableCopies,
		ActiveLoans:     activeLoans,
		OverdueLoans:    overdueLoans,
		RecentLoans:     recentLoans,
	}, nil
}
