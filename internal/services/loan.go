package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/ristomkd/LibraryNetwork/internal/database/queries"
	"github.com/ristomkd/LibraryNetwork/internal/models"
)

// LoanQuerier defines the interface for loan database operations
type LoanQuerier interface {
	CreateLoan(ctx context.Context, arg queries.CreateLoanParams) (queries.Loan, error)
	GetLoanDetail(ctx context.Context, id int32) (queries.LoanDetailRow, error)
	ListLoansByLibrary(ctx context.Context, libraryID int32) ([]queries.LoanDetailRow, error)
	ListLoansByMember(ctx context.Context, memberID int32) ([]queries.LoanDetailRow, error)
	MarkLoanOverdue(ctx context.Context, arg queries.MarkLoanOverdueParams) error
	ReturnLoan(ctx context.Context, arg queries.ReturnLoanParams) (queries.Loan, error)
	PayLoanFine(ctx context.Context, arg queries.PayLoanFineParams) (queries.Loan, error)
	UpdateLoan(ctx context.Context, arg queries.UpdateLoanParams) (queries.Loan, error)
	DeleteLoan(ctx context.Context, id int32) (int64, error)
	GetBookCopyForLibrary(ctx context.Context, arg queries.GetBookCopyForLibraryParams) (queries.BookCopy, error)
	GetBookCopyByID(ctx context.Context, id int32) (queries.BookCopy, error)
	ClaimBookCopy(ctx context.Context, id int32) (int64, error)
	ReleaseBookCopy(ctx context.Context, id int32) error
	GetBookByID(ctx context.Context, id int32) (queries.Book, error)
	ListAvailableCopiesByBook(ctx context.Context, bookID int32) ([]queries.AvailableCopyRow, error)
	GetMemberByID(ctx context.Context, id int32) (queries.Member, error)
}

// LoanService owns the loan lifecycle: create/borrow, inline overdue-fine
// computation, return, fine payment, edit and delete, with copy availability
// toggled as a side effect.
type LoanService struct {
	querier    LoanQuerier
	periodDays int
	finePerDay decimal.Decimal
	now        func() time.Time
}

// NewLoanService creates a loan service with the given lending policy.
func NewLoanService(querier LoanQuerier, periodDays int, finePerDay decimal.Decimal) *LoanService {
	return &LoanService{
		querier:    querier,
		periodDays: periodDays,
		finePerDay: finePerDay,
		now:        time.Now,
	}
}

// List returns the loans the caller may see: admins get every loan on a copy
// of their library, members get their own. Overdue fines are computed and
// persisted as part of the read.
func (s *LoanService) List(ctx context.Context, caller models.Caller) ([]models.LoanResponse, error) {
	var (
		rows []queries.LoanDetailRow
		err  error
	)
	switch {
	case caller.IsAdmin():
		if caller.LibraryID == nil {
			return nil, fmt.Errorf("admin has no library assigned: %w", ErrForbidden)
		}
		rows, err = s.querier.ListLoansByLibrary(ctx, *caller.LibraryID)
	default:
		if caller.MemberID == nil {
			return nil, fmt.Errorf("account has no linked member: %w", ErrForbidden)
		}
		rows, err = s.querier.ListLoansByMember(ctx, *caller.MemberID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list loans: %w", err)
	}

	today := s.now()
	responses := make([]models.LoanResponse, len(rows))
	for i := range rows {
		if err := s.applyFineIfOverdue(ctx, &rows[i], today); err != nil {
			return nil, err
		}
		responses[i] = loanDetailToResponse(rows[i])
	}
	return responses, nil
}

// Get returns one loan, after the same scope check the original list uses: a
// loan outside the caller's library (or not the member's own) reads as not
// found rather than forbidden.
func (s *LoanService) Get(ctx context.Context, caller models.Caller, id int32) (*models.LoanResponse, error) {
	row, err := s.getScopedLoan(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if err := s.applyFineIfOverdue(ctx, row, s.now()); err != nil {
		return nil, err
	}
	resp := loanDetailToResponse(*row)
	return &resp, nil
}

// Create is the admin-side loan creation: the copy must belong to the
// admin's library and still be available. The copy is claimed with an atomic
// conditional update so two concurrent creations cannot both succeed.
func (s *LoanService) Create(ctx context.Context, caller models.Caller, req models.CreateLoanRequest) (*models.LoanResponse, error) {
	if caller.LibraryID == nil {
		return nil, fmt.Errorf("admin has no library assigned: %w", ErrForbidden)
	}

	if _, err := s.querier.GetBookCopyForLibrary(ctx, queries.GetBookCopyForLibraryParams{
		ID:        req.BookCopyID,
		LibraryID: *caller.LibraryID,
	}); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("book copy %d: %w", req.BookCopyID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get book copy: %w", err)
	}

	if _, err := s.querier.GetMemberByID(ctx, req.MemberID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("member %d: %w", req.MemberID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get member: %w", err)
	}

	return s.openLoan(ctx, req.BookCopyID, req.MemberID, req.Semester)
}

// BorrowOptions lists the available copies of a book for the self-service
// borrow page.
func (s *LoanService) BorrowOptions(ctx context.Context, bookID int32) (*models.BorrowPageResponse, error) {
	book, err := s.querier.GetBookByID(ctx, bookID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("book %d: %w", bookID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get book: %w", err)
	}

	rows, err := s.querier.ListAvailableCopiesByBook(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("failed to list available copies: %w", err)
	}

	copies := make([]models.AvailableCopyResponse, len(rows))
	for i, r := range rows {
		price := decimal.Zero
		if p := queries.NumericToDecimal(r.PricePerDay); p != nil {
			price = *p
		}
		copies[i] = models.AvailableCopyResponse{
			BookCopyID:    r.ID,
			InventoryCode: r.InventoryCode,
			LibraryName:   r.LibraryName,
			PricePerDay:   price,
		}
	}

	resp := &models.BorrowPageResponse{
		BookID:          book.ID,
		BookTitle:       book.Title,
		Author:          book.Author,
		AvailableCopies: copies,
	}
	if book.ImageUrl.Valid {
		resp.ImageURL = &book.ImageUrl.String
	}
	return resp, nil
}

// Borrow is the member self-service path: the caller's linked member borrows
// the chosen copy.
func (s *LoanService) Borrow(ctx context.Context, caller models.Caller, req models.BorrowRequest) (*models.LoanResponse, error) {
	if caller.MemberID == nil {
		return nil, fmt.Errorf("account has no linked member: %w", ErrForbidden)
	}
	return s.openLoan(ctx, req.BookCopyID, *caller.MemberID, nil)
}

// openLoan claims the copy and creates the active loan with default dates.
func (s *LoanService) openLoan(ctx context.Context, bookCopyID, memberID int32, semester *models.SemesterType) (*models.LoanResponse, error) {
	affected, err := s.querier.ClaimBookCopy(ctx, bookCopyID)
	if err != nil {
		return nil, fmt.Errorf("failed to claim book copy: %w", err)
	}
	if affected == 0 {
		return nil, fmt.Errorf("book copy %d: %w", bookCopyID, ErrCopyUnavailable)
	}

	now := s.now()
	sem := models.CurrentSemester(now)
	if semester != nil && models.ValidSemester(*semester) {
		sem = *semester
	}

	loan, err := s.querier.CreateLoan(ctx, queries.CreateLoanParams{
		MemberID:   memberID,
		BookCopyID: bookCopyID,
		BorrowDate: pgtype.Timestamptz{Time: now, Valid: true},
		DueDate:    pgtype.Timestamptz{Time: now.AddDate(0, 0, s.periodDays), Valid: true},
		Semester:   string(sem),
		Status:     string(models.LoanStatusActive),
	})
	if err != nil {
		// Give the claimed copy back; the loan row was never written.
		if relErr := s.querier.ReleaseBookCopy(ctx, bookCopyID); relErr != nil {
			return nil, fmt.Errorf("failed to create loan (copy %d left claimed): %w", bookCopyID, err)
		}
		return nil, fmt.Errorf("failed to create loan: %w", err)
	}

	resp := loanToResponse(loan)
	return &resp, nil
}

// Return closes a loan: return date set, fine recomputed as of the return
// date, copy released.
func (s *LoanService) Return(ctx context.Context, caller models.Caller, id int32) (*models.LoanResponse, error) {
	row, err := s.getScopedLoan(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if row.ReturnDate.Valid {
		return nil, fmt.Errorf("loan %d: %w", id, ErrAlreadyReturned)
	}

	returnedAt := s.now()
	fine := row.FineAmount
	if row.DueDate.Valid {
		amount := models.CalculateFine(row.DueDate.Time, returnedAt, s.finePerDay)
		if amount.IsPositive() {
			fine = queries.NumericFromDecimal(amount)
		}
	}

	loan, err := s.querier.ReturnLoan(ctx, queries.ReturnLoanParams{
		ID:         id,
		ReturnDate: pgtype.Timestamptz{Time: returnedAt, Valid: true},
		FineAmount: fine,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to return loan: %w", err)
	}

	if err := s.querier.ReleaseBookCopy(ctx, row.BookCopyID); err != nil {
		return nil, fmt.Errorf("failed to release book copy: %w", err)
	}

	resp := loanToResponse(loan)
	fillLoanNames(&resp, *row)
	return &resp, nil
}

// PayFine settles an outstanding fine in full. A loan with no fine due is
// left untouched; there are no partial payments.
func (s *LoanService) PayFine(ctx context.Context, caller models.Caller, id int32) (*models.LoanResponse, error) {
	row, err := s.getScopedLoan(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if err := s.applyFineIfOverdue(ctx, row, s.now()); err != nil {
		return nil, err
	}

	fine := queries.NumericToDecimal(row.FineAmount)
	if fine == nil || !fine.IsPositive() || row.IsFinePaid {
		resp := loanDetailToResponse(*row)
		return &resp, nil
	}

	loan, err := s.querier.PayLoanFine(ctx, queries.PayLoanFineParams{
		ID:           id,
		FinePaidDate: pgtype.Timestamptz{Time: s.now(), Valid: true},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to pay fine: %w", err)
	}

	resp := loanToResponse(loan)
	fillLoanNames(&resp, *row)
	return &resp, nil
}

// Update is the admin loan edit. Setting a return date forces the returned
// status and releases the copy, mirroring the return flow.
func (s *LoanService) Update(ctx context.Context, caller models.Caller, id int32, req models.UpdateLoanRequest) (*models.LoanResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	row, err := s.getScopedLoan(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	params := queries.UpdateLoanParams{
		ID:           id,
		MemberID:     row.MemberID,
		BorrowDate:   row.BorrowDate,
		DueDate:      row.DueDate,
		ReturnDate:   row.ReturnDate,
		FineAmount:   row.FineAmount,
		IsFinePaid:   row.IsFinePaid,
		FinePaidDate: row.FinePaidDate,
		Semester:     row.Semester,
		Status:       row.Status,
	}

	if req.MemberID != nil {
		params.MemberID = *req.MemberID
	}
	if req.BorrowDate != nil {
		params.BorrowDate = pgtype.Timestamptz{Time: *req.BorrowDate, Valid: true}
	}
	if req.DueDate != nil {
		params.DueDate = pgtype.Timestamptz{Time: *req.DueDate, Valid: true}
	}
	if req.ReturnDate != nil {
		params.ReturnDate = pgtype.Timestamptz{Time: *req.ReturnDate, Valid: true}
	}
	if req.Semester != nil {
		params.Semester = string(*req.Semester)
	}
	if req.Status != nil {
		params.Status = string(*req.Status)
	}
	if req.FineAmount != nil {
		params.FineAmount = queries.NumericFromDecimal(*req.FineAmount)
	}
	if req.IsFinePaid != nil {
		params.IsFinePaid = *req.IsFinePaid
	}
	if req.FinePaidDate != nil {
		params.FinePaidDate = pgtype.Timestamptz{Time: *req.FinePaidDate, Valid: true}
	}

	// The copy is freed only on the transition into returned; edits to an
	// already-returned loan must not touch availability, since the copy may
	// be out on a newer loan by now.
	closing := req.ReturnDate != nil && !row.ReturnDate.Valid
	if params.ReturnDate.Valid {
		params.Status = string(models.LoanStatusReturned)
	}

	loan, err := s.querier.UpdateLoan(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to update loan: %w", err)
	}

	if closing {
		if err := s.querier.ReleaseBookCopy(ctx, row.BookCopyID); err != nil {
			return nil, fmt.Errorf("failed to release book copy: %w", err)
		}
	}

	resp := loanToResponse(loan)
	fillLoanNames(&resp, *row)
	return &resp, nil
}

// Delete removes a loan; a still-active loan gives its copy back first.
func (s *LoanService) Delete(ctx context.Context, caller models.Caller, id int32) error {
	row, err := s.getScopedLoan(ctx, caller, id)
	if err != nil {
		return err
	}

	affected, err := s.querier.DeleteLoan(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete loan: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("loan %d: %w", id, ErrNotFound)
	}

	if !row.ReturnDate.Valid {
		if err := s.querier.ReleaseBookCopy(ctx, row.BookCopyID); err != nil {
			return fmt.Errorf("failed to release book copy: %w", err)
		}
	}
	return nil
}

// getScopedLoan fetches a loan and applies the caller's visibility rules:
// admins see loans on their own library's copies, members see their own
// loans. Anything else is reported as not found.
func (s *LoanService) getScopedLoan(ctx context.Context, caller models.Caller, id int32) (*queries.LoanDetailRow, error) {
	row, err := s.querier.GetLoanDetail(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("loan %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get loan: %w", err)
	}

	switch {
	case caller.IsAdmin():
		if caller.LibraryID == nil {
			return nil, fmt.Errorf("admin has no library assigned: %w", ErrForbidden)
		}
		if row.LibraryID != *caller.LibraryID {
			return nil, fmt.Errorf("loan %d: %w", id, ErrNotFound)
		}
	default:
		if caller.MemberID == nil {
			return nil, fmt.Errorf("account has no linked member: %w", ErrForbidden)
		}
		if row.MemberID != *caller.MemberID {
			return nil, fmt.Errorf("loan %d: %w", id, ErrNotFound)
		}
	}
	return &row, nil
}

// applyFineIfOverdue is the inline overdue computation, run on every loan
// read. Idempotent: an unreturned loan past its due date gets the overdue
// status and a fine of whole-days-late times the daily rate, persisted
// immediately; anything else is untouched.
func (s *LoanService) applyFineIfOverdue(ctx context.Context, row *queries.LoanDetailRow, today time.Time) error {
	if row.ReturnDate.Valid || !row.DueDate.Valid {
		return nil
	}
	days := models.OverdueDays(row.DueDate.Time, today)
	if days == 0 {
		return nil
	}

	fine := s.finePerDay.Mul(decimal.NewFromInt(int64(days)))
	fineNumeric := queries.NumericFromDecimal(fine)
	if err := s.querier.MarkLoanOverdue(ctx, queries.MarkLoanOverdueParams{
		ID:         row.ID,
		FineAmount: fineNumeric,
	}); err != nil {
		return fmt.Errorf("failed to persist overdue fine: %w", err)
	}

	row.Status = string(models.LoanStatusOverdue)
	row.FineAmount = fineNumeric
	return nil
}

func loanToResponse(l queries.Loan) models.LoanResponse {
	resp := models.LoanResponse{
		ID:         l.ID,
		MemberID:   l.MemberID,
		BookCopyID: l.BookCopyID,
		IsFinePaid: l.IsFinePaid,
		Semester:   models.SemesterType(l.Semester),
		Status:     models.LoanStatus(l.Status),
		FineAmount: queries.NumericToDecimal(l.FineAmount),
	}
	if l.BorrowDate.Valid {
		resp.BorrowDate = &l.BorrowDate.Time
	}
	if l.DueDate.Valid {
		resp.DueDate = &l.DueDate.Time
	}
	if l.ReturnDate.Valid {
		resp.ReturnDate = &l.ReturnDate.Time
	}
	if l.FinePaidDate.Valid {
		resp.FinePaidDate = &l.FinePaidDate.Time
	}
	if l.CreatedAt.Valid {
		resp.CreatedAt = l.CreatedAt.Time
	}
	if l.UpdatedAt.Valid {
		resp.UpdatedAt = l.UpdatedAt.Time
	}
	return resp
}

func loanDetailToResponse(row queries.LoanDetailRow) models.LoanResponse {
	resp := loanToResponse(row.Loan)
	fillLoanNames(&resp, row)
	return resp
}

func fillLoanNames(resp *models.LoanResponse, row queries.LoanDetailRow) {
	resp.InventoryCode = row.InventoryCode
	resp.BookTitle = row.BookTitle
	resp.LibraryName = row.LibraryName
	resp.MemberName = models.MemberFullName(row.MemberFirst, row.MemberLast)
}
