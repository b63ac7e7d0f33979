package queries

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const loanColumns = `id, member_id, book_copy_id, borrow_date, due_date, return_date,
	fine_amount, is_fine_paid, fine_paid_date, semester, status, created_at, updated_at`

func scanLoan(row interface{ Scan(dest ...interface{}) error }) (Loan, error) {
	var l Loan
	err := row.Scan(
		&l.ID,
		&l.MemberID,
		&l.BookCopyID,
		&l.BorrowDate,
		&l.DueDate,
		&l.ReturnDate,
		&l.FineAmount,
		&l.IsFinePaid,
		&l.FinePaidDate,
		&l.Semester,
		&l.Status,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	return l, err
}

// LoanDetailRow joins a loan with the copy it covers and the names shown in
// every loan view. LibraryID is carried for scope checks.
type LoanDetailRow struct {
	Loan
	InventoryCode string
	LibraryID     int32
	LibraryName   string
	BookTitle     string
	MemberFirst   string
	MemberLast    string
}

const loanDetailSelect = `
	SELECT ` + `l.id, l.member_id, l.book_copy_id, l.borrow_date, l.due_date, l.return_date,
		l.fine_amount, l.is_fine_paid, l.fine_paid_date, l.semester, l.status, l.created_at, l.updated_at,
		bc.inventory_code, bc.library_id, lib.name, b.title, m.first_name, m.last_name
	FROM loans l
	JOIN book_copies bc ON bc.id = l.book_copy_id
	JOIN libraries lib ON lib.id = bc.library_id
	JOIN books b ON b.id = bc.book_id
	JOIN members m ON m.id = l.member_id`

func scanLoanDetail(row interface{ Scan(dest ...interface{}) error }) (LoanDetailRow, error) {
	var r LoanDetailRow
	err := row.Scan(
		&r.ID, &r.MemberID, &r.BookCopyID, &r.BorrowDate, &r.DueDate, &r.ReturnDate,
		&r.FineAmount, &r.IsFinePaid, &r.FinePaidDate, &r.Semester, &r.Status,
		&r.CreatedAt, &r.UpdatedAt,
		&r.InventoryCode, &r.LibraryID, &r.LibraryName, &r.BookTitle,
		&r.MemberFirst, &r.MemberLast,
	)
	return r, err
}

type CreateLoanParams struct {
	MemberID   int32
	BookCopyID int32
	BorrowDate pgtype.Timestamptz
	DueDate    pgtype.Timestamptz
	Semester   string
	Status     string
}

func (q *Queries) CreateLoan(ctx context.Context, arg CreateLoanParams) (Loan, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO loans (member_id, book_copy_id, borrow_date, due_date, semester, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+loanColumns,
		arg.MemberID, arg.BookCopyID, arg.BorrowDate, arg.DueDate, arg.Semester, arg.Status,
	)
	return scanLoan(row)
}

func (q *Queries) GetLoanDetail(ctx context.Context, id int32) (LoanDetailRow, error) {
	row := q.db.QueryRow(ctx, loanDetailSelect+` WHERE l.id = $1`, id)
	return scanLoanDetail(row)
}

func (q *Queries) listLoanDetails(ctx context.Context, sql string, args ...interface{}) ([]LoanDetailRow, error) {
	rows, err := q.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var loans []LoanDetailRow
	for rows.Next() {
		r, err := scanLoanDetail(rows)
		if err != nil {
			return nil, err
		}
		loans = append(loans, r)
	}
	return loans, rows.Err()
}

// ListLoansByLibrary lists loans whose copy belongs to the given library,
// most recent borrow first.
func (q *Queries) ListLoansByLibrary(ctx context.Context, libraryID int32) ([]LoanDetailRow, error) {
	return q.listLoanDetails(ctx,
		loanDetailSelect+` WHERE bc.library_id = $1 ORDER BY l.borrow_date DESC NULLS LAST`,
		libraryID)
}

func (q *Queries) ListLoansByMember(ctx context.Context, memberID int32) ([]LoanDetailRow, error) {
	return q.listLoanDetails(ctx,
		loanDetailSelect+` WHERE l.member_id = $1 ORDER BY l.borrow_date DESC NULLS LAST`,
		memberID)
}

type ListRecentLoansByLibraryParams struct {
	LibraryID int32
	Limit     int32
}

func (q *Queries) ListRecentLoansByLibrary(ctx context.Context, arg ListRecentLoansByLibraryParams) ([]LoanDetailRow, error) {
	return q.listLoanDetails(ctx,
		loanDetailSelect+` WHERE bc.library_id = $1 ORDER BY l.borrow_date DESC NULLS LAST LIMIT $2`,
		arg.LibraryID, arg.Limit)
}

type MarkLoanOverdueParams struct {
	ID         int32
	FineAmount pgtype.Numeric
}

// MarkLoanOverdue persists the inline overdue-fine computation.
func (q *Queries) MarkLoanOverdue(ctx context.Context, arg MarkLoanOverdueParams) error {
	_, err := q.db.Exec(ctx, `
		UPDATE loans SET status = 'overdue', fine_amount = $2, updated_at = now()
		WHERE id = $1`,
		arg.ID, arg.FineAmount,
	)
	return err
}

type ReturnLoanParams struct {
	ID         int32
	ReturnDate pgtype.Timestamptz
	FineAmount pgtype.Numeric
}

func (q *Queries) ReturnLoan(ctx context.Context, arg ReturnLoanParams) (Loan, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE loans
		SET return_date = $2, status = 'returned', fine_amount = $3, updated_at = now()
		WHERE id = $1
		RETURNING `+loanColumns,
		arg.ID, arg.ReturnDate, arg.FineAmount,
	)
	return scanLoan(row)
}

type PayLoanFineParams struct {
	ID           int32
	FinePaidDate pgtype.Timestamptz
}

func (q *Queries) PayLoanFine(ctx context.Context, arg PayLoanFineParams) (Loan, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE loans SET is_fine_paid = TRUE, fine_paid_date = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+loanColumns,
		arg.ID, arg.FinePaidDate,
	)
	return scanLoan(row)
}

type UpdateLoanParams struct {
	ID           int32
	MemberID     int32
	BorrowDate   pgtype.Timestamptz
	DueDate      pgtype.Timestamptz
	ReturnDate   pgtype.Timestamptz
	FineAmount   pgtype.Numeric
	IsFinePaid   bool
	FinePaidDate pgtype.Timestamptz
	Semester     string
	Status       string
}

func (q *Queries) UpdateLoan(ctx context.Context, arg UpdateLoanParams) (Loan, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE loans
		SET member_id = $2, borrow_date = $3, due_date = $4, return_date = $5,
		    fine_amount = $6, is_fine_paid = $7, fine_paid_date = $8,
		    semester = $9, status = $10, updated_at = now()
		WHERE id = $1
		RETURNING `+loanColumns,
		arg.ID, arg.MemberID, arg.BorrowDate, arg.DueDate, arg.ReturnDate,
		arg.FineAmount, arg.IsFinePaid, arg.FinePaidDate, arg.Semester, arg.Status,
	)
	return scanLoan(row)
}

func (q *Queries) DeleteLoan(ctx context.Context, id int32) (int64, error) {
	tag, err := q.db.Exec(ctx, `DELETE FROM loans WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (q *Queries) CountActiveLoansByLibrary(ctx context.Context, libraryID int32) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx, `
		SELECT count(*)
		FROM loans l JOIN book_copies bc ON bc.id = l.book_copy_id
		WHERE bc.library_id = $1 AND l.return_date IS NULL AND l.status = 'active'`,
		libraryID).Scan(&count)
	return count, err
}

type CountOverdueLoansByLibraryParams struct {
	LibraryID int32
	AsOf      pgtype.Timestamptz
}

// CountOverdueLoansByLibrary counts by due date, not by stored status, so
// loans nobody has viewed since they slipped past due are included.
func (q *Queries) CountOverdueLoansByLibrary(ctx context.Context, arg CountOverdueLoansByLibraryParams) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx, `
		SELECT count(*)
		FROM loans l JOIN book_copies bc ON bc.id = l.book_copy_id
		WHERE bc.library_id = $1 AND l.return_date IS NULL
		  AND l.due_date IS NOT NULL AND l.due_date::date < $2::date`,
		arg.LibraryID, arg.AsOf).Scan(&count)
	return count, err
}
