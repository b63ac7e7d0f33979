package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// LoanStatus is the lifecycle state of a loan.
//
//	reserved -> active -> returned
//	                   -> overdue -> returned
//	                   -> cancelled
type LoanStatus string

const (
	LoanStatusReserved  LoanStatus = "reserved"
	LoanStatusActive    LoanStatus = "active"
	LoanStatusReturned  LoanStatus = "returned"
	LoanStatusOverdue   LoanStatus = "overdue"
	LoanStatusCancelled LoanStatus = "cancelled"
)

// SemesterType tags a loan with the academic half-year it was taken in.
type SemesterType string

const (
	SemesterWinter SemesterType = "winter"
	SemesterSummer SemesterType = "summer"
)

// ValidLoanStatus reports whether s is a known lifecycle state.
func ValidLoanStatus(s LoanStatus) bool {
	switch s {
	case LoanStatusReserved, LoanStatusActive, LoanStatusReturned, LoanStatusOverdue, LoanStatusCancelled:
		return true
	}
	return false
}

// ValidSemester reports whether s is a known semester tag.
func ValidSemester(s SemesterType) bool {
	return s == SemesterWinter || s == SemesterSummer
}

// CurrentSemester returns the semester tag for the given date: summer for
// April through September, winter otherwise.
func CurrentSemester(now time.Time) SemesterType {
	if now.Month() >= time.April && now.Month() <= time.September {
		return SemesterSummer
	}
	return SemesterWinter
}

// CreateLoanRequest is the admin-side loan creation (assigning a copy from
// the admin's library to a member).
type CreateLoanRequest struct {
	BookCopyID int32         `json:"book_copy_id" binding:"required"`
	MemberID   int32         `json:"member_id" binding:"required"`
	Semester   *SemesterType `json:"semester"`
}

// BorrowRequest is the member self-service confirmation of a chosen copy.
type BorrowRequest struct {
	BookCopyID int32 `json:"book_copy_id" binding:"required"`
}

// UpdateLoanRequest is the admin loan edit. Pointer fields distinguish
// "unset" from zero values.
type UpdateLoanRequest struct {
	MemberID     *int32           `json:"member_id"`
	BorrowDate   *time.Time       `json:"borrow_date"`
	DueDate      *time.Time       `json:"due_date"`
	ReturnDate   *time.Time       `json:"return_date"`
	Semester     *SemesterType    `json:"semester"`
	Status       *LoanStatus      `json:"status"`
	FineAmount   *decimal.Decimal `json:"fine_amount"`
	IsFinePaid   *bool            `json:"is_fine_paid"`
	FinePaidDate *time.Time       `json:"fine_paid_date"`
}

// Validate validates the UpdateLoanRequest.
func (r *UpdateLoanRequest) Validate() error {
	if r.Status != nil && !ValidLoanStatus(*r.Status) {
		return errors.New("status must be one of reserved, active, returned, overdue, cancelled")
	}
	if r.Semester != nil && !ValidSemester(*r.Semester) {
		return errors.New("semester must be winter or summer")
	}
	if r.FineAmount != nil && r.FineAmount.IsNegative() {
		return errors.New("fine_amount cannot be negative")
	}
	return nil
}

// LoanResponse represents the response for loan operations, denormalized
// with the copy, book, library and member it touches.
type LoanResponse struct {
	ID            int32            `json:"id"`
	MemberID      int32            `json:"member_id"`
	MemberName    string           `json:"member_name,omitempty"`
	BookCopyID    int32            `json:"book_copy_id"`
	InventoryCode string           `json:"inventory_code,omitempty"`
	BookTitle     string           `json:"book_title,omitempty"`
	LibraryName   string           `json:"library_name,omitempty"`
	BorrowDate    *time.Time       `json:"borrow_date"`
	DueDate       *time.Time       `json:"due_date"`
	ReturnDate    *time.Time       `json:"return_date"`
	FineAmount    *decimal.Decimal `json:"fine_amount"`
	IsFinePaid    bool             `json:"is_fine_paid"`
	FinePaidDate  *time.Time       `json:"fine_paid_date"`
	Semester      SemesterType     `json:"semester"`
	Status        LoanStatus       `json:"status"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// LoanListResponse represents the response for loan list operations
type LoanListResponse struct {
	Loans      []LoanResponse `json:"loans"`
	Pagination Pagination     `json:"pagination"`
}

// IsLoanOverdue reports whether an unreturned loan has passed its due date,
// compared by calendar day in UTC.
func IsLoanOverdue(dueDate, returnDate *time.Time, now time.Time) bool {
	if returnDate != nil || dueDate == nil {
		return false
	}
	return truncateToDay(now).After(truncateToDay(*dueDate))
}

// OverdueDays returns the number of whole calendar days past the due date at
// the given instant. Zero when not yet overdue.
func OverdueDays(dueDate time.Time, now time.Time) int {
	days := int(truncateToDay(now).Sub(truncateToDay(dueDate)).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// CalculateFine returns OverdueDays(dueDate, asOf) * ratePerDay.
func CalculateFine(dueDate time.Time, asOf time.Time, ratePerDay decimal.Decimal) decimal.Decimal {
	return ratePerDay.Mul(decimal.NewFromInt(int64(OverdueDays(dueDate, asOf))))
}

func truncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
