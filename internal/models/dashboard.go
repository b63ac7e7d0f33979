package models

import "time"

// RecentLoan is one row of the dashboard's recent-activity table. Status is
// the effective status: an unreturned loan past its due date reads as
// overdue even if the stored row has not been touched yet.
type RecentLoan struct {
	LoanID        int32      `json:"loan_id"`
	BookTitle     string     `json:"book_title"`
	MemberName    string     `json:"member_name"`
	InventoryCode string     `json:"inventory_code"`
	BorrowDate    *time.Time `json:"borrow_date"`
	DueDate       *time.Time `json:"due_date"`
	Status        string     `json:"status"`
	IsOverdue     bool       `json:"is_overdue"`
}

// DashboardResponse is the read-only rollup for the acting admin's library.
type DashboardResponse struct {
	LibraryName     string       `json:"library_name"`
	TotalCopies     int64        `json:"total_copies"`
	AvailableCopies int64        `json:"available_copies"`
	ActiveLoans     int64        `json:"active_loans"`
	OverdueLoans    int64        `json:"overdue_loans"`
	RecentLoans     []RecentLoan `json:"recent_loans"`
}
