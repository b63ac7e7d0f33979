package queries

import (
	"github.com/jackc/pgx/v5/pgtype"
)

type Library struct {
	ID        int32
	Name      string
	Address   pgtype.Text
	City      pgtype.Text
	CreatedAt pgtype.Timestamptz
	UpdatedAt pgtype.Timestamptz
}

type Book struct {
	ID          int32
	Title       string
	Author      string
	Isbn        pgtype.Text
	Category    pgtype.Text
	Description pgtype.Text
	ImageUrl    pgtype.Text
	CreatedAt   pgtype.Timestamptz
	UpdatedAt   pgtype.Timestamptz
}

type BookCopy struct {
	ID            int32
	InventoryCode string
	IsAvailable   bool
	PricePerDay   pgtype.Numeric
	LibraryID     int32
	BookID        int32
	CreatedAt     pgtype.Timestamptz
	UpdatedAt     pgtype.Timestamptz
}

type Member struct {
	ID               int32
	FirstName        string
	LastName         string
	Email            pgtype.Text
	MembershipNumber string
	Phone            pgtype.Text
	ImageUrl         pgtype.Text
	UserID           pgtype.Int4
	CreatedAt        pgtype.Timestamptz
	UpdatedAt        pgtype.Timestamptz
}

type Librarian struct {
	ID        int32
	FirstName string
	LastName  string
	Email     pgtype.Text
	ImageUrl  pgtype.Text
	LibraryID int32
	CreatedAt pgtype.Timestamptz
	UpdatedAt pgtype.Timestamptz
}

type Loan struct {
	ID           int32
	MemberID     int32
	BookCopyID   int32
	BorrowDate   pgtype.Timestamptz
	DueDate      pgtype.Timestamptz
	ReturnDate   pgtype.Timestamptz
	FineAmount   pgtype.Numeric
	IsFinePaid   bool
	FinePaidDate pgtype.Timestamptz
	Semester     string
	Status       string
	CreatedAt    pgtype.Timestamptz
	UpdatedAt    pgtype.Timestamptz
}

type User struct {
	ID           int32
	Email        string
	DisplayName  pgtype.Text
	PasswordHash string
	Role         string
	LibraryID    pgtype.Int4
	MemberID     pgtype.Int4
	IsActive     bool
	CreatedAt    pgtype.Timestamptz
	UpdatedAt    pgtype.Timestamptz
}
