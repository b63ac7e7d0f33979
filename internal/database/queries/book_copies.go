package queries

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const bookCopyColumns = `id, inventory_code, is_available, price_per_day, library_id, book_id, created_at, updated_at`

func scanBookCopy(row interface{ Scan(dest ...interface{}) error }) (BookCopy, error) {
	var c BookCopy
	err := row.Scan(
		&c.ID,
		&c.InventoryCode,
		&c.IsAvailable,
		&c.PricePerDay,
		&c.LibraryID,
		&c.BookID,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	return c, err
}

type CreateBookCopyParams struct {
	InventoryCode string
	IsAvailable   bool
	PricePerDay   pgtype.Numeric
	LibraryID     int32
	BookID        int32
}

func (q *Queries) CreateBookCopy(ctx context.Context, arg CreateBookCopyParams) (BookCopy, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO book_copies (inventory_code, is_available, price_per_day, library_id, book_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+bookCopyColumns,
		arg.InventoryCode, arg.IsAvailable, arg.PricePerDay, arg.LibraryID, arg.BookID,
	)
	return scanBookCopy(row)
}

func (q *Queries) GetBookCopyByID(ctx context.Context, id int32) (BookCopy, error) {
	row := q.db.QueryRow(ctx, `SELECT `+bookCopyColumns+` FROM book_copies WHERE id = $1`, id)
	return scanBookCopy(row)
}

type GetBookCopyForLibraryParams struct {
	ID        int32
	LibraryID int32
}

// GetBookCopyForLibrary fetches a copy only when it belongs to the given
// library; a copy in any other library scans as no rows.
func (q *Queries) GetBookCopyForLibrary(ctx context.Context, arg GetBookCopyForLibraryParams) (BookCopy, error) {
	row := q.db.QueryRow(ctx, `
		SELECT `+bookCopyColumns+` FROM book_copies WHERE id = $1 AND library_id = $2`,
		arg.ID, arg.LibraryID,
	)
	return scanBookCopy(row)
}

// BookCopyWithBookRow is a copy joined with its book title and library name
// for scoped inventory listings.
type BookCopyWithBookRow struct {
	BookCopy
	BookTitle   string
	LibraryName string
}

func (q *Queries) ListBookCopiesByLibrary(ctx context.Context, libraryID int32) ([]BookCopyWithBookRow, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+prefixColumns("bc", bookCopyColumns)+`, b.title, l.name
		FROM book_copies bc
		JOIN books b ON b.id = bc.book_id
		JOIN libraries l ON l.id = bc.library_id
		WHERE bc.library_id = $1
		ORDER BY b.title, bc.inventory_code`,
		libraryID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var copies []BookCopyWithBookRow
	for rows.Next() {
		var r BookCopyWithBookRow
		if err := rows.Scan(
			&r.ID, &r.InventoryCode, &r.IsAvailable, &r.PricePerDay, &r.LibraryID,
			&r.BookID, &r.CreatedAt, &r.UpdatedAt, &r.BookTitle, &r.LibraryName,
		); err != nil {
			return nil, err
		}
		copies = append(copies, r)
	}
	return copies, rows.Err()
}

// AvailableCopyRow is one borrowable copy of a book with the library that
// holds it, for the member borrow page.
type AvailableCopyRow struct {
	ID            int32
	InventoryCode string
	PricePerDay   pgtype.Numeric
	LibraryName   string
}

func (q *Queries) ListAvailableCopiesByBook(ctx context.Context, bookID int32) ([]AvailableCopyRow, error) {
	rows, err := q.db.Query(ctx, `
		SELECT bc.id, bc.inventory_code, bc.price_per_day, l.name
		FROM book_copies bc
		JOIN libraries l ON l.id = bc.library_id
		WHERE bc.book_id = $1 AND bc.is_available = TRUE
		ORDER BY l.name, bc.inventory_code`,
		bookID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var copies []AvailableCopyRow
	for rows.Next() {
		var r AvailableCopyRow
		if err := rows.Scan(&r.ID, &r.InventoryCode, &r.PricePerDay, &r.LibraryName); err != nil {
			return nil, err
		}
		copies = append(copies, r)
	}
	return copies, rows.Err()
}

type UpdateBookCopyParams struct {
	ID            int32
	LibraryID     int32
	InventoryCode string
	IsAvailable   bool
	PricePerDay   pgtype.Numeric
	BookID        int32
}

// UpdateBookCopy updates a copy in place. LibraryID participates only in the
// WHERE clause: a copy can never be moved to another library here.
func (q *Queries) UpdateBookCopy(ctx context.Context, arg UpdateBookCopyParams) (BookCopy, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE book_copies
		SET inventory_code = $3, is_available = $4, price_per_day = $5, book_id = $6,
		    updated_at = now()
		WHERE id = $1 AND library_id = $2
		RETURNING `+bookCopyColumns,
		arg.ID, arg.LibraryID, arg.InventoryCode, arg.IsAvailable, arg.PricePerDay, arg.BookID,
	)
	return scanBookCopy(row)
}

type DeleteBookCopyParams struct {
	ID        int32
	LibraryID int32
}

func (q *Queries) DeleteBookCopy(ctx context.Context, arg DeleteBookCopyParams) (int64, error) {
	tag, err := q.db.Exec(ctx, `DELETE FROM book_copies WHERE id = $1 AND library_id = $2`,
		arg.ID, arg.LibraryID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// ClaimBookCopy atomically flips an available copy to unavailable. Zero
// affected rows means the copy was already claimed (or does not exist), which
// closes the read-then-write race between two concurrent borrows.
func (q *Queries) ClaimBookCopy(ctx context.Context, id int32) (int64, error) {
	tag, err := q.db.Exec(ctx, `
		UPDATE book_copies SET is_available = FALSE, updated_at = now()
		WHERE id = $1 AND is_available = TRUE`,
		id,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// ReleaseBookCopy marks a copy available again after a return or a deleted
// active loan.
func (q *Queries) ReleaseBookCopy(ctx context.Context, id int32) error {
	_, err := q.db.Exec(ctx, `
		UPDATE book_copies SET is_available = TRUE, updated_at = now()
		WHERE id = $1`,
		id,
	)
	return err
}

func (q *Queries) CountCopiesByLibrary(ctx context.Context, libraryID int32) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx,
		`SELECT count(*) FROM book_copies WHERE library_id = $1`, libraryID).Scan(&count)
	return count, err
}

func (q *Queries) CountAvailableCopiesByLibrary(ctx context.Context, libraryID int32) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx,
		`SELECT count(*) FROM book_copies WHERE library_id = $1 AND is_available = TRUE`,
		libraryID).Scan(&count)
	return count, err
}
