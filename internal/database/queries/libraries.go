package queries

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const libraryColumns = `id, name, address, city, created_at, updated_at`

func scanLibrary(row interface{ Scan(dest ...interface{}) error }) (Library, error) {
	var l Library
	err := row.Scan(
		&l.ID,
		&l.Name,
		&l.Address,
		&l.City,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	return l, err
}

type CreateLibraryParams struct {
	Name    string
	Address pgtype.Text
	City    pgtype.Text
}

func (q *Queries) CreateLibrary(ctx context.Context, arg CreateLibraryParams) (Library, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO libraries (name, address, city)
		VALUES ($1, $2, $3)
		RETURNING `+libraryColumns,
		arg.Name, arg.Address, arg.City,
	)
	return scanLibrary(row)
}

func (q *Queries) GetLibraryByID(ctx context.Context, id int32) (Library, error) {
	row := q.db.QueryRow(ctx, `SELECT `+libraryColumns+` FROM libraries WHERE id = $1`, id)
	return scanLibrary(row)
}

func (q *Queries) ListLibraries(ctx context.Context) ([]Library, error) {
	rows, err := q.db.Query(ctx, `SELECT `+libraryColumns+` FROM libraries ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var libraries []Library
	for rows.Next() {
		l, err := scanLibrary(rows)
		if err != nil {
			return nil, err
		}
		libraries = append(libraries, l)
	}
	return libraries, rows.Err()
}

type UpdateLibraryParams struct {
	ID      int32
	Name    string
	Address pgtype.Text
	City    pgtype.Text
}

func (q *Queries) UpdateLibrary(ctx context.Context, arg UpdateLibraryParams) (Library, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE libraries
		SET name = $2, address = $3, city = $4, updated_at = now()
		WHERE id = $1
		RETURNING `+libraryColumns,
		arg.ID, arg.Name, arg.Address, arg.City,
	)
	return scanLibrary(row)
}

func (q *Queries) DeleteLibrary(ctx context.Context, id int32) (int64, error) {
	tag, err := q.db.Exec(ctx, `DELETE FROM libraries WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// LibraryInventoryRow is one book's copy counts within one library.
type LibraryInventoryRow struct {
	BookID          int32
	Title           string
	Author          string
	TotalCopies     int64
	AvailableCopies int64
}

func (q *Queries) ListLibraryInventory(ctx context.Context, libraryID int32) ([]LibraryInventoryRow, error) {
	rows, err := q.db.Query(ctx, `
		SELECT b.id, b.title, b.author,
		       count(*) AS total_copies,
		       count(*) FILTER (WHERE bc.is_available) AS available_copies
		FROM book_copies bc
		JOIN books b ON b.id = bc.book_id
		WHERE bc.library_id = $1
		GROUP BY b.id, b.title, b.author
		ORDER BY b.title`,
		libraryID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var inventory []LibraryInventoryRow
	for rows.Next() {
		var r LibraryInventoryRow
		if err := rows.Scan(&r.BookID, &r.Title, &r.Author, &r.TotalCopies, &r.AvailableCopies); err != nil {
			return nil, err
		}
		inventory = append(inventory, r)
	}
	return inventory, rows.Err()
}
