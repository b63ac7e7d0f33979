package queries

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const librarianColumns = `id, first_name, last_name, email, image_url, library_id, created_at, updated_at`

func scanLibrarian(row interface{ Scan(dest ...interface{}) error }) (Librarian, error) {
	var l Librarian
	err := row.Scan(
		&l.ID,
		&l.FirstName,
		&l.LastName,
		&l.Email,
		&l.ImageUrl,
		&l.LibraryID,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	return l, err
}

type CreateLibrarianParams struct {
	FirstName string
	LastName  string
	Email     pgtype.Text
	ImageUrl  pgtype.Text
	LibraryID int32
}

func (q *Queries) CreateLibrarian(ctx context.Context, arg CreateLibrarianParams) (Librarian, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO librarians (first_name, last_name, email, image_url, library_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+librarianColumns,
		arg.FirstName, arg.LastName, arg.Email, arg.ImageUrl, arg.LibraryID,
	)
	return scanLibrarian(row)
}

type GetLibrarianForLibraryParams struct {
	ID        int32
	LibraryID int32
}

func (q *Queries) GetLibrarianForLibrary(ctx context.Context, arg GetLibrarianForLibraryParams) (Librarian, error) {
	row := q.db.QueryRow(ctx, `
		SELECT `+librarianColumns+` FROM librarians WHERE id = $1 AND library_id = $2`,
		arg.ID, arg.LibraryID,
	)
	return scanLibrarian(row)
}

func (q *Queries) ListLibrariansByLibrary(ctx context.Context, libraryID int32) ([]Librarian, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+librarianColumns+` FROM librarians
		WHERE library_id = $1
		ORDER BY last_name, first_name`,
		libraryID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var librarians []Librarian
	for rows.Next() {
		l, err := scanLibrarian(rows)
		if err != nil {
			return nil, err
		}
		librarians = append(librarians, l)
	}
	return librarians, rows.Err()
}

type UpdateLibrarianParams struct {
	ID        int32
	LibraryID int32
	FirstName string
	LastName  string
	Email     pgtype.Text
	ImageUrl  pgtype.Text
}

func (q *Queries) UpdateLibrarian(ctx context.Context, arg UpdateLibrarianParams) (Librarian, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE librarians
		SET first_name = $3, last_name = $4, email = $5, image_url = $6, updated_at = now()
		WHERE id = $1 AND library_id = $2
		RETURNING `+librarianColumns,
		arg.ID, arg.LibraryID, arg.FirstName, arg.LastName, arg.Email, arg.ImageUrl,
	)
	return scanLibrarian(row)
}

type DeleteLibrarianParams struct {
	ID        int32
	LibraryID int32
}

func (q *Queries) DeleteLibrarian(ctx context.Context, arg DeleteLibrarianParams) (int64, error) {
	tag, err := q.db.Exec(ctx, `DELETE FROM librarians WHERE id = $1 AND library_id = $2`,
		arg.ID, arg.LibraryID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
