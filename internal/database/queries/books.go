package queries

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const bookColumns = `id, title, author, isbn, category, description, image_url, created_at, updated_at`

func scanBook(row interface{ Scan(dest ...interface{}) error }) (Book, error) {
	var b Book
	err := row.Scan(
		&b.ID,
		&b.Title,
		&b.Author,
		&b.Isbn,
		&b.Category,
		&b.Description,
		&b.ImageUrl,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	return b, err
}

type CreateBookParams struct {
	Title       string
	Author      string
	Isbn        pgtype.Text
	Category    pgtype.Text
	Description pgtype.Text
	ImageUrl    pgtype.Text
}

func (q *Queries) CreateBook(ctx context.Context, arg CreateBookParams) (Book, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO books (title, author, isbn, category, description, image_url)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+bookColumns,
		arg.Title, arg.Author, arg.Isbn, arg.Category, arg.Description, arg.ImageUrl,
	)
	return scanBook(row)
}

func (q *Queries) GetBookByID(ctx context.Context, id int32) (Book, error) {
	row := q.db.QueryRow(ctx, `SELECT `+bookColumns+` FROM books WHERE id = $1`, id)
	return scanBook(row)
}

func (q *Queries) GetBookByISBN(ctx context.Context, isbn pgtype.Text) (Book, error) {
	row := q.db.QueryRow(ctx, `SELECT `+bookColumns+` FROM books WHERE isbn = $1`, isbn)
	return scanBook(row)
}

type UpdateBookParams struct {
	ID          int32
	Title       string
	Author      string
	Isbn        pgtype.Text
	Category    pgtype.Text
	Description pgtype.Text
	ImageUrl    pgtype.Text
}

func (q *Queries) UpdateBook(ctx context.Context, arg UpdateBookParams) (Book, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE books
		SET title = $2, author = $3, isbn = $4, category = $5, description = $6,
		    image_url = $7, updated_at = now()
		WHERE id = $1
		RETURNING `+bookColumns,
		arg.ID, arg.Title, arg.Author, arg.Isbn, arg.Category, arg.Description, arg.ImageUrl,
	)
	return scanBook(row)
}

func (q *Queries) DeleteBook(ctx context.Context, id int32) (int64, error) {
	tag, err := q.db.Exec(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// SearchBooksParams filters the public catalog. Empty strings and the zero
// LibraryID disable the corresponding filter, so one statement serves every
// combination the search form can produce.
type SearchBooksParams struct {
	Title     pgtype.Text
	Author    pgtype.Text
	Category  pgtype.Text
	LibraryID pgtype.Int4
	Limit     int32
	Offset    int32
}

const searchBooksWhere = `
	($1::text IS NULL OR b.title ILIKE '%' || $1 || '%')
	AND ($2::text IS NULL OR b.author ILIKE '%' || $2 || '%')
	AND ($3::text IS NULL OR b.category = $3)
	AND ($4::int IS NULL OR EXISTS (
		SELECT 1 FROM book_copies bc WHERE bc.book_id = b.id AND bc.library_id = $4))`

func (q *Queries) SearchBooks(ctx context.Context, arg SearchBooksParams) ([]Book, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+prefixColumns("b", bookColumns)+`
		FROM books b
		WHERE `+searchBooksWhere+`
		ORDER BY b.title
		LIMIT $5 OFFSET $6`,
		arg.Title, arg.Author, arg.Category, arg.LibraryID, arg.Limit, arg.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var books []Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	return books, rows.Err()
}

type CountBooksParams struct {
	Title     pgtype.Text
	Author    pgtype.Text
	Category  pgtype.Text
	LibraryID pgtype.Int4
}

func (q *Queries) CountBooks(ctx context.Context, arg CountBooksParams) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx, `
		SELECT count(*) FROM books b WHERE `+searchBooksWhere,
		arg.Title, arg.Author, arg.Category, arg.LibraryID,
	).Scan(&count)
	return count, err
}

func (q *Queries) ListBookCategories(ctx context.Context) ([]string, error) {
	rows, err := q.db.Query(ctx, `
		SELECT DISTINCT category FROM books
		WHERE category IS NOT NULL AND category <> ''
		ORDER BY category`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}
