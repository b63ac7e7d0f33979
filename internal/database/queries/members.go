package queries

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const memberColumns = `id, first_name, last_name, email, membership_number, phone, image_url, user_id, created_at, updated_at`

func scanMember(row interface{ Scan(dest ...interface{}) error }) (Member, error) {
	var m Member
	err := row.Scan(
		&m.ID,
		&m.FirstName,
		&m.LastName,
		&m.Email,
		&m.MembershipNumber,
		&m.Phone,
		&m.ImageUrl,
		&m.UserID,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	return m, err
}

type CreateMemberParams struct {
	FirstName        string
	LastName         string
	Email            pgtype.Text
	MembershipNumber string
	Phone            pgtype.Text
	ImageUrl         pgtype.Text
	UserID           pgtype.Int4
}

func (q *Queries) CreateMember(ctx context.Context, arg CreateMemberParams) (Member, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO members (first_name, last_name, email, membership_number, phone, image_url, user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+memberColumns,
		arg.FirstName, arg.LastName, arg.Email, arg.MembershipNumber,
		arg.Phone, arg.ImageUrl, arg.UserID,
	)
	return scanMember(row)
}

func (q *Queries) GetMemberByID(ctx context.Context, id int32) (Member, error) {
	row := q.db.QueryRow(ctx, `SELECT `+memberColumns+` FROM members WHERE id = $1`, id)
	return scanMember(row)
}

func (q *Queries) ListMembers(ctx context.Context) ([]Member, error) {
	rows, err := q.db.Query(ctx,
		`SELECT `+memberColumns+` FROM members ORDER BY last_name, first_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

type UpdateMemberParams struct {
	ID        int32
	FirstName string
	LastName  string
	Email     pgtype.Text
	Phone     pgtype.Text
	ImageUrl  pgtype.Text
}

func (q *Queries) UpdateMember(ctx context.Context, arg UpdateMemberParams) (Member, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE members
		SET first_name = $2, last_name = $3, email = $4, phone = $5, image_url = $6,
		    updated_at = now()
		WHERE id = $1
		RETURNING `+memberColumns,
		arg.ID, arg.FirstName, arg.LastName, arg.Email, arg.Phone, arg.ImageUrl,
	)
	return scanMember(row)
}

func (q *Queries) DeleteMember(ctx context.Context, id int32) (int64, error) {
	tag, err := q.db.Exec(ctx, `DELETE FROM members WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

type FindUnlinkedMemberByNameParams struct {
	FirstName string
	LastName  string
}

// FindUnlinkedMemberByName matches a member record that no auth identity has
// claimed yet, by exact name. Used by membership linking on profile update.
func (q *Queries) FindUnlinkedMemberByName(ctx context.Context, arg FindUnlinkedMemberByNameParams) (Member, error) {
	row := q.db.QueryRow(ctx, `
		SELECT `+memberColumns+` FROM members
		WHERE first_name = $1 AND last_name = $2 AND user_id IS NULL
		LIMIT 1`,
		arg.FirstName, arg.LastName,
	)
	return scanMember(row)
}

type LinkMemberToUserParams struct {
	ID     int32
	UserID int32
	Email  pgtype.Text
	Phone  pgtype.Text
}

// LinkMemberToUser claims an existing member for an auth identity, filling
// in contact fields only where the record has none.
func (q *Queries) LinkMemberToUser(ctx context.Context, arg LinkMemberToUserParams) (Member, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE members
		SET user_id = $2,
		    email = COALESCE(NULLIF(email, ''), $3),
		    phone = COALESCE(NULLIF(phone, ''), $4),
		    updated_at = now()
		WHERE id = $1
		RETURNING `+memberColumns,
		arg.ID, arg.UserID, arg.Email, arg.Phone,
	)
	return scanMember(row)
}
