package queries

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const userColumns = `id, email, display_name, password_hash, role, library_id, member_id, is_active, created_at, updated_at`

func scanUser(row interface{ Scan(dest ...interface{}) error }) (User, error) {
	var u User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.DisplayName,
		&u.PasswordHash,
		&u.Role,
		&u.LibraryID,
		&u.MemberID,
		&u.IsActive,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	return u, err
}

type CreateUserParams struct {
	Email        string
	DisplayName  pgtype.Text
	PasswordHash string
	Role         string
	LibraryID    pgtype.Int4
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO users (email, display_name, password_hash, role, library_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+userColumns,
		arg.Email, arg.DisplayName, arg.PasswordHash, arg.Role, arg.LibraryID,
	)
	return scanUser(row)
}

func (q *Queries) GetUserByID(ctx context.Context, id int32) (User, error) {
	row := q.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	row := q.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1 AND is_active = TRUE`, email)
	return scanUser(row)
}

type UpdateUserProfileParams struct {
	ID          int32
	Email       string
	DisplayName pgtype.Text
}

func (q *Queries) UpdateUserProfile(ctx context.Context, arg UpdateUserProfileParams) (User, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE users SET email = $2, display_name = $3, updated_at = now()
		WHERE id = $1
		RETURNING `+userColumns,
		arg.ID, arg.Email, arg.DisplayName,
	)
	return scanUser(row)
}

type LinkUserToMemberParams struct {
	ID       int32
	MemberID int32
	Role     string
}

// LinkUserToMember records the member link and the granted role in one
// statement so a half-linked identity can never be observed.
func (q *Queries) LinkUserToMember(ctx context.Context, arg LinkUserToMemberParams) (User, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE users SET member_id = $2, role = $3, updated_at = now()
		WHERE id = $1
		RETURNING `+userColumns,
		arg.ID, arg.MemberID, arg.Role,
	)
	return scanUser(row)
}

type UpdateUserPasswordParams struct {
	ID           int32
	PasswordHash string
}

func (q *Queries) UpdateUserPassword(ctx context.Context, arg UpdateUserPasswordParams) error {
	_, err := q.db.Exec(ctx,
		`UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1`,
		arg.ID, arg.PasswordHash)
	return err
}
