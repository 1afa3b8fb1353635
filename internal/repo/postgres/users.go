package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vinicius0026/hapi-postgres-boilerplate/internal/users"
)

// poolIface is the slice of pgxpool.Pool the repo actually uses. Narrow on
// purpose so pgxmock can stand in during tests.
type poolIface interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type UsersRepo struct {
	pool poolIface
}

func NewUsersRepo(pool poolIface) *UsersRepo {
	return &UsersRepo{pool: pool}
}

// Create inserts a new user row. Uniqueness is left to the users_username_key
// constraint so two racing creates with the same username can never both
// land; the loser sees ErrUsernameTaken.
func (r *UsersRepo) Create(ctx context.Context, username, hash string, scope []string) (int64, error) {
	var id int64

	err := r.pool.QueryRow(
		ctx,
		`INSERT INTO users (username, hash, scope, created_at, updated_at)
         VALUES ($1, $2, $3, NOW(), NOW())
         RETURNING id`,
		username,
		hash,
		scope,
	).Scan(&id)

	if err != nil {
		var pgErr *pgconn.PgError

		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return 0, users.ErrUsernameTaken
		}

		return 0, err
	}

	return id, nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id int64) (users.User, error) {
	return r.scanOne(r.pool.QueryRow(
		ctx,
		`SELECT id, username, hash, scope, created_at, updated_at
         FROM users
         WHERE id = $1`,
		id,
	))
}

func (r *UsersRepo) GetByUsername(ctx context.Context, username string) (users.User, error) {
	return r.scanOne(r.pool.QueryRow(
		ctx,
		`SELECT id, username, hash, scope, created_at, updated_at
         FROM users
         WHERE username = $1`,
		username,
	))
}

// Update applies a partial update in a single statement: nil hash or scope
// keeps the stored column via COALESCE, so an omitted password can never
// null out credentials.
func (r *UsersRepo) Update(ctx context.Context, id int64, changes users.ChangeSet) (users.User, error) {
	u, err := r.scanOne(r.pool.QueryRow(
		ctx,
		`UPDATE users
            SET hash = COALESCE($2, hash),
                scope = COALESCE($3, scope),
                updated_at = NOW()
         WHERE id = $1
         RETURNING id, username, hash, scope, created_at, updated_at`,
		id,
		changes.Hash,
		changes.Scope,
	))

	if err != nil {
		return users.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)

	if err != nil {
		return err
	}

	// no rows deleted means the id never existed
	if tag.RowsAffected() == 0 {
		return users.ErrNotFound
	}

	return nil
}

// List returns one page in ascending id order. COUNT(*) OVER() rides along
// on every row so the total comes back in the same round trip; a page past
// the end needs a separate count query since no rows return.
func (r *UsersRepo) List(ctx context.Context, offset, limit int) ([]users.User, int, error) {
	rows, err := r.pool.Query(
		ctx,
		`SELECT id, username, hash, scope, created_at, updated_at,
                COUNT(*) OVER() AS total
         FROM users
         ORDER BY id ASC
         LIMIT $1 OFFSET $2`,
		limit,
		offset,
	)

	if err != nil {
		return nil, 0, err
	}

	defer rows.Close()

	out := make([]users.User, 0, limit)
	total := 0

	for rows.Next() {
		var u users.User
		var t int

		err = rows.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Scope, &u.CreatedAt, &u.UpdatedAt, &t)

		if err != nil {
			return nil, 0, err
		}

		total = t
		out = append(out, u)
	}

	err = rows.Err()

	if err != nil {
		return nil, 0, err
	}

	if len(out) == 0 {
		err = r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&total)

		if err != nil {
			return nil, 0, err
		}
	}

	return out, total, nil
}

func (r *UsersRepo) scanOne(row pgx.Row) (users.User, error) {
	var u users.User

	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Scope, &u.CreatedAt, &u.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return users.User{}, users.ErrNotFound
		}

		return users.User{}, err
	}

	return u, nil
}
