// Package instrumented decorates a users.Repository with latency and error
// metrics per logical operation.
package instrumented

import (
	"context"
	"errors"

	"github.com/vinicius0026/hapi-postgres-boilerplate/internal/observability"
	"github.com/vinicius0026/hapi-postgres-boilerplate/internal/users"
)

type UsersRepo struct {
	next users.Repository
	prom *observability.Prom
}

func NewUsersRepo(next users.Repository, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{next: next, prom: prom}
}

func (r *UsersRepo) Create(ctx context.Context, username, hash string, scope []string) (int64, error) {
	var id int64
	var err error

	_ = r.prom.ObserveDB("users.create", func() error {
		id, err = r.next.Create(ctx, username, hash, scope)
		return metricErr(err)
	})

	return id, err
}

func (r *UsersRepo) GetByID(ctx context.Context, id int64) (users.User, error) {
	var u users.User
	var err error

	_ = r.prom.ObserveDB("users.get_by_id", func() error {
		u, err = r.next.GetByID(ctx, id)
		return metricErr(err)
	})

	return u, err
}

func (r *UsersRepo) GetByUsername(ctx context.Context, username string) (users.User, error) {
	var u users.User
	var err error

	_ = r.prom.ObserveDB("users.get_by_username", func() error {
		u, err = r.next.GetByUsername(ctx, username)
		return metricErr(err)
	})

	return u, err
}

func (r *UsersRepo) Update(ctx context.Context, id int64, changes users.ChangeSet) (users.User, error) {
	var u users.User
	var err error

	_ = r.prom.ObserveDB("users.update", func() error {
		u, err = r.next.Update(ctx, id, changes)
		return metricErr(err)
	})

	return u, err
}

func (r *UsersRepo) Delete(ctx context.Context, id int64) error {
	var err error

	_ = r.prom.ObserveDB("users.delete", func() error {
		err = r.next.Delete(ctx, id)
		return metricErr(err)
	})

	return err
}

func (r *UsersRepo) List(ctx context.Context, offset, limit int) ([]users.User, int, error) {
	var out []users.User
	var total int
	var err error

	_ = r.prom.ObserveDB("users.list", func() error {
		out, total, err = r.next.List(ctx, offset, limit)
		return metricErr(err)
	})

	return out, total, err
}

// metricErr keeps business outcomes out of the DB error counters; only
// genuine storage faults should alert.
func metricErr(err error) error {
	if errors.Is(err, users.ErrNotFound) || errors.Is(err, users.ErrUsernameTaken) {
		return nil
	}

	return err
}
