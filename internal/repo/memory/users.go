package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/vinicius0026/hapi-postgres-boilerplate/internal/users"
)

// UsersRepo is an in-memory implementation of users.Repository. It backs the
// test suites and DB-less development, with the same typed outcomes and the
// same id-ascending list order as the postgres repo.
type UsersRepo struct {
	mu     sync.RWMutex
	nextID int64
	items  map[int64]users.User
}

func NewUsersRepo() *UsersRepo {
	return &UsersRepo{
		nextID: 1,
		items:  make(map[int64]users.User),
	}
}

func (r *UsersRepo) Create(_ context.Context, username, hash string, scope []string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.items {
		if u.Username == username {
			return 0, users.ErrUsernameTaken
		}
	}

	now := time.Now().UTC()

	u := users.User{
		ID:           r.nextID,
		Username:     username,
		PasswordHash: hash,
		Scope:        append([]string(nil), scope...),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	r.items[u.ID] = u
	r.nextID++

	return u.ID, nil
}

func (r *UsersRepo) GetByID(_ context.Context, id int64) (users.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.items[id]

	if !ok {
		return users.User{}, users.ErrNotFound
	}

	return u, nil
}

func (r *UsersRepo) GetByUsername(_ context.Context, username string) (users.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.items {
		if u.Username == username {
			return u, nil
		}
	}

	return users.User{}, users.ErrNotFound
}

func (r *UsersRepo) Update(_ context.Context, id int64, changes users.ChangeSet) (users.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.items[id]

	if !ok {
		return users.User{}, users.ErrNotFound
	}

	if changes.Hash != nil {
		u.PasswordHash = *changes.Hash
	}

	if changes.Scope != nil {
		u.Scope = append([]string(nil), changes.Scope...)
	}

	u.UpdatedAt = time.Now().UTC()
	r.items[id] = u

	return u, nil
}

func (r *UsersRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return users.ErrNotFound
	}

	delete(r.items, id)

	return nil
}

func (r *UsersRepo) List(_ context.Context, offset, limit int) ([]users.User, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]users.User, 0, len(r.items))

	for _, u := range r.items {
		all = append(all, u)
	}

	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	total := len(all)

	if offset >= total {
		return []users.User{}, total, nil
	}

	end := offset + limit

	if end > total {
		end = total
	}

	return all[offset:end], total, nil
}
