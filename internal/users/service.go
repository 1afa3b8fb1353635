package users

import (
	"context"
	"errors"

	"github.com/vinicius0026/hapi-postgres-boilerplate/internal/security"
)

// Service owns the credential lifecycle: hashing, typed error mapping and
// pagination math live here exactly once, regardless of which Repository
// backs it.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create hashes the plaintext password and persists a new record. Username
// uniqueness is enforced atomically by the store; a duplicate surfaces as
// ErrUsernameTaken no matter how two concurrent creates interleave.
func (s *Service) Create(ctx context.Context, username, password string, scope []string) (int64, error) {
	hash, err := security.HashPassword(password)

	if err != nil {
		return 0, err
	}

	return s.repo.Create(ctx, username, hash, scope)
}

func (s *Service) Read(ctx context.Context, id int64) (View, error) {
	u, err := s.repo.GetByID(ctx, id)

	if err != nil {
		return View{}, err
	}

	return u.View(), nil
}

// Update applies a partial update. An absent password keeps the stored hash;
// a present one is re-hashed before it reaches the store.
func (s *Service) Update(ctx context.Context, id int64, input UpdateInput) (View, error) {
	changes := ChangeSet{Scope: input.Scope}

	if input.Password != nil {
		hash, err := security.HashPassword(*input.Password)

		if err != nil {
			return View{}, err
		}

		changes.Hash = &hash
	}

	u, err := s.repo.Update(ctx, id, changes)

	if err != nil {
		return View{}, err
	}

	return u.View(), nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// List returns one page of users in ascending id order. totalItems counts
// every record, not just the returned page; a page past the end yields an
// empty data slice with the same total.
func (s *Service) List(ctx context.Context, page, limit int) (Page, error) {
	offset := (page - 1) * limit

	items, total, err := s.repo.List(ctx, offset, limit)

	if err != nil {
		return Page{}, err
	}

	views := make([]View, 0, len(items))

	for _, u := range items {
		views = append(views, u.View())
	}

	return Page{
		Pagination: Pagination{
			TotalItems: total,
			Page:       page,
			Limit:      limit,
		},
		Data: views,
	}, nil
}

// ValidateCredentials checks a username/password pair against the store.
// Unknown username and wrong password are business outcomes, reported as
// ok=false; only storage faults come back as errors.
func (s *Service) ValidateCredentials(ctx context.Context, username, password string) (View, bool, error) {
	u, err := s.repo.GetByUsername(ctx, username)

	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return View{}, false, nil
		}

		return View{}, false, err
	}

	if err := security.CheckPassword(u.PasswordHash, password); err != nil {
		return View{}, false, nil
	}

	return u.View(), true, nil
}
