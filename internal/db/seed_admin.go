package db

import (
	"context"
	"errors"

	"github.com/vinicius0026/hapi-postgres-boilerplate/internal/config"
	"github.com/vinicius0026/hapi-postgres-boilerplate/internal/users"
)

// EnsureAdminUser seeds the configured admin account on startup. The insert
// goes through the regular create path, so a concurrent replica racing on
// the same seed simply observes the unique constraint and moves on.
func EnsureAdminUser(ctx context.Context, svc *users.Service, cfg config.Config) error {
	if cfg.AdminUsername == "" || cfg.AdminPassword == "" {
		return nil
	}

	_, err := svc.Create(ctx, cfg.AdminUsername, cfg.AdminPassword, []string{users.ScopeUser, users.ScopeAdmin})

	if errors.Is(err, users.ErrUsernameTaken) {
		return nil
	}

	return err
}
