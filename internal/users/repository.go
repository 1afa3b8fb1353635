package users

import "context"

// ChangeSet is what the service hands to a store on update: already-hashed
// credentials only, so backends never see plaintext passwords.
type ChangeSet struct {
	Hash  *string
	Scope []string
}

// Repository is the storage port for user records. Implementations map their
// driver's failure modes onto ErrNotFound / ErrUsernameTaken; anything else
// propagates untouched as an internal fault.
type Repository interface {
	Create(ctx context.Context, username, hash string, scope []string) (int64, error)
	GetByID(ctx context.Context, id int64) (User, error)
	GetByUsername(ctx context.Context, username string) (User, error)
	Update(ctx context.Context, id int64, changes ChangeSet) (User, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, offset, limit int) ([]User, int, error)
}
