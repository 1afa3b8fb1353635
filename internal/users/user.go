package users

import (
	"errors"
	"time"
)

// Typed outcomes surfaced by every Repository implementation. Handlers and
// the service match on these with errors.Is instead of parsing driver prose.
var (
	ErrNotFound      = errors.New("user not found")
	ErrUsernameTaken = errors.New("username already taken")
)

// Scope tags understood by the authorization layer. Flat set membership,
// not a hierarchy.
const (
	ScopeUser  = "user"
	ScopeAdmin = "admin"
)

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // never expose hash in JSON
	Scope        []string  `json:"scope"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// View is the sanitized representation handed to callers and sessions.
// It carries everything a client may see about a user.
type View struct {
	ID       int64    `json:"id"`
	Username string   `json:"username"`
	Scope    []string `json:"scope"`
}

func (u User) View() View {
	return View{
		ID:       u.ID,
		Username: u.Username,
		Scope:    u.Scope,
	}
}

type Pagination struct {
	TotalItems int `json:"totalItems"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
}

type Page struct {
	Pagination Pagination `json:"pagination"`
	Data       []View     `json:"data"`
}

// UpdateInput carries a partial update. Nil fields are left untouched;
// a present Password is re-hashed before it reaches the store.
type UpdateInput struct {
	Password *string
	Scope    []string
}
