package session

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/vinicius0026/hapi-postgres-boilerplate/internal/users"
)

// CookieName is the cookie the signed session token travels in.
const CookieName = "session"

// DefaultTTL is how long a session stays valid after issuance.
const DefaultTTL = 24 * time.Hour

type Claims struct {
	Username string   `json:"username"`
	Scope    []string `json:"scope"`
	SID      string   `json:"sid"`
	jwt.RegisteredClaims
}

// Principal rebuilds the sanitized user view the session was issued for.
func (c *Claims) Principal() users.View {
	id, _ := strconv.ParseInt(c.Subject, 10, 64)

	return users.View{
		ID:       id,
		Username: c.Username,
		Scope:    c.Scope,
	}
}

// Manager signs and verifies session tokens. The token carries the principal
// plus a session id; the id is what the Store revokes on logout.
type Manager struct {
	secret []byte
	ttl    time.Duration
}

func NewManager(secret string, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &Manager{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Issue mints a signed token bound to the given principal.
func (m *Manager) Issue(principal users.View) (token string, sid string, expiresAt time.Time, err error) {
	now := time.Now().UTC()
	sid = uuid.NewString()
	expiresAt = now.Add(m.ttl)

	claims := Claims{
		Username: principal.Username,
		Scope:    principal.Scope,
		SID:      sid,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(principal.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)

	return
}

// Verify parses and validates a session token, enforcing HS256.
func (m *Manager) Verify(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		_, ok := t.Method.(*jwt.SigningMethodHMAC)

		if !ok {
			return nil, errors.New("unexpected signing method")
		}

		return m.secret, nil
	})

	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)

	if !ok || !token.Valid {
		return nil, errors.New("invalid session token")
	}

	if claims.SID == "" {
		return nil, errors.New("missing session id")
	}

	return claims, nil
}
