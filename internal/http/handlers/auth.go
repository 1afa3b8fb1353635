package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vinicius0026/hapi-postgres-boilerplate/internal/config"
	"github.com/vinicius0026/hapi-postgres-boilerplate/internal/http/middlewares"
	"github.com/vinicius0026/hapi-postgres-boilerplate/internal/session"
	"github.com/vinicius0026/hapi-postgres-boilerplate/internal/users"
)

// CredentialsValidator is the only part of the credential store the session
// gate consumes.
type CredentialsValidator interface {
	ValidateCredentials(ctx context.Context, username, password string) (users.View, bool, error)
}

type AuthHandler struct {
	creds    CredentialsValidator
	manager  *session.Manager
	sessions session.Store
	cfg      config.Config
}

func NewAuthHandler(creds CredentialsValidator, manager *session.Manager, sessions session.Store, cfg config.Config) *AuthHandler {
	return &AuthHandler{
		creds:    creds,
		manager:  manager,
		sessions: sessions,
		cfg:      cfg,
	}
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required,min=2,max=50"`
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	principal, ok, err := h.creds.ValidateCredentials(cctx, req.Username, req.Password)

	if err != nil {
		RespondInternal(ctx, "Could not log in")
		return
	}

	// one generic message for unknown user and wrong password alike
	if !ok {
		RespondUnAuthorized(ctx, "invalid_credentials", "Bad username or password")
		return
	}

	token, sid, expiresAt, err := h.manager.Issue(principal)

	if err != nil {
		RespondInternal(ctx, "Could not create session")
		return
	}

	if err := h.sessions.Save(cctx, sid, time.Until(expiresAt)); err != nil {
		RespondInternal(ctx, "Could not create session")
		return
	}

	h.setSessionCookie(ctx, token, expiresAt)

	ctx.JSON(http.StatusOK, gin.H{
		"ok":      true,
		"message": "login successful",
		"data":    principal,
	})
}

// Logout revokes the current session. Deleting an already-gone session id is
// a no-op, so the operation is idempotent.
func (h *AuthHandler) Logout(ctx *gin.Context) {
	sid, ok := middlewares.SessionIDFromContext(ctx)

	if ok && sid != "" {
		cctx, cancel := config.WithTimeout(2 * time.Second)

		defer cancel()

		_ = h.sessions.Delete(cctx, sid)
	}

	h.clearSessionCookie(ctx)

	ctx.JSON(http.StatusOK, gin.H{
		"ok":      true,
		"message": "logout successful",
	})
}

func (h *AuthHandler) setSessionCookie(ctx *gin.Context, token string, expiresAt time.Time) {
	secure := h.cfg.Env == "prod"

	maxAge := int(time.Until(expiresAt).Seconds())

	ctx.SetSameSite(http.SameSiteStrictMode)

	ctx.SetCookie(
		session.CookieName,
		token,
		maxAge,
		"/",
		"",
		secure,
		true, // HttpOnly.
	)
}

func (h *AuthHandler) clearSessionCookie(ctx *gin.Context) {
	secure := h.cfg.Env == "prod"
	ctx.SetSameSite(http.SameSiteStrictMode)
	ctx.SetCookie(
		session.CookieName,
		"",
		-1,
		"/",
		"",
		secure,
		true,
	)
}
