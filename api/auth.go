package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"tasktracker/domain"
)

// SessionCookie is the cookie carrying the opaque session token.
const SessionCookie = "board_session"

const userContextKey = "user"

// Auth verifies credentials against stored bcrypt hashes and resolves session
// tokens to identities.
type Auth struct {
	users    CredentialStore
	sessions Sessions
	ttl      time.Duration
}

// NewAuth creates an Auth using the given credential store and session store.
func NewAuth(users CredentialStore, sessions Sessions, ttl time.Duration) *Auth {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Auth{users: users, sessions: sessions, ttl: ttl}
}

// Login checks the username/password pair and mints a session token. A missing
// user and a wrong password are indistinguishable to the caller.
func (a *Auth) Login(ctx context.Context, username, password string) (domain.User, string, error) {
	user, hash, err := a.users.Credentials(ctx, username)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.User{}, "", domain.ErrInvalidCredentials
	}
	if err != nil {
		return domain.User{}, "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return domain.User{}, "", domain.ErrInvalidCredentials
	}
	token, err := a.sessions.Create(ctx, user)
	if err != nil {
		return domain.User{}, "", err
	}
	return user, token, nil
}

// Logout invalidates the given session token.
func (a *Auth) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return a.sessions.Delete(ctx, token)
}

// userFromRequest resolves the request's session, reading the cookie first and
// falling back to a token query parameter for clients that cannot send
// cookies (the SSE stream cross-origin case).
func (a *Auth) userFromRequest(c echo.Context) (domain.User, bool, error) {
	token := ""
	if cookie, err := c.Cookie(SessionCookie); err == nil {
		token = cookie.Value
	}
	if token == "" {
		token = c.QueryParam("token")
	}
	if token == "" {
		return domain.User{}, false, nil
	}
	return a.sessions.Get(c.Request().Context(), token)
}

// tokenFromRequest returns the raw session token a request presented, if any.
func tokenFromRequest(c echo.Context) string {
	if cookie, err := c.Cookie(SessionCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return c.QueryParam("token")
}

// RequireSession gates a handler behind a valid session and stashes the
// authenticated user in the request context.
func (a *Auth) RequireSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, ok, err := a.userFromRequest(c)
		if err != nil {
			c.Logger().Error(err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "session lookup failed"})
		}
		if !ok {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Unauthorized"})
		}
		c.Set(userContextKey, user)
		return next(c)
	}
}

// currentUser returns the identity stashed by RequireSession.
func currentUser(c echo.Context) domain.User {
	user, _ := c.Get(userContextKey).(domain.User)
	return user
}

func (a *Auth) sessionCookie(token string) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(a.ttl / time.Second),
	}
}

func clearedSessionCookie() *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	}
}
