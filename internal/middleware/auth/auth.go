package auth

import (
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/devaaa008/document-management/internal/revocation"
	"github.com/devaaa008/document-management/internal/tokens"
)

const (
	CtxUserID   = "user_id"
	CtxUsername = "username"
	CtxRole     = "role"
	CtxToken    = "token"
)

var ErrNoIdentity = errors.New("no identity in request context")

// ExtractBearer returns the token from an "Authorization: Bearer <token>"
// header.
func ExtractBearer(c echo.Context) (string, error) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", errors.New("missing or malformed authorization header")
	}
	return parts[1], nil
}

// Middleware is the single entry point for authenticated routes. The order is
// deliberate: extract the token, check the revocation list, then verify the
// signature and expiry. A store failure rejects the request (fail closed).
// All rejection reasons produce the same 401 so callers cannot tell which
// check failed.
func Middleware(store *revocation.Store, secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := ExtractBearer(c)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or missing token")
			}

			revoked, err := store.Contains(token)
			if err != nil || revoked {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or missing token")
			}

			claims, err := tokens.AccessClaimsFromToken(token, secret)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or missing token")
			}

			userID, err := claims.UserID()
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or missing token")
			}

			c.Set(CtxUserID, userID)
			c.Set(CtxUsername, claims.Username)
			c.Set(CtxRole, claims.Role)
			c.Set(CtxToken, token)

			return next(c)
		}
	}
}

// RequireRole runs strictly after Middleware. A missing role means the route
// bypassed the auth gate and is treated as unauthenticated; a role outside
// the allow-list is a distinct 403.
func RequireRole(allowed ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(CtxRole).(string)
			if role == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or missing token")
			}
			if !slices.Contains(allowed, role) {
				return echo.NewHTTPError(http.StatusForbidden, "you don't have enough rights")
			}
			return next(c)
		}
	}
}

func UserIDFromContext(c echo.Context) (uint, error) {
	id, ok := c.Get(CtxUserID).(uint)
	if !ok {
		return 0, ErrNoIdentity
	}
	return id, nil
}

func RoleFromContext(c echo.Context) (string, error) {
	role, ok := c.Get(CtxRole).(string)
	if !ok || role == "" {
		return "", ErrNoIdentity
	}
	return role, nil
}

func TokenFromContext(c echo.Context) (string, error) {
	token, ok := c.Get(CtxToken).(string)
	if !ok || token == "" {
		return "", ErrNoIdentity
	}
	return token, nil
}
