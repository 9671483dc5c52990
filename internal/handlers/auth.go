package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/devaaa008/document-management/internal/hash"
	"github.com/devaaa008/document-management/internal/middleware/auth"
	"github.com/devaaa008/document-management/internal/models"
	"github.com/devaaa008/document-management/internal/mykafka"
	"github.com/devaaa008/document-management/internal/revocation"
	"github.com/devaaa008/document-management/internal/tokens"
)

type AuthHandler struct {
	DB        *gorm.DB
	JWTSecret []byte
	Revoked   *revocation.Store
	Producer  *mykafka.Producer
}

func (h *AuthHandler) publish(c echo.Context, key string, event map[string]interface{}) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "user_events", key, event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}

// Login answers the same 401 for an unknown username and a wrong password.
func (h *AuthHandler) Login(c echo.Context) error {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	var user models.User
	if err := h.DB.Where("username = ?", req.Username).First(&user).Error; err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}

	if !hash.CheckPassword(user.PasswordHash, req.Password) {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}

	accessToken, err := tokens.IssueAccessToken(user.ID, user.Username, user.Role, h.JWTSecret, tokens.AccessTokenTTL)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "could not create access token")
	}

	h.publish(c, fmt.Sprint(user.ID), map[string]interface{}{
		"type":     "user_logged_in",
		"userID":   user.ID,
		"username": user.Username,
	})

	return c.JSON(http.StatusOK, echo.Map{
		"access_token": accessToken,
	})
}

// Logout revokes whatever token string the caller presents. The token is not
// verified first: revoking an expired or garbage token is harmless, while
// refusing to revoke a valid one is not.
func (h *AuthHandler) Logout(c echo.Context) error {
	token, err := auth.ExtractBearer(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "missing or malformed authorization header")
	}

	if err := h.Revoked.Add(token); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "could not revoke token")
	}

	h.publish(c, token, map[string]interface{}{
		"type": "user_logged_out",
	})

	return c.JSON(http.StatusOK, echo.Map{
		"message": "logged out",
	})
}
