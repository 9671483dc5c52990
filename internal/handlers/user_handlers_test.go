package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/devaaa008/document-management/internal/models"
	"github.com/devaaa008/document-management/internal/mykafka"
)

func TestRegister(t *testing.T) {
	db := initTestDB(t)
	h := &UserHandler{DB: db, Producer: &mykafka.Producer{}}

	e := echo.New()
	req, rec := jsonRequest(t, http.MethodPost, "/users/register", map[string]string{
		"username": "abcd1234",
		"password": "password",
	})
	require.NoError(t, h.Register(e.NewContext(req, rec)))
	require.Equal(t, http.StatusCreated, rec.Code)

	var created models.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.Equal(t, "abcd1234", created.Username)
	require.Equal(t, models.RoleViewer, created.Role)
	require.NotEmpty(t, created.ID)
	require.NotContains(t, rec.Body.String(), "password")

	var stored models.User
	require.NoError(t, db.Where("username = ?", "abcd1234").First(&stored).Error)
	require.NotEqual(t, "password", stored.PasswordHash)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	db := initTestDB(t)
	h := &UserHandler{DB: db, Producer: &mykafka.Producer{}}

	e := echo.New()
	payload := map[string]string{"username": "abcd1234", "password": "password"}

	req, rec := jsonRequest(t, http.MethodPost, "/users/register", payload)
	require.NoError(t, h.Register(e.NewContext(req, rec)))
	require.Equal(t, http.StatusCreated, rec.Code)

	req, rec = jsonRequest(t, http.MethodPost, "/users/register", payload)
	err := h.Register(e.NewContext(req, rec))
	requireHTTPError(t, err, http.StatusBadRequest)
}

func TestRegisterInvalidRole(t *testing.T) {
	db := initTestDB(t)
	h := &UserHandler{DB: db, Producer: &mykafka.Producer{}}

	e := echo.New()
	req, rec := jsonRequest(t, http.MethodPost, "/users/register", map[string]string{
		"username": "test_user",
		"password": "password",
		"role":     "superuser",
	})
	err := h.Register(e.NewContext(req, rec))
	requireHTTPError(t, err, http.StatusBadRequest)
}

func TestGetAllUsersHidesPasswordHash(t *testing.T) {
	db := initTestDB(t)
	h := &UserHandler{DB: db, Producer: &mykafka.Producer{}}
	seedUser(t, db, "test_user", "password", models.RoleAdmin)

	e := echo.New()
	req, rec := jsonRequest(t, http.MethodGet, "/users/users", nil)
	require.NoError(t, h.GetAllUsers(e.NewContext(req, rec)))
	require.Equal(t, http.StatusOK, rec.Code)

	var users []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &users))
	require.Len(t, users, 1)
	require.Equal(t, "test_user", users[0]["username"])
	require.NotContains(t, users[0], "PasswordHash")
	require.NotContains(t, rec.Body.String(), "password_hash")
}

func TestUpdateRoles(t *testing.T) {
	db := initTestDB(t)
	h := &UserHandler{DB: db, Producer: &mykafka.Producer{}}
	u1 := seedUser(t, db, "first_user", "password", models.RoleViewer)
	u2 := seedUser(t, db, "second_user", "password", models.RoleViewer)

	e := echo.New()
	req, rec := jsonRequest(t, http.MethodPut, "/users/user", []map[string]interface{}{
		{"id": u1.ID, "role": models.RoleEditor},
		{"id": u2.ID, "role": models.RoleAdmin},
	})
	require.NoError(t, h.UpdateRoles(e.NewContext(req, rec)))
	require.Equal(t, http.StatusOK, rec.Code)

	var stored models.User
	require.NoError(t, db.First(&stored, u1.ID).Error)
	require.Equal(t, models.RoleEditor, stored.Role)
	stored = models.User{}
	require.NoError(t, db.First(&stored, u2.ID).Error)
	require.Equal(t, models.RoleAdmin, stored.Role)
}

func TestUpdateRolesUnknownUser(t *testing.T) {
	db := initTestDB(t)
	h := &UserHandler{DB: db, Producer: &mykafka.Producer{}}
	u := seedUser(t, db, "test_user", "password", models.RoleViewer)

	e := echo.New()
	req, rec := jsonRequest(t, http.MethodPut, "/users/user", []map[string]interface{}{
		{"id": u.ID, "role": models.RoleEditor},
		{"id": 999, "role": models.RoleAdmin},
	})
	err := h.UpdateRoles(e.NewContext(req, rec))
	requireHTTPError(t, err, http.StatusNotFound)

	// The batch rolls back as a whole.
	var stored models.User
	require.NoError(t, db.First(&stored, u.ID).Error)
	require.Equal(t, models.RoleViewer, stored.Role)
}

func TestUpdateRolesInvalidRole(t *testing.T) {
	db := initTestDB(t)
	h := &UserHandler{DB: db, Producer: &mykafka.Producer{}}
	u := seedUser(t, db, "test_user", "password", models.RoleViewer)

	e := echo.New()
	req, rec := jsonRequest(t, http.MethodPut, "/users/user", []map[string]interface{}{
		{"id": u.ID, "role": "root"},
	})
	err := h.UpdateRoles(e.NewContext(req, rec))
	requireHTTPError(t, err, http.StatusBadRequest)
}
