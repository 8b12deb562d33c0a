package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/taqyim-dev/taqyim-api/internal/identity"
	"github.com/taqyim-dev/taqyim-api/internal/middleware"
	"github.com/taqyim-dev/taqyim-api/internal/models"
)

type fakeCredRepo struct {
	cred *models.Credential
}

func (f *fakeCredRepo) FindByEmail(ctx context.Context, email string) (*models.Credential, error) {
	if f.cred != nil && f.cred.Email == email {
		return f.cred, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeCredRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return f.cred != nil && f.cred.Email == email, nil
}

func (f *fakeCredRepo) Create(ctx context.Context, cred *models.Credential) error {
	f.cred = cred
	return nil
}

type fakeProfiles struct {
	users map[string]models.User
}

func (f *fakeProfiles) UserByID(id string) *models.User {
	if u, ok := f.users[id]; ok {
		return &u
	}
	return nil
}

func newAuthFixture(withProfile bool) (*AuthHandler, *models.Credential) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("123456"), bcrypt.MinCost)
	cred := &models.Credential{ID: "cred-1", Email: "admin@school.sa", PasswordHash: string(hash)}
	ids := identity.NewService(&fakeCredRepo{cred: cred}, nil, nil, identity.Config{
		TokenSecret: "test-secret",
		TokenExpiry: time.Hour,
		Issuer:      "test",
	})

	profiles := &fakeProfiles{users: map[string]models.User{}}
	if withProfile {
		profiles.users[cred.ID] = models.User{ID: cred.ID, Name: "المدير العام", Role: models.RoleAdmin}
	}
	return NewAuthHandler(ids, profiles), cred
}

func postLogin(t *testing.T, h *AuthHandler, email, password string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body, _ := json.Marshal(models.LoginRequest{Email: email, Password: password})
	req, _ := http.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	h.Login(c)
	return w
}

func TestLoginReturnsTokenAndProfile(t *testing.T) {
	h, _ := newAuthFixture(true)

	w := postLogin(t, h, "admin@school.sa", "123456")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data models.LoginResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Data.AccessToken)
	require.NotNil(t, body.Data.User)
	assert.Equal(t, models.RoleAdmin, body.Data.User.Role)
}

func TestLoginWrongPassword(t *testing.T) {
	h, _ := newAuthFixture(true)

	w := postLogin(t, h, "admin@school.sa", "wrong")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginOrphanedCredentialYieldsNullUser(t *testing.T) {
	h, _ := newAuthFixture(false)

	w := postLogin(t, h, "admin@school.sa", "123456")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data models.LoginResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Data.AccessToken)
	assert.Nil(t, body.Data.User)
}

func TestMeResolvesProfileFromClaims(t *testing.T) {
	h, cred := newAuthFixture(true)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/auth/me", nil)
	c.Request = req
	c.Set(middleware.ContextClaimsKey, &models.JWTClaims{CredentialID: cred.ID, Email: cred.Email})

	h.Me(c)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data *models.User `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotNil(t, body.Data)
	assert.Equal(t, "المدير العام", body.Data.Name)
}

func TestMeWithoutClaims(t *testing.T) {
	h, _ := newAuthFixture(true)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/auth/me", nil)
	c.Request = req

	h.Me(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
