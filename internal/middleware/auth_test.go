package middleware

import (
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
	ready bool
}

func (f *fakeProfiles) UserByID(id string) *models.User {
	if u, ok := f.users[id]; ok {
		return &u
	}
	return nil
}

func (f *fakeProfiles) Ready() bool {
	return f.ready
}

func newIdentityService() (*identity.Service, *models.Credential) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("123456"), bcrypt.MinCost)
	cred := &models.Credential{ID: "cred-1", Email: "t@school.sa", PasswordHash: string(hash)}
	svc := identity.NewService(&fakeCredRepo{cred: cred}, nil, nil, identity.Config{
		TokenSecret: "test-secret",
		TokenExpiry: time.Hour,
		Issuer:      "test",
	})
	return svc, cred
}

func signIn(t *testing.T, svc *identity.Service) string {
	t.Helper()
	token, _, _, err := svc.SignIn(context.Background(), models.LoginRequest{Email: "t@school.sa", Password: "123456"})
	require.NoError(t, err)
	return token
}

func newRouter(ids *identity.Service, profiles ProfileSource, required models.UserRole) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/guarded", Authenticate(ids, profiles), RequireRole(profiles, required), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func perform(r *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGuardAllowsMatchingRole(t *testing.T) {
	ids, cred := newIdentityService()
	profiles := &fakeProfiles{ready: true, users: map[string]models.User{
		cred.ID: {ID: cred.ID, Name: "أ. خالد", Role: models.RoleTeacher},
	}}
	r := newRouter(ids, profiles, models.RoleTeacher)

	w := perform(r, signIn(t, ids))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGuardRejectsMissingToken(t *testing.T) {
	ids, _ := newIdentityService()
	profiles := &fakeProfiles{ready: true}
	r := newRouter(ids, profiles, models.RoleTeacher)

	w := perform(r, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGuardRejectsGarbageToken(t *testing.T) {
	ids, _ := newIdentityService()
	profiles := &fakeProfiles{ready: true}
	r := newRouter(ids, profiles, models.RoleTeacher)

	w := perform(r, "not.a.token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGuardRedirectsRoleMismatchWithHome(t *testing.T) {
	ids, cred := newIdentityService()
	profiles := &fakeProfiles{ready: true, users: map[string]models.User{
		cred.ID: {ID: cred.ID, Name: "أ. خالد", Role: models.RoleTeacher},
	}}
	r := newRouter(ids, profiles, models.RoleAdmin)

	w := perform(r, signIn(t, ids))
	assert.Equal(t, http.StatusForbidden, w.Code)

	var body struct {
		Meta map[string]string `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "/teacher", body.Meta["redirect"])
}

func TestGuardHoldsWhileStoreInitializing(t *testing.T) {
	ids, cred := newIdentityService()
	profiles := &fakeProfiles{ready: false, users: map[string]models.User{
		cred.ID: {ID: cred.ID, Role: models.RoleTeacher},
	}}
	r := newRouter(ids, profiles, models.RoleTeacher)

	w := perform(r, signIn(t, ids))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestGuardTreatsOrphanedCredentialAsUnauthenticated(t *testing.T) {
	ids, _ := newIdentityService()
	// Valid token, but no profile exists for the credential.
	profiles := &fakeProfiles{ready: true, users: map[string]models.User{}}
	r := newRouter(ids, profiles, models.RoleTeacher)

	w := perform(r, signIn(t, ids))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
