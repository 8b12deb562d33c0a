package identity

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/taqyim-dev/taqyim-api/internal/models"
	appErrors "github.com/taqyim-dev/taqyim-api/pkg/errors"
)

type mockCredRepo struct {
	creds     map[string]*models.Credential
	createErr error
}

func (m *mockCredRepo) FindByEmail(ctx context.Context, email string) (*models.Credential, error) {
	if cred, ok := m.creds[email]; ok {
		copy := *cred
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockCredRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, ok := m.creds[email]
	return ok, nil
}

func (m *mockCredRepo) Create(ctx context.Context, cred *models.Credential) error {
	if m.createErr != nil {
		return m.createErr
	}
	if m.creds == nil {
		m.creds = make(map[string]*models.Credential)
	}
	copy := *cred
	m.creds[cred.Email] = &copy
	return nil
}

func newTestService(repo *mockCredRepo) *Service {
	return NewService(repo, validator.New(), zap.NewNop(), Config{
		TokenSecret: "test_secret",
		TokenExpiry: time.Hour,
		Issuer:      "taqyim-test",
	})
}

func hashOf(t *testing.T, password string) string {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestSignInIssuesValidToken(t *testing.T) {
	repo := &mockCredRepo{creds: map[string]*models.Credential{
		"admin@example.com": {ID: "cred-1", Email: "admin@example.com", PasswordHash: hashOf(t, "123456")},
	}}
	svc := newTestService(repo)

	token, expiresAt, claims, err := svc.SignIn(context.Background(), models.LoginRequest{Email: "admin@example.com", Password: "123456"})
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.True(t, expiresAt.After(time.Now()))
	assert.Equal(t, "cred-1", claims.CredentialID)

	parsed, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "cred-1", parsed.CredentialID)
	assert.Equal(t, "admin@example.com", parsed.Email)
}

func TestSignInWrongPassword(t *testing.T) {
	repo := &mockCredRepo{creds: map[string]*models.Credential{
		"admin@example.com": {ID: "cred-1", Email: "admin@example.com", PasswordHash: hashOf(t, "123456")},
	}}
	svc := newTestService(repo)

	_, _, _, err := svc.SignIn(context.Background(), models.LoginRequest{Email: "admin@example.com", Password: "wrong"})
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErr.Code)
}

func TestSignInUnknownEmail(t *testing.T) {
	svc := newTestService(&mockCredRepo{})

	_, _, _, err := svc.SignIn(context.Background(), models.LoginRequest{Email: "nobody@example.com", Password: "123456"})
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErr.Code)
}

func TestCreateCredentialAssignsID(t *testing.T) {
	repo := &mockCredRepo{creds: make(map[string]*models.Credential)}
	svc := newTestService(repo)

	id, err := svc.CreateCredential(context.Background(), "Teacher1@Example.com", "123456")
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Contains(t, repo.creds, "teacher1@example.com")
}

func TestCreateCredentialDuplicate(t *testing.T) {
	repo := &mockCredRepo{creds: map[string]*models.Credential{
		"teacher1@example.com": {ID: "cred-1", Email: "teacher1@example.com"},
	}}
	svc := newTestService(repo)

	_, err := svc.CreateCredential(context.Background(), "teacher1@example.com", "123456")
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrDuplicateCredential.Code, appErr.Code)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	svc := newTestService(&mockCredRepo{})

	_, err := svc.ValidateToken("not-a-token")
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErr.Code)
}
