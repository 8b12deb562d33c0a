package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/taqyim-dev/taqyim-api/internal/models"
	appErrors "github.com/taqyim-dev/taqyim-api/pkg/errors"
)

type credentialRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.Credential, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, cred *models.Credential) error
}

// Config defines token issuance settings.
type Config struct {
	TokenSecret string
	TokenExpiry time.Duration
	Issuer      string
}

// Service wraps the identity concerns: credential sign-in/sign-up and token
// validation. Credential deletion is intentionally absent; it would require
// a trusted execution context this service does not have, so deleting a
// user profile leaves its credential valid.
type Service struct {
	repo      credentialRepository
	validator *validator.Validate
	logger    *zap.Logger
	config    Config
}

// NewService constructs an identity service.
func NewService(repo credentialRepository, validate *validator.Validate, logger *zap.Logger, config Config) *Service {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, validator: validate, logger: logger, config: config}
}

// SignIn authenticates a credential pair and issues an access token. A
// mismatch on either email or password yields the same invalid-credential
// condition.
func (s *Service) SignIn(ctx context.Context, req models.LoginRequest) (string, time.Time, *models.JWTClaims, error) {
	if err := s.validator.Struct(req); err != nil {
		return "", time.Time{}, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	cred, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", time.Time{}, nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
		}
		return "", time.Time{}, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch credential")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(req.Password)); err != nil {
		return "", time.Time{}, nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
	}

	token, expiresAt, claims, err := s.generateToken(cred)
	if err != nil {
		return "", time.Time{}, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create access token")
	}

	return token, expiresAt, claims, nil
}

// CreateCredential registers a new login and returns the identity-assigned
// ID. A duplicate email yields ErrDuplicateCredential: the seed procedure
// swallows it, manual teacher creation surfaces it as a friendly conflict.
func (s *Service) CreateCredential(ctx context.Context, email, password string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", appErrors.Clone(appErrors.ErrValidation, "email and password are required")
	}

	exists, err := s.repo.ExistsByEmail(ctx, email)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check credential")
	}
	if exists {
		return "", appErrors.Clone(appErrors.ErrDuplicateCredential, "")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	cred := &models.Credential{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, cred); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrWriteFailed.Code, appErrors.ErrWriteFailed.Status, "failed to store credential")
	}

	return cred.ID, nil
}

// ValidateToken parses and validates an access token returning the claims.
func (s *Service) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.TokenSecret), nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}

	return claims, nil
}

func (s *Service) generateToken(cred *models.Credential) (string, time.Time, *models.JWTClaims, error) {
	issuedAt := time.Now().UTC()
	expiresAt := issuedAt.Add(s.config.TokenExpiry)
	claims := &models.JWTClaims{
		CredentialID: cred.ID,
		Email:        cred.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   cred.ID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.TokenSecret))
	if err != nil {
		return "", time.Time{}, nil, err
	}
	return signed, expiresAt, claims, nil
}
