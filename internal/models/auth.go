package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Credential is an identity-service login record. It lives in its own table
// and is deliberately decoupled from the User profile document: deleting a
// profile leaves the credential behind.
type Credential struct {
	ID           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// JWTClaims are the access-token claims issued on sign-in.
type JWTClaims struct {
	CredentialID string `json:"uid"`
	Email        string `json:"email"`
	jwt.RegisteredClaims
}

// LoginRequest is the sign-in payload.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the issued token and the resolved profile, when one
// exists for the credential.
type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresIn   int64     `json:"expires_in"`
	IssuedAt    time.Time `json:"issued_at"`
	User        *User     `json:"user"`
}
