package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Signer creates and verifies HMAC download tokens carrying a job ID, a
// relative file path, and an expiry.
type Signer struct {
	secret []byte
	ttl    time.Duration
}

// NewSigner constructs a signer with the provided secret and TTL.
func NewSigner(secret string, ttl time.Duration) *Signer {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Signer{secret: []byte(secret), ttl: ttl}
}

// Sign returns a token referencing the job and file path.
func (s *Signer) Sign(jobID, path string) (string, time.Time, error) {
	if jobID == "" || path == "" {
		return "", time.Time{}, fmt.Errorf("job ID and path required")
	}
	if len(s.secret) == 0 {
		return "", time.Time{}, fmt.Errorf("signing secret missing")
	}
	expiresAt := time.Now().Add(s.ttl)
	payload := fmt.Sprintf("%s|%d|%s", jobID, expiresAt.Unix(), path)
	encoded := base64.RawURLEncoding.EncodeToString([]byte(payload))
	token := encoded + "." + s.digest(payload)
	return token, expiresAt, nil
}

// Verify checks the token signature and expiry, returning the embedded
// metadata.
func (s *Signer) Verify(token string) (jobID, path string, err error) {
	encoded, signature, found := strings.Cut(token, ".")
	if !found {
		return "", "", fmt.Errorf("invalid token format")
	}
	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", "", fmt.Errorf("decode token: %w", err)
	}
	payload := string(raw)
	if !hmac.Equal([]byte(s.digest(payload)), []byte(signature)) {
		return "", "", fmt.Errorf("invalid token signature")
	}

	parts := strings.SplitN(payload, "|", 3)
	if len(parts) != 3 {
		return "", "", fmt.Errorf("invalid token payload")
	}
	expUnix, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return "", "", fmt.Errorf("invalid token expiry")
	}
	if time.Now().After(time.Unix(expUnix, 0)) {
		return "", "", fmt.Errorf("token expired")
	}
	return parts[0], parts[2], nil
}

func (s *Signer) digest(payload string) string {
	mac := hmac.New(sha256.New, s.secret)
	_, _ = mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}
