package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSignerSignAndVerify(t *testing.T) {
	signer := NewSigner("secret", time.Hour)
	token, expiresAt, err := signer.Sign("job-1", "reports_20260101.csv")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.False(t, expiresAt.IsZero())

	jobID, path, err := signer.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "job-1", jobID)
	require.Equal(t, "reports_20260101.csv", path)
}

func TestSignerRejectsTampering(t *testing.T) {
	signer := NewSigner("secret", time.Hour)
	token, _, err := signer.Sign("job-1", "reports.csv")
	require.NoError(t, err)

	_, _, err = signer.Verify(token + "ff")
	require.Error(t, err)

	other := NewSigner("other-secret", time.Hour)
	_, _, err = other.Verify(token)
	require.Error(t, err)
}

func TestSignerRejectsExpiredToken(t *testing.T) {
	signer := NewSigner("secret", time.Hour)
	signer.ttl = -time.Minute // forces an already-expired token
	token, _, err := signer.Sign("job-1", "reports.csv")
	require.NoError(t, err)

	_, _, err = signer.Verify(token)
	require.Error(t, err)
}

func TestFileStoreSaveOpenRemove(t *testing.T) {
	fs, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	name, err := fs.Save("reports.csv", []byte("a,b\n1,2\n"))
	require.NoError(t, err)

	file, err := fs.Open(name)
	require.NoError(t, err)
	require.NoError(t, file.Close())

	require.NoError(t, fs.Remove(name))
	_, err = fs.Open(name)
	require.Error(t, err)

	// Removing a missing file is not an error.
	require.NoError(t, fs.Remove(name))
}
