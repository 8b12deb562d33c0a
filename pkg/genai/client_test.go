package genai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taqyim-dev/taqyim-api/pkg/config"
	appErrors "github.com/taqyim-dev/taqyim-api/pkg/errors"
)

func newTestClient(serverURL string) *Client {
	return NewClient(config.GenAIConfig{
		BaseURL: serverURL,
		APIKey:  "test-key",
		Model:   "gemini-2.5-flash",
		Timeout: 5 * time.Second,
	})
}

func TestGenerateTextReturnsFirstCandidate(t *testing.T) {
	var gotPath string
	var gotBody generateRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"السلام عليكم ورحمة الله وبركاته"}]}}]}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	text, err := client.GenerateText(context.Background(), "اكتب رسالة")
	require.NoError(t, err)
	assert.Equal(t, "السلام عليكم ورحمة الله وبركاته", text)
	assert.Equal(t, "/v1beta/models/gemini-2.5-flash:generateContent", gotPath)
	require.Len(t, gotBody.Contents, 1)
	assert.Equal(t, "اكتب رسالة", gotBody.Contents[0].Parts[0].Text)
}

func TestGenerateTextUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"quota exceeded"}}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	_, err := client.GenerateText(context.Background(), "prompt")
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrGenerationFailed.Code, appErr.Code)
	assert.Equal(t, "quota exceeded", appErr.Message)
}

func TestGenerateTextNoCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	_, err := client.GenerateText(context.Background(), "prompt")
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrGenerationFailed.Code, appErr.Code)
}

func TestGenerateTextConnectionFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := newTestClient(srv.URL)
	_, err := client.GenerateText(context.Background(), "prompt")
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrGenerationFailed.Code, appErr.Code)
}
