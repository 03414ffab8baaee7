package ai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "github.com/vladimiradmaev/farm-helper/internal/errors"
)

func chatServer(t *testing.T, status int, body string, seen *map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if seen != nil {
			raw, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(raw, seen)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

const okCompletion = `{"id":"c1","object":"chat.completion","created":1,"model":"m","choices":[{"index":0,"message":{"role":"assistant","content":"{\"detectedDisease\":\"Healthy\"}"},"finish_reason":"stop"}]}`

func TestOpenAIProviderSendsImagesToVisionModel(t *testing.T) {
	var seen map[string]any
	srv := chatServer(t, http.StatusOK, okCompletion, &seen)
	p := NewOpenAIProvider("key", srv.URL+"/v1", "vision-model", "text-model")

	out, err := p.Complete(context.Background(), Prompt{User: "look", ImageURLs: []string{"https://img.test/a.jpg", "https://img.test/b.jpg"}})
	require.NoError(t, err)
	assert.Equal(t, `{"detectedDisease":"Healthy"}`, out)

	assert.Equal(t, "vision-model", seen["model"])
	messages := seen["messages"].([]any)
	require.Len(t, messages, 1)
	content := messages[0].(map[string]any)["content"].([]any)
	assert.Len(t, content, 3)
}

func TestOpenAIProviderTextWithSystemPrompt(t *testing.T) {
	var seen map[string]any
	srv := chatServer(t, http.StatusOK, okCompletion, &seen)
	p := NewOpenAIProvider("key", srv.URL+"/v1", "vision-model", "text-model")

	temp := float32(0.7)
	_, err := p.Complete(context.Background(), Prompt{System: "sys", User: "plan", Temperature: &temp})
	require.NoError(t, err)

	assert.Equal(t, "text-model", seen["model"])
	assert.InDelta(t, 0.7, seen["temperature"], 0.001)
	messages := seen["messages"].([]any)
	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].(map[string]any)["role"])
}

func TestOpenAIProviderErrorMapping(t *testing.T) {
	cases := []struct {
		status  int
		errType apperrors.ErrorType
		message string
	}{
		{http.StatusTooManyRequests, apperrors.ErrorTypeRateLimit, apperrors.MsgUpstreamRateLimit},
		{http.StatusPaymentRequired, apperrors.ErrorTypeBilling, apperrors.MsgUpstreamBilling},
		{http.StatusBadGateway, apperrors.ErrorTypeExternal, "AI API error"},
	}

	for _, tc := range cases {
		srv := chatServer(t, tc.status, `{"error":{"message":"secret upstream detail","type":"x"}}`, nil)
		p := NewOpenAIProvider("key", srv.URL+"/v1", "v", "t")

		_, err := p.Complete(context.Background(), Prompt{User: "hi"})
		appErr, ok := apperrors.As(err)
		require.True(t, ok, tc.status)
		assert.Equal(t, tc.errType, appErr.Type)
		assert.Equal(t, tc.message, appErr.Message)
		assert.NotContains(t, appErr.Message, "secret upstream detail")
	}
}

func TestOpenAIProviderNoChoices(t *testing.T) {
	srv := chatServer(t, http.StatusOK, `{"id":"c1","object":"chat.completion","choices":[]}`, nil)
	out, err := NewOpenAIProvider("key", srv.URL+"/v1", "v", "t").Complete(context.Background(), Prompt{User: "hi"})
	require.NoError(t, err)
	assert.Empty(t, out)
}
