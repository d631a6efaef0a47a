package mailer

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"etf-advisor/config"
	"etf-advisor/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mailerTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("error", "console")
	require.NoError(t, err)
	return log
}

func mailerTestConfig(baseURL string) *config.Mailer {
	return &config.Mailer{
		Enabled:   true,
		BaseURL:   baseURL,
		APIKey:    "test-key",
		FromEmail: "noreply@example.com",
		FromName:  "ETF Advisor",
		Timeout:   2 * time.Second,
	}
}

func TestSendGrid_SendBuildsExpectedPayload(t *testing.T) {
	var (
		gotPath string
		gotAuth string
		gotBody sendRequest
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, &gotBody))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	m := New(mailerTestConfig(server.URL), mailerTestLogger(t))

	err := m.Send(context.Background(), "alice@example.com", "alice", "Weekly analysis", "<p>hold</p>")
	require.NoError(t, err)

	assert.Equal(t, "/v3/mail/send", gotPath)
	assert.Equal(t, "Bearer test-key", gotAuth)

	require.Len(t, gotBody.Personalizations, 1)
	require.Len(t, gotBody.Personalizations[0].To, 1)
	assert.Equal(t, "alice@example.com", gotBody.Personalizations[0].To[0].Email)
	assert.Equal(t, "alice", gotBody.Personalizations[0].To[0].Name)
	assert.Equal(t, "Weekly analysis", gotBody.Personalizations[0].Subject)
	assert.Equal(t, "noreply@example.com", gotBody.From.Email)
	require.Len(t, gotBody.Content, 1)
	assert.Equal(t, "text/html", gotBody.Content[0].Type)
	assert.Equal(t, "<p>hold</p>", gotBody.Content[0].Value)
}

func TestSendGrid_BackendRejectionIsAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"errors":[{"message":"bad request"}]}`))
	}))
	defer server.Close()

	m := New(mailerTestConfig(server.URL), mailerTestLogger(t))

	err := m.Send(context.Background(), "alice@example.com", "alice", "subject", "body")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestSendGrid_DisabledConfigReturnsErrDisabled(t *testing.T) {
	cfg := mailerTestConfig("http://localhost:0")
	cfg.Enabled = false

	m := New(cfg, mailerTestLogger(t))
	err := m.Send(context.Background(), "alice@example.com", "alice", "subject", "body")
	assert.ErrorIs(t, err, ErrDisabled)
}

func TestSendGrid_MissingAPIKeyReturnsErrDisabled(t *testing.T) {
	cfg := mailerTestConfig("http://localhost:0")
	cfg.APIKey = ""

	m := New(cfg, mailerTestLogger(t))
	err := m.Send(context.Background(), "alice@example.com", "alice", "subject", "body")
	assert.ErrorIs(t, err, ErrDisabled)
}

func TestRenderNotificationHTML(t *testing.T) {
	html := RenderNotificationHTML("Portfolio update", "First paragraph.\n\nSecond <b>paragraph</b>.")

	assert.Contains(t, html, "<h2 style=\"color: #1a4f8b;\">Portfolio update</h2>")
	assert.Contains(t, html, "<p>First paragraph.</p>")
	assert.Contains(t, html, "&lt;b&gt;paragraph&lt;/b&gt;", "user content is escaped")
	assert.NotContains(t, html, "<b>paragraph</b>")
}
