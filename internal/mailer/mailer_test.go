package mailer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Noor-Islam16/Coupon-Backend/internal/config"
)

func TestBrevoMailerSend(t *testing.T) {
	var got sendEmailReq
	var apiKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiKey = r.Header.Get("api-key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"messageId":"1"}`))
	}))
	defer srv.Close()

	m := NewBrevoMailer("key-1", "noreply@coupons.test", "Coupons").WithEndpoint(srv.URL)
	require.NoError(t, m.Send(context.Background(), "alice@example.com", "Hello", "<p>hi</p>"))

	assert.Equal(t, "key-1", apiKey)
	assert.Equal(t, "Hello", got.Subject)
	assert.Equal(t, "<p>hi</p>", got.HtmlContent)
	assert.Equal(t, "alice@example.com", got.To[0]["email"])
	assert.Equal(t, "noreply@coupons.test", got.Sender["email"])
}

func TestBrevoMailerErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"code":"unauthorized"}`))
	}))
	defer srv.Close()

	m := NewBrevoMailer("bad", "noreply@coupons.test", "Coupons").WithEndpoint(srv.URL)
	err := m.Send(context.Background(), "alice@example.com", "Hello", "<p>hi</p>")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")

	unconfigured := NewBrevoMailer("", "", "")
	assert.False(t, unconfigured.IsConfigured())
	assert.Error(t, unconfigured.Send(context.Background(), "alice@example.com", "Hello", "<p>hi</p>"))
}

func TestNewSelectsDriver(t *testing.T) {
	log := zap.NewNop().Sugar()

	m, err := New(config.MailConfig{Driver: "log"}, log)
	require.NoError(t, err)
	assert.IsType(t, &LogMailer{}, m)
	assert.NoError(t, m.Send(context.Background(), "a@b.co", "s", "b"))

	m, err = New(config.MailConfig{Driver: "smtp", SMTPHost: "smtp.test", SMTPPort: "587", FromEmail: "a@b.co"}, log)
	require.NoError(t, err)
	assert.IsType(t, &SMTPMailer{}, m)

	_, err = New(config.MailConfig{Driver: "brevo"}, log)
	assert.Error(t, err)

	_, err = New(config.MailConfig{Driver: "pigeon"}, log)
	assert.Error(t, err)
}

func TestBuildMessage(t *testing.T) {
	msg := string(buildMessage("Coupons <a@b.co>", "c@d.co", "Code", "<p>1</p>"))

	assert.Contains(t, msg, "To: c@d.co\r\n")
	assert.Contains(t, msg, "Content-Type: text/html")
	assert.Contains(t, msg, "\r\n\r\n<p>1</p>")
}
