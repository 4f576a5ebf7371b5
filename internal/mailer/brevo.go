package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

const brevoAPIURL = "https://api.brevo.com/v3/smtp/email"

// BrevoMailer sends transactional mail through the Brevo HTTP API.
type BrevoMailer struct {
	apiKey     string
	fromEmail  string
	fromName   string
	endpoint   string
	httpClient *http.Client
	configured bool
}

func NewBrevoMailer(apiKey, fromEmail, fromName string) *BrevoMailer {
	m := &BrevoMailer{
		endpoint:   brevoAPIURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	if apiKey != "" && fromEmail != "" && fromName != "" {
		m.apiKey = apiKey
		m.fromEmail = fromEmail
		m.fromName = fromName
		m.configured = true
	}
	return m
}

// WithEndpoint points the mailer at a different API URL.
func (m *BrevoMailer) WithEndpoint(endpoint string) *BrevoMailer {
	m.endpoint = endpoint
	return m
}

func (m *BrevoMailer) IsConfigured() bool {
	return m.configured
}

type sendEmailReq struct {
	Sender      map[string]string   `json:"sender"`
	To          []map[string]string `json:"to"`
	Subject     string              `json:"subject"`
	HtmlContent string              `json:"htmlContent"`
}

func (m *BrevoMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	if !m.configured {
		return fmt.Errorf("brevo mailer not configured, email to %s skipped", to)
	}
	if to == "" || subject == "" || htmlBody == "" {
		return errors.New("recipient, subject and body cannot be empty")
	}

	payload, err := json.Marshal(sendEmailReq{
		Sender:      map[string]string{"email": m.fromEmail, "name": m.fromName},
		To:          []map[string]string{{"email": to}},
		Subject:     subject,
		HtmlContent: htmlBody,
	})
	if err != nil {
		return fmt.Errorf("marshal brevo request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build brevo request: %w", err)
	}
	req.Header.Set("api-key", m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("brevo request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var body map[string]interface{}
		if decodeErr := json.NewDecoder(resp.Body).Decode(&body); decodeErr != nil {
			return fmt.Errorf("brevo API error: status %d", resp.StatusCode)
		}
		return fmt.Errorf("brevo API error: status %d, body: %v", resp.StatusCode, body)
	}
	return nil
}
