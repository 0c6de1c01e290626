package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/wolfman30/pitaya-nails-booking/pkg/logging"
)

// HTTPConfig configures a bearer-token transactional email API.
type HTTPConfig struct {
	URL       string
	APIKey    string
	FromEmail string
	FromName  string
}

// HTTPSender posts {from, to, subject, html} JSON to an email API.
type HTTPSender struct {
	client *http.Client
	url    string
	apiKey string
	from   string
	logger *logging.Logger
}

type httpEmailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// NewHTTPSender creates the sender, or nil without an API key.
func NewHTTPSender(cfg HTTPConfig, client *http.Client, logger *logging.Logger) *HTTPSender {
	if cfg.APIKey == "" || cfg.URL == "" {
		return nil
	}
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.FromName == "" {
		cfg.FromName = defaultFromName
	}
	return &HTTPSender{
		client: client,
		url:    cfg.URL,
		apiKey: cfg.APIKey,
		from:   fmt.Sprintf("%s <%s>", cfg.FromName, cfg.FromEmail),
		logger: logger,
	}
}

// Send posts one email. Transport errors and non-2xx responses are failures.
func (s *HTTPSender) Send(ctx context.Context, msg EmailMessage) error {
	if s == nil || s.apiKey == "" {
		return ErrNotConfigured
	}
	htmlBody := msg.HTML
	if htmlBody == "" {
		htmlBody = msg.Body
	}
	payload, err := json.Marshal(httpEmailRequest{
		From:    s.from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		HTML:    htmlBody,
	})
	if err != nil {
		return fmt.Errorf("notify: encode email: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("notify: build email request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Error("email api request failed", "error", err, "to", msg.To)
		return fmt.Errorf("notify: email api request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		s.logger.Error("email api returned error status", "status", resp.StatusCode, "body", string(body), "to", msg.To)
		return fmt.Errorf("notify: email api returned status %d", resp.StatusCode)
	}
	_, _ = io.Copy(io.Discard, resp.Body)

	s.logger.Info("email sent via api", "to", msg.To, "subject", msg.Subject, "status", resp.StatusCode)
	return nil
}

var _ EmailSender = (*HTTPSender)(nil)
